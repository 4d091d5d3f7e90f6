// Package core provides the shared types for the banking assistant: the
// conversation message record, the bank account and transaction records, and
// the definitions of the remote tools.
package core

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Account represents one account of a user. Balance is a decimal-precision
// string; SQLite floats never touch it.
type Account struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
}

// Transaction is one entry of an account's transfer history, viewed from the
// perspective of that account (debit for outgoing, credit for incoming).
type Transaction struct {
	TransactionID   string `json:"transaction_id"`
	Date            string `json:"date"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`
	TransactionType string `json:"transaction_type"`
	BalanceAfter    string `json:"balance_after"`
}

// Answer is the RAG system's response to a banking question.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Names of the remote tools exposed by the gateway.
const (
	ToolAnswerBankingQuestion = "answer_banking_question"
	ToolListUserAccounts      = "list_user_accounts"
	ToolListTargetAccounts    = "list_target_accounts"
	ToolTransferFunds         = "transfer_funds"
	ToolGetAccountBalance     = "get_account_balance"
	ToolGetTransactionHistory = "get_transaction_history"
)
