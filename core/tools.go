package core

// ToolDefinition describes one remote tool: its name, what it does, and the
// JSON schema of its arguments. The definitions are sent to the model as the
// function-calling schema and double as the gateway's method catalogue.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// BankingToolDefinitions returns the definitions for the banking tools served
// by the gateway.
func BankingToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolAnswerBankingQuestion,
			Description: "Answer a banking question using the RAG system with RBC documentation.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"question": StringProperty("The banking question to answer"),
			}, "question"),
		},
		{
			Name:        ToolListUserAccounts,
			Description: "List all accounts for a given user.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"user_id": StringProperty("The ID of the user"),
			}, "user_id"),
		},
		{
			Name:        ToolListTargetAccounts,
			Description: "List all other accounts this user can transfer to.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"user_id":      StringProperty("The ID of the user"),
				"from_account": StringProperty("The source account number"),
			}, "user_id", "from_account"),
		},
		{
			Name:        ToolTransferFunds,
			Description: "Transfer funds from one account to another.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"user_id":      StringProperty("The ID of the user"),
				"from_account": StringProperty("The source account number"),
				"to_account":   StringProperty("The destination account number"),
				"amount":       StringProperty("The amount to transfer"),
			}, "user_id", "from_account", "to_account", "amount"),
		},
		{
			Name:        ToolGetAccountBalance,
			Description: "Get the balance of a specific account.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"user_id":        StringProperty("The ID of the user"),
				"account_number": StringProperty("The account number"),
			}, "user_id", "account_number"),
		},
		{
			Name:        ToolGetTransactionHistory,
			Description: "Get the transaction history for a specific account.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"user_id":        StringProperty("The ID of the user"),
				"account_number": StringProperty("The account number"),
				"days":           IntegerProperty("Number of days of history to retrieve (default: 30)"),
			}, "user_id", "account_number"),
		},
	}
}
