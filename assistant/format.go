package assistant

import (
	"fmt"
	"strings"

	"github.com/omisdami/bankassist/core"
)

// maxHistoryLines caps how many transactions are spelled out before the rest
// are summarized.
const maxHistoryLines = 5

// ragRedirect replaces a knowledge-base miss with a pointer to a human.
const ragRedirect = "I don't have that information in my documentation. Please contact RBC directly at 1-800-769-2511 or visit rbc.com for help."

type formatterFunc func(Value) string

// formatters maps each tool to its reply renderer. Formatters never fail
// outward; a shape they don't recognize degrades to a generic line.
var formatters = map[string]formatterFunc{
	core.ToolGetAccountBalance:     formatBalance,
	core.ToolListUserAccounts:      formatAccounts,
	core.ToolListTargetAccounts:    formatTargetAccounts,
	core.ToolTransferFunds:         formatTransfer,
	core.ToolGetTransactionHistory: formatHistory,
	core.ToolAnswerBankingQuestion: formatAnswer,
}

// FormatResult renders a normalized tool result as the user-facing reply.
// Unknown tools render as nothing, which the orchestrator turns into its
// fallback line.
func FormatResult(tool string, v Value) string {
	if msg, ok := errorMessage(v); ok {
		return fmt.Sprintf("I'm sorry, I couldn't complete that: %s", msg)
	}
	if f, ok := formatters[tool]; ok {
		return f(v)
	}
	return ""
}

// formatBalance renders the account carrying a balance, found directly or as
// the first list element.
func formatBalance(v Value) string {
	record := v.Record
	if v.Kind == KindList && len(v.List) > 0 {
		record = v.List[0]
	}
	if record == nil || record["balance"] == nil {
		return "I found your balance information."
	}
	currency := field(record, "currency")
	if currency == "" {
		currency = "CAD"
	}
	return fmt.Sprintf("Your %s (%s) has a balance of %s %s.",
		field(record, "account_name"),
		field(record, "account_number"),
		field(record, "balance"),
		currency)
}

func formatAccounts(v Value) string {
	return accountList(v, "Here are your accounts:")
}

func formatTargetAccounts(v Value) string {
	return accountList(v, "You can transfer to these accounts:")
}

func accountList(v Value, heading string) string {
	if v.Kind != KindList {
		return "I found your account information."
	}
	if len(v.List) == 0 {
		return "I couldn't find any accounts for you."
	}
	var b strings.Builder
	b.WriteString(heading)
	for _, record := range v.List {
		fmt.Fprintf(&b, "\n- %s (%s)",
			field(record, "account_name"),
			field(record, "account_number"))
	}
	return b.String()
}

// formatTransfer passes the gateway's outcome line through untouched; it is
// already user-facing text for both success and failure.
func formatTransfer(v Value) string {
	if v.Kind == KindText && (strings.Contains(v.Text, "Transferred") || strings.Contains(v.Text, "failed")) {
		return v.Text
	}
	return "Transfer completed."
}

func formatHistory(v Value) string {
	if v.Kind != KindList {
		return "I couldn't find any transactions for that account."
	}
	if len(v.List) == 0 {
		return "I couldn't find any transactions for that account."
	}
	var b strings.Builder
	b.WriteString("Here are your recent transactions:")
	shown := v.List
	if len(shown) > maxHistoryLines {
		shown = shown[:maxHistoryLines]
	}
	for _, record := range shown {
		fmt.Fprintf(&b, "\n- %s: %s - %s",
			field(record, "date"),
			field(record, "description"),
			field(record, "amount"))
	}
	if rest := len(v.List) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more transactions.", rest)
	}
	return b.String()
}

func formatAnswer(v Value) string {
	if v.Kind != KindRecord {
		return formatGeneric(v)
	}
	answer := field(v.Record, "answer")
	if answer == "" {
		return formatGeneric(v)
	}
	if strings.Contains(answer, "I don't have information") {
		return ragRedirect
	}
	sources := stringList(v.Record["sources"])
	switch len(sources) {
	case 0:
		return answer
	case 1:
		return fmt.Sprintf("%s\n\nSource: %s", answer, sources[0])
	default:
		return fmt.Sprintf("%s\n\nSources:\n- %s", answer, strings.Join(sources, "\n- "))
	}
}

// formatGeneric renders results no dedicated rule claims.
func formatGeneric(v Value) string {
	switch v.Kind {
	case KindText:
		return strings.TrimSpace(v.Text)
	case KindRecord:
		return compactJSON(v.Record)
	case KindList:
		return compactJSON(v.List)
	default:
		return ""
	}
}

// errorMessage detects the error-record shape produced by the dispatcher and
// the gateway.
func errorMessage(v Value) (string, bool) {
	if v.Kind != KindRecord {
		return "", false
	}
	msg, ok := v.Record["error"].(string)
	return msg, ok && msg != ""
}

func field(record map[string]any, key string) string {
	switch v := record[key].(type) {
	case string:
		return v
	case float64:
		return trimFloat(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
