package assistant

import (
	"strconv"
	"strings"

	"github.com/omisdami/bankassist/core"
	"github.com/omisdami/bankassist/intent"
)

// Normalizer repairs tool arguments before dispatch: it sanitizes amounts,
// resolves account names to numbers, and fills in arguments the model left
// out, using the user's last utterance as the fallback source.
type Normalizer struct {
	resolver *Resolver
}

// Resolver is re-exported here as the account-name resolver the normalizer
// consults; it is the intent package's resolver by construction.
type Resolver = intent.Resolver

// NewNormalizer builds a normalizer over the given account-name resolver.
func NewNormalizer(resolver *Resolver) *Normalizer {
	return &Normalizer{resolver: resolver}
}

// Repair returns a repaired copy of the arguments for one tool call. The
// original map is never mutated. lastUser is the most recent user utterance.
func (n *Normalizer) Repair(tool string, args map[string]any, userID, lastUser string) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}

	if tool == core.ToolAnswerBankingQuestion {
		// The knowledge-base tool carries no user identity. Only make sure a
		// question is present.
		if stringArg(out, "question") == "" {
			out["question"] = lastUser
		}
		return out
	}

	if stringArg(out, "user_id") == "" {
		out["user_id"] = userID
	}

	switch tool {
	case core.ToolTransferFunds:
		n.repairAccount(out, "from_account", lastUser)
		n.repairAccount(out, "to_account", lastUser)
		repairAmount(out, lastUser)
	case core.ToolGetAccountBalance, core.ToolGetTransactionHistory:
		n.repairAccount(out, "account_number", lastUser)
	case core.ToolListTargetAccounts:
		n.repairAccount(out, "from_account", lastUser)
	}
	return out
}

// repairAccount resolves an account-name argument to an account number. A
// missing argument is inferred from the user's utterance when possible.
func (n *Normalizer) repairAccount(args map[string]any, key, lastUser string) {
	value := stringArg(args, key)
	if value == "" {
		if inferred := intent.InferAccountNumber(lastUser); inferred != "" {
			args[key] = inferred
		}
		return
	}
	if isAccountNumber(value) {
		args[key] = value
		return
	}
	if number, ok := n.resolver.Resolve(value); ok {
		args[key] = number
	}
}

// repairAmount strips currency formatting and falls back to the amount in the
// user's utterance when the argument is missing or not numeric. The final
// fallback is "0", which the store rejects with a clear message.
func repairAmount(args map[string]any, lastUser string) {
	value := stringArg(args, "amount")
	value = strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
	if !isNumeric(value) {
		value = intent.ExtractAmount(lastUser)
	}
	if value == "" {
		value = "0"
	}
	args["amount"] = value
}

// stringArg reads an argument as a string, coercing JSON numbers the model
// sometimes emits for amounts and account numbers.
func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func isAccountNumber(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
