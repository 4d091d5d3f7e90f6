// Package intent classifies user utterances before they reach the model:
// greetings, farewells, console commands, banking-domain checks, and monetary
// amount extraction. All matching is plain substring or prefix work over
// lowercased text; there is no tokenization or stemming.
package intent

import (
	"regexp"
	"strings"

	"github.com/omisdami/bankassist/config"
)

// Command is one of the closed command vocabulary entries intercepted before
// the model sees the input.
type Command int

const (
	CommandNone Command = iota
	CommandExit
	CommandClear
	CommandUser
)

var amountPattern = regexp.MustCompile(`\$?(\d+(?:\.\d{1,2})?)\s*(?:dollars?|CAD)?`)

// Detector matches utterances against the configured phrase lists.
type Detector struct {
	domains      []string
	greetings    map[string]bool
	farewells    []string
	exitCmds     map[string]bool
	clearCmds    map[string]bool
	taskKeywords []string
}

// NewDetector builds a detector from the assistant configuration.
func NewDetector(cfg config.AssistantConfig) *Detector {
	d := &Detector{
		domains:      lowerAll(cfg.BankingDomains),
		greetings:    make(map[string]bool, len(cfg.Greetings)),
		farewells:    lowerAll(cfg.Farewells),
		exitCmds:     make(map[string]bool, len(cfg.ExitCommands)),
		clearCmds:    make(map[string]bool, len(cfg.ClearCommands)),
		taskKeywords: lowerAll(cfg.TaskKeywords),
	}
	for _, g := range cfg.Greetings {
		d.greetings[strings.ToLower(g)] = true
	}
	for _, c := range cfg.ExitCommands {
		d.exitCmds[strings.ToLower(c)] = true
	}
	for _, c := range cfg.ClearCommands {
		d.clearCmds[strings.ToLower(c)] = true
	}
	return d
}

// IsBankingRelated reports whether any banking-domain keyword occurs as a
// substring of the text. False positives on words containing a keyword are
// accepted.
func (d *Detector) IsBankingRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, domain := range d.domains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// IsGreeting reports whether the text is a greeting: an exact match against a
// greeting phrase (a trailing "!" is ignored), or anything starting with
// "hello" or "hi ".
func (d *Detector) IsGreeting(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	trimmed := strings.TrimSuffix(lower, "!")
	return d.greetings[trimmed] ||
		strings.HasPrefix(lower, "hello") ||
		strings.HasPrefix(lower, "hi ")
}

// IsFarewell reports whether the text equals a farewell phrase or starts with
// one followed by a space.
func (d *Detector) IsFarewell(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, pattern := range d.farewells {
		if lower == pattern || strings.HasPrefix(lower, pattern+" ") {
			return true
		}
	}
	return false
}

// IsShortResponse reports whether the text is likely a short answer to a
// previous question: at most two words and none of the task keywords.
func (d *Detector) IsShortResponse(text string) bool {
	if len(strings.Fields(text)) > 2 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range d.taskKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// IsTransferRequest reports whether the text asks to move money.
func (d *Detector) IsTransferRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range []string{"transfer", "send", "move money", "move funds"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DetectCommand recognizes the closed command vocabulary. It returns the
// command kind and, for the "user <id>" form, the trimmed argument.
func (d *Detector) DetectCommand(text string) (Command, string) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if d.exitCmds[lower] {
		return CommandExit, ""
	}
	if d.clearCmds[lower] {
		return CommandClear, ""
	}
	if strings.HasPrefix(lower, "user ") {
		return CommandUser, strings.TrimSpace(text[5:])
	}
	return CommandNone, ""
}

// ExtractAmount returns the first monetary amount in the text as a numeric
// string without the currency symbol, or "" if none is found.
func ExtractAmount(text string) string {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
