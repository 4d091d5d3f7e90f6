package assistant

import (
	"fmt"
	"math/rand"
	"strings"
)

// Canned replies for turns that never reach the model. Varied so repeated
// greetings don't read like a phone tree.
var (
	greetingReplies = []string{
		"Hello! How can I help you with your banking today?",
		"Hi there! What can I do for you today?",
		"Hey! How can I assist you with your accounts?",
		"Hello! I'm here to help with your banking needs.",
	}

	farewellReplies = []string{
		"Goodbye! Have a great day!",
		"Take care! Feel free to come back anytime.",
		"Bye! Thanks for banking with us.",
	}

	nonBankingReplies = []string{
		"I'm a banking assistant, so I can only help with banking-related questions. Is there anything about your accounts I can help with?",
		"That's outside what I can help with. I can answer banking questions, check balances, or transfer funds for you.",
		"I specialize in banking. Would you like to check a balance, make a transfer, or ask a banking question?",
	}

	errorReplies = []string{
		"I'm sorry, something went wrong on my end. Please try again.",
		"Apologies, I ran into a problem handling that. Could you try once more?",
	}

	fallbackReply = "How can I help you with your banking needs today?"
)

func pick(replies []string) string {
	return replies[rand.Intn(len(replies))]
}

// systemInstructions is the model's standing prompt. The user id is
// interpolated so the model fills it into tool arguments itself when it can.
const systemInstructions = `You are a helpful banking assistant for RBC customers. The current user's id is %q.

You have tools for listing accounts, checking balances, transferring funds, retrieving transaction history, and answering general banking questions from documentation.

Rules:
- Use at most one tool call per response.
- When the user asks a general banking question, use answer_banking_question.
- When the user refers to accounts by name (checking, savings, credit card), pass the name through; it will be resolved.
- Never invent account numbers or balances; always use a tool.
- Keep responses short and conversational.`

// SystemPrompt returns the standing instructions for the given user.
func SystemPrompt(userID string) string {
	return fmt.Sprintf(systemInstructions, userID)
}

// boilerplate phrases the model tends to append after a tool call; the tool
// result already says everything these do.
var boilerplate = []string{
	"I've completed that action for you.",
	"I've processed your request.",
	"I've completed the transfer for you.",
}

// CleanReply strips model boilerplate and function-call artifacts from a
// reply and collapses the blank lines left behind.
func CleanReply(text string) string {
	for _, phrase := range boilerplate {
		text = strings.ReplaceAll(text, phrase, "")
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[Function Call:") || trimmed == "]" || trimmed == "Assistant:" {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
