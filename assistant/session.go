package assistant

import "github.com/omisdami/bankassist/core"

// Session holds the per-conversation state: the active user and the message
// history sent to the model each turn.
type Session struct {
	UserID  string
	History []core.Message
}

// NewSession starts a fresh session for the given user.
func NewSession(userID string) *Session {
	return &Session{UserID: userID}
}

// Append records a turn in the history.
func (s *Session) Append(msg core.Message) {
	s.History = append(s.History, msg)
}

// Clear drops the conversation history but keeps the user.
func (s *Session) Clear() {
	s.History = nil
}

// LastUserMessage returns the most recent user turn, or "" when there is none.
func (s *Session) LastUserMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == core.RoleUser {
			return s.History[i].Content
		}
	}
	return ""
}
