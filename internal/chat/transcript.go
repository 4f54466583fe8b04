// Package chat holds the AI-assistant conversation state and API calls.
// The transcript store is shared across views for the lifetime of the
// session; nothing here persists beyond what the history endpoint returns.
package chat

import (
	"sync"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a per-problem conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript keeps ordered message lists keyed by problem id. Two
// operations mutate it: Append adds one message (creating the list if
// absent) and SetMessages replaces a list wholesale when history is
// hydrated from the server. Insertion order is preserved as-is — no
// de-duplication and no reordering by timestamp, so out-of-order history
// is displayed as received.
type Transcript struct {
	mu        sync.Mutex
	byProblem map[string][]Message
}

func NewTranscript() *Transcript {
	return &Transcript{byProblem: make(map[string][]Message)}
}

func (t *Transcript) Append(problemID string, m Message) {
	t.mu.Lock()
	t.byProblem[problemID] = append(t.byProblem[problemID], m)
	t.mu.Unlock()
}

func (t *Transcript) SetMessages(problemID string, msgs []Message) {
	t.mu.Lock()
	replaced := make([]Message, len(msgs))
	copy(replaced, msgs)
	t.byProblem[problemID] = replaced
	t.mu.Unlock()
}

// Messages returns a copy of the list for problemID, empty if absent.
func (t *Transcript) Messages(problemID string) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.byProblem[problemID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
