package voice

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is one completed user-utterance/AI-reply exchange. Kept in
// memory for the lifetime of the page session only.
type Message struct {
	ID        string    `json:"id"`
	UserText  string    `json:"userText"`
	AIText    string    `json:"aiText"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the in-memory ordered log of completed exchanges
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// NewConversation returns an empty conversation log
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append records a completed exchange and returns it
func (c *Conversation) Append(userText, aiText string) Message {
	msg := Message{
		ID:        uuid.New().String(),
		UserText:  userText,
		AIText:    aiText,
		Timestamp: time.Now(),
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg
}

// Messages returns a copy of the log in order
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Clear empties the log
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}
