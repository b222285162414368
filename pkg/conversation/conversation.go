package conversation

import (
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FallbackError is shown when a failure carries no message of its own.
const FallbackError = "Failed to get response. Please try again."

// Message is one entry of the conversation. Messages are appended and never
// edited.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is handed out by Submit. Generation identifies the submit so that
// a completion arriving after a reset can be recognized as stale.
type Request struct {
	Generation uint64
	Text       string
}

// Conversation is the chat panel's state machine: the message history, a
// single pending request and the last error.
//
// It is not safe for concurrent use; the UI event loop owns it.
type Conversation struct {
	messages   []Message
	pending    bool
	lastErr    string
	generation uint64
}

func New() *Conversation {
	return &Conversation{}
}

// Submit accepts text unless it is blank or a request is already pending.
// On accept the user message is appended, the error cleared and the state
// moves to pending.
func (c *Conversation) Submit(text string) (Request, bool) {
	text = strings.TrimSpace(text)
	if text == "" || c.pending {
		return Request{}, false
	}
	c.generation++
	c.messages = append(c.messages, Message{Role: RoleUser, Content: text})
	c.lastErr = ""
	c.pending = true
	return Request{Generation: c.generation, Text: text}, true
}

// Resolve completes the request tagged gen with reply. It always leaves the
// pending state; the reply is only appended when gen is current.
func (c *Conversation) Resolve(gen uint64, reply string) bool {
	c.pending = false
	if gen != c.generation {
		return false
	}
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: reply})
	c.lastErr = ""
	return true
}

// Fail completes the request tagged gen with an error. The user message that
// started the request stays in place.
func (c *Conversation) Fail(gen uint64, err error) bool {
	c.pending = false
	if gen != c.generation {
		return false
	}
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = FallbackError
	}
	c.lastErr = msg
	return true
}

// Reset clears history and error. An in-flight request keeps running and
// still clears pending when it completes, but its result is dropped.
func (c *Conversation) Reset() {
	c.messages = nil
	c.lastErr = ""
	c.generation++
}

func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int { return len(c.messages) }

func (c *Conversation) Pending() bool { return c.pending }

// Err returns the last error text, if any.
func (c *Conversation) Err() (string, bool) {
	return c.lastErr, c.lastErr != ""
}

func (c *Conversation) Generation() uint64 { return c.generation }

// ShowWelcome reports whether the welcome message should be displayed.
func (c *Conversation) ShowWelcome() bool {
	return len(c.messages) == 0 && !c.pending
}

// LastReply returns the content of the most recent assistant message.
func (c *Conversation) LastReply() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i].Content, true
		}
	}
	return "", false
}
