// Package chat is the client-side AI chat. Messages live only in memory;
// the recent-conversations list is cached in the durable store for the
// dashboard. The assistant is a Responder so a real provider can be slotted
// in later, but the default is the scripted mock.
package chat

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/store"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat bubble. Ephemeral: never persisted.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the dashboard summary of one exchange.
type Conversation struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Preview string    `json:"preview"`
}

// Responder produces the assistant's reply to the latest input.
type Responder interface {
	Reply(ctx context.Context, history []Message, input string) (string, error)
}

const scriptedReply = "I'm analyzing your query. Please provide more details about your symptoms or health concern."

// ScriptedResponder is the mock assistant: a fixed analysis reply after an
// optional simulated thinking delay.
type ScriptedResponder struct {
	Delay time.Duration
}

func (r ScriptedResponder) Reply(ctx context.Context, history []Message, input string) (string, error) {
	if r.Delay > 0 {
		t := time.NewTimer(r.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return scriptedReply, nil
}

type Chat struct {
	responder Responder
	store     *store.Store
	now       func() time.Time

	messages      []Message
	conversations []Conversation
}

// New seeds the greeting message and loads the cached conversation list.
// userName may be empty.
func New(r Responder, st *store.Store, userName string) *Chat {
	if userName == "" {
		userName = "there"
	}
	c := &Chat{
		responder: r,
		store:     st,
		now:       time.Now,
	}
	c.messages = []Message{{
		Role:      RoleAssistant,
		Content:   "Hello " + userName + "! I'm your HealthBridge AI assistant. How can I help you with your health concerns today?",
		Timestamp: c.now(),
	}}
	st.GetJSON(store.KeyConversations, &c.conversations)
	return c
}

// Send appends the user message, obtains the assistant reply, records a
// conversation summary and persists the recent list.
func (c *Chat) Send(ctx context.Context, input string) (Message, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Message{}, nil
	}

	c.messages = append(c.messages, Message{
		Role:      RoleUser,
		Content:   input,
		Timestamp: c.now(),
	})

	content, err := c.responder.Reply(ctx, c.messages, input)
	if err != nil {
		return Message{}, err
	}

	reply := Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, reply)

	conv := Conversation{
		ID:      newConversationID(c.now()),
		Title:   truncate(input, 30),
		Date:    c.now(),
		Preview: truncate(content, 50),
	}
	c.conversations = append([]Conversation{conv}, c.conversations...)
	_ = c.store.SetJSON(store.KeyConversations, c.conversations)

	return reply, nil
}

func (c *Chat) Messages() []Message { return c.messages }

func (c *Chat) Conversations() []Conversation { return c.conversations }

func newConversationID(t time.Time) string {
	id, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
