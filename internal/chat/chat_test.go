package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := store.Open(dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestNew_SeedsGreeting(t *testing.T) {
	c := New(ScriptedResponder{}, newTestStore(t), "Alice")

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Role != RoleAssistant {
		t.Fatalf("role = %q", msgs[0].Role)
	}
	if !strings.HasPrefix(msgs[0].Content, "Hello Alice!") {
		t.Fatalf("greeting = %q", msgs[0].Content)
	}

	anon := New(ScriptedResponder{}, newTestStore(t), "")
	if !strings.HasPrefix(anon.Messages()[0].Content, "Hello there!") {
		t.Fatalf("anonymous greeting = %q", anon.Messages()[0].Content)
	}
}

func TestSend_ScriptedReply(t *testing.T) {
	c := New(ScriptedResponder{}, newTestStore(t), "Alice")

	reply, err := c.Send(context.Background(), "I have a headache")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Role != RoleAssistant {
		t.Fatalf("role = %q", reply.Role)
	}
	if reply.Content != "I'm analyzing your query. Please provide more details about your symptoms or health concern." {
		t.Fatalf("reply = %q", reply.Content)
	}

	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[1].Role != RoleUser || msgs[1].Content != "I have a headache" {
		t.Fatalf("user message = %+v", msgs[1])
	}
}

func TestSend_BlankInputIsNoOp(t *testing.T) {
	c := New(ScriptedResponder{}, newTestStore(t), "Alice")

	if _, err := c.Send(context.Background(), "   "); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(c.Messages()) != 1 {
		t.Fatalf("blank input must not add messages, got %d", len(c.Messages()))
	}
	if len(c.Conversations()) != 0 {
		t.Fatal("blank input must not record a conversation")
	}
}

func TestSend_RecordsAndPersistsConversations(t *testing.T) {
	st := newTestStore(t)
	c := New(ScriptedResponder{}, st, "Alice")

	if _, err := c.Send(context.Background(), "first question"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := c.Send(context.Background(), "second question"); err != nil {
		t.Fatalf("send: %v", err)
	}

	convs := c.Conversations()
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	// Newest first.
	if convs[0].Title != "second question" {
		t.Fatalf("convs[0].Title = %q", convs[0].Title)
	}
	if convs[0].ID == convs[1].ID {
		t.Fatal("conversation ids must be unique")
	}

	// A fresh chat over the same store sees the cached list.
	again := New(ScriptedResponder{}, st, "Alice")
	if got := again.Conversations(); len(got) != 2 || got[0].Title != "second question" {
		t.Fatalf("restored conversations = %+v", got)
	}
}

func TestSend_TruncatesTitleAndPreview(t *testing.T) {
	c := New(ScriptedResponder{}, newTestStore(t), "Alice")

	long := strings.Repeat("x", 40)
	if _, err := c.Send(context.Background(), long); err != nil {
		t.Fatalf("send: %v", err)
	}

	conv := c.Conversations()[0]
	if conv.Title != strings.Repeat("x", 30)+"..." {
		t.Fatalf("title = %q", conv.Title)
	}
	// The scripted reply is longer than 50 runes.
	if want := "I'm analyzing your query. Please provide more deta..."; conv.Preview != want {
		t.Fatalf("preview = %q, want %q", conv.Preview, want)
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	if got := truncate("सिरदर्द और बुखार", 5); got != "सिरदर"+"..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 30); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
