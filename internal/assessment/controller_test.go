package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/api"
)

// formBackend is a minimal fake for the two form endpoints, counting
// submit requests so tests can assert that validation stays local.
type formBackend struct {
	hasExisting bool
	existing    Record
	submitCalls atomic.Int64
	submitCode  int
	submitBody  string
}

func (b *formBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthcare/form/me/", func(w http.ResponseWriter, r *http.Request) {
		if !b.hasExisting {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "No assessment found."})
			return
		}
		json.NewEncoder(w).Encode(b.existing)
	})
	mux.HandleFunc("/healthcare/form/submit/", func(w http.ResponseWriter, r *http.Request) {
		b.submitCalls.Add(1)
		if b.submitCode != 0 {
			w.WriteHeader(b.submitCode)
			w.Write([]byte(b.submitBody))
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"id":      "01JX5N3T9GQ3M6W3C8K3V9XQ4A",
			"message": "Assessment submitted successfully.",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func walkToReview(t *testing.T, c *Controller) {
	t.Helper()
	for i := 0; i < TotalSteps-1; i++ {
		if err := c.Next(); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if c.Step() != StepReview {
		t.Fatalf("step = %v, want review", c.Step())
	}
}

func TestController_StartFreshOn404(t *testing.T) {
	b := &formBackend{}
	c := NewController(api.NewClient(b.server(t).URL))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.ReadOnly() {
		t.Fatal("fresh form must be editable")
	}
}

func TestController_StartExistingIsReadOnly(t *testing.T) {
	b := &formBackend{hasExisting: true, existing: validRecord()}
	c := NewController(api.NewClient(b.server(t).URL))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !c.ReadOnly() {
		t.Fatal("existing record must make the controller read-only")
	}
	if c.Record().Name != "Asha Verma" {
		t.Fatalf("record not prefilled: %+v", c.Record())
	}

	if err := c.Next(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("next on read-only: %v", err)
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("submit on read-only: %v", err)
	}
}

func TestController_SubmitRequiresReviewStep(t *testing.T) {
	b := &formBackend{}
	c := NewController(api.NewClient(b.server(t).URL))
	_ = c.Start(context.Background())

	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotAtReview) {
		t.Fatalf("submit at first step: %v", err)
	}
	if n := b.submitCalls.Load(); n != 0 {
		t.Fatalf("submit calls = %d, want 0", n)
	}
}

func TestController_ValidationBlocksWithoutNetwork(t *testing.T) {
	b := &formBackend{}
	c := NewController(api.NewClient(b.server(t).URL))
	_ = c.Start(context.Background())

	*c.Record() = validRecord()
	c.Record().Age = 150
	walkToReview(t, c)

	err := c.Submit(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := c.FieldErrors()["age"]; got != "Age must be a valid number between 1 and 120" {
		t.Fatalf("age error = %q", got)
	}
	if n := b.submitCalls.Load(); n != 0 {
		t.Fatalf("submit calls = %d, want 0", n)
	}

	// Fixing the field clears the inline error on the next attempt.
	c.Record().Age = 34
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit after fix: %v", err)
	}
	if len(c.FieldErrors()) != 0 {
		t.Fatalf("field errors not cleared: %v", c.FieldErrors())
	}
}

func TestController_SubmitOnce(t *testing.T) {
	b := &formBackend{}
	c := NewController(api.NewClient(b.server(t).URL))
	_ = c.Start(context.Background())

	*c.Record() = validRecord()
	walkToReview(t, c)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.Record().ID == "" {
		t.Fatal("record id not set from response")
	}
	if !c.ReadOnly() {
		t.Fatal("controller must be read-only after submission")
	}

	if err := c.Submit(context.Background()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit: %v", err)
	}
	if n := b.submitCalls.Load(); n != 1 {
		t.Fatalf("submit calls = %d, want 1", n)
	}
}

func TestController_ServerFieldErrorsMappedBack(t *testing.T) {
	b := &formBackend{
		submitCode: http.StatusBadRequest,
		submitBody: `{"contact_details":["Enter a valid phone number."]}`,
	}
	c := NewController(api.NewClient(b.server(t).URL))
	_ = c.Start(context.Background())

	*c.Record() = validRecord()
	walkToReview(t, c)

	err := c.Submit(context.Background())
	if err == nil {
		t.Fatal("expected submit error")
	}
	if got := c.FieldErrors()["contact_details"]; got != "Enter a valid phone number." {
		t.Fatalf("contact_details error = %q", got)
	}
	if c.ReadOnly() {
		t.Fatal("rejected submission must stay editable")
	}
}

func TestController_Cancel(t *testing.T) {
	b := &formBackend{}
	c := NewController(api.NewClient(b.server(t).URL))
	_ = c.Start(context.Background())

	*c.Record() = validRecord()
	walkToReview(t, c)

	if c.Cancel(func() bool { return false }) {
		t.Fatal("declined confirmation must keep the form")
	}
	if c.Record().Name != "Asha Verma" {
		t.Fatal("form discarded despite declined confirmation")
	}

	if !c.Cancel(func() bool { return true }) {
		t.Fatal("confirmed cancel must discard")
	}
	if c.Record().Name != "" || c.Step() != StepPersonal {
		t.Fatalf("state after cancel: %+v step=%v", c.Record(), c.Step())
	}
}
