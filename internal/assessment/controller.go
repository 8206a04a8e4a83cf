// Package assessment implements the multi-step health-assessment form: the
// wire record and its validation, the wizard state machine and the
// submission controller.
package assessment

import (
	"context"
	"errors"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/api"
)

const (
	submitPath = "/healthcare/form/submit/"
	myFormPath = "/healthcare/form/me/"
)

var (
	// ErrValidation means submission was blocked locally; FieldErrors
	// carries the per-field messages. No network call was made.
	ErrValidation = errors.New("assessment validation failed")
	// ErrAlreadySubmitted means a record already exists for this user and
	// only the read-only review is reachable.
	ErrAlreadySubmitted = errors.New("assessment already submitted")
	// ErrSubmissionInFlight guards against double-clicks while a submit is
	// still pending.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrNotAtReview means Submit was called before the review step.
	ErrNotAtReview = errors.New("submission is only possible from the review step")
)

// Controller collects a Record across the wizard steps and submits it
// exactly once. All methods run on the caller's single flow; the only
// concurrency safeguard is the in-flight submit guard, mirroring the
// disabled submit button of the original UI.
type Controller struct {
	client *api.Client
	wizard *Wizard

	record      Record
	fieldErrors map[string]string

	existing   bool
	submitted  bool
	submitting bool
}

func NewController(c *api.Client) *Controller {
	return &Controller{
		client:      c,
		wizard:      NewWizard(),
		fieldErrors: map[string]string{},
	}
}

type submitResp struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Start asks the backend once whether this user already has a submitted
// record. If so the wizard is bypassed entirely and the controller is
// read-only with the record prefilled; a 404 means a fresh form.
func (c *Controller) Start(ctx context.Context) error {
	var rec Record
	err := c.client.Get(ctx, myFormPath, &rec)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil
		}
		return err
	}
	c.record = rec
	c.existing = true
	return nil
}

// ReadOnly reports whether only the review presentation is reachable.
func (c *Controller) ReadOnly() bool { return c.existing || c.submitted }

// Record returns the form state for field-by-field mutation. Mutations on a
// read-only controller are pointless but harmless; Submit stays blocked.
func (c *Controller) Record() *Record { return &c.record }

// FieldErrors holds the inline errors from the last blocked submission.
func (c *Controller) FieldErrors() map[string]string { return c.fieldErrors }

func (c *Controller) Step() Step { return c.wizard.Current() }

func (c *Controller) Next() error {
	if c.ReadOnly() {
		return ErrAlreadySubmitted
	}
	return c.wizard.Next()
}

func (c *Controller) Previous() error {
	if c.ReadOnly() {
		return ErrAlreadySubmitted
	}
	return c.wizard.Previous()
}

func (c *Controller) Goto(s Step) error {
	if c.ReadOnly() {
		return ErrAlreadySubmitted
	}
	return c.wizard.Goto(s)
}

// Cancel discards all in-memory form state after the caller confirms.
// It reports whether the form was actually discarded.
func (c *Controller) Cancel(confirm func() bool) bool {
	if confirm != nil && !confirm() {
		return false
	}
	c.record = Record{}
	c.fieldErrors = map[string]string{}
	c.wizard.Reset()
	return true
}

// Submit validates and posts the aggregated record. Validation failures and
// in-flight submissions block without touching the network; server-side 400
// field errors are mapped back onto FieldErrors.
func (c *Controller) Submit(ctx context.Context) error {
	if c.ReadOnly() {
		return ErrAlreadySubmitted
	}
	if c.wizard.Current() != StepReview {
		return ErrNotAtReview
	}
	if c.submitting {
		return ErrSubmissionInFlight
	}

	if errs := c.record.Validate(); len(errs) > 0 {
		c.fieldErrors = errs
		return ErrValidation
	}
	c.fieldErrors = map[string]string{}

	c.submitting = true
	defer func() { c.submitting = false }()

	var resp submitResp
	if err := c.client.Post(ctx, submitPath, &c.record, &resp); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 400 && len(apiErr.Fields) > 0 {
			c.fieldErrors = apiErr.Fields
		}
		return err
	}

	c.record.ID = resp.ID
	c.submitted = true
	return nil
}
