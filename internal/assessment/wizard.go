package assessment

import (
	"errors"
	"fmt"
)

// Step is one page of the assessment wizard.
type Step int

const (
	StepPersonal Step = iota
	StepMedical
	StepMental
	StepInsurance
	StepReview
)

// TotalSteps is the number of wizard steps.
const TotalSteps = 5

func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "personal"
	case StepMedical:
		return "medical"
	case StepMental:
		return "mental"
	case StepInsurance:
		return "insurance"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ErrInvalidTransition is returned for any move not present in the
// transition table, including skipping ahead to an unvisited step.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// forward is the transition table for Next. Review has no forward edge;
// leaving it happens through submission.
var forward = map[Step]Step{
	StepPersonal:  StepMedical,
	StepMedical:   StepMental,
	StepMental:    StepInsurance,
	StepInsurance: StepReview,
}

// Wizard walks the five steps strictly in order. A step becomes reachable
// by direct navigation only once it has been reached at least once.
type Wizard struct {
	current Step
	reached Step
}

func NewWizard() *Wizard {
	return &Wizard{current: StepPersonal, reached: StepPersonal}
}

func (w *Wizard) Current() Step { return w.current }

// Reached reports whether the step has been visited at least once.
func (w *Wizard) Reached(s Step) bool { return s <= w.reached }

func (w *Wizard) Next() error {
	next, ok := forward[w.current]
	if !ok {
		return ErrInvalidTransition
	}
	w.current = next
	if next > w.reached {
		w.reached = next
	}
	return nil
}

// Previous steps back one page and is always allowed down to the first step.
func (w *Wizard) Previous() error {
	if w.current == StepPersonal {
		return ErrInvalidTransition
	}
	w.current--
	return nil
}

// Goto jumps directly to a step. Only previously-reached steps are legal
// targets, so skipping ahead is rejected.
func (w *Wizard) Goto(s Step) error {
	if s < StepPersonal || s > StepReview {
		return ErrInvalidTransition
	}
	if s > w.reached {
		return ErrInvalidTransition
	}
	w.current = s
	return nil
}

// Reset returns the wizard to the first step with no progress retained.
func (w *Wizard) Reset() {
	w.current = StepPersonal
	w.reached = StepPersonal
}
