package wizard

import "github.com/kingrea/tourdesk/internal/draft"

// Mode selects how the controller lets the operator move between steps.
type Mode int

const (
	// ModeCreate walks the steps linearly; forward moves are gated.
	ModeCreate Mode = iota
	// ModeEdit applies the same gates to Next but allows jumping to any step.
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Outcome is the result of a forward move.
type Outcome int

const (
	// OutcomeRejected means a predicate failed; issues were recorded on the draft.
	OutcomeRejected Outcome = iota
	// OutcomeAdvanced means the controller moved to the next step.
	OutcomeAdvanced
	// OutcomeSubmit means the draft is ready and the caller should submit it.
	OutcomeSubmit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeSubmit:
		return "submit"
	default:
		return "rejected"
	}
}

// Controller owns the draft for one editing session and tracks the current
// step.
type Controller struct {
	mode    Mode
	current Step
	draft   *draft.Draft
}

// NewCreate starts a linear session. A nil draft starts from draft.New().
func NewCreate(d *draft.Draft) *Controller {
	if d == nil {
		d = draft.New()
	}
	return &Controller{mode: ModeCreate, current: First, draft: d}
}

// NewEdit starts a direct-access session over a hydrated draft.
func NewEdit(d *draft.Draft) *Controller {
	if d == nil {
		d = draft.New()
	}
	return &Controller{mode: ModeEdit, current: First, draft: d}
}

func (c *Controller) Mode() Mode          { return c.mode }
func (c *Controller) Current() Step       { return c.current }
func (c *Controller) Draft() *draft.Draft { return c.draft }
func (c *Controller) IsLast() bool        { return c.current == Last }
func (c *Controller) CanGoBack() bool     { return c.current > First }

// CanAdvance reports whether Next would be accepted from the current step.
func (c *Controller) CanAdvance() bool { return Complete(c.current, c.draft) }

// Progress reports each step's completeness in order.
func (c *Controller) Progress() []bool {
	steps := Steps()
	out := make([]bool, len(steps))
	for i, step := range steps {
		out[i] = Complete(step, c.draft)
	}
	return out
}

// Next moves forward when the current step is complete. On the last step it
// asks for submission instead of advancing. A rejected move records the
// step's issues on the draft.
func (c *Controller) Next() Outcome {
	issues := Issues(c.current, c.draft)
	if len(issues) > 0 {
		c.draft.RecordErrors(issues)
		return OutcomeRejected
	}
	if c.current == Last {
		return c.Submit()
	}
	c.current++
	return OutcomeAdvanced
}

// Back moves to the previous step. It is refused on the first step.
func (c *Controller) Back() bool {
	if c.current <= First {
		return false
	}
	c.current--
	return true
}

// GoTo jumps directly to step. Only edit sessions may jump; create sessions
// move with Next and Back.
func (c *Controller) GoTo(step Step) bool {
	if c.mode != ModeEdit || !step.Valid() {
		return false
	}
	c.current = step
	return true
}

// Submit checks every step. When one is incomplete its issues are recorded
// and the submission is refused; the current step does not change.
func (c *Controller) Submit() Outcome {
	if step, incomplete := FirstIncomplete(c.draft); incomplete {
		c.draft.RecordErrors(Issues(step, c.draft))
		return OutcomeRejected
	}
	return OutcomeSubmit
}

// Blocking returns the first incomplete step, if any.
func (c *Controller) Blocking() (Step, bool) {
	return FirstIncomplete(c.draft)
}

// Restart replaces the draft with a fresh one and returns to the first step.
// It is used after a successful create.
func (c *Controller) Restart() {
	c.draft = draft.New()
	c.current = First
}

// Replace swaps in a new draft while keeping the current step, e.g. after an
// update returns the stored tour.
func (c *Controller) Replace(d *draft.Draft) {
	if d != nil {
		c.draft = d
	}
}
