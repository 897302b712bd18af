// Package asynctask holds the request lifecycle shared by every long-running
// backend action: Idle -> Pending -> Succeeded | Failed, with request ids used
// to fence out responses that belong to a superseded submission.
//
// A Controller is not safe for concurrent use. It is meant to live inside a
// Bubble Tea model and be mutated only from Update; the backend call itself
// runs in a tea.Cmd and reports back with the request id it was issued.
package asynctask

import apperrors "mindboost/internal/platform/errors"

type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is the read-only view of a task handed to renderers.
// Result is meaningful only when Status is Succeeded, ErrMessage only when
// Status is Failed.
type Snapshot[R any] struct {
	Status     Status
	Result     R
	ErrMessage string
	RequestID  uint64
}

// Controller drives one task instance. ready is the non-empty precondition
// for inputs; fallback is shown when a failure carries no backend detail.
type Controller[I, R any] struct {
	ready    func(I) bool
	fallback string

	status     Status
	result     R
	errMessage string
	requestID  uint64
	input      I
}

func New[I, R any](ready func(I) bool, fallback string) Controller[I, R] {
	return Controller[I, R]{ready: ready, fallback: fallback}
}

func (c Controller[I, R]) Status() Status { return c.status }

func (c Controller[I, R]) Pending() bool { return c.status == Pending }

// RequestID returns the id of the most recently issued submission.
func (c Controller[I, R]) RequestID() uint64 { return c.requestID }

// Input returns the input of the current submission.
func (c Controller[I, R]) Input() I { return c.input }

func (c Controller[I, R]) Result() (R, bool) {
	if c.status != Succeeded {
		var zero R
		return zero, false
	}
	return c.result, true
}

func (c Controller[I, R]) ErrMessage() (string, bool) {
	if c.status != Failed {
		return "", false
	}
	return c.errMessage, true
}

func (c Controller[I, R]) Snapshot() Snapshot[R] {
	s := Snapshot[R]{Status: c.status, RequestID: c.requestID}
	if c.status == Succeeded {
		s.Result = c.result
	}
	if c.status == Failed {
		s.ErrMessage = c.errMessage
	}
	return s
}

// CanSubmit reports whether the submit affordance is enabled for input.
func (c Controller[I, R]) CanSubmit(input I) bool {
	return c.status != Pending && c.inputReady(input)
}

// Submit starts a new submission. It declines, leaving the controller
// untouched, when input fails the precondition or a submission is pending.
func (c *Controller[I, R]) Submit(input I) (uint64, bool) {
	if !c.CanSubmit(input) {
		return 0, false
	}
	return c.begin(input), true
}

// Supersede starts a new submission even while one is pending. The pending
// one keeps running but its response will be discarded.
func (c *Controller[I, R]) Supersede(input I) (uint64, bool) {
	if !c.inputReady(input) {
		return 0, false
	}
	return c.begin(input), true
}

// Complete applies the outcome of submission requestID. It reports false and
// changes nothing when requestID is not the current pending submission.
func (c *Controller[I, R]) Complete(requestID uint64, result R, err error) bool {
	if c.status != Pending || requestID != c.requestID {
		return false
	}
	var zero R
	if err != nil {
		c.status = Failed
		c.result = zero
		c.errMessage = apperrors.Message(err, c.fallback)
		return true
	}
	c.status = Succeeded
	c.result = result
	c.errMessage = ""
	return true
}

// Reset drops any result or error and returns to Idle. A pending submission
// is fenced out: its response will no longer match.
func (c *Controller[I, R]) Reset() {
	var zeroR R
	var zeroI I
	if c.status == Pending {
		c.requestID++
	}
	c.status = Idle
	c.result = zeroR
	c.errMessage = ""
	c.input = zeroI
}

func (c *Controller[I, R]) begin(input I) uint64 {
	var zero R
	c.requestID++
	c.status = Pending
	c.result = zero
	c.errMessage = ""
	c.input = input
	return c.requestID
}

func (c Controller[I, R]) inputReady(input I) bool {
	if c.ready == nil {
		return true
	}
	return c.ready(input)
}
