package tracker

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Kind names a tracked operation.
type Kind int

const (
	RosterFetch Kind = iota
	HCPCreate
	FormLog
	ChatLog
)

func (k Kind) String() string {
	switch k {
	case RosterFetch:
		return "roster-fetch"
	case HCPCreate:
		return "hcp-create"
	case FormLog:
		return "form-log"
	case ChatLog:
		return "chat-log"
	}
	return "unknown"
}

// Status is the lifecycle position of an operation.
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

// MarshalText renders the status name in JSON snapshots.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is a point-in-time copy of an operation's lifecycle.
//
// Err is empty unless Status is Failed. Result holds the value of the most
// recent success and survives later Begin and Fail transitions.
type State[T any] struct {
	Status    Status
	Err       string
	Result    T
	HasResult bool
	Attempt   string
}

// Summary is the result-free part of a State, used in snapshots.
type Summary struct {
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
	Attempt string `json:"attempt,omitempty"`
}

// Op tracks request/success/failure transitions for one operation kind.
//
// Concurrent attempts are not serialised: whichever completes last decides
// the final state, even if a newer attempt has started since.
type Op[T any] struct {
	kind   Kind
	logger *slog.Logger

	mu    sync.Mutex
	state State[T]
}

// New creates an idle Op for kind. A nil logger uses slog.Default().
func New[T any](kind Kind, logger *slog.Logger) *Op[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Op[T]{kind: kind, logger: logger}
}

// Kind returns the operation kind this Op tracks.
func (o *Op[T]) Kind() Kind { return o.kind }

// Begin moves the operation to Pending, clears any previous error and
// returns an id for the new attempt.
func (o *Op[T]) Begin() string {
	attempt := uuid.New().String()

	o.mu.Lock()
	from := o.state.Status
	o.state.Status = Pending
	o.state.Err = ""
	o.state.Attempt = attempt
	o.mu.Unlock()

	o.logger.Debug("operation transition", "kind", o.kind.String(), "from", from.String(), "to", Pending.String(), "attempt", attempt)
	return attempt
}

// Succeed records result and moves the operation to Succeeded.
func (o *Op[T]) Succeed(attempt string, result T) {
	o.mu.Lock()
	stale := o.state.Attempt != attempt
	o.state.Status = Succeeded
	o.state.Err = ""
	o.state.Result = result
	o.state.HasResult = true
	o.mu.Unlock()

	o.logTerminal(Succeeded, attempt, stale)
}

// Fail records err and moves the operation to Failed. The previous result
// is kept. A nil err is recorded as "unknown error".
func (o *Op[T]) Fail(attempt string, err error) {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	o.mu.Lock()
	stale := o.state.Attempt != attempt
	o.state.Status = Failed
	o.state.Err = msg
	o.mu.Unlock()

	o.logTerminal(Failed, attempt, stale)
}

func (o *Op[T]) logTerminal(to Status, attempt string, stale bool) {
	if stale {
		o.logger.Warn("stale completion applied", "kind", o.kind.String(), "to", to.String(), "attempt", attempt)
		return
	}
	o.logger.Debug("operation transition", "kind", o.kind.String(), "to", to.String(), "attempt", attempt)
}

// State returns a copy of the current state.
func (o *Op[T]) State() State[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Summary returns the current status, error and attempt id.
func (o *Op[T]) Summary() Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Summary{Status: o.state.Status, Error: o.state.Err, Attempt: o.state.Attempt}
}

// Pending reports whether the operation is currently in flight.
func (o *Op[T]) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status == Pending
}
