package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/client"
	"github.com/stemsi/class-subjects/internal/model"
)

// DefaultResetDelay is how long the success notice stays before the form resets.
const DefaultResetDelay = 1500 * time.Millisecond

// User-visible texts.
const (
	NoticeSaved     = "Subjects saved successfully!"
	MsgServerError  = "Server error."
	MsgNoResponse   = "No response from server. Check your backend and CORS settings."
	MsgSubmitFailed = "Submission failed. Please try again."
)

var (
	ErrUnknownClass    = errors.New("unknown class")
	ErrNoClassSelected = errors.New("select a class first")
	ErrSubmitInFlight  = errors.New("a submission is already in progress")
)

// State is the position of the form in its submission lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureKind classifies why a submission did not go through.
type FailureKind string

const (
	FailureServer  FailureKind = "server"
	FailureNetwork FailureKind = "network"
	FailureRequest FailureKind = "request"
)

// ValidationError is returned by Submit when entries fail validation.
// Nothing is sent to the API in that case.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string { return "subjects failed validation" }

// SubmitError is returned by Submit when the transport reports a failure.
type SubmitError struct {
	Kind    FailureKind
	Message string // user-facing
	Err     error
}

func (e *SubmitError) Error() string { return string(e.Kind) + ": " + e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }

// Submitter is the transport the form posts through.
type Submitter interface {
	CreateSubjects(ctx context.Context, req model.CreateSubjectsRequest) (*model.CreateSubjectsResponse, error)
}

// Options tunes a Form. Zero values pick defaults.
type Options struct {
	ResetDelay time.Duration
	Log        zerolog.Logger

	// AfterFunc schedules the post-success reset; defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
}

// Snapshot is a copy of the form state for rendering.
type Snapshot struct {
	State   State
	Class   string
	Open    bool
	Entries []string
	Errors  []string
	Notice  string
	Failure string
}

// Form is the subjects dialog: a selected class, editable subject entries and
// the submission state machine. Only one submission can be in flight.
type Form struct {
	mu         sync.Mutex
	submitter  Submitter
	log        zerolog.Logger
	resetDelay time.Duration
	afterFunc  func(time.Duration, func())

	state   State
	class   string
	open    bool
	entries []string
	errs    []string
	notice  string
	failure string

	// generation invalidates pending resets when the dialog is reset early.
	generation uint64
}

// NewForm creates a Form with a single empty entry.
func NewForm(submitter Submitter, opts Options) *Form {
	delay := opts.ResetDelay
	if delay <= 0 {
		delay = DefaultResetDelay
	}
	after := opts.AfterFunc
	if after == nil {
		after = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return &Form{
		submitter:  submitter,
		log:        opts.Log.With().Str("component", "subjects_form").Logger(),
		resetDelay: delay,
		afterFunc:  after,
		entries:    []string{""},
		errs:       []string{""},
	}
}

// SelectClass picks the class the subjects are entered for.
func (f *Form) SelectClass(name string) error {
	if !model.IsKnownClass(name) {
		return ErrUnknownClass
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.class = name
	return nil
}

// Open shows the subjects dialog for the selected class.
func (f *Form) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.class == "" {
		return ErrNoClassSelected
	}
	f.open = true
	return nil
}

// Close hides the dialog and discards entered subjects.
func (f *Form) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	f.resetLocked()
	return nil
}

// AddEntry appends an empty subject slot.
func (f *Form) AddEntry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, "")
	f.errs = append(f.errs, "")
}

// RemoveEntry drops the slot at index. The last remaining slot is kept.
func (f *Form) RemoveEntry(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) <= 1 || index < 0 || index >= len(f.entries) {
		return
	}
	f.entries = append(f.entries[:index:index], f.entries[index+1:]...)
	if index < len(f.errs) {
		f.errs = append(f.errs[:index:index], f.errs[index+1:]...)
	}
}

// UpdateEntry replaces the text of slot index. Validation waits for Submit.
func (f *Form) UpdateEntry(index int, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.entries) {
		return
	}
	f.entries[index] = value
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:   f.state,
		Class:   f.class,
		Open:    f.open,
		Entries: append([]string(nil), f.entries...),
		Errors:  append([]string(nil), f.errs...),
		Notice:  f.notice,
		Failure: f.failure,
	}
}

// Submit validates the entries and posts them. It returns *ValidationError
// when entries are invalid, *SubmitError when the transport fails and
// ErrSubmitInFlight when called while a submission is pending.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}

	f.state = StateValidating
	f.notice = ""
	f.failure = ""
	result := Validate(f.entries)
	f.errs = result.Errors
	if !result.Valid() {
		f.state = StateInvalid
		f.mu.Unlock()
		f.log.Debug().Strs("errors", result.Errors).Msg("Subjects rejected by validation")
		return &ValidationError{Errors: append([]string(nil), result.Errors...)}
	}

	f.state = StateSubmitting
	req := model.CreateSubjectsRequest{
		Class:    f.class,
		Subjects: CleanSubjects(f.entries),
	}
	f.mu.Unlock()

	_, err := f.submitter.CreateSubjects(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		serr := classify(err)
		f.state = StateFailed
		f.failure = serr.Message
		f.log.Warn().Err(err).
			Str("kind", string(serr.Kind)).
			Str("class", req.Class).
			Msg("Subjects submission failed")
		return serr
	}

	f.state = StateSuccess
	f.notice = NoticeSaved
	f.log.Info().
		Str("class", req.Class).
		Int("subjects", len(req.Subjects)).
		Msg("Subjects saved")

	gen := f.generation
	f.afterFunc(f.resetDelay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.generation == gen && f.state == StateSuccess {
			f.resetLocked()
		}
	})
	return nil
}

// resetLocked returns the dialog to Idle with one empty entry. Caller holds mu.
func (f *Form) resetLocked() {
	f.generation++
	f.state = StateIdle
	f.open = false
	f.entries = []string{""}
	f.errs = []string{""}
	f.notice = ""
	f.failure = ""
}

// classify maps a transport error to its user-facing failure.
func classify(err error) *SubmitError {
	var (
		serverErr  *client.ServerError
		networkErr *client.NetworkError
		requestErr *client.RequestError
	)
	switch {
	case errors.As(err, &serverErr):
		msg := serverErr.Message
		if msg == "" {
			msg = MsgServerError
		}
		return &SubmitError{Kind: FailureServer, Message: msg, Err: err}
	case errors.As(err, &networkErr):
		return &SubmitError{Kind: FailureNetwork, Message: MsgNoResponse, Err: err}
	case errors.As(err, &requestErr):
		msg := requestErr.Error()
		if msg == "" {
			msg = MsgSubmitFailed
		}
		return &SubmitError{Kind: FailureRequest, Message: msg, Err: err}
	default:
		msg := err.Error()
		if msg == "" {
			msg = MsgSubmitFailed
		}
		return &SubmitError{Kind: FailureRequest, Message: msg, Err: err}
	}
}
