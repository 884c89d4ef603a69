package login

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"credential-service/internal/domain/student"
)

// Status is the three-valued outcome of credential validation. It drives
// both the feedback icon and the decision to reveal the dashboard view.
type Status string

const (
	// StatusArrow is the neutral state shown while the password is too
	// short to be worth checking.
	StatusArrow Status = "arrow"
	// StatusTick means the entered credentials matched a stored record.
	StatusTick Status = "tick"
	// StatusWrong means no stored record matched.
	StatusWrong Status = "wrong"
)

// MinPasswordLength is the password length below which no lookup is issued.
const MinPasswordLength = 8

// RevealDelay is how long the tick is shown before the dashboard reveal.
const RevealDelay = time.Second

// ErrInvalidCredentials is returned by Submit when the current status is
// StatusWrong. The message is surfaced to the user verbatim.
var ErrInvalidCredentials = errors.New("Invalid email or password. Please try again.")

// Repository defines the interface for credential lookups against the
// student record store. Implementations return nil (not an error) when no
// record matches.
type Repository interface {
	FindByCredentials(ctx context.Context, email, password string) (*student.Student, error)
}

// Machine is the credential validation state machine.
//
// Transitions are serialized through an internal mutex, so callers and the
// scheduler's timer goroutines may drive it concurrently. Every transition
// cancels the delayed action scheduled by a prior transition; the reveal
// timer from an old tick can never fire after the state has moved on.
type Machine struct {
	repo  Repository
	sched Scheduler
	log   *zap.Logger

	mu            sync.Mutex
	status        Status
	userName      string
	loggedIn      bool
	cancelPending func()
	closed        bool
}

// NewMachine creates a validation machine in the arrow state.
func NewMachine(repo Repository, sched Scheduler, log *zap.Logger) *Machine {
	if sched == nil {
		sched = NewTimerScheduler()
	}
	return &Machine{
		repo:   repo,
		sched:  sched,
		log:    log,
		status: StatusArrow,
	}
}

// SetCredentials is the transition fired on every change to the email or
// password field.
//
// A password shorter than MinPasswordLength (including a cleared field)
// forces the arrow state without touching the record store. Once the
// password qualifies, the store is queried for an exact (email, password)
// match: a match moves to tick, adopts the matched record's name, and
// schedules the delayed dashboard reveal; anything else moves to wrong.
// A lookup failure is treated as a non-match, matching the established
// behavior of the flow, but is logged so the signal is not lost.
func (m *Machine) SetCredentials(ctx context.Context, email, password string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return m.status
	}

	m.cancelPendingLocked()

	if len(password) < MinPasswordLength {
		m.status = StatusArrow
		return m.status
	}

	rec, err := m.repo.FindByCredentials(ctx, email, password)
	if err != nil {
		m.log.Warn("credential lookup failed, treating as no match",
			zap.String("email", email),
			zap.Error(err),
		)
		m.status = StatusWrong
		return m.status
	}

	if rec == nil {
		m.status = StatusWrong
		return m.status
	}

	m.userName = rec.Name
	m.status = StatusTick
	m.log.Debug("credentials matched", zap.String("email", email), zap.String("name", rec.Name))
	m.scheduleRevealLocked()
	return m.status
}

// Submit re-evaluates the current status without re-querying the store.
// On tick it schedules the delayed reveal again; on wrong it returns
// ErrInvalidCredentials; on arrow it does nothing.
func (m *Machine) Submit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	switch m.status {
	case StatusTick:
		m.cancelPendingLocked()
		m.scheduleRevealLocked()
		return nil
	case StatusWrong:
		return ErrInvalidCredentials
	default:
		return nil
	}
}

// Status returns the current validation status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// UserName returns the display name adopted from the last matched record.
func (m *Machine) UserName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userName
}

// LoggedIn reports whether the delayed reveal has fired.
func (m *Machine) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn
}

// Close tears the machine down, cancelling any pending delayed action.
// A closed machine ignores further events.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelPendingLocked()
	m.closed = true
}

func (m *Machine) scheduleRevealLocked() {
	m.cancelPending = m.sched.Schedule(RevealDelay, m.reveal)
}

func (m *Machine) reveal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.cancelPending = nil
	m.loggedIn = true
}

func (m *Machine) cancelPendingLocked() {
	if m.cancelPending != nil {
		m.cancelPending()
		m.cancelPending = nil
	}
}
