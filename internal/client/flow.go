package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"credential-service/internal/usecase/login"
	"credential-service/pkg/password"
)

// Messages surfaced by the signup flow, shown to the user verbatim.
const (
	MsgCheckEmail = "Dear Innovator, Your personalized AI-powered dashboard is now ready! " +
		"Please check your email for login credentials."
	MsgSendFailed  = "Failed to send email. Please try again."
	MsgLoginFailed = "Google login failed. Please try again."
)

// IdleReturnDelay is how long the success view stays up before the flow
// returns to the idle login view.
const IdleReturnDelay = 5 * time.Second

// CredentialSender posts generated credentials to the provisioning endpoint.
type CredentialSender interface {
	SendEmail(ctx context.Context, email, password string) error
}

// Flow drives the OAuth-triggered provisioning path: once an external
// sign-in completes, it generates a password, optimistically shows the
// "check your email" message, posts to the provisioning endpoint, and on
// success schedules the delayed return to the idle view with the signup
// button suppressed.
//
// Like the validation machine, state is serialized through a mutex and a
// new transition cancels the pending delayed action.
type Flow struct {
	api   CredentialSender
	sched login.Scheduler
	gen   func() string
	log   *zap.Logger

	mu            sync.Mutex
	successMsg    string
	errorMsg      string
	emailSent     bool
	userName      string
	oauthUser     bool
	idle          bool
	cancelPending func()
	closed        bool
}

// NewFlow creates a signup flow posting through api. sched and gen may be
// nil, defaulting to real timers and the base36 password generator.
func NewFlow(api CredentialSender, sched login.Scheduler, gen func() string, log *zap.Logger) *Flow {
	if sched == nil {
		sched = login.NewTimerScheduler()
	}
	if gen == nil {
		gen = password.Generate
	}
	return &Flow{
		api:   api,
		sched: sched,
		gen:   gen,
		log:   log,
		idle:  true,
	}
}

// CompleteSignup handles a successful external sign-in for the given email.
// displayName may be empty; the flow falls back to "User".
//
// No retry is attempted on failure; the generated password is discarded and
// the user is expected to start over.
func (f *Flow) CompleteSignup(ctx context.Context, email, displayName string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return errors.New("signup flow is closed")
	}
	f.cancelPendingLocked()

	generated := f.gen()

	// Optimistic: the message goes up before the request is made
	f.successMsg = MsgCheckEmail
	f.errorMsg = ""
	f.idle = false
	f.mu.Unlock()

	err := f.api.SendEmail(ctx, email, generated)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("signup flow is closed")
	}

	if err != nil {
		f.successMsg = ""
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			f.log.Warn("provisioning request rejected",
				zap.String("email", email),
				zap.Int("status", statusErr.Code),
			)
			f.errorMsg = MsgSendFailed
		} else {
			f.log.Warn("provisioning request failed", zap.String("email", email), zap.Error(err))
			f.errorMsg = MsgLoginFailed
		}
		return err
	}

	f.emailSent = true
	f.oauthUser = true
	if displayName != "" {
		f.userName = displayName
	} else {
		f.userName = "User"
	}

	f.log.Info("signup provisioned, scheduling return to idle", zap.String("email", email))
	f.cancelPending = f.sched.Schedule(IdleReturnDelay, f.returnToIdle)
	return nil
}

func (f *Flow) returnToIdle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.cancelPending = nil
	f.idle = true
}

// SuccessMessage returns the current success banner text, if any.
func (f *Flow) SuccessMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.successMsg
}

// ErrorMessage returns the current error banner text, if any.
func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorMsg
}

// EmailSent reports whether the credential email went out.
func (f *Flow) EmailSent() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emailSent
}

// UserName returns the display name adopted from the external sign-in.
func (f *Flow) UserName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userName
}

// Idle reports whether the flow is showing the idle login view.
func (f *Flow) Idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idle
}

// ShowSignupButton reports whether the external signup button is offered.
// It is suppressed once the user signed in externally or an email went out.
func (f *Flow) ShowSignupButton() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.oauthUser && !f.emailSent
}

// Close tears the flow down, cancelling any pending delayed action.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelPendingLocked()
	f.closed = true
}

func (f *Flow) cancelPendingLocked() {
	if f.cancelPending != nil {
		f.cancelPending()
		f.cancelPending = nil
	}
}
