package login

import "time"

// Scheduler schedules a delayed action and hands back a cancellation token.
// Cancelling after the action has fired is a no-op.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

// NewTimerScheduler returns a Scheduler backed by time.AfterFunc.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
