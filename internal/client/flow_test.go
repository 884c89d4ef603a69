package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeAction struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

type fakeScheduler struct {
	mu      sync.Mutex
	actions []*fakeAction
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &fakeAction{delay: d, fn: fn}
	s.actions = append(s.actions, a)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		a.cancelled = true
	}
}

func (s *fakeScheduler) fireLast(t *testing.T) {
	s.mu.Lock()
	require.NotEmpty(t, s.actions)
	a := s.actions[len(s.actions)-1]
	s.mu.Unlock()
	a.fn()
}

func newTestServer(t *testing.T, status int, capture *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			*capture = append(*capture, r.URL.Path)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFlow_CompleteSignup_Success(t *testing.T) {
	var paths []string
	srv := newTestServer(t, http.StatusOK, &paths)

	sched := &fakeScheduler{}
	flow := NewFlow(NewAPIClient(srv.URL, nil), sched, func() string { return "s3cr3tpw" }, zaptest.NewLogger(t))
	defer flow.Close()

	err := flow.CompleteSignup(context.Background(), "jane@example.com", "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, MsgCheckEmail, flow.SuccessMessage())
	assert.Empty(t, flow.ErrorMessage())
	assert.True(t, flow.EmailSent())
	assert.Equal(t, "Jane Doe", flow.UserName())
	assert.False(t, flow.ShowSignupButton())
	assert.False(t, flow.Idle())

	require.Len(t, sched.actions, 1)
	assert.Equal(t, IdleReturnDelay, sched.actions[0].delay)
	assert.Equal(t, []string{"/api/send-email"}, paths)

	sched.fireLast(t)
	assert.True(t, flow.Idle())
}

func TestFlow_CompleteSignup_FallbackDisplayName(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)

	flow := NewFlow(NewAPIClient(srv.URL, nil), &fakeScheduler{}, nil, zaptest.NewLogger(t))
	defer flow.Close()

	require.NoError(t, flow.CompleteSignup(context.Background(), "jane@example.com", ""))
	assert.Equal(t, "User", flow.UserName())
}

func TestFlow_CompleteSignup_ServerRejection(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, nil)

	sched := &fakeScheduler{}
	flow := NewFlow(NewAPIClient(srv.URL, nil), sched, nil, zaptest.NewLogger(t))
	defer flow.Close()

	err := flow.CompleteSignup(context.Background(), "jane@example.com", "Jane Doe")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)

	assert.Empty(t, flow.SuccessMessage())
	assert.Equal(t, MsgSendFailed, flow.ErrorMessage())
	assert.False(t, flow.EmailSent())
	assert.True(t, flow.ShowSignupButton())
	assert.Empty(t, sched.actions)
}

func TestFlow_CompleteSignup_TransportError(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)
	srv.Close()

	flow := NewFlow(NewAPIClient(srv.URL, nil), &fakeScheduler{}, nil, zaptest.NewLogger(t))
	defer flow.Close()

	err := flow.CompleteSignup(context.Background(), "jane@example.com", "Jane Doe")
	require.Error(t, err)

	assert.Empty(t, flow.SuccessMessage())
	assert.Equal(t, MsgLoginFailed, flow.ErrorMessage())
	assert.False(t, flow.EmailSent())
}

func TestFlow_NewSignupCancelsPendingIdleReturn(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)

	sched := &fakeScheduler{}
	flow := NewFlow(NewAPIClient(srv.URL, nil), sched, nil, zaptest.NewLogger(t))
	defer flow.Close()

	require.NoError(t, flow.CompleteSignup(context.Background(), "jane@example.com", "Jane"))
	require.NoError(t, flow.CompleteSignup(context.Background(), "jane@example.com", "Jane"))

	require.Len(t, sched.actions, 2)
	assert.True(t, sched.actions[0].cancelled)
	assert.False(t, sched.actions[1].cancelled)
}

func TestFlow_CloseCancelsPending(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)

	sched := &fakeScheduler{}
	flow := NewFlow(NewAPIClient(srv.URL, nil), sched, nil, zaptest.NewLogger(t))

	require.NoError(t, flow.CompleteSignup(context.Background(), "jane@example.com", "Jane"))
	flow.Close()

	require.Len(t, sched.actions, 1)
	assert.True(t, sched.actions[0].cancelled)
	assert.Error(t, flow.CompleteSignup(context.Background(), "jane@example.com", "Jane"))
}

func TestFlow_RealSchedulerReturnsToIdle(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)

	flow := NewFlow(NewAPIClient(srv.URL, nil), nil, nil, zaptest.NewLogger(t))
	defer flow.Close()

	require.NoError(t, flow.CompleteSignup(context.Background(), "jane@example.com", "Jane"))
	assert.False(t, flow.Idle())
}
