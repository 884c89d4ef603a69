package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	ginhandler "credential-service/internal/adapter/gin/handler"
	"credential-service/internal/adapter/gin/middleware"
	ginrouter "credential-service/internal/adapter/gin/router"
	"credential-service/internal/client"
	"credential-service/internal/domain/student"
	"credential-service/internal/usecase/provision"
)

// MockMailer simulates the SMTP channel during API testing.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Verify(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMailer) SendCredentials(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

// MockRepository simulates the student record store during API testing.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, s *student.Student) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// ProvisionAPIIntegrationTestSuite drives the full HTTP stack: real router
// and middleware over a mocked mail channel and record store.
type ProvisionAPIIntegrationTestSuite struct {
	suite.Suite
	server     *httptest.Server
	mr         *miniredis.Miniredis
	mockMailer *MockMailer
	mockRepo   *MockRepository
}

func (s *ProvisionAPIIntegrationTestSuite) SetupTest() {
	log := zaptest.NewLogger(s.T())

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s.mockMailer = new(MockMailer)
	s.mockRepo = new(MockRepository)

	uc := provision.New(s.mockMailer, s.mockRepo, nil, log)
	handler := ginhandler.NewProvisionHandler(uc, log)
	rateLimiter := middleware.NewRateLimiter(rdb, middleware.RateLimiterConfig{
		RequestsPerSecond: 100,
		WindowSeconds:     1,
		Enabled:           true,
	}, log)

	router := ginrouter.SetupRouter(handler, rateLimiter, log)
	s.server = httptest.NewServer(router)
}

func (s *ProvisionAPIIntegrationTestSuite) TearDownTest() {
	s.server.Close()
	s.mr.Close()
}

func (s *ProvisionAPIIntegrationTestSuite) postSendEmail(body any) (*http.Response, map[string]string) {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := http.Post(s.server.URL+"/api/send-email", "application/json", bytes.NewReader(raw))
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (s *ProvisionAPIIntegrationTestSuite) TestSendEmail_Success() {
	s.mockMailer.On("Verify", mock.Anything).Return(nil)
	s.mockMailer.On("SendCredentials", mock.Anything, "john.doe@example.com", "pw123456").Return(nil)
	s.mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(st *student.Student) bool {
		return st.Email == "john.doe@example.com" && st.Name == "John Doe"
	})).Return(nil)

	resp, body := s.postSendEmail(map[string]string{
		"email":    "john.doe@example.com",
		"password": "pw123456",
	})

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(provision.MsgSuccess, body["message"])
	s.mockMailer.AssertExpectations(s.T())
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ProvisionAPIIntegrationTestSuite) TestSendEmail_MissingFields() {
	resp, body := s.postSendEmail(map[string]string{"email": "john@example.com"})

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(provision.MsgMissingFields, body["error"])
	s.mockMailer.AssertNotCalled(s.T(), "Verify", mock.Anything)
}

func (s *ProvisionAPIIntegrationTestSuite) TestSendEmail_MailChannelDown() {
	s.mockMailer.On("Verify", mock.Anything).Return(errors.New("dial tcp: connection refused"))

	resp, body := s.postSendEmail(map[string]string{
		"email":    "john@example.com",
		"password": "pw123456",
	})

	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.Equal(provision.MsgMailConfigFailed, body["error"])
	s.mockRepo.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *ProvisionAPIIntegrationTestSuite) TestSendEmail_GetAnswers405() {
	resp, err := http.Get(s.server.URL + "/api/send-email")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}

// TestSignupFlow_EndToEnd exercises the client flow against the real server:
// an external sign-in completes, credentials are generated and posted, and
// the flow lands in the post-signup state.
func (s *ProvisionAPIIntegrationTestSuite) TestSignupFlow_EndToEnd() {
	s.mockMailer.On("Verify", mock.Anything).Return(nil)
	s.mockMailer.On("SendCredentials", mock.Anything, "jane@example.com", mock.Anything).Return(nil)
	s.mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	log := zaptest.NewLogger(s.T())
	flow := client.NewFlow(client.NewAPIClient(s.server.URL, &http.Client{Timeout: 5 * time.Second}), nil, nil, log)
	defer flow.Close()

	err := flow.CompleteSignup(context.Background(), "jane@example.com", "Jane Doe")
	s.Require().NoError(err)

	s.Equal(client.MsgCheckEmail, flow.SuccessMessage())
	s.True(flow.EmailSent())
	s.Equal("Jane Doe", flow.UserName())
	s.False(flow.ShowSignupButton())
	s.mockMailer.AssertExpectations(s.T())
}

func TestProvisionAPIIntegrationSuite(t *testing.T) {
	suite.Run(t, new(ProvisionAPIIntegrationTestSuite))
}
