package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIClient is a typed client for the credential provisioning endpoint.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient creates a client for the service at baseURL. When hc is nil
// a default client with a 30 second timeout is used.
func NewAPIClient(baseURL string, hc *http.Client) *APIClient {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &APIClient{baseURL: baseURL, http: hc}
}

type sendEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatusError reports a non-success response from the provisioning endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("send-email returned status %d", e.Code)
}

// SendEmail posts the credentials to /api/send-email. A non-2xx response
// yields a *StatusError; transport failures come back as-is.
func (c *APIClient) SendEmail(ctx context.Context, email, password string) error {
	body, err := json.Marshal(sendEmailRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("failed to encode send-email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/send-email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send-email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
