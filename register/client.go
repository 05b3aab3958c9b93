package register

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SuperAdminID owns every self-registered client.
const SuperAdminID = 1

// ClientRequest is the body of POST /client/.
type ClientRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Tier         Tier   `json:"tier"`
	MaxStudents  int    `json:"max_students"`
	SuperAdminID int    `json:"super_admin_id"`
}

// ClientResponse is the part of the created client the flow needs.
type ClientResponse struct {
	ID            json.RawMessage `json:"id,omitempty"`
	OnboardingURL string          `json:"onboarding_url,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// API is the backend used by [Flow].
type API interface {
	CreateClient(ctx context.Context, req ClientRequest) (ClientResponse, error)
	// Login returns the bearer token for the credentials.
	Login(ctx context.Context, email, password string) (string, error)
}

// Client talks to the REST API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateClient posts a new client account.
func (c *Client) CreateClient(ctx context.Context, req ClientRequest) (ClientResponse, error) {
	var out ClientResponse
	if err := c.post(ctx, "/client/", req, &out); err != nil {
		return ClientResponse{}, err
	}
	return out, nil
}

// Login exchanges credentials for a bearer token. Both token and access_token
// response fields are accepted.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	if err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token != "" {
		return out.Token, nil
	}
	return out.AccessToken, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &APIError{Kind: ErrNetwork, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &APIError{Kind: ErrNetwork, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Kind: ErrNetwork, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status: resp.StatusCode,
			Detail: detailOf(respBody),
			Kind:   kindForStatus(resp.StatusCode),
		}
		c.logger.Warn("api returned error status",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("detail", apiErr.Detail))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{Status: resp.StatusCode, Kind: ErrNetwork, Cause: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Debug("api request ok",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status_code", resp.StatusCode))
	return nil
}

// detailOf returns the string detail field of an error body. Structured
// details (validation lists) are ignored.
func detailOf(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err != nil {
		return ""
	}
	return s
}
