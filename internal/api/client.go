// Package api is the single point of contact with the platform backend.
// Every request funnels through one path that injects credentials and
// normalizes failures into *APIError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/VoxDesk/voxdesk/internal/logger"
	"github.com/VoxDesk/voxdesk/internal/notify"
	"github.com/VoxDesk/voxdesk/pkg/types"
)

const defaultTimeout = 30 * time.Second

// genericErrorMessage is shown when a failure carries no usable detail.
const genericErrorMessage = "An error occurred"

// CredentialProvider supplies the bearer token at request time. An empty
// token means the request goes out unauthenticated; there is no local gate.
type CredentialProvider interface {
	Token() string
}

// StaticCredentials is a CredentialProvider backed by a fixed token.
type StaticCredentials string

// Token implements CredentialProvider.
func (s StaticCredentials) Token() string { return string(s) }

// APIError is the normalized error shape every call site receives.
type APIError struct {
	Message string
	Status  int
	Details map[string]any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client talks to the platform backend.
type Client struct {
	baseURL  string
	http     *http.Client
	creds    CredentialProvider
	notifier notify.Notifier
	log      *logger.Logger
}

// New creates a client for the backend at baseURL. creds may be nil for
// unauthenticated access; notifier may be nil to suppress notifications.
func New(baseURL string, creds CredentialProvider, notifier notify.Notifier) *Client {
	if creds == nil {
		creds = StaticCredentials("")
	}
	if notifier == nil {
		notifier = notify.Discard()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		creds:    creds,
		notifier: notifier,
		log:      logger.GetDefaultLogger().WithComponent("api"),
	}
}

// SetTimeout overrides the request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.http.Timeout = d
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// setHeaders attaches the common headers, including the bearer token when
// the credential store has one.
func (c *Client) setHeaders(req *http.Request) {
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do runs one request through the normalization path. silent suppresses the
// user-visible notification (health checks only). out, when non-nil,
// receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any, silent bool) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return c.fail(&APIError{Message: err.Error(), Status: http.StatusInternalServerError}, silent)
	}
	c.setHeaders(req)

	respBody, _, err := c.send(req, silent)
	if err != nil {
		return err
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return c.fail(&APIError{
				Message: fmt.Sprintf("invalid response body: %v", err),
				Status:  http.StatusInternalServerError,
			}, silent)
		}
	}
	return nil
}

// send executes a prepared request and normalizes transport and HTTP errors.
func (c *Client) send(req *http.Request, silent bool) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		msg := genericErrorMessage
		if err.Error() != "" {
			msg = err.Error()
		}
		return nil, 0, c.fail(&APIError{Message: msg, Status: http.StatusInternalServerError}, silent)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, c.fail(&APIError{
			Message: fmt.Sprintf("failed to read response: %v", err),
			Status:  resp.StatusCode,
		}, silent)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, c.fail(normalizeHTTPError(resp.StatusCode, respBody), silent)
	}

	return respBody, resp.StatusCode, nil
}

// normalizeHTTPError extracts a human-readable message from an error body.
// The backend reports failures as {"detail": "..."}.
func normalizeHTTPError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: genericErrorMessage}

	var details map[string]any
	if json.Unmarshal(body, &details) == nil {
		apiErr.Details = details
		if detail, ok := details["detail"].(string); ok && detail != "" {
			apiErr.Message = detail
			return apiErr
		}
	}

	if text := http.StatusText(status); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

// fail logs the error, notifies the user unless silent, and returns it.
func (c *Client) fail(apiErr *APIError, silent bool) error {
	c.log.Warn("request failed: %s (status %d)", apiErr.Message, apiErr.Status)
	if !silent {
		c.notifier.Notify(notify.Error, apiErr.Message)
	}
	return apiErr
}

// HealthCheck probes backend connectivity. Failures are logged but never
// surfaced as user-facing notifications.
func (c *Client) HealthCheck(ctx context.Context) (*types.HealthStatus, error) {
	var status types.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status, true); err != nil {
		return nil, err
	}
	return &status, nil
}

// SendChatMessage sends a chat message and returns the agent's reply.
func (c *Client) SendChatMessage(ctx context.Context, msg types.ChatMessage) (*types.MessageResponse, error) {
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("message content cannot be empty")
	}
	if msg.Channel == "" {
		return nil, fmt.Errorf("message channel cannot be empty")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp types.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat", bytes.NewReader(body), &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendEmailMessage sends an email message and returns the agent's reply.
func (c *Client) SendEmailMessage(ctx context.Context, msg types.EmailMessage) (*types.MessageResponse, error) {
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("email content cannot be empty")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp types.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/email", bytes.NewReader(body), &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadVoiceMessage uploads recorded audio and returns the synthesized
// reply as raw bytes. An empty (but successful) reply means the backend had
// nothing to say; callers must treat that differently from an error.
func (c *Client) UploadVoiceMessage(ctx context.Context, audio []byte, filename, conversationID, userID string) ([]byte, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("audio payload cannot be empty")
	}
	if userID == "" {
		userID = "demo_user"
	}
	if filename == "" {
		filename = "recording.wav"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("audio_file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio part: %w", err)
	}
	if conversationID != "" {
		if err := w.WriteField("conversation_id", conversationID); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := w.WriteField("user_id", userID); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/voice/upload", &buf)
	if err != nil {
		return nil, c.fail(&APIError{Message: err.Error(), Status: http.StatusInternalServerError}, false)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setHeaders(req)

	reply, _, err := c.send(req, false)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// GetDashboardStats fetches the aggregate statistics snapshot.
func (c *Client) GetDashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	var stats types.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard/stats", nil, &stats, false); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetAgentsStatus fetches the current state of every agent.
func (c *Client) GetAgentsStatus(ctx context.Context) ([]types.Agent, error) {
	var agents []types.Agent
	if err := c.do(ctx, http.MethodGet, "/api/v1/agents/status", nil, &agents, false); err != nil {
		return nil, err
	}
	return agents, nil
}

// ScaleAgents asks the backend to scale the agent pool to targetCount.
func (c *Client) ScaleAgents(ctx context.Context, targetCount int) (*types.ScaleResponse, error) {
	if targetCount <= 0 {
		return nil, fmt.Errorf("target count must be positive, got %d", targetCount)
	}

	body, err := json.Marshal(types.ScaleRequest{TargetCount: targetCount})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp types.ScaleResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/admin/scale-agents", bytes.NewReader(body), &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetConversations lists conversations, optionally filtered by channel.
func (c *Client) GetConversations(ctx context.Context, limit, offset int, channel types.Channel) ([]types.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if channel != "" {
		params.Set("channel", string(channel))
	}

	var conversations []types.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversations?"+params.Encode(), nil, &conversations, false); err != nil {
		return nil, err
	}
	return conversations, nil
}

// GetConversationDetails fetches the full detail payload of one conversation.
func (c *Client) GetConversationDetails(ctx context.Context, conversationID string) (map[string]any, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation ID cannot be empty")
	}

	var detail map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversations/"+url.PathEscape(conversationID), nil, &detail, false); err != nil {
		return nil, err
	}
	return detail, nil
}

// GetMetrics fetches the backend's plain-text metrics exposition.
func (c *Client) GetMetrics(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/metrics", nil)
	if err != nil {
		return "", c.fail(&APIError{Message: err.Error(), Status: http.StatusInternalServerError}, false)
	}
	req.Header.Set("Accept", "text/plain")
	c.setHeaders(req)

	body, _, err := c.send(req, false)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
