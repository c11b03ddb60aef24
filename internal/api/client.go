// Package api implements the HTTP client for the satellite task management
// backend. It translates domain operations into calls against a fixed base
// endpoint and normalizes responses and failures into the typed error
// taxonomy; callers never deal with raw status codes or aliased wire fields.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/example/satellite-console/internal/logging"
)

// Credentials identifies the authenticated actor returned by login and
// registration.
type Credentials struct {
	UserID   int
	Username string
}

// RegisterParams carries the fields submitted on sign-up.
type RegisterParams struct {
	Name        string
	Username    string
	Designation string
	Email       string
	Password    string
}

// ProfileDocument is the raw profile payload served by the user endpoint.
// Fields may be absent; the session layer applies display defaults.
type ProfileDocument struct {
	Name           string   `json:"name"`
	Username       string   `json:"username"`
	Designation    string   `json:"designation"`
	Email          string   `json:"email"`
	Location       string   `json:"location"`
	Bio            string   `json:"bio"`
	CreatedAt      string   `json:"createdAt"`
	Joined         string   `json:"joined"`
	TasksCompleted int      `json:"tasksCompleted"`
	Missions       int      `json:"missions"`
	Followers      int      `json:"followers"`
	Skills         []string `json:"skills"`
	Recent         []string `json:"recent"`
}

// CreateMeetingParams carries the validated fields for creating a meeting.
type CreateMeetingParams struct {
	CollaboratorIDs []int
	StartTime       string
	EndTime         string
	Agenda          string
}

// envelope is the error body shape used across backend endpoints. A body that
// fails to parse decodes to the zero envelope so a missing or malformed
// payload never breaks status handling.
type envelope struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// Client issues requests against the backend base URL.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	logger       *slog.Logger
	limiter      *rate.Limiter
	newRequestID func() string
}

// NewClient constructs a client for the given base URL.
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	return NewClientWithLimiter(httpClient, baseURL, logger, nil)
}

// NewClientWithLimiter constructs a client that paces outbound requests with
// the provided limiter. A nil limiter disables pacing.
func NewClientWithLimiter(httpClient *http.Client, baseURL string, logger *slog.Logger, limiter *rate.Limiter) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		logger:       logger,
		limiter:      limiter,
		newRequestID: uuid.NewString,
	}
}

// NewClientWithRequestID constructs a client whose X-Request-ID header values
// come from newRequestID instead of random UUIDs. A nil function keeps the
// UUID source.
func NewClientWithRequestID(httpClient *http.Client, baseURL string, logger *slog.Logger, limiter *rate.Limiter, newRequestID func() string) *Client {
	c := NewClientWithLimiter(httpClient, baseURL, logger, limiter)
	if newRequestID != nil {
		c.newRequestID = newRequestID
	}
	return c
}

func (c *Client) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.ServiceLogger(ctx, c.logger, "APIClient", operation, attrs...)
}

// Login authenticates the credentials and returns the session identity.
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	logger := c.loggerWith(ctx, "Login", "username", username)

	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		logger.ErrorContext(ctx, "login request failed", "error", err, "error_kind", ErrorKind(err))
		return Credentials{}, err
	}

	if status == http.StatusOK {
		creds, err := decodeCredentials(body)
		if err != nil {
			logger.ErrorContext(ctx, "login response malformed", "error", err)
			return Credentials{}, &ServerError{Status: status, Message: "login response malformed"}
		}
		if creds.Username == "" {
			creds.Username = username
		}
		logger.With("user_id", creds.UserID).InfoContext(ctx, "login succeeded")
		return creds, nil
	}

	err = authStatusError(status, decodeEnvelope(body))
	logger.ErrorContext(ctx, "login rejected", "status", status, "error", err, "error_kind", ErrorKind(err))
	return Credentials{}, err
}

// Register creates a new account. A 409 response maps to ConflictError.
func (c *Client) Register(ctx context.Context, params RegisterParams) (Credentials, error) {
	logger := c.loggerWith(ctx, "Register", "username", params.Username)

	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name":        params.Name,
		"username":    params.Username,
		"designation": params.Designation,
		"email":       params.Email,
		"password":    params.Password,
	})
	if err != nil {
		logger.ErrorContext(ctx, "register request failed", "error", err, "error_kind", ErrorKind(err))
		return Credentials{}, err
	}

	if status == http.StatusOK || status == http.StatusCreated {
		creds, err := decodeCredentials(body)
		if err != nil {
			// The created-user echo is informational; registration itself
			// succeeded.
			creds = Credentials{Username: params.Username}
		}
		logger.With("user_id", creds.UserID).InfoContext(ctx, "registration succeeded")
		return creds, nil
	}

	env := decodeEnvelope(body)
	if status == http.StatusConflict {
		err = &ConflictError{Message: firstNonEmpty(env.Error, "User already exists")}
	} else {
		err = authStatusError(status, env)
	}
	logger.ErrorContext(ctx, "registration rejected", "status", status, "error", err, "error_kind", ErrorKind(err))
	return Credentials{}, err
}

// FetchProfile retrieves the authoritative profile document for a user. Any
// non-200 outcome is returned as a typed error; the caller decides whether it
// is fatal.
func (c *Client) FetchProfile(ctx context.Context, userID int) (ProfileDocument, error) {
	logger := c.loggerWith(ctx, "FetchProfile", "user_id", userID)

	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/user/%d", userID), nil)
	if err != nil {
		logger.ErrorContext(ctx, "profile request failed", "error", err, "error_kind", ErrorKind(err))
		return ProfileDocument{}, err
	}
	if status != http.StatusOK {
		env := decodeEnvelope(body)
		err = &ServerError{Status: status, Message: firstNonEmpty(env.Error, env.Message)}
		logger.ErrorContext(ctx, "profile fetch rejected", "status", status, "error", err)
		return ProfileDocument{}, err
	}

	var doc ProfileDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		logger.ErrorContext(ctx, "profile response malformed", "error", err)
		return ProfileDocument{}, &ServerError{Status: status, Message: "profile response malformed"}
	}
	return doc, nil
}

// ListMeetings retrieves all meetings for a user. A single-object response is
// normalized into a one-element list.
func (c *Client) ListMeetings(ctx context.Context, userID int) ([]Meeting, error) {
	logger := c.loggerWith(ctx, "ListMeetings", "user_id", userID)

	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/meetings/%d", userID), nil)
	if err != nil {
		logger.ErrorContext(ctx, "meetings request failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	if status != http.StatusOK {
		env := decodeEnvelope(body)
		err = &ServerError{Status: status, Message: firstNonEmpty(env.Message, env.Error, fmt.Sprintf("Failed to fetch meetings (%d)", status))}
		logger.ErrorContext(ctx, "meetings fetch rejected", "status", status, "error", err)
		return nil, err
	}

	meetings, err := decodeMeetings(body)
	if err != nil {
		logger.ErrorContext(ctx, "meetings response malformed", "error", err)
		return nil, &ServerError{Status: status, Message: "meetings response malformed"}
	}
	logger.With("count", len(meetings)).InfoContext(ctx, "meetings fetched")
	return meetings, nil
}

// ListMeetingsByDate retrieves the meetings for a user on a given day. A 404
// response means zero matches and yields an empty list with no error.
func (c *Client) ListMeetingsByDate(ctx context.Context, userID int, date string) ([]Meeting, error) {
	logger := c.loggerWith(ctx, "ListMeetingsByDate", "user_id", userID, "date", date)

	path := fmt.Sprintf("/api/meetings/%d/filter?date=%s", userID, url.QueryEscape(date))
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		logger.ErrorContext(ctx, "filtered meetings request failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	if status == http.StatusNotFound {
		logger.InfoContext(ctx, "no meetings for date")
		return []Meeting{}, nil
	}
	if status != http.StatusOK {
		env := decodeEnvelope(body)
		err = &ServerError{Status: status, Message: firstNonEmpty(env.Message, env.Error, fmt.Sprintf("Failed to filter meetings (%d)", status))}
		logger.ErrorContext(ctx, "filtered meetings fetch rejected", "status", status, "error", err)
		return nil, err
	}

	meetings, err := decodeMeetings(body)
	if err != nil {
		logger.ErrorContext(ctx, "filtered meetings response malformed", "error", err)
		return nil, &ServerError{Status: status, Message: "meetings response malformed"}
	}
	logger.With("count", len(meetings)).InfoContext(ctx, "filtered meetings fetched")
	return meetings, nil
}

// CreateMeeting submits a validated meeting draft and returns the created
// record as echoed by the server.
func (c *Client) CreateMeeting(ctx context.Context, userID int, params CreateMeetingParams) (Meeting, error) {
	logger := c.loggerWith(ctx, "CreateMeeting", "user_id", userID)

	status, body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/meetings/%d", userID), map[string]string{
		"collaboratorsId": joinCollaborators(params.CollaboratorIDs),
		"startTime":       params.StartTime,
		"endTime":         params.EndTime,
		"agenda":          params.Agenda,
	})
	if err != nil {
		logger.ErrorContext(ctx, "create meeting request failed", "error", err, "error_kind", ErrorKind(err))
		return Meeting{}, err
	}

	if status == http.StatusOK || status == http.StatusCreated {
		meetings, err := decodeMeetings(body)
		if err != nil || len(meetings) == 0 {
			logger.ErrorContext(ctx, "created meeting echo malformed", "error", err)
			return Meeting{}, &ServerError{Status: status, Message: "created meeting response malformed"}
		}
		logger.With("meeting_id", meetings[0].ID).InfoContext(ctx, "meeting created")
		return meetings[0], nil
	}

	env := decodeEnvelope(body)
	if status == http.StatusBadRequest {
		err = &ServerValidationError{FieldErrors: env.Details, Message: firstNonEmpty(env.Error, env.Message, "Validation failed")}
	} else {
		err = &ServerError{Status: status, Message: firstNonEmpty(env.Error, env.Message)}
	}
	logger.ErrorContext(ctx, "create meeting rejected", "status", status, "error", err, "error_kind", ErrorKind(err))
	return Meeting{}, err
}

// DeleteMeeting removes a meeting by its canonical id. Callers must have
// verified initiator ownership before issuing the request.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID string) error {
	logger := c.loggerWith(ctx, "DeleteMeeting", "meeting_id", meetingID)

	status, body, err := c.do(ctx, http.MethodDelete, "/api/meetings/delete/"+url.PathEscape(meetingID), nil)
	if err != nil {
		logger.ErrorContext(ctx, "delete meeting request failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if status != http.StatusOK {
		env := decodeEnvelope(body)
		err = &ServerError{Status: status, Message: firstNonEmpty(env.Error, env.Message)}
		logger.ErrorContext(ctx, "delete meeting rejected", "status", status, "error", err)
		return err
	}
	logger.InfoContext(ctx, "meeting deleted")
	return nil
}

// do executes one JSON request and returns the status code and raw body.
// Transport failures are wrapped as NetworkError; status handling is left to
// the caller.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &NetworkError{Err: err}
		}
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.newRequestID != nil {
		req.Header.Set("X-Request-ID", c.newRequestID())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Err: err}
	}
	return resp.StatusCode, body, nil
}

// decodeEnvelope parses an error body, falling back to the zero envelope when
// the body is missing or not valid JSON.
func decodeEnvelope(body []byte) envelope {
	var env envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}
	}
	return env
}

// decodeCredentials parses the {id, username} identity payload, accepting the
// id as either a number or a numeric string.
func decodeCredentials(body []byte) (Credentials, error) {
	var doc struct {
		ID       json.RawMessage `json:"id"`
		Username string          `json:"username"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return Credentials{}, fmt.Errorf("parse identity payload: %w", err)
	}
	id, ok := intFromRaw(doc.ID)
	if !ok {
		return Credentials{}, fmt.Errorf("identity payload missing id")
	}
	return Credentials{UserID: id, Username: doc.Username}, nil
}

// authStatusError maps the shared login/register status-code contract onto the
// error taxonomy.
func authStatusError(status int, env envelope) error {
	switch status {
	case http.StatusBadRequest:
		return &ServerValidationError{FieldErrors: env.Details, Message: firstNonEmpty(env.Error, "Invalid request")}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: firstNonEmpty(env.Error, "Invalid username or password")}
	default:
		return &ServerError{Status: status, Message: env.Error}
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
