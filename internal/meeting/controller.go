// Package meeting manages the lifecycle of a user's meeting list: refresh,
// date filtering, creation, and initiator-only deletion. The controller
// reconciles server state into a local view snapshot that the presentation
// layer observes.
package meeting

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/satellite-console/internal/api"
	"github.com/example/satellite-console/internal/logging"
	"github.com/example/satellite-console/internal/metrics"
	"github.com/example/satellite-console/internal/session"
	"github.com/example/satellite-console/internal/validate"
)

// MeetingAPI captures the remote operations required by the controller.
type MeetingAPI interface {
	ListMeetings(ctx context.Context, userID int) ([]api.Meeting, error)
	ListMeetingsByDate(ctx context.Context, userID int, date string) ([]api.Meeting, error)
	CreateMeeting(ctx context.Context, userID int, params api.CreateMeetingParams) (api.Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
}

// Phase identifies the meeting list state machine position.
type Phase string

const (
	// PhaseIdle means no load has been attempted yet.
	PhaseIdle Phase = "idle"
	// PhaseLoading means a list request is in flight.
	PhaseLoading Phase = "loading"
	// PhaseLoaded means the list reflects the most recent successful query,
	// filtered or unfiltered.
	PhaseLoaded Phase = "loaded"
	// PhaseErrored means the most recent query failed.
	PhaseErrored Phase = "errored"
)

// Snapshot is the observable view state of the meeting list.
type Snapshot struct {
	Phase    Phase
	Meetings []api.Meeting
	// FilterDate is the active date criterion, empty when unfiltered.
	FilterDate string
	// Notice carries informational (non-error) feedback such as a zero-result
	// filter outcome.
	Notice string
	// ErrorMessage carries the human-readable failure of the last query.
	ErrorMessage string
}

// Controller owns the in-memory meeting list for one presentation surface.
// Methods are safe for concurrent use; overlapping refreshes resolve to
// last-write-wins on the displayed list.
type Controller struct {
	client  MeetingAPI
	logger  *slog.Logger
	metrics metrics.Recorder

	mu         sync.Mutex
	phase      Phase
	meetings   []api.Meeting
	filterDate string
	notice     string
	errMessage string
}

// NewController constructs a Controller for the given API client.
func NewController(client MeetingAPI, logger *slog.Logger) *Controller {
	return NewControllerWithMetrics(client, logger, nil)
}

// NewControllerWithMetrics constructs a Controller that reports swallowed
// failures to the recorder.
func NewControllerWithMetrics(client MeetingAPI, logger *slog.Logger, recorder metrics.Recorder) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Controller{
		client:  client,
		logger:  logger,
		metrics: recorder,
		phase:   PhaseIdle,
	}
}

func (c *Controller) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.ServiceLogger(ctx, c.logger, "MeetingController", operation, attrs...)
}

// Snapshot returns a copy of the observable view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	meetings := make([]api.Meeting, len(c.meetings))
	copy(meetings, c.meetings)
	return Snapshot{
		Phase:        c.phase,
		Meetings:     meetings,
		FilterDate:   c.filterDate,
		Notice:       c.notice,
		ErrorMessage: c.errMessage,
	}
}

// Refresh replaces the in-memory list with the full unfiltered meeting list
// for the session's user. A missing session yields api.ErrUnauthenticated and
// no network call.
func (c *Controller) Refresh(ctx context.Context, sess session.Session) error {
	logger := c.loggerWith(ctx, "Refresh", "user_id", sess.UserID)

	if sess.UserID <= 0 {
		c.setLocalError("User ID not found - please log in again")
		logger.ErrorContext(ctx, "refresh without session", "error_kind", api.ErrorKind(api.ErrUnauthenticated))
		return api.ErrUnauthenticated
	}

	c.beginLoad("")

	meetings, err := c.client.ListMeetings(ctx, sess.UserID)
	if err != nil {
		c.setError(api.UserMessage(err))
		c.metrics.RecordSync("refresh", "failure")
		logger.ErrorContext(ctx, "refresh failed", "error", err, "error_kind", api.ErrorKind(err))
		return err
	}

	c.setLoaded(meetings, "", "")
	c.metrics.RecordSync("refresh", "success")
	logger.With("count", len(meetings)).InfoContext(ctx, "meeting list refreshed")
	return nil
}

// FilterByDate replaces the list with the meetings on the given day. The date
// is validated locally before any network call; a zero-match outcome is
// informational, not an error.
func (c *Controller) FilterByDate(ctx context.Context, sess session.Session, date string) error {
	logger := c.loggerWith(ctx, "FilterByDate", "user_id", sess.UserID, "date", date)

	if sess.UserID <= 0 {
		c.setLocalError("User ID not found - please log in again")
		return api.ErrUnauthenticated
	}
	if date == "" {
		vErr := &validate.Error{}
		vErr.Add("date", "Please enter a date to filter (Format: YYYY-MM-DD)")
		c.setLocalError(vErr.Message())
		return vErr
	}
	if !validate.FilterDate(date) {
		vErr := &validate.Error{}
		vErr.Add("date", "Date must be in format: YYYY-MM-DD (e.g., 2025-01-15)")
		c.setLocalError(vErr.Message())
		logger.WarnContext(ctx, "filter date rejected locally")
		return vErr
	}

	c.beginLoad(date)

	meetings, err := c.client.ListMeetingsByDate(ctx, sess.UserID, date)
	if err != nil {
		c.setError(api.UserMessage(err))
		c.metrics.RecordSync("filter", "failure")
		logger.ErrorContext(ctx, "filter failed", "error", err, "error_kind", api.ErrorKind(err))
		return err
	}

	notice := fmt.Sprintf("Found %d meeting(s) for %s", len(meetings), date)
	if len(meetings) == 0 {
		notice = fmt.Sprintf("No meetings found for %s", date)
	}
	c.setLoaded(meetings, date, notice)
	c.metrics.RecordSync("filter", "success")
	logger.With("count", len(meetings)).InfoContext(ctx, "meeting list filtered")
	return nil
}

// ClearFilter discards the date criterion and reloads the full list.
func (c *Controller) ClearFilter(ctx context.Context, sess session.Session) error {
	c.mu.Lock()
	c.filterDate = ""
	c.notice = ""
	c.errMessage = ""
	c.mu.Unlock()
	return c.Refresh(ctx, sess)
}

// Create validates the draft locally and submits it. The server echoes the
// created entity, which is appended to the in-memory list so the view stays
// consistent without an extra refresh.
func (c *Controller) Create(ctx context.Context, sess session.Session, draft Draft) (api.Meeting, error) {
	logger := c.loggerWith(ctx, "Create", "user_id", sess.UserID)

	if sess.UserID <= 0 {
		c.setLocalError("User ID not found - please log in again")
		return api.Meeting{}, api.ErrUnauthenticated
	}

	params, vErr := draft.Validate()
	if vErr.HasErrors() {
		c.setLocalError(vErr.Message())
		logger.WarnContext(ctx, "meeting draft rejected locally", "error", vErr)
		return api.Meeting{}, vErr
	}

	created, err := c.client.CreateMeeting(ctx, sess.UserID, params)
	if err != nil {
		// The list itself did not change; keep the current phase.
		c.setLocalError(api.UserMessage(err))
		c.metrics.RecordSync("create", "failure")
		logger.ErrorContext(ctx, "meeting creation failed", "error", err, "error_kind", api.ErrorKind(err))
		return api.Meeting{}, err
	}

	c.mu.Lock()
	if c.phase == PhaseLoaded && c.filterDate == "" {
		c.meetings = append(c.meetings, created)
	}
	c.notice = "Meeting created successfully!"
	c.errMessage = ""
	c.mu.Unlock()

	c.metrics.RecordSync("create", "success")
	logger.With("meeting_id", created.ID).InfoContext(ctx, "meeting created")
	return created, nil
}

// Delete removes a meeting the session initiated. The initiator check is
// local and mandatory: when the session is not the initiator no request is
// issued and the refusal is logged, never surfaced. Server-side failure
// leaves the list unchanged and is observable only through the log and the
// failure counter.
func (c *Controller) Delete(ctx context.Context, sess session.Session, target api.Meeting) error {
	logger := c.loggerWith(ctx, "Delete", "user_id", sess.UserID, "meeting_id", target.ID, "initiator_id", target.InitiatorID)

	if sess.UserID <= 0 || sess.UserID != target.InitiatorID {
		logger.WarnContext(ctx, "delete denied: session is not the meeting initiator")
		c.metrics.RecordDeleteDenied()
		return nil
	}
	if target.ID == "" {
		logger.WarnContext(ctx, "delete skipped: meeting has no canonical id")
		c.metrics.RecordDeleteFailure("missing_id")
		return nil
	}

	if err := c.client.DeleteMeeting(ctx, target.ID); err != nil {
		logger.ErrorContext(ctx, "delete failed, list unchanged", "error", err, "error_kind", api.ErrorKind(err))
		c.metrics.RecordDeleteFailure(api.ErrorKind(err))
		return nil
	}

	c.mu.Lock()
	kept := c.meetings[:0]
	for _, m := range c.meetings {
		if m.ID != target.ID {
			kept = append(kept, m)
		}
	}
	c.meetings = kept
	c.mu.Unlock()

	c.metrics.RecordSync("delete", "success")
	logger.InfoContext(ctx, "meeting deleted")
	return nil
}

func (c *Controller) beginLoad(filterDate string) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.filterDate = filterDate
	c.notice = ""
	c.errMessage = ""
	c.mu.Unlock()
}

func (c *Controller) setLoaded(meetings []api.Meeting, filterDate, notice string) {
	c.mu.Lock()
	c.phase = PhaseLoaded
	c.meetings = meetings
	c.filterDate = filterDate
	c.notice = notice
	c.errMessage = ""
	c.mu.Unlock()
}

// setError records a failed query and moves the state machine to Errored.
func (c *Controller) setError(message string) {
	c.mu.Lock()
	c.phase = PhaseErrored
	c.errMessage = message
	c.notice = ""
	c.mu.Unlock()
}

// setLocalError reports a pre-network rejection without leaving the current
// phase; the list state did not change because no query was issued.
func (c *Controller) setLocalError(message string) {
	c.mu.Lock()
	c.errMessage = message
	c.notice = ""
	c.mu.Unlock()
}
