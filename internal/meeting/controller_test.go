package meeting

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/example/satellite-console/internal/api"
	"github.com/example/satellite-console/internal/session"
	"github.com/example/satellite-console/internal/validate"
)

type meetingAPIStub struct {
	mu sync.Mutex

	listMeetings []api.Meeting
	listErr      error
	listCalls    int

	filtered    []api.Meeting
	filterErr   error
	filterCalls int
	filterDates []string

	created      api.Meeting
	createErr    error
	createCalls  int
	createParams []api.CreateMeetingParams

	deleteErr   error
	deleteCalls int
	deletedIDs  []string
}

func (s *meetingAPIStub) ListMeetings(ctx context.Context, userID int) ([]api.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listMeetings, nil
}

func (s *meetingAPIStub) ListMeetingsByDate(ctx context.Context, userID int, date string) ([]api.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterCalls++
	s.filterDates = append(s.filterDates, date)
	if s.filterErr != nil {
		return nil, s.filterErr
	}
	return s.filtered, nil
}

func (s *meetingAPIStub) CreateMeeting(ctx context.Context, userID int, params api.CreateMeetingParams) (api.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.createParams = append(s.createParams, params)
	if s.createErr != nil {
		return api.Meeting{}, s.createErr
	}
	return s.created, nil
}

func (s *meetingAPIStub) DeleteMeeting(ctx context.Context, meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	s.deletedIDs = append(s.deletedIDs, meetingID)
	return s.deleteErr
}

type deleteRecorderStub struct {
	mu       sync.Mutex
	denied   int
	failures []string
	syncs    []string
}

func (r *deleteRecorderStub) RecordEnrichmentFailure(string) {}

func (r *deleteRecorderStub) RecordDeleteFailure(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, kind)
}

func (r *deleteRecorderStub) RecordDeleteDenied() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied++
}

func (r *deleteRecorderStub) RecordSync(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs = append(r.syncs, operation+"/"+outcome)
}

var testSession = session.Session{UserID: 7, Username: "operator"}

func validDraft() Draft {
	return Draft{
		CollaboratorsID: "2, 3",
		StartTime:       "2025-01-15T09:30",
		EndTime:         "2025-01-15T10:00",
		Agenda:          "Standup",
	}
}

func TestController_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("loads the full list", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{listMeetings: []api.Meeting{{ID: "m-1", InitiatorID: 7}}}
		ctrl := NewController(stub, nil)

		if err := ctrl.Refresh(context.Background(), testSession); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.Phase != PhaseLoaded {
			t.Fatalf("expected loaded phase, got %s", snap.Phase)
		}
		if len(snap.Meetings) != 1 || snap.Meetings[0].ID != "m-1" {
			t.Fatalf("unexpected list: %+v", snap.Meetings)
		}
		if snap.FilterDate != "" || snap.ErrorMessage != "" {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	})

	t.Run("rejects a missing session without a network call", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{}
		ctrl := NewController(stub, nil)

		err := ctrl.Refresh(context.Background(), session.Session{})
		if !errors.Is(err, api.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
		if stub.listCalls != 0 {
			t.Fatalf("expected no list request, got %d", stub.listCalls)
		}
		snap := ctrl.Snapshot()
		if snap.ErrorMessage != "User ID not found - please log in again" {
			t.Fatalf("unexpected message: %q", snap.ErrorMessage)
		}
		if snap.Phase != PhaseIdle {
			t.Fatalf("local rejection must not change the phase, got %s", snap.Phase)
		}
	})

	t.Run("moves to errored on a failed query", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{listErr: &api.NetworkError{Err: errors.New("dial refused")}}
		ctrl := NewController(stub, nil)

		if err := ctrl.Refresh(context.Background(), testSession); err == nil {
			t.Fatalf("expected error")
		}

		snap := ctrl.Snapshot()
		if snap.Phase != PhaseErrored {
			t.Fatalf("expected errored phase, got %s", snap.Phase)
		}
		if snap.ErrorMessage != "Network error — check connection and try again" {
			t.Fatalf("unexpected message: %q", snap.ErrorMessage)
		}
	})
}

func TestController_FilterByDate(t *testing.T) {
	t.Parallel()

	t.Run("requires a date before any network call", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{}
		ctrl := NewController(stub, nil)

		err := ctrl.FilterByDate(context.Background(), testSession, "")
		var vErr *validate.Error
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if stub.filterCalls != 0 {
			t.Fatalf("expected no filter request")
		}
		if got := ctrl.Snapshot().ErrorMessage; got != "Please enter a date to filter (Format: YYYY-MM-DD)" {
			t.Fatalf("unexpected message: %q", got)
		}
	})

	t.Run("rejects a malformed date before any network call", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{}
		ctrl := NewController(stub, nil)

		err := ctrl.FilterByDate(context.Background(), testSession, "15-01-2025")
		var vErr *validate.Error
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if stub.filterCalls != 0 {
			t.Fatalf("expected no filter request")
		}
		if got := ctrl.Snapshot().ErrorMessage; got != "Date must be in format: YYYY-MM-DD (e.g., 2025-01-15)" {
			t.Fatalf("unexpected message: %q", got)
		}
	})

	t.Run("reports matches with a notice", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{filtered: []api.Meeting{{ID: "m-1"}, {ID: "m-2"}}}
		ctrl := NewController(stub, nil)

		if err := ctrl.FilterByDate(context.Background(), testSession, "2025-01-15"); err != nil {
			t.Fatalf("FilterByDate failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.Phase != PhaseLoaded || snap.FilterDate != "2025-01-15" {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
		if snap.Notice != "Found 2 meeting(s) for 2025-01-15" {
			t.Fatalf("unexpected notice: %q", snap.Notice)
		}
	})

	t.Run("treats an empty day as informational, never an error", func(t *testing.T) {
		t.Parallel()

		// The client maps a 404 filter response to an empty list with no error.
		stub := &meetingAPIStub{filtered: []api.Meeting{}}
		ctrl := NewController(stub, nil)

		if err := ctrl.FilterByDate(context.Background(), testSession, "2025-01-16"); err != nil {
			t.Fatalf("an empty day must not be an error: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.Phase != PhaseLoaded {
			t.Fatalf("expected loaded phase, got %s", snap.Phase)
		}
		if snap.Notice != "No meetings found for 2025-01-16" {
			t.Fatalf("unexpected notice: %q", snap.Notice)
		}
		if snap.ErrorMessage != "" {
			t.Fatalf("unexpected error message: %q", snap.ErrorMessage)
		}
	})

	t.Run("clear filter reloads the full list", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{
			listMeetings: []api.Meeting{{ID: "m-1"}, {ID: "m-2"}},
			filtered:     []api.Meeting{{ID: "m-1"}},
		}
		ctrl := NewController(stub, nil)

		if err := ctrl.FilterByDate(context.Background(), testSession, "2025-01-15"); err != nil {
			t.Fatalf("FilterByDate failed: %v", err)
		}
		if err := ctrl.ClearFilter(context.Background(), testSession); err != nil {
			t.Fatalf("ClearFilter failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.FilterDate != "" || len(snap.Meetings) != 2 {
			t.Fatalf("unexpected snapshot after clear: %+v", snap)
		}
	})
}

func TestController_Create(t *testing.T) {
	t.Parallel()

	t.Run("rejects an invalid draft without a network call", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{}
		ctrl := NewController(stub, nil)

		draft := validDraft()
		draft.CollaboratorsID = "abc, -1"

		_, err := ctrl.Create(context.Background(), testSession, draft)
		var vErr *validate.Error
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if stub.createCalls != 0 {
			t.Fatalf("expected no create request, got %d", stub.createCalls)
		}
		if got := ctrl.Snapshot().ErrorMessage; got != "Please enter valid collaborator IDs (numbers separated by commas)" {
			t.Fatalf("unexpected message: %q", got)
		}
	})

	t.Run("submits the surviving ids from a mixed buffer", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{
			created: api.Meeting{ID: "m-new", InitiatorID: 7},
		}
		ctrl := NewController(stub, nil)

		if err := ctrl.Refresh(context.Background(), testSession); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		draft := validDraft()
		draft.CollaboratorsID = "2, abc"
		if _, err := ctrl.Create(context.Background(), testSession, draft); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if stub.createCalls != 1 {
			t.Fatalf("expected one create request, got %d", stub.createCalls)
		}
		if !reflect.DeepEqual(stub.createParams[0].CollaboratorIDs, []int{2}) {
			t.Fatalf("unexpected collaborators: %v", stub.createParams[0].CollaboratorIDs)
		}
	})

	t.Run("appends the server echo to an unfiltered loaded list", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{
			listMeetings: []api.Meeting{{ID: "m-1", InitiatorID: 7}},
			created:      api.Meeting{ID: "m-new", InitiatorID: 7, Agenda: "Standup"},
		}
		ctrl := NewController(stub, nil)

		if err := ctrl.Refresh(context.Background(), testSession); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		created, err := ctrl.Create(context.Background(), testSession, validDraft())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID != "m-new" {
			t.Fatalf("unexpected echo: %+v", created)
		}

		snap := ctrl.Snapshot()
		if len(snap.Meetings) != 2 || snap.Meetings[1].ID != "m-new" {
			t.Fatalf("expected the echo appended, got %+v", snap.Meetings)
		}
		if snap.Notice != "Meeting created successfully!" {
			t.Fatalf("unexpected notice: %q", snap.Notice)
		}
	})

	t.Run("keeps the current phase when the server rejects", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{
			listMeetings: []api.Meeting{{ID: "m-1"}},
			createErr:    &api.ServerValidationError{Message: "End time must be after start time"},
		}
		ctrl := NewController(stub, nil)

		if err := ctrl.Refresh(context.Background(), testSession); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if _, err := ctrl.Create(context.Background(), testSession, validDraft()); err == nil {
			t.Fatalf("expected error")
		}

		snap := ctrl.Snapshot()
		if snap.Phase != PhaseLoaded {
			t.Fatalf("a failed create must not leave the loaded phase, got %s", snap.Phase)
		}
		if len(snap.Meetings) != 1 {
			t.Fatalf("list must be unchanged, got %+v", snap.Meetings)
		}
		if snap.ErrorMessage != "End time must be after start time" {
			t.Fatalf("unexpected message: %q", snap.ErrorMessage)
		}
	})
}

func TestController_Delete(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, stub *meetingAPIStub, recorder *deleteRecorderStub) *Controller {
		t.Helper()
		ctrl := NewControllerWithMetrics(stub, nil, recorder)
		if err := ctrl.Refresh(context.Background(), testSession); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		return ctrl
	}

	t.Run("refuses locally when the session is not the initiator", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{listMeetings: []api.Meeting{{ID: "m-1", InitiatorID: 3}}}
		recorder := &deleteRecorderStub{}
		ctrl := seed(t, stub, recorder)

		if err := ctrl.Delete(context.Background(), testSession, stub.listMeetings[0]); err != nil {
			t.Fatalf("a denied delete must not surface an error: %v", err)
		}
		if stub.deleteCalls != 0 {
			t.Fatalf("expected no delete request, got %d", stub.deleteCalls)
		}
		if recorder.denied != 1 {
			t.Fatalf("expected one denied observation, got %d", recorder.denied)
		}
		if got := len(ctrl.Snapshot().Meetings); got != 1 {
			t.Fatalf("list must be unchanged, got %d meetings", got)
		}
	})

	t.Run("skips a meeting without a canonical id", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{listMeetings: []api.Meeting{{ID: "m-1", InitiatorID: 7}}}
		recorder := &deleteRecorderStub{}
		ctrl := seed(t, stub, recorder)

		if err := ctrl.Delete(context.Background(), testSession, api.Meeting{InitiatorID: 7}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stub.deleteCalls != 0 {
			t.Fatalf("expected no delete request")
		}
		if len(recorder.failures) != 1 || recorder.failures[0] != "missing_id" {
			t.Fatalf("unexpected failure kinds: %v", recorder.failures)
		}
	})

	t.Run("swallows a server failure and keeps the list", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{
			listMeetings: []api.Meeting{{ID: "m-1", InitiatorID: 7}},
			deleteErr:    &api.ServerError{Status: 500, Message: "boom"},
		}
		recorder := &deleteRecorderStub{}
		ctrl := seed(t, stub, recorder)

		if err := ctrl.Delete(context.Background(), testSession, stub.listMeetings[0]); err != nil {
			t.Fatalf("a failed delete must not surface an error: %v", err)
		}
		if stub.deleteCalls != 1 {
			t.Fatalf("expected one delete request, got %d", stub.deleteCalls)
		}
		if len(recorder.failures) != 1 || recorder.failures[0] != "server" {
			t.Fatalf("unexpected failure kinds: %v", recorder.failures)
		}
		snap := ctrl.Snapshot()
		if len(snap.Meetings) != 1 {
			t.Fatalf("list must be unchanged after a failed delete, got %+v", snap.Meetings)
		}
		if snap.ErrorMessage != "" {
			t.Fatalf("failure must not surface a message, got %q", snap.ErrorMessage)
		}
	})

	t.Run("removes the meeting on success", func(t *testing.T) {
		t.Parallel()

		stub := &meetingAPIStub{listMeetings: []api.Meeting{
			{ID: "m-1", InitiatorID: 7},
			{ID: "m-2", InitiatorID: 7},
		}}
		recorder := &deleteRecorderStub{}
		ctrl := seed(t, stub, recorder)

		if err := ctrl.Delete(context.Background(), testSession, stub.listMeetings[0]); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if len(stub.deletedIDs) != 1 || stub.deletedIDs[0] != "m-1" {
			t.Fatalf("unexpected delete calls: %v", stub.deletedIDs)
		}

		snap := ctrl.Snapshot()
		if len(snap.Meetings) != 1 || snap.Meetings[0].ID != "m-2" {
			t.Fatalf("expected m-1 removed, got %+v", snap.Meetings)
		}
	})
}
