package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/satellite-console/internal/api"
)

var (
	userCounter    uint64
	meetingCounter uint64
)

var referenceTime = time.Date(2025, time.January, 15, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Credential fixtures ---------------------------

// NewCredentialsFixture returns deterministic login credentials.
func NewCredentialsFixture() api.Credentials {
	idx := atomic.AddUint64(&userCounter, 1)
	return api.Credentials{
		UserID:   int(idx),
		Username: fmt.Sprintf("operator-%03d", idx),
	}
}

// ---------------------------- Profile fixtures -----------------------------

// ProfileDocumentOption configures the generated profile document.
type ProfileDocumentOption func(*api.ProfileDocument)

// NewProfileDocumentFixture returns a fully populated backend profile payload
// with optional overrides.
func NewProfileDocumentFixture(opts ...ProfileDocumentOption) api.ProfileDocument {
	doc := api.ProfileDocument{
		Name:           "Alex Mercer",
		Username:       "amercer",
		Designation:    "Mission Specialist",
		Email:          "amercer@example.com",
		Location:       "Ground Station 4",
		Bio:            "Coordinates uplink windows and task assignments.",
		CreatedAt:      "2024-06-01T08:00:00",
		Joined:         "June 2024",
		TasksCompleted: 42,
		Missions:       7,
		Followers:      12,
		Skills:         []string{"Telemetry", "Scheduling"},
		Recent:         []string{"Completed uplink review"},
	}
	for _, opt := range opts {
		opt(&doc)
	}
	return doc
}

// WithProfileUsername overrides the document username.
func WithProfileUsername(username string) ProfileDocumentOption {
	return func(d *api.ProfileDocument) {
		d.Username = username
	}
}

// WithProfileName overrides the document display name.
func WithProfileName(name string) ProfileDocumentOption {
	return func(d *api.ProfileDocument) {
		d.Name = name
	}
}

// ---------------------------- Meeting fixtures -----------------------------

// MeetingOption configures the generated meeting fixture.
type MeetingOption func(*api.Meeting)

// NewMeetingFixture returns a deterministic meeting with optional overrides.
// Successive calls yield distinct identifiers and shifted start times.
func NewMeetingFixture(opts ...MeetingOption) api.Meeting {
	idx := atomic.AddUint64(&meetingCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	meeting := api.Meeting{
		ID:              fmt.Sprintf("meeting-%03d", idx),
		InitiatorID:     1,
		CollaboratorIDs: []int{2, 3},
		StartTime:       start.Format("2006-01-02T15:04:05"),
		EndTime:         start.Add(30 * time.Minute).Format("2006-01-02T15:04:05"),
		Agenda:          fmt.Sprintf("Sync %03d", idx),
	}
	for _, opt := range opts {
		opt(&meeting)
	}
	return meeting
}

// WithMeetingID overrides the generated meeting identifier.
func WithMeetingID(id string) MeetingOption {
	return func(m *api.Meeting) {
		m.ID = id
	}
}

// WithMeetingInitiator overrides the initiator identifier.
func WithMeetingInitiator(userID int) MeetingOption {
	return func(m *api.Meeting) {
		m.InitiatorID = userID
	}
}

// WithMeetingCollaborators overrides the collaborator list.
func WithMeetingCollaborators(ids ...int) MeetingOption {
	return func(m *api.Meeting) {
		m.CollaboratorIDs = ids
	}
}

// WithMeetingAgenda overrides the agenda text.
func WithMeetingAgenda(agenda string) MeetingOption {
	return func(m *api.Meeting) {
		m.Agenda = agenda
	}
}

// WithMeetingWindow overrides the start and end timestamps.
func WithMeetingWindow(start, end string) MeetingOption {
	return func(m *api.Meeting) {
		m.StartTime = start
		m.EndTime = end
	}
}
