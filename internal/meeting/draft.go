package meeting

import (
	"strings"

	"github.com/example/satellite-console/internal/api"
	"github.com/example/satellite-console/internal/validate"
)

// Draft is transient form state for a meeting being composed. It exists only
// in memory and is discarded on submit or cancel.
type Draft struct {
	// CollaboratorsID is the raw comma-separated input buffer.
	CollaboratorsID string
	StartTime       string
	EndTime         string
	Agenda          string
}

// AddCollaborator appends a single id to the input buffer when it parses as a
// positive integer not already present. It returns whether the entry was
// accepted.
func (d *Draft) AddCollaborator(entry string) bool {
	id, ok := validate.CollaboratorID(entry)
	if !ok {
		return false
	}
	if existing, ok := validate.CollaboratorIDs(d.CollaboratorsID); ok {
		for _, have := range existing {
			if have == id {
				return false
			}
		}
	}
	trimmed := strings.TrimSpace(entry)
	if d.CollaboratorsID == "" {
		d.CollaboratorsID = trimmed
		return true
	}
	d.CollaboratorsID += ", " + trimmed
	return true
}

// Validate applies the full client-side rule set and, when the draft is
// acceptable, produces the request parameters. Only validated drafts may be
// submitted.
func (d Draft) Validate() (api.CreateMeetingParams, *validate.Error) {
	vErr := &validate.Error{}

	if strings.TrimSpace(d.CollaboratorsID) == "" {
		vErr.Add("collaborators", "Please enter collaborator IDs")
		return api.CreateMeetingParams{}, vErr
	}
	ids, ok := validate.CollaboratorIDs(d.CollaboratorsID)
	if !ok {
		vErr.Add("collaborators", "Please enter valid collaborator IDs (numbers separated by commas)")
		return api.CreateMeetingParams{}, vErr
	}

	if strings.TrimSpace(d.StartTime) == "" {
		vErr.Add("startTime", "Please enter start time")
	} else if !validate.Timestamp(d.StartTime) {
		vErr.Add("startTime", "Start time must be in format: YYYY-MM-DDTHH:MM:SS or YYYY-MM-DDTHH:MM")
	}

	if strings.TrimSpace(d.EndTime) == "" {
		vErr.Add("endTime", "Please enter end time")
	} else if !validate.Timestamp(d.EndTime) {
		vErr.Add("endTime", "End time must be in format: YYYY-MM-DDTHH:MM:SS or YYYY-MM-DDTHH:MM")
	}

	if strings.TrimSpace(d.Agenda) == "" {
		vErr.Add("agenda", "Please enter meeting agenda")
	}

	if vErr.HasErrors() {
		return api.CreateMeetingParams{}, vErr
	}

	return api.CreateMeetingParams{
		CollaboratorIDs: ids,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		Agenda:          strings.TrimSpace(d.Agenda),
	}, nil
}
