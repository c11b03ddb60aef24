package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Meeting is the canonical client-side representation of a meeting record.
// Ingestion resolves the backend's aliased identifier fields into the single
// ID value; nothing past this boundary sees the wire aliases.
type Meeting struct {
	ID              string
	InitiatorID     int
	CollaboratorIDs []int
	StartTime       string
	EndTime         string
	Agenda          string
}

// meetingDocument mirrors the loosely-typed wire shape of a meeting. The
// identifier may arrive under any of four field names and collaborators may be
// a comma-separated string or an array.
type meetingDocument struct {
	ID              json.RawMessage `json:"id"`
	MeetingID       json.RawMessage `json:"meetingId"`
	MongoID         json.RawMessage `json:"_id"`
	UpperID         json.RawMessage `json:"ID"`
	InitiatorID     json.RawMessage `json:"initiatorId"`
	CollaboratorsID json.RawMessage `json:"collaboratorsId"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	Agenda          string          `json:"agenda"`
}

// decodeMeetings parses a meetings response body. The backend sometimes
// returns a bare object instead of an array; a single object is normalized
// into a one-element list.
func decodeMeetings(body []byte) ([]Meeting, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Meeting{}, nil
	}

	var docs []meetingDocument
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("parse meetings array: %w", err)
		}
	} else {
		var doc meetingDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parse meeting object: %w", err)
		}
		docs = []meetingDocument{doc}
	}

	meetings := make([]Meeting, 0, len(docs))
	for _, doc := range docs {
		meetings = append(meetings, doc.normalize())
	}
	return meetings, nil
}

// normalize resolves aliases and flexible encodings into the canonical shape.
func (d meetingDocument) normalize() Meeting {
	initiator, _ := intFromRaw(d.InitiatorID)
	return Meeting{
		ID:              d.canonicalID(),
		InitiatorID:     initiator,
		CollaboratorIDs: collaboratorsFromRaw(d.CollaboratorsID),
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		Agenda:          d.Agenda,
	}
}

// canonicalID picks the identifier from the first populated alias in a fixed
// priority order: id, meetingId, _id, ID.
func (d meetingDocument) canonicalID() string {
	for _, raw := range []json.RawMessage{d.ID, d.MeetingID, d.MongoID, d.UpperID} {
		if id, ok := stringFromRaw(raw); ok && id != "" {
			return id
		}
	}
	return ""
}

// stringFromRaw renders a raw JSON scalar as a string. Numbers keep their
// wire representation so identifiers round-trip without reformatting.
func stringFromRaw(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

// intFromRaw parses a raw JSON scalar as an integer, accepting both numbers
// and numeric strings.
func intFromRaw(raw json.RawMessage) (int, bool) {
	s, ok := stringFromRaw(raw)
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return value, true
}

// collaboratorsFromRaw parses the collaboratorsId wire field, which may be a
// comma-separated string ("2, 3"), an array of numbers, or an array of
// numeric strings. Non-positive and duplicate entries are dropped; the result
// is sorted for stable comparisons.
func collaboratorsFromRaw(raw json.RawMessage) []int {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var candidates []string
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		for _, item := range items {
			if s, ok := stringFromRaw(item); ok {
				candidates = append(candidates, s)
			}
		}
	} else if s, ok := stringFromRaw(trimmed); ok {
		candidates = strings.Split(s, ",")
	}

	seen := make(map[int]struct{}, len(candidates))
	ids := make([]int, 0, len(candidates))
	for _, candidate := range candidates {
		id, err := strconv.Atoi(strings.TrimSpace(candidate))
		if err != nil || id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// joinCollaborators encodes collaborator ids into the comma-separated wire
// format the backend expects on meeting creation.
func joinCollaborators(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ", ")
}
