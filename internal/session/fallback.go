package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/satellite-console/internal/api"
)

// Display defaults applied when the server omits a field. The profile
// invariant requires every display field to carry a value.
const (
	defaultDesignation = "Team Member"
	defaultLocation    = "Location not specified"
	defaultJoined      = "Recently"
	defaultEmail       = "Email not available"
)

// FallbackProfile synthesizes a profile from login data alone. It satisfies
// the UI contract immediately after login regardless of whether the profile
// endpoint is reachable.
func FallbackProfile(username string, now time.Time) Profile {
	name := strings.TrimSpace(username)
	if name == "" {
		name = "User"
	}
	return Profile{
		Name:        name,
		Username:    name,
		Designation: defaultDesignation,
		Email:       name + "@domain.com",
		Location:    defaultLocation,
		Bio:         fmt.Sprintf("Welcome %s! Full profile details will appear once the profile service is reachable.", name),
		JoinedDate:  defaultJoined,
		Stats:       Stats{},
		Skills:      []string{defaultDesignation, "Task Management", "System Operations"},
		RecentActivity: []string{
			"Login successful",
			"Basic profile created from login data",
			"Profile sync pending",
		},
		IsFallback: true,
		CachedAt:   now.UTC(),
	}
}

// ProfileFromDocument builds an authoritative profile from the raw server
// document, filling defaults for any absent display field.
func ProfileFromDocument(doc api.ProfileDocument, now time.Time) Profile {
	username := strings.TrimSpace(doc.Username)
	if username == "" {
		username = "unknown"
	}

	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = username
	}
	if name == "unknown" {
		name = "User"
	}

	designation := strings.TrimSpace(doc.Designation)
	if designation == "" {
		designation = "No designation"
	}

	email := strings.TrimSpace(doc.Email)
	if email == "" {
		email = defaultEmail
	}

	location := strings.TrimSpace(doc.Location)
	if location == "" {
		location = defaultLocation
	}

	bio := strings.TrimSpace(doc.Bio)
	if bio == "" {
		bio = fmt.Sprintf("%s working on satellite task management and automation systems.", designation)
	}

	joined := joinedDate(doc)

	skills := doc.Skills
	if len(skills) == 0 {
		skills = []string{designation, "Task Management", "System Operations"}
	}

	recent := doc.Recent
	if len(recent) == 0 {
		recent = []string{
			fmt.Sprintf("Profile created as %s", designation),
			"Joined the satellite task management system",
			"Account setup completed",
		}
	}

	return Profile{
		Name:        name,
		Username:    username,
		Designation: designation,
		Email:       email,
		Location:    location,
		Bio:         bio,
		JoinedDate:  joined,
		Stats: Stats{
			TasksCompleted: doc.TasksCompleted,
			Missions:       doc.Missions,
			Followers:      doc.Followers,
		},
		Skills:         skills,
		RecentActivity: recent,
		IsFallback:     false,
		CachedAt:       now.UTC(),
	}
}

// joinedDate derives the display join date: the date part of createdAt when
// present, then the explicit joined field, then the default.
func joinedDate(doc api.ProfileDocument) string {
	if created := strings.TrimSpace(doc.CreatedAt); created != "" {
		if idx := strings.IndexByte(created, 'T'); idx > 0 {
			return created[:idx]
		}
		return created
	}
	if joined := strings.TrimSpace(doc.Joined); joined != "" {
		return joined
	}
	return defaultJoined
}
