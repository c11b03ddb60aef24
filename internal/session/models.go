package session

import "time"

// Session identifies the authenticated actor. It is created on successful
// login and persisted until logout or data reset; there is no expiry.
type Session struct {
	UserID   int
	Username string
}

// Stats holds the numeric profile counters.
type Stats struct {
	TasksCompleted int `json:"tasksCompleted"`
	Missions       int `json:"missions"`
	Followers      int `json:"followers"`
}

// Profile is the cached representation of a user's public data. Every display
// field is non-empty by construction: missing server data is replaced with a
// documented default when the profile is built, never left absent.
type Profile struct {
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Designation    string    `json:"designation"`
	Email          string    `json:"email"`
	Location       string    `json:"location"`
	Bio            string    `json:"bio"`
	JoinedDate     string    `json:"joinedDate"`
	Stats          Stats     `json:"stats"`
	Skills         []string  `json:"skills"`
	RecentActivity []string  `json:"recentActivity"`
	// IsFallback marks profiles synthesized locally from login data rather
	// than fetched from the authoritative source.
	IsFallback bool      `json:"isFallback"`
	CachedAt   time.Time `json:"cachedAt"`
}

// RegisterInput carries the fields submitted on sign-up, including the
// confirmation value that never leaves the client.
type RegisterInput struct {
	Name        string
	Username    string
	Designation string
	Email       string
	Password    string
	Confirm     string
}
