// Package validate provides the pure form-validation rules shared by the
// sign-in, sign-up, and meeting creation flows. None of the functions here
// perform I/O; they classify input and report user-facing failure messages so
// that invalid submissions never reach the network layer.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// timestampPattern accepts second-resolution as optional, matching the
	// backend's local-timestamp encoding.
	timestampPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2})?$`)
	filterDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// MinPasswordLength is the minimum accepted password length for registration.
const MinPasswordLength = 6

// Email reports whether the value has a local@domain.tld shape.
func Email(value string) bool {
	return emailPattern.MatchString(strings.ToLower(strings.TrimSpace(value)))
}

// Password reports whether the value satisfies the minimum length rule.
func Password(value string) bool {
	return len(value) >= MinPasswordLength
}

// PasswordsMatch reports whether the confirmation equals the password exactly.
func PasswordsMatch(password, confirm string) bool {
	return password == confirm
}

// Timestamp reports whether the value matches YYYY-MM-DDTHH:MM with optional
// seconds.
func Timestamp(value string) bool {
	return timestampPattern.MatchString(value)
}

// FilterDate reports whether the value matches YYYY-MM-DD.
func FilterDate(value string) bool {
	return filterDatePattern.MatchString(value)
}

// CollaboratorID parses a single collaborator identifier. It succeeds only for
// positive integers.
func CollaboratorID(value string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CollaboratorIDs parses a comma-separated collaborator list into de-duplicated
// positive integers. Entries that are blank, duplicated, or not positive
// integers are dropped rather than rejected; the list is invalid only when no
// valid identifier remains.
func CollaboratorIDs(value string) ([]int, bool) {
	parts := strings.Split(value, ",")
	seen := make(map[int]struct{}, len(parts))
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, ok := CollaboratorID(part)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, false
	}
	return ids, true
}
