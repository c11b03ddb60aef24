// Package store defines the local persistence abstraction used to cache the
// current session and profile between runs. It mirrors the key-value contract
// of a device store: a handful of well-known string keys holding either plain
// values or serialized JSON documents.
package store

import "context"

// Well-known persisted keys.
const (
	// KeyUserID holds the numeric identifier of the signed-in user.
	KeyUserID = "userId"
	// KeyUsername holds the login handle of the signed-in user.
	KeyUsername = "username"
	// KeyUserProfile holds the cached profile document as JSON.
	KeyUserProfile = "userProfile"
	// KeyCredentialDigest holds the argon2id digest used for offline unlock.
	KeyCredentialDigest = "credentialDigest"
)

// KV captures the persistence interactions needed by the session layer.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Reset removes every stored key (app-level data reset).
	Reset(ctx context.Context) error
}
