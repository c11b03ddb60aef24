// Package session owns the post-login bootstrap sequence and the locally
// cached session state. Login persists the identity and a fallback profile
// immediately, then attempts one best-effort enrichment from the profile
// endpoint; enrichment failures never surface to the user because the
// fallback already satisfies the UI contract.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/satellite-console/internal/api"
	"github.com/example/satellite-console/internal/logging"
	"github.com/example/satellite-console/internal/metrics"
	"github.com/example/satellite-console/internal/store"
	"github.com/example/satellite-console/internal/validate"
)

// ProfileAPI captures the remote operations required by the manager.
type ProfileAPI interface {
	Login(ctx context.Context, username, password string) (api.Credentials, error)
	Register(ctx context.Context, params api.RegisterParams) (api.Credentials, error)
	FetchProfile(ctx context.Context, userID int) (api.ProfileDocument, error)
}

// DigestFunc derives a locally stored credential digest from a password.
type DigestFunc func(password string) (string, error)

// DigestVerifier compares a stored digest with a candidate password.
type DigestVerifier func(digest, password string) error

// Manager coordinates login, registration, profile caching, and offline
// unlock against the local store.
type Manager struct {
	client  ProfileAPI
	kv      store.KV
	digest  DigestFunc
	verify  DigestVerifier
	now     func() time.Time
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewManager constructs a Manager with default digest functions and logger.
func NewManager(client ProfileAPI, kv store.KV, now func() time.Time) *Manager {
	return NewManagerWithLogger(client, kv, nil, nil, now, nil, nil)
}

// NewManagerWithLogger constructs a Manager with explicit digest functions,
// logger, and metrics recorder. Nil values fall back to working defaults.
func NewManagerWithLogger(client ProfileAPI, kv store.KV, digest DigestFunc, verify DigestVerifier, now func() time.Time, logger *slog.Logger, recorder metrics.Recorder) *Manager {
	if digest == nil {
		digest = func(password string) (string, error) {
			return CreateCredentialDigest(password, DefaultArgon2idParams)
		}
	}
	if verify == nil {
		verify = VerifyCredentialDigest
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Manager{
		client:  client,
		kv:      kv,
		digest:  digest,
		verify:  verify,
		now:     now,
		logger:  logger,
		metrics: recorder,
	}
}

func (m *Manager) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.ServiceLogger(ctx, m.logger, "SessionManager", operation, attrs...)
}

// Login authenticates the credentials, persists the session and a fallback
// profile, then attempts one best-effort enrichment from the profile
// endpoint. The returned profile is always usable; enrichment failure is
// logged and counted but never returned.
func (m *Manager) Login(ctx context.Context, username, password string) (profile Profile, err error) {
	if m == nil {
		err = fmt.Errorf("Manager is nil")
		return
	}
	if m.client == nil {
		err = fmt.Errorf("api client not configured")
		return
	}
	if m.kv == nil {
		err = fmt.Errorf("local store not configured")
		return
	}

	username = strings.TrimSpace(username)
	logger := m.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", api.ErrorKind(err))
			m.metrics.RecordSync("login", "failure")
			return
		}
		logger.With("fallback", profile.IsFallback).InfoContext(ctx, "login succeeded")
		m.metrics.RecordSync("login", "success")
	}()

	if username == "" || password == "" {
		vErr := &validate.Error{}
		vErr.Add("credentials", "Please enter username and password")
		err = vErr
		return
	}

	creds, err := m.client.Login(ctx, username, password)
	if err != nil {
		return Profile{}, err
	}

	if err = m.persistSession(ctx, Session{UserID: creds.UserID, Username: creds.Username}); err != nil {
		return Profile{}, fmt.Errorf("persist session: %w", err)
	}

	// Best-effort: a failed digest only disables offline unlock.
	if digest, derr := m.digest(password); derr != nil {
		logger.ErrorContext(ctx, "credential digest derivation failed", "error", derr)
	} else if serr := m.kv.Set(ctx, store.KeyCredentialDigest, digest); serr != nil {
		logger.ErrorContext(ctx, "credential digest persist failed", "error", serr)
	}

	fallback := FallbackProfile(creds.Username, m.now())
	if err = m.persistProfile(ctx, fallback); err != nil {
		return Profile{}, fmt.Errorf("persist fallback profile: %w", err)
	}

	profile = m.enrich(ctx, creds.UserID, fallback)
	return profile, nil
}

// enrich attempts to replace the fallback profile with the authoritative one.
// Any failure leaves the fallback in place and is reported only through the
// log and the failure counter.
func (m *Manager) enrich(ctx context.Context, userID int, fallback Profile) Profile {
	logger := m.loggerWith(ctx, "Login", "user_id", userID)

	doc, err := m.client.FetchProfile(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "profile enrichment failed, keeping fallback", "error", err, "error_kind", api.ErrorKind(err))
		m.metrics.RecordEnrichmentFailure(api.ErrorKind(err))
		return fallback
	}

	authoritative := ProfileFromDocument(doc, m.now())
	if err := m.persistProfile(ctx, authoritative); err != nil {
		logger.ErrorContext(ctx, "authoritative profile persist failed, fallback remains cached", "error", err)
		m.metrics.RecordEnrichmentFailure("store")
		return authoritative
	}
	return authoritative
}

// Register validates the sign-up input locally and submits it. Validation
// failures never reach the network.
func (m *Manager) Register(ctx context.Context, input RegisterInput) (err error) {
	if m == nil {
		return fmt.Errorf("Manager is nil")
	}
	if m.client == nil {
		return fmt.Errorf("api client not configured")
	}

	logger := m.loggerWith(ctx, "Register", "username", strings.TrimSpace(input.Username))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", api.ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "registration succeeded")
	}()

	if vErr := validateRegisterInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	_, err = m.client.Register(ctx, api.RegisterParams{
		Name:        strings.TrimSpace(input.Name),
		Username:    strings.TrimSpace(input.Username),
		Designation: strings.TrimSpace(input.Designation),
		Email:       strings.TrimSpace(input.Email),
		Password:    input.Password,
	})
	return err
}

// Current returns the persisted session, or api.ErrUnauthenticated when no
// login has been stored.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	if m == nil || m.kv == nil {
		return Session{}, fmt.Errorf("local store not configured")
	}

	rawID, err := m.kv.Get(ctx, store.KeyUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, api.ErrUnauthenticated
		}
		return Session{}, err
	}
	userID, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return Session{}, fmt.Errorf("stored user id malformed: %w", err)
	}

	username, err := m.kv.Get(ctx, store.KeyUsername)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Session{}, err
	}

	return Session{UserID: userID, Username: username}, nil
}

// CachedProfile returns the persisted profile document.
func (m *Manager) CachedProfile(ctx context.Context) (Profile, error) {
	if m == nil || m.kv == nil {
		return Profile{}, fmt.Errorf("local store not configured")
	}

	raw, err := m.kv.Get(ctx, store.KeyUserProfile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, api.ErrUnauthenticated
		}
		return Profile{}, err
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return Profile{}, fmt.Errorf("cached profile malformed: %w", err)
	}
	return profile, nil
}

// Unlock re-opens the cached session without a network call by verifying the
// password against the stored credential digest.
func (m *Manager) Unlock(ctx context.Context, password string) (Session, Profile, error) {
	if m == nil || m.kv == nil {
		return Session{}, Profile{}, fmt.Errorf("local store not configured")
	}

	logger := m.loggerWith(ctx, "Unlock")

	digest, err := m.kv.Get(ctx, store.KeyCredentialDigest)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, Profile{}, api.ErrUnauthenticated
		}
		return Session{}, Profile{}, err
	}

	if err := m.verify(digest, password); err != nil {
		logger.WarnContext(ctx, "offline unlock rejected", "error", err)
		return Session{}, Profile{}, ErrCredentialMismatch
	}

	sess, err := m.Current(ctx)
	if err != nil {
		return Session{}, Profile{}, err
	}
	profile, err := m.CachedProfile(ctx)
	if err != nil {
		return Session{}, Profile{}, err
	}

	logger.With("user_id", sess.UserID).InfoContext(ctx, "offline unlock succeeded")
	return sess, profile, nil
}

// Logout removes every persisted key (app-level data reset).
func (m *Manager) Logout(ctx context.Context) error {
	if m == nil || m.kv == nil {
		return fmt.Errorf("local store not configured")
	}
	if err := m.kv.Reset(ctx); err != nil {
		return fmt.Errorf("reset local store: %w", err)
	}
	m.loggerWith(ctx, "Logout").InfoContext(ctx, "session cleared")
	return nil
}

func (m *Manager) persistSession(ctx context.Context, sess Session) error {
	if err := m.kv.Set(ctx, store.KeyUserID, strconv.Itoa(sess.UserID)); err != nil {
		return err
	}
	return m.kv.Set(ctx, store.KeyUsername, sess.Username)
}

func (m *Manager) persistProfile(ctx context.Context, profile Profile) error {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return m.kv.Set(ctx, store.KeyUserProfile, string(encoded))
}

func validateRegisterInput(input RegisterInput) *validate.Error {
	vErr := &validate.Error{}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Username) == "" ||
		strings.TrimSpace(input.Email) == "" || input.Password == "" {
		vErr.Add("required", "Please fill all required fields.")
		return vErr
	}
	if !validate.Email(input.Email) {
		vErr.Add("email", "Please enter a valid email address.")
	}
	if !validate.Password(input.Password) {
		vErr.Add("password", "Password must be at least 6 characters.")
	}
	if !validate.PasswordsMatch(input.Password, input.Confirm) {
		vErr.Add("confirm", "Passwords do not match.")
	}
	return vErr
}
