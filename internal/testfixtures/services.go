package testfixtures

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/satellite-console/internal/meeting"
	"github.com/example/satellite-console/internal/metrics"
	"github.com/example/satellite-console/internal/session"
	"github.com/example/satellite-console/internal/store"
)

// ServiceFactory assists tests with constructing console services using a
// deterministic clock and a cheap credential digest.
type ServiceFactory struct {
	Clock *Clock
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock: NewClock(time.Time{}),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// PlainDigest derives a reversible marker digest. Tests use it in place of
// the production argon2id functions to keep assertions readable.
func PlainDigest(password string) (string, error) {
	return "plain$" + password, nil
}

// PlainVerify checks a digest produced by PlainDigest.
func PlainVerify(digest, password string) error {
	if strings.TrimPrefix(digest, "plain$") != password {
		return fmt.Errorf("digest mismatch")
	}
	return nil
}

// SessionManagerDeps captures dependencies for constructing a session manager.
type SessionManagerDeps struct {
	Client  session.ProfileAPI
	KV      store.KV
	Digest  session.DigestFunc
	Verify  session.DigestVerifier
	Now     func() time.Time
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// NewSessionManager builds a session manager using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewSessionManager(deps SessionManagerDeps) *session.Manager {
	kv := deps.KV
	if kv == nil {
		kv = NewMemoryKV()
	}
	digest := deps.Digest
	if digest == nil {
		digest = PlainDigest
	}
	verify := deps.Verify
	if verify == nil {
		verify = PlainVerify
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return session.NewManagerWithLogger(
		deps.Client,
		kv,
		digest,
		verify,
		now,
		deps.Logger,
		deps.Metrics,
	)
}

// MeetingControllerDeps captures dependencies for constructing a meeting
// controller.
type MeetingControllerDeps struct {
	Client  meeting.MeetingAPI
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// NewMeetingController builds a meeting controller using the supplied
// dependencies.
func (f *ServiceFactory) NewMeetingController(deps MeetingControllerDeps) *meeting.Controller {
	return meeting.NewControllerWithMetrics(
		deps.Client,
		deps.Logger,
		deps.Metrics,
	)
}
