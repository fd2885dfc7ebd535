package dispatcher

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/blockedby/dosimetria-portal/internal/config"
	"github.com/blockedby/dosimetria-portal/internal/mailer"
	"github.com/blockedby/dosimetria-portal/internal/models"
)

func strPtr(s string) *string { return &s }

func testMailConfig() config.MailConfig {
	return config.MailConfig{
		Server:     "smtp.lcd.example.com",
		Port:       587,
		Username:   "bot@lcd.example.com",
		Password:   "secret",
		Logistics:  "logistica@lcd.example.com",
		TimeoutSec: 5,
	}
}

// mockRepo records created dispatch requests.
type mockRepo struct {
	mu      sync.Mutex
	created []*models.DispatchRequest
	err     error
}

func (m *mockRepo) Create(_ context.Context, d *models.DispatchRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	d.ID = uuid.New()
	m.created = append(m.created, d)
	return nil
}

// mockNotifier counts calls and returns a canned outcome.
type mockNotifier struct {
	calls   int
	outcome NotificationOutcome
	panics  bool
	ctxErr  error
}

func (m *mockNotifier) Notify(ctx context.Context, _ *models.DispatchRequest) NotificationOutcome {
	m.calls++
	m.ctxErr = ctx.Err()
	if m.panics {
		panic("boom")
	}
	return m.outcome
}

// mockPublisher records published events.
type mockPublisher struct {
	events []models.DispatchCreatedEvent
	err    error
}

func (m *mockPublisher) PublishDispatchCreated(_ context.Context, e models.DispatchCreatedEvent) error {
	m.events = append(m.events, e)
	return m.err
}

// fakeDialer hands out fakeSessions that record what was sent.
type fakeDialer struct {
	dialErr  error
	sendErrs []error // per Send call, in order

	dials    int
	sent     []*mailer.Message
	closes   int
	attempts int
}

func (f *fakeDialer) Dial(context.Context) (mailer.Session, error) {
	f.dials++
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return &fakeSession{d: f}, nil
}

type fakeSession struct {
	d      *fakeDialer
	closed bool
}

func (s *fakeSession) Send(_ context.Context, msg *mailer.Message) error {
	if s.closed {
		return mailer.ErrSessionClosed
	}
	i := s.d.attempts
	s.d.attempts++
	if i < len(s.d.sendErrs) && s.d.sendErrs[i] != nil {
		return s.d.sendErrs[i]
	}
	s.d.sent = append(s.d.sent, msg)
	return nil
}

func (s *fakeSession) Close() error {
	if !s.closed {
		s.closed = true
		s.d.closes++
	}
	return nil
}

var errRelay = errors.New("535 authentication failed")
