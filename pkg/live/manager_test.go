package live

import (
	"context"
	"testing"
	"time"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/dom"
)

func TestManagerCreateGetClose(t *testing.T) {
	rec := &countingRecorder{}
	m := newTestManager(t, nil, WithRecorder(rec))

	s, err := m.Create(dom.NewDocument())
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == "" {
		t.Fatal("session ID is empty")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Errorf("Get(%s) = %v, %v", s.ID, got, err)
	}

	m.Close(s.ID)
	if !s.IsClosed() {
		t.Error("session not closed")
	}
	if _, err := m.Get(s.ID); !errors.HasCode(err, "T010") {
		t.Errorf("Get after Close = %v, want T010", err)
	}

	// Closing twice is a no-op.
	m.Close(s.ID)

	opened, closed, _ := rec.counts()
	if opened != 1 || closed != 1 {
		t.Errorf("recorder opened/closed = %d/%d, want 1/1", opened, closed)
	}
}

func TestManagerUniqueIDs(t *testing.T) {
	m := newTestManager(t, nil)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		s, err := m.Create(dom.NewDocument())
		if err != nil {
			t.Fatal(err)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate session ID %s", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestManagerCleanupIdle(t *testing.T) {
	m := newTestManager(t, func(c *Config) {
		c.IdleTimeout = time.Minute
		c.Toast.Lifetime = time.Hour
	})

	quiet, _ := loadPage(t, m, testPage, "/")
	busy, _ := loadPage(t, m, testPage, "/?msg=Saved")

	if n := m.cleanupIdle(time.Now()); n != 0 {
		t.Fatalf("cleanupIdle(now) closed %d sessions, want 0", n)
	}

	n := m.cleanupIdle(time.Now().Add(2 * time.Minute))
	if n != 1 {
		t.Fatalf("cleanupIdle(+2m) closed %d sessions, want 1", n)
	}
	if !quiet.IsClosed() {
		t.Error("session without toasts should be reaped")
	}
	if busy.IsClosed() {
		t.Error("session with a pending removal must be kept")
	}
}

func TestManagerShutdown(t *testing.T) {
	rec := &countingRecorder{}
	m := NewManager(DefaultConfig(), WithRecorder(rec))

	a, _ := m.Create(dom.NewDocument())
	b, _ := m.Create(dom.NewDocument())

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !a.IsClosed() || !b.IsClosed() {
		t.Error("Shutdown left sessions open")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after Shutdown", m.Count())
	}
	if _, err := m.Create(dom.NewDocument()); !errors.HasCode(err, "T011") {
		t.Errorf("Create after Shutdown = %v, want T011", err)
	}
	if _, closed, _ := rec.counts(); closed != 2 {
		t.Errorf("recorder closed = %d, want 2", closed)
	}

	// A second Shutdown must not panic.
	m.Shutdown(context.Background())
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{HeartbeatInterval: 5 * time.Second, ReadTimeout: time.Second}.withDefaults()

	if cfg.ReadTimeout <= cfg.HeartbeatInterval {
		t.Errorf("ReadTimeout %v must exceed HeartbeatInterval %v", cfg.ReadTimeout, cfg.HeartbeatInterval)
	}
	if cfg.QueueSize != 256 || cfg.OutboxSize != 64 {
		t.Errorf("sizes = %d/%d", cfg.QueueSize, cfg.OutboxSize)
	}
	if cfg.LivePath != "/_toast/live" {
		t.Errorf("LivePath = %q", cfg.LivePath)
	}
}

func TestManagerSessionLimit(t *testing.T) {
	m := newTestManager(t, func(c *Config) { c.MaxSessions = 1 })

	first, err := m.Create(dom.NewDocument())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create(dom.NewDocument()); !errors.HasCode(err, "T013") {
		t.Fatalf("Create over limit = %v, want T013", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	// Closing a session frees its slot.
	m.Close(first.ID)
	if _, err := m.Create(dom.NewDocument()); err != nil {
		t.Errorf("Create after Close = %v", err)
	}
}
