package loop

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/toastd/internal/errors"
)

// DefaultQueueSize is the task buffer used when Config.QueueSize is zero.
const DefaultQueueSize = 256

// Config configures a Loop.
type Config struct {
	// QueueSize is the capacity of the task queue.
	QueueSize int

	// Logger receives panic and overflow reports.
	Logger *slog.Logger
}

// Loop is a real-time Scheduler backed by one goroutine.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once
	logger *slog.Logger

	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	pending atomic.Int64
}

// New creates a Loop. Call Run to start processing tasks.
func New(config Config) *Loop {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "loop")
	}
	return &Loop{
		tasks:  make(chan func(), config.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
		timers: make(map[*time.Timer]struct{}),
	}
}

// Run processes tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.tasks:
			l.execute(fn)

		case <-ctx.Done():
			l.Close()
			return ctx.Err()

		case <-l.done:
			return nil
		}
	}
}

// execute runs a task with panic recovery.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post queues fn to run on the loop. Tasks posted after Close are
// discarded, and so is a task that finds the queue full.
func (l *Loop) Post(fn func()) {
	if l.closed.Load() {
		return
	}
	select {
	case l.tasks <- fn:
	case <-l.done:
	default:
		l.logger.Warn("task queue full, discarding callback")
	}
}

// postWait queues fn, blocking until there is room or the loop closes.
func (l *Loop) postWait(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// AfterFunc runs fn on the loop after d. Timer callbacks wait for queue
// space rather than being dropped.
func (l *Loop) AfterFunc(d time.Duration, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timers == nil {
		return
	}
	l.pending.Add(1)

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()

		l.postWait(func() {
			defer l.pending.Add(-1)
			fn()
		})
	})
	l.timers[t] = struct{}{}
}

// Do runs fn on the loop and waits for it to finish.
// It must not be called from a task running on the same loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.closed.Load() {
		return errors.New("T012")
	}
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return errors.New("T012")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return errors.New("T012")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of timers that have not run yet.
func (l *Loop) Pending() int {
	return int(l.pending.Load())
}

// Close stops the loop and its outstanding timers.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.done)

		l.mu.Lock()
		for t := range l.timers {
			if t.Stop() {
				l.pending.Add(-1)
			}
		}
		l.timers = nil
		l.mu.Unlock()
	})
}

// Done returns a channel closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
