package loop

import (
	"container/heap"
	"sync"
	"time"
)

// epoch is the starting instant of every Virtual scheduler.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Virtual is a Scheduler on simulated time. Nothing runs until Advance or
// Flush is called; callbacks then run on the calling goroutine.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers timerHeap
	seq    uint64
}

// NewVirtual creates a Virtual scheduler starting at a fixed epoch.
func NewVirtual() *Virtual {
	return &Virtual{now: epoch}
}

// Now returns the current simulated time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Elapsed returns the simulated time since the scheduler was created.
func (v *Virtual) Elapsed() time.Duration {
	return v.Now().Sub(epoch)
}

// Post queues fn to run on the next Advance or Flush.
func (v *Virtual) Post(fn func()) {
	v.mu.Lock()
	v.queue = append(v.queue, fn)
	v.mu.Unlock()
}

// AfterFunc schedules fn at now+d. Negative durations count as zero.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	v.mu.Lock()
	v.seq++
	heap.Push(&v.timers, &virtualTimer{when: v.now.Add(d), seq: v.seq, fn: fn})
	v.mu.Unlock()
}

// Pending returns the number of timers that have not run yet.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}

// Flush runs posted tasks and timers due at the current time.
func (v *Virtual) Flush() {
	v.Advance(0)
}

// Advance moves simulated time forward by d. Posted tasks run first, then
// every timer due by the new time in deadline order; timers with the same
// deadline run in the order they were scheduled. Work scheduled by a
// callback runs too when it falls due within the window.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	v.drainQueue()
	for {
		v.mu.Lock()
		if len(v.timers) == 0 || v.timers[0].when.After(target) {
			v.now = target
			v.mu.Unlock()
			return
		}
		t := heap.Pop(&v.timers).(*virtualTimer)
		v.now = t.when
		v.mu.Unlock()

		t.fn()
		v.drainQueue()
	}
}

func (v *Virtual) drainQueue() {
	for {
		v.mu.Lock()
		if len(v.queue) == 0 {
			v.mu.Unlock()
			return
		}
		fn := v.queue[0]
		v.queue = v.queue[1:]
		v.mu.Unlock()

		fn()
	}
}

type virtualTimer struct {
	when time.Time
	seq  uint64
	fn   func()
}

// timerHeap orders timers by deadline, then by scheduling sequence.
type timerHeap []*virtualTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*virtualTimer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
