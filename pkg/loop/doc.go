// Package loop provides the single-threaded task scheduler a page runs on.
//
// A browser runs page scripts on one thread: event listeners and timer
// callbacks never interleave. Loop reproduces that on the server. Every
// callback posted with Post or scheduled with AfterFunc runs on the loop
// goroutine, one at a time, so the dom.Document it touches needs no locks.
//
//	l := loop.New(loop.Config{})
//	go l.Run(ctx)
//
//	l.AfterFunc(3*time.Second, func() { node.Remove() })
//
// Timers are fire-and-forget: there is no handle to cancel them, matching
// the page behavior toasts rely on.
//
// Virtual implements the same Scheduler interface on simulated time. Tests
// and the render command use it to step a page forward deterministically:
//
//	v := loop.NewVirtual()
//	v.AfterFunc(3*time.Second, fn)
//	v.Advance(3 * time.Second) // fn has run
package loop

import "time"

// Scheduler runs callbacks on a single logical thread.
type Scheduler interface {
	// Post queues fn to run on the loop after the current task.
	Post(fn func())

	// AfterFunc queues fn to run on the loop no earlier than d from now.
	AfterFunc(d time.Duration, fn func())
}
