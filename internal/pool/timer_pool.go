// Package pool provides small object pools shared by the transport
// packages. Its timer pool lets blocking retry loops pace themselves
// without allocating a fresh time.Timer on every iteration.
package pool

import (
	"sync"
	"time"
)

var timers sync.Pool

// GetTimer returns a timer from the pool armed for duration d.
//
// The timer must be returned with PutTimer once its channel has been
// consumed or the caller is done with it.
func GetTimer(d time.Duration) *time.Timer {
	v := timers.Get()
	if v == nil {
		return time.NewTimer(d)
	}

	t := v.(*time.Timer)
	if t.Reset(d) {
		// The timer was still active; drain any pending tick so the
		// caller only ever observes the new expiry.
		select {
		case <-t.C:
		default:
		}
	}

	return t
}

// PutTimer stops t and returns it to the pool.
//
// t must not be touched after this call.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timers.Put(t)
}

// Sleep blocks for duration d using a pooled timer.
func Sleep(d time.Duration) {
	t := GetTimer(d)
	<-t.C
	PutTimer(t)
}
