// Package hotplug tracks the dynamic set of attached devices for a
// driver, keyed by a stable device identity such as a USB serial number.
//
// Drivers receive raw attach/detach notifications (or poll an
// enumeration API) and feed the current set of identities into
// [Registry.Sync]; the registry diffs it against the known slots and
// fires the attach and detach callbacks exactly once per transition.
// Lookups are lock-free and safe from any goroutine.
package hotplug

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/openastro/go-deviceio/logger"
)

// Registry is a concurrent device-slot table keyed by device identity.
// The payload type T carries whatever per-device state the driver needs
// (an open handle, vendor metadata, worker bookkeeping).
type Registry[T any] struct {
	slots *xsync.MapOf[string, T]

	onAttach func(id string, dev T)
	onDetach func(id string, dev T)
	logger   logger.Logger

	// syncMu serializes Sync/Attach/Detach so callbacks for one identity
	// never interleave. Reads stay lock-free.
	syncMu sync.Mutex
}

// Option configures a Registry.
type Option[T any] func(*Registry[T])

// WithOnAttach sets the callback fired when a new identity appears.
// It is invoked synchronously from Sync or Attach.
func WithOnAttach[T any](fn func(id string, dev T)) Option[T] {
	return func(r *Registry[T]) { r.onAttach = fn }
}

// WithOnDetach sets the callback fired when a known identity disappears.
// It is invoked synchronously from Sync or Detach with the stored payload.
func WithOnDetach[T any](fn func(id string, dev T)) Option[T] {
	return func(r *Registry[T]) { r.onDetach = fn }
}

// WithLogger sets the diagnostic logger for the registry.
func WithLogger[T any](l logger.Logger) Option[T] {
	return func(r *Registry[T]) { r.logger = l }
}

// NewRegistry creates an empty device-slot registry.
func NewRegistry[T any](opts ...Option[T]) *Registry[T] {
	r := &Registry[T]{
		slots:  xsync.NewMapOf[string, T](),
		logger: logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Sync reconciles the registry against a full enumeration snapshot.
//
// Identities present in the snapshot but not in the registry are stored
// and reported attached; identities in the registry but absent from the
// snapshot are removed and reported detached. Identities present in both
// keep their stored payload untouched. Returns the number of attach and
// detach transitions performed.
func (r *Registry[T]) Sync(present map[string]T) (attached, detached int) {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	for id, dev := range present {
		if _, loaded := r.slots.LoadOrStore(id, dev); !loaded {
			attached++
			r.logger.Debug("hotplug: device attached", "id", id)

			if r.onAttach != nil {
				r.onAttach(id, dev)
			}
		}
	}

	var gone []string
	r.slots.Range(func(id string, _ T) bool {
		if _, ok := present[id]; !ok {
			gone = append(gone, id)
		}

		return true
	})

	for _, id := range gone {
		dev, ok := r.slots.LoadAndDelete(id)
		if !ok {
			continue
		}

		detached++
		r.logger.Debug("hotplug: device detached", "id", id)

		if r.onDetach != nil {
			r.onDetach(id, dev)
		}
	}

	return attached, detached
}

// Attach adds a single device. It returns false (and fires no callback)
// if the identity is already present.
func (r *Registry[T]) Attach(id string, dev T) bool {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	if _, loaded := r.slots.LoadOrStore(id, dev); loaded {
		return false
	}

	r.logger.Debug("hotplug: device attached", "id", id)

	if r.onAttach != nil {
		r.onAttach(id, dev)
	}

	return true
}

// Detach removes a single device. It returns false (and fires no
// callback) if the identity is unknown.
func (r *Registry[T]) Detach(id string) bool {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	dev, ok := r.slots.LoadAndDelete(id)
	if !ok {
		return false
	}

	r.logger.Debug("hotplug: device detached", "id", id)

	if r.onDetach != nil {
		r.onDetach(id, dev)
	}

	return true
}

// Get returns the payload stored for id.
func (r *Registry[T]) Get(id string) (T, bool) {
	return r.slots.Load(id)
}

// Len returns the number of attached devices.
func (r *Registry[T]) Len() int {
	return r.slots.Size()
}

// Identities returns a snapshot of the attached device identities, in
// no particular order.
func (r *Registry[T]) Identities() []string {
	ids := make([]string, 0, r.slots.Size())
	r.slots.Range(func(id string, _ T) bool {
		ids = append(ids, id)

		return true
	})

	return ids
}

// Range calls f for each attached device until f returns false.
func (r *Registry[T]) Range(f func(id string, dev T) bool) {
	r.slots.Range(f)
}
