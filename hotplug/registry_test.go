package hotplug

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCamera struct {
	model string
}

func TestRegistry_SyncAttachDetach(t *testing.T) {
	var attached, detached []string

	r := NewRegistry[*fakeCamera](
		WithOnAttach[*fakeCamera](func(id string, _ *fakeCamera) {
			attached = append(attached, id)
		}),
		WithOnDetach[*fakeCamera](func(id string, _ *fakeCamera) {
			detached = append(detached, id)
		}),
	)

	a, d := r.Sync(map[string]*fakeCamera{
		"SN001": {model: "dsi-pro"},
		"SN002": {model: "dsi-color"},
	})
	assert.Equal(t, 2, a)
	assert.Equal(t, 0, d)
	assert.ElementsMatch(t, []string{"SN001", "SN002"}, attached)
	assert.Equal(t, 2, r.Len())

	// Re-syncing the same snapshot is a no-op: callbacks fire exactly
	// once per transition.
	a, d = r.Sync(map[string]*fakeCamera{
		"SN001": {model: "dsi-pro"},
		"SN002": {model: "dsi-color"},
	})
	assert.Equal(t, 0, a)
	assert.Equal(t, 0, d)
	assert.Len(t, attached, 2)

	// One device unplugged, one new device enumerated.
	a, d = r.Sync(map[string]*fakeCamera{
		"SN002": {model: "dsi-color"},
		"SN003": {model: "dsi-pro-ii"},
	})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, d)
	assert.Equal(t, []string{"SN003"}, attached[2:])
	assert.Equal(t, []string{"SN001"}, detached)
	assert.ElementsMatch(t, []string{"SN002", "SN003"}, r.Identities())
}

func TestRegistry_SyncKeepsStoredPayload(t *testing.T) {
	r := NewRegistry[*fakeCamera]()

	original := &fakeCamera{model: "dsi-pro"}
	r.Sync(map[string]*fakeCamera{"SN001": original})

	// A later snapshot carries a fresh payload for an already-known
	// identity; the stored one must win.
	r.Sync(map[string]*fakeCamera{"SN001": {model: "other"}})

	got, ok := r.Get("SN001")
	require.True(t, ok)
	assert.Same(t, original, got)
}

func TestRegistry_ManualAttachDetach(t *testing.T) {
	var detachedWith *fakeCamera

	r := NewRegistry[*fakeCamera](
		WithOnDetach[*fakeCamera](func(_ string, dev *fakeCamera) {
			detachedWith = dev
		}),
	)

	cam := &fakeCamera{model: "dsi-pro"}
	assert.True(t, r.Attach("SN010", cam))
	assert.False(t, r.Attach("SN010", &fakeCamera{model: "dup"}))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Detach("SN010"))
	assert.Same(t, cam, detachedWith)
	assert.False(t, r.Detach("SN010"))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry[int]()

	_, ok := r.Get("SN404")
	assert.False(t, ok)
}

func TestRegistry_Range(t *testing.T) {
	r := NewRegistry[int]()
	r.Sync(map[string]int{"a": 1, "b": 2, "c": 3})

	seen := map[string]int{}
	r.Range(func(id string, v int) bool {
		seen[id] = v

		return true
	})
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, seen)
}

func TestRegistry_ConcurrentSync(t *testing.T) {
	r := NewRegistry[int]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Sync(map[string]int{"x": 1, "y": 2})
				r.Sync(map[string]int{"x": 1})
			}
		}()
	}
	wg.Wait()

	// Whatever the interleaving, the registry converges to the last
	// snapshot applied, and "x" is always present.
	_, ok := r.Get("x")
	assert.True(t, ok)
	assert.LessOrEqual(t, r.Len(), 2)
}
