// Package resource implements the remote-resource view state machine used
// by every data-backed card in the client: fetch on key change, track
// loading/error/success, and never let a stale response overwrite newer
// state.
package resource

import (
	"context"
	"sync"

	"codeprep-cli/internal/api"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateFailed
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFailed:
		return "failed"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// FetchFunc loads the resource identified by key.
type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

// Snapshot is a consistent view of a fetcher's state.
type Snapshot[T any] struct {
	State State
	Key   string
	Data  T
	// Err is the display string for StateFailed, normalized from the
	// response body's message or the generic fallback.
	Err string
}

// Fetcher drives one remote resource. Load starts exactly one fetch per
// key transition; responses are committed only if their generation token
// still matches, so a reply for a superseded key is dropped instead of
// clobbering newer state. There is no retry and no caching: a fetcher
// re-fetches whenever the key changes or Reload is called.
type Fetcher[T any] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	state    State
	key      string
	gen      int
	data     T
	errMsg   string
	onChange func()
}

func NewFetcher[T any](fetch FetchFunc[T]) *Fetcher[T] {
	return &Fetcher[T]{fetch: fetch}
}

// SetOnChange installs a render hook invoked after every committed
// transition. Must be set before the first Load.
func (f *Fetcher[T]) SetOnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// Load switches the fetcher to key and starts a fetch. Loading the key the
// fetcher is already tracking is a no-op; use Reload to force a re-fetch.
func (f *Fetcher[T]) Load(ctx context.Context, key string) {
	f.mu.Lock()
	if f.key == key && f.state != StateIdle {
		f.mu.Unlock()
		return
	}
	f.key = key
	f.mu.Unlock()
	f.start(ctx, key)
}

// Reload re-fetches the current key, e.g. after the user re-triggers a
// failed action.
func (f *Fetcher[T]) Reload(ctx context.Context) {
	f.mu.Lock()
	key := f.key
	f.mu.Unlock()
	f.start(ctx, key)
}

func (f *Fetcher[T]) start(ctx context.Context, key string) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.state = StateLoading
	f.errMsg = ""
	var zero T
	f.data = zero
	f.mu.Unlock()
	f.notify()

	go func() {
		data, err := f.fetch(ctx, key)

		f.mu.Lock()
		if gen != f.gen || key != f.key {
			// A newer request owns the state now.
			f.mu.Unlock()
			return
		}
		if err != nil {
			f.state = StateFailed
			f.errMsg = api.Display(err)
		} else {
			f.state = StateReady
			f.data = data
		}
		f.mu.Unlock()
		f.notify()
	}()
}

// Mutate applies fn to the cached data under the fetcher's lock. It is the
// hook for optimistic local updates and does nothing unless the fetcher is
// in StateReady.
func (f *Fetcher[T]) Mutate(fn func(*T)) {
	f.mu.Lock()
	if f.state != StateReady {
		f.mu.Unlock()
		return
	}
	fn(&f.data)
	f.mu.Unlock()
	f.notify()
}

func (f *Fetcher[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot[T]{
		State: f.state,
		Key:   f.key,
		Data:  f.data,
		Err:   f.errMsg,
	}
}

func (f *Fetcher[T]) notify() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}
