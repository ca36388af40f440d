// Package geolocation wraps the host's positioning capability behind a
// re-invokable single-fix adapter with a client-enforced fallback timer.
package geolocation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chamada-app/chamadactl/internal/domain"
)

var (
	ErrUnsupported         = errors.New("geolocation is not supported in this environment")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("timed out acquiring location")
)

// Provider produces one best-effort location fix. Implementations map
// their native failures onto the package error taxonomy.
type Provider interface {
	Acquire(ctx context.Context) (domain.Coordinates, error)
}

// Snapshot is the externally visible adapter state at one instant.
type Snapshot struct {
	Coordinates *domain.Coordinates
	Loading     bool
	Err         error
}

type Adapter struct {
	provider Provider
	timeout  time.Duration
	fallback time.Duration
	onChange func(Snapshot)

	mu      sync.Mutex
	coords  *domain.Coordinates
	loading bool
	err     error
	seq     int
	timer   *time.Timer
	closed  bool
}

// NewAdapter builds an adapter over provider. timeout bounds the
// provider's own attempt; fallback is the independent cap that guarantees
// the loading flag cannot stay set forever even if the provider never
// calls back. A nil provider reports ErrUnsupported on every request.
func NewAdapter(provider Provider, timeout, fallback time.Duration, onChange func(Snapshot)) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if fallback <= 0 {
		fallback = timeout + 5*time.Second
	}

	return &Adapter{
		provider: provider,
		timeout:  timeout,
		fallback: fallback,
		onChange: onChange,
	}
}

// Request starts a fresh acquisition attempt. It is safe to call again at
// any time: the previous attempt's fallback timer is disarmed, its late
// completion discarded, and error state cleared before the new attempt.
func (a *Adapter) Request() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}

	if a.provider == nil {
		a.err = ErrUnsupported
		a.loading = false
		a.notifyLocked()
		return
	}

	a.err = nil
	a.loading = true
	a.seq++
	gen := a.seq

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.fallback, func() {
		a.complete(gen, nil, ErrTimeout)
	})
	a.notifyLocked()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		coords, err := a.provider.Acquire(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = ErrTimeout
			}
			a.complete(gen, nil, err)
			return
		}

		a.complete(gen, &coords, nil)
	}()
}

// complete applies the outcome of one acquisition path. Within a request
// the last callback wins (a provider fix arriving after the fallback
// fired still lands and clears the error); completions belonging to a
// superseded request, or arriving after Close, are dropped.
func (a *Adapter) complete(gen int, coords *domain.Coordinates, err error) {
	a.mu.Lock()
	if a.closed || gen != a.seq {
		a.mu.Unlock()
		return
	}

	a.timer.Stop()
	a.loading = false
	if err != nil {
		a.err = err
	} else {
		a.coords = coords
		a.err = nil
	}
	a.notifyLocked()
}

func (a *Adapter) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.snapshotLocked()
}

// Close installs the stale-completion guard: anything arriving afterwards
// must not mutate state.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
}

func (a *Adapter) snapshotLocked() Snapshot {
	return Snapshot{
		Coordinates: a.coords,
		Loading:     a.loading,
		Err:         a.err,
	}
}

// notifyLocked releases the lock before invoking the callback so
// subscribers may call back into the adapter.
func (a *Adapter) notifyLocked() {
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if a.onChange != nil {
		a.onChange(snap)
	}
}
