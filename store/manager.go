package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradesync/pkg/id"
)

// Manager owns at most one live Handle. It is safe for concurrent use:
// callers racing into Store during initialization all wait for the same
// in-flight attempt instead of opening duplicate stores. The zero value
// is not usable; construct with NewManager.
type Manager struct {
	mu      sync.Mutex
	handle  *Handle
	pending *initFlight

	durable  func() (*Handle, error)
	fallback func() (*Handle, error)
	cleanup  func() error
	log      zerolog.Logger
}

// initFlight is one shared initialization attempt. done is closed once
// h and err are final.
type initFlight struct {
	done chan struct{}
	h    *Handle
	err  error
}

// NewManager returns a Manager whose durable store lives at path.
func NewManager(path string, logger zerolog.Logger) *Manager {
	return &Manager{
		durable: func() (*Handle, error) {
			return openHandle(path, false)
		},
		fallback: func() (*Handle, error) {
			uid, err := id.New()
			if err != nil {
				return nil, fmt.Errorf("fallback store name: %w", err)
			}
			dsn := fmt.Sprintf("file:tradesync-%s?mode=memory&cache=shared", uid)
			return openHandle(dsn, true)
		},
		cleanup: func() error {
			return removeStoreFiles(path)
		},
		log: logger,
	}
}

// Store returns the live Handle, initializing it on first use. If a
// concurrent caller is already initializing, Store waits for that
// attempt and shares its outcome. A failed attempt is not cached: the
// next call starts over.
func (m *Manager) Store(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	if m.handle != nil {
		h := m.handle
		m.mu.Unlock()
		return h, nil
	}
	if f := m.pending; f != nil {
		m.mu.Unlock()
		select {
		case <-f.done:
			return f.h, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &initFlight{done: make(chan struct{})}
	m.pending = f
	m.mu.Unlock()

	f.h, f.err = m.open()

	m.mu.Lock()
	if f.err == nil {
		m.handle = f.h
	}
	m.pending = nil
	m.mu.Unlock()
	close(f.done)

	return f.h, f.err
}

// open attempts the durable store first and falls back to a fresh
// in-memory store when that fails, so the session stays usable on top
// of corrupted or exhausted durable storage. Cleanup of the corrupted
// files runs detached; its outcome never reaches the caller.
func (m *Manager) open() (*Handle, error) {
	h, err := m.durable()
	if err == nil {
		return h, nil
	}

	m.log.Warn().Err(err).Msg("durable store failed to initialize, falling back to in-memory store")

	fh, ferr := m.fallback()
	if ferr != nil {
		return nil, fmt.Errorf("%w: fallback store failed: %v (durable: %v)", ErrUnavailable, ferr, err)
	}

	go func() {
		if cerr := m.cleanup(); cerr != nil {
			m.log.Warn().Err(cerr).Msg("cleanup of corrupted durable store failed")
			return
		}
		m.log.Info().Msg("corrupted durable store removed")
	}()

	return fh, nil
}

// Reset closes the current handle, ignoring close errors, and clears
// state so the next Store call initializes from scratch. It is a
// destructive recovery action: an in-memory fallback loses its data.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		if err := m.handle.Close(); err != nil {
			m.log.Debug().Err(err).Msg("close during reset")
		}
		m.handle = nil
	}
}

// With obtains a handle and runs fn against it. If fn fails, the store
// is reset and fn runs once more against a fresh handle; a second
// failure surfaces as ErrUnavailable. fn runs at most twice.
func (m *Manager) With(ctx context.Context, fn func(*Handle) error) error {
	h, err := m.Store(ctx)
	if err != nil {
		return err
	}

	err = fn(h)
	if err == nil {
		return nil
	}

	m.log.Warn().Err(err).Msg("store operation failed, resetting and retrying once")
	m.Reset()

	h, rerr := m.Store(ctx)
	if rerr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, rerr)
	}
	if rerr := fn(h); rerr != nil {
		return fmt.Errorf("%w: retry failed: %v", ErrUnavailable, rerr)
	}
	return nil
}

// Destroy closes the current handle and deletes the durable store
// files, WAL and SHM included, so the next Store call initializes an
// empty store. Reset is the non-destructive variant used by the With
// retry path.
func (m *Manager) Destroy() error {
	m.Reset()
	return m.cleanup()
}

// removeStoreFiles deletes the SQLite database file and its WAL/SHM
// side files. Missing files are not an error.
func removeStoreFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
