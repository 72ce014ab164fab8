// internal/store/memory.go
//
// In-memory Store for live game sessions.
//
// Characteristics:
//   - *game.Game values keyed by ID, guarded by an RWMutex.
//   - Sessions untouched for longer than the TTL are dropped by Sweep.
//   - State is lost when the process restarts; finished games are mirrored to
//     SQLite by the HTTP layer.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired game IDs.
var ErrNotFound = errors.New("game not found")

// Store persists live game sessions.
type Store interface {
	Save(ctx context.Context, g *game.Game) error
	Get(ctx context.Context, id string) (*game.Game, error)
}

type entry struct {
	g       *game.Game
	touched time.Time
}

// Memory is a map-backed Store with idle expiry.
type Memory struct {
	mu    sync.RWMutex
	games map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore returns a Memory store; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *Memory {
	return &Memory{games: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Save adds or refreshes a game.
func (m *Memory) Save(_ context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = entry{g: g, touched: m.now()}
	return nil
}

// Get returns the game with id unless it is unknown or expired.
func (m *Memory) Get(_ context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}
	return e.g, nil
}

// Sweep drops expired games and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.games {
		if m.expired(e) {
			delete(m.games, id)
			n++
		}
	}
	return n
}

// Len reports the number of stored games, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

func (m *Memory) expired(e entry) bool {
	return m.ttl > 0 && m.now().Sub(e.touched) > m.ttl
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
