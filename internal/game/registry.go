// Package game provides the registry of shiritori tables, one game
// instance per chat and mode.
package game

import (
	"sync"

	"shiritori-bot/internal/game/shiritori"
)

// tableKey identifies one game instance: a chat can run the chained
// and the associative variant side by side, on independent state.
type tableKey struct {
	chatID int64
	mode   shiritori.Mode
}

// Registry manages game instances keyed by chat and mode. Lookups are
// thread-safe; instances are created lazily in the recruiting state.
type Registry struct {
	games map[tableKey]*shiritori.Game
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[tableKey]*shiritori.Game),
	}
}

// Get returns the game for a chat and mode, creating a fresh
// recruiting instance on first use.
func (r *Registry) Get(chatID int64, mode shiritori.Mode) *shiritori.Game {
	key := tableKey{chatID: chatID, mode: mode}

	r.mu.RLock()
	g, ok := r.games[key]
	r.mu.RUnlock()
	if ok {
		return g
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.games[key]; ok {
		return g
	}
	g = shiritori.New(mode)
	r.games[key] = g
	return g
}

// Lookup returns the game for a chat and mode without creating one.
func (r *Registry) Lookup(chatID int64, mode shiritori.Mode) (*shiritori.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[tableKey{chatID: chatID, mode: mode}]
	return g, ok
}

// ActiveGame returns the active game in a chat, if any. Chained games
// take precedence when both modes are somehow active at once.
func (r *Registry) ActiveGame(chatID int64) (*shiritori.Game, bool) {
	for _, mode := range []shiritori.Mode{shiritori.ModeChained, shiritori.ModeAssociative} {
		if g, ok := r.Lookup(chatID, mode); ok && g.State() == shiritori.StateActive {
			return g, true
		}
	}
	return nil, false
}

// Count returns the number of game instances across all chats.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
