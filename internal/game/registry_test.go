package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiritori-bot/internal/game/shiritori"
)

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	g1 := r.Get(100, shiritori.ModeChained)
	require.NotNil(t, g1)
	assert.Equal(t, shiritori.StateRecruiting, g1.State())

	// Same chat and mode returns the same instance.
	assert.Same(t, g1, r.Get(100, shiritori.ModeChained))

	// Different mode in the same chat is an independent game.
	g2 := r.Get(100, shiritori.ModeAssociative)
	assert.NotSame(t, g1, g2)
	assert.True(t, g2.IsAssociative())

	// Different chat, same mode is independent too.
	g3 := r.Get(200, shiritori.ModeChained)
	assert.NotSame(t, g1, g3)

	assert.Equal(t, 3, r.Count())
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup(100, shiritori.ModeChained)
	assert.False(t, ok)

	created := r.Get(100, shiritori.ModeChained)
	found, ok := r.Lookup(100, shiritori.ModeChained)
	assert.True(t, ok)
	assert.Same(t, created, found)
}

func TestRegistry_ActiveGame(t *testing.T) {
	r := NewRegistry()

	_, ok := r.ActiveGame(100)
	assert.False(t, ok)

	g := r.Get(100, shiritori.ModeAssociative)
	require.NoError(t, g.AddParticipant(1))
	require.NoError(t, g.AddParticipant(2))
	require.NoError(t, g.Start("りんご", 100))

	active, ok := r.ActiveGame(100)
	require.True(t, ok)
	assert.Same(t, g, active)

	// Other chats are unaffected.
	_, ok = r.ActiveGame(200)
	assert.False(t, ok)
}

func TestRegistry_StateIsolation(t *testing.T) {
	r := NewRegistry()

	g1 := r.Get(100, shiritori.ModeChained)
	require.NoError(t, g1.AddParticipant(1))
	require.NoError(t, g1.AddParticipant(2))
	require.NoError(t, g1.Start("りんご", 100))

	// Starting one table leaves the sibling mode recruiting.
	g2 := r.Get(100, shiritori.ModeAssociative)
	assert.Equal(t, shiritori.StateRecruiting, g2.State())
	assert.Empty(t, g2.UsedWords())
}
