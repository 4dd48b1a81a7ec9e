// Package shiritori implements the shiritori game engine: participant
// roster, turn order, word-chain rule validation and the rollback hook
// used when an external judge retroactively rejects a word.
package shiritori

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State represents the game lifecycle state.
type State int

const (
	// StateRecruiting means the game is collecting participants.
	StateRecruiting State = iota
	// StateActive means the game is in progress.
	StateActive
	// StateEnded means the game is over.
	StateEnded
)

// String returns the lifecycle state name.
func (s State) String() string {
	switch s {
	case StateRecruiting:
		return "recruiting"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Mode represents the game variant. It is fixed at creation and
// survives Reset.
type Mode string

const (
	// ModeChained is the classic rule: each word starts with the
	// previous word's effective last kana.
	ModeChained Mode = "chained"
	// ModeAssociative links words by meaning instead of sound; the
	// link is judged externally.
	ModeAssociative Mode = "associative"
)

// MinParticipants is the roster size required to start a game.
const MinParticipants = 2

// Errors for game operations.
var (
	ErrNotRecruiting    = errors.New("game is not recruiting participants")
	ErrAlreadyJoined    = errors.New("participant already joined")
	ErrNotEnoughPlayers = errors.New("not enough participants")
	ErrNotActive        = errors.New("game is not in progress")
	ErrWrongTurn        = errors.New("not this player's turn")
	ErrEmptyWord        = errors.New("word is empty")
	ErrBrokenChain      = errors.New("word does not continue the chain")
	ErrDuplicateWord    = errors.New("word was already used")
	ErrAlreadyEnded     = errors.New("game already ended")
)

// HistoryEntry records one accepted word. UserID is 0 for the seed word.
type HistoryEntry struct {
	Word      string
	UserID    int64
	Timestamp time.Time
}

// SubmitResult describes the outcome of an accepted or game-ending
// submission. A returned error means the submission was rejected and
// the game state is unchanged.
type SubmitResult struct {
	Word       string
	PrevWord   string
	GameEnded  bool
	Loser      int64
	NextPlayer int64
}

// Status is a read-only projection of the game state for rendering.
type Status struct {
	State            State
	Mode             Mode
	ParticipantCount int
	Participants     []int64
	TurnIndex        int
	CurrentWord      string
	RequiredKana     string
	UsedWordCount    int
	CurrentPlayer    int64
	StartedAt        time.Time
}

// Game holds all mutable state of one shiritori table. All methods are
// safe for concurrent use; the surrounding dispatcher must additionally
// serialize whole submit-then-judge sequences (see RollbackLastWord).
type Game struct {
	mu           sync.Mutex
	state        State
	mode         Mode
	participants []int64
	turnIndex    int
	usedWords    []string
	currentWord  string
	history      []HistoryEntry
	startedAt    time.Time
	channelID    int64
	creatorID    int64
}

// New creates a game in the recruiting state.
func New(mode Mode) *Game {
	return &Game{
		state: StateRecruiting,
		mode:  mode,
	}
}

// AddParticipant appends a player to the roster. Joining is only
// possible while recruiting, and each player at most once; insertion
// order is turn order.
func (g *Game) AddParticipant(userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateRecruiting {
		return ErrNotRecruiting
	}
	for _, id := range g.participants {
		if id == userID {
			return ErrAlreadyJoined
		}
	}
	g.participants = append(g.participants, userID)
	return nil
}

// SetCreator records the player allowed to start and end the game.
func (g *Game) SetCreator(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creatorID = userID
}

// IsCreator reports whether userID created the game.
func (g *Game) IsCreator(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creatorID == userID
}

// IsAssociative reports whether this is an associative-mode game.
func (g *Game) IsAssociative() bool {
	return g.mode == ModeAssociative
}

// Mode returns the game variant.
func (g *Game) Mode() Mode {
	return g.mode
}

// State returns the current lifecycle state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Start transitions the game from recruiting to active with the given
// seed word. It requires at least MinParticipants and reports the
// wrong-state and too-few-players failures distinctly.
func (g *Game) Start(seedWord string, channelID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateRecruiting {
		return ErrNotRecruiting
	}
	if len(g.participants) < MinParticipants {
		return fmt.Errorf("%w: need %d, have %d", ErrNotEnoughPlayers, MinParticipants, len(g.participants))
	}

	now := time.Now()
	g.state = StateActive
	g.currentWord = seedWord
	g.usedWords = append(g.usedWords, seedWord)
	g.turnIndex = 0
	g.startedAt = now
	g.channelID = channelID
	g.history = append(g.history, HistoryEntry{Word: seedWord, UserID: 0, Timestamp: now})

	return nil
}

// CurrentPlayer returns the participant whose turn it is. The second
// return value is false unless the game is active.
func (g *Game) CurrentPlayer() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentPlayerLocked()
}

func (g *Game) currentPlayerLocked() (int64, bool) {
	if g.state != StateActive || len(g.participants) == 0 {
		return 0, false
	}
	return g.participants[g.turnIndex], true
}

// SubmitWord validates and applies one turn. Rules run in a fixed
// order: lifecycle, turn, emptiness, chain continuity (chained mode),
// duplicates, then the losing-kana check. A word ending in the losing
// kana ends the game immediately without being recorded as used; every
// other accepted word is appended and the turn advances.
func (g *Game) SubmitWord(userID int64, word string) (*SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateActive {
		return nil, ErrNotActive
	}

	current, _ := g.currentPlayerLocked()
	if current != userID {
		return nil, ErrWrongTurn
	}

	word = strings.TrimSpace(word)
	if word == "" {
		return nil, ErrEmptyWord
	}

	if g.mode == ModeChained {
		if !kanaEquals(firstKana(word), effectiveLastKana(g.currentWord)) {
			return nil, ErrBrokenChain
		}
	}

	for _, used := range g.usedWords {
		if strings.EqualFold(used, word) {
			return nil, ErrDuplicateWord
		}
	}

	prev := g.currentWord

	if g.mode == ModeChained && EndsWithLosingKana(word) {
		g.state = StateEnded
		return &SubmitResult{
			Word:      word,
			PrevWord:  prev,
			GameEnded: true,
			Loser:     userID,
		}, nil
	}

	g.usedWords = append(g.usedWords, word)
	g.currentWord = word
	g.history = append(g.history, HistoryEntry{Word: word, UserID: userID, Timestamp: time.Now()})
	g.turnIndex = (g.turnIndex + 1) % len(g.participants)

	next, _ := g.currentPlayerLocked()
	return &SubmitResult{
		Word:       word,
		PrevWord:   prev,
		NextPlayer: next,
	}, nil
}

// RollbackLastWord reverts the most recent accepted submission. It is
// a compensating action for the case where the external judge rejects
// a word after the optimistic commit, and assumes exactly one word was
// accepted since the last rollback-safe point — the caller must hold
// its per-game submission lock across the whole commit-judge-rollback
// sequence to keep that true.
func (g *Game) RollbackLastWord() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.usedWords) == 0 {
		return
	}

	g.usedWords = g.usedWords[:len(g.usedWords)-1]
	if len(g.history) > 0 {
		g.history = g.history[:len(g.history)-1]
	}

	if len(g.usedWords) > 0 {
		g.currentWord = g.usedWords[len(g.usedWords)-1]
	} else {
		g.currentWord = ""
	}

	if n := len(g.participants); n > 0 {
		g.turnIndex = (g.turnIndex - 1 + n) % n
	}
}

// End force-finishes an active game. A second call reports that the
// game already ended.
func (g *Game) End() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateActive:
		g.state = StateEnded
		return nil
	case StateEnded:
		return ErrAlreadyEnded
	default:
		return ErrNotActive
	}
}

// Status returns a snapshot of the game for rendering. RequiredKana is
// only set for active chained-mode games.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := Status{
		State:            g.state,
		Mode:             g.mode,
		ParticipantCount: len(g.participants),
		Participants:     append([]int64(nil), g.participants...),
		TurnIndex:        g.turnIndex,
		CurrentWord:      g.currentWord,
		UsedWordCount:    len(g.usedWords),
		StartedAt:        g.startedAt,
	}
	if player, ok := g.currentPlayerLocked(); ok {
		st.CurrentPlayer = player
	}
	if g.state == StateActive && g.mode == ModeChained && g.currentWord != "" {
		st.RequiredKana = string(effectiveLastKana(g.currentWord))
	}
	return st
}

// UsedWords returns a copy of the accepted words in play order,
// starting with the seed.
func (g *Game) UsedWords() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.usedWords...)
}

// History returns a copy of the accepted-word history.
func (g *Game) History() []HistoryEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]HistoryEntry(nil), g.history...)
}

// Participants returns a copy of the roster in turn order.
func (g *Game) Participants() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int64(nil), g.participants...)
}

// Reset returns the game to a fresh recruiting state, preserving only
// the mode.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = StateRecruiting
	g.participants = nil
	g.turnIndex = 0
	g.usedWords = nil
	g.currentWord = ""
	g.history = nil
	g.startedAt = time.Time{}
	g.channelID = 0
	g.creatorID = 0
}
