// Package oracle provides the semantic judgment service for shiritori
// words: whether a word is a real generic noun, and whether a
// free-association link between two words is acceptable.
package oracle

import "context"

// Judgment is the outcome of a semantic check. When the provider is
// unreachable the judgment fails open: Accepted is true, Degraded is
// set, and callers are expected to surface a warning so players know
// the word was waved through unjudged.
type Judgment struct {
	Accepted bool
	Reason   string
	Degraded bool
}

// Oracle judges words and associations. Implementations never touch
// game state; the dispatcher decides what to do with a verdict,
// including rolling back an optimistically accepted word.
type Oracle interface {
	// JudgeWord reports whether the word is a real, generic Japanese
	// noun (no proper nouns, brand names, slang or coinages).
	JudgeWord(ctx context.Context, word string) Judgment

	// JudgeAssociation reports whether word is an acceptable
	// free-association step from prev.
	JudgeAssociation(ctx context.Context, prev, word string) Judgment

	// SuggestWord proposes an unused word starting with the given
	// kana, avoiding the words already played.
	SuggestWord(ctx context.Context, startKana string, usedWords []string) (string, error)

	// ExplainWord returns a short plain-language meaning of a word.
	ExplainWord(ctx context.Context, word string) (string, error)
}
