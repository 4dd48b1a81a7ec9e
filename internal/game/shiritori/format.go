package shiritori

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxWordLength is the maximum accepted word length in runes.
	MaxWordLength = 20

	// MinWordLength is the minimum accepted word length in runes.
	MinWordLength = 2
)

// Format validation errors, in the order the rules are checked.
var (
	ErrFormatEmpty      = errors.New("word is empty")
	ErrFormatMultiToken = errors.New("word contains whitespace or punctuation")
	ErrFormatASCII      = errors.New("word contains ASCII letters or digits")
	ErrFormatSymbol     = errors.New("word contains symbol characters")
	ErrFormatTooLong    = errors.New("word is too long")
	ErrFormatTooShort   = errors.New("word is too short")
)

var (
	multiTokenPattern = regexp.MustCompile(`[\s、。！？\.,!?]`)
	asciiPattern      = regexp.MustCompile(`[a-zA-Z0-9]`)
	symbolPattern     = regexp.MustCompile("[!@#$%^&*()_+=\\[\\]{}|;:\"<>,.?/~`]")
)

// CheckFormat performs the structural checks on a candidate word.
// Rules run in a fixed order and the first failure wins; a nil return
// means the word is structurally acceptable. The check is pure and
// knows nothing about game state.
func CheckFormat(word string) error {
	if strings.TrimSpace(word) == "" {
		return ErrFormatEmpty
	}

	word = strings.TrimSpace(word)

	// A submission must be a single token.
	if multiTokenPattern.MatchString(word) {
		return ErrFormatMultiToken
	}

	// Only Japanese script is playable.
	if asciiPattern.MatchString(word) {
		return ErrFormatASCII
	}

	if symbolPattern.MatchString(word) {
		return ErrFormatSymbol
	}

	if utf8.RuneCountInString(word) > MaxWordLength {
		return ErrFormatTooLong
	}

	if utf8.RuneCountInString(word) < MinWordLength {
		return ErrFormatTooShort
	}

	return nil
}
