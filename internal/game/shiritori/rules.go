package shiritori

import "unicode"

const (
	// LosingKana is the mora that ends the game for whoever plays it.
	LosingKana = 'ん'

	// ElongationMark extends the preceding vowel; when word-final the
	// chain check looks one rune further back.
	ElongationMark = 'ー'
)

// firstKana returns the first rune of a word, or 0 for an empty string.
func firstKana(word string) rune {
	for _, r := range word {
		return r
	}
	return 0
}

// effectiveLastKana returns the rune a follow-up word must start with.
// A word-final elongation mark defers to the rune before it, provided
// the word is longer than one rune.
func effectiveLastKana(word string) rune {
	runes := []rune(word)
	if len(runes) == 0 {
		return 0
	}
	last := runes[len(runes)-1]
	if last == ElongationMark && len(runes) > 1 {
		return runes[len(runes)-2]
	}
	return last
}

// kanaEquals compares two runes ignoring case. Kana have no case, but
// the comparison stays lenient for mixed-script words.
func kanaEquals(a, b rune) bool {
	return unicode.ToLower(a) == unicode.ToLower(b)
}

// EndsWithLosingKana reports whether the word ends in the disqualifying mora.
func EndsWithLosingKana(word string) bool {
	runes := []rune(word)
	return len(runes) > 0 && runes[len(runes)-1] == LosingKana
}
