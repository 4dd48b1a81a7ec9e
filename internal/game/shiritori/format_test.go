package shiritori

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name    string
		word    string
		wantErr error
	}{
		{"valid hiragana", "りんご", nil},
		{"valid katakana", "コーヒー", nil},
		{"empty", "", ErrFormatEmpty},
		{"whitespace only", "   ", ErrFormatEmpty},
		{"embedded space", "りん ご", ErrFormatMultiToken},
		{"japanese comma", "りん、ご", ErrFormatMultiToken},
		{"japanese period", "りんご。", ErrFormatMultiToken},
		{"exclamation", "りんご！", ErrFormatMultiToken},
		{"ascii letters", "tree", ErrFormatASCII},
		{"mixed ascii", "りんごa", ErrFormatASCII},
		{"digits", "りんご1", ErrFormatASCII},
		{"symbol", "りんご@", ErrFormatSymbol},
		{"too long", strings.Repeat("あ", 21), ErrFormatTooLong},
		{"max length ok", strings.Repeat("あ", 20), nil},
		{"too short", "あ", ErrFormatTooShort},
		{"min length ok", "あい", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFormat(tt.word)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// TestCheckFormat_RuleOrder pins the first-failing-rule-wins ordering:
// a word that violates several rules reports the earliest one.
func TestCheckFormat_RuleOrder(t *testing.T) {
	// Space + ascii + symbol: the token rule fires first.
	assert.ErrorIs(t, CheckFormat("a b@"), ErrFormatMultiToken)

	// Ascii + symbol: the ascii rule fires before the symbol rule.
	assert.ErrorIs(t, CheckFormat("a@"), ErrFormatASCII)

	// Symbol only, and also too short: symbols win over length.
	assert.ErrorIs(t, CheckFormat("@"), ErrFormatSymbol)
}

func TestEffectiveLastKana(t *testing.T) {
	tests := []struct {
		word string
		want rune
	}{
		{"りんご", 'ご'},
		{"ミキサー", 'サ'},
		{"コーヒー", 'ヒ'},
		{"ー", 'ー'}, // single elongation mark has nothing to defer to
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, effectiveLastKana(tt.word), "word %q", tt.word)
	}
}

func TestEndsWithLosingKana(t *testing.T) {
	assert.True(t, EndsWithLosingKana("ごはん"))
	assert.False(t, EndsWithLosingKana("りんご"))
	assert.False(t, EndsWithLosingKana(""))
}
