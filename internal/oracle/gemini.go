package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used for judgments.
	DefaultModel = "gemini-2.0-flash"

	// DefaultTimeout bounds a single judgment call. Judgments that
	// time out fail open like any other transport failure.
	DefaultTimeout = 15 * time.Second

	// suggestionContext is how many recent words a suggestion prompt
	// mentions as already used.
	suggestionContext = 10
)

// ErrNoAPIKey is returned when the Gemini client is constructed
// without a credential.
var ErrNoAPIKey = errors.New("gemini api key is required")

// Config holds Gemini client configuration.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Gemini implements Oracle on top of the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini-backed oracle.
func NewGemini(ctx context.Context, cfg *Config) (*Gemini, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// generate runs one prompt with the configured timeout and returns the
// response text.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// JudgeWord asks whether the word is a real generic Japanese noun.
// Transport failures fail open so an oracle outage never blocks play.
func (g *Gemini) JudgeWord(ctx context.Context, word string) Judgment {
	prompt := fmt.Sprintf(`以下の単語について、日本語の一般的な名詞として実在するかを判定してください。
固有名詞、人名、地名、ブランド名、略語、造語、俗語は除外してください。

単語: %s

以下の形式で回答してください：
判定: [OK/NG]
理由: [判定の理由を簡潔に]

例：
判定: OK
理由: 一般的な動物の名前として辞書に記載されています。

判定: NG
理由: 固有名詞のため、しりとりでは使用できません。`, word)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("Word judgment unavailable, failing open")
		return Judgment{
			Accepted: true,
			Reason:   "判定サービスに接続できなかったため、単語を通過させました。",
			Degraded: true,
		}
	}

	accepted, reason := parseWordJudgment(text)
	return Judgment{Accepted: accepted, Reason: reason}
}

// JudgeAssociation asks whether word is an acceptable association from
// prev. Same fail-open policy as JudgeWord.
func (g *Gemini) JudgeAssociation(ctx context.Context, prev, word string) Judgment {
	prompt := fmt.Sprintf(`連想しりとりで「%s」から「%s」への連想は適切ですか？

連想の基準：
- 意味的な関連性がある
- 色彩、形状、機能、カテゴリ、イメージなどで関連している
- 日常的に連想可能な範囲である
- あまりにも無理やりな関連付けではない

適切な例：
- りんご → 赤 (色の関連)
- 海 → 青 (色・イメージの関連)
- 犬 → 動物 (カテゴリの関連)
- 車 → 速い (機能・特徴の関連)

「YES」または「NO: [理由]」で回答してください。
理由は簡潔に書いてください。`, prev, word)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("prev", prev).Str("word", word).Msg("Association judgment unavailable, failing open")
		return Judgment{
			Accepted: true,
			Reason:   "判定サービスに接続できなかったため、連想を通過させました。",
			Degraded: true,
		}
	}

	accepted, reason := parseAssociationJudgment(text)
	return Judgment{Accepted: accepted, Reason: reason}
}

// SuggestWord asks for an unused word starting with the given kana.
// The suggestion is re-checked locally before being returned.
func (g *Gemini) SuggestWord(ctx context.Context, startKana string, usedWords []string) (string, error) {
	recent := usedWords
	if len(recent) > suggestionContext {
		recent = recent[len(recent)-suggestionContext:]
	}

	prompt := fmt.Sprintf(`しりとりゲームで、「%s」で始まる日本語の一般的な名詞を1つ提案してください。
以下の単語は既に使用されているので避けてください：%s

条件：
- 一般的な名詞のみ（固有名詞、人名、地名は除く）
- 「ん」で終わらない単語
- ひらがなまたはカタカナで表記
- 単語のみを回答（説明不要）

回答例：
りんご`, startKana, strings.Join(recent, ", "))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	suggestion := strings.TrimSpace(text)
	if !isUsableSuggestion(suggestion, startKana, usedWords) {
		return "", fmt.Errorf("unusable suggestion %q", suggestion)
	}
	return suggestion, nil
}

// ExplainWord asks for a one-to-two sentence meaning of the word.
func (g *Gemini) ExplainWord(ctx context.Context, word string) (string, error) {
	prompt := fmt.Sprintf(`「%s」という単語の意味を、小学生にもわかりやすく簡潔に説明してください。
1-2文で回答してください。

例：
りんご: 赤や青い色をした甘い果物です。`, word)

	return g.generate(ctx, prompt)
}

// parseWordJudgment scans a judgment response for the 判定/理由 lines.
// An unparsable response counts as a rejection, not a transport
// failure; the fail-open policy only applies when the provider itself
// is unreachable.
func parseWordJudgment(text string) (accepted bool, reason string) {
	reason = "APIからの応答を解析できませんでした。"

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "判定:"):
			verdict := strings.TrimSpace(strings.TrimPrefix(line, "判定:"))
			accepted = verdict == "OK"
		case strings.HasPrefix(line, "理由:"):
			reason = strings.TrimSpace(strings.TrimPrefix(line, "理由:"))
		}
	}
	return accepted, reason
}

// parseAssociationJudgment interprets a YES / "NO: reason" response.
func parseAssociationJudgment(text string) (accepted bool, reason string) {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "YES"):
		return true, "適切な連想です"
	case strings.HasPrefix(text, "NO"):
		reason = strings.TrimSpace(strings.TrimPrefix(text, "NO"))
		reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
		reason = strings.TrimSpace(strings.TrimPrefix(reason, "："))
		if reason == "" {
			reason = "連想が不適切です"
		}
		return false, reason
	default:
		return false, "連想の適切性を判定できませんでした"
	}
}

// isUsableSuggestion checks a suggested word against the same rules
// the prompt asked for.
func isUsableSuggestion(suggestion, startKana string, usedWords []string) bool {
	if suggestion == "" || strings.ContainsAny(suggestion, " \n\t") {
		return false
	}
	if !strings.HasPrefix(suggestion, startKana) {
		return false
	}
	if strings.HasSuffix(suggestion, "ん") {
		return false
	}
	for _, used := range usedWords {
		if strings.EqualFold(used, suggestion) {
			return false
		}
	}
	return true
}
