package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"shiritori-bot/internal/game/shiritori"
	"shiritori-bot/internal/oracle"
	"shiritori-bot/internal/pkg/lock"
)

// HandleText treats plain messages in a chat with an active game as
// word submissions. The word is committed optimistically, then judged;
// a rejection rolls the commit back. The whole sequence holds the
// table lock so at most one submission is in flight per game.
func (h *ShiritoriHandler) HandleText(c tele.Context) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	word := strings.TrimSpace(c.Text())
	if word == "" || strings.HasPrefix(word, "/") {
		return nil
	}

	g, ok := h.registry.ActiveGame(chat.ID)
	if !ok {
		return nil
	}

	// Out-of-turn messages are ordinary chatter, not submissions.
	if current, active := g.CurrentPlayer(); !active || current != sender.ID {
		return nil
	}

	if err := shiritori.CheckFormat(word); err != nil {
		return c.Reply("❌ " + formatReason(err))
	}

	key := lock.Key{ChatID: chat.ID, Mode: string(g.Mode())}
	h.tableLock.Lock(key)
	defer h.tableLock.Unlock(key)

	res, err := g.SubmitWord(sender.ID, word)
	if err != nil {
		return h.replySubmitError(c, g, word, err)
	}

	if res.GameEnded {
		return h.replyGameOver(c, g, res)
	}

	ctx := context.Background()
	judgment := h.oracle.JudgeWord(ctx, res.Word)
	if judgment.Accepted && g.IsAssociative() {
		assoc := h.oracle.JudgeAssociation(ctx, res.PrevWord, res.Word)
		assoc.Degraded = assoc.Degraded || judgment.Degraded
		judgment = assoc
	}

	if !judgment.Accepted {
		g.RollbackLastWord()
		log.Info().
			Int64("chat_id", chat.ID).
			Int64("user_id", sender.ID).
			Str("word", res.Word).
			Str("reason", judgment.Reason).
			Msg("Word rejected by judge, rolled back")
		return c.Reply(fmt.Sprintf("❌ 「%s」は使えません。\n理由: %s\nもう一度どうぞ。", res.Word, judgment.Reason))
	}

	return c.Reply(h.acceptedMessage(g, res, judgment), markdown)
}

// replySubmitError maps an engine rejection to its reply. Lifecycle and
// turn races stay silent.
func (h *ShiritoriHandler) replySubmitError(c tele.Context, g *shiritori.Game, word string, err error) error {
	switch {
	case errors.Is(err, shiritori.ErrWrongTurn), errors.Is(err, shiritori.ErrNotActive):
		return nil
	case errors.Is(err, shiritori.ErrBrokenChain):
		return c.Reply(fmt.Sprintf("❌ 「%s」は「%s」から始まっていません。", word, g.Status().RequiredKana))
	case errors.Is(err, shiritori.ErrDuplicateWord):
		return c.Reply(fmt.Sprintf("❌ 「%s」はすでに使われています。", word))
	case errors.Is(err, shiritori.ErrEmptyWord):
		return nil
	default:
		return c.Reply("❌ その単語は受け付けられませんでした。")
	}
}

// acceptedMessage builds the reply for an accepted word.
func (h *ShiritoriHandler) acceptedMessage(g *shiritori.Game, res *shiritori.SubmitResult, j oracle.Judgment) string {
	var b strings.Builder
	if j.Degraded {
		b.WriteString("⚠️ 判定が確認できなかったため、そのまま続行します。\n")
	}
	fmt.Fprintf(&b, "⭕ 「%s」", res.Word)
	if kana := g.Status().RequiredKana; kana != "" {
		fmt.Fprintf(&b, "\n次は「%s」から始まる単語です。", kana)
	}
	fmt.Fprintf(&b, "\n%s さんの番です。", mention(res.NextPlayer))
	return b.String()
}

// replyGameOver renders the losing-word outcome, with a short meaning
// of the final word when the oracle can provide one.
func (h *ShiritoriHandler) replyGameOver(c tele.Context, g *shiritori.Game, res *shiritori.SubmitResult) error {
	ctx := context.Background()
	st := g.Status()

	log.Info().
		Int64("chat_id", c.Chat().ID).
		Int64("loser", res.Loser).
		Str("word", res.Word).
		Int("words", st.UsedWordCount).
		Msg("Game ended on losing kana")

	msg := fmt.Sprintf("💀 「%s」は「ん」で終わっています！\n%s さんの負けです。\n🏁 ゲーム終了（使われた単語: %d 個）",
		res.Word, mention(res.Loser), st.UsedWordCount)

	if explanation, err := h.oracle.ExplainWord(ctx, res.Word); err == nil && explanation != "" {
		msg += fmt.Sprintf("\n📖 「%s」: %s", res.Word, explanation)
	}

	return c.Reply(msg, markdown)
}
