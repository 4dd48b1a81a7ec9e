// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"shiritori-bot/internal/config"
	"shiritori-bot/internal/game"
	"shiritori-bot/internal/game/shiritori"
	"shiritori-bot/internal/oracle"
	"shiritori-bot/internal/pkg/lock"
)

// ShiritoriHandler handles game commands and word submissions for both
// game modes.
type ShiritoriHandler struct {
	cfg       *config.Config
	registry  *game.Registry
	oracle    oracle.Oracle
	tableLock *lock.TableLock
}

// NewShiritoriHandler creates a new ShiritoriHandler.
func NewShiritoriHandler(
	cfg *config.Config,
	registry *game.Registry,
	judge oracle.Oracle,
	tableLock *lock.TableLock,
) *ShiritoriHandler {
	return &ShiritoriHandler{
		cfg:       cfg,
		registry:  registry,
		oracle:    judge,
		tableLock: tableLock,
	}
}

// markdown is the send option for replies containing user mentions.
var markdown = &tele.SendOptions{ParseMode: tele.ModeMarkdown}

// mention builds an inline mention that works without a username.
func mention(userID int64) string {
	return fmt.Sprintf("[プレイヤー](tg://user?id=%d)", userID)
}

// modeLabel returns the Japanese name of a game mode.
func modeLabel(mode shiritori.Mode) string {
	if mode == shiritori.ModeAssociative {
		return "連想ゲーム"
	}
	return "しりとり"
}

// modeCommand returns the slash command bound to a game mode.
func modeCommand(mode shiritori.Mode) string {
	if mode == shiritori.ModeAssociative {
		return "/rensou"
	}
	return "/shiritori"
}

// HandleShiritori handles the /shiritori command (chained mode).
func (h *ShiritoriHandler) HandleShiritori(c tele.Context) error {
	return h.handleCommand(c, shiritori.ModeChained)
}

// HandleRensou handles the /rensou command (associative mode).
func (h *ShiritoriHandler) HandleRensou(c tele.Context) error {
	return h.handleCommand(c, shiritori.ModeAssociative)
}

// handleCommand dispatches a game command to its action.
func (h *ShiritoriHandler) handleCommand(c tele.Context, mode shiritori.Mode) error {
	if c.Chat() == nil || c.Sender() == nil {
		return nil
	}

	args := c.Args()
	if len(args) == 0 {
		return h.handleHelp(c, mode)
	}

	switch args[0] {
	case "start":
		return h.handleStart(c, mode)
	case "join":
		return h.handleJoin(c, mode)
	case "go":
		return h.handleGo(c, mode, strings.Join(args[1:], " "))
	case "end":
		return h.handleEnd(c, mode)
	case "status":
		return h.handleStatus(c, mode)
	default:
		return h.handleHelp(c, mode)
	}
}

// handleStart opens participant recruiting for a new game.
func (h *ShiritoriHandler) handleStart(c tele.Context, mode shiritori.Mode) error {
	sender := c.Sender()
	g := h.registry.Get(c.Chat().ID, mode)

	switch g.State() {
	case shiritori.StateActive:
		return c.Reply(fmt.Sprintf("❌ %sは進行中です。%s end で終了できます。", modeLabel(mode), modeCommand(mode)))
	case shiritori.StateEnded:
		g.Reset()
	}

	if g.Status().ParticipantCount > 0 {
		return c.Reply(fmt.Sprintf("❌ すでに参加者を募集中です。%s join で参加できます。", modeCommand(mode)))
	}

	g.SetCreator(sender.ID)
	if err := g.AddParticipant(sender.ID); err != nil {
		return c.Reply("❌ ゲームを作成できませんでした。")
	}

	log.Info().
		Int64("chat_id", c.Chat().ID).
		Int64("user_id", sender.ID).
		Str("mode", string(mode)).
		Msg("Game recruiting started")

	return c.Reply(fmt.Sprintf(
		"🎮 %sの参加者を募集します！\n%s join で参加、%s go <単語> で開始します（%d人以上）。",
		modeLabel(mode), modeCommand(mode), modeCommand(mode), shiritori.MinParticipants,
	))
}

// handleJoin adds the sender to the roster.
func (h *ShiritoriHandler) handleJoin(c tele.Context, mode shiritori.Mode) error {
	sender := c.Sender()
	g, ok := h.registry.Lookup(c.Chat().ID, mode)
	if !ok || g.Status().ParticipantCount == 0 {
		return c.Reply(fmt.Sprintf("❌ 募集中のゲームがありません。%s start で作成してください。", modeCommand(mode)))
	}

	if err := g.AddParticipant(sender.ID); err != nil {
		switch {
		case errors.Is(err, shiritori.ErrAlreadyJoined):
			return c.Reply("❌ すでに参加しています。")
		case errors.Is(err, shiritori.ErrNotRecruiting):
			return c.Reply("❌ 参加受付は締め切られています。")
		default:
			return c.Reply("❌ 参加できませんでした。")
		}
	}

	return c.Reply(fmt.Sprintf("✅ 参加を受け付けました（現在 %d 人）。", g.Status().ParticipantCount))
}

// handleGo starts the game with a seed word. The seed is format-checked
// and judged before the game becomes active, so no rollback is needed.
func (h *ShiritoriHandler) handleGo(c tele.Context, mode shiritori.Mode, seed string) error {
	ctx := context.Background()
	sender := c.Sender()
	g, ok := h.registry.Lookup(c.Chat().ID, mode)
	if !ok || g.Status().ParticipantCount == 0 {
		return c.Reply(fmt.Sprintf("❌ 募集中のゲームがありません。%s start で作成してください。", modeCommand(mode)))
	}

	if !g.IsCreator(sender.ID) {
		return c.Reply("❌ ゲームの開始は作成者のみ行えます。")
	}

	seed = strings.TrimSpace(seed)
	if seed == "" {
		return c.Reply(fmt.Sprintf("❌ 用法: %s go <最初の単語>", modeCommand(mode)))
	}

	if err := shiritori.CheckFormat(seed); err != nil {
		return c.Reply("❌ " + formatReason(err))
	}

	if mode == shiritori.ModeChained && shiritori.EndsWithLosingKana(seed) {
		return c.Reply("❌ 「ん」で終わる単語からは始められません。")
	}

	judgment := h.oracle.JudgeWord(ctx, seed)
	if !judgment.Accepted {
		return c.Reply(fmt.Sprintf("❌ 「%s」は使えません。\n理由: %s", seed, judgment.Reason))
	}

	if err := g.Start(seed, c.Chat().ID); err != nil {
		switch {
		case errors.Is(err, shiritori.ErrNotEnoughPlayers):
			return c.Reply(fmt.Sprintf("❌ 参加者が足りません（%d人以上、現在 %d 人）。",
				shiritori.MinParticipants, g.Status().ParticipantCount))
		case errors.Is(err, shiritori.ErrNotRecruiting):
			return c.Reply("❌ 開始できる状態ではありません。")
		default:
			return c.Reply("❌ ゲームを開始できませんでした。")
		}
	}

	st := g.Status()
	log.Info().
		Int64("chat_id", c.Chat().ID).
		Str("mode", string(mode)).
		Str("seed", seed).
		Int("participants", st.ParticipantCount).
		Msg("Game started")

	msg := fmt.Sprintf("🎮 %sを開始します！\n最初の単語: 「%s」", modeLabel(mode), seed)
	if judgment.Degraded {
		msg = "⚠️ 判定が確認できなかったため、そのまま続行します。\n" + msg
	}
	if st.RequiredKana != "" {
		msg += fmt.Sprintf("\n次は「%s」から始まる単語です。", st.RequiredKana)
	}
	msg += fmt.Sprintf("\n%s さんの番です。", mention(st.CurrentPlayer))
	return c.Reply(msg, markdown)
}

// handleEnd force-finishes the game.
func (h *ShiritoriHandler) handleEnd(c tele.Context, mode shiritori.Mode) error {
	sender := c.Sender()
	g, ok := h.registry.Lookup(c.Chat().ID, mode)
	if !ok {
		return c.Reply("❌ 進行中のゲームがありません。")
	}

	if !g.IsCreator(sender.ID) {
		return c.Reply("❌ ゲームの終了は作成者のみ行えます。")
	}

	st := g.Status()
	if err := g.End(); err != nil {
		switch {
		case errors.Is(err, shiritori.ErrAlreadyEnded):
			return c.Reply("❌ ゲームはすでに終了しています。")
		default:
			return c.Reply("❌ 進行中のゲームがありません。")
		}
	}

	log.Info().
		Int64("chat_id", c.Chat().ID).
		Str("mode", string(mode)).
		Int("words", st.UsedWordCount).
		Msg("Game ended by creator")

	return c.Reply(fmt.Sprintf("🏁 %sを終了しました。使われた単語: %d 個", modeLabel(mode), st.UsedWordCount))
}

// handleStatus reports the current state of the game.
func (h *ShiritoriHandler) handleStatus(c tele.Context, mode shiritori.Mode) error {
	g, ok := h.registry.Lookup(c.Chat().ID, mode)
	if !ok {
		return c.Reply(fmt.Sprintf("❌ ゲームがありません。%s start で作成してください。", modeCommand(mode)))
	}

	st := g.Status()
	switch st.State {
	case shiritori.StateRecruiting:
		if st.ParticipantCount == 0 {
			return c.Reply(fmt.Sprintf("❌ ゲームがありません。%s start で作成してください。", modeCommand(mode)))
		}
		return c.Reply(fmt.Sprintf("📋 %s: 参加者募集中（現在 %d 人）", modeLabel(mode), st.ParticipantCount))
	case shiritori.StateEnded:
		return c.Reply(fmt.Sprintf("📋 %s: 終了（使われた単語 %d 個）", modeLabel(mode), st.UsedWordCount))
	}

	msg := fmt.Sprintf("📋 %s: 進行中\n参加者: %d 人\n現在の単語: 「%s」\n単語数: %d",
		modeLabel(mode), st.ParticipantCount, st.CurrentWord, st.UsedWordCount)
	if st.RequiredKana != "" {
		msg += fmt.Sprintf("\n次は「%s」から始まる単語です。", st.RequiredKana)
	}
	msg += fmt.Sprintf("\n%s さんの番です。", mention(st.CurrentPlayer))
	return c.Reply(msg, markdown)
}

// handleHelp shows usage for a game mode.
func (h *ShiritoriHandler) handleHelp(c tele.Context, mode shiritori.Mode) error {
	cmd := modeCommand(mode)
	lines := []string{
		fmt.Sprintf("📖 %sの遊び方", modeLabel(mode)),
		fmt.Sprintf("%s start — 参加者を募集する", cmd),
		fmt.Sprintf("%s join — 参加する", cmd),
		fmt.Sprintf("%s go <単語> — ゲームを開始する（作成者のみ）", cmd),
		fmt.Sprintf("%s end — ゲームを終了する（作成者のみ）", cmd),
		fmt.Sprintf("%s status — 状況を確認する", cmd),
		"自分の番にメッセージで単語を送ると回答になります。",
	}
	if mode == shiritori.ModeChained {
		lines = append(lines,
			"前の単語の最後の文字から始まる単語をつなげます。「ん」で終わると負けです。",
			"/hint — 次の単語のヒントをもらう")
	} else {
		lines = append(lines, "前の単語から連想できる単語をつなげます。")
	}
	return c.Reply(strings.Join(lines, "\n"))
}

// HandleHint handles the /hint command with an oracle word suggestion.
func (h *ShiritoriHandler) HandleHint(c tele.Context) error {
	ctx := context.Background()
	if c.Chat() == nil || c.Sender() == nil {
		return nil
	}

	g, ok := h.registry.Lookup(c.Chat().ID, shiritori.ModeChained)
	if !ok || g.State() != shiritori.StateActive {
		return c.Reply("❌ 進行中のしりとりがありません。")
	}

	st := g.Status()
	suggestion, err := h.oracle.SuggestWord(ctx, st.RequiredKana, g.UsedWords())
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", c.Chat().ID).Msg("Hint generation failed")
		return c.Reply("💡 ヒントを思いつきませんでした。もう一度試してください。")
	}

	return c.Reply(fmt.Sprintf("💡 例えば「%s」はどうでしょう？", suggestion))
}

// formatReason maps a format validation error to its user-facing reason.
func formatReason(err error) string {
	switch {
	case errors.Is(err, shiritori.ErrFormatEmpty):
		return "単語を入力してください。"
	case errors.Is(err, shiritori.ErrFormatMultiToken):
		return "空白や句読点を含む投稿は単語として受け付けられません。"
	case errors.Is(err, shiritori.ErrFormatASCII):
		return "英数字は使えません。日本語の単語で答えてください。"
	case errors.Is(err, shiritori.ErrFormatSymbol):
		return "記号は使えません。"
	case errors.Is(err, shiritori.ErrFormatTooLong):
		return fmt.Sprintf("単語は%d文字以内にしてください。", shiritori.MaxWordLength)
	case errors.Is(err, shiritori.ErrFormatTooShort):
		return fmt.Sprintf("単語は%d文字以上にしてください。", shiritori.MinWordLength)
	default:
		return "その単語は使えません。"
	}
}
