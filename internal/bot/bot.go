// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"shiritori-bot/internal/config"
	"shiritori-bot/internal/game"
	"shiritori-bot/internal/handler"
	"shiritori-bot/internal/oracle"
	"shiritori-bot/internal/pkg/lock"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot       *tele.Bot
	cfg       *config.Config
	registry  *game.Registry
	judge     oracle.Oracle
	tableLock *lock.TableLock

	gameHandler *handler.ShiritoriHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config    *config.Config
	Registry  *game.Registry
	Oracle    oracle.Oracle
	TableLock *lock.TableLock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:       teleBot,
		cfg:       deps.Config,
		registry:  deps.Registry,
		judge:     deps.Oracle,
		tableLock: deps.TableLock,
	}

	b.gameHandler = handler.NewShiritoriHandler(deps.Config, deps.Registry, deps.Oracle, deps.TableLock)

	// Register middleware
	b.registerMiddleware()

	// Register handlers
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())

	// Chat restriction middleware - check if the bot plays in this chat
	b.bot.Use(ChatRestrictMiddleware(b.cfg))

	// Logging middleware
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and message handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/shiritori", b.gameHandler.HandleShiritori)
	b.bot.Handle("/rensou", b.gameHandler.HandleRensou)
	b.bot.Handle("/hint", b.gameHandler.HandleHint)

	// Plain messages in a chat with an active game are word submissions.
	b.bot.Handle(tele.OnText, b.gameHandler.HandleText)
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
