package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/okhrimenko/kasabot/internal/audio"
	"github.com/okhrimenko/kasabot/internal/extract"
	"github.com/okhrimenko/kasabot/internal/storage"
	"github.com/okhrimenko/kasabot/internal/workflow"
)

// Transcriber converts a normalized WAV file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Normalizer converts an arbitrary audio file into 16 kHz mono WAV.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (string, func(), error)
}

type Bot struct {
	api         *bot.Bot
	logger      *slog.Logger
	workflow    *workflow.Workflow
	extractor   *extract.Extractor
	transcriber Transcriber
	normalizer  Normalizer
	fetcher     *audio.Fetcher
	results     *storage.ResultStore
	debug       bool
}

type Config struct {
	Token string
	Debug bool
}

// Deps carries the processing pipeline the bot drives. Results may be
// nil; /summary then reports no stored expenses.
type Deps struct {
	Workflow    *workflow.Workflow
	Extractor   *extract.Extractor
	Transcriber Transcriber
	Normalizer  Normalizer
	Fetcher     *audio.Fetcher
	Results     *storage.ResultStore
}

// New creates a Telegram bot over long polling.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bot{
		logger:      logger,
		workflow:    deps.Workflow,
		extractor:   deps.Extractor,
		transcriber: deps.Transcriber,
		normalizer:  deps.Normalizer,
		fetcher:     deps.Fetcher,
		results:     deps.Results,
		debug:       cfg.Debug,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.handleDefault),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.api = api
	b.registerHandlers()

	return b, nil
}

// Start runs long polling until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.Info("telegram bot started", "username", me.Username, "id", me.ID)
	b.api.Start(ctx)

	return nil
}

func (b *Bot) registerHandlers() {
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.handleStart)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, b.handleHelp)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/summary", bot.MatchTypeExact, b.handleSummary)

	// Callback query handler for inline keyboards
	b.api.RegisterHandler(bot.HandlerTypeCallbackQueryData, "exp:", bot.MatchTypePrefix, b.handleCallback)
}

// handleDefault receives everything no registered handler matched:
// plain expense texts, voice messages, and unknown commands.
func (b *Bot) handleDefault(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	switch {
	case update.Message.Voice != nil:
		b.handleVoice(ctx, botAPI, update)
	case update.Message.Text != "":
		b.handleText(ctx, botAPI, update)
	default:
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   msgUnsupportedUpdate,
		})
	}
}
