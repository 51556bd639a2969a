package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/okhrimenko/kasabot/internal/audio"
	"github.com/okhrimenko/kasabot/internal/extract"
	"github.com/okhrimenko/kasabot/internal/model"
	"github.com/okhrimenko/kasabot/internal/server"
	"github.com/okhrimenko/kasabot/internal/session"
	"github.com/okhrimenko/kasabot/internal/sheets"
	"github.com/okhrimenko/kasabot/internal/storage"
	"github.com/okhrimenko/kasabot/internal/telegram"
	"github.com/okhrimenko/kasabot/internal/transcribe"
	"github.com/okhrimenko/kasabot/internal/workflow"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().Int("port", 8080, "HTTP listen port")
	_ = viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	viper.SetDefault("llm.provider", "groq")
	viper.SetDefault("transcribe.provider", "whisper-api")
	viper.SetDefault("transcribe.fallback", "")
	viper.SetDefault("storage.path", "kasabot.db")
	viper.SetDefault("session.capacity", 1000)
	viper.SetDefault("audio.max_bytes", audio.DefaultMaxBytes)

	return cmd
}

func runServe(ctx context.Context) error {
	logger := slog.Default()

	extractor, err := buildExtractor(logger)
	if err != nil {
		return err
	}

	adapter, err := buildTranscriber(logger)
	if err != nil {
		return err
	}

	tempDir := audio.NewTempDir(viper.GetString("audio.dir"))
	fetcher := audio.NewFetcher(tempDir, viper.GetInt64("audio.max_bytes"))
	normalizer := audio.NewNormalizer(tempDir)

	appender, err := buildAppender(ctx, logger)
	if err != nil {
		return err
	}

	results, err := storage.NewResultStore(viper.GetString("storage.path"))
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}
	defer func() { _ = results.Close() }()
	if err := results.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate result store: %w", err)
	}

	capacity := viper.GetInt("session.capacity")
	sessions := session.NewRegistry[*workflow.Session](capacity)
	cache := session.NewRegistry[model.Result](capacity)

	wf := workflow.New(sessions, appender, 30*time.Second, logger)

	pipeline := server.NewPipeline(extractor, adapter, normalizer, results, cache, logger)
	httpServer := server.New(pipeline, logger)

	tgBot, err := telegram.New(
		telegram.Config{
			Token: viper.GetString("telegram.token"),
			Debug: viper.GetBool("telegram.debug"),
		},
		telegram.Deps{
			Workflow:    wf,
			Extractor:   extractor,
			Transcriber: adapter,
			Normalizer:  normalizer,
			Fetcher:     fetcher,
			Results:     results,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpServer.Start(viper.GetString("server.host"), viper.GetInt("server.port"))
	}()

	botErr := make(chan error, 1)
	go func() {
		botErr <- tgBot.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-httpErr:
		return fmt.Errorf("http server stopped: %w", err)
	case err := <-botErr:
		if err != nil {
			return fmt.Errorf("telegram bot stopped: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	logger.Info("kasabot stopped")
	return nil
}

func buildExtractor(logger *slog.Logger) (*extract.Extractor, error) {
	backend, err := extract.NewBackend(extract.Config{
		Provider: viper.GetString("llm.provider"),
		APIKey:   viper.GetString("llm.api_key"),
		Model:    viper.GetString("llm.model"),
		BaseURL:  viper.GetString("llm.base_url"),
		Timeout:  viper.GetDuration("llm.timeout"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction backend: %w", err)
	}
	return extract.NewExtractor(backend, logger), nil
}

func buildTranscriber(logger *slog.Logger) (*transcribe.Adapter, error) {
	cfg := transcribe.Config{
		Provider: viper.GetString("transcribe.provider"),
		Fallback: viper.GetString("transcribe.fallback"),
		APIKey:   viper.GetString("transcribe.api_key"),
		Model:    viper.GetString("transcribe.model"),
		BaseURL:  viper.GetString("transcribe.base_url"),
		CLIPath:  viper.GetString("transcribe.cli_path"),
		Timeout:  viper.GetDuration("transcribe.timeout"),
	}

	primary, err := transcribe.NewBackend(cfg.Provider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription backend: %w", err)
	}

	var fallback transcribe.Backend
	if cfg.Fallback != "" {
		fallback, err = transcribe.NewBackend(cfg.Fallback, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create fallback transcription backend: %w", err)
		}
	}

	return transcribe.NewAdapter(primary, fallback, cfg.Timeout, logger), nil
}

func buildAppender(ctx context.Context, logger *slog.Logger) (*sheets.Appender, error) {
	cfg := sheets.DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load sheets config: %w", err)
	}
	appender, err := sheets.NewAppender(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets appender: %w", err)
	}
	return appender, nil
}
