// Package extract turns free text describing a purchase into an amount and
// a spending category. The primary strategy delegates to a text-generation
// API; a deterministic rule-based strategy serves as the terminal fallback
// and as the canonical extractor when no API is configured.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/okhrimenko/kasabot/internal/common"
	"github.com/okhrimenko/kasabot/internal/model"
)

// ErrUnparsableReply indicates that the text-generation service answered
// but the reply matched neither the plain nor the structured shape.
var ErrUnparsableReply = errors.New("unparsable extraction reply")

// Backend is the strategy interface for extraction implementations.
type Backend interface {
	Extract(ctx context.Context, text string) (model.Draft, error)
}

// Config holds configuration for the extraction backend.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewBackend creates an extraction backend based on the configured provider.
func NewBackend(cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Provider) {
	case "groq", "openai":
		return newLLMBackend(cfg)
	case "rules", "":
		return NewRuleBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported extraction provider: %s", cfg.Provider)
	}
}

// Extractor runs the configured backend and degrades through the fallback
// chain. It holds no mutable state; two calls on identical input through
// the rule backend yield identical output.
type Extractor struct {
	primary Backend
	rules   *RuleBackend
	logger  *slog.Logger
}

// NewExtractor creates an extractor around the given primary backend.
// A nil primary means rule-based extraction only.
func NewExtractor(primary Backend, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		primary: primary,
		rules:   NewRuleBackend(),
		logger:  logger,
	}
}

// Extract produces a draft from free text. A reply that cannot be parsed
// falls back to the rule backend; an unreachable upstream is reported as
// an error alongside a degraded draft so the caller can ask the user to
// retry. Extract never panics and never returns a draft with a category
// outside the enumeration.
func (e *Extractor) Extract(ctx context.Context, text string) (model.Draft, error) {
	if e.primary == nil {
		draft, _ := e.rules.Extract(ctx, text)
		return draft, nil
	}

	draft, err := e.primary.Extract(ctx, text)
	if err == nil {
		return draft, nil
	}

	if errors.Is(err, ErrUnparsableReply) {
		e.logger.Warn("extraction reply unparsable, falling back to rules", "error", err)
		draft, _ = e.rules.Extract(ctx, text)
		return draft, nil
	}

	e.logger.Error("extraction backend unreachable", "error", err)
	return model.Draft{
		RawText:   text,
		Category:  model.CategoryOther,
		CreatedAt: time.Now(),
	}, fmt.Errorf("%w: %v", common.ErrExtractionFailed, err)
}
