package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/okhrimenko/kasabot/internal/extract"
	"github.com/okhrimenko/kasabot/internal/model"
	"github.com/okhrimenko/kasabot/internal/session"
	"github.com/okhrimenko/kasabot/internal/storage"
)

// Transcriber is the transcription contract the audio path depends on.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Normalizer converts an acquired audio file into the encoding the
// transcriber expects, returning a cleanup for the produced file.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (string, func(), error)
}

// Pipeline dispatches inbound requests to the extraction or the
// transcription-plus-extraction path and records the outcome.
type Pipeline struct {
	extractor   *extract.Extractor
	transcriber Transcriber
	normalizer  Normalizer
	results     *storage.ResultStore
	cache       *session.Registry[model.Result]
	logger      *slog.Logger
}

// NewPipeline wires the extraction pipeline. transcriber and normalizer
// may be nil when no audio backend is configured.
func NewPipeline(extractor *extract.Extractor, transcriber Transcriber, normalizer Normalizer, results *storage.ResultStore, cache *session.Registry[model.Result], logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor:   extractor,
		transcriber: transcriber,
		normalizer:  normalizer,
		results:     results,
		cache:       cache,
		logger:      logger,
	}
}

// AnalyzeText extracts an amount and category from free text. Extraction
// errors degrade to a result with the Error field set; they are never
// fatal.
func (p *Pipeline) AnalyzeText(ctx context.Context, userID, text string) model.Result {
	draft, err := p.extractor.Extract(ctx, text)

	result := model.Result{
		ID:           uuid.New().String(),
		UserID:       userID,
		Date:         time.Now().Format("2006-01-02"),
		Amount:       draft.Amount,
		Category:     draft.Category,
		OriginalText: text,
		CreatedAt:    time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
	}

	return result
}

// AnalyzeAudio normalizes and transcribes the audio file at path, then
// extracts from the recognized text. Temp artifacts are removed on every
// exit path.
func (p *Pipeline) AnalyzeAudio(ctx context.Context, userID, path string) (model.Result, error) {
	if p.transcriber == nil || p.normalizer == nil {
		return model.Result{}, fmt.Errorf("no transcription backend configured")
	}

	wavPath, cleanup, err := p.normalizer.Normalize(ctx, path)
	if err != nil {
		return model.Result{}, err
	}
	defer cleanup()

	text, err := p.transcriber.Transcribe(ctx, wavPath)
	result := p.AnalyzeText(ctx, userID, text)
	if err != nil {
		// The adapter degrades to sentinel text; carry the failure in the
		// result's Error field so callers see a degraded, not a valid, row.
		p.logger.Warn("transcription degraded", "error", err)
		result.Error = err.Error()
	}

	return result, nil
}

// Store persists the result and caches it for fast lookups.
func (p *Pipeline) Store(ctx context.Context, result model.Result) error {
	if err := p.results.SaveResult(ctx, result); err != nil {
		return err
	}
	p.cache.Put(result.ID, result)
	return nil
}

// GetResult checks the bounded cache before falling back to the store.
func (p *Pipeline) GetResult(ctx context.Context, id string) (*model.Result, error) {
	if cached, ok := p.cache.Get(id); ok {
		return &cached, nil
	}
	return p.results.GetResult(ctx, id)
}

// GetUserResults loads all stored results for a user.
func (p *Pipeline) GetUserResults(ctx context.Context, userID string) ([]model.Result, error) {
	return p.results.GetResultsByUser(ctx, userID)
}
