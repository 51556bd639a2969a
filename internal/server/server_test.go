package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhrimenko/kasabot/internal/common"
	"github.com/okhrimenko/kasabot/internal/extract"
	"github.com/okhrimenko/kasabot/internal/model"
	"github.com/okhrimenko/kasabot/internal/session"
	"github.com/okhrimenko/kasabot/internal/storage"
	"github.com/okhrimenko/kasabot/internal/transcribe"
)

// fakeTranscriber returns a canned transcript.
type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

// fakeNormalizer passes the input path through untouched.
type fakeNormalizer struct {
	err error
}

func (f *fakeNormalizer) Normalize(_ context.Context, inputPath string) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return inputPath, func() {}, nil
}

func newTestServer(t *testing.T, transcriber Transcriber, normalizer Normalizer) *Server {
	t.Helper()

	store, err := storage.NewResultStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	pipeline := NewPipeline(
		extract.NewExtractor(nil, nil),
		transcriber,
		normalizer,
		store,
		session.NewRegistry[model.Result](16),
		nil,
	)
	return New(pipeline, nil)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestWebhookAnalyzesText(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/webhook", `{"text":"Купив продукти за 250 грн"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Empty(t, resp.ResultID)
	assert.Equal(t, string(model.CategoryGroceries), resp.Category)
	require.NotNil(t, resp.Amount)
	assert.InDelta(t, 250, *resp.Amount, 0.001)
	assert.Equal(t, "Купив продукти за 250 грн", resp.OriginalText)
}

func TestWebhookRejectsEmptyText(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/webhook", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterTextStoresResult(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/router",
		`{"type":"TEXT","content":"Кава 85 грн","userId":"42","messageId":"m1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ResultID)
	assert.Equal(t, string(model.CategoryCafe), resp.Category)

	// Stored result is reachable through the analysis API
	lookup := doJSON(t, s, http.MethodGet, "/api/analysis/"+resp.ResultID, "")
	require.Equal(t, http.StatusOK, lookup.Code)

	byUser := doJSON(t, s, http.MethodGet, "/api/analysis/user/42", "")
	require.Equal(t, http.StatusOK, byUser.Code)
	var userResults []analysisResponse
	require.NoError(t, json.Unmarshal(byUser.Body.Bytes(), &userResults))
	require.Len(t, userResults, 1)
	assert.Equal(t, resp.ResultID, userResults[0].ResultID)
}

func TestRouterAudioUsesTranscriber(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{text: "Заплатив 1200 за комунальні"}, &fakeNormalizer{})

	rec := doJSON(t, s, http.MethodPost, "/router",
		`{"type":"AUDIO","filePath":"/tmp/voice.ogg","userId":"42","messageId":"m2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(model.CategoryUtilities), resp.Category)
	require.NotNil(t, resp.Amount)
	assert.InDelta(t, 1200, *resp.Amount, 0.001)
}

func TestRouterAudioDegradedTranscriptionCarriesError(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{
		text: transcribe.SentinelText,
		err:  fmt.Errorf("%w: all backends failed", common.ErrTranscriptionFailed),
	}, &fakeNormalizer{})

	rec := doJSON(t, s, http.MethodPost, "/router",
		`{"type":"AUDIO","filePath":"/tmp/voice.ogg","userId":"42","messageId":"m4"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, transcribe.SentinelText, resp.OriginalText)
	assert.Nil(t, resp.Amount)
}

func TestRouterAudioNormalizeFailure(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{text: "x"}, &fakeNormalizer{err: fmt.Errorf("ffmpeg exploded")})

	rec := doJSON(t, s, http.MethodPost, "/router",
		`{"type":"AUDIO","filePath":"/tmp/voice.ogg","userId":"42","messageId":"m3"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouterValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "unknown type", body: `{"type":"VIDEO","userId":"42"}`},
		{name: "text without content", body: `{"type":"TEXT","userId":"42"}`},
		{name: "audio without file path", body: `{"type":"AUDIO","userId":"42"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/router", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetResultNotFound(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/analysis/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserResultsEmpty(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/analysis/user/nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
