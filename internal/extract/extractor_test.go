package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhrimenko/kasabot/internal/common"
	"github.com/okhrimenko/kasabot/internal/model"
)

// fakeBackend returns a canned draft or error so extractor fallback
// behavior can be exercised without a network.
type fakeBackend struct {
	err   error
	draft model.Draft
	calls int
}

func (f *fakeBackend) Extract(_ context.Context, _ string) (model.Draft, error) {
	f.calls++
	return f.draft, f.err
}

func TestExtractorUsesPrimary(t *testing.T) {
	amount := 250.0
	primary := &fakeBackend{
		draft: model.Draft{
			RawText:  "Купив продукти за 250 грн",
			Amount:   &amount,
			Category: model.CategoryGroceries,
		},
	}

	e := NewExtractor(primary, nil)
	draft, err := e.Extract(context.Background(), "Купив продукти за 250 грн")
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, model.CategoryGroceries, draft.Category)
	require.NotNil(t, draft.Amount)
	assert.InDelta(t, 250, *draft.Amount, 0.001)
}

func TestExtractorFallsBackOnUnparsableReply(t *testing.T) {
	primary := &fakeBackend{err: ErrUnparsableReply}

	e := NewExtractor(primary, nil)
	draft, err := e.Extract(context.Background(), "Кава 85 грн")
	require.NoError(t, err)

	// Rules take over silently
	assert.Equal(t, model.CategoryCafe, draft.Category)
	require.NotNil(t, draft.Amount)
	assert.InDelta(t, 85, *draft.Amount, 0.001)
}

func TestExtractorReportsUnreachableBackend(t *testing.T) {
	primary := &fakeBackend{err: errors.New("connection refused")}

	e := NewExtractor(primary, nil)
	draft, err := e.Extract(context.Background(), "Кава 85 грн")

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFailed)

	// Degraded draft keeps the raw text so the user can still edit it
	assert.Equal(t, "Кава 85 грн", draft.RawText)
	assert.Equal(t, model.CategoryOther, draft.Category)
	assert.Nil(t, draft.Amount)
}

func TestExtractorWithoutPrimary(t *testing.T) {
	e := NewExtractor(nil, nil)
	draft, err := e.Extract(context.Background(), "Заплатив 1200 за комунальні")
	require.NoError(t, err)

	assert.Equal(t, model.CategoryUtilities, draft.Category)
	require.NotNil(t, draft.Amount)
	assert.InDelta(t, 1200, *draft.Amount, 0.001)
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantErr  bool
	}{
		{name: "rules", provider: "rules"},
		{name: "empty defaults to rules", provider: ""},
		{name: "groq", provider: "groq", apiKey: "test-key"},
		{name: "groq without key", provider: "groq", wantErr: true},
		{name: "unknown provider", provider: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := NewBackend(Config{Provider: tt.provider, APIKey: tt.apiKey})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, backend)
		})
	}
}
