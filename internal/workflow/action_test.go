package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhrimenko/kasabot/internal/model"
)

func TestActionRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{name: "confirm", action: Action{Kind: ActionConfirm, SessionID: "abc"}},
		{name: "cancel", action: Action{Kind: ActionCancel, SessionID: "abc"}},
		{name: "edit category", action: Action{Kind: ActionEditCategory, SessionID: "abc"}},
		{name: "edit amount", action: Action{Kind: ActionEditAmount, SessionID: "abc"}},
		{name: "select category", action: Action{Kind: ActionSelectCategory, SessionID: "abc", Category: model.CategoryCafe}},
		{name: "select multibyte category", action: Action{Kind: ActionSelectCategory, SessionID: "abc", Category: model.CategoryUtilities}},
		{name: "category page", action: Action{Kind: ActionCategoryPage, SessionID: "abc", Page: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeAction(tt.action.Encode())
			require.NoError(t, err)
			assert.Equal(t, tt.action, decoded)
		})
	}
}

func TestDecodeActionRejectsMalformedData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "wrong prefix", data: "foo:confirm:abc"},
		{name: "missing session id", data: "exp:confirm"},
		{name: "unknown kind", data: "exp:explode:abc"},
		{name: "select without category", data: "exp:setcat:abc"},
		{name: "select with non-numeric category", data: "exp:setcat:abc:кафе"},
		{name: "select with out-of-range index", data: "exp:setcat:abc:99"},
		{name: "page without number", data: "exp:catpage:abc"},
		{name: "page with garbage", data: "exp:catpage:abc:xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAction(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestEncodeFitsCallbackDataLimit(t *testing.T) {
	// Telegram rejects inline keyboards whose callback_data exceeds 64
	// bytes, so every encoding with a uuid session id must stay under it.
	sessionID := "ba68e271-4c1f-4a8e-9f52-9d1a6ab6c7de"

	for _, c := range model.Categories() {
		data := Action{Kind: ActionSelectCategory, SessionID: sessionID, Category: c}.Encode()
		assert.LessOrEqual(t, len(data), 64, "callback data %q", data)
	}

	page := Action{Kind: ActionCategoryPage, SessionID: sessionID, Page: 10}.Encode()
	assert.LessOrEqual(t, len(page), 64, "callback data %q", page)
}
