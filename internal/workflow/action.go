package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okhrimenko/kasabot/internal/model"
)

// ActionKind enumerates the user decisions a confirmation message offers.
type ActionKind string

const (
	ActionConfirm        ActionKind = "confirm"
	ActionCancel         ActionKind = "cancel"
	ActionEditCategory   ActionKind = "editcat"
	ActionEditAmount     ActionKind = "editamt"
	ActionSelectCategory ActionKind = "setcat"
	ActionCategoryPage   ActionKind = "catpage"
)

// Action is the typed message carried in a button's callback data: an
// explicit session id plus an enumerated kind. No mutable draft data is
// round-tripped through identifiers.
type Action struct {
	Kind      ActionKind
	SessionID string
	Category  model.Category
	Page      int
}

const actionPrefix = "exp"

// Encode serializes the action for callback data. Telegram caps
// callback_data at 64 bytes, so the category travels as its index into
// model.Categories() rather than its multibyte label.
func (a Action) Encode() string {
	parts := []string{actionPrefix, string(a.Kind), a.SessionID}
	switch a.Kind {
	case ActionSelectCategory:
		parts = append(parts, strconv.Itoa(categoryIndex(a.Category)))
	case ActionCategoryPage:
		parts = append(parts, strconv.Itoa(a.Page))
	}
	return strings.Join(parts, ":")
}

func categoryIndex(c model.Category) int {
	for i, known := range model.Categories() {
		if c == known {
			return i
		}
	}
	return len(model.Categories()) - 1 // CategoryOther
}

// DecodeAction parses callback data produced by Encode.
func DecodeAction(data string) (Action, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 || parts[0] != actionPrefix {
		return Action{}, fmt.Errorf("malformed action data: %q", data)
	}

	action := Action{
		Kind:      ActionKind(parts[1]),
		SessionID: parts[2],
	}

	switch action.Kind {
	case ActionConfirm, ActionCancel, ActionEditCategory, ActionEditAmount:
		return action, nil
	case ActionSelectCategory:
		if len(parts) < 4 {
			return Action{}, fmt.Errorf("category action missing category: %q", data)
		}
		idx, err := strconv.Atoi(parts[3])
		if err != nil || idx < 0 || idx >= len(model.Categories()) {
			return Action{}, fmt.Errorf("malformed category index in %q", data)
		}
		action.Category = model.Categories()[idx]
		return action, nil
	case ActionCategoryPage:
		if len(parts) < 4 {
			return Action{}, fmt.Errorf("page action missing page: %q", data)
		}
		page, err := strconv.Atoi(parts[3])
		if err != nil {
			return Action{}, fmt.Errorf("malformed page number in %q: %w", data, err)
		}
		action.Page = page
		return action, nil
	default:
		return Action{}, fmt.Errorf("unknown action kind: %q", parts[1])
	}
}
