package telegram

import (
	"github.com/go-telegram/bot/models"

	"github.com/okhrimenko/kasabot/internal/model"
	"github.com/okhrimenko/kasabot/internal/workflow"
)

const categoriesPerPage = 6

// confirmKeyboard returns the main confirmation keyboard for a pending
// session. Callback data carries the session id, never draft values.
func confirmKeyboard(sessionID string) models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Підтвердити", CallbackData: workflow.Action{Kind: workflow.ActionConfirm, SessionID: sessionID}.Encode()},
				{Text: "❌ Скасувати", CallbackData: workflow.Action{Kind: workflow.ActionCancel, SessionID: sessionID}.Encode()},
			},
			{
				{Text: "✏️ Категорія", CallbackData: workflow.Action{Kind: workflow.ActionEditCategory, SessionID: sessionID}.Encode()},
				{Text: "💱 Сума", CallbackData: workflow.Action{Kind: workflow.ActionEditAmount, SessionID: sessionID}.Encode()},
			},
		},
	}
}

// categoryKeyboard returns one page of the category picker. The back
// button re-selects the current category, which returns the session to
// the pending state without changing the draft.
func categoryKeyboard(sessionID string, current model.Category, page int) models.ReplyMarkup {
	categories := model.Categories()
	pages := (len(categories) + categoriesPerPage - 1) / categoriesPerPage
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}

	start := page * categoriesPerPage
	end := start + categoriesPerPage
	if end > len(categories) {
		end = len(categories)
	}

	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, c := range categories[start:end] {
		label := string(c)
		if c == current {
			label = "• " + label
		}
		row = append(row, models.InlineKeyboardButton{
			Text:         label,
			CallbackData: workflow.Action{Kind: workflow.ActionSelectCategory, SessionID: sessionID, Category: c}.Encode(),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var nav []models.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "⬅️",
			CallbackData: workflow.Action{Kind: workflow.ActionCategoryPage, SessionID: sessionID, Page: page - 1}.Encode(),
		})
	}
	nav = append(nav, models.InlineKeyboardButton{
		Text:         "↩️ Назад",
		CallbackData: workflow.Action{Kind: workflow.ActionSelectCategory, SessionID: sessionID, Category: current}.Encode(),
	})
	if page < pages-1 {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "➡️",
			CallbackData: workflow.Action{Kind: workflow.ActionCategoryPage, SessionID: sessionID, Page: page + 1}.Encode(),
		})
	}
	rows = append(rows, nav)

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
