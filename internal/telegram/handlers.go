package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/okhrimenko/kasabot/internal/model"
	"github.com/okhrimenko/kasabot/internal/workflow"
)

func (b *Bot) handleStart(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("start").Inc()
	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   msgStart,
	})
}

func (b *Bot) handleHelp(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("help").Inc()
	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   msgHelp,
	})
}

// handleSummary lists the user's most recent stored expenses.
func (b *Bot) handleSummary(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("summary").Inc()
	if update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if b.results == nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgSummaryEmpty})
		return
	}

	userID := strconv.FormatInt(update.Message.From.ID, 10)
	results, err := b.results.GetResultsByUser(ctx, userID)
	if err != nil {
		errorsTotal.WithLabelValues("summary").Inc()
		b.logger.Error("failed to load summary", "user_id", userID, "error", err)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgSummaryFailed})
		return
	}
	if len(results) == 0 {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgSummaryEmpty})
		return
	}

	const maxLines = 10
	var sb strings.Builder
	sb.WriteString("📊 Останні витрати:\n")
	var total float64
	for i, r := range results {
		if i >= maxLines {
			break
		}
		if r.Amount == nil {
			continue
		}
		total += *r.Amount
		fmt.Fprintf(&sb, "• %s — %.2f грн (%s)\n", r.Date, *r.Amount, r.Category)
	}
	fmt.Fprintf(&sb, "\nРазом: %.2f грн", total)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sb.String()})
}

// handleText routes plain text: a pending amount edit consumes it,
// otherwise it starts a new extraction.
func (b *Bot) handleText(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)

	if strings.HasPrefix(text, "/") {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgUnknownCommand})
		return
	}

	if _, ok := b.workflow.AwaitingAmount(userID); ok {
		b.handleAmountReply(ctx, botAPI, chatID, userID, text)
		return
	}

	messagesProcessed.WithLabelValues("text").Inc()
	b.beginDraft(ctx, botAPI, chatID, userID, text)
}

// handleAmountReply feeds the text into the session waiting for a new
// amount. Invalid input keeps the session in the editing state.
func (b *Bot) handleAmountReply(ctx context.Context, botAPI *bot.Bot, chatID, userID int64, text string) {
	messagesProcessed.WithLabelValues("amount").Inc()

	outcome := b.workflow.SubmitAmount(userID, text)
	switch outcome.Status {
	case workflow.OutcomeUpdated:
		b.sendConfirmation(ctx, botAPI, chatID, outcome.Session, "")
	case workflow.OutcomeInvalidAmount:
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgInvalidAmount})
	default:
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgSessionNotFound})
	}
}

// beginDraft runs extraction on the text and shows the confirmation
// message. A degraded extraction still opens a session so the user can
// fix the draft with the edit buttons.
func (b *Bot) beginDraft(ctx context.Context, botAPI *bot.Bot, chatID, userID int64, text string) {
	start := time.Now()
	draft, err := b.extractor.Extract(ctx, text)
	extractionDuration.Observe(time.Since(start).Seconds())

	note := ""
	if err != nil {
		errorsTotal.WithLabelValues("extraction").Inc()
		b.logger.Warn("extraction degraded", "user_id", userID, "error", err)
		note = msgExtractDegraded
	}

	session := b.workflow.Begin(userID, draft)
	b.sendConfirmation(ctx, botAPI, chatID, session, note)
}

// handleVoice downloads the voice file, normalizes and transcribes it,
// then runs the transcript through the same text pipeline.
func (b *Bot) handleVoice(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	messagesProcessed.WithLabelValues("voice").Inc()

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	fileID := update.Message.Voice.FileID

	file, err := botAPI.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		errorsTotal.WithLabelValues("download_file").Inc()
		b.logger.Error("failed to resolve voice file", "file_id", fileID, "error", err)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgVoiceFetchFailed})
		return
	}

	fileURL := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", botAPI.Token(), file.FilePath)
	oggPath, cleanupOgg, err := b.fetcher.Acquire(ctx, fileURL)
	if err != nil {
		errorsTotal.WithLabelValues("download_file").Inc()
		b.logger.Error("failed to download voice file", "file_id", fileID, "error", err)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgVoiceFetchFailed})
		return
	}
	defer cleanupOgg()

	wavPath, cleanupWav, err := b.normalizer.Normalize(ctx, oggPath)
	if err != nil {
		errorsTotal.WithLabelValues("normalize").Inc()
		b.logger.Error("failed to normalize voice file", "file_id", fileID, "error", err)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgVoiceFetchFailed})
		return
	}
	defer cleanupWav()

	start := time.Now()
	transcript, err := b.transcriber.Transcribe(ctx, wavPath)
	transcriptionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		errorsTotal.WithLabelValues("transcription").Inc()
		b.logger.Error("failed to transcribe voice", "file_id", fileID, "error", err)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgTranscribeFailed})
		return
	}

	b.logger.Info("voice transcribed", "user_id", userID, "text", transcript)
	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🎙 " + transcript,
	})
	b.beginDraft(ctx, botAPI, chatID, userID, transcript)
}

// handleCallback dispatches inline keyboard presses to the workflow.
func (b *Bot) handleCallback(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	callback := update.CallbackQuery

	answer := func(text string) {
		_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            text,
		})
	}

	action, err := workflow.DecodeAction(callback.Data)
	if err != nil {
		b.logger.Warn("malformed callback data", "data", callback.Data, "error", err)
		answer(msgSessionNotFound)
		return
	}
	callbacksProcessed.WithLabelValues(string(action.Kind)).Inc()

	msg := callback.Message.Message
	if msg == nil {
		answer(msgSessionNotFound)
		return
	}
	chatID := msg.Chat.ID
	messageID := msg.ID
	userID := callback.From.ID

	switch action.Kind {
	case workflow.ActionConfirm:
		b.handleConfirm(ctx, botAPI, action, chatID, messageID, userID, answer)

	case workflow.ActionCancel:
		outcome := b.workflow.Cancel(action.SessionID)
		if outcome.Status != workflow.OutcomeCancelled {
			answer(msgSessionNotFound)
			return
		}
		answer("")
		b.clearKeyboard(ctx, botAPI, chatID, messageID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgCancelled})

	case workflow.ActionEditCategory:
		outcome := b.workflow.EditCategory(action.SessionID)
		if outcome.Status != workflow.OutcomeEditingCategory {
			answer(msgSessionNotFound)
			return
		}
		answer("")
		b.editConfirmation(ctx, botAPI, chatID, messageID, outcome.Session, msgChooseCategory,
			categoryKeyboard(action.SessionID, outcome.Session.Draft.Category, 0))

	case workflow.ActionCategoryPage:
		session, ok := b.workflow.Get(action.SessionID)
		if !ok {
			answer(msgSessionNotFound)
			return
		}
		answer("")
		_, _ = botAPI.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
			ChatID:      chatID,
			MessageID:   messageID,
			ReplyMarkup: categoryKeyboard(action.SessionID, session.Draft.Category, action.Page),
		})

	case workflow.ActionSelectCategory:
		outcome := b.workflow.SelectCategory(action.SessionID, action.Category)
		if outcome.Status != workflow.OutcomeUpdated {
			answer(msgSessionNotFound)
			return
		}
		answer("")
		b.editConfirmation(ctx, botAPI, chatID, messageID, outcome.Session, "",
			confirmKeyboard(action.SessionID))

	case workflow.ActionEditAmount:
		outcome := b.workflow.EditAmount(action.SessionID)
		if outcome.Status != workflow.OutcomeEditingAmount {
			answer(msgSessionNotFound)
			return
		}
		answer("")
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgPromptAmount})

	default:
		answer(msgSessionNotFound)
	}
}

func (b *Bot) handleConfirm(ctx context.Context, botAPI *bot.Bot, action workflow.Action, chatID int64, messageID int, userID int64, answer func(string)) {
	outcome := b.workflow.Confirm(ctx, action.SessionID)
	switch outcome.Status {
	case workflow.OutcomeCommitted:
		expensesCommitted.Inc()
		answer(msgSaved)
		b.clearKeyboard(ctx, botAPI, chatID, messageID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgSaved})
		b.storeCommitted(ctx, action.SessionID, userID, outcome.Record)
	case workflow.OutcomeSaveFailed:
		errorsTotal.WithLabelValues("save").Inc()
		answer("")
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgSaveFailed})
	case workflow.OutcomeAmountRequired:
		answer("")
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgAmountRequired})
	default:
		answer(msgSessionNotFound)
	}
}

// storeCommitted records a confirmed expense so /summary can report it.
func (b *Bot) storeCommitted(ctx context.Context, sessionID string, userID int64, record *model.Record) {
	if b.results == nil || record == nil {
		return
	}
	result := model.Result{
		ID:           sessionID,
		UserID:       strconv.FormatInt(userID, 10),
		Date:         record.Date.Format("2006-01-02"),
		Amount:       &record.Amount,
		Category:     record.Category,
		OriginalText: record.Note,
		CreatedAt:    time.Now().UTC(),
	}
	if err := b.results.SaveResult(ctx, result); err != nil {
		b.logger.Warn("failed to store committed expense", "session_id", sessionID, "error", err)
	}
}

// sendConfirmation posts the draft with the confirm keyboard.
func (b *Bot) sendConfirmation(ctx context.Context, botAPI *bot.Bot, chatID int64, session *workflow.Session, note string) {
	text := formatDraft(session.Draft)
	if note != "" {
		text = note + "\n\n" + text
	}
	_, err := botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: confirmKeyboard(session.ID),
	})
	if err != nil {
		b.logger.Error("failed to send confirmation", "session_id", session.ID, "error", err)
	}
}

// editConfirmation re-renders an existing confirmation message in place.
func (b *Bot) editConfirmation(ctx context.Context, botAPI *bot.Bot, chatID int64, messageID int, session *workflow.Session, note string, markup models.ReplyMarkup) {
	text := formatDraft(session.Draft)
	if note != "" {
		text = text + "\n\n" + note
	}
	_, err := botAPI.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		b.logger.Warn("failed to edit confirmation", "session_id", session.ID, "error", err)
	}
}

func (b *Bot) clearKeyboard(ctx context.Context, botAPI *bot.Bot, chatID int64, messageID int) {
	_, _ = botAPI.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}},
	})
}

func formatDraft(draft model.Draft) string {
	amount := "—"
	if draft.Amount != nil {
		amount = strconv.FormatFloat(*draft.Amount, 'f', 2, 64)
	}
	return fmt.Sprintf("💰 Сума: %s грн\n🏷 Категорія: %s\n📝 %s", amount, draft.Category, draft.RawText)
}
