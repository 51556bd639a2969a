// Package workflow implements the confirmation state machine between
// expense extraction and persistence: a draft is shown to the user, who
// may confirm it, cancel it, or edit its category and amount before the
// record is committed.
package workflow

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okhrimenko/kasabot/internal/extract"
	"github.com/okhrimenko/kasabot/internal/model"
	"github.com/okhrimenko/kasabot/internal/session"
)

// State is the position of a session inside the confirmation flow.
// Committed and Cancelled are terminal and have no State value: a session
// in a terminal state is removed from the registry outright, so a stale
// id resolves to "not found" rather than operating on absent data.
type State string

const (
	StatePending         State = "pending"
	StateEditingCategory State = "editing_category"
	StateEditingAmount   State = "editing_amount"
)

// Session tracks one draft awaiting user action.
type Session struct {
	CreatedAt time.Time
	Draft     model.Draft
	ID        string
	State     State
	UserID    int64
}

// Appender commits a confirmed record to the tabular backend.
type Appender interface {
	Append(ctx context.Context, record model.Record) error
}

// OutcomeStatus enumerates the results of workflow operations.
type OutcomeStatus string

const (
	OutcomeCommitted       OutcomeStatus = "committed"
	OutcomeCancelled       OutcomeStatus = "cancelled"
	OutcomeNotFound        OutcomeStatus = "not_found"
	OutcomeSaveFailed      OutcomeStatus = "save_failed"
	OutcomeEditingCategory OutcomeStatus = "editing_category"
	OutcomeEditingAmount   OutcomeStatus = "editing_amount"
	OutcomeUpdated         OutcomeStatus = "updated"
	OutcomeInvalidAmount   OutcomeStatus = "invalid_amount"
	OutcomeAmountRequired  OutcomeStatus = "amount_required"
)

// Outcome is the structured result every operation returns; operations
// never panic and never surface a raw error to the transport layer.
type Outcome struct {
	Session *Session
	Record  *model.Record
	Status  OutcomeStatus
}

// Workflow drives confirmation sessions. Sessions live in a bounded FIFO
// registry; a racing double-tap resolves to OutcomeNotFound for the
// second handler.
type Workflow struct {
	sessions      *session.Registry[*Session]
	awaiting      *session.Registry[string]
	appender      Appender
	logger        *slog.Logger
	commitTimeout time.Duration
}

// New creates a workflow over the given session registry and appender.
func New(sessions *session.Registry[*Session], appender Appender, commitTimeout time.Duration, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	if commitTimeout <= 0 {
		commitTimeout = 30 * time.Second
	}
	return &Workflow{
		sessions:      sessions,
		awaiting:      session.NewRegistry[string](256),
		appender:      appender,
		logger:        logger,
		commitTimeout: commitTimeout,
	}
}

// Begin registers a fresh draft and returns its pending session.
func (w *Workflow) Begin(userID int64, draft model.Draft) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		State:     StatePending,
		Draft:     draft,
		CreatedAt: time.Now(),
	}
	w.sessions.Put(s.ID, s)
	return s
}

// Get looks up a session by id.
func (w *Workflow) Get(sessionID string) (*Session, bool) {
	return w.sessions.Get(sessionID)
}

// Confirm commits the session's draft. The persistence call is made
// exactly once per invocation and is not retried automatically; on
// failure the session is KEPT so the user may re-confirm (see DESIGN.md).
// On success the session is removed, so re-confirming yields not found.
func (w *Workflow) Confirm(ctx context.Context, sessionID string) Outcome {
	s, ok := w.sessions.Get(sessionID)
	if !ok {
		return Outcome{Status: OutcomeNotFound}
	}

	if s.Draft.Amount == nil {
		return Outcome{Status: OutcomeAmountRequired, Session: s}
	}

	record := model.Record{
		Date:     time.Now(),
		Amount:   *s.Draft.Amount,
		Category: s.Draft.Category,
		Note:     s.Draft.RawText,
	}

	commitCtx, cancel := context.WithTimeout(ctx, w.commitTimeout)
	defer cancel()

	if err := w.appender.Append(commitCtx, record); err != nil {
		w.logger.Error("failed to persist expense", "session_id", sessionID, "error", err)
		return Outcome{Status: OutcomeSaveFailed, Session: s}
	}

	w.sessions.Delete(sessionID)
	w.clearAwaiting(s.UserID, sessionID)
	return Outcome{Status: OutcomeCommitted, Record: &record}
}

// Cancel discards the session without persisting anything.
func (w *Workflow) Cancel(sessionID string) Outcome {
	s, ok := w.sessions.Get(sessionID)
	if !ok {
		return Outcome{Status: OutcomeNotFound}
	}

	w.sessions.Delete(sessionID)
	w.clearAwaiting(s.UserID, sessionID)
	return Outcome{Status: OutcomeCancelled}
}

// EditCategory moves the session into category selection.
func (w *Workflow) EditCategory(sessionID string) Outcome {
	s, ok := w.sessions.Get(sessionID)
	if !ok {
		return Outcome{Status: OutcomeNotFound}
	}

	s.State = StateEditingCategory
	return Outcome{Status: OutcomeEditingCategory, Session: s}
}

// SelectCategory replaces the draft's category and re-enters Pending.
// Amount and note are unchanged.
func (w *Workflow) SelectCategory(sessionID string, category model.Category) Outcome {
	s, ok := w.sessions.Get(sessionID)
	if !ok {
		return Outcome{Status: OutcomeNotFound}
	}

	if !category.Valid() {
		category = model.CategoryOther
	}
	s.Draft.Category = category
	s.State = StatePending
	return Outcome{Status: OutcomeUpdated, Session: s}
}

// EditAmount moves the session into amount entry. The user's next plain
// text reply is consumed as the new amount; there is exactly one
// unconsumed awaiting-amount slot per user, so starting a second edit
// supersedes the first.
func (w *Workflow) EditAmount(sessionID string) Outcome {
	s, ok := w.sessions.Get(sessionID)
	if !ok {
		return Outcome{Status: OutcomeNotFound}
	}

	s.State = StateEditingAmount
	w.awaiting.Put(awaitKey(s.UserID), sessionID)
	return Outcome{Status: OutcomeEditingAmount, Session: s}
}

// AwaitingAmount reports whether the user's next reply belongs to a
// session rather than starting a fresh extraction.
func (w *Workflow) AwaitingAmount(userID int64) (string, bool) {
	return w.awaiting.Get(awaitKey(userID))
}

// SubmitAmount validates the user's reply as the new amount. Invalid or
// non-positive input keeps the session in EditingAmount so the caller can
// re-prompt; valid input re-enters Pending with the amount replaced.
func (w *Workflow) SubmitAmount(userID int64, text string) Outcome {
	sessionID, ok := w.awaiting.Get(awaitKey(userID))
	if !ok {
		return Outcome{Status: OutcomeNotFound}
	}

	s, ok := w.sessions.Get(sessionID)
	if !ok {
		w.awaiting.Delete(awaitKey(userID))
		return Outcome{Status: OutcomeNotFound}
	}

	amount, err := extract.ParseAmount(text)
	if err != nil {
		return Outcome{Status: OutcomeInvalidAmount, Session: s}
	}

	s.Draft.Amount = &amount
	s.State = StatePending
	w.awaiting.Delete(awaitKey(userID))
	return Outcome{Status: OutcomeUpdated, Session: s}
}

func (w *Workflow) clearAwaiting(userID int64, sessionID string) {
	if current, ok := w.awaiting.Get(awaitKey(userID)); ok && current == sessionID {
		w.awaiting.Delete(awaitKey(userID))
	}
}

func awaitKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
