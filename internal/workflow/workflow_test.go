package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhrimenko/kasabot/internal/model"
	"github.com/okhrimenko/kasabot/internal/session"
	"github.com/okhrimenko/kasabot/internal/sheets"
)

func newTestWorkflow(appender Appender) *Workflow {
	return New(session.NewRegistry[*Session](10), appender, time.Second, nil)
}

func draftWithAmount(amount float64, category model.Category, text string) model.Draft {
	return model.Draft{
		Amount:    &amount,
		Category:  category,
		RawText:   text,
		CreatedAt: time.Now(),
	}
}

func TestConfirmCommitsOnce(t *testing.T) {
	mock := &sheets.MockAppender{}
	w := newTestWorkflow(mock)

	s := w.Begin(42, draftWithAmount(250, model.CategoryGroceries, "Купив продукти за 250 грн"))

	outcome := w.Confirm(context.Background(), s.ID)
	require.Equal(t, OutcomeCommitted, outcome.Status)
	require.NotNil(t, outcome.Record)
	assert.InDelta(t, 250, outcome.Record.Amount, 0.001)
	assert.Equal(t, model.CategoryGroceries, outcome.Record.Category)
	assert.Equal(t, "Купив продукти за 250 грн", outcome.Record.Note)
	assert.Equal(t, 1, mock.AppendCallCount)

	// Second confirm of the same session finds nothing
	second := w.Confirm(context.Background(), s.ID)
	assert.Equal(t, OutcomeNotFound, second.Status)
	assert.Equal(t, 1, mock.AppendCallCount)
}

func TestConfirmUnknownSession(t *testing.T) {
	w := newTestWorkflow(&sheets.MockAppender{})

	outcome := w.Confirm(context.Background(), "missing")
	assert.Equal(t, OutcomeNotFound, outcome.Status)
}

func TestConfirmWithoutAmount(t *testing.T) {
	mock := &sheets.MockAppender{}
	w := newTestWorkflow(mock)

	s := w.Begin(42, model.Draft{RawText: "Купив хліб", Category: model.CategoryGroceries})

	outcome := w.Confirm(context.Background(), s.ID)
	assert.Equal(t, OutcomeAmountRequired, outcome.Status)
	assert.Equal(t, 0, mock.AppendCallCount)

	// Session survives so the user can set the amount
	_, ok := w.Get(s.ID)
	assert.True(t, ok)
}

func TestConfirmKeepsSessionWhenSaveFails(t *testing.T) {
	mock := &sheets.MockAppender{
		AppendFunc: func(_ context.Context, _ model.Record) error {
			return errors.New("quota exceeded")
		},
	}
	w := newTestWorkflow(mock)

	s := w.Begin(42, draftWithAmount(85, model.CategoryCafe, "Кава 85 грн"))

	outcome := w.Confirm(context.Background(), s.ID)
	assert.Equal(t, OutcomeSaveFailed, outcome.Status)

	// The session is kept for another confirm attempt
	mock.AppendFunc = nil
	retry := w.Confirm(context.Background(), s.ID)
	assert.Equal(t, OutcomeCommitted, retry.Status)
}

func TestCancelDiscardsSession(t *testing.T) {
	mock := &sheets.MockAppender{}
	w := newTestWorkflow(mock)

	s := w.Begin(42, draftWithAmount(85, model.CategoryCafe, "Кава 85 грн"))

	outcome := w.Cancel(s.ID)
	assert.Equal(t, OutcomeCancelled, outcome.Status)
	assert.Equal(t, 0, mock.AppendCallCount)

	_, ok := w.Get(s.ID)
	assert.False(t, ok)

	assert.Equal(t, OutcomeNotFound, w.Cancel(s.ID).Status)
}

func TestSelectCategory(t *testing.T) {
	w := newTestWorkflow(&sheets.MockAppender{})
	s := w.Begin(42, draftWithAmount(85, model.CategoryCafe, "Кава 85 грн"))

	require.Equal(t, OutcomeEditingCategory, w.EditCategory(s.ID).Status)

	outcome := w.SelectCategory(s.ID, model.CategoryEntertainment)
	require.Equal(t, OutcomeUpdated, outcome.Status)
	assert.Equal(t, model.CategoryEntertainment, outcome.Session.Draft.Category)
	assert.Equal(t, StatePending, outcome.Session.State)

	// Amount is untouched by a category change
	require.NotNil(t, outcome.Session.Draft.Amount)
	assert.InDelta(t, 85, *outcome.Session.Draft.Amount, 0.001)
}

func TestSelectCategoryInvalidDefaultsToOther(t *testing.T) {
	w := newTestWorkflow(&sheets.MockAppender{})
	s := w.Begin(42, draftWithAmount(85, model.CategoryCafe, "Кава 85 грн"))

	outcome := w.SelectCategory(s.ID, model.Category("космічні кораблі"))
	require.Equal(t, OutcomeUpdated, outcome.Status)
	assert.Equal(t, model.CategoryOther, outcome.Session.Draft.Category)
}

func TestEditAmountFlow(t *testing.T) {
	w := newTestWorkflow(&sheets.MockAppender{})
	s := w.Begin(42, draftWithAmount(85, model.CategoryCafe, "Кава 85 грн"))

	require.Equal(t, OutcomeEditingAmount, w.EditAmount(s.ID).Status)

	sessionID, ok := w.AwaitingAmount(42)
	require.True(t, ok)
	assert.Equal(t, s.ID, sessionID)

	// Invalid input keeps the editing state
	outcome := w.SubmitAmount(42, "не число")
	assert.Equal(t, OutcomeInvalidAmount, outcome.Status)
	assert.Equal(t, StateEditingAmount, outcome.Session.State)
	_, stillWaiting := w.AwaitingAmount(42)
	assert.True(t, stillWaiting)

	// Comma decimal separator is accepted
	outcome = w.SubmitAmount(42, "123,45")
	require.Equal(t, OutcomeUpdated, outcome.Status)
	require.NotNil(t, outcome.Session.Draft.Amount)
	assert.InDelta(t, 123.45, *outcome.Session.Draft.Amount, 0.001)
	assert.Equal(t, StatePending, outcome.Session.State)

	_, waiting := w.AwaitingAmount(42)
	assert.False(t, waiting)
}

func TestSubmitAmountWithoutPendingEdit(t *testing.T) {
	w := newTestWorkflow(&sheets.MockAppender{})

	outcome := w.SubmitAmount(42, "100")
	assert.Equal(t, OutcomeNotFound, outcome.Status)
}

func TestCancelClearsAwaitingAmount(t *testing.T) {
	w := newTestWorkflow(&sheets.MockAppender{})
	s := w.Begin(42, draftWithAmount(85, model.CategoryCafe, "Кава 85 грн"))

	w.EditAmount(s.ID)
	w.Cancel(s.ID)

	_, waiting := w.AwaitingAmount(42)
	assert.False(t, waiting)
}
