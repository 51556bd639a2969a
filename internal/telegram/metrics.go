package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telegram bot metrics
var (
	commandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_processed_total",
			Help: "Total number of processed commands by type",
		},
		[]string{"command"}, // start, help, summary
	)

	messagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_processed_total",
			Help: "Total number of processed messages by type",
		},
		[]string{"type"}, // text, voice, amount
	)

	callbacksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_callbacks_processed_total",
			Help: "Total number of processed callback queries by action",
		},
		[]string{"action"}, // confirm, cancel, editcat, editamt, setcat, catpage
	)

	expensesCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_expenses_committed_total",
			Help: "Total number of expenses written to the sheet",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // download_file, normalize, transcription, extraction, save, summary
	)

	transcriptionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telegram_transcription_duration_seconds",
			Help:    "Duration of voice transcription in seconds",
			Buckets: []float64{0.5, 1.5, 2.5, 3.5, 5, 10},
		},
	)

	extractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telegram_extraction_duration_seconds",
			Help:    "Duration of expense extraction in seconds",
			Buckets: []float64{0.5, 1.5, 2.5, 3.5},
		},
	)
)
