package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okhrimenko/kasabot/internal/model"
)

// extractCmd runs the extraction pipeline once and prints the draft.
// Useful for checking prompts and the keyword table without a bot token.
func extractCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract an amount and category from a purchase text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := buildExtractor(slog.Default())
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			draft, err := extractor.Extract(cmd.Context(), text)
			if err != nil {
				slog.Warn("extraction degraded", "error", err)
			}

			if asJSON {
				out, err := json.MarshalIndent(draftView(draft), "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				return nil
			}

			amount := "-"
			if draft.Amount != nil {
				amount = fmt.Sprintf("%.2f", *draft.Amount)
			}
			cmd.Printf("amount:   %s\ncategory: %s\ntext:     %s\n", amount, draft.Category, draft.RawText)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the draft as JSON")

	return cmd
}

type draftJSON struct {
	Amount   *float64       `json:"amount"`
	Category model.Category `json:"category"`
	Text     string         `json:"text"`
}

func draftView(draft model.Draft) draftJSON {
	return draftJSON{
		Amount:   draft.Amount,
		Category: draft.Category,
		Text:     draft.RawText,
	}
}
