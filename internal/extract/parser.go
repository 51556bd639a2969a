package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/okhrimenko/kasabot/internal/model"
)

// plainReplyPattern tolerantly matches "<number>, <category words>":
// a decimal number, a comma, and trailing free-text category.
var plainReplyPattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*,\s*(.+?)\s*$`)

// parsePlainReply parses the literal "<number>, <category words>" reply
// shape. The category words are mapped onto the enumeration, defaulting
// to CategoryOther.
func parsePlainReply(reply, rawText string) (model.Draft, bool) {
	matches := plainReplyPattern.FindStringSubmatch(strings.TrimSpace(reply))
	if matches == nil {
		return model.Draft{}, false
	}

	amount, err := ParseAmount(matches[1])
	if err != nil {
		return model.Draft{}, false
	}

	return model.Draft{
		RawText:   rawText,
		Amount:    &amount,
		Category:  model.ParseCategory(strings.ToLower(strings.TrimSpace(matches[2]))),
		CreatedAt: time.Now(),
	}, true
}

// parseStructuredReply parses the JSON fallback reply shape
// {"amount": number|null, "category": string}.
func parseStructuredReply(reply, rawText string) (model.Draft, bool) {
	var parsed struct {
		Amount   *float64 `json:"amount"`
		Category string   `json:"category"`
	}

	cleaned := cleanMarkdownWrapper(reply)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return model.Draft{}, false
	}

	if parsed.Amount != nil && *parsed.Amount <= 0 {
		parsed.Amount = nil
	}

	return model.Draft{
		RawText:   rawText,
		Amount:    parsed.Amount,
		Category:  model.ParseCategory(strings.ToLower(strings.TrimSpace(parsed.Category))),
		CreatedAt: time.Now(),
	}, true
}

// cleanMarkdownWrapper strips a ```json ... ``` fence that models sometimes
// wrap around a JSON reply despite instructions.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
