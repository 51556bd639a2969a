package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okhrimenko/kasabot/internal/common"
	"github.com/okhrimenko/kasabot/internal/model"
)

// amountPattern matches the first numeric token, accepting both `.` and
// `,` as the decimal separator.
var amountPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// keywordRule maps a set of lowercase substrings onto a category.
type keywordRule struct {
	category model.Category
	keywords []string
}

// keywordRules is the ordered keyword table: the first rule with a
// matching keyword wins. Generic purchase words sit below the more
// specific rules.
var keywordRules = []keywordRule{
	{model.CategoryGroceries, []string{"продукт", "їж", "хліб", "молок", "маркет", "супермаркет"}},
	{model.CategoryCafe, []string{"кав", "кафе", "ресторан", "обід", "піц", "фастфуд"}},
	{model.CategoryUtilities, []string{"комунал", "світло", "газ", "вод", "оренд", "інтернет"}},
	{model.CategoryTransport, []string{"таксі", "метро", "автобус", "бензин", "проїзд", "парковк"}},
	{model.CategoryHealth, []string{"аптек", "лікар", "лік", "стоматолог", "вітамін"}},
	{model.CategorySports, []string{"спорт", "зал", "тренуванн", "басейн", "фітнес"}},
	{model.CategoryStationery, []string{"канц", "зошит", "ручк", "папір", "олівц"}},
	{model.CategoryEntertainment, []string{"кіно", "розваг", "концерт", "гра", "театр"}},
	{model.CategoryShopping, []string{"одяг", "взутт", "магазин", "покупк", "техніка"}},
}

// RuleBackend extracts expenses without any external call: the first
// numeric token becomes the amount and the keyword table picks the
// category. It keeps no state between calls.
type RuleBackend struct{}

// NewRuleBackend creates a rule-based extraction backend.
func NewRuleBackend() *RuleBackend {
	return &RuleBackend{}
}

// Extract never returns an error; it degrades to a nil amount and
// CategoryOther instead.
func (b *RuleBackend) Extract(_ context.Context, text string) (model.Draft, error) {
	draft := model.Draft{
		RawText:   text,
		Category:  matchCategory(text),
		CreatedAt: time.Now(),
	}

	if token := amountPattern.FindString(text); token != "" {
		if amount, err := ParseAmount(token); err == nil {
			draft.Amount = &amount
		}
	}

	return draft, nil
}

// matchCategory runs the ordered keyword table against lowercased text.
func matchCategory(text string) model.Category {
	lowered := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.category
			}
		}
	}
	return model.CategoryOther
}

// ParseAmount parses a positive decimal amount, accepting both `.` and
// `,` as the decimal separator.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, s)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %v", common.ErrInvalidAmount, amount)
	}
	return amount, nil
}
