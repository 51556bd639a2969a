package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{name: "groceries", input: "продукти", want: CategoryGroceries},
		{name: "cafe", input: "кафе", want: CategoryCafe},
		{name: "utilities", input: "ком послуги", want: CategoryUtilities},
		{name: "health", input: "здоров'я", want: CategoryHealth},
		{name: "unknown defaults to other", input: "ракети", want: CategoryOther},
		{name: "empty defaults to other", input: "", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategory(tt.input))
		})
	}
}

func TestCategoriesAreValid(t *testing.T) {
	all := Categories()
	assert.Len(t, all, 10)
	for _, c := range all {
		assert.True(t, c.Valid(), "category %q", c)
	}
	assert.False(t, Category("ракети").Valid())
}
