package model

// Category is a spending category from the fixed enumerated set.
type Category string

// The category set the bot recognizes. Free text that maps to nothing
// in this set falls back to CategoryOther.
const (
	CategoryGroceries     Category = "продукти"
	CategoryCafe          Category = "кафе"
	CategoryShopping      Category = "покупки"
	CategoryUtilities     Category = "ком послуги"
	CategorySports        Category = "спорт"
	CategoryStationery    Category = "канцтовари"
	CategoryTransport     Category = "транспорт"
	CategoryHealth        Category = "здоров'я"
	CategoryEntertainment Category = "розваги"
	CategoryOther         Category = "інше"
)

// Categories returns the full category enumeration in menu order.
func Categories() []Category {
	return []Category{
		CategoryGroceries,
		CategoryCafe,
		CategoryShopping,
		CategoryUtilities,
		CategorySports,
		CategoryStationery,
		CategoryTransport,
		CategoryHealth,
		CategoryEntertainment,
		CategoryOther,
	}
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a free-text label onto the enumeration,
// defaulting to CategoryOther when nothing matches.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.Valid() {
		return c
	}
	return CategoryOther
}
