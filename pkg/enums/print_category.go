package enums

import "fmt"

// PrintCategory groups prints the same way the portfolio sections do.
type PrintCategory string

const (
	PrintCategoryLandscapes   PrintCategory = "landscapes"
	PrintCategoryFood         PrintCategory = "food"
	PrintCategoryPortraits    PrintCategory = "portraits"
	PrintCategoryArchitecture PrintCategory = "architecture"
)

var validPrintCategories = []PrintCategory{
	PrintCategoryLandscapes,
	PrintCategoryFood,
	PrintCategoryPortraits,
	PrintCategoryArchitecture,
}

// String implements fmt.Stringer.
func (c PrintCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known PrintCategory.
func (c PrintCategory) IsValid() bool {
	for _, candidate := range validPrintCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParsePrintCategory converts raw input into a PrintCategory.
func ParsePrintCategory(value string) (PrintCategory, error) {
	for _, candidate := range validPrintCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid print category %q", value)
}
