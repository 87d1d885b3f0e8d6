package enums

// PrintSize is a paper size in inches, e.g. "8x10".
type PrintSize string

const (
	PrintSize8x10  PrintSize = "8x10"
	PrintSize11x14 PrintSize = "11x14"
	PrintSize16x20 PrintSize = "16x20"
	PrintSize20x24 PrintSize = "20x24"
	PrintSize24x36 PrintSize = "24x36"
)

var validPrintSizes = []PrintSize{
	PrintSize8x10,
	PrintSize11x14,
	PrintSize16x20,
	PrintSize20x24,
	PrintSize24x36,
}

func (s PrintSize) String() string {
	return string(s)
}

// IsValid reports whether the value is one of the sizes the studio prints.
func (s PrintSize) IsValid() bool {
	for _, candidate := range validPrintSizes {
		if candidate == s {
			return true
		}
	}
	return false
}
