package enums

import "fmt"

// PriceType categorizes a product price entry.
type PriceType string

const (
	// PriceTypeOTC is a one-time charge.
	PriceTypeOTC PriceType = "OTC"
	// PriceTypeMRC is a monthly recurring charge.
	PriceTypeMRC PriceType = "MRC"
)

var validPriceTypes = []PriceType{
	PriceTypeOTC,
	PriceTypeMRC,
}

// String implements fmt.Stringer.
func (p PriceType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceType.
func (p PriceType) IsValid() bool {
	for _, candidate := range validPriceTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceType converts raw input into a PriceType.
func ParsePriceType(value string) (PriceType, error) {
	for _, candidate := range validPriceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price type %q", value)
}
