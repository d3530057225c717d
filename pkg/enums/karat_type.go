package enums

import "fmt"

// KaratType identifies the purity of delivered gold.
type KaratType string

const (
	Karat18 KaratType = "18"
	Karat21 KaratType = "21"
)

var validKaratTypes = []KaratType{
	Karat18,
	Karat21,
}

// String implements fmt.Stringer.
func (k KaratType) String() string {
	return string(k)
}

// IsValid reports whether the value is known.
func (k KaratType) IsValid() bool {
	for _, candidate := range validKaratTypes {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseKaratType converts raw input into a KaratType.
func ParseKaratType(value string) (KaratType, error) {
	for _, candidate := range validKaratTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid karat type %q", value)
}
