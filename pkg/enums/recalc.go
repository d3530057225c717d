package enums

import "fmt"

// RecalcScope selects how much of a month a recalculation job covers.
type RecalcScope string

const (
	RecalcScopeSupplier RecalcScope = "supplier"
	RecalcScopeMonth    RecalcScope = "month"
)

var validRecalcScopes = []RecalcScope{
	RecalcScopeSupplier,
	RecalcScopeMonth,
}

// String implements fmt.Stringer.
func (r RecalcScope) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r RecalcScope) IsValid() bool {
	for _, candidate := range validRecalcScopes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecalcScope converts raw input into a RecalcScope.
func ParseRecalcScope(value string) (RecalcScope, error) {
	for _, candidate := range validRecalcScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recalc scope %q", value)
}

// RecalcJobStatus tracks a queued recalculation through the sweep loop.
type RecalcJobStatus string

const (
	RecalcJobStatusPending RecalcJobStatus = "pending"
	RecalcJobStatusDone    RecalcJobStatus = "done"
	RecalcJobStatusFailed  RecalcJobStatus = "failed"
)

// String implements fmt.Stringer.
func (r RecalcJobStatus) String() string {
	return string(r)
}
