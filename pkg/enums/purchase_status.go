package enums

import "fmt"

// PurchaseStatus tracks the settlement lifecycle of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusPending PurchaseStatus = "Pending"
	PurchaseStatusPartial PurchaseStatus = "Partial"
	PurchaseStatusPaid    PurchaseStatus = "Paid"
	PurchaseStatusOverdue PurchaseStatus = "Overdue"
)

var validPurchaseStatuses = []PurchaseStatus{
	PurchaseStatusPending,
	PurchaseStatusPartial,
	PurchaseStatusPaid,
	PurchaseStatusOverdue,
}

// String implements fmt.Stringer.
func (p PurchaseStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PurchaseStatus) IsValid() bool {
	for _, candidate := range validPurchaseStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaseStatus converts raw input into a PurchaseStatus.
func ParsePurchaseStatus(value string) (PurchaseStatus, error) {
	for _, candidate := range validPurchaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase status %q", value)
}
