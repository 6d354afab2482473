package enums

import "fmt"

// ProductStatus represents the lifecycle state of a catalog product.
type ProductStatus string

const (
	ProductStatusCreated          ProductStatus = "CREATED"
	ProductStatusActive           ProductStatus = "ACTIVE"
	ProductStatusAborted          ProductStatus = "ABORTED"
	ProductStatusTerminated       ProductStatus = "TERMINATED"
	ProductStatusPendingTerminate ProductStatus = "PENDINGTERMINATE"
)

var validProductStatuses = []ProductStatus{
	ProductStatusCreated,
	ProductStatusActive,
	ProductStatusAborted,
	ProductStatusTerminated,
	ProductStatusPendingTerminate,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

// ProductStatuses returns all known statuses in declaration order.
func ProductStatuses() []ProductStatus {
	statuses := make([]ProductStatus, len(validProductStatuses))
	copy(statuses, validProductStatuses)
	return statuses
}
