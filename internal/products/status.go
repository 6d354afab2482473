package product

import (
	pkgerrors "github.com/mweidner/product-inventory-backend/pkg/errors"
	"github.com/mweidner/product-inventory-backend/pkg/enums"
)

// allowedTransitions lists, per current status, the statuses a product may
// move to. Staying on the same status is always allowed and is not listed.
var allowedTransitions = map[enums.ProductStatus][]enums.ProductStatus{
	enums.ProductStatusCreated: {
		enums.ProductStatusActive,
		enums.ProductStatusAborted,
	},
	enums.ProductStatusActive: {
		enums.ProductStatusTerminated,
		enums.ProductStatusPendingTerminate,
	},
	enums.ProductStatusAborted: {},
	enums.ProductStatusTerminated: {
		enums.ProductStatusActive,
	},
	enums.ProductStatusPendingTerminate: {
		enums.ProductStatusTerminated,
		enums.ProductStatusActive,
	},
}

// ValidateStatusTransition checks whether a product may move from previous to
// next. Self transitions are no-ops and always pass.
func ValidateStatusTransition(previous, next enums.ProductStatus) error {
	if previous == next {
		return nil
	}
	for _, candidate := range allowedTransitions[previous] {
		if candidate == next {
			return nil
		}
	}
	return pkgerrors.InvalidStatusTransition(previous.String(), next.String())
}

// initialStatus resolves the status a new product starts in. An empty status
// defaults to CREATED; anything other than CREATED is rejected.
func initialStatus(status enums.ProductStatus) (enums.ProductStatus, error) {
	if status == "" {
		return enums.ProductStatusCreated, nil
	}
	if status != enums.ProductStatusCreated {
		return "", pkgerrors.InvalidProductInitialStatus(status.String())
	}
	return status, nil
}
