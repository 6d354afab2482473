package errors

import "fmt"

// The constructors below build the business-rule violations the product
// inventory core surfaces. They are terminal: callers abort the enclosing
// operation and rely on the transaction boundary to roll back.

// ProductNotFound reports a single lookup miss.
func ProductNotFound(ident string) *Error {
	return New(CodeNotFound, "product not found").
		WithDetails(map[string]any{"ident": ident})
}

// ProductsNotFound reports a batch lookup or relationship-resolution miss,
// carrying the precise set of idents that could not be resolved.
func ProductsNotFound(missing []string) *Error {
	return New(CodeNotFound, "products not found").
		WithDetails(map[string]any{"missing_idents": missing})
}

// InvalidProductInitialStatus reports a creation attempt with a status
// other than CREATED.
func InvalidProductInitialStatus(status string) *Error {
	return New(CodeValidation, fmt.Sprintf("initial product status must be CREATED, got %s", status)).
		WithDetails(map[string]any{"status": status})
}

// InvalidProductDeleteStatus reports a deletion attempt on a product that
// is not TERMINATED.
func InvalidProductDeleteStatus(status string) *Error {
	return New(CodeStateConflict, fmt.Sprintf("product must be TERMINATED to be deleted, got %s", status)).
		WithDetails(map[string]any{"status": status})
}

// InvalidStatusTransition reports a disallowed state change, carrying both
// states for diagnostics.
func InvalidStatusTransition(previous, next string) *Error {
	return New(CodeStateConflict, fmt.Sprintf("status transition %s -> %s is not allowed", previous, next)).
		WithDetails(map[string]any{"previous": previous, "next": next})
}

// CyclicRelationshipDetected reports a bundle tree whose relationship edges
// reach the same product twice.
func CyclicRelationshipDetected(ident string) *Error {
	return New(CodeConflict, fmt.Sprintf("cyclic relationship detected at product %s", ident)).
		WithDetails(map[string]any{"ident": ident})
}
