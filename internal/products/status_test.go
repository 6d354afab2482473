package product

import (
	"testing"

	"github.com/mweidner/product-inventory-backend/pkg/enums"
	pkgerrors "github.com/mweidner/product-inventory-backend/pkg/errors"
)

func TestValidateStatusTransition(t *testing.T) {
	allowed := map[enums.ProductStatus][]enums.ProductStatus{
		enums.ProductStatusCreated:          {enums.ProductStatusActive, enums.ProductStatusAborted},
		enums.ProductStatusActive:           {enums.ProductStatusTerminated, enums.ProductStatusPendingTerminate},
		enums.ProductStatusAborted:          {},
		enums.ProductStatusTerminated:       {enums.ProductStatusActive},
		enums.ProductStatusPendingTerminate: {enums.ProductStatusTerminated, enums.ProductStatusActive},
	}

	for _, previous := range enums.ProductStatuses() {
		for _, next := range enums.ProductStatuses() {
			expectOK := previous == next
			for _, candidate := range allowed[previous] {
				if candidate == next {
					expectOK = true
				}
			}

			err := ValidateStatusTransition(previous, next)
			if expectOK && err != nil {
				t.Errorf("%s -> %s: expected transition to pass, got %v", previous, next, err)
			}
			if !expectOK {
				if err == nil {
					t.Errorf("%s -> %s: expected transition to fail", previous, next)
					continue
				}
				typed := pkgerrors.As(err)
				if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
					t.Errorf("%s -> %s: expected state conflict, got %v", previous, next, err)
				}
			}
		}
	}
}

func TestInitialStatus(t *testing.T) {
	t.Run("defaultsToCreated", func(t *testing.T) {
		status, err := initialStatus("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != enums.ProductStatusCreated {
			t.Fatalf("expected CREATED, got %s", status)
		}
	})

	t.Run("acceptsCreated", func(t *testing.T) {
		status, err := initialStatus(enums.ProductStatusCreated)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != enums.ProductStatusCreated {
			t.Fatalf("expected CREATED, got %s", status)
		}
	})

	t.Run("rejectsOtherStatuses", func(t *testing.T) {
		for _, status := range []enums.ProductStatus{
			enums.ProductStatusActive,
			enums.ProductStatusAborted,
			enums.ProductStatusTerminated,
			enums.ProductStatusPendingTerminate,
		} {
			_, err := initialStatus(status)
			if err == nil {
				t.Fatalf("expected %s to be rejected as initial status", status)
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error for %s, got %v", status, err)
			}
		}
	})
}
