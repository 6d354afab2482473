package product

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mweidner/product-inventory-backend/pkg/config"
	"github.com/mweidner/product-inventory-backend/pkg/db"
	"github.com/mweidner/product-inventory-backend/pkg/enums"
	pkgerrors "github.com/mweidner/product-inventory-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(
		NewRepository(conn),
		NewRelationshipRepository(conn),
		db.NewWithConn(conn),
		config.HrefConfig{BasePath: "https://inventory.test", ProductPath: "/productInventory/v1/product"},
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreate(t *testing.T, svc Service, input CreateProductInput) *ProductDTO {
	t.Helper()
	dto, err := svc.CreateProduct(context.Background(), input)
	if err != nil {
		t.Fatalf("create product %q: %v", input.Name, err)
	}
	return dto
}

func mustSetStatus(t *testing.T, svc Service, ident string, statuses ...enums.ProductStatus) *ProductDTO {
	t.Helper()
	var dto *ProductDTO
	var err error
	for i := range statuses {
		status := statuses[i]
		dto, err = svc.UpdateProduct(context.Background(), ident, UpdateProductInput{Status: &status})
		if err != nil {
			t.Fatalf("set status %s on %s: %v", status, ident, err)
		}
	}
	return dto
}

func relTypes(dto *ProductDTO) map[string][]string {
	byType := make(map[string][]string)
	for _, rel := range dto.Relationships {
		byType[rel.Type] = append(byType[rel.Type], rel.RefIdent)
	}
	return byType
}

func TestServiceCreateProduct(t *testing.T) {
	t.Run("defaultsAndContractNumber", func(t *testing.T) {
		svc := newTestService(t)
		dto := mustCreate(t, svc, CreateProductInput{Name: "Voice Plan", BaseType: enums.BaseTypeRoot})

		if dto.Status != enums.ProductStatusCreated.String() {
			t.Fatalf("expected status CREATED, got %s", dto.Status)
		}
		if dto.Ident == "" {
			t.Fatal("expected a generated ident")
		}
		if want := "https://inventory.test/productInventory/v1/product/" + dto.Ident; dto.Href != want {
			t.Fatalf("expected href %q, got %q", want, dto.Href)
		}
		if dto.ContractNumber == nil || *dto.ContractNumber != "GKP0000001" {
			t.Fatalf("expected contract number GKP0000001, got %v", dto.ContractNumber)
		}

		second := mustCreate(t, svc, CreateProductInput{Name: "Data Plan", BaseType: enums.BaseTypeRoot})
		if second.ContractNumber == nil || *second.ContractNumber != "GKP0000002" {
			t.Fatalf("expected contract number GKP0000002, got %v", second.ContractNumber)
		}
	})

	t.Run("nonRootGetsNoContractNumber", func(t *testing.T) {
		svc := newTestService(t)
		dto := mustCreate(t, svc, CreateProductInput{Name: "Addon", BaseType: enums.BaseTypeSimple})
		if dto.ContractNumber != nil {
			t.Fatalf("expected no contract number, got %v", *dto.ContractNumber)
		}
	})

	t.Run("rejectsNonCreatedInitialStatus", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.CreateProduct(context.Background(), CreateProductInput{
			Name:     "Bad",
			BaseType: enums.BaseTypeSimple,
			Status:   enums.ProductStatusActive,
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("rootReferencePropagatesDownTheTree", func(t *testing.T) {
		svc := newTestService(t)
		ctx := context.Background()

		leaf := mustCreate(t, svc, CreateProductInput{Name: "Leaf", BaseType: enums.BaseTypeBundled})
		mid := mustCreate(t, svc, CreateProductInput{
			Name:     "Mid",
			BaseType: enums.BaseTypeBundled,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: leaf.Ident},
			},
		})
		root := mustCreate(t, svc, CreateProductInput{
			Name:     "Root",
			BaseType: enums.BaseTypeRoot,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: mid.Ident},
			},
		})

		for _, ident := range []string{mid.Ident, leaf.Ident} {
			reloaded, err := svc.GetProduct(ctx, ident)
			if err != nil {
				t.Fatalf("reload %s: %v", ident, err)
			}
			roots := relTypes(reloaded)[enums.RelationshipTypeRoot.String()]
			if !reflect.DeepEqual(roots, []string{root.Ident}) {
				t.Fatalf("expected %s to carry one root edge to %s, got %v", ident, root.Ident, roots)
			}
		}
	})

	t.Run("unknownReferenceFails", func(t *testing.T) {
		svc := newTestService(t)
		existing := mustCreate(t, svc, CreateProductInput{Name: "A", BaseType: enums.BaseTypeBundled})

		_, err := svc.CreateProduct(context.Background(), CreateProductInput{
			Name:     "Root",
			BaseType: enums.BaseTypeRoot,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: existing.Ident},
				{Type: enums.RelationshipTypeBundled, RefIdent: "X"},
			},
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found error, got %v", err)
		}
		details, _ := typed.Details().(map[string]any)
		if missing, _ := details["missing_idents"].([]string); !reflect.DeepEqual(missing, []string{"X"}) {
			t.Fatalf("expected missing idents [X], got %v", details["missing_idents"])
		}
	})
}

func TestServiceUpdateProduct(t *testing.T) {
	t.Run("statusTransitions", func(t *testing.T) {
		svc := newTestService(t)
		dto := mustCreate(t, svc, CreateProductInput{Name: "Plan", BaseType: enums.BaseTypeSimple})

		updated := mustSetStatus(t, svc, dto.Ident, enums.ProductStatusActive)
		if updated.Status != enums.ProductStatusActive.String() {
			t.Fatalf("expected ACTIVE, got %s", updated.Status)
		}

		terminated := enums.ProductStatusTerminated
		if _, err := svc.UpdateProduct(context.Background(), dto.Ident, UpdateProductInput{Status: &terminated}); err != nil {
			t.Fatalf("ACTIVE -> TERMINATED should pass: %v", err)
		}

		aborted := enums.ProductStatusAborted
		_, err := svc.UpdateProduct(context.Background(), dto.Ident, UpdateProductInput{Status: &aborted})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for TERMINATED -> ABORTED, got %v", err)
		}
	})

	t.Run("emptyRelationshipSetClearsEdges", func(t *testing.T) {
		svc := newTestService(t)
		ctx := context.Background()

		child := mustCreate(t, svc, CreateProductInput{Name: "Child", BaseType: enums.BaseTypeBundled})
		owner := mustCreate(t, svc, CreateProductInput{
			Name:     "Owner",
			BaseType: enums.BaseTypeSimple,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: child.Ident},
			},
		})
		if len(owner.Relationships) != 1 {
			t.Fatalf("expected one edge after create, got %d", len(owner.Relationships))
		}

		cleared := []RelationshipInput{}
		updated, err := svc.UpdateProduct(ctx, owner.Ident, UpdateProductInput{Relationships: &cleared})
		if err != nil {
			t.Fatalf("clear edges: %v", err)
		}
		if len(updated.Relationships) != 0 {
			t.Fatalf("expected edges cleared, got %d", len(updated.Relationships))
		}
	})

	t.Run("unknownProductFails", func(t *testing.T) {
		svc := newTestService(t)
		name := "Renamed"
		_, err := svc.UpdateProduct(context.Background(), "missing", UpdateProductInput{Name: &name})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestServiceDeleteProduct(t *testing.T) {
	t.Run("requiresTerminatedStatus", func(t *testing.T) {
		svc := newTestService(t)
		dto := mustCreate(t, svc, CreateProductInput{Name: "Plan", BaseType: enums.BaseTypeSimple})

		err := svc.DeleteProduct(context.Background(), dto.Ident)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict, got %v", err)
		}
	})

	t.Run("cascadesOverBundledEdgesAndCleansInboundEdges", func(t *testing.T) {
		svc := newTestService(t)
		ctx := context.Background()

		leaf := mustCreate(t, svc, CreateProductInput{Name: "Leaf", BaseType: enums.BaseTypeBundled})
		mid := mustCreate(t, svc, CreateProductInput{
			Name:     "Mid",
			BaseType: enums.BaseTypeBundled,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: leaf.Ident},
			},
		})
		root := mustCreate(t, svc, CreateProductInput{
			Name:     "Root",
			BaseType: enums.BaseTypeRoot,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: mid.Ident},
			},
		})

		// outside observer holding a bundled edge into the doomed tree
		observer := mustCreate(t, svc, CreateProductInput{
			Name:     "Observer",
			BaseType: enums.BaseTypeSimple,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: mid.Ident},
			},
		})

		mustSetStatus(t, svc, root.Ident, enums.ProductStatusActive, enums.ProductStatusTerminated)

		if err := svc.DeleteProduct(ctx, root.Ident); err != nil {
			t.Fatalf("delete root: %v", err)
		}

		for _, ident := range []string{root.Ident, mid.Ident, leaf.Ident} {
			_, err := svc.GetProduct(ctx, ident)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				t.Fatalf("expected %s to be deleted, got %v", ident, err)
			}
		}

		reloaded, err := svc.GetProduct(ctx, observer.Ident)
		if err != nil {
			t.Fatalf("reload observer: %v", err)
		}
		if len(reloaded.Relationships) != 0 {
			t.Fatalf("expected the observer's edge into the tree to be cleaned up, got %v", reloaded.Relationships)
		}
	})

	t.Run("nonRootDeletesOnlyItself", func(t *testing.T) {
		svc := newTestService(t)
		ctx := context.Background()

		child := mustCreate(t, svc, CreateProductInput{Name: "Child", BaseType: enums.BaseTypeBundled})
		owner := mustCreate(t, svc, CreateProductInput{
			Name:     "Owner",
			BaseType: enums.BaseTypeSimple,
			Relationships: []RelationshipInput{
				{Type: enums.RelationshipTypeBundled, RefIdent: child.Ident},
			},
		})

		mustSetStatus(t, svc, child.Ident, enums.ProductStatusActive, enums.ProductStatusTerminated)
		if err := svc.DeleteProduct(ctx, child.Ident); err != nil {
			t.Fatalf("delete child: %v", err)
		}

		reloaded, err := svc.GetProduct(ctx, owner.Ident)
		if err != nil {
			t.Fatalf("reload owner: %v", err)
		}
		if len(reloaded.Relationships) != 0 {
			t.Fatalf("expected the owner's dangling edge removed, got %v", reloaded.Relationships)
		}
	})
}

func TestServiceExportProducts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, CreateProductInput{Name: "Voice Plan", BaseType: enums.BaseTypeRoot})
	second := mustCreate(t, svc, CreateProductInput{Name: "Data Plan", BaseType: enums.BaseTypeRoot})

	out, err := svc.ExportProducts(ctx, []string{second.Ident, first.Ident})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Data Plan,GKP0000002,") {
		t.Fatalf("expected first row in request order, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Voice Plan,GKP0000001,") {
		t.Fatalf("expected second row in request order, got %q", lines[2])
	}

	_, err = svc.ExportProducts(ctx, []string{first.Ident, "B"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown export id, got %v", err)
	}
	details, _ := typed.Details().(map[string]any)
	if missing, _ := details["missing_idents"].([]string); !reflect.DeepEqual(missing, []string{"B"}) {
		t.Fatalf("expected missing idents [B], got %v", details["missing_idents"])
	}
}

func TestServiceTerminateExpired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	dto := mustCreate(t, svc, CreateProductInput{Name: "Expiring", BaseType: enums.BaseTypeSimple})
	mustSetStatus(t, svc, dto.Ident, enums.ProductStatusActive)

	past := time.Now().Add(-time.Hour)
	if _, err := svc.UpdateProduct(ctx, dto.Ident, UpdateProductInput{TerminationDate: &past}); err != nil {
		t.Fatalf("set termination date: %v", err)
	}

	count, err := svc.TerminateExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("terminate expired: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one product terminated, got %d", count)
	}

	reloaded, err := svc.GetProduct(ctx, dto.Ident)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.ProductStatusTerminated.String() {
		t.Fatalf("expected TERMINATED, got %s", reloaded.Status)
	}
}
