package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mweidner/product-inventory-backend/pkg/config"
	"github.com/mweidner/product-inventory-backend/pkg/db"
	"github.com/mweidner/product-inventory-backend/pkg/db/models"
	"github.com/mweidner/product-inventory-backend/pkg/enums"
	pkgerrors "github.com/mweidner/product-inventory-backend/pkg/errors"
	"github.com/mweidner/product-inventory-backend/pkg/pagination"
)

const contractNumberFormat = "GKP%07d"

// Service exposes product inventory operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, ident string, input UpdateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, ident string) (*ProductDTO, error)
	GetProducts(ctx context.Context, idents []string) ([]*ProductDTO, error)
	DeleteProduct(ctx context.Context, ident string) error
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListDTO, error)
	ExportProducts(ctx context.Context, idents []string) ([]byte, error)
	TerminateExpired(ctx context.Context, now time.Time) (int64, error)
}

// RelationshipInput references another product by ident.
type RelationshipInput struct {
	Type     enums.RelationshipType
	RefIdent string
}

// PriceInput holds one validated price entry.
type PriceInput struct {
	Name                  string
	PriceType             enums.PriceType
	AmountValue           *decimal.Decimal
	AmountUnit            *string
	RecurringChargePeriod *string
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	Description     *string
	Status          enums.ProductStatus
	BaseType        enums.BaseType
	Tags            []string
	StartDate       *time.Time
	TerminationDate *time.Time
	Relationships   []RelationshipInput
	Prices          []PriceInput
}

// UpdateProductInput holds optional mutation values for a product. A nil
// Relationships slice leaves the edges alone; an empty one clears them.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	Status          *enums.ProductStatus
	Tags            *[]string
	StartDate       *time.Time
	TerminationDate *time.Time
	Relationships   *[]RelationshipInput
	Prices          *[]PriceInput
}

// ListProductsInput narrows and pages a product search.
type ListProductsInput struct {
	Pagination pagination.Params
	Status     *enums.ProductStatus
	BaseType   *enums.BaseType
	Name       string
	Tag        string
}

// service implements the product service.
type service struct {
	repo     *Repository
	relRepo  *RelationshipRepository
	dbClient *db.Client
	href     config.HrefConfig
}

// NewService constructs a product service instance.
func NewService(repo *Repository, relRepo *RelationshipRepository, dbClient *db.Client, href config.HrefConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if relRepo == nil {
		return nil, fmt.Errorf("relationship repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		relRepo:  relRepo,
		dbClient: dbClient,
		href:     href,
	}, nil
}

func (s *service) hrefFor(ident string) string {
	return s.href.BasePath + s.href.ProductPath + "/" + ident
}

// CreateProduct inserts a new product, resolving its edges against the
// already stored products they reference. Root products draw a contract
// number and push a root edge down their tree.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	status, err := initialStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if !input.BaseType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid base type %q", input.BaseType))
	}

	referenced, err := s.loadReferenced(ctx, relationshipIdents(input.Relationships))
	if err != nil {
		return nil, err
	}

	ident := uuid.NewString()
	product := &models.Product{
		ID:              uuid.New(),
		Ident:           ident,
		Name:            input.Name,
		Description:     input.Description,
		Status:          status,
		BaseType:        input.BaseType,
		Href:            s.hrefFor(ident),
		Tags:            input.Tags,
		StartDate:       input.StartDate,
		TerminationDate: input.TerminationDate,
		Relationships:   relationshipStubs(input.Relationships),
		Prices:          priceRows(input.Prices),
	}

	if err := s.storeProduct(ctx, product, referenced); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, ident)
}

// UpdateProduct applies a partial update. Status changes go through the
// transition rules; touching the relationship set reruns resolution and root
// propagation over the tree.
func (s *service) UpdateProduct(ctx context.Context, ident string, input UpdateProductInput) (*ProductDTO, error) {
	current, err := s.repo.FindByIdent(ctx, ident)
	if err != nil {
		return nil, notFoundOr(err, ident)
	}

	if input.Status != nil {
		next := *input.Status
		if !next.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", next))
		}
		if err := ValidateStatusTransition(current.Status, next); err != nil {
			return nil, err
		}
		current.Status = next
	}
	if input.Name != nil {
		current.Name = *input.Name
	}
	if input.Description != nil {
		current.Description = input.Description
	}
	if input.Tags != nil {
		current.Tags = *input.Tags
	}
	if input.StartDate != nil {
		current.StartDate = input.StartDate
	}
	if input.TerminationDate != nil {
		current.TerminationDate = input.TerminationDate
	}
	if input.Prices != nil {
		current.Prices = priceRows(*input.Prices)
	}

	if input.Relationships == nil {
		if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if _, err := txRepo.SaveProduct(ctx, current); err != nil {
				return err
			}
			if input.Prices == nil {
				return nil
			}
			return txRepo.ReplacePrices(ctx, current.ID, current.Prices)
		}); err != nil {
			return nil, wrapDependency(err, "update product")
		}
		return s.GetProduct(ctx, ident)
	}

	referenced, err := s.loadReferenced(ctx, relationshipIdents(*input.Relationships))
	if err != nil {
		return nil, err
	}
	current.Relationships = relationshipStubs(*input.Relationships)
	for i := range current.Relationships {
		current.Relationships[i].ProductID = current.ID
	}
	if err := s.storeProduct(ctx, current, referenced); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, ident)
}

// GetProduct loads a single product by ident.
func (s *service) GetProduct(ctx context.Context, ident string) (*ProductDTO, error) {
	product, err := s.repo.FindByIdent(ctx, ident)
	if err != nil {
		return nil, notFoundOr(err, ident)
	}
	return NewProductDTO(product), nil
}

// GetProducts loads all requested products; every ident must exist.
func (s *service) GetProducts(ctx context.Context, idents []string) ([]*ProductDTO, error) {
	products, err := s.loadAll(ctx, idents)
	if err != nil {
		return nil, err
	}
	dtos := make([]*ProductDTO, 0, len(products))
	for _, product := range products {
		dtos = append(dtos, NewProductDTO(product))
	}
	return dtos, nil
}

// DeleteProduct removes a TERMINATED product. Root products take their whole
// bundle tree with them, children before parents, and every deleted non-root
// product first loses the bundled edges still pointing at it.
func (s *service) DeleteProduct(ctx context.Context, ident string) error {
	product, err := s.repo.FindByIdent(ctx, ident)
	if err != nil {
		return notFoundOr(err, ident)
	}
	if _, err := s.hydrateGraph(ctx, product); err != nil {
		return err
	}
	plan, err := buildDeletePlan(product)
	if err != nil {
		return err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txRelRepo := s.relRepo.WithTx(tx)
		for _, node := range plan.products {
			if !node.IsRoot() {
				if err := txRelRepo.DeleteByTypeAndRef(ctx, enums.RelationshipTypeBundled, node.ID); err != nil {
					return err
				}
			}
			if err := txRepo.DeleteProduct(ctx, node.ID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return wrapDependency(err, "delete product")
	}
	return nil
}

// ListProducts returns one page of search results.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListDTO, error) {
	result, err := s.repo.ListProducts(ctx, productListQuery{
		Pagination: input.Pagination,
		Filters: ProductListFilters{
			Status:   input.Status,
			BaseType: input.BaseType,
			Name:     input.Name,
			Tag:      input.Tag,
		},
	})
	if err != nil {
		return nil, wrapDependency(err, "list products")
	}
	return newProductListDTO(result), nil
}

// ExportProducts renders the requested products as CSV, rows in request
// order. Every ident must exist.
func (s *service) ExportProducts(ctx context.Context, idents []string) ([]byte, error) {
	products, err := s.loadAll(ctx, idents)
	if err != nil {
		return nil, err
	}
	return ExportCSV(products), nil
}

// TerminateExpired moves products whose termination date lies before now to
// TERMINATED and reports how many changed.
func (s *service) TerminateExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.TerminateExpired(ctx, now)
	if err != nil {
		return 0, wrapDependency(err, "terminate expired products")
	}
	return count, nil
}

// storeProduct is the shared write path: resolve edges against the loaded
// references, propagate the root edge when storing a root, then persist the
// product and every tree node whose edges changed in one transaction.
func (s *service) storeProduct(ctx context.Context, product *models.Product, referenced []*models.Product) error {
	if err := resolveRelationships(product, referenced); err != nil {
		return err
	}

	var tree []*models.Product
	if product.IsRoot() {
		var err error
		if tree, err = s.hydrateGraph(ctx, product); err != nil {
			return err
		}
		if err := propagateRootReference(product); err != nil {
			return err
		}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if product.IsRoot() && product.ContractNumber == nil {
			series, err := txRepo.NextContractSeries(ctx)
			if err != nil {
				return err
			}
			contractNumber := fmt.Sprintf(contractNumberFormat, series)
			product.ContractNumber = &contractNumber
		}
		if _, err := txRepo.SaveProduct(ctx, product); err != nil {
			return err
		}
		if err := txRepo.ReplacePrices(ctx, product.ID, product.Prices); err != nil {
			return err
		}
		if err := txRepo.ReplaceRelationships(ctx, product.ID, product.Relationships); err != nil {
			return err
		}
		for _, node := range tree {
			if err := txRepo.ReplaceRelationships(ctx, node.ID, node.Relationships); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return wrapDependency(err, "store product")
	}
	return nil
}

// loadReferenced resolves the distinct referenced idents into stored
// products. Any ident without a stored product fails the call.
func (s *service) loadReferenced(ctx context.Context, idents []string) ([]*models.Product, error) {
	if len(idents) == 0 {
		return nil, nil
	}
	return s.loadAll(ctx, idents)
}

func (s *service) loadAll(ctx context.Context, idents []string) ([]*models.Product, error) {
	rows, err := s.repo.FindByIdents(ctx, idents)
	if err != nil {
		return nil, wrapDependency(err, "load products")
	}
	byIdent := make(map[string]*models.Product, len(rows))
	for _, row := range rows {
		byIdent[row.Ident] = row
	}
	var missing []string
	ordered := make([]*models.Product, 0, len(idents))
	for _, ident := range idents {
		product, ok := byIdent[ident]
		if !ok {
			missing = append(missing, ident)
			continue
		}
		ordered = append(ordered, product)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, pkgerrors.ProductsNotFound(missing)
	}
	return ordered, nil
}

// hydrateGraph walks the edges below product and fully loads every reachable
// node, rewiring edges so each ident maps to exactly one in-memory product.
// Root edges are never followed. Returns the loaded nodes below the product.
func (s *service) hydrateGraph(ctx context.Context, product *models.Product) ([]*models.Product, error) {
	loaded := map[string]*models.Product{product.Ident: product}
	var tree []*models.Product

	queue := []*models.Product{product}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for i := range node.Relationships {
			rel := &node.Relationships[i]
			ident := refIdent(*rel)
			if rel.RelationshipType == enums.RelationshipTypeRoot || ident == "" {
				continue
			}
			if known, ok := loaded[ident]; ok {
				rel.ProductRef = known
				continue
			}
			child, err := s.repo.FindByIdent(ctx, ident)
			if err != nil {
				return nil, notFoundOr(err, ident)
			}
			loaded[ident] = child
			rel.ProductRef = child
			tree = append(tree, child)
			queue = append(queue, child)
		}
	}
	return tree, nil
}

func relationshipIdents(rels []RelationshipInput) []string {
	seen := make(map[string]struct{}, len(rels))
	var idents []string
	for _, rel := range rels {
		if _, ok := seen[rel.RefIdent]; ok {
			continue
		}
		seen[rel.RefIdent] = struct{}{}
		idents = append(idents, rel.RefIdent)
	}
	return idents
}

// relationshipStubs turns inputs into edges carrying only the referenced
// ident; resolution binds them to stored rows.
func relationshipStubs(rels []RelationshipInput) []models.ProductRelationship {
	var rows []models.ProductRelationship
	for _, rel := range rels {
		rows = append(rows, models.ProductRelationship{
			RelationshipType: rel.Type,
			ProductRef:       &models.Product{Ident: rel.RefIdent},
		})
	}
	return rows
}

func priceRows(prices []PriceInput) []models.ProductPrice {
	var rows []models.ProductPrice
	for _, price := range prices {
		rows = append(rows, models.ProductPrice{
			Name:                  price.Name,
			PriceType:             price.PriceType,
			AmountValue:           price.AmountValue,
			AmountUnit:            price.AmountUnit,
			RecurringChargePeriod: price.RecurringChargePeriod,
		})
	}
	return rows
}

func notFoundOr(err error, ident string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.ProductNotFound(ident)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
}

func wrapDependency(err error, message string) error {
	if appErr := pkgerrors.As(err); appErr != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
