package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mweidner/product-inventory-backend/pkg/db/models"
	"github.com/mweidner/product-inventory-backend/pkg/enums"
	pkgerrors "github.com/mweidner/product-inventory-backend/pkg/errors"
	"github.com/mweidner/product-inventory-backend/pkg/pagination"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Relationships").
		Preload("Relationships.ProductRef").
		Preload("Prices")
}

// FindByIdent loads a product with its edges and prices.
func (r *Repository) FindByIdent(ctx context.Context, ident string) (*models.Product, error) {
	var product models.Product
	if err := r.preloaded(ctx).First(&product, "ident = ?", ident).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIdents loads all products whose ident appears in idents. Missing
// idents are not an error here; callers compare counts when they care.
func (r *Repository) FindByIdents(ctx context.Context, idents []string) ([]*models.Product, error) {
	if len(idents) == 0 {
		return nil, nil
	}
	var rows []*models.Product
	err := r.preloaded(ctx).
		Where("ident IN ?", idents).
		Find(&rows).
		Error
	return rows, err
}

// SaveProduct upserts the product row without touching its associations.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit(clauseAssociations...).Save(product).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("save product (ident=%s)", product.Ident),
		)
	}
	return product, nil
}

var clauseAssociations = []string{"Relationships", "Prices"}

// ReplaceRelationships replaces all outgoing edges of the product.
func (r *Repository) ReplaceRelationships(ctx context.Context, productID uuid.UUID, rels []models.ProductRelationship) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductRelationship{}).Error; err != nil {
		return err
	}
	if len(rels) == 0 {
		return nil
	}
	for i := range rels {
		rels[i].ID = uuid.Nil
		rels[i].ProductID = productID
		rels[i].ProductRef = nil
	}
	return tx.Create(&rels).Error
}

// ReplacePrices replaces all prices of the product.
func (r *Repository) ReplacePrices(ctx context.Context, productID uuid.UUID, prices []models.ProductPrice) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductPrice{}).Error; err != nil {
		return err
	}
	if len(prices) == 0 {
		return nil
	}
	for i := range prices {
		prices[i].ID = uuid.Nil
		prices[i].ProductID = productID
	}
	return tx.Create(&prices).Error
}

// DeleteProduct removes the product row together with its own edges and
// prices. Inbound edges are the caller's concern.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductRelationship{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductPrice{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}

// NextContractSeries draws the next number from the contract series.
func (r *Repository) NextContractSeries(ctx context.Context) (int64, error) {
	series := models.ContractSeries{}
	if err := r.db.WithContext(ctx).Create(&series).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance contract series")
	}
	return series.ID, nil
}

// TerminateExpired flips products past their termination date to TERMINATED
// and returns how many rows changed.
func (r *Repository) TerminateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("termination_date < ? AND status IN ?", now, []enums.ProductStatus{
			enums.ProductStatusActive,
			enums.ProductStatusPendingTerminate,
		}).
		Update("status", enums.ProductStatusTerminated)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RelationshipRepository exposes edge-level persistence used by the cascade.
type RelationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository builds a relationship repository on the GORM DB.
func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// WithTx returns a relationship repository bound to the transaction.
func (r *RelationshipRepository) WithTx(tx *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: tx}
}

// DeleteByTypeAndRef removes every edge of the given type pointing at the
// referenced product, regardless of which product owns the edge.
func (r *RelationshipRepository) DeleteByTypeAndRef(ctx context.Context, relType enums.RelationshipType, refID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("relationship_type = ? AND product_ref_id = ?", relType, refID).
		Delete(&models.ProductRelationship{}).
		Error
}

// CountByRef returns how many edges point at the product.
func (r *RelationshipRepository) CountByRef(ctx context.Context, refID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductRelationship{}).
		Where("product_ref_id = ?", refID).
		Count(&count).
		Error
	return count, err
}

// ProductListFilters narrows a product search.
type ProductListFilters struct {
	Status   *enums.ProductStatus
	BaseType *enums.BaseType
	Name     string
	Tag      string
}

type productListQuery struct {
	Pagination pagination.Params
	Filters    ProductListFilters
}

// ProductListResult is one page of a product search.
type ProductListResult struct {
	Products   []models.Product
	NextCursor string
}

// ListProducts returns one keyset page of products matching the filters,
// newest first.
func (r *Repository) ListProducts(ctx context.Context, query productListQuery) (*ProductListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).Model(&models.Product{})
	if query.Filters.Status != nil {
		qb = qb.Where("status = ?", *query.Filters.Status)
	}
	if query.Filters.BaseType != nil {
		qb = qb.Where("base_type = ?", *query.Filters.BaseType)
	}
	if query.Filters.Name != "" {
		qb = qb.Where("name LIKE ?", "%"+query.Filters.Name+"%")
	}
	if query.Filters.Tag != "" {
		qb = qb.Where("? = ANY(tags)", query.Filters.Tag)
	}
	if cursor != nil {
		qb = qb.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	err = qb.
		Order("created_at DESC, id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	result := &ProductListResult{}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	result.Products = rows
	return result, nil
}
