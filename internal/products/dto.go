package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mweidner/product-inventory-backend/pkg/db/models"
)

// ProductDTO is the external representation of a product.
type ProductDTO struct {
	Ident           string            `json:"id"`
	Href            string            `json:"href"`
	Name            string            `json:"name"`
	Description     *string           `json:"description,omitempty"`
	Status          string            `json:"status"`
	BaseType        string            `json:"baseType"`
	ContractNumber  *string           `json:"contractNumber,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	StartDate       *time.Time        `json:"startDate,omitempty"`
	TerminationDate *time.Time        `json:"terminationDate,omitempty"`
	Relationships   []RelationshipDTO `json:"referencedProducts,omitempty"`
	Prices          []PriceDTO        `json:"productPrices,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// RelationshipDTO is an outgoing edge rendered as a type plus the referenced
// product's ident.
type RelationshipDTO struct {
	Type     string `json:"relationshipType"`
	RefIdent string `json:"id"`
}

// PriceDTO is a price entry on a product.
type PriceDTO struct {
	Name                  string           `json:"name,omitempty"`
	PriceType             string           `json:"priceType"`
	AmountValue           *decimal.Decimal `json:"value,omitempty"`
	AmountUnit            *string          `json:"unit,omitempty"`
	RecurringChargePeriod *string          `json:"recurringChargePeriod,omitempty"`
}

// NewProductDTO maps the persistence model to its external shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		Ident:           product.Ident,
		Href:            product.Href,
		Name:            product.Name,
		Description:     product.Description,
		Status:          product.Status.String(),
		BaseType:        product.BaseType.String(),
		ContractNumber:  product.ContractNumber,
		Tags:            product.Tags,
		StartDate:       product.StartDate,
		TerminationDate: product.TerminationDate,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
	for _, rel := range product.Relationships {
		dto.Relationships = append(dto.Relationships, RelationshipDTO{
			Type:     rel.RelationshipType.String(),
			RefIdent: refIdent(rel),
		})
	}
	for _, price := range product.Prices {
		dto.Prices = append(dto.Prices, PriceDTO{
			Name:                  price.Name,
			PriceType:             price.PriceType.String(),
			AmountValue:           price.AmountValue,
			AmountUnit:            price.AmountUnit,
			RecurringChargePeriod: price.RecurringChargePeriod,
		})
	}
	return dto
}

// ProductSummaryDTO is the list-page shape of a product.
type ProductSummaryDTO struct {
	Ident          string     `json:"id"`
	Href           string     `json:"href"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	BaseType       string     `json:"baseType"`
	ContractNumber *string    `json:"contractNumber,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ProductListDTO is one page of search results.
type ProductListDTO struct {
	Products   []ProductSummaryDTO `json:"products"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

func newProductListDTO(result *ProductListResult) *ProductListDTO {
	dto := &ProductListDTO{
		Products:   make([]ProductSummaryDTO, 0, len(result.Products)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Products {
		p := &result.Products[i]
		dto.Products = append(dto.Products, ProductSummaryDTO{
			Ident:          p.Ident,
			Href:           p.Href,
			Name:           p.Name,
			Status:         p.Status.String(),
			BaseType:       p.BaseType.String(),
			ContractNumber: p.ContractNumber,
			StartDate:      p.StartDate,
			CreatedAt:      p.CreatedAt,
		})
	}
	return dto
}
