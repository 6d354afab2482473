package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mweidner/product-inventory-backend/pkg/enums"
)

// Product represents a catalog product in the inventory. The ident is the
// externally visible identifier; the row ID stays internal.
type Product struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Ident           string                `gorm:"column:ident;uniqueIndex;not null"`
	Name            string                `gorm:"column:name;not null"`
	Description     *string               `gorm:"column:description"`
	Status          enums.ProductStatus   `gorm:"column:status;not null"`
	BaseType        enums.BaseType        `gorm:"column:base_type;not null"`
	ContractNumber  *string               `gorm:"column:contract_number"`
	Href            string                `gorm:"column:href"`
	Tags            pq.StringArray        `gorm:"column:tags;type:text[]"`
	StartDate       *time.Time            `gorm:"column:start_date"`
	TerminationDate *time.Time            `gorm:"column:termination_date"`
	Relationships   []ProductRelationship `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Prices          []ProductPrice        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRoot reports whether the product is the top of an ownership tree.
func (p *Product) IsRoot() bool {
	return p.BaseType == enums.BaseTypeRoot
}

// BeforeCreate assigns the row ID so the model works on drivers without a
// server-side uuid default.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
