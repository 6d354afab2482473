package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mweidner/product-inventory-backend/pkg/enums"
)

// ProductRelationship is an outgoing edge owned by a product. The edge
// references another product in the same ownership tree; it never owns the
// referenced row.
type ProductRelationship struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ProductID        uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	RelationshipType enums.RelationshipType `gorm:"column:relationship_type;not null"`
	ProductRefID     uuid.UUID              `gorm:"column:product_ref_id;type:uuid;not null;index"`
	ProductRef       *Product               `gorm:"foreignKey:ProductRefID"`
}

// BeforeCreate assigns the row ID so the model works on drivers without a
// server-side uuid default.
func (r *ProductRelationship) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
