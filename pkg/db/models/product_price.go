package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mweidner/product-inventory-backend/pkg/enums"
)

// ProductPrice is a charge attached to a product. AmountValue and
// AmountUnit are nullable; the CSV export renders whichever parts exist.
type ProductPrice struct {
	ID                    uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProductID             uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Name                  string           `gorm:"column:name"`
	PriceType             enums.PriceType  `gorm:"column:price_type;not null"`
	AmountValue           *decimal.Decimal `gorm:"column:amount_value;type:numeric(12,2)"`
	AmountUnit            *string          `gorm:"column:amount_unit"`
	RecurringChargePeriod *string          `gorm:"column:recurring_charge_period"`
}

// BeforeCreate assigns the row ID so the model works on drivers without a
// server-side uuid default.
func (p *ProductPrice) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
