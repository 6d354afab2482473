package models

// ContractSeries rows exist only to hand out monotonic series values for
// contract numbers: inserting a row yields the next value as its primary
// key. Portable across postgres and the sqlite test driver.
type ContractSeries struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
}

// TableName keeps the singular series name.
func (ContractSeries) TableName() string {
	return "contract_series"
}
