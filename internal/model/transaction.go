package model

import "time"

// Transaction type names. The ids match the seeded transaction_type rows.
const (
	TrTypeBuy             = "Buy"
	TrTypeSell            = "Sell"
	TrTypeAdjustmentPlus  = "AdjustmentPlus"
	TrTypeAdjustmentMinus = "AdjustmentMinus"
)

// TrTypeIDs maps transaction type names to their reference-table ids.
var TrTypeIDs = map[string]int{
	TrTypeBuy:             1,
	TrTypeSell:            2,
	TrTypeAdjustmentPlus:  3,
	TrTypeAdjustmentMinus: 4,
}

// TrTypeNames maps reference-table ids back to transaction type names.
var TrTypeNames = map[int]string{
	1: TrTypeBuy,
	2: TrTypeSell,
	3: TrTypeAdjustmentPlus,
	4: TrTypeAdjustmentMinus,
}

// TransactionType is the reference table of transaction kinds.
type TransactionType struct {
	TrTypeID int    `gorm:"column:tr_type_id;primaryKey" json:"tr_type_id"`
	TrType   string `gorm:"column:tr_type;type:text;uniqueIndex;not null" json:"tr_type"`
}

func (TransactionType) TableName() string {
	return "transaction_type"
}

// Transaction records a single stock movement of a SKU, with the quantity
// before and after applied.
type Transaction struct {
	TrID        int       `gorm:"column:tr_id;primaryKey" json:"tr_id"`
	UserID      int       `gorm:"column:user_id;not null" json:"user_id" validate:"required"`
	SkuID       int       `gorm:"column:sku_id;not null" json:"sku_id" validate:"required"`
	TrTypeID    int       `gorm:"column:tr_type_id;not null" json:"tr_type_id" validate:"required"`
	TrQty       int       `gorm:"column:tr_qty;not null" json:"tr_qty" validate:"required,gt=0"`
	BeforeQty   int       `gorm:"column:before_qty;not null" json:"before_qty"`
	AfterQty    int       `gorm:"column:after_qty;not null" json:"after_qty"`
	TrTimestamp time.Time `gorm:"column:tr_timestamp;not null;default:CURRENT_TIMESTAMP" json:"tr_timestamp"`
	Description string    `gorm:"column:description;type:text" json:"description"`

	User *User            `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	SKU  *SKU             `gorm:"foreignKey:SkuID;references:SkuID" json:"sku,omitempty"`
	Type *TransactionType `gorm:"foreignKey:TrTypeID;references:TrTypeID" json:"type,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Equal reports whether two transactions carry the same column values.
func (t Transaction) Equal(other Transaction) bool {
	return t.TrID == other.TrID &&
		t.UserID == other.UserID &&
		t.SkuID == other.SkuID &&
		t.TrTypeID == other.TrTypeID &&
		t.TrQty == other.TrQty &&
		t.BeforeQty == other.BeforeQty &&
		t.AfterQty == other.AfterQty &&
		t.TrTimestamp.Equal(other.TrTimestamp) &&
		t.Description == other.Description
}

// ApplyTrType computes the after-quantity for a transaction. Buy and
// AdjustmentPlus add to the quantity, Sell and AdjustmentMinus subtract.
// The quantity must be positive and a subtraction must not drive the SKU
// quantity below zero.
func ApplyTrType(trTypeID, beforeQty, trQty int) (int, error) {
	if trQty <= 0 {
		return 0, ErrInvalidTrQty
	}
	switch TrTypeNames[trTypeID] {
	case TrTypeBuy, TrTypeAdjustmentPlus:
		return beforeQty + trQty, nil
	case TrTypeSell, TrTypeAdjustmentMinus:
		after := beforeQty - trQty
		if after < 0 {
			return 0, ErrInsufficientQty
		}
		return after, nil
	default:
		return 0, ErrInvalidTrType
	}
}
