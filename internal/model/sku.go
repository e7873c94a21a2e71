package model

import "time"

// NoExpirationDate is the sentinel stored for SKUs without an expiration date.
var NoExpirationDate = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)

// SKU is a stock-keeping unit of an item (e.g. a package size or lot).
// RootSku links a sub-SKU to an aggregating SKU of the same item; 0 means
// the SKU is itself a root.
type SKU struct {
	SkuID          int       `gorm:"column:sku_id;primaryKey" json:"sku_id"`
	Active         bool      `gorm:"column:active;not null;default:true" json:"active"`
	RootSku        int       `gorm:"column:root_sku;not null;default:0" json:"root_sku"`
	SubName        string    `gorm:"column:sub_name;type:text;uniqueIndex:idx_skus_item_sub_exp" json:"sub_name"`
	BitCode        string    `gorm:"column:bit_code;type:text" json:"bit_code"`
	SkuQty         int       `gorm:"column:sku_qty;not null" json:"sku_qty"`
	MinQty         int       `gorm:"column:min_qty;not null;default:2" json:"min_qty"`
	ItemID         int       `gorm:"column:item_id;not null;uniqueIndex:idx_skus_item_sub_exp" json:"item_id" validate:"required"`
	ExpirationDate time.Time `gorm:"column:expiration_date;type:date;not null;uniqueIndex:idx_skus_item_sub_exp" json:"expiration_date"`
	Description    string    `gorm:"column:description;type:text" json:"description"`

	Item         *Item         `gorm:"foreignKey:ItemID;references:ItemID" json:"item,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:SkuID;references:SkuID" json:"transactions,omitempty"`
}

func (SKU) TableName() string {
	return "skus"
}

// Equal reports whether two SKUs carry the same column values.
func (s SKU) Equal(other SKU) bool {
	return s.SkuID == other.SkuID &&
		s.Active == other.Active &&
		s.RootSku == other.RootSku &&
		s.SubName == other.SubName &&
		s.BitCode == other.BitCode &&
		s.SkuQty == other.SkuQty &&
		s.MinQty == other.MinQty &&
		s.ItemID == other.ItemID &&
		s.ExpirationDate.Equal(other.ExpirationDate) &&
		s.Description == other.Description
}

// BelowMin reports whether the SKU has fallen under its minimum quantity.
func (s SKU) BelowMin() bool {
	return s.SkuQty < s.MinQty
}

// ValidRootSku reports whether rootSku is acceptable for a SKU of itemID:
// either 0 (a root) or an existing SKU of the same item.
func ValidRootSku(skus []SKU, rootSku, itemID int) bool {
	if rootSku == 0 {
		return true
	}
	for _, s := range skus {
		if s.SkuID == rootSku {
			return s.ItemID == itemID
		}
	}
	return false
}

// RootQtyCorrect checks the aggregation invariant for a root SKU: its
// recorded qty must equal the sum of its children's qtys. A SKU without
// children is trivially correct.
func RootQtyCorrect(skus []SKU, skuID, skuQty int) bool {
	sum := 0
	found := false
	for _, s := range skus {
		if s.RootSku == skuID {
			sum += s.SkuQty
			found = true
		}
	}
	if !found {
		return true
	}
	return skuQty == sum
}
