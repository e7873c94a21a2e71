package model

// Item is a product line belonging to a category. Individual stock units
// are tracked per SKU, not per item.
type Item struct {
	ItemID      int    `gorm:"column:item_id;primaryKey" json:"item_id"`
	Active      bool   `gorm:"column:active;not null;default:true" json:"active"`
	ItemName    string `gorm:"column:item_name;type:text;uniqueIndex;not null" json:"item_name" validate:"required"`
	CategoryID  int    `gorm:"column:category_id;not null" json:"category_id" validate:"required"`
	Description string `gorm:"column:description;type:text" json:"description"`

	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID" json:"category,omitempty"`
	SKUs     []SKU     `gorm:"foreignKey:ItemID;references:ItemID" json:"skus,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

// Equal reports whether two items carry the same column values.
func (i Item) Equal(other Item) bool {
	return i.ItemID == other.ItemID &&
		i.Active == other.Active &&
		i.ItemName == other.ItemName &&
		i.CategoryID == other.CategoryID &&
		i.Description == other.Description
}
