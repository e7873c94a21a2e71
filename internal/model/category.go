package model

// Category groups items (e.g. topicals, fluids, braces).
type Category struct {
	CategoryID   int    `gorm:"column:category_id;primaryKey" json:"category_id"`
	CategoryName string `gorm:"column:category_name;type:text;uniqueIndex;not null" json:"category_name" validate:"required"`

	Items []Item `gorm:"foreignKey:CategoryID;references:CategoryID" json:"items,omitempty"`
}

func (Category) TableName() string {
	return "category"
}

// Equal reports whether two categories carry the same column values.
// Relations are ignored.
func (c Category) Equal(other Category) bool {
	return c.CategoryID == other.CategoryID &&
		c.CategoryName == other.CategoryName
}
