package models

import "gorm.io/gorm"

// MenuCategory groups menu items for the category/item dialogue flow.
type MenuCategory struct {
	gorm.Model
	RestaurantID uint   `json:"restaurant_id" gorm:"index"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
}

// MenuItem is a single orderable item. Price is optional: plenty of
// restaurants list "market price" items, so a missing price must not
// break the call.
type MenuItem struct {
	gorm.Model
	RestaurantID uint     `json:"restaurant_id" gorm:"index"`
	CategoryID   *uint    `json:"category_id" gorm:"index"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price"`
	IsSpecial    bool     `json:"is_special"`
	IsActive     bool     `json:"is_active" gorm:"default:true"`
}
