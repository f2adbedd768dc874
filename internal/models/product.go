package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringSlice is an ordered list of strings stored as a single JSON column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		s = StringSlice{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string slice: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for string slice", value)
	}
	return json.Unmarshal(b, s)
}

// Product represents a catalog item.
//
// Deletes are permanent, so the model carries explicit timestamps instead of
// embedding gorm.Model (which would bring soft-delete semantics along).
type Product struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string      `json:"name" validate:"required"`
	Category  string      `json:"category" validate:"required"`
	Brand     string      `json:"brand" validate:"required"`
	Price     float64     `json:"price" validate:"gte=0"`
	InStock   bool        `json:"inStock"`
	Features  StringSlice `json:"features" gorm:"type:text"`
	Rating    float64     `json:"rating" validate:"gte=0,lte=5"`
	CreatedAt time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ProductPatch holds the updatable fields of a product. A nil field means
// "leave unchanged"; a non-nil field overwrites the stored value.
type ProductPatch struct {
	Name     *string     `json:"name"`
	Category *string     `json:"category"`
	Brand    *string     `json:"brand"`
	Price    *float64    `json:"price"`
	InStock  *bool       `json:"inStock"`
	Features StringSlice `json:"features"`
	Rating   *float64    `json:"rating"`
}

// Apply merges the patch onto a copy of the given product and returns it.
func (p ProductPatch) Apply(base Product) Product {
	if p.Name != nil {
		base.Name = *p.Name
	}
	if p.Category != nil {
		base.Category = *p.Category
	}
	if p.Brand != nil {
		base.Brand = *p.Brand
	}
	if p.Price != nil {
		base.Price = *p.Price
	}
	if p.InStock != nil {
		base.InStock = *p.InStock
	}
	if p.Features != nil {
		base.Features = p.Features
	}
	if p.Rating != nil {
		base.Rating = *p.Rating
	}
	return base
}
