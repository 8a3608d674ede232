package models

import (
	"time"

	"github.com/google/uuid"
)

// QuoteLineItem persists one cart entry of a submitted quote request. Position
// preserves the display order computed at submission time.
type QuoteLineItem struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	QuoteRequestID     uuid.UUID `gorm:"column:quote_request_id;type:uuid;not null;index"`
	Title              string    `gorm:"column:title;not null"`
	Description        string    `gorm:"column:description"`
	Qty                int       `gorm:"column:qty;not null"`
	IsSparePart        bool      `gorm:"column:is_spare_part;not null;default:false"`
	ParentProductTitle string    `gorm:"column:parent_product_title"`
	ParentProductSlug  string    `gorm:"column:parent_product_slug"`
	ProductSlug        string    `gorm:"column:product_slug"`
	ProductSizeRange   string    `gorm:"column:product_size_range"`
	Position           int       `gorm:"column:position;not null;default:0"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}
