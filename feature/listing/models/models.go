package models

import "time"

// Listing is a vehicle listing row.
type Listing struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Manufacturer string    `gorm:"size:64;index" json:"manufacturer"`
	Model        string    `gorm:"size:128;index" json:"model"`
	BodyStyle    string    `gorm:"size:32" json:"body_style"`
	Year         int       `gorm:"index" json:"year"`
	Price        float64   `json:"price"`
	Mileage      int64     `json:"mileage"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName fixes the table name regardless of pluralization settings.
func (Listing) TableName() string {
	return "listings"
}
