package models

import "time"

// Coupon is a promotional code known to the directory.
type Coupon struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Code   string `gorm:"type:text;not null;uniqueIndex"` // Normalized (uppercase) coupon code.
	Active bool   `gorm:"not null;default:true"`          // Whether the publisher still accepts the code.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
