package db

import "time"

type MemoryItemModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Text      string    `gorm:"not null"`
	Tags      []byte    `gorm:"type:jsonb;not null"`
	Scope     string    `gorm:"not null"`
	Consent   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index;not null"`
	ExpiresAt *time.Time
	ReceiptID string `gorm:"type:uuid;not null"`
	Revoked   bool   `gorm:"index;not null;default:false"`
}

func (MemoryItemModel) TableName() string {
	return "memory_items"
}
