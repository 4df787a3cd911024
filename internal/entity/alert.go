package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AlertRecord is one delivered (or attempted) notification, appended to the
// alert history log. Records are never mutated after creation.
type AlertRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Ticker    string         `gorm:"not null;index" json:"ticker"`
	Kind      string         `gorm:"not null" json:"kind"`
	Message   string         `gorm:"not null" json:"message"`
	Quote     datatypes.JSON `gorm:"type:jsonb" json:"quote,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (AlertRecord) TableName() string {
	return "alert_records"
}
