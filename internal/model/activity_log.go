package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog insert-only audit record of admin actions (table activity_logs)
type ActivityLog struct {
	LogID        string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AdminID      *string           `gorm:"type:uuid"                                      json:"adminId,omitempty"`
	Action       string            `gorm:"type:varchar(64);not null"                      json:"action"`
	ResourceType string            `gorm:"type:varchar(32);not null"                      json:"resourceType"`
	ResourceID   string            `gorm:"type:varchar(64);not null;default:''"           json:"resourceId"`
	Details      datatypes.JSONMap `gorm:"type:jsonb"                                     json:"details,omitempty"`
	Success      bool              `gorm:"not null"                                       json:"success"`
	ErrorMessage string            `gorm:"type:text;not null;default:''"                  json:"errorMessage,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"createdAt"`
}

// TableName table name
func (ActivityLog) TableName() string { return "activity_logs" }
