package model

import "time"

// Admin back-office user (table admins)
type Admin struct {
	AdminID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'admin'"      json:"role"`
	AdminRole    string     `gorm:"type:varchar(20);not null;default:'admin'"      json:"adminRole"` // super_admin | admin
	IsActive     bool       `gorm:"not null"                                       json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	BaseModel
}

// TableName table name
func (Admin) TableName() string { return "admins" }
