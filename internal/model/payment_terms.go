package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTerms versioned commission/payout configuration (table payment_terms)
// Rows are never edited: a change inserts a new active row and deactivates the previous one.
type PaymentTerms struct {
	TermsID                  string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EnrollmentCommissionRate decimal.Decimal     `gorm:"type:numeric(5,2);not null"                     json:"enrollmentCommissionRate"`
	AttendanceCommissionRate decimal.Decimal     `gorm:"type:numeric(5,2);not null"                     json:"attendanceCommissionRate"`
	Currency                 string              `gorm:"type:varchar(3);not null;default:'KES'"         json:"currency"`
	PayoutFrequency          string              `gorm:"type:varchar(20);not null"                      json:"payoutFrequency"` // weekly | biweekly | monthly | quarterly
	PayoutDay                int                 `gorm:"type:smallint;not null"                         json:"payoutDay"`
	TaxRate                  decimal.NullDecimal `gorm:"type:numeric(5,2)"                              json:"taxRate"`
	MinimumPayoutAmount      decimal.NullDecimal `gorm:"type:numeric(12,2)"                             json:"minimumPayoutAmount"`
	IsActive                 bool                `gorm:"not null;default:false"                         json:"isActive"`
	EffectiveFrom            time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"effectiveFrom"`
	Notes                    string              `gorm:"type:text;not null;default:''"                  json:"notes"`
	CreatedBy                *string             `gorm:"type:uuid"                                      json:"createdBy,omitempty"`
	BaseModel
}

// TableName table name
func (PaymentTerms) TableName() string { return "payment_terms" }
