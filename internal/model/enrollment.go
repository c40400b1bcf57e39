package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Enrollment paid commitment derived from a lead (table enrollments)
type Enrollment struct {
	EnrollmentID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SubmissionID   string          `gorm:"type:uuid;not null;uniqueIndex"                 json:"submissionId"`
	Status         string          `gorm:"type:varchar(20);not null;default:'inquiry'"    json:"status"`        // inquiry | enrolled | completed | cancelled | no_show
	PaymentStatus  string          `gorm:"type:varchar(20);not null;default:'unpaid'"     json:"paymentStatus"` // unpaid | partial | full | refunded
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"          json:"totalAmount"`
	PaidAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"          json:"paidAmount"`
	PendingAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"          json:"pendingAmount"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'KES'"         json:"currency"`
	WorkshopName   string          `gorm:"type:varchar(200);not null;default:''"          json:"workshopName"`
	EnrollmentDate *time.Time      `json:"enrollmentDate,omitempty"`
	CompletionDate *time.Time      `json:"completionDate,omitempty"`
	RefundedAt     *time.Time      `json:"refundedAt,omitempty"`
	Notes          string          `gorm:"type:text;not null;default:''"                  json:"notes"`

	// commission snapshot taken from the terms active at creation time
	CommissionRate   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"  json:"commissionRate"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"commissionAmount"`

	CreatedBy *string `gorm:"type:uuid" json:"createdBy,omitempty"`
	UpdatedBy *string `gorm:"type:uuid" json:"updatedBy,omitempty"`
	VersionedModel

	Lead     *Lead     `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"lead,omitempty"`
	Payments []Payment `gorm:"foreignKey:EnrollmentID"                         json:"payments,omitempty"`
}

// TableName table name
func (Enrollment) TableName() string { return "enrollments" }

// DerivePaymentState computes pending amount and payment status from the amounts.
// It is the only place these two fields are calculated.
func DerivePaymentState(total, paid decimal.Decimal, refunded bool) (decimal.Decimal, string) {
	pending := total.Sub(paid)
	if pending.IsNegative() {
		pending = decimal.Zero
	}

	switch {
	case refunded:
		return pending, PaymentStatusRefunded
	case paid.IsZero():
		return pending, PaymentStatusUnpaid
	case paid.GreaterThanOrEqual(total):
		return pending, PaymentStatusFull
	default:
		return pending, PaymentStatusPartial
	}
}

// ApplyDerivedFields recomputes PendingAmount and PaymentStatus in place.
func (e *Enrollment) ApplyDerivedFields() {
	e.PendingAmount, e.PaymentStatus = DerivePaymentState(e.TotalAmount, e.PaidAmount, e.RefundedAt != nil)
}

// BeforeSave keeps derived fields consistent on Create/Save paths.
func (e *Enrollment) BeforeSave(_ *gorm.DB) error {
	e.ApplyDerivedFields()
	return nil
}

// Payment append-only payment history entry (table payments)
type Payment struct {
	PaymentID    string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EnrollmentID string          `gorm:"type:uuid;not null"                             json:"enrollmentId"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	Method       string          `gorm:"type:varchar(20);not null"                      json:"method"`
	Notes        string          `gorm:"type:text;not null;default:''"                  json:"notes,omitempty"`
	Reference    string          `gorm:"type:varchar(100);not null;default:''"          json:"reference,omitempty"`
	PaidAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"paidAt"`
	RecordedBy   *string         `gorm:"type:uuid"                                      json:"recordedBy,omitempty"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"createdAt"`
}

// TableName table name
func (Payment) TableName() string { return "payments" }
