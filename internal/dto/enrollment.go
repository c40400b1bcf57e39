package dto

// CreateEnrollmentRequest convert a lead into an enrollment
type CreateEnrollmentRequest struct {
	SubmissionID string   `json:"submissionId" binding:"required,uuid"`
	TotalAmount  *float64 `json:"totalAmount"  binding:"required,gte=0"`
	PaidAmount   *float64 `json:"paidAmount"   binding:"omitempty,gte=0"`
	Currency     string   `json:"currency"     binding:"omitempty,len=3"`
	WorkshopName string   `json:"workshopName" binding:"omitempty,max=200"`
	Status       string   `json:"status"       binding:"omitempty,oneof=inquiry enrolled"`
	Notes        string   `json:"notes"        binding:"omitempty,max=2000"`
}

// UpdateEnrollmentRequest partial update
type UpdateEnrollmentRequest struct {
	Status      *string  `json:"status"      binding:"omitempty,oneof=inquiry enrolled completed cancelled no_show"`
	TotalAmount *float64 `json:"totalAmount" binding:"omitempty,gte=0"`
	PaidAmount  *float64 `json:"paidAmount"  binding:"omitempty,gte=0"`
	Notes       *string  `json:"notes"       binding:"omitempty,max=2000"`
}

// RecordPaymentRequest append a payment
type RecordPaymentRequest struct {
	Amount    *float64 `json:"amount"    binding:"required,gte=0"`
	Method    string   `json:"method"    binding:"required,oneof=cash bank_transfer mobile_money card upi cheque other"`
	Notes     string   `json:"notes"     binding:"omitempty,max=500"`
	Reference string   `json:"reference" binding:"omitempty,max=100"`
}

// RefundEnrollmentRequest mark an enrollment refunded
type RefundEnrollmentRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// EnrollmentListRequest list filters
type EnrollmentListRequest struct {
	PaginationRequest
	Status        string `form:"status"        binding:"omitempty,oneof=inquiry enrolled completed cancelled no_show"`
	PaymentStatus string `form:"paymentStatus" binding:"omitempty,oneof=unpaid partial full refunded"`
}

// CommissionView commission figures for one enrollment
type CommissionView struct {
	EnrollmentRate       float64 `json:"enrollmentRate"`
	EnrollmentCommission float64 `json:"enrollmentCommission"`
	AttendanceRate       float64 `json:"attendanceRate"`
	AttendanceCommission float64 `json:"attendanceCommission"`
	Total                float64 `json:"total"`
}

// CommissionSnapshot commission captured when the enrollment was created
type CommissionSnapshot struct {
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// PaymentResponse payment history entry
type PaymentResponse struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Notes     string  `json:"notes,omitempty"`
	Reference string  `json:"reference,omitempty"`
	PaidAt    string  `json:"paidAt"`
}

// EnrollmentResponse enrollment with commission views
type EnrollmentResponse struct {
	ID             string             `json:"id"`
	SubmissionID   string             `json:"submissionId"`
	ParentName     string             `json:"parentName,omitempty"`
	Whatsapp       string             `json:"whatsapp,omitempty"`
	AgeRange       string             `json:"ageRange,omitempty"`
	Status         string             `json:"status"`
	PaymentStatus  string             `json:"paymentStatus"`
	TotalAmount    float64            `json:"totalAmount"`
	PaidAmount     float64            `json:"paidAmount"`
	PendingAmount  float64            `json:"pendingAmount"`
	Currency       string             `json:"currency"`
	WorkshopName   string             `json:"workshopName,omitempty"`
	EnrollmentDate string             `json:"enrollmentDate,omitempty"`
	CompletionDate string             `json:"completionDate,omitempty"`
	RefundedAt     string             `json:"refundedAt,omitempty"`
	Notes          string             `json:"notes"`
	Attended       bool               `json:"attended"`
	Commission     CommissionView     `json:"commission"`         // current terms
	Snapshot       CommissionSnapshot `json:"commissionSnapshot"` // terms at creation
	Payments       []PaymentResponse  `json:"payments,omitempty"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}
