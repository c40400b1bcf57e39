package dto

// UpdatePaymentTermsRequest new version of the payment terms
type UpdatePaymentTermsRequest struct {
	EnrollmentCommissionRate *float64 `json:"enrollmentCommissionRate" binding:"required,gte=0,lte=100"`
	AttendanceCommissionRate *float64 `json:"attendanceCommissionRate" binding:"required,gte=0,lte=100"`
	Currency                 string   `json:"currency"                 binding:"omitempty,len=3"`
	PayoutFrequency          string   `json:"payoutFrequency"          binding:"required,oneof=weekly biweekly monthly quarterly"`
	PayoutDay                int      `json:"payoutDay"                binding:"gte=0,lte=31"`
	TaxRate                  *float64 `json:"taxRate"                  binding:"omitempty,gte=0,lte=100"`
	MinimumPayoutAmount      *float64 `json:"minimumPayoutAmount"      binding:"omitempty,gte=0"`
	Notes                    string   `json:"notes"                    binding:"omitempty,max=1000"`
}

// PaymentTermsResponse terms record
type PaymentTermsResponse struct {
	ID                       string   `json:"id,omitempty"`
	EnrollmentCommissionRate float64  `json:"enrollmentCommissionRate"`
	AttendanceCommissionRate float64  `json:"attendanceCommissionRate"`
	Currency                 string   `json:"currency"`
	PayoutFrequency          string   `json:"payoutFrequency"`
	PayoutDay                int      `json:"payoutDay"`
	TaxRate                  *float64 `json:"taxRate,omitempty"`
	MinimumPayoutAmount      *float64 `json:"minimumPayoutAmount,omitempty"`
	IsActive                 bool     `json:"isActive"`
	IsDefault                bool     `json:"isDefault"` // no stored record, configured defaults in use
	EffectiveFrom            string   `json:"effectiveFrom,omitempty"`
	Notes                    string   `json:"notes,omitempty"`
}

// BreakdownEntry grouped count and amount
type BreakdownEntry struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// RevenueMetricsResponse aggregate revenue and commission report
type RevenueMetricsResponse struct {
	Currency             string                    `json:"currency"`
	TotalEnrollments     int64                     `json:"totalEnrollments"`
	TotalContractValue   float64                   `json:"totalContractValue"`
	TotalPaid            float64                   `json:"totalPaid"`
	TotalPending         float64                   `json:"totalPending"`
	EnrollmentCommission float64                   `json:"enrollmentCommission"`
	AttendanceCommission float64                   `json:"attendanceCommission"`
	TotalRevenue         float64                   `json:"totalRevenue"`
	TaxAmount            float64                   `json:"taxAmount"`
	NetRevenue           float64                   `json:"netRevenue"`
	PendingPayout        float64                   `json:"pendingPayout"`
	MinimumPayoutAmount  float64                   `json:"minimumPayoutAmount"`
	NextPayoutDate       string                    `json:"nextPayoutDate"`
	AttendedEnrollments  int64                     `json:"attendedEnrollments"`
	ByStatus             map[string]BreakdownEntry `json:"byStatus"`
	ByPaymentStatus      map[string]BreakdownEntry `json:"byPaymentStatus"`
	ByAgeRange           map[string]BreakdownEntry `json:"byAgeRange"`
	Terms                PaymentTermsResponse      `json:"terms"`
	GeneratedAt          string                    `json:"generatedAt"`
}
