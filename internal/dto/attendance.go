package dto

// CreateAttendanceRequest new attendance record
type CreateAttendanceRequest struct {
	EnrollmentID   string `json:"enrollmentId"   binding:"required,uuid"`
	WorkshopDate   string `json:"workshopDate"   binding:"required,datetime=2006-01-02"`
	Status         string `json:"status"         binding:"omitempty,oneof=pending attended absent cancelled"`
	AttendanceDate string `json:"attendanceDate" binding:"omitempty"` // RFC3339
	Notes          string `json:"notes"          binding:"omitempty,max=500"`
}

// UpdateAttendanceRequest status change / check-in commit
type UpdateAttendanceRequest struct {
	Status         *string `json:"status"         binding:"omitempty,oneof=pending attended absent cancelled"`
	AttendanceDate *string `json:"attendanceDate"`
	Notes          *string `json:"notes"          binding:"omitempty,max=500"`
}

// AttendanceListRequest list filters
type AttendanceListRequest struct {
	PaginationRequest
	EnrollmentID string `form:"enrollmentId" binding:"omitempty,uuid"`
	Status       string `form:"status"       binding:"omitempty,oneof=pending attended absent cancelled"`
	WorkshopDate string `form:"workshopDate" binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceResponse attendance record
type AttendanceResponse struct {
	ID             string `json:"id"`
	EnrollmentID   string `json:"enrollmentId"`
	WorkshopDate   string `json:"workshopDate"`
	Status         string `json:"status"`
	QRCode         string `json:"qrCode"`
	AttendanceDate string `json:"attendanceDate,omitempty"`
	RecordedBy     string `json:"recordedBy,omitempty"`
	RecordedAt     string `json:"recordedAt,omitempty"`
	Notes          string `json:"notes"`
	ParentName     string `json:"parentName,omitempty"`
}

// QRValidationResponse data shown to the operator before committing a check-in
type QRValidationResponse struct {
	Attendance    AttendanceResponse `json:"attendance"`
	EnrollmentID  string             `json:"enrollmentId"`
	SubmissionID  string             `json:"submissionId"`
	ParentName    string             `json:"parentName"`
	AgeRange      string             `json:"ageRange"`
	NumberOfKids  int                `json:"numberOfKids"`
	WorkshopName  string             `json:"workshopName,omitempty"`
	PaymentStatus string             `json:"paymentStatus"`
}
