package model

import "time"

// Attendance one workshop-date check-in record (table attendances)
type Attendance struct {
	AttendanceID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EnrollmentID   string     `gorm:"type:uuid;not null"                             json:"enrollmentId"`
	WorkshopDate   time.Time  `gorm:"type:date;not null"                             json:"workshopDate"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | attended | absent | cancelled
	QRCode         string     `gorm:"column:qr_code;type:varchar(20);not null"       json:"qrCode"`
	AttendanceDate *time.Time `json:"attendanceDate,omitempty"`
	RecordedBy     *string    `gorm:"type:uuid"                                      json:"recordedBy,omitempty"`
	RecordedAt     *time.Time `json:"recordedAt,omitempty"`
	Notes          string     `gorm:"type:text;not null;default:''"                  json:"notes"`
	VersionedModel

	Enrollment *Enrollment `gorm:"foreignKey:EnrollmentID;references:EnrollmentID" json:"enrollment,omitempty"`
}

// TableName table name
func (Attendance) TableName() string { return "attendances" }

// MarkAttended stamps the check-in fields.
func (a *Attendance) MarkAttended(by string, at time.Time) {
	a.Status = AttendanceStatusAttended
	if a.AttendanceDate == nil {
		a.AttendanceDate = &at
	}
	a.RecordedBy = &by
	a.RecordedAt = &at
}
