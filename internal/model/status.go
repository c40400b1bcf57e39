package model

// Lead status
const (
	LeadStatusNew        = "new"
	LeadStatusContacted  = "contacted"
	LeadStatusEnrolled   = "enrolled"
	LeadStatusNoResponse = "no_response"
)

// Age brackets accepted by the intake form
var AgeRanges = []string{"5-7", "8-10", "11-14"}

// Enrollment status
const (
	EnrollmentStatusInquiry   = "inquiry"
	EnrollmentStatusEnrolled  = "enrolled"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
	EnrollmentStatusNoShow    = "no_show"
)

// Payment status (derived, see DerivePaymentState)
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPartial  = "partial"
	PaymentStatusFull     = "full"
	PaymentStatusRefunded = "refunded"
)

// Payment methods
const (
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodCard         = "card"
	PaymentMethodUPI          = "upi"
	PaymentMethodCheque       = "cheque"
	PaymentMethodOther        = "other"
)

// Attendance status
const (
	AttendanceStatusPending   = "pending"
	AttendanceStatusAttended  = "attended"
	AttendanceStatusAbsent    = "absent"
	AttendanceStatusCancelled = "cancelled"
)

// Payout cadence
const (
	PayoutWeekly    = "weekly"
	PayoutBiweekly  = "biweekly"
	PayoutMonthly   = "monthly"
	PayoutQuarterly = "quarterly"
)

// Share event kinds. Each measures a different funnel stage and is counted separately.
const (
	ShareKindClick  = "click"  // raw UI click on a share button
	ShareKindIntent = "intent" // click that survived the dedup window
	ShareKindVisit  = "visit"  // someone opened the short link
)

// Admin roles
const (
	RoleAdmin           = "admin"
	AdminRoleSuperAdmin = "super_admin"
	AdminRoleAdmin      = "admin"
)

// enrollmentTransitions allowed status moves; a move to the same status is always allowed.
var enrollmentTransitions = map[string][]string{
	EnrollmentStatusInquiry:   {EnrollmentStatusEnrolled, EnrollmentStatusCancelled, EnrollmentStatusNoShow},
	EnrollmentStatusEnrolled:  {EnrollmentStatusCompleted, EnrollmentStatusCancelled, EnrollmentStatusNoShow},
	EnrollmentStatusNoShow:    {EnrollmentStatusEnrolled, EnrollmentStatusCancelled},
	EnrollmentStatusCancelled: {EnrollmentStatusInquiry},
	EnrollmentStatusCompleted: {},
}

// CanTransitionEnrollment reports whether an enrollment may move from one status to another.
func CanTransitionEnrollment(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range enrollmentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// attendanceTransitions pending fans out; attended and cancelled are terminal.
var attendanceTransitions = map[string][]string{
	AttendanceStatusPending:   {AttendanceStatusAttended, AttendanceStatusAbsent, AttendanceStatusCancelled},
	AttendanceStatusAbsent:    {AttendanceStatusAttended, AttendanceStatusCancelled},
	AttendanceStatusAttended:  {},
	AttendanceStatusCancelled: {},
}

// CanTransitionAttendance reports whether an attendance record may move between statuses.
func CanTransitionAttendance(from, to string) bool {
	if from == to {
		return from != AttendanceStatusAttended
	}
	for _, s := range attendanceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
