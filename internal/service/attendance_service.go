package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
	pkgerrors "workshop-funnel/pkg/errors"
	"workshop-funnel/pkg/metrics"
)

// ── attendance errors ──

var (
	ErrAttendanceNotFound    = errors.New("attendance record not found")
	ErrAttendanceExists      = errors.New("attendance already recorded for this workshop date")
	ErrAlreadyCheckedIn      = errors.New("attendee is already checked in")
	ErrAttendanceTransition  = errors.New("attendance status change not allowed")
	ErrAttendanceDateInvalid = errors.New("invalid attendance date")
	ErrAttendanceConflict    = errors.New("attendance was modified concurrently, reload and retry")
)

const (
	qrCodeLength   = 20
	qrCodeAttempts = 3
	dateLayout     = "2006-01-02"
)

// AttendanceService QR check-in and attendance records
type AttendanceService interface {
	Record(ctx context.Context, req *dto.CreateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error)
	// ValidateQR is read-only; the check-in is committed through Update.
	ValidateQR(ctx context.Context, code string) (*dto.QRValidationResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error)
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error)
	// Calendar exports an enrollment's workshop dates as iCalendar data.
	Calendar(ctx context.Context, enrollmentID string) ([]byte, string, error)
}

type attendanceService struct {
	repo     *repository.Repository
	activity ActivityService
	now      func() time.Time
	logger   *zap.Logger
}

// NewAttendanceService creates an AttendanceService
func NewAttendanceService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		repo:     repo,
		activity: activity,
		now:      time.Now,
		logger:   logger,
	}
}

// GenerateQRCode derives a 20-character uppercase hex code from the enrollment, a timestamp and a random salt
func GenerateQRCode(enrollmentID string, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s%d%s", enrollmentID, at.UnixNano(), uuid.NewString())))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:qrCodeLength]
}

// ────────────────────── Record ──────────────────────

func (s *attendanceService) Record(ctx context.Context, req *dto.CreateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error) {
	workshopDate, err := time.Parse(dateLayout, req.WorkshopDate)
	if err != nil {
		return nil, ErrAttendanceDateInvalid
	}

	enrollment, err := s.repo.Enrollment.GetByID(ctx, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("load enrollment for attendance failed", zap.Error(err))
		return nil, err
	}

	exists, err := s.repo.Attendance.ExistsForDate(ctx, req.EnrollmentID, workshopDate)
	if err != nil {
		s.logger.Error("check attendance date failed", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrAttendanceExists
	}

	now := s.now().UTC()
	code, err := s.allocateQRCode(ctx, req.EnrollmentID, now)
	if err != nil {
		return nil, err
	}

	a := &model.Attendance{
		EnrollmentID: req.EnrollmentID,
		WorkshopDate: workshopDate,
		Status:       model.AttendanceStatusPending,
		QRCode:       code,
		Notes:        req.Notes,
	}
	a.Version = 1
	if req.Status != "" {
		a.Status = req.Status
	}
	if req.AttendanceDate != "" {
		at, err := time.Parse(time.RFC3339, req.AttendanceDate)
		if err != nil {
			return nil, ErrAttendanceDateInvalid
		}
		a.AttendanceDate = &at
	}
	if a.Status == model.AttendanceStatusAttended {
		a.MarkAttended(callerID, now)
	}

	err = s.repo.Attendance.Create(ctx, a)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrAttendanceExists
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionAttendanceCreate,
		ResourceType: ResourceAttendance,
		ResourceID:   a.AttendanceID,
		Details: map[string]interface{}{
			"enrollmentId": req.EnrollmentID,
			"workshopDate": req.WorkshopDate,
			"status":       a.Status,
		},
		Err: err,
	})
	if err != nil {
		if !errors.Is(err, ErrAttendanceExists) {
			s.logger.Error("create attendance failed", zap.Error(err))
		}
		return nil, err
	}

	if a.Status == model.AttendanceStatusAttended {
		metrics.CheckIns.Inc()
	}

	a.Enrollment = enrollment
	resp := toAttendanceResponse(a)
	return &resp, nil
}

func (s *attendanceService) allocateQRCode(ctx context.Context, enrollmentID string, at time.Time) (string, error) {
	var code string
	for i := 0; i < qrCodeAttempts; i++ {
		code = GenerateQRCode(enrollmentID, at)
		exists, err := s.repo.Attendance.QRCodeExists(ctx, code)
		if err != nil {
			s.logger.Error("check qr code failed", zap.Error(err))
			return "", err
		}
		if !exists {
			break
		}
	}
	return code, nil
}

// ────────────────────── ValidateQR ──────────────────────

func (s *attendanceService) ValidateQR(ctx context.Context, code string) (*dto.QRValidationResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != qrCodeLength {
		return nil, ErrAttendanceNotFound
	}

	a, err := s.repo.Attendance.GetByQRCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("load attendance by qr failed", zap.Error(err))
		return nil, err
	}
	if a.Status == model.AttendanceStatusAttended {
		return nil, ErrAlreadyCheckedIn
	}

	resp := &dto.QRValidationResponse{
		Attendance:   toAttendanceResponse(a),
		EnrollmentID: a.EnrollmentID,
	}
	if e := a.Enrollment; e != nil {
		resp.SubmissionID = e.SubmissionID
		resp.WorkshopName = e.WorkshopName
		resp.PaymentStatus = e.PaymentStatus
		if e.Lead != nil {
			resp.ParentName = e.Lead.Name
			resp.AgeRange = e.Lead.AgeRange
			resp.NumberOfKids = e.Lead.NumberOfKids
		}
	}
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *attendanceService) Update(ctx context.Context, id string, req *dto.UpdateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error) {
	a, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("load attendance failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	from := a.Status
	if req.AttendanceDate != nil {
		at, err := time.Parse(time.RFC3339, *req.AttendanceDate)
		if err != nil {
			return nil, ErrAttendanceDateInvalid
		}
		a.AttendanceDate = &at
	}
	if req.Status != nil {
		to := *req.Status
		if !model.CanTransitionAttendance(from, to) {
			if from == model.AttendanceStatusAttended && to == model.AttendanceStatusAttended {
				return nil, ErrAlreadyCheckedIn
			}
			return nil, ErrAttendanceTransition
		}
		if to == model.AttendanceStatusAttended {
			a.MarkAttended(callerID, s.now().UTC())
		} else {
			a.Status = to
		}
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}

	err = s.repo.Attendance.Update(ctx, a)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		err = ErrAttendanceConflict
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionAttendanceUpdate,
		ResourceType: ResourceAttendance,
		ResourceID:   id,
		Details:      map[string]interface{}{"from": from, "to": a.Status},
		Err:          err,
	})
	if err != nil {
		if !errors.Is(err, ErrAttendanceConflict) {
			s.logger.Error("update attendance failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	if from != model.AttendanceStatusAttended && a.Status == model.AttendanceStatusAttended {
		metrics.CheckIns.Inc()
	}

	resp := toAttendanceResponse(a)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error) {
	filter := repository.AttendanceFilter{
		EnrollmentID: req.EnrollmentID,
		Status:       req.Status,
	}
	if req.WorkshopDate != "" {
		d, err := time.Parse(dateLayout, req.WorkshopDate)
		if err != nil {
			return nil, 0, ErrAttendanceDateInvalid
		}
		filter.WorkshopDate = &d
	}

	list, total, err := s.repo.Attendance.List(ctx, filter, req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("list attendance failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AttendanceResponse, 0, len(list))
	for i := range list {
		result = append(result, toAttendanceResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *attendanceService) Calendar(ctx context.Context, enrollmentID string) ([]byte, string, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrEnrollmentNotFound
		}
		s.logger.Error("load enrollment for calendar failed", zap.Error(err))
		return nil, "", err
	}

	records, err := s.repo.Attendance.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		s.logger.Error("load attendance for calendar failed", zap.Error(err))
		return nil, "", err
	}

	title := enrollment.WorkshopName
	if title == "" {
		title = "Workshop"
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//workshop-funnel//attendance//EN")
	cal.SetXWRCalName(title)

	stamp := s.now().UTC()
	for i := range records {
		a := &records[i]
		event := cal.AddEvent(a.AttendanceID + "@workshop-funnel")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(a.WorkshopDate)
		event.SetAllDayEndAt(a.WorkshopDate.AddDate(0, 0, 1))
		event.SetSummary(title)

		desc := fmt.Sprintf("Check-in code: %s\nStatus: %s", a.QRCode, a.Status)
		if enrollment.Lead != nil {
			desc = fmt.Sprintf("Parent: %s\n%s", enrollment.Lead.Name, desc)
		}
		event.SetDescription(desc)

		if a.Status == model.AttendanceStatusCancelled {
			event.SetStatus(ics.ObjectStatusCancelled)
		} else {
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	filename := fmt.Sprintf("attendance-%s.ics", enrollmentID)
	return []byte(cal.Serialize()), filename, nil
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:             a.AttendanceID,
		EnrollmentID:   a.EnrollmentID,
		WorkshopDate:   a.WorkshopDate.Format(dateLayout),
		Status:         a.Status,
		QRCode:         a.QRCode,
		AttendanceDate: formatTimePtr(a.AttendanceDate),
		RecordedBy:     derefStr(a.RecordedBy),
		RecordedAt:     formatTimePtr(a.RecordedAt),
		Notes:          a.Notes,
	}
	if a.Enrollment != nil && a.Enrollment.Lead != nil {
		resp.ParentName = a.Enrollment.Lead.Name
	}
	return resp
}
