package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/repository"
)

// ── export errors ──

var (
	ErrExportGenerateFail = errors.New("failed to generate spreadsheet")
)

// ExportService spreadsheet exports for the back office
//
// Exports are returned as a bytes.Buffer; the handler sets the download headers.
type ExportService interface {
	ExportLeads(ctx context.Context, req *dto.LeadListRequest) (*bytes.Buffer, string, error)
	ExportEnrollments(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	terms  PaymentTermsService
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, terms PaymentTermsService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, terms: terms, now: time.Now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportLeads one row per submission, honouring the list filters
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportLeads(ctx context.Context, req *dto.LeadListRequest) (*bytes.Buffer, string, error) {
	leads, err := s.repo.Lead.ListAll(ctx, repository.LeadFilter{
		Status:   req.Status,
		AgeRange: req.AgeRange,
		Source:   req.Source,
		Sort:     req.Sort,
	})
	if err != nil {
		s.logger.Error("load leads for export failed", zap.Error(err))
		return nil, "", err
	}

	ids := make([]string, 0, len(leads))
	for i := range leads {
		ids = append(ids, leads[i].SubmissionID)
	}
	counts, err := s.repo.ShareEvent.CountsByLeads(ctx, ids)
	if err != nil {
		s.logger.Error("load share counters for export failed", zap.Error(err))
		return nil, "", err
	}

	headers := []string{
		"Submission ID", "Name", "WhatsApp", "Age Range", "Kids", "Source", "Status",
		"Duplicate", "Duplicate Of", "Shared To", "Clicks", "Intents", "Visits", "Submitted At", "Notes",
	}
	rows := make([][]interface{}, 0, len(leads))
	for i := range leads {
		l := &leads[i]
		c := counts[l.SubmissionID]
		rows = append(rows, []interface{}{
			l.SubmissionID, l.Name, l.Whatsapp, l.AgeRange, l.NumberOfKids, l.Source, l.Status,
			yesNo(l.IsDuplicate), derefStr(l.DuplicateOf), strings.Join(l.SharedTo, ", "),
			c.Clicks, c.Intents, c.Visits, formatTime(l.SubmittedAt), l.Notes,
		})
	}

	buf, err := s.writeSheet("Leads", headers, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("leads_%s.xlsx", s.now().Format("20060102")), nil
}

// ═══════════════════════════════════════════════════════════
// ExportEnrollments amounts plus both commission views
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportEnrollments(ctx context.Context) (*bytes.Buffer, string, error) {
	list, err := s.repo.Enrollment.ListAll(ctx)
	if err != nil {
		s.logger.Error("load enrollments for export failed", zap.Error(err))
		return nil, "", err
	}
	terms, _, err := s.terms.Current(ctx)
	if err != nil {
		return nil, "", err
	}
	attendedIDs, err := s.repo.Attendance.AttendedEnrollmentIDs(ctx)
	if err != nil {
		s.logger.Error("load attended enrollments for export failed", zap.Error(err))
		return nil, "", err
	}
	attended := make(map[string]bool, len(attendedIDs))
	for _, id := range attendedIDs {
		attended[id] = true
	}

	headers := []string{
		"Submission ID", "Parent", "WhatsApp", "Workshop", "Status", "Payment Status", "Currency",
		"Total", "Paid", "Pending", "Attended", "Commission (current)", "Commission (at creation)", "Enrolled On",
	}
	rows := make([][]interface{}, 0, len(list))
	for i := range list {
		e := &list[i]
		parent, phone := "", ""
		if e.Lead != nil {
			parent, phone = e.Lead.Name, e.Lead.Whatsapp
		}
		view := commissionView(e.TotalAmount, terms, attended[e.EnrollmentID])
		rows = append(rows, []interface{}{
			e.SubmissionID, parent, phone, e.WorkshopName, e.Status, e.PaymentStatus, e.Currency,
			toFloat(e.TotalAmount), toFloat(e.PaidAmount), toFloat(e.PendingAmount),
			yesNo(attended[e.EnrollmentID]), view.Total, toFloat(e.CommissionAmount), formatTimePtr(e.EnrollmentDate),
		})
	}

	buf, err := s.writeSheet("Enrollments", headers, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("enrollments_%s.xlsx", s.now().Format("20060102")), nil
}

// writeSheet renders a single-sheet workbook with a styled header row
func (s *exportService) writeSheet(sheetName string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
		f.SetColWidth(sheetName, colName(i), colName(i), 18)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for r, row := range rows {
		for c, v := range row {
			f.SetCellValue(sheetName, cell(colName(c), r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write spreadsheet failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
