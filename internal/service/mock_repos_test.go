package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"workshop-funnel/config"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
	pkgerrors "workshop-funnel/pkg/errors"
)

// Mocks hand out copies so that version checks behave like a real store.

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins map[string]*model.Admin
	err    error
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	if m.err != nil {
		return m.err
	}
	for _, a := range m.admins {
		if a.Email == admin.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if admin.AdminID == "" {
		admin.AdminID = fmt.Sprintf("admin-%d", len(m.admins)+1)
	}
	cp := *admin
	m.admins[admin.AdminID] = &cp
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id string) (*model.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	if a, ok := m.admins[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if a, ok := m.admins[id]; ok {
		a.LastLoginAt = &at
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) UpdatePassword(_ context.Context, id, hash string) error {
	if a, ok := m.admins[id]; ok {
		a.PasswordHash = hash
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Mock LeadRepository ──

type mockLeadRepo struct {
	leads map[string]*model.Lead
	order []string
	err   error
	// afterRead runs once after the next unlocked GetByID, standing in for a
	// writer that commits between that read and the caller's write
	afterRead func()
}

func newMockLeadRepo() *mockLeadRepo {
	return &mockLeadRepo{leads: make(map[string]*model.Lead)}
}

func (m *mockLeadRepo) Create(_ context.Context, lead *model.Lead) error {
	if m.err != nil {
		return m.err
	}
	if lead.SubmissionID == "" {
		lead.SubmissionID = fmt.Sprintf("lead-%d", len(m.order)+1)
	}
	cp := *lead
	m.leads[lead.SubmissionID] = &cp
	m.order = append(m.order, lead.SubmissionID)
	return nil
}

func (m *mockLeadRepo) GetByID(_ context.Context, id string) (*model.Lead, error) {
	lead, err := m.get(id)
	if err == nil && m.afterRead != nil {
		hook := m.afterRead
		m.afterRead = nil
		hook()
	}
	return lead, err
}

func (m *mockLeadRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Lead, error) {
	return m.get(id)
}

func (m *mockLeadRepo) get(id string) (*model.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	if l, ok := m.leads[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeadRepo) GetByShareCode(_ context.Context, code string) (*model.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, l := range m.leads {
		if l.ShareCode != nil && *l.ShareCode == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeadRepo) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.GetByShareCode(ctx, code)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *mockLeadRepo) FindOriginal(_ context.Context, sessionID, name, whatsapp string) (*model.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, id := range m.order {
		l, ok := m.leads[id]
		if !ok || l.IsDuplicate || l.SessionID == nil {
			continue
		}
		if *l.SessionID == sessionID && l.Name == name && l.Whatsapp == whatsapp {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeadRepo) matching(filter repository.LeadFilter) []model.Lead {
	var out []model.Lead
	for _, id := range m.order {
		l, ok := m.leads[id]
		if !ok {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.AgeRange != "" && l.AgeRange != filter.AgeRange {
			continue
		}
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		out = append(out, *l)
	}
	return out
}

func (m *mockLeadRepo) List(_ context.Context, filter repository.LeadFilter, offset, limit int) ([]model.Lead, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	all := m.matching(filter)
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Lead{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockLeadRepo) ListAll(_ context.Context, filter repository.LeadFilter) ([]model.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.matching(filter), nil
}

func (m *mockLeadRepo) Update(_ context.Context, lead *model.Lead) error {
	if m.err != nil {
		return m.err
	}
	if lead.ShareCode != nil {
		for id, l := range m.leads {
			if id != lead.SubmissionID && l.ShareCode != nil && *l.ShareCode == *lead.ShareCode {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	cp := *lead
	m.leads[lead.SubmissionID] = &cp
	return nil
}

func (m *mockLeadRepo) ClearDuplicateOf(_ context.Context, originalID string) error {
	for _, l := range m.leads {
		if l.DuplicateOf != nil && *l.DuplicateOf == originalID {
			l.IsDuplicate = false
			l.DuplicateOf = nil
		}
	}
	return nil
}

func (m *mockLeadRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.leads[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.leads, id)
	return nil
}

func (m *mockLeadRepo) Count(_ context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.leads)), nil
}

func (m *mockLeadRepo) CountDuplicates(_ context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, l := range m.leads {
		if l.IsDuplicate {
			n++
		}
	}
	return n, nil
}

func (m *mockLeadRepo) countBy(key func(*model.Lead) string) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]int64{}
	for _, l := range m.leads {
		out[key(l)]++
	}
	return out, nil
}

func (m *mockLeadRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	return m.countBy(func(l *model.Lead) string { return l.Status })
}

func (m *mockLeadRepo) CountByAgeRange(_ context.Context) (map[string]int64, error) {
	return m.countBy(func(l *model.Lead) string { return l.AgeRange })
}

func (m *mockLeadRepo) CountBySource(_ context.Context) (map[string]int64, error) {
	return m.countBy(func(l *model.Lead) string { return l.Source })
}

// ── Mock ShareEventRepository ──

type mockShareEventRepo struct {
	events []model.ShareEvent
	err    error
}

func newMockShareEventRepo() *mockShareEventRepo {
	return &mockShareEventRepo{}
}

func (m *mockShareEventRepo) Create(_ context.Context, events ...*model.ShareEvent) error {
	if m.err != nil {
		return m.err
	}
	for _, e := range events {
		e.ShareEventID = fmt.Sprintf("evt-%d", len(m.events)+1)
		m.events = append(m.events, *e)
	}
	return nil
}

func (m *mockShareEventRepo) CountsByLead(_ context.Context, leadID string) (model.ShareCounts, error) {
	var c model.ShareCounts
	if m.err != nil {
		return c, m.err
	}
	for _, e := range m.events {
		if e.LeadID == leadID {
			c.Add(e.Kind, 1)
		}
	}
	return c, nil
}

func (m *mockShareEventRepo) CountsByLeads(_ context.Context, ids []string) (map[string]model.ShareCounts, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[string]model.ShareCounts{}
	for _, e := range m.events {
		if want[e.LeadID] {
			c := out[e.LeadID]
			c.Add(e.Kind, 1)
			out[e.LeadID] = c
		}
	}
	return out, nil
}

func (m *mockShareEventRepo) Totals(_ context.Context) (model.ShareCounts, error) {
	var c model.ShareCounts
	if m.err != nil {
		return c, m.err
	}
	for _, e := range m.events {
		c.Add(e.Kind, 1)
	}
	return c, nil
}

func (m *mockShareEventRepo) TotalsByPlatform(_ context.Context) (map[string]model.ShareCounts, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]model.ShareCounts{}
	for _, e := range m.events {
		if e.Platform == "" {
			continue
		}
		c := out[e.Platform]
		c.Add(e.Kind, 1)
		out[e.Platform] = c
	}
	return out, nil
}

func (m *mockShareEventRepo) count(leadID, kind string) int {
	n := 0
	for _, e := range m.events {
		if e.LeadID == leadID && e.Kind == kind {
			n++
		}
	}
	return n
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment
	leads       *mockLeadRepo
	payments    *mockPaymentRepo
	// conflicts forces the next N updates to fail the version check
	conflicts int
	err       error
}

func newMockEnrollmentRepo(leads *mockLeadRepo, payments *mockPaymentRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{
		enrollments: make(map[string]*model.Enrollment),
		leads:       leads,
		payments:    payments,
	}
}

func (m *mockEnrollmentRepo) hydrate(e *model.Enrollment) *model.Enrollment {
	cp := *e
	if l, ok := m.leads.leads[e.SubmissionID]; ok {
		lc := *l
		cp.Lead = &lc
	}
	cp.Payments = append([]model.Payment(nil), m.payments.byEnrollment(e.EnrollmentID)...)
	return &cp
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.enrollments {
		if existing.SubmissionID == e.SubmissionID {
			return gorm.ErrDuplicatedKey
		}
	}
	if e.EnrollmentID == "" {
		e.EnrollmentID = fmt.Sprintf("enr-%d", len(m.enrollments)+1)
	}
	if e.Version == 0 {
		e.Version = 1
	}
	e.ApplyDerivedFields()
	cp := *e
	cp.Lead, cp.Payments = nil, nil
	m.enrollments[e.EnrollmentID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	if e, ok := m.enrollments[id]; ok {
		return m.hydrate(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetBySubmissionID(_ context.Context, submissionID string) (*model.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, e := range m.enrollments {
		if e.SubmissionID == submissionID {
			return m.hydrate(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ExistsForSubmission(ctx context.Context, submissionID string) (bool, error) {
	_, err := m.GetBySubmissionID(ctx, submissionID)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *mockEnrollmentRepo) sorted() []model.Enrollment {
	out := make([]model.Enrollment, 0, len(m.enrollments))
	for _, e := range m.enrollments {
		out = append(out, *m.hydrate(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentID < out[j].EnrollmentID })
	return out
}

func (m *mockEnrollmentRepo) List(_ context.Context, filter repository.EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []model.Enrollment
	for _, e := range m.sorted() {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && e.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, e)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.Enrollment{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockEnrollmentRepo) ListAll(_ context.Context) ([]model.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(), nil
}

func (m *mockEnrollmentRepo) Update(_ context.Context, e *model.Enrollment) error {
	if m.err != nil {
		return m.err
	}
	stored, ok := m.enrollments[e.EnrollmentID]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	if m.conflicts > 0 {
		m.conflicts--
		stored.Version++
		return pkgerrors.ErrOptimisticLock
	}
	if stored.Version != e.Version {
		return pkgerrors.ErrOptimisticLock
	}
	e.ApplyDerivedFields()
	e.Version++
	cp := *e
	cp.Lead, cp.Payments = nil, nil
	m.enrollments[e.EnrollmentID] = &cp
	return nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	payments []model.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{}
}

func (m *mockPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	p.PaymentID = fmt.Sprintf("pay-%d", len(m.payments)+1)
	m.payments = append(m.payments, *p)
	return nil
}

func (m *mockPaymentRepo) ListByEnrollment(_ context.Context, enrollmentID string) ([]model.Payment, error) {
	return m.byEnrollment(enrollmentID), nil
}

func (m *mockPaymentRepo) byEnrollment(enrollmentID string) []model.Payment {
	var out []model.Payment
	for _, p := range m.payments {
		if p.EnrollmentID == enrollmentID {
			out = append(out, p)
		}
	}
	return out
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records     map[string]*model.Attendance
	enrollments *mockEnrollmentRepo
	err         error
}

func newMockAttendanceRepo(enrollments *mockEnrollmentRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.Attendance), enrollments: enrollments}
}

func (m *mockAttendanceRepo) hydrate(a *model.Attendance) *model.Attendance {
	cp := *a
	if e, ok := m.enrollments.enrollments[a.EnrollmentID]; ok {
		cp.Enrollment = m.enrollments.hydrate(e)
	}
	return &cp
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	if m.err != nil {
		return m.err
	}
	for _, r := range m.records {
		if r.QRCode == a.QRCode {
			return gorm.ErrDuplicatedKey
		}
		if r.EnrollmentID == a.EnrollmentID && r.WorkshopDate.Equal(a.WorkshopDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.AttendanceID == "" {
		a.AttendanceID = fmt.Sprintf("att-%d", len(m.records)+1)
	}
	if a.Version == 0 {
		a.Version = 1
	}
	cp := *a
	cp.Enrollment = nil
	m.records[a.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	if a, ok := m.records[id]; ok {
		return m.hydrate(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetByQRCode(_ context.Context, code string) (*model.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.records {
		if a.QRCode == code {
			return m.hydrate(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) QRCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.GetByQRCode(ctx, code)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *mockAttendanceRepo) ExistsForDate(_ context.Context, enrollmentID string, date time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, a := range m.records {
		if a.EnrollmentID == enrollmentID && a.WorkshopDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) sorted() []model.Attendance {
	out := make([]model.Attendance, 0, len(m.records))
	for _, a := range m.records {
		out = append(out, *m.hydrate(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkshopDate.Before(out[j].WorkshopDate) })
	return out
}

func (m *mockAttendanceRepo) List(_ context.Context, filter repository.AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []model.Attendance
	for _, a := range m.sorted() {
		if filter.EnrollmentID != "" && a.EnrollmentID != filter.EnrollmentID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.WorkshopDate != nil && !a.WorkshopDate.Equal(*filter.WorkshopDate) {
			continue
		}
		out = append(out, a)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.Attendance{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockAttendanceRepo) ListByEnrollment(_ context.Context, enrollmentID string) ([]model.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Attendance
	for _, a := range m.sorted() {
		if a.EnrollmentID == enrollmentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) AttendedEnrollmentIDs(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen := map[string]bool{}
	var ids []string
	for _, a := range m.records {
		if a.Status == model.AttendanceStatusAttended && !seen[a.EnrollmentID] {
			seen[a.EnrollmentID] = true
			ids = append(ids, a.EnrollmentID)
		}
	}
	return ids, nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, a *model.Attendance) error {
	if m.err != nil {
		return m.err
	}
	stored, ok := m.records[a.AttendanceID]
	if !ok || stored.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version++
	cp := *a
	cp.Enrollment = nil
	m.records[a.AttendanceID] = &cp
	return nil
}

// ── Mock PaymentTermsRepository ──

type mockPaymentTermsRepo struct {
	terms []*model.PaymentTerms
	err   error
}

func newMockPaymentTermsRepo() *mockPaymentTermsRepo {
	return &mockPaymentTermsRepo{}
}

func (m *mockPaymentTermsRepo) GetActive(_ context.Context) (*model.PaymentTerms, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, t := range m.terms {
		if t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentTermsRepo) Create(_ context.Context, t *model.PaymentTerms) error {
	if m.err != nil {
		return m.err
	}
	if t.IsActive {
		for _, existing := range m.terms {
			if existing.IsActive {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	t.TermsID = fmt.Sprintf("terms-%d", len(m.terms)+1)
	cp := *t
	m.terms = append(m.terms, &cp)
	return nil
}

func (m *mockPaymentTermsRepo) DeactivateActive(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	for _, t := range m.terms {
		t.IsActive = false
	}
	return nil
}

func (m *mockPaymentTermsRepo) History(_ context.Context, offset, limit int) ([]model.PaymentTerms, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []model.PaymentTerms
	for i := len(m.terms) - 1; i >= 0; i-- {
		out = append(out, *m.terms[i])
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.PaymentTerms{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ── Mock ActivityLogRepository ──

type mockActivityLogRepo struct {
	logs []model.ActivityLog
	err  error
}

func newMockActivityLogRepo() *mockActivityLogRepo {
	return &mockActivityLogRepo{}
}

func (m *mockActivityLogRepo) Create(ctx context.Context, log *model.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log.LogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockActivityLogRepo) List(_ context.Context, filter repository.ActivityLogFilter, offset, limit int) ([]model.ActivityLog, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []model.ActivityLog
	for _, l := range m.logs {
		if filter.AdminID != "" && (l.AdminID == nil || *l.AdminID != filter.AdminID) {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
			continue
		}
		if filter.FailedOnly && l.Success {
			continue
		}
		out = append(out, l)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.ActivityLog{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockActivityLogRepo) last() *model.ActivityLog {
	if len(m.logs) == 0 {
		return nil
	}
	return &m.logs[len(m.logs)-1]
}

// ── test environment ──

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	cfg         *config.Config
	repo        *repository.Repository
	admins      *mockAdminRepo
	leads       *mockLeadRepo
	shares      *mockShareEventRepo
	enrollments *mockEnrollmentRepo
	payments    *mockPaymentRepo
	attendance  *mockAttendanceRepo
	terms       *mockPaymentTermsRepo
	logs        *mockActivityLogRepo
}

func newTestEnv() *testEnv {
	leads := newMockLeadRepo()
	payments := newMockPaymentRepo()
	enrollments := newMockEnrollmentRepo(leads, payments)
	env := &testEnv{
		cfg: &config.Config{
			Server: config.ServerConfig{SiteURL: "https://workshop.example.com/"},
			Share:  config.ShareConfig{BaseURL: "https://go.example.com"},
			Auth: config.AuthConfig{
				JWTSecret:       "test-secret-key-for-unit-testing-2026",
				AccessTokenTTL:  15 * time.Minute,
				RefreshTokenTTL: 24 * time.Hour,
			},
			Revenue: config.RevenueConfig{
				EnrollmentCommissionRate: 25,
				AttendanceCommissionRate: 15,
				Currency:                 "KES",
				PayoutFrequency:          model.PayoutMonthly,
				PayoutDay:                15,
				MinimumPayoutAmount:      1000,
				Timezone:                 "UTC",
			},
		},
		admins:      newMockAdminRepo(),
		leads:       leads,
		shares:      newMockShareEventRepo(),
		enrollments: enrollments,
		payments:    payments,
		attendance:  newMockAttendanceRepo(enrollments),
		terms:       newMockPaymentTermsRepo(),
		logs:        newMockActivityLogRepo(),
	}
	env.repo = &repository.Repository{
		Admin:        env.admins,
		Lead:         env.leads,
		ShareEvent:   env.shares,
		Enrollment:   env.enrollments,
		Payment:      env.payments,
		Attendance:   env.attendance,
		PaymentTerms: env.terms,
		ActivityLog:  env.logs,
	}
	return env
}

// seedLead stores a plain lead and returns it
func (env *testEnv) seedLead(id, ageRange string) *model.Lead {
	lead := &model.Lead{
		SubmissionID: id,
		Name:         "Parent " + id,
		Whatsapp:     "+254700000000",
		AgeRange:     ageRange,
		NumberOfKids: 1,
		Source:       "direct",
		Status:       model.LeadStatusNew,
		SubmittedAt:  fixedNow,
	}
	_ = env.leads.Create(context.Background(), lead)
	return lead
}
