package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"workshop-funnel/internal/model"
)

func setupTestRevenueService(env *testEnv) *revenueService {
	activity := NewActivityService(env.repo, zap.NewNop())
	terms := NewPaymentTermsService(env.repo, &env.cfg.Revenue, activity, zap.NewNop())
	svc := NewRevenueService(env.repo, terms, &env.cfg.Revenue, zap.NewNop()).(*revenueService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (env *testEnv) activeTerms(enrollRate, attendRate string, tax, minimum *decimal.Decimal) {
	t := &model.PaymentTerms{
		EnrollmentCommissionRate: decimal.RequireFromString(enrollRate),
		AttendanceCommissionRate: decimal.RequireFromString(attendRate),
		Currency:                 "KES",
		PayoutFrequency:          model.PayoutMonthly,
		PayoutDay:                15,
		IsActive:                 true,
	}
	if tax != nil {
		t.TaxRate = decimal.NewNullDecimal(*tax)
	}
	if minimum != nil {
		t.MinimumPayoutAmount = decimal.NewNullDecimal(*minimum)
	}
	_ = env.terms.DeactivateActive(context.Background())
	_ = env.terms.Create(context.Background(), t)
}

func (env *testEnv) seedPricedEnrollment(leadID, ageRange, total, paid string) string {
	env.seedLead(leadID, ageRange)
	e := &model.Enrollment{
		SubmissionID: leadID,
		Status:       model.EnrollmentStatusEnrolled,
		TotalAmount:  decimal.RequireFromString(total),
		PaidAmount:   decimal.RequireFromString(paid),
	}
	_ = env.enrollments.Create(context.Background(), e)
	return e.EnrollmentID
}

func (env *testEnv) markAttended(enrollmentID string, day int) {
	_ = env.attendance.Create(context.Background(), &model.Attendance{
		EnrollmentID: enrollmentID,
		WorkshopDate: fixedNow.AddDate(0, 0, day),
		QRCode:       fmt.Sprintf("%020d", len(env.attendance.records)+1),
		Status:       model.AttendanceStatusAttended,
	})
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRevenueService_Metrics_Commission(t *testing.T) {
	env := newTestEnv()
	svc := setupTestRevenueService(env)
	env.activeTerms("25", "15", nil, nil)

	attended := env.seedPricedEnrollment("lead-a", "8-10", "10000", "10000")
	env.seedPricedEnrollment("lead-b", "5-7", "6000", "1000")
	// several attended sessions still earn the attendance rate once
	env.markAttended(attended, 0)
	env.markAttended(attended, 7)

	m, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"contract value", m.TotalContractValue, 16000},
		{"paid", m.TotalPaid, 11000},
		{"pending", m.TotalPending, 5000},
		{"enrollment commission", m.EnrollmentCommission, 4000},
		{"attendance commission", m.AttendanceCommission, 1500},
		{"total revenue", m.TotalRevenue, 5500},
		{"net revenue", m.NetRevenue, 5500},
		{"tax", m.TaxAmount, 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
	if m.AttendedEnrollments != 1 {
		t.Errorf("expected 1 attended enrollment, got %d", m.AttendedEnrollments)
	}
	if m.ByAgeRange["8-10"].Amount != 10000 || m.ByAgeRange["5-7"].Count != 1 {
		t.Errorf("unexpected age breakdown %+v", m.ByAgeRange)
	}
	if m.ByPaymentStatus[model.PaymentStatusFull].Count != 1 || m.ByPaymentStatus[model.PaymentStatusPartial].Count != 1 {
		t.Errorf("unexpected payment breakdown %+v", m.ByPaymentStatus)
	}
	if m.Terms.IsDefault {
		t.Error("stored terms should not be reported as defaults")
	}
}

func TestRevenueService_Metrics_RoundsAfterSumming(t *testing.T) {
	env := newTestEnv()
	svc := setupTestRevenueService(env)
	env.activeTerms("12.5", "0", nil, nil)

	for _, id := range []string{"lead-a", "lead-b", "lead-c"} {
		env.seedPricedEnrollment(id, "8-10", "33.33", "0")
	}

	m, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	// 3 × 4.16625 = 12.49875; rounding each term first would give 12.51
	if m.EnrollmentCommission != 12.5 || m.TotalRevenue != 12.5 {
		t.Errorf("expected 12.50, got %v / %v", m.EnrollmentCommission, m.TotalRevenue)
	}
}

func TestRevenueService_Metrics_TaxAndPayoutThreshold(t *testing.T) {
	tests := []struct {
		name        string
		minimum     *decimal.Decimal
		wantPending float64
	}{
		{"below minimum", dec("3000"), 0},
		{"equal to minimum", dec("2500"), 2500},
		{"no minimum", nil, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			svc := setupTestRevenueService(env)
			env.activeTerms("25", "15", dec("16"), tt.minimum)
			env.seedPricedEnrollment("lead-a", "8-10", "10000", "0")

			m, err := svc.Metrics(context.Background())
			if err != nil {
				t.Fatalf("Metrics: %v", err)
			}
			if m.TaxAmount != 400 || m.NetRevenue != 2100 {
				t.Errorf("expected tax 400 net 2100, got %v/%v", m.TaxAmount, m.NetRevenue)
			}
			if m.PendingPayout != tt.wantPending {
				t.Errorf("expected pending payout %v, got %v", tt.wantPending, m.PendingPayout)
			}
		})
	}
}

func TestRevenueService_Metrics_DefaultTerms(t *testing.T) {
	env := newTestEnv()
	svc := setupTestRevenueService(env)
	env.seedPricedEnrollment("lead-a", "8-10", "10000", "0")

	m, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if !m.Terms.IsDefault {
		t.Error("configured defaults should be flagged")
	}
	if m.EnrollmentCommission != 2500 {
		t.Errorf("expected default 25%% commission, got %v", m.EnrollmentCommission)
	}
	// 2500 clears the configured 1000 minimum
	if m.PendingPayout != 2500 {
		t.Errorf("expected pending payout 2500, got %v", m.PendingPayout)
	}
	if m.NextPayoutDate != "2026-03-15" {
		t.Errorf("expected next payout 2026-03-15, got %s", m.NextPayoutDate)
	}
}

func TestRevenueService_Metrics_Empty(t *testing.T) {
	env := newTestEnv()
	svc := setupTestRevenueService(env)

	m, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.TotalEnrollments != 0 || m.TotalRevenue != 0 || m.PendingPayout != 0 {
		t.Errorf("expected zero metrics, got %+v", m)
	}
}

func TestRevenueService_Metrics_StoreError(t *testing.T) {
	env := newTestEnv()
	env.enrollments.err = errors.New("down")
	svc := setupTestRevenueService(env)

	if _, err := svc.Metrics(context.Background()); err == nil {
		t.Error("expected store error")
	}
}

func TestNextPayoutDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 10, 30, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		now       time.Time
		frequency string
		payoutDay int
		want      string
	}{
		{"monthly later this month", day(2026, 3, 10), model.PayoutMonthly, 15, "2026-03-15"},
		{"monthly on the day", day(2026, 3, 15), model.PayoutMonthly, 15, "2026-03-15"},
		{"monthly passed", day(2026, 3, 20), model.PayoutMonthly, 15, "2026-04-15"},
		{"monthly clamps to february", day(2026, 2, 10), model.PayoutMonthly, 31, "2026-02-28"},
		{"monthly rolls into short month", day(2026, 1, 31), model.PayoutMonthly, 30, "2026-02-28"},
		{"monthly rolls over year end", day(2026, 12, 20), model.PayoutMonthly, 5, "2027-01-05"},
		{"weekly next monday", day(2026, 3, 10), model.PayoutWeekly, 1, "2026-03-16"},
		{"weekly same weekday is next week", day(2026, 3, 10), model.PayoutWeekly, 2, "2026-03-17"},
		{"biweekly", day(2026, 3, 10), model.PayoutBiweekly, 2, "2026-03-24"},
		{"quarterly", day(2026, 3, 10), model.PayoutQuarterly, 1, "2026-04-01"},
		{"quarterly first month", day(2026, 4, 1), model.PayoutQuarterly, 1, "2026-07-01"},
		{"quarterly year end", day(2026, 11, 5), model.PayoutQuarterly, 1, "2027-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPayoutDate(tt.now, tt.frequency, tt.payoutDay).Format("2006-01-02")
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNextPayoutDate_UsesLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	// 22:00 UTC on the 14th is already the 15th in Nairobi
	now := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC).In(nairobi)

	got := NextPayoutDate(now, model.PayoutMonthly, 14)
	if got.Format("2006-01-02") != "2026-04-14" {
		t.Errorf("expected 2026-04-14, got %s", got.Format("2006-01-02"))
	}
}

func TestNewRevenueService_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	env := newTestEnv()
	env.cfg.Revenue.Timezone = "Mars/Olympus_Mons"
	core, logs := observer.New(zapcore.WarnLevel)

	activity := NewActivityService(env.repo, zap.NewNop())
	terms := NewPaymentTermsService(env.repo, &env.cfg.Revenue, activity, zap.NewNop())
	svc := NewRevenueService(env.repo, terms, &env.cfg.Revenue, zap.New(core)).(*revenueService)

	if svc.loc != time.UTC {
		t.Errorf("expected UTC fallback, got %s", svc.loc)
	}
	if logs.FilterField(zap.String("timezone", "Mars/Olympus_Mons")).Len() != 1 {
		t.Errorf("expected one warning naming the timezone, got %d entries", logs.Len())
	}
}
