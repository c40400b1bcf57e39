package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"workshop-funnel/config"
	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
)

// RevenueService commission and payout reporting
type RevenueService interface {
	Metrics(ctx context.Context) (*dto.RevenueMetricsResponse, error)
}

type revenueService struct {
	repo   *repository.Repository
	terms  PaymentTermsService
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewRevenueService creates a RevenueService. Payout dates are projected in cfg.Timezone.
func NewRevenueService(repo *repository.Repository, terms PaymentTermsService, cfg *config.RevenueConfig, logger *zap.Logger) RevenueService {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown revenue timezone, projecting payout dates in UTC",
			zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}
	return &revenueService{
		repo:   repo,
		terms:  terms,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

type breakdownEntry struct {
	count  int64
	amount decimal.Decimal
}

// breakdown accumulates unrounded amounts per key
type breakdown map[string]*breakdownEntry

func (b breakdown) add(key string, amount decimal.Decimal) {
	e, ok := b[key]
	if !ok {
		e = &breakdownEntry{}
		b[key] = e
	}
	e.count++
	e.amount = e.amount.Add(amount)
}

func (b breakdown) toDTO() map[string]dto.BreakdownEntry {
	out := make(map[string]dto.BreakdownEntry, len(b))
	for k, e := range b {
		out[k] = dto.BreakdownEntry{Count: e.count, Amount: toFloat(round2(e.amount))}
	}
	return out
}

// ────────────────────── Metrics ──────────────────────

func (s *revenueService) Metrics(ctx context.Context) (*dto.RevenueMetricsResponse, error) {
	terms, isDefault, err := s.terms.Current(ctx)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListAll(ctx)
	if err != nil {
		s.logger.Error("load enrollments for revenue failed", zap.Error(err))
		return nil, err
	}

	attendedIDs, err := s.repo.Attendance.AttendedEnrollmentIDs(ctx)
	if err != nil {
		s.logger.Error("load attended enrollments failed", zap.Error(err))
		return nil, err
	}
	attended := make(map[string]struct{}, len(attendedIDs))
	for _, id := range attendedIDs {
		attended[id] = struct{}{}
	}

	var (
		contract, paid, pending decimal.Decimal
		enrollRaw, attendRaw    decimal.Decimal
		attendedCount           int64
		byStatus                = breakdown{}
		byPaymentStatus         = breakdown{}
		byAgeRange              = breakdown{}
	)

	for i := range enrollments {
		e := &enrollments[i]
		contract = contract.Add(e.TotalAmount)
		paid = paid.Add(e.PaidAmount)
		pending = pending.Add(e.PendingAmount)

		enrollRaw = enrollRaw.Add(percentOf(e.TotalAmount, terms.EnrollmentCommissionRate))
		// each enrollment earns the attendance rate once, however many sessions were attended
		if _, ok := attended[e.EnrollmentID]; ok {
			attendRaw = attendRaw.Add(percentOf(e.TotalAmount, terms.AttendanceCommissionRate))
			attendedCount++
		}

		byStatus.add(e.Status, e.TotalAmount)
		byPaymentStatus.add(e.PaymentStatus, e.TotalAmount)
		ageRange := "unknown"
		if e.Lead != nil {
			ageRange = e.Lead.AgeRange
		}
		byAgeRange.add(ageRange, e.TotalAmount)
	}

	totalRaw := enrollRaw.Add(attendRaw)
	totalRevenue := round2(totalRaw)

	taxAmount, netRevenue := decimal.Zero, totalRevenue
	if terms.TaxRate.Valid {
		taxRaw := percentOf(totalRaw, terms.TaxRate.Decimal)
		taxAmount = round2(taxRaw)
		netRevenue = round2(totalRaw.Sub(taxRaw))
	}

	minimum := decimal.Zero
	if terms.MinimumPayoutAmount.Valid {
		minimum = terms.MinimumPayoutAmount.Decimal
	}
	pendingPayout := decimal.Zero
	if totalRevenue.GreaterThanOrEqual(minimum) {
		pendingPayout = totalRevenue
	}

	now := s.now().In(s.loc)
	termsResp := toPaymentTermsResponse(terms)
	termsResp.IsDefault = isDefault

	return &dto.RevenueMetricsResponse{
		Currency:             terms.Currency,
		TotalEnrollments:     int64(len(enrollments)),
		TotalContractValue:   toFloat(round2(contract)),
		TotalPaid:            toFloat(round2(paid)),
		TotalPending:         toFloat(round2(pending)),
		EnrollmentCommission: toFloat(round2(enrollRaw)),
		AttendanceCommission: toFloat(round2(attendRaw)),
		TotalRevenue:         toFloat(totalRevenue),
		TaxAmount:            toFloat(taxAmount),
		NetRevenue:           toFloat(netRevenue),
		PendingPayout:        toFloat(pendingPayout),
		MinimumPayoutAmount:  toFloat(minimum),
		NextPayoutDate:       NextPayoutDate(now, terms.PayoutFrequency, terms.PayoutDay).Format("2006-01-02"),
		AttendedEnrollments:  attendedCount,
		ByStatus:             byStatus.toDTO(),
		ByPaymentStatus:      byPaymentStatus.toDTO(),
		ByAgeRange:           byAgeRange.toDTO(),
		Terms:                termsResp,
		GeneratedAt:          formatTime(s.now()),
	}, nil
}

// NextPayoutDate projects the next payout day on or after now's calendar date, in now's location.
//   - weekly: next occurrence of weekday payoutDay (0 = Sunday), strictly after today
//   - biweekly: today + 14 days
//   - monthly: payoutDay of this month, or of next month once it has passed; clamped to month length
//   - quarterly: the 1st of the next quarter-start month
func NextPayoutDate(now time.Time, frequency string, payoutDay int) time.Time {
	y, m, d := now.Date()
	loc := now.Location()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch frequency {
	case model.PayoutWeekly:
		diff := (payoutDay - int(today.Weekday()) + 7) % 7
		if diff == 0 {
			diff = 7
		}
		return today.AddDate(0, 0, diff)
	case model.PayoutBiweekly:
		return today.AddDate(0, 0, 14)
	case model.PayoutQuarterly:
		next := ((int(m)-1)/3+1)*3 + 1
		return time.Date(y, time.Month(next), 1, 0, 0, 0, 0, loc)
	default:
		candidate := time.Date(y, m, clampDay(y, m, payoutDay), 0, 0, 0, 0, loc)
		if candidate.Before(today) {
			ny, nm, _ := time.Date(y, m+1, 1, 0, 0, 0, 0, loc).Date()
			candidate = time.Date(ny, nm, clampDay(ny, nm, payoutDay), 0, 0, 0, 0, loc)
		}
		return candidate
	}
}

func clampDay(y int, m time.Month, day int) int {
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 {
		return 1
	}
	if day > last {
		return last
	}
	return day
}
