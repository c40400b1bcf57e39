package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
)

func setupTestEnrollmentService(env *testEnv) *enrollmentService {
	activity := NewActivityService(env.repo, zap.NewNop())
	terms := NewPaymentTermsService(env.repo, &env.cfg.Revenue, activity, zap.NewNop())
	svc := NewEnrollmentService(env.repo, terms, activity, zap.NewNop()).(*enrollmentService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func f64(v float64) *float64 { return &v }

func strp(s string) *string { return &s }

func createEnrollment(t *testing.T, svc *enrollmentService, submissionID string, total, paid float64) *dto.EnrollmentResponse {
	t.Helper()
	req := &dto.CreateEnrollmentRequest{
		SubmissionID: submissionID,
		TotalAmount:  f64(total),
		WorkshopName: "Robotics Saturday",
		Status:       model.EnrollmentStatusEnrolled,
	}
	if paid > 0 {
		req.PaidAmount = f64(paid)
	}
	resp, err := svc.Create(context.Background(), req, "admin-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return resp
}

// ── Create ──

func TestEnrollmentService_Create(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	env.seedLead("lead-a", "8-10")

	resp := createEnrollment(t, svc, "lead-a", 10000, 0)

	if resp.PaymentStatus != model.PaymentStatusUnpaid {
		t.Errorf("expected unpaid, got %s", resp.PaymentStatus)
	}
	if resp.PendingAmount != 10000 {
		t.Errorf("expected pending 10000, got %v", resp.PendingAmount)
	}
	if resp.Snapshot.Rate != 25 || resp.Snapshot.Amount != 2500 {
		t.Errorf("expected snapshot 25%%/2500, got %+v", resp.Snapshot)
	}
	if resp.Commission.EnrollmentCommission != 2500 || resp.Commission.AttendanceCommission != 0 {
		t.Errorf("unexpected commission view %+v", resp.Commission)
	}
	if resp.Currency != "KES" {
		t.Errorf("expected currency from terms, got %s", resp.Currency)
	}
	if resp.EnrollmentDate == "" {
		t.Error("enrolled status should stamp the enrollment date")
	}
	if resp.ParentName != "Parent lead-a" {
		t.Errorf("expected parent name, got %q", resp.ParentName)
	}
	if got := env.leads.leads["lead-a"].Status; got != model.LeadStatusEnrolled {
		t.Errorf("lead should move to enrolled, got %s", got)
	}
	if len(env.payments.payments) != 0 {
		t.Error("no payment row expected without an up-front amount")
	}
}

func TestEnrollmentService_Create_WithInitialPayment(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	env.seedLead("lead-a", "8-10")

	resp := createEnrollment(t, svc, "lead-a", 10000, 4000)

	if resp.PaymentStatus != model.PaymentStatusPartial {
		t.Errorf("expected partial, got %s", resp.PaymentStatus)
	}
	if resp.PendingAmount != 6000 {
		t.Errorf("expected pending 6000, got %v", resp.PendingAmount)
	}
	if len(resp.Payments) != 1 || resp.Payments[0].Amount != 4000 {
		t.Fatalf("expected one initial payment of 4000, got %+v", resp.Payments)
	}
	if resp.Payments[0].Method != model.PaymentMethodOther {
		t.Errorf("initial payment method should be other, got %s", resp.Payments[0].Method)
	}
}

func TestEnrollmentService_Create_KeepsConcurrentShareState(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	env.seedLead("lead-a", "8-10")

	env.leads.afterRead = func() {
		code := "abc123"
		env.leads.leads["lead-a"].ShareCode = &code
	}

	createEnrollment(t, svc, "lead-a", 10000, 0)

	stored := env.leads.leads["lead-a"]
	if stored.Status != model.LeadStatusEnrolled {
		t.Errorf("expected lead to be marked enrolled, got %s", stored.Status)
	}
	if stored.ShareCode == nil || *stored.ShareCode != "abc123" {
		t.Errorf("share code was overwritten: %v", stored.ShareCode)
	}
}

func TestEnrollmentService_Create_Conflicts(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	env.seedLead("lead-a", "8-10")
	createEnrollment(t, svc, "lead-a", 10000, 0)

	_, err := svc.Create(context.Background(), &dto.CreateEnrollmentRequest{
		SubmissionID: "lead-a",
		TotalAmount:  f64(5000),
	}, "admin-1")
	if !errors.Is(err, ErrEnrollmentExists) {
		t.Errorf("expected ErrEnrollmentExists, got %v", err)
	}

	_, err = svc.Create(context.Background(), &dto.CreateEnrollmentRequest{
		SubmissionID: "missing",
		TotalAmount:  f64(5000),
	}, "admin-1")
	if !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}

// ── RecordPayment / Refund ──

func TestEnrollmentService_PaymentLifecycle(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	ctx := context.Background()
	env.seedLead("lead-a", "8-10")
	createEnrollment(t, svc, "lead-a", 10000, 0)

	steps := []struct {
		amount      float64
		wantPaid    float64
		wantPending float64
		wantStatus  string
	}{
		{2500.5, 2500.5, 7499.5, model.PaymentStatusPartial},
		{7499.5, 10000, 0, model.PaymentStatusFull},
		{500, 10500, 0, model.PaymentStatusFull},
	}

	for i, st := range steps {
		resp, err := svc.RecordPayment(ctx, "lead-a", &dto.RecordPaymentRequest{
			Amount: f64(st.amount),
			Method: model.PaymentMethodMobileMoney,
		}, "admin-1")
		if err != nil {
			t.Fatalf("payment %d: %v", i, err)
		}
		if resp.PaidAmount != st.wantPaid || resp.PendingAmount != st.wantPending {
			t.Errorf("payment %d: expected paid %v pending %v, got %v/%v",
				i, st.wantPaid, st.wantPending, resp.PaidAmount, resp.PendingAmount)
		}
		if resp.PaymentStatus != st.wantStatus {
			t.Errorf("payment %d: expected %s, got %s", i, st.wantStatus, resp.PaymentStatus)
		}
		if len(resp.Payments) != i+1 {
			t.Errorf("payment %d: expected %d history rows, got %d", i, i+1, len(resp.Payments))
		}
	}

	resp, err := svc.Refund(ctx, "lead-a", &dto.RefundEnrollmentRequest{Notes: "family moved"}, "admin-1")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if resp.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("expected refunded, got %s", resp.PaymentStatus)
	}
	if resp.Notes != "Refund: family moved" {
		t.Errorf("unexpected notes %q", resp.Notes)
	}

	_, err = svc.RecordPayment(ctx, "lead-a", &dto.RecordPaymentRequest{Amount: f64(1), Method: model.PaymentMethodCash}, "admin-1")
	if !errors.Is(err, ErrEnrollmentRefunded) {
		t.Errorf("expected ErrEnrollmentRefunded after refund, got %v", err)
	}
	if _, err := svc.Refund(ctx, "lead-a", &dto.RefundEnrollmentRequest{}, "admin-1"); !errors.Is(err, ErrEnrollmentRefunded) {
		t.Errorf("expected second refund to be rejected, got %v", err)
	}
}

func TestEnrollmentService_RecordPayment_RetriesOnConflict(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	env.seedLead("lead-a", "8-10")
	createEnrollment(t, svc, "lead-a", 10000, 0)

	env.enrollments.conflicts = maxPaymentAttempts - 1
	resp, err := svc.RecordPayment(context.Background(), "lead-a", &dto.RecordPaymentRequest{
		Amount: f64(3000),
		Method: model.PaymentMethodCash,
	}, "admin-1")
	if err != nil {
		t.Fatalf("expected the last attempt to succeed, got %v", err)
	}
	if resp.PaidAmount != 3000 {
		t.Errorf("amount must be applied exactly once, got %v", resp.PaidAmount)
	}
}

func TestEnrollmentService_RecordPayment_GivesUp(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	env.seedLead("lead-a", "8-10")
	createEnrollment(t, svc, "lead-a", 10000, 0)

	env.enrollments.conflicts = maxPaymentAttempts
	_, err := svc.RecordPayment(context.Background(), "lead-a", &dto.RecordPaymentRequest{
		Amount: f64(3000),
		Method: model.PaymentMethodCash,
	}, "admin-1")
	if !errors.Is(err, ErrEnrollmentConflict) {
		t.Errorf("expected ErrEnrollmentConflict, got %v", err)
	}
	if log := env.logs.last(); log == nil || log.Success || log.Action != ActionEnrollmentPayment {
		t.Errorf("failed payment should be audited, got %+v", log)
	}
}

func TestEnrollmentService_RecordPayment_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)

	_, err := svc.RecordPayment(context.Background(), "missing", &dto.RecordPaymentRequest{
		Amount: f64(1),
		Method: model.PaymentMethodCash,
	}, "admin-1")
	if !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("expected ErrEnrollmentNotFound, got %v", err)
	}
}

// ── Update ──

func TestEnrollmentService_Update_Transitions(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	ctx := context.Background()
	env.seedLead("lead-a", "8-10")

	if _, err := svc.Create(ctx, &dto.CreateEnrollmentRequest{SubmissionID: "lead-a", TotalAmount: f64(8000)}, "admin-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Update(ctx, "lead-a", &dto.UpdateEnrollmentRequest{Status: strp(model.EnrollmentStatusCompleted)}, "admin-1")
	if !errors.Is(err, ErrEnrollmentTransition) {
		t.Fatalf("inquiry -> completed should be rejected, got %v", err)
	}

	resp, err := svc.Update(ctx, "lead-a", &dto.UpdateEnrollmentRequest{Status: strp(model.EnrollmentStatusEnrolled)}, "admin-1")
	if err != nil {
		t.Fatalf("inquiry -> enrolled: %v", err)
	}
	if resp.EnrollmentDate == "" {
		t.Error("enrollment date should be stamped")
	}

	resp, err = svc.Update(ctx, "lead-a", &dto.UpdateEnrollmentRequest{
		Status:     strp(model.EnrollmentStatusCompleted),
		PaidAmount: f64(8000),
	}, "admin-1")
	if err != nil {
		t.Fatalf("enrolled -> completed: %v", err)
	}
	if resp.CompletionDate == "" {
		t.Error("completion date should be stamped")
	}
	if resp.PaymentStatus != model.PaymentStatusFull {
		t.Errorf("payment status should be recomputed, got %s", resp.PaymentStatus)
	}
}

func TestEnrollmentService_Update_RejectsRefunded(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	ctx := context.Background()
	env.seedLead("lead-a", "8-10")
	createEnrollment(t, svc, "lead-a", 10000, 5000)

	if _, err := svc.Update(ctx, "lead-a", &dto.UpdateEnrollmentRequest{Status: strp(model.EnrollmentStatusEnrolled)}, "admin-1"); err != nil {
		t.Fatalf("inquiry -> enrolled: %v", err)
	}
	if _, err := svc.Refund(ctx, "lead-a", &dto.RefundEnrollmentRequest{}, "admin-1"); err != nil {
		t.Fatalf("Refund: %v", err)
	}

	_, err := svc.Update(ctx, "lead-a", &dto.UpdateEnrollmentRequest{
		Status:     strp(model.EnrollmentStatusCompleted),
		PaidAmount: f64(0),
	}, "admin-1")
	if !errors.Is(err, ErrEnrollmentRefunded) {
		t.Fatalf("expected ErrEnrollmentRefunded, got %v", err)
	}

	got, err := svc.Get(ctx, "lead-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status == model.EnrollmentStatusCompleted {
		t.Error("refunded enrollment must keep its status")
	}
	if got.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("expected payment status refunded, got %s", got.PaymentStatus)
	}
}

func TestEnrollmentService_Update_StaleVersion(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	env.seedLead("lead-a", "8-10")
	createEnrollment(t, svc, "lead-a", 10000, 0)

	env.enrollments.conflicts = 1
	_, err := svc.Update(context.Background(), "lead-a", &dto.UpdateEnrollmentRequest{Notes: strp("x")}, "admin-1")
	if !errors.Is(err, ErrEnrollmentConflict) {
		t.Errorf("expected ErrEnrollmentConflict, got %v", err)
	}
}

// ── commission views ──

func TestEnrollmentService_CommissionViews(t *testing.T) {
	env := newTestEnv()
	svc := setupTestEnrollmentService(env)
	ctx := context.Background()
	env.seedLead("lead-a", "8-10")
	created := createEnrollment(t, svc, "lead-a", 10000, 0)

	// terms change after creation: the snapshot keeps the old rate
	_ = env.terms.Create(ctx, &model.PaymentTerms{
		EnrollmentCommissionRate: decimal.NewFromInt(30),
		AttendanceCommissionRate: decimal.NewFromInt(15),
		Currency:                 "KES",
		PayoutFrequency:          model.PayoutMonthly,
		PayoutDay:                1,
		IsActive:                 true,
	})
	_ = env.attendance.Create(ctx, &model.Attendance{
		EnrollmentID: created.ID,
		WorkshopDate: fixedNow,
		QRCode:       "AAAAAAAAAAAAAAAAAAAA",
		Status:       model.AttendanceStatusAttended,
	})

	resp, err := svc.Get(ctx, "lead-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Snapshot.Rate != 25 || resp.Snapshot.Amount != 2500 {
		t.Errorf("snapshot should not move, got %+v", resp.Snapshot)
	}
	if !resp.Attended {
		t.Error("enrollment should be marked attended")
	}
	want := dto.CommissionView{
		EnrollmentRate:       30,
		EnrollmentCommission: 3000,
		AttendanceRate:       15,
		AttendanceCommission: 1500,
		Total:                4500,
	}
	if resp.Commission != want {
		t.Errorf("expected %+v, got %+v", want, resp.Commission)
	}

	list, total, err := svc.List(ctx, &dto.EnrollmentListRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || list[0].Commission != want {
		t.Errorf("list should carry the same commission view, got %+v", list)
	}
}

func TestCommissionView_RoundsAfterSumming(t *testing.T) {
	terms := &model.PaymentTerms{
		EnrollmentCommissionRate: decimal.RequireFromString("12.5"),
		AttendanceCommissionRate: decimal.RequireFromString("12.5"),
	}
	// 33.33 × 12.5% = 4.16625 for each part; 8.3325 rounds to 8.33, per-part rounding would give 8.34
	got := commissionView(decimal.RequireFromString("33.33"), terms, true)
	if got.EnrollmentCommission != 4.17 || got.AttendanceCommission != 4.17 {
		t.Errorf("unexpected parts %+v", got)
	}
	if got.Total != 8.33 {
		t.Errorf("expected total 8.33, got %v", got.Total)
	}
}
