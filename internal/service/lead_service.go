package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
	"workshop-funnel/pkg/metrics"
)

// ── lead errors ──

var (
	ErrLeadNotFound      = errors.New("submission not found")
	ErrLeadHasEnrollment = errors.New("submission has an enrollment and cannot be deleted")
)

const (
	msgLeadReceived  = "Thank you! We'll reach out on WhatsApp shortly."
	msgLeadDuplicate = "We already have your details and will be in touch soon."
)

// LeadService lead intake and management
type LeadService interface {
	Submit(ctx context.Context, req *dto.SubmitLeadRequest) (*dto.SubmitLeadResponse, error)
	List(ctx context.Context, req *dto.LeadListRequest) ([]dto.LeadResponse, int64, error)
	Get(ctx context.Context, id string) (*dto.LeadResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateLeadRequest, callerID string) (*dto.LeadResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Stats never fails; store errors yield a zeroed payload.
	Stats(ctx context.Context) *dto.LeadStatsResponse
}

type leadService struct {
	repo     *repository.Repository
	activity ActivityService
	now      func() time.Time
	logger   *zap.Logger
}

// NewLeadService creates a LeadService
func NewLeadService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) LeadService {
	return &leadService{
		repo:     repo,
		activity: activity,
		now:      time.Now,
		logger:   logger,
	}
}

// ────────────────────── Submit ──────────────────────

func (s *leadService) Submit(ctx context.Context, req *dto.SubmitLeadRequest) (*dto.SubmitLeadResponse, error) {
	lead := &model.Lead{
		Name:         strings.TrimSpace(req.Name),
		Whatsapp:     strings.TrimSpace(req.Whatsapp),
		AgeRange:     req.AgeRange,
		NumberOfKids: 1,
		Source:       strings.TrimSpace(req.Source),
		SessionID:    strPtr(strings.TrimSpace(req.SessionID)),
		Status:       model.LeadStatusNew,
		SubmittedAt:  s.now().UTC(),
	}
	if req.NumberOfKids != nil {
		lead.NumberOfKids = *req.NumberOfKids
	}
	if lead.Source == "" {
		lead.Source = "direct"
	}

	var err error
	if lead.SessionID == nil {
		err = s.repo.Lead.Create(ctx, lead)
	} else {
		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			return s.createWithDuplicateCheck(ctx, tx, lead)
		})
	}
	if err != nil {
		s.logger.Error("store lead submission failed", zap.Error(err))
		return nil, err
	}

	metrics.LeadsSubmitted.WithLabelValues(strconv.FormatBool(lead.IsDuplicate)).Inc()

	msg := msgLeadReceived
	if lead.IsDuplicate {
		msg = msgLeadDuplicate
	}
	return &dto.SubmitLeadResponse{
		ID:          lead.SubmissionID,
		IsDuplicate: lead.IsDuplicate,
		Message:     msg,
	}, nil
}

// createWithDuplicateCheck links lead to an earlier submission from the same session with the
// same name and number. The original row stays locked until the transaction ends.
func (s *leadService) createWithDuplicateCheck(ctx context.Context, tx *repository.Repository, lead *model.Lead) error {
	original, err := tx.Lead.FindOriginal(ctx, *lead.SessionID, lead.Name, lead.Whatsapp)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if original != nil {
		lead.IsDuplicate = true
		lead.DuplicateOf = &original.SubmissionID
	}

	if err := tx.Lead.Create(ctx, lead); err != nil {
		return err
	}
	if original == nil {
		return nil
	}

	original.AddDuplicate(lead.SubmissionID)
	return tx.Lead.Update(ctx, original)
}

// ────────────────────── List ──────────────────────

func (s *leadService) List(ctx context.Context, req *dto.LeadListRequest) ([]dto.LeadResponse, int64, error) {
	filter := repository.LeadFilter{
		Status:   req.Status,
		AgeRange: req.AgeRange,
		Source:   req.Source,
		Sort:     req.Sort,
	}
	leads, total, err := s.repo.Lead.List(ctx, filter, req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("list leads failed", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, 0, len(leads))
	for i := range leads {
		ids = append(ids, leads[i].SubmissionID)
	}
	counts, err := s.repo.ShareEvent.CountsByLeads(ctx, ids)
	if err != nil {
		s.logger.Error("load share counters failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		result = append(result, toLeadResponse(&leads[i], counts[leads[i].SubmissionID]))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *leadService) Get(ctx context.Context, id string) (*dto.LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.ShareEvent.CountsByLead(ctx, id)
	if err != nil {
		s.logger.Error("load share counters failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toLeadResponse(lead, counts)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *leadService) Update(ctx context.Context, id string, req *dto.UpdateLeadRequest, callerID string) (*dto.LeadResponse, error) {
	changes := map[string]interface{}{}

	// the row lock keeps concurrent share tracking and duplicate linking from being overwritten
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		lead, err := tx.Lead.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return err
		}

		if req.Status != nil {
			lead.Status = *req.Status
			changes["status"] = *req.Status
		}
		if req.Notes != nil {
			lead.Notes = *req.Notes
			changes["notes"] = true
		}
		var added []string
		for _, p := range req.SharedToAppend {
			if lead.AddSharedTo(strings.ToLower(p)) {
				added = append(added, strings.ToLower(p))
			}
		}
		if len(added) > 0 {
			changes["sharedTo"] = added
		}

		return tx.Lead.Update(ctx, lead)
	})
	if errors.Is(err, ErrLeadNotFound) {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionLeadUpdate,
		ResourceType: ResourceLead,
		ResourceID:   id,
		Details:      changes,
		Err:          err,
	})
	if err != nil {
		s.logger.Error("update lead failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.Get(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *leadService) Delete(ctx context.Context, id string, callerID string) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		lead, err := tx.Lead.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return err
		}

		enrolled, err := tx.Enrollment.ExistsForSubmission(ctx, id)
		if err != nil {
			return err
		}
		if enrolled {
			return ErrLeadHasEnrollment
		}

		// duplicates of this lead become standalone
		if err := tx.Lead.ClearDuplicateOf(ctx, id); err != nil {
			return err
		}

		if lead.DuplicateOf != nil {
			original, err := tx.Lead.GetByIDForUpdate(ctx, *lead.DuplicateOf)
			switch {
			case err == nil:
				original.RemoveDuplicate(id)
				if err := tx.Lead.Update(ctx, original); err != nil {
					return err
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		return tx.Lead.Delete(ctx, id)
	})

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionLeadDelete,
		ResourceType: ResourceLead,
		ResourceID:   id,
		Err:          err,
	})
	if err != nil && !errors.Is(err, ErrLeadNotFound) && !errors.Is(err, ErrLeadHasEnrollment) {
		s.logger.Error("delete lead failed", zap.String("id", id), zap.Error(err))
	}
	return err
}

// ────────────────────── Stats ──────────────────────

func (s *leadService) Stats(ctx context.Context) *dto.LeadStatsResponse {
	resp := emptyLeadStats()

	total, err := s.repo.Lead.Count(ctx)
	if err != nil {
		s.logger.Warn("lead stats unavailable", zap.Error(err))
		return resp
	}
	byStatus, err := s.repo.Lead.CountByStatus(ctx)
	if err != nil {
		s.logger.Warn("lead stats unavailable", zap.Error(err))
		return resp
	}
	byAge, err := s.repo.Lead.CountByAgeRange(ctx)
	if err != nil {
		s.logger.Warn("lead stats unavailable", zap.Error(err))
		return resp
	}

	resp.TotalSubmissions = total
	for k, v := range byStatus {
		resp.ByStatus[k] = v
	}
	for k, v := range byAge {
		resp.ByAgeRange[k] = v
	}
	return resp
}

func emptyLeadStats() *dto.LeadStatsResponse {
	resp := &dto.LeadStatsResponse{
		ByStatus:   map[string]int64{},
		ByAgeRange: map[string]int64{},
	}
	for _, st := range []string{model.LeadStatusNew, model.LeadStatusContacted, model.LeadStatusEnrolled, model.LeadStatusNoResponse} {
		resp.ByStatus[st] = 0
	}
	for _, ar := range model.AgeRanges {
		resp.ByAgeRange[ar] = 0
	}
	return resp
}

// ── helpers ──

func (s *leadService) getLead(ctx context.Context, id string) (*model.Lead, error) {
	lead, err := s.repo.Lead.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		s.logger.Error("load lead failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return lead, nil
}

func toLeadResponse(l *model.Lead, counts model.ShareCounts) dto.LeadResponse {
	dups := []string(l.DuplicateSubmissions)
	if dups == nil {
		dups = []string{}
	}
	shared := []string(l.SharedTo)
	if shared == nil {
		shared = []string{}
	}
	return dto.LeadResponse{
		ID:                   l.SubmissionID,
		Name:                 l.Name,
		Whatsapp:             l.Whatsapp,
		AgeRange:             l.AgeRange,
		NumberOfKids:         l.NumberOfKids,
		Source:               l.Source,
		SessionID:            derefStr(l.SessionID),
		Status:               l.Status,
		Notes:                l.Notes,
		IsDuplicate:          l.IsDuplicate,
		DuplicateOf:          derefStr(l.DuplicateOf),
		HasDuplicates:        l.HasDuplicates,
		DuplicateSubmissions: dups,
		ShareCode:            derefStr(l.ShareCode),
		SharedTo:             shared,
		Shares: dto.ShareCounts{
			Clicks:  counts.Clicks,
			Intents: counts.Intents,
			Visits:  counts.Visits,
		},
		SubmittedAt: formatTime(l.SubmittedAt),
		UpdatedAt:   formatTime(l.UpdatedAt),
	}
}
