package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-funnel/config"
	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
	"workshop-funnel/pkg/metrics"
)

// ── share errors ──

var (
	ErrShareCodeCollision = errors.New("could not allocate a share code, please retry")
)

const (
	// repeat presses of the same button from the same address inside this window are ignored
	shareDedupWindow  = 5 * time.Second
	shareCodeLength   = 6
	shareCodeAttempts = 5
	shareCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// ShareService referral link tracking
type ShareService interface {
	TrackShare(ctx context.Context, leadID string, req *dto.TrackShareRequest, ip string) (*dto.TrackShareResponse, error)
	// Redirect records a visit and returns the landing URL; unknown codes resolve to the site root.
	Redirect(ctx context.Context, code, ip, userAgent string) string
	// Stats never fails; unknown leads and store errors yield zero counters.
	Stats(ctx context.Context, leadID string) dto.ShareCounts
	Analytics(ctx context.Context) (*dto.ShareAnalyticsResponse, error)
}

type shareService struct {
	repo      *repository.Repository
	siteURL   string
	shareBase string
	now       func() time.Time
	newCode   func() (string, error)
	logger    *zap.Logger
}

// NewShareService creates a ShareService
func NewShareService(repo *repository.Repository, cfg *config.Config, logger *zap.Logger) ShareService {
	return &shareService{
		repo:      repo,
		siteURL:   strings.TrimRight(cfg.Server.SiteURL, "/"),
		shareBase: strings.TrimRight(cfg.Share.BaseURL, "/"),
		now:       time.Now,
		newCode:   randomShareCode,
		logger:    logger,
	}
}

// ────────────────────── TrackShare ──────────────────────

func (s *shareService) TrackShare(ctx context.Context, leadID string, req *dto.TrackShareRequest, ip string) (*dto.TrackShareResponse, error) {
	now := s.now()
	platform := strings.ToLower(req.Platform)
	duplicate := false
	var shareCode string

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		lead, err := tx.Lead.GetByIDForUpdate(ctx, leadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return err
		}

		if lead.IsRepeatShare(ip, platform, now, shareDedupWindow) {
			duplicate = true
			shareCode = derefStr(lead.ShareCode)
			return nil
		}

		if lead.ShareCode == nil {
			code, err := s.allocateShareCode(ctx, tx)
			if err != nil {
				return err
			}
			lead.ShareCode = &code
		}
		shareCode = *lead.ShareCode

		events := []*model.ShareEvent{
			{LeadID: leadID, Kind: model.ShareKindClick, Platform: platform, ShareCode: shareCode, IP: ip, CreatedAt: now.UTC()},
			{LeadID: leadID, Kind: model.ShareKindIntent, Platform: platform, ShareCode: shareCode, IP: ip, CreatedAt: now.UTC()},
		}
		if err := tx.ShareEvent.Create(ctx, events...); err != nil {
			return err
		}

		at := now.UTC()
		lead.LastSharePlatform = &platform
		lead.LastShareIP = &ip
		lead.LastShareAt = &at
		lead.AddSharedTo(platform)
		return tx.Lead.Update(ctx, lead)
	})
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			return nil, err
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrShareCodeCollision
		}
		s.logger.Error("track share failed", zap.String("lead_id", leadID), zap.Error(err))
		return nil, err
	}

	if duplicate {
		metrics.ShareDuplicates.Inc()
	} else {
		metrics.ShareEvents.WithLabelValues(model.ShareKindClick).Inc()
		metrics.ShareEvents.WithLabelValues(model.ShareKindIntent).Inc()
	}

	return &dto.TrackShareResponse{
		ShareCode: shareCode,
		ShareURL:  s.shareURL(shareCode),
		Duplicate: duplicate,
		Counts:    s.Stats(ctx, leadID),
	}, nil
}

// allocateShareCode checks a bounded number of candidates; the unique index catches the rest
func (s *shareService) allocateShareCode(ctx context.Context, tx *repository.Repository) (string, error) {
	var code string
	for i := 0; i < shareCodeAttempts; i++ {
		var err error
		code, err = s.newCode()
		if err != nil {
			return "", err
		}
		exists, err := tx.Lead.ShareCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	s.logger.Warn("share code collisions exhausted, using last candidate", zap.String("code", code))
	return code, nil
}

func (s *shareService) shareURL(code string) string {
	if code == "" {
		return ""
	}
	return s.shareBase + "/s/" + code
}

// ────────────────────── Redirect ──────────────────────

func (s *shareService) Redirect(ctx context.Context, code, ip, userAgent string) string {
	root := s.siteURL + "/"

	code = strings.ToLower(strings.TrimSpace(code))
	if !validShareCode(code) {
		return root
	}

	lead, err := s.repo.Lead.GetByShareCode(ctx, code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("resolve share code failed", zap.String("code", code), zap.Error(err))
		}
		return root
	}

	userAgent = truncateRunes(strings.ToValidUTF8(userAgent, ""), maxUserAgentLen)
	visit := &model.ShareEvent{
		LeadID:    lead.SubmissionID,
		Kind:      model.ShareKindVisit,
		ShareCode: code,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.ShareEvent.Create(ctx, visit); err != nil {
		s.logger.Error("record share visit failed", zap.String("code", code), zap.Error(err))
	} else {
		metrics.ShareEvents.WithLabelValues(model.ShareKindVisit).Inc()
	}

	return root + "?ref=" + url.QueryEscape(lead.SubmissionID)
}

// ────────────────────── Stats ──────────────────────

func (s *shareService) Stats(ctx context.Context, leadID string) dto.ShareCounts {
	counts, err := s.repo.ShareEvent.CountsByLead(ctx, leadID)
	if err != nil {
		s.logger.Warn("share stats unavailable", zap.String("lead_id", leadID), zap.Error(err))
		return dto.ShareCounts{}
	}
	return toShareCountsDTO(counts)
}

// ────────────────────── Analytics ──────────────────────

func (s *shareService) Analytics(ctx context.Context) (*dto.ShareAnalyticsResponse, error) {
	total, err := s.repo.Lead.Count(ctx)
	if err != nil {
		s.logger.Error("analytics: count leads failed", zap.Error(err))
		return nil, err
	}
	duplicates, err := s.repo.Lead.CountDuplicates(ctx)
	if err != nil {
		s.logger.Error("analytics: count duplicates failed", zap.Error(err))
		return nil, err
	}
	byStatus, err := s.repo.Lead.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("analytics: count by status failed", zap.Error(err))
		return nil, err
	}
	bySource, err := s.repo.Lead.CountBySource(ctx)
	if err != nil {
		s.logger.Error("analytics: count by source failed", zap.Error(err))
		return nil, err
	}
	totals, err := s.repo.ShareEvent.Totals(ctx)
	if err != nil {
		s.logger.Error("analytics: share totals failed", zap.Error(err))
		return nil, err
	}
	byPlatform, err := s.repo.ShareEvent.TotalsByPlatform(ctx)
	if err != nil {
		s.logger.Error("analytics: share totals by platform failed", zap.Error(err))
		return nil, err
	}

	platforms := make(map[string]dto.ShareCounts, len(byPlatform))
	for p, c := range byPlatform {
		platforms[p] = toShareCountsDTO(c)
	}

	return &dto.ShareAnalyticsResponse{
		TotalLeads:     total,
		DuplicateLeads: duplicates,
		ByStatus:       byStatus,
		BySource:       bySource,
		ConversionRate: percentage(byStatus[model.LeadStatusEnrolled], total-duplicates),
		Shares:         toShareCountsDTO(totals),
		ByPlatform:     platforms,
		VisitRate:      percentage(totals.Visits, totals.Intents),
	}, nil
}

// ── helpers ──

// percentage part/whole × 100 to two places; 0 when whole is 0
func percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}

func toShareCountsDTO(c model.ShareCounts) dto.ShareCounts {
	return dto.ShareCounts{Clicks: c.Clicks, Intents: c.Intents, Visits: c.Visits}
}

func validShareCode(code string) bool {
	if len(code) != shareCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(shareCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// randomShareCode draws from crypto/rand; the modulo bias over 36 symbols is negligible here
func randomShareCode() (string, error) {
	buf := make([]byte, shareCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = shareCodeAlphabet[int(b)%len(shareCodeAlphabet)]
	}
	return string(buf), nil
}

const maxUserAgentLen = 500

// truncateRunes cuts s to at most n characters without splitting a multi-byte rune
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
