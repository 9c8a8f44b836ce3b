package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/domain"
)

const (
	maxWeeklyWeeks    = 12
	maxTopDomainsDays = 90
	maxTopDomainsN    = 100
)

// SummaryCache is an optional read-through cache for daily rollups.
type SummaryCache interface {
	GetDailySummary(ctx context.Context, userID uuid.UUID, date string) (domain.DailySummary, error)
	SetDailySummary(ctx context.Context, userID uuid.UUID, date string, s domain.DailySummary) error
}

type AnalyticsService struct {
	repo  domain.AnalyticsRepository
	cache SummaryCache
	now   func() time.Time
}

func NewAnalyticsService(repo domain.AnalyticsRepository, cache SummaryCache) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache, now: time.Now}
}

// NewAnalyticsServiceAt pins "today" for deterministic window computation.
func NewAnalyticsServiceAt(repo domain.AnalyticsRepository, cache SummaryCache, now func() time.Time) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache, now: now}
}

// Daily serves a per-date rollup. Past dates go through the cache; today is
// always computed fresh because pushes mutate it continuously.
func (s *AnalyticsService) Daily(ctx context.Context, userID uuid.UUID, date string) (domain.DailySummary, error) {
	if date == "" {
		date = s.today()
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.DailySummary{}, domain.ErrInvalidDate
	}

	cacheable := s.cache != nil && date < s.today()
	if cacheable {
		if cached, err := s.cache.GetDailySummary(ctx, userID, date); err == nil {
			return cached, nil
		}
	}

	sum, err := s.repo.DailySummary(ctx, userID, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	if cacheable {
		_ = s.cache.SetDailySummary(ctx, userID, date, sum)
	}
	return sum, nil
}

func (s *AnalyticsService) Weekly(ctx context.Context, userID uuid.UUID, weeks int) (domain.WeeklySummary, error) {
	if weeks <= 0 {
		weeks = 1
	}
	if weeks > maxWeeklyWeeks {
		weeks = maxWeeklyWeeks
	}
	start, end := TrailingWindow(s.now().UTC(), weeks*7)
	return s.repo.WeeklySummary(ctx, userID, start, end)
}

// Trends compares the trailing 7 days against the 7 days before that. The
// two windows are returned side by side; diffing is the caller's business.
func (s *AnalyticsService) Trends(ctx context.Context, userID uuid.UUID) (domain.Trends, error) {
	today := s.now().UTC()
	thisStart, thisEnd := TrailingWindow(today, 7)
	lastStart, lastEnd := TrailingWindow(today.AddDate(0, 0, -7), 7)

	thisWeek, err := s.repo.WindowStats(ctx, userID, thisStart, thisEnd)
	if err != nil {
		return domain.Trends{}, err
	}
	lastWeek, err := s.repo.WindowStats(ctx, userID, lastStart, lastEnd)
	if err != nil {
		return domain.Trends{}, err
	}
	return domain.Trends{ThisWeek: thisWeek, LastWeek: lastWeek}, nil
}

func (s *AnalyticsService) TopDomains(ctx context.Context, userID uuid.UUID, periodDays, limit int) ([]domain.DomainRank, error) {
	if periodDays <= 0 {
		periodDays = 7
	}
	if periodDays > maxTopDomainsDays {
		periodDays = maxTopDomainsDays
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > maxTopDomainsN {
		limit = maxTopDomainsN
	}
	start, end := TrailingWindow(s.now().UTC(), periodDays)
	return s.repo.TopDomains(ctx, userID, start, end, limit)
}

// TrailingWindow returns the inclusive [start, end] date strings for the
// window of `days` calendar days ending at `end`.
func TrailingWindow(end time.Time, days int) (string, string) {
	e := end.Format(domain.DateLayout)
	s := end.AddDate(0, 0, -(days - 1)).Format(domain.DateLayout)
	return s, e
}

func (s *AnalyticsService) today() string {
	return s.now().UTC().Format(domain.DateLayout)
}
