package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/service"
)

type fakeAnalyticsRepo struct {
	dailyFn  func(ctx context.Context, userID uuid.UUID, date string) (domain.DailySummary, error)
	weeklyFn func(ctx context.Context, userID uuid.UUID, startDate, endDate string) (domain.WeeklySummary, error)
	windowFn func(ctx context.Context, userID uuid.UUID, startDate, endDate string) (domain.WindowStats, error)
	topFn    func(ctx context.Context, userID uuid.UUID, startDate, endDate string, limit int) ([]domain.DomainRank, error)
}

func (r *fakeAnalyticsRepo) DailySummary(ctx context.Context, userID uuid.UUID, date string) (domain.DailySummary, error) {
	return r.dailyFn(ctx, userID, date)
}

func (r *fakeAnalyticsRepo) WeeklySummary(ctx context.Context, userID uuid.UUID, startDate, endDate string) (domain.WeeklySummary, error) {
	return r.weeklyFn(ctx, userID, startDate, endDate)
}

func (r *fakeAnalyticsRepo) WindowStats(ctx context.Context, userID uuid.UUID, startDate, endDate string) (domain.WindowStats, error) {
	return r.windowFn(ctx, userID, startDate, endDate)
}

func (r *fakeAnalyticsRepo) TopDomains(ctx context.Context, userID uuid.UUID, startDate, endDate string, limit int) ([]domain.DomainRank, error) {
	return r.topFn(ctx, userID, startDate, endDate, limit)
}

type fakeSummaryCache struct {
	store map[string]domain.DailySummary
	gets  int
	sets  int
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{store: map[string]domain.DailySummary{}}
}

func (c *fakeSummaryCache) GetDailySummary(_ context.Context, userID uuid.UUID, date string) (domain.DailySummary, error) {
	c.gets++
	s, ok := c.store[userID.String()+date]
	if !ok {
		return domain.DailySummary{}, domain.ErrCacheMiss
	}
	return s, nil
}

func (c *fakeSummaryCache) SetDailySummary(_ context.Context, userID uuid.UUID, date string, s domain.DailySummary) error {
	c.sets++
	c.store[userID.String()+date] = s
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
}

func TestTrailingWindow(t *testing.T) {
	start, end := service.TrailingWindow(fixedNow(), 7)
	assert.Equal(t, "2026-03-04", start)
	assert.Equal(t, "2026-03-10", end)

	start, end = service.TrailingWindow(fixedNow(), 1)
	assert.Equal(t, "2026-03-10", start)
	assert.Equal(t, "2026-03-10", end)
}

func TestAnalyticsDaily_DefaultsToToday(t *testing.T) {
	var gotDate string
	repo := &fakeAnalyticsRepo{
		dailyFn: func(_ context.Context, _ uuid.UUID, date string) (domain.DailySummary, error) {
			gotDate = date
			return domain.DailySummary{Date: date}, nil
		},
	}
	svc := service.NewAnalyticsServiceAt(repo, nil, fixedNow)

	sum, err := svc.Daily(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", gotDate)
	assert.Equal(t, "2026-03-10", sum.Date)

	_, err = svc.Daily(context.Background(), uuid.New(), "03/10/2026")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestAnalyticsDaily_CachesPastDatesOnly(t *testing.T) {
	calls := 0
	repo := &fakeAnalyticsRepo{
		dailyFn: func(_ context.Context, _ uuid.UUID, date string) (domain.DailySummary, error) {
			calls++
			return domain.DailySummary{Date: date, TotalSeconds: 60}, nil
		},
	}
	cache := newFakeSummaryCache()
	svc := service.NewAnalyticsServiceAt(repo, cache, fixedNow)
	ctx := context.Background()
	userID := uuid.New()

	// past date: second read served from cache
	_, err := svc.Daily(ctx, userID, "2026-03-09")
	require.NoError(t, err)
	sum, err := svc.Daily(ctx, userID, "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, int64(60), sum.TotalSeconds)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.sets)

	// today always recomputes
	_, err = svc.Daily(ctx, userID, "2026-03-10")
	require.NoError(t, err)
	_, err = svc.Daily(ctx, userID, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, cache.sets)
}

func TestAnalyticsWeekly_WindowAndClamp(t *testing.T) {
	var gotStart, gotEnd string
	repo := &fakeAnalyticsRepo{
		weeklyFn: func(_ context.Context, _ uuid.UUID, start, end string) (domain.WeeklySummary, error) {
			gotStart, gotEnd = start, end
			return domain.WeeklySummary{StartDate: start, EndDate: end}, nil
		},
	}
	svc := service.NewAnalyticsServiceAt(repo, nil, fixedNow)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Weekly(ctx, userID, 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", gotStart)
	assert.Equal(t, "2026-03-10", gotEnd)

	// zero defaults to one week
	_, err = svc.Weekly(ctx, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", gotStart)

	// clamp at 12 weeks
	_, err = svc.Weekly(ctx, userID, 500)
	require.NoError(t, err)
	assert.Equal(t, fixedNow().AddDate(0, 0, -(12*7 - 1)).Format(domain.DateLayout), gotStart)
}

func TestAnalyticsTrends_AdjacentWindows(t *testing.T) {
	var windows [][2]string
	repo := &fakeAnalyticsRepo{
		windowFn: func(_ context.Context, _ uuid.UUID, start, end string) (domain.WindowStats, error) {
			windows = append(windows, [2]string{start, end})
			return domain.WindowStats{}, nil
		},
	}
	svc := service.NewAnalyticsServiceAt(repo, nil, fixedNow)

	_, err := svc.Trends(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, [2]string{"2026-03-04", "2026-03-10"}, windows[0])
	assert.Equal(t, [2]string{"2026-02-25", "2026-03-03"}, windows[1])
}

func TestAnalyticsTopDomains_DefaultsAndClamps(t *testing.T) {
	var gotStart, gotEnd string
	var gotLimit int
	repo := &fakeAnalyticsRepo{
		topFn: func(_ context.Context, _ uuid.UUID, start, end string, limit int) ([]domain.DomainRank, error) {
			gotStart, gotEnd, gotLimit = start, end, limit
			return nil, nil
		},
	}
	svc := service.NewAnalyticsServiceAt(repo, nil, fixedNow)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.TopDomains(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", gotStart)
	assert.Equal(t, "2026-03-10", gotEnd)
	assert.Equal(t, 10, gotLimit)

	_, err = svc.TopDomains(ctx, userID, 10_000, 10_000)
	require.NoError(t, err)
	assert.Equal(t, fixedNow().AddDate(0, 0, -89).Format(domain.DateLayout), gotStart)
	assert.Equal(t, 100, gotLimit)
}
