package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenpulse/screenpulse/internal/domain"
)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func at(h int) time.Time { return time.Date(2026, 3, 10, h, 0, 0, 0, time.UTC) }

func TestMergeUsage_CountersNeverRegress(t *testing.T) {
	now := time.Now().UTC()

	existing := domain.UsageRecord{TotalSeconds: 100, Visits: 5}

	// stale replay with smaller counters
	merged := domain.MergeUsage(existing, domain.ReportEntry{TotalSeconds: 80, Visits: 2}, now)
	assert.Equal(t, int64(100), merged.TotalSeconds)
	assert.Equal(t, int64(5), merged.Visits)

	// fresher report with larger counters
	merged = domain.MergeUsage(existing, domain.ReportEntry{TotalSeconds: 150, Visits: 7}, now)
	assert.Equal(t, int64(150), merged.TotalSeconds)
	assert.Equal(t, int64(7), merged.Visits)
}

func TestMergeUsage_Idempotent(t *testing.T) {
	now := time.Now().UTC()
	entry := domain.ReportEntry{
		Title:        strPtr("Example"),
		Category:     strPtr("work"),
		TotalSeconds: 300,
		Visits:       4,
		FirstVisit:   timePtr(at(9)),
		LastVisit:    timePtr(at(17)),
	}

	once := domain.MergeUsage(domain.UsageRecord{}, entry, now)
	twice := domain.MergeUsage(once, entry, now)
	assert.Equal(t, once, twice)
}

func TestMergeUsage_Commutative(t *testing.T) {
	now := time.Now().UTC()
	a := domain.ReportEntry{
		Title:        strPtr("A"),
		TotalSeconds: 120,
		Visits:       3,
		FirstVisit:   timePtr(at(8)),
		LastVisit:    timePtr(at(12)),
	}
	b := domain.ReportEntry{
		Category:     strPtr("news"),
		TotalSeconds: 200,
		Visits:       2,
		FirstVisit:   timePtr(at(10)),
		LastVisit:    timePtr(at(18)),
	}

	ab := domain.MergeUsage(domain.MergeUsage(domain.UsageRecord{}, a, now), b, now)
	ba := domain.MergeUsage(domain.MergeUsage(domain.UsageRecord{}, b, now), a, now)

	assert.Equal(t, ab.TotalSeconds, ba.TotalSeconds)
	assert.Equal(t, ab.Visits, ba.Visits)
	assert.Equal(t, ab.FirstVisit, ba.FirstVisit)
	assert.Equal(t, ab.LastVisit, ba.LastVisit)
}

func TestMergeUsage_VisitWindowWidens(t *testing.T) {
	now := time.Now().UTC()
	existing := domain.UsageRecord{
		FirstVisit: timePtr(at(10)),
		LastVisit:  timePtr(at(14)),
	}

	merged := domain.MergeUsage(existing, domain.ReportEntry{
		FirstVisit: timePtr(at(8)),
		LastVisit:  timePtr(at(20)),
	}, now)

	assert.Equal(t, at(8), *merged.FirstVisit)
	assert.Equal(t, at(20), *merged.LastVisit)

	// narrower incoming window leaves bounds untouched
	merged = domain.MergeUsage(merged, domain.ReportEntry{
		FirstVisit: timePtr(at(11)),
		LastVisit:  timePtr(at(12)),
	}, now)
	assert.Equal(t, at(8), *merged.FirstVisit)
	assert.Equal(t, at(20), *merged.LastVisit)
}

func TestMergeUsage_NilTimesMeanNoBound(t *testing.T) {
	now := time.Now().UTC()

	merged := domain.MergeUsage(domain.UsageRecord{}, domain.ReportEntry{}, now)
	assert.Nil(t, merged.FirstVisit)
	assert.Nil(t, merged.LastVisit)

	merged = domain.MergeUsage(merged, domain.ReportEntry{FirstVisit: timePtr(at(9))}, now)
	require.NotNil(t, merged.FirstVisit)
	assert.Equal(t, at(9), *merged.FirstVisit)
}

func TestMergeUsage_TitleCategoryIncomingWins(t *testing.T) {
	now := time.Now().UTC()
	existing := domain.UsageRecord{Title: "Old", Category: "work"}

	merged := domain.MergeUsage(existing, domain.ReportEntry{Title: strPtr("New")}, now)
	assert.Equal(t, "New", merged.Title)
	assert.Equal(t, "work", merged.Category) // nil incoming keeps existing

	merged = domain.MergeUsage(existing, domain.ReportEntry{Title: strPtr("")}, now)
	assert.Equal(t, "Old", merged.Title) // empty incoming keeps existing
}

func TestReportValidate(t *testing.T) {
	tests := []struct {
		name   string
		report domain.Report
		ok     bool
	}{
		{"nil report", nil, false},
		{"bad date", domain.Report{"10-03-2026": {"example.com": {}}}, false},
		{"nil domains", domain.Report{"2026-03-10": nil}, false},
		{"empty host", domain.Report{"2026-03-10": {"": {}}}, false},
		{"negative seconds", domain.Report{"2026-03-10": {"example.com": {TotalSeconds: -1}}}, false},
		{"negative visits", domain.Report{"2026-03-10": {"example.com": {Visits: -1}}}, false},
		{"empty report", domain.Report{}, true},
		{"valid", domain.Report{"2026-03-10": {"example.com": {TotalSeconds: 10, Visits: 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidReport)
			}
		})
	}
}

func TestCapEvents_KeepsNewest(t *testing.T) {
	events := make([]domain.ActivityEventInput, domain.MaxEventsPerPush+50)
	base := time.Now().UTC()
	for i := range events {
		events[i] = domain.ActivityEventInput{State: "active", Timestamp: base.Add(time.Duration(i) * time.Second)}
	}

	capped := domain.CapEvents(events)
	require.Len(t, capped, domain.MaxEventsPerPush)
	// oldest excess dropped, newest kept
	assert.Equal(t, events[50].Timestamp, capped[0].Timestamp)
	assert.Equal(t, events[len(events)-1].Timestamp, capped[len(capped)-1].Timestamp)

	short := events[:10]
	assert.Len(t, domain.CapEvents(short), 10)
}

func TestNewUsageRecord(t *testing.T) {
	userID, deviceID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	rec := domain.NewUsageRecord(userID, deviceID, "example.com", "2026-03-10", domain.ReportEntry{
		Title:        strPtr("Example"),
		TotalSeconds: 42,
		Visits:       2,
	}, now)

	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, deviceID, rec.DeviceID)
	assert.Equal(t, "example.com", rec.Domain)
	assert.Equal(t, "2026-03-10", rec.Date)
	assert.Equal(t, "Example", rec.Title)
	assert.Equal(t, "", rec.Category)
	assert.Equal(t, int64(42), rec.TotalSeconds)
	assert.Equal(t, now, rec.SyncedAt)
}
