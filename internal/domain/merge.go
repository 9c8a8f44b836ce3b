package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportEntry is a device's cumulative counters for one (date, domain).
// Devices re-send growing totals (partial retries, heartbeats), so entries
// for a key already in the store are merged, never overwritten.
type ReportEntry struct {
	Title        *string    `json:"title"`
	Category     *string    `json:"category"`
	TotalSeconds int64      `json:"total_seconds"`
	Visits       int64      `json:"visits"`
	FirstVisit   *time.Time `json:"first_visit"`
	LastVisit    *time.Time `json:"last_visit"`
}

// Report is a push payload: date -> domain -> cumulative stats.
type Report map[string]map[string]ReportEntry

// Validate checks the two-level shape. A report that fails here is rejected
// whole; no partial merge happens.
func (r Report) Validate() error {
	if r == nil {
		return ErrInvalidReport
	}
	for date, domains := range r {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return ErrInvalidReport
		}
		if domains == nil {
			return ErrInvalidReport
		}
		for host, entry := range domains {
			if host == "" {
				return ErrInvalidReport
			}
			if entry.TotalSeconds < 0 || entry.Visits < 0 {
				return ErrInvalidReport
			}
		}
	}
	return nil
}

// EntryCount returns the number of (date, domain) entries.
func (r Report) EntryCount() int {
	n := 0
	for _, domains := range r {
		n += len(domains)
	}
	return n
}

// MergeUsage applies one report entry to an existing record and returns the
// merged result. The rule keeps the larger of the two cumulative counters so
// duplicate or replayed reports are harmless, and widens the observed visit
// window instead of overwriting it:
//
//	totalSeconds, visits  = max(existing, incoming)
//	title, category       = incoming when non-null, else existing
//	firstVisit            = min(existing, incoming), null = no bound yet
//	lastVisit             = max(existing, incoming)
//
// The merge is commutative and idempotent for a fixed key, which is what
// makes caller-side retry of a failed push safe.
func MergeUsage(existing UsageRecord, incoming ReportEntry, syncedAt time.Time) UsageRecord {
	merged := existing

	if incoming.TotalSeconds > merged.TotalSeconds {
		merged.TotalSeconds = incoming.TotalSeconds
	}
	if incoming.Visits > merged.Visits {
		merged.Visits = incoming.Visits
	}
	if incoming.Title != nil && *incoming.Title != "" {
		merged.Title = *incoming.Title
	}
	if incoming.Category != nil && *incoming.Category != "" {
		merged.Category = *incoming.Category
	}
	merged.FirstVisit = minTime(existing.FirstVisit, incoming.FirstVisit)
	merged.LastVisit = maxTime(existing.LastVisit, incoming.LastVisit)
	merged.SyncedAt = syncedAt

	return merged
}

// NewUsageRecord builds the record inserted when no row exists for the key.
func NewUsageRecord(userID, deviceID uuid.UUID, host, date string, entry ReportEntry, syncedAt time.Time) UsageRecord {
	rec := UsageRecord{
		UserID:       userID,
		DeviceID:     deviceID,
		Domain:       host,
		Date:         date,
		TotalSeconds: entry.TotalSeconds,
		Visits:       entry.Visits,
		FirstVisit:   entry.FirstVisit,
		LastVisit:    entry.LastVisit,
		SyncedAt:     syncedAt,
	}
	if entry.Title != nil {
		rec.Title = *entry.Title
	}
	if entry.Category != nil {
		rec.Category = *entry.Category
	}
	return rec
}

// CapEvents keeps the last MaxEventsPerPush entries of a push's event list.
// The cap is per call, not per day; oldest excess is silently dropped.
func CapEvents(events []ActivityEventInput) []ActivityEventInput {
	if len(events) <= MaxEventsPerPush {
		return events
	}
	return events[len(events)-MaxEventsPerPush:]
}

func minTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Before(*a) {
		return b
	}
	return a
}

func maxTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.After(*a) {
		return b
	}
	return a
}
