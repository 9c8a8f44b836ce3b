package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/audit"
	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/metrics"
)

type SyncService struct {
	repo  domain.SyncRepository
	audit *audit.Logger
}

func NewSyncService(repo domain.SyncRepository, aud *audit.Logger) *SyncService {
	return &SyncService{repo: repo, audit: aud}
}

// Push merges one device report. The whole report is rejected on a shape
// error; the merge itself is idempotent, so callers retry failed pushes
// safely.
func (s *SyncService) Push(ctx context.Context, userID, deviceID uuid.UUID, report domain.Report, events []domain.ActivityEventInput) (domain.PushResult, error) {
	if err := report.Validate(); err != nil {
		metrics.RecordPush("invalid_report")
		return domain.PushResult{}, err
	}

	events = domain.CapEvents(events)

	res, err := s.repo.MergeReport(ctx, userID, deviceID, report, events)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			metrics.RecordPush("device_not_found")
		} else {
			metrics.RecordPush("error")
		}
		return domain.PushResult{}, err
	}

	metrics.RecordPush("ok")
	metrics.RecordsMerged(res.RecordsSynced)
	metrics.EventsIngested(res.EventsSynced)
	if s.audit != nil {
		s.audit.PushMerged(ctx, userID, deviceID, res.RecordsSynced, res.EventsSynced)
	}
	return res, nil
}

// Pull returns merged records either for one date or since a date
// (inclusive). Exactly one of date/since must be set.
func (s *SyncService) Pull(ctx context.Context, userID uuid.UUID, date, since string) ([]domain.UsageRecord, error) {
	switch {
	case date != "":
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return nil, domain.ErrInvalidDate
		}
		return s.repo.ListRecordsForDate(ctx, userID, date)
	case since != "":
		if _, err := time.Parse(domain.DateLayout, since); err != nil {
			return nil, domain.ErrInvalidDate
		}
		return s.repo.ListRecordsSince(ctx, userID, since)
	default:
		return nil, domain.ErrInvalidDate
	}
}

func (s *SyncService) Activity(ctx context.Context, userID uuid.UUID, date string) ([]domain.ActivityEvent, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, domain.ErrInvalidDate
	}
	return s.repo.ListActivityEvents(ctx, userID, date)
}

func (s *SyncService) SyncLog(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.repo.ListSyncLog(ctx, userID, limit)
}
