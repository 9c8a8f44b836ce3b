package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/screenpulse/screenpulse/internal/audit"
	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/metrics"
	"github.com/screenpulse/screenpulse/internal/retention"
)

type ScreenshotService struct {
	repo    domain.ScreenshotRepository
	devices domain.DeviceRepository
	files   domain.FileStorage
	policy  *retention.Policy
	audit   *audit.Logger
	log     zerolog.Logger
}

func NewScreenshotService(
	repo domain.ScreenshotRepository,
	devices domain.DeviceRepository,
	files domain.FileStorage,
	policy *retention.Policy,
	aud *audit.Logger,
	log zerolog.Logger,
) *ScreenshotService {
	return &ScreenshotService{
		repo:    repo,
		devices: devices,
		files:   files,
		policy:  policy,
		audit:   aud,
		log:     log,
	}
}

// ScreenshotMeta is the caller-supplied metadata for one capture.
type ScreenshotMeta struct {
	Domain    string
	Title     string
	URL       string
	Category  string
	Timestamp time.Time
}

// Store writes the blob, inserts the metadata row and then enforces the
// per-user cap. File write and metadata insert are not transactional with
// each other: a blob without a row is a harmless orphan, a row without a
// blob is filtered out on read.
func (s *ScreenshotService) Store(ctx context.Context, userID, deviceID uuid.UUID, meta ScreenshotMeta, data []byte, contentType string) (domain.Screenshot, error) {
	if len(data) == 0 {
		return domain.Screenshot{}, domain.ErrInvalidInput
	}
	if _, err := s.devices.GetDevice(ctx, userID, deviceID); err != nil {
		return domain.Screenshot{}, err
	}

	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := uuid.New()
	key := fmt.Sprintf("screenshots/%s/%s", userID, id)

	if err := s.files.Put(ctx, key, data, contentType); err != nil {
		return domain.Screenshot{}, err
	}

	shot := domain.Screenshot{
		ID:        id,
		UserID:    userID,
		DeviceID:  deviceID,
		ObjectKey: key,
		Domain:    meta.Domain,
		Title:     meta.Title,
		URL:       meta.URL,
		Category:  meta.Category,
		Timestamp: ts,
		Date:      ts.Format(domain.DateLayout),
		SizeBytes: int64(len(data)),
	}
	if err := s.repo.CreateScreenshot(ctx, shot); err != nil {
		// best effort: don't leave a blob the metadata will never reference
		if derr := s.files.Delete(ctx, key); derr != nil {
			s.log.Warn().Err(derr).Str("key", key).Msg("orphan blob cleanup failed")
		}
		return domain.Screenshot{}, err
	}

	metrics.ScreenshotStored()
	if s.audit != nil {
		s.audit.ScreenshotStored(ctx, userID, id, shot.SizeBytes)
	}

	evicted, err := s.policy.Enforce(ctx, userID.String())
	if err != nil {
		// the next insert converges the scope again
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("retention enforcement failed")
	} else if evicted > 0 {
		metrics.ScreenshotsEvicted(evicted)
		if s.audit != nil {
			s.audit.ScreenshotsEvicted(ctx, userID, evicted)
		}
	}

	return shot, nil
}

func (s *ScreenshotService) List(ctx context.Context, userID uuid.UUID, date string) ([]domain.Screenshot, error) {
	if date != "" {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return nil, domain.ErrInvalidDate
		}
	}
	return s.repo.ListScreenshots(ctx, userID, date)
}

// Fetch returns the metadata and bytes. A row whose blob is gone is treated
// as not found and its metadata is removed so the store converges.
func (s *ScreenshotService) Fetch(ctx context.Context, userID, id uuid.UUID) (domain.Screenshot, []byte, error) {
	shot, err := s.repo.GetScreenshot(ctx, userID, id)
	if err != nil {
		return domain.Screenshot{}, nil, err
	}

	ok, err := s.files.Exists(ctx, shot.ObjectKey)
	if err != nil {
		return domain.Screenshot{}, nil, err
	}
	if !ok {
		if derr := s.repo.DeleteScreenshot(ctx, userID, id); derr != nil {
			s.log.Warn().Err(derr).Str("screenshot_id", id.String()).Msg("stale metadata cleanup failed")
		}
		return domain.Screenshot{}, nil, domain.ErrScreenshotNotFound
	}

	data, err := s.files.Get(ctx, shot.ObjectKey)
	if err != nil {
		return domain.Screenshot{}, nil, err
	}
	return shot, data, nil
}

func (s *ScreenshotService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	shot, err := s.repo.GetScreenshot(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, shot.ObjectKey); err != nil {
		s.log.Warn().Err(err).Str("key", shot.ObjectKey).Msg("blob delete failed, removing metadata anyway")
	}
	return s.repo.DeleteScreenshot(ctx, userID, id)
}
