package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/retention"
)

const screenshotColumns = `
	id, user_id, device_id, object_key, domain, title, url, category,
	captured_at, date, size_bytes, created_at`

func (r *Repository) CreateScreenshot(ctx context.Context, s domain.Screenshot) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO screenshots
			(id, user_id, device_id, object_key, domain, title, url, category,
			 captured_at, date, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, s.ID, s.UserID, s.DeviceID, s.ObjectKey, s.Domain, s.Title, s.URL, s.Category,
		s.Timestamp, s.Date, s.SizeBytes, s.CreatedAt)
	return err
}

func (r *Repository) GetScreenshot(ctx context.Context, userID, id uuid.UUID) (domain.Screenshot, error) {
	var s domain.Screenshot
	err := r.pool.QueryRow(ctx, `
		SELECT `+screenshotColumns+`
		FROM screenshots
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&s.ID, &s.UserID, &s.DeviceID, &s.ObjectKey, &s.Domain, &s.Title,
		&s.URL, &s.Category, &s.Timestamp, &s.Date, &s.SizeBytes, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Screenshot{}, domain.ErrScreenshotNotFound
	}
	if err != nil {
		return domain.Screenshot{}, err
	}
	return s, nil
}

func (r *Repository) ListScreenshots(ctx context.Context, userID uuid.UUID, date string) ([]domain.Screenshot, error) {
	query := `
		SELECT ` + screenshotColumns + `
		FROM screenshots
		WHERE user_id = $1
		ORDER BY captured_at DESC`
	args := []any{userID}
	if date != "" {
		query = `
		SELECT ` + screenshotColumns + `
		FROM screenshots
		WHERE user_id = $1 AND date = $2
		ORDER BY captured_at DESC`
		args = append(args, date)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Screenshot
	for rows.Next() {
		var s domain.Screenshot
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.DeviceID, &s.ObjectKey, &s.Domain, &s.Title,
			&s.URL, &s.Category, &s.Timestamp, &s.Date, &s.SizeBytes, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteScreenshot(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM screenshots WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScreenshotNotFound
	}
	return nil
}

// ScreenshotRetentionStore adapts the screenshots table to the retention
// policy. Scope is the owning user's id; age order is creation time.
type ScreenshotRetentionStore struct {
	repo *Repository
}

func NewScreenshotRetentionStore(repo *Repository) *ScreenshotRetentionStore {
	return &ScreenshotRetentionStore{repo: repo}
}

func (s *ScreenshotRetentionStore) CountInScope(ctx context.Context, scope string) (int, error) {
	var n int
	err := s.repo.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM screenshots WHERE user_id = $1
	`, scope).Scan(&n)
	return n, err
}

// OldestInScope orders by creation time, not capture time: late uploads of
// old captures must not jump the eviction queue.
func (s *ScreenshotRetentionStore) OldestInScope(ctx context.Context, scope string, n int) ([]retention.Entry, error) {
	rows, err := s.repo.pool.Query(ctx, `
		SELECT id, object_key
		FROM screenshots
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`, scope, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []retention.Entry
	for rows.Next() {
		var e retention.Entry
		if err := rows.Scan(&e.ID, &e.BlobKey); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *ScreenshotRetentionStore) DeleteEntry(ctx context.Context, scope string, id string) error {
	_, err := s.repo.pool.Exec(ctx, `
		DELETE FROM screenshots WHERE id = $1 AND user_id = $2
	`, id, scope)
	return err
}
