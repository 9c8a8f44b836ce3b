package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/screenpulse/screenpulse/internal/domain"
	appCtx "github.com/screenpulse/screenpulse/internal/pkg/context"
)

// MergeReport applies one push in a single transaction: ownership check,
// per-key merge under a row lock, event append, device touch, sync log
// and outbox row. Either everything lands or nothing does.
func (r *Repository) MergeReport(ctx context.Context, userID, deviceID uuid.UUID, report domain.Report, events []domain.ActivityEventInput) (domain.PushResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.PushResult{}, err
	}
	defer tx.Rollback(ctx)

	// Ownership gate before any write.
	var one int
	err = tx.QueryRow(ctx, `
		SELECT 1 FROM devices WHERE id = $1 AND user_id = $2
	`, deviceID, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PushResult{}, domain.ErrDeviceNotFound
	}
	if err != nil {
		return domain.PushResult{}, err
	}

	now := time.Now().UTC()
	var res domain.PushResult

	for date, hosts := range report {
		for host, entry := range hosts {
			if err := mergeEntry(ctx, tx, userID, deviceID, host, date, entry, now); err != nil {
				return domain.PushResult{}, err
			}
			res.RecordsSynced++
		}
	}

	for _, ev := range events {
		ts := ev.Timestamp.UTC()
		_, err := tx.Exec(ctx, `
			INSERT INTO activity_events (id, user_id, device_id, state, occurred_at, date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), userID, deviceID, ev.State, ts, ts.Format(domain.DateLayout))
		if err != nil {
			return domain.PushResult{}, err
		}
		res.EventsSynced++
	}

	if _, err := tx.Exec(ctx, `
		UPDATE devices SET last_sync_at = $3 WHERE id = $1 AND user_id = $2
	`, deviceID, userID, now); err != nil {
		return domain.PushResult{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO sync_log (id, user_id, device_id, sync_type, item_count, created_at)
		VALUES ($1, $2, $3, 'push', $4, $5)
	`, uuid.New(), userID, deviceID, res.RecordsSynced+res.EventsSynced, now); err != nil {
		return domain.PushResult{}, err
	}

	if err := insertOutbox(ctx, tx, userID, deviceID, res, now, appCtx.GetRequestID(ctx)); err != nil {
		return domain.PushResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PushResult{}, err
	}
	return res, nil
}

// mergeEntry inserts the key if absent; on conflict it re-reads the row under
// FOR UPDATE, merges in Go and writes the result back. Keeping the merge rule
// in domain.MergeUsage means the write path and the tests share one function.
func mergeEntry(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, host, date string, entry domain.ReportEntry, now time.Time) error {
	rec := domain.NewUsageRecord(userID, deviceID, host, date, entry, now)
	rec.ID = uuid.New()

	tag, err := tx.Exec(ctx, `
		INSERT INTO usage_records
			(id, user_id, device_id, domain, date, title, category,
			 total_seconds, visits, first_visit, last_visit, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, device_id, domain, date) DO NOTHING
	`, rec.ID, rec.UserID, rec.DeviceID, rec.Domain, rec.Date, rec.Title, rec.Category,
		rec.TotalSeconds, rec.Visits, rec.FirstVisit, rec.LastVisit, rec.SyncedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var existing domain.UsageRecord
	err = tx.QueryRow(ctx, `
		SELECT id, title, category, total_seconds, visits, first_visit, last_visit
		FROM usage_records
		WHERE user_id = $1 AND device_id = $2 AND domain = $3 AND date = $4
		FOR UPDATE
	`, userID, deviceID, host, date).Scan(
		&existing.ID, &existing.Title, &existing.Category,
		&existing.TotalSeconds, &existing.Visits,
		&existing.FirstVisit, &existing.LastVisit,
	)
	if err != nil {
		return err
	}

	merged := domain.MergeUsage(existing, entry, now)

	_, err = tx.Exec(ctx, `
		UPDATE usage_records
		SET title = $2, category = $3, total_seconds = $4, visits = $5,
		    first_visit = $6, last_visit = $7, synced_at = $8
		WHERE id = $1
	`, existing.ID, merged.Title, merged.Category, merged.TotalSeconds,
		merged.Visits, merged.FirstVisit, merged.LastVisit, merged.SyncedAt)
	return err
}

func insertOutbox(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, res domain.PushResult, now time.Time, traceID string) error {
	payload, err := json.Marshal(map[string]any{
		"user_id":        userID,
		"device_id":      deviceID,
		"records_synced": res.RecordsSynced,
		"events_synced":  res.EventsSynced,
		"occurred_at":    now,
	})
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (id, message_id, trace_id, routing_key, payload, occurred_at, status, attempt, next_retry_at)
		VALUES ($1, $2, $3, 'sync.completed', $4, $5, 'pending', 0, $5)
	`, uuid.New(), uuid.New(), traceID, payload, now)
	return err
}

// -------------------------
// Pull side
// -------------------------

const usageColumns = `
	id, user_id, device_id, domain, date, title, category,
	total_seconds, visits, first_visit, last_visit, synced_at`

func scanUsageRows(rows pgx.Rows) ([]domain.UsageRecord, error) {
	defer rows.Close()
	var out []domain.UsageRecord
	for rows.Next() {
		var rec domain.UsageRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.DeviceID, &rec.Domain, &rec.Date,
			&rec.Title, &rec.Category, &rec.TotalSeconds, &rec.Visits,
			&rec.FirstVisit, &rec.LastVisit, &rec.SyncedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) ListRecordsForDate(ctx context.Context, userID uuid.UUID, date string) ([]domain.UsageRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+usageColumns+`
		FROM usage_records
		WHERE user_id = $1 AND date = $2
		ORDER BY total_seconds DESC, domain ASC
	`, userID, date)
	if err != nil {
		return nil, err
	}
	return scanUsageRows(rows)
}

func (r *Repository) ListRecordsSince(ctx context.Context, userID uuid.UUID, sinceDate string) ([]domain.UsageRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+usageColumns+`
		FROM usage_records
		WHERE user_id = $1 AND date >= $2
		ORDER BY date ASC, total_seconds DESC, domain ASC
	`, userID, sinceDate)
	if err != nil {
		return nil, err
	}
	return scanUsageRows(rows)
}

func (r *Repository) ListActivityEvents(ctx context.Context, userID uuid.UUID, date string) ([]domain.ActivityEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, device_id, state, occurred_at, date
		FROM activity_events
		WHERE user_id = $1 AND date = $2
		ORDER BY occurred_at ASC
	`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActivityEvent
	for rows.Next() {
		var ev domain.ActivityEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.DeviceID, &ev.State, &ev.Timestamp, &ev.Date); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *Repository) ListSyncLog(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SyncLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, device_id, sync_type, item_count, created_at
		FROM sync_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SyncLogEntry
	for rows.Next() {
		var e domain.SyncLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.DeviceID, &e.SyncType, &e.ItemCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
