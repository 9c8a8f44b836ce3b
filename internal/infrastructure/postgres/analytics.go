package postgres

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/screenpulse/screenpulse/internal/domain"
)

// The read side is plain GROUP BY over usage_records. Every query is scoped
// to one user; empty windows come back as zeroed aggregates, never errors.

func (r *Repository) DailySummary(ctx context.Context, userID uuid.UUID, date string) (domain.DailySummary, error) {
	out := domain.DailySummary{Date: date}

	rows, err := r.pool.Query(ctx, `
		SELECT domain, title, category, total_seconds, visits
		FROM usage_records
		WHERE user_id = $1 AND date = $2
	`, userID, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	defer rows.Close()
	var perRecord []domain.DailyEntry
	for rows.Next() {
		var e domain.DailyEntry
		if err := rows.Scan(&e.Domain, &e.Title, &e.Category, &e.TotalSeconds, &e.Visits); err != nil {
			return domain.DailySummary{}, err
		}
		perRecord = append(perRecord, e)
	}
	if err := rows.Err(); err != nil {
		return domain.DailySummary{}, err
	}

	out.Entries = aggregateDailyEntries(perRecord)
	for _, e := range out.Entries {
		out.TotalSeconds += e.TotalSeconds
		out.TotalVisits += e.Visits
	}

	out.Categories, err = r.categorySums(ctx, userID, date, date)
	if err != nil {
		return domain.DailySummary{}, err
	}

	drows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name, SUM(u.total_seconds), SUM(u.visits)
		FROM usage_records u
		JOIN devices d ON d.id = u.device_id
		WHERE u.user_id = $1 AND u.date = $2
		GROUP BY d.id, d.name
		ORDER BY SUM(u.total_seconds) DESC
	`, userID, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	defer drows.Close()
	for drows.Next() {
		var ds domain.DeviceSum
		var id uuid.UUID
		if err := drows.Scan(&id, &ds.DeviceName, &ds.TotalSeconds, &ds.Visits); err != nil {
			return domain.DailySummary{}, err
		}
		ds.DeviceID = id.String()
		out.Devices = append(out.Devices, ds)
	}
	if err := drows.Err(); err != nil {
		return domain.DailySummary{}, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM screenshots WHERE user_id = $1 AND date = $2
	`, userID, date).Scan(&out.ScreenshotCount)
	if err != nil {
		return domain.DailySummary{}, err
	}

	return out, nil
}

func (r *Repository) WeeklySummary(ctx context.Context, userID uuid.UUID, startDate, endDate string) (domain.WeeklySummary, error) {
	out := domain.WeeklySummary{StartDate: startDate, EndDate: endDate}

	rows, err := r.pool.Query(ctx, `
		SELECT date, SUM(total_seconds), SUM(visits)
		FROM usage_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY date
		ORDER BY date ASC
	`, userID, startDate, endDate)
	if err != nil {
		return domain.WeeklySummary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var d domain.DaySum
		if err := rows.Scan(&d.Date, &d.TotalSeconds, &d.Visits); err != nil {
			return domain.WeeklySummary{}, err
		}
		out.Days = append(out.Days, d)
	}
	if err := rows.Err(); err != nil {
		return domain.WeeklySummary{}, err
	}

	trows, err := r.pool.Query(ctx, `
		SELECT domain, SUM(total_seconds), SUM(visits)
		FROM usage_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY domain
		ORDER BY SUM(total_seconds) DESC, domain ASC
		LIMIT 20
	`, userID, startDate, endDate)
	if err != nil {
		return domain.WeeklySummary{}, err
	}
	defer trows.Close()
	for trows.Next() {
		var d domain.DomainSum
		if err := trows.Scan(&d.Domain, &d.TotalSeconds, &d.Visits); err != nil {
			return domain.WeeklySummary{}, err
		}
		out.TopDomains = append(out.TopDomains, d)
	}
	if err := trows.Err(); err != nil {
		return domain.WeeklySummary{}, err
	}

	out.Categories, err = r.categorySums(ctx, userID, startDate, endDate)
	if err != nil {
		return domain.WeeklySummary{}, err
	}
	return out, nil
}

func (r *Repository) WindowStats(ctx context.Context, userID uuid.UUID, startDate, endDate string) (domain.WindowStats, error) {
	var out domain.WindowStats
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_seconds), 0), COALESCE(SUM(visits), 0),
		       COUNT(DISTINCT domain), COUNT(DISTINCT date)
		FROM usage_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
	`, userID, startDate, endDate).Scan(&out.TotalSeconds, &out.TotalVisits, &out.Domains, &out.ActiveDays)
	if err != nil {
		return domain.WindowStats{}, err
	}

	out.Categories, err = r.categorySums(ctx, userID, startDate, endDate)
	if err != nil {
		return domain.WindowStats{}, err
	}
	return out, nil
}

func (r *Repository) TopDomains(ctx context.Context, userID uuid.UUID, startDate, endDate string, limit int) ([]domain.DomainRank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT domain, SUM(total_seconds), SUM(visits), COUNT(DISTINCT date)
		FROM usage_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY domain
		ORDER BY SUM(total_seconds) DESC, domain ASC
		LIMIT $4
	`, userID, startDate, endDate, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DomainRank
	for rows.Next() {
		var d domain.DomainRank
		if err := rows.Scan(&d.Domain, &d.TotalSeconds, &d.Visits, &d.ActiveDays); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// aggregateDailyEntries sums per-device rows into one entry per
// (domain, title, category), seconds descending. Same domain under two
// different titles stays two entries.
func aggregateDailyEntries(rows []domain.DailyEntry) []domain.DailyEntry {
	type key struct {
		domain, title, category string
	}
	sums := make(map[key]domain.DailyEntry, len(rows))
	for _, row := range rows {
		k := key{row.Domain, row.Title, row.Category}
		e := sums[k]
		e.Domain, e.Title, e.Category = row.Domain, row.Title, row.Category
		e.TotalSeconds += row.TotalSeconds
		e.Visits += row.Visits
		sums[k] = e
	}

	out := make([]domain.DailyEntry, 0, len(sums))
	for _, e := range sums {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSeconds != out[j].TotalSeconds {
			return out[i].TotalSeconds > out[j].TotalSeconds
		}
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func (r *Repository) categorySums(ctx context.Context, userID uuid.UUID, startDate, endDate string) ([]domain.CategorySum, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(NULLIF(category, ''), 'uncategorized'),
		       SUM(total_seconds), SUM(visits)
		FROM usage_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY 1
		ORDER BY SUM(total_seconds) DESC
	`, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return scanCategorySums(rows)
}

func scanCategorySums(rows pgx.Rows) ([]domain.CategorySum, error) {
	defer rows.Close()
	var out []domain.CategorySum
	for rows.Next() {
		var c domain.CategorySum
		if err := rows.Scan(&c.Category, &c.TotalSeconds, &c.Visits); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
