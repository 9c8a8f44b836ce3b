package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screenpulse/screenpulse/internal/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// -------------------------
// Users
// -------------------------

func (r *Repository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	u.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// -------------------------
// Devices
// -------------------------

func (r *Repository) CreateDevice(ctx context.Context, d domain.Device) (domain.Device, error) {
	d.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO devices (id, user_id, name, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, d.ID, d.UserID, d.Name, d.Type, d.CreatedAt)
	if err != nil {
		return domain.Device{}, err
	}
	return d, nil
}

func (r *Repository) ListDevices(ctx context.Context, userID uuid.UUID) ([]domain.Device, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, type, last_sync_at, created_at
		FROM devices
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Device
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Type, &d.LastSyncAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) GetDevice(ctx context.Context, userID, deviceID uuid.UUID) (domain.Device, error) {
	var d domain.Device
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, type, last_sync_at, created_at
		FROM devices
		WHERE id = $1 AND user_id = $2
	`, deviceID, userID).Scan(&d.ID, &d.UserID, &d.Name, &d.Type, &d.LastSyncAt, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Device{}, domain.ErrDeviceNotFound
	}
	if err != nil {
		return domain.Device{}, err
	}
	return d, nil
}

func (r *Repository) RenameDevice(ctx context.Context, userID, deviceID uuid.UUID, name string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE devices SET name = $3 WHERE id = $1 AND user_id = $2
	`, deviceID, userID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}

// DeleteDevice relies on ON DELETE CASCADE for usage records, activity
// events and screenshot metadata.
func (r *Repository) DeleteDevice(ctx context.Context, userID, deviceID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM devices WHERE id = $1 AND user_id = $2
	`, deviceID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}
