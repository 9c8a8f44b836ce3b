package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appCtx "github.com/screenpulse/screenpulse/internal/pkg/context"
)

// Logger provides structured audit logging for business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// PushMerged logs a completed sync push
func (l *Logger) PushMerged(ctx context.Context, userID, deviceID uuid.UUID, records, events int) {
	l.log.Info().
		Str("action", "push_merged").
		Str("user_id", userID.String()).
		Str("device_id", deviceID.String()).
		Int("records", records).
		Int("events", events).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Device push merged")
}

// DeviceRegistered logs a new device registration
func (l *Logger) DeviceRegistered(ctx context.Context, userID, deviceID uuid.UUID, name string) {
	l.log.Info().
		Str("action", "device_registered").
		Str("user_id", userID.String()).
		Str("device_id", deviceID.String()).
		Str("name", name).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Device registered")
}

// DeviceDeleted logs a device deletion (cascades to its records)
func (l *Logger) DeviceDeleted(ctx context.Context, userID, deviceID uuid.UUID) {
	l.log.Warn().
		Str("action", "device_deleted").
		Str("user_id", userID.String()).
		Str("device_id", deviceID.String()).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Device deleted")
}

// ScreenshotStored logs a stored screenshot
func (l *Logger) ScreenshotStored(ctx context.Context, userID, screenshotID uuid.UUID, sizeBytes int64) {
	l.log.Debug().
		Str("action", "screenshot_stored").
		Str("user_id", userID.String()).
		Str("screenshot_id", screenshotID.String()).
		Int64("size_bytes", sizeBytes).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Screenshot stored")
}

// ScreenshotsEvicted logs retention evictions
func (l *Logger) ScreenshotsEvicted(ctx context.Context, userID uuid.UUID, evicted int) {
	l.log.Info().
		Str("action", "screenshots_evicted").
		Str("user_id", userID.String()).
		Int("evicted", evicted).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Screenshot retention enforced")
}

// UserRegistered logs a new account
func (l *Logger) UserRegistered(ctx context.Context, userID uuid.UUID, email string) {
	l.log.Info().
		Str("action", "user_registered").
		Str("user_id", userID.String()).
		Str("email", email).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("User registered")
}
