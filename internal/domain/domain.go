package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// DateLayout is the calendar-day format used on the wire and in storage.
	DateLayout = "2006-01-02"

	// MaxEventsPerPush bounds the activity-event list accepted in a single
	// push call. Oldest excess is dropped; callers are expected to batch
	// frequently.
	MaxEventsPerPush = 200

	// ScreenshotCap is the per-user screenshot retention bound.
	ScreenshotCap = 200
)

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrScreenshotNotFound = errors.New("screenshot not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidReport      = errors.New("invalid report")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCacheMiss          = errors.New("cache miss")
)

// User is the account that owns devices, records and screenshots.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Device is a registered client that pushes usage data.
type Device struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Type       string
	LastSyncAt *time.Time
	CreatedAt  time.Time
}

// UsageRecord is one merged per-(user, device, domain, date) aggregate.
// TotalSeconds and Visits never regress across merges for the same key.
type UsageRecord struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	DeviceID     uuid.UUID
	Domain       string
	Date         string
	Title        string
	Category     string
	TotalSeconds int64
	Visits       int64
	FirstVisit   *time.Time
	LastVisit    *time.Time
	SyncedAt     time.Time
}

// ActivityEvent is one row of the append-only activity log.
type ActivityEvent struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DeviceID  uuid.UUID
	State     string
	Timestamp time.Time
	Date      string
}

// ActivityEventInput is the wire shape of an event inside a push.
type ActivityEventInput struct {
	State     string
	Timestamp time.Time
}

// Screenshot is the metadata row for one stored capture. The bytes live in
// the object store under ObjectKey.
type Screenshot struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DeviceID  uuid.UUID
	ObjectKey string
	Domain    string
	Title     string
	URL       string
	Category  string
	Timestamp time.Time
	Date      string
	SizeBytes int64
	CreatedAt time.Time
}

// SyncLogEntry is an append-only audit record of each push. Observability
// only; never consulted by merge or aggregation logic.
type SyncLogEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DeviceID  uuid.UUID
	SyncType  string
	ItemCount int
	CreatedAt time.Time
}

// PushResult reports what a push merged.
type PushResult struct {
	RecordsSynced int
	EventsSynced  int
}

// UserRepository is the persistence port for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
}

// DeviceRepository is the persistence port for devices. Deleting a device
// cascades to its records, events and screenshot metadata.
type DeviceRepository interface {
	CreateDevice(ctx context.Context, d Device) (Device, error)
	ListDevices(ctx context.Context, userID uuid.UUID) ([]Device, error)
	GetDevice(ctx context.Context, userID, deviceID uuid.UUID) (Device, error)
	RenameDevice(ctx context.Context, userID, deviceID uuid.UUID, name string) error
	DeleteDevice(ctx context.Context, userID, deviceID uuid.UUID) error
}

// SyncRepository applies merged reports atomically per key and serves pulls.
type SyncRepository interface {
	// MergeReport merges every (date, domain) entry of the report into the
	// record store in one transaction, updates the device's last_sync_at,
	// appends the capped event list and a sync log entry. It must fail with
	// ErrDeviceNotFound before any write when the device does not belong to
	// the user.
	MergeReport(ctx context.Context, userID, deviceID uuid.UUID, report Report, events []ActivityEventInput) (PushResult, error)

	ListRecordsSince(ctx context.Context, userID uuid.UUID, sinceDate string) ([]UsageRecord, error)
	ListRecordsForDate(ctx context.Context, userID uuid.UUID, date string) ([]UsageRecord, error)
	ListActivityEvents(ctx context.Context, userID uuid.UUID, date string) ([]ActivityEvent, error)
	ListSyncLog(ctx context.Context, userID uuid.UUID, limit int) ([]SyncLogEntry, error)
}

// AnalyticsRepository serves the read-side rollups. All queries are scoped to
// one user and return zeroed numbers when nothing matches.
type AnalyticsRepository interface {
	DailySummary(ctx context.Context, userID uuid.UUID, date string) (DailySummary, error)
	WeeklySummary(ctx context.Context, userID uuid.UUID, startDate, endDate string) (WeeklySummary, error)
	WindowStats(ctx context.Context, userID uuid.UUID, startDate, endDate string) (WindowStats, error)
	TopDomains(ctx context.Context, userID uuid.UUID, startDate, endDate string, limit int) ([]DomainRank, error)
}

// ScreenshotRepository is the persistence port for screenshot metadata.
type ScreenshotRepository interface {
	CreateScreenshot(ctx context.Context, s Screenshot) error
	GetScreenshot(ctx context.Context, userID, id uuid.UUID) (Screenshot, error)
	ListScreenshots(ctx context.Context, userID uuid.UUID, date string) ([]Screenshot, error)
	DeleteScreenshot(ctx context.Context, userID, id uuid.UUID) error
}

// FileStorage stores opaque blobs keyed by generated object keys.
type FileStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
