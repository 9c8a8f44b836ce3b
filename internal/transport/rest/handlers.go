package rest

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/service"
)

type Handler struct {
	auth        *service.AuthService
	devices     *service.DeviceService
	sync        *service.SyncService
	analytics   *service.AnalyticsService
	screenshots *service.ScreenshotService
}

func NewHandler(
	auth *service.AuthService,
	devices *service.DeviceService,
	sync *service.SyncService,
	analytics *service.AnalyticsService,
	screenshots *service.ScreenshotService,
) *Handler {
	return &Handler{
		auth:        auth,
		devices:     devices,
		sync:        sync,
		analytics:   analytics,
		screenshots: screenshots,
	}
}

// mustAuth fetches the authenticated user or writes 401. The auth middleware
// guarantees presence on the protected routes; this is the handler-side check.
func mustAuth(w http.ResponseWriter, r *http.Request) (AuthContext, bool) {
	auth, ok := GetAuth(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
	}
	return auth, ok
}

// -------------------------
// Wire DTOs
// -------------------------

type deviceDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toDeviceDTO(d domain.Device) deviceDTO {
	return deviceDTO{
		ID:         d.ID,
		Name:       d.Name,
		Type:       d.Type,
		LastSyncAt: d.LastSyncAt,
		CreatedAt:  d.CreatedAt,
	}
}

type recordDTO struct {
	DeviceID     uuid.UUID  `json:"device_id"`
	Domain       string     `json:"domain"`
	Date         string     `json:"date"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	TotalSeconds int64      `json:"total_seconds"`
	Visits       int64      `json:"visits"`
	FirstVisit   *time.Time `json:"first_visit"`
	LastVisit    *time.Time `json:"last_visit"`
	SyncedAt     time.Time  `json:"synced_at"`
}

func toRecordDTOs(recs []domain.UsageRecord) []recordDTO {
	out := make([]recordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordDTO{
			DeviceID:     rec.DeviceID,
			Domain:       rec.Domain,
			Date:         rec.Date,
			Title:        rec.Title,
			Category:     rec.Category,
			TotalSeconds: rec.TotalSeconds,
			Visits:       rec.Visits,
			FirstVisit:   rec.FirstVisit,
			LastVisit:    rec.LastVisit,
			SyncedAt:     rec.SyncedAt,
		})
	}
	return out
}

type eventDTO struct {
	DeviceID  uuid.UUID `json:"device_id"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

type syncLogDTO struct {
	DeviceID  uuid.UUID `json:"device_id"`
	SyncType  string    `json:"sync_type"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

type screenshotDTO struct {
	ID        uuid.UUID `json:"id"`
	DeviceID  uuid.UUID `json:"device_id"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	SizeBytes int64     `json:"size_bytes"`
}

func toScreenshotDTO(s domain.Screenshot) screenshotDTO {
	return screenshotDTO{
		ID:        s.ID,
		DeviceID:  s.DeviceID,
		Domain:    s.Domain,
		Title:     s.Title,
		URL:       s.URL,
		Category:  s.Category,
		Timestamp: s.Timestamp,
		Date:      s.Date,
		SizeBytes: s.SizeBytes,
	}
}
