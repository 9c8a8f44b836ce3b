package rest

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/service"
	"github.com/screenpulse/screenpulse/internal/transport/rest/response"
)

const maxScreenshotBytes = 10 << 20 // 10 MiB

// UploadScreenshot accepts multipart/form-data: a "file" part plus metadata
// fields (device_id, domain, title, url, category, timestamp RFC3339).
func (h *Handler) UploadScreenshot(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxScreenshotBytes); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid multipart body", nil)
		return
	}

	deviceID, err := uuid.Parse(r.FormValue("device_id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid device_id", map[string]string{
			"device_id": "must be a valid uuid",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "file part is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxScreenshotBytes+1))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "unreadable file part", nil)
		return
	}
	if len(data) > maxScreenshotBytes {
		fail(w, r, http.StatusRequestEntityTooLarge, "screenshot.too_large", "file exceeds size limit", nil)
		return
	}

	meta := service.ScreenshotMeta{
		Domain:   r.FormValue("domain"),
		Title:    r.FormValue("title"),
		URL:      r.FormValue("url"),
		Category: r.FormValue("category"),
	}
	if raw := r.FormValue("timestamp"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "request.invalid", "invalid timestamp", map[string]string{
				"timestamp": "must be RFC3339",
			})
			return
		}
		meta.Timestamp = ts
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	shot, err := h.screenshots.Store(r.Context(), auth.UserID, deviceID, meta, data, contentType)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toScreenshotDTO(shot))
}

func (h *Handler) ListScreenshots(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	shots, err := h.screenshots.List(r.Context(), auth.UserID, r.URL.Query().Get("date"))
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]screenshotDTO, 0, len(shots))
	for _, s := range shots {
		out = append(out, toScreenshotDTO(s))
	}
	response.Data(w, http.StatusOK, out)
}

// FetchScreenshot streams the stored image bytes, not a JSON envelope.
func (h *Handler) FetchScreenshot(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "screenshotID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid screenshotID", nil)
		return
	}

	_, data, err := h.screenshots.Fetch(r.Context(), auth.UserID, id)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) DeleteScreenshot(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "screenshotID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid screenshotID", nil)
		return
	}

	if err := h.screenshots.Delete(r.Context(), auth.UserID, id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "deleted"})
}
