package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/transport/rest/response"
)

type pushRequest struct {
	DeviceID string        `json:"device_id"`
	Report   domain.Report `json:"report"`
	Events   []struct {
		State     string    `json:"state"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"events"`
}

func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	var req pushRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid device_id", map[string]string{
			"device_id": "must be a valid uuid",
		})
		return
	}

	events := make([]domain.ActivityEventInput, 0, len(req.Events))
	for _, ev := range req.Events {
		events = append(events, domain.ActivityEventInput{State: ev.State, Timestamp: ev.Timestamp})
	}

	res, err := h.sync.Push(r.Context(), auth.UserID, deviceID, req.Report, events)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, map[string]int{
		"records_synced": res.RecordsSynced,
		"events_synced":  res.EventsSynced,
	})
}

func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	since := r.URL.Query().Get("since")
	if (date == "") == (since == "") {
		fail(w, r, http.StatusBadRequest, "request.invalid", "exactly one of date or since is required", nil)
		return
	}

	recs, err := h.sync.Pull(r.Context(), auth.UserID, date, since)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toRecordDTOs(recs))
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format(domain.DateLayout)
	}

	events, err := h.sync.Activity(r.Context(), auth.UserID, date)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, eventDTO{DeviceID: ev.DeviceID, State: ev.State, Timestamp: ev.Timestamp})
	}
	response.Data(w, http.StatusOK, out)
}

func (h *Handler) SyncLog(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.sync.SyncLog(r.Context(), auth.UserID, limit)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]syncLogDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, syncLogDTO{
			DeviceID:  e.DeviceID,
			SyncType:  e.SyncType,
			ItemCount: e.ItemCount,
			CreatedAt: e.CreatedAt,
		})
	}
	response.Data(w, http.StatusOK, out)
}
