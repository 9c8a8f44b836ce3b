package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/transport/rest/response"
)

func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	d, err := h.devices.Register(r.Context(), auth.UserID, req.Name, req.Type)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toDeviceDTO(d))
}

func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	ds, err := h.devices.List(r.Context(), auth.UserID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]deviceDTO, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDeviceDTO(d))
	}
	response.Data(w, http.StatusOK, out)
}

func (h *Handler) RenameDevice(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(chi.URLParam(r, "deviceID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid deviceID", map[string]string{
			"device_id": "must be a valid uuid",
		})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	if err := h.devices.Rename(r.Context(), auth.UserID, deviceID, req.Name); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "renamed"})
}

func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(chi.URLParam(r, "deviceID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid deviceID", map[string]string{
			"device_id": "must be a valid uuid",
		})
		return
	}

	if err := h.devices.Delete(r.Context(), auth.UserID, deviceID); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "deleted"})
}
