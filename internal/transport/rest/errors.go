package rest

import (
	"errors"
	"net/http"

	"github.com/screenpulse/screenpulse/internal/domain"
	appCtx "github.com/screenpulse/screenpulse/internal/pkg/context"
	"github.com/screenpulse/screenpulse/internal/transport/rest/response"
)

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidReport):
		fail(w, r, http.StatusBadRequest, "report.invalid", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidDate):
		fail(w, r, http.StatusBadRequest, "date.invalid", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidInput):
		fail(w, r, http.StatusBadRequest, "request.invalid", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		fail(w, r, http.StatusUnauthorized, "auth.invalid_credentials", "invalid credentials", nil)
	case errors.Is(err, domain.ErrEmailTaken):
		fail(w, r, http.StatusConflict, "auth.email_taken", err.Error(), nil)
	case errors.Is(err, domain.ErrDeviceNotFound):
		fail(w, r, http.StatusNotFound, "device.not_found", err.Error(), nil)
	case errors.Is(err, domain.ErrScreenshotNotFound):
		fail(w, r, http.StatusNotFound, "screenshot.not_found", err.Error(), nil)
	case errors.Is(err, domain.ErrUserNotFound):
		fail(w, r, http.StatusNotFound, "user.not_found", err.Error(), nil)
	default:
		// Storage and transport failures collapse to a generic 500; details
		// stay in the logs.
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}
