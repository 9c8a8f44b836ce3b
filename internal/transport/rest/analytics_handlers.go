package rest

import (
	"net/http"
	"strconv"

	"github.com/screenpulse/screenpulse/internal/transport/rest/response"
)

func (h *Handler) DailySummary(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	sum, err := h.analytics.Daily(r.Context(), auth.UserID, r.URL.Query().Get("date"))
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, sum)
}

func (h *Handler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	weeks, _ := strconv.Atoi(r.URL.Query().Get("weeks"))

	sum, err := h.analytics.Weekly(r.Context(), auth.UserID, weeks)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, sum)
}

func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	trends, err := h.analytics.Trends(r.Context(), auth.UserID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, trends)
}

func (h *Handler) TopDomains(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ranks, err := h.analytics.TopDomains(r.Context(), auth.UserID, days, limit)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, ranks)
}
