package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/go-chi/chi/v5"
)

type addTimeWindowRequest struct {
	DaysOfWeek []int `json:"days_of_week"`
	StartHour  int   `json:"start_hour"`
	EndHour    int   `json:"end_hour"`
}

// AddTimeWindow creates a monitoring schedule window for the caller.
func AddTimeWindow(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req addTimeWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	window, err := ruleService.AddTimeWindow(r.Context(), principal.UID, req.DaysOfWeek, req.StartHour, req.EndHour)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"window":  window,
	})
}

// ListTimeWindows returns the caller's schedule windows.
func ListTimeWindows(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	windows, err := ruleService.ListTimeWindows(r.Context(), principal.UID)
	if err != nil {
		respondError(w, err)
		return
	}
	if windows == nil {
		windows = []models.TimeWindow{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"windows": windows,
	})
}

// RemoveTimeWindow deletes one of the caller's schedule windows.
func RemoveTimeWindow(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := ruleService.RemoveTimeWindow(r.Context(), principal.UID, id); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Time window removed"})
}
