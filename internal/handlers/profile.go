package handlers

import (
	"encoding/json"
	"net/http"
)

// GetProfile returns the caller's safety profile, including the settings the
// protected user's own app needs (cancel code, inactivity threshold).
func GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": map[string]interface{}{
			"id":                      principal.UID,
			"name":                    principal.Name,
			"email":                   principal.Email,
			"roles":                   principal.Roles,
			"monitors":                principal.Monitors,
			"protected_users":         principal.ProtectedUsers,
			"alert_cancel_code":       principal.AlertCancelCode,
			"inactivity_duration_min": principal.InactivityDurationMin,
		},
	})
}

type updateCancelCodeRequest struct {
	CancelCode string `json:"cancel_code"`
}

type updateInactivityRequest struct {
	InactivityDurationMin int `json:"inactivity_duration_min"`
}

// UpdateCancelCode changes the code the protected user must type to cancel a
// pending alert.
func UpdateCancelCode(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req updateCancelCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := principalService.UpdateCancelCode(r.Context(), principal.UID, req.CancelCode); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Cancel code updated"})
}

// UpdateInactivityDuration changes the inactivity threshold used by the
// client's inactivity detector.
func UpdateInactivityDuration(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req updateInactivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := principalService.UpdateInactivityDuration(r.Context(), principal.UID, req.InactivityDurationMin); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Inactivity duration updated"})
}
