package handlers

import (
	"encoding/json"
	"net/http"
)

type linkRequest struct {
	Code string `json:"code"`
}

type unlinkRequest struct {
	MonitorID   string `json:"monitor_id"`
	ProtectedID string `json:"protected_id"`
}

// GeneratePairingCode mints a fresh one-time code for the calling protected
// user. Any previous code is overwritten.
func GeneratePairingCode(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	code, err := associationService.GenerateCode(r.Context(), principal)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"code":    code,
	})
}

// ClearPairingCode removes the caller's active pairing code, if any.
func ClearPairingCode(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := associationService.ClearCode(r.Context(), principal.UID); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Pairing code cleared"})
}

// LinkPairing consumes a pairing code and links the caller as a monitor of
// the protected user who generated it.
func LinkPairing(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := associationService.Link(r.Context(), principal.UID, req.Code); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Linked successfully"})
}

// UnlinkPairing removes an existing monitor/protected relationship. The caller
// must be one of the two parties.
func UnlinkPairing(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req unlinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if req.MonitorID == "" || req.ProtectedID == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "monitor_id and protected_id are required"})
		return
	}
	if principal.UID != req.MonitorID && principal.UID != req.ProtectedID {
		writeJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "You can only unlink your own relationships"})
		return
	}

	if err := associationService.Unlink(r.Context(), req.MonitorID, req.ProtectedID); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Unlinked successfully"})
}
