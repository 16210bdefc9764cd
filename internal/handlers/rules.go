package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/wardline-backend/internal/models"
)

type requestRulesRequest struct {
	ProtectedID string                  `json:"protected_id"`
	Rules       []models.MonitoringRule `json:"rules"`
}

type saveAuthorizationsRequest struct {
	MonitorID       string            `json:"monitor_id"`
	AuthorizedTypes []models.RuleType `json:"authorized_types"`
}

// RequestRules lets a monitor (re)submit the set of rules they want to apply
// to one of their protected users. Any previous approvals are reset.
func RequestRules(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req requestRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := ruleService.RequestRules(r.Context(), req.ProtectedID, principal.UID, req.Rules); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Rules requested. Waiting for approval."})
}

// GetRuleBundles returns every monitor's requested rules and current approvals
// for the calling protected user.
func GetRuleBundles(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	bundles, err := ruleService.GetBundlesForProtected(r.Context(), principal.UID)
	if err != nil {
		respondError(w, err)
		return
	}
	if bundles == nil {
		bundles = []models.MonitorRulesBundle{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"bundles": bundles,
	})
}

// SaveAuthorizations records which of a monitor's requested rule kinds the
// calling protected user approves.
func SaveAuthorizations(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req saveAuthorizationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if req.MonitorID == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "monitor_id is required"})
		return
	}

	if err := ruleService.SaveAuthorizations(r.Context(), principal.UID, req.MonitorID, req.AuthorizedTypes); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Authorizations saved"})
}
