package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/services"
)

// Services wired from main at startup.
var (
	principalService   *services.PrincipalService
	associationService *services.AssociationService
	ruleService        *services.RuleService
	alertService       *services.AlertService
)

// InitServices wires the service layer into the handlers package.
func InitServices(
	principals *services.PrincipalService,
	associations *services.AssociationService,
	rules *services.RuleService,
	alerts *services.AlertService,
) {
	principalService = principals
	associationService = associations
	ruleService = rules
	alertService = alerts
}

// APIResponse is the shared success/message envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps the typed error taxonomy onto HTTP status codes.
// Anything untyped is a transient I/O failure and becomes a 500.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errs.IsValidation(err):
		status = http.StatusBadRequest
		message = err.Error()
	case errs.IsAuthentication(err):
		status = http.StatusUnauthorized
		message = err.Error()
	case errs.IsNotFound(err):
		status = http.StatusNotFound
		message = err.Error()
	case errs.IsConflict(err):
		status = http.StatusConflict
		message = err.Error()
	default:
		log.Printf("ERROR: %v", err)
	}

	writeJSON(w, status, APIResponse{Success: false, Message: message})
}

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// currentPrincipal resolves the caller's session token to their principal
// document. Every authenticated operation goes through here: the caller
// identity is always explicit, never ambient.
func currentPrincipal(r *http.Request) (*models.Principal, error) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, errs.Authenticationf("missing session token")
	}

	accountID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return nil, errs.Authenticationf("invalid session token")
	}

	return principalService.Get(r.Context(), accountID.String())
}
