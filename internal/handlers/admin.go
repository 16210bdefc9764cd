package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/database"
	"github.com/AnshRaj112/wardline-backend/internal/middleware"
)

// adminAuthorized checks the X-Admin-Key header against ADMIN_API_KEY.
// With no key configured the admin surface is disabled entirely.
func adminAuthorized(r *http.Request) bool {
	key := os.Getenv("ADMIN_API_KEY")
	if key == "" {
		return false
	}
	return strings.TrimSpace(r.Header.Get("X-Admin-Key")) == key
}

type unblockIPRequest struct {
	IPAddress string `json:"ip_address"`
}

// AdminUnblockIP removes an IP from the rate-limit block list.
func AdminUnblockIP(w http.ResponseWriter, r *http.Request) {
	if !adminAuthorized(r) {
		writeJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Forbidden"})
		return
	}

	var req unblockIPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.IPAddress) == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "ip_address is required"})
		return
	}

	if err := middleware.UnblockIP(strings.TrimSpace(req.IPAddress)); err != nil {
		log.Printf("admin: unblock %s failed: %v", req.IPAddress, err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "IP unblocked"})
}

// AdminCheckIP reports whether an IP is currently blocked.
func AdminCheckIP(w http.ResponseWriter, r *http.Request) {
	if !adminAuthorized(r) {
		writeJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Forbidden"})
		return
	}

	ip := strings.TrimSpace(r.URL.Query().Get("ip"))
	if ip == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "ip query parameter is required"})
		return
	}

	blocked, err := middleware.IsIPBlocked(ip)
	if err != nil {
		log.Printf("admin: blocked check for %s failed: %v", ip, err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"ip":      ip,
		"blocked": blocked,
	})
}

type violationRecord struct {
	ID          string    `json:"id"`
	IPAddress   string    `json:"ip_address"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	ActionTaken string    `json:"action_taken"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminGetViolations lists the most recent rate-limit violations.
func AdminGetViolations(w http.ResponseWriter, r *http.Request) {
	if !adminAuthorized(r) {
		writeJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Forbidden"})
		return
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, ip_address, type, message, action_taken, created_at
		FROM violations
		ORDER BY created_at DESC
		LIMIT 100
	`)
	if err != nil {
		log.Printf("admin: violations query failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	defer rows.Close()

	violations := []violationRecord{}
	for rows.Next() {
		var v violationRecord
		if err := rows.Scan(&v.ID, &v.IPAddress, &v.Type, &v.Message, &v.ActionTaken, &v.CreatedAt); err != nil {
			log.Printf("admin: violations scan failed: %v", err)
			continue
		}
		violations = append(violations, v)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"violations": violations,
	})
}
