package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/AnshRaj112/wardline-backend/internal/database"
	"github.com/AnshRaj112/wardline-backend/internal/services"
	"github.com/AnshRaj112/wardline-backend/pkg/utils"
	"github.com/google/uuid"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Token   string                 `json:"token,omitempty"`
	User    map[string]interface{} `json:"user,omitempty"`
}

// Signup creates an account row, the matching principal document and a session.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Name, email and password are required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Password must be at least 8 characters"})
		return
	}

	var exists bool
	err := database.PostgresDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, req.Email).Scan(&exists)
	if err != nil {
		log.Printf("signup: email check failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if exists {
		writeJSON(w, http.StatusConflict, APIResponse{Success: false, Message: "An account with this email already exists"})
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("signup: password hash failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	accountID := uuid.New()
	_, err = database.PostgresDB.Exec(`
		INSERT INTO accounts (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, accountID, req.Name, req.Email, passwordHash)
	if err != nil {
		log.Printf("signup: account insert failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	principal, err := principalService.Register(r.Context(), accountID.String(), req.Email, req.Name)
	if err != nil {
		log.Printf("signup: principal create failed for %s: %v", accountID, err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	token, err := services.CreateSession(accountID)
	if err != nil {
		log.Printf("signup: session create failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "Account created successfully",
		Token:   token,
		User: map[string]interface{}{
			"id":    principal.UID,
			"name":  principal.Name,
			"email": principal.Email,
			"roles": principal.Roles,
		},
	})
}

// Signin verifies credentials and issues a session token.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Email and password are required"})
		return
	}

	var (
		accountID    uuid.UUID
		passwordHash string
		isActive     bool
	)
	err := database.PostgresDB.QueryRow(`
		SELECT id, password_hash, is_active FROM accounts WHERE email = $1
	`, req.Email).Scan(&accountID, &passwordHash, &isActive)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}
	if !isActive {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "This account has been deactivated"})
		return
	}

	ok, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !ok {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	principal, err := principalService.Get(r.Context(), accountID.String())
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := services.CreateSession(accountID)
	if err != nil {
		log.Printf("signin: session create failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Signed in successfully",
		Token:   token,
		User: map[string]interface{}{
			"id":    principal.UID,
			"name":  principal.Name,
			"email": principal.Email,
			"roles": principal.Roles,
		},
	})
}

// Signout invalidates the caller's session token.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Missing session token"})
		return
	}

	if err := services.InvalidateSession(token); err != nil {
		log.Printf("signout: invalidate failed: %v", err)
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Signed out successfully"})
}

// SignoutAll invalidates every session for the calling account, across all
// devices.
func SignoutAll(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Missing session token"})
		return
	}

	accountID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Invalid session token"})
		return
	}

	if err := services.InvalidateAccountSessions(accountID); err != nil {
		log.Printf("signout-all: invalidate failed for %s: %v", accountID, err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Signed out on all devices"})
}

// GetMe returns the caller's principal document.
func GetMe(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":                      principal.UID,
			"name":                    principal.Name,
			"email":                   principal.Email,
			"roles":                   principal.Roles,
			"monitors":                principal.Monitors,
			"protected_users":         principal.ProtectedUsers,
			"inactivity_duration_min": principal.InactivityDurationMin,
		},
	})
}
