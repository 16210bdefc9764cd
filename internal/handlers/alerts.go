package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/services"
)

// maxVideoUploadBytes caps trigger request bodies (50 MB).
const maxVideoUploadBytes = 50 << 20

type cancelAlertRequest struct {
	Code string `json:"code"`
}

// TriggerAlert processes a distress event from the calling protected user.
// The request is multipart form data: "type" (required), "latitude" and
// "longitude" (optional), and an optional "video" file. A JSON body with the
// same fields minus the video is also accepted.
//
// The handler blocks for the duration of the cancellation window; the app
// posts the cancel code to POST /api/alerts/cancel while this call is in
// flight.
func TriggerAlert(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var (
		typeField string
		latField  string
		lngField  string
		videoData []byte
	)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxVideoUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid multipart form"})
			return
		}
		typeField = r.FormValue("type")
		latField = r.FormValue("latitude")
		lngField = r.FormValue("longitude")

		if file, _, err := r.FormFile("video"); err == nil {
			defer file.Close()
			videoData, err = io.ReadAll(io.LimitReader(file, maxVideoUploadBytes))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Failed to read video upload"})
				return
			}
		}
	} else {
		var body struct {
			Type      string   `json:"type"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
			return
		}
		typeField = body.Type
		if body.Latitude != nil {
			latField = strconv.FormatFloat(*body.Latitude, 'f', -1, 64)
		}
		if body.Longitude != nil {
			lngField = strconv.FormatFloat(*body.Longitude, 'f', -1, 64)
		}
	}

	alertType, ok := models.ParseAlertType(strings.TrimSpace(typeField))
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Unknown alert type"})
		return
	}

	var location *models.Location
	if latField != "" && lngField != "" {
		lat, latErr := strconv.ParseFloat(latField, 64)
		lng, lngErr := strconv.ParseFloat(lngField, 64)
		if latErr != nil || lngErr != nil {
			writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid coordinates"})
			return
		}
		location = &models.Location{Latitude: lat, Longitude: lng}
	}

	ctx := r.Context()

	// A code left over from a previous trigger must not suppress this one.
	if err := services.ClearCancelCode(ctx, principal.UID); err != nil {
		log.Printf("failed to clear stale cancel code for %s: %v", principal.UID, err)
	}

	delivered, err := alertService.Trigger(
		ctx,
		alertType,
		principal,
		services.NewRedisCancelCodeSource(principal.UID),
		services.LocationFunc(func(context.Context) (*models.Location, error) { return location, nil }),
		services.VideoFunc(func(context.Context) ([]byte, error) { return videoData, nil }),
	)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := services.ClearCancelCode(context.Background(), principal.UID); err != nil {
		log.Printf("failed to clear cancel code for %s: %v", principal.UID, err)
	}

	message := "Alert delivered"
	if !delivered {
		message = "Alert cancelled"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"delivered": delivered,
		"message":   message,
	})
}

// CancelAlert posts the cancel code the protected user typed so the in-flight
// trigger can observe it on its next poll.
func CancelAlert(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req cancelAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Code is required"})
		return
	}

	if err := services.PostCancelCode(r.Context(), principal.UID, strings.TrimSpace(req.Code)); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Cancel code received"})
}

// GetAlerts returns the calling monitor's received alerts, newest first.
// Supports ?limit= and ?skip= for pagination.
func GetAlerts(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	alerts, total, err := alertService.ListForMonitor(r.Context(), principal.UID, limit, skip)
	if err != nil {
		respondError(w, err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"alerts":   alerts,
		"total":    total,
		"has_more": int64(skip+len(alerts)) < total,
	})
}
