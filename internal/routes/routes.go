package routes

import (
	"github.com/AnshRaj112/wardline-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Post("/api/auth/signout-all", handlers.SignoutAll)
	r.Get("/api/auth/me", handlers.GetMe)

	// Profile settings
	r.Get("/api/profile", handlers.GetProfile)
	r.Put("/api/profile/cancel-code", handlers.UpdateCancelCode)
	r.Put("/api/profile/inactivity", handlers.UpdateInactivityDuration)

	// Pairing routes (one-time code association)
	r.Post("/api/pairing/code", handlers.GeneratePairingCode)
	r.Delete("/api/pairing/code", handlers.ClearPairingCode)
	r.Post("/api/pairing/link", handlers.LinkPairing)
	r.Delete("/api/pairing/link", handlers.UnlinkPairing)

	// Monitoring rules (monitor requests, protected user approves)
	r.Post("/api/rules/request", handlers.RequestRules)
	r.Get("/api/rules", handlers.GetRuleBundles)
	r.Put("/api/rules/authorize", handlers.SaveAuthorizations)

	// Schedule time windows
	r.Post("/api/time-windows", handlers.AddTimeWindow)
	r.Get("/api/time-windows", handlers.ListTimeWindows)
	r.Delete("/api/time-windows/{id}", handlers.RemoveTimeWindow)

	// Alert routes
	r.Post("/api/alerts/trigger", handlers.TriggerAlert)
	r.Post("/api/alerts/cancel", handlers.CancelAlert)
	r.Get("/api/alerts", handlers.GetAlerts)

	// Admin routes (X-Admin-Key header)
	r.Put("/api/admin/unblock-ip", handlers.AdminUnblockIP)
	r.Get("/api/admin/blocked-ip", handlers.AdminCheckIP)
	r.Get("/api/admin/violations", handlers.AdminGetViolations)

	// WebSocket route for real-time alert delivery to monitors
	r.Get("/ws/alerts", handlers.AlertsWebSocket)
}
