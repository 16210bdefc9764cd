package models

import (
	"strings"
	"time"
)

// AlertType enumerates the event kinds a protected user can raise.
type AlertType string

const (
	AlertTypeFall       AlertType = "FALL"
	AlertTypeAccident   AlertType = "ACCIDENT"
	AlertTypeGeofence   AlertType = "GEOFENCE"
	AlertTypeSpeed      AlertType = "SPEED"
	AlertTypeInactivity AlertType = "INACTIVITY"
	AlertTypePanic      AlertType = "PANIC"
)

// ParseAlertType validates a client-supplied type string (case-insensitive).
func ParseAlertType(s string) (AlertType, bool) {
	switch AlertType(strings.ToUpper(strings.TrimSpace(s))) {
	case AlertTypeFall:
		return AlertTypeFall, true
	case AlertTypeAccident:
		return AlertTypeAccident, true
	case AlertTypeGeofence:
		return AlertTypeGeofence, true
	case AlertTypeSpeed:
		return AlertTypeSpeed, true
	case AlertTypeInactivity:
		return AlertTypeInactivity, true
	case AlertTypePanic:
		return AlertTypePanic, true
	}
	return "", false
}

// AlertStatus is the terminal status written into each alert copy.
type AlertStatus string

const (
	AlertStatusSent      AlertStatus = "SENT"
	AlertStatusCancelled AlertStatus = "CANCELLED"
)

// Location is a plain coordinate pair attached to an alert.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Alert is one delivered copy of a distress event. The same event is written
// once per linked monitor (MonitorUID is the recipient key), identical content,
// never mutated afterwards.
type Alert struct {
	ID            string      `bson:"id" json:"id"`
	MonitorUID    string      `bson:"monitorUid" json:"-"`
	Type          AlertType   `bson:"type" json:"type"`
	Timestamp     time.Time   `bson:"timestamp" json:"timestamp"`
	ProtectedID   string      `bson:"protectedId" json:"protected_id"`
	ProtectedName string      `bson:"protectedName" json:"protected_name"`
	Location      *Location   `bson:"location,omitempty" json:"location,omitempty"`
	VideoURL      string      `bson:"videoUrl,omitempty" json:"video_url,omitempty"`
	Status        AlertStatus `bson:"status" json:"status"`
}
