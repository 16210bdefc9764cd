package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleType enumerates the monitoring rule kinds a monitor may request.
type RuleType string

const (
	RuleTypeFall       RuleType = "FALL"
	RuleTypeAccident   RuleType = "ACCIDENT"
	RuleTypeGeofence   RuleType = "GEOFENCE"
	RuleTypeSpeed      RuleType = "SPEED"
	RuleTypeInactivity RuleType = "INACTIVITY"
)

// RuleTypeFallback is what stored records with unknown or missing rule kinds
// decode to instead of failing the whole read.
const RuleTypeFallback = RuleTypeFall

// ParseRuleType validates a client-supplied rule kind (case-insensitive).
func ParseRuleType(s string) (RuleType, bool) {
	switch RuleType(strings.ToUpper(strings.TrimSpace(s))) {
	case RuleTypeFall:
		return RuleTypeFall, true
	case RuleTypeAccident:
		return RuleTypeAccident, true
	case RuleTypeGeofence:
		return RuleTypeGeofence, true
	case RuleTypeSpeed:
		return RuleTypeSpeed, true
	case RuleTypeInactivity:
		return RuleTypeInactivity, true
	}
	return "", false
}

// GeofenceArea is a circular allowed area for the GEOFENCE rule.
type GeofenceArea struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	RadiusM   float64 `bson:"radiusM" json:"radius_m"`
}

// RuleParams carries the optional parameters of a monitoring rule.
type RuleParams struct {
	MaxSpeed              *float64       `bson:"maxSpeed,omitempty" json:"max_speed,omitempty"`
	InactivityDurationMin *int           `bson:"inactivityDurationMin,omitempty" json:"inactivity_duration_min,omitempty"`
	GeofenceAreas         []GeofenceArea `bson:"geofenceAreas,omitempty" json:"geofence_areas,omitempty"`
}

// MonitoringRule is a rule kind plus parameters and an enabled flag.
// Pure value data, no lifecycle of its own.
type MonitoringRule struct {
	Type    RuleType   `bson:"type" json:"type"`
	Enabled bool       `bson:"enabled" json:"enabled"`
	Params  RuleParams `bson:"params" json:"params"`
}

// MonitorRulesBundle is the per-(protected, monitor) record of what the
// monitor requested versus what the protected user approved. AuthorizedTypes
// being a subset of the requested kinds is a convention, not enforced here.
type MonitorRulesBundle struct {
	ProtectedUID    string           `bson:"protectedUid" json:"protected_uid"`
	MonitorUID      string           `bson:"monitorUid" json:"monitor_uid"`
	Requested       []MonitoringRule `bson:"requested" json:"requested"`
	AuthorizedTypes []RuleType       `bson:"authorizedTypes" json:"authorized_types"`
}

// BundleFromDocument decodes a stored bundle from a raw document, tolerating
// partially-shaped records: unknown or missing rule kinds fall back to
// RuleTypeFallback and a missing enabled flag decodes as enabled.
func BundleFromDocument(doc map[string]interface{}) MonitorRulesBundle {
	b := MonitorRulesBundle{
		ProtectedUID:    asString(doc["protectedUid"]),
		MonitorUID:      asString(doc["monitorUid"]),
		Requested:       []MonitoringRule{},
		AuthorizedTypes: []RuleType{},
	}

	if raw, ok := asSlice(doc["requested"]); ok {
		for _, item := range raw {
			entry, ok := asDocument(item)
			if !ok {
				continue
			}
			rule := MonitoringRule{
				Type:    ruleTypeOrFallback(asString(entry["type"])),
				Enabled: true,
			}
			if enabled, ok := entry["enabled"].(bool); ok {
				rule.Enabled = enabled
			}
			if params, ok := asDocument(entry["params"]); ok {
				if v, ok := asFloat(params["maxSpeed"]); ok {
					rule.Params.MaxSpeed = &v
				}
				if v, ok := asFloat(params["inactivityDurationMin"]); ok {
					minutes := int(v)
					rule.Params.InactivityDurationMin = &minutes
				}
				if areas, ok := asSlice(params["geofenceAreas"]); ok {
					for _, a := range areas {
						am, ok := asDocument(a)
						if !ok {
							continue
						}
						lat, _ := asFloat(am["latitude"])
						lng, _ := asFloat(am["longitude"])
						radius, _ := asFloat(am["radiusM"])
						rule.Params.GeofenceAreas = append(rule.Params.GeofenceAreas, GeofenceArea{
							Latitude:  lat,
							Longitude: lng,
							RadiusM:   radius,
						})
					}
				}
			}
			b.Requested = append(b.Requested, rule)
		}
	}

	if raw, ok := asSlice(doc["authorizedTypes"]); ok {
		for _, item := range raw {
			b.AuthorizedTypes = append(b.AuthorizedTypes, ruleTypeOrFallback(asString(item)))
		}
	}

	return b
}

func ruleTypeOrFallback(s string) RuleType {
	if t, ok := ParseRuleType(s); ok {
		return t
	}
	return RuleTypeFallback
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asSlice and asDocument accept both plain Go shapes and the named types
// the BSON decoder produces.
func asSlice(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	case primitive.A:
		return []interface{}(s), true
	}
	return nil, false
}

func asDocument(v interface{}) (map[string]interface{}, bool) {
	switch d := v.(type) {
	case map[string]interface{}:
		return d, true
	case primitive.M:
		return map[string]interface{}(d), true
	}
	return nil, false
}

// asFloat accepts the numeric types the BSON decoder may produce.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
