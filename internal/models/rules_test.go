package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseRuleType(t *testing.T) {
	got, ok := ParseRuleType("geofence")
	require.True(t, ok)
	assert.Equal(t, RuleTypeGeofence, got)

	got, ok = ParseRuleType("  SPEED ")
	require.True(t, ok)
	assert.Equal(t, RuleTypeSpeed, got)

	_, ok = ParseRuleType("TELEPORT")
	assert.False(t, ok)
}

func TestBundleFromDocument(t *testing.T) {
	doc := map[string]interface{}{
		"protectedUid": "p1",
		"monitorUid":   "m1",
		"requested": []interface{}{
			map[string]interface{}{
				"type":    "SPEED",
				"enabled": false,
				"params": map[string]interface{}{
					"maxSpeed": 90.0,
				},
			},
			map[string]interface{}{
				"type": "GEOFENCE",
				"params": map[string]interface{}{
					"geofenceAreas": []interface{}{
						map[string]interface{}{
							"latitude":  48.85,
							"longitude": 2.35,
							"radiusM":   500,
						},
					},
				},
			},
		},
		"authorizedTypes": []interface{}{"SPEED"},
	}

	b := BundleFromDocument(doc)

	assert.Equal(t, "p1", b.ProtectedUID)
	assert.Equal(t, "m1", b.MonitorUID)
	require.Len(t, b.Requested, 2)

	speed := b.Requested[0]
	assert.Equal(t, RuleTypeSpeed, speed.Type)
	assert.False(t, speed.Enabled)
	require.NotNil(t, speed.Params.MaxSpeed)
	assert.Equal(t, 90.0, *speed.Params.MaxSpeed)

	geo := b.Requested[1]
	assert.Equal(t, RuleTypeGeofence, geo.Type)
	assert.True(t, geo.Enabled, "missing enabled flag decodes as enabled")
	require.Len(t, geo.Params.GeofenceAreas, 1)
	assert.Equal(t, 500.0, geo.Params.GeofenceAreas[0].RadiusM)

	assert.Equal(t, []RuleType{RuleTypeSpeed}, b.AuthorizedTypes)
}

func TestBundleFromDocumentBSONShapes(t *testing.T) {
	// The BSON decoder yields primitive.M / primitive.A, not plain maps.
	doc := map[string]interface{}{
		"protectedUid": "p1",
		"monitorUid":   "m1",
		"requested": primitive.A{
			primitive.M{
				"type":    "INACTIVITY",
				"enabled": true,
				"params": primitive.M{
					"inactivityDurationMin": int32(45),
				},
			},
		},
		"authorizedTypes": primitive.A{"INACTIVITY"},
	}

	b := BundleFromDocument(doc)

	require.Len(t, b.Requested, 1)
	assert.Equal(t, RuleTypeInactivity, b.Requested[0].Type)
	require.NotNil(t, b.Requested[0].Params.InactivityDurationMin)
	assert.Equal(t, 45, *b.Requested[0].Params.InactivityDurationMin)
	assert.Equal(t, []RuleType{RuleTypeInactivity}, b.AuthorizedTypes)
}

func TestBundleFromDocumentTolerantDefaults(t *testing.T) {
	doc := map[string]interface{}{
		"protectedUid": "p1",
		"monitorUid":   "m1",
		"requested": []interface{}{
			map[string]interface{}{"type": "NOT_A_RULE"},
			map[string]interface{}{},
			"not even a document",
		},
		"authorizedTypes": []interface{}{"BOGUS"},
	}

	b := BundleFromDocument(doc)

	require.Len(t, b.Requested, 2, "non-document entries are skipped")
	assert.Equal(t, RuleTypeFallback, b.Requested[0].Type)
	assert.True(t, b.Requested[0].Enabled)
	assert.Equal(t, RuleTypeFallback, b.Requested[1].Type)
	assert.Equal(t, []RuleType{RuleTypeFallback}, b.AuthorizedTypes)
}

func TestBundleFromDocumentEmpty(t *testing.T) {
	b := BundleFromDocument(map[string]interface{}{})

	assert.NotNil(t, b.Requested)
	assert.Empty(t, b.Requested)
	assert.NotNil(t, b.AuthorizedTypes)
	assert.Empty(t, b.AuthorizedTypes)
}
