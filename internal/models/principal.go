package models

import (
	"time"
)

// Role is a closed set: a principal is protected (may raise alerts),
// a monitor (receives them), or both. Never compare roles as free strings.
type Role string

const (
	RoleProtected Role = "PROTECTED"
	RoleMonitor   Role = "MONITOR"
)

const (
	// DefaultCancelCode is assigned at registration until the user picks their own.
	DefaultCancelCode = "1234"
	// DefaultInactivityDurationMin is the default inactivity threshold.
	DefaultInactivityDurationMin = 30
)

// Principal is the per-user safety document stored in the principals collection.
// Field names are the wire contract shared with the mobile clients.
type Principal struct {
	UID                      string     `bson:"uid" json:"uid"`
	Email                    string     `bson:"email" json:"email"`
	Name                     string     `bson:"name" json:"name"`
	Roles                    []Role     `bson:"roles" json:"roles"`
	AlertCancelCode          string     `bson:"alertCancelCode" json:"-"`
	Monitors                 []string   `bson:"monitors" json:"monitors"`
	ProtectedUsers           []string   `bson:"protectedUsers" json:"protected_users"`
	AssociationCode          string     `bson:"associationCode,omitempty" json:"-"`
	AssociationCodeCreatedAt *time.Time `bson:"associationCodeCreatedAt,omitempty" json:"-"`
	InactivityDurationMin    int        `bson:"inactivityDurationMin" json:"inactivity_duration_min"`
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NewPrincipal builds the registration-time document: Protected role only,
// default cancel code, no links.
func NewPrincipal(uid, email, name string) *Principal {
	return &Principal{
		UID:                   uid,
		Email:                 email,
		Name:                  name,
		Roles:                 []Role{RoleProtected},
		AlertCancelCode:       DefaultCancelCode,
		Monitors:              []string{},
		ProtectedUsers:        []string{},
		InactivityDurationMin: DefaultInactivityDurationMin,
	}
}
