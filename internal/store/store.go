// Package store defines the document-store contract the services run
// against and provides the MongoDB implementation. Everything is a
// single-record operation except PrincipalStore.Transact, which is the one
// place requiring atomic multi-record visibility (the pairing commit).
package store

import (
	"context"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/models"
)

// PrincipalTx is the subset of principal operations usable inside a
// transaction. Write-conflict retries are the transaction mechanism's job,
// not the caller's.
type PrincipalTx interface {
	Get(ctx context.Context, uid string) (*models.Principal, error)
	AddMonitor(ctx context.Context, protectedUID, monitorUID string) error
	AddProtectedUser(ctx context.Context, monitorUID, protectedUID string) error
	RemoveMonitor(ctx context.Context, protectedUID, monitorUID string) error
	RemoveProtectedUser(ctx context.Context, monitorUID, protectedUID string) error
	EnsureRole(ctx context.Context, uid string, role models.Role) error
	ClearAssociationCode(ctx context.Context, uid string) error
}

// PrincipalStore persists principal documents.
type PrincipalStore interface {
	PrincipalTx

	Create(ctx context.Context, p *models.Principal) error
	// FindByAssociationCode scans for the principal owning a live pairing
	// code. Inherently a scan; never run it inside Transact.
	FindByAssociationCode(ctx context.Context, code string) (*models.Principal, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	SetAssociationCode(ctx context.Context, uid, code string, createdAt time.Time) error
	SetCancelCode(ctx context.Context, uid, code string) error
	SetInactivityDuration(ctx context.Context, uid string, minutes int) error
	// Transact runs fn atomically: every mutation through tx commits
	// together or not at all.
	Transact(ctx context.Context, fn func(ctx context.Context, tx PrincipalTx) error) error
}

// AlertStore persists the denormalized per-monitor alert copies.
type AlertStore interface {
	Insert(ctx context.Context, a models.Alert) error
	ListForMonitor(ctx context.Context, monitorUID string, limit, skip int) ([]models.Alert, int64, error)
}

// RuleStore persists per-(protected, monitor) rule bundles.
type RuleStore interface {
	ReplaceBundle(ctx context.Context, b models.MonitorRulesBundle) error
	ListBundles(ctx context.Context, protectedUID string) ([]models.MonitorRulesBundle, error)
	SetAuthorizedTypes(ctx context.Context, protectedUID, monitorUID string, types []models.RuleType) error
}

// TimeWindowStore persists a protected user's schedule windows.
type TimeWindowStore interface {
	Add(ctx context.Context, w models.TimeWindow) error
	List(ctx context.Context, protectedUID string) ([]models.TimeWindow, error)
	Remove(ctx context.Context, protectedUID, id string) error
}
