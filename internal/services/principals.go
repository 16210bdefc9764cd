package services

import (
	"context"
	"strings"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/store"
)

// PrincipalService handles the safety profile of a user: registration-time
// document creation, cancel code and inactivity threshold updates.
type PrincipalService struct {
	Principals store.PrincipalStore
}

func NewPrincipalService(principals store.PrincipalStore) *PrincipalService {
	return &PrincipalService{Principals: principals}
}

// Register creates the principal document for a new account: Protected role,
// default cancel code, no links.
func (s *PrincipalService) Register(ctx context.Context, uid, email, name string) (*models.Principal, error) {
	if uid == "" {
		return nil, errs.Validationf("uid is required")
	}
	p := models.NewPrincipal(uid, email, name)
	if err := s.Principals.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the principal document for a caller.
func (s *PrincipalService) Get(ctx context.Context, uid string) (*models.Principal, error) {
	return s.Principals.Get(ctx, uid)
}

// UpdateCancelCode replaces the alert cancel code. 4 to 8 characters after
// trimming.
func (s *PrincipalService) UpdateCancelCode(ctx context.Context, uid, code string) error {
	code = strings.TrimSpace(code)
	if len(code) < 4 || len(code) > 8 {
		return errs.Validationf("cancel code must be 4 to 8 characters")
	}
	return s.Principals.SetCancelCode(ctx, uid, code)
}

// UpdateInactivityDuration sets the inactivity threshold in minutes.
func (s *PrincipalService) UpdateInactivityDuration(ctx context.Context, uid string, minutes int) error {
	if minutes <= 0 {
		return errs.Validationf("inactivity duration must be a positive number of minutes")
	}
	return s.Principals.SetInactivityDuration(ctx, uid, minutes)
}
