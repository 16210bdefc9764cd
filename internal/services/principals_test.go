package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaults(t *testing.T) {
	fake := newFakePrincipalStore()
	svc := NewPrincipalService(fake)

	p, err := svc.Register(context.Background(), "u1", "u1@example.com", "Alex")
	require.NoError(t, err)

	assert.Equal(t, []models.Role{models.RoleProtected}, p.Roles)
	assert.Equal(t, models.DefaultCancelCode, p.AlertCancelCode)
	assert.Equal(t, models.DefaultInactivityDurationMin, p.InactivityDurationMin)
	assert.Empty(t, p.Monitors)
	assert.Empty(t, p.ProtectedUsers)

	stored, err := fake.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", stored.Email)
}

func TestRegisterDuplicate(t *testing.T) {
	fake := newFakePrincipalStore()
	svc := NewPrincipalService(fake)
	ctx := context.Background()

	_, err := svc.Register(ctx, "u1", "u1@example.com", "Alex")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "u1", "other@example.com", "Sam")
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestUpdateCancelCodeValidation(t *testing.T) {
	fake := newFakePrincipalStore(protectedUser("u1"))
	svc := NewPrincipalService(fake)
	ctx := context.Background()

	assert.True(t, errs.IsValidation(svc.UpdateCancelCode(ctx, "u1", "123")))
	assert.True(t, errs.IsValidation(svc.UpdateCancelCode(ctx, "u1", "123456789")))
	assert.True(t, errs.IsValidation(svc.UpdateCancelCode(ctx, "u1", "   1   ")))

	require.NoError(t, svc.UpdateCancelCode(ctx, "u1", "  9876  "))
	stored, err := fake.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "9876", stored.AlertCancelCode, "code is trimmed before storing")
}

func TestUpdateInactivityDuration(t *testing.T) {
	fake := newFakePrincipalStore(protectedUser("u1"))
	svc := NewPrincipalService(fake)
	ctx := context.Background()

	assert.True(t, errs.IsValidation(svc.UpdateInactivityDuration(ctx, "u1", 0)))
	assert.True(t, errs.IsValidation(svc.UpdateInactivityDuration(ctx, "u1", -5)))

	require.NoError(t, svc.UpdateInactivityDuration(ctx, "u1", 45))
	stored, err := fake.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 45, stored.InactivityDurationMin)
}
