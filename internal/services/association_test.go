package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrincipalStore is an in-memory PrincipalStore. Transact clones the
// whole map, runs the callback against the clone and swaps it in only on
// success, so an aborted transaction leaves the store untouched.
type fakePrincipalStore struct {
	mu         sync.Mutex
	principals map[string]*models.Principal

	// allCodesInUse forces CodeInUse to report true, exhausting the
	// generation retry loop.
	allCodesInUse bool
	// afterFind runs after FindByAssociationCode, before the transaction
	// starts. Used to race code regeneration against redemption.
	afterFind func()
}

func newFakePrincipalStore(principals ...*models.Principal) *fakePrincipalStore {
	f := &fakePrincipalStore{principals: make(map[string]*models.Principal)}
	for _, p := range principals {
		f.principals[p.UID] = p
	}
	return f
}

func clonePrincipal(p *models.Principal) *models.Principal {
	c := *p
	c.Roles = append([]models.Role{}, p.Roles...)
	c.Monitors = append([]string{}, p.Monitors...)
	c.ProtectedUsers = append([]string{}, p.ProtectedUsers...)
	if p.AssociationCodeCreatedAt != nil {
		at := *p.AssociationCodeCreatedAt
		c.AssociationCodeCreatedAt = &at
	}
	return &c
}

func (f *fakePrincipalStore) Get(ctx context.Context, uid string) (*models.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.principals[uid]
	if !ok {
		return nil, errs.NotFoundf("principal %s not found", uid)
	}
	return clonePrincipal(p), nil
}

func (f *fakePrincipalStore) AddMonitor(ctx context.Context, protectedUID, monitorUID string) error {
	return f.mutate(protectedUID, func(p *models.Principal) {
		p.Monitors = addToSet(p.Monitors, monitorUID)
	})
}

func (f *fakePrincipalStore) AddProtectedUser(ctx context.Context, monitorUID, protectedUID string) error {
	return f.mutate(monitorUID, func(p *models.Principal) {
		p.ProtectedUsers = addToSet(p.ProtectedUsers, protectedUID)
	})
}

func (f *fakePrincipalStore) RemoveMonitor(ctx context.Context, protectedUID, monitorUID string) error {
	return f.mutate(protectedUID, func(p *models.Principal) {
		p.Monitors = removeFromSet(p.Monitors, monitorUID)
	})
}

func (f *fakePrincipalStore) RemoveProtectedUser(ctx context.Context, monitorUID, protectedUID string) error {
	return f.mutate(monitorUID, func(p *models.Principal) {
		p.ProtectedUsers = removeFromSet(p.ProtectedUsers, protectedUID)
	})
}

func (f *fakePrincipalStore) EnsureRole(ctx context.Context, uid string, role models.Role) error {
	return f.mutate(uid, func(p *models.Principal) {
		if !p.HasRole(role) {
			p.Roles = append(p.Roles, role)
		}
	})
}

func (f *fakePrincipalStore) ClearAssociationCode(ctx context.Context, uid string) error {
	return f.mutate(uid, func(p *models.Principal) {
		p.AssociationCode = ""
		p.AssociationCodeCreatedAt = nil
	})
}

func (f *fakePrincipalStore) Create(ctx context.Context, p *models.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.principals[p.UID]; exists {
		return errs.Conflictf("principal %s already exists", p.UID)
	}
	f.principals[p.UID] = clonePrincipal(p)
	return nil
}

func (f *fakePrincipalStore) FindByAssociationCode(ctx context.Context, code string) (*models.Principal, error) {
	f.mu.Lock()
	var found *models.Principal
	for _, p := range f.principals {
		if p.AssociationCode == code {
			found = clonePrincipal(p)
			break
		}
	}
	f.mu.Unlock()

	if f.afterFind != nil {
		f.afterFind()
	}
	if found == nil {
		return nil, errs.NotFoundf("no principal holds that code")
	}
	return found, nil
}

func (f *fakePrincipalStore) CodeInUse(ctx context.Context, code string) (bool, error) {
	if f.allCodesInUse {
		return true, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.principals {
		if p.AssociationCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePrincipalStore) SetAssociationCode(ctx context.Context, uid, code string, createdAt time.Time) error {
	return f.mutate(uid, func(p *models.Principal) {
		p.AssociationCode = code
		p.AssociationCodeCreatedAt = &createdAt
	})
}

func (f *fakePrincipalStore) SetCancelCode(ctx context.Context, uid, code string) error {
	return f.mutate(uid, func(p *models.Principal) { p.AlertCancelCode = code })
}

func (f *fakePrincipalStore) SetInactivityDuration(ctx context.Context, uid string, minutes int) error {
	return f.mutate(uid, func(p *models.Principal) { p.InactivityDurationMin = minutes })
}

func (f *fakePrincipalStore) Transact(ctx context.Context, fn func(ctx context.Context, tx store.PrincipalTx) error) error {
	f.mu.Lock()
	snapshot := make(map[string]*models.Principal, len(f.principals))
	for uid, p := range f.principals {
		snapshot[uid] = clonePrincipal(p)
	}
	f.mu.Unlock()

	txStore := &fakePrincipalStore{principals: snapshot}
	if err := fn(ctx, txStore); err != nil {
		return err
	}

	f.mu.Lock()
	f.principals = txStore.principals
	f.mu.Unlock()
	return nil
}

func (f *fakePrincipalStore) mutate(uid string, apply func(*models.Principal)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.principals[uid]
	if !ok {
		return errs.NotFoundf("principal %s not found", uid)
	}
	apply(p)
	return nil
}

func addToSet(set []string, v string) []string {
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

func removeFromSet(set []string, v string) []string {
	out := set[:0]
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func protectedUser(uid string) *models.Principal {
	return models.NewPrincipal(uid, uid+"@example.com", "User "+uid)
}

func TestGenerateCodeFormat(t *testing.T) {
	p := protectedUser("p1")
	fake := newFakePrincipalStore(p)
	svc := NewAssociationService(fake)

	code, err := svc.GenerateCode(context.Background(), p)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)

	stored, err := fake.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, code, stored.AssociationCode)
	require.NotNil(t, stored.AssociationCodeCreatedAt)
}

func TestGenerateCodeReplacesPrevious(t *testing.T) {
	p := protectedUser("p1")
	fake := newFakePrincipalStore(p)
	svc := NewAssociationService(fake)
	ctx := context.Background()

	first, err := svc.GenerateCode(ctx, p)
	require.NoError(t, err)
	second, err := svc.GenerateCode(ctx, p)
	require.NoError(t, err)

	stored, err := fake.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, second, stored.AssociationCode)
	if first != second {
		assert.NotEqual(t, first, stored.AssociationCode)
	}
}

func TestGenerateCodeRequiresProtectedRole(t *testing.T) {
	monitor := protectedUser("m1")
	monitor.Roles = []models.Role{models.RoleMonitor}
	fake := newFakePrincipalStore(monitor)
	svc := NewAssociationService(fake)

	_, err := svc.GenerateCode(context.Background(), monitor)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestGenerateCodeExhaustion(t *testing.T) {
	p := protectedUser("p1")
	fake := newFakePrincipalStore(p)
	fake.allCodesInUse = true
	svc := NewAssociationService(fake)

	_, err := svc.GenerateCode(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestLinkSuccess(t *testing.T) {
	p := protectedUser("p1")
	m := protectedUser("m1")
	fake := newFakePrincipalStore(p, m)
	svc := NewAssociationService(fake)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, p)
	require.NoError(t, err)

	require.NoError(t, svc.Link(ctx, "m1", code))

	storedP, err := fake.Get(ctx, "p1")
	require.NoError(t, err)
	storedM, err := fake.Get(ctx, "m1")
	require.NoError(t, err)

	assert.Contains(t, storedP.Monitors, "m1")
	assert.Contains(t, storedM.ProtectedUsers, "p1")
	assert.True(t, storedM.HasRole(models.RoleMonitor))
	assert.True(t, storedM.HasRole(models.RoleProtected), "existing roles are kept")
	assert.Empty(t, storedP.AssociationCode, "code is consumed on redemption")
	assert.Nil(t, storedP.AssociationCodeCreatedAt)
}

func TestLinkRejectsSelfPairing(t *testing.T) {
	p := protectedUser("p1")
	fake := newFakePrincipalStore(p)
	svc := NewAssociationService(fake)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, p)
	require.NoError(t, err)

	err = svc.Link(ctx, "p1", code)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestLinkUnknownCode(t *testing.T) {
	fake := newFakePrincipalStore(protectedUser("p1"), protectedUser("m1"))
	svc := NewAssociationService(fake)

	err := svc.Link(context.Background(), "m1", "000000")
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestLinkExpiredCodeClearedAndRejected(t *testing.T) {
	p := protectedUser("p1")
	m := protectedUser("m1")
	fake := newFakePrincipalStore(p, m)

	stale := time.Now().Add(-11 * time.Minute)
	require.NoError(t, fake.SetAssociationCode(context.Background(), "p1", "123456", stale))

	svc := NewAssociationService(fake)
	err := svc.Link(context.Background(), "m1", "123456")
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	// The cleanup must commit even though the link itself failed.
	storedP, getErr := fake.Get(context.Background(), "p1")
	require.NoError(t, getErr)
	assert.Empty(t, storedP.AssociationCode)

	storedM, getErr := fake.Get(context.Background(), "m1")
	require.NoError(t, getErr)
	assert.Empty(t, storedM.ProtectedUsers)
	assert.Empty(t, storedP.Monitors)
}

func TestLinkStaleCodeAfterRegeneration(t *testing.T) {
	p := protectedUser("p1")
	m := protectedUser("m1")
	fake := newFakePrincipalStore(p, m)
	require.NoError(t, fake.SetAssociationCode(context.Background(), "p1", "111111", time.Now()))

	// Between the scan and the transaction the owner regenerates the code.
	fake.afterFind = func() {
		fake.afterFind = nil
		_ = fake.SetAssociationCode(context.Background(), "p1", "222222", time.Now())
	}

	svc := NewAssociationService(fake)
	err := svc.Link(context.Background(), "m1", "111111")
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	// The aborted transaction leaves no partial link and keeps the new code.
	storedP, getErr := fake.Get(context.Background(), "p1")
	require.NoError(t, getErr)
	assert.Equal(t, "222222", storedP.AssociationCode)
	assert.Empty(t, storedP.Monitors)
}

func TestLinkValidatesInput(t *testing.T) {
	svc := NewAssociationService(newFakePrincipalStore())

	err := svc.Link(context.Background(), "m1", "   ")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestUnlink(t *testing.T) {
	p := protectedUser("p1")
	p.Monitors = []string{"m1", "m2"}
	m := protectedUser("m1")
	m.Roles = append(m.Roles, models.RoleMonitor)
	m.ProtectedUsers = []string{"p1"}
	fake := newFakePrincipalStore(p, m, protectedUser("m2"))

	svc := NewAssociationService(fake)
	ctx := context.Background()

	require.NoError(t, svc.Unlink(ctx, "m1", "p1"))

	storedP, err := fake.Get(ctx, "p1")
	require.NoError(t, err)
	storedM, err := fake.Get(ctx, "m1")
	require.NoError(t, err)

	assert.Equal(t, []string{"m2"}, storedP.Monitors)
	assert.Empty(t, storedM.ProtectedUsers)

	// Unlinking again is a no-op, not an error.
	require.NoError(t, svc.Unlink(ctx, "m1", "p1"))
}

func TestClearCode(t *testing.T) {
	p := protectedUser("p1")
	fake := newFakePrincipalStore(p)
	require.NoError(t, fake.SetAssociationCode(context.Background(), "p1", "123456", time.Now()))

	svc := NewAssociationService(fake)
	require.NoError(t, svc.ClearCode(context.Background(), "p1"))

	stored, err := fake.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, stored.AssociationCode)
}
