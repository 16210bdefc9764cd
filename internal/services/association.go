package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/store"
)

const (
	// AssociationCodeTTL is how long a generated pairing code stays
	// redeemable. Expiry is enforced lazily at redemption time; there is
	// no background sweep.
	AssociationCodeTTL = 10 * time.Minute
	// codeGenerateAttempts bounds the uniqueness retry loop. With a
	// 6-digit space, exhausting it is practically unreachable.
	codeGenerateAttempts = 5
)

// AssociationService issues and redeems the one-time pairing codes that
// link a monitor to a protected user.
type AssociationService struct {
	Principals store.PrincipalStore
	// CodeTTL defaults to AssociationCodeTTL.
	CodeTTL time.Duration
	// Now is replaceable in tests.
	Now func() time.Time
}

func NewAssociationService(principals store.PrincipalStore) *AssociationService {
	return &AssociationService{
		Principals: principals,
		CodeTTL:    AssociationCodeTTL,
		Now:        time.Now,
	}
}

// GenerateCode allocates a fresh 6-digit code for the protected user,
// replacing any prior unredeemed code.
func (s *AssociationService) GenerateCode(ctx context.Context, protected *models.Principal) (string, error) {
	if !protected.HasRole(models.RoleProtected) {
		return "", errs.Validationf("only protected users can generate pairing codes")
	}

	for attempt := 0; attempt < codeGenerateAttempts; attempt++ {
		code, err := randomPairingCode()
		if err != nil {
			return "", err
		}

		inUse, err := s.Principals.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if inUse {
			continue
		}

		if err := s.Principals.SetAssociationCode(ctx, protected.UID, code, s.Now().UTC()); err != nil {
			return "", err
		}
		return code, nil
	}

	return "", errs.Conflictf("could not allocate a unique pairing code")
}

// Link redeems inputCode on behalf of the calling monitor. Two phases:
// an optimistic scan finds the code owner, then a transaction re-reads both
// principals and re-verifies the code before committing the bidirectional
// link. The re-check inside the transaction is the sole race guard against
// the code being regenerated or redeemed between the phases.
func (s *AssociationService) Link(ctx context.Context, monitorUID, inputCode string) error {
	code := strings.TrimSpace(inputCode)
	if code == "" {
		return errs.Validationf("pairing code is required")
	}
	if monitorUID == "" {
		return errs.Validationf("monitor id is required")
	}

	owner, err := s.Principals.FindByAssociationCode(ctx, code)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.Conflictf("invalid pairing code")
		}
		return err
	}
	if owner.UID == monitorUID {
		return errs.Conflictf("you cannot pair with yourself")
	}

	// linkErr carries expiry out of the transaction: the code cleanup must
	// commit, so the callback returns nil and the conflict surfaces after.
	var linkErr error

	err = s.Principals.Transact(ctx, func(txCtx context.Context, tx store.PrincipalTx) error {
		linkErr = nil

		protected, err := tx.Get(txCtx, owner.UID)
		if err != nil {
			return err
		}
		monitor, err := tx.Get(txCtx, monitorUID)
		if err != nil {
			return err
		}

		if protected.AssociationCode != code {
			return errs.Conflictf("pairing code is no longer valid")
		}

		if protected.AssociationCodeCreatedAt == nil ||
			s.Now().Sub(*protected.AssociationCodeCreatedAt) > s.CodeTTL {
			if err := tx.ClearAssociationCode(txCtx, protected.UID); err != nil {
				return err
			}
			linkErr = errs.Conflictf("pairing code has expired")
			return nil
		}

		if err := tx.AddMonitor(txCtx, protected.UID, monitor.UID); err != nil {
			return err
		}
		if err := tx.AddProtectedUser(txCtx, monitor.UID, protected.UID); err != nil {
			return err
		}
		if err := tx.EnsureRole(txCtx, monitor.UID, models.RoleMonitor); err != nil {
			return err
		}
		// One-time consumption.
		return tx.ClearAssociationCode(txCtx, protected.UID)
	})
	if err != nil {
		return err
	}
	return linkErr
}

// Unlink removes the bidirectional link in a single transaction. Idempotent:
// removing an absent member is a no-op.
func (s *AssociationService) Unlink(ctx context.Context, monitorUID, protectedUID string) error {
	if monitorUID == "" || protectedUID == "" {
		return errs.Validationf("monitor id and protected id are required")
	}

	return s.Principals.Transact(ctx, func(txCtx context.Context, tx store.PrincipalTx) error {
		if err := tx.RemoveMonitor(txCtx, protectedUID, monitorUID); err != nil {
			return err
		}
		return tx.RemoveProtectedUser(txCtx, monitorUID, protectedUID)
	})
}

// ClearCode deletes the caller's own pending code. No transaction needed;
// only the owner can race with itself.
func (s *AssociationService) ClearCode(ctx context.Context, protectedUID string) error {
	if protectedUID == "" {
		return errs.Validationf("protected id is required")
	}
	return s.Principals.ClearAssociationCode(ctx, protectedUID)
}

func randomPairingCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
