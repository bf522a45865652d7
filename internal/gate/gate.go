// Package gate is the access-control gate in front of the administrative
// area. It classifies authenticated identities, handles admin registration,
// and applies the approve/revoke/delete operations with their guards.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ForeverInLaw/airdealer/internal/identity"
	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

var (
	ErrAlreadyRegistered = errors.New("identity is already registered as an admin")
	ErrUnauthorized      = errors.New("actor is not an approved admin or attempted a self action")
	ErrNotFound          = errors.New("admin record not found")
)

// State classifies an authenticated identity with respect to the admin area.
type State string

const (
	StateNoAdminRecord   State = "no_admin_record"
	StatePendingApproval State = "pending_approval"
	StateApproved        State = "approved"
)

type Gate struct {
	idp    identity.ProviderI
	admins repository.AdminRepositoryI
}

func New(idp identity.ProviderI, admins repository.AdminRepositoryI) *Gate {
	return &Gate{idp: idp, admins: admins}
}

// Classify returns the gate state for an authenticated identity, along with
// the admin record when one exists (for the pending screen and the admin
// area). A store failure is returned as an error, never folded into a state:
// "no record" is a terminal answer, an unreachable store is not.
func (g *Gate) Classify(ctx context.Context, identityID string) (State, *models.AdminRecord, error) {
	rec, err := g.admins.GetByIdentityID(ctx, identityID)
	if err != nil {
		return "", nil, fmt.Errorf("classify identity %s: %w", identityID, err)
	}
	switch {
	case rec == nil:
		return StateNoAdminRecord, nil, nil
	case !rec.IsApproved:
		return StatePendingApproval, rec, nil
	default:
		return StateApproved, rec, nil
	}
}

// Register creates an identity and its unapproved admin record.
// If the record insert fails after the identity was created, the identity is
// rolled back so no orphaned identity is left behind in the auth store.
func (g *Gate) Register(ctx context.Context, email, secret, firstName, lastName string) (*models.AdminRecord, error) {
	ident, err := g.idp.Create(ctx, email, secret, identity.Profile{FirstName: firstName, LastName: lastName})
	if err != nil {
		if errors.Is(err, identity.ErrAlreadyExists) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	rec, err := g.admins.Create(ctx, &models.AdminRecord{
		IdentityID: ident.ID,
		Email:      ident.Email,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       "admin",
		IsApproved: false,
	})
	if err != nil {
		if delErr := g.idp.Delete(ctx, ident.ID); delErr != nil {
			log.Printf("rollback identity %s after failed admin record creation: %v", ident.ID, delErr)
		}
		return nil, fmt.Errorf("create admin record: %w", err)
	}
	return rec, nil
}

// SetApproval approves or revokes a target admin record on behalf of an
// acting identity. The actor must itself be approved and may not toggle its
// own record; both violations are ErrUnauthorized regardless of what the
// presentation layer hides.
func (g *Gate) SetApproval(ctx context.Context, actingIdentityID string, targetRecordID int64, approve bool) error {
	target, err := g.requireActorAndTarget(ctx, actingIdentityID, targetRecordID)
	if err != nil {
		return err
	}
	if err := g.admins.SetApproval(ctx, target.ID, approve); err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	return nil
}

// DeleteAdmin deletes a target admin record, then best-effort deletes the
// underlying identity. The identity deletion is deliberately not compensated:
// an orphaned identity simply re-enters the no_admin_record state and must
// re-register.
func (g *Gate) DeleteAdmin(ctx context.Context, actingIdentityID string, targetRecordID int64) error {
	target, err := g.requireActorAndTarget(ctx, actingIdentityID, targetRecordID)
	if err != nil {
		return err
	}
	if err := g.admins.Delete(ctx, target.ID); err != nil {
		return fmt.Errorf("delete admin record: %w", err)
	}
	if err := g.idp.Delete(ctx, target.IdentityID); err != nil {
		log.Printf("could not delete identity %s for removed admin %d: %v", target.IdentityID, target.ID, err)
	}
	return nil
}

// requireActorAndTarget enforces the shared preconditions of the mutating
// operations: the actor classifies as approved, the target exists, and the
// target is not the actor's own record.
func (g *Gate) requireActorAndTarget(ctx context.Context, actingIdentityID string, targetRecordID int64) (*models.AdminRecord, error) {
	state, _, err := g.Classify(ctx, actingIdentityID)
	if err != nil {
		return nil, err
	}
	if state != StateApproved {
		return nil, ErrUnauthorized
	}
	target, err := g.admins.GetByID(ctx, targetRecordID)
	if err != nil {
		return nil, fmt.Errorf("get admin record %d: %w", targetRecordID, err)
	}
	if target == nil {
		return nil, ErrNotFound
	}
	if target.IdentityID == actingIdentityID {
		return nil, ErrUnauthorized
	}
	return target, nil
}
