package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForeverInLaw/airdealer/internal/identity"
	"github.com/ForeverInLaw/airdealer/internal/testutil"
	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

func newGate(t *testing.T, name string) (*Gate, *identity.Provider, *repository.AdminRepository) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	idp := identity.NewProvider(d, 4) // minimal cost for test speed
	admins := repository.NewAdminRepository(d)
	return New(idp, admins), idp, admins
}

// registerApproved registers an admin and flips its approval directly in the
// store, simulating the bootstrap admin.
func registerApproved(t *testing.T, g *Gate, admins *repository.AdminRepository, email string) *models.AdminRecord {
	t.Helper()
	ctx := context.Background()
	rec, err := g.Register(ctx, email, "secret123", "Root", "Admin")
	require.NoError(t, err)
	require.NoError(t, admins.SetApproval(ctx, rec.ID, true))
	rec, err = admins.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	return rec
}

func TestClassify_ExhaustiveStates(t *testing.T) {
	g, idp, admins := newGate(t, "gateclassify")
	ctx := context.Background()

	// No admin record at all.
	ident, err := idp.Create(ctx, "lone@example.com", "secret123", identity.Profile{})
	require.NoError(t, err)
	state, rec, err := g.Classify(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, StateNoAdminRecord, state)
	assert.Nil(t, rec)

	// Registered but unapproved.
	pending, err := g.Register(ctx, "pending@example.com", "secret123", "Pat", "Pending")
	require.NoError(t, err)
	state, rec, err = g.Classify(ctx, pending.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, StatePendingApproval, state)
	require.NotNil(t, rec)
	assert.Equal(t, "pending@example.com", rec.Email)
	assert.False(t, rec.IsApproved)

	// Approved.
	require.NoError(t, admins.SetApproval(ctx, pending.ID, true))
	state, rec, err = g.Classify(ctx, pending.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)
	require.NotNil(t, rec)
	assert.True(t, rec.IsApproved)
}

func TestClassify_StoreFailureIsAnErrorNotAState(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "gatedown")
	idp := identity.NewProvider(d, 4)
	admins := repository.NewAdminRepository(d)
	g := New(idp, admins)

	require.NoError(t, d.Close())

	state, _, err := g.Classify(context.Background(), "any-identity")
	require.Error(t, err)
	assert.Empty(t, state, "an unreachable store must never read as access denied")
}

func TestRegister_CreatesPendingRecord(t *testing.T) {
	g, _, _ := newGate(t, "gatereg")

	rec, err := g.Register(context.Background(), "new@example.com", "secret123", "New", "Admin")
	require.NoError(t, err)
	assert.False(t, rec.IsApproved)
	assert.Equal(t, "admin", rec.Role)
	assert.Equal(t, "new@example.com", rec.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	g, _, _ := newGate(t, "gatedup")
	ctx := context.Background()

	_, err := g.Register(ctx, "dup@example.com", "secret123", "A", "B")
	require.NoError(t, err)

	_, err = g.Register(ctx, "dup@example.com", "other456", "C", "D")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

// failingAdmins rejects every Create so registration fails after the
// identity already exists.
type failingAdmins struct {
	repository.AdminRepositoryI
}

func (f failingAdmins) Create(ctx context.Context, rec *models.AdminRecord) (*models.AdminRecord, error) {
	return nil, errors.New("insert rejected")
}

func TestRegister_RollsBackIdentityOnRecordFailure(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "gaterollback")
	idp := identity.NewProvider(d, 4)
	admins := repository.NewAdminRepository(d)
	g := New(idp, failingAdmins{admins})

	ctx := context.Background()
	_, err := g.Register(ctx, "rollback@example.com", "secret123", "R", "B")
	require.Error(t, err)

	// The identity must be gone: authenticating fails and a fresh
	// registration with the same email succeeds.
	_, err = idp.Authenticate(ctx, "rollback@example.com", "secret123")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)

	g2 := New(idp, admins)
	_, err = g2.Register(ctx, "rollback@example.com", "secret123", "R", "B")
	require.NoError(t, err)
}

func TestSetApproval_ApproveAndRevoke(t *testing.T) {
	g, _, admins := newGate(t, "gateapprove")
	ctx := context.Background()

	actor := registerApproved(t, g, admins, "root@example.com")
	target, err := g.Register(ctx, "target@example.com", "secret123", "T", "T")
	require.NoError(t, err)

	require.NoError(t, g.SetApproval(ctx, actor.IdentityID, target.ID, true))
	state, _, err := g.Classify(ctx, target.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)

	require.NoError(t, g.SetApproval(ctx, actor.IdentityID, target.ID, false))
	state, _, err = g.Classify(ctx, target.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, StatePendingApproval, state)
}

func TestSetApproval_SelfToggleForbidden(t *testing.T) {
	g, _, admins := newGate(t, "gateself")
	actor := registerApproved(t, g, admins, "root@example.com")

	err := g.SetApproval(context.Background(), actor.IdentityID, actor.ID, false)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSetApproval_UnapprovedActorForbidden(t *testing.T) {
	g, _, _ := newGate(t, "gateunapproved")
	ctx := context.Background()

	actor, err := g.Register(ctx, "actor@example.com", "secret123", "A", "A")
	require.NoError(t, err)
	target, err := g.Register(ctx, "victim@example.com", "secret123", "V", "V")
	require.NoError(t, err)

	err = g.SetApproval(ctx, actor.IdentityID, target.ID, true)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeleteAdmin_SelfDeleteForbidden(t *testing.T) {
	g, _, admins := newGate(t, "gateselfdel")
	actor := registerApproved(t, g, admins, "root@example.com")

	err := g.DeleteAdmin(context.Background(), actor.IdentityID, actor.ID)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeleteAdmin_RemovesRecordAndIdentity(t *testing.T) {
	g, idp, admins := newGate(t, "gatedelete")
	ctx := context.Background()

	actor := registerApproved(t, g, admins, "root@example.com")
	target, err := g.Register(ctx, "bye@example.com", "secret123", "B", "B")
	require.NoError(t, err)

	require.NoError(t, g.DeleteAdmin(ctx, actor.IdentityID, target.ID))

	rec, err := admins.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Nil(t, rec)
	_, err = idp.GetByID(ctx, target.IdentityID)
	require.ErrorIs(t, err, identity.ErrNotFound)
}

// stubbornIdentity wraps a provider and refuses deletion, exercising the
// record-deleted-but-identity-left branch.
type stubbornIdentity struct {
	identity.ProviderI
}

func (s stubbornIdentity) Delete(ctx context.Context, id string) error {
	return errors.New("auth store unreachable")
}

func TestDeleteAdmin_IdentityDeletionFailureIsNotRolledBack(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "gateasym")
	idp := identity.NewProvider(d, 4)
	admins := repository.NewAdminRepository(d)
	g := New(stubbornIdentity{idp}, admins)

	ctx := context.Background()
	actor := registerApproved(t, g, admins, "root@example.com")
	target, err := g.Register(ctx, "orphan@example.com", "secret123", "O", "O")
	require.NoError(t, err)

	require.NoError(t, g.DeleteAdmin(ctx, actor.IdentityID, target.ID), "identity deletion failure must not fail the call")

	rec, err := admins.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Nil(t, rec, "the admin record stays deleted")

	// The orphaned identity re-enters no_admin_record.
	state, _, err := g.Classify(ctx, target.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, StateNoAdminRecord, state)
}
