package repository

import (
	"context"
	"testing"

	"github.com/ForeverInLaw/airdealer/internal/db"
	"github.com/ForeverInLaw/airdealer/models"
)

func openAdminTestDB(t *testing.T, name string) *AdminRepository {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	// identities table has a FK from admins; seed the identities used below.
	for _, id := range []string{"id-1", "id-2"} {
		if _, err := d.Exec(`INSERT INTO identities (id, email, secret_hash) VALUES (?, ?, 'x')`, id, id+"@example.com"); err != nil {
			t.Fatalf("seed identity %s: %v", id, err)
		}
	}
	return NewAdminRepository(d)
}

func TestAdminCreateGetAndApprove(t *testing.T) {
	admins := openAdminTestDB(t, "admincrud")
	ctx := context.Background()

	rec, err := admins.Create(ctx, &models.AdminRecord{
		IdentityID: "id-1",
		Email:      "id-1@example.com",
		FirstName:  "Ada",
		LastName:   "Admin",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.IsApproved {
		t.Error("new record must start unapproved")
	}
	if rec.Role != "admin" {
		t.Errorf("role = %q, want admin", rec.Role)
	}

	byIdentity, err := admins.GetByIdentityID(ctx, "id-1")
	if err != nil {
		t.Fatalf("get by identity: %v", err)
	}
	if byIdentity == nil || byIdentity.ID != rec.ID {
		t.Fatalf("get by identity = %+v", byIdentity)
	}

	if err := admins.SetApproval(ctx, rec.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, err := admins.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsApproved {
		t.Error("record should be approved")
	}
	if got.UpdatedAt == "" {
		t.Error("updated_at should be set")
	}
}

func TestAdminOneRecordPerIdentity(t *testing.T) {
	admins := openAdminTestDB(t, "adminunique")
	ctx := context.Background()

	if _, err := admins.Create(ctx, &models.AdminRecord{IdentityID: "id-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := admins.Create(ctx, &models.AdminRecord{IdentityID: "id-1", Email: "b@example.com"}); err == nil {
		t.Fatal("second record for the same identity must fail")
	}
}

func TestAdminDeleteAndMissingLookups(t *testing.T) {
	admins := openAdminTestDB(t, "admindelete")
	ctx := context.Background()

	rec, err := admins.Create(ctx, &models.AdminRecord{IdentityID: "id-2", Email: "c@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := admins.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := admins.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Errorf("deleted record still present: %+v", got)
	}

	// Deleting again reports no rows.
	if err := admins.Delete(ctx, rec.ID); err == nil {
		t.Error("second delete should fail")
	}
}
