package models

// AdminRecord is the admin-approval record for an external identity.
// At most one record exists per identity; it is created at registration
// time with IsApproved=false and flipped only by an already-approved admin.
type AdminRecord struct {
	ID         int64  `db:"id" json:"id"`
	IdentityID string `db:"identity_id" json:"identity_id"`
	Email      string `db:"email" json:"email"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Role       string `db:"role" json:"role"`
	IsApproved bool   `db:"is_approved" json:"is_approved"`
	CreatedAt  string `db:"created_at" json:"created_at"`
	UpdatedAt  string `db:"updated_at" json:"updated_at"`
}
