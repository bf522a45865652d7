package models

// Identity is an authentication principal owned by the identity provider.
// The rest of the system treats its ID as opaque.
type Identity struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
