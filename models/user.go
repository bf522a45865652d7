package models

// User represents a platform customer.
// It maps to the `users` table in SQLite.
type User struct {
	ID           int64   `db:"id" json:"id"`
	Username     *string `db:"username" json:"username,omitempty"`
	FirstName    *string `db:"first_name" json:"first_name,omitempty"`
	LastName     *string `db:"last_name" json:"last_name,omitempty"`
	LanguageCode string  `db:"language_code" json:"language_code"`
	IsBlocked    bool    `db:"is_blocked" json:"is_blocked"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`
}
