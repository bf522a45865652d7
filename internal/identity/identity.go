// Package identity implements the external authentication collaborator:
// credentials live in their own table and the rest of the system only ever
// sees opaque identity IDs.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ForeverInLaw/airdealer/models"
)

var (
	ErrAlreadyExists      = errors.New("identity already exists for this email")
	ErrInvalidCredentials = errors.New("invalid email or secret")
	ErrNotFound           = errors.New("identity not found")
)

// Profile carries the optional display fields attached at sign-up.
type Profile struct {
	FirstName string
	LastName  string
}

// ProviderI is the identity/session collaborator contract.
type ProviderI interface {
	Create(ctx context.Context, email, secret string, profile Profile) (*models.Identity, error)
	Authenticate(ctx context.Context, email, secret string) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	Delete(ctx context.Context, id string) error
}

// Provider is the SQLite-backed implementation of ProviderI.
type Provider struct {
	db         *sql.DB
	bcryptCost int
}

func NewProvider(db *sql.DB, bcryptCost int) *Provider {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Provider{db: db, bcryptCost: bcryptCost}
}

// Create registers a new identity with a bcrypt-hashed secret.
// Fails with ErrAlreadyExists when the email is taken.
func (p *Provider) Create(ctx context.Context, email, secret string, profile Profile) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || secret == "" {
		return nil, errors.New("email and secret are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), p.bcryptCost)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	id := uuid.NewString()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, secret_hash, first_name, last_name) VALUES (?,?,?,?,?)`,
		id, email, string(hash), profile.FirstName, profile.LastName)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return p.GetByID(ctx, id)
}

// Authenticate verifies email+secret and returns the identity.
// A missing identity and a wrong secret both map to ErrInvalidCredentials so
// callers cannot probe which emails exist.
func (p *Provider) Authenticate(ctx context.Context, email, secret string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var ident models.Identity
	var hash string
	err := p.db.QueryRowContext(ctx,
		`SELECT id, email, secret_hash, first_name, last_name, created_at FROM identities WHERE email = ?`, email).
		Scan(&ident.ID, &ident.Email, &hash, &ident.FirstName, &ident.LastName, &ident.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &ident, nil
}

func (p *Provider) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var ident models.Identity
	err := p.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, created_at FROM identities WHERE id = ?`, id).
		Scan(&ident.ID, &ident.Email, &ident.FirstName, &ident.LastName, &ident.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

func (p *Provider) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation matches SQLite's unique-constraint error without
// importing the driver's error types everywhere.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
