package repository

import (
	"context"

	"github.com/ForeverInLaw/airdealer/models"
)

// Lookup methods return (nil, nil) when no row matches: absence is a
// legitimate answer, not an infrastructure failure, and the two must never
// be conflated by callers.

// AdminRepositoryI defines operations on AdminRecord entities.
type AdminRepositoryI interface {
	Create(ctx context.Context, rec *models.AdminRecord) (*models.AdminRecord, error)
	GetByID(ctx context.Context, id int64) (*models.AdminRecord, error)
	GetByIdentityID(ctx context.Context, identityID string) (*models.AdminRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.AdminRecord, error)
	SetApproval(ctx context.Context, id int64, approved bool) error
	Delete(ctx context.Context, id int64) error
}

// OrderRepositoryI defines operations on Order entities.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, p ListOrdersParams) ([]models.Order, error)
	// UpdateStatusCAS performs the conditional status write: the update is
	// guarded by the expected current status and the number of affected rows
	// is returned so callers can detect a lost race.
	UpdateStatusCAS(ctx context.Context, id int64, from, to models.OrderStatus, note *string) (int64, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
	RevenueRows(ctx context.Context) ([]RevenueRow, error)
}

// UserRepositoryI defines operations on platform customers.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	CountActive(ctx context.Context) (int, error)
}
