// Package reports computes the read-only dashboard aggregates.
package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalProducts  int                        `json:"total_products"`
	ActiveUsers    int                        `json:"active_users"`
	PendingOrders  int                        `json:"pending_orders"`
	TotalRevenue   decimal.Decimal            `json:"total_revenue"`
	OrdersByStatus map[models.OrderStatus]int `json:"orders_by_status"`
}

type Service struct {
	orders   repository.OrderRepositoryI
	users    repository.UserRepositoryI
	products *repository.ProductRepository
}

func NewService(orders repository.OrderRepositoryI, users repository.UserRepositoryI, products *repository.ProductRepository) *Service {
	return &Service{orders: orders, users: users, products: products}
}

// Dashboard gathers the summary counters and the revenue total. Revenue is
// the sum of final_total_amount, falling back to total_amount, over completed
// and delivered orders, computed entirely in decimal arithmetic.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totalProducts, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	activeUsers, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	revenue, err := s.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalProducts:  totalProducts,
		ActiveUsers:    activeUsers,
		PendingOrders:  byStatus[models.OrderStatusPendingAdminApproval],
		TotalRevenue:   revenue,
		OrdersByStatus: byStatus,
	}, nil
}

// Revenue sums revenue-bearing orders without ever passing amounts through
// binary floats.
func (s *Service) Revenue(ctx context.Context) (decimal.Decimal, error) {
	rows, err := s.orders.RevenueRows(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("revenue rows: %w", err)
	}
	total := decimal.Zero
	for _, row := range rows {
		amount := row.TotalAmount
		if row.FinalTotalAmount != nil {
			amount = *row.FinalTotalAmount
		}
		total = total.Add(amount)
	}
	return total, nil
}
