// Package workflow enforces the order status lifecycle: which transitions
// are legal from a given status, and how a transition is applied.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

var (
	ErrIllegalTransition      = errors.New("illegal order status transition")
	ErrConcurrentModification = errors.New("order status changed concurrently; refresh and retry")
	ErrNotFound               = errors.New("order not found")
)

// transitions is the single source of truth for the lifecycle graph. Both
// AvailableTransitions and ApplyTransition consult it, so display and guard
// cannot drift apart. Statuses with no entry are terminal. There are no
// self-loops: re-applying the current status is not a transition.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPendingAdminApproval:   {models.OrderStatusApprovedPendingPayment, models.OrderStatusRejectedByAdmin},
	models.OrderStatusApprovedPendingPayment: {models.OrderStatusPaymentProcessing, models.OrderStatusCancelledByUser},
	models.OrderStatusPaymentProcessing:      {models.OrderStatusShipped, models.OrderStatusCancelledByUser},
	models.OrderStatusShipped:                {models.OrderStatusDelivered},
	models.OrderStatusDelivered:              {models.OrderStatusCompleted},
}

// AvailableTransitions returns the statuses reachable from current.
// Unknown and terminal statuses yield an empty slice; callers must not treat
// the closed world as an error.
func AvailableTransitions(current models.OrderStatus) []models.OrderStatus {
	row := transitions[current]
	out := make([]models.OrderStatus, len(row))
	copy(out, row)
	return out
}

// CanTransition reports whether current -> target is listed in the table.
func CanTransition(current, target models.OrderStatus) bool {
	for _, s := range transitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s models.OrderStatus) bool {
	return s.Valid() && len(transitions[s]) == 0
}

type Workflow struct {
	orders repository.OrderRepositoryI
}

func New(orders repository.OrderRepositoryI) *Workflow {
	return &Workflow{orders: orders}
}

// ApplyTransition moves an order from current to target, optionally replacing
// the admin note. The write is conditioned on the stored status still being
// current; when another admin won the race the caller gets
// ErrConcurrentModification, never a silent overwrite.
func (w *Workflow) ApplyTransition(ctx context.Context, orderID int64, current, target models.OrderStatus, note *string) (*models.Order, error) {
	if !CanTransition(current, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
	}

	affected, err := w.orders.UpdateStatusCAS(ctx, orderID, current, target, note)
	if err != nil {
		return nil, fmt.Errorf("apply transition: %w", err)
	}
	if affected == 0 {
		// Zero rows: the order is gone, or its status moved under us.
		o, err := w.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("apply transition recheck: %w", err)
		}
		if o == nil {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: order %d is now %s", ErrConcurrentModification, orderID, o.Status)
	}

	o, err := w.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return o, nil
}
