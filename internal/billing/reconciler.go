package billing

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/repository"
)

// Reconciler pulls payment/order status for unsynced billing orders from the
// gateway and persists it. One pass per invocation; orders the gateway has no
// definitive status for stay unsynced and are retried next pass.
type Reconciler struct {
	orders  repository.BillingOrderRepository
	gateway Gateway
	logger  *zap.Logger
}

// NewReconciler builds a reconciler.
func NewReconciler(orders repository.BillingOrderRepository, gateway Gateway, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{orders: orders, gateway: gateway, logger: logger}
}

// Sync runs one reconciliation pass. Per-order failures are logged and do not
// abort the pass.
func (r *Reconciler) Sync(ctx context.Context) error {
	orders, err := r.orders.FindUnsynced(ctx)
	if err != nil {
		return err
	}

	synced := 0
	for i := range orders {
		order := &orders[i]
		state, err := r.gateway.GetOrder(ctx, order.No)
		if err != nil {
			r.logger.Warn("order lookup failed", zap.String("no", order.No), zap.Error(err))
			continue
		}
		if state == nil || state.PaymentStatus == nil {
			continue
		}
		order.PaymentStatus = state.PaymentStatus
		order.OrderStatus = state.OrderStatus
		order.IsExpired = state.IsExpired
		order.Synced = true
		if err := r.orders.Update(ctx, order); err != nil {
			r.logger.Warn("order update failed", zap.String("no", order.No), zap.Error(err))
			continue
		}
		synced++
	}

	if len(orders) > 0 {
		r.logger.Info("billing orders reconciled", zap.Int("checked", len(orders)), zap.Int("synced", synced))
	}
	return nil
}
