package billing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/org-service/internal/domain"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]domain.BillingOrder
	nextID int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]domain.BillingOrder), nextID: 1}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.BillingOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = r.nextID
	r.nextID++
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *domain.BillingOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.BillingOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &order, nil
}

func (r *fakeOrderRepo) FindUnsynced(_ context.Context) ([]domain.BillingOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.BillingOrder
	for _, order := range r.orders {
		if !order.Synced && order.No != "" {
			result = append(result, order)
		}
	}
	return result, nil
}

type fakeGateway struct {
	states map[string]*OrderState
	errs   map[string]error
}

func (g *fakeGateway) GetOrder(_ context.Context, no string) (*OrderState, error) {
	if err, ok := g.errs[no]; ok {
		return nil, err
	}
	return g.states[no], nil
}

func TestSyncUpdatesSettledOrders(t *testing.T) {
	repo := newFakeOrderRepo()
	ctx := context.Background()

	settled := &domain.BillingOrder{No: "ORD-1", PlanID: 1}
	pending := &domain.BillingOrder{No: "ORD-2", PlanID: 1}
	blank := &domain.BillingOrder{No: "", PlanID: 1}
	_ = repo.Create(ctx, settled)
	_ = repo.Create(ctx, pending)
	_ = repo.Create(ctx, blank)

	paid := "PAID"
	status := domain.OrderStatusPaid
	gateway := &fakeGateway{states: map[string]*OrderState{
		"ORD-1": {No: "ORD-1", OrderStatus: &status, PaymentStatus: &paid},
		// ORD-2 is known but has no payment status yet.
		"ORD-2": {No: "ORD-2"},
	}}

	if err := NewReconciler(repo, gateway, nil).Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := repo.GetByID(ctx, settled.ID)
	if !got.Synced {
		t.Fatal("settled order not marked synced")
	}
	if got.PaymentStatus == nil || *got.PaymentStatus != "PAID" {
		t.Fatalf("payment status = %v, want PAID", got.PaymentStatus)
	}
	if got.OrderStatus == nil || *got.OrderStatus != domain.OrderStatusPaid {
		t.Fatalf("order status = %v, want PAID", got.OrderStatus)
	}

	still, _ := repo.GetByID(ctx, pending.ID)
	if still.Synced {
		t.Fatal("order without payment status must stay unsynced")
	}
	unnumbered, _ := repo.GetByID(ctx, blank.ID)
	if unnumbered.Synced {
		t.Fatal("order without a gateway number must be skipped")
	}
}

func TestSyncContinuesPastFailures(t *testing.T) {
	repo := newFakeOrderRepo()
	ctx := context.Background()

	broken := &domain.BillingOrder{No: "ORD-ERR", PlanID: 1}
	fine := &domain.BillingOrder{No: "ORD-OK", PlanID: 1}
	_ = repo.Create(ctx, broken)
	_ = repo.Create(ctx, fine)

	paid := "PAID"
	gateway := &fakeGateway{
		states: map[string]*OrderState{"ORD-OK": {No: "ORD-OK", PaymentStatus: &paid}},
		errs:   map[string]error{"ORD-ERR": fmt.Errorf("gateway down")},
	}

	if err := NewReconciler(repo, gateway, nil).Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	okOrder, _ := repo.GetByID(ctx, fine.ID)
	if !okOrder.Synced {
		t.Fatal("healthy order must sync even when another order fails")
	}
	errOrder, _ := repo.GetByID(ctx, broken.ID)
	if errOrder.Synced {
		t.Fatal("failed order must stay unsynced for the next pass")
	}
}
