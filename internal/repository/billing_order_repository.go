package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/org-service/internal/domain"
)

// BillingOrderRepository stores locally tracked billing orders pending
// reconciliation against the payment gateway.
type BillingOrderRepository interface {
	Create(ctx context.Context, order *domain.BillingOrder) error
	Update(ctx context.Context, order *domain.BillingOrder) error
	GetByID(ctx context.Context, id int64) (*domain.BillingOrder, error)
	FindUnsynced(ctx context.Context) ([]domain.BillingOrder, error)
}

type billingOrderRepository struct {
	pool *pgxpool.Pool
}

// NewBillingOrderRepository builds the repository.
func NewBillingOrderRepository(pool *pgxpool.Pool) BillingOrderRepository {
	return &billingOrderRepository{pool: pool}
}

func (r *billingOrderRepository) Create(ctx context.Context, order *domain.BillingOrder) error {
	const query = `
        INSERT INTO billing_orders (no, plan_id, order_status, payment_status, is_expired, synced)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		order.No,
		order.PlanID,
		order.OrderStatus,
		order.PaymentStatus,
		order.IsExpired,
		order.Synced,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *billingOrderRepository) Update(ctx context.Context, order *domain.BillingOrder) error {
	const query = `
        UPDATE billing_orders
        SET no=$1, plan_id=$2, order_status=$3, payment_status=$4, is_expired=$5, synced=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		order.No,
		order.PlanID,
		order.OrderStatus,
		order.PaymentStatus,
		order.IsExpired,
		order.Synced,
		order.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *billingOrderRepository) GetByID(ctx context.Context, id int64) (*domain.BillingOrder, error) {
	const query = `
        SELECT id, no, plan_id, order_status, payment_status, is_expired, synced, created_at, updated_at
        FROM billing_orders WHERE id=$1`
	var order domain.BillingOrder
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.No,
		&order.PlanID,
		&order.OrderStatus,
		&order.PaymentStatus,
		&order.IsExpired,
		&order.Synced,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *billingOrderRepository) FindUnsynced(ctx context.Context) ([]domain.BillingOrder, error) {
	const query = `
        SELECT id, no, plan_id, order_status, payment_status, is_expired, synced, created_at, updated_at
        FROM billing_orders WHERE synced = FALSE AND no <> '' ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BillingOrder
	for rows.Next() {
		var order domain.BillingOrder
		if err := rows.Scan(
			&order.ID,
			&order.No,
			&order.PlanID,
			&order.OrderStatus,
			&order.PaymentStatus,
			&order.IsExpired,
			&order.Synced,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
