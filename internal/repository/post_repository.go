package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/org-service/internal/domain"
)

// PostRepository manages post persistence. It performs no concurrency control
// of its own; the membership workflow serializes occupant changes.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	SetOccupant(ctx context.Context, postID int64, staffID *int64) error
	ListByDepartment(ctx context.Context, deptID int64) ([]domain.Post, error)
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository builds the repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO org_posts (department_id, name, assign_for)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		post.DepartmentID,
		post.Name,
		post.AssignFor,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `
        SELECT id, department_id, name, assign_for, created_at, updated_at
        FROM org_posts WHERE id=$1`
	var post domain.Post
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.DepartmentID,
		&post.Name,
		&post.AssignFor,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) SetOccupant(ctx context.Context, postID int64, staffID *int64) error {
	const query = `UPDATE org_posts SET assign_for=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, staffID, postID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) ListByDepartment(ctx context.Context, deptID int64) ([]domain.Post, error) {
	const query = `
        SELECT id, department_id, name, assign_for, created_at, updated_at
        FROM org_posts WHERE department_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, deptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.DepartmentID, &post.Name, &post.AssignFor, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}
