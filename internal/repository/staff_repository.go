package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/org-service/internal/domain"
)

// StaffRepository handles persistence for staff records and their post
// assignments. Assignment projections are read-only views consumed by the
// membership workflow and the department roster.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.Staff) error
	Update(ctx context.Context, staff *domain.Staff) error
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
	GetByNo(ctx context.Context, no string) (*domain.Staff, error)
	SetAccountID(ctx context.Context, id int64, accountID int64) error
	List(ctx context.Context, filter StaffFilter) ([]domain.Staff, error)
	Delete(ctx context.Context, id int64) error

	FindActiveAssignments(ctx context.Context, staffID int64) ([]int64, error)
	FindAssignmentsByPosts(ctx context.Context, postIDs []int64) ([]domain.StaffPost, error)
	LinkPost(ctx context.Context, staffID, postID int64) error
	UnlinkPost(ctx context.Context, staffID, postID int64) error
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	PostStatus *domain.PostStatus
	Disabled   *bool
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `
        id, no, post_status, joined_date, left_date, account_id,
        first_name, last_name, email, phone, iso, disabled, created_at, updated_at`

func (r *staffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	const query = `
        INSERT INTO org_staff (no, post_status, joined_date, left_date, account_id,
            first_name, last_name, email, phone, iso, disabled)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.Fragment.No,
		staff.PostStatus,
		staff.JoinedDate,
		staff.LeftDate,
		staff.AccountID,
		staff.Fragment.FirstName,
		staff.Fragment.LastName,
		staff.Fragment.Email,
		staff.Fragment.Phone,
		staff.Fragment.Iso,
		staff.Disabled,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.Staff) error {
	const query = `
        UPDATE org_staff
        SET no=$1, post_status=$2, joined_date=$3, left_date=$4, account_id=$5,
            first_name=$6, last_name=$7, email=$8, phone=$9, iso=$10, disabled=$11,
            updated_at=NOW()
        WHERE id=$12`

	cmd, err := r.pool.Exec(ctx, query,
		staff.Fragment.No,
		staff.PostStatus,
		staff.JoinedDate,
		staff.LeftDate,
		staff.AccountID,
		staff.Fragment.FirstName,
		staff.Fragment.LastName,
		staff.Fragment.Email,
		staff.Fragment.Phone,
		staff.Fragment.Iso,
		staff.Disabled,
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	query := "SELECT" + staffColumns + " FROM org_staff WHERE id=$1"
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *staffRepository) GetByNo(ctx context.Context, no string) (*domain.Staff, error) {
	query := "SELECT" + staffColumns + " FROM org_staff WHERE no=$1"
	return r.scanOne(r.pool.QueryRow(ctx, query, no))
}

func (r *staffRepository) SetAccountID(ctx context.Context, id int64, accountID int64) error {
	const query = `UPDATE org_staff SET account_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, accountID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.Staff, error) {
	query := "SELECT" + staffColumns + " FROM org_staff"
	args := []any{}
	clauses := []string{}

	if filter.PostStatus != nil {
		args = append(args, *filter.PostStatus)
		clauses = append(clauses, fmt.Sprintf("post_status=$%d", len(args)))
	}
	if filter.Disabled != nil {
		args = append(args, *filter.Disabled)
		clauses = append(clauses, fmt.Sprintf("disabled=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Staff
	for rows.Next() {
		staff, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM org_staff WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) FindActiveAssignments(ctx context.Context, staffID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT post_id FROM org_staff_posts WHERE staff_id=$1 ORDER BY post_id`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postIDs []int64
	for rows.Next() {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			return nil, err
		}
		postIDs = append(postIDs, postID)
	}
	return postIDs, rows.Err()
}

func (r *staffRepository) FindAssignmentsByPosts(ctx context.Context, postIDs []int64) ([]domain.StaffPost, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, staff_id, post_id FROM org_staff_posts WHERE post_id = ANY($1) ORDER BY id`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffPost
	for rows.Next() {
		var sp domain.StaffPost
		if err := rows.Scan(&sp.ID, &sp.StaffID, &sp.PostID); err != nil {
			return nil, err
		}
		result = append(result, sp)
	}
	return result, rows.Err()
}

func (r *staffRepository) LinkPost(ctx context.Context, staffID, postID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO org_staff_posts (staff_id, post_id) VALUES ($1,$2)
         ON CONFLICT (staff_id, post_id) DO NOTHING`, staffID, postID)
	return err
}

func (r *staffRepository) UnlinkPost(ctx context.Context, staffID, postID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM org_staff_posts WHERE staff_id=$1 AND post_id=$2`, staffID, postID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *staffRepository) scanOne(row rowScanner) (*domain.Staff, error) {
	var staff domain.Staff
	if err := row.Scan(
		&staff.ID,
		&staff.Fragment.No,
		&staff.PostStatus,
		&staff.JoinedDate,
		&staff.LeftDate,
		&staff.AccountID,
		&staff.Fragment.FirstName,
		&staff.Fragment.LastName,
		&staff.Fragment.Email,
		&staff.Fragment.Phone,
		&staff.Fragment.Iso,
		&staff.Disabled,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}
