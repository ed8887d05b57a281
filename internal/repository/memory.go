package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/org-service/internal/domain"
)

// In-memory implementations backing tests and DSN-less development mode.
// They mirror the postgres repositories' observable behavior, including
// pgx.ErrNoRows on missing rows.

// MemoryStaffRepository is a map-backed StaffRepository.
type MemoryStaffRepository struct {
	mu          sync.RWMutex
	staff       map[int64]domain.Staff
	assignments map[int64]domain.StaffPost
	nextStaffID int64
	nextLinkID  int64
}

// NewMemoryStaffRepository builds an empty repository.
func NewMemoryStaffRepository() *MemoryStaffRepository {
	return &MemoryStaffRepository{
		staff:       make(map[int64]domain.Staff),
		assignments: make(map[int64]domain.StaffPost),
		nextStaffID: 1,
		nextLinkID:  1,
	}
}

func (r *MemoryStaffRepository) Create(_ context.Context, staff *domain.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff.ID = r.nextStaffID
	r.nextStaffID++
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt
	r.staff[staff.ID] = *staff
	return nil
}

func (r *MemoryStaffRepository) Update(_ context.Context, staff *domain.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.staff[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	staff.UpdatedAt = time.Now()
	r.staff[staff.ID] = *staff
	return nil
}

func (r *MemoryStaffRepository) GetByID(_ context.Context, id int64) (*domain.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	staff, ok := r.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &staff, nil
}

func (r *MemoryStaffRepository) GetByNo(_ context.Context, no string) (*domain.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, staff := range r.staff {
		if staff.Fragment.No == no {
			s := staff
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryStaffRepository) SetAccountID(_ context.Context, id int64, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	staff.AccountID = &accountID
	staff.UpdatedAt = time.Now()
	r.staff[id] = staff
	return nil
}

func (r *MemoryStaffRepository) List(_ context.Context, filter StaffFilter) ([]domain.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Staff
	for _, staff := range r.staff {
		if filter.PostStatus != nil && staff.PostStatus != *filter.PostStatus {
			continue
		}
		if filter.Disabled != nil && staff.Disabled != *filter.Disabled {
			continue
		}
		result = append(result, staff)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryStaffRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.staff[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.staff, id)
	return nil
}

func (r *MemoryStaffRepository) FindActiveAssignments(_ context.Context, staffID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var postIDs []int64
	for _, sp := range r.assignments {
		if sp.StaffID == staffID {
			postIDs = append(postIDs, sp.PostID)
		}
	}
	sort.Slice(postIDs, func(i, j int) bool { return postIDs[i] < postIDs[j] })
	return postIDs, nil
}

func (r *MemoryStaffRepository) FindAssignmentsByPosts(_ context.Context, postIDs []int64) ([]domain.StaffPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[int64]struct{}, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = struct{}{}
	}
	var result []domain.StaffPost
	for _, sp := range r.assignments {
		if _, ok := wanted[sp.PostID]; ok {
			result = append(result, sp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryStaffRepository) LinkPost(_ context.Context, staffID, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sp := range r.assignments {
		if sp.StaffID == staffID && sp.PostID == postID {
			return nil
		}
	}
	sp := domain.StaffPost{ID: r.nextLinkID, StaffID: staffID, PostID: postID}
	r.nextLinkID++
	r.assignments[sp.ID] = sp
	return nil
}

func (r *MemoryStaffRepository) UnlinkPost(_ context.Context, staffID, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, sp := range r.assignments {
		if sp.StaffID == staffID && sp.PostID == postID {
			delete(r.assignments, id)
		}
	}
	return nil
}

// MemoryPostRepository is a map-backed PostRepository.
type MemoryPostRepository struct {
	mu     sync.RWMutex
	posts  map[int64]domain.Post
	nextID int64
}

// NewMemoryPostRepository builds an empty repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[int64]domain.Post), nextID: 1}
}

func (r *MemoryPostRepository) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.nextID
	r.nextID++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = *post
	return nil
}

func (r *MemoryPostRepository) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &post, nil
}

func (r *MemoryPostRepository) SetOccupant(_ context.Context, postID int64, staffID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return pgx.ErrNoRows
	}
	post.AssignFor = staffID
	post.UpdatedAt = time.Now()
	r.posts[postID] = post
	return nil
}

func (r *MemoryPostRepository) ListByDepartment(_ context.Context, deptID int64) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Post
	for _, post := range r.posts {
		if post.DepartmentID == deptID {
			result = append(result, post)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MemoryDepartmentRepository is a map-backed DepartmentRepository.
type MemoryDepartmentRepository struct {
	mu     sync.RWMutex
	depts  map[int64]domain.Department
	nextID int64
}

// NewMemoryDepartmentRepository builds an empty repository.
func NewMemoryDepartmentRepository() *MemoryDepartmentRepository {
	return &MemoryDepartmentRepository{depts: make(map[int64]domain.Department), nextID: 1}
}

func (r *MemoryDepartmentRepository) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dept.ID = r.nextID
	r.nextID++
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = dept.CreatedAt
	r.depts[dept.ID] = *dept
	return nil
}

func (r *MemoryDepartmentRepository) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.depts[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	dept.UpdatedAt = time.Now()
	r.depts[dept.ID] = *dept
	return nil
}

func (r *MemoryDepartmentRepository) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dept, ok := r.depts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &dept, nil
}

func (r *MemoryDepartmentRepository) ListActive(_ context.Context) ([]domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Department
	for _, dept := range r.depts {
		if dept.IsActive {
			result = append(result, dept)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
