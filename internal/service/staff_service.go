package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/org-service/internal/domain"
	"github.com/spec-kit/org-service/internal/repository"
	apperrors "github.com/spec-kit/org-service/pkg/util"
)

// StaffService manages the administrative side of staff, departments and
// posts. It never talks to the provisioning client; employment transitions go
// through MembershipService.
type StaffService struct {
	departments repository.DepartmentRepository
	posts       repository.PostRepository
	staff       repository.StaffRepository
	rosterCache *RosterCache
}

// OrgDependencies encapsulates repositories required for org management.
type OrgDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	PostRepo       repository.PostRepository
	StaffRepo      repository.StaffRepository
	RosterCache    *RosterCache
}

// NewStaffService constructs the service.
func NewStaffService(deps OrgDependencies) *StaffService {
	return &StaffService{
		departments: deps.DepartmentRepo,
		posts:       deps.PostRepo,
		staff:       deps.StaffRepo,
		rosterCache: deps.RosterCache,
	}
}

// StaffRequest carries the writable staff fields. A non-nil ID updates an
// existing record.
type StaffRequest struct {
	ID       *int64
	Fragment domain.StaffFragment
}

// CreateDepartment creates a new department.
func (s *StaffService) CreateDepartment(ctx context.Context, name string, parentID *int64) (*domain.Department, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("department name required", nil)
	}
	dept := &domain.Department{
		Name:     name,
		ParentID: parentID,
		IsActive: true,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// ListDepartments returns active departments.
func (s *StaffService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.departments.ListActive(ctx)
}

// GetDepartment fetches a department.
func (s *StaffService) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// CreatePost creates a post under a department.
func (s *StaffService) CreatePost(ctx context.Context, deptID int64, name string) (*domain.Post, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("post name required", nil)
	}
	dept, err := s.GetDepartment(ctx, deptID)
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, apperrors.NewConflict("department inactive", map[string]any{"department_id": deptID})
	}
	post := &domain.Post{
		DepartmentID: deptID,
		Name:         name,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperrors.MapError(err)
	}
	return post, nil
}

// GetPost fetches a post.
func (s *StaffService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", map[string]any{"post_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return post, nil
}

// ListPostsByDepartment returns the posts belonging to a department.
func (s *StaffService) ListPostsByDepartment(ctx context.Context, deptID int64) ([]domain.Post, error) {
	return s.posts.ListByDepartment(ctx, deptID)
}

// AddStaff creates or updates a staff record. New records start pending with
// the joined date stamped; the staff "no" must be unique when present.
func (s *StaffService) AddStaff(ctx context.Context, req StaffRequest) (*domain.Staff, error) {
	if req.Fragment.Email == "" {
		return nil, apperrors.NewValidationError("staff email required", nil)
	}

	if no := req.Fragment.No; no != "" {
		existing, err := s.staff.GetByNo(ctx, no)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		if existing != nil && (req.ID == nil || existing.ID != *req.ID) {
			return nil, apperrors.NewConflict("staff no already exists", map[string]any{"no": no})
		}
	}

	if req.ID != nil {
		staff, err := s.GetStaff(ctx, *req.ID)
		if err != nil {
			return nil, err
		}
		staff.Fragment = req.Fragment
		if err := s.staff.Update(ctx, staff); err != nil {
			return nil, apperrors.MapError(err)
		}
		return staff, nil
	}

	now := time.Now()
	staff := &domain.Staff{
		PostStatus: domain.PostStatusPending,
		JoinedDate: &now,
		Fragment:   req.Fragment,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// GetStaff fetches a staff record with the denormalized post view rebuilt.
func (s *StaffService) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	staff, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.rebuildPostView(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// ListStaff lists staff with optional filters.
func (s *StaffService) ListStaff(ctx context.Context, filter repository.StaffFilter) ([]domain.Staff, error) {
	return s.staff.List(ctx, filter)
}

// FindPendings lists staff who have not been placed on a post yet.
func (s *StaffService) FindPendings(ctx context.Context) ([]domain.Staff, error) {
	status := domain.PostStatusPending
	return s.staff.List(ctx, repository.StaffFilter{PostStatus: &status})
}

// FindLefts lists staff who have departed.
func (s *StaffService) FindLefts(ctx context.Context) ([]domain.Staff, error) {
	status := domain.PostStatusLeft
	return s.staff.List(ctx, repository.StaffFilter{PostStatus: &status})
}

// DeleteStaff removes a staff record. Employed staff must leave first.
func (s *StaffService) DeleteStaff(ctx context.Context, id int64) error {
	staff, err := s.GetStaff(ctx, id)
	if err != nil {
		return err
	}
	if staff.PostStatus == domain.PostStatusEmployed {
		return apperrors.NewConflict("staff still employed", map[string]any{"staff_id": id})
	}
	if err := s.staff.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// DepartmentRoster returns the staff currently holding posts in the
// department, with post ids and names denormalized onto each record. The
// result may briefly observe a staff member mid-transition; no snapshot
// isolation is promised.
func (s *StaffService) DepartmentRoster(ctx context.Context, deptID int64) ([]domain.Staff, error) {
	if roster, ok := s.rosterCache.Get(ctx, deptID); ok {
		return roster, nil
	}

	posts, err := s.posts.ListByDepartment(ctx, deptID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	postIDs := make([]int64, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
	}

	assignments, err := s.staff.FindAssignmentsByPosts(ctx, postIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	seen := make(map[int64]struct{}, len(assignments))
	var roster []domain.Staff
	for _, sp := range assignments {
		if _, done := seen[sp.StaffID]; done {
			continue
		}
		seen[sp.StaffID] = struct{}{}
		staff, err := s.GetStaff(ctx, sp.StaffID)
		if err != nil {
			if apperrors.IsCode(err, "NOT_FOUND") {
				continue
			}
			return nil, err
		}
		roster = append(roster, *staff)
	}

	s.rosterCache.Set(ctx, deptID, roster)
	return roster, nil
}

func (s *StaffService) rebuildPostView(ctx context.Context, staff *domain.Staff) error {
	postIDs, err := s.staff.FindActiveAssignments(ctx, staff.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	staff.PostIDs = postIDs
	staff.PostNames = nil
	for _, postID := range postIDs {
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return apperrors.MapError(err)
		}
		staff.PostNames = append(staff.PostNames, post.Name)
	}
	return nil
}
