package service

import (
	"context"
	"testing"

	"github.com/spec-kit/org-service/internal/domain"
	"github.com/spec-kit/org-service/internal/repository"
	apperrors "github.com/spec-kit/org-service/pkg/util"
)

func newStaffServiceFixture() (*StaffService, *repository.MemoryStaffRepository, *repository.MemoryPostRepository, *repository.MemoryDepartmentRepository) {
	staffRepo := repository.NewMemoryStaffRepository()
	postRepo := repository.NewMemoryPostRepository()
	deptRepo := repository.NewMemoryDepartmentRepository()
	svc := NewStaffService(OrgDependencies{
		DepartmentRepo: deptRepo,
		PostRepo:       postRepo,
		StaffRepo:      staffRepo,
	})
	return svc, staffRepo, postRepo, deptRepo
}

func TestAddStaffStartsPending(t *testing.T) {
	svc, _, _, _ := newStaffServiceFixture()
	ctx := context.Background()

	staff, err := svc.AddStaff(ctx, StaffRequest{
		Fragment: domain.StaffFragment{No: "E-001", Email: "jane@example.com"},
	})
	if err != nil {
		t.Fatalf("add staff: %v", err)
	}
	if staff.PostStatus != domain.PostStatusPending {
		t.Fatalf("status = %s, want PENDING", staff.PostStatus)
	}
	if staff.JoinedDate == nil {
		t.Fatal("joined date not stamped on creation")
	}

	if _, err := svc.AddStaff(ctx, StaffRequest{Fragment: domain.StaffFragment{}}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected validation error without email, got %v", err)
	}
}

func TestAddStaffRejectsDuplicateNo(t *testing.T) {
	svc, _, _, _ := newStaffServiceFixture()
	ctx := context.Background()

	first, err := svc.AddStaff(ctx, StaffRequest{
		Fragment: domain.StaffFragment{No: "E-001", Email: "jane@example.com"},
	})
	if err != nil {
		t.Fatalf("add staff: %v", err)
	}

	_, err = svc.AddStaff(ctx, StaffRequest{
		Fragment: domain.StaffFragment{No: "E-001", Email: "john@example.com"},
	})
	if !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("expected conflict on duplicate no, got %v", err)
	}

	// Updating the owner of the number keeps it valid.
	if _, err := svc.AddStaff(ctx, StaffRequest{
		ID:       &first.ID,
		Fragment: domain.StaffFragment{No: "E-001", Email: "jane.doe@example.com"},
	}); err != nil {
		t.Fatalf("self update: %v", err)
	}
}

func TestDeleteStaffRefusesEmployed(t *testing.T) {
	svc, staffRepo, _, _ := newStaffServiceFixture()
	ctx := context.Background()

	staff := &domain.Staff{PostStatus: domain.PostStatusEmployed, Fragment: domain.StaffFragment{Email: "jane@example.com"}}
	if err := staffRepo.Create(ctx, staff); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteStaff(ctx, staff.ID); !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("expected conflict deleting employed staff, got %v", err)
	}

	staff.PostStatus = domain.PostStatusLeft
	if err := staffRepo.Update(ctx, staff); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeleteStaff(ctx, staff.ID); err != nil {
		t.Fatalf("delete after leave: %v", err)
	}
}

func TestCreatePostRequiresActiveDepartment(t *testing.T) {
	svc, _, _, deptRepo := newStaffServiceFixture()
	ctx := context.Background()

	dept, err := svc.CreateDepartment(ctx, "engineering", nil)
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	if _, err := svc.CreatePost(ctx, dept.ID, "backend"); err != nil {
		t.Fatalf("create post: %v", err)
	}

	dept.IsActive = false
	if err := deptRepo.Update(ctx, dept); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.CreatePost(ctx, dept.ID, "frontend"); !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("expected conflict for inactive department, got %v", err)
	}

	if _, err := svc.CreatePost(ctx, 999, "ops"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected not found for unknown department, got %v", err)
	}
}

func TestDepartmentRosterDenormalizesPosts(t *testing.T) {
	svc, staffRepo, postRepo, _ := newStaffServiceFixture()
	ctx := context.Background()

	dept, _ := svc.CreateDepartment(ctx, "engineering", nil)
	p1 := &domain.Post{DepartmentID: dept.ID, Name: "backend"}
	p2 := &domain.Post{DepartmentID: dept.ID, Name: "frontend"}
	_ = postRepo.Create(ctx, p1)
	_ = postRepo.Create(ctx, p2)

	staff := &domain.Staff{PostStatus: domain.PostStatusEmployed, Fragment: domain.StaffFragment{Email: "jane@example.com"}}
	_ = staffRepo.Create(ctx, staff)
	_ = staffRepo.LinkPost(ctx, staff.ID, p1.ID)
	_ = staffRepo.LinkPost(ctx, staff.ID, p2.ID)

	roster, err := svc.DepartmentRoster(ctx, dept.ID)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("roster size = %d, staff holding two posts must appear once", len(roster))
	}
	if len(roster[0].PostIDs) != 2 || len(roster[0].PostNames) != 2 {
		t.Fatalf("post view = %v / %v, want both posts", roster[0].PostIDs, roster[0].PostNames)
	}

	empty, err := svc.DepartmentRoster(ctx, 999)
	if err != nil {
		t.Fatalf("roster of unknown department: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("roster = %v, want empty", empty)
	}
}

func TestFindPendingsAndLefts(t *testing.T) {
	svc, staffRepo, _, _ := newStaffServiceFixture()
	ctx := context.Background()

	for _, status := range []domain.PostStatus{domain.PostStatusPending, domain.PostStatusEmployed, domain.PostStatusLeft} {
		staff := &domain.Staff{PostStatus: status, Fragment: domain.StaffFragment{Email: string(status) + "@example.com"}}
		if err := staffRepo.Create(ctx, staff); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pendings, err := svc.FindPendings(ctx)
	if err != nil {
		t.Fatalf("pendings: %v", err)
	}
	if len(pendings) != 1 || pendings[0].PostStatus != domain.PostStatusPending {
		t.Fatalf("pendings = %+v", pendings)
	}

	lefts, err := svc.FindLefts(ctx)
	if err != nil {
		t.Fatalf("lefts: %v", err)
	}
	if len(lefts) != 1 || lefts[0].PostStatus != domain.PostStatusLeft {
		t.Fatalf("lefts = %+v", lefts)
	}
}
