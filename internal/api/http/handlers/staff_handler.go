package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-service/internal/api/dto"
	"github.com/spec-kit/org-service/internal/domain"
	"github.com/spec-kit/org-service/internal/repository"
	"github.com/spec-kit/org-service/internal/service"
	apperrors "github.com/spec-kit/org-service/pkg/util"
)

// StaffHandler exposes department, post and staff administration endpoints.
type StaffHandler struct {
	orgService *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(orgService *service.StaffService) *StaffHandler {
	return &StaffHandler{orgService: orgService}
}

// CreateDepartment handles POST /org/departments.
func (h *StaffHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.orgService.CreateDepartment(c.UserContext(), req.Name, req.ParentID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

// ListDepartments handles GET /org/departments.
func (h *StaffHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.orgService.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		resp = append(resp, departmentResponse(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetDepartment handles GET /org/departments/:id.
func (h *StaffHandler) GetDepartment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.orgService.GetDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// DepartmentRoster handles GET /org/departments/:id/staff.
func (h *StaffHandler) DepartmentRoster(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	roster, err := h.orgService.DepartmentRoster(c.UserContext(), id)
	if err != nil {
		return err
	}
	resp := make([]dto.StaffResponse, 0, len(roster))
	for i := range roster {
		resp = append(resp, staffResponse(&roster[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreatePost handles POST /org/posts.
func (h *StaffHandler) CreatePost(c *fiber.Ctx) error {
	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID <= 0 {
		return apperrors.NewValidationError("department_id required", nil)
	}
	post, err := h.orgService.CreatePost(c.UserContext(), req.DepartmentID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": postResponse(post)})
}

// GetPost handles GET /org/posts/:id.
func (h *StaffHandler) GetPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	post, err := h.orgService.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": postResponse(post)})
}

// ListPosts handles GET /org/departments/:id/posts.
func (h *StaffHandler) ListPosts(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	posts, err := h.orgService.ListPostsByDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	resp := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		resp = append(resp, postResponse(&posts[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateStaff handles POST /org/staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.StaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.orgService.AddStaff(c.UserContext(), service.StaffRequest{
		Fragment: staffFragment(req),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

// UpdateStaff handles PUT /org/staff/:id.
func (h *StaffHandler) UpdateStaff(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.StaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.orgService.AddStaff(c.UserContext(), service.StaffRequest{
		ID:       &id,
		Fragment: staffFragment(req),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// GetStaff handles GET /org/staff/:id.
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	staff, err := h.orgService.GetStaff(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// ListStaff handles GET /org/staff. The status query filters by employment
// state; "pending" and "left" match the dedicated finders.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	var filter repository.StaffFilter
	switch c.Query("status") {
	case "":
	case "pending":
		status := domain.PostStatusPending
		filter.PostStatus = &status
	case "employed":
		status := domain.PostStatusEmployed
		filter.PostStatus = &status
	case "left":
		status := domain.PostStatusLeft
		filter.PostStatus = &status
	default:
		return apperrors.NewValidationError("unknown status filter", map[string]any{"status": c.Query("status")})
	}
	list, err := h.orgService.ListStaff(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.StaffResponse, 0, len(list))
	for i := range list {
		resp = append(resp, staffResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// DeleteStaff handles DELETE /org/staff/:id.
func (h *StaffHandler) DeleteStaff(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.orgService.DeleteStaff(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseIDParam(c *fiber.Ctx, key string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{key: c.Params(key)})
	}
	return id, nil
}

func staffFragment(req dto.StaffRequest) domain.StaffFragment {
	return domain.StaffFragment{
		No:        req.No,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Iso:       req.Iso,
	}
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:       dept.ID,
		Name:     dept.Name,
		ParentID: dept.ParentID,
		IsActive: dept.IsActive,
	}
}

func postResponse(post *domain.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:           post.ID,
		DepartmentID: post.DepartmentID,
		Name:         post.Name,
		AssignFor:    post.AssignFor,
	}
}

func staffResponse(staff *domain.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:         staff.ID,
		No:         staff.Fragment.No,
		FirstName:  staff.Fragment.FirstName,
		LastName:   staff.Fragment.LastName,
		Email:      staff.Fragment.Email,
		Phone:      staff.Fragment.Phone,
		Iso:        staff.Fragment.Iso,
		PostStatus: string(staff.PostStatus),
		JoinedDate: staff.JoinedDate,
		LeftDate:   staff.LeftDate,
		AccountID:  staff.AccountID,
		Disabled:   staff.Disabled,
		PostIDs:    staff.PostIDs,
		PostNames:  staff.PostNames,
	}
}
