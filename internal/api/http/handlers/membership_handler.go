package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-service/internal/api/dto"
	"github.com/spec-kit/org-service/internal/observability"
	"github.com/spec-kit/org-service/internal/service"
	apperrors "github.com/spec-kit/org-service/pkg/util"
)

// MembershipHandler drives the join/leave workflow.
type MembershipHandler struct {
	membership *service.MembershipService
	metrics    *observability.Metrics
}

// NewMembershipHandler constructs handler.
func NewMembershipHandler(membership *service.MembershipService, metrics *observability.Metrics) *MembershipHandler {
	return &MembershipHandler{membership: membership, metrics: metrics}
}

// Join handles POST /org/staff/:id/join.
func (h *MembershipHandler) Join(c *fiber.Ctx) error {
	staffID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.JoinRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	done, err := h.membership.Join(c.UserContext(), staffID, req.PostIDs)
	h.metrics.RecordMembershipOp("join", err == nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MembershipResponse{StaffID: staffID, Done: done}})
}

// Leave handles POST /org/staff/:id/leave.
func (h *MembershipHandler) Leave(c *fiber.Ctx) error {
	staffID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	done, err := h.membership.Leave(c.UserContext(), staffID)
	h.metrics.RecordMembershipOp("leave", err == nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MembershipResponse{StaffID: staffID, Done: done}})
}
