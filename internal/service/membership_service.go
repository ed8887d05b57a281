package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/config"
	"github.com/spec-kit/org-service/internal/domain"
	"github.com/spec-kit/org-service/internal/events"
	"github.com/spec-kit/org-service/internal/locking"
	"github.com/spec-kit/org-service/internal/provisioning"
	"github.com/spec-kit/org-service/internal/repository"
	apperrors "github.com/spec-kit/org-service/pkg/util"
)

// MembershipService coordinates the join/leave workflow across the staff and
// post registries and the external identity provisioning client.
//
// Consistency model: local mutations (staff status, assignments, occupants)
// commit first; the provisioning step runs afterwards and its failure is
// reported as PROVISIONING_FAILED without rolling local state back. The
// provisioning step is idempotent (lookup-before-signUp, lookup-before-
// signDown), so repeating the join or leave converges the external account
// with the employment state.
type MembershipService struct {
	staff       repository.StaffRepository
	posts       repository.PostRepository
	provisioner provisioning.Client
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	locks       *locking.KeyedMutex
	policy      config.OccupancyPolicy
	defaultISO  string
	defaultPwd  string
	callTimeout time.Duration
	rosterCache *RosterCache
	now         func() time.Time
}

// MembershipDependencies bundles collaborators.
type MembershipDependencies struct {
	StaffRepo   repository.StaffRepository
	PostRepo    repository.PostRepository
	Provisioner provisioning.Client
	Dispatcher  events.Dispatcher
	RosterCache *RosterCache
	Logger      *zap.Logger
}

// NewMembershipService creates the coordinator.
func NewMembershipService(cfg *config.Config, deps MembershipDependencies) *MembershipService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipService{
		staff:       deps.StaffRepo,
		posts:       deps.PostRepo,
		provisioner: deps.Provisioner,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		locks:       locking.NewKeyedMutex(),
		policy:      cfg.Membership.OccupancyPolicy,
		defaultISO:  cfg.Provisioning.DefaultISO,
		defaultPwd:  cfg.Provisioning.DefaultPassword,
		callTimeout: cfg.Provisioning.Timeout(),
		rosterCache: deps.RosterCache,
		now:         time.Now,
	}
}

// Join places the staff member on the given posts and ensures an external
// account exists for them. Assignments not in postIDs are removed; already
// linked posts are untouched. Calls for the same staff id serialize.
func (s *MembershipService) Join(ctx context.Context, staffID int64, postIDs []int64) (bool, error) {
	if staffID <= 0 {
		return false, apperrors.NewValidationError("staffId must be positive", map[string]any{"staff_id": staffID})
	}
	if len(postIDs) == 0 {
		return false, apperrors.NewValidationError("postIds must not be empty", nil)
	}
	postIDs = dedupe(postIDs)

	s.locks.Lock(staffID)
	defer s.locks.Unlock(staffID)

	s.logger.Info("join", zap.Int64("staff_id", staffID), zap.Int64s("post_ids", postIDs))

	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return false, apperrors.MapError(err)
	}

	// Resolve requested posts before mutating anything so a missing post (or
	// an occupancy conflict under the reject policy) aborts cleanly.
	requested := make(map[int64]*domain.Post, len(postIDs))
	for _, postID := range postIDs {
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, apperrors.NewNotFound("post", map[string]any{"post_id": postID})
			}
			return false, apperrors.MapError(err)
		}
		if s.policy == config.OccupancyReject && post.AssignFor != nil && *post.AssignFor != staffID {
			return false, apperrors.NewConflict("post already occupied", map[string]any{
				"post_id":     postID,
				"occupied_by": *post.AssignFor,
			})
		}
		requested[postID] = post
	}

	existing, err := s.staff.FindActiveAssignments(ctx, staffID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	linked := make(map[int64]struct{}, len(existing))
	for _, postID := range existing {
		linked[postID] = struct{}{}
	}

	now := s.now()
	staff.PostStatus = domain.PostStatusEmployed
	staff.JoinedDate = &now
	staff.LeftDate = nil
	if err := s.staff.Update(ctx, staff); err != nil {
		return false, apperrors.MapError(err)
	}

	touched := make(map[int64]*domain.Post, len(requested))
	for postID, post := range requested {
		touched[postID] = post
	}

	// Drop assignments whose post is no longer requested; deleting the link
	// clears the post's occupant as well.
	for _, postID := range existing {
		if _, keep := requested[postID]; keep {
			continue
		}
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return false, apperrors.MapError(err)
			}
		} else {
			touched[postID] = post
			if post.AssignFor != nil && *post.AssignFor == staffID {
				if err := s.posts.SetOccupant(ctx, postID, nil); err != nil && !errors.Is(err, pgx.ErrNoRows) {
					return false, apperrors.MapError(err)
				}
			}
		}
		if err := s.staff.UnlinkPost(ctx, staffID, postID); err != nil {
			return false, apperrors.MapError(err)
		}
	}

	for _, postID := range postIDs {
		if _, already := linked[postID]; already {
			continue
		}
		// Reassignment displaces the previous holder's assignment; a post
		// never carries more than one active link.
		if prev := requested[postID].AssignFor; prev != nil && *prev != staffID {
			if err := s.staff.UnlinkPost(ctx, *prev, postID); err != nil {
				return false, apperrors.MapError(err)
			}
		}
		if err := s.posts.SetOccupant(ctx, postID, &staffID); err != nil {
			return false, apperrors.MapError(err)
		}
		if err := s.staff.LinkPost(ctx, staffID, postID); err != nil {
			return false, apperrors.MapError(err)
		}
	}

	s.invalidateRosters(ctx, touched)
	s.publish(ctx, events.EventStaffJoined, staffID, events.StaffJoinedPayload{PostIDs: postIDs})

	if err := s.ensureAccount(ctx, staff); err != nil {
		return false, err
	}
	return true, nil
}

// Leave marks the staff member as departed, clears all of their post
// assignments and deactivates their external account if one is bound.
func (s *MembershipService) Leave(ctx context.Context, staffID int64) (bool, error) {
	if staffID <= 0 {
		return false, apperrors.NewValidationError("staffId must be positive", map[string]any{"staff_id": staffID})
	}

	s.locks.Lock(staffID)
	defer s.locks.Unlock(staffID)

	s.logger.Info("leave", zap.Int64("staff_id", staffID))

	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return false, apperrors.MapError(err)
	}

	now := s.now()
	staff.PostStatus = domain.PostStatusLeft
	staff.LeftDate = &now
	if err := s.staff.Update(ctx, staff); err != nil {
		return false, apperrors.MapError(err)
	}

	assignments, err := s.staff.FindActiveAssignments(ctx, staffID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	cleared := make(map[int64]*domain.Post, len(assignments))
	for _, postID := range assignments {
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return false, apperrors.MapError(err)
			}
		} else {
			cleared[postID] = post
			// A post reassigned to someone else keeps its current occupant.
			if post.AssignFor != nil && *post.AssignFor == staffID {
				if err := s.posts.SetOccupant(ctx, postID, nil); err != nil && !errors.Is(err, pgx.ErrNoRows) {
					return false, apperrors.MapError(err)
				}
			}
		}
		if err := s.staff.UnlinkPost(ctx, staffID, postID); err != nil {
			return false, apperrors.MapError(err)
		}
	}

	s.invalidateRosters(ctx, cleared)
	s.publish(ctx, events.EventStaffLeft, staffID, events.StaffLeftPayload{ClearedPostIDs: assignments})

	if err := s.dropAccount(ctx, staff); err != nil {
		return false, err
	}
	return true, nil
}

// ensureAccount makes sure an external account bound to the staff email
// exists, signing one up when absent. Runs with a bounded timeout.
func (s *MembershipService) ensureAccount(ctx context.Context, staff *domain.Staff) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	iso := staff.Fragment.Iso
	if iso == "" {
		iso = s.defaultISO
	}
	email := staff.Fragment.Email

	account, err := s.provisioner.FindAccountByBind(callCtx, provisioning.BindTypeEmail, iso, email)
	if err != nil {
		return apperrors.NewProvisioningError("account lookup failed", err)
	}
	if account != nil {
		// Already provisioned; repeat joins do not sign up again.
		if staff.AccountID == nil || *staff.AccountID != account.ID {
			if err := s.staff.SetAccountID(ctx, staff.ID, account.ID); err != nil {
				return apperrors.MapError(err)
			}
		}
		return nil
	}

	result, err := s.provisioner.SignUp(callCtx, provisioning.SignUpForm{
		AccountType: provisioning.BindTypeEmail,
		Iso:         iso,
		Account:     email,
		Password:    s.defaultPwd,
		FirstName:   staff.Fragment.FirstName,
		LastName:    staff.Fragment.LastName,
	})
	if err != nil {
		return apperrors.NewProvisioningError("sign-up failed", err)
	}
	if err := s.staff.SetAccountID(ctx, staff.ID, result.UserID); err != nil {
		return apperrors.MapError(err)
	}

	s.logger.Info("account signed up",
		zap.Int64("staff_id", staff.ID),
		zap.Int64("user_id", result.UserID),
		zap.String("username", result.Username))
	s.publish(ctx, events.EventAccountProvisioned, staff.ID, events.AccountProvisionedPayload{
		AccountID: result.UserID,
		Username:  result.Username,
	})
	return nil
}

// dropAccount deactivates the external account bound to the staff email.
// Absence of a bound account is a no-op.
func (s *MembershipService) dropAccount(ctx context.Context, staff *domain.Staff) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	iso := staff.Fragment.Iso
	if iso == "" {
		iso = s.defaultISO
	}

	account, err := s.provisioner.FindAccountByBind(callCtx, provisioning.BindTypeEmail, iso, staff.Fragment.Email)
	if err != nil {
		return apperrors.NewProvisioningError("account lookup failed", err)
	}
	if account == nil {
		return nil
	}

	ok, err := s.provisioner.SignDown(callCtx, account.ID)
	if err != nil {
		return apperrors.NewProvisioningError("sign-down failed", err)
	}
	s.logger.Info("account signed down",
		zap.Int64("staff_id", staff.ID),
		zap.Int64("account_id", account.ID),
		zap.Bool("result", ok))
	s.publish(ctx, events.EventAccountDeprovisioned, staff.ID, events.AccountDeprovisionedPayload{
		AccountID: account.ID,
	})
	return nil
}

func (s *MembershipService) invalidateRosters(ctx context.Context, posts map[int64]*domain.Post) {
	if s.rosterCache == nil {
		return
	}
	seen := make(map[int64]struct{})
	for _, post := range posts {
		if post == nil {
			continue
		}
		if _, done := seen[post.DepartmentID]; done {
			continue
		}
		seen[post.DepartmentID] = struct{}{}
		s.rosterCache.Invalidate(ctx, post.DepartmentID)
	}
}

func (s *MembershipService) publish(ctx context.Context, eventType events.EventType, staffID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		StaffID:   staffID,
		Actor:     events.Actor{Type: domain.SubjectTypeService},
		Timestamp: s.now(),
		Payload:   payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
