package service

import (
	"context"

	"github.com/google/uuid"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/internal/ws"
	"go-inventory-cloud/pkg/validator"
)

type MembershipService interface {
	Invite(ctx context.Context, actor model.Actor, req *InviteRequest) (*InviteResult, error)
	ListMembers(ctx context.Context, actor model.Actor) ([]model.MemberResponse, error)
	Remove(ctx context.Context, actor model.Actor, memberID uuid.UUID) error
	ChangeRole(ctx context.Context, actor model.Actor, memberID uuid.UUID, role string) error
	AcceptInvite(ctx context.Context, token string, user *model.User) (*model.Member, error)
}

type InviteRequest struct {
	Email string    `json:"email" validate:"required,email"`
	Role  string    `json:"role" validate:"required,oneof=user"`
	Name  string    `json:"name"`
	OrgID uuid.UUID `json:"organization_id" validate:"uuid_required"`
}

// InviteResult is the structured outcome of an invitation attempt. Failure
// paths populate Success=false and Message alongside the typed error so the
// handler can surface both a status code and the specific reason.
type InviteResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	InviteLink string `json:"invite_link,omitempty"`
}

type membershipService struct {
	memberRepo repository.MemberRepository
	orgRepo    repository.OrgRepository
	userRepo   repository.UserRepository
	wsHub      *ws.Hub

	// inviteBaseURL is the public URL invite links point at.
	inviteBaseURL string
}

func NewMembershipService(memberRepo repository.MemberRepository, orgRepo repository.OrgRepository, userRepo repository.UserRepository, hub *ws.Hub, inviteBaseURL string) MembershipService {
	return &membershipService{
		memberRepo:    memberRepo,
		orgRepo:       orgRepo,
		userRepo:      userRepo,
		wsHub:         hub,
		inviteBaseURL: inviteBaseURL,
	}
}

// Invite runs the precondition chain in order and mutates nothing until all
// checks pass: authenticated caller, admin of the target org, org exists,
// seat available under the member limit, invitee not already present. An
// email that already has an account is added directly as an active member;
// anyone else becomes a pending invitation with a join link.
func (s *membershipService) Invite(ctx context.Context, actor model.Actor, req *InviteRequest) (*InviteResult, error) {
	if !actor.Authenticated() {
		return fail("authentication required", apperr.KindAuthorization)
	}
	if actor.OrgID != req.OrgID || !actor.IsAdmin() {
		return fail("only organization admins can invite members", apperr.KindAuthorization)
	}

	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return fail("invalid invitation request: check email and role", apperr.KindValidation)
	}

	org, err := s.orgRepo.FindByID(req.OrgID)
	if err != nil {
		if repository.IsNotFound(err) {
			return fail("organization not found", apperr.KindNotFound)
		}
		return nil, err
	}

	limit := org.MemberLimit
	if limit <= 0 {
		limit = model.FreeMemberLimit
	}
	count, err := s.memberRepo.CountByOrg(org.ID)
	if err != nil {
		return nil, err
	}
	if count >= int64(limit) {
		return failf(apperr.KindConflict,
			"member limit reached (%d of %d). Upgrade your plan to add more members", count, limit)
	}

	if existing, err := s.memberRepo.FindByOrgAndEmail(org.ID, req.Email); err == nil && existing != nil {
		if existing.Pending() {
			return fail("this email has already been invited", apperr.KindConflict)
		}
		return fail("this email is already a member of the organization", apperr.KindConflict)
	}

	// Direct-add: the invitee already has an account, no pending step.
	if user, err := s.userRepo.FindByEmail(req.Email); err == nil && user != nil {
		member := &model.Member{
			OrgID:       org.ID,
			UserID:      &user.ID,
			Email:       user.Email,
			DisplayName: user.FullName,
			Role:        req.Role,
		}
		member.CreatedBy = actor.UserID.String()
		member.UpdatedBy = actor.UserID.String()
		if err := s.memberRepo.Create(member); err != nil {
			return nil, err
		}

		s.notifyMember(actor, "added", member)
		return &InviteResult{Success: true, Message: user.FullName + " was added to the organization"}, nil
	}

	token := uuid.New().String()
	member := &model.Member{
		OrgID:       org.ID,
		Email:       req.Email,
		DisplayName: req.Name,
		Role:        req.Role,
		InviteToken: token,
	}
	member.CreatedBy = actor.UserID.String()
	member.UpdatedBy = actor.UserID.String()
	if err := s.memberRepo.Create(member); err != nil {
		return nil, err
	}

	s.notifyMember(actor, "invited", member)
	return &InviteResult{
		Success:    true,
		Message:    "Invitation sent to " + req.Email,
		InviteLink: s.inviteBaseURL + "/join?token=" + token,
	}, nil
}

func (s *membershipService) ListMembers(ctx context.Context, actor model.Actor) ([]model.MemberResponse, error) {
	members, err := s.memberRepo.FindByOrg(actor.OrgID)
	if err != nil {
		return nil, err
	}

	out := make([]model.MemberResponse, len(members))
	for i, m := range members {
		out[i] = m.ToResponse()
	}
	return out, nil
}

// Remove cancels a pending invite or revokes an active membership. The
// organization must retain at least one admin.
func (s *membershipService) Remove(ctx context.Context, actor model.Actor, memberID uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "only organization admins can remove members")
	}

	member, err := s.memberRepo.FindByID(actor.OrgID, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperr.New(apperr.KindNotFound, "member not found")
		}
		return err
	}

	if member.Role == model.RoleAdmin && !member.Pending() {
		admins, err := s.memberRepo.CountAdmins(actor.OrgID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.New(apperr.KindConflict, "an organization must keep at least one admin")
		}
	}

	if err := s.memberRepo.Delete(actor.OrgID, memberID); err != nil {
		return err
	}

	s.notifyMember(actor, "removed", member)
	return nil
}

func (s *membershipService) ChangeRole(ctx context.Context, actor model.Actor, memberID uuid.UUID, role string) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "only organization admins can change roles")
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return apperr.New(apperr.KindValidation, "role must be 'admin' or 'user'")
	}

	member, err := s.memberRepo.FindByID(actor.OrgID, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperr.New(apperr.KindNotFound, "member not found")
		}
		return err
	}

	if member.Role == model.RoleAdmin && role != model.RoleAdmin && !member.Pending() {
		admins, err := s.memberRepo.CountAdmins(actor.OrgID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.New(apperr.KindConflict, "an organization must keep at least one admin")
		}
	}

	member.Role = role
	member.UpdatedBy = actor.UserID.String()
	if err := s.memberRepo.Update(member); err != nil {
		return err
	}

	s.notifyMember(actor, "role_changed", member)
	return nil
}

// AcceptInvite transitions a pending membership to active for the user that
// just completed signup. The token is single-use.
func (s *membershipService) AcceptInvite(ctx context.Context, token string, user *model.User) (*model.Member, error) {
	member, err := s.memberRepo.FindByInviteToken(token)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.New(apperr.KindNotFound, "invitation not found or already used")
		}
		return nil, err
	}
	if !member.Pending() {
		return nil, apperr.New(apperr.KindConflict, "invitation has already been accepted")
	}

	member.UserID = &user.ID
	member.InviteToken = ""
	if member.DisplayName == "" {
		member.DisplayName = user.FullName
	}
	member.UpdatedBy = user.ID.String()
	if err := s.memberRepo.Update(member); err != nil {
		return nil, err
	}

	return member, nil
}

func (s *membershipService) notifyMember(actor model.Actor, action string, member *model.Member) {
	s.wsHub.Notify(ws.Event{
		Type:    "member",
		Action:  action,
		OrgID:   actor.OrgID.String(),
		Payload: member.ToResponse(),
		Message: actor.Name + " " + action + " " + member.Email,
	})
}

func fail(message string, kind apperr.Kind) (*InviteResult, error) {
	return &InviteResult{Success: false, Message: message}, apperr.New(kind, message)
}

func failf(kind apperr.Kind, format string, args ...interface{}) (*InviteResult, error) {
	err := apperr.Newf(kind, format, args...)
	return &InviteResult{Success: false, Message: err.Error()}, err
}
