package service

import (
	"context"
	"errors"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/pkg/jwt"
	"go-inventory-cloud/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`

	// Either join via invitation token, or found a new organization.
	InviteToken string `json:"invite_token"`
	OrgName     string `json:"organization_name"`
}

type LoginResponse struct {
	Token        string              `json:"token"`
	User         model.UserResponse  `json:"user"`
	Organization *model.Organization `json:"organization"`
	Role         string              `json:"role"`
}

type TokenValidationResponse struct {
	User         model.UserResponse  `json:"user"`
	Organization *model.Organization `json:"organization"`
	Role         string              `json:"role"`
}

type authService struct {
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	orgRepo    repository.OrgRepository
	membership MembershipService
}

func NewAuthService(userRepo repository.UserRepository, memberRepo repository.MemberRepository, orgRepo repository.OrgRepository, membership MembershipService) AuthService {
	return &authService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
		orgRepo:    orgRepo,
		membership: membership,
	}
}

// Register creates the account and its membership. With an invite token the
// user joins the inviting organization (completing the pending invitation);
// without one a fresh free-tier organization is founded with the user as its
// admin.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation,
			"validation failed: field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, apperr.New(apperr.KindConflict, "an account with this email already exists")
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	var member *model.Member
	if req.InviteToken != "" {
		m, err := s.membership.AcceptInvite(ctx, req.InviteToken, user)
		if err != nil {
			return nil, err
		}
		member = m
	} else {
		orgName := req.OrgName
		if orgName == "" {
			orgName = req.FullName + "'s Organization"
		}
		org := &model.Organization{
			Name:          orgName,
			Tier:          model.TierFree,
			BillingStatus: model.BillingInactive,
			MemberLimit:   model.FreeMemberLimit,
		}
		org.CreatedBy = user.ID.String()
		org.UpdatedBy = user.ID.String()
		if err := s.orgRepo.Create(org); err != nil {
			return nil, err
		}

		member = &model.Member{
			OrgID:       org.ID,
			UserID:      &user.ID,
			Email:       user.Email,
			DisplayName: user.FullName,
			Role:        model.RoleAdmin,
		}
		member.CreatedBy = user.ID.String()
		member.UpdatedBy = user.ID.String()
		if err := s.memberRepo.Create(member); err != nil {
			return nil, err
		}
	}

	return s.buildSession(user, member)
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	member, err := s.memberRepo.FindByUser(user.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindAuthorization, "account has no organization membership")
	}

	return s.buildSession(user, member)
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	org, err := s.orgRepo.FindByID(claims.OrgID)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "organization not found")
	}

	return &TokenValidationResponse{
		User:         user.ToResponse(),
		Organization: org,
		Role:         claims.Role,
	}, nil
}

func (s *authService) buildSession(user *model.User, member *model.Member) (*LoginResponse, error) {
	org, err := s.orgRepo.FindByID(member.OrgID)
	if err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, org.ID, member.Role)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:        token,
		User:         user.ToResponse(),
		Organization: org,
		Role:         member.Role,
	}, nil
}
