package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-inventory-cloud/internal/model"
)

type MemberRepository interface {
	Create(member *model.Member) error
	FindByOrg(orgID uuid.UUID) ([]model.Member, error)
	FindByID(orgID, id uuid.UUID) (*model.Member, error)
	FindByOrgAndEmail(orgID uuid.UUID, email string) (*model.Member, error)
	FindByInviteToken(token string) (*model.Member, error)
	FindByUser(userID uuid.UUID) (*model.Member, error)
	CountByOrg(orgID uuid.UUID) (int64, error)
	CountAdmins(orgID uuid.UUID) (int64, error)
	Update(member *model.Member) error
	Delete(orgID, id uuid.UUID) error
}

type memberRepo struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db}
}

func (r *memberRepo) Create(member *model.Member) error {
	return r.db.Create(member).Error
}

func (r *memberRepo) FindByOrg(orgID uuid.UUID) ([]model.Member, error) {
	var members []model.Member
	err := r.db.Preload("User").Where("org_id = ?", orgID).Order("created_at ASC").Find(&members).Error
	return members, err
}

func (r *memberRepo) FindByID(orgID, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.Preload("User").First(&member, "id = ? AND org_id = ?", id, orgID).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) FindByOrgAndEmail(orgID uuid.UUID, email string) (*model.Member, error) {
	var member model.Member
	if err := r.db.First(&member, "org_id = ? AND email = ?", orgID, email).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) FindByInviteToken(token string) (*model.Member, error) {
	var member model.Member
	if err := r.db.First(&member, "invite_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByUser resolves a user's membership. One active membership per user is
// assumed; the oldest wins if data ever disagrees.
func (r *memberRepo) FindByUser(userID uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.Order("created_at ASC").First(&member, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// CountByOrg counts active and pending rows alike: a pending invitation
// holds a seat against the member limit.
func (r *memberRepo) CountByOrg(orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Member{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}

func (r *memberRepo) CountAdmins(orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Member{}).
		Where("org_id = ? AND role = ? AND user_id IS NOT NULL", orgID, model.RoleAdmin).
		Count(&count).Error
	return count, err
}

func (r *memberRepo) Update(member *model.Member) error {
	return r.db.Save(member).Error
}

func (r *memberRepo) Delete(orgID, id uuid.UUID) error {
	return r.db.Delete(&model.Member{}, "id = ? AND org_id = ?", id, orgID).Error
}
