package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-inventory-cloud/internal/model"
)

type OrgRepository interface {
	Create(org *model.Organization) error
	FindByID(id uuid.UUID) (*model.Organization, error)
	FindByCustomerID(customerID string) (*model.Organization, error)
	Update(org *model.Organization) error
	UpdateBilling(id uuid.UUID, fields map[string]interface{}) error
}

type orgRepo struct {
	db *gorm.DB
}

func NewOrgRepo(db *gorm.DB) OrgRepository {
	return &orgRepo{db}
}

func (r *orgRepo) Create(org *model.Organization) error {
	return r.db.Create(org).Error
}

func (r *orgRepo) FindByID(id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *orgRepo) FindByCustomerID(customerID string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.First(&org, "customer_id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *orgRepo) Update(org *model.Organization) error {
	return r.db.Save(org).Error
}

// UpdateBilling applies the billing columns reconciled from a provider event.
func (r *orgRepo) UpdateBilling(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&model.Organization{}).Where("id = ?", id).Updates(fields).Error
}
