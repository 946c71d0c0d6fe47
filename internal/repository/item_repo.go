package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-inventory-cloud/internal/model"
)

type ItemRepository interface {
	Create(item *model.InventoryItem) error
	FindAllByOrg(orgID uuid.UUID) ([]model.InventoryItem, error)
	FindByID(orgID, id uuid.UUID) (*model.InventoryItem, error)
	UpdateFields(orgID, id uuid.UUID, fields map[string]interface{}) (int64, error)
	Delete(orgID, id uuid.UUID) error
	Stats(orgID uuid.UUID) (*InventoryStats, error)
}

// InventoryStats are the dashboard overview numbers for one organization.
type InventoryStats struct {
	TotalItems     int64           `json:"total_items"`
	BelowMinimum   int64           `json:"below_minimum"`
	TotalValuation float64         `json:"total_valuation"`
	Categories     []CategoryCount `json:"categories"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(item *model.InventoryItem) error {
	return r.db.Create(item).Error
}

func (r *itemRepo) FindAllByOrg(orgID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.Where("org_id = ?", orgID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(orgID, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.First(&item, "id = ? AND org_id = ?", id, orgID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateFields applies a partial update: only the supplied columns change,
// everything else is left untouched. Returns the number of rows matched so
// the service can distinguish a missing id.
func (r *itemRepo) UpdateFields(orgID, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.Model(&model.InventoryItem{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete hard-deletes. Deleting an id that does not exist is not an error.
func (r *itemRepo) Delete(orgID, id uuid.UUID) error {
	return r.db.Delete(&model.InventoryItem{}, "id = ? AND org_id = ?", id, orgID).Error
}

func (r *itemRepo) Stats(orgID uuid.UUID) (*InventoryStats, error) {
	var stats InventoryStats

	if err := r.db.Model(&model.InventoryItem{}).
		Where("org_id = ?", orgID).
		Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.InventoryItem{}).
		Where("org_id = ? AND quantity < minimum_stock", orgID).
		Count(&stats.BelowMinimum).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.InventoryItem{}).
		Where("org_id = ?", orgID).
		Select("COALESCE(SUM(quantity * price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	rows, err := r.db.Model(&model.InventoryItem{}).
		Select("category, COUNT(*) as count").
		Where("org_id = ?", orgID).
		Group("category").
		Order("category ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		stats.Categories = append(stats.Categories, cc)
	}

	return &stats, nil
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
