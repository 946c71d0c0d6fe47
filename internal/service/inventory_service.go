package service

import (
	"context"

	"github.com/google/uuid"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/cache"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/internal/ws"
	"go-inventory-cloud/pkg/validator"
)

type InventoryService interface {
	List(ctx context.Context, actor model.Actor) ([]model.InventoryItem, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.InventoryItem, error)
	Add(ctx context.Context, actor model.Actor, req *CreateItemRequest) (*model.InventoryItem, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *UpdateItemRequest) error
	Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error
	Stats(ctx context.Context, actor model.Actor) (*repository.InventoryStats, error)
}

// CreateItemRequest is the draft for a new item. Anything optional left
// unset gets a server-side default.
type CreateItemRequest struct {
	Name          string           `json:"name" validate:"required"`
	Category      string           `json:"category"`
	Quantity      int              `json:"quantity" validate:"gte=0"`
	Status        model.ItemStatus `json:"status" validate:"omitempty,oneof='In Stock' 'Low Stock' 'Out of Stock' 'On Order'"`
	Location      string           `json:"location"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	Description   string           `json:"description"`
	Price         float64          `json:"price" validate:"gte=0"`
	Currency      string           `json:"currency"`
	UnitOfMeasure string           `json:"unit_of_measure"`
	SKU           string           `json:"sku"`
	MinimumStock  int              `json:"minimum_stock" validate:"gte=0"`
	SupplierInfo  string           `json:"supplier_info"`
}

// UpdateItemRequest carries a partial field set: nil pointers are left
// untouched server-side.
type UpdateItemRequest struct {
	Name          *string           `json:"name,omitempty"`
	Category      *string           `json:"category,omitempty"`
	Quantity      *int              `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Status        *model.ItemStatus `json:"status,omitempty" validate:"omitempty,oneof='In Stock' 'Low Stock' 'Out of Stock' 'On Order'"`
	Location      *string           `json:"location,omitempty"`
	Latitude      *float64          `json:"latitude,omitempty"`
	Longitude     *float64          `json:"longitude,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Price         *float64          `json:"price,omitempty" validate:"omitempty,gte=0"`
	Currency      *string           `json:"currency,omitempty"`
	UnitOfMeasure *string           `json:"unit_of_measure,omitempty"`
	SKU           *string           `json:"sku,omitempty"`
	MinimumStock  *int              `json:"minimum_stock,omitempty" validate:"omitempty,gte=0"`
	SupplierInfo  *string           `json:"supplier_info,omitempty"`
}

type inventoryService struct {
	itemRepo  repository.ItemRepository
	listCache cache.ListCache
	wsHub     *ws.Hub
}

func NewInventoryService(itemRepo repository.ItemRepository, listCache cache.ListCache, hub *ws.Hub) InventoryService {
	return &inventoryService{
		itemRepo:  itemRepo,
		listCache: listCache,
		wsHub:     hub,
	}
}

// List returns the actor's organization inventory. An unauthenticated actor
// gets an empty slice, not an error. Reads go through the (org, user) cache;
// mutations invalidate it so the next read refetches.
func (s *inventoryService) List(ctx context.Context, actor model.Actor) ([]model.InventoryItem, error) {
	if !actor.Authenticated() {
		return []model.InventoryItem{}, nil
	}

	key := cache.ListKey(actor.OrgID, actor.UserID)
	if items, ok := s.listCache.Get(ctx, key); ok {
		return items, nil
	}

	items, err := s.itemRepo.FindAllByOrg(actor.OrgID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.InventoryItem{}
	}

	s.listCache.Set(ctx, key, items)
	return items, nil
}

func (s *inventoryService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.itemRepo.FindByID(actor.OrgID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.New(apperr.KindNotFound, "item not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) Add(ctx context.Context, actor model.Actor, req *CreateItemRequest) (*model.InventoryItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation,
			"validation failed: field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	userID := actor.UserID.String()
	item := &model.InventoryItem{
		OrgID:         actor.OrgID,
		Name:          req.Name,
		Category:      req.Category,
		Quantity:      req.Quantity,
		Status:        req.Status,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      req.Currency,
		UnitOfMeasure: req.UnitOfMeasure,
		SKU:           req.SKU,
		MinimumStock:  req.MinimumStock,
		SupplierInfo:  req.SupplierInfo,
	}
	item.ApplyDefaults()
	item.CreatedBy = userID
	item.UpdatedBy = userID
	item.UpdatedByUserID = &userID

	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}

	s.listCache.Invalidate(ctx, cache.ListKey(actor.OrgID, actor.UserID))
	s.wsHub.Notify(ws.Event{
		Type:    "item",
		Action:  "created",
		OrgID:   actor.OrgID.String(),
		Payload: item,
		Message: actor.Name + " added '" + item.Name + "'",
	})

	return item, nil
}

// Update applies only the supplied fields and refreshes the updated-by
// attribution. A missing id within the actor's organization is NotFound.
func (s *inventoryService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *UpdateItemRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperr.Newf(apperr.KindValidation,
			"validation failed: field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}
	if req.Name != nil && *req.Name == "" {
		return apperr.New(apperr.KindValidation, "item name cannot be empty")
	}

	fields := req.fields()
	userID := actor.UserID.String()
	fields["updated_by"] = userID
	fields["updated_by_user_id"] = userID

	affected, err := s.itemRepo.UpdateFields(actor.OrgID, id, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.KindNotFound, "item not found")
	}

	s.listCache.Invalidate(ctx, cache.ListKey(actor.OrgID, actor.UserID))
	s.wsHub.Notify(ws.Event{
		Type:    "item",
		Action:  "updated",
		OrgID:   actor.OrgID.String(),
		Payload: map[string]interface{}{"id": id},
		Message: actor.Name + " updated an item",
	})

	return nil
}

// Remove hard-deletes. Removing an id that no longer exists is a success
// no-op, so a double-click on delete never surfaces an error.
func (s *inventoryService) Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := s.itemRepo.Delete(actor.OrgID, id); err != nil {
		return err
	}

	s.listCache.Invalidate(ctx, cache.ListKey(actor.OrgID, actor.UserID))
	s.wsHub.Notify(ws.Event{
		Type:    "item",
		Action:  "deleted",
		OrgID:   actor.OrgID.String(),
		Payload: map[string]interface{}{"id": id},
		Message: actor.Name + " removed an item",
	})

	return nil
}

func (s *inventoryService) Stats(ctx context.Context, actor model.Actor) (*repository.InventoryStats, error) {
	return s.itemRepo.Stats(actor.OrgID)
}

// fields maps the set pointers onto their columns.
func (r *UpdateItemRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Category != nil {
		fields["category"] = *r.Category
	}
	if r.Quantity != nil {
		fields["quantity"] = *r.Quantity
	}
	if r.Status != nil {
		fields["status"] = *r.Status
	}
	if r.Location != nil {
		fields["location"] = *r.Location
	}
	if r.Latitude != nil {
		fields["latitude"] = *r.Latitude
	}
	if r.Longitude != nil {
		fields["longitude"] = *r.Longitude
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.Price != nil {
		fields["price"] = *r.Price
	}
	if r.Currency != nil {
		fields["currency"] = *r.Currency
	}
	if r.UnitOfMeasure != nil {
		fields["unit_of_measure"] = *r.UnitOfMeasure
	}
	if r.SKU != nil {
		fields["sku"] = *r.SKU
	}
	if r.MinimumStock != nil {
		fields["minimum_stock"] = *r.MinimumStock
	}
	if r.SupplierInfo != nil {
		fields["supplier_info"] = *r.SupplierInfo
	}
	return fields
}
