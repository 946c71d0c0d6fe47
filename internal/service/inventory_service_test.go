package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/cache"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/internal/ws"
)

func newInventoryService(t *testing.T) (InventoryService, *model.Organization, model.Actor) {
	t.Helper()

	db := openTestDB(t)
	org, actor := adminActor(t, db)
	svc := NewInventoryService(repository.NewItemRepo(db), cache.NewMemoryCache(), ws.NewHub())
	return svc, org, actor
}

func TestAddAppliesDefaults(t *testing.T) {
	svc, _, actor := newInventoryService(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, actor, &CreateItemRequest{Name: "Pallet Jack", Quantity: 2, MinimumStock: 5})
	require.NoError(t, err)

	assert.Equal(t, "Uncategorized", item.Category)
	assert.Equal(t, model.StatusInStock, item.Status)
	assert.Equal(t, "USD", item.Currency)
	assert.Equal(t, "EACH", item.UnitOfMeasure)
	assert.Zero(t, item.Latitude)
	assert.Zero(t, item.Longitude)

	// Status is stored, not derived: quantity below minimum stock still
	// reads "In Stock" while the low-stock indicator fires.
	assert.True(t, item.BelowMinimum())

	items, err := svc.List(ctx, actor)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Pallet Jack", items[0].Name)
	assert.Equal(t, model.StatusInStock, items[0].Status)
}

func TestAddEmptyNameRejected(t *testing.T) {
	svc, _, actor := newInventoryService(t)

	_, err := svc.Add(context.Background(), actor, &CreateItemRequest{Name: ""})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListUnauthenticatedReturnsEmpty(t *testing.T) {
	svc, _, actor := newInventoryService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, actor, &CreateItemRequest{Name: "Forklift"})
	require.NoError(t, err)

	items, err := svc.List(ctx, model.Actor{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListScopedToOrganization(t *testing.T) {
	db := openTestDB(t)
	svc := NewInventoryService(repository.NewItemRepo(db), cache.NewMemoryCache(), ws.NewHub())
	ctx := context.Background()

	_, actorA := adminActor(t, db)

	orgB := seedOrg(t, db, model.FreeMemberLimit)
	userB := seedUser(t, db, "other@beta.test", "Bea Boss")
	seedMember(t, db, orgB, userB, model.RoleAdmin)
	actorB := actorFor(orgB, userB, model.RoleAdmin)

	_, err := svc.Add(ctx, actorA, &CreateItemRequest{Name: "Shrink Wrap"})
	require.NoError(t, err)

	items, err := svc.List(ctx, actorB)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdatePartialSemantics(t *testing.T) {
	svc, _, actor := newInventoryService(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, actor, &CreateItemRequest{
		Name:         "Hand Truck",
		Category:     "Equipment",
		Quantity:     3,
		Location:     "Dock 2",
		Price:        129.99,
		MinimumStock: 1,
	})
	require.NoError(t, err)
	created := item.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	quantity := 5
	require.NoError(t, svc.Update(ctx, actor, item.ID, &UpdateItemRequest{Quantity: &quantity}))

	got, err := svc.Get(ctx, actor, item.ID)
	require.NoError(t, err)

	// Only quantity changed; everything else is untouched.
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, "Hand Truck", got.Name)
	assert.Equal(t, "Equipment", got.Category)
	assert.Equal(t, "Dock 2", got.Location)
	assert.InDelta(t, 129.99, got.Price, 1e-9)
	assert.Equal(t, 1, got.MinimumStock)

	// The update refreshed the timestamp and attribution.
	assert.True(t, got.UpdatedAt.After(created))
	require.NotNil(t, got.UpdatedByUserID)
	assert.Equal(t, actor.UserID.String(), *got.UpdatedByUserID)
}

func TestUpdateMissingItemNotFound(t *testing.T) {
	svc, _, actor := newInventoryService(t)

	quantity := 1
	err := svc.Update(context.Background(), actor, newUUID(), &UpdateItemRequest{Quantity: &quantity})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateEmptyNameRejected(t *testing.T) {
	svc, _, actor := newInventoryService(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, actor, &CreateItemRequest{Name: "Ladder"})
	require.NoError(t, err)

	empty := ""
	err = svc.Update(ctx, actor, item.ID, &UpdateItemRequest{Name: &empty})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _, actor := newInventoryService(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, actor, &CreateItemRequest{Name: "Broken Scanner"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, actor, item.ID))
	// Deleting an id that is already gone is a success no-op.
	require.NoError(t, svc.Remove(ctx, actor, item.ID))
	require.NoError(t, svc.Remove(ctx, actor, newUUID()))

	items, err := svc.List(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListCachesUntilMutation(t *testing.T) {
	db := openTestDB(t)
	listCache := cache.NewMemoryCache()
	svc := NewInventoryService(repository.NewItemRepo(db), listCache, ws.NewHub())
	ctx := context.Background()

	_, actor := adminActor(t, db)

	_, err := svc.Add(ctx, actor, &CreateItemRequest{Name: "Dolly"})
	require.NoError(t, err)

	first, err := svc.List(ctx, actor)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Write behind the service's back: the cached list must still be served.
	require.NoError(t, db.Create(&model.InventoryItem{
		OrgID: actor.OrgID,
		Name:  "Smuggled Crate",
	}).Error)

	cached, err := svc.List(ctx, actor)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Any mutation through the store invalidates the key and forces a refetch.
	_, err = svc.Add(ctx, actor, &CreateItemRequest{Name: "Strapping Kit"})
	require.NoError(t, err)

	fresh, err := svc.List(ctx, actor)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestStats(t *testing.T) {
	svc, _, actor := newInventoryService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, actor, &CreateItemRequest{Name: "Fan", Category: "Cooling", Quantity: 2, MinimumStock: 5, Price: 10})
	require.NoError(t, err)
	_, err = svc.Add(ctx, actor, &CreateItemRequest{Name: "Rack", Category: "Storage", Quantity: 4, MinimumStock: 1, Price: 25})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, actor)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalItems)
	assert.Equal(t, int64(1), stats.BelowMinimum)
	assert.InDelta(t, 2*10+4*25, stats.TotalValuation, 1e-9)
	require.Len(t, stats.Categories, 2)
	assert.Equal(t, "Cooling", stats.Categories[0].Category)
}
