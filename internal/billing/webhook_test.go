package billing

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/internal/ws"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Organization{}))
	return db
}

func seedFreeOrg(t *testing.T, db *gorm.DB, customerID string) *model.Organization {
	t.Helper()

	org := &model.Organization{
		Name:          "Acme Logistics",
		Tier:          model.TierFree,
		BillingStatus: model.BillingInactive,
		MemberLimit:   model.FreeMemberLimit,
		CustomerID:    customerID,
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func eventPayload(t *testing.T, eventType, customer string, metadata map[string]string) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_001",
		"type": eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       "sub_test_001",
				"customer": customer,
				"status":   "active",
				"metadata": metadata,
			},
		},
	})
	require.NoError(t, err)
	return raw
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"subscription.created"}`)
	secret := "whsec_test"
	now := time.Now()

	header := Sign(payload, secret, now)
	assert.NoError(t, VerifySignature(payload, header, secret, now))

	// Tampered payload.
	assert.ErrorIs(t, VerifySignature([]byte(`{"type":"evil"}`), header, secret, now), ErrInvalidSignature)

	// Wrong secret.
	assert.ErrorIs(t, VerifySignature(payload, header, "whsec_other", now), ErrInvalidSignature)

	// Signature outside the replay tolerance.
	stale := Sign(payload, secret, now.Add(-10*time.Minute))
	assert.ErrorIs(t, VerifySignature(payload, stale, secret, now), ErrInvalidSignature)

	// Garbage header.
	assert.ErrorIs(t, VerifySignature(payload, "v1=deadbeef", secret, now), ErrInvalidSignature)
}

func TestApplySubscriptionCreated(t *testing.T) {
	db := openTestDB(t)
	org := seedFreeOrg(t, db, "cus_123")
	r := NewReconciler(repository.NewOrgRepo(db), ws.NewHub())

	payload := eventPayload(t, EventSubscriptionCreated, "cus_123", map[string]string{
		"tier":         "pro",
		"member_limit": "25",
	})
	require.NoError(t, r.Apply(payload))

	got, err := repository.NewOrgRepo(db).FindByID(org.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TierPro, got.Tier)
	assert.Equal(t, model.BillingActive, got.BillingStatus)
	assert.Equal(t, 25, got.MemberLimit)
	assert.Equal(t, "sub_test_001", got.SubscriptionID)
}

func TestApplyIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	org := seedFreeOrg(t, db, "cus_123")
	orgRepo := repository.NewOrgRepo(db)
	r := NewReconciler(orgRepo, ws.NewHub())

	payload := eventPayload(t, EventSubscriptionUpdated, "cus_123", map[string]string{
		"tier":         "pro",
		"member_limit": "25",
	})

	require.NoError(t, r.Apply(payload))
	first, err := orgRepo.FindByID(org.ID)
	require.NoError(t, err)

	// Redelivery of the same event lands in the same state.
	require.NoError(t, r.Apply(payload))
	second, err := orgRepo.FindByID(org.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Tier, second.Tier)
	assert.Equal(t, first.MemberLimit, second.MemberLimit)
	assert.Equal(t, first.BillingStatus, second.BillingStatus)
	assert.Equal(t, first.SubscriptionID, second.SubscriptionID)
}

func TestApplySubscriptionDeletedRevertsToFree(t *testing.T) {
	db := openTestDB(t)
	org := seedFreeOrg(t, db, "cus_123")
	orgRepo := repository.NewOrgRepo(db)
	r := NewReconciler(orgRepo, ws.NewHub())

	require.NoError(t, r.Apply(eventPayload(t, EventSubscriptionCreated, "cus_123", map[string]string{
		"tier":         "pro",
		"member_limit": "25",
	})))
	require.NoError(t, r.Apply(eventPayload(t, EventSubscriptionDeleted, "cus_123", nil)))

	got, err := orgRepo.FindByID(org.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TierFree, got.Tier)
	assert.Equal(t, model.BillingInactive, got.BillingStatus)
	assert.Equal(t, model.FreeMemberLimit, got.MemberLimit)
	assert.Empty(t, got.SubscriptionID)
	assert.Equal(t, "cus_123", got.CustomerID, "customer binding survives cancellation")
}

func TestApplyResolvesOrgFromMetadata(t *testing.T) {
	db := openTestDB(t)
	org := seedFreeOrg(t, db, "") // first checkout: no customer bound yet
	orgRepo := repository.NewOrgRepo(db)
	r := NewReconciler(orgRepo, ws.NewHub())

	payload := eventPayload(t, EventSubscriptionCreated, "cus_new", map[string]string{
		"tier":            "pro",
		"organization_id": org.ID.String(),
	})
	require.NoError(t, r.Apply(payload))

	got, err := orgRepo.FindByID(org.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TierPro, got.Tier)
	assert.Equal(t, "cus_new", got.CustomerID, "customer id is captured for future lookups")
}

func TestApplyUnknownEventAcknowledged(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(repository.NewOrgRepo(db), ws.NewHub())

	payload := eventPayload(t, "invoice.payment_succeeded", "cus_whoever", nil)
	assert.NoError(t, r.Apply(payload))
}

func TestApplyUnknownOrgFails(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(repository.NewOrgRepo(db), ws.NewHub())

	payload := eventPayload(t, EventSubscriptionCreated, "cus_missing", nil)
	assert.ErrorIs(t, r.Apply(payload), ErrUnknownOrg)
}

func TestApplyMalformedPayload(t *testing.T) {
	db := openTestDB(t)
	r := NewReconciler(repository.NewOrgRepo(db), ws.NewHub())

	assert.Error(t, r.Apply([]byte("{not json")))
}
