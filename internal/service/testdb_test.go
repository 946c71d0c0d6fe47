package service

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-inventory-cloud/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Organization{}, &model.Member{}, &model.InventoryItem{},
	))
	return db
}

func seedOrg(t *testing.T, db *gorm.DB, memberLimit int) *model.Organization {
	t.Helper()

	org := &model.Organization{
		Name:          "Acme Logistics",
		Tier:          model.TierFree,
		BillingStatus: model.BillingInactive,
		MemberLimit:   memberLimit,
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) *model.User {
	t.Helper()

	user := &model.User{Email: email, FullName: name, IsActive: true}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMember(t *testing.T, db *gorm.DB, org *model.Organization, user *model.User, role string) *model.Member {
	t.Helper()

	member := &model.Member{
		OrgID:       org.ID,
		UserID:      &user.ID,
		Email:       user.Email,
		DisplayName: user.FullName,
		Role:        role,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func actorFor(org *model.Organization, user *model.User, role string) model.Actor {
	return model.Actor{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName,
		OrgID:  org.ID,
		Role:   role,
	}
}

func adminActor(t *testing.T, db *gorm.DB) (*model.Organization, model.Actor) {
	t.Helper()

	org := seedOrg(t, db, model.FreeMemberLimit)
	user := seedUser(t, db, "admin@acme.test", "Ada Admin")
	seedMember(t, db, org, user, model.RoleAdmin)
	return org, actorFor(org, user, model.RoleAdmin)
}

func newUUID() uuid.UUID {
	return uuid.New()
}
