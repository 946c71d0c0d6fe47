package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/internal/ws"
)

const inviteBase = "https://app.example.test"

func newMembershipService(db *gorm.DB) MembershipService {
	return NewMembershipService(
		repository.NewMemberRepo(db),
		repository.NewOrgRepo(db),
		repository.NewUserRepo(db),
		ws.NewHub(),
		inviteBase,
	)
}

func TestInvitePendingFlow(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, actor := adminActor(t, db)

	result, err := svc.Invite(context.Background(), actor, &InviteRequest{
		Email: "new.hire@acme.test",
		Role:  model.RoleUser,
		Name:  "New Hire",
		OrgID: org.ID,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, result.InviteLink, inviteBase+"/join?token=")

	members, err := svc.ListMembers(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.True(t, members[1].Pending)
	assert.Equal(t, model.RoleUser, members[1].Role)
}

func TestInviteDirectAddForExistingAccount(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, actor := adminActor(t, db)

	seedUser(t, db, "veteran@elsewhere.test", "Vera Veteran")

	result, err := svc.Invite(context.Background(), actor, &InviteRequest{
		Email: "veteran@elsewhere.test",
		Role:  model.RoleUser,
		OrgID: org.ID,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.InviteLink, "direct-add has no pending invitation link")

	members, err := svc.ListMembers(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.False(t, members[1].Pending, "existing account is added as active, not pending")
}

func TestInviteMemberLimitEnforced(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)

	org := seedOrg(t, db, 2)
	admin := seedUser(t, db, "admin@full.test", "Full Admin")
	seedMember(t, db, org, admin, model.RoleAdmin)
	second := seedUser(t, db, "second@full.test", "Second Seat")
	seedMember(t, db, org, second, model.RoleUser)
	actor := actorFor(org, admin, model.RoleAdmin)

	result, err := svc.Invite(context.Background(), actor, &InviteRequest{
		Email: "overflow@full.test",
		Role:  model.RoleUser,
		OrgID: org.ID,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "member limit")

	// No insert happened.
	count, err := repository.NewMemberRepo(db).CountByOrg(org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestInviteRequiresAdmin(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, _ := adminActor(t, db)

	plain := seedUser(t, db, "plain@acme.test", "Plain User")
	seedMember(t, db, org, plain, model.RoleUser)
	actor := actorFor(org, plain, model.RoleUser)

	result, err := svc.Invite(context.Background(), actor, &InviteRequest{
		Email: "friend@acme.test",
		Role:  model.RoleUser,
		OrgID: org.ID,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	assert.False(t, result.Success)
}

func TestInviteAdminRoleNotAssignable(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, actor := adminActor(t, db)

	// Only the "user" role can be granted through the invite flow.
	result, err := svc.Invite(context.Background(), actor, &InviteRequest{
		Email: "wannabe@acme.test",
		Role:  model.RoleAdmin,
		OrgID: org.ID,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.False(t, result.Success)
}

func TestInviteDuplicateRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, actor := adminActor(t, db)
	ctx := context.Background()

	_, err := svc.Invite(ctx, actor, &InviteRequest{
		Email: "once@acme.test",
		Role:  model.RoleUser,
		OrgID: org.ID,
	})
	require.NoError(t, err)

	result, err := svc.Invite(ctx, actor, &InviteRequest{
		Email: "once@acme.test",
		Role:  model.RoleUser,
		OrgID: org.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, result.Message, "already been invited")
}

func TestAcceptInviteActivatesMembership(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, actor := adminActor(t, db)
	ctx := context.Background()

	result, err := svc.Invite(ctx, actor, &InviteRequest{
		Email: "joiner@acme.test",
		Role:  model.RoleUser,
		OrgID: org.ID,
	})
	require.NoError(t, err)
	token := result.InviteLink[len(inviteBase+"/join?token="):]

	joiner := seedUser(t, db, "joiner@acme.test", "Joy Joiner")

	member, err := svc.AcceptInvite(ctx, token, joiner)
	require.NoError(t, err)
	assert.False(t, member.Pending())
	require.NotNil(t, member.UserID)
	assert.Equal(t, joiner.ID, *member.UserID)

	// The token is single-use.
	_, err = svc.AcceptInvite(ctx, token, joiner)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRemoveLastAdminRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, actor := adminActor(t, db)
	ctx := context.Background()

	members, err := svc.ListMembers(ctx, actor)
	require.NoError(t, err)
	require.Len(t, members, 1)

	err = svc.Remove(ctx, actor, members[0].ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// With a second admin present, removal goes through.
	other := seedUser(t, db, "backup@acme.test", "Backup Admin")
	seedMember(t, db, org, other, model.RoleAdmin)
	require.NoError(t, svc.Remove(ctx, actor, members[0].ID))
}

func TestChangeRoleKeepsLastAdmin(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	_, actor := adminActor(t, db)
	ctx := context.Background()

	members, err := svc.ListMembers(ctx, actor)
	require.NoError(t, err)

	err = svc.ChangeRole(ctx, actor, members[0].ID, model.RoleUser)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRemoveCancelsPendingInvite(t *testing.T) {
	db := openTestDB(t)
	svc := newMembershipService(db)
	org, actor := adminActor(t, db)
	ctx := context.Background()

	_, err := svc.Invite(ctx, actor, &InviteRequest{
		Email: "maybe@acme.test",
		Role:  model.RoleUser,
		OrgID: org.ID,
	})
	require.NoError(t, err)

	members, err := svc.ListMembers(ctx, actor)
	require.NoError(t, err)
	require.Len(t, members, 2)

	require.NoError(t, svc.Remove(ctx, actor, members[1].ID))

	members, err = svc.ListMembers(ctx, actor)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
