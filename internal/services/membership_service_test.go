package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/dto"
	"nexus-backend/internal/apperr"
	"nexus-backend/internal/memberid"
	"nexus-backend/internal/models"
	"nexus-backend/internal/rbac"
)

type memberFixture struct {
	svc    *MembershipService
	appSvc *ApplicationService
	users  *fakeUserStore
	apps   *fakeAppStore
	noti   *fakeNotiStore
	mail   *fakeMailer

	manager models.Actor
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()
	users := newFakeUserStore()
	apps := newFakeAppStore()
	counters := newFakeCounterStore()
	notiSvc, notiStore := newTestNoti()
	mail := &fakeMailer{}

	managerID := users.add(models.User{Email: "boss@example.com", Roles: []rbac.Role{rbac.RoleManager}})

	return &memberFixture{
		svc:     NewMembershipService(users, apps, counters, notiSvc, mail, testLogger()),
		appSvc:  NewApplicationService(apps, users, notiSvc, testLogger()),
		users:   users,
		apps:    apps,
		noti:    notiStore,
		mail:    mail,
		manager: models.Actor{ID: managerID, Roles: []rbac.Role{rbac.RoleManager}},
	}
}

// addApplicant creates a user holding the applicant role, optionally with an
// application already in the given status.
func (f *memberFixture) addApplicant(t *testing.T, email string, status models.AppStatus) bson.ObjectID {
	t.Helper()
	id := f.users.add(models.User{Email: email, Roles: []rbac.Role{rbac.RoleApplicant}})
	if status != "" {
		require.NoError(t, f.apps.Insert(context.Background(), &models.Application{
			UserID:      id,
			Status:      status,
			Program:     "robotics",
			Motivation:  "build things",
			SubmittedAt: time.Now().UTC(),
		}))
	}
	return id
}

func TestPromoteRequiresApplicantRole(t *testing.T) {
	f := newMemberFixture(t)
	mentorID := f.users.add(models.User{Email: "m@example.com", Roles: []rbac.Role{rbac.RoleMentor}})

	_, err := f.svc.Promote(context.Background(), f.manager, mentorID)
	require.ErrorIs(t, err, ErrNotApplicant)
	assert.Equal(t, apperr.InvalidStateTransition, apperr.KindOf(err))
}

func TestPromoteRequiresApprovedApplication(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	noApp := f.addApplicant(t, "none@example.com", "")
	_, err := f.svc.Promote(ctx, f.manager, noApp)
	require.ErrorIs(t, err, ErrNoApprovedApplication)

	pending := f.addApplicant(t, "pending@example.com", models.AppPending)
	_, err = f.svc.Promote(ctx, f.manager, pending)
	require.ErrorIs(t, err, ErrNoApprovedApplication)
}

func TestPromoteRejectsExistingMember(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	id := f.addApplicant(t, "dup@example.com", models.AppApproved)
	_, err := f.svc.Promote(ctx, f.manager, id)
	require.NoError(t, err)

	_, err = f.svc.Promote(ctx, f.manager, id)
	require.ErrorIs(t, err, ErrAlreadyMember)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestPromoteAllocatesSequentialMemberIDs(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	first := f.addApplicant(t, "one@example.com", models.AppApproved)
	second := f.addApplicant(t, "two@example.com", models.AppApproved)

	u1, err := f.svc.Promote(ctx, f.manager, first)
	require.NoError(t, err)
	u2, err := f.svc.Promote(ctx, f.manager, second)
	require.NoError(t, err)

	require.NotNil(t, u1.Membership)
	require.NotNil(t, u2.Membership)
	assert.Equal(t, memberid.Format(year, 1), u1.Membership.MemberID)
	assert.Equal(t, memberid.Format(year, 2), u2.Membership.MemberID)
	assert.Equal(t, models.LevelBronze, u1.Membership.Level)
	assert.Equal(t, models.MemberActive, u1.Membership.Status)
	assert.True(t, rbac.HasRole(u1.Roles, rbac.RoleClubMember))

	// welcome side effects: persisted notification and mail, both per member
	got, err := f.noti.ListByUser(ctx, first, listAll())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, NotiMemberWelcome, got[0].Type)
	assert.Contains(t, got[0].Message, u1.Membership.MemberID)
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, f.mail.sent)
}

func TestPromoteLosesRoleGuardRace(t *testing.T) {
	f := newMemberFixture(t)
	id := f.addApplicant(t, "race@example.com", models.AppApproved)

	// the role-guard filter matches nothing, as if a concurrent promotion
	// slipped in between the precondition read and the write
	f.users.forcePromoteMiss = true

	_, err := f.svc.Promote(context.Background(), f.manager, id)
	require.Error(t, err)
	assert.Equal(t, apperr.ConcurrentModification, apperr.KindOf(err))
}

func TestPromoteRequiresManageMembers(t *testing.T) {
	f := newMemberFixture(t)
	id := f.addApplicant(t, "a@example.com", models.AppApproved)
	coordinator := models.Actor{ID: bson.NewObjectID(), Roles: []rbac.Role{rbac.RoleCoordinator}}

	_, err := f.svc.Promote(context.Background(), coordinator, id)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestSuspensionKeepsClubMemberRole(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()
	id := f.addApplicant(t, "s@example.com", models.AppApproved)

	_, err := f.svc.Promote(ctx, f.manager, id)
	require.NoError(t, err)
	require.NoError(t, f.svc.SetStatus(ctx, f.manager, id, models.MemberSuspended))

	u, err := f.users.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.MemberSuspended, u.Membership.Status)
	assert.True(t, rbac.HasRole(u.Roles, rbac.RoleClubMember))
}

// The full happy path produces exactly three notifications for the applicant:
// submitted, approved, welcome. Starting the review stays silent.
func TestLifecycleEmitsThreeNotifications(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	applicantID := f.users.add(models.User{Email: "ada@example.com", Roles: []rbac.Role{rbac.RoleApplicant}})
	applicant := models.Actor{ID: applicantID, Roles: []rbac.Role{rbac.RoleApplicant}}

	app, err := f.appSvc.Submit(ctx, applicant, dto.SubmitApplicationRequest{
		Program:    "robotics",
		Motivation: "build things",
	})
	require.NoError(t, err)
	_, err = f.appSvc.StartReview(ctx, f.manager, app.ID)
	require.NoError(t, err)
	_, err = f.appSvc.Approve(ctx, f.manager, app.ID, "solid work")
	require.NoError(t, err)
	_, err = f.svc.Promote(ctx, f.manager, applicantID)
	require.NoError(t, err)

	got, err := f.noti.ListByUser(ctx, applicantID, listAll())
	require.NoError(t, err)
	require.Len(t, got, 3)

	types := make([]models.NotiType, 0, len(got))
	for _, n := range got {
		types = append(types, n.Type)
	}
	assert.ElementsMatch(t, []models.NotiType{
		NotiApplicationSubmitted, NotiApplicationApproved, NotiMemberWelcome,
	}, types)
}
