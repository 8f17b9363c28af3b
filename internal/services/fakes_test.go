package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/internal/apperr"
	"nexus-backend/internal/models"
	"nexus-backend/internal/rbac"
	"nexus-backend/internal/realtime"
	"nexus-backend/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNoti() (*NotificationService, *fakeNotiStore) {
	store := &fakeNotiStore{}
	return NewNotificationService(store, realtime.NewHub(testLogger()), testLogger()), store
}

func listAll() repository.NotificationFilter {
	return repository.NotificationFilter{}
}

// fakeUserStore keeps users in a map and mirrors the repository's update
// semantics closely enough to drive the service-level rules.
type fakeUserStore struct {
	users      map[bson.ObjectID]*models.User
	profileErr error
	// makes PromoteToMember report no match, as if a concurrent
	// promotion won the role-guard race
	forcePromoteMiss bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[bson.ObjectID]*models.User{}}
}

func (f *fakeUserStore) add(u models.User) bson.ObjectID {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	f.users[u.ID] = &u
	return u.ID
}

func (f *fakeUserStore) Insert(_ context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperr.New(apperr.Conflict, "email already exists")
		}
	}
	u.ID = bson.NewObjectID()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (f *fakeUserStore) ApplyApprovedProfile(_ context.Context, id bson.ObjectID, app *models.Application) error {
	if f.profileErr != nil {
		return f.profileErr
	}
	if u, ok := f.users[id]; ok {
		u.Program = app.Program
	}
	return nil
}

func (f *fakeUserStore) AddRole(_ context.Context, id bson.ObjectID, role rbac.Role) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if !rbac.HasRole(u.Roles, role) {
		u.Roles = append(u.Roles, role)
	}
	return nil
}

func (f *fakeUserStore) RemoveRole(_ context.Context, id bson.ObjectID, role rbac.Role) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	out := u.Roles[:0:0]
	for _, r := range u.Roles {
		if r != role {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		out = []rbac.Role{rbac.BaseRole}
	}
	u.Roles = out
	return nil
}

func (f *fakeUserStore) SetRoles(_ context.Context, id bson.ObjectID, roles []rbac.Role) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	u.Roles = roles
	return nil
}

func (f *fakeUserStore) PromoteToMember(_ context.Context, id bson.ObjectID, info models.MembershipInfo, stats models.MemberStats) (bool, error) {
	u, ok := f.users[id]
	if !ok || rbac.HasRole(u.Roles, rbac.RoleClubMember) || f.forcePromoteMiss {
		return false, nil
	}
	u.Roles = append(u.Roles, rbac.RoleClubMember)
	in, st := info, stats
	u.Membership = &in
	u.Stats = &st
	return true, nil
}

func (f *fakeUserStore) SetMembershipField(_ context.Context, id bson.ObjectID, field string, value any) error {
	u, ok := f.users[id]
	if !ok || u.Membership == nil {
		return apperr.New(apperr.NotFound, "user is not a club member")
	}
	switch field {
	case "level":
		u.Membership.Level = value.(models.MemberLevel)
	case "status":
		u.Membership.Status = value.(models.MemberStatus)
	}
	return nil
}

func (f *fakeUserStore) ListMembers(_ context.Context, _ repository.MemberFilter) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Membership != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) PromotionHistory(_ context.Context, _ int64) ([]models.User, error) {
	return f.ListMembers(context.Background(), repository.MemberFilter{})
}

// fakeAppStore holds applications keyed by id and enforces the same
// uniqueness and compare-and-swap rules the mongo filters do.
type fakeAppStore struct {
	apps map[bson.ObjectID]*models.Application
	// captured from the last SetDocumentStatus call
	lastDocFields bson.M
}

func newFakeAppStore() *fakeAppStore {
	return &fakeAppStore{apps: map[bson.ObjectID]*models.Application{}}
}

func (f *fakeAppStore) Insert(_ context.Context, app *models.Application) error {
	for _, a := range f.apps {
		if a.UserID == app.UserID {
			return apperr.New(apperr.Conflict, "user already has an application")
		}
	}
	app.ID = bson.NewObjectID()
	cp := *app
	f.apps[app.ID] = &cp
	return nil
}

func (f *fakeAppStore) FindByID(_ context.Context, id bson.ObjectID) (*models.Application, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "application not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppStore) FindByUser(_ context.Context, userID bson.ObjectID) (*models.Application, error) {
	for _, a := range f.apps {
		if a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "application not found")
}

func (f *fakeAppStore) List(_ context.Context, fl repository.ApplicationFilter) ([]models.Application, error) {
	var out []models.Application
	for _, a := range f.apps {
		if fl.Status != "" && a.Status != fl.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAppStore) Transition(_ context.Context, id bson.ObjectID, from []models.AppStatus, set bson.M) (*models.Application, error) {
	a, ok := f.apps[id]
	if ok {
		legal := false
		for _, s := range from {
			if a.Status == s {
				legal = true
			}
		}
		if !legal {
			ok = false
		}
	}
	if !ok {
		return nil, apperr.New(apperr.ConcurrentModification, "application was modified concurrently")
	}
	if v, isSet := set["status"].(models.AppStatus); isSet {
		a.Status = v
	}
	if v, isSet := set["reviewer_id"].(bson.ObjectID); isSet {
		a.ReviewerID = v
	}
	if v, isSet := set["reviewed_at"].(time.Time); isSet {
		a.ReviewedAt = &v
	}
	if v, isSet := set["review_notes"].(string); isSet {
		a.ReviewNotes = v
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppStore) UpdateOwn(_ context.Context, userID bson.ObjectID, set bson.M) (*models.Application, error) {
	for _, a := range f.apps {
		if a.UserID != userID || a.Status != models.AppPending {
			continue
		}
		if v, ok := set["program"].(string); ok {
			a.Program = v
		}
		if v, ok := set["motivation"].(string); ok {
			a.Motivation = v
		}
		cp := *a
		return &cp, nil
	}
	return nil, apperr.New(apperr.ConcurrentModification, "application was modified concurrently")
}

func (f *fakeAppStore) AddDocument(_ context.Context, userID bson.ObjectID, doc models.Document) (*models.Application, error) {
	for _, a := range f.apps {
		if a.UserID != userID {
			continue
		}
		for _, d := range a.Documents {
			if d.Type == doc.Type {
				return nil, apperr.New(apperr.Conflict, "document of this type already exists")
			}
		}
		a.Documents = append(a.Documents, doc)
		cp := *a
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "application not found")
}

func (f *fakeAppStore) PullPendingDocument(_ context.Context, userID bson.ObjectID, docType string) (bool, error) {
	for _, a := range f.apps {
		if a.UserID != userID {
			continue
		}
		for i, d := range a.Documents {
			if d.Type == docType && d.Status == models.DocPending {
				a.Documents = append(a.Documents[:i], a.Documents[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeAppStore) SetDocumentStatus(_ context.Context, appID bson.ObjectID, docType string, fields bson.M) (bool, error) {
	f.lastDocFields = fields
	a, ok := f.apps[appID]
	if !ok {
		return false, nil
	}
	for i := range a.Documents {
		d := &a.Documents[i]
		if d.Type != docType || d.Status != models.DocPending {
			continue
		}
		if v, isSet := fields["status"].(models.DocStatus); isSet {
			d.Status = v
		}
		if v, isSet := fields["reviewed_at"].(time.Time); isSet {
			d.ReviewedAt = &v
		}
		if v, isSet := fields["verifier_id"].(bson.ObjectID); isSet {
			d.VerifierID = v
		}
		if v, isSet := fields["reject_reason"].(string); isSet {
			d.RejectReason = v
		}
		return true, nil
	}
	return false, nil
}

type fakeCounterStore struct {
	seqs map[int]int
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{seqs: map[int]int{}}
}

func (f *fakeCounterStore) NextMemberSeq(_ context.Context, year int) (int, error) {
	f.seqs[year]++
	return f.seqs[year], nil
}

type fakeNotiStore struct {
	items []*models.Notification
}

func (f *fakeNotiStore) Insert(_ context.Context, n *models.Notification) error {
	n.ID = bson.NewObjectID()
	cp := *n
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeNotiStore) ListByUser(_ context.Context, userID bson.ObjectID, fl repository.NotificationFilter) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.items {
		if n.UserID != userID {
			continue
		}
		if fl.UnreadOnly && n.Read {
			continue
		}
		if fl.Type != "" && n.Type != fl.Type {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeNotiStore) UnreadCount(_ context.Context, userID bson.ObjectID) (int64, error) {
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotiStore) MarkReadIfUnread(_ context.Context, userID, id bson.ObjectID) (*models.Notification, error) {
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID && !n.Read {
			now := time.Now().UTC()
			n.Read = true
			n.ReadAt = &now
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeNotiStore) FindOwned(_ context.Context, userID, id bson.ObjectID) (*models.Notification, error) {
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "notification not found")
}

func (f *fakeNotiStore) MarkAllRead(_ context.Context, userID bson.ObjectID) (int64, error) {
	var count int64
	now := time.Now().UTC()
	for _, n := range f.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeNotiStore) Delete(_ context.Context, userID, id bson.ObjectID) error {
	for i, n := range f.items {
		if n.ID == id && n.UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "notification not found")
}

func (f *fakeNotiStore) DeleteRead(_ context.Context, userID bson.ObjectID) (int64, error) {
	var kept []*models.Notification
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && n.Read {
			count++
			continue
		}
		kept = append(kept, n)
	}
	f.items = kept
	return count, nil
}

type fakeMailer struct {
	sent []string // recipient addresses
	err  error
}

func (m *fakeMailer) Send(to, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}
