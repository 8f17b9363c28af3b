package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/dto"
	"nexus-backend/internal/apperr"
	"nexus-backend/internal/models"
	"nexus-backend/internal/rbac"
	"nexus-backend/internal/repository"
)

// Sentinel errors of the application state machine. Authorization and
// validation are checked before any write; a CAS losing the race inside the
// repository surfaces as ConcurrentModification.
var (
	ErrApplicationLocked   = apperr.New(apperr.InvalidStateTransition, "application is locked once review has started")
	ErrAlreadyApproved     = apperr.New(apperr.Conflict, "application is already approved")
	ErrAlreadyRejected     = apperr.New(apperr.Conflict, "application is already rejected")
	ErrReviewNotesRequired = apperr.New(apperr.ValidationFailed, "review notes are required")
)

type ApplicationService struct {
	apps  ApplicationStore
	users UserStore
	noti  *NotificationService
	log   *slog.Logger
}

func NewApplicationService(apps ApplicationStore, users UserStore, noti *NotificationService, log *slog.Logger) *ApplicationService {
	return &ApplicationService{apps: apps, users: users, noti: noti, log: log}
}

// notifyBestEffort: transitions are committed before the notification is
// attempted, and a notification failure never rolls a transition back.
func (s *ApplicationService) notifyBestEffort(ctx context.Context, userID bson.ObjectID, t models.NotiType, p NotiParams, link string) {
	if err := s.noti.Notify(ctx, userID, t, p, link, nil); err != nil {
		s.log.Warn("notification failed after transition", "user_id", userID.Hex(), "type", t, "err", err)
	}
}

func (s *ApplicationService) Submit(ctx context.Context, actor models.Actor, req dto.SubmitApplicationRequest) (*models.Application, error) {
	if strings.TrimSpace(req.Program) == "" || strings.TrimSpace(req.Motivation) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "program and motivation are required")
	}
	app := &models.Application{
		UserID:      actor.ID,
		Status:      models.AppPending,
		Program:     req.Program,
		Motivation:  req.Motivation,
		Experience:  req.Experience,
		Portfolio:   req.Portfolio,
		Skills:      req.Skills,
		Documents:   []models.Document{},
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.apps.Insert(ctx, app); err != nil {
		return nil, err
	}
	s.notifyBestEffort(ctx, actor.ID, NotiApplicationSubmitted, NotiParams{}, "/applications/me")
	return app, nil
}

func (s *ApplicationService) GetOwn(ctx context.Context, actor models.Actor) (*models.Application, error) {
	return s.apps.FindByUser(ctx, actor.ID)
}

func (s *ApplicationService) GetByID(ctx context.Context, actor models.Actor, id bson.ObjectID) (*models.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != actor.ID && !actor.Can(rbac.PermReviewApplications) {
		return nil, apperr.New(apperr.Forbidden, "not allowed to view this application")
	}
	return app, nil
}

func (s *ApplicationService) List(ctx context.Context, actor models.Actor, f repository.ApplicationFilter) ([]models.Application, error) {
	if !actor.Can(rbac.PermReviewApplications) {
		return nil, apperr.New(apperr.Forbidden, "review-applications permission required")
	}
	return s.apps.List(ctx, f)
}

// Update patches the caller's own application while it is still pending.
func (s *ApplicationService) Update(ctx context.Context, actor models.Actor, req dto.UpdateApplicationRequest) (*models.Application, error) {
	app, err := s.apps.FindByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanUpdate() {
		return nil, ErrApplicationLocked
	}

	set := bson.M{}
	if req.Program != nil {
		set["program"] = *req.Program
	}
	if req.Motivation != nil {
		set["motivation"] = *req.Motivation
	}
	if req.Experience != nil {
		set["experience"] = *req.Experience
	}
	if req.Portfolio != nil {
		set["portfolio"] = *req.Portfolio
	}
	if req.Skills != nil {
		set["skills"] = *req.Skills
	}
	if len(set) == 0 {
		return nil, apperr.New(apperr.ValidationFailed, "no fields to update")
	}
	return s.apps.UpdateOwn(ctx, actor.ID, set)
}

func (s *ApplicationService) StartReview(ctx context.Context, actor models.Actor, id bson.ObjectID) (*models.Application, error) {
	if !actor.Can(rbac.PermReviewApplications) {
		return nil, apperr.New(apperr.Forbidden, "review-applications permission required")
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanStartReview() {
		return nil, apperr.New(apperr.InvalidStateTransition, "review can only start on a pending application")
	}
	now := time.Now().UTC()
	return s.apps.Transition(ctx, id, []models.AppStatus{models.AppPending}, bson.M{
		"status":      models.AppUnderReview,
		"reviewer_id": actor.ID,
		"reviewed_at": now,
	})
}

// Approve accepts pending as well as under-review: the direct pending →
// approved fast path is deliberate. Approving never grants the club-member
// role; that stays with the promotion workflow so a reviewer cannot
// self-grant membership side effects.
func (s *ApplicationService) Approve(ctx context.Context, actor models.Actor, id bson.ObjectID, notes string) (*models.Application, error) {
	if !actor.Can(rbac.PermApproveApplications) {
		return nil, apperr.New(apperr.Forbidden, "approve-applications permission required")
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == models.AppApproved {
		return nil, ErrAlreadyApproved
	}
	if !app.Status.CanApprove() {
		return nil, apperr.New(apperr.InvalidStateTransition, "a rejected application cannot be approved")
	}

	now := time.Now().UTC()
	updated, err := s.apps.Transition(ctx, id,
		[]models.AppStatus{models.AppPending, models.AppUnderReview},
		bson.M{
			"status":       models.AppApproved,
			"reviewer_id":  actor.ID,
			"reviewed_at":  now,
			"review_notes": notes,
		})
	if err != nil {
		return nil, err
	}

	if err := s.users.ApplyApprovedProfile(ctx, updated.UserID, updated); err != nil {
		// the status flip is the unit of truth; a failed profile copy must
		// not fail an approval that already committed
		s.log.Warn("profile copy failed after approval", "application_id", updated.ID.Hex(), "err", err)
	}
	s.notifyBestEffort(ctx, updated.UserID, NotiApplicationApproved, NotiParams{Notes: notes}, "/applications/me")
	return updated, nil
}

// Reject requires an explanation: the notes become the rejection reason shown
// to the applicant. Valid from any non-rejected state.
func (s *ApplicationService) Reject(ctx context.Context, actor models.Actor, id bson.ObjectID, notes string) (*models.Application, error) {
	if !actor.Can(rbac.PermReviewApplications) {
		return nil, apperr.New(apperr.Forbidden, "review-applications permission required")
	}
	if strings.TrimSpace(notes) == "" {
		return nil, ErrReviewNotesRequired
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanReject() {
		return nil, ErrAlreadyRejected
	}

	now := time.Now().UTC()
	updated, err := s.apps.Transition(ctx, id,
		[]models.AppStatus{models.AppPending, models.AppUnderReview, models.AppApproved},
		bson.M{
			"status":       models.AppRejected,
			"reviewer_id":  actor.ID,
			"reviewed_at":  now,
			"review_notes": notes,
		})
	if err != nil {
		return nil, err
	}
	s.notifyBestEffort(ctx, updated.UserID, NotiApplicationRejected, NotiParams{Notes: notes}, "/applications/me")
	return updated, nil
}

type BulkItem struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type BulkResult struct {
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Items     []BulkItem `json:"items"`
}

// bulk applies op to every id independently: one id failing never aborts the
// rest, the result carries a per-id verdict.
func (s *ApplicationService) bulk(ids []string, op func(bson.ObjectID) error) BulkResult {
	res := BulkResult{Items: make([]BulkItem, 0, len(ids))}
	for _, raw := range ids {
		oid, err := bson.ObjectIDFromHex(raw)
		if err == nil {
			err = op(oid)
		}
		if err != nil {
			res.Failed++
			res.Items = append(res.Items, BulkItem{ID: raw, Error: err.Error()})
			continue
		}
		res.Succeeded++
		res.Items = append(res.Items, BulkItem{ID: raw, OK: true})
	}
	return res
}

func (s *ApplicationService) BulkApprove(ctx context.Context, actor models.Actor, ids []string, notes string) BulkResult {
	return s.bulk(ids, func(id bson.ObjectID) error {
		_, err := s.Approve(ctx, actor, id, notes)
		return err
	})
}

func (s *ApplicationService) BulkReject(ctx context.Context, actor models.Actor, ids []string, notes string) BulkResult {
	return s.bulk(ids, func(id bson.ObjectID) error {
		_, err := s.Reject(ctx, actor, id, notes)
		return err
	})
}

// --- document sub-transitions ---

func (s *ApplicationService) AddDocument(ctx context.Context, actor models.Actor, req dto.AddDocumentRequest) (*models.Application, error) {
	if strings.TrimSpace(req.Type) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "document type is required")
	}
	if _, err := s.apps.FindByUser(ctx, actor.ID); err != nil {
		return nil, err
	}
	doc := models.Document{
		Type:       req.Type,
		FileName:   req.FileName,
		URL:        req.URL,
		Status:     models.DocPending,
		UploadedAt: time.Now().UTC(),
	}
	return s.apps.AddDocument(ctx, actor.ID, doc)
}

func (s *ApplicationService) ListDocuments(ctx context.Context, actor models.Actor, appID bson.ObjectID) ([]models.Document, error) {
	app, err := s.GetByID(ctx, actor, appID)
	if err != nil {
		return nil, err
	}
	return app.Documents, nil
}

// DeleteDocument is owner-only and pending-only: verified and rejected
// documents are immutable except by further reviewer action.
func (s *ApplicationService) DeleteDocument(ctx context.Context, actor models.Actor, docType string) error {
	app, err := s.apps.FindByUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	doc, ok := app.DocumentByType(docType)
	if !ok {
		return apperr.New(apperr.NotFound, "document not found")
	}
	if !doc.Status.Deletable() {
		return apperr.New(apperr.InvalidStateTransition, "only pending documents can be deleted")
	}
	removed, err := s.apps.PullPendingDocument(ctx, actor.ID, docType)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.New(apperr.ConcurrentModification, "document was modified concurrently")
	}
	return nil
}

func (s *ApplicationService) VerifyDocument(ctx context.Context, actor models.Actor, appID bson.ObjectID, docType string) error {
	if !actor.Can(rbac.PermReviewApplications) {
		return apperr.New(apperr.Forbidden, "review-applications permission required")
	}
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return err
	}
	doc, ok := app.DocumentByType(docType)
	if !ok {
		return apperr.New(apperr.NotFound, "document not found")
	}
	if !doc.Status.Reviewable() {
		return apperr.New(apperr.InvalidStateTransition, "document is already reviewed")
	}
	now := time.Now().UTC()
	flipped, err := s.apps.SetDocumentStatus(ctx, appID, docType, bson.M{
		"status":      models.DocVerified,
		"reviewed_at": now,
		"verifier_id": actor.ID,
	})
	if err != nil {
		return err
	}
	if !flipped {
		return apperr.New(apperr.ConcurrentModification, "document was modified concurrently")
	}
	s.notifyBestEffort(ctx, app.UserID, NotiDocumentVerified, NotiParams{DocType: docType}, "/applications/me")
	return nil
}

func (s *ApplicationService) RejectDocument(ctx context.Context, actor models.Actor, appID bson.ObjectID, docType, reason string) error {
	if !actor.Can(rbac.PermReviewApplications) {
		return apperr.New(apperr.Forbidden, "review-applications permission required")
	}
	if strings.TrimSpace(reason) == "" {
		return apperr.New(apperr.ValidationFailed, "rejection reason is required")
	}
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return err
	}
	doc, ok := app.DocumentByType(docType)
	if !ok {
		return apperr.New(apperr.NotFound, "document not found")
	}
	if !doc.Status.Reviewable() {
		return apperr.New(apperr.InvalidStateTransition, "document is already reviewed")
	}
	now := time.Now().UTC()
	flipped, err := s.apps.SetDocumentStatus(ctx, appID, docType, bson.M{
		"status":        models.DocRejected,
		"reviewed_at":   now,
		"verifier_id":   actor.ID,
		"reject_reason": reason,
	})
	if err != nil {
		return err
	}
	if !flipped {
		return apperr.New(apperr.ConcurrentModification, "document was modified concurrently")
	}
	s.notifyBestEffort(ctx, app.UserID, NotiDocumentRejected, NotiParams{DocType: docType, Reason: reason}, "/applications/me")
	return nil
}

// RequestDocumentInfo does not change document state; it only tells the owner
// what the reviewer is missing.
func (s *ApplicationService) RequestDocumentInfo(ctx context.Context, actor models.Actor, appID bson.ObjectID, docType, message string) error {
	if !actor.Can(rbac.PermReviewApplications) {
		return apperr.New(apperr.Forbidden, "review-applications permission required")
	}
	if strings.TrimSpace(message) == "" {
		return apperr.New(apperr.ValidationFailed, "message is required")
	}
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return err
	}
	if _, ok := app.DocumentByType(docType); !ok {
		return apperr.New(apperr.NotFound, "document not found")
	}
	s.notifyBestEffort(ctx, app.UserID, NotiDocumentInfoRequested, NotiParams{DocType: docType, Message: message}, "/applications/me")
	return nil
}
