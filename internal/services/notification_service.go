package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/internal/models"
	"nexus-backend/internal/realtime"
	"nexus-backend/internal/repository"
)

const (
	NotiApplicationSubmitted  models.NotiType = "application-submitted"
	NotiApplicationApproved   models.NotiType = "application-approved"
	NotiApplicationRejected   models.NotiType = "application-rejected"
	NotiDocumentVerified      models.NotiType = "document-verified"
	NotiDocumentRejected      models.NotiType = "document-rejected"
	NotiDocumentInfoRequested models.NotiType = "document-info-requested"
	NotiMemberWelcome         models.NotiType = "member-welcome"
	NotiMemberLevelChanged    models.NotiType = "member-level-changed"
	NotiMemberStatusChanged   models.NotiType = "member-status-changed"
	NotiRoleChanged           models.NotiType = "role-changed"
	NotiAnnouncement          models.NotiType = "announcement"
)

type NotiParams struct {
	Notes    string
	Reason   string
	DocType  string
	MemberID string
	Level    models.MemberLevel
	Status   models.MemberStatus
	Role     string
	Title    string
	Message  string
}

// BuildTitleMessage renders the user-facing text for a notification type.
func BuildTitleMessage(t models.NotiType, p NotiParams) (title, message string, err error) {
	switch t {
	case NotiApplicationSubmitted:
		return "Application received",
			"Your application has been submitted and is waiting for review.", nil

	case NotiApplicationApproved:
		msg := "Congratulations, your application has been approved!"
		if p.Notes != "" {
			msg = fmt.Sprintf("%s Reviewer notes: %s", msg, p.Notes)
		}
		return "Application approved 🎉", msg, nil

	case NotiApplicationRejected:
		if p.Notes == "" {
			return "", "", errors.New("missing Notes")
		}
		return "Application rejected",
			fmt.Sprintf("Your application has been rejected. Reason: %s", p.Notes), nil

	case NotiDocumentVerified:
		if p.DocType == "" {
			return "", "", errors.New("missing DocType")
		}
		return "Document verified",
			fmt.Sprintf("Your %s document has been verified.", p.DocType), nil

	case NotiDocumentRejected:
		if p.DocType == "" || p.Reason == "" {
			return "", "", errors.New("missing DocType/Reason")
		}
		return "Document rejected",
			fmt.Sprintf("Your %s document was rejected. Reason: %s", p.DocType, p.Reason), nil

	case NotiDocumentInfoRequested:
		if p.DocType == "" || p.Message == "" {
			return "", "", errors.New("missing DocType/Message")
		}
		return "More information needed",
			fmt.Sprintf("A reviewer needs more information on your %s document: %s", p.DocType, p.Message), nil

	case NotiMemberWelcome:
		if p.MemberID == "" {
			return "", "", errors.New("missing MemberID")
		}
		return "Welcome to the club 🎉",
			fmt.Sprintf("You are now a club member. Your member id is %s.", p.MemberID), nil

	case NotiMemberLevelChanged:
		if p.Level == "" {
			return "", "", errors.New("missing Level")
		}
		return "Membership level updated",
			fmt.Sprintf("Your membership level is now %s.", p.Level), nil

	case NotiMemberStatusChanged:
		if p.Status == "" {
			return "", "", errors.New("missing Status")
		}
		return "Membership status updated",
			fmt.Sprintf("Your membership status is now %s.", p.Status), nil

	case NotiRoleChanged:
		if p.Role == "" {
			return "", "", errors.New("missing Role")
		}
		return "Your roles changed",
			fmt.Sprintf("Role update: %s.", p.Role), nil

	case NotiAnnouncement:
		if p.Title == "" || p.Message == "" {
			return "", "", errors.New("missing Title/Message")
		}
		return p.Title, p.Message, nil
	}
	return "", "", fmt.Errorf("unknown noti type: %s", t)
}

// DefaultPriority picks the priority a type ships with unless overridden.
func DefaultPriority(t models.NotiType) models.NotiPriority {
	switch t {
	case NotiApplicationApproved, NotiApplicationRejected, NotiMemberWelcome:
		return models.PriorityHigh
	case NotiDocumentRejected, NotiDocumentInfoRequested, NotiMemberStatusChanged:
		return models.PriorityMedium
	case NotiAnnouncement:
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

// NotificationService persists every notification first, then hands it to a
// delivery queue consumed by one dispatcher goroutine. Push is best-effort:
// an offline user, a full queue, or a stale socket never fails the caller.
type NotificationService struct {
	repo  NotificationStore
	hub   *realtime.Hub
	queue chan models.Notification
	log   *slog.Logger
}

func NewNotificationService(repo NotificationStore, hub *realtime.Hub, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:  repo,
		hub:   hub,
		queue: make(chan models.Notification, 256),
		log:   log,
	}
}

// Start runs the delivery dispatcher until ctx is done.
func (s *NotificationService) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-s.queue:
				s.hub.Push(n.UserID.Hex(), n)
			}
		}
	}()
}

// Notify stores a notification and queues it for live delivery. The error
// covers persistence only; delivery problems are the dispatcher's to log.
func (s *NotificationService) Notify(ctx context.Context, userID bson.ObjectID, t models.NotiType, p NotiParams, link string, meta map[string]any) error {
	title, message, err := BuildTitleMessage(t, p)
	if err != nil {
		return fmt.Errorf("build notification: %w", err)
	}
	n := models.Notification{
		UserID:    userID,
		Type:      t,
		Priority:  DefaultPriority(t),
		Title:     title,
		Message:   message,
		Link:      link,
		Meta:      meta,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, &n); err != nil {
		return err
	}

	select {
	case s.queue <- n:
	default:
		// queue full: drop the push, the stored record keeps the truth
		s.log.Warn("notification queue full, skipping push", "user_id", userID.Hex(), "type", t)
	}
	return nil
}

// Announce pushes a transient system-wide message to every live session.
func (s *NotificationService) Announce(title, message string) {
	s.hub.Broadcast(models.Notification{
		Type:      NotiAnnouncement,
		Priority:  DefaultPriority(NotiAnnouncement),
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *NotificationService) ListMine(ctx context.Context, userID bson.ObjectID, f repository.NotificationFilter) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, f)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead flips one notification read. Idempotent: marking an already-read
// notification returns it untouched, read_at keeps its original stamp.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id bson.ObjectID) (*models.Notification, error) {
	n, err := s.repo.MarkReadIfUnread(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n != nil {
		return n, nil
	}
	// nothing unread matched: already read, or not this user's
	return s.repo.FindOwned(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id bson.ObjectID) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *NotificationService) DeleteRead(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return s.repo.DeleteRead(ctx, userID)
}
