package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type AppStatus string

const (
	AppPending     AppStatus = "pending"
	AppUnderReview AppStatus = "under-review"
	AppApproved    AppStatus = "approved"
	AppRejected    AppStatus = "rejected"
)

type DocStatus string

const (
	DocPending  DocStatus = "pending"
	DocVerified DocStatus = "verified"
	DocRejected DocStatus = "rejected"
)

// Document is an eligibility artifact embedded in an application.
// Type is unique within the parent application.
type Document struct {
	Type         string        `bson:"type" json:"type"`
	FileName     string        `bson:"file_name,omitempty" json:"file_name,omitempty"`
	URL          string        `bson:"url,omitempty" json:"url,omitempty"`
	Status       DocStatus     `bson:"status" json:"status"`
	UploadedAt   time.Time     `bson:"uploaded_at" json:"uploaded_at"`
	ReviewedAt   *time.Time    `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	VerifierID   bson.ObjectID `bson:"verifier_id,omitempty" json:"verifier_id,omitempty"`
	RejectReason string        `bson:"reject_reason,omitempty" json:"reject_reason,omitempty"`
}

// Application tracks one user's request to join the club. One per user,
// enforced by a unique index on user_id.
type Application struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      bson.ObjectID `bson:"user_id" json:"user_id"`
	Status      AppStatus     `bson:"status" json:"status"`
	Program     string        `bson:"program" json:"program"`
	Motivation  string        `bson:"motivation" json:"motivation"`
	Experience  string        `bson:"experience,omitempty" json:"experience,omitempty"`
	Portfolio   string        `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
	Skills      []string      `bson:"skills,omitempty" json:"skills,omitempty"`
	Documents   []Document    `bson:"documents" json:"documents"`
	SubmittedAt time.Time     `bson:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time     `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	ReviewerID  bson.ObjectID `bson:"reviewer_id,omitempty" json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time    `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewNotes string        `bson:"review_notes,omitempty" json:"review_notes,omitempty"`
}

// Transition rules. Kept as pure predicates on the status so the state
// machine can be checked without a database.

// CanStartReview: review only begins on a pending application.
func (s AppStatus) CanStartReview() bool { return s == AppPending }

// CanApprove: approving straight from pending (skipping under-review) is
// allowed; approving twice is not.
func (s AppStatus) CanApprove() bool { return s == AppPending || s == AppUnderReview }

// CanReject: any non-rejected application can still be rejected.
func (s AppStatus) CanReject() bool {
	return s == AppPending || s == AppUnderReview || s == AppApproved
}

// CanUpdate: owners may edit only while nothing has been reviewed yet.
func (s AppStatus) CanUpdate() bool { return s == AppPending }

// Deletable: owners may remove a document only while it is still pending;
// verified and rejected are terminal.
func (s DocStatus) Deletable() bool { return s == DocPending }

// Reviewable: verify/reject apply to pending documents only.
func (s DocStatus) Reviewable() bool { return s == DocPending }

// DocumentByType returns the embedded document with the given type tag.
func (a *Application) DocumentByType(t string) (Document, bool) {
	for _, d := range a.Documents {
		if d.Type == t {
			return d, true
		}
	}
	return Document{}, false
}
