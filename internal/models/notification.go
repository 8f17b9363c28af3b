package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type NotiType string

type NotiPriority string

const (
	PriorityUrgent NotiPriority = "urgent"
	PriorityHigh   NotiPriority = "high"
	PriorityMedium NotiPriority = "medium"
	PriorityLow    NotiPriority = "low"
)

// Notification is immutable once written except for Read/ReadAt, which only
// the owning user flips.
type Notification struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    bson.ObjectID  `bson:"user_id" json:"user_id"`
	Type      NotiType       `bson:"type" json:"type"`
	Priority  NotiPriority   `bson:"priority" json:"priority"`
	Title     string         `bson:"title" json:"title"`
	Message   string         `bson:"message" json:"message"`
	Link      string         `bson:"link,omitempty" json:"link,omitempty"`
	Meta      map[string]any `bson:"meta,omitempty" json:"meta,omitempty"`
	Read      bool           `bson:"read" json:"read"`
	ReadAt    *time.Time     `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}
