package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/internal/rbac"
)

type MemberLevel string

const (
	LevelBronze   MemberLevel = "bronze"
	LevelSilver   MemberLevel = "silver"
	LevelGold     MemberLevel = "gold"
	LevelPlatinum MemberLevel = "platinum"
)

func (l MemberLevel) Valid() bool {
	switch l {
	case LevelBronze, LevelSilver, LevelGold, LevelPlatinum:
		return true
	}
	return false
}

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberActive, MemberInactive, MemberSuspended:
		return true
	}
	return false
}

// MembershipInfo exists only on users holding the club-member role. Created
// exactly once at promotion, never deleted; only Level/Status/Points mutate
// afterwards. Suspension flips Status, it never removes the role.
type MembershipInfo struct {
	MemberID   string        `bson:"member_id" json:"member_id"`
	Level      MemberLevel   `bson:"level" json:"level"`
	Status     MemberStatus  `bson:"status" json:"status"`
	Points     int           `bson:"points" json:"points"`
	PromotedBy bson.ObjectID `bson:"promoted_by" json:"promoted_by"`
	PromotedAt time.Time     `bson:"promoted_at" json:"promoted_at"`
}

// MemberStats counters are zeroed at promotion and incremented by the
// event/project/course services, not by this core.
type MemberStats struct {
	EventsAttended     int `bson:"events_attended" json:"events_attended"`
	ProjectsCompleted  int `bson:"projects_completed" json:"projects_completed"`
	CoursesCompleted   int `bson:"courses_completed" json:"courses_completed"`
	AchievementsEarned int `bson:"achievements_earned" json:"achievements_earned"`
	TotalPoints        int `bson:"total_points" json:"total_points"`
	Rank               int `bson:"rank,omitempty" json:"rank,omitempty"`
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	FirstName    string        `bson:"firstname" json:"firstname"`
	LastName     string        `bson:"lastname" json:"lastname"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash,omitempty" json:"-"`
	Roles        []rbac.Role   `bson:"roles" json:"roles"`

	// Copied from the application at approval time.
	Program   string   `bson:"program,omitempty" json:"program,omitempty"`
	Portfolio string   `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
	Skills    []string `bson:"skills,omitempty" json:"skills,omitempty"`

	Membership *MembershipInfo `bson:"membership,omitempty" json:"membership,omitempty"`
	Stats      *MemberStats    `bson:"member_stats,omitempty" json:"member_stats,omitempty"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Actor is the authenticated caller as seen by services: identity plus the
// role set the authorization guard evaluates. Built by middleware per request.
type Actor struct {
	ID    bson.ObjectID
	Roles []rbac.Role
}

func (a Actor) Can(p rbac.Permission) bool {
	return rbac.HasPermission(a.Roles, p)
}
