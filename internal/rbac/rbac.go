package rbac

import "fmt"

// Role is the closed set of roles a user can hold.
// Canonical form is lowercase kebab-case; anything else is rejected by ParseRole.
type Role string

const (
	RoleApplicant   Role = "applicant"
	RoleClubMember  Role = "club-member"
	RoleTeamLeader  Role = "team-leader"
	RoleMentor      Role = "mentor"
	RoleJudge       Role = "judge"
	RoleCoordinator Role = "coordinator"
	RoleManager     Role = "manager"
	RoleAdmin       Role = "admin"
	RoleDirector    Role = "director"
)

// BaseRole is what a user falls back to when their last role is removed.
const BaseRole = RoleApplicant

type Permission string

const (
	PermSubmitApplication   Permission = "submit-application"
	PermReviewApplications  Permission = "review-applications"
	PermApproveApplications Permission = "approve-applications"
	PermManageUsers         Permission = "manage-users"
	PermManageRoles         Permission = "manage-roles"
	PermManageMembers       Permission = "manage-members"
	PermManageEvents        Permission = "manage-events"
	PermManageTeams         Permission = "manage-teams"
	PermMentorTeams         Permission = "mentor-teams"
	PermJoinEvents          Permission = "join-events"
	PermAccessJudgingPanel  Permission = "access-judging-panel"
	PermSendAnnouncements   Permission = "send-announcements"
)

// Permission sets are explicit per role, not derived from rank: lateral roles
// at the same rank (mentor vs judge) have disjoint capabilities.
var rolePermissions = map[Role][]Permission{
	RoleApplicant:  {PermSubmitApplication},
	RoleClubMember: {PermJoinEvents},
	RoleTeamLeader: {PermJoinEvents, PermManageTeams},
	RoleMentor:     {PermJoinEvents, PermMentorTeams},
	RoleJudge:      {PermAccessJudgingPanel},
	RoleCoordinator: {
		PermJoinEvents, PermReviewApplications, PermManageEvents,
	},
	RoleManager: {
		PermJoinEvents, PermReviewApplications, PermApproveApplications,
		PermManageEvents, PermManageMembers,
	},
	RoleAdmin: {
		PermReviewApplications, PermApproveApplications, PermManageUsers,
		PermManageRoles, PermManageMembers, PermManageEvents,
		PermAccessJudgingPanel, PermSendAnnouncements,
	},
	RoleDirector: {
		PermReviewApplications, PermApproveApplications, PermManageUsers,
		PermManageRoles, PermManageMembers, PermManageEvents,
		PermAccessJudgingPanel, PermSendAnnouncements,
	},
}

// roleRank orders roles by seniority for "at least as senior as" checks.
// Rank does NOT imply permission inheritance.
var roleRank = map[Role]int{
	RoleApplicant:   0,
	RoleClubMember:  1,
	RoleTeamLeader:  2,
	RoleMentor:      3,
	RoleJudge:       3,
	RoleCoordinator: 4,
	RoleManager:     5,
	RoleAdmin:       6,
	RoleDirector:    7,
}

// PermissionsOf returns the permission set of a role. The returned slice is a
// copy; callers may mutate it freely.
func PermissionsOf(r Role) []Permission {
	ps := rolePermissions[r]
	out := make([]Permission, len(ps))
	copy(out, ps)
	return out
}

// RankOf returns the seniority rank of a role.
func RankOf(r Role) int {
	return roleRank[r]
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// ManuallyAssignable reports whether an admin may hand out this role directly.
// applicant and club-member are only reachable through submit/promote.
func (r Role) ManuallyAssignable() bool {
	return r.Valid() && r != RoleApplicant && r != RoleClubMember
}

// ParseRole accepts only the canonical kebab-case spelling. Legacy casings
// like "ClubMember" or "club_member" are rejected on purpose.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// HasPermission reports whether any role in the set grants the permission.
func HasPermission(roles []Role, p Permission) bool {
	for _, r := range roles {
		for _, rp := range rolePermissions[r] {
			if rp == p {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether the role set grants at least one of perms.
func HasAnyPermission(roles []Role, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(roles, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role set grants every one of perms.
func HasAllPermissions(roles []Role, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(roles, p) {
			return false
		}
	}
	return true
}

// MeetsRank reports whether any held role is at least as senior as required.
func MeetsRank(roles []Role, required Role) bool {
	need := roleRank[required]
	for _, r := range roles {
		if roleRank[r] >= need {
			return true
		}
	}
	return false
}

// HasRole reports plain membership in the role set.
func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
