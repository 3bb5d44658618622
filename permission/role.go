package permission

import "strings"

// Role is a named bundle of permissions. The set of roles is closed;
// any role string arriving from outside (token claims, route metadata)
// must pass ParseRole before it reaches the permission table.
type Role string

const (
	// RoleAdmin is the platform operator role.
	RoleAdmin Role = "ADMIN"
	// RoleOrganizer creates and manages events and the tickets sold
	// against them.
	RoleOrganizer Role = "ORGANIZER"
	// RoleParticipant purchases tickets and manages its own profile.
	RoleParticipant Role = "PARTICIPANT"
)

// ParseRole resolves an untrusted role string against the closed role
// set, case-insensitively. It returns false for anything outside the
// enum; callers must treat that as an authentication failure, never as
// an empty permission set.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleOrganizer:
		return RoleOrganizer, true
	case RoleParticipant:
		return RoleParticipant, true
	default:
		return "", false
	}
}

// Equal compares a role against an untrusted role string,
// case-insensitively.
func (r Role) Equal(s string) bool {
	return strings.EqualFold(string(r), s)
}

// rolePermissions is the authorization table. Admin enumerates every
// permission explicitly rather than inheriting the other entries; keep
// it in sync with permission.All when capabilities change.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		EventCreate,
		EventRead,
		EventUpdate,
		EventDelete,
		EventPublish,
		TicketPurchase,
		TicketRead,
		TicketManage,
		TicketRefund,
		ProfileRead,
		ProfileUpdate,
		PaymentRead,
		PaymentRefund,
		UserManage,
		PlatformSettings,
	},
	RoleOrganizer: {
		EventCreate,
		EventRead,
		EventUpdate,
		EventDelete,
		EventPublish,
		TicketRead,
		TicketManage,
		ProfileRead,
		ProfileUpdate,
	},
	RoleParticipant: {
		EventRead,
		TicketPurchase,
		TicketRead,
		ProfileRead,
		ProfileUpdate,
	},
}

// PermissionsFor returns a copy of the permission set granted to role.
// Unknown roles yield an empty set.
func PermissionsFor(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}

	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role holds the given permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAll reports whether role holds every listed permission. An empty
// list is trivially satisfied.
func HasAll(role Role, perms []Permission) bool {
	for _, perm := range perms {
		if !HasPermission(role, perm) {
			return false
		}
	}
	return true
}

// HasAny reports whether role holds at least one listed permission.
// An empty list is never satisfied.
func HasAny(role Role, perms []Permission) bool {
	for _, perm := range perms {
		if HasPermission(role, perm) {
			return true
		}
	}
	return false
}
