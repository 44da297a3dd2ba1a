package diary

import (
	"strings"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// RoleMap maps a user id to the raw role string stored for it.
type RoleMap map[string]string

// NewRoleMap indexes role assignments by user id.
func NewRoleMap(rows []models.UserRole) RoleMap {
	roles := make(RoleMap, len(rows))
	for _, row := range rows {
		if row.UserID == "" {
			continue
		}
		roles[row.UserID] = row.Role
	}
	return roles
}

// Resolve returns the role of userID. Owner, manager and driver pass through;
// any other role present in the map is staff; a missing user is unknown.
func (m RoleMap) Resolve(userID *string) models.StaffRole {
	if userID == nil || *userID == "" {
		return models.RoleUnknown
	}
	raw, ok := m[*userID]
	if !ok {
		return models.RoleUnknown
	}
	switch role := models.StaffRole(strings.ToLower(strings.TrimSpace(raw))); role {
	case models.RoleOwner, models.RoleManager, models.RoleDriver:
		return role
	case "":
		return models.RoleUnknown
	default:
		return models.RoleStaff
	}
}

// StaffName is the display name of an entry's actor. Identity in the diary is
// role-level: the name is the capitalized role, never an individual.
func StaffName(role models.StaffRole) string {
	if role == "" {
		role = models.RoleUnknown
	}
	s := string(role)
	return strings.ToUpper(s[:1]) + s[1:]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
