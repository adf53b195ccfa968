package entity

import (
	"time"

	"github.com/google/uuid"
)

// DashboardRole represents the role of a member in a dashboard.
type DashboardRole string

const (
	DashboardRoleOwner  DashboardRole = "owner"
	DashboardRoleAdmin  DashboardRole = "admin"
	DashboardRoleEditor DashboardRole = "editor"
	DashboardRoleViewer DashboardRole = "viewer"
)

// Role sets used by permission checks.
var (
	// MutatingRoles may create and change transactions and schedules.
	MutatingRoles = []DashboardRole{DashboardRoleOwner, DashboardRoleAdmin, DashboardRoleEditor}

	// AdminRoles may trigger processing runs.
	AdminRoles = []DashboardRole{DashboardRoleOwner, DashboardRoleAdmin}
)

// IsValid reports whether r is a known role.
func (r DashboardRole) IsValid() bool {
	switch r {
	case DashboardRoleOwner, DashboardRoleAdmin, DashboardRoleEditor, DashboardRoleViewer:
		return true
	}
	return false
}

// Dashboard is a tenant that owns transactions and recurrence definitions.
type Dashboard struct {
	ID        uuid.UUID
	Name      string
	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDashboard creates a new Dashboard entity.
func NewDashboard(name string, createdBy uuid.UUID) *Dashboard {
	now := time.Now().UTC()

	return &Dashboard{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DashboardMember represents a user's membership in a dashboard.
type DashboardMember struct {
	ID          uuid.UUID
	DashboardID uuid.UUID
	UserID      uuid.UUID
	Role        DashboardRole
	JoinedAt    time.Time
}

// NewDashboardMember creates a new DashboardMember entity.
func NewDashboardMember(dashboardID, userID uuid.UUID, role DashboardRole) *DashboardMember {
	return &DashboardMember{
		ID:          uuid.New(),
		DashboardID: dashboardID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
	}
}

// HasAnyRole reports whether the member holds one of roles. An empty list allows any role.
func (m *DashboardMember) HasAnyRole(roles ...DashboardRole) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if m.Role == r {
			return true
		}
	}
	return false
}
