package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/domain/entity"
)

// DashboardRepository defines the interface for dashboard membership persistence operations.
type DashboardRepository interface {
	// CreateDashboard creates a new dashboard.
	CreateDashboard(ctx context.Context, dashboard *entity.Dashboard) error

	// FindDashboardByID retrieves a dashboard by its ID.
	FindDashboardByID(ctx context.Context, id uuid.UUID) (*entity.Dashboard, error)

	// AddMember creates a membership, replacing the role if the user is already a member.
	AddMember(ctx context.Context, member *entity.DashboardMember) error

	// FindMember retrieves a user's membership in a dashboard.
	// Returns nil, nil when the user is not a member.
	FindMember(ctx context.Context, dashboardID, userID uuid.UUID) (*entity.DashboardMember, error)
}

// PermissionGate decides whether a user may act on a dashboard.
type PermissionGate interface {
	// CheckPermission returns nil when userID holds one of allowedRoles in dashboardID.
	// An empty allowedRoles accepts any membership. Rejections carry a forbidden error code.
	CheckPermission(ctx context.Context, userID, dashboardID uuid.UUID, allowedRoles ...entity.DashboardRole) error
}
