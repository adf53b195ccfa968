package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

// permissionGate implements adapter.PermissionGate on top of dashboard memberships.
type permissionGate struct {
	dashboards adapter.DashboardRepository
}

// NewPermissionGate creates a permission gate backed by the dashboard repository.
func NewPermissionGate(dashboards adapter.DashboardRepository) adapter.PermissionGate {
	return &permissionGate{dashboards: dashboards}
}

// CheckPermission checks that userID is a member of dashboardID with one of allowedRoles.
func (g *permissionGate) CheckPermission(ctx context.Context, userID, dashboardID uuid.UUID, allowedRoles ...entity.DashboardRole) error {
	member, err := g.dashboards.FindMember(ctx, dashboardID, userID)
	if err != nil {
		return fmt.Errorf("failed to load dashboard membership: %w", err)
	}
	if member == nil {
		return domainerror.NewDashboardError(
			domainerror.ErrCodeNotDashboardMember,
			"user is not a member of this dashboard",
			domainerror.ErrNotDashboardMember,
		)
	}
	if !member.HasAnyRole(allowedRoles...) {
		return domainerror.NewDashboardError(
			domainerror.ErrCodeInsufficientRole,
			fmt.Sprintf("role %s may not perform this operation", member.Role),
			domainerror.ErrInsufficientRole,
		)
	}
	return nil
}
