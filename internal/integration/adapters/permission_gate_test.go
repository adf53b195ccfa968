package adapters

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/ledger/config"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/infra/db"
	"github.com/finance-tracker/ledger/internal/integration/persistence"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

func TestPermissionGate_CheckPermission(t *testing.T) {
	ctx := context.Background()

	database, err := db.NewConnection(&config.DatabaseConfig{
		Driver:       db.DriverSQLite,
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.AutoMigrate(model.All()...))

	dashboards := persistence.NewDashboardRepository(database.DB())
	gate := NewPermissionGate(dashboards)

	dashboardID := uuid.New()
	editor := uuid.New()
	viewer := uuid.New()
	require.NoError(t, dashboards.AddMember(ctx, entity.NewDashboardMember(dashboardID, editor, entity.DashboardRoleEditor)))
	require.NoError(t, dashboards.AddMember(ctx, entity.NewDashboardMember(dashboardID, viewer, entity.DashboardRoleViewer)))

	tests := []struct {
		name     string
		userID   uuid.UUID
		roles    []entity.DashboardRole
		wantCode string
	}{
		{name: "editor may mutate", userID: editor, roles: entity.MutatingRoles},
		{name: "viewer may read", userID: viewer},
		{name: "viewer may not mutate", userID: viewer, roles: entity.MutatingRoles, wantCode: string(domainerror.ErrCodeInsufficientRole)},
		{name: "stranger is rejected", userID: uuid.New(), wantCode: string(domainerror.ErrCodeNotDashboardMember)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.CheckPermission(ctx, tt.userID, dashboardID, tt.roles...)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domainerror.CodeOf(err))
			assert.Equal(t, domainerror.KindForbidden, domainerror.KindOf(err))
		})
	}

	t.Run("role upgrade replaces membership", func(t *testing.T) {
		require.NoError(t, dashboards.AddMember(ctx, entity.NewDashboardMember(dashboardID, viewer, entity.DashboardRoleAdmin)))
		assert.NoError(t, gate.CheckPermission(ctx, viewer, dashboardID, entity.AdminRoles...))
	})
}
