package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/internal/core/id"
)

func TestCan(t *testing.T) {
	storeA := id.New()
	storeB := id.New()

	warehouse := Actor{UserID: "u1", Role: RoleWarehouse}
	manager := Actor{UserID: "u2", Role: RoleManager}
	adminA := Actor{UserID: "u3", Role: RoleAdmin, StoreID: storeA}
	cashierA := Actor{UserID: "u4", Role: RoleCashier, StoreID: storeA}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		store  id.ID
		want   bool
	}{
		{"warehouse distributes", warehouse, ActionDistribute, storeA, true},
		{"manager distributes", manager, ActionDistribute, storeB, true},
		{"admin cannot distribute", adminA, ActionDistribute, storeA, false},
		{"admin accepts own store", adminA, ActionAcceptDistribution, storeA, true},
		{"admin cannot accept other store", adminA, ActionAcceptDistribution, storeB, false},
		{"warehouse cannot accept", warehouse, ActionAcceptDistribution, storeA, false},
		{"admin needs a store for scoped action", adminA, ActionViewDistributions, id.ID{}, false},
		{"manager lists everything", manager, ActionViewDistributions, id.ID{}, true},
		{"cashier has nothing", cashierA, ActionViewMasterCatalog, id.ID{}, false},
		{"admin manages own purchases", adminA, ActionManagePurchases, storeA, true},
		{"warehouse cannot touch purchases", warehouse, ActionManagePurchases, storeA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.actor, tt.action, tt.store))
		})
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	err := Require(Actor{Role: RoleCashier}, ActionDistribute, id.New())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestActorFromContext(t *testing.T) {
	storeID := id.New()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   "42",
		Username: "rina",
		Role:     "admin",
		StoreID:  storeID.String(),
	})

	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, actor.Role)
	assert.Equal(t, storeID, actor.StoreID)

	_, err = ActorFromContext(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	bad := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "1", Role: "root"})
	_, err = ActorFromContext(bad)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}
