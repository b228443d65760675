// Package security provides the closed role set and the capability policy.
package security

import (
	"context"
	"fmt"
	"strings"

	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/internal/core/id"
)

// Role is one of the roles issued by the session provider.
type Role string

const (
	RoleWarehouse Role = "WAREHOUSE"
	RoleManager   Role = "MANAGER"
	RoleAdmin     Role = "ADMIN"
	RoleCashier   Role = "CASHIER"
)

// ParseRole maps a token role string onto the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleWarehouse, RoleManager, RoleAdmin, RoleCashier:
		return r, true
	}
	return "", false
}

// Action is a capability checked by the core.
type Action string

const (
	ActionViewMasterCatalog   Action = "master_catalog:view"
	ActionManageMasterCatalog Action = "master_catalog:manage"
	ActionDistribute          Action = "distribution:create"
	ActionViewDistributions   Action = "distribution:view"
	ActionAcceptDistribution  Action = "distribution:accept"
	ActionManagePurchases     Action = "purchase:manage"
)

// Actor is the caller of a core operation.
type Actor struct {
	UserID   string
	Username string
	Role     Role
	// StoreID is the tenant the actor belongs to; nil for warehouse staff.
	StoreID id.ID
}

// grant describes which roles hold an action and whether it is limited to their own store.
type grant struct {
	roles    map[Role]bool
	ownStore map[Role]bool
}

var grants = map[Action]grant{
	ActionViewMasterCatalog: {
		roles: map[Role]bool{RoleWarehouse: true, RoleManager: true, RoleAdmin: true},
	},
	ActionManageMasterCatalog: {
		roles: map[Role]bool{RoleWarehouse: true, RoleManager: true},
	},
	ActionDistribute: {
		roles: map[Role]bool{RoleWarehouse: true, RoleManager: true},
	},
	ActionViewDistributions: {
		roles:    map[Role]bool{RoleWarehouse: true, RoleManager: true, RoleAdmin: true},
		ownStore: map[Role]bool{RoleAdmin: true},
	},
	ActionAcceptDistribution: {
		roles:    map[Role]bool{RoleAdmin: true},
		ownStore: map[Role]bool{RoleAdmin: true},
	},
	ActionManagePurchases: {
		roles:    map[Role]bool{RoleManager: true, RoleAdmin: true},
		ownStore: map[Role]bool{RoleAdmin: true},
	},
}

// Can reports whether actor may perform action against store.
// A nil store means the action is not tied to one tenant (e.g. listing across stores);
// store-scoped roles never pass with a nil store.
func Can(actor Actor, action Action, store id.ID) bool {
	g, ok := grants[action]
	if !ok || !g.roles[actor.Role] {
		return false
	}
	if g.ownStore[actor.Role] {
		return !id.IsNil(store) && actor.StoreID == store
	}
	return true
}

// IsStoreScoped reports whether the actor only sees its own store for action.
func IsStoreScoped(actor Actor, action Action) bool {
	return grants[action].ownStore[actor.Role]
}

// Require returns a Forbidden error when Can is false.
func Require(actor Actor, action Action, store id.ID) error {
	if Can(actor, action, store) {
		return nil
	}
	err := apperror.NewForbidden(fmt.Sprintf("role %s may not perform %s", actor.Role, action)).
		WithDetail("action", string(action))
	if !id.IsNil(store) {
		err = err.WithDetail("store_id", store.String())
	}
	return err
}

// ActorFromContext builds an Actor from the authenticated user in ctx.
func ActorFromContext(ctx context.Context) (Actor, error) {
	user := appctx.GetUser(ctx)
	if user == nil || user.UserID == "" {
		return Actor{}, apperror.NewUnauthorized("authentication required")
	}
	role, ok := ParseRole(user.Role)
	if !ok {
		return Actor{}, apperror.NewForbidden("unknown role").WithDetail("role", user.Role)
	}
	actor := Actor{UserID: user.UserID, Username: user.Username, Role: role}
	if user.StoreID != "" {
		storeID, err := id.Parse(user.StoreID)
		if err != nil {
			return Actor{}, apperror.NewUnauthorized("invalid store in session")
		}
		actor.StoreID = storeID
	}
	return actor, nil
}
