// Package policy holds the tenant-scoped access decision for every entity
// operation. All role and tenancy checks go through Authorize so the rules
// live in one place and can be tested without HTTP routing.
package policy

import (
	"github.com/google/uuid"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
)

// Action is the operation being attempted on a target entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entity identifies the kind of record the action applies to.
type Entity string

const (
	EntityMunicipality Entity = "municipality"
	EntityUser         Entity = "user"
	EntityQuotation    Entity = "quotation"
	EntityAccessLog    Entity = "access_log"
	EntityNotification Entity = "notification"
)

// Target describes the record the action applies to. MunicipalityID is the
// record's owning tenant (nil for tenantless records such as root users).
// OwnerID is the creating user where ownership grants extra rights
// (quotation deletion by its creator).
type Target struct {
	Entity         Entity
	MunicipalityID *uuid.UUID
	OwnerID        uuid.UUID
}

// Authorize decides whether principal p may perform action on target t.
// Returns nil to allow, ErrForbidden to deny. Rules in precedence order:
//
//  1. root may do anything.
//  2. cross-tenant access is always denied, regardless of role.
//  3. municipalities are managed by root only.
//  4. user accounts are created by admin/gestor within their tenant.
//  5. quotation creation requires a tenant; deletion is also granted to the
//     quotation's creator.
func Authorize(p *models.Principal, action Action, t Target) error {
	if p == nil {
		return apperrors.ErrForbidden
	}
	if p.IsRoot() {
		return nil
	}

	// Municipalities are root-owned entities; tenant users cannot manage
	// them no matter their role.
	if t.Entity == EntityMunicipality {
		return apperrors.ErrForbidden
	}

	// Creation targets carry the tenant the new record will belong to;
	// everything else carries the tenant of the existing record. Either
	// way, a non-root principal must stay inside its own tenant.
	if !p.SameTenant(t.MunicipalityID) {
		// The creator of a quotation keeps delete rights even though
		// SameTenant already covers the normal case; this clause only
		// matters for principals whose tenancy was since changed.
		if t.Entity == EntityQuotation && action == ActionDelete && t.OwnerID == p.ID {
			return nil
		}
		return apperrors.ErrForbidden
	}

	switch t.Entity {
	case EntityUser:
		if action == ActionCreate && p.Role != models.RoleAdmin && p.Role != models.RoleGestor {
			return apperrors.ErrForbidden
		}
	case EntityQuotation:
		if action == ActionCreate && p.MunicipalityID == nil {
			return apperrors.ErrForbidden
		}
	}

	return nil
}
