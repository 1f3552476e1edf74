package members

import (
	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
)

// visibleRoles projects a role list down to what the caller may see. Deleted
// roles are never shown. Council and the owning club see pending roles;
// everyone else sees approved roles only.
func visibleRoles(roles models.RoleList, caller auth.Caller, cid string) models.RoleList {
	trusted := caller.IsCC() || caller.Owns(cid)
	out := make(models.RoleList, 0, len(roles))
	for _, role := range roles {
		if role.Deleted {
			continue
		}
		if !trusted && !role.Approved {
			continue
		}
		out = append(out, role)
	}
	return out
}

// currentRoles keeps approved, ongoing stints.
func currentRoles(roles models.RoleList) models.RoleList {
	out := make(models.RoleList, 0, len(roles))
	for _, role := range roles {
		if role.Deleted || !role.Approved || role.EndYear != nil {
			continue
		}
		out = append(out, role)
	}
	return out
}

// pendingRoles keeps strictly undecided stints.
func pendingRoles(roles models.RoleList) models.RoleList {
	out := make(models.RoleList, 0, len(roles))
	for _, role := range roles {
		if role.Deleted || role.Approved || role.Rejected {
			continue
		}
		out = append(out, role)
	}
	return out
}
