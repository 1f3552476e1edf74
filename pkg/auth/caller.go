package auth

import "github.com/clubscouncil/portal-backend/pkg/enums"

// Caller is the authenticated identity behind a request. The zero value is an
// anonymous public caller. Club accounts carry their club id as the uid.
type Caller struct {
	UID  string
	Role enums.CallerRole
}

// Anonymous reports whether the request carried no identity.
func (c Caller) Anonymous() bool {
	return c.UID == ""
}

// IsCC reports whether the caller is council-level.
func (c Caller) IsCC() bool {
	return c.Role == enums.CallerRoleCouncil
}

// IsClub reports whether the caller is a club account.
func (c Caller) IsClub() bool {
	return c.Role == enums.CallerRoleClub
}

// Owns reports whether the caller is the club account for cid.
func (c Caller) Owns(cid string) bool {
	return c.IsClub() && c.UID == cid
}

// CanManage reports whether the caller may mutate records owned by cid.
func (c Caller) CanManage(cid string) bool {
	return c.IsCC() || c.Owns(cid)
}
