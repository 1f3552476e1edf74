package members

import (
	"fmt"
	"strconv"
	"time"

	"github.com/clubscouncil/portal-backend/pkg/db/models"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
)

// clampRoles rewrites future-dated start years down to the current year. A
// clamped role also loses its end year, since the stint cannot have ended
// before it started.
func clampRoles(roles []RoleInput, currentYear int) []RoleInput {
	out := make([]RoleInput, len(roles))
	for i, role := range roles {
		if role.StartYear > currentYear {
			role.StartYear = currentYear
			role.EndYear = nil
		} else {
			role.EndYear = copyIntPointer(role.EndYear)
		}
		out[i] = role
	}
	return out
}

// validateRoles rejects empty submissions and start/end year inversions.
// Callers must clamp first so a future-dated start year does not trip the
// inversion check.
func validateRoles(roles []RoleInput) error {
	if len(roles) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one role is required")
	}
	for _, role := range roles {
		if role.Name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "role name is required")
		}
		if role.EndYear != nil && role.StartYear > *role.EndYear {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("role %q ends in %d before it starts in %d", role.Name, *role.EndYear, role.StartYear))
		}
	}
	return nil
}

// roleKey is the identity under which an incoming role is matched against
// stored history.
type roleKey struct {
	name      string
	startYear int
	endYear   int
	ongoing   bool
}

func keyOf(name string, startYear int, endYear *int) roleKey {
	k := roleKey{name: name, startYear: startYear}
	if endYear == nil {
		k.ongoing = true
	} else {
		k.endYear = *endYear
	}
	return k
}

// reconcile merges a caller-submitted replacement role list against stored
// history. A submitted role that exactly matches an existing one (by name and
// year span) inherits that role's approval, rejection, and deletion state;
// each stored role can satisfy at most one match. Everything else is treated
// as a fresh submission: approved outright when autoApprove holds, pending
// otherwise. Stored roles that match nothing are dropped (full-replace
// semantics). Role ids are left empty; assignRIDs runs before persisting.
// The second return value lists the indices of fresh (unmatched) roles.
func reconcile(incoming []RoleInput, existing models.RoleList, autoApprove bool, now time.Time) (models.RoleList, []int) {
	consumed := make([]bool, len(existing))
	out := make(models.RoleList, 0, len(incoming))
	fresh := make([]int, 0, len(incoming))

	for _, input := range incoming {
		key := keyOf(input.Name, input.StartYear, input.EndYear)
		record := models.RoleRecord{
			Name:      input.Name,
			StartYear: input.StartYear,
			EndYear:   copyIntPointer(input.EndYear),
		}

		matched := false
		for i, prior := range existing {
			if consumed[i] {
				continue
			}
			if keyOf(prior.Name, prior.StartYear, prior.EndYear) != key {
				continue
			}
			consumed[i] = true
			matched = true
			record.Approved = prior.Approved
			record.ApprovalTime = copyTimePointer(prior.ApprovalTime)
			record.Rejected = prior.Rejected
			record.RejectionTime = copyTimePointer(prior.RejectionTime)
			record.Deleted = prior.Deleted
			break
		}

		if !matched {
			record.Approved = autoApprove
			if autoApprove {
				approvedAt := now
				record.ApprovalTime = &approvedAt
			}
			fresh = append(fresh, len(out))
		}
		out = append(out, record)
	}
	return out, fresh
}

// assignRIDs regenerates every role id on the record from the write timestamp
// plus the role's position, which keeps ids unique within one record without
// a separate counter.
func assignRIDs(roles models.RoleList, now time.Time) {
	base := now.UnixMilli()
	for i := range roles {
		roles[i].RID = strconv.FormatInt(base+int64(i), 10)
	}
}
