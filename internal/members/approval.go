package members

import (
	"context"
	"time"

	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/cache"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
)

// DefaultCategoryTTL bounds how long a club's category may be served from
// cache before the lookup service is asked again.
const DefaultCategoryTTL = 240 * time.Hour

// CategoryLookup resolves a club's category. Implemented by the clubs service
// in-process today, but kept as an interface because the lookup historically
// crossed a service boundary.
type CategoryLookup interface {
	Category(ctx context.Context, cid string) (enums.ClubCategory, error)
}

// ApprovalPolicy decides whether a freshly submitted role skips the pending
// state. Council callers always auto-approve; otherwise the club's category
// decides. Category lookups go through a TTL cache, and the cache's lock is
// never held across the lookup call.
type ApprovalPolicy struct {
	lookup     CategoryLookup
	categories *cache.TTL
}

// NewApprovalPolicy builds the policy with the given category cache TTL.
func NewApprovalPolicy(lookup CategoryLookup, ttl time.Duration) *ApprovalPolicy {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	return &ApprovalPolicy{
		lookup:     lookup,
		categories: cache.NewTTL(ttl),
	}
}

// AutoApprove reports whether a new role for cid submitted by caller should
// be stored already approved. A failed category lookup is propagated as an
// upstream error because it gates the approval decision.
func (p *ApprovalPolicy) AutoApprove(ctx context.Context, caller auth.Caller, cid string) (bool, error) {
	if caller.IsCC() {
		return true, nil
	}

	if cached, ok := p.categories.Get(cid); ok {
		return cached.(enums.ClubCategory).AutoApproves(), nil
	}

	category, err := p.lookup.Category(ctx, cid)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "club category lookup")
	}
	p.categories.Set(cid, category)
	return category.AutoApproves(), nil
}
