// Package clubsync re-keys one club's identifier across every store that
// embeds it. The member re-key is the primary write; everything after it is
// best-effort propagation that never rolls the primary back.
package clubsync

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/clubscouncil/portal-backend/internal/users"
	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
	"github.com/clubscouncil/portal-backend/pkg/logger"
	"github.com/clubscouncil/portal-backend/pkg/pubsub"
	"github.com/clubscouncil/portal-backend/pkg/security"
)

type memberStore interface {
	RenameCID(ctx context.Context, oldCID, newCID string) (int64, error)
}

type clubStore interface {
	RenameCID(ctx context.Context, oldCID, newCID string) (bool, error)
}

type cacheInvalidator interface {
	InvalidateCaches()
}

type roleSetter interface {
	SetRole(ctx context.Context, caller auth.Caller, uid string, role enums.CallerRole) (*users.UserDTO, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType enums.EventType, payload any) error
}

// RenameResult reports what one rename touched. Warnings carry propagation
// failures; the member re-key itself succeeded whenever a result is returned.
type RenameResult struct {
	OldCID         string   `json:"old_cid"`
	NewCID         string   `json:"new_cid"`
	MembersRenamed int64    `json:"members_renamed"`
	ClubRenamed    bool     `json:"club_renamed"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Service exposes the cross-service cid rename.
type Service interface {
	RenameClubID(ctx context.Context, caller auth.Caller, secret, oldCID, newCID string) (*RenameResult, error)
}

type service struct {
	secretHash string
	members    memberStore
	clubs      clubStore
	caches     cacheInvalidator
	roles      roleSetter
	events     eventEmitter
	logg       *logger.Logger
}

// NewService builds the rename cascade. Club store, cache invalidator, role
// setter and emitter are optional; missing ones simply skip their step.
func NewService(secretHash string, members memberStore, clubs clubStore, caches cacheInvalidator, roles roleSetter, events eventEmitter, logg *logger.Logger) (Service, error) {
	if members == nil {
		return nil, fmt.Errorf("member store required")
	}
	return &service{
		secretHash: secretHash,
		members:    members,
		clubs:      clubs,
		caches:     caches,
		roles:      roles,
		events:     events,
		logg:       logg,
	}, nil
}

// RenameClubID re-keys every membership from oldCID to newCID and then
// propagates the rename to the club row, the lookup caches, the user role
// rows and the event topic. Running it again with the same pair is safe and
// reports zero renamed members.
func (s *service) RenameClubID(ctx context.Context, caller auth.Caller, secret, oldCID, newCID string) (*RenameResult, error) {
	if err := s.authorize(caller, secret); err != nil {
		return nil, err
	}
	if oldCID == "" || newCID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both old and new cid are required")
	}
	if oldCID == newCID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "old and new cid must differ")
	}

	count, err := s.members.RenameCID(ctx, oldCID, newCID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename member records")
	}

	result := &RenameResult{OldCID: oldCID, NewCID: newCID, MembersRenamed: count}
	result.ClubRenamed, result.Warnings = s.propagate(ctx, caller, oldCID, newCID)
	return result, nil
}

func (s *service) authorize(caller auth.Caller, secret string) error {
	if caller.Anonymous() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !caller.IsCC() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "council privileges required")
	}
	if s.secretHash == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "inter-service secret is not configured")
	}
	ok, err := security.VerifySecret(secret, s.secretHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify inter-service secret")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid inter-service secret")
	}
	return nil
}

func (s *service) propagate(ctx context.Context, caller auth.Caller, oldCID, newCID string) (clubRenamed bool, warnings []string) {
	var errs error

	if s.clubs != nil {
		renamed, err := s.clubs.RenameCID(ctx, oldCID, newCID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rename club row: %w", err))
		} else {
			clubRenamed = renamed
		}
	}

	if s.caches != nil {
		s.caches.InvalidateCaches()
	}

	if s.roles != nil {
		if _, err := s.roles.SetRole(ctx, caller, oldCID, enums.CallerRolePublic); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("demote old club account: %w", err))
		}
		if _, err := s.roles.SetRole(ctx, caller, newCID, enums.CallerRoleClub); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("promote new club account: %w", err))
		}
	}

	if s.events != nil {
		event := pubsub.ClubCIDRenamedEvent{OldCID: oldCID, NewCID: newCID}
		if err := s.events.Emit(ctx, enums.EventClubCIDRenamed, event); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("publish rename event: %w", err))
		}
	}

	for _, err := range multierr.Errors(errs) {
		warnings = append(warnings, err.Error())
		if s.logg != nil {
			s.logg.Error(ctx, "cid rename propagation step failed", err)
		}
	}
	return clubRenamed, warnings
}
