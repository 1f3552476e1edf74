package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/db"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
)

type userRepository interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, uid string, role enums.CallerRole) (bool, error)
}

// Service exposes user lookup and role administration.
type Service interface {
	Get(ctx context.Context, caller auth.Caller, uid string) (*UserDTO, error)
	SetRole(ctx context.Context, caller auth.Caller, uid string, role enums.CallerRole) (*UserDTO, error)
}

type service struct {
	repo userRepository
}

// NewService builds the user service.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

// Get returns one user's portal metadata. Callers may read themselves; the
// council may read anyone.
func (s *service) Get(ctx context.Context, caller auth.Caller, uid string) (*UserDTO, error) {
	if caller.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !caller.IsCC() && caller.UID != uid {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller may not read this user")
	}

	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

// SetRole assigns an access role, creating the user row when the uid has not
// been seen before. Council only.
func (s *service) SetRole(ctx context.Context, caller auth.Caller, uid string, role enums.CallerRole) (*UserDTO, error) {
	if caller.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !caller.IsCC() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "council privileges required")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid caller role")
	}

	updated, err := s.repo.UpdateRole(ctx, uid, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user role")
	}
	if !updated {
		user := &models.User{UID: uid, Role: role}
		if err := s.repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				// Lost a create race; retry the role update once.
				if _, err := s.repo.UpdateRole(ctx, uid, role); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user role")
				}
			} else {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
			}
		}
	}

	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}
