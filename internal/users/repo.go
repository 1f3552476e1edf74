package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/internal/repo"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
)

// Repository exposes user persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByUID retrieves one user row.
func (r *Repository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Where("uid = ?", uid).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persists a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Create(user).Error
}

// UpdateRole sets the access role of one user and reports whether a row was
// actually updated.
func (r *Repository) UpdateRole(ctx context.Context, uid string, role enums.CallerRole) (bool, error) {
	result := r.DB(ctx).
		Model(&models.User{}).
		Where("uid = ?", uid).
		Update("role", role)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
