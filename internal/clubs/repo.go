package clubs

import (
	"context"

	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/internal/repo"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
)

// Repository exposes club persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByCID retrieves one club regardless of its state.
func (r *Repository) FindByCID(ctx context.Context, cid string) (*models.Club, error) {
	var club models.Club
	err := r.DB(ctx).
		Where("cid = ?", cid).
		First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// ListByState returns every club in the given state, ordered by name.
func (r *Repository) ListByState(ctx context.Context, state enums.ClubState) ([]models.Club, error) {
	var rows []models.Club
	err := r.DB(ctx).
		Where("state = ?", state).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every club, ordered by name. Used by council-only views.
func (r *Repository) ListAll(ctx context.Context) ([]models.Club, error) {
	var rows []models.Club
	err := r.DB(ctx).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new club row.
func (r *Repository) Create(ctx context.Context, club *models.Club) error {
	return r.DB(ctx).Create(club).Error
}

// Save writes all mutable columns of the club back to its row.
func (r *Repository) Save(ctx context.Context, club *models.Club) error {
	return r.DB(ctx).
		Model(club).
		Updates(map[string]any{
			"name":        club.Name,
			"email":       club.Email,
			"category":    club.Category,
			"tagline":     club.Tagline,
			"description": club.Description,
			"socials":     club.Socials,
			"logo_url":    club.LogoURL,
			"banner_url":  club.BannerURL,
		}).Error
}

// SetState flips the lifecycle state of one club and reports whether a row
// was actually updated.
func (r *Repository) SetState(ctx context.Context, cid string, state enums.ClubState) (bool, error) {
	result := r.DB(ctx).
		Model(&models.Club{}).
		Where("cid = ?", cid).
		Update("state", state)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RenameCID re-keys one club row to a new cid and reports whether a row
// changed. Running it again with the same pair touches zero rows.
func (r *Repository) RenameCID(ctx context.Context, oldCID, newCID string) (bool, error) {
	result := r.DB(ctx).
		Model(&models.Club{}).
		Where("cid = ?", oldCID).
		Update("cid", newCID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
