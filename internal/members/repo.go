package members

import (
	"context"

	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/internal/repo"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
)

// Repository exposes membership persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByKey retrieves the membership for one (cid, uid) pair.
func (r *Repository) FindByKey(ctx context.Context, cid, uid string) (*models.Member, error) {
	var member models.Member
	err := r.DB(ctx).
		Where("cid = ? AND uid = ?", cid, uid).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByClub returns every membership for the club.
func (r *Repository) ListByClub(ctx context.Context, cid string) ([]models.Member, error) {
	var rows []models.Member
	err := r.DB(ctx).
		Where("cid = ?", cid).
		Order("creation_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUID returns the person's memberships across all clubs.
func (r *Repository) ListByUID(ctx context.Context, uid string) ([]models.Member, error) {
	var rows []models.Member
	err := r.DB(ctx).
		Where("uid = ?", uid).
		Order("creation_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every membership. Used by council-only projections.
func (r *Repository) ListAll(ctx context.Context) ([]models.Member, error) {
	var rows []models.Member
	err := r.DB(ctx).
		Order("creation_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new membership record.
func (r *Repository) Create(ctx context.Context, member *models.Member) error {
	return r.DB(ctx).Create(member).Error
}

// Update replaces the record's role list and poc flag.
func (r *Repository) Update(ctx context.Context, member *models.Member) error {
	return r.DB(ctx).
		Model(member).
		Updates(map[string]any{
			"roles": member.Roles,
			"poc":   member.POC,
		}).Error
}

// DeleteByKey removes the whole membership record.
func (r *Repository) DeleteByKey(ctx context.Context, cid, uid string) error {
	return r.DB(ctx).
		Where("cid = ? AND uid = ?", cid, uid).
		Delete(&models.Member{}).Error
}

// RenameCID re-keys every membership from oldCID to newCID in one bulk update
// and reports how many rows changed. Running it again with the same pair
// touches zero rows.
func (r *Repository) RenameCID(ctx context.Context, oldCID, newCID string) (int64, error) {
	result := r.DB(ctx).
		Model(&models.Member{}).
		Where("cid = ?", oldCID).
		Update("cid", newCID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
