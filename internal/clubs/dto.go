package clubs

import (
	"time"

	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	"github.com/clubscouncil/portal-backend/pkg/types"
)

// ClubDTO is the transport shape of a club.
type ClubDTO struct {
	CID         string             `json:"cid"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Email       string             `json:"email,omitempty"`
	Category    enums.ClubCategory `json:"category"`
	State       enums.ClubState    `json:"state"`
	Tagline     string             `json:"tagline,omitempty"`
	Description string             `json:"description,omitempty"`
	Socials     types.Social       `json:"socials"`
	LogoURL     string             `json:"logo_url,omitempty"`
	BannerURL   string             `json:"banner_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateClubInput captures the fields required to register a club.
type CreateClubInput struct {
	CID         string             `json:"cid" validate:"required"`
	Code        string             `json:"code" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Email       string             `json:"email" validate:"omitempty,email"`
	Category    enums.ClubCategory `json:"category" validate:"required"`
	Tagline     string             `json:"tagline"`
	Description string             `json:"description"`
	Socials     *types.Social      `json:"socials"`
	LogoURL     string             `json:"logo_url"`
	BannerURL   string             `json:"banner_url"`
}

// EditClubInput captures the mutable club fields. Nil pointers leave the
// stored value untouched. Category changes are council-only.
type EditClubInput struct {
	Name        *string             `json:"name"`
	Email       *string             `json:"email" validate:"omitempty,email"`
	Category    *enums.ClubCategory `json:"category"`
	Tagline     *string             `json:"tagline"`
	Description *string             `json:"description"`
	Socials     *types.Social       `json:"socials"`
	LogoURL     *string             `json:"logo_url"`
	BannerURL   *string             `json:"banner_url"`
}

// FromModel converts a club row to its DTO.
func FromModel(club *models.Club) *ClubDTO {
	if club == nil {
		return nil
	}
	return &ClubDTO{
		CID:         club.CID,
		Code:        club.Code,
		Name:        club.Name,
		Email:       club.Email,
		Category:    club.Category,
		State:       club.State,
		Tagline:     stringValue(club.Tagline),
		Description: stringValue(club.Description),
		Socials:     club.Socials,
		LogoURL:     stringValue(club.LogoURL),
		BannerURL:   stringValue(club.BannerURL),
		CreatedAt:   club.CreatedAt,
		UpdatedAt:   club.UpdatedAt,
	}
}

func fromModels(records []models.Club) []*ClubDTO {
	dtos := make([]*ClubDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, FromModel(&records[i]))
	}
	return dtos
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
