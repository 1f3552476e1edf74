package users

import (
	"time"

	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
)

// UserDTO is the transport shape of a user row.
type UserDTO struct {
	UID       string           `json:"uid"`
	Role      enums.CallerRole `json:"role"`
	Email     string           `json:"email,omitempty"`
	ImgURL    *string          `json:"img_url,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FromModel converts a user row to its DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		UID:       user.UID,
		Role:      user.Role,
		Email:     user.Email,
		ImgURL:    user.ImgURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
