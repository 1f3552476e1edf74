package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubscouncil/portal-backend/pkg/enums"
	"github.com/clubscouncil/portal-backend/pkg/types"
)

// Club is the directory entry for a student club. Deleting a club flips its
// state rather than removing the row; restart flips it back.
type Club struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CID         string             `gorm:"column:cid;not null;uniqueIndex"`
	Code        string             `gorm:"column:code;not null;uniqueIndex"`
	Name        string             `gorm:"column:name;not null"`
	Email       string             `gorm:"column:email;not null"`
	Category    enums.ClubCategory `gorm:"column:category;not null"`
	State       enums.ClubState    `gorm:"column:state;not null;default:active"`
	Tagline     *string            `gorm:"column:tagline"`
	Description *string            `gorm:"column:description"`
	Socials     types.Social       `gorm:"column:socials;type:jsonb"`
	LogoURL     *string            `gorm:"column:logo_url"`
	BannerURL   *string            `gorm:"column:banner_url"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
