package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubscouncil/portal-backend/pkg/enums"
)

// User stores portal-side identity metadata for one person or club account.
// Profile details (name, batch, photo) live in the directory service; only
// the access role is owned here.
type User struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UID       string           `gorm:"column:uid;not null;uniqueIndex"`
	Role      enums.CallerRole `gorm:"column:role;not null;default:public"`
	Email     string           `gorm:"column:email"`
	ImgURL    *string          `gorm:"column:img_url"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
