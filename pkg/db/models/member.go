package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoleRecord is one stint of a person holding a named role in a club. Role
// records are independently approvable and soft-deletable; deleted records
// are retained for audit but never projected to callers.
type RoleRecord struct {
	RID           string     `json:"rid"`
	Name          string     `json:"name"`
	StartYear     int        `json:"start_year"`
	EndYear       *int       `json:"end_year"`
	Approved      bool       `json:"approved"`
	ApprovalTime  *time.Time `json:"approval_time"`
	Rejected      bool       `json:"rejected"`
	RejectionTime *time.Time `json:"rejection_time"`
	Deleted       bool       `json:"deleted"`
}

// Pending reports whether the role is still awaiting a council decision.
func (r RoleRecord) Pending() bool {
	return !r.Approved && !r.Rejected
}

// RoleList is the full role history of one membership, persisted as a single
// JSONB column so every read-modify-write of the history is one atomic row
// update.
type RoleList []RoleRecord

func (l RoleList) Value() (driver.Value, error) {
	if l == nil {
		l = RoleList{}
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("rolelist: marshal: %w", err)
	}
	return string(raw), nil
}

func (l *RoleList) Scan(src any) error {
	if src == nil {
		*l = RoleList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("rolelist: unsupported Scan type %T", src)
	}
}

// Member links one person (uid) with one club (cid) and owns that person's
// role history inside the club. The (cid, uid) pair is unique.
type Member struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CID            string    `gorm:"column:cid;not null;uniqueIndex:idx_members_cid_uid,priority:1"`
	UID            string    `gorm:"column:uid;not null;uniqueIndex:idx_members_cid_uid,priority:2"`
	Roles          RoleList  `gorm:"column:roles;type:jsonb;not null"`
	POC            bool      `gorm:"column:poc;not null;default:false"`
	CreationTime   time.Time `gorm:"column:creation_time;autoCreateTime"`
	LastEditedTime time.Time `gorm:"column:last_edited_time;autoUpdateTime"`
}
