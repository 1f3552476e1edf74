package members

import (
	"time"

	"github.com/clubscouncil/portal-backend/pkg/db/models"
)

// RoleInput is one caller-submitted role stint. Role ids are never accepted
// from callers; the service assigns them on every write.
type RoleInput struct {
	Name      string `json:"name" validate:"required"`
	StartYear int    `json:"start_year" validate:"required"`
	EndYear   *int   `json:"end_year"`
}

// UpsertMemberInput carries the full replacement role list for one membership.
type UpsertMemberInput struct {
	CID   string      `json:"cid" validate:"required"`
	UID   string      `json:"uid" validate:"required"`
	Roles []RoleInput `json:"roles" validate:"required,min=1,dive"`
	POC   *bool       `json:"poc"`
}

// RoleDTO is the transport shape of a visible role record.
type RoleDTO struct {
	RID           string     `json:"rid"`
	Name          string     `json:"name"`
	StartYear     int        `json:"start_year"`
	EndYear       *int       `json:"end_year,omitempty"`
	Approved      bool       `json:"approved"`
	ApprovalTime  *time.Time `json:"approval_time,omitempty"`
	Rejected      bool       `json:"rejected"`
	RejectionTime *time.Time `json:"rejection_time,omitempty"`
}

// MemberDTO is the transport shape of a membership with its visible roles.
type MemberDTO struct {
	CID            string    `json:"cid"`
	UID            string    `json:"uid"`
	Roles          []RoleDTO `json:"roles"`
	POC            bool      `json:"poc"`
	CreationTime   time.Time `json:"creation_time"`
	LastEditedTime time.Time `json:"last_edited_time"`
}

func toDTO(member *models.Member, visible models.RoleList) *MemberDTO {
	if member == nil {
		return nil
	}
	roles := make([]RoleDTO, 0, len(visible))
	for _, role := range visible {
		roles = append(roles, RoleDTO{
			RID:           role.RID,
			Name:          role.Name,
			StartYear:     role.StartYear,
			EndYear:       copyIntPointer(role.EndYear),
			Approved:      role.Approved,
			ApprovalTime:  copyTimePointer(role.ApprovalTime),
			Rejected:      role.Rejected,
			RejectionTime: copyTimePointer(role.RejectionTime),
		})
	}
	return &MemberDTO{
		CID:            member.CID,
		UID:            member.UID,
		Roles:          roles,
		POC:            member.POC,
		CreationTime:   member.CreationTime,
		LastEditedTime: member.LastEditedTime,
	}
}

func copyIntPointer(src *int) *int {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func copyTimePointer(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
