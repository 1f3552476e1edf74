package members

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/db"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
	"github.com/clubscouncil/portal-backend/pkg/logger"
	"github.com/clubscouncil/portal-backend/pkg/pubsub"
)

type memberRepository interface {
	FindByKey(ctx context.Context, cid, uid string) (*models.Member, error)
	ListByClub(ctx context.Context, cid string) ([]models.Member, error)
	ListByUID(ctx context.Context, uid string) ([]models.Member, error)
	ListAll(ctx context.Context) ([]models.Member, error)
	Create(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, member *models.Member) error
	DeleteByKey(ctx context.Context, cid, uid string) error
}

type autoApprover interface {
	AutoApprove(ctx context.Context, caller auth.Caller, cid string) (bool, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType enums.EventType, payload any) error
}

// Service exposes the member-role operations.
type Service interface {
	Create(ctx context.Context, caller auth.Caller, input UpsertMemberInput) (*MemberDTO, error)
	Edit(ctx context.Context, caller auth.Caller, input UpsertMemberInput) (*MemberDTO, error)
	Delete(ctx context.Context, caller auth.Caller, cid, uid string, rid *string) (*MemberDTO, error)
	Approve(ctx context.Context, caller auth.Caller, cid, uid string, rid *string) (*MemberDTO, error)
	Reject(ctx context.Context, caller auth.Caller, cid, uid string, rid *string) (*MemberDTO, error)
	Get(ctx context.Context, caller auth.Caller, cid, uid string) (*MemberDTO, error)
	ListByClub(ctx context.Context, caller auth.Caller, cid string) ([]MemberDTO, error)
	RolesByUID(ctx context.Context, caller auth.Caller, uid string) ([]MemberDTO, error)
	CurrentMembers(ctx context.Context, cid string) ([]MemberDTO, error)
	PendingMembers(ctx context.Context, caller auth.Caller) ([]MemberDTO, error)
	WriteMembersCSV(ctx context.Context, caller auth.Caller, cid string, filter ReportFilter, w io.Writer) error
}

type service struct {
	repo   memberRepository
	policy autoApprover
	events eventEmitter
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the member service.
func NewService(repo memberRepository, policy autoApprover, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if policy == nil {
		return nil, fmt.Errorf("approval policy required")
	}
	return &service{
		repo:   repo,
		policy: policy,
		events: events,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) authorizeMutation(caller auth.Caller, cid string) error {
	if caller.Anonymous() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !caller.CanManage(cid) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller may not manage this club")
	}
	return nil
}

func (s *service) authorizeCouncil(caller auth.Caller) error {
	if caller.Anonymous() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !caller.IsCC() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "council privileges required")
	}
	return nil
}

func (s *service) Create(ctx context.Context, caller auth.Caller, input UpsertMemberInput) (*MemberDTO, error) {
	if err := s.authorizeMutation(caller, input.CID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	roles := clampRoles(input.Roles, now.Year())
	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	autoApprove, err := s.policy.AutoApprove(ctx, caller, input.CID)
	if err != nil {
		return nil, err
	}

	records, fresh := reconcile(roles, nil, autoApprove, now)
	assignRIDs(records, now)

	member := &models.Member{
		CID:   input.CID,
		UID:   input.UID,
		Roles: records,
	}
	if input.POC != nil {
		member.POC = *input.POC
	}

	if err := s.repo.Create(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "member already exists for this club")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
	}

	if !autoApprove {
		s.emitPending(ctx, member, fresh)
	}
	return toDTO(member, visibleRoles(member.Roles, caller, member.CID)), nil
}

func (s *service) Edit(ctx context.Context, caller auth.Caller, input UpsertMemberInput) (*MemberDTO, error) {
	if err := s.authorizeMutation(caller, input.CID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	roles := clampRoles(input.Roles, now.Year())
	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	member, err := s.loadMember(ctx, input.CID, input.UID)
	if err != nil {
		return nil, err
	}

	autoApprove, err := s.policy.AutoApprove(ctx, caller, input.CID)
	if err != nil {
		return nil, err
	}

	records, fresh := reconcile(roles, member.Roles, autoApprove, now)
	assignRIDs(records, now)
	member.Roles = records
	if input.POC != nil {
		member.POC = *input.POC
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member")
	}

	if !autoApprove {
		s.emitPending(ctx, member, fresh)
	}
	return toDTO(member, visibleRoles(member.Roles, caller, member.CID)), nil
}

func (s *service) Delete(ctx context.Context, caller auth.Caller, cid, uid string, rid *string) (*MemberDTO, error) {
	if err := s.authorizeMutation(caller, cid); err != nil {
		return nil, err
	}

	member, err := s.loadMember(ctx, cid, uid)
	if err != nil {
		return nil, err
	}

	if rid == nil {
		if err := s.repo.DeleteByKey(ctx, cid, uid); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member")
		}
		return toDTO(member, visibleRoles(member.Roles, caller, cid)), nil
	}

	idx, err := findRole(member.Roles, *rid)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	member.Roles[idx].Deleted = true
	assignRIDs(member.Roles, now)

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member role")
	}
	return toDTO(member, visibleRoles(member.Roles, caller, cid)), nil
}

func (s *service) Approve(ctx context.Context, caller auth.Caller, cid, uid string, rid *string) (*MemberDTO, error) {
	return s.decide(ctx, caller, cid, uid, rid, true)
}

func (s *service) Reject(ctx context.Context, caller auth.Caller, cid, uid string, rid *string) (*MemberDTO, error) {
	return s.decide(ctx, caller, cid, uid, rid, false)
}

// decide applies an approve or reject decision to one role, or to every role
// on the record when rid is nil. The two outcomes are mutually exclusive: a
// decision always clears the opposite flag and timestamp.
func (s *service) decide(ctx context.Context, caller auth.Caller, cid, uid string, rid *string, approve bool) (*MemberDTO, error) {
	if err := s.authorizeCouncil(caller); err != nil {
		return nil, err
	}

	member, err := s.loadMember(ctx, cid, uid)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	apply := func(role *models.RoleRecord) {
		if approve {
			role.Approved = true
			role.Rejected = false
			role.RejectionTime = nil
			approvedAt := now
			role.ApprovalTime = &approvedAt
		} else {
			role.Approved = false
			role.Rejected = true
			role.ApprovalTime = nil
			rejectedAt := now
			role.RejectionTime = &rejectedAt
		}
	}

	if rid != nil {
		idx, err := findRole(member.Roles, *rid)
		if err != nil {
			return nil, err
		}
		apply(&member.Roles[idx])
	} else {
		for i := range member.Roles {
			apply(&member.Roles[i])
		}
	}
	assignRIDs(member.Roles, now)

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member decision")
	}
	return toDTO(member, visibleRoles(member.Roles, caller, cid)), nil
}

func (s *service) Get(ctx context.Context, caller auth.Caller, cid, uid string) (*MemberDTO, error) {
	member, err := s.loadMember(ctx, cid, uid)
	if err != nil {
		return nil, err
	}
	return toDTO(member, visibleRoles(member.Roles, caller, cid)), nil
}

func (s *service) ListByClub(ctx context.Context, caller auth.Caller, cid string) ([]MemberDTO, error) {
	rows, err := s.repo.ListByClub(ctx, cid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list club members")
	}
	return projectMany(rows, func(m *models.Member) models.RoleList {
		return visibleRoles(m.Roles, caller, m.CID)
	}), nil
}

func (s *service) RolesByUID(ctx context.Context, caller auth.Caller, uid string) ([]MemberDTO, error) {
	rows, err := s.repo.ListByUID(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user roles")
	}
	return projectMany(rows, func(m *models.Member) models.RoleList {
		return visibleRoles(m.Roles, caller, m.CID)
	}), nil
}

func (s *service) CurrentMembers(ctx context.Context, cid string) ([]MemberDTO, error) {
	rows, err := s.repo.ListByClub(ctx, cid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list club members")
	}
	return projectMany(rows, func(m *models.Member) models.RoleList {
		return currentRoles(m.Roles)
	}), nil
}

func (s *service) PendingMembers(ctx context.Context, caller auth.Caller) ([]MemberDTO, error) {
	if err := s.authorizeCouncil(caller); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return projectMany(rows, func(m *models.Member) models.RoleList {
		return pendingRoles(m.Roles)
	}), nil
}

func (s *service) loadMember(ctx context.Context, cid, uid string) (*models.Member, error) {
	member, err := s.repo.FindByKey(ctx, cid, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return member, nil
}

// emitPending publishes a notification for each freshly submitted pending
// role. Delivery is best-effort; the member write has already committed.
func (s *service) emitPending(ctx context.Context, member *models.Member, fresh []int) {
	if s.events == nil {
		return
	}
	for _, idx := range fresh {
		if idx < 0 || idx >= len(member.Roles) {
			continue
		}
		role := member.Roles[idx]
		if role.Approved || role.Rejected {
			continue
		}
		err := s.events.Emit(ctx, enums.EventMemberRolePending, pubsub.MemberRolePendingEvent{
			CID:      member.CID,
			UID:      member.UID,
			RoleName: role.Name,
		})
		if err != nil && s.logg != nil {
			s.logg.Error(ctx, "emit pending role event", err)
		}
	}
}

func findRole(roles models.RoleList, rid string) (int, error) {
	for i, role := range roles {
		if role.RID == rid {
			return i, nil
		}
	}
	return 0, pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
}

func projectMany(rows []models.Member, project func(*models.Member) models.RoleList) []MemberDTO {
	out := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		visible := project(&rows[i])
		if len(visible) == 0 {
			continue
		}
		out = append(out, *toDTO(&rows[i], visible))
	}
	return out
}
