package clubs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/cache"
	"github.com/clubscouncil/portal-backend/pkg/db"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
	"github.com/clubscouncil/portal-backend/pkg/logger"
	"github.com/clubscouncil/portal-backend/pkg/metrics"
	"github.com/clubscouncil/portal-backend/pkg/pubsub"
)

// Cache labels reported by the cache metrics.
const (
	detailCacheName = "club_detail"
	activeCacheName = "active_clubs"
)

type clubRepository interface {
	FindByCID(ctx context.Context, cid string) (*models.Club, error)
	ListByState(ctx context.Context, state enums.ClubState) ([]models.Club, error)
	ListAll(ctx context.Context) ([]models.Club, error)
	Create(ctx context.Context, club *models.Club) error
	Save(ctx context.Context, club *models.Club) error
	SetState(ctx context.Context, cid string, state enums.ClubState) (bool, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType enums.EventType, payload any) error
}

// Service exposes the club directory operations.
type Service interface {
	Get(ctx context.Context, caller auth.Caller, cid string) (*ClubDTO, error)
	List(ctx context.Context, caller auth.Caller) ([]*ClubDTO, error)
	ListAll(ctx context.Context, caller auth.Caller) ([]*ClubDTO, error)
	Create(ctx context.Context, caller auth.Caller, input CreateClubInput) (*ClubDTO, error)
	Edit(ctx context.Context, caller auth.Caller, cid string, input EditClubInput) (*ClubDTO, error)
	Delete(ctx context.Context, caller auth.Caller, cid string) (*ClubDTO, error)
	Restart(ctx context.Context, caller auth.Caller, cid string) (*ClubDTO, error)
	Category(ctx context.Context, cid string) (enums.ClubCategory, error)
	InvalidateCaches()
}

type service struct {
	repo    clubRepository
	events  eventEmitter
	details *cache.LFU
	active  *cache.Single
	cacheMx *metrics.CacheMetrics
	logg    *logger.Logger
}

// NewService builds the club service. Cache metrics may be nil when the
// caller does not register Prometheus collectors (tests).
func NewService(repo clubRepository, events eventEmitter, detailCapacity int, cacheMx *metrics.CacheMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("club repository required")
	}
	return &service{
		repo:    repo,
		events:  events,
		details: cache.NewLFU(detailCapacity),
		active:  &cache.Single{},
		cacheMx: cacheMx,
		logg:    logg,
	}, nil
}

// Get returns one club. Council callers read through to the database and can
// see deleted clubs; everyone else is served the cached active record.
func (s *service) Get(ctx context.Context, caller auth.Caller, cid string) (*ClubDTO, error) {
	if caller.IsCC() {
		club, err := s.loadClub(ctx, cid)
		if err != nil {
			return nil, err
		}
		return FromModel(club), nil
	}

	if cached, ok := s.details.Get(cid); ok {
		s.cacheMx.IncHit(detailCacheName)
		return cached.(*ClubDTO), nil
	}
	s.cacheMx.IncMiss(detailCacheName)

	club, err := s.loadClub(ctx, cid)
	if err != nil {
		return nil, err
	}
	if club.State != enums.ClubStateActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
	}

	dto := FromModel(club)
	s.details.Set(cid, dto)
	return dto, nil
}

// List returns the active clubs. Council callers bypass the cache so they
// always see their own writes.
func (s *service) List(ctx context.Context, caller auth.Caller) ([]*ClubDTO, error) {
	if !caller.IsCC() {
		if cached, ok := s.active.Get(); ok {
			s.cacheMx.IncHit(activeCacheName)
			return cached.([]*ClubDTO), nil
		}
		s.cacheMx.IncMiss(activeCacheName)
	}

	rows, err := s.repo.ListByState(ctx, enums.ClubStateActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clubs")
	}

	dtos := fromModels(rows)
	if !caller.IsCC() {
		s.active.Set(dtos)
	}
	return dtos, nil
}

// ListAll returns every club including deleted ones. Council only.
func (s *service) ListAll(ctx context.Context, caller auth.Caller) ([]*ClubDTO, error) {
	if err := authorizeCouncil(caller); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clubs")
	}
	return fromModels(rows), nil
}

func (s *service) Create(ctx context.Context, caller auth.Caller, input CreateClubInput) (*ClubDTO, error) {
	if err := authorizeCouncil(caller); err != nil {
		return nil, err
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid club category")
	}

	club := &models.Club{
		CID:         input.CID,
		Code:        input.Code,
		Name:        input.Name,
		Email:       input.Email,
		Category:    input.Category,
		State:       enums.ClubStateActive,
		Tagline:     optionalString(input.Tagline),
		Description: optionalString(input.Description),
		LogoURL:     optionalString(input.LogoURL),
		BannerURL:   optionalString(input.BannerURL),
	}
	if input.Socials != nil {
		club.Socials = *input.Socials
	}

	if err := s.repo.Create(ctx, club); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a club with this cid or code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create club")
	}

	s.InvalidateCaches()
	return FromModel(club), nil
}

func (s *service) Edit(ctx context.Context, caller auth.Caller, cid string, input EditClubInput) (*ClubDTO, error) {
	if caller.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !caller.CanManage(cid) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller may not manage this club")
	}
	if input.Category != nil && !caller.IsCC() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the council may change a club's category")
	}

	club, err := s.loadClub(ctx, cid)
	if err != nil {
		return nil, err
	}

	applyEdit(club, input)
	if !club.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid club category")
	}

	if err := s.repo.Save(ctx, club); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update club")
	}

	s.InvalidateCaches()
	return FromModel(club), nil
}

func (s *service) Delete(ctx context.Context, caller auth.Caller, cid string) (*ClubDTO, error) {
	if err := authorizeCouncil(caller); err != nil {
		return nil, err
	}

	club, err := s.loadClub(ctx, cid)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetState(ctx, cid, enums.ClubStateDeleted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete club")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
	}
	club.State = enums.ClubStateDeleted

	s.InvalidateCaches()
	s.emitDeleted(ctx, cid)
	return FromModel(club), nil
}

func (s *service) Restart(ctx context.Context, caller auth.Caller, cid string) (*ClubDTO, error) {
	if err := authorizeCouncil(caller); err != nil {
		return nil, err
	}

	club, err := s.loadClub(ctx, cid)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetState(ctx, cid, enums.ClubStateActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restart club")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
	}
	club.State = enums.ClubStateActive

	s.InvalidateCaches()
	return FromModel(club), nil
}

// Category resolves the club's category for approval decisions. Deleted
// clubs still resolve; their members keep their existing visibility.
func (s *service) Category(ctx context.Context, cid string) (enums.ClubCategory, error) {
	club, err := s.loadClub(ctx, cid)
	if err != nil {
		return "", err
	}
	return club.Category, nil
}

// InvalidateCaches drops both lookup caches. Called after every club write
// and after a cid rename.
func (s *service) InvalidateCaches() {
	s.details.Invalidate()
	s.active.Invalidate()
	s.cacheMx.IncInvalidation(detailCacheName)
	s.cacheMx.IncInvalidation(activeCacheName)
}

func (s *service) loadClub(ctx context.Context, cid string) (*models.Club, error) {
	club, err := s.repo.FindByCID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load club")
	}
	return club, nil
}

func (s *service) emitDeleted(ctx context.Context, cid string) {
	if s.events == nil {
		return
	}
	err := s.events.Emit(ctx, enums.EventClubDeleted, pubsub.ClubDeletedEvent{CID: cid})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "publish club deleted event", err)
	}
}

func authorizeCouncil(caller auth.Caller) error {
	if caller.Anonymous() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !caller.IsCC() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "council privileges required")
	}
	return nil
}

func applyEdit(club *models.Club, input EditClubInput) {
	if input.Name != nil {
		club.Name = *input.Name
	}
	if input.Email != nil {
		club.Email = *input.Email
	}
	if input.Category != nil {
		club.Category = *input.Category
	}
	if input.Tagline != nil {
		club.Tagline = optionalString(*input.Tagline)
	}
	if input.Description != nil {
		club.Description = optionalString(*input.Description)
	}
	if input.Socials != nil {
		club.Socials = *input.Socials
	}
	if input.LogoURL != nil {
		club.LogoURL = optionalString(*input.LogoURL)
	}
	if input.BannerURL != nil {
		club.BannerURL = optionalString(*input.BannerURL)
	}

	now := time.Now().UTC()
	club.UpdatedAt = now
}
