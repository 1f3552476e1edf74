package clubs

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
)

type clubRepo struct {
	data  map[string]models.Club
	finds int
	lists int
}

func newClubRepo() *clubRepo {
	return &clubRepo{data: make(map[string]models.Club)}
}

func (r *clubRepo) FindByCID(ctx context.Context, cid string) (*models.Club, error) {
	r.finds++
	club, ok := r.data[cid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := club
	return &copied, nil
}

func (r *clubRepo) ListByState(ctx context.Context, state enums.ClubState) ([]models.Club, error) {
	r.lists++
	var out []models.Club
	for _, club := range r.data {
		if club.State == state {
			out = append(out, club)
		}
	}
	return out, nil
}

func (r *clubRepo) ListAll(ctx context.Context) ([]models.Club, error) {
	var out []models.Club
	for _, club := range r.data {
		out = append(out, club)
	}
	return out, nil
}

func (r *clubRepo) Create(ctx context.Context, club *models.Club) error {
	for _, existing := range r.data {
		if existing.CID == club.CID || existing.Code == club.Code {
			return fmt.Errorf("duplicate key value violates unique constraint %q", "uq_clubs_cid")
		}
	}
	r.data[club.CID] = *club
	return nil
}

func (r *clubRepo) Save(ctx context.Context, club *models.Club) error {
	if _, ok := r.data[club.CID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.data[club.CID] = *club
	return nil
}

func (r *clubRepo) SetState(ctx context.Context, cid string, state enums.ClubState) (bool, error) {
	club, ok := r.data[cid]
	if !ok {
		return false, nil
	}
	club.State = state
	r.data[cid] = club
	return true, nil
}

type recordedEvent struct {
	eventType enums.EventType
	payload   any
}

type recordingEmitter struct {
	events []recordedEvent
	err    error
}

func (e *recordingEmitter) Emit(ctx context.Context, eventType enums.EventType, payload any) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, recordedEvent{eventType: eventType, payload: payload})
	return nil
}

func seedClub(repo *clubRepo, cid string, category enums.ClubCategory, state enums.ClubState) {
	repo.data[cid] = models.Club{
		CID:      cid,
		Code:     "code-" + cid,
		Name:     "Club " + cid,
		Category: category,
		State:    state,
	}
}

func newTestService(t *testing.T, repo *clubRepo, emitter *recordingEmitter) Service {
	t.Helper()
	svc, err := NewService(repo, emitter, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

var (
	publicCaller  = auth.Caller{UID: "u1", Role: enums.CallerRolePublic}
	councilCaller = auth.Caller{UID: "cc", Role: enums.CallerRoleCouncil}
)

func clubCaller(cid string) auth.Caller {
	return auth.Caller{UID: cid, Role: enums.CallerRoleClub}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestGetServesPublicFromCache(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "robotics", enums.ClubCategoryTechnical, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	first, err := svc.Get(ctx, publicCaller, "robotics")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := svc.Get(ctx, publicCaller, "robotics")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if repo.finds != 1 {
		t.Fatalf("expected one repo lookup, got %d", repo.finds)
	}
	if first.CID != second.CID || second.Name != "Club robotics" {
		t.Fatalf("cached club mismatch: %+v vs %+v", first, second)
	}
}

func TestGetCouncilBypassesCache(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "robotics", enums.ClubCategoryTechnical, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Get(ctx, councilCaller, "robotics"); err != nil {
			t.Fatalf("council get %d: %v", i, err)
		}
	}
	if repo.finds != 2 {
		t.Fatalf("expected council reads to reach the repo, got %d lookups", repo.finds)
	}
}

func TestGetHidesDeletedClubsFromNonCouncil(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "drama", enums.ClubCategoryCultural, enums.ClubStateDeleted)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, publicCaller, "drama")
	expectCode(t, err, pkgerrors.CodeNotFound)

	club, err := svc.Get(ctx, councilCaller, "drama")
	if err != nil {
		t.Fatalf("council get: %v", err)
	}
	if club.State != enums.ClubStateDeleted {
		t.Fatalf("expected deleted state, got %s", club.State)
	}
}

func TestListCachesActiveClubsUntilWrite(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "robotics", enums.ClubCategoryTechnical, enums.ClubStateActive)
	seedClub(repo, "drama", enums.ClubCategoryCultural, enums.ClubStateDeleted)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	clubs, err := svc.List(ctx, publicCaller)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clubs) != 1 || clubs[0].CID != "robotics" {
		t.Fatalf("expected only the active club, got %+v", clubs)
	}
	if _, err := svc.List(ctx, publicCaller); err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if repo.lists != 1 {
		t.Fatalf("expected one repo list, got %d", repo.lists)
	}

	_, err = svc.Create(ctx, councilCaller, CreateClubInput{
		CID:      "music",
		Code:     "music01",
		Name:     "Music Club",
		Category: enums.ClubCategoryCultural,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clubs, err = svc.List(ctx, publicCaller)
	if err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if repo.lists != 2 {
		t.Fatalf("expected cache invalidation after create, got %d lists", repo.lists)
	}
	if len(clubs) != 2 {
		t.Fatalf("expected two active clubs, got %d", len(clubs))
	}
}

func TestCreateIsCouncilOnly(t *testing.T) {
	svc := newTestService(t, newClubRepo(), nil)
	ctx := context.Background()

	input := CreateClubInput{CID: "music", Code: "music01", Name: "Music", Category: enums.ClubCategoryCultural}

	_, err := svc.Create(ctx, auth.Caller{}, input)
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Create(ctx, clubCaller("music"), input)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "music", enums.ClubCategoryCultural, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)

	_, err := svc.Create(context.Background(), councilCaller, CreateClubInput{
		CID:      "music",
		Code:     "music02",
		Name:     "Music",
		Category: enums.ClubCategoryCultural,
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestEditByOwningClub(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "robotics", enums.ClubCategoryTechnical, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	tagline := "we build things"
	club, err := svc.Edit(ctx, clubCaller("robotics"), "robotics", EditClubInput{Tagline: &tagline})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if club.Tagline != tagline {
		t.Fatalf("expected tagline %q, got %q", tagline, club.Tagline)
	}

	stored := repo.data["robotics"]
	if stored.Tagline == nil || *stored.Tagline != tagline {
		t.Fatalf("tagline not persisted: %+v", stored)
	}
}

func TestEditCategoryIsCouncilOnly(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "robotics", enums.ClubCategoryTechnical, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	category := enums.ClubCategoryBody
	_, err := svc.Edit(ctx, clubCaller("robotics"), "robotics", EditClubInput{Category: &category})
	expectCode(t, err, pkgerrors.CodeForbidden)

	club, err := svc.Edit(ctx, councilCaller, "robotics", EditClubInput{Category: &category})
	if err != nil {
		t.Fatalf("council edit: %v", err)
	}
	if club.Category != enums.ClubCategoryBody {
		t.Fatalf("expected category change, got %s", club.Category)
	}
}

func TestEditByForeignClubIsForbidden(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "robotics", enums.ClubCategoryTechnical, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)

	name := "Hijacked"
	_, err := svc.Edit(context.Background(), clubCaller("drama"), "robotics", EditClubInput{Name: &name})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteAndRestartLifecycle(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "drama", enums.ClubCategoryCultural, enums.ClubStateActive)
	emitter := &recordingEmitter{}
	svc := newTestService(t, repo, emitter)
	ctx := context.Background()

	club, err := svc.Delete(ctx, councilCaller, "drama")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if club.State != enums.ClubStateDeleted {
		t.Fatalf("expected deleted state, got %s", club.State)
	}
	if len(emitter.events) != 1 || emitter.events[0].eventType != enums.EventClubDeleted {
		t.Fatalf("expected one club deleted event, got %+v", emitter.events)
	}

	_, err = svc.Get(ctx, publicCaller, "drama")
	expectCode(t, err, pkgerrors.CodeNotFound)

	club, err = svc.Restart(ctx, councilCaller, "drama")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if club.State != enums.ClubStateActive {
		t.Fatalf("expected active state, got %s", club.State)
	}
	if _, err := svc.Get(ctx, publicCaller, "drama"); err != nil {
		t.Fatalf("get after restart: %v", err)
	}
}

func TestDeleteIsCouncilOnly(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "drama", enums.ClubCategoryCultural, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)

	_, err := svc.Delete(context.Background(), clubCaller("drama"), "drama")
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestListAllIsCouncilOnly(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "robotics", enums.ClubCategoryTechnical, enums.ClubStateActive)
	seedClub(repo, "drama", enums.ClubCategoryCultural, enums.ClubStateDeleted)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.ListAll(ctx, publicCaller)
	expectCode(t, err, pkgerrors.CodeForbidden)

	clubs, err := svc.ListAll(ctx, councilCaller)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(clubs) != 2 {
		t.Fatalf("expected both clubs, got %d", len(clubs))
	}
}

func TestCategoryLookup(t *testing.T) {
	repo := newClubRepo()
	seedClub(repo, "council-body", enums.ClubCategoryBody, enums.ClubStateActive)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	category, err := svc.Category(ctx, "council-body")
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if category != enums.ClubCategoryBody {
		t.Fatalf("expected body category, got %s", category)
	}

	_, err = svc.Category(ctx, "ghost")
	expectCode(t, err, pkgerrors.CodeNotFound)
}
