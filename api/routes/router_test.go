package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clubscouncil/portal-backend/api/controllers"
	"github.com/clubscouncil/portal-backend/internal/clubs"
	"github.com/clubscouncil/portal-backend/internal/clubsync"
	"github.com/clubscouncil/portal-backend/internal/members"
	pkgauth "github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/config"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	"github.com/clubscouncil/portal-backend/pkg/logger"
	"github.com/clubscouncil/portal-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubMembersService struct{}

func (stubMembersService) Create(ctx context.Context, caller pkgauth.Caller, input members.UpsertMemberInput) (*members.MemberDTO, error) {
	return &members.MemberDTO{CID: input.CID, UID: input.UID}, nil
}

func (stubMembersService) Edit(ctx context.Context, caller pkgauth.Caller, input members.UpsertMemberInput) (*members.MemberDTO, error) {
	return &members.MemberDTO{CID: input.CID, UID: input.UID}, nil
}

func (stubMembersService) Delete(ctx context.Context, caller pkgauth.Caller, cid, uid string, rid *string) (*members.MemberDTO, error) {
	return &members.MemberDTO{CID: cid, UID: uid}, nil
}

func (stubMembersService) Approve(ctx context.Context, caller pkgauth.Caller, cid, uid string, rid *string) (*members.MemberDTO, error) {
	return &members.MemberDTO{CID: cid, UID: uid}, nil
}

func (stubMembersService) Reject(ctx context.Context, caller pkgauth.Caller, cid, uid string, rid *string) (*members.MemberDTO, error) {
	return &members.MemberDTO{CID: cid, UID: uid}, nil
}

func (stubMembersService) Get(ctx context.Context, caller pkgauth.Caller, cid, uid string) (*members.MemberDTO, error) {
	return &members.MemberDTO{CID: cid, UID: uid}, nil
}

func (stubMembersService) ListByClub(ctx context.Context, caller pkgauth.Caller, cid string) ([]members.MemberDTO, error) {
	return nil, nil
}

func (stubMembersService) RolesByUID(ctx context.Context, caller pkgauth.Caller, uid string) ([]members.MemberDTO, error) {
	return nil, nil
}

func (stubMembersService) CurrentMembers(ctx context.Context, cid string) ([]members.MemberDTO, error) {
	return nil, nil
}

func (stubMembersService) PendingMembers(ctx context.Context, caller pkgauth.Caller) ([]members.MemberDTO, error) {
	return []members.MemberDTO{}, nil
}

func (stubMembersService) WriteMembersCSV(ctx context.Context, caller pkgauth.Caller, cid string, filter members.ReportFilter, w io.Writer) error {
	_, err := w.Write([]byte("cid,uid\n"))
	return err
}

type stubClubsService struct{}

func (stubClubsService) Get(ctx context.Context, caller pkgauth.Caller, cid string) (*clubs.ClubDTO, error) {
	return &clubs.ClubDTO{CID: cid}, nil
}

func (stubClubsService) List(ctx context.Context, caller pkgauth.Caller) ([]*clubs.ClubDTO, error) {
	return []*clubs.ClubDTO{}, nil
}

func (stubClubsService) ListAll(ctx context.Context, caller pkgauth.Caller) ([]*clubs.ClubDTO, error) {
	return []*clubs.ClubDTO{}, nil
}

func (stubClubsService) Create(ctx context.Context, caller pkgauth.Caller, input clubs.CreateClubInput) (*clubs.ClubDTO, error) {
	return &clubs.ClubDTO{CID: input.CID}, nil
}

func (stubClubsService) Edit(ctx context.Context, caller pkgauth.Caller, cid string, input clubs.EditClubInput) (*clubs.ClubDTO, error) {
	return &clubs.ClubDTO{CID: cid}, nil
}

func (stubClubsService) Delete(ctx context.Context, caller pkgauth.Caller, cid string) (*clubs.ClubDTO, error) {
	return &clubs.ClubDTO{CID: cid}, nil
}

func (stubClubsService) Restart(ctx context.Context, caller pkgauth.Caller, cid string) (*clubs.ClubDTO, error) {
	return &clubs.ClubDTO{CID: cid}, nil
}

func (stubClubsService) Category(ctx context.Context, cid string) (enums.ClubCategory, error) {
	return enums.ClubCategoryOther, nil
}

func (stubClubsService) InvalidateCaches() {}

type stubSyncService struct{}

func (stubSyncService) RenameClubID(ctx context.Context, caller pkgauth.Caller, secret, oldCID, newCID string) (*clubsync.RenameResult, error) {
	return &clubsync.RenameResult{OldCID: oldCID, NewCID: newCID}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "clubs-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	readiness := map[string]controllers.Pinger{"db": stubPinger{}}
	return NewRouter(
		cfg,
		logg,
		readiness,
		(*redis.Client)(nil),
		nil,
		nil,
		stubMembersService{},
		stubClubsService{},
		stubSyncService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, uid string, role enums.CallerRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{UID: uid, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(testConfig())

	live := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, live)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}

	ready := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, ready)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestClubReadsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	list := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, list)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous club list got %d", resp.Code)
	}

	detail := httptest.NewRequest(http.MethodGet, "/api/v1/clubs/drama", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, detail)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous club detail got %d", resp.Code)
	}
}

func TestMemberMutationsRequireAuthentication(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members/drama/u100", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous member get got %d", resp.Code)
	}
}

func TestPendingMembersRequiresCouncil(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/members/pending", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous pending got %d", resp.Code)
	}

	club := httptest.NewRequest(http.MethodGet, "/api/v1/members/pending", nil)
	club.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "drama", enums.CallerRoleClub))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, club)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for club pending got %d", resp.Code)
	}

	council := httptest.NewRequest(http.MethodGet, "/api/v1/members/pending", nil)
	council.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "cc", enums.CallerRoleCouncil))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, council)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for council pending got %d", resp.Code)
	}
}

func TestClubDeleteRequiresCouncil(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	club := httptest.NewRequest(http.MethodDelete, "/api/v1/clubs/drama", nil)
	club.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "drama", enums.CallerRoleClub))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, club)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for club delete got %d", resp.Code)
	}

	council := httptest.NewRequest(http.MethodDelete, "/api/v1/clubs/drama", nil)
	council.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "cc", enums.CallerRoleCouncil))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, council)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for council delete got %d", resp.Code)
	}
}

func TestMemberReadsAllowAnyCaller(t *testing.T) {
	router := newTestRouter(testConfig())

	byClub := httptest.NewRequest(http.MethodGet, "/api/v1/members/club/drama", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, byClub)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for members by club got %d", resp.Code)
	}

	current := httptest.NewRequest(http.MethodGet, "/api/v1/members/club/drama/current", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, current)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for current members got %d", resp.Code)
	}
}

func TestRenameEndpointRequiresCouncil(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodPost, "/internal/v1/members/rename-cid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous rename got %d", resp.Code)
	}

	club := httptest.NewRequest(http.MethodPost, "/internal/v1/members/rename-cid", nil)
	club.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "drama", enums.CallerRoleClub))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, club)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for club rename got %d", resp.Code)
	}

	// Council callers clear role checks and are stopped next by the missing
	// Idempotency-Key header.
	council := httptest.NewRequest(http.MethodPost, "/internal/v1/members/rename-cid", nil)
	council.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "cc", enums.CallerRoleCouncil))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, council)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for council rename without idempotency key got %d", resp.Code)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token got %d", resp.Code)
	}
}
