package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clubscouncil/portal-backend/api/controllers"
	"github.com/clubscouncil/portal-backend/api/middleware"
	"github.com/clubscouncil/portal-backend/internal/clubs"
	"github.com/clubscouncil/portal-backend/internal/clubsync"
	"github.com/clubscouncil/portal-backend/internal/members"
	"github.com/clubscouncil/portal-backend/pkg/auth/session"
	"github.com/clubscouncil/portal-backend/pkg/config"
	"github.com/clubscouncil/portal-backend/pkg/logger"
	"github.com/clubscouncil/portal-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	membersService members.Service,
	clubsService clubs.Service,
	syncService clubsync.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ResolveCaller(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/members", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuthenticated(logg))
				r.Post("/", controllers.MemberCreate(membersService, logg))
				r.Put("/", controllers.MemberEdit(membersService, logg))
				r.Delete("/", controllers.MemberDelete(membersService, logg))
				r.Get("/{cid}/{uid}", controllers.MemberGet(membersService, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCouncil(logg))
				r.Post("/approve", controllers.MemberApprove(membersService, logg))
				r.Post("/reject", controllers.MemberReject(membersService, logg))
				r.Get("/pending", controllers.MembersPending(membersService, logg))
				r.Get("/report", controllers.MembersReport(membersService, logg))
			})

			r.Get("/user/{uid}", controllers.MemberRolesByUser(membersService, logg))
			r.Get("/club/{cid}", controllers.MembersByClub(membersService, logg))
			r.Get("/club/{cid}/current", controllers.MembersCurrent(membersService, logg))
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", controllers.ClubList(clubsService, logg))
			r.Get("/{cid}", controllers.ClubGet(clubsService, logg))

			r.With(middleware.RequireAuthenticated(logg)).Put("/{cid}", controllers.ClubEdit(clubsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCouncil(logg))
				r.Post("/", controllers.ClubCreate(clubsService, logg))
				r.Delete("/{cid}", controllers.ClubDelete(clubsService, logg))
				r.Post("/{cid}/restart", controllers.ClubRestart(clubsService, logg))
			})
		})
	})

	renamePolicy := middleware.RateLimitPolicy{
		Name:   "sync-rename",
		Window: cfg.Sync.RenameWindow,
		Limit:  cfg.Sync.RenameLimit,
	}
	r.Route("/internal/v1", func(r chi.Router) {
		r.Use(middleware.ResolveCaller(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireCouncil(logg))
		r.Use(middleware.RateLimit(renamePolicy, redisClient, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Post("/members/rename-cid", controllers.SyncRenameCID(syncService, logg))
	})

	return r
}
