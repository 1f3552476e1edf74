package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/clubscouncil/portal-backend/api/responses"
	"github.com/clubscouncil/portal-backend/pkg/config"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
	"github.com/clubscouncil/portal-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Clubs-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every attached dependency. Nil pingers are skipped so
// workers without a database can reuse the handler.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Clubs-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "unreachable"
				err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unreachable").WithDetails(status)
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			status[name] = "ok"
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
