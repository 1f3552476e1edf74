package middleware

import (
	"net/http"
	"strings"

	"github.com/clubscouncil/portal-backend/api/responses"
	pkgauth "github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/auth/session"
	"github.com/clubscouncil/portal-backend/pkg/config"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
	"github.com/clubscouncil/portal-backend/pkg/logger"
)

// ResolveCaller turns the Authorization header into a caller and seeds the
// request context. Requests without credentials continue as the anonymous
// public caller; only presented-but-invalid credentials are rejected here.
// Authorization against specific clubs happens in the services.
func ResolveCaller(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.UID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing uid"))
				return
			}

			if sessions != nil {
				if claims.ID == "" {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing session id"))
					return
				}
				ok, err := sessions.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
			}

			caller := pkgauth.Caller{UID: claims.UID, Role: claims.Role}
			ctx := WithCaller(r.Context(), caller)
			if logg != nil {
				ctx = logg.WithUID(ctx, caller.UID)
				ctx = logg.WithCallerRole(ctx, caller.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
