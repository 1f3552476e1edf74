package controllers

import (
	"net/http"
	"strings"

	"github.com/clubscouncil/portal-backend/api/middleware"
	"github.com/clubscouncil/portal-backend/api/responses"
	"github.com/clubscouncil/portal-backend/api/validators"
	"github.com/clubscouncil/portal-backend/internal/clubsync"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
	"github.com/clubscouncil/portal-backend/pkg/logger"
)

const interServiceSecretHeader = "X-Inter-Service-Secret"

type renameCIDRequest struct {
	OldCID string `json:"old_cid" validate:"required"`
	NewCID string `json:"new_cid" validate:"required"`
}

// SyncRenameCID runs the cross-service cid rename cascade. Council callers
// must also present the shared inter-service secret.
func SyncRenameCID(svc clubsync.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := strings.TrimSpace(r.Header.Get(interServiceSecretHeader))
		if secret == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "inter-service secret required"))
			return
		}

		var req renameCIDRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		result, err := svc.RenameClubID(r.Context(), caller, secret, req.OldCID, req.NewCID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
