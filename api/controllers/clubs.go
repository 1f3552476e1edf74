package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clubscouncil/portal-backend/api/middleware"
	"github.com/clubscouncil/portal-backend/api/responses"
	"github.com/clubscouncil/portal-backend/api/validators"
	"github.com/clubscouncil/portal-backend/internal/clubs"
	"github.com/clubscouncil/portal-backend/pkg/logger"
)

// ClubCreate registers a club. Council only.
func ClubCreate(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input clubs.CreateClubInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		club, err := svc.Create(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, club)
	}
}

// ClubEdit updates the mutable club fields.
func ClubEdit(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, err := validators.RequirePathValue(chi.URLParam(r, "cid"), "cid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input clubs.EditClubInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		club, err := svc.Edit(r.Context(), caller, cid, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, club)
	}
}

// ClubDelete soft-deletes a club. Council only.
func ClubDelete(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, err := validators.RequirePathValue(chi.URLParam(r, "cid"), "cid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		club, err := svc.Delete(r.Context(), caller, cid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, club)
	}
}

// ClubRestart reactivates a soft-deleted club. Council only.
func ClubRestart(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, err := validators.RequirePathValue(chi.URLParam(r, "cid"), "cid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		club, err := svc.Restart(r.Context(), caller, cid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, club)
	}
}

// ClubList returns active clubs, or every club for council callers asking
// for the full directory.
func ClubList(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.CallerFromContext(r.Context())

		if r.URL.Query().Get("include_deleted") == "true" {
			list, err := svc.ListAll(r.Context(), caller)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, list)
			return
		}

		list, err := svc.List(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ClubGet returns one club.
func ClubGet(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, err := validators.RequirePathValue(chi.URLParam(r, "cid"), "cid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		club, err := svc.Get(r.Context(), caller, cid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, club)
	}
}
