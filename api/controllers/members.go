package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clubscouncil/portal-backend/api/middleware"
	"github.com/clubscouncil/portal-backend/api/responses"
	"github.com/clubscouncil/portal-backend/api/validators"
	"github.com/clubscouncil/portal-backend/internal/members"
	"github.com/clubscouncil/portal-backend/pkg/auth"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
	"github.com/clubscouncil/portal-backend/pkg/logger"
)

type memberDecisionRequest struct {
	CID string  `json:"cid" validate:"required"`
	UID string  `json:"uid" validate:"required"`
	RID *string `json:"rid"`
}

// MemberCreate registers a membership with its initial role list.
func MemberCreate(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input members.UpsertMemberInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		member, err := svc.Create(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// MemberEdit replaces a membership's role list, preserving matching decisions.
func MemberEdit(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input members.UpsertMemberInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		member, err := svc.Edit(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// MemberDelete removes a role (rid given) or the whole membership record.
func MemberDelete(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid := strings.TrimSpace(r.URL.Query().Get("cid"))
		uid := strings.TrimSpace(r.URL.Query().Get("uid"))
		if cid == "" || uid == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cid and uid query parameters are required"))
			return
		}
		var rid *string
		if raw := strings.TrimSpace(r.URL.Query().Get("rid")); raw != "" {
			rid = &raw
		}

		caller := middleware.CallerFromContext(r.Context())
		member, err := svc.Delete(r.Context(), caller, cid, uid, rid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// MemberApprove marks one role, or all of a membership's roles, as approved.
func MemberApprove(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return memberDecision(svc.Approve, logg)
}

// MemberReject marks one role, or all of a membership's roles, as rejected.
func MemberReject(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return memberDecision(svc.Reject, logg)
}

func memberDecision(decide func(ctx context.Context, caller auth.Caller, cid, uid string, rid *string) (*members.MemberDTO, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memberDecisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		member, err := decide(r.Context(), caller, req.CID, req.UID, req.RID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// MemberGet returns one membership with caller-visible roles.
func MemberGet(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, err := validators.RequirePathValue(chi.URLParam(r, "cid"), "cid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		uid, err := validators.RequirePathValue(chi.URLParam(r, "uid"), "uid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		member, err := svc.Get(r.Context(), caller, cid, uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// MembersByClub lists a club's memberships with caller-visible roles.
func MembersByClub(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, err := validators.RequirePathValue(chi.URLParam(r, "cid"), "cid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		list, err := svc.ListByClub(r.Context(), caller, cid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MemberRolesByUser lists a person's role history across clubs.
func MemberRolesByUser(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := validators.RequirePathValue(chi.URLParam(r, "uid"), "uid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())
		list, err := svc.RolesByUID(r.Context(), caller, uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MembersCurrent lists the club's approved, ongoing members.
func MembersCurrent(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, err := validators.RequirePathValue(chi.URLParam(r, "cid"), "cid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.CurrentMembers(r.Context(), cid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MembersPending lists memberships with undecided roles. Council only.
func MembersPending(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.CallerFromContext(r.Context())
		list, err := svc.PendingMembers(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MembersReport streams the club's member roster as CSV. Council only.
func MembersReport(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid := strings.TrimSpace(r.URL.Query().Get("cid"))
		if cid == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cid query parameter is required"))
			return
		}

		filter, err := members.ParseReportFilter(strings.TrimSpace(r.URL.Query().Get("filter")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := middleware.CallerFromContext(r.Context())

		var buf bytes.Buffer
		if err := svc.WriteMembersCSV(r.Context(), caller, cid, filter, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("members-%s-%s.csv", cid, time.Now().UTC().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Write(buf.Bytes())
	}
}
