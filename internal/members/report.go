package members

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/clubscouncil/portal-backend/pkg/auth"
	"github.com/clubscouncil/portal-backend/pkg/db/models"
	pkgerrors "github.com/clubscouncil/portal-backend/pkg/errors"
)

var reportHeader = []string{"cid", "uid", "role", "start_year", "end_year", "approved", "poc"}

// ReportFilter narrows the CSV report to current roles, past roles, or both.
type ReportFilter string

const (
	ReportFilterAll     ReportFilter = "all"
	ReportFilterCurrent ReportFilter = "current"
	ReportFilterPast    ReportFilter = "past"
)

// ParseReportFilter maps a query value onto a filter, defaulting to all.
func ParseReportFilter(value string) (ReportFilter, error) {
	switch ReportFilter(value) {
	case "", ReportFilterAll:
		return ReportFilterAll, nil
	case ReportFilterCurrent:
		return ReportFilterCurrent, nil
	case ReportFilterPast:
		return ReportFilterPast, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "filter must be one of all, current, past")
}

func (f ReportFilter) includes(role models.RoleRecord) bool {
	switch f {
	case ReportFilterCurrent:
		return role.EndYear == nil
	case ReportFilterPast:
		return role.EndYear != nil
	}
	return true
}

// WriteMembersCSV streams a council-facing CSV of a club's member roles.
// Deleted roles are excluded; pending and rejected roles are included since
// the report is council-only.
func (s *service) WriteMembersCSV(ctx context.Context, caller auth.Caller, cid string, filter ReportFilter, w io.Writer) error {
	if err := s.authorizeCouncil(caller); err != nil {
		return err
	}

	rows, err := s.repo.ListByClub(ctx, cid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list club members")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write report header")
	}
	for i := range rows {
		member := &rows[i]
		for _, role := range member.Roles {
			if role.Deleted || !filter.includes(role) {
				continue
			}
			endYear := ""
			if role.EndYear != nil {
				endYear = strconv.Itoa(*role.EndYear)
			}
			record := []string{
				member.CID,
				member.UID,
				role.Name,
				strconv.Itoa(role.StartYear),
				endYear,
				strconv.FormatBool(role.Approved),
				strconv.FormatBool(member.POC),
			}
			if err := writer.Write(record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write report row")
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush report")
	}
	return nil
}
