package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
)

const (
	defaultJobPageSize = 50
	maxJobPageSize     = 500
)

// jobSortColumns whitelists the sortable job columns.
var jobSortColumns = map[string]string{
	"rank":       "status_rank",
	"job_no":     "job_no",
	"be_date":    "be_date",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"importer":   "importer",
	"year":       "year",
}

// buildJobFilterClause constructs the WHERE conditions for job listings
func buildJobFilterClause(filter domain.JobFilter, alias string, startIndex int) (string, []interface{}) {
	alias = normalizeAlias(alias)

	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if filter.Year != "" {
		clauses = append(clauses, fmt.Sprintf("%syear = $%d", alias, idx))
		args = append(args, filter.Year)
		idx++
	}

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("%sstatus = $%d", alias, idx))
		args = append(args, string(filter.Status))
		idx++
	}

	if filter.DetailedStatus != "" {
		clauses = append(clauses, fmt.Sprintf("%sdetailed_status = $%d", alias, idx))
		args = append(args, filter.DetailedStatus)
		idx++
	}

	if filter.Importer != "" {
		clauses = append(clauses, fmt.Sprintf("%simporter ILIKE $%d", alias, idx))
		args = append(args, "%"+filter.Importer+"%")
		idx++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(%[1]sjob_no ILIKE $%[2]d OR %[1]simporter ILIKE $%[2]d OR %[1]sbe_no ILIKE $%[2]d OR %[1]sawb_bl_no ILIKE $%[2]d OR %[1]scontainers::text ILIKE $%[2]d)",
			alias, idx))
		args = append(args, "%"+search+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildDashboardFilterClause constructs the extra conditions for dashboard aggregates
func buildDashboardFilterClause(filter *domain.DashboardFilter, alias string, startIndex int) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}
	alias = normalizeAlias(alias)

	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if filter.Year != "" {
		clauses = append(clauses, fmt.Sprintf("%syear = $%d", alias, idx))
		args = append(args, filter.Year)
		idx++
	}

	if filter.Importer != "" {
		clauses = append(clauses, fmt.Sprintf("%simporter ILIKE $%d", alias, idx))
		args = append(args, "%"+filter.Importer+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " AND " + strings.Join(clauses, " AND "), args
}

// buildJobOrderClause returns a stable ORDER BY, defaulting to status rank.
func buildJobOrderClause(filter domain.JobFilter, alias string) string {
	alias = normalizeAlias(alias)

	column, ok := jobSortColumns[strings.ToLower(filter.SortField)]
	if !ok {
		column = "status_rank"
	}

	direction := "ASC"
	if strings.EqualFold(filter.SortDirection, "desc") {
		direction = "DESC"
	}

	if column == "job_no" {
		return fmt.Sprintf(" ORDER BY %sjob_no %s, %sid", alias, direction, alias)
	}
	return fmt.Sprintf(" ORDER BY %s%s %s, %sjob_no ASC, %sid", alias, column, direction, alias, alias)
}

func normalizeAlias(alias string) string {
	if alias == "" {
		return ""
	}
	if !strings.HasSuffix(alias, ".") {
		return alias + "."
	}
	return alias
}
