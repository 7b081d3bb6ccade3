package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ListParams struct {
	Status         *string
	Priority       *string
	AssignedTo     *uuid.UUID
	CompanyName    *string
	LeadSource     *string
	IsConverted    *bool
	Industry       *string
	RoleInDecision *string
	Classification *string
	Search         string
	Offset         int
	Limit          int
	SortBy         string
	SortOrder      string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn := mapLeadSortColumn(params.SortBy)
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)

	// id breaks ties so pages are stable.
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads
		WHERE %s
		ORDER BY %s %s, id %s
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, sortColumn, sortOrder, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	addILike := func(column string, value string) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s ILIKE $%d", column, argIdx))
		args = append(args, "%"+escapeLike(value)+"%")
		argIdx++
	}

	if params.Status != nil {
		addEquals("status", *params.Status)
	}
	if params.Priority != nil {
		addEquals("priority", *params.Priority)
	}
	if params.AssignedTo != nil {
		addEquals("assigned_to", *params.AssignedTo)
	}
	if params.CompanyName != nil {
		addILike("company_name", *params.CompanyName)
	}
	if params.LeadSource != nil {
		addEquals("lead_source", *params.LeadSource)
	}
	if params.IsConverted != nil {
		addEquals("is_converted", *params.IsConverted)
	}
	if params.Industry != nil {
		addILike("industry", *params.Industry)
	}
	if params.RoleInDecision != nil {
		addEquals("role_in_decision", *params.RoleInDecision)
	}
	if params.Classification != nil {
		addEquals("scoring_metadata->>'classification'", *params.Classification)
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR company_name ILIKE $%d OR notes ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "updated_at":
		return "updated_at"
	case "first_name":
		return "first_name"
	case "last_name":
		return "last_name"
	case "company_name", "company":
		return "company_name"
	case "lead_score":
		return "lead_score"
	default:
		return "created_at"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
