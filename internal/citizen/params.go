package citizen

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tauhid97k/voters-info-api/internal/validation"
	"github.com/tauhid97k/voters-info-api/pkg"
)

const (
	defaultPage  = 1
	defaultLimit = 15
	maxLimit     = 100
)

// sortColumns maps accepted sortBy values to their columns.
var sortColumns = map[string]string{
	"id":            "id",
	"name":          "name",
	"nid":           "nid",
	"date_of_birth": "date_of_birth",
	"gender":        "gender",
	"status":        "status",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

type AreaFilter struct {
	Column string
	ID     int
}

type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	// Area holds only the most specific of the requested area filters.
	Area   *AreaFilter
	Gender string
	Status Status
	// Search is matched against the NID, already in Bengali numerals.
	Search string
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseListParams reads the list query. Every invalid value is reported,
// not only the first.
func ParseListParams(query url.Values) (ListParams, []validation.FieldError) {
	var fieldErrors []validation.FieldError
	params := ListParams{
		SortBy:    "id",
		SortOrder: "desc",
	}

	page, ok := pkg.ParsePositiveInt(query.Get("page"), defaultPage)
	if !ok {
		fieldErrors = append(fieldErrors, validation.NewFieldError("page", "positive", "Page must be a positive number"))
	}
	params.Page = page

	limit, ok := pkg.ParsePositiveInt(query.Get("limit"), defaultLimit)
	if !ok {
		fieldErrors = append(fieldErrors, validation.NewFieldError("limit", "positive", "Limit must be a positive number"))
	}
	params.Limit = min(limit, maxLimit)

	if sortBy := query.Get("sortBy"); sortBy != "" {
		if _, ok := sortColumns[sortBy]; !ok {
			fieldErrors = append(fieldErrors, validation.NewFieldError("sortBy", "oneof", fmt.Sprintf("Cannot sort by %s", sortBy)))
		}
		params.SortBy = sortBy
	}

	if sortOrder := strings.ToLower(query.Get("sortOrder")); sortOrder != "" {
		if sortOrder != "asc" && sortOrder != "desc" {
			fieldErrors = append(fieldErrors, validation.NewFieldError("sortOrder", "oneof", "Sort order must be asc or desc"))
		}
		params.SortOrder = sortOrder
	}

	// a more specific area replaces a broader one
	for _, column := range []string{"upozilla_id", "union_id", "village_id"} {
		raw := query.Get(column)
		if raw == "" {
			continue
		}
		id, ok := pkg.ParsePositiveInt(raw, 0)
		if !ok {
			fieldErrors = append(fieldErrors, validation.NewFieldError(column, "positive", fmt.Sprintf("%s must be a positive number", column)))
			continue
		}
		params.Area = &AreaFilter{Column: column, ID: id}
	}

	params.Gender = strings.ToUpper(strings.TrimSpace(query.Get("gender")))

	if status := strings.ToUpper(strings.TrimSpace(query.Get("status"))); status != "" {
		params.Status = Status(status)
		if !params.Status.Valid() {
			fieldErrors = append(fieldErrors, validation.NewFieldError("status", "oneof", "Status must be one of RED YELLOW GREEN WHITE"))
		}
	}

	params.Search = pkg.ToBengaliDigits(strings.TrimSpace(query.Get("search")))

	return params, fieldErrors
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where renders the filter part of the list query with positional args.
func (p ListParams) where() (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if p.Area != nil {
		// column comes from a fixed list, never from the request
		add(p.Area.Column+" = $%d", p.Area.ID)
	}
	if p.Gender != "" {
		add("gender = $%d", p.Gender)
	}
	if p.Status != "" {
		add("status = $%d", string(p.Status))
	}
	if p.Search != "" {
		add("nid LIKE $%d", "%"+likeEscaper.Replace(p.Search)+"%")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (p ListParams) orderBy() string {
	column, ok := sortColumns[p.SortBy]
	if !ok {
		column = "id"
	}
	order := "DESC"
	if p.SortOrder == "asc" {
		order = "ASC"
	}
	if column == "id" {
		return fmt.Sprintf(" ORDER BY id %s", order)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, order, order)
}
