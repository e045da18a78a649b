// Package pagination turns `page`, `size`, `sort` and `field__op=value` query
// parameters into GORM clauses restricted to a per-resource field whitelist.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultSize = 50
	MaxSize     = 100
)

var (
	ErrUnknownField    = errors.New("unknown filter or sort field")
	ErrUnknownOperator = errors.New("unknown filter operator")
	ErrInvalidValue    = errors.New("invalid filter value")
)

type Kind int

const (
	String Kind = iota
	Int
	Decimal
	Bool
	Time
)

// Field maps a public query name onto a column.
type Field struct {
	Column string
	Kind   Kind
}

type Fields map[string]Field

type Filter struct {
	Field string
	Op    string
	Value any
}

type Sort struct {
	Field string
	Desc  bool
}

type Params struct {
	Page    int
	Size    int
	Filters []Filter
	Sorts   []Sort
}

// Page is the response envelope for every list endpoint.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

var operators = map[string]string{
	"eq":   "=",
	"neq":  "<>",
	"gt":   ">",
	"gte":  ">=",
	"lt":   "<",
	"lte":  "<=",
	"like": "LIKE",
	"in":   "IN",
}

// Parse reads paging, sorting and filtering parameters. Every filter and sort
// field must be present in allowed.
func Parse(values url.Values, allowed Fields) (Params, error) {
	p := Params{Page: 1, Size: DefaultSize}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, fmt.Errorf("%w: page must be a positive integer", ErrInvalidValue)
		}
		p.Page = page
	}
	if raw := values.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > MaxSize {
			return p, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidValue, MaxSize)
		}
		p.Size = size
	}

	if raw := values.Get("sort"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, dir, _ := strings.Cut(part, "__")
			if _, ok := allowed[name]; !ok {
				return p, fmt.Errorf("%w: %s", ErrUnknownField, name)
			}
			switch dir {
			case "", "asc":
				p.Sorts = append(p.Sorts, Sort{Field: name})
			case "desc":
				p.Sorts = append(p.Sorts, Sort{Field: name, Desc: true})
			default:
				return p, fmt.Errorf("%w: sort direction %q", ErrUnknownOperator, dir)
			}
		}
	}

	for key, vals := range values {
		if key == "page" || key == "size" || key == "sort" || len(vals) == 0 {
			continue
		}
		name, op, found := strings.Cut(key, "__")
		if !found {
			op = "eq"
		}
		field, ok := allowed[name]
		if !ok {
			return p, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if _, ok := operators[op]; !ok {
			return p, fmt.Errorf("%w: %s", ErrUnknownOperator, op)
		}

		value, err := convert(field.Kind, op, vals[0])
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		p.Filters = append(p.Filters, Filter{Field: name, Op: op, Value: value})
	}

	return p, nil
}

func convert(kind Kind, op, raw string) (any, error) {
	if op == "like" {
		return "%" + raw + "%", nil
	}
	if op == "in" {
		var out []any
		for _, part := range strings.Split(raw, ",") {
			v, err := convertOne(kind, strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return convertOne(kind, raw)
}

func convertOne(kind Kind, raw string) (any, error) {
	switch kind {
	case Int:
		return strconv.ParseInt(raw, 10, 64)
	case Decimal:
		return decimal.NewFromString(raw)
	case Bool:
		return strconv.ParseBool(raw)
	case Time:
		return time.Parse(time.RFC3339, raw)
	default:
		return raw, nil
	}
}

// Apply adds the filter and sort clauses to db. Results are always ordered by
// id last so pages are stable.
func (p Params) Apply(db *gorm.DB, allowed Fields) *gorm.DB {
	for _, f := range p.Filters {
		column := allowed[f.Field].Column
		db = db.Where(fmt.Sprintf("%s %s ?", column, operators[f.Op]), f.Value)
	}
	for _, s := range p.Sorts {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: allowed[s.Field].Column}, Desc: s.Desc})
	}
	return db.Order(clause.OrderByColumn{Column: clause.PrimaryColumn})
}

// Paginate counts the filtered rows and loads the requested page into a Page.
func Paginate[T any](db *gorm.DB, p Params, allowed Fields) (Page[T], error) {
	page := Page[T]{Items: []T{}, Page: p.Page, Size: p.Size}

	query := p.Apply(db, allowed).Session(&gorm.Session{})

	var model T
	if err := query.Model(&model).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count: %w", err)
	}
	if err := query.Offset((p.Page - 1) * p.Size).Limit(p.Size).Find(&page.Items).Error; err != nil {
		return page, fmt.Errorf("find page: %w", err)
	}
	page.Pages = int(math.Ceil(float64(page.Total) / float64(p.Size)))
	return page, nil
}
