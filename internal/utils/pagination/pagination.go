package pagination

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	dateLayout   = "2006-01-02"
)

type Pagination struct {
	Page   int
	Limit  int
	Offset int
	Total  int64
}

// Query is a parsed list request: pagination plus whitelisted equality filters,
// an optional created_at range and a sort column.
type Query struct {
	Pagination
	Filters map[string]string
	From    *time.Time
	To      *time.Time
	Search  string
	Sort    string
	Desc    bool
}

// ParseFromRequest handles pagination parameters from Fiber context
func ParseFromRequest(c *fiber.Ctx) Pagination {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// ParseQuery reads pagination, the allowed filters and the sort parameter
// ("field" ascending, "-field" descending). Unknown filters and sorts are ignored.
func ParseQuery(c *fiber.Ctx, filters []string, sorts []string) Query {
	q := Query{
		Pagination: ParseFromRequest(c),
		Filters:    make(map[string]string),
		Search:     strings.TrimSpace(c.Query("q")),
		Sort:       "created_at",
		Desc:       true,
	}

	for _, f := range filters {
		if v := strings.TrimSpace(c.Query(f)); v != "" {
			q.Filters[f] = v
		}
	}

	if from, err := time.Parse(dateLayout, c.Query("from")); err == nil {
		q.From = &from
	}
	if to, err := time.Parse(dateLayout, c.Query("to")); err == nil {
		end := to.Add(24 * time.Hour)
		q.To = &end
	}

	if s := c.Query("sort"); s != "" {
		desc := strings.HasPrefix(s, "-")
		field := strings.TrimPrefix(s, "-")
		if slices.Contains(sorts, field) {
			q.Sort = field
			q.Desc = desc
		}
	}
	return q
}

// NewQuery builds a first-page query, used by services and tests.
func NewQuery(filters map[string]string) Query {
	if filters == nil {
		filters = map[string]string{}
	}
	return Query{
		Pagination: Pagination{Page: 1, Limit: DefaultLimit},
		Filters:    filters,
		Sort:       "created_at",
		Desc:       true,
	}
}

// Filter applies equality filters and the date range. Column names come from
// the whitelist passed to ParseQuery, never from raw input.
func (q Query) Filter(db *gorm.DB) *gorm.DB {
	for field, value := range q.Filters {
		db = db.Where(fmt.Sprintf("%s = ?", field), value)
	}
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at < ?", *q.To)
	}
	return db
}

// Page applies sort, limit and offset.
func (q Query) Page(db *gorm.DB) *gorm.DB {
	order := q.Sort
	if order == "" {
		order = "created_at"
	}
	tie := "id"
	if q.Desc {
		order += " DESC"
		tie += " DESC"
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	return db.Order(order).Order(tie).Limit(limit).Offset(q.Offset)
}

// Response creates a standardized pagination response
func Response(p Pagination, data interface{}) fiber.Map {
	limit := int64(p.Limit)
	if limit < 1 {
		limit = DefaultLimit
	}
	totalPages := p.Total / limit
	if p.Total%limit > 0 {
		totalPages++
	}

	return fiber.Map{
		"data": data,
		"meta": fiber.Map{
			"current_page": p.Page,
			"per_page":     p.Limit,
			"total_items":  p.Total,
			"total_pages":  totalPages,
		},
	}
}
