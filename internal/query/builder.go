package query

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
)

type Meta struct {
	Pagination     Pagination                `json:"pagination"`
	FiltersApplied map[string]map[string]any `json:"filtersApplied"`
	SortApplied    SortSpec                  `json:"sortApplied"`
}

type Result[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// Builder composes filter, sort, projection, population and pagination
// stages over T. Stages only record what to do; Exec is the single place
// that touches the database. The first stage error sticks and is
// returned by Exec.
type Builder[T any] struct {
	db     *gorm.DB
	schema Schema
	params url.Values

	scopes    []func(*gorm.DB) *gorm.DB
	conds     []condition
	applied   map[string]map[string]any
	sortSpec  SortSpec
	columns   []string
	preloads  []Relation
	page      int
	limit     int
	paginated bool
	baseURL   string
	estimated bool
	err       error
}

// New expects db to be a root handle (not a chained query) so each stage
// can open its own session.
func New[T any](db *gorm.DB, schema Schema, params url.Values) *Builder[T] {
	if params == nil {
		params = url.Values{}
	}
	return &Builder[T]{
		db:       db,
		schema:   schema,
		params:   params,
		applied:  map[string]map[string]any{},
		sortSpec: append(SortSpec(nil), schema.DefaultSort...),
		page:     DefaultPage,
		limit:    DefaultLimit,
	}
}

// Where adds a fixed constraint that is not part of the client filters,
// such as scoping a listing to one device.
func (b *Builder[T]) Where(query any, args ...any) *Builder[T] {
	b.scopes = append(b.scopes, func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
	return b
}

func (b *Builder[T]) Filter() *Builder[T] {
	if b.err != nil {
		return b
	}
	conds, applied, err := parseConditions(b.schema, b.params)
	if err != nil {
		b.err = err
		return b
	}
	b.conds = conds
	b.applied = applied
	return b
}

// Sort reads "sort", falling back to sortBy/sortOrder and then to the
// schema default.
func (b *Builder[T]) Sort() *Builder[T] {
	if b.err != nil {
		return b
	}
	raw := b.params.Get("sort")
	if raw == "" {
		if by := strings.TrimSpace(b.params.Get("sortBy")); by != "" {
			order := strings.TrimSpace(b.params.Get("sortOrder"))
			if order == "" {
				order = "desc"
			}
			raw = by + ":" + order
		}
	}
	spec, err := parseSort(b.schema, raw)
	if err != nil {
		b.err = err
		return b
	}
	b.sortSpec = spec
	return b
}

// Select projects the listed fields. With no arguments it reads the
// comma separated "fields" parameter.
func (b *Builder[T]) Select(fields ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if len(fields) == 0 {
		fields = splitList(b.params.Get("fields"))
	}
	if len(fields) == 0 {
		return b
	}
	cols := []string{"id"}
	for _, f := range fields {
		fd, ok := b.schema.Fields[f]
		if !ok {
			b.err = httperr.Validation("invalid_fields", "unknown field "+f)
			return b
		}
		cols = append(cols, fd.Column)
	}
	b.columns = cols
	return b
}

// Populate expands relations. Names the schema does not know are ignored.
// With no arguments it reads the "populate" parameter.
func (b *Builder[T]) Populate(relations ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if len(relations) == 0 {
		relations = splitList(b.params.Get("populate"))
	}
	for _, name := range relations {
		rel, ok := b.schema.Relations[name]
		if !ok {
			continue
		}
		b.preloads = append(b.preloads, rel)
	}
	return b
}

// Paginate reads page and limit. "count=estimated" opts into the
// planner's row estimate for the total.
func (b *Builder[T]) Paginate() *Builder[T] {
	if b.err != nil {
		return b
	}
	page, limit, err := parsePageParams(b.params)
	if err != nil {
		b.err = err
		return b
	}
	switch strings.TrimSpace(b.params.Get("count")) {
	case "", "exact":
	case "estimated":
		b.estimated = true
	default:
		b.err = httperr.Validation("invalid_pagination", "count must be exact or estimated")
		return b
	}
	b.page, b.limit, b.paginated = page, limit, true
	return b
}

// WithBaseURL makes previous/next links carry a full URL.
func (b *Builder[T]) WithBaseURL(u string) *Builder[T] {
	b.baseURL = u
	return b
}

func (b *Builder[T]) Err() error { return b.err }

// Page returns the pagination values in effect.
func (b *Builder[T]) Page() (page, limit int) { return b.page, b.limit }

func (b *Builder[T]) constrained(db *gorm.DB) *gorm.DB {
	db = db.Model(new(T))
	for _, s := range b.scopes {
		db = s(db)
	}
	dialect := db.Dialector.Name()
	for _, c := range b.conds {
		db = db.Where(c.expression(dialect))
	}
	return db
}

func (b *Builder[T]) dataQuery(db *gorm.DB) *gorm.DB {
	q := b.constrained(db)
	if len(b.columns) > 0 {
		cols := b.columns
		for _, rel := range b.preloads {
			if rel.ForeignKey != "" {
				cols = append(cols, rel.ForeignKey)
			}
		}
		q = q.Select(cols)
	}
	for _, rel := range b.preloads {
		columns := rel.Columns
		q = q.Preload(rel.Preload, func(tx *gorm.DB) *gorm.DB {
			if len(columns) == 0 {
				return tx
			}
			return tx.Select(columns)
		})
	}
	for _, o := range b.sortSpec.orderBy(b.schema) {
		q = q.Order(o)
	}
	// tie-breaker keeps pages stable when sort keys repeat
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	if b.paginated {
		q = q.Offset((b.page - 1) * b.limit).Limit(b.limit)
	}
	return q
}

// count reports whether the total is exact.
func (b *Builder[T]) count(ctx context.Context) (int64, bool, error) {
	db := b.db.WithContext(ctx)
	if b.estimated && len(b.scopes) == 0 && len(b.conds) == 0 && db.Dialector.Name() == "postgres" {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(new(T)); err == nil {
			var est float64
			err := db.Raw("SELECT reltuples FROM pg_class WHERE relname = ?", stmt.Schema.Table).Scan(&est).Error
			// 0 or -1 means the table was never analyzed
			if err == nil && est > 0 {
				return int64(est), false, nil
			}
		}
	}

	var total int64
	err := b.constrained(db).Count(&total).Error
	return total, true, err
}

// Exec runs the data query and the count concurrently.
func (b *Builder[T]) Exec(ctx context.Context) (*Result[T], error) {
	if b.err != nil {
		return nil, b.err
	}

	var (
		data  []T
		total int64
		exact bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.dataQuery(b.db.WithContext(gctx)).Find(&data).Error
	})
	g.Go(func() error {
		n, ok, err := b.count(gctx)
		total, exact = n, ok
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	limit := b.limit
	page := b.page
	if !b.paginated {
		page, limit = 1, int(total)
		if limit == 0 {
			limit = DefaultLimit
		}
	}

	pagination, err := paginate(page, limit, total, exact, b.baseURL, b.params)
	if err != nil {
		return nil, err
	}

	if data == nil {
		data = []T{}
	}

	return &Result[T]{
		Data: data,
		Meta: Meta{
			Pagination:     pagination,
			FiltersApplied: b.applied,
			SortApplied:    b.sortSpec,
		},
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
