// Package query builds parameterized SELECT statements from a projection of
// view names onto qualified columns, for PostgreSQL and SQLite.
package query

import "strings"

type projected struct {
	view   string
	column string
}

// ProjectionMap maps view property names (the names clients filter and sort
// by) onto the columns of one aliased table.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	order  []projected
	byView map[string]int
}

// NewProjectionMap creates a projection over schema.table aliased as alias.
// An empty schema omits the qualifier, which SQLite requires.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		byView: make(map[string]int),
	}
}

// Project maps column onto viewName. Columns keep their declaration order
// in SELECT and INSERT lists.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	p.byView[viewName] = len(p.order)
	p.order = append(p.order, projected{view: viewName, column: column})
	return p
}

// WithSchema returns a copy of the projection bound to a different schema.
func (p *ProjectionMap) WithSchema(schema string) *ProjectionMap {
	out := *p
	out.schema = schema
	return &out
}

func (p *ProjectionMap) Alias() string { return p.alias }

// Table returns the table reference without alias, for INSERT and UPDATE.
func (p *ProjectionMap) Table() string {
	if p.schema == "" {
		return p.table
	}
	return p.schema + "." + p.table
}

// From returns the aliased table reference for a FROM clause.
func (p *ProjectionMap) From() string {
	return p.Table() + " " + p.alias
}

// Column returns the qualified column for viewName. Unknown names are
// returned unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	i, ok := p.byView[viewName]
	if !ok {
		return viewName
	}
	return p.qualify(p.order[i].column)
}

// Known reports whether viewName is projected.
func (p *ProjectionMap) Known(viewName string) bool {
	_, ok := p.byView[viewName]
	return ok
}

// Columns returns the qualified SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ColumnList(), ", ")
}

func (p *ProjectionMap) ColumnList() []string {
	out := make([]string, len(p.order))
	for i, c := range p.order {
		out[i] = p.qualify(c.column)
	}
	return out
}

// InsertColumns returns the unqualified column names for an INSERT list.
func (p *ProjectionMap) InsertColumns() []string {
	out := make([]string, len(p.order))
	for i, c := range p.order {
		out[i] = c.column
	}
	return out
}

func (p *ProjectionMap) qualify(column string) string {
	return p.alias + "." + column
}
