// Package render produces MySQL DDL for table specs and column alterations.
package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/tordrt/schemadrift/internal/schema"
)

const columnDefinition = `{{define "column"}}{{ident .Name}} {{.ColumnType}}{{if .Nullable}} null{{else}} not null{{end}}` +
	`{{with deref .DefaultValue}} default {{literal .}}{{end}}{{if .AutoIncrement}} auto_increment{{end}}` +
	`{{if .SRID}} /*!80003 srid {{.SRID}} */{{end}}{{with .Comment}} comment {{literal .}}{{end}}{{end}}`

const createTableTemplate = `{{if .DropIfExists}}drop table if exists {{ident .Table.Name}};
{{end}}create table {{ident .Table.Name}}
(
{{- range $i, $c := .Table.Columns}}{{if $i}},{{end}}
    {{template "column" $c}}
{{- end}}
{{- with .PrimaryKey}},
    primary key ({{ident .}})
{{- end}}
);
{{- range .Table.Indexes}}
create {{if .Unique}}unique {{end}}index {{ident .Name}} on {{ident $.Table.Name}} ({{.Columns}});
{{- end}}
{{- range .Table.SpatialIndexes}}
create spatial index {{ident .Name}} on {{ident $.Table.Name}} ({{.Columns}});
{{- end}}
`

const addColumnTemplate = `alter table {{ident .Table}} add column {{template "column" .Column}}` +
	`{{if .Column.PrimaryKey}} primary key{{end}};
`

const modifyColumnTemplate = `alter table {{ident .Table}} modify column {{template "column" .Column}};
`

var funcs = template.FuncMap{
	"ident":   QuoteIdentifier,
	"literal": QuoteLiteral,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

var templates = template.Must(template.New("mysql").Funcs(funcs).Parse(columnDefinition))

func init() {
	template.Must(templates.New("create").Parse(createTableTemplate))
	template.Must(templates.New("add").Parse(addColumnTemplate))
	template.Must(templates.New("modify").Parse(modifyColumnTemplate))
}

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteLiteral renders v as a single-quoted SQL string literal.
func QuoteLiteral(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// Options controls statement rendering
type Options struct {
	// DropIfExists prefixes every create table with drop table if exists.
	DropIfExists bool
}

// MySQL renders statements in the MySQL 5.7 dialect
type MySQL struct {
	opts Options
}

// NewMySQL creates a MySQL renderer
func NewMySQL(opts Options) *MySQL {
	return &MySQL{opts: opts}
}

// CreateTable renders the create table statement of t followed by its
// index statements.
func (r *MySQL) CreateTable(t schema.TableSpec) (string, error) {
	data := struct {
		Table        schema.TableSpec
		PrimaryKey   string
		DropIfExists bool
	}{Table: t, DropIfExists: r.opts.DropIfExists}
	if pk, ok := t.PrimaryKey(); ok {
		data.PrimaryKey = pk.Name
	}
	return execute("create", data)
}

// AddColumn renders an alter table statement adding column c to table
func (r *MySQL) AddColumn(table string, c schema.ColumnSpec) (string, error) {
	return execute("add", struct {
		Table  string
		Column schema.ColumnSpec
	}{table, c})
}

// modifiedColumn overrides the column type of a target definition.
type modifiedColumn struct {
	schema.ColumnSpec
	columnType string
}

func (c modifiedColumn) ColumnType() string {
	return c.columnType
}

// ModifyColumn renders an alter table statement that brings column to the
// target of m. MySQL requires the full column definition, so the whole
// target is emitted even when only one property changes; the column type
// stays as observed unless m alters it.
func (r *MySQL) ModifyColumn(table, column string, m *schema.ColumnModifySpec) (string, error) {
	target := m.Target
	target.Name = column
	return execute("modify", struct {
		Table  string
		Column modifiedColumn
	}{table, modifiedColumn{ColumnSpec: target, columnType: m.ColumnType()}})
}

func execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s statement: %w", name, err)
	}
	return b.String(), nil
}
