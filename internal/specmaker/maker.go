// Package specmaker turns entity descriptions into table specifications.
package specmaker

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tordrt/schemadrift/internal/entity"
	"github.com/tordrt/schemadrift/internal/schema"
	"github.com/tordrt/schemadrift/internal/typeresolve"
)

// Maker builds column and table specs on top of a type resolver
type Maker struct {
	resolver *typeresolve.Resolver
	logger   *slog.Logger
}

// New creates a Maker. A nil logger means slog.Default().
func New(resolver *typeresolve.Resolver, logger *slog.Logger) *Maker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maker{resolver: resolver, logger: logger}
}

// BuildColumn resolves the type of f and applies the column-level rules:
// naming, primary key, logical-delete default, not-null and default value.
func (m *Maker) BuildColumn(f entity.FieldDescriptor) (schema.ColumnSpec, error) {
	res, err := m.resolver.Resolve(f)
	if err != nil {
		return schema.ColumnSpec{}, err
	}

	name := ColumnName(f)
	m.logger.Debug("resolved field", "field", f.Name, "column", name, "data_type", res.DataType, "length", res.Length)

	b := schema.NewColumnBuilder(name).DataType(res.DataType)
	switch {
	case res.Decimal != nil:
		b.Decimal(res.Decimal.Precision, res.Decimal.Scale)
	case res.SRID > 0:
		b.SRID(res.SRID)
	case res.Length > 0:
		b.Length(res.Length)
	}
	if c, ok := entity.Find[entity.Comment](f); ok {
		b.Comment(c.Text)
	}

	if pk, ok := entity.Find[entity.PrimaryKey](f); ok {
		b.PrimaryKey(pk.AutoIncrement)
		if res.Nullable != nil {
			b.Nullable(*res.Nullable)
		}
		return b.Build()
	}

	if f.Has(entity.KindLogicalDeleteFlag) {
		b.Default("0")
	}
	if f.Has(entity.KindNotNull) {
		b.Nullable(false)
	}
	if dv, ok := entity.Find[entity.DefaultValue](f); ok {
		b.Default(dv.Value)
	}
	// Geometry nullability is decided by the resolver and overrides not-null.
	if res.Nullable != nil {
		b.Nullable(*res.Nullable)
	}

	return b.Build()
}

// BuildTableSpec builds the table of one entity. Fields are ordered by
// inheritance depth, then declaration order; ignored fields are skipped.
func (m *Maker) BuildTableSpec(e entity.Entity) (schema.TableSpec, error) {
	fields := make([]entity.FieldDescriptor, 0, len(e.Fields))
	for _, f := range e.Fields {
		if !f.Has(entity.KindIgnore) {
			fields = append(fields, f)
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Depth < fields[j].Depth
	})

	table := schema.TableSpec{
		Name:   TableName(e),
		Entity: e.Name,
	}

	var primaryKeys []string
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		col, err := m.BuildColumn(f)
		if err != nil {
			return schema.TableSpec{}, withEntity(err, e.Name)
		}
		if names[col.Name] {
			return schema.TableSpec{}, &schema.ConfigurationError{Entity: e.Name, Field: f.Name, Reason: "duplicate column " + col.Name}
		}
		names[col.Name] = true
		if col.PrimaryKey {
			primaryKeys = append(primaryKeys, col.Name)
		}
		table.Columns = append(table.Columns, col)
	}
	if len(primaryKeys) > 1 {
		return schema.TableSpec{}, &schema.ConfigurationError{
			Entity: e.Name,
			Reason: fmt.Sprintf("multiple primary keys: %v", primaryKeys),
		}
	}

	indexes, err := buildIndexes(table.Columns, e.Indexes)
	if err != nil {
		return schema.TableSpec{}, withEntity(err, e.Name)
	}
	table.Indexes = indexes

	spatial, err := buildSpatialIndexes(table.Columns, e.SpatialIndexes, e.AutoSpatialIndex)
	if err != nil {
		return schema.TableSpec{}, withEntity(err, e.Name)
	}
	table.SpatialIndexes = spatial

	if err := checkIndexNames(table); err != nil {
		return schema.TableSpec{}, withEntity(err, e.Name)
	}

	m.logger.Debug("built table spec", "entity", e.Name, "table", table.Name,
		"columns", len(table.Columns), "indexes", len(table.Indexes), "spatial_indexes", len(table.SpatialIndexes))
	return table, nil
}

// BuildAll builds every entity and stops at the first error.
func (m *Maker) BuildAll(entities []entity.Entity) ([]schema.TableSpec, error) {
	tables := make([]schema.TableSpec, 0, len(entities))
	seen := make(map[string]string)
	for _, e := range entities {
		t, err := m.BuildTableSpec(e)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[t.Name]; ok {
			return nil, &schema.ConfigurationError{
				Entity: e.Name,
				Reason: fmt.Sprintf("table %s is already mapped by entity %s", t.Name, other),
			}
		}
		seen[t.Name] = e.Name
		tables = append(tables, t)
	}
	return tables, nil
}

func withEntity(err error, name string) error {
	var cfgErr *schema.ConfigurationError
	if errors.As(err, &cfgErr) && cfgErr.Entity == "" {
		cfgErr.Entity = name
	}
	return err
}
