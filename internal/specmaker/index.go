package specmaker

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemadrift/internal/entity"
	"github.com/tordrt/schemadrift/internal/schema"
)

const (
	uniqueIndexPrefix  = "uk_"
	indexPrefix        = "idx_"
	spatialIndexPrefix = "sp_idx_"
)

// indexColumns returns the bare column names of a column list such as
// "a, b desc".
func indexColumns(list string) []string {
	var cols []string
	for _, part := range strings.Split(list, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		cols = append(cols, fields[0])
	}
	return cols
}

func indexName(explicit, prefix string, cols []string) string {
	name := strings.TrimSpace(explicit)
	if name == "" {
		name = prefix + strings.Join(cols, "_")
	}
	return truncateIdentifier(name, schema.MaxIdentifierLength)
}

func columnIndex(columns []schema.ColumnSpec) map[string]schema.ColumnSpec {
	byName := make(map[string]schema.ColumnSpec, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}
	return byName
}

func buildIndexes(columns []schema.ColumnSpec, decls []entity.IndexDecl) ([]schema.IndexSpec, error) {
	byName := columnIndex(columns)

	var indexes []schema.IndexSpec
	for _, decl := range decls {
		cols := indexColumns(decl.Columns)
		if len(cols) == 0 {
			return nil, &schema.ConfigurationError{Reason: "index column list is empty"}
		}

		for _, name := range cols {
			col, ok := byName[name]
			if !ok {
				return nil, &schema.ConfigurationError{Field: name, Reason: "index column not found"}
			}
			if decl.Unique && col.Nullable {
				return nil, &schema.ConfigurationError{Field: name, Reason: "unique index column must be not null"}
			}
		}

		prefix := indexPrefix
		if decl.Unique {
			prefix = uniqueIndexPrefix
		}
		indexes = append(indexes, schema.IndexSpec{
			Name:    indexName(decl.Name, prefix, cols),
			Columns: strings.TrimSpace(decl.Columns),
			Unique:  decl.Unique,
		})
	}
	return indexes, nil
}

func isGeometry(c schema.ColumnSpec) bool {
	return entity.IsGeometryKind(c.DataType)
}

func buildSpatialIndexes(columns []schema.ColumnSpec, decls []entity.IndexDecl, auto bool) ([]schema.SpatialIndexSpec, error) {
	var indexes []schema.SpatialIndexSpec
	put := func(idx schema.SpatialIndexSpec) {
		for i := range indexes {
			if indexes[i].Name == idx.Name {
				indexes[i] = idx
				return
			}
		}
		indexes = append(indexes, idx)
	}

	if auto {
		for _, c := range columns {
			if isGeometry(c) && !c.Nullable {
				put(schema.SpatialIndexSpec{
					Name:    truncateIdentifier(spatialIndexPrefix+c.Name, schema.MaxIdentifierLength),
					Columns: c.Name,
				})
			}
		}
	}

	byName := columnIndex(columns)
	for _, decl := range decls {
		cols := indexColumns(decl.Columns)
		if len(cols) == 0 {
			return nil, &schema.ConfigurationError{Reason: "spatial index column list is empty"}
		}
		for _, name := range cols {
			col, ok := byName[name]
			if !ok || !isGeometry(col) {
				return nil, &schema.ConfigurationError{Field: name, Reason: "spatial index column not found among geometry columns"}
			}
			if col.Nullable {
				return nil, &schema.ConfigurationError{Field: name, Reason: "spatial index column must be not null"}
			}
		}
		put(schema.SpatialIndexSpec{
			Name:    indexName(decl.Name, spatialIndexPrefix, cols),
			Columns: strings.TrimSpace(decl.Columns),
		})
	}
	return indexes, nil
}

// checkIndexNames rejects duplicate index names across both index kinds.
func checkIndexNames(t schema.TableSpec) error {
	seen := make(map[string]bool)
	check := func(name string) error {
		if seen[name] {
			return &schema.ConfigurationError{Reason: fmt.Sprintf("duplicate index name %s in table %s", name, t.Name)}
		}
		seen[name] = true
		return nil
	}

	for _, idx := range t.Indexes {
		if err := check(idx.Name); err != nil {
			return err
		}
	}
	for _, idx := range t.SpatialIndexes {
		if err := check(idx.Name); err != nil {
			return err
		}
	}
	return nil
}
