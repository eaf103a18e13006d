// Package drift compares expected table specs with the live catalog and
// classifies the differences.
package drift

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tordrt/schemadrift/internal/schema"
)

// Catalog row keys, as returned by information_schema.columns.
const (
	KeyColumnName    = "COLUMN_NAME"
	KeyDataType      = "DATA_TYPE"
	KeyColumnType    = "COLUMN_TYPE"
	KeyIsNullable    = "IS_NULLABLE"
	KeyCharMaxLength = "CHARACTER_MAXIMUM_LENGTH"
	KeyColumnDefault = "COLUMN_DEFAULT"
)

// ObservedFromRow normalizes one raw catalog row.
func ObservedFromRow(row map[string]any) (schema.ObservedColumn, error) {
	name, ok := text(row[KeyColumnName])
	if !ok || name == "" {
		return schema.ObservedColumn{}, fmt.Errorf("catalog row without %s", KeyColumnName)
	}
	dataType, ok := text(row[KeyDataType])
	if !ok {
		return schema.ObservedColumn{}, fmt.Errorf("column %s: catalog row without %s", name, KeyDataType)
	}
	columnType, _ := text(row[KeyColumnType])
	nullable, _ := text(row[KeyIsNullable])

	col := schema.ObservedColumn{
		Name:       name,
		DataType:   strings.ToLower(dataType),
		ColumnType: strings.ToLower(columnType),
		Nullable:   strings.EqualFold(nullable, "YES"),
	}

	if raw, ok := text(row[KeyCharMaxLength]); ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return schema.ObservedColumn{}, fmt.Errorf("column %s: invalid %s %q: %w", name, KeyCharMaxLength, raw, err)
		}
		col.CharMaxLength = &n
	}
	if def, ok := text(row[KeyColumnDefault]); ok {
		col.DefaultValue = &def
	}

	return col, nil
}

// ObservedFromRows normalizes every row of one table.
func ObservedFromRows(rows []map[string]any) ([]schema.ObservedColumn, error) {
	cols := make([]schema.ObservedColumn, 0, len(rows))
	for _, row := range rows {
		c, err := ObservedFromRow(row)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// text renders a catalog value as a string. database/sql hands back
// []byte for most MySQL text columns; nil means absent.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case int:
		return strconv.Itoa(t), true
	default:
		return fmt.Sprint(t), true
	}
}
