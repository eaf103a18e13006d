package drift

import (
	"strings"

	"github.com/tordrt/schemadrift/internal/schema"
)

// blobStorageLength is the catalog length of a BLOB column; MySQL stores
// blob(M) for any M up to it as a plain BLOB.
const blobStorageLength int64 = 65535

// Detect compares table with the observed columns of the same table.
// No observed columns means the table does not exist; no column checks
// are made in that case. Index drift is not checked.
func Detect(table schema.TableSpec, observed []schema.ObservedColumn) []Mismatch {
	if len(observed) == 0 {
		return []Mismatch{TableNotExist{Table: table}}
	}

	byName := make(map[string]schema.ObservedColumn, len(observed))
	for _, c := range observed {
		byName[c.Name] = c
	}

	var mismatches []Mismatch
	for _, expected := range table.Columns {
		actual, ok := byName[expected.Name]
		if !ok {
			mismatches = append(mismatches, ColumnNotExist{Table: table.Name, Column: expected})
			continue
		}
		if m, ok := CompareColumn(table.Name, expected, actual); ok {
			mismatches = append(mismatches, m)
		}
	}
	return mismatches
}

// CompareColumn reports whether actual differs from expected, and how.
func CompareColumn(table string, expected schema.ColumnSpec, actual schema.ObservedColumn) (ColumnSpecMismatch, bool) {
	m := ColumnSpecMismatch{Table: table, Expected: expected, Observed: actual}

	if expected.DataType != actual.DataType {
		m.TypeMismatch = true
		m.DataTypeMismatch = true
	} else if hasStorageLength(expected.DataType) && expectedLength(expected) != observedLength(actual) {
		m.TypeMismatch = true
		m.LengthMismatch = true
	}

	if expected.Nullable != actual.Nullable {
		m.NullableMismatch = true
	}

	switch {
	case actual.DefaultValue == nil:
		m.DefaultMismatch = expected.DefaultValue != nil && *expected.DefaultValue != ""
	case expected.DefaultValue == nil:
		m.DefaultMismatch = true
	default:
		m.DefaultMismatch = *expected.DefaultValue != *actual.DefaultValue
	}

	return m, m.TypeMismatch || m.NullableMismatch || m.DefaultMismatch
}

// hasStorageLength reports whether the catalog length of dataType is a
// real storage bound. Text lengths are unbounded and numeric lengths are
// display only.
func hasStorageLength(dataType string) bool {
	return strings.HasSuffix(dataType, "char") ||
		strings.HasSuffix(dataType, "binary") ||
		dataType == "blob"
}

func expectedLength(c schema.ColumnSpec) int64 {
	if c.DataType == "blob" && c.Length > 0 && c.Length <= blobStorageLength {
		return blobStorageLength
	}
	return c.Length
}

func observedLength(c schema.ObservedColumn) int64 {
	if c.CharMaxLength == nil {
		return 0
	}
	return *c.CharMaxLength
}
