package drift

import (
	"strings"

	"github.com/tordrt/schemadrift/internal/schema"
)

const (
	WarnTypeNarrowing  = "* Reducing the size of a data type, like converting BIGINT to INT or DATETIME to DATE, can cause truncation or loss of precision."
	WarnLengthDecrease = "* Reducing the length of CHAR, BINARY, BLOB, or TEXT columns can result in data truncation."
	WarnNotNull        = "* Setting a nullable column to NOT NULL may lead to constraint violations if any records contain null values."
)

// losslessTargets lists, per observed data type, the data types it can be
// converted to without losing any representable value.
var losslessTargets = map[string][]string{
	"tinyint":    {"smallint", "mediumint", "int", "bigint"},
	"smallint":   {"mediumint", "int", "bigint"},
	"mediumint":  {"int", "bigint"},
	"int":        {"bigint"},
	"tinytext":   {"text", "mediumtext", "longtext"},
	"text":       {"mediumtext", "longtext"},
	"mediumtext": {"longtext"},
	"date":       {"datetime"},
	"float":      {"double"},
}

// IsLossless reports whether converting a column from one data type to
// another keeps every existing value.
func IsLossless(from, to string) bool {
	for _, t := range losslessTargets[from] {
		if t == to {
			return true
		}
	}
	if from == "boolean" || from == "bool" {
		return strings.HasSuffix(to, "int")
	}
	// Anything but a blob or another text type widens into text.
	return strings.HasSuffix(to, "text") &&
		!strings.HasSuffix(from, "text") &&
		!strings.HasSuffix(from, "blob")
}

// Classify turns a column mismatch into the alteration that repairs it and
// decides whether that alteration may run without review.
func Classify(m ColumnSpecMismatch) *schema.ColumnModifySpec {
	spec := schema.NewColumnModifySpec(m.Table, m.Expected)
	spec.ObservedType = m.Observed.ColumnType

	if m.TypeMismatch {
		spec.AlterType = true
		switch {
		case m.DataTypeMismatch:
			if !IsLossless(m.Observed.DataType, m.Expected.DataType) {
				spec.Warn(WarnTypeNarrowing)
			}
		case m.LengthMismatch:
			if truncatesOnShrink(m.Expected.DataType) && expectedLength(m.Expected) < m.ObservedLength() {
				spec.Warn(WarnLengthDecrease)
			}
		}
	}

	if m.NullableMismatch {
		spec.AlterNullable = true
		if m.Observed.Nullable {
			spec.Warn(WarnNotNull)
		}
	}

	if m.DefaultMismatch {
		spec.AlterDefault = true
	}

	return spec
}

func truncatesOnShrink(dataType string) bool {
	return strings.HasSuffix(dataType, "text") ||
		strings.HasSuffix(dataType, "char") ||
		strings.HasSuffix(dataType, "binary") ||
		dataType == "blob"
}
