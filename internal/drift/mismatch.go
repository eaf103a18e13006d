package drift

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemadrift/internal/schema"
)

// Kind classifies a mismatch.
type Kind string

const (
	KindTableNotExist  Kind = "table-not-exist"
	KindColumnNotExist Kind = "column-not-exist"
	KindColumnSpec     Kind = "column-spec-mismatch"
)

// Mismatch is one difference between the expected and observed schema.
type Mismatch interface {
	Kind() Kind
	TableName() string
	Message() string
}

// TableNotExist reports a table that is absent from the catalog.
type TableNotExist struct {
	Table schema.TableSpec
}

func (m TableNotExist) Kind() Kind        { return KindTableNotExist }
func (m TableNotExist) TableName() string { return m.Table.Name }

func (m TableNotExist) Message() string {
	return fmt.Sprintf("Expect table `%s` but not found.", m.Table.Name)
}

// ColumnNotExist reports an expected column missing from an existing table.
type ColumnNotExist struct {
	Table  string
	Column schema.ColumnSpec
}

func (m ColumnNotExist) Kind() Kind        { return KindColumnNotExist }
func (m ColumnNotExist) TableName() string { return m.Table }

func (m ColumnNotExist) Message() string {
	return fmt.Sprintf("Expect column `%s` in table `%s` but not found.", m.Column.Name, m.Table)
}

// ColumnSpecMismatch reports a column whose type, nullability or default
// differs from the expected column.
type ColumnSpecMismatch struct {
	Table    string
	Expected schema.ColumnSpec
	Observed schema.ObservedColumn

	// TypeMismatch is set for both data-type and length-only differences.
	TypeMismatch     bool
	DataTypeMismatch bool
	LengthMismatch   bool
	NullableMismatch bool
	DefaultMismatch  bool
}

func (m ColumnSpecMismatch) Kind() Kind        { return KindColumnSpec }
func (m ColumnSpecMismatch) TableName() string { return m.Table }

// ObservedLength returns the catalog character length, or 0 when absent.
func (m ColumnSpecMismatch) ObservedLength() int64 {
	if m.Observed.CharMaxLength == nil {
		return 0
	}
	return *m.Observed.CharMaxLength
}

func (m ColumnSpecMismatch) Message() string {
	var lines []string
	if m.TypeMismatch {
		lines = append(lines, fmt.Sprintf("* Column type not match: expected '%s', actual '%s'",
			m.Expected.ColumnType(), m.Observed.ColumnType))
	}
	if m.NullableMismatch {
		lines = append(lines, fmt.Sprintf("* Different nullable property: expected '%s', actual '%s'",
			yesNo(m.Expected.Nullable), yesNo(m.Observed.Nullable)))
	}
	if m.DefaultMismatch {
		lines = append(lines, fmt.Sprintf("* Default value not match: expected %s, actual %s",
			quoteOrNull(m.Expected.DefaultValue), quoteOrNull(m.Observed.DefaultValue)))
	}
	return fmt.Sprintf("Column `%s` in table `%s` has specification mismatch:\n%s",
		m.Expected.Name, m.Table, strings.Join(lines, "\n"))
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func quoteOrNull(s *string) string {
	if s == nil {
		return "<null>"
	}
	return "'" + *s + "'"
}
