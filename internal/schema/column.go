package schema

import (
	"fmt"
	"strings"
)

// DecimalSize is the precision and scale of a fixed-point column
type DecimalSize struct {
	Precision int
	Scale     int
}

// ColumnSpec is the fully resolved expected definition of one column.
// At most one of Length, Decimal and SRID is set.
//
// Values produced by ColumnBuilder.Build carry a precomputed column type;
// literal values compute it on each call to ColumnType.
type ColumnSpec struct {
	Name     string
	DataType string
	Length   int64 // 0 means unset
	Decimal  *DecimalSize
	SRID     int // 0 means unset

	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	DefaultValue  *string
	Comment       string

	columnType string
}

// ColumnType returns the full type text, e.g. varchar(64), decimal(10,2) or date
func (c ColumnSpec) ColumnType() string {
	if c.columnType != "" {
		return c.columnType
	}
	return formatColumnType(c.DataType, c.Length, c.Decimal)
}

func formatColumnType(dataType string, length int64, dec *DecimalSize) string {
	switch {
	case dec != nil:
		return fmt.Sprintf("%s(%d,%d)", dataType, dec.Precision, dec.Scale)
	case length > 0:
		return fmt.Sprintf("%s(%d)", dataType, length)
	default:
		return dataType
	}
}

// ColumnBuilder accumulates column properties. Build validates them and
// returns an immutable ColumnSpec; the builder is not used afterwards.
type ColumnBuilder struct {
	spec ColumnSpec
	err  error
}

// NewColumnBuilder starts a nullable column with the given name
func NewColumnBuilder(name string) *ColumnBuilder {
	return &ColumnBuilder{spec: ColumnSpec{Name: name, Nullable: true}}
}

func (b *ColumnBuilder) fail(reason string) {
	if b.err == nil {
		b.err = &ConfigurationError{Field: b.spec.Name, Reason: reason}
	}
}

// DataType sets the lower-cased SQL data type
func (b *ColumnBuilder) DataType(t string) *ColumnBuilder {
	b.spec.DataType = strings.ToLower(strings.TrimSpace(t))
	return b
}

// Length sets the storage or display length and clears precision and srid
func (b *ColumnBuilder) Length(n int64) *ColumnBuilder {
	b.spec.Length = n
	b.spec.Decimal = nil
	b.spec.SRID = 0
	return b
}

// Decimal sets precision and scale and clears length and srid
func (b *ColumnBuilder) Decimal(precision, scale int) *ColumnBuilder {
	b.spec.Decimal = &DecimalSize{Precision: precision, Scale: scale}
	b.spec.Length = 0
	b.spec.SRID = 0
	return b
}

// SRID sets the spatial reference id and clears length and precision
func (b *ColumnBuilder) SRID(srid int) *ColumnBuilder {
	b.spec.SRID = srid
	b.spec.Length = 0
	b.spec.Decimal = nil
	return b
}

// PrimaryKey marks the column as the primary key. The column becomes
// NOT NULL and loses any default.
func (b *ColumnBuilder) PrimaryKey(autoIncrement bool) *ColumnBuilder {
	b.spec.PrimaryKey = true
	b.spec.AutoIncrement = autoIncrement
	b.spec.Nullable = false
	b.spec.DefaultValue = nil
	return b
}

// IsPrimaryKey reports whether PrimaryKey has been called
func (b *ColumnBuilder) IsPrimaryKey() bool {
	return b.spec.PrimaryKey
}

// Nullable sets nullability. Making a primary key nullable is an error.
func (b *ColumnBuilder) Nullable(nullable bool) *ColumnBuilder {
	if nullable && b.spec.PrimaryKey {
		b.fail("primary key column cannot be nullable")
		return b
	}
	b.spec.Nullable = nullable
	return b
}

// Default sets the default value. A primary key cannot carry one.
func (b *ColumnBuilder) Default(v string) *ColumnBuilder {
	if b.spec.PrimaryKey {
		b.fail("primary key column cannot have a default value")
		return b
	}
	b.spec.DefaultValue = &v
	return b
}

func (b *ColumnBuilder) Comment(c string) *ColumnBuilder {
	b.spec.Comment = c
	return b
}

// Build validates the accumulated properties and computes the column type
func (b *ColumnBuilder) Build() (ColumnSpec, error) {
	if b.err != nil {
		return ColumnSpec{}, b.err
	}
	if b.spec.Name == "" {
		return ColumnSpec{}, &ConfigurationError{Reason: "column name is empty"}
	}
	if b.spec.DataType == "" {
		return ColumnSpec{}, &ConfigurationError{Field: b.spec.Name, Reason: "column data type is empty"}
	}

	spec := b.spec
	if spec.DefaultValue != nil {
		v := *spec.DefaultValue
		spec.DefaultValue = &v
	}
	if spec.Decimal != nil {
		d := *spec.Decimal
		spec.Decimal = &d
	}
	spec.columnType = formatColumnType(spec.DataType, spec.Length, spec.Decimal)
	return spec, nil
}
