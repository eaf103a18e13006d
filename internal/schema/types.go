package schema

const (
	// MaxIdentifierLength is the MySQL limit for index names.
	MaxIdentifierLength = 64

	DefaultVarcharLength int64 = 255
	BlobLength           int64 = 64000
	BigintDisplayLength  int64 = 20
	DefaultSRID                = 4326
)

// TableSpec is the expected shape of one table, derived from an entity
type TableSpec struct {
	Name           string
	Entity         string
	Columns        []ColumnSpec
	Indexes        []IndexSpec
	SpatialIndexes []SpatialIndexSpec
}

// Column returns the column with the given name
func (t TableSpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// PrimaryKey returns the primary key column, if the table has one
func (t TableSpec) PrimaryKey() (ColumnSpec, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// IndexSpec represents a secondary index.
// Columns is the verbatim, comma-joined column list and may carry sort
// directions ("a, b desc").
type IndexSpec struct {
	Name    string
	Columns string
	Unique  bool
}

// SpatialIndexSpec represents a spatial index over geometry columns
type SpatialIndexSpec struct {
	Name    string
	Columns string
}

// ObservedColumn is one column as reported by the live database catalog
type ObservedColumn struct {
	Name       string
	DataType   string
	ColumnType string
	Nullable   bool
	// CharMaxLength is nil when the catalog reports no character length.
	CharMaxLength *int64
	DefaultValue  *string
}

// ColumnModifySpec is a resolved column alteration plus its safety verdict.
type ColumnModifySpec struct {
	Table  string
	Target ColumnSpec

	AlterType     bool
	AlterNullable bool
	AlterDefault  bool

	// ObservedType is the full column type currently in the database,
	// e.g. "bigint(20) unsigned". Empty when unknown.
	ObservedType string

	warnings        []string
	autoFixDisabled bool
}

// NewColumnModifySpec starts an alteration of table towards target.
// Auto-fix starts enabled.
func NewColumnModifySpec(table string, target ColumnSpec) *ColumnModifySpec {
	return &ColumnModifySpec{Table: table, Target: target}
}

// ColumnType is the type a repair statement writes. The observed type is
// kept unless the type itself is altered.
func (m *ColumnModifySpec) ColumnType() string {
	if m.AlterType || m.ObservedType == "" {
		return m.Target.ColumnType()
	}
	return m.ObservedType
}

// Warn records an unsafe finding. Auto-fix stays disabled afterwards.
func (m *ColumnModifySpec) Warn(warning string) {
	m.warnings = append(m.warnings, warning)
	m.autoFixDisabled = true
}

// AutoFixEnabled reports whether the alteration may run without review
func (m *ColumnModifySpec) AutoFixEnabled() bool {
	return !m.autoFixDisabled
}

// Warnings returns the recorded warnings in order
func (m *ColumnModifySpec) Warnings() []string {
	return append([]string(nil), m.warnings...)
}
