package entity

// SemanticType is the declared kind of an entity field, independent of any SQL type.
type SemanticType string

const (
	TypeSmallInteger   SemanticType = "small-integer"
	TypeInteger        SemanticType = "integer"
	TypeBigInteger     SemanticType = "big-integer"
	TypeFloating       SemanticType = "floating"
	TypeDoubleFloating SemanticType = "double-floating"
	TypeDecimal        SemanticType = "decimal"
	TypeBoolean        SemanticType = "boolean"
	TypeCharacter      SemanticType = "character"
	TypeFixedText      SemanticType = "fixed-text" // character array, stored as text
	TypeVariableText   SemanticType = "variable-text"
	TypeLongText       SemanticType = "long-text"
	TypeDate           SemanticType = "date"
	TypeTime           SemanticType = "time"
	TypeTimestamp      SemanticType = "timestamp"
	TypeBinaryBlob     SemanticType = "binary-blob"
	TypeEnumeration    SemanticType = "enumeration"
	TypeGeometry       SemanticType = "geometry"
	TypeRawByteArray   SemanticType = "raw-byte-array"
)

// AllSemanticTypes lists every declared type the loader accepts.
var AllSemanticTypes = []SemanticType{
	TypeSmallInteger,
	TypeInteger,
	TypeBigInteger,
	TypeFloating,
	TypeDoubleFloating,
	TypeDecimal,
	TypeBoolean,
	TypeCharacter,
	TypeFixedText,
	TypeVariableText,
	TypeLongText,
	TypeDate,
	TypeTime,
	TypeTimestamp,
	TypeBinaryBlob,
	TypeEnumeration,
	TypeGeometry,
	TypeRawByteArray,
}

// GeometryKind names a spatial SQL type.
type GeometryKind string

const (
	GeometryAny                GeometryKind = "geometry"
	GeometryPoint              GeometryKind = "point"
	GeometryLineString         GeometryKind = "linestring"
	GeometryPolygon            GeometryKind = "polygon"
	GeometryMultiPoint         GeometryKind = "multipoint"
	GeometryMultiLineString    GeometryKind = "multilinestring"
	GeometryMultiPolygon       GeometryKind = "multipolygon"
	GeometryGeometryCollection GeometryKind = "geometrycollection"
)

// GeometryKinds is the set of spatial types a geometry column may take.
var GeometryKinds = []GeometryKind{
	GeometryAny,
	GeometryPoint,
	GeometryLineString,
	GeometryPolygon,
	GeometryMultiPoint,
	GeometryMultiLineString,
	GeometryMultiPolygon,
	GeometryGeometryCollection,
}

// IsGeometryKind reports whether s names a spatial SQL type.
func IsGeometryKind(s string) bool {
	for _, k := range GeometryKinds {
		if string(k) == s {
			return true
		}
	}
	return false
}

// Enumeration describes the member set of an enumeration-typed field.
//
// Values is populated only when the enumeration maps members to explicit
// integers; otherwise the stored range is derived from Members.
type Enumeration struct {
	Members int   `yaml:"members"`
	Values  []int `yaml:"values,omitempty"`
}

// FieldDescriptor is the read-only view of one entity attribute.
type FieldDescriptor struct {
	Name      string
	Type      SemanticType
	Geometry  GeometryKind // only for TypeGeometry
	Enum      *Enumeration // only for TypeEnumeration
	Modifiers []Modifier

	// Depth is the inheritance depth of the declaring entity; 0 is the root.
	Depth int
}

// Has reports whether the field carries a modifier of the given kind.
func (f FieldDescriptor) Has(kind ModifierKind) bool {
	for _, m := range f.Modifiers {
		if m.Kind() == kind {
			return true
		}
	}
	return false
}

// Find returns the first modifier of type T attached to f.
func Find[T Modifier](f FieldDescriptor) (T, bool) {
	for _, m := range f.Modifiers {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// IndexDecl is a table-level index declaration.
//
// Columns is the verbatim column list, e.g. "username, created_at desc".
type IndexDecl struct {
	Name    string `yaml:"name,omitempty"`
	Columns string `yaml:"columns"`
	Unique  bool   `yaml:"unique,omitempty"`
}

// Entity is one data-holding type that maps to a single table.
type Entity struct {
	Name        string
	TableName   string
	TablePrefix string
	Fields      []FieldDescriptor

	Indexes        []IndexDecl
	SpatialIndexes []IndexDecl

	// AutoSpatialIndex synthesizes a spatial index for every non-nullable
	// geometry column.
	AutoSpatialIndex bool
}
