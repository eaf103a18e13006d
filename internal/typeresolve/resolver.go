// Package typeresolve maps entity field descriptors to SQL column types
// through an ordered, first-match rule chain.
package typeresolve

import (
	"math/bits"
	"strings"

	"github.com/tordrt/schemadrift/internal/entity"
	"github.com/tordrt/schemadrift/internal/schema"
)

const (
	// Text thresholds in characters.
	maxVarcharLength    int64 = 5000
	maxTextLength       int64 = 65535
	maxMediumTextLength int64 = 16777215

	defaultDecimalPrecision = 10
	defaultDecimalScale     = 2

	minEnumBytes int64 = 2
	uuidBytes    int64 = 16
	uuidChars    int64 = 36
)

// Resolution is the column type chosen for a field.
type Resolution struct {
	DataType string
	Length   int64
	Decimal  *schema.DecimalSize
	SRID     int

	// Nullable is set when the rule forces nullability, as geometry
	// columns do.
	Nullable *bool
}

// Rule claims a field when Match returns true; Build then yields its type.
type Rule struct {
	Name  string
	Match func(f entity.FieldDescriptor) bool
	Build func(f entity.FieldDescriptor) Resolution
}

// Resolver applies a fixed rule list in order. The first matching rule wins.
type Resolver struct {
	rules []Rule
}

// New creates a resolver over rules. The slice is copied.
func New(rules []Rule) *Resolver {
	return &Resolver{rules: append([]Rule(nil), rules...)}
}

// NewDefault creates a resolver over DefaultRules.
func NewDefault() *Resolver {
	return New(DefaultRules())
}

// Resolve returns the type of the first rule that claims f.
func (r *Resolver) Resolve(f entity.FieldDescriptor) (Resolution, error) {
	for _, rule := range r.rules {
		if rule.Match(f) {
			return rule.Build(f), nil
		}
	}
	return Resolution{}, &schema.ConfigurationError{
		Field:  f.Name,
		Reason: "cannot resolve column type for " + string(f.Type),
		Err:    schema.ErrNoMatchingRule,
	}
}

// DefaultRules returns the MySQL rule chain. Order is priority: a rule
// may assume every rule before it has already claimed its fields.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "type-override", Match: has(entity.KindTypeOverride), Build: typeOverride},
		{Name: "text", Match: isText, Build: text},
		{Name: "integer", Match: isType(entity.TypeSmallInteger, entity.TypeInteger, entity.TypeBigInteger), Build: integer},
		{Name: "temporal", Match: isType(entity.TypeDate, entity.TypeTime, entity.TypeTimestamp), Build: temporal},
		{Name: "enumeration", Match: isType(entity.TypeEnumeration), Build: enumeration},
		{Name: "floating", Match: isType(entity.TypeFloating, entity.TypeDoubleFloating), Build: floating},
		{Name: "boolean", Match: isType(entity.TypeBoolean), Build: sized("tinyint", 1)},
		{Name: "decimal", Match: either(isType(entity.TypeDecimal), has(entity.KindDecimalPrecision)), Build: decimal},
		{Name: "binary", Match: either(has(entity.KindHashDigest), has(entity.KindUUIDAsBinary)), Build: binary},
		{Name: "blob", Match: isType(entity.TypeRawByteArray, entity.TypeBinaryBlob), Build: sized("blob", schema.BlobLength)},
		{Name: "char", Match: either(isType(entity.TypeCharacter), has(entity.KindUUIDAsText)), Build: char},
		{Name: "geometry", Match: either(isType(entity.TypeGeometry), has(entity.KindGeo)), Build: geometry},
		{Name: "fallback", Match: func(entity.FieldDescriptor) bool { return true }, Build: sized("varchar", schema.DefaultVarcharLength)},
	}
}

func has(kind entity.ModifierKind) func(entity.FieldDescriptor) bool {
	return func(f entity.FieldDescriptor) bool { return f.Has(kind) }
}

func isType(types ...entity.SemanticType) func(entity.FieldDescriptor) bool {
	return func(f entity.FieldDescriptor) bool {
		for _, t := range types {
			if f.Type == t {
				return true
			}
		}
		return false
	}
}

func either(a, b func(entity.FieldDescriptor) bool) func(entity.FieldDescriptor) bool {
	return func(f entity.FieldDescriptor) bool { return a(f) || b(f) }
}

func sized(dataType string, length int64) func(entity.FieldDescriptor) Resolution {
	return func(entity.FieldDescriptor) Resolution {
		return Resolution{DataType: dataType, Length: length}
	}
}

func typeOverride(f entity.FieldDescriptor) Resolution {
	o, _ := entity.Find[entity.TypeOverride](f)
	res := Resolution{DataType: strings.ToLower(strings.TrimSpace(o.Type))}
	if o.Length > 0 {
		res.Length = o.Length
	}
	return res
}

func isText(f entity.FieldDescriptor) bool {
	return f.Has(entity.KindTextLengthHint) ||
		f.Has(entity.KindCharLength) ||
		f.Type == entity.TypeLongText ||
		f.Type == entity.TypeFixedText
}

func text(f entity.FieldDescriptor) Resolution {
	if hint, ok := entity.Find[entity.TextLengthHint](f); ok {
		n := hint.Estimated
		switch {
		case n <= maxVarcharLength:
			if n <= 0 {
				n = maxVarcharLength
			}
			return Resolution{DataType: "varchar", Length: n}
		case n <= maxTextLength:
			return Resolution{DataType: "text"}
		case n < maxMediumTextLength:
			return Resolution{DataType: "mediumtext"}
		default:
			return Resolution{DataType: "longtext"}
		}
	}

	if cl, ok := entity.Find[entity.CharLength](f); ok {
		n := cl.Length
		if n <= 0 {
			n = schema.DefaultVarcharLength
		}
		switch {
		case n > maxVarcharLength:
			return Resolution{DataType: "text"}
		case cl.Fixed:
			return Resolution{DataType: "char", Length: n}
		default:
			return Resolution{DataType: "varchar", Length: n}
		}
	}

	return Resolution{DataType: "text"}
}

func integer(f entity.FieldDescriptor) Resolution {
	switch f.Type {
	case entity.TypeSmallInteger:
		return Resolution{DataType: "smallint"}
	case entity.TypeBigInteger:
		return Resolution{DataType: "bigint", Length: schema.BigintDisplayLength}
	default:
		return Resolution{DataType: "int"}
	}
}

func temporal(f entity.FieldDescriptor) Resolution {
	switch f.Type {
	case entity.TypeDate:
		return Resolution{DataType: "date"}
	case entity.TypeTime:
		return Resolution{DataType: "time"}
	default:
		return Resolution{DataType: "datetime"}
	}
}

func enumeration(f entity.FieldDescriptor) Resolution {
	return Resolution{DataType: "tinyint", Length: EnumBytes(f.Enum)}
}

// EnumBytes returns the byte count needed for the value range of e,
// never less than 2 so it cannot be mistaken for a boolean.
func EnumBytes(e *entity.Enumeration) int64 {
	if e == nil {
		return minEnumBytes
	}

	rng := int64(e.Members)
	if len(e.Values) > 0 {
		lo, hi := int64(e.Values[0]), int64(e.Values[0])
		for _, v := range e.Values[1:] {
			lo = min(lo, int64(v))
			hi = max(hi, int64(v))
		}
		rng = hi - min(0, lo)
	}
	if rng <= 1 {
		return minEnumBytes
	}

	// ceil(log2(rng) / 8)
	n := int64((bits.Len64(uint64(rng-1)) + 7) / 8)
	return max(n, minEnumBytes)
}

func floating(f entity.FieldDescriptor) Resolution {
	if f.Type == entity.TypeDoubleFloating {
		return Resolution{DataType: "double"}
	}
	return Resolution{DataType: "float"}
}

func decimal(f entity.FieldDescriptor) Resolution {
	size := schema.DecimalSize{Precision: defaultDecimalPrecision, Scale: defaultDecimalScale}
	if dp, ok := entity.Find[entity.DecimalPrecision](f); ok {
		size = schema.DecimalSize{Precision: dp.Precision, Scale: dp.Scale}
	}
	return Resolution{DataType: "decimal", Decimal: &size}
}

func binary(f entity.FieldDescriptor) Resolution {
	if hd, ok := entity.Find[entity.HashDigest](f); ok {
		return Resolution{DataType: "binary", Length: hd.Algorithm.Bytes()}
	}
	return Resolution{DataType: "binary", Length: uuidBytes}
}

func char(f entity.FieldDescriptor) Resolution {
	if f.Has(entity.KindUUIDAsText) {
		return Resolution{DataType: "char", Length: uuidChars}
	}
	return Resolution{DataType: "char", Length: 1}
}

func geometry(f entity.FieldDescriptor) Resolution {
	kind := f.Geometry
	if kind == "" {
		kind = entity.GeometryAny
	}
	srid := schema.DefaultSRID
	nullable := false

	if geo, ok := entity.Find[entity.Geo](f); ok {
		if geo.Type != "" {
			kind = geo.Type
		}
		if geo.SRID > 0 {
			srid = geo.SRID
		}
		if geo.Nullable != nil {
			nullable = *geo.Nullable
		}
	}

	return Resolution{DataType: string(kind), SRID: srid, Nullable: &nullable}
}
