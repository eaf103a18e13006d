package entity

import "strings"

// ModifierKind identifies a declarative field modifier.
type ModifierKind string

const (
	KindPrimaryKey         ModifierKind = "primary-key"
	KindNotNull            ModifierKind = "not-null"
	KindIgnore             ModifierKind = "ignore"
	KindDefaultValue       ModifierKind = "default-value"
	KindLogicalDeleteFlag  ModifierKind = "logical-delete-flag"
	KindTypeOverride       ModifierKind = "type-override"
	KindTextLengthHint     ModifierKind = "text-length-hint"
	KindCharLength         ModifierKind = "char-length"
	KindDecimalPrecision   ModifierKind = "decimal-precision"
	KindGeo                ModifierKind = "geo"
	KindHashDigest         ModifierKind = "hash-digest"
	KindUUIDAsBinary       ModifierKind = "uuid-as-binary"
	KindUUIDAsText         ModifierKind = "uuid-as-text"
	KindExplicitColumnName ModifierKind = "explicit-column-name"
	KindComment            ModifierKind = "comment"
)

// Modifier is one tagged declarative directive attached to a field.
type Modifier interface {
	Kind() ModifierKind
}

type PrimaryKey struct {
	AutoIncrement bool `yaml:"auto_increment"`
}

type NotNull struct{}

type Ignore struct{}

type DefaultValue struct {
	Value string `yaml:"value"`
}

// LogicalDeleteFlag marks a soft-delete column; it defaults to "0".
type LogicalDeleteFlag struct{}

// TypeOverride replaces type inference entirely. Type is not validated.
type TypeOverride struct {
	Type   string `yaml:"type"`
	Length int64  `yaml:"length"`
}

type TextLengthHint struct {
	Estimated int64 `yaml:"estimated"`
}

type CharLength struct {
	Fixed  bool  `yaml:"fixed"`
	Length int64 `yaml:"length"`
}

type DecimalPrecision struct {
	Precision int `yaml:"precision"`
	Scale     int `yaml:"scale"`
}

// Geo declares a spatial column explicitly. A nil Nullable keeps the
// geometry default of NOT NULL.
type Geo struct {
	Type     GeometryKind `yaml:"type"`
	SRID     int          `yaml:"srid"`
	Nullable *bool        `yaml:"nullable"`
}

type HashDigest struct {
	Algorithm DigestAlgorithm `yaml:"algorithm"`
}

type UUIDAsBinary struct{}

type UUIDAsText struct{}

type ExplicitColumnName struct {
	Name string `yaml:"name"`
}

// Comment attaches a column comment.
type Comment struct {
	Text string `yaml:"text"`
}

func (PrimaryKey) Kind() ModifierKind         { return KindPrimaryKey }
func (NotNull) Kind() ModifierKind            { return KindNotNull }
func (Ignore) Kind() ModifierKind             { return KindIgnore }
func (DefaultValue) Kind() ModifierKind       { return KindDefaultValue }
func (LogicalDeleteFlag) Kind() ModifierKind  { return KindLogicalDeleteFlag }
func (TypeOverride) Kind() ModifierKind       { return KindTypeOverride }
func (TextLengthHint) Kind() ModifierKind     { return KindTextLengthHint }
func (CharLength) Kind() ModifierKind         { return KindCharLength }
func (DecimalPrecision) Kind() ModifierKind   { return KindDecimalPrecision }
func (Geo) Kind() ModifierKind                { return KindGeo }
func (HashDigest) Kind() ModifierKind         { return KindHashDigest }
func (UUIDAsBinary) Kind() ModifierKind       { return KindUUIDAsBinary }
func (UUIDAsText) Kind() ModifierKind         { return KindUUIDAsText }
func (ExplicitColumnName) Kind() ModifierKind { return KindExplicitColumnName }
func (Comment) Kind() ModifierKind            { return KindComment }

// DigestAlgorithm names a hash whose output is stored as fixed binary.
type DigestAlgorithm string

const (
	DigestMD5        DigestAlgorithm = "md5"
	DigestSHA1       DigestAlgorithm = "sha1"
	DigestSHA256     DigestAlgorithm = "sha256"
	DigestSHA384     DigestAlgorithm = "sha384"
	DigestSHA512     DigestAlgorithm = "sha512"
	DigestXXHash64   DigestAlgorithm = "xxhash64"
	DigestMurmur3128 DigestAlgorithm = "murmur3-128"
	DigestBlake2b256 DigestAlgorithm = "blake2b-256"
	DigestBlake2b512 DigestAlgorithm = "blake2b-512"
)

var digestBytes = map[DigestAlgorithm]int64{
	DigestMD5:        16,
	DigestSHA1:       20,
	DigestSHA256:     32,
	DigestSHA384:     48,
	DigestSHA512:     64,
	DigestXXHash64:   8,
	DigestMurmur3128: 16,
	DigestBlake2b256: 32,
	DigestBlake2b512: 64,
}

// Bytes returns the digest output size. Unknown or empty algorithms
// fall back to xxhash64.
func (a DigestAlgorithm) Bytes() int64 {
	if n, ok := digestBytes[DigestAlgorithm(strings.ToLower(string(a)))]; ok {
		return n
	}
	return digestBytes[DigestXXHash64]
}
