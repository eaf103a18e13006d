package specmaker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tordrt/schemadrift/internal/entity"
)

// SnakeCase inserts an underscore before every upper-case letter that
// follows a lower-case one and lower-cases that letter: userName becomes
// user_name. Other characters are kept as they are.
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	prevLower := false
	for _, r := range s {
		if prevLower && unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prevLower = unicode.IsLower(r)
	}
	return b.String()
}

// TableName returns the explicit table name of e if set, otherwise the
// table prefix followed by the snake_case entity name, lower-cased.
func TableName(e entity.Entity) string {
	if strings.TrimSpace(e.TableName) != "" {
		return e.TableName
	}
	return e.TablePrefix + strings.ToLower(SnakeCase(e.Name))
}

// ColumnName returns the explicit column name of f if set, otherwise the
// snake_case field name.
func ColumnName(f entity.FieldDescriptor) string {
	if n, ok := entity.Find[entity.ExplicitColumnName](f); ok && strings.TrimSpace(n.Name) != "" {
		return n.Name
	}
	return SnakeCase(f.Name)
}

// truncateIdentifier keeps the first limit characters of name.
func truncateIdentifier(name string, limit int) string {
	if utf8.RuneCountInString(name) <= limit {
		return name
	}
	n := 0
	for i := range name {
		if n == limit {
			return name[:i]
		}
		n++
	}
	return name
}
