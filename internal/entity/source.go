package entity

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Criteria selects which entity description files are read and which
// entities are returned.
type Criteria struct {
	// Paths are files or directories. Directories are walked for
	// *.yaml and *.yml files.
	Paths []string

	// Include filters entities by name using path.Match patterns.
	// Empty means all entities.
	Include []string
}

// document is the on-disk layout of an entity description file.
type document struct {
	Entities []entityDoc `yaml:"entities"`
}

type entityDoc struct {
	Name             string      `yaml:"name"`
	Extends          string      `yaml:"extends"`
	Abstract         bool        `yaml:"abstract"`
	Enabled          *bool       `yaml:"enabled"`
	Table            string      `yaml:"table"`
	TablePrefix      string      `yaml:"table_prefix"`
	AutoSpatialIndex *bool       `yaml:"auto_spatial_index"`
	Indexes          []IndexDecl `yaml:"indexes"`
	SpatialIndexes   []IndexDecl `yaml:"spatial_indexes"`
	Fields           []fieldDoc  `yaml:"fields"`

	source string
}

type fieldDoc struct {
	Name      string       `yaml:"name"`
	Type      string       `yaml:"type"`
	Geometry  string       `yaml:"geometry"`
	Enum      *Enumeration `yaml:"enum"`
	Persisted *bool        `yaml:"persisted"`
	Modifiers modifierList `yaml:"modifiers"`
}

// YAMLSource discovers entities from YAML description files.
type YAMLSource struct{}

// NewYAMLSource creates a new YAML entity source
func NewYAMLSource() *YAMLSource {
	return &YAMLSource{}
}

// Search loads every description file under criteria.Paths and returns the
// concrete, enabled entities in file and declaration order. Inherited
// fields come first and carry the depth of their declaring entity.
// Non-persisted and ignored fields are dropped.
func (s *YAMLSource) Search(ctx context.Context, criteria Criteria) ([]Entity, error) {
	files, err := collectFiles(criteria.Paths)
	if err != nil {
		return nil, err
	}

	var docs []entityDoc
	byName := make(map[string]*entityDoc)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	for i := range docs {
		d := &docs[i]
		if d.Name == "" {
			return nil, fmt.Errorf("%s: entity without a name", d.source)
		}
		if prev, ok := byName[d.Name]; ok {
			return nil, fmt.Errorf("entity %s declared twice (%s, %s)", d.Name, prev.source, d.source)
		}
		byName[d.Name] = d
	}

	var entities []Entity
	for i := range docs {
		d := &docs[i]
		if d.Abstract || d.Enabled != nil && !*d.Enabled {
			continue
		}
		if !included(d.Name, criteria.Include) {
			continue
		}
		e, err := resolve(d, byName)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return entities, nil
}

func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat entity path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(file string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			ext := strings.ToLower(filepath.Ext(file))
			if !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
				found = append(found, file)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func loadFile(file string) ([]entityDoc, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	for i := range doc.Entities {
		doc.Entities[i].source = file
	}
	return doc.Entities, nil
}

func included(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// resolve flattens the extends chain of d into a single Entity.
func resolve(d *entityDoc, byName map[string]*entityDoc) (Entity, error) {
	var chain []*entityDoc
	seen := make(map[string]bool)
	for cur := d; cur != nil; {
		if seen[cur.Name] {
			return Entity{}, fmt.Errorf("entity %s: inheritance cycle through %s", d.Name, cur.Name)
		}
		seen[cur.Name] = true
		chain = append(chain, cur)

		if cur.Extends == "" {
			break
		}
		parent, ok := byName[cur.Extends]
		if !ok {
			return Entity{}, fmt.Errorf("entity %s extends unknown entity %s", cur.Name, cur.Extends)
		}
		cur = parent
	}

	e := Entity{
		Name:             d.Name,
		TableName:        d.Table,
		AutoSpatialIndex: true,
	}
	if d.AutoSpatialIndex != nil {
		e.AutoSpatialIndex = *d.AutoSpatialIndex
	}

	// chain is leaf first; walk it root first so depth grows with the hierarchy.
	for depth := 0; depth < len(chain); depth++ {
		decl := chain[len(chain)-1-depth]
		for _, fd := range decl.Fields {
			if fd.Persisted != nil && !*fd.Persisted {
				continue
			}
			f, err := fd.descriptor(depth)
			if err != nil {
				return Entity{}, fmt.Errorf("entity %s: %w", decl.Name, err)
			}
			if f.Has(KindIgnore) {
				continue
			}
			e.Fields = append(e.Fields, f)
		}
		e.Indexes = append(e.Indexes, decl.Indexes...)
		e.SpatialIndexes = append(e.SpatialIndexes, decl.SpatialIndexes...)
	}

	// The nearest declared prefix applies.
	for _, decl := range chain {
		if decl.TablePrefix != "" {
			e.TablePrefix = decl.TablePrefix
			break
		}
	}

	return e, nil
}

func (fd fieldDoc) descriptor(depth int) (FieldDescriptor, error) {
	if fd.Name == "" {
		return FieldDescriptor{}, fmt.Errorf("field without a name")
	}

	t, err := ParseSemanticType(fd.Type)
	if err != nil {
		return FieldDescriptor{}, fmt.Errorf("field %s: %w", fd.Name, err)
	}

	f := FieldDescriptor{
		Name:      fd.Name,
		Type:      t,
		Enum:      fd.Enum,
		Modifiers: fd.Modifiers,
		Depth:     depth,
	}

	switch t {
	case TypeGeometry:
		f.Geometry = GeometryAny
		if fd.Geometry != "" {
			if !IsGeometryKind(fd.Geometry) {
				return FieldDescriptor{}, fmt.Errorf("field %s: unknown geometry kind %q", fd.Name, fd.Geometry)
			}
			f.Geometry = GeometryKind(fd.Geometry)
		}
	case TypeEnumeration:
		if f.Enum == nil {
			return FieldDescriptor{}, fmt.Errorf("field %s: enumeration requires an enum block", fd.Name)
		}
	}

	return f, nil
}

// ParseSemanticType validates a declared type name.
func ParseSemanticType(s string) (SemanticType, error) {
	for _, t := range AllSemanticTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown semantic type %q", s)
}
