package specmaker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tordrt/schemadrift/internal/entity"
	"github.com/tordrt/schemadrift/internal/schema"
	"github.com/tordrt/schemadrift/internal/typeresolve"
)

func newMaker() *Maker {
	return New(typeresolve.NewDefault(), nil)
}

func fd(name string, t entity.SemanticType, mods ...entity.Modifier) entity.FieldDescriptor {
	return entity.FieldDescriptor{Name: name, Type: t, Modifiers: mods}
}

func boolPtr(b bool) *bool { return &b }

func assertConfigError(t *testing.T, err error, contains string) *schema.ConfigurationError {
	t.Helper()
	var cfgErr *schema.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if contains != "" && !strings.Contains(cfgErr.Error(), contains) {
		t.Errorf("Expected error containing %q, got %q", contains, cfgErr.Error())
	}
	return cfgErr
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"userName", "user_name"},
		{"id", "id"},
		{"createdAtUtc", "created_at_utc"},
		{"UserAccount", "User_account"},
		{"userID", "user_iD"},
		{"already_snake", "already_snake"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SnakeCase(tt.in); got != tt.want {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		name   string
		entity entity.Entity
		want   string
	}{
		{"derived", entity.Entity{Name: "UserAccount"}, "user_account"},
		{"prefix", entity.Entity{Name: "UserAccount", TablePrefix: "t_"}, "t_user_account"},
		{"explicit", entity.Entity{Name: "UserAccount", TableName: "Accounts", TablePrefix: "t_"}, "Accounts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TableName(tt.entity); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBuildColumn(t *testing.T) {
	m := newMaker()

	tests := []struct {
		name         string
		field        entity.FieldDescriptor
		wantName     string
		wantType     string
		wantNullable bool
		wantDefault  *string
		wantPK       bool
		wantAutoInc  bool
	}{
		{
			name:         "plain",
			field:        fd("userName", entity.TypeVariableText),
			wantName:     "user_name",
			wantType:     "varchar(255)",
			wantNullable: true,
		},
		{
			name:     "explicit name",
			field:    fd("userName", entity.TypeVariableText, entity.ExplicitColumnName{Name: "login"}, entity.NotNull{}),
			wantName: "login",
			wantType: "varchar(255)",
		},
		{
			name:        "primary key clears default",
			field:       fd("id", entity.TypeBigInteger, entity.DefaultValue{Value: "1"}, entity.PrimaryKey{AutoIncrement: true}),
			wantName:    "id",
			wantType:    "bigint(20)",
			wantPK:      true,
			wantAutoInc: true,
		},
		{
			name:     "primary key with redundant not null",
			field:    fd("id", entity.TypeInteger, entity.PrimaryKey{}, entity.NotNull{}),
			wantName: "id",
			wantType: "int",
			wantPK:   true,
		},
		{
			name:         "logical delete",
			field:        fd("deleted", entity.TypeBoolean, entity.LogicalDeleteFlag{}),
			wantName:     "deleted",
			wantType:     "tinyint(1)",
			wantNullable: true,
			wantDefault:  strPtr("0"),
		},
		{
			name:        "default value",
			field:       fd("status", entity.TypeInteger, entity.NotNull{}, entity.DefaultValue{Value: "3"}),
			wantName:    "status",
			wantType:    "int",
			wantDefault: strPtr("3"),
		},
		{
			name:     "geometry forced not null",
			field:    fd("location", entity.TypeGeometry),
			wantName: "location",
			wantType: "geometry",
		},
		{
			name:         "geo nullable beats not null",
			field:        fd("location", entity.TypeGeometry, entity.NotNull{}, entity.Geo{Type: entity.GeometryPoint, Nullable: boolPtr(true)}),
			wantName:     "location",
			wantType:     "point",
			wantNullable: true,
		},
		{
			name:     "decimal",
			field:    fd("price", entity.TypeDecimal, entity.NotNull{}),
			wantName: "price",
			wantType: "decimal(10,2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := m.BuildColumn(tt.field)
			if err != nil {
				t.Fatalf("BuildColumn() error = %v", err)
			}
			if c.Name != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, c.Name)
			}
			if c.ColumnType() != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, c.ColumnType())
			}
			if c.Nullable != tt.wantNullable {
				t.Errorf("Expected nullable %v, got %v", tt.wantNullable, c.Nullable)
			}
			if !equalPtr(c.DefaultValue, tt.wantDefault) {
				t.Errorf("Expected default %v, got %v", deref(tt.wantDefault), deref(c.DefaultValue))
			}
			if c.PrimaryKey != tt.wantPK || c.AutoIncrement != tt.wantAutoInc {
				t.Errorf("Expected pk=%v auto=%v, got pk=%v auto=%v", tt.wantPK, tt.wantAutoInc, c.PrimaryKey, c.AutoIncrement)
			}
		})
	}
}

func TestBuildColumnNullableGeometryKey(t *testing.T) {
	m := newMaker()
	_, err := m.BuildColumn(fd("shape", entity.TypeGeometry, entity.PrimaryKey{}, entity.Geo{Type: entity.GeometryAny, Nullable: boolPtr(true)}))
	assertConfigError(t, err, "cannot be nullable")
}

func TestBuildTableSpecOrdering(t *testing.T) {
	m := newMaker()

	e := entity.Entity{
		Name: "Derived",
		Fields: []entity.FieldDescriptor{
			{Name: "b", Type: entity.TypeInteger, Depth: 1},
			{Name: "a", Type: entity.TypeInteger, Depth: 0},
			{Name: "c", Type: entity.TypeInteger, Depth: 1},
			{Name: "skip", Type: entity.TypeInteger, Depth: 0, Modifiers: []entity.Modifier{entity.Ignore{}}},
		},
	}

	table, err := m.BuildTableSpec(e)
	if err != nil {
		t.Fatalf("BuildTableSpec() error = %v", err)
	}

	var names []string
	for _, c := range table.Columns {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "a,b,c" {
		t.Errorf("Expected columns a,b,c, got %s", got)
	}
	if len(table.Indexes) != 0 || len(table.SpatialIndexes) != 0 {
		t.Errorf("Expected no indexes, got %+v %+v", table.Indexes, table.SpatialIndexes)
	}
	if table.Name != "derived" || table.Entity != "Derived" {
		t.Errorf("Expected table derived for entity Derived, got %s for %s", table.Name, table.Entity)
	}
}

func TestBuildTableSpecPrimaryKeys(t *testing.T) {
	m := newMaker()

	_, err := m.BuildTableSpec(entity.Entity{
		Name: "Twice",
		Fields: []entity.FieldDescriptor{
			fd("id", entity.TypeInteger, entity.PrimaryKey{}),
			fd("otherId", entity.TypeInteger, entity.PrimaryKey{}),
		},
	})
	cfgErr := assertConfigError(t, err, "multiple primary keys")
	if cfgErr.Entity != "Twice" {
		t.Errorf("Expected entity Twice in error, got %q", cfgErr.Entity)
	}

	_, err = m.BuildTableSpec(entity.Entity{
		Name: "Dup",
		Fields: []entity.FieldDescriptor{
			fd("userName", entity.TypeInteger),
			fd("user_name", entity.TypeInteger),
		},
	})
	assertConfigError(t, err, "duplicate column user_name")
}

func TestBuildTableSpecColumnErrorNamesEntity(t *testing.T) {
	m := New(typeresolve.New(nil), nil)
	_, err := m.BuildTableSpec(entity.Entity{Name: "Empty", Fields: []entity.FieldDescriptor{fd("x", entity.TypeInteger)}})
	cfgErr := assertConfigError(t, err, "")
	if cfgErr.Entity != "Empty" || !errors.Is(err, schema.ErrNoMatchingRule) {
		t.Errorf("Expected ErrNoMatchingRule for entity Empty, got %v", err)
	}
}

func userEntity(indexes ...entity.IndexDecl) entity.Entity {
	return entity.Entity{
		Name: "User",
		Fields: []entity.FieldDescriptor{
			fd("id", entity.TypeBigInteger, entity.PrimaryKey{AutoIncrement: true}),
			fd("userName", entity.TypeVariableText, entity.NotNull{}),
			fd("email", entity.TypeVariableText),
			fd("createdAt", entity.TypeTimestamp, entity.NotNull{}),
		},
		Indexes: indexes,
	}
}

func TestBuildIndexes(t *testing.T) {
	m := newMaker()

	tests := []struct {
		name    string
		decl    entity.IndexDecl
		want    schema.IndexSpec
		wantErr string
	}{
		{
			name: "unique synthesized",
			decl: entity.IndexDecl{Columns: "user_name", Unique: true},
			want: schema.IndexSpec{Name: "uk_user_name", Columns: "user_name", Unique: true},
		},
		{
			name: "plain with direction",
			decl: entity.IndexDecl{Columns: "user_name, created_at desc"},
			want: schema.IndexSpec{Name: "idx_user_name_created_at", Columns: "user_name, created_at desc"},
		},
		{
			name: "explicit name",
			decl: entity.IndexDecl{Name: "by_email", Columns: "email"},
			want: schema.IndexSpec{Name: "by_email", Columns: "email"},
		},
		{
			name: "non-unique on nullable",
			decl: entity.IndexDecl{Columns: "email"},
			want: schema.IndexSpec{Name: "idx_email", Columns: "email"},
		},
		{
			name: "truncated",
			decl: entity.IndexDecl{Name: strings.Repeat("n", 70), Columns: "email"},
			want: schema.IndexSpec{Name: strings.Repeat("n", 64), Columns: "email"},
		},
		{
			name:    "unique on nullable",
			decl:    entity.IndexDecl{Columns: "email", Unique: true},
			wantErr: "must be not null",
		},
		{
			name:    "missing column",
			decl:    entity.IndexDecl{Columns: "nickname"},
			wantErr: "index column not found",
		},
		{
			name:    "explicit name still validated",
			decl:    entity.IndexDecl{Name: "x", Columns: "nickname"},
			wantErr: "index column not found",
		},
		{
			name:    "empty list",
			decl:    entity.IndexDecl{Columns: " , "},
			wantErr: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := m.BuildTableSpec(userEntity(tt.decl))
			if tt.wantErr != "" {
				assertConfigError(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("BuildTableSpec() error = %v", err)
			}
			if len(table.Indexes) != 1 || table.Indexes[0] != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, table.Indexes)
			}
		})
	}
}

func TestIndexNameCollisionAfterTruncation(t *testing.T) {
	m := newMaker()

	tests := []struct {
		name    string
		prefix  string
		wantErr bool
	}{
		{name: "ascii past the limit", prefix: strings.Repeat("a", 64), wantErr: true},
		{name: "accented past the limit", prefix: strings.Repeat("é", 70), wantErr: true},
		// 80 bytes but only 44 characters, so both names survive intact.
		{name: "accented within the limit", prefix: strings.Repeat("é", 40), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := m.BuildTableSpec(userEntity(
				entity.IndexDecl{Name: tt.prefix + "_one", Columns: "email"},
				entity.IndexDecl{Name: tt.prefix + "_two", Columns: "user_name"},
			))
			if tt.wantErr {
				assertConfigError(t, err, "duplicate index name")
				return
			}
			if err != nil {
				t.Fatalf("BuildTableSpec() error = %v", err)
			}
			if len(table.Indexes) != 2 || table.Indexes[0].Name != tt.prefix+"_one" || table.Indexes[1].Name != tt.prefix+"_two" {
				t.Errorf("Unexpected indexes %+v", table.Indexes)
			}
		})
	}
}

func TestTruncateIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short ascii", input: "idx_email", want: "idx_email"},
		{name: "long ascii", input: strings.Repeat("a", 70), want: strings.Repeat("a", 64)},
		{name: "exactly the limit in characters", input: "idx_" + strings.Repeat("é", 60), want: "idx_" + strings.Repeat("é", 60)},
		{name: "multi-byte characters", input: "idx_c" + strings.Repeat("é", 70), want: "idx_c" + strings.Repeat("é", 59)},
		{name: "four-byte characters", input: strings.Repeat("😀", 65), want: strings.Repeat("😀", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateIdentifier(tt.input, schema.MaxIdentifierLength)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Expected valid UTF-8, got %q", got)
			}
		})
	}
}

func TestIndexNameNonASCIIColumn(t *testing.T) {
	column := "c" + strings.Repeat("é", 40)
	e := entity.Entity{
		Name: "Place",
		Fields: []entity.FieldDescriptor{
			fd("id", entity.TypeBigInteger, entity.PrimaryKey{AutoIncrement: true}),
			fd(column, entity.TypeInteger),
		},
		Indexes: []entity.IndexDecl{{Columns: column}},
	}

	table, err := newMaker().BuildTableSpec(e)
	if err != nil {
		t.Fatalf("BuildTableSpec() error = %v", err)
	}
	if len(table.Indexes) != 1 {
		t.Fatalf("Expected 1 index, got %d", len(table.Indexes))
	}
	// 45 characters but 85 bytes: within the limit, so kept whole.
	if want := "idx_" + column; table.Indexes[0].Name != want {
		t.Errorf("Expected index name %q, got %q", want, table.Indexes[0].Name)
	}
}

func TestSpatialIndexes(t *testing.T) {
	m := newMaker()

	base := func(auto bool, spatial ...entity.IndexDecl) entity.Entity {
		return entity.Entity{
			Name: "Place",
			Fields: []entity.FieldDescriptor{
				fd("id", entity.TypeInteger, entity.PrimaryKey{}),
				{Name: "location", Type: entity.TypeGeometry, Geometry: entity.GeometryPoint},
				{Name: "area", Type: entity.TypeGeometry, Geometry: entity.GeometryPolygon},
				{Name: "hint", Type: entity.TypeGeometry, Modifiers: []entity.Modifier{entity.Geo{Type: entity.GeometryAny, Nullable: boolPtr(true)}}},
				fd("label", entity.TypeVariableText, entity.NotNull{}),
			},
			SpatialIndexes:   spatial,
			AutoSpatialIndex: auto,
		}
	}

	t.Run("auto", func(t *testing.T) {
		table, err := m.BuildTableSpec(base(true))
		if err != nil {
			t.Fatalf("BuildTableSpec() error = %v", err)
		}
		want := []schema.SpatialIndexSpec{
			{Name: "sp_idx_location", Columns: "location"},
			{Name: "sp_idx_area", Columns: "area"},
		}
		if len(table.SpatialIndexes) != len(want) {
			t.Fatalf("Expected %d spatial indexes, got %+v", len(want), table.SpatialIndexes)
		}
		for i := range want {
			if table.SpatialIndexes[i] != want[i] {
				t.Errorf("Index %d: expected %+v, got %+v", i, want[i], table.SpatialIndexes[i])
			}
		}
	})

	t.Run("disabled", func(t *testing.T) {
		table, err := m.BuildTableSpec(base(false))
		if err != nil {
			t.Fatalf("BuildTableSpec() error = %v", err)
		}
		if len(table.SpatialIndexes) != 0 {
			t.Errorf("Expected no spatial indexes, got %+v", table.SpatialIndexes)
		}
	})

	t.Run("explicit wins on name", func(t *testing.T) {
		table, err := m.BuildTableSpec(base(true, entity.IndexDecl{Name: "sp_idx_location", Columns: "location, area"}))
		if err != nil {
			t.Fatalf("BuildTableSpec() error = %v", err)
		}
		if len(table.SpatialIndexes) != 2 || table.SpatialIndexes[0].Columns != "location, area" {
			t.Errorf("Expected explicit index to replace auto index, got %+v", table.SpatialIndexes)
		}
	})

	errCases := []struct {
		name string
		decl entity.IndexDecl
		want string
	}{
		{"not geometry", entity.IndexDecl{Columns: "label"}, "geometry columns"},
		{"nullable geometry", entity.IndexDecl{Columns: "hint"}, "must be not null"},
		{"missing", entity.IndexDecl{Columns: "nowhere"}, "geometry columns"},
		{"empty", entity.IndexDecl{Columns: ""}, "empty"},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.BuildTableSpec(base(true, tt.decl))
			assertConfigError(t, err, tt.want)
		})
	}
}

func TestBuildAllRejectsSharedTable(t *testing.T) {
	m := newMaker()
	_, err := m.BuildAll([]entity.Entity{
		{Name: "A", TableName: "shared", Fields: []entity.FieldDescriptor{fd("id", entity.TypeInteger)}},
		{Name: "B", TableName: "shared", Fields: []entity.FieldDescriptor{fd("id", entity.TypeInteger)}},
	})
	assertConfigError(t, err, "already mapped")
}

func strPtr(s string) *string { return &s }

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
