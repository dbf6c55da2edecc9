package builder

import (
	"testing"

	"github.com/marshallshelly/bazaar/pkg/registry"
)

type TestUser struct {
	ID    string   `po:"id,primaryKey,text"`
	Name  string   `po:"name,text,notNull"`
	Email string   `po:"email,text,unique,notNull"`
	Age   int      `po:"age,integer"`
	Tags  []string `po:"tags,text[],notNull,default('{}')"`
}

func TestSelectQuery_ToSQL(t *testing.T) {
	if err := registry.Register(TestUser{}); err != nil {
		t.Fatalf("Failed to register model: %v", err)
	}

	db := New(nil) // Nil runtime DB for SQL generation tests

	tests := []struct {
		name       string
		setupQuery func() *SelectQuery[TestUser]
		wantSQL    string
		wantArgLen int
	}{
		{
			name: "simple select all",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db)
			},
			wantSQL: "SELECT * FROM test_user",
		},
		{
			name: "select specific columns",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).Columns("id", "name")
			},
			wantSQL: "SELECT id, name FROM test_user",
		},
		{
			name: "select with multiple WHERE",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).
					Where(Eq("age", 25)).
					And(Eq("name", "John"))
			},
			wantSQL:    "SELECT * FROM test_user WHERE age = $1 AND name = $2",
			wantArgLen: 2,
		},
		{
			name: "array membership",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).Where(Any("tags", "go"))
			},
			wantSQL:    "SELECT * FROM test_user WHERE $1 = ANY(tags)",
			wantArgLen: 1,
		},
		{
			name: "grouped OR search",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).
					Where(Eq("age", 3)).
					Where(Group(ILike("name", "%a%"), Or(ILike("email", "%a%"))))
			},
			wantSQL:    "SELECT * FROM test_user WHERE age = $1 AND (name ILIKE $2 OR email ILIKE $3)",
			wantArgLen: 3,
		},
		{
			name: "IN list",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).Where(InStrings("id", []string{"a", "b"}))
			},
			wantSQL:    "SELECT * FROM test_user WHERE id IN ($1, $2)",
			wantArgLen: 2,
		},
		{
			name: "empty IN list matches nothing",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).Where(InStrings("id", nil))
			},
			wantSQL: "SELECT * FROM test_user WHERE FALSE",
		},
		{
			name: "raw expression after condition",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).
					Where(Eq("name", "x")).
					Where(Expr("age > ? AND age < ?", 1, 9))
			},
			wantSQL:    "SELECT * FROM test_user WHERE name = $1 AND age > $2 AND age < $3",
			wantArgLen: 3,
		},
		{
			name: "negated condition",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).Where(Not(Any("tags", "go")))
			},
			wantSQL:    "SELECT * FROM test_user WHERE NOT ($1 = ANY(tags))",
			wantArgLen: 1,
		},
		{
			name: "expression ordering with tie-break and limit",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).
					OrderByDesc(Cardinality("tags")).
					OrderByDesc("id").
					Limit(8)
			},
			wantSQL: "SELECT * FROM test_user ORDER BY cardinality(tags) DESC, id DESC LIMIT 8",
		},
		{
			name: "select with LIMIT and OFFSET",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).OrderByAsc("name").Limit(10).Offset(20)
			},
			wantSQL: "SELECT * FROM test_user ORDER BY name ASC LIMIT 10 OFFSET 20",
		},
		{
			name: "select with FOR UPDATE",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).Where(Eq("id", "u1")).ForUpdate()
			},
			wantSQL:    "SELECT * FROM test_user WHERE id = $1 FOR UPDATE",
			wantArgLen: 1,
		},
		{
			name: "select with FOR KEY SHARE",
			setupQuery: func() *SelectQuery[TestUser] {
				return Select[TestUser](db).Where(Eq("id", "u1")).ForKeyShare()
			},
			wantSQL:    "SELECT * FROM test_user WHERE id = $1 FOR KEY SHARE",
			wantArgLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.setupQuery().ToSQL()
			if err != nil {
				t.Fatalf("ToSQL() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("ToSQL() sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgLen {
				t.Errorf("ToSQL() args len = %d, want %d", len(args), tt.wantArgLen)
			}
		})
	}
}

func TestSelectQuery_ExprPlaceholderMismatch(t *testing.T) {
	db := New(nil)
	_, _, err := Select[TestUser](db).Where(Expr("age > ?")).ToSQL()
	if err == nil {
		t.Fatal("expected placeholder/argument mismatch error")
	}
}

func TestSelectQuery_UnregisterableModel(t *testing.T) {
	type Untagged struct{ Name string }

	_, _, err := Select[Untagged](New(nil)).ToSQL()
	if err == nil {
		t.Fatal("expected error for model without tagged columns")
	}
}

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"leak":   "%leak%",
		"50%":    `%50\%%`,
		"a_b":    `%a\_b%`,
		`back\s`: `%back\\s%`,
	}
	for in, want := range cases {
		if got := ContainsPattern(in); got != want {
			t.Errorf("ContainsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
