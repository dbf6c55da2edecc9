package builder

import (
	"testing"

	"github.com/marshallshelly/bazaar/pkg/registry"
)

func TestInsertQuery_ToSQL(t *testing.T) {
	if err := registry.Register(TestUser{}); err != nil {
		t.Fatalf("Failed to register model: %v", err)
	}
	db := New(nil)

	t.Run("zero-valued column with default is omitted", func(t *testing.T) {
		sql, args, err := Insert[TestUser](db).
			Values(TestUser{ID: "u1", Name: "Ann", Email: "ann@example.com"}).
			Returning("*").
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL() error = %v", err)
		}
		want := "INSERT INTO test_user (id, name, email, age) VALUES ($1, $2, $3, $4) RETURNING *"
		if sql != want {
			t.Errorf("got %q, want %q", sql, want)
		}
		if len(args) != 4 {
			t.Errorf("expected 4 args, got %d", len(args))
		}
	})

	t.Run("multiple rows", func(t *testing.T) {
		sql, args, err := Insert[TestUser](db).
			Values(
				TestUser{ID: "u1", Name: "Ann", Email: "a@x"},
				TestUser{ID: "u2", Name: "Bob", Email: "b@x"},
			).
			OnConflictDoNothing("email").
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL() error = %v", err)
		}
		want := "INSERT INTO test_user (id, name, email, age) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8) ON CONFLICT (email) DO NOTHING"
		if sql != want {
			t.Errorf("got %q, want %q", sql, want)
		}
		if len(args) != 8 {
			t.Errorf("expected 8 args, got %d", len(args))
		}
	})

	t.Run("rows with different column sets", func(t *testing.T) {
		_, _, err := Insert[TestUser](db).
			Values(
				TestUser{ID: "u1"},
				TestUser{ID: "u2", Tags: []string{"x"}},
			).
			ToSQL()
		if err == nil {
			t.Fatal("expected column mismatch error")
		}
	})

	t.Run("no values", func(t *testing.T) {
		if _, _, err := Insert[TestUser](db).ToSQL(); err == nil {
			t.Fatal("expected error with no values")
		}
	})
}

func TestUpdateQuery_ToSQL(t *testing.T) {
	if err := registry.Register(TestUser{}); err != nil {
		t.Fatalf("Failed to register model: %v", err)
	}
	db := New(nil)

	tests := []struct {
		name    string
		query   *UpdateQuery[TestUser]
		wantSQL string
		wantErr bool
	}{
		{
			name:    "plain set",
			query:   Update[TestUser](db).Set("name", "Bob").Where(Eq("id", "u1")),
			wantSQL: "UPDATE test_user SET name = $1 WHERE id = $2",
		},
		{
			name: "set keeps declaration order",
			query: Update[TestUser](db).
				Set("name", "Bob").
				Set("email", "bob@x").
				Set("age", 4).
				Where(Eq("id", "u1")),
			wantSQL: "UPDATE test_user SET name = $1, email = $2, age = $3 WHERE id = $4",
		},
		{
			name: "expression referencing current row",
			query: Update[TestUser](db).
				SetExpr("age", "(age * 2 + ?) / 3", 7).
				SetExpr("tags", ArrayAppend("tags"), "go").
				Where(Eq("id", "u1")).
				Returning("*"),
			wantSQL: "UPDATE test_user SET age = (age * 2 + $1) / 3, tags = array_append(tags, $2) WHERE id = $3 RETURNING *",
		},
		{
			name: "remove from every row containing the value",
			query: Update[TestUser](db).
				SetExpr("tags", ArrayRemove("tags"), "go").
				Where(Any("tags", "go")),
			wantSQL: "UPDATE test_user SET tags = array_remove(tags, $1) WHERE $2 = ANY(tags)",
		},
		{
			name:    "placeholder mismatch",
			query:   Update[TestUser](db).SetExpr("age", "age + ? + ?", 1),
			wantErr: true,
		},
		{
			name:    "nothing to set",
			query:   Update[TestUser](db).Where(Eq("id", "u1")),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _, err := tt.query.ToSQL()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToSQL() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("got %q, want %q", sql, tt.wantSQL)
			}
		})
	}
}

func TestDeleteQuery_ToSQL(t *testing.T) {
	if err := registry.Register(TestUser{}); err != nil {
		t.Fatalf("Failed to register model: %v", err)
	}
	db := New(nil)

	sql, args, err := Delete[TestUser](db).Where(InStrings("id", []string{"a", "b"})).Returning("id").ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}
	if want := "DELETE FROM test_user WHERE id IN ($1, $2) RETURNING id"; sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("expected 2 args, got %d", len(args))
	}

	if _, _, err := Delete[TestUser](db).ToSQL(); err == nil {
		t.Error("expected DELETE without WHERE to be rejected")
	}
}

func TestArrayRemoveAll(t *testing.T) {
	db := New(nil)
	sql, args, err := Update[TestUser](db).
		SetExpr("tags", ArrayRemoveAll("tags"), []string{"a", "b"}).
		Where(ArrayOverlap("tags", []string{"a", "b"})).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}
	want := "UPDATE test_user SET tags = ARRAY(SELECT e FROM unnest(tags) WITH ORDINALITY AS t(e, n) WHERE NOT (e = ANY($1::text[])) ORDER BY n) WHERE tags && $2::text[]"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("expected 2 args, got %d", len(args))
	}
}
