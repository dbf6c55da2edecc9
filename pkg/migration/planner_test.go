package migration

import (
	"reflect"
	"strings"
	"testing"

	"github.com/marshallshelly/bazaar/pkg/schema"
)

type plannerShop struct {
	ID      string   `po:"id,primaryKey,text"`
	Name    string   `po:"name,text,unique,notNull"`
	OwnerID string   `po:"owner_id,text,notNull,index"`
	Likes   []string `po:"likes,text[],notNull,default('{}'),index(gin)"`
	Note    *string  `po:"note,text"`
}

type plannerItem struct {
	ID string `po:"id,primaryKey,text"`
}

func parseTable(t *testing.T, model any, name string) *schema.TableMetadata {
	t.Helper()
	schema.RegisterTableName(reflect.TypeOf(model).Name(), name)
	table, err := schema.NewParser().Parse(reflect.TypeOf(model))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return table
}

func TestPlanner_CreateTable(t *testing.T) {
	table := parseTable(t, plannerShop{}, "shops")

	up, _ := NewPlanner().GenerateMigration([]*schema.TableMetadata{table})

	expected := []string{
		"CREATE TABLE IF NOT EXISTS shops (",
		"    id text NOT NULL PRIMARY KEY,",
		"    name text NOT NULL UNIQUE,",
		"    owner_id text NOT NULL,",
		"    likes text[] NOT NULL DEFAULT '{}',",
		"    note text\n);",
		"CREATE INDEX IF NOT EXISTS idx_shops_owner_id ON shops (owner_id);",
		"CREATE INDEX IF NOT EXISTS idx_shops_likes ON shops USING gin (likes);",
	}
	for _, want := range expected {
		if !strings.Contains(up, want) {
			t.Errorf("up SQL missing %q\n%s", want, up)
		}
	}
}

func TestPlanner_DownReversesOrder(t *testing.T) {
	shops := parseTable(t, plannerShop{}, "shops")
	items := parseTable(t, plannerItem{}, "items")

	_, down := NewPlanner().GenerateMigration([]*schema.TableMetadata{shops, items})

	want := "DROP TABLE IF EXISTS items CASCADE;\nDROP TABLE IF EXISTS shops CASCADE;\n"
	if down != want {
		t.Errorf("down = %q, want %q", down, want)
	}
}

func TestPlanner_WithoutIfNotExists(t *testing.T) {
	table := parseTable(t, plannerItem{}, "items")

	up, _ := NewPlannerWithOptions(PlannerOptions{}).GenerateMigration([]*schema.TableMetadata{table})
	if !strings.HasPrefix(up, "CREATE TABLE items (") {
		t.Errorf("unexpected up SQL: %s", up)
	}
}

func TestSplitSQL(t *testing.T) {
	sql := `-- header
CREATE TABLE a (id text);

CREATE INDEX idx ON a (id);
`
	stmts := splitSQL(sql)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id text)" {
		t.Errorf("unexpected first statement %q", stmts[0])
	}
}

func TestFromTables(t *testing.T) {
	table := parseTable(t, plannerItem{}, "items")
	m := FromTables("20260101000000", "init", []*schema.TableMetadata{table})

	if m.Version != "20260101000000" || m.Name != "init" {
		t.Errorf("unexpected migration identity %s_%s", m.Version, m.Name)
	}
	if len(splitSQL(m.UpSQL)) != 1 || len(splitSQL(m.DownSQL)) != 1 {
		t.Errorf("expected one statement each way, got up=%q down=%q", m.UpSQL, m.DownSQL)
	}
}
