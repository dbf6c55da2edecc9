package schema

import (
	"reflect"
	"testing"
	"time"
)

type TestListing struct {
	ID        string    `po:"id,primaryKey,text"`
	Title     string    `po:"title,text,notNull,index"`
	Price     float64   `po:"price,double precision,notNull,default(0)"`
	Tags      []string  `po:"tags,text[],notNull,default('{}'),index(gin)"`
	Image     *string   `po:"image,text"`
	CreatedAt time.Time `po:"created_at,timestamptz,notNull,default(NOW())"`
	internal  string
	Ignored   string
}

type AccountHolder struct {
	Email string `po:"email,unique,notNull"`
	Score int    `po:"score"`
}

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	t.Run("basic struct parsing", func(t *testing.T) {
		table, err := parser.Parse(reflect.TypeOf(TestListing{}))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}

		if table.Name != "test_listing" {
			t.Errorf("expected table name 'test_listing', got '%s'", table.Name)
		}

		if len(table.Columns) != 6 {
			t.Errorf("expected 6 columns, got %d", len(table.Columns))
		}

		if table.PrimaryKey == nil || len(table.PrimaryKey.Columns) != 1 || table.PrimaryKey.Columns[0] != "id" {
			t.Fatalf("expected primary key on id, got %+v", table.PrimaryKey)
		}
		if table.PrimaryKey.Name != "test_listing_pkey" {
			t.Errorf("unexpected primary key name %s", table.PrimaryKey.Name)
		}
	})

	t.Run("column metadata", func(t *testing.T) {
		table, err := parser.Parse(reflect.TypeOf(&TestListing{}))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}

		price := table.GetColumnByName("price")
		if price == nil {
			t.Fatal("price column not found")
		}
		if price.SQLType != "double precision" {
			t.Errorf("expected double precision, got '%s'", price.SQLType)
		}
		if price.Nullable {
			t.Error("expected price to be not null")
		}
		if price.Default == nil || *price.Default != "0" {
			t.Errorf("expected default 0, got %v", price.Default)
		}

		tags := table.GetColumnByName("tags")
		if tags == nil || tags.SQLType != "text[]" {
			t.Fatalf("expected text[] tags column, got %+v", tags)
		}

		image := table.GetColumnByName("image")
		if image == nil || !image.Nullable {
			t.Errorf("expected pointer field to be nullable")
		}

		if table.GetColumnByName("Ignored") != nil {
			t.Error("untagged field must not become a column")
		}
	})

	t.Run("indexes", func(t *testing.T) {
		table, err := parser.Parse(reflect.TypeOf(TestListing{}))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(table.Indexes) != 2 {
			t.Fatalf("expected 2 indexes, got %d", len(table.Indexes))
		}
		if table.Indexes[0].Name != "idx_test_listing_title" || table.Indexes[0].Type != "btree" {
			t.Errorf("unexpected title index %+v", table.Indexes[0])
		}
		if table.Indexes[1].Type != "gin" {
			t.Errorf("expected gin index on tags, got %s", table.Indexes[1].Type)
		}
	})

	t.Run("inferred types", func(t *testing.T) {
		table, err := parser.Parse(reflect.TypeOf(AccountHolder{}))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if got := table.GetColumnByName("email"); got.SQLType != "text" || !got.Unique {
			t.Errorf("unexpected email column %+v", got)
		}
		if got := table.GetColumnByName("score"); got.SQLType != "integer" {
			t.Errorf("expected integer score, got %s", got.SQLType)
		}
		if table.PrimaryKey != nil {
			t.Error("expected no primary key")
		}
	})

	t.Run("non struct", func(t *testing.T) {
		if _, err := parser.Parse(reflect.TypeOf(42)); err == nil {
			t.Error("expected error for non-struct model")
		}
	})
}

func TestRegisterTableName(t *testing.T) {
	RegisterTableName("AccountHolder", "account_holders")
	defer RegisterTableName("AccountHolder", "account_holder")

	table, err := NewParser().Parse(reflect.TypeOf(AccountHolder{}))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Name != "account_holders" {
		t.Errorf("expected registered name, got %s", table.Name)
	}
}

func TestParseTag(t *testing.T) {
	p := NewParser()

	tests := []struct {
		tag     string
		name    string
		options map[string]string
		wantErr bool
	}{
		{tag: "id,primaryKey", name: "id", options: map[string]string{"primaryKey": ""}},
		{tag: "price,numeric(10,2),default(0)", name: "price", options: map[string]string{"numeric": "10,2", "default": "0"}},
		{tag: "bad,default(x", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			opts, err := p.parseTag(tt.tag)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTag failed: %v", err)
			}
			if opts.Name != tt.name {
				t.Errorf("expected name %s, got %s", tt.name, opts.Name)
			}
			if !reflect.DeepEqual(opts.Options, tt.options) {
				t.Errorf("expected options %v, got %v", tt.options, opts.Options)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"User":          "user",
		"OrderItem":     "order_item",
		"AccountHolder": "account_holder",
	}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
