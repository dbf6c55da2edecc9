package registry

import (
	"reflect"
	"sync"
	"testing"
)

type Vendor struct {
	ID    string `po:"id,primaryKey,text"`
	Email string `po:"email,text,unique,notNull"`
}

type Listing struct {
	ID    string `po:"id,primaryKey,text"`
	Title string `po:"title,text,notNull"`
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	t.Run("register new model", func(t *testing.T) {
		if err := r.Register(Vendor{}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if !r.Has(reflect.TypeOf(Vendor{})) {
			t.Error("expected model to be registered")
		}
	})

	t.Run("register duplicate and pointer", func(t *testing.T) {
		if err := r.Register(&Vendor{}); err != nil {
			t.Fatalf("Register with pointer failed: %v", err)
		}
		if got := len(r.All()); got != 1 {
			t.Errorf("expected 1 table, got %d", got)
		}
	})

	t.Run("register invalid type", func(t *testing.T) {
		if err := r.Register("not a struct"); err == nil {
			t.Error("expected error for non-struct type")
		}
		if err := r.Register(nil); err == nil {
			t.Error("expected error for nil model")
		}
	})
}

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Listing{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(Vendor{}); err != nil {
		t.Fatal(err)
	}

	all := r.All()
	if len(all) != 2 || all[0].Name != "listing" || all[1].Name != "vendor" {
		t.Fatalf("unexpected registration order: %v, %v", all[0].Name, all[1].Name)
	}

	r.Clear()
	if len(r.All()) != 0 {
		t.Error("expected empty registry after Clear")
	}
	if _, err := r.Get(reflect.TypeOf(Listing{})); err == nil {
		t.Error("expected Get to fail after Clear")
	}
}

func TestRegistry_ConcurrentGetOrRegister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.GetOrRegister(Listing{}); err != nil {
				t.Errorf("GetOrRegister failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(r.All()); got != 1 {
		t.Errorf("expected exactly one registration, got %d", got)
	}
}
