package orders

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bazaar/internal/cascade"
	"github.com/marshallshelly/bazaar/internal/catalog"
	"github.com/marshallshelly/bazaar/internal/files"
	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
	"github.com/marshallshelly/bazaar/internal/store/memory"
	"github.com/marshallshelly/bazaar/internal/store/storetest"
)

type fixture struct {
	svc     *Service
	st      store.Store
	a, b    models.User
	product models.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memory.New()
	log, _ := test.NewNullLogger()

	a := storetest.User(t, st, "a@example.com")
	b := storetest.User(t, st, "b@example.com")
	cat := storetest.Category(t, st, "Plumbing")
	p := storetest.Product(t, st, a, cat, "Leak Fix", 0)

	return fixture{
		svc:     New(st, catalog.New(st, log), log),
		st:      st,
		a:       a,
		b:       b,
		product: p,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("pending with joins", func(t *testing.T) {
		v, err := f.svc.Create(ctx, f.product.ID, f.b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderPending, v.State)
		assert.Equal(t, f.product.ID, v.Product.ID)
		assert.Equal(t, f.a.ID, v.Product.Owner.ID)
		assert.Equal(t, "Plumbing", v.Product.Category.Name)
		assert.Equal(t, f.b.ID, v.Sender.ID)

		stored, err := f.st.Orders().Get(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, f.b.ID, stored.BuyerID)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := f.svc.Create(ctx, "missing", f.b.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("missing buyer", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.product.ID, "ghost")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("product owner gone", func(t *testing.T) {
		c := storetest.User(t, f.st, "c@example.com")
		cat, err := f.st.Categories().FindByName(ctx, "Plumbing")
		require.NoError(t, err)
		orphan := storetest.Product(t, f.st, c, *cat, "Orphan", 1)
		_, err = f.st.Users().Delete(ctx, c.ID)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, orphan.ID, f.b.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := storetest.Order(t, f.st, f.product, f.b, 1)
	second := storetest.Order(t, f.st, f.product, f.b, 2)

	t.Run("as sender", func(t *testing.T) {
		got, err := f.svc.ListAsSender(ctx, f.b.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)
		assert.Equal(t, f.b.ID, got[0].Sender.ID)
	})

	t.Run("as receiver", func(t *testing.T) {
		got, err := f.svc.ListAsReceiver(ctx, f.a.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, f.product.ID, got[0].Product.ID)

		got, err = f.svc.ListAsReceiver(ctx, f.b.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("orders on deleted products are skipped", func(t *testing.T) {
		_, err := f.st.Products().Delete(ctx, f.product.ID)
		require.NoError(t, err)

		got, err := f.svc.ListAsSender(ctx, f.b.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner accepts and buyer cannot reject", func(t *testing.T) {
		f := newFixture(t)
		v, err := f.svc.Create(ctx, f.product.ID, f.b.ID)
		require.NoError(t, err)

		got, err := f.svc.Update(ctx, v.ID, models.OrderAccepted, f.a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderAccepted, got.State)

		_, err = f.svc.Update(ctx, v.ID, models.OrderRejected, f.b.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)

		stored, err := f.st.Orders().Get(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderAccepted, stored.State)
	})

	t.Run("terminal states do not reopen", func(t *testing.T) {
		f := newFixture(t)
		o := storetest.Order(t, f.st, f.product, f.b, 1)

		_, err := f.svc.Update(ctx, o.ID, models.OrderRejected, f.a.ID)
		require.NoError(t, err)

		for _, next := range []models.OrderState{models.OrderPending, models.OrderAccepted, models.OrderRejected} {
			_, err = f.svc.Update(ctx, o.ID, next, f.a.ID)
			assert.ErrorIs(t, err, models.ErrConflict, "rejected -> %s", next)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Update(ctx, "missing", models.OrderAccepted, f.a.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("concurrent decisions", func(t *testing.T) {
		f := newFixture(t)
		o := storetest.Order(t, f.st, f.product, f.b, 1)

		var ok, conflict atomic.Int32
		var wg sync.WaitGroup
		for _, next := range []models.OrderState{models.OrderAccepted, models.OrderRejected, models.OrderAccepted, models.OrderRejected} {
			next := next
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Update(ctx, o.ID, next, f.a.ID)
				switch {
				case err == nil:
					ok.Add(1)
				default:
					assert.ErrorIs(t, err, models.ErrConflict)
					conflict.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), ok.Load())
		assert.Equal(t, int32(3), conflict.Load())
	})
}

// plainCredentials treats the stored hash as the password itself.
type plainCredentials struct{}

func (plainCredentials) Hash(password string) (string, error) { return password, nil }
func (plainCredentials) Verify(password, hash string) bool    { return password == hash }

func TestCreateDuringRemoval(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, remove func(f fixture, c *cascade.Service) error) (fixture, error) {
		t.Helper()
		f := newFixture(t)
		log, _ := test.NewNullLogger()
		c := cascade.New(f.st, files.NewMemoryStore(), plainCredentials{}, log)

		racing := storetest.Interleave(f.st, func() error { return remove(f, c) })
		svc := New(racing, catalog.New(f.st, log), log)

		_, err := svc.Create(ctx, f.product.ID, f.b.ID)
		require.NoError(t, racing.Wait())
		return f, err
	}

	t.Run("buyer account removed", func(t *testing.T) {
		f, err := run(t, func(f fixture, c *cascade.Service) error {
			return c.RemoveAccount(ctx, f.b.ID, f.b.PasswordHash)
		})
		if err != nil {
			assert.ErrorIs(t, err, models.ErrNotFound)
		}

		left, err := f.st.Orders().FindByBuyer(ctx, f.b.ID)
		require.NoError(t, err)
		assert.Empty(t, left, "orders of a removed buyer must go with the account")
	})

	t.Run("product removed", func(t *testing.T) {
		f, err := run(t, func(f fixture, c *cascade.Service) error {
			return c.RemoveProduct(ctx, f.product.ID, f.a.ID)
		})
		if err != nil {
			assert.ErrorIs(t, err, models.ErrNotFound)
		}

		left, err := f.st.Orders().FindByProducts(ctx, []string{f.product.ID})
		require.NoError(t, err)
		assert.Empty(t, left, "orders of a removed product must go with it")
	})
}
