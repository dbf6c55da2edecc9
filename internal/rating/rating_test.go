package rating

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store/memory"
	"github.com/marshallshelly/bazaar/internal/store/storetest"
)

func TestRate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log, _ := test.NewNullLogger()
	svc := New(st, log)

	owner := storetest.User(t, st, "a@example.com")
	cat := storetest.Category(t, st, "Plumbing")
	p := storetest.Product(t, st, owner, cat, "Leak Fix", 0)

	t.Run("running mean", func(t *testing.T) {
		got, err := svc.Rate(ctx, p.ID, 4)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, got.Rate, 1e-9)
		assert.Equal(t, 1, got.CountUserRate)

		got, err = svc.Rate(ctx, p.ID, 2)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, got.Rate, 1e-9)
		assert.Equal(t, 2, got.CountUserRate)
	})

	t.Run("out of range", func(t *testing.T) {
		for _, v := range []float64{-0.1, 5.1, math.NaN()} {
			_, err := svc.Rate(ctx, p.ID, v)
			assert.ErrorIs(t, err, models.ErrBadRequest)
		}
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.Rate(ctx, "missing", 3)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRateMeanOfEverySubmission(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log, _ := test.NewNullLogger()
	svc := New(st, log)

	owner := storetest.User(t, st, "a@example.com")
	cat := storetest.Category(t, st, "Plumbing")
	p := storetest.Product(t, st, owner, cat, "Leak Fix", 0)

	values := []float64{0, 5, 3.5, 1, 4, 4, 2.25}
	var wg sync.WaitGroup
	for _, v := range values {
		v := v
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rate(ctx, p.ID, v)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var sum float64
	for _, v := range values {
		sum += v
	}
	got, err := st.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, len(values), got.CountUserRate)
	assert.InDelta(t, sum/float64(len(values)), got.Rate, 1e-9)
}
