package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/marshallshelly/bazaar/internal/models"
	"github.com/marshallshelly/bazaar/internal/store"
)

// Stall is how long the first read waits for the competing operation before
// carrying on. An operation blocked by a held lock shows up as a stall.
const Stall = 100 * time.Millisecond

// Interleaved wraps a store so that a competing operation starts the first
// time a user or product is read through it, including reads inside its
// transactions.
type Interleaved struct {
	store.Store
	race *race
}

type race struct {
	hook func() error
	once sync.Once
	done chan struct{}
	err  error
}

// Interleave returns s with hook armed. hook should use a store that is
// not wrapped.
func Interleave(s store.Store, hook func() error) *Interleaved {
	return &Interleaved{Store: s, race: &race{hook: hook, done: make(chan struct{})}}
}

// Wait blocks until the competing operation has finished and returns its
// error. It must only be called after the operation was started.
func (s *Interleaved) Wait() error {
	<-s.race.done
	return s.race.err
}

func (s *Interleaved) Users() store.UserStore {
	return interleavedUsers{UserStore: s.Store.Users(), race: s.race}
}

func (s *Interleaved) Products() store.ProductStore {
	return interleavedProducts{ProductStore: s.Store.Products(), race: s.race}
}

func (s *Interleaved) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx store.Store) error {
		return fn(&Interleaved{Store: tx, race: s.race})
	})
}

// start runs the hook in the background, then gives it Stall to finish.
func (r *race) start() {
	r.once.Do(func() {
		go func() {
			defer close(r.done)
			r.err = r.hook()
		}()
		select {
		case <-r.done:
		case <-time.After(Stall):
		}
	})
}

type interleavedUsers struct {
	store.UserStore
	race *race
}

func (u interleavedUsers) Get(ctx context.Context, id string) (*models.User, error) {
	got, err := u.UserStore.Get(ctx, id)
	u.race.start()
	return got, err
}

func (u interleavedUsers) Lock(ctx context.Context, id string, mode store.LockMode) (*models.User, error) {
	got, err := u.UserStore.Lock(ctx, id, mode)
	u.race.start()
	return got, err
}

type interleavedProducts struct {
	store.ProductStore
	race *race
}

func (p interleavedProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	got, err := p.ProductStore.Get(ctx, id)
	p.race.start()
	return got, err
}

func (p interleavedProducts) Lock(ctx context.Context, id string, mode store.LockMode) (*models.Product, error) {
	got, err := p.ProductStore.Lock(ctx, id, mode)
	p.race.start()
	return got, err
}
