// Package memory is an in-process implementation of repository.Store.
// Transactions are serialised by a single mutex and work on a copy of the
// state that replaces the shared one only on commit.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	users      map[int64]domain.User
	emails     map[string]int64
	nextUserID int64
	parks      map[int64]domain.Park
	products   map[int64]domain.Product
	carts      map[int64][]domain.CartItem
	orders     map[int64]domain.Order
	tickets    map[int64]domain.Ticket
	codes      map[string]int64
}

func newState() *state {
	return &state{
		users:    make(map[int64]domain.User),
		emails:   make(map[string]int64),
		parks:    make(map[int64]domain.Park),
		products: make(map[int64]domain.Product),
		carts:    make(map[int64][]domain.CartItem),
		orders:   make(map[int64]domain.Order),
		tickets:  make(map[int64]domain.Ticket),
		codes:    make(map[string]int64),
	}
}

// clone copies every map. Order items are never mutated after insert, so
// sharing their backing arrays is safe; cart slices are copied because
// AddItem updates them in place.
func (s *state) clone() *state {
	cp := &state{
		users:      maps.Clone(s.users),
		emails:     maps.Clone(s.emails),
		nextUserID: s.nextUserID,
		parks:      maps.Clone(s.parks),
		products:   maps.Clone(s.products),
		carts:      make(map[int64][]domain.CartItem, len(s.carts)),
		orders:     maps.Clone(s.orders),
		tickets:    maps.Clone(s.tickets),
		codes:      maps.Clone(s.codes),
	}
	for k, v := range s.carts {
		cp.carts[k] = slices.Clone(v)
	}
	return cp
}

type shared struct {
	mu  sync.Mutex
	st  *state
	seq *SequenceRepo
}

type Store struct {
	shared *shared
	tx     *state // set inside RunTx
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		shared: &shared{
			st:  newState(),
			seq: &SequenceRepo{next: make(map[repository.Sequence]int64)},
		},
	}
}

// view runs fn against the transaction state, or against the shared state
// under the store mutex when called outside a transaction.
func (s *Store) view(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	return fn(s.shared.st)
}

func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	tx := &Store{shared: s.shared, tx: s.shared.st.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.shared.st = tx.tx
	return nil
}

// PutPark stores reference data. It is meant for seeding.
func (s *Store) PutPark(p domain.Park) {
	_ = s.view(func(st *state) error {
		st.parks[p.ID] = p
		return nil
	})
}

// PutProduct stores reference data. It is meant for seeding.
func (s *Store) PutProduct(p domain.Product) {
	_ = s.view(func(st *state) error {
		st.products[p.ID] = p
		return nil
	})
}

// SetUnitPrice changes the catalog price of a product.
func (s *Store) SetUnitPrice(productID int64, price decimal.Decimal) {
	_ = s.view(func(st *state) error {
		if p, ok := st.products[productID]; ok {
			p.UnitPrice = price
			st.products[productID] = p
		}
		return nil
	})
}

func (s *Store) Users() repository.Users         { return &UserRepo{s: s} }
func (s *Store) Catalog() repository.Catalog     { return &CatalogRepo{s: s} }
func (s *Store) Carts() repository.Carts         { return &CartRepo{s: s} }
func (s *Store) Orders() repository.Orders       { return &OrderRepo{s: s} }
func (s *Store) Tickets() repository.Tickets     { return &TicketRepo{s: s} }
func (s *Store) Sequences() repository.Sequences { return s.shared.seq }
func (s *Store) Reports() repository.Reports     { return &ReportRepo{s: s} }
