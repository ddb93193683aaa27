package repository

import (
	"context"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
)

// Sequence names a store-native identifier sequence.
type Sequence string

const (
	SeqOrders     Sequence = "orders_id_seq"
	SeqOrderItems Sequence = "order_items_id_seq"
	SeqTickets    Sequence = "tickets_id_seq"
)

type Users interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts a new user and returns its ID. A duplicate email yields
	// ErrConflict.
	Create(ctx context.Context, u domain.User) (int64, error)
	// Upsert creates the user or updates name, hash and role of the user
	// with the same email.
	Upsert(ctx context.Context, u domain.User) (*domain.User, error)
}

type Catalog interface {
	GetPark(ctx context.Context, id int64) (*domain.Park, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	// ProductsByIDs returns the products that exist among ids, in any order.
	ProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

type Carts interface {
	Items(ctx context.Context, userID int64) ([]domain.CartItem, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) error
	Clear(ctx context.Context, userID int64) error
}

type Orders interface {
	// Create persists the order and its items. IDs must be pre-allocated.
	Create(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Order, error)
	// MarkCancelled moves a PAID or PENDING order to CANCELLED. It returns
	// ErrNotFound when no such order exists in a cancellable state.
	MarkCancelled(ctx context.Context, id int64) error
}

type Tickets interface {
	Get(ctx context.Context, id int64) (*domain.Ticket, error)
	// GetForUpdate reads the ticket and locks it until the end of the
	// transaction.
	GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error)
	// LockParkDay serialises capacity checks for one park and calendar day
	// until the end of the enclosing transaction.
	LockParkDay(ctx context.Context, parkID int64, day time.Time) error
	// CountActive counts tickets for the park on day whose status is not
	// CANCELLED.
	CountActive(ctx context.Context, parkID int64, day time.Time) (int, error)
	CreateBatch(ctx context.Context, tickets []domain.Ticket) error
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	Reschedule(ctx context.Context, id int64, day time.Time) error
	CancelByOrder(ctx context.Context, orderID int64) ([]domain.Ticket, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Ticket, error)
}

type Sequences interface {
	Next(ctx context.Context, seq Sequence) (int64, error)
	// NextN allocates n identifiers in ascending order.
	NextN(ctx context.Context, seq Sequence, n int) ([]int64, error)
}

type Reports interface {
	Summary(ctx context.Context) (*domain.SystemSummary, error)
}

// Repos is the set of repositories bound to one store handle, either the
// shared pool or a single transaction.
type Repos interface {
	Users() Users
	Catalog() Catalog
	Carts() Carts
	Orders() Orders
	Tickets() Tickets
	Sequences() Sequences
	Reports() Reports
}

type Store interface {
	Repos
	// RunTx runs fn in a transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Repos) error) error
}
