package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/shopspring/decimal"
)

type UserRepo struct{ s *Store }

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const op = "memory.UserRepo.GetByID"

	var out *domain.User
	err := r.s.view(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "memory.UserRepo.GetByEmail"

	var out *domain.User
	err := r.s.view(func(st *state) error {
		id, ok := st.emails[email]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		u := st.users[id]
		out = &u
		return nil
	})
	return out, err
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (int64, error) {
	const op = "memory.UserRepo.Create"

	err := r.s.view(func(st *state) error {
		if _, ok := st.emails[u.Email]; ok {
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		st.nextUserID++
		u.ID = st.nextUserID
		if u.Role == "" {
			u.Role = domain.RoleUser
		}
		u.CreatedAt = time.Now().UTC()
		st.users[u.ID] = u
		st.emails[u.Email] = u.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (r *UserRepo) Upsert(ctx context.Context, u domain.User) (*domain.User, error) {
	err := r.s.view(func(st *state) error {
		if id, ok := st.emails[u.Email]; ok {
			existing := st.users[id]
			existing.FullName = u.FullName
			existing.PasswordHash = u.PasswordHash
			existing.Role = u.Role
			st.users[id] = existing
			u = existing
			return nil
		}
		st.nextUserID++
		u.ID = st.nextUserID
		u.CreatedAt = time.Now().UTC()
		st.users[u.ID] = u
		st.emails[u.Email] = u.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type CatalogRepo struct{ s *Store }

func (r *CatalogRepo) GetPark(ctx context.Context, id int64) (*domain.Park, error) {
	const op = "memory.CatalogRepo.GetPark"

	var out *domain.Park
	err := r.s.view(func(st *state) error {
		p, ok := st.parks[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "memory.CatalogRepo.GetProduct"

	var out *domain.Product
	err := r.s.view(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *CatalogRepo) ProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	err := r.s.view(func(st *state) error {
		seen := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if p, ok := st.products[id]; ok && !seen[id] {
				seen[id] = true
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

type CartRepo struct{ s *Store }

func (r *CartRepo) Items(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	var out []domain.CartItem
	err := r.s.view(func(st *state) error {
		for _, it := range st.carts[userID] {
			p := st.products[it.ProductID]
			it.ProductName = p.Name
			it.UnitPrice = p.UnitPrice
			out = append(out, it)
		}
		return nil
	})
	return out, err
}

func (r *CartRepo) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "memory.CartRepo.AddItem"

	return r.s.view(func(st *state) error {
		if _, ok := st.users[userID]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if _, ok := st.products[productID]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		items := st.carts[userID]
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity += quantity
				return nil
			}
		}
		st.carts[userID] = append(items, domain.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
		})
		return nil
	})
}

func (r *CartRepo) Clear(ctx context.Context, userID int64) error {
	return r.s.view(func(st *state) error {
		delete(st.carts, userID)
		return nil
	})
}

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	const op = "memory.OrderRepo.Create"

	return r.s.view(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		if _, ok := st.users[o.UserID]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		items := make([]domain.OrderItem, len(o.Items))
		for i, it := range o.Items {
			p, ok := st.products[it.ProductID]
			if !ok {
				return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
			}
			it.OrderID = o.ID
			it.ProductName = p.Name
			items[i] = it
		}
		o.Items = items
		st.orders[o.ID] = o
		return nil
	})
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "memory.OrderRepo.Get"

	var out *domain.Order
	err := r.s.view(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = &o
		return nil
	})
	return out, err
}

func sortOrders(orders []domain.Order) {
	slices.SortFunc(orders, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.s.view(func(st *state) error {
		for _, o := range st.orders {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
		return nil
	})
	sortOrders(out)
	return out, err
}

func (r *OrderRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	var out []domain.Order
	err := r.s.view(func(st *state) error {
		for _, o := range st.orders {
			out = append(out, o)
		}
		return nil
	})
	sortOrders(out)
	return page(out, limit, offset), err
}

func (r *OrderRepo) MarkCancelled(ctx context.Context, id int64) error {
	const op = "memory.OrderRepo.MarkCancelled"

	return r.s.view(func(st *state) error {
		o, ok := st.orders[id]
		if !ok || o.Status == domain.OrderCancelled {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		o.Status = domain.OrderCancelled
		st.orders[id] = o
		return nil
	})
}

type TicketRepo struct{ s *Store }

func withParkName(st *state, t domain.Ticket) domain.Ticket {
	t.ParkName = st.parks[t.ParkID].Name
	return t
}

func (r *TicketRepo) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "memory.TicketRepo.Get"

	var out *domain.Ticket
	err := r.s.view(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		t = withParkName(st, t)
		out = &t
		return nil
	})
	return out, err
}

// GetForUpdate is Get: transactions already run one at a time.
func (r *TicketRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.Get(ctx, id)
}

func (r *TicketRepo) LockParkDay(ctx context.Context, parkID int64, day time.Time) error {
	return ctx.Err()
}

func (r *TicketRepo) CountActive(ctx context.Context, parkID int64, day time.Time) (int, error) {
	var n int
	err := r.s.view(func(st *state) error {
		for _, t := range st.tickets {
			if t.ParkID == parkID && t.VisitDate.Equal(day) && t.Status != domain.TicketCancelled {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *TicketRepo) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	const op = "memory.TicketRepo.CreateBatch"

	return r.s.view(func(st *state) error {
		for _, t := range tickets {
			if _, ok := st.tickets[t.ID]; ok {
				return fmt.Errorf("%s:%w", op, repository.ErrConflict)
			}
			if _, ok := st.codes[t.RedemptionCode]; ok {
				return fmt.Errorf("%s:%w", op, repository.ErrConflict)
			}
			o, ok := st.orders[t.OrderID]
			if !ok || o.UserID != t.UserID {
				return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
			}
			if _, ok := st.parks[t.ParkID]; !ok {
				return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
			}
			st.tickets[t.ID] = t
			st.codes[t.RedemptionCode] = t.ID
		}
		return nil
	})
}

func (r *TicketRepo) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	const op = "memory.TicketRepo.UpdateStatus"

	return r.s.view(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		t.Status = status
		st.tickets[id] = t
		return nil
	})
}

func (r *TicketRepo) Reschedule(ctx context.Context, id int64, day time.Time) error {
	const op = "memory.TicketRepo.Reschedule"

	return r.s.view(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok || t.Status == domain.TicketCancelled {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		t.VisitDate = day
		t.Status = domain.TicketRescheduled
		st.tickets[id] = t
		return nil
	})
}

func (r *TicketRepo) CancelByOrder(ctx context.Context, orderID int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := r.s.view(func(st *state) error {
		for id, t := range st.tickets {
			if t.OrderID == orderID && t.Status != domain.TicketCancelled {
				t.Status = domain.TicketCancelled
				st.tickets[id] = t
				out = append(out, t)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Ticket) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (r *TicketRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := r.s.view(func(st *state) error {
		for _, t := range st.tickets {
			if t.UserID == userID {
				out = append(out, withParkName(st, t))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Ticket) int {
		if c := a.VisitDate.Compare(b.VisitDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r *TicketRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := r.s.view(func(st *state) error {
		for _, t := range st.tickets {
			out = append(out, withParkName(st, t))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Ticket) int {
		if c := cmp.Compare(b.OrderID, a.OrderID); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return page(out, limit, offset), err
}

// SequenceRepo hands out identifiers per sequence. Like database
// sequences, allocations survive a rolled back transaction.
type SequenceRepo struct {
	mu   sync.Mutex
	next map[repository.Sequence]int64
}

func (r *SequenceRepo) Next(ctx context.Context, seq repository.Sequence) (int64, error) {
	ids, err := r.NextN(ctx, seq, 1)
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func (r *SequenceRepo) NextN(ctx context.Context, seq repository.Sequence, n int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, n)
	for i := range ids {
		r.next[seq]++
		ids[i] = r.next[seq]
	}
	return ids, nil
}

type ReportRepo struct{ s *Store }

func (r *ReportRepo) Summary(ctx context.Context) (*domain.SystemSummary, error) {
	out := domain.SystemSummary{TotalRevenue: decimal.Zero}
	err := r.s.view(func(st *state) error {
		out.TotalUsers = int64(len(st.users))
		out.TotalOrders = int64(len(st.orders))
		for _, o := range st.orders {
			if o.Status != domain.OrderCancelled {
				out.TotalRevenue = out.TotalRevenue.Add(o.TotalAmount)
			}
		}
		for _, t := range st.tickets {
			out.TotalTickets++
			switch t.Status {
			case domain.TicketActive:
				out.ActiveTickets++
			case domain.TicketCancelled:
				out.CancelledTickets++
			case domain.TicketRescheduled:
				out.RescheduledTickets++
			}
		}
		return nil
	})
	return &out, err
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
