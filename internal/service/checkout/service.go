package checkout

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/metrics"
	"github.com/kirinyoku/parktix/internal/repository"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
	"github.com/kirinyoku/parktix/internal/service/payment"
	"github.com/kirinyoku/parktix/internal/uow"
	"github.com/shopspring/decimal"
)

type Config struct {
	MaxTicketsPerOrder int
	PaymentTimeout     time.Duration
	// Location decides which calendar day "today" is.
	Location *time.Location
	Now      func() time.Time
}

type Line struct {
	ProductID int64
	Quantity  int
	// VisitDate is YYYY-MM-DD or RFC3339; empty means today.
	VisitDate string
}

type Request struct {
	UserID         int64
	Lines          []Line
	PaymentMethod  string
	PaymentDetails payment.Details
}

type Service struct {
	store    repository.Store
	uow      *uow.UoW
	payments *payment.Registry
	limiter  *redisrepo.SlidingWindowLimiter
	notifier *redisrepo.ParkDayNotifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	cfg      Config
}

func New(
	store repository.Store,
	tx *uow.UoW,
	payments *payment.Registry,
	limiter *redisrepo.SlidingWindowLimiter,
	notifier *redisrepo.ParkDayNotifier,
	m *metrics.Metrics,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxTicketsPerOrder <= 0 {
		cfg.MaxTicketsPerOrder = 10
	}

	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = 5 * time.Second
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if payments == nil {
		payments = payment.DefaultRegistry()
	}

	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store:    store,
		uow:      tx,
		payments: payments,
		limiter:  limiter,
		notifier: notifier,
		metrics:  m,
		log:      log,
		cfg:      cfg,
	}
}

// line is a priced cart line.
type line struct {
	product domain.Product
	park    *domain.Park
	qty     int
	day     time.Time
	price   decimal.Decimal
}

type parkDay struct {
	parkID int64
	day    time.Time
}

// Checkout prices the cart, charges it and, in one transaction, persists
// the PAID order, its items and one ACTIVE ticket per ticket unit.
//
// Parameters:
//   - ctx: request-scoped context.
//   - req: user, cart lines and payment selection.
//   - rlKey: rate limiter key, usually the client IP; empty skips limiting.
//
// Returns:
//   - *domain.Receipt: the created order and ticket identifiers.
//   - error: domain.ValidationError for bad input, checkout.ErrUserNotFound,
//     checkout.ErrProductNotFound, checkout.ErrParkClosed,
//     domain.PaymentDeclinedError, domain.CapacityExceededError,
//     domain.ErrConflict after exhausted retries, checkout.ErrRateLimited.
func (s *Service) Checkout(ctx context.Context, req Request, rlKey string) (*domain.Receipt, error) {
	const op = "service.checkout.Checkout"

	receipt, err := s.checkout(ctx, req, rlKey)
	if err != nil {
		s.metrics.ObserveCheckout(resultOf(err), 0)
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.metrics.ObserveCheckout("success", len(receipt.TicketIDs))
	s.log.Info("checkout completed",
		slog.String("op", op),
		slog.Int64("user_id", receipt.UserID),
		slog.Int64("order_id", receipt.OrderID),
		slog.String("total", receipt.TotalAmount.StringFixed(2)),
		slog.Int("tickets", len(receipt.TicketIDs)),
	)

	return receipt, nil
}

func (s *Service) checkout(ctx context.Context, req Request, rlKey string) (*domain.Receipt, error) {
	if rlKey != "" {
		d, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			s.log.Warn("rate limiter unavailable", slog.String("error", err.Error()))
		} else if !d.Allowed {
			return nil, fmt.Errorf("%w, retry in %s", ErrRateLimited, d.RetryAfter.Round(time.Second))
		}
	}

	if req.UserID <= 0 {
		return nil, domain.Invalid("userId", "User is required.")
	}

	if len(req.Lines) == 0 {
		return nil, domain.Invalid("cartItems", "Cart is empty.")
	}

	if _, err := s.store.Users().GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	strategy, err := s.payments.Resolve(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := strategy.Validate(req.PaymentDetails); err != nil {
		return nil, err
	}

	lines, err := s.price(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.price.Mul(decimal.NewFromInt(int64(l.qty))))
	}

	outcome, err := s.charge(ctx, strategy, total, req.PaymentDetails)
	if err != nil {
		return nil, err
	}

	receipt, err := s.persist(ctx, req.UserID, lines, total)
	if err != nil {
		if errors.Is(err, repository.ErrCommitUnknown) {
			s.log.Error("checkout commit outcome unknown, payment kept for reconciliation",
				slog.Int64("user_id", req.UserID),
				slog.String("method", string(strategy.Method())),
				slog.String("reference", outcome.Reference),
				slog.String("amount", total.StringFixed(2)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		s.refund(ctx, strategy, outcome, total, req.UserID, err)
		return nil, err
	}

	receipt.PaymentMethod = string(strategy.Method())
	receipt.PaymentReference = outcome.Reference
	receipt.PaymentMessage = outcome.Message

	return receipt, nil
}

// price resolves every product, applies the booking rules and locks the
// current unit price of each line.
func (s *Service) price(ctx context.Context, in []Line) ([]line, error) {
	ids := make([]int64, 0, len(in))
	for _, l := range in {
		ids = append(ids, l.ProductID)
	}

	products, err := s.store.Catalog().ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, l := range in {
		if _, ok := byID[l.ProductID]; !ok {
			return nil, ErrProductNotFound
		}
	}

	for _, l := range in {
		if l.Quantity <= 0 {
			return nil, domain.Invalid("quantity", "Quantities must be whole numbers greater than zero.")
		}
	}

	tickets := 0
	for _, l := range in {
		if byID[l.ProductID].Type == domain.ProductTicket {
			tickets += l.Quantity
		}
	}
	if tickets > s.cfg.MaxTicketsPerOrder {
		return nil, domain.Invalid("cartItems",
			fmt.Sprintf("You can only buy up to %d tickets per order.", s.cfg.MaxTicketsPerOrder))
	}

	today := domain.Day(s.cfg.Now(), s.cfg.Location)
	parks := make(map[int64]*domain.Park)

	out := make([]line, 0, len(in))
	for _, l := range in {
		p := byID[l.ProductID]
		pl := line{product: p, qty: l.Quantity, price: p.UnitPrice}

		if p.Type == domain.ProductTicket {
			if p.ParkID == nil {
				return nil, domain.Invalid("productId",
					fmt.Sprintf("ticket product %d has no park", p.ID))
			}

			park, ok := parks[*p.ParkID]
			if !ok {
				park, err = s.store.Catalog().GetPark(ctx, *p.ParkID)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return nil, ErrProductNotFound
					}
					return nil, err
				}
				parks[park.ID] = park
			}
			if park.Status == domain.ParkClosed {
				return nil, fmt.Errorf("%w: %s", ErrParkClosed, park.Name)
			}
			pl.park = park

			pl.day = today
			if l.VisitDate != "" {
				day, err := domain.ParseVisitDate(l.VisitDate, s.cfg.Location)
				if err != nil {
					return nil, domain.Invalid("visitDate", "Invalid visit date.")
				}
				if day.Before(today) {
					return nil, domain.Invalid("visitDate", "Visit date cannot be in the past.")
				}
				pl.day = day
			}
		}

		out = append(out, pl)
	}

	return out, nil
}

func (s *Service) charge(
	ctx context.Context,
	strategy payment.Strategy,
	total decimal.Decimal,
	details payment.Details,
) (payment.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	outcome, err := strategy.Execute(ctx, total, details)
	if err != nil {
		return payment.Outcome{}, err
	}

	if !outcome.Success {
		return payment.Outcome{}, domain.PaymentDeclinedError{
			Method:  string(strategy.Method()),
			Message: outcome.Message,
		}
	}

	return outcome, nil
}

func (s *Service) persist(
	ctx context.Context,
	userID int64,
	lines []line,
	total decimal.Decimal,
) (*domain.Receipt, error) {
	demand := make(map[parkDay]int)
	capacity := make(map[int64]int)
	for _, l := range lines {
		if l.park != nil {
			demand[parkDay{l.park.ID, l.day}] += l.qty
			capacity[l.park.ID] = l.park.DailyCapacity
		}
	}

	keys := make([]parkDay, 0, len(demand))
	for k := range demand {
		keys = append(keys, k)
	}
	// fixed lock order
	slices.SortFunc(keys, func(a, b parkDay) int {
		if c := cmp.Compare(a.parkID, b.parkID); c != 0 {
			return c
		}
		return a.day.Compare(b.day)
	})

	var receipt *domain.Receipt

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		orderID, err := tx.Sequences().Next(ctx, repository.SeqOrders)
		if err != nil {
			return err
		}

		itemIDs, err := tx.Sequences().NextN(ctx, repository.SeqOrderItems, len(lines))
		if err != nil {
			return err
		}

		order := domain.Order{
			ID:          orderID,
			UserID:      userID,
			CreatedAt:   s.cfg.Now().UTC(),
			Status:      domain.OrderPaid,
			TotalAmount: total,
			Items:       make([]domain.OrderItem, len(lines)),
		}
		for i, l := range lines {
			order.Items[i] = domain.OrderItem{
				ID:          itemIDs[i],
				OrderID:     orderID,
				ProductID:   l.product.ID,
				ProductName: l.product.Name,
				Quantity:    l.qty,
				LockedPrice: l.price,
			}
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		ticketCount := 0
		for _, k := range keys {
			if err := tx.Tickets().LockParkDay(ctx, k.parkID, k.day); err != nil {
				return err
			}

			active, err := tx.Tickets().CountActive(ctx, k.parkID, k.day)
			if err != nil {
				return err
			}

			if active+demand[k] > capacity[k.parkID] {
				return domain.CapacityExceededError{
					ParkID:    k.parkID,
					VisitDate: k.day,
					Capacity:  capacity[k.parkID],
					Active:    active,
					Requested: demand[k],
				}
			}

			ticketCount += demand[k]
		}

		var ticketIDs []int64
		if ticketCount > 0 {
			ticketIDs, err = tx.Sequences().NextN(ctx, repository.SeqTickets, ticketCount)
			if err != nil {
				return err
			}

			tickets := make([]domain.Ticket, 0, ticketCount)
			perProduct := make(map[int64]int)
			for _, l := range lines {
				if l.park == nil {
					continue
				}
				for range l.qty {
					perProduct[l.product.ID]++
					code := fmt.Sprintf("ORDER-%d-%d-%d", orderID, l.product.ID, perProduct[l.product.ID])
					tickets = append(tickets, domain.Ticket{
						ID:             ticketIDs[len(tickets)],
						OrderID:        orderID,
						UserID:         userID,
						ParkID:         l.park.ID,
						ParkName:       l.park.Name,
						VisitDate:      l.day,
						Status:         domain.TicketActive,
						RedemptionCode: code,
						CreatedAt:      order.CreatedAt,
					})
				}
			}

			if err := tx.Tickets().CreateBatch(ctx, tickets); err != nil {
				return err
			}
		}

		for _, k := range keys {
			after(func(ctx context.Context) {
				s.notifier.ParkDayChanged(ctx, k.parkID, k.day)
			})
		}

		receipt = &domain.Receipt{
			OrderID:     order.ID,
			UserID:      userID,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt,
			Items:       order.Items,
			TicketIDs:   ticketIDs,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// refund compensates a successful charge whose order was not committed.
func (s *Service) refund(
	ctx context.Context,
	strategy payment.Strategy,
	outcome payment.Outcome,
	total decimal.Decimal,
	userID int64,
	cause error,
) {
	const op = "service.checkout.refund"

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PaymentTimeout)
	defer cancel()

	attrs := []any{
		slog.String("op", op),
		slog.Int64("user_id", userID),
		slog.String("method", string(strategy.Method())),
		slog.String("reference", outcome.Reference),
		slog.String("amount", total.StringFixed(2)),
		slog.String("cause", cause.Error()),
	}

	if err := strategy.Refund(ctx, outcome.Reference, total); err != nil {
		s.log.Error("payment refund failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}

	s.log.Warn("payment refunded after failed checkout", attrs...)
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrParkClosed):
		return "park_closed"
	case errors.Is(err, domain.ErrPaymentDeclined):
		return "payment_declined"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}
