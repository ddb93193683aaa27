// Package payment simulates payment methods behind one Strategy interface.
// No real gateway is contacted.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCard   Method = "CARD"
	MethodWallet Method = "WALLET"
	MethodCash   Method = "CASH"
	MethodDummy  Method = "DUMMY"
)

// Details carries method-specific input. Only the fields of the selected
// method are read.
type Details struct {
	CardNumber     string
	WalletProvider string
}

type Outcome struct {
	Success   bool
	Message   string
	Reference string
}

type Strategy interface {
	Method() Method
	// Validate checks the details without charging anything.
	Validate(d Details) error
	// Execute charges amount. A declined charge is reported in the
	// outcome, not as an error.
	Execute(ctx context.Context, amount decimal.Decimal, d Details) (Outcome, error)
	// Refund reverses a successful Execute identified by its reference.
	Refund(ctx context.Context, reference string, amount decimal.Decimal) error
}

var ErrUnknownMethod = errors.New("unsupported payment method")

// Registry resolves method tags to strategies.
type Registry struct {
	strategies map[Method]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[Method]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Method()] = s
	}
	return r
}

// DefaultRegistry knows every simulated method.
func DefaultRegistry() *Registry {
	return NewRegistry(Card{}, Wallet{}, Cash{Tag: MethodCash}, Cash{Tag: MethodDummy})
}

// Resolve returns the strategy for tag. Tags are matched case-insensitively;
// an unknown tag is a validation error.
func (r *Registry) Resolve(tag string) (Strategy, error) {
	const op = "payment.Registry.Resolve"

	m := Method(strings.ToUpper(strings.TrimSpace(tag)))
	s, ok := r.strategies[m]
	if !ok {
		return nil, fmt.Errorf("%s:%w: %w", op, ErrUnknownMethod,
			domain.Invalid("paymentMethod", fmt.Sprintf("unsupported payment method %q", tag)))
	}
	return s, nil
}

func newReference(m Method) string {
	return fmt.Sprintf("%s-%s", m, uuid.NewString())
}

// interrupted reports a context that expired before the charge completed.
func interrupted(ctx context.Context) (Outcome, bool) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Outcome{Message: "Payment timed out."}, true
		}
		return Outcome{Message: "Payment was interrupted."}, true
	}
	return Outcome{}, false
}
