package payment

import (
	"context"
	"strings"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	minCardDigits = 12
	maxCardDigits = 19
)

type Card struct{}

func (Card) Method() Method { return MethodCard }

func (Card) Validate(d Details) error {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(d.CardNumber))
	if digits == "" {
		return domain.Invalid("paymentDetails.cardNumber", "Enter your card number.")
	}
	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return domain.Invalid("paymentDetails.cardNumber", "Card number must have 12 to 19 digits.")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return domain.Invalid("paymentDetails.cardNumber", "Card number must contain digits only.")
		}
	}
	return nil
}

func (c Card) Execute(ctx context.Context, amount decimal.Decimal, d Details) (Outcome, error) {
	if err := c.Validate(d); err != nil {
		return Outcome{}, err
	}
	if out, ok := interrupted(ctx); ok {
		return out, nil
	}
	return Outcome{
		Success:   true,
		Message:   "Card payment authorised.",
		Reference: newReference(MethodCard),
	}, nil
}

func (Card) Refund(ctx context.Context, reference string, amount decimal.Decimal) error {
	return ctx.Err()
}

var walletProviders = map[string]bool{
	"grabpay":       true,
	"tng":           true,
	"boost":         true,
	"shopeedigital": true,
}

type Wallet struct{}

func (Wallet) Method() Method { return MethodWallet }

func (Wallet) Validate(d Details) error {
	p := strings.ToLower(strings.TrimSpace(d.WalletProvider))
	if p == "" {
		return domain.Invalid("paymentDetails.walletProvider", "Choose an e-wallet provider.")
	}
	if !walletProviders[p] {
		return domain.Invalid("paymentDetails.walletProvider", "Unsupported e-wallet provider.")
	}
	return nil
}

func (w Wallet) Execute(ctx context.Context, amount decimal.Decimal, d Details) (Outcome, error) {
	if err := w.Validate(d); err != nil {
		return Outcome{}, err
	}
	if out, ok := interrupted(ctx); ok {
		return out, nil
	}
	return Outcome{
		Success:   true,
		Message:   "E-wallet payment authorised.",
		Reference: newReference(MethodWallet),
	}, nil
}

func (Wallet) Refund(ctx context.Context, reference string, amount decimal.Decimal) error {
	return ctx.Err()
}

// Cash settles on arrival at the park and always succeeds.
type Cash struct {
	Tag Method
}

func (c Cash) Method() Method {
	if c.Tag == "" {
		return MethodCash
	}
	return c.Tag
}

func (Cash) Validate(Details) error { return nil }

func (c Cash) Execute(ctx context.Context, amount decimal.Decimal, _ Details) (Outcome, error) {
	if out, ok := interrupted(ctx); ok {
		return out, nil
	}
	return Outcome{
		Success:   true,
		Message:   "Payment processed and order created.",
		Reference: newReference(c.Method()),
	}, nil
}

func (Cash) Refund(context.Context, string, decimal.Decimal) error { return nil }
