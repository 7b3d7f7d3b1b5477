package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CashSettler = (*PaymentService)(nil)
var _ port.CardSettler = (*PaymentService)(nil)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cardCvvRe    = regexp.MustCompile(`^\d{3,4}$`)
)

// A PaymentService reconciles payments against the cart total.
//
// Cash settlement is a two-state machine: Clear (no outstanding
// balance) and PartiallyPaid (a prior cash payment under-paid and the
// shortfall is carried). Card settlement is independent format
// validation and never touches the cash balance.
type PaymentService struct {
	mu    sync.Mutex
	cart  port.CartAccessor
	sinks []port.ReceiptSink

	balance       float64
	partiallyPaid bool
}

func NewPaymentService(
	cart port.CartAccessor, sinks ...port.ReceiptSink,
) *PaymentService {
	return &PaymentService{cart: cart, sinks: sinks}
}

// SettleCash resolves one cash payment attempt. The due amount is the
// outstanding balance when partially paid, the cart total otherwise.
// Overpayment empties the cart and returns change; underpayment holds
// the goods and carries the shortfall.
func (s *PaymentService) SettleCash(
	ctx context.Context, tendered float64,
) domain.CashSettlement {
	const op = "PaymentService.SettleCash"

	if math.IsNaN(tendered) || math.IsInf(tendered, 0) {
		tendered = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	due := s.cart.CartTotal()
	if s.partiallyPaid {
		due = s.balance
	}

	if due == 0 {
		return domain.CashSettlement{Status: domain.SettlementEmpty}
	}

	v := domain.CashSettlement{Total: due, Tendered: tendered}
	change := tendered - due
	if change >= 0 {
		v.Status = domain.SettlementPaid
		v.Change = change
		s.cart.EmptyCart(ctx)
		s.balance = 0
		s.partiallyPaid = false
	} else {
		v.Status = domain.SettlementUnderpaid
		v.Balance = -change
		s.balance = -change
		s.partiallyPaid = true
	}

	s.emitReceipt(ctx, op, domain.Receipt{
		Method:   domain.PaymentMethodCash,
		Status:   v.Status,
		Total:    v.Total,
		Tendered: v.Tendered,
		Change:   v.Change,
		Balance:  v.Balance,
		IssuedAt: time.Now(),
	})

	return v
}

// SettleCard validates the card data locally; there is no settlement
// against a gateway. The first failing check wins. On success the cart
// is emptied. An outstanding cash balance is deliberately left in
// place: the card flow does not interact with cash balance tracking.
func (s *PaymentService) SettleCard(
	ctx context.Context, number, expiry, cvv string,
) error {
	const op = "PaymentService.SettleCard"

	if err := validateCard(number, expiry, cvv); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.cart.CartTotal()
	s.cart.EmptyCart(ctx)

	s.emitReceipt(ctx, op, domain.Receipt{
		Method:   domain.PaymentMethodCard,
		Status:   domain.SettlementPaid,
		Total:    total,
		Tendered: total,
		IssuedAt: time.Now(),
	})

	return nil
}

// ClearReceipt forces the state machine back to Clear without
// affecting the cart.
func (s *PaymentService) ClearReceipt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = 0
	s.partiallyPaid = false
}

// OutstandingBalance reports the carried shortfall, if any.
func (s *PaymentService) OutstandingBalance() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, s.partiallyPaid
}

// emitReceipt fans the receipt out to the optional collaborators.
// Best-effort: failures are logged and never surfaced to the caller.
func (s *PaymentService) emitReceipt(
	ctx context.Context, op string, r domain.Receipt,
) {
	log := slog.With("op", op)
	for _, sink := range s.sinks {
		if err := sink.SinkReceipt(ctx, r); err != nil {
			log.Warn("failed to sink receipt", "err", err)
		}
	}
}

func validateCard(number, expiry, cvv string) error {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, number)
	if !cardNumberRe.MatchString(stripped) {
		return domain.ErrInvalidCardNumber
	}
	if !cardExpiryRe.MatchString(expiry) {
		return domain.ErrInvalidExpiry
	}
	if !cardCvvRe.MatchString(cvv) {
		return domain.ErrInvalidCvv
	}
	return nil
}
