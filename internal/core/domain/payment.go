package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidCardNumber = errors.New("invalid card number: must be 16 digits")
	ErrInvalidExpiry     = errors.New("invalid expiration date: must be in MM/YY format")
	ErrInvalidCvv        = errors.New("invalid cvv: must be 3 or 4 digits")
)

type SettlementStatus string

const (
	// SettlementPaid: the tendered amount covered the due amount,
	// the cart is emptied and any change returned.
	SettlementPaid SettlementStatus = "paid"

	// SettlementUnderpaid: the tendered amount fell short, the
	// shortfall is carried as an outstanding balance and the cart
	// is held.
	SettlementUnderpaid SettlementStatus = "underpaid"

	// SettlementEmpty: nothing was due, no state changed.
	SettlementEmpty SettlementStatus = "empty"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// A CashSettlement is the outcome of one cash payment attempt.
// All amounts are unrounded reference-currency values.
type CashSettlement struct {
	Status   SettlementStatus
	Total    float64
	Tendered float64
	Change   float64
	Balance  float64
}

// A Receipt records a completed settlement for the optional
// journal and event-stream collaborators.
type Receipt struct {
	Method   PaymentMethod
	Status   SettlementStatus
	Total    float64
	Tendered float64
	Change   float64
	Balance  float64
	IssuedAt time.Time
}

// A SalesTally aggregates settled revenue per payment method.
type SalesTally struct {
	Settlements int64
	Revenue     float64
}
