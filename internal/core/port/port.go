package port

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
)

// Inbound ports consumed by the presentation layer.

type CatalogReader interface {
	ListProducts() []domain.Product
	ListCart() []domain.Product
	CartTotal() float64
}

type CatalogWriter interface {
	RegisterProduct(ctx context.Context, p domain.Product) error
}

type CartMutator interface {
	AddToCart(ctx context.Context, productID int64) error
	IncreaseQuantity(ctx context.Context, productID int64) error
	DecreaseQuantity(ctx context.Context, productID int64) error
	RemoveFromCart(ctx context.Context, productID int64) error
	EmptyCart(ctx context.Context)
}

type CashSettler interface {
	SettleCash(ctx context.Context, tendered float64) domain.CashSettlement
	ClearReceipt()
}

type CardSettler interface {
	SettleCard(ctx context.Context, number, expiry, cvv string) error
}

type CurrencySwitcher interface {
	SwitchCurrency(code string)
	Current() domain.Currency
	Convert(amount float64) float64
	Format(amount float64) string
	Symbol() string
}

type SalesReader interface {
	SalesTally(method domain.PaymentMethod) (domain.SalesTally, error)
}

// Outbound ports implemented by the optional collaborators.

// A CatalogMirror persists the whole catalog between sessions.
type CatalogMirror interface {
	LoadCatalog(ctx context.Context) ([]domain.Product, error)
	StoreCatalog(ctx context.Context, ps []domain.Product) error
}

// A ReceiptSink consumes settlement receipts (event stream, journal).
type ReceiptSink interface {
	SinkReceipt(ctx context.Context, r domain.Receipt) error
}

// CartAccessor is the payment reconciler's view of the cart store.
type CartAccessor interface {
	CartTotal() float64
	EmptyCart(ctx context.Context)
}
