package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CatalogReader = (*CartService)(nil)
var _ port.CatalogWriter = (*CartService)(nil)
var _ port.CartMutator = (*CartService)(nil)
var _ port.CartAccessor = (*CartService)(nil)

// A CartService owns the product catalog and the cart.
//
// Cart membership is derived from catalog quantities: a product is in
// the cart iff its Quantity > 0. There is no separate cart collection
// to keep in sync.
type CartService struct {
	mu      sync.Mutex
	catalog []domain.Product
	mirror  port.CatalogMirror
}

// NewCartService creates a store over the given catalog.
// The mirror is optional; nil disables mirroring.
func NewCartService(
	catalog []domain.Product, mirror port.CatalogMirror,
) *CartService {
	s := &CartService{mirror: mirror}
	s.catalog = make([]domain.Product, len(catalog))
	copy(s.catalog, catalog)
	return s
}

// ListProducts returns a snapshot of the whole catalog.
func (s *CartService) ListProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps := make([]domain.Product, len(s.catalog))
	copy(ps, s.catalog)
	return ps
}

// ListCart returns a snapshot of the current cart members.
func (s *CartService) ListCart() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ps []domain.Product
	for _, p := range s.catalog {
		if p.InCart() {
			ps = append(ps, p)
		}
	}
	return ps
}

// CartTotal returns the exact, unrounded sum of price*quantity over
// cart members in the reference currency. Rounding happens only at
// display formatting, so successive partial payments reconcile
// against the same figure.
func (s *CartService) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartTotal()
}

func (s *CartService) cartTotal() float64 {
	var sum float64
	for _, p := range s.catalog {
		price := p.Price
		if math.IsNaN(price) || math.IsInf(price, 0) {
			price = 0
		}
		sum += price * float64(p.Quantity)
	}
	return sum
}

// AddToCart increments the product quantity by one unit. The product
// becomes a cart member on the first unit. Unknown ids mutate nothing
// and report domain.ErrNotFound.
func (s *CartService) AddToCart(ctx context.Context, productID int64) error {
	const op = "CartService.AddToCart"

	s.mu.Lock()
	p := s.findProduct(productID)
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	p.Quantity++
	s.mu.Unlock()

	s.mirrorCatalog(ctx, op)
	return nil
}

// IncreaseQuantity is AddToCart under the name the cart view uses.
// One implementation on purpose: the two operations must never drift.
func (s *CartService) IncreaseQuantity(
	ctx context.Context, productID int64,
) error {
	return s.AddToCart(ctx, productID)
}

// DecreaseQuantity removes one unit. Reaching zero removes the product
// from the cart. Decreasing a product that is not in the cart is a
// no-op; quantity never goes negative.
func (s *CartService) DecreaseQuantity(
	ctx context.Context, productID int64,
) error {
	const op = "CartService.DecreaseQuantity"

	s.mu.Lock()
	p := s.findProduct(productID)
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if p.Quantity == 0 {
		s.mu.Unlock()
		return nil
	}
	p.Quantity--
	s.mu.Unlock()

	s.mirrorCatalog(ctx, op)
	return nil
}

// RemoveFromCart zeroes the product quantity regardless of its
// current value.
func (s *CartService) RemoveFromCart(
	ctx context.Context, productID int64,
) error {
	const op = "CartService.RemoveFromCart"

	s.mu.Lock()
	p := s.findProduct(productID)
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	p.Quantity = 0
	s.mu.Unlock()

	s.mirrorCatalog(ctx, op)
	return nil
}

// EmptyCart zeroes every quantity, leaving an empty cart and a
// consistent catalog.
func (s *CartService) EmptyCart(ctx context.Context) {
	const op = "CartService.EmptyCart"

	s.mu.Lock()
	for i := range s.catalog {
		s.catalog[i].Quantity = 0
	}
	s.mu.Unlock()

	s.mirrorCatalog(ctx, op)
}

// RegisterProduct appends a new catalog entry with zero quantity.
func (s *CartService) RegisterProduct(
	ctx context.Context, p domain.Product,
) error {
	const op = "CartService.RegisterProduct"

	if err := validateProduct(p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	if s.findProduct(p.ProductID) != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateID)
	}
	p.Quantity = 0
	s.catalog = append(s.catalog, p)
	s.mu.Unlock()

	s.mirrorCatalog(ctx, op)
	return nil
}

func (s *CartService) findProduct(productID int64) *domain.Product {
	for i := range s.catalog {
		if s.catalog[i].ProductID == productID {
			return &s.catalog[i]
		}
	}
	return nil
}

// mirrorCatalog pushes the catalog to the mirror collaborator.
// Best-effort: failures are logged and never surfaced to the caller.
func (s *CartService) mirrorCatalog(ctx context.Context, op string) {
	if s.mirror == nil {
		return
	}
	ps := s.ListProducts()
	if err := s.mirror.StoreCatalog(ctx, ps); err != nil {
		slog.With("op", op).Warn("failed to mirror catalog", "err", err)
	}
}

func validateProduct(p domain.Product) error {
	if p.ProductID < 1 {
		return fmt.Errorf("%w: product id must be positive", domain.ErrInvalidInput)
	}
	if p.Name == "" || p.Image == "" {
		return fmt.Errorf("%w: name and image are required", domain.ErrInvalidInput)
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", domain.ErrInvalidInput)
	}
	return nil
}
