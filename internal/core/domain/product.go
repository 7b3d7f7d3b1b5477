package domain

import "errors"

var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateID  = errors.New("product id already registered")
	ErrInvalidInput = errors.New("invalid product data")
)

// A Product is a catalog entry. Price is always denominated in the
// reference currency (USD). Quantity is the number of units currently
// in the cart: a product is a cart member iff Quantity > 0.
type Product struct {
	ProductID int64
	Name      string
	Price     float64
	Image     string
	Quantity  int
}

func (p Product) InCart() bool {
	return p.Quantity > 0
}

// DefaultCatalog returns the catalog used when no mirrored
// catalog data exists yet.
func DefaultCatalog() []Product {
	return []Product{
		{ProductID: 1, Name: "Cherry", Price: 2.99, Image: "/images/cherry.jpg"},
		{ProductID: 2, Name: "Orange", Price: 1.99, Image: "/images/orange.jpg"},
		{ProductID: 3, Name: "Strawberry", Price: 3.49, Image: "/images/strawberry.jpg"},
	}
}
