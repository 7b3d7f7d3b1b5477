package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/syndtr/goleveldb/leveldb"
)

var _ port.CatalogMirror = CatalogMirror{}

// The whole catalog lives under one fixed key. The mirror is read
// once at session start and rewritten after every catalog mutation,
// so there is no per-product keying to maintain.
var catalogKey = []byte("products")

type storedProduct struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// A CatalogMirror persists the catalog in a local key-value store.
type CatalogMirror struct {
	db *leveldb.DB
}

func NewCatalogMirror(path string) (CatalogMirror, error) {
	const op = "NewCatalogMirror"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return CatalogMirror{}, fmt.Errorf("%s: %w", op, err)
	}
	return CatalogMirror{db}, nil
}

// LoadCatalog reads the mirrored catalog. Reports [ErrNotFound] when
// nothing has been mirrored yet; the caller falls back to the default
// catalog.
func (m CatalogMirror) LoadCatalog(
	ctx context.Context,
) ([]domain.Product, error) {
	const op = "CatalogMirror.LoadCatalog"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := m.db.Get(catalogKey, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var vs []storedProduct
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps := make([]domain.Product, len(vs))
	for i, v := range vs {
		ps[i] = domain.Product{
			ProductID: v.ProductID,
			Name:      v.Name,
			Price:     v.Price,
			Image:     v.Image,
			Quantity:  v.Quantity,
		}
	}
	return ps, nil
}

func (m CatalogMirror) StoreCatalog(
	ctx context.Context, ps []domain.Product,
) error {
	const op = "CatalogMirror.StoreCatalog"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	vs := make([]storedProduct, len(ps))
	for i, p := range ps {
		vs[i] = storedProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  p.Quantity,
		}
	}

	data, err := json.Marshal(vs)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.db.Put(catalogKey, data, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m CatalogMirror) Close() {
	const op = "CatalogMirror.Close"
	log := slog.With("op", op)

	log.Info("closing catalog mirror...")

	if err := m.db.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("catalog mirror is closed")
}
