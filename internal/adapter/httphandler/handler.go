package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// GET  /v1/products                      (200 OK)
// POST /v1/products JSON                 (201 Created, 400, 409)
type CatalogHandler struct {
	reader   port.CatalogReader
	writer   port.CatalogWriter
	currency port.CurrencySwitcher
}

func RegisterCatalog(
	mux *http.ServeMux,
	reader port.CatalogReader,
	writer port.CatalogWriter,
	currency port.CurrencySwitcher,
) {
	h := CatalogHandler{reader, writer, currency}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("POST /v1/products", h.PostProduct)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"

	vs := []Product{}
	for _, p := range h.reader.ListProducts() {
		vs = append(vs, Product{
			ProductID:    p.ProductID,
			Name:         p.Name,
			Price:        p.Price,
			Image:        p.Image,
			Quantity:     p.Quantity,
			DisplayPrice: h.currency.Format(p.Price),
		})
	}

	writeJSON(w, op, http.StatusOK, vs)
}

func (h CatalogHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.PostProduct"
	log := slog.With("op", op)

	var v Product
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	p := domain.Product{
		ProductID: v.ProductID,
		Name:      v.Name,
		Price:     v.Price,
		Image:     v.Image,
	}

	if err := h.writer.RegisterProduct(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateID):
			http.Error(w, "product id already exists", http.StatusConflict)
		case errors.Is(err, domain.ErrInvalidInput):
			http.Error(w, "invalid product data", http.StatusBadRequest)
		default:
			http.Error(w, "failed to register product",
				http.StatusInternalServerError)
		}
		log.Warn("failed to register product", "err", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	log.Info("product registered", "productID", p.ProductID)
}

// GET    /v1/cart                        (200 OK)
// POST   /v1/cart/{productID}            (204 No content, 404)
// POST   /v1/cart/{productID}/decrease   (204 No content, 404)
// DELETE /v1/cart/{productID}            (204 No content, 404)
// DELETE /v1/cart                        (204 No content)
type CartHandler struct {
	reader   port.CatalogReader
	mutator  port.CartMutator
	currency port.CurrencySwitcher
}

func RegisterCart(
	mux *http.ServeMux,
	reader port.CatalogReader,
	mutator port.CartMutator,
	currency port.CurrencySwitcher,
) {
	h := CartHandler{reader, mutator, currency}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/{productID}", h.AddItem)
	mux.HandleFunc("POST /v1/cart/{productID}/decrease", h.DecreaseItem)
	mux.HandleFunc("DELETE /v1/cart/{productID}", h.RemoveItem)
	mux.HandleFunc("DELETE /v1/cart", h.EmptyCart)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"

	v := Cart{Items: []CartItem{}}
	for _, p := range h.reader.ListCart() {
		lineTotal := p.Price * float64(p.Quantity)
		v.Items = append(v.Items, CartItem{
			ProductID:        p.ProductID,
			Name:             p.Name,
			Price:            p.Price,
			Quantity:         p.Quantity,
			LineTotal:        lineTotal,
			DisplayLineTotal: h.currency.Format(lineTotal),
		})
	}
	v.Total = h.reader.CartTotal()
	v.DisplayTotal = h.currency.Format(v.Total)

	writeJSON(w, op, http.StatusOK, v)
}

func (h CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AddItem"
	h.mutate(w, r, op, h.mutator.AddToCart)
}

func (h CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DecreaseItem"
	h.mutate(w, r, op, h.mutator.DecreaseQuantity)
}

func (h CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.RemoveItem"
	h.mutate(w, r, op, h.mutator.RemoveFromCart)
}

func (h CartHandler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	h.mutator.EmptyCart(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h CartHandler) mutate(
	w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, productID int64) error,
) {
	log := slog.With("op", op)

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := fn(r.Context(), productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update cart", http.StatusInternalServerError)
		log.Error("failed to update cart", "err", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST   /v1/payments/cash JSON          (200 OK, 400)
// POST   /v1/payments/card JSON          (200 OK, 400, 422)
// DELETE /v1/receipt                     (204 No content)
type PaymentsHandler struct {
	cash     port.CashSettler
	card     port.CardSettler
	currency port.CurrencySwitcher
}

func RegisterPayments(
	mux *http.ServeMux,
	cash port.CashSettler,
	card port.CardSettler,
	currency port.CurrencySwitcher,
) {
	h := PaymentsHandler{cash, card, currency}
	mux.HandleFunc("POST /v1/payments/cash", h.PostCashPayment)
	mux.HandleFunc("POST /v1/payments/card", h.PostCardPayment)
	mux.HandleFunc("DELETE /v1/receipt", h.ClearReceipt)
}

func (h PaymentsHandler) PostCashPayment(
	w http.ResponseWriter, r *http.Request,
) {
	const op = "PaymentsHandler.PostCashPayment"
	log := slog.With("op", op)

	var v CashPayment
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	s := h.cash.SettleCash(r.Context(), v.Amount)

	writeJSON(w, op, http.StatusOK, CashSettlement{
		Status:         string(s.Status),
		Total:          s.Total,
		Tendered:       s.Tendered,
		Change:         s.Change,
		Balance:        s.Balance,
		DisplayTotal:   h.currency.Format(s.Total),
		DisplayChange:  h.currency.Format(s.Change),
		DisplayBalance: h.currency.Format(s.Balance),
	})

	log.Info("cash settlement", "status", s.Status)
}

func (h PaymentsHandler) PostCardPayment(
	w http.ResponseWriter, r *http.Request,
) {
	const op = "PaymentsHandler.PostCardPayment"
	log := slog.With("op", op)

	var v CardPayment
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	err := h.card.SettleCard(r.Context(), v.Number, v.Expiry, v.Cvv)
	if err != nil {
		writeJSON(w, op, http.StatusUnprocessableEntity, CardSettlement{
			Status: "rejected",
			Reason: cardRejectionReason(err),
		})
		log.Info("card payment rejected", "reason", cardRejectionReason(err))
		return
	}

	writeJSON(w, op, http.StatusOK, CardSettlement{Status: "accepted"})
	log.Info("card payment accepted")
}

func (h PaymentsHandler) ClearReceipt(w http.ResponseWriter, r *http.Request) {
	h.cash.ClearReceipt()
	w.WriteHeader(http.StatusNoContent)
}

func cardRejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCardNumber):
		return "InvalidCardNumber"
	case errors.Is(err, domain.ErrInvalidExpiry):
		return "InvalidExpiry"
	case errors.Is(err, domain.ErrInvalidCvv):
		return "InvalidCvv"
	}
	return "Invalid"
}

// PUT /v1/currency JSON                  (200 OK, 400)
type CurrencyHandler struct {
	currency port.CurrencySwitcher
}

func RegisterCurrency(mux *http.ServeMux, currency port.CurrencySwitcher) {
	h := CurrencyHandler{currency}
	mux.HandleFunc("PUT /v1/currency", h.PutCurrency)
	mux.HandleFunc("GET /v1/currency", h.GetCurrency)
}

// PutCurrency selects the display currency. Unknown codes are
// ignored, the response always carries the effective currency.
func (h CurrencyHandler) PutCurrency(w http.ResponseWriter, r *http.Request) {
	const op = "CurrencyHandler.PutCurrency"
	log := slog.With("op", op)

	var v CurrencySelection
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	h.currency.SwitchCurrency(v.Code)

	writeJSON(w, op, http.StatusOK, CurrencyState{
		Currency: string(h.currency.Current()),
		Symbol:   h.currency.Symbol(),
	})
}

func (h CurrencyHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	const op = "CurrencyHandler.GetCurrency"

	writeJSON(w, op, http.StatusOK, CurrencyState{
		Currency: string(h.currency.Current()),
		Symbol:   h.currency.Symbol(),
	})
}

// GET /v1/sales/{method}                 (200 OK, 204 No content, 400)
type SalesHandler struct {
	sales port.SalesReader
}

func RegisterSales(mux *http.ServeMux, sales port.SalesReader) {
	h := SalesHandler{sales}
	mux.HandleFunc("GET /v1/sales/{method}", h.GetSalesTally)
}

func (h SalesHandler) GetSalesTally(w http.ResponseWriter, r *http.Request) {
	const op = "SalesHandler.GetSalesTally"
	log := slog.With("op", op)

	method := domain.PaymentMethod(r.PathValue("method"))
	if method != domain.PaymentMethodCash &&
		method != domain.PaymentMethodCard {
		http.Error(w, "unknown payment method", http.StatusBadRequest)
		return
	}

	tally, err := h.sales.SalesTally(method)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		log.Warn("no tally", "method", method, "err", err)
		return
	}

	writeJSON(w, op, http.StatusOK, SalesTally{
		Method:      string(method),
		Settlements: tally.Settlements,
		Revenue:     tally.Revenue,
	})
}

func writeJSON(w http.ResponseWriter, op string, statusCode int, v any) {
	log := slog.With("op", op)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
