package httphandler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() http.Handler {
	cartSvc := service.NewCartService(domain.DefaultCatalog(), nil)
	paymentSvc := service.NewPaymentService(cartSvc)
	currencySvc := service.NewCurrencyService()

	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, cartSvc, cartSvc, currencySvc)
	httphandler.RegisterCart(mux, cartSvc, cartSvc, currencySvc)
	httphandler.RegisterPayments(mux, paymentSvc, paymentSvc, currencySvc)
	httphandler.RegisterCurrency(mux, currencySvc)

	return httphandler.AllowJSON(mux)
}

func doJSON(
	t *testing.T, h http.Handler, method, target, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestCatalogHandler(t *testing.T) {

	t.Run("GetProducts", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodGet, "/v1/products", "")
		require.Equal(t, http.StatusOK, w.Code)

		ps := decodeBody[[]httphandler.Product](t, w)
		require.Len(t, ps, 3)
		assert.Equal(t, "Cherry", ps[0].Name)
		assert.Equal(t, "$2.99", ps[0].DisplayPrice)
	})

	t.Run("PostProduct", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/products",
			`{"product_id":4,"name":"Lime","price":0.99,"image":"/images/lime.jpg"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, h, http.MethodGet, "/v1/products", "")
		ps := decodeBody[[]httphandler.Product](t, w)
		assert.Len(t, ps, 4)
	})

	t.Run("PostProductDuplicateID", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/products",
			`{"product_id":1,"name":"Lime","price":0.99,"image":"/images/lime.jpg"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("PostProductInvalidInput", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/products",
			`{"product_id":-1,"name":"Lime","price":0.99,"image":"/images/lime.jpg"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsNonJSONMediaType", func(t *testing.T) {
		h := newTestHandler()

		r := httptest.NewRequest(
			http.MethodPost, "/v1/products", strings.NewReader("name=Lime"),
		)
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})
}

func TestCartHandler(t *testing.T) {

	t.Run("AddAndGetCart", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/cart/1", "")
		require.Equal(t, http.StatusNoContent, w.Code)
		w = doJSON(t, h, http.MethodPost, "/v1/cart/1", "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, h, http.MethodGet, "/v1/cart", "")
		require.Equal(t, http.StatusOK, w.Code)

		cart := decodeBody[httphandler.Cart](t, w)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.InDelta(t, 5.98, cart.Total, 1e-9)
		assert.Equal(t, "$5.98", cart.DisplayTotal)
	})

	t.Run("UnknownProductIs404", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/cart/42", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MalformedProductIDIs400", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/cart/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DecreaseAndRemove", func(t *testing.T) {
		h := newTestHandler()

		doJSON(t, h, http.MethodPost, "/v1/cart/1", "")
		doJSON(t, h, http.MethodPost, "/v1/cart/2", "")

		w := doJSON(t, h, http.MethodPost, "/v1/cart/1/decrease", "")
		require.Equal(t, http.StatusNoContent, w.Code)
		w = doJSON(t, h, http.MethodDelete, "/v1/cart/2", "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, h, http.MethodGet, "/v1/cart", "")
		cart := decodeBody[httphandler.Cart](t, w)
		assert.Empty(t, cart.Items)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		h := newTestHandler()

		doJSON(t, h, http.MethodPost, "/v1/cart/1", "")
		doJSON(t, h, http.MethodPost, "/v1/cart/2", "")

		w := doJSON(t, h, http.MethodDelete, "/v1/cart", "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, h, http.MethodGet, "/v1/cart", "")
		cart := decodeBody[httphandler.Cart](t, w)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.Total)
	})
}

func TestPaymentsHandler(t *testing.T) {

	t.Run("CashUnderpaidThenPaid", func(t *testing.T) {
		h := newTestHandler()

		// 2 x Cherry + 1 x Orange = 7.97
		doJSON(t, h, http.MethodPost, "/v1/cart/1", "")
		doJSON(t, h, http.MethodPost, "/v1/cart/1", "")
		doJSON(t, h, http.MethodPost, "/v1/cart/2", "")

		w := doJSON(t, h, http.MethodPost, "/v1/payments/cash",
			`{"amount":5.00}`)
		require.Equal(t, http.StatusOK, w.Code)

		s := decodeBody[httphandler.CashSettlement](t, w)
		assert.Equal(t, "underpaid", s.Status)
		assert.InDelta(t, 2.97, s.Balance, 1e-9)

		w = doJSON(t, h, http.MethodPost, "/v1/payments/cash",
			`{"amount":3.00}`)
		s = decodeBody[httphandler.CashSettlement](t, w)
		assert.Equal(t, "paid", s.Status)
		assert.InDelta(t, 0.03, s.Change, 1e-9)

		w = doJSON(t, h, http.MethodGet, "/v1/cart", "")
		cart := decodeBody[httphandler.Cart](t, w)
		assert.Empty(t, cart.Items)
	})

	t.Run("CashEmptyCart", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/payments/cash",
			`{"amount":5.00}`)
		require.Equal(t, http.StatusOK, w.Code)

		s := decodeBody[httphandler.CashSettlement](t, w)
		assert.Equal(t, "empty", s.Status)
	})

	t.Run("ClearReceipt", func(t *testing.T) {
		h := newTestHandler()

		doJSON(t, h, http.MethodPost, "/v1/cart/1", "")
		doJSON(t, h, http.MethodPost, "/v1/payments/cash", `{"amount":1.00}`)

		w := doJSON(t, h, http.MethodDelete, "/v1/receipt", "")
		require.Equal(t, http.StatusNoContent, w.Code)

		// due is the cart total again, not the old balance
		w = doJSON(t, h, http.MethodPost, "/v1/payments/cash",
			`{"amount":2.99}`)
		s := decodeBody[httphandler.CashSettlement](t, w)
		assert.Equal(t, "paid", s.Status)
	})

	t.Run("CardAccepted", func(t *testing.T) {
		h := newTestHandler()

		doJSON(t, h, http.MethodPost, "/v1/cart/1", "")

		w := doJSON(t, h, http.MethodPost, "/v1/payments/card",
			`{"number":"4111 1111 1111 1111","expiry":"12/25","cvv":"123"}`)
		require.Equal(t, http.StatusOK, w.Code)

		s := decodeBody[httphandler.CardSettlement](t, w)
		assert.Equal(t, "accepted", s.Status)
		assert.Empty(t, s.Reason)

		w = doJSON(t, h, http.MethodGet, "/v1/cart", "")
		cart := decodeBody[httphandler.Cart](t, w)
		assert.Empty(t, cart.Items)
	})

	t.Run("CardRejectedFirstCheckWins", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPost, "/v1/payments/card",
			`{"number":"123","expiry":"13/25","cvv":"123"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		s := decodeBody[httphandler.CardSettlement](t, w)
		assert.Equal(t, "rejected", s.Status)
		assert.Equal(t, "InvalidCardNumber", s.Reason)
	})

	t.Run("CardRejectedReasons", func(t *testing.T) {
		tests := map[string]struct {
			body string
			want string
		}{
			"Expiry": {
				`{"number":"4111111111111111","expiry":"1/25","cvv":"123"}`,
				"InvalidExpiry",
			},
			"Cvv": {
				`{"number":"4111111111111111","expiry":"12/25","cvv":"12"}`,
				"InvalidCvv",
			},
		}

		for name, tc := range tests {
			t.Run(name, func(t *testing.T) {
				h := newTestHandler()
				w := doJSON(t, h, http.MethodPost, "/v1/payments/card", tc.body)
				require.Equal(t, http.StatusUnprocessableEntity, w.Code)

				s := decodeBody[httphandler.CardSettlement](t, w)
				assert.Equal(t, tc.want, s.Reason)
			})
		}
	})
}

func TestCurrencyHandler(t *testing.T) {

	t.Run("SwitchAffectsDisplay", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPut, "/v1/currency", `{"code":"EUR"}`)
		require.Equal(t, http.StatusOK, w.Code)

		state := decodeBody[httphandler.CurrencyState](t, w)
		assert.Equal(t, "EUR", state.Currency)
		assert.Equal(t, "€", state.Symbol)

		w = doJSON(t, h, http.MethodGet, "/v1/products", "")
		ps := decodeBody[[]httphandler.Product](t, w)
		assert.Equal(t, "€2.75", ps[0].DisplayPrice) // 2.99 * 0.92
	})

	t.Run("UnknownCodeKeepsCurrency", func(t *testing.T) {
		h := newTestHandler()

		w := doJSON(t, h, http.MethodPut, "/v1/currency", `{"code":"GBP"}`)
		require.Equal(t, http.StatusOK, w.Code)

		state := decodeBody[httphandler.CurrencyState](t, w)
		assert.Equal(t, "USD", state.Currency)
	})

	t.Run("YenDisplayRoundsWholeUnits", func(t *testing.T) {
		h := newTestHandler()

		doJSON(t, h, http.MethodPut, "/v1/currency", `{"code":"YEN"}`)
		doJSON(t, h, http.MethodPost, "/v1/cart/3", "") // 3.49

		w := doJSON(t, h, http.MethodGet, "/v1/cart", "")
		cart := decodeBody[httphandler.Cart](t, w)

		// stored total stays in the reference currency
		assert.InDelta(t, 3.49, cart.Total, 1e-9)
		assert.Equal(t, "¥543", cart.DisplayTotal) // 542.695 rounded
	})
}
