package service

import (
	"math"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var _ port.CurrencySwitcher = (*CurrencyService)(nil)

// Static rate table against the reference currency. Rates never
// change within a session, so switching a currency back and forth
// restores identical conversion results.
var currencyRates = map[domain.Currency]float64{
	domain.CurrencyUSD: 1,
	domain.CurrencyEUR: 0.92,
	domain.CurrencyYEN: 155.5,
}

var currencySymbols = map[domain.Currency]string{
	domain.CurrencyUSD: "$",
	domain.CurrencyEUR: "€",
	domain.CurrencyYEN: "¥",
}

var (
	enPrinter = message.NewPrinter(language.AmericanEnglish)
	jaPrinter = message.NewPrinter(language.Japanese)
)

// A CurrencyService projects reference-currency amounts into the
// selected display currency. Stored amounts are never mutated and
// never rounded; rounding happens only inside Format.
type CurrencyService struct {
	mu      sync.RWMutex
	current domain.Currency
}

func NewCurrencyService() *CurrencyService {
	return &CurrencyService{current: domain.ReferenceCurrency}
}

// SwitchCurrency selects the display currency. Unknown codes are
// ignored and the currency stays unchanged.
func (s *CurrencyService) SwitchCurrency(code string) {
	c := domain.Currency(code)
	if _, ok := currencyRates[c]; !ok {
		return
	}
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
}

func (s *CurrencyService) Current() domain.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Convert projects a reference-currency amount into the current
// display currency. Non-finite amounts convert as 0.
func (s *CurrencyService) Convert(amount float64) float64 {
	return convert(s.Current(), amount)
}

// Format converts and renders the amount with the display convention
// of the current currency: symbol-prefixed with two decimals for USD
// and EUR, whole units for YEN.
func (s *CurrencyService) Format(amount float64) string {
	cur := s.Current()
	v := convert(cur, amount)
	sym := currencySymbols[cur]

	if cur == domain.CurrencyYEN {
		return jaPrinter.Sprintf("%s%d", sym, int64(math.Round(v)))
	}
	return enPrinter.Sprintf("%s%.2f", sym, v)
}

func (s *CurrencyService) Symbol() string {
	return currencySymbols[s.Current()]
}

func convert(cur domain.Currency, amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return amount * currencyRates[cur]
}
