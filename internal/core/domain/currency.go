package domain

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyYEN Currency = "YEN"
)

// ReferenceCurrency is the currency all stored prices, totals and
// balances are denominated in. Other currencies are display-time
// projections only.
const ReferenceCurrency = CurrencyUSD
