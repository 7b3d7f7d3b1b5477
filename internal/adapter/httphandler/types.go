package httphandler

type (
	Product struct {
		ProductID    int64   `json:"product_id"`
		Name         string  `json:"name"`
		Price        float64 `json:"price"`
		Image        string  `json:"image"`
		Quantity     int     `json:"quantity"`
		DisplayPrice string  `json:"display_price"`
	}

	CartItem struct {
		ProductID        int64   `json:"product_id"`
		Name             string  `json:"name"`
		Price            float64 `json:"price"`
		Quantity         int     `json:"quantity"`
		LineTotal        float64 `json:"line_total"`
		DisplayLineTotal string  `json:"display_line_total"`
	}

	Cart struct {
		Items        []CartItem `json:"items"`
		Total        float64    `json:"total"`
		DisplayTotal string     `json:"display_total"`
	}
)

type CashPayment struct {
	Amount float64 `json:"amount"`
}

type CashSettlement struct {
	Status         string  `json:"status"`
	Total          float64 `json:"total"`
	Tendered       float64 `json:"tendered"`
	Change         float64 `json:"change"`
	Balance        float64 `json:"balance"`
	DisplayTotal   string  `json:"display_total"`
	DisplayChange  string  `json:"display_change"`
	DisplayBalance string  `json:"display_balance"`
}

type CardPayment struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	Cvv    string `json:"cvv"`
}

type CardSettlement struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type CurrencySelection struct {
	Code string `json:"code"`
}

type CurrencyState struct {
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
}

type SalesTally struct {
	Method      string  `json:"method"`
	Settlements int64   `json:"settlements"`
	Revenue     float64 `json:"revenue"`
}
