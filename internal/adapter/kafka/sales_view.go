package kafka

import (
	"context"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.SalesReader = (*SalesView)(nil)

// A SalesView exposes the sales tally group table for reads.
type SalesView struct {
	gv *goka.View
}

func NewSalesView(
	seedBrokers []string, group string,
) (*SalesView, error) {
	const op = "NewSalesView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		SalesTallyCodec{},
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &SalesView{gv}, nil
}

func (v *SalesView) Run(ctx context.Context) {
	const op = "SalesView.Run"
	log := slog.With("op", op)

	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
	}
}

// SalesTally reads the tally for one payment method. Reports
// [ErrNoSales] when no settlement of that method was recorded yet.
func (v *SalesView) SalesTally(
	method domain.PaymentMethod,
) (domain.SalesTally, error) {
	const op = "SalesView.SalesTally"

	val, err := v.gv.Get(string(method))
	if err != nil {
		return domain.SalesTally{}, opErr(err, op)
	}
	if val == nil {
		return domain.SalesTally{}, opErr(ErrNoSales, op)
	}

	tally, ok := val.(SalesTally)
	if !ok {
		return domain.SalesTally{}, opErr(ErrInvalidValueType, op)
	}

	return domain.SalesTally{
		Settlements: tally.Settlements,
		Revenue:     tally.Revenue,
	}, nil
}
