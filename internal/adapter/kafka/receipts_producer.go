package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ReceiptSink = ReceiptsProducer{}

// A ReceiptsProducer emits settlement receipts to the receipts
// stream. Records are keyed by payment method so the sales tally
// aggregates per method.
type ReceiptsProducer struct {
	cl      ProducerClient
	encoder Encoder
}

func NewReceiptsProducer(opts ...ProducerOpt) (ReceiptsProducer, error) {
	const op = "NewReceiptsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ReceiptsProducer{}, opErr(err, op)
		}
	}
	return ReceiptsProducer{options.cl, options.encoder}, nil
}

func (p ReceiptsProducer) Close() {
	const op = "ReceiptsProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p ReceiptsProducer) SinkReceipt(
	ctx context.Context, v domain.Receipt,
) error {
	const op = "ReceiptsProducer.SinkReceipt"

	if err := ctx.Err(); err != nil {
		return opErr(err, op)
	}

	r, err := p.createRecord(v)
	if err != nil {
		return opErr(err, op)
	}

	res := p.cl.ProduceSync(ctx, &r)
	if err := res.FirstErr(); err != nil {
		return opErr(err, op)
	}

	return nil
}

func (p ReceiptsProducer) createRecord(
	v domain.Receipt,
) (kgo.Record, error) {
	const op = "ReceiptsProducer.createRecord"

	s := p.toSchema(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return kgo.Record{}, opErr(err, op)
	}

	msgKey := []byte(s.Method)
	return kgo.Record{Key: msgKey, Value: b}, nil
}

func (ReceiptsProducer) toSchema(v domain.Receipt) (s schema.ReceiptV1) {
	s.Method = string(v.Method)
	s.Status = string(v.Status)
	s.Total = v.Total
	s.Tendered = v.Tendered
	s.Change = v.Change
	s.Balance = v.Balance
	s.IssuedAt = v.IssuedAt.UnixMilli()
	return
}
