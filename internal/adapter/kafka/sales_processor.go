package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/pkg/schema"
)

// A receiptEventCodec decodes receipts stream records for goka.
type receiptEventCodec struct {
	serde Serde
}

func newReceiptEventCodec(s Serde) receiptEventCodec {
	return receiptEventCodec{s}
}

func (c receiptEventCodec) Encode(v any) ([]byte, error) {
	const op = "receiptEventCodec.Encode"
	if _, ok := v.(schema.ReceiptV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c receiptEventCodec) Decode(data []byte) (any, error) {
	const op = "receiptEventCodec.Decode"
	var s schema.ReceiptV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A SalesTally is the group-table value: settled revenue per
// payment method (the record key).
type SalesTally struct {
	Settlements int64   `json:"settlements"`
	Revenue     float64 `json:"revenue"`
}

type SalesTallyCodec struct{}

func (SalesTallyCodec) Encode(v any) ([]byte, error) {
	const op = "SalesTallyCodec.Encode"
	tv, ok := v.(SalesTally)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return json.Marshal(tv)
}

func (SalesTallyCodec) Decode(data []byte) (any, error) {
	const op = "SalesTallyCodec.Decode"
	var tv SalesTally
	if err := json.Unmarshal(data, &tv); err != nil {
		return nil, opErr(err, op)
	}
	return tv, nil
}

// A SalesTallyProcessor consumes the receipts stream and maintains
// the per-method sales tally group table.
type SalesTallyProcessor struct {
	opPrefix string
	gp       *goka.Processor
}

func NewSalesTallyProcessor(
	seedBrokers []string, stream, group string, receiptSerde Serde,
) (*SalesTallyProcessor, error) {
	const op = "NewSalesTallyProcessor"

	p := &SalesTallyProcessor{opPrefix: "SalesTallyProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(stream),
			newReceiptEventCodec(receiptSerde),
			p.processFn,
		),
		goka.Persist(SalesTallyCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.gp = gp
	return p, nil
}

// Run starts the processor and releases the wait group once the
// processor is ready to consume.
func (p *SalesTallyProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "Run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *SalesTallyProcessor) runProc(
	ctx context.Context, stopFn context.CancelFunc,
) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *SalesTallyProcessor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *SalesTallyProcessor) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// processFn folds one receipt into the tally for its payment method.
// Revenue is the money actually taken in: tendered minus change.
func (p *SalesTallyProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	r, ok := msg.(schema.ReceiptV1)
	if !ok {
		slog.With("op", makeOp(p.opPrefix, op)).
			Warn("skipped message", "err", ErrInvalidValueType)
		return
	}

	var tally SalesTally
	if v := ctx.Value(); v != nil {
		tally = v.(SalesTally)
	}

	tally.Settlements++
	tally.Revenue += r.Tendered - r.Change
	ctx.SetValue(tally)
}
