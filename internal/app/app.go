package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

// App wires the storefront core to its optional collaborators.
// The catalog mirror, settlement journal and receipt stream are all
// enabled by config; without them the storefront runs in memory only.
type App struct {
	ctx context.Context
	cfg config.Config

	mirror           *storage.CatalogMirror
	sqldb            storage.SQLDB
	sqlEnabled       bool
	receiptsProducer *kafka.ReceiptsProducer
	salesProc        *kafka.SalesTallyProcessor
	salesView        *kafka.SalesView

	cartService     *service.CartService
	paymentService  *service.PaymentService
	currencyService *service.CurrencyService

	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initMirror()
	app.initSQL()
	app.initBroker()
	app.initCoreServices()
	app.initHTTPServer()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initMirror() {
	const op = "App.initMirror"

	if !app.cfg.MirrorEnabled() {
		slog.Info("catalog mirror is disabled")
		return
	}

	m, err := storage.NewCatalogMirror(app.cfg.MirrorPath)
	if err != nil {
		app.fallDown(op, err)
	}
	app.mirror = &m
}

func (app *App) initSQL() {
	const op = "App.initSQL"

	if !app.cfg.SQLEnabled() {
		slog.Info("settlement journal is disabled")
		return
	}

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = sqldb
	app.sqlEnabled = true
}

func (app *App) initBroker() {
	const op = "App.initBroker"

	if !app.cfg.BrokerEnabled() {
		slog.Info("receipt stream is disabled")
		return
	}

	ctx := app.ctx
	seedBrokers := app.cfg.Broker.SeedBrokers
	receiptsTopic := app.cfg.Broker.Topics.Receipts
	tallyGroup := app.cfg.Broker.Consumers.SalesTallyGroup

	srClient, err := sr.NewClient(
		sr.URLs(app.cfg.Broker.SchemaRegistryURLs...),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	receiptSerde, err := schema.NewSerdeReceiptV1(
		ctx,
		schema.SubjectOpt(receiptsTopic+"-value"),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewReceiptsProducer(
		kafka.ProducerClientOpt(ctx, seedBrokers, receiptsTopic),
		kafka.ProducerEncoderOpt(receiptSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.receiptsProducer = &producer

	salesProc, err := kafka.NewSalesTallyProcessor(
		seedBrokers, receiptsTopic, tallyGroup, receiptSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.salesProc = salesProc

	salesView, err := kafka.NewSalesView(seedBrokers, tallyGroup)
	if err != nil {
		app.fallDown(op, err)
	}
	app.salesView = salesView
}

func (app *App) initCoreServices() {
	catalog := app.loadCatalog()

	var mirror port.CatalogMirror
	if app.mirror != nil {
		mirror = *app.mirror
	}
	app.cartService = service.NewCartService(catalog, mirror)

	var sinks []port.ReceiptSink
	if app.receiptsProducer != nil {
		sinks = append(sinks, *app.receiptsProducer)
	}
	if app.sqlEnabled {
		sinks = append(sinks, storage.NewSettlementsRepository(app.sqldb))
	}
	app.paymentService = service.NewPaymentService(app.cartService, sinks...)

	app.currencyService = service.NewCurrencyService()
}

// loadCatalog reads the mirrored catalog, falling back to the
// default three products when nothing was mirrored yet.
func (app *App) loadCatalog() []domain.Product {
	const op = "App.loadCatalog"
	log := slog.With("op", op)

	if app.mirror == nil {
		return domain.DefaultCatalog()
	}

	ps, err := app.mirror.LoadCatalog(app.ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("failed to load mirrored catalog", "err", err)
		}
		return domain.DefaultCatalog()
	}

	log.Info("catalog loaded from mirror", "nProducts", len(ps))
	return ps
}

func (app *App) initHTTPServer() {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()

	httphandler.RegisterCatalog(
		mux, app.cartService, app.cartService, app.currencyService,
	)
	httphandler.RegisterCart(
		mux, app.cartService, app.cartService, app.currencyService,
	)
	httphandler.RegisterPayments(
		mux, app.paymentService, app.paymentService, app.currencyService,
	)
	httphandler.RegisterCurrency(mux, app.currencyService)

	if app.salesView != nil {
		httphandler.RegisterSales(mux, app.salesView)
	}

	handler := httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(addr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	if app.salesProc != nil {
		var wg sync.WaitGroup
		wg.Add(1)
		go app.salesProc.Run(app.ctx, stopFn, &wg)
		go app.salesView.Run(app.ctx)
		wg.Wait()
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if app.salesProc != nil {
		app.salesProc.Close()
	}
	if app.receiptsProducer != nil {
		app.receiptsProducer.Close()
	}
	if app.sqlEnabled {
		app.sqldb.Close()
	}
	if app.mirror != nil {
		app.mirror.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
