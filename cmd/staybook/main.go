package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/booking"
	"staybook/internal/config"
	"staybook/internal/domain"
	"staybook/internal/events"
	"staybook/internal/export"
	"staybook/internal/gateway"
	"staybook/internal/logging"
	"staybook/internal/metrics"
	"staybook/internal/repository"
	"staybook/internal/selection"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("staybook", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath(), "path to config file")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		printUsage()
		return errors.New("command required")
	}

	cfg, logger, closer, err := loadConfigAndLogger(*configPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	startMetricsServer(cfg, &logger)

	redisClient, store := initSelectionStore(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	gw := initGateway(cfg, redisClient)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	app := &app{
		cfg:         cfg,
		logger:      &logger,
		gateway:     gw,
		coordinator: booking.NewCoordinator(gw, eventBus, &logger),
		selections:  selection.NewService(store, &logger),
		exporter:    export.NewExporter(cfg.Exports.Path, &logger),
		sessionKey:  sessionKey(),
		credential:  cfg.Gateway.Token,
	}

	return app.dispatch(ctx, rest[0], rest[1:])
}

type app struct {
	cfg         *config.Config
	logger      *zerolog.Logger
	gateway     *gateway.Client
	coordinator *booking.Coordinator
	selections  *selection.Service
	exporter    *export.Exporter
	sessionKey  string
	credential  string
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "hotels":
		return a.cmdHotels(ctx)
	case "rooms":
		return a.cmdRooms(ctx, args)
	case "bookings":
		return a.cmdBookings(ctx)
	case "book":
		return a.cmdBook(ctx, args)
	case "update":
		return a.cmdUpdate(ctx, args)
	case "cancel":
		return a.cmdCancel(ctx, args)
	case "cancel-payment":
		return a.cmdCancelPayment(ctx, args)
	case "export":
		return a.cmdExport(ctx)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func loadConfigAndLogger(configPath string) (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "cli").Logger()

	return cfg, logger, closer, nil
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// sessionKey identifies the authoring session for draft storage and rate
// limiting. One key per host user is enough for a CLI.
func sessionKey() string {
	if key := os.Getenv("STAYBOOK_SESSION"); key != "" {
		return key
	}
	host, err := os.Hostname()
	if err != nil {
		host = "local"
	}
	return host
}

func initSelectionStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SelectionStore) {
	ttl := time.Duration(cfg.Booking.SelectionTTL) * time.Second
	memory := repository.NewMemorySelectionStore(ttl)

	if !cfg.Redis.Enabled {
		return nil, memory
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}

	primary := repository.NewRedisSelectionStore(redisClient, ttl)
	return redisClient, repository.NewFailoverSelectionStore(primary, memory, logger)
}

func initGateway(cfg *config.Config, redisClient *redis.Client) *gateway.Client {
	gw := gateway.NewClient(cfg.Gateway.BaseURL, time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second)
	if redisClient != nil {
		gw.UseRedisCache(redisClient, time.Duration(cfg.Gateway.CacheTTL)*time.Second)
	}
	if cfg.Gateway.RateLimit.RPS > 0 {
		gw.UseRateLimit(cfg.Gateway.RateLimit.RPS, cfg.Gateway.RateLimit.Burst)
	}
	return gw
}

func startMetricsServer(cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// subscribeBookingEvents wires an audit trail: every lifecycle event is
// written to the structured log.
func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	if bus == nil {
		return
	}

	audit := func(ev *events.Event) error {
		logger.Info().
			Str("event", ev.Type).
			RawJSON("payload", ev.Payload).
			Msg("booking event")
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, audit)
	bus.Subscribe(events.EventBookingUpdated, audit)
	bus.Subscribe(events.EventBookingDeleted, audit)
	bus.Subscribe(events.EventPaymentCanceled, audit)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: staybook [-config path] <command> [flags]

Commands:
  hotels                                       list hotels
  rooms [-hotel id]                            list rooms, optionally for one hotel
  bookings                                     list your bookings
  book -room id -checkin date -checkout date   book a room (dates are YYYY-MM-DD)
       [-payment method]
  update -booking id -checkin date -checkout date
                                               change the dates of a booking
  cancel -booking id                           delete a booking
  cancel-payment -payment id                   cancel a payment
  export                                       export your bookings to xlsx
`)
}
