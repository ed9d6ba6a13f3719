// casevaultd wires the case-management core: configuration, structured
// logging, the SQLite event store, the optional NATS event bus, and the
// consent audit trail subscriber, all under the service runner.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shelterpoint/casevault/pkg/casemgmt"
	"github.com/shelterpoint/casevault/pkg/client"
	"github.com/shelterpoint/casevault/pkg/config"
	"github.com/shelterpoint/casevault/pkg/consent"
	"github.com/shelterpoint/casevault/pkg/document"
	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/enrollment"
	"github.com/shelterpoint/casevault/pkg/intake"
	"github.com/shelterpoint/casevault/pkg/ledger"
	"github.com/shelterpoint/casevault/pkg/messaging"
	natsbus "github.com/shelterpoint/casevault/pkg/messaging/nats"
	"github.com/shelterpoint/casevault/pkg/observability"
	"github.com/shelterpoint/casevault/pkg/projections"
	"github.com/shelterpoint/casevault/pkg/runner"
	"github.com/shelterpoint/casevault/pkg/safety"
	"github.com/shelterpoint/casevault/pkg/serviceepisode"
	"github.com/shelterpoint/casevault/pkg/store"
	"github.com/shelterpoint/casevault/pkg/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	demo := flag.Bool("demo", false, "run a command/query walkthrough on startup")
	flag.Parse()

	if err := run(*configPath, *demo); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, demo bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := runner.NewDefaultLogger(slogLevel(cfg.Logging.Level))

	ctx := context.Background()
	telemetry, err := observability.Init(ctx, observability.Config{
		ServiceName: "casevaultd",
		Environment: "production",
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer telemetry.Shutdown(ctx)

	storeSvc := newStoreService(cfg, newRegistry(), logger)

	var busSvc *busService
	services := []runner.Service{storeSvc}
	if cfg.Messaging.Enabled {
		busSvc = newBusService(cfg, logger)
		services = append(services, busSvc)
	}
	services = append(services, newCoreService(cfg, storeSvc, busSvc, telemetry.Metrics, logger, demo))

	r := runner.New(services, runner.WithLogger(logger))
	return r.Run(ctx)
}

// newRegistry builds the payload registry covering every aggregate.
func newRegistry() *domain.Registry {
	registry := domain.NewRegistry()
	client.RegisterEvents(registry)
	consent.RegisterEvents(registry)
	enrollment.RegisterEvents(registry)
	serviceepisode.RegisterEvents(registry)
	document.RegisterEvents(registry)
	intake.RegisterEvents(registry)
	casemgmt.RegisterEvents(registry)
	safety.RegisterEvents(registry)
	ledger.RegisterEvents(registry)
	return registry
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// storeService owns the SQLite event store and snapshot store.
type storeService struct {
	cfg      *config.Config
	registry *domain.Registry
	logger   runner.Logger

	eventStore *sqlite.EventStore
	snapshots  *sqlite.SnapshotStore
}

func newStoreService(cfg *config.Config, registry *domain.Registry, logger runner.Logger) *storeService {
	return &storeService{cfg: cfg, registry: registry, logger: logger}
}

func (s *storeService) Name() string { return "event-store" }

func (s *storeService) Start(ctx context.Context) error {
	eventStore, err := sqlite.NewEventStore(
		sqlite.WithDSN(s.cfg.Database.DSN),
		sqlite.WithMaxOpenConns(s.cfg.Database.MaxOpenConns),
		sqlite.WithMaxIdleConns(s.cfg.Database.MaxIdleConns),
		sqlite.WithWALMode(s.cfg.Database.WALMode),
		sqlite.WithAutoMigrate(s.cfg.Database.AutoMigrate),
	)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	s.eventStore = eventStore
	s.snapshots = sqlite.NewSnapshotStore(eventStore.DB())
	s.logger.Info("event store ready", "dsn", s.cfg.Database.DSN)
	return nil
}

func (s *storeService) Stop(ctx context.Context) error {
	if s.eventStore == nil {
		return nil
	}
	return s.eventStore.Close()
}

func (s *storeService) HealthCheck(ctx context.Context) error {
	if s.eventStore == nil {
		return fmt.Errorf("event store not started")
	}
	return s.eventStore.DB().PingContext(ctx)
}

// busService owns the NATS event bus and the consent audit trail
// subscription.
type busService struct {
	cfg    *config.Config
	logger runner.Logger

	bus *natsbus.EventBus
	sub messaging.Subscription
}

func newBusService(cfg *config.Config, logger runner.Logger) *busService {
	return &busService{cfg: cfg, logger: logger}
}

func (s *busService) Name() string { return "event-bus" }

func (s *busService) Start(ctx context.Context) error {
	maxAge, err := time.ParseDuration(s.cfg.Messaging.MaxAge)
	if err != nil {
		return fmt.Errorf("parse messaging.max_age: %w", err)
	}

	busConfig := natsbus.DefaultConfig()
	busConfig.URL = s.cfg.Messaging.URL
	busConfig.StreamName = s.cfg.Messaging.StreamName
	busConfig.MaxAge = maxAge

	bus, err := natsbus.NewEventBus(busConfig)
	if err != nil {
		return fmt.Errorf("connect event bus: %w", err)
	}
	s.bus = bus

	// Consent changes feed the audit trail regardless of which command
	// produced them.
	sub, err := bus.Subscribe(messaging.EventFilter{
		AggregateTypes: []string{consent.AggregateType},
	}, s.auditConsentEvent)
	if err != nil {
		bus.Close()
		return fmt.Errorf("subscribe consent audit trail: %w", err)
	}
	s.sub = sub

	s.logger.Info("event bus connected", "url", s.cfg.Messaging.URL, "stream", s.cfg.Messaging.StreamName)
	return nil
}

func (s *busService) auditConsentEvent(event *domain.Event) error {
	s.logger.Info("consent audit",
		"event_type", event.EventType,
		"consent_id", event.AggregateID,
		"principal", event.Metadata.PrincipalID,
		"correlation", event.Metadata.CorrelationID,
	)
	return nil
}

func (s *busService) Stop(ctx context.Context) error {
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	if s.bus == nil {
		return nil
	}
	return s.bus.Close()
}

// coreService builds the per-aggregate repositories on top of the store
// and bus services. It starts after both, so their resources exist.
type coreService struct {
	cfg     *config.Config
	store   *storeService
	bus     *busService
	metrics *observability.Metrics
	logger  runner.Logger
	demo    bool

	repos         *Repositories
	eventStore    store.EventStore
	consentLedger *projections.ConsentLedger
	ledgerSub     messaging.Subscription
}

func newCoreService(cfg *config.Config, store *storeService, bus *busService,
	metrics *observability.Metrics, logger runner.Logger, demo bool) *coreService {
	return &coreService{cfg: cfg, store: store, bus: bus, metrics: metrics, logger: logger, demo: demo}
}

func (s *coreService) Name() string { return "casevault-core" }

func (s *coreService) Start(ctx context.Context) error {
	var publisher store.EventPublisher
	if s.bus != nil {
		publisher = s.bus.bus
	}

	// Every repository runs over the instrumented store, so appends,
	// loads, conflicts, and snapshot hits record on the core metrics.
	eventStore := observability.NewInstrumentedEventStore(s.store.eventStore, s.metrics)
	snapshots := observability.NewInstrumentedSnapshotStore(s.store.snapshots, s.metrics)
	s.eventStore = eventStore
	s.repos = newRepositories(eventStore, snapshots, s.store.registry, publisher, s.logger)
	s.logger.Info("repositories ready")

	// The consent ledger view catches up from the durable log, then
	// follows live events when the bus is running.
	s.consentLedger = projections.NewConsentLedger(s.store.registry)
	if err := s.consentLedger.CatchUp(eventStore, 500); err != nil {
		return fmt.Errorf("consent ledger catch-up: %w", err)
	}
	if s.bus != nil {
		sub, err := s.consentLedger.Subscribe(s.bus.bus)
		if err != nil {
			return fmt.Errorf("consent ledger subscription: %w", err)
		}
		s.ledgerSub = sub
	}
	s.logger.Info("consent ledger projection ready", "position", s.consentLedger.LastPosition())

	if s.demo {
		if err := runDemo(ctx, s.cfg, s.repos, s.eventStore, s.consentLedger, s.metrics, s.logger); err != nil {
			return fmt.Errorf("demo walkthrough: %w", err)
		}
	}
	return nil
}

func (s *coreService) Stop(ctx context.Context) error {
	if s.ledgerSub != nil {
		_ = s.ledgerSub.Unsubscribe()
	}
	return nil
}

// Repositories groups the event-sourced repositories by aggregate.
type Repositories struct {
	Clients     *store.Repository[*client.Client]
	Consents    *store.Repository[*consent.Consent]
	Enrollments *store.Repository[*enrollment.Enrollment]
	Linkages    *store.Repository[*enrollment.Linkage]
	Episodes    *store.Repository[*serviceepisode.Episode]
	Documents   *store.Repository[*document.Document]
	Contacts    *store.Repository[*intake.Contact]
	Cases       *store.Repository[*casemgmt.Case]
	Assessments *store.Repository[*safety.Assessment]
	Ledgers     *store.Repository[*ledger.Ledger]
}

func newRepositories(eventStore store.EventStore, snapshots store.SnapshotStore,
	registry *domain.Registry, publisher store.EventPublisher, logger runner.Logger) *Repositories {

	consentOpts := []store.RepositoryOption[*consent.Consent]{}
	if publisher != nil {
		consentOpts = append(consentOpts, store.WithPublisher[*consent.Consent](publisher))
	}

	return &Repositories{
		Clients: store.NewRepository(eventStore, registry,
			func() *client.Client { return client.New() },
			store.WithSnapshots[*client.Client](snapshots),
			store.WithLogger[*client.Client](logger)),
		Consents: store.NewRepository(eventStore, registry,
			func() *consent.Consent { return consent.New() },
			consentOpts...),
		Enrollments: store.NewRepository(eventStore, registry,
			func() *enrollment.Enrollment { return enrollment.New() }),
		Linkages: store.NewRepository(eventStore, registry,
			func() *enrollment.Linkage { return enrollment.NewLinkage() }),
		Episodes: store.NewRepository(eventStore, registry,
			func() *serviceepisode.Episode { return serviceepisode.New() }),
		Documents: store.NewRepository(eventStore, registry,
			func() *document.Document { return document.New() }),
		Contacts: store.NewRepository(eventStore, registry,
			func() *intake.Contact { return intake.New() }),
		Cases: store.NewRepository(eventStore, registry,
			func() *casemgmt.Case { return casemgmt.New() }),
		Assessments: store.NewRepository(eventStore, registry,
			func() *safety.Assessment { return safety.New() }),
		Ledgers: store.NewRepository(eventStore, registry,
			func() *ledger.Ledger { return ledger.New() }),
	}
}
