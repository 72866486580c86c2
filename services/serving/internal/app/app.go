package app

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/serving/pkg"
	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"github.com/appetiteclub/serving/services/serving/internal/intake"
	"github.com/appetiteclub/serving/services/serving/internal/mongo"
	"github.com/appetiteclub/serving/services/serving/internal/notify"
	"github.com/appetiteclub/serving/services/serving/internal/reconcile"
	"github.com/appetiteclub/serving/services/serving/internal/redis"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/middleware"
	"github.com/google/uuid"
)

const (
	AppName    = "serving"
	AppVersion = "0.1.0"

	defaultNATSURL = "nats://localhost:4222"
	streamMaxAge   = 24 * time.Hour
)

// App wires the serving dashboard: local store, background writer, change
// feed reconciler, alert engine and the HTTP/gRPC surfaces.
type App struct {
	config *aqm.Config
	logger aqm.Logger
	micro  *aqm.Micro
}

func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize connects the durable stores and builds every component.
func (a *App) Initialize(ctx context.Context) error {
	baseRepo := mongo.NewBaseRepo(a.config, a.logger)
	if err := baseRepo.Start(ctx); err != nil {
		return fmt.Errorf("cannot start base repository: %w", err)
	}
	groupRepo := mongo.NewGroupRepo(baseRepo)
	attendanceRepo := mongo.NewAttendanceRepo(baseRepo)

	dismissedStore := redis.NewDismissedStore(a.config, a.logger)
	if err := dismissedStore.Start(ctx); err != nil {
		_ = baseRepo.Stop(ctx)
		return fmt.Errorf("cannot start dismissed alert store: %w", err)
	}

	state := reconcile.NewConnState(a.logger)
	feed, err := a.changeFeed(state)
	if err != nil {
		_ = dismissedStore.Stop(ctx)
		_ = baseRepo.Stop(ctx)
		return err
	}

	alertCfg := alertConfig(
		a.config.GetStringOrDef("alerts.late.threshold", ""),
		a.config.GetStringOrDef("alerts.tick.interval", ""),
		a.logger,
	)

	writer := reconcile.NewWriter(groupRepo, dismissedStore, feed.publisher, a.logger)
	store := serving.NewStore(writer, a.logger)
	hub := notify.NewHub(a.logger)
	bridge := notify.NewBridge(hub, a.logger)
	engine := alerts.NewEngine(store, writer, bridge, alertCfg, a.logger)

	reconciler := reconcile.NewReconciler(reconcile.ReconcilerDeps{
		Subscriber: feed.subscriber,
		Sources: reconcile.Sources{
			Groups:     groupRepo,
			Attendance: attendanceRepo,
			Dismissed:  dismissedStore,
		},
		Store:    store,
		Alerts:   engine,
		Arrivals: bridge,
		Changes:  hub,
	}, a.logger)

	health := reconcile.NewHealthModule(state)

	var extractor intake.Extractor
	if visionURL := a.config.GetStringOrDef("services.vision.url", ""); visionURL != "" {
		extractor = intake.NewVisionClient(aqm.NewServiceClient(visionURL))
	} else {
		a.logger.Info("vision service not configured, slip extraction disabled")
	}

	servingHandler := serving.NewHandler(store, a.config, a.logger)
	alertsHandler := alerts.NewHandler(engine, a.logger)
	syncHandler := reconcile.NewHandler(state, reconciler, writer, a.logger)
	notifyHandler := notify.NewHandler(hub, a.logger)
	intakeHandler := intake.NewHandler(extractor, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

	// Stores are already connected; the writer starts before anything can
	// dispatch to the store.
	lifecycles := []interface{}{
		aqm.LifecycleHooks{OnStop: baseRepo.Stop},
		dismissedStore,
		aqm.LifecycleHooks{OnStop: func(context.Context) error { return feed.close() }},
		writer,
		reconciler,
		engine,
	}

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port",
			servingHandler,
			alertsHandler,
			syncHandler,
			notifyHandler,
			intakeHandler,
		),
		aqm.WithGRPCServerModules("grpc.port", health),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

func (a *App) Run(ctx context.Context) error {
	if a.micro == nil {
		return fmt.Errorf("app not initialized")
	}
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}

type changeFeed struct {
	publisher  aqmevents.Publisher
	subscriber aqmevents.Subscriber
	closers    []func() error
}

func (f changeFeed) close() error {
	var first error
	for _, c := range f.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// changeFeed connects to NATS. With streams enabled one JetStream connection
// both publishes and consumes; otherwise core NATS is used with a separate
// publisher. The consuming connection reports its link state to state.
func (a *App) changeFeed(state *reconcile.ConnState) (changeFeed, error) {
	natsURL := a.config.GetStringOrDef("nats.url", defaultNATSURL)

	streamEnabled, _ := a.config.GetString("nats.stream.enabled")
	if streamEnabled == "true" {
		stream, err := pkg.NewNATSStream(pkg.NATSStreamConfig{
			URL:          natsURL,
			StreamName:   pkg.ServingChangesStream,
			Topic:        pkg.ServingChangesTopic,
			ConsumerName: "serving-" + uuid.NewString(),
			MaxAge:       streamMaxAge,
			Options:      state.NATSOptions(),
		}, a.logger)
		if err != nil {
			return changeFeed{}, fmt.Errorf("cannot create change stream: %w", err)
		}
		a.logger.Info("NATS stream initialized for change feed", "stream", pkg.ServingChangesStream)
		return changeFeed{
			publisher:  stream,
			subscriber: stream,
			closers:    []func() error{stream.Close},
		}, nil
	}

	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		return changeFeed{}, fmt.Errorf("cannot connect to NATS publisher: %w", err)
	}
	subscriber, err := pkg.NewNATSSubscriber(natsURL, a.logger, state.NATSOptions()...)
	if err != nil {
		_ = publisher.Close()
		return changeFeed{}, fmt.Errorf("cannot connect to NATS subscriber: %w", err)
	}
	return changeFeed{
		publisher:  publisher,
		subscriber: subscriber,
		closers:    []func() error{subscriber.Close, publisher.Close},
	}, nil
}
