package app

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/data/db"
	"github.com/DavidAtikpo/irata-sub002/internal/http"
	"github.com/DavidAtikpo/irata-sub002/internal/observability"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services

	dbService *db.Service
	shutdown  func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	shutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		Environment: cfg.Otel.Environment,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})

	dbService, err := db.NewService(log, cfg.Database())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	sqlDB, err := theDB.DB()
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		return nil, fmt.Errorf("sql db: %w", err)
	}
	handlerset := wireHandlers(log, cfg, serviceset, sqlDB)
	router := wireRouter(log, cfg, handlerset)

	return &App{
		Log:       log,
		DB:        theDB,
		Router:    router,
		Cfg:       cfg,
		Repos:     reposet,
		Clients:   clients,
		Services:  serviceset,
		dbService: dbService,
		shutdown:  shutdown,
	}, nil
}

// Run serves HTTP and forwards propagation events to open sessions until ctx
// is done. Pending broadcasts are drained before it returns.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Clients.EventBus.StartForwarder(ctx, func(evt realtime.Event) {
			a.Services.Inspections.HandleEvent(ctx, evt)
		})
	})

	addr := net.JoinHostPort("", a.Cfg.Port)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		return http.NewServerFromEngine(a.Router).Serve(ctx, addr)
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Services.Broadcaster.Wait()
		return nil
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.shutdown != nil {
		_ = a.shutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
