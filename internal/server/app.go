// Package server wires the PlantShelf backend together: storage, change
// notifications, object storage, rate limiting, the gRPC API and the HTTP
// gateway. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/server/config"
	"github.com/dmitrijs2005/plantshelf/internal/server/httpapi"
	"github.com/dmitrijs2005/plantshelf/internal/server/metrics"
	"github.com/dmitrijs2005/plantshelf/internal/server/notify"
	"github.com/dmitrijs2005/plantshelf/internal/server/objectstore"
	"github.com/dmitrijs2005/plantshelf/internal/server/ratelimit"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/plantshelf/internal/server/services"

	gs "github.com/dmitrijs2005/plantshelf/internal/server/grpc"
)

const rateLimitPrefix = "plantshelf:admin:"

// runner is a component that serves until ctx is cancelled.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	repomanager *repomanager.PostgresRepositoryManager
	admin       *services.AdminService
	runners     map[string]runner
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var (
		limiter ratelimit.Limiter
		rdb     *redis.Client
	)
	if c.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		rl, err := ratelimit.NewRedisLimiter(rdb, rateLimitPrefix, c.AdminRateLimit, c.AdminRateWindow)
		if err != nil {
			_ = db.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("rate limiter init error: %w", err)
		}
		limiter = rl
	}

	rm := repomanager.NewPostgresRepositoryManager()
	broker := notify.NewPostgresBroker(c.DatabaseDSN, common.ChangesChannel, logger)
	store := objectstore.NewS3Store(c)
	m := metrics.New("plantshelf")

	identity := services.NewIdentityService(db, rm, services.NewLogMailer(logger), logger, c)
	plants := services.NewPlantService(db, rm, broker, store, logger)
	admin := services.NewAdminService(db, rm, identity, store, limiter, broker, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		redis:       rdb,
		repomanager: rm,
		admin:       admin,
		runners: map[string]runner{
			"notifications": broker,
			"grpc":          gs.NewGRPCServer(c.EndpointAddrGRPC, logger, identity, plants, admin, m),
			"http":          httpapi.NewServer(c.EndpointAddrHTTP, logger, identity, admin, m),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// prepare brings the schema up to date and seeds the admin allowlist.
func (app *App) prepare(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}
	return app.admin.SeedAllowlist(ctx, app.config.AdminEmails)
}

// Run serves until ctx is cancelled, a signal arrives or any component
// fails. The first failure stops the others.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)
	defer app.close(ctx)

	if err := app.prepare(ctx); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	err := runAll(ctx, cancelFunc, app.logger, app.runners)
	app.logger.Info(ctx, "App stopped")
	return err
}

// runAll runs every component and waits for all of them. A component that
// fails cancels the rest.
func runAll(ctx context.Context, cancel context.CancelFunc, logger logging.Logger, runners map[string]runner) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for name, r := range runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				logger.Error(ctx, "component stopped", "component", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancel()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (app *App) close(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "closing database", "error", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "closing redis", "error", err)
		}
	}
}
