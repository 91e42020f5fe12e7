package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	appanalytics "github.com/jhoicas/municipal-ops-api/internal/application/analytics"
	"github.com/jhoicas/municipal-ops-api/internal/application/assets"
	"github.com/jhoicas/municipal-ops-api/internal/application/auth"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/application/rbac"
	"github.com/jhoicas/municipal-ops-api/internal/application/requests"
	"github.com/jhoicas/municipal-ops-api/internal/application/tickets"
	"github.com/jhoicas/municipal-ops-api/internal/application/units"
	"github.com/jhoicas/municipal-ops-api/internal/application/usecase"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/authz"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/postgres"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/municipal-ops-api/internal/interfaces/http"
	"github.com/jhoicas/municipal-ops-api/pkg/config"
	"github.com/jhoicas/municipal-ops-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:   cfg.App.Name,
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es opcional: sin REDIS_ADDR el tiempo real y el rate limit quedan en memoria.
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
	}

	hub := realtime.NewHub(realtime.DefaultBuffer)
	defer hub.Close()
	var notifier ports.Notifier = hub
	if rdb != nil {
		relay := realtime.NewRelay(realtime.NewRedisBroker(rdb), hub, log.Component("realtime.relay"))
		notifier = relay
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("relay de tiempo real finalizado")
			}
		}()
	}

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	az := authz.New(postgres.NewRbacRepository(pool), cfg.Authz.Cache, cfg.Authz.CacheTTL)

	userRepo := postgres.NewUserRepository(pool)
	tenantRepo := postgres.NewTenantRepository(pool)
	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	limiter, err := httpRouter.NewLimiter(cfg.RateLimit.Rate, rdb)
	if err != nil {
		log.Fatal().Err(err).Str("rate", cfg.RateLimit.Rate).Msg("configuración de rate limit")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.Metrics())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Municipal Ops API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       usecase.NewUserUseCase(userRepo),
		TenantUC:     usecase.NewTenantUseCase(tenantRepo),
		TenantStatus: usecase.NewTenantStatusService(tenantRepo),
		ServiceUC:    usecase.NewServiceUseCase(postgres.NewServiceRepository(pool), az),
		ProductUC:    usecase.NewProductUseCase(postgres.NewProductRepository(pool), postgres.NewStockRepository(pool), az),
		Requests:     requests.NewUseCase(repos, txRunner, az, notifier, requests.Config{PickupLockTTL: cfg.Requests.PickupLockTTL}),
		Units:        units.NewUseCase(repos, txRunner, az, notifier),
		Assets:       assets.NewUseCase(repos, txRunner, az, notifier),
		Tickets:      tickets.NewUseCase(repos, txRunner, az, notifier),
		Rbac:         rbac.NewUseCase(repos, az),
		DashboardUC:  appanalytics.NewDashboardUseCase(postgres.NewAnalyticsRepository(pool)),
		Hub:          hub,
		Limiter:      limiter,
		Ping:         pool.Ping,
		AppName:      cfg.App.Name,
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Cerrar los streams SSE antes de esperar a las conexiones abiertas.
	hub.Close()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
