package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	infrapdf "github.com/jhoicas/costeo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/costeo-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/costeo-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/costeo-api/internal/interfaces/http"
	"github.com/jhoicas/costeo-api/pkg/config"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)

	formulas := costing.NewFormulaRegistry()
	costing.RegisterBuiltins(formulas)
	engine := costing.NewEngine(formulas, costing.Settings{
		Log:      log.Zerolog(),
		Decimals: cfg.Costing.Decimals,
	})

	// Con REDIS_ADDRESS el bloqueo por producto es compartido entre réplicas; si no, en proceso.
	var locker costing.Locker = costing.NewKeyedLocker()
	if cfg.Redis.Address != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("address", cfg.Redis.Address).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb, cfg.Lock, log.Zerolog())
		log.Info().Str("address", cfg.Redis.Address).Msg("bloqueo distribuido con Redis")
	}

	costingUC := costing.NewCostingUseCase(txRunner, locker, engine, costing.UseCaseConfig{
		DefaultCurrency: cfg.Costing.DefaultCurrency,
		DefaultPrefix:   cfg.Costing.DefaultPrefix,
	}, log.Zerolog()).
		WithCostSheetRenderer(infrapdf.NewBomCostSheetGenerator(language.Spanish, 2))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerFile != "" {
		if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.HTTP.SwaggerFile,
				Path:     "docs",
				Title:    "Costeo API",
			}))
		} else {
			log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("archivo swagger no encontrado; /docs deshabilitado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CostingUC: costingUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Log:       log.Zerolog(),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
