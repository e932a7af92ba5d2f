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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/application/auth"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/application/report"
	"github.com/jhoicas/gmz-api/internal/application/usecase"
	"github.com/jhoicas/gmz-api/internal/infrastructure/cache"
	"github.com/jhoicas/gmz-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/gmz-api/internal/infrastructure/pdf"
	"github.com/jhoicas/gmz-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gmz-api/internal/infrastructure/telemetry"
	"github.com/jhoicas/gmz-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/gmz-api/internal/interfaces/http"
	"github.com/jhoicas/gmz-api/pkg/config"
	"github.com/jhoicas/gmz-api/pkg/logger"
)

//go:generate go tool swag init -d ../../ -g cmd/api/main.go -o ../../docs --outputTypes json

// @title						GMZ API
// @version					1.0
// @description				Back office de manufactura: ledger de inventario, pedidos y reportes.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization

// version se sobreescribe con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	tp, shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool, log.Named("migrate"))
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Int("aplicadas", len(applied)).Msg("migraciones al día")
	}

	// Caché de reportes: Redis si está configurado, si no ninguno.
	var reportCache report.Cache = cache.Nop{}
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, reportes sin caché")
		} else {
			defer rdb.Close()
			reportCache = cache.NewRedisCache(rdb, cfg.App.Name+":")
		}
	}

	// Eventos del ledger: Kafka si hay brokers. Un publisher nil desactiva la publicación.
	var publisher ledger.EventPublisher
	if cfg.Kafka.Enabled() {
		producer, err := messaging.NewProducer(cfg.Kafka, cfg.Telemetry.ServiceName, tp)
		if err != nil {
			log.Fatal().Err(err).Msg("productor Kafka")
		}
		kp := messaging.NewKafkaPublisher(producer)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kp
	}

	itemRepo := postgres.NewItemRepository(pool)
	materialRepo := postgres.NewRawMaterialRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	ledgerSvc := ledger.NewService(
		postgres.NewTxRunner(pool),
		postgres.Repositories(pool),
		publisher,
		log.Named("ledger"),
	)

	loc := cfg.Report.Location()
	salesUC := report.NewSalesUseCase(reportRepo, reportCache, report.SalesConfig{
		CacheTTL:          cfg.Redis.CacheTTL,
		LowStockThreshold: decimal.NewFromInt(int64(cfg.Report.LowStockThreshold)),
		Location:          loc,
	}, log.Named("report"))
	documentsUC := report.NewDocumentsUseCase(
		orderRepo, reportRepo,
		infrapdf.NewReceiptGenerator(cfg.Report.CompanyName, loc),
		xlsx.NewStockWorkbook(),
	)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.BodyLimit,
	})
	app.Use(recover.New())
	app.Use(httpRouter.TracingMiddleware())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "GMZ API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "version": version})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:     usecase.NewItemUseCase(itemRepo, categoryRepo),
		MaterialUC: usecase.NewMaterialUseCase(materialRepo, categoryRepo),
		CategoryUC: usecase.NewCategoryUseCase(categoryRepo),
		SupplierUC: usecase.NewSupplierUseCase(supplierRepo, materialRepo),
		OrderUC:    usecase.NewOrderUseCase(orderRepo, itemRepo, postgres.NewItemBatchRepository(pool)),
		Ledger:     ledgerSvc,
		Sales:      salesUC,
		Documents:  documentsUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
