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
	"github.com/joho/godotenv"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/usecase"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/pricing"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/kafka"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/tyrex-b2b-api/internal/interfaces/http"
	"github.com/jhoicas/tyrex-b2b-api/pkg/config"
	"github.com/jhoicas/tyrex-b2b-api/pkg/logger"
)

func main() {
	_ = godotenv.Load() // .env opcional en local

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando API")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}
	if rate, err := cfg.Pricing.CommissionRate(); err == nil {
		pricing.DefaultCommissionRate = rate
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB, cfg.DB.MigrationsDir); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Str("dir", cfg.DB.MigrationsDir).Msg("migraciones aplicadas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.PoolOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	relRepo := postgres.NewRelationshipRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	historyRepo := postgres.NewOrderHistoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Los trabajos de notificación salen por Kafka; los consume cmd/notifier.
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic)
	defer producer.Close()
	scheduler := notification.NewScheduler(producer, nil, log.Component("notification"))

	orderUC := ordering.NewOrderUseCase(
		txRunner, productRepo, stockRepo, companyRepo, relRepo, orderRepo, historyRepo,
		scheduler,
		ordering.Config{
			Currency:                cfg.Orders.Currency,
			DefaultPaymentTermsDays: cfg.Orders.DefaultPaymentTermsDays,
		},
		log.Zerolog(),
	)
	scheduler.RecordFailuresWith(orderUC)
	subscriptionSvc := usecase.NewSubscriptionService(companyRepo, subscriptionRepo, nil)
	productUC := usecase.NewProductUseCase(productRepo, stockRepo, relRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tyrex B2B API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		OrderUC:      orderUC,
		ProductUC:    productUC,
		Subscription: subscriptionSvc,
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
		Log:          log.Component("http"),
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

	log.Info().Msg("API detenida")
}
