package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/kafka"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tyrex-b2b-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tyrex-b2b-api/pkg/config"
	"github.com/jhoicas/tyrex-b2b-api/pkg/logger"
)

// notifier consume los trabajos de notificación, avisa al mayorista por email, API y SMS,
// confirma el pedido cuando su API lo recibe y marca los pedidos pendientes sin respuesta.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "notifier"})
	log.Info().
		Str("topic", cfg.Kafka.NotifyTopic).
		Str("group", cfg.Kafka.ConsumerGroup).
		Msg("iniciando notificador")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.PoolOptions{MaxConns: 10})
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	// El notificador no crea pedidos: solo confirma, registra fallos y barre pendientes.
	orderUC := ordering.NewOrderUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewProductRepository(pool),
		postgres.NewStockRepository(pool),
		companyRepo,
		postgres.NewRelationshipRepository(pool),
		orderRepo,
		postgres.NewOrderHistoryRepository(pool),
		nil,
		ordering.Config{Currency: cfg.Orders.Currency, DefaultPaymentTermsDays: cfg.Orders.DefaultPaymentTermsDays},
		log.Zerolog(),
	)

	channels := []notification.Channel{
		notify.NewPartnerAPIChannel(cfg.Partner.Timeout),
		notify.NewSMSChannel(notify.SMSConfig{GatewayURL: cfg.SMS.GatewayURL, APIKey: cfg.SMS.APIKey}, log.Component("sms")),
	}
	if cfg.SMTP.Host != "" {
		channels = append(channels, notify.NewEmailChannel(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, infrapdf.NewMarotoPurchaseOrderGenerator(), log.Component("email")))
	} else {
		log.Warn().Msg("SMTP_HOST vacío: canal email deshabilitado")
	}

	dispatcher := notification.NewDispatcher(orderRepo, companyRepo, warehouseRepo, orderUC, channels, log.Component("dispatcher"))

	// Los reintentos vuelven al mismo topic con NotBefore.
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic)
	defer producer.Close()
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic, cfg.Kafka.ConsumerGroup, log.Component("kafka"))
	defer consumer.Close()

	worker := notification.NewWorker(dispatcher, producer, orderUC, notification.WorkerConfig{
		MaxAttempts: cfg.Notify.MaxAttempts,
		BaseDelay:   cfg.Notify.BaseDelay,
		Concurrency: cfg.Notify.WorkerConcurrency,
	}, log.Component("worker"))

	sweeper := notification.NewStaleSweeper(orderUC, cfg.Notify.SweepInterval, cfg.Notify.StaleAfter, log.Component("sweeper"))
	go sweeper.Run(ctx)

	if err := worker.Run(ctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("consumidor finalizado con error")
	}
	log.Info().Msg("notificador detenido")
}
