package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/config"
	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
	"github.com/seniorstay/staycation-api/internal/logger"
	"github.com/seniorstay/staycation-api/internal/mailer"
	mailerService "github.com/seniorstay/staycation-api/internal/service/mailer"
	workerService "github.com/seniorstay/staycation-api/internal/service/worker"
	"github.com/seniorstay/staycation-api/internal/store"
	storeBookings "github.com/seniorstay/staycation-api/internal/store/bookings"
	"github.com/seniorstay/staycation-api/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogFile)
	defer func() { _ = log.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the notification worker")
	}
	log.Info("worker starting", zap.Strings("brokers", cfg.KafkaBrokers), zap.Int("max_workers", cfg.MaxWorkerRoutineCount))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.NewDB(ctx, cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	mailerSender := &mailer.SMTPSender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
	mailerSvc := mailerService.NewMailerService(log, mailerSender)
	notifySvc := workerService.NewNotifyService(log, storeBookings.NewBookingsRepository(db, log), mailerSvc)

	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, "staycation-notifier", cfg.KafkaTopic)
	defer consumer.Close()
	dlq := kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic+"-dlq")
	defer dlq.Close()

	n := worker.NewNotifier(log, notifySvc, consumer, dlq, cfg.MaxWorkerRoutineCount)
	if err := n.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("notifier stopped", zap.Error(err))
	}
	log.Info("worker stopped")
}
