package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/sender_worker/service"
	"github.com/kedar94c/whatsapp-crm-backend/logger"
	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/middlewares"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/config"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/database"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/utils"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
	"github.com/kedar94c/whatsapp-crm-backend/tracing"
)

func main() {
	_ = godotenv.Load()

	logr, err := logger.InitLogger()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logr.Sync()

	db, err := database.InitDB(os.Getenv("DATABASE_URL"))
	if err != nil {
		panic("failed to initialize Database: " + err.Error())
	}
	broker := utils.GetEnv("KAFKA_BROKER")
	logr.Info("Kafka broker loaded", zap.String("broker", broker))

	messageRepo := repositories.NewMessageRepository(db)

	metrics.InitSenderMetrics()
	metrics.InitKafkaMetrics()

	shutdownTracer := tracing.InitTracer("sender_worker", logr)
	defer shutdownTracer()
	tracer := otel.Tracer("sender_worker")

	cfg, err := config.LoadConfig("./config.yaml")
	if err != nil {
		logr.Fatal("failed to load config", zap.Error(err))
	}

	// The worker terminates the broker leg, so it must not use BuildSender:
	// provider "kafka" there would republish to the topic it consumes.
	var sender whatsapp.Sender
	if cfg.WhatsApp.Twilio != nil {
		sender = &whatsapp.TwilioSender{
			FromNumber: cfg.WhatsApp.Twilio.FromNumber,
			Username:   cfg.WhatsApp.Twilio.Username,
			Password:   cfg.WhatsApp.Twilio.Password,
			Timeout:    cfg.WhatsApp.Twilio.Timeout,
		}
		logr.Info("WhatsApp sender worker using twilio")
	} else {
		sender = whatsapp.NewLogSender(logr)
		logr.Warn("No twilio config found, worker logs sends instead")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.HandleOutbound(broker, ctx, sender, logr, messageRepo, tracer)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	wrappedMux := middlewares.MetricsMiddleware(mux)
	go handleShutdown(logr)

	if err := http.ListenAndServe(":3003", wrappedMux); err != nil {
		logr.Fatal("metrics server failed", zap.Error(err))
	}
}

func handleShutdown(log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	os.Exit(0)
}
