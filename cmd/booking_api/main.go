package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/booking_api/app/routes"
	"github.com/kedar94c/whatsapp-crm-backend/logger"
	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/middlewares"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/automation"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/config"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/database"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/lifecycle"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/scheduler"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/utils"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
	"github.com/kedar94c/whatsapp-crm-backend/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	db, err := database.InitDB(os.Getenv("DATABASE_URL"))
	if err != nil {
		panic("DB not init  " + err.Error())
	}
	if err := database.MigrateDB(db,
		&models.Business{},
		&models.Service{},
		&models.Combo{},
		&models.ComboService{},
		&models.Customer{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.AutomationRule{},
		&models.AutomationLog{},
		&models.Message{},
	); err != nil {
		panic("DB not migrated  " + err.Error())
	}

	logr, err := logger.InitLogger()
	if err != nil {
		panic("Failed to initialize zap logger: " + err.Error())
	}
	defer logr.Sync()
	logr.Info("Logger initialized")

	metrics.InitAPIMetrics()
	metrics.InitSchedulerMetrics()

	shutdownTracer := tracing.InitTracer("booking_api", logr)
	defer shutdownTracer()
	tracer := otel.Tracer("booking_api")

	rdb := database.InitRedis(utils.GetEnv("REDIS_ADDR"))

	cfg, err := config.LoadConfig("./config.yaml")
	if err != nil {
		logr.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.WhatsApp.Provider == "kafka" {
		metrics.InitKafkaMetrics()
	}
	sender, err := config.BuildSender(cfg, logr)
	if err != nil {
		logr.Fatal("failed to init whatsapp sender", zap.Error(err))
	}
	logr.Info("WhatsApp sender initialized", zap.String("provider", cfg.WhatsApp.Provider))

	dispatcher := delivery.NewDispatcher(repositories.NewMessageRepository(db), sender, logr)
	bookingSvc := booking.NewService(db, dispatcher, logr)
	lifecycleSvc := lifecycle.NewService(db, logr)
	engine := automation.NewEngine(db, dispatcher, logr)
	retrier := delivery.NewRetryCoordinator(
		repositories.NewMessageRepository(db),
		repositories.NewCustomerRepository(db),
		sender,
		logr,
	)

	sched := scheduler.New(logr)
	sched.Add(scheduler.Job{Name: "automation", Every: time.Minute, Run: func(ctx context.Context) error {
		return engine.Scan(ctx, time.Now().UTC())
	}})
	sched.Add(scheduler.Job{Name: "no_show", Every: time.Minute, Run: func(ctx context.Context) error {
		return lifecycleSvc.MarkNoShows(ctx, time.Now().UTC())
	}})
	sched.Add(scheduler.Job{Name: "archive", Every: 24 * time.Hour, Run: func(ctx context.Context) error {
		return lifecycleSvc.ArchiveExpired(ctx, time.Now().UTC())
	}})
	sched.Add(scheduler.Job{Name: "retry", Every: 5 * time.Minute, Run: retrier.Run})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)

	limiter := middlewares.NewRateLimiter(rate.Limit(5), 10)

	router := gin.Default()
	router.Use(middlewares.GinMetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authCfg := &middlewares.MiddlewareConfig{RedisClient: rdb, DB: db}

	api := router.Group("/api")
	authed := api.Group("")
	authed.Use(middlewares.NewAuthMiddleware(authCfg), limiter.Middleware())

	routes.Businesses(api, authed, db, rdb, logr)
	routes.Catalog(authed, db, logr)
	routes.Customers(authed, db, dispatcher, logr)
	routes.Appointments(authed, bookingSvc, logr, tracer)
	routes.Webhook(router, db, dispatcher, limiter, logr)

	go handleShutdown(sched, sender, logr)
	if err := router.Run(":3000"); err != nil {
		logr.Fatal("Failed to start server", zap.Error(err))
	}
}

func handleShutdown(sched *scheduler.Scheduler, sender whatsapp.Sender, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", zap.String("signal", sig.String()))

	sched.Stop()

	if ks, ok := sender.(*whatsapp.KafkaSender); ok {
		if err := ks.Producer.Close(); err != nil {
			log.Error("Error closing Kafka producer", zap.Error(err))
		} else {
			log.Info("Kafka producer closed cleanly")
		}
	}

	os.Exit(0)
}
