package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/citaplan/citaplan/libs/config"
	"github.com/citaplan/citaplan/libs/db"
	"github.com/citaplan/citaplan/libs/httpx"
	"github.com/citaplan/citaplan/libs/kafkax"
	otelx "github.com/citaplan/citaplan/libs/otel"
	"github.com/citaplan/citaplan/libs/runtime"
	"github.com/citaplan/citaplan/services/notification-service/internal/cascade"
	"github.com/citaplan/citaplan/services/notification-service/internal/consumer"
	"github.com/citaplan/citaplan/services/notification-service/internal/email"
	"github.com/citaplan/citaplan/services/notification-service/internal/events"
	"github.com/citaplan/citaplan/services/notification-service/internal/handlers"
	"github.com/citaplan/citaplan/services/notification-service/internal/inbox"
	"github.com/citaplan/citaplan/services/notification-service/internal/outbox"
	"github.com/citaplan/citaplan/services/notification-service/internal/push"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
	"github.com/citaplan/citaplan/services/notification-service/internal/response"
	"github.com/citaplan/citaplan/services/notification-service/internal/sms"
	"github.com/citaplan/citaplan/services/notification-service/internal/whatsapp"
)

func main() {
	config.LoadDotenv()

	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	reminders := reminder.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	var pushSender push.Sender = push.NewNoopSender()
	if url := config.String("PUSH_WEBHOOK_URL", ""); url != "" {
		pushSender = push.NewWebhookSender(url, config.String("PUSH_WEBHOOK_TOKEN", ""))
	}
	var waSender whatsapp.Sender = whatsapp.NewNoopSender()
	if url := config.String("WHATSAPP_WEBHOOK_URL", ""); url != "" {
		waSender = whatsapp.NewWebhookSender(url, config.String("WHATSAPP_WEBHOOK_TOKEN", ""))
	}
	var smsSender sms.Sender = sms.NewNoopSender()
	if url := config.String("SMS_WEBHOOK_URL", ""); url != "" {
		smsSender = sms.NewWebhookSender(url, config.String("SMS_WEBHOOK_TOKEN", ""))
	}
	emailSender := email.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", "no-reply@citaplan.local"),
	)

	orchestrator := cascade.New(cascade.Config{
		Push:           pushSender,
		WhatsApp:       waSender,
		SMS:            smsSender,
		Email:          emailSender,
		ChannelTimeout: config.Duration("CHANNEL_TIMEOUT", 8*time.Second),
		Logger:         logger,
	})

	linkBase := config.String("LINK_BASE_URL", "http://localhost:8080")
	processor := events.NewProcessor(reminders, orchestrator, outboxRepo, logger, linkBase)

	inboxRepo := inbox.NewRepository(pool)
	startConsumer := func(topic string, handle func(context.Context, []byte) error) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		cfg := consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
			Topic:   topic,
		}
		c := consumer.New(logger, inboxRepo, cfg, func(ctx context.Context, msg kafka.Message) error {
			return handle(ctx, msg.Value)
		})
		go c.Run(ctx)
	}

	startConsumer(config.String("TOPIC_BOOKED", "scheduling.appointment.booked.v1"), processor.HandleBooked)
	startConsumer(config.String("TOPIC_CANCELLED", "scheduling.appointment.cancelled.v1"), processor.HandleCancelled)
	startConsumer(config.String("TOPIC_MOVED", "scheduling.appointment.moved.v1"), processor.HandleMoved)
	startConsumer(config.String("TOPIC_WAITLIST_OFFER", "scheduling.waitlist.offer.v1"), processor.HandleWaitlistOffer)
	startConsumer(config.String("TOPIC_REMINDER_DUE", "scheduler.reminder.due.v1"), processor.HandleReminderDue)

	responseHandler := response.NewHandler(response.NewStore(reminders, outboxRepo), logger)
	linkHandler := handlers.NewLinkHandler(responseHandler, logger)

	router := chi.NewRouter()
	linkHandler.Routes(router)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.Handle("/cita/", router)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
