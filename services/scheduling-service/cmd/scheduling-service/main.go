package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/citaplan/citaplan/libs/config"
	"github.com/citaplan/citaplan/libs/db"
	"github.com/citaplan/citaplan/libs/httpx"
	"github.com/citaplan/citaplan/libs/kafkax"
	otelx "github.com/citaplan/citaplan/libs/otel"
	"github.com/citaplan/citaplan/libs/runtime"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/availability"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/consumer"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/directory"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/handlers"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/inbox"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/outbox"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/slotlock"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/storage"
)

func parseReminderOffsets(raw string, logger *slog.Logger) []time.Duration {
	var offsets []time.Duration
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mins, err := strconv.Atoi(part)
		if err != nil || mins <= 0 {
			logger.Warn("invalid reminder offset", "value", part)
			continue
		}
		offsets = append(offsets, time.Duration(mins)*time.Minute)
	}
	if len(offsets) == 0 {
		offsets = []time.Duration{24 * time.Hour, 2 * time.Hour}
	}
	return offsets
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	config.LoadDotenv()

	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8083")
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

	appts := storage.NewAppointmentRepository(pool)
	schedule := storage.NewScheduleRepository(pool)
	waitlistRepo := storage.NewWaitlistRepository(pool)
	engine := availability.NewEngine(storage.NewScheduleView(schedule, appts))
	outboxRepo := outbox.NewRepository(pool)

	offsets := parseReminderOffsets(config.String("REMINDER_OFFSETS_MINUTES", "1440,120"), logger)
	privateSpecialties := splitList(config.String("HIGH_PRIVACY_SPECIALTIES", "psychiatry,psychology,fertility"))
	dirProvider, err := directory.NewDirectoryProvider(logger, offsets, privateSpecialties, config.String("DIRECTORY_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("directory provider init failed", "err", err)
		panic(err)
	}

	locker := slotlock.NewNoopLocker()
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		locker = slotlock.NewRedisLocker(client, 10*time.Second)
	} else {
		logger.Warn("no redis configured, slot locking degraded to exclusion constraint only")
	}

	handler := handlers.New(handlers.Config{
		Appointments: appts,
		Schedule:     schedule,
		Waitlist:     waitlistRepo,
		Engine:       engine,
		Outbox:       outboxRepo,
		Locker:       locker,
		Directory:    dirProvider,
		Logger:       logger,
		NotifyLimit:  config.Int("WAITLIST_NOTIFY_LIMIT", 3),
	})

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	// Unanswered offers lapse once their slot start passes.
	go func() {
		ticker := time.NewTicker(config.Duration("OFFER_EXPIRY_INTERVAL", time.Minute))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := waitlistRepo.ExpireLapsedOffers(ctx)
				if err != nil {
					logger.Error("offer expiry sweep failed", "err", err)
					continue
				}
				if n > 0 {
					logger.Info("lapsed offers expired", "count", n)
				}
			}
		}
	}()

	if topic := config.String("KAFKA_CONSUME_TOPIC", "notification.response.recorded.v1"); strings.TrimSpace(topic) != "" {
		inboxRepo := inbox.NewRepository(pool)
		consumerCfg := consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "scheduling-service"),
			Topic:   topic,
		}
		responseConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
			var resp handlers.PatientResponse
			if err := json.Unmarshal(msg.Value, &resp); err != nil {
				logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
				return nil
			}
			if resp.AppointmentID == "" && resp.WaitlistEntryID == "" {
				logger.Error("response event missing target", "topic", msg.Topic)
				return nil
			}
			return handler.ApplyPatientResponse(ctx, resp)
		})
		go responseConsumer.Run(ctx)
	}

	router := chi.NewRouter()
	router.Route("/api/v1", handler.Routes)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.Handle("/", router)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "scheduling")
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
