package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/citaplan/citaplan/libs/config"
	"github.com/citaplan/citaplan/libs/db"
	"github.com/citaplan/citaplan/libs/httpx"
	"github.com/citaplan/citaplan/libs/kafkax"
	otelx "github.com/citaplan/citaplan/libs/otel"
	"github.com/citaplan/citaplan/libs/runtime"
	"github.com/citaplan/citaplan/services/scheduler-service/internal/consumer"
	"github.com/citaplan/citaplan/services/scheduler-service/internal/inbox"
	"github.com/citaplan/citaplan/services/scheduler-service/internal/jobs"
	"github.com/citaplan/citaplan/services/scheduler-service/internal/outbox"
)

// appointmentEvent is the subset of the scheduling events the planner needs.
type appointmentEvent struct {
	AppointmentID          string `json:"appointment_id"`
	DoctorID               string `json:"doctor_id"`
	DoctorName             string `json:"doctor_name"`
	Specialty              string `json:"specialty"`
	HighPrivacy            bool   `json:"high_privacy"`
	Reason                 string `json:"reason"`
	PatientID              string `json:"patient_id"`
	PatientName            string `json:"patient_name"`
	PatientEmail           string `json:"patient_email"`
	PatientPhone           string `json:"patient_phone"`
	Start                  string `json:"start"`
	NewStart               string `json:"new_start"`
	DurationMinutes        int    `json:"duration_minutes"`
	ReminderOffsetsMinutes []int  `json:"reminder_offsets_minutes"`
}

func (e appointmentEvent) planned(start time.Time) jobs.Appointment {
	appt := jobs.Appointment{
		AppointmentID:   e.AppointmentID,
		DoctorID:        e.DoctorID,
		DoctorName:      e.DoctorName,
		Specialty:       e.Specialty,
		HighPrivacy:     e.HighPrivacy,
		Reason:          e.Reason,
		PatientID:       e.PatientID,
		PatientName:     e.PatientName,
		PatientEmail:    e.PatientEmail,
		PatientPhone:    e.PatientPhone,
		Start:           start,
		DurationMinutes: e.DurationMinutes,
	}
	if e.HighPrivacy {
		appt.Reason = ""
	}
	for _, mins := range e.ReminderOffsetsMinutes {
		appt.ReminderOffsets = append(appt.ReminderOffsets, time.Duration(mins)*time.Minute)
	}
	return appt
}

func main() {
	config.LoadDotenv()

	service := config.String("SERVICE_NAME", "scheduler-service")
	port, err := config.Port("PORT", "8084")
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

	repo := jobs.NewRepository()
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	worker := jobs.NewWorker(pool, repo, outboxRepo, logger, jobs.WorkerConfig{
		Interval:  config.Duration("WORKER_INTERVAL", 2*time.Second),
		BatchSize: config.Int("WORKER_BATCH_SIZE", 50),
		Backoff:   config.Duration("WORKER_BACKOFF", time.Minute),
	})
	go worker.Run(ctx)

	postVisitDelay := config.Duration("POST_VISIT_DELAY", 3*time.Hour)

	planJobs := func(ctx context.Context, appt jobs.Appointment, cancelFirst bool) error {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if cancelFirst {
			if _, err := repo.CancelPending(ctx, tx, appt.AppointmentID); err != nil {
				return err
			}
		}
		for _, job := range jobs.Plan(appt, time.Now(), postVisitDelay) {
			if err := repo.Insert(ctx, tx, job); err != nil {
				return err
			}
		}
		return tx.Commit(ctx)
	}

	inboxRepo := inbox.NewRepository(pool)
	startConsumer := func(topic string, handle func(context.Context, []byte) error) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		cfg := consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "scheduler-service"),
			Topic:   topic,
		}
		c := consumer.New(logger, inboxRepo, cfg, func(ctx context.Context, msg kafka.Message) error {
			return handle(ctx, msg.Value)
		})
		go c.Run(ctx)
	}

	startConsumer(config.String("TOPIC_BOOKED", "scheduling.appointment.booked.v1"), func(ctx context.Context, raw []byte) error {
		var e appointmentEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			logger.Error("invalid booked payload", "err", err)
			return nil
		}
		start, err := time.Parse(time.RFC3339, e.Start)
		if err != nil {
			logger.Error("invalid booked start", "err", err)
			return nil
		}
		return planJobs(ctx, e.planned(start), false)
	})

	startConsumer(config.String("TOPIC_CANCELLED", "scheduling.appointment.cancelled.v1"), func(ctx context.Context, raw []byte) error {
		var e appointmentEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			logger.Error("invalid cancelled payload", "err", err)
			return nil
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()
		n, err := repo.CancelPending(ctx, tx, e.AppointmentID)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("pending triggers cancelled", "appointment_id", e.AppointmentID, "count", n)
		}
		return tx.Commit(ctx)
	})

	startConsumer(config.String("TOPIC_MOVED", "scheduling.appointment.moved.v1"), func(ctx context.Context, raw []byte) error {
		var e appointmentEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			logger.Error("invalid moved payload", "err", err)
			return nil
		}
		newStart, err := time.Parse(time.RFC3339, e.NewStart)
		if err != nil {
			logger.Error("invalid moved new_start", "err", err)
			return nil
		}
		return planJobs(ctx, e.planned(newStart), true)
	})

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "scheduler")
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
