package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/availability"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/directory"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/outbox"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/slotlock"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/storage"
)

type SchedulingHandler struct {
	appts       *storage.AppointmentRepository
	schedule    *storage.ScheduleRepository
	waitlist    *storage.WaitlistRepository
	engine      *availability.Engine
	outboxRepo  *outbox.Repository
	locker      slotlock.Locker
	directory   directory.Provider
	logger      *slog.Logger
	notifyLimit int // how many matched waitlist entries get an offer per freed slot
}

type Config struct {
	Appointments *storage.AppointmentRepository
	Schedule     *storage.ScheduleRepository
	Waitlist     *storage.WaitlistRepository
	Engine       *availability.Engine
	Outbox       *outbox.Repository
	Locker       slotlock.Locker
	Directory    directory.Provider
	Logger       *slog.Logger
	NotifyLimit  int
}

func New(cfg Config) *SchedulingHandler {
	if cfg.NotifyLimit <= 0 {
		cfg.NotifyLimit = 3
	}
	if cfg.Locker == nil {
		cfg.Locker = slotlock.NewNoopLocker()
	}
	return &SchedulingHandler{
		appts:       cfg.Appointments,
		schedule:    cfg.Schedule,
		waitlist:    cfg.Waitlist,
		engine:      cfg.Engine,
		outboxRepo:  cfg.Outbox,
		locker:      cfg.Locker,
		directory:   cfg.Directory,
		logger:      cfg.Logger,
		notifyLimit: cfg.NotifyLimit,
	}
}

// Routes mounts the scheduling API onto a chi router.
func (h *SchedulingHandler) Routes(r chi.Router) {
	r.Get("/slots", h.Slots)
	r.Post("/appointments", h.Create)
	r.Get("/appointments/{id}", h.Get)
	r.Post("/appointments/{id}/cancel", h.Cancel)
	r.Post("/appointments/{id}/move", h.Move)
	r.Put("/doctors/{id}/windows", h.ReplaceWindows)
	r.Post("/doctors/{id}/blocks", h.CreateTimeBlock)
	r.Delete("/doctors/{id}/blocks/{blockID}", h.DeleteTimeBlock)
	r.Post("/waitlist", h.JoinWaitlist)
	r.Get("/waitlist", h.ListWaitlist)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func parseRFC3339(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}
