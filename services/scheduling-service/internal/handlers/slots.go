package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

// Slots returns the bookable grid for one doctor on one date.
// GET /slots?doctor_id=...&date=2026-03-14&duration_minutes=30
func (h *SchedulingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	doctorID := r.URL.Query().Get("doctor_id")
	if doctorID == "" {
		http.Error(w, "doctor_id is required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	duration := 30 * time.Minute
	if raw := r.URL.Query().Get("duration_minutes"); raw != "" {
		d, ok := parsePositiveMinutes(raw)
		if !ok {
			http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
			return
		}
		duration = d
	}

	slots, err := h.engine.ComputeSlots(r.Context(), doctorID, date, duration)
	if err != nil {
		h.logger.Error("slot computation failed", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to compute slots", http.StatusInternalServerError)
		return
	}

	type slotView struct {
		Start     string `json:"start"`
		Available bool   `json:"available"`
	}
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, slotView{Start: s.Start.UTC().Format(time.RFC3339), Available: s.Available})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doctor_id": doctorID,
		"date":      date.Format("2006-01-02"),
		"slots":     views,
	})
}

func parsePositiveMinutes(raw string) (time.Duration, bool) {
	var mins int
	if err := json.Unmarshal([]byte(raw), &mins); err != nil || mins <= 0 || mins > 24*60 {
		return 0, false
	}
	return time.Duration(mins) * time.Minute, true
}

type windowRequest struct {
	DayOfWeek int    `json:"day_of_week"` // 0 = Sunday
	Start     string `json:"start"`       // "HH:MM"
	End       string `json:"end"`
	Active    *bool  `json:"active"`
}

// ReplaceWindows replaces a doctor's whole weekly availability.
// PUT /doctors/{id}/windows
func (h *SchedulingHandler) ReplaceWindows(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "id")
	var reqs []windowRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	windows := make([]model.AvailabilityWindow, 0, len(reqs))
	for _, req := range reqs {
		if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
			http.Error(w, "day_of_week must be 0..6", http.StatusBadRequest)
			return
		}
		startMin, err := model.ParseClock(req.Start)
		if err != nil {
			http.Error(w, "invalid start: "+err.Error(), http.StatusBadRequest)
			return
		}
		endMin, err := model.ParseClock(req.End)
		if err != nil {
			http.Error(w, "invalid end: "+err.Error(), http.StatusBadRequest)
			return
		}
		if endMin <= startMin {
			http.Error(w, "end must be after start", http.StatusBadRequest)
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		windows = append(windows, model.AvailabilityWindow{
			DoctorID:    doctorID,
			DayOfWeek:   time.Weekday(req.DayOfWeek),
			StartMinute: startMin,
			EndMinute:   endMin,
			Active:      active,
		})
	}

	if err := h.schedule.ReplaceWindows(r.Context(), doctorID, windows); err != nil {
		h.logger.Error("replace windows failed", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to store windows", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctor_id": doctorID, "windows": len(windows)})
}

type timeBlockRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// CreateTimeBlock carves an ad-hoc unavailable interval out of the schedule.
// POST /doctors/{id}/blocks
func (h *SchedulingHandler) CreateTimeBlock(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "id")
	var req timeBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	start, ok := parseRFC3339(req.Start)
	if !ok {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	end, ok := parseRFC3339(req.End)
	if !ok {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}
	if !start.Before(end) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}

	id, err := h.schedule.CreateTimeBlock(r.Context(), model.TimeBlock{
		DoctorID: doctorID,
		Start:    start,
		End:      end,
		Reason:   req.Reason,
	})
	if err != nil {
		h.logger.Error("create time block failed", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to store time block", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// DeleteTimeBlock removes an ad-hoc block.
// DELETE /doctors/{id}/blocks/{blockID}
func (h *SchedulingHandler) DeleteTimeBlock(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "id")
	blockID := chi.URLParam(r, "blockID")

	deleted, err := h.schedule.DeleteTimeBlock(r.Context(), doctorID, blockID)
	if err != nil {
		h.logger.Error("delete time block failed", "error", err, "block_id", blockID)
		http.Error(w, "failed to delete time block", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "time block not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
