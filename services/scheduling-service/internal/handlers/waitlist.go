package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

type joinWaitlistRequest struct {
	DoctorID                 string  `json:"doctor_id"`
	PatientID                string  `json:"patient_id"`
	PatientName              string  `json:"patient_name"`
	PatientEmail             string  `json:"patient_email"`
	PatientPhone             string  `json:"patient_phone"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	PreferredDays            []int   `json:"preferred_days"`
	PreferredTimeStart       *string `json:"preferred_time_start"` // "HH:MM"
	PreferredTimeEnd         *string `json:"preferred_time_end"`
	Priority                 string  `json:"priority"`
}

// JoinWaitlist registers a patient waiting for a slot with a doctor.
// POST /waitlist
func (h *SchedulingHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req joinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.DoctorID == "" || req.PatientName == "" {
		http.Error(w, "doctor_id and patient_name are required", http.StatusBadRequest)
		return
	}
	if req.PatientEmail == "" && req.PatientPhone == "" {
		http.Error(w, "at least one of patient_email or patient_phone is required", http.StatusBadRequest)
		return
	}
	if req.EstimatedDurationMinutes <= 0 {
		http.Error(w, "estimated_duration_minutes must be positive", http.StatusBadRequest)
		return
	}
	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		http.Error(w, "invalid priority", http.StatusBadRequest)
		return
	}

	entry := model.WaitlistEntry{
		DoctorID:                 req.DoctorID,
		PatientID:                req.PatientID,
		PatientName:              req.PatientName,
		PatientEmail:             req.PatientEmail,
		PatientPhone:             req.PatientPhone,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		Priority:                 priority,
	}
	for _, d := range req.PreferredDays {
		if d < 0 || d > 6 {
			http.Error(w, "preferred_days values must be 0..6", http.StatusBadRequest)
			return
		}
		entry.PreferredDays = append(entry.PreferredDays, time.Weekday(d))
	}
	var err error
	if entry.PreferredTimeStart, err = parseOptionalClock(req.PreferredTimeStart); err != nil {
		http.Error(w, "invalid preferred_time_start", http.StatusBadRequest)
		return
	}
	if entry.PreferredTimeEnd, err = parseOptionalClock(req.PreferredTimeEnd); err != nil {
		http.Error(w, "invalid preferred_time_end", http.StatusBadRequest)
		return
	}
	if entry.PreferredTimeStart != nil && entry.PreferredTimeEnd != nil &&
		*entry.PreferredTimeEnd <= *entry.PreferredTimeStart {
		http.Error(w, "preferred_time_end must be after preferred_time_start", http.StatusBadRequest)
		return
	}

	id, err := h.waitlist.Create(r.Context(), &entry)
	if err != nil {
		h.logger.Error("waitlist create failed", "error", err, "doctor_id", req.DoctorID)
		http.Error(w, "failed to join waitlist", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "status": model.WaitlistWaiting})
}

func parseOptionalClock(s *string) (*int, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	min, err := model.ParseClock(*s)
	if err != nil {
		return nil, err
	}
	return &min, nil
}

// ListWaitlist returns a doctor's waitlist, optionally filtered by status.
// GET /waitlist?doctor_id=...&status=waiting
func (h *SchedulingHandler) ListWaitlist(w http.ResponseWriter, r *http.Request) {
	doctorID := r.URL.Query().Get("doctor_id")
	if doctorID == "" {
		http.Error(w, "doctor_id is required", http.StatusBadRequest)
		return
	}
	status := model.WaitlistStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.WaitlistWaiting
	}

	entries, err := h.waitlist.ListByDoctor(r.Context(), doctorID, status)
	if err != nil {
		h.logger.Error("waitlist list failed", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list waitlist", http.StatusInternalServerError)
		return
	}

	type entryView struct {
		ID                       string  `json:"id"`
		PatientName              string  `json:"patient_name"`
		EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
		PreferredDays            []int   `json:"preferred_days"`
		PreferredTimeStart       *string `json:"preferred_time_start,omitempty"`
		PreferredTimeEnd         *string `json:"preferred_time_end,omitempty"`
		Priority                 string  `json:"priority"`
		Status                   string  `json:"status"`
		CreatedAt                string  `json:"created_at"`
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		v := entryView{
			ID:                       e.ID,
			PatientName:              e.PatientName,
			EstimatedDurationMinutes: e.EstimatedDurationMinutes,
			Priority:                 string(e.Priority),
			Status:                   string(e.Status),
			CreatedAt:                e.CreatedAt.UTC().Format(time.RFC3339),
		}
		for _, d := range e.PreferredDays {
			v.PreferredDays = append(v.PreferredDays, int(d))
		}
		if e.PreferredTimeStart != nil {
			s := model.ClockString(*e.PreferredTimeStart)
			v.PreferredTimeStart = &s
		}
		if e.PreferredTimeEnd != nil {
			s := model.ClockString(*e.PreferredTimeEnd)
			v.PreferredTimeEnd = &s
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctor_id": doctorID, "entries": views})
}
