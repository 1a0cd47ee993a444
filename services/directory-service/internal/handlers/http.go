package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/citaplan/citaplan/services/directory-service/internal/storage"
)

// Handler exposes the clinic directory over REST: specialties, doctors, and
// per-doctor reminder policies.
type Handler struct {
	repo          *storage.Repository
	clinicDefault []int
}

func New(repo *storage.Repository, clinicDefaultOffsets []int) *Handler {
	return &Handler{repo: repo, clinicDefault: clinicDefaultOffsets}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type specialtyRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	HighPrivacy bool   `json:"high_privacy"`
}

func (h *Handler) UpsertSpecialty(w http.ResponseWriter, r *http.Request) {
	var req specialtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		http.Error(w, "code and name are required", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpsertSpecialty(r.Context(), storage.Specialty{
		Code:        req.Code,
		Name:        req.Name,
		HighPrivacy: req.HighPrivacy,
	}); err != nil {
		http.Error(w, "failed to store specialty", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code": strings.ToLower(strings.TrimSpace(req.Code))})
}

func (h *Handler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.repo.ListSpecialties(r.Context())
	if err != nil {
		http.Error(w, "failed to list specialties", http.StatusInternalServerError)
		return
	}
	type view struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		HighPrivacy bool   `json:"high_privacy"`
	}
	out := make([]view, 0, len(specialties))
	for _, s := range specialties {
		out = append(out, view{Code: s.Code, Name: s.Name, HighPrivacy: s.HighPrivacy})
	}
	writeJSON(w, http.StatusOK, map[string]any{"specialties": out})
}

type doctorRequest struct {
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	LocationID string `json:"location_id"`
	Active     *bool  `json:"active"`
}

func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Specialty) == "" {
		http.Error(w, "name and specialty are required", http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	id, err := h.repo.CreateDoctor(r.Context(), storage.Doctor{
		Name:       req.Name,
		Specialty:  req.Specialty,
		LocationID: strings.TrimSpace(req.LocationID),
		Active:     active,
	})
	if err != nil {
		http.Error(w, "failed to create doctor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.repo.ListDoctors(r.Context(), r.URL.Query().Get("specialty"), 100)
	if err != nil {
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}
	type view struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Specialty  string `json:"specialty"`
		LocationID string `json:"location_id,omitempty"`
		Active     bool   `json:"active"`
	}
	out := make([]view, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, view{ID: d.ID, Name: d.Name, Specialty: d.Specialty, LocationID: d.LocationID, Active: d.Active})
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": out})
}

type policyRequest struct {
	DoctorID               string `json:"doctor_id"`
	ReminderOffsetsMinutes []int  `json:"reminder_offsets_minutes"`
}

func (h *Handler) UpsertPolicy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.DoctorID == "" {
		http.Error(w, "doctor_id is required", http.StatusBadRequest)
		return
	}
	for _, mins := range req.ReminderOffsetsMinutes {
		if mins <= 0 {
			http.Error(w, "offsets must be positive minutes", http.StatusBadRequest)
			return
		}
	}
	if err := h.repo.UpsertPolicy(r.Context(), req.DoctorID, req.ReminderOffsetsMinutes); err != nil {
		http.Error(w, "failed to store policy", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"doctor_id": req.DoctorID})
}

// Policy answers the cross-service question in one round trip: reminder
// offsets for a doctor plus the privacy class of a specialty.
func (h *Handler) Policy(w http.ResponseWriter, r *http.Request) {
	doctorID := r.URL.Query().Get("doctor_id")
	specialty := r.URL.Query().Get("specialty")

	offsets := h.clinicDefault
	if doctorID != "" {
		var err error
		offsets, err = h.repo.ReminderOffsets(r.Context(), doctorID, h.clinicDefault)
		if err != nil {
			http.Error(w, "failed to load policy", http.StatusInternalServerError)
			return
		}
	}

	highPrivacy := false
	if specialty != "" {
		s, err := h.repo.GetSpecialty(r.Context(), specialty)
		switch {
		case err == nil:
			highPrivacy = s.HighPrivacy
		case storage.IsNotFound(err):
			// Unknown specialties stay non-private; registration controls the flag.
		default:
			http.Error(w, "failed to load specialty", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reminder_offsets_minutes": offsets,
		"high_privacy":             highPrivacy,
	})
}
