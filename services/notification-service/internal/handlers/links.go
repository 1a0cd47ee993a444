package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
	"github.com/citaplan/citaplan/services/notification-service/internal/response"
)

// LinkHandler serves the tokenized links embedded in patient messages. The
// pages are plain HTML so they work from any channel without an app.
type LinkHandler struct {
	responses *response.Handler
	logger    *slog.Logger
}

func NewLinkHandler(responses *response.Handler, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{responses: responses, logger: logger}
}

func (h *LinkHandler) Routes(r chi.Router) {
	r.Get("/cita/confirmar/{token}", h.respond(reminder.ResponseConfirmed))
	r.Get("/cita/cancelar/{token}", h.respond(reminder.ResponseCancelled))
	r.Get("/cita/reprogramar/{token}", h.respond(reminder.ResponseRescheduleRequested))
}

func (h *LinkHandler) respond(resp reminder.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := chi.URLParam(r, "token")
		res, err := h.responses.Record(r.Context(), tok, resp)
		if err != nil {
			h.renderError(w, err)
			return
		}
		h.renderOK(w, res)
	}
}

func (h *LinkHandler) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, response.ErrTokenInvalid):
		renderPage(w, http.StatusNotFound, "Enlace no válido",
			"Este enlace no es válido. Si lo recibió de su clínica, contáctela directamente.")
	case errors.Is(err, response.ErrTokenExpired):
		renderPage(w, http.StatusGone, "Enlace caducado",
			"Este enlace ya no está activo. Contacte a su clínica para gestionar su cita.")
	case errors.Is(err, response.ErrConflictingResponse):
		renderPage(w, http.StatusConflict, "Respuesta ya registrada",
			"Ya registramos una respuesta distinta para esta cita. Contacte a su clínica si necesita cambiarla.")
	case errors.Is(err, response.ErrNotRespondable):
		renderPage(w, http.StatusConflict, "Respuesta no disponible",
			"Esta notificación ya no admite respuesta. Contacte a su clínica para gestionar su cita.")
	default:
		h.logger.Error("response recording failed", "err", err)
		renderPage(w, http.StatusInternalServerError, "Error",
			"No pudimos registrar su respuesta. Inténtelo de nuevo en unos minutos.")
	}
}

func (h *LinkHandler) renderOK(w http.ResponseWriter, res response.Result) {
	var title, body string
	switch res.Response {
	case reminder.ResponseConfirmed:
		if res.Reminder.Kind == reminder.KindWaitlistOffer {
			title = "Horario reservado"
			body = "Hemos reservado el horario para usted. Recibirá la confirmación en breve."
		} else {
			title = "Asistencia confirmada"
			body = "Gracias, su asistencia ha quedado confirmada."
		}
	case reminder.ResponseCancelled:
		if res.Reminder.Kind == reminder.KindWaitlistOffer {
			title = "Horario rechazado"
			body = "Entendido, el horario quedará disponible para otros pacientes."
		} else {
			title = "Cita cancelada"
			body = "Su cita ha sido cancelada. Puede reservar una nueva cuando lo desee."
		}
	case reminder.ResponseRescheduleRequested:
		title = "Reprogramación solicitada"
		body = "Hemos registrado su solicitud. La clínica se pondrá en contacto para ofrecerle un nuevo horario."
	}
	renderPage(w, http.StatusOK, title, body)
}

func renderPage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!doctype html>
<html lang="es"><head><meta charset="utf-8"><title>%s</title></head>
<body><h1>%s</h1><p>%s</p></body></html>
`, title, title, body)
}
