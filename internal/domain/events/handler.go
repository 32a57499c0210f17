package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"campus-events/internal/middleware"
	"campus-events/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/events", func(er chi.Router) {
		er.Get("/", listEventsHandler(svc))
		er.Get("/{eventID}", getEventHandler(svc))

		// Catálogo: solo admin crea/edita/borra
		er.Post("/", createEventHandler(svc))
		er.Patch("/{eventID}", updateEventHandler(svc))
		er.Delete("/{eventID}", deleteEventHandler(svc))
	})
}

type createEventRequest struct {
	Title        string `json:"title"`
	DateText     string `json:"date_text"` // YYYY-MM-DD para que funcione el recordatorio
	Description  string `json:"description"`
	Location     string `json:"location"`
	ImageURL     string `json:"image_url"`
	MaxAttendees *int   `json:"max_attendees"` // null / ausente = sin límite
}

type updateEventRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Title       *string `json:"title"`
	DateText    *string `json:"date_text"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	ImageURL    *string `json:"image_url"`
	// max_attendees admite null explícito para quitar el límite (ver raw decode).
}

type eventResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	DateText     string    `json:"date_text"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	ImageURL     string    `json:"image_url"`
	MaxAttendees *int      `json:"max_attendees"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// createEventHandler godoc
// @Summary Crear evento
// @Description Publica un evento en el catálogo. Solo admin. Autenticación: `X-Debug-User-ID` + `X-Debug-User-Role: admin` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags events
// @Accept json
// @Produce json
// @Param payload body createEventRequest true "Datos del evento; max_attendees null = sin límite"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / title is required"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := adminClaims(w, r)
		if !ok {
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ev, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Title:        req.Title,
			DateText:     req.DateText,
			Description:  req.Description,
			Location:     req.Location,
			ImageURL:     req.ImageURL,
			MaxAttendees: req.MaxAttendees,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "title is required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(ev))
	}
}

func listEventsHandler(svc *Service) http.HandlerFunc {
	// Listado público, más reciente primero
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, ev := range items {
			out = append(out, toEventResponse(ev))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(ev))
	}
}

func updateEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := adminClaims(w, r); !ok {
			return
		}

		// Para distinguir "max_attendees": null (quitar límite) de "no enviado",
		// decodificamos primero a raw y detectamos presencia del campo.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateEventRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		patch := PatchMaxAttendees{}
		if v, exists := raw["max_attendees"]; exists {
			patch.Present = true
			if string(v) != "null" {
				var n int
				if err := json.Unmarshal(v, &n); err != nil {
					http.Error(w, "max_attendees must be an integer or null", http.StatusBadRequest)
					return
				}
				patch.Value = &n
			}
		}

		ev, err := svc.Update(r.Context(), chi.URLParam(r, "eventID"), UpdateInput{
			Title:        req.Title,
			DateText:     req.DateText,
			Description:  req.Description,
			Location:     req.Location,
			ImageURL:     req.ImageURL,
			MaxAttendees: patch,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "event not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(ev))
	}
}

// deleteEventHandler borra el evento. Si la preservación de snapshots falla,
// responde 500 y el evento sigue existiendo (fail closed).
func deleteEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := adminClaims(w, r); !ok {
			return
		}

		err := svc.Delete(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "event not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func adminClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	cl, found := middleware.GetClaims(r.Context())
	if !found || strings.TrimSpace(cl.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	if !cl.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return cl, true
}

func toEventResponse(ev Event) eventResponse {
	return eventResponse{
		ID:           ev.ID,
		Title:        ev.Title,
		DateText:     ev.DateText,
		Description:  ev.Description,
		Location:     ev.Location,
		ImageURL:     ev.ImageURL,
		MaxAttendees: ev.MaxAttendees,
		CreatedBy:    ev.CreatedBy,
		CreatedAt:    ev.CreatedAt,
		UpdatedAt:    ev.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo,
// igual que en el resto del código: todavía no amerita un helper común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
