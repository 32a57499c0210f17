package registrations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"campus-events/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/events/{eventID}/register", registerHandler(svc))
	r.Get("/events/{eventID}/registered", isRegisteredHandler(svc))

	// Roster por evento (solo admin)
	r.Get("/events/{eventID}/registrations", listByEventHandler(svc))

	r.Get("/registrations/me", listMineHandler(svc))
	r.Delete("/registrations/{registrationID}", removeOrphanedHandler(svc))
}

type registerRequest struct {
	Address string `json:"address"`
}

type registerResponse struct {
	Status         string `json:"status"` // created | updated
	RegistrationID string `json:"registration_id"`
}

type snapshotResponse struct {
	Title    string `json:"title"`
	DateText string `json:"date_text"`
	Location string `json:"location"`
	ImageURL string `json:"image_url,omitempty"`
}

type historyEventResponse struct {
	// ID vacío + Available=false => el evento fue borrado; el snapshot es
	// lo que queda para renderizar.
	ID        string `json:"id,omitempty"`
	Available bool   `json:"available"`
	Title     string `json:"title"`
	DateText  string `json:"date_text"`
	Location  string `json:"location"`
	ImageURL  string `json:"image_url,omitempty"`
}

type historyItemResponse struct {
	ID        string               `json:"id"`
	Address   string               `json:"address"`
	CreatedAt time.Time            `json:"created_at"`
	Event     historyEventResponse `json:"event"`
}

type rosterItemResponse struct {
	ID            string           `json:"id"`
	ParticipantID string           `json:"participant_id"`
	Address       string           `json:"address"`
	CreatedAt     time.Time        `json:"created_at"`
	Snapshot      snapshotResponse `json:"snapshot"`
}

// registerHandler godoc
// @Summary Inscribirse a un evento
// @Description Upsert idempotente: la primera vez crea la inscripción (respetando el cupo), las siguientes solo actualizan address. Repetir nunca duplica ni da error.
// @Tags registrations
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param payload body registerRequest false "Dirección opcional"
// @Success 201 {object} registerResponse "primera inscripción"
// @Success 200 {object} registerResponse "inscripción previa actualizada"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "event is full / already registered"
// @Router /events/{eventID}/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerRequest
		if r.Body != nil {
			// body opcional: sin body = sin address
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		res, err := svc.Register(r.Context(), chi.URLParam(r, "eventID"), claims.UserID, req.Address)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "event not found", http.StatusNotFound)
			case errors.Is(err, ErrEventFull):
				http.Error(w, "event is full", http.StatusConflict)
			case errors.Is(err, ErrAlreadyRegistered):
				http.Error(w, "already registered", http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		status := http.StatusCreated
		if res.Status == StatusUpdated {
			status = http.StatusOK
		}
		writeJSON(w, status, registerResponse{
			Status:         string(res.Status),
			RegistrationID: res.RegistrationID,
		})
	}
}

func isRegisteredHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		registered, err := svc.IsRegistered(r.Context(), chi.URLParam(r, "eventID"), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"registered": registered})
	}
}

func listByEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		regs, err := svc.ListByEvent(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]rosterItemResponse, 0, len(regs))
		for _, reg := range regs {
			out = append(out, rosterItemResponse{
				ID:            reg.ID,
				ParticipantID: reg.ParticipantID,
				Address:       reg.Address,
				CreatedAt:     reg.CreatedAt,
				Snapshot: snapshotResponse{
					Title:    reg.Snapshot.Title,
					DateText: reg.Snapshot.DateText,
					Location: reg.Snapshot.Location,
					ImageURL: reg.Snapshot.ImageURL,
				},
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listMineHandler devuelve el historial del participante. Para eventos ya
// borrados rinde el snapshot con available=false.
func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		entries, err := svc.History(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		items := make([]historyItemResponse, 0, len(entries))
		for _, e := range entries {
			item := historyItemResponse{
				ID:        e.Registration.ID,
				Address:   e.Registration.Address,
				CreatedAt: e.Registration.CreatedAt,
			}
			if e.Live != nil {
				item.Event = historyEventResponse{
					ID:        e.Live.ID,
					Available: true,
					Title:     e.Live.Title,
					DateText:  e.Live.DateText,
					Location:  e.Live.Location,
					ImageURL:  e.Live.ImageURL,
				}
			} else {
				item.Event = historyEventResponse{
					Available: false,
					Title:     e.Registration.Snapshot.Title,
					DateText:  e.Registration.Snapshot.DateText,
					Location:  e.Registration.Snapshot.Location,
					ImageURL:  e.Registration.Snapshot.ImageURL,
				}
			}
			items = append(items, item)
		}

		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func removeOrphanedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.RemoveOrphaned(r.Context(), chi.URLParam(r, "registrationID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "registration not found", http.StatusNotFound)
			case errors.Is(err, ErrNotOrphaned):
				http.Error(w, "event still exists", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// writeJSON está duplicado a propósito por módulo (ver events/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
