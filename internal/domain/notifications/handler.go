package notifications

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"campus-events/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/me", listMineHandler(svc))
		nr.Post("/me/mark-as-read", markAllReadHandler(svc))
	})
}

type notificationResponse struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	EventID    string    `json:"event_id,omitempty"`
	EventTitle string    `json:"event_title"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

func listMineHandler(svc *Service) http.HandlerFunc {
	// Las 50 más recientes, nuevas primero
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListForRecipient(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, notificationResponse{
				ID:         n.ID,
				Kind:       n.Kind,
				Message:    n.Message,
				EventID:    n.EventID,
				EventTitle: n.EventTitle,
				Read:       n.Read,
				CreatedAt:  n.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func markAllReadHandler(svc *Service) http.HandlerFunc {
	// Todo-o-nada: no hay lectura parcial por notificación
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
	}
}

// writeJSON está duplicado a propósito por módulo (ver events/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
