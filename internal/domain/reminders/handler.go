package reminders

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el endpoint que invoca el scheduler externo una vez
// por día. Se protege con un secreto propio (no con la sesión de un usuario).
func RegisterRoutes(r chi.Router, svc *Service, cronSecret string) {
	r.Get("/cron/send-reminders", sendRemindersHandler(svc, cronSecret))
}

type dispatchResponse struct {
	EventsProcessed      int `json:"events_processed"`
	NotificationsCreated int `json:"notifications_created"`
}

func sendRemindersHandler(svc *Service, cronSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := strings.TrimSpace(cronSecret)
		if secret == "" || r.Header.Get("Authorization") != "Bearer "+secret {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.DispatchTomorrowReminders(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, dispatchResponse{
			EventsProcessed:      res.EventsProcessed,
			NotificationsCreated: res.NotificationsCreated,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
