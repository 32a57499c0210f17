package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	mem "campus-events/internal/adapters/storage/memory"
	pg "campus-events/internal/adapters/storage/postgres"
	lite "campus-events/internal/adapters/storage/sqlite"
	"campus-events/internal/domain/events"
	"campus-events/internal/domain/notifications"
	"campus-events/internal/domain/registrations"
	"campus-events/internal/domain/reminders"
	"campus-events/internal/middleware"
	"campus-events/internal/platform/config"
	"campus-events/internal/platform/logger"
	"campus-events/internal/ports/auth"
	"campus-events/internal/ports/mailer"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Cfg config.Config
	Log logger.Logger

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	MailSender   mailer.Sender     // puede ser nil (sin relay configurado)

	// Opcional: conexión ya abierta; si no viene, se abre según Cfg.DBDriver.
	DB *sql.DB
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{})
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		eventRepo    events.Repository
		regRepo      registrations.Repository
		notifRepo    notifications.Repository
		dispatchRepo reminders.DispatchLog
	)

	switch opts.Cfg.DBDriver {
	case "postgres":
		db := opts.DB
		if db == nil {
			opened, err := pg.Open(opts.Cfg.DBDSN)
			if err != nil {
				return nil, fmt.Errorf("open postgres: %w", err)
			}
			db = opened
		}
		eventRepo = pg.NewEventsRepo(db)
		regRepo = pg.NewRegistrationsRepo(db)
		notifRepo = pg.NewNotificationsRepo(db)
		dispatchRepo = pg.NewDispatchLogRepo(db)

	case "sqlite":
		db := opts.DB
		if db == nil {
			opened, err := lite.Open(opts.Cfg.DBDSN)
			if err != nil {
				return nil, fmt.Errorf("open sqlite: %w", err)
			}
			if err := lite.InitSchema(context.Background(), opened); err != nil {
				return nil, fmt.Errorf("init sqlite schema: %w", err)
			}
			db = opened
		}
		eventRepo = lite.NewEventsRepo(db)
		regRepo = lite.NewRegistrationsRepo(db)
		notifRepo = lite.NewNotificationsRepo(db)
		dispatchRepo = lite.NewDispatchLogRepo(db)

	default:
		eventRepo = mem.NewEventsRepo()
		regRepo = mem.NewRegistrationsRepo()
		notifRepo = mem.NewNotificationsRepo()
		dispatchRepo = mem.NewDispatchLogRepo()
	}

	// Services por módulo. El repo de eventos hace de catálogo para
	// registrations, y el de registrations de audiencia para notifications;
	// así events puede colgarse de ambos services sin ciclos.
	regSvc := registrations.NewService(regRepo, eventRepo)
	notifSvc := notifications.NewService(notifRepo, regRepo, opts.MailSender, log)
	eventsSvc := events.NewService(eventRepo, regSvc, notifSvc, log)
	remSvc := reminders.NewService(eventRepo, notifSvc, dispatchRepo, log)

	// Rutas por módulo
	events.RegisterRoutes(r, eventsSvc)
	registrations.RegisterRoutes(r, regSvc)
	notifications.RegisterRoutes(r, notifSvc)
	reminders.RegisterRoutes(r, remSvc, opts.Cfg.CronSecret)

	return r, nil
}
