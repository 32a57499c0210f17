package main

import (
	"log"
	"net/http"
	"time"

	"campus-events/internal/adapters/auth/jwtlocal"
	"campus-events/internal/adapters/mailer/relay"
	"campus-events/internal/platform/config"
	"campus-events/internal/platform/logger"
	"campus-events/internal/ports/auth"
	"campus-events/internal/ports/mailer"
	"campus-events/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	var verifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)
	if cfg.JWTSecret != "" {
		verifier = jwtlocal.NewVerifier(cfg.JWTSecret)
	}

	var sender mailer.Sender // nil => sin correo, solo inbox
	if cfg.MailRelayURL != "" {
		client, err := relay.NewClient(relay.Config{
			BaseURL: cfg.MailRelayURL,
			APIKey:  cfg.MailRelayAPIKey,
		})
		if err != nil {
			log.Fatalf("mail relay: %v", err)
		}
		sender = client
	}

	r, err := router.NewRouter(router.Options{
		Cfg:          cfg,
		Log:          appLog,
		AuthVerifier: verifier,
		MailSender:   sender,
	})
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLog.Info("starting server", map[string]any{"addr": cfg.Addr(), "driver": cfg.DBDriver})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
