package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config agrupa toda la configuración del servicio, cargada desde env vars.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"campus-events"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// DBDriver: "memory" (default), "postgres" o "sqlite".
	DBDriver string `env:"DB_DRIVER" envDefault:"memory"`
	DBDSN    string `env:"DB_DSN"`

	// JWTSecret habilita el verifier HS256. Vacío => modo dev (X-Debug-User-ID).
	JWTSecret string `env:"JWT_SECRET"`

	// CronSecret protege el endpoint del trigger de recordatorios.
	CronSecret string `env:"CRON_SECRET"`

	// Relay de correo (colaborador externo, best-effort).
	MailRelayURL    string `env:"MAIL_RELAY_URL"`
	MailRelayAPIKey string `env:"MAIL_RELAY_API_KEY"`
}

// Load parsea la configuración desde el entorno.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	return cfg, nil
}

// Addr devuelve la dirección de escucha del servidor HTTP.
func (c Config) Addr() string {
	p := strings.TrimSpace(c.Port)
	if p == "" {
		p = "8080"
	}
	return ":" + p
}
