package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus-events/internal/platform/httpclient"
	"campus-events/internal/ports/mailer"
)

var (
	ErrRelayNotConfigured = errors.New("mail relay not configured")
	ErrRelayUpstream      = errors.New("mail relay upstream error")
)

// Config del relay de correo.
// El relay es el colaborador externo que resuelve direcciones y maneja el
// fallback multi-proveedor; este cliente solo le entrega el mensaje.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Vacío => "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// Send implementa mailer.Sender.
func (c *Client) Send(ctx context.Context, msg mailer.Message) error {
	if !c.IsConfigured() {
		return ErrRelayNotConfigured
	}
	if strings.TrimSpace(msg.RecipientID) == "" {
		return errors.New("relay: recipient required")
	}

	body := map[string]string{
		"recipient_id": msg.RecipientID,
		"subject":      msg.Subject,
		"body":         msg.Body,
	}

	err := c.http.DoJSON(ctx, http.MethodPost, "/v1/messages",
		map[string]string{c.apiKeyHeader: c.apiKey}, body, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayUpstream, err)
	}
	return nil
}
