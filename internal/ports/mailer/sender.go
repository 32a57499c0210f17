package mailer

import "context"

// Message es un correo dirigido a un participante. El relay externo resuelve
// la dirección real del destinatario y maneja el fallback entre proveedores.
type Message struct {
	RecipientID string
	Subject     string
	Body        string
}

// Sender envía correos best-effort. Un error acá se loguea y se descarta;
// nunca debe fallar la operación que lo disparó.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
