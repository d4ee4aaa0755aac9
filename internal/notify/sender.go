package notify

import (
	"context"
	"errors"
)

// Sender entrega un mensaje corto fuera de banda (SMS, correo).
type Sender interface {
	Send(ctx context.Context, to, message string) (Result, error)
}

// Result describe la respuesta del proveedor.
type Result struct {
	Channel   string `json:"channel"`
	Reference string `json:"reference,omitempty"`
	Status    string `json:"status,omitempty"`
}

var ErrRecipientRequired = errors.New("recipient is required")

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _ string, _ string) (Result, error) {
	if s.reason == "" {
		return Result{}, errors.New("sender disabled")
	}
	return Result{}, errors.New(s.reason)
}
