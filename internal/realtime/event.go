package realtime

import (
	"encoding/json"
	"time"

	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// Envelope é o formato de fio de todas as mensagens servidor -> cliente:
// {"event": "...", "data": {...}}. Os nomes dos eventos de domínio vêm de
// domain.EventKind e fazem parte do contrato com os clientes.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Eventos de transporte (não são eventos de domínio).
const (
	EventConnected = "connected"
	EventJoinRoom  = "join_room"
	EventPing      = "ping"
	EventPong      = "pong"
)

func NewEnvelope(ev domain.Event) Envelope {
	return Envelope{Event: string(ev.Kind()), Data: ev}
}

// connectedData é o payload do ack de handshake.
type connectedData struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// inboundMessage é o formato de fio cliente -> servidor.
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRoomData struct {
	Room string `json:"room"`
}
