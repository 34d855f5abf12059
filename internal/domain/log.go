package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogEntry registra uma ação auditável (quem fez o quê, sobre qual entidade).
type LogEntry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"usuario_id"`
	Acao      string          `json:"acao"`
	Entidade  string          `json:"entidade,omitempty"`
	RegistroID string         `json:"registro_id,omitempty"`
	Detalhes  json.RawMessage `json:"detalhes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
