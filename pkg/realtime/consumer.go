package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventSource é o que o consumidor precisa de um cliente; nos testes entra
// uma implementação em memória.
type EventSource interface {
	Events() <-chan InboundEvent
	State() State
}

// Notification é um evento já traduzido para exibição.
type Notification struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Message   string          `json:"mensagem"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Consumer normaliza os eventos brutos do websocket em notificações prontas
// para a interface, uma por evento, na ordem de chegada.
type Consumer struct {
	source EventSource
	out    chan Notification

	mu   sync.Mutex
	last *Notification

	done chan struct{}
}

func NewConsumer(source EventSource) *Consumer {
	c := &Consumer{
		source: source,
		out:    make(chan Notification, 16),
		done:   make(chan struct{}),
	}
	go c.loop()
	return c
}

func (c *Consumer) Notifications() <-chan Notification { return c.out }

// Last retorna a última notificação produzida, ou nil.
func (c *Consumer) Last() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	cp := *c.last
	return &cp
}

func (c *Consumer) Connected() bool { return c.source.State() == StateConnected }

// Done é fechado quando a fonte de eventos termina.
func (c *Consumer) Done() <-chan struct{} { return c.done }

func (c *Consumer) loop() {
	defer close(c.done)
	defer close(c.out)
	for ev := range c.source.Events() {
		n := normalize(ev)
		c.mu.Lock()
		c.last = &n
		c.mu.Unlock()
		c.out <- n
	}
}

// normalize traduz cada tipo de evento em uma mensagem amigável. Tipos
// desconhecidos viram uma notificação genérica em vez de serem perdidos.
func normalize(ev InboundEvent) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      ev.Kind,
		Timestamp: ev.ReceivedAt,
		Payload:   ev.Data,
	}

	switch ev.Kind {
	case "plantao_updated":
		n.Message = "Plantão atualizado"
		var payload struct {
			Plantao struct {
				Data  time.Time `json:"data"`
				Turno string    `json:"turno"`
			} `json:"plantao"`
		}
		if err := json.Unmarshal(ev.Data, &payload); err == nil && !payload.Plantao.Data.IsZero() {
			n.Message = fmt.Sprintf("Plantão de %s (%s) atualizado",
				payload.Plantao.Data.Format("02/01"), turnoLabel(payload.Plantao.Turno))
		}
	case "alocacao_created":
		n.Message = "Novo plantonista alocado!"
	case "ranking_updated":
		n.Message = "Ranking atualizado!"
	default:
		n.Message = "Nova atualização disponível"
	}

	return n
}

func turnoLabel(turno string) string {
	switch turno {
	case "manha":
		return "manhã"
	case "tarde":
		return "tarde"
	default:
		return turno
	}
}

// Attach liga um consumidor a um notificador até o contexto acabar.
func Attach(ctx context.Context, c *Consumer, n *Notifier) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case notif, ok := <-c.Notifications():
				if !ok {
					return
				}
				n.Push(notif)
			}
		}
	}()
}
