package realtime

import (
	"context"

	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// Hub é o barramento de eventos do processo: um único goroutine é dono do
// registro de salas e sessões, então não há locks; toda interação acontece
// por mensagens na inbox. A publicação é fire-and-forget em relação a quem
// muta o estado: sessões lentas são descartadas, nunca bloqueiam o emissor.
type HubMsg interface{ isHubMsg() }

// RegisterSession registra uma sessão recém-conectada e a caixa de saída na
// qual o hub deposita os envelopes dela.
type RegisterSession struct {
	SessionID string
	Outbox    chan Envelope
}

// JoinRoom inscreve uma sessão em uma sala de broadcast.
type JoinRoom struct {
	Room      string
	SessionID string
}

// LeaveRoom remove a sessão de uma sala, sem derrubar a conexão.
type LeaveRoom struct {
	Room      string
	SessionID string
}

// DropSession remove a sessão de todas as salas e fecha a caixa de saída.
// Disparada no disconnect (voluntário ou por timeout).
type DropSession struct {
	SessionID string
}

// PublishEvent entrega o evento a todas as sessões atualmente inscritas na
// sala, na ordem de publicação. Sem store-and-forward: quem estava offline
// não recebe retroativamente.
type PublishEvent struct {
	Room  string
	Event domain.Event
}

// PongSession responde o heartbeat de uma sessão. Passa pelo hub porque é
// ele o dono do ciclo de vida da caixa de saída.
type PongSession struct {
	SessionID string
}

// GetView expõe o estado interno sem data race (uso em testes).
type GetView struct {
	Reply chan View
}

type ShutdownHub struct{}

func (RegisterSession) isHubMsg() {}
func (JoinRoom) isHubMsg()        {}
func (LeaveRoom) isHubMsg()       {}
func (DropSession) isHubMsg()     {}
func (PongSession) isHubMsg()     {}
func (PublishEvent) isHubMsg()    {}
func (GetView) isHubMsg()         {}
func (ShutdownHub) isHubMsg()     {}

type View struct {
	NumSessions int
	RoomSizes   map[string]int
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]chan Envelope
	rooms    map[string]map[string]struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 256),
		sessions: make(map[string]chan Envelope),
		rooms:    make(map[string]map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Publish enfileira a publicação de um evento de domínio para uma sala.
// Conveniência para o coordenador; retorna imediatamente.
func (h *Hub) Publish(room string, ev domain.Event) {
	select {
	case h.inbox <- PublishEvent{Room: room, Event: ev}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case RegisterSession:
				h.sessions[msg.SessionID] = msg.Outbox

			case JoinRoom:
				if _, ok := h.sessions[msg.SessionID]; !ok {
					break
				}
				room := h.rooms[msg.Room]
				if room == nil {
					room = make(map[string]struct{})
					h.rooms[msg.Room] = room
				}
				room[msg.SessionID] = struct{}{}

			case LeaveRoom:
				if room := h.rooms[msg.Room]; room != nil {
					delete(room, msg.SessionID)
					if len(room) == 0 {
						delete(h.rooms, msg.Room)
					}
				}

			case DropSession:
				h.drop(msg.SessionID)

			case PongSession:
				if out := h.sessions[msg.SessionID]; out != nil {
					select {
					case out <- Envelope{Event: EventPong}:
					default:
					}
				}

			case PublishEvent:
				h.broadcast(msg.Room, NewEnvelope(msg.Event))

			case GetView:
				sizes := make(map[string]int, len(h.rooms))
				for name, room := range h.rooms {
					sizes[name] = len(room)
				}
				msg.Reply <- View{NumSessions: len(h.sessions), RoomSizes: sizes}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) broadcast(roomName string, env Envelope) {
	room := h.rooms[roomName]
	for sessionID := range room {
		out := h.sessions[sessionID]
		if out == nil {
			delete(room, sessionID)
			continue
		}
		select {
		case out <- env:
			// entregue
		default:
			// sessão lenta/cheia: descartar para não travar o broadcast
			h.drop(sessionID)
		}
	}
}

// drop libera todas as inscrições da sessão de uma vez e fecha a caixa de
// saída, sinalizando ao writer do websocket que não há mais eventos.
func (h *Hub) drop(sessionID string) {
	out, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	close(out)
	delete(h.sessions, sessionID)
	for name, room := range h.rooms {
		delete(room, sessionID)
		if len(room) == 0 {
			delete(h.rooms, name)
		}
	}
}

func (h *Hub) shutdown() {
	for id := range h.sessions {
		h.drop(id)
	}
	h.cancel()
}
