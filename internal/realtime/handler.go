package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/veloce-dev/plantao-manager/backend/internal/config"
)

// Handler é o endpoint do websocket. Cada conexão vira uma sessão no hub:
// um goroutine de escrita drena a caixa de saída e o loop de leitura trata
// join_room e o heartbeat. O prazo de leitura detecta conexões meio-abertas.
func Handler(cfg *config.Config, h *Hub) http.HandlerFunc {
	heartbeat := time.Duration(cfg.Realtime.HeartbeatTimeout) * time.Second
	writeTimeout := time.Duration(cfg.Realtime.WriteTimeout) * time.Second

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "tchau")

		sessionID := uuid.NewString()
		outbox := make(chan Envelope, cfg.Realtime.SessionBuffer)

		// o ack de handshake entra na caixa antes do registro, então é
		// sempre a primeira mensagem que o cliente recebe
		outbox <- Envelope{Event: EventConnected, Data: connectedData{SessionID: sessionID, Timestamp: time.Now()}}

		h.Inbox() <- RegisterSession{SessionID: sessionID, Outbox: outbox}
		defer func() { h.Inbox() <- DropSession{SessionID: sessionID} }()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range outbox {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = wsjson.Write(ctx, conn, env)
				cancel()
			}
			// o hub fechou a caixa (sessão descartada ou shutdown):
			// encerrar a conexão para destravar o loop de leitura
			_ = conn.Close(websocket.StatusGoingAway, "sessão encerrada")
		}()

		for {
			ctx, cancel := context.WithTimeout(r.Context(), heartbeat)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// timeout de heartbeat ou erro de transporte: derrubar e
				// deixar o cliente reconectar
				return
			}

			var msg inboundMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.Debug("mensagem inválida no websocket", "session", sessionID, "error", err)
				continue
			}

			switch msg.Event {
			case EventJoinRoom:
				var join joinRoomData
				if err := json.Unmarshal(msg.Data, &join); err != nil || join.Room == "" {
					continue
				}
				h.Inbox() <- JoinRoom{Room: join.Room, SessionID: sessionID}

			case EventPing:
				h.Inbox() <- PongSession{SessionID: sessionID}

			default:
				// eventos desconhecidos são ignorados (compatibilidade
				// com clientes mais novos)
			}
		}
	}
}
