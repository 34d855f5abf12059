package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloce-dev/plantao-manager/backend/internal/config"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
	serverrt "github.com/veloce-dev/plantao-manager/backend/internal/realtime"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func recvEvent(t *testing.T, c *Client) InboundEvent {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		require.True(t, ok, "canal de eventos fechado antes do esperado")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timeout esperando evento")
		return InboundEvent{}
	}
}

// sobe o servidor real (hub + handler) para o teste de ponta a ponta.
func newRealServer(t *testing.T) (*httptest.Server, *serverrt.Hub) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Realtime.HeartbeatTimeout = 20
	cfg.Realtime.WriteTimeout = 3
	cfg.Realtime.SessionBuffer = 16

	hub := serverrt.NewHub(context.Background())
	t.Cleanup(func() { hub.Inbox() <- serverrt.ShutdownHub{} })

	srv := httptest.NewServer(serverrt.Handler(cfg, hub))
	t.Cleanup(srv.Close)
	return srv, hub
}

func waitRoomSize(t *testing.T, hub *serverrt.Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		reply := make(chan serverrt.View, 1)
		hub.Inbox() <- serverrt.GetView{Reply: reply}
		if v := <-reply; v.RoomSizes[room] == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("sala %q não chegou a %d sessões", room, want)
}

func TestClientRecebeEventosDoServidor(t *testing.T) {
	srv, hub := newRealServer(t)

	c := Dial(context.Background(), wsURL(srv), Options{
		Rooms:      []string{domain.RoomPlantonistas},
		MinBackoff: 50 * time.Millisecond,
	})
	defer c.Close()

	waitRoomSize(t, hub, domain.RoomPlantonistas, 1)
	assert.Equal(t, StateConnected, c.State())

	hub.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: time.Now()})

	ev := recvEvent(t, c)
	assert.Equal(t, string(domain.EventRankingUpdated), ev.Kind)
	assert.False(t, ev.ReceivedAt.IsZero())
}

func TestClientReconectaEReinscreve(t *testing.T) {
	joins := make(chan string, 4)
	var conns int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		n := atomic.AddInt32(&conns, 1)
		ctx := r.Context()

		_ = wsjson.Write(ctx, conn, map[string]any{"event": "connected", "data": map[string]any{"session_id": "s"}})

		var msg struct {
			Event string `json:"event"`
			Data  struct {
				Room string `json:"room"`
			} `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		joins <- msg.Data.Room

		if n == 1 {
			// derruba a primeira conexão logo após o join
			conn.Close(websocket.StatusGoingAway, "derrubando")
			return
		}
		_ = wsjson.Write(ctx, conn, map[string]any{"event": "ranking_updated", "data": map[string]any{}})
		<-ctx.Done()
	}))
	defer srv.Close()

	c := Dial(context.Background(), wsURL(srv), Options{
		Rooms:      []string{domain.RoomPlantonistas},
		MinBackoff: 50 * time.Millisecond,
	})
	defer c.Close()

	recvJoin := func() string {
		select {
		case room := <-joins:
			return room
		case <-time.After(5 * time.Second):
			t.Fatal("timeout esperando join_room")
			return ""
		}
	}

	// um join por conexão: o cliente se reinscreveu sozinho após a queda
	assert.Equal(t, domain.RoomPlantonistas, recvJoin())
	assert.Equal(t, domain.RoomPlantonistas, recvJoin())

	ev := recvEvent(t, c)
	assert.Equal(t, "ranking_updated", ev.Kind)
}

func TestClientFiltraEventosDeTransporte(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		_ = wsjson.Write(ctx, conn, map[string]any{"event": "connected", "data": map[string]any{}})
		_ = wsjson.Write(ctx, conn, map[string]any{"event": "pong", "data": nil})
		_ = wsjson.Write(ctx, conn, map[string]any{"event": "plantao_updated", "data": map[string]any{}})
		<-ctx.Done()
	}))
	defer srv.Close()

	c := Dial(context.Background(), wsURL(srv), Options{MinBackoff: 50 * time.Millisecond})
	defer c.Close()

	ev := recvEvent(t, c)
	assert.Equal(t, "plantao_updated", ev.Kind)
}

func TestClientDescartaMaisAntigoComCanalCheio(t *testing.T) {
	c := &Client{events: make(chan InboundEvent, 2)}

	c.deliver(InboundEvent{Kind: "a"})
	c.deliver(InboundEvent{Kind: "b"})
	c.deliver(InboundEvent{Kind: "c"})

	assert.Equal(t, "b", (<-c.events).Kind)
	assert.Equal(t, "c", (<-c.events).Kind)
}

func TestClientCloseEncerraEventos(t *testing.T) {
	srv, hub := newRealServer(t)

	c := Dial(context.Background(), wsURL(srv), Options{
		Rooms:      []string{domain.RoomPlantonistas},
		MinBackoff: 50 * time.Millisecond,
	})
	waitRoomSize(t, hub, domain.RoomPlantonistas, 1)

	c.Close()
	assert.Equal(t, StateDisconnected, c.State())

	select {
	case _, ok := <-c.Events():
		assert.False(t, ok, "canal de eventos deveria fechar no Close")
	case <-time.After(5 * time.Second):
		t.Fatal("timeout esperando fechamento do canal")
	}
}
