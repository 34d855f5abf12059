package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(context.Background())
	t.Cleanup(func() { h.Inbox() <- ShutdownHub{} })
	return h
}

func register(t *testing.T, h *Hub, id string, buffer int) chan Envelope {
	t.Helper()
	outbox := make(chan Envelope, buffer)
	h.Inbox() <- RegisterSession{SessionID: id, Outbox: outbox}
	return outbox
}

func join(h *Hub, room, id string) {
	h.Inbox() <- JoinRoom{Room: room, SessionID: id}
}

func recv(t *testing.T, outbox chan Envelope) Envelope {
	t.Helper()
	select {
	case env, ok := <-outbox:
		require.True(t, ok, "caixa de saída fechada antes do esperado")
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando envelope")
		return Envelope{}
	}
}

func expectNothing(t *testing.T, outbox chan Envelope) {
	t.Helper()
	select {
	case env := <-outbox:
		t.Fatalf("envelope inesperado: %+v", env)
	case <-time.After(100 * time.Millisecond):
	}
}

func view(t *testing.T, h *Hub) View {
	t.Helper()
	reply := make(chan View, 1)
	h.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando view do hub")
		return View{}
	}
}

func TestHubEntregaNaOrdemDePublicacao(t *testing.T) {
	h := newTestHub(t)
	outbox := register(t, h, "s1", 8)
	join(h, domain.RoomPlantonistas, "s1")
	require.Equal(t, 1, view(t, h).RoomSizes[domain.RoomPlantonistas])

	ts := time.Now()
	h.Publish(domain.RoomPlantonistas, domain.AlocacaoCreated{Timestamp: ts})
	h.Publish(domain.RoomPlantonistas, domain.PlantaoUpdated{Timestamp: ts})
	h.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: ts})

	assert.Equal(t, string(domain.EventAlocacaoCreated), recv(t, outbox).Event)
	assert.Equal(t, string(domain.EventPlantaoUpdated), recv(t, outbox).Event)
	assert.Equal(t, string(domain.EventRankingUpdated), recv(t, outbox).Event)
}

func TestHubIsolaSalas(t *testing.T) {
	h := newTestHub(t)
	dentro := register(t, h, "dentro", 8)
	fora := register(t, h, "fora", 8)
	join(h, domain.RoomPlantonistas, "dentro")
	join(h, "outra-sala", "fora")
	require.Equal(t, 1, view(t, h).RoomSizes[domain.RoomPlantonistas])

	h.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: time.Now()})

	assert.Equal(t, string(domain.EventRankingUpdated), recv(t, dentro).Event)
	expectNothing(t, fora)
}

func TestHubSemInscricaoNaoRecebe(t *testing.T) {
	h := newTestHub(t)
	outbox := register(t, h, "s1", 8)
	// registrada mas sem join: nada de broadcast

	h.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: time.Now()})
	expectNothing(t, outbox)
}

func TestHubDescartaSessaoLenta(t *testing.T) {
	h := newTestHub(t)
	lenta := register(t, h, "lenta", 1)
	rapida := register(t, h, "rapida", 8)
	join(h, domain.RoomPlantonistas, "lenta")
	join(h, domain.RoomPlantonistas, "rapida")
	require.Equal(t, 2, view(t, h).RoomSizes[domain.RoomPlantonistas])

	// a segunda publicação estoura o buffer de tamanho 1 da sessão lenta
	h.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: time.Now()})
	h.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: time.Now()})

	assert.Equal(t, string(domain.EventRankingUpdated), recv(t, rapida).Event)
	assert.Equal(t, string(domain.EventRankingUpdated), recv(t, rapida).Event)

	v := view(t, h)
	assert.Equal(t, 1, v.NumSessions)
	assert.Equal(t, 1, v.RoomSizes[domain.RoomPlantonistas])

	// a caixa da sessão lenta ainda tem o primeiro envelope e depois fecha
	recv(t, lenta)
	_, ok := <-lenta
	assert.False(t, ok, "caixa da sessão descartada deveria estar fechada")
}

func TestHubDropLiberaTodasAsInscricoes(t *testing.T) {
	h := newTestHub(t)
	outbox := register(t, h, "s1", 8)
	join(h, domain.RoomPlantonistas, "s1")
	join(h, "outra-sala", "s1")
	require.Equal(t, 2, len(view(t, h).RoomSizes))

	h.Inbox() <- DropSession{SessionID: "s1"}

	v := view(t, h)
	assert.Equal(t, 0, v.NumSessions)
	assert.Empty(t, v.RoomSizes)

	_, ok := <-outbox
	assert.False(t, ok)
}

func TestHubLeaveRoomMantemSessao(t *testing.T) {
	h := newTestHub(t)
	outbox := register(t, h, "s1", 8)
	join(h, domain.RoomPlantonistas, "s1")

	h.Inbox() <- LeaveRoom{Room: domain.RoomPlantonistas, SessionID: "s1"}

	v := view(t, h)
	assert.Equal(t, 1, v.NumSessions)
	assert.Empty(t, v.RoomSizes)

	h.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: time.Now()})
	expectNothing(t, outbox)
}

func TestHubJoinExigeSessaoRegistrada(t *testing.T) {
	h := newTestHub(t)
	join(h, domain.RoomPlantonistas, "fantasma")

	v := view(t, h)
	assert.Equal(t, 0, v.NumSessions)
	assert.Empty(t, v.RoomSizes)
}

func TestHubPongSomenteParaSessaoViva(t *testing.T) {
	h := newTestHub(t)
	outbox := register(t, h, "s1", 8)

	h.Inbox() <- PongSession{SessionID: "s1"}
	assert.Equal(t, EventPong, recv(t, outbox).Event)

	h.Inbox() <- DropSession{SessionID: "s1"}
	// pong para sessão já descartada é descartado em silêncio
	h.Inbox() <- PongSession{SessionID: "s1"}
	view(t, h)
}

func TestHubShutdownFechaTodasAsCaixas(t *testing.T) {
	h := NewHub(context.Background())
	a := register(t, h, "a", 8)
	b := register(t, h, "b", 8)

	h.Inbox() <- ShutdownHub{}

	for _, outbox := range []chan Envelope{a, b} {
		select {
		case _, ok := <-outbox:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout esperando fechamento da caixa")
		}
	}
}
