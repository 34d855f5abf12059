package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource alimenta o consumidor sem websocket.
type fakeSource struct {
	ch    chan InboundEvent
	state State
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan InboundEvent, 16), state: StateConnected}
}

func (f *fakeSource) Events() <-chan InboundEvent { return f.ch }
func (f *fakeSource) State() State                { return f.state }

func recvNotification(t *testing.T, c *Consumer) Notification {
	t.Helper()
	select {
	case n, ok := <-c.Notifications():
		require.True(t, ok, "canal de notificações fechado antes do esperado")
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando notificação")
		return Notification{}
	}
}

func TestConsumerTraduzEventosConhecidos(t *testing.T) {
	src := newFakeSource()
	c := NewConsumer(src)
	ts := time.Now()

	cases := []struct {
		kind string
		data string
		quer string
	}{
		{"plantao_updated", `{"plantao":{"data":"2025-04-12T00:00:00Z","turno":"manha"}}`, "Plantão de 12/04 (manhã) atualizado"},
		{"plantao_updated", `{}`, "Plantão atualizado"},
		{"alocacao_created", `{"alocacao":{}}`, "Novo plantonista alocado!"},
		{"ranking_updated", `{}`, "Ranking atualizado!"},
		{"evento_do_futuro", `{}`, "Nova atualização disponível"},
	}

	for _, tc := range cases {
		src.ch <- InboundEvent{Kind: tc.kind, Data: json.RawMessage(tc.data), ReceivedAt: ts}
		n := recvNotification(t, c)
		assert.Equal(t, tc.kind, n.Kind)
		assert.Equal(t, tc.quer, n.Message)
		assert.Equal(t, ts, n.Timestamp)
		assert.NotEmpty(t, n.ID)
	}
}

func TestConsumerPreservaOrdemEPayload(t *testing.T) {
	src := newFakeSource()
	c := NewConsumer(src)

	src.ch <- InboundEvent{Kind: "ranking_updated", Data: json.RawMessage(`{"n":1}`), ReceivedAt: time.Now()}
	src.ch <- InboundEvent{Kind: "ranking_updated", Data: json.RawMessage(`{"n":2}`), ReceivedAt: time.Now()}

	assert.JSONEq(t, `{"n":1}`, string(recvNotification(t, c).Payload))
	assert.JSONEq(t, `{"n":2}`, string(recvNotification(t, c).Payload))
}

func TestConsumerLast(t *testing.T) {
	src := newFakeSource()
	c := NewConsumer(src)

	assert.Nil(t, c.Last())

	src.ch <- InboundEvent{Kind: "ranking_updated", ReceivedAt: time.Now()}
	n := recvNotification(t, c)

	last := c.Last()
	require.NotNil(t, last)
	assert.Equal(t, n.ID, last.ID)
}

func TestConsumerEncerraComAFonte(t *testing.T) {
	src := newFakeSource()
	c := NewConsumer(src)

	close(src.ch)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando encerramento do consumidor")
	}
	_, ok := <-c.Notifications()
	assert.False(t, ok)
}

func TestConsumerConnected(t *testing.T) {
	src := newFakeSource()
	c := NewConsumer(src)

	assert.True(t, c.Connected())
	src.state = StateDisconnected
	assert.False(t, c.Connected())
}
