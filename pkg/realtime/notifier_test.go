package realtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierHistoricoMaximoCincoMaisRecentePrimeiro(t *testing.T) {
	n := NewNotifier(time.Minute)

	for i := 1; i <= 7; i++ {
		n.Push(Notification{ID: fmt.Sprintf("n%d", i)})
	}

	h := n.History()
	require.Len(t, h, 5)
	assert.Equal(t, "n7", h[0].ID)
	assert.Equal(t, "n3", h[4].ID)
}

func TestNotifierBannerSomeSozinho(t *testing.T) {
	n := NewNotifier(50 * time.Millisecond)

	n.Push(Notification{ID: "n1"})
	require.NotNil(t, n.Active())

	assert.Eventually(t, func() bool { return n.Active() == nil },
		2*time.Second, 10*time.Millisecond)

	// o histórico sobrevive ao banner
	assert.Len(t, n.History(), 1)
}

func TestNotifierNovaNotificacaoSubstituiOBanner(t *testing.T) {
	n := NewNotifier(50 * time.Millisecond)

	n.Push(Notification{ID: "n1"})
	n.Push(Notification{ID: "n2"})

	active := n.Active()
	require.NotNil(t, active)
	assert.Equal(t, "n2", active.ID)

	// o timer de n1 não pode apagar n2 antes da hora
	assert.Eventually(t, func() bool { return n.Active() == nil },
		2*time.Second, 10*time.Millisecond)
}

func TestNotifierDismiss(t *testing.T) {
	n := NewNotifier(time.Minute)

	n.Push(Notification{ID: "n1"})
	n.Dismiss()

	assert.Nil(t, n.Active())
	assert.Len(t, n.History(), 1)
}

func TestNotifierAttach(t *testing.T) {
	src := newFakeSource()
	c := NewConsumer(src)
	n := NewNotifier(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	Attach(ctx, c, n)

	src.ch <- InboundEvent{Kind: "ranking_updated", ReceivedAt: time.Now()}

	assert.Eventually(t, func() bool {
		a := n.Active()
		return a != nil && a.Kind == "ranking_updated"
	}, 2*time.Second, 10*time.Millisecond)
}
