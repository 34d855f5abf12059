package realtime

import (
	"sync"
	"time"
)

// maxHistory é quantas notificações ficam disponíveis para releitura.
const maxHistory = 5

// Notifier guarda a notificação ativa (o "banner") e um histórico curto,
// mais recente primeiro. O banner some sozinho depois de hideAfter, a menos
// que outra notificação o substitua antes.
type Notifier struct {
	mu        sync.Mutex
	history   []Notification
	active    *Notification
	hideAfter time.Duration
	hideTimer *time.Timer
	gen       uint64
}

// NewNotifier cria o notificador; hideAfter <= 0 usa 5s.
func NewNotifier(hideAfter time.Duration) *Notifier {
	if hideAfter <= 0 {
		hideAfter = 5 * time.Second
	}
	return &Notifier{hideAfter: hideAfter}
}

func (n *Notifier) Push(notif Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.history = append([]Notification{notif}, n.history...)
	if len(n.history) > maxHistory {
		n.history = n.history[:maxHistory]
	}

	n.active = &notif
	n.gen++
	gen := n.gen

	if n.hideTimer != nil {
		n.hideTimer.Stop()
	}
	n.hideTimer = time.AfterFunc(n.hideAfter, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// só esconde se nenhuma notificação mais nova chegou
		if n.gen == gen {
			n.active = nil
		}
	})
}

// Active é a notificação exibida no momento, ou nil.
func (n *Notifier) Active() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.active == nil {
		return nil
	}
	cp := *n.active
	return &cp
}

// History devolve uma cópia, mais recente primeiro.
func (n *Notifier) History() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.history))
	copy(out, n.history)
	return out
}

// Dismiss esconde o banner sem mexer no histórico.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = nil
	if n.hideTimer != nil {
		n.hideTimer.Stop()
	}
}
