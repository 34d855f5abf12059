// Package realtime é o cliente Go do websocket de eventos: conecta, entra
// nas salas, mantém o heartbeat e reconecta sozinho com backoff. Consumido
// por ferramentas internas e pelos testes de ponta a ponta do servidor.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

var errUnexpectedHandshake = errors.New("handshake inesperado do servidor")

// State é o estado da conexão visto de fora.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// InboundEvent é um evento de domínio recebido do servidor. Eventos de
// transporte (connected, pong) nunca chegam aqui.
type InboundEvent struct {
	Kind       string
	Data       json.RawMessage
	ReceivedAt time.Time
}

type Options struct {
	// Rooms são reingressadas a cada (re)conexão.
	Rooms []string
	// HeartbeatInterval é o intervalo entre pings (padrão 10s); deve ser
	// menor que o ReadTimeout para a conexão não cair ociosa.
	HeartbeatInterval time.Duration
	ReadTimeout       time.Duration
	MinBackoff        time.Duration
	MaxBackoff        time.Duration
	// Buffer é o tamanho do canal de eventos; quando enche, o evento mais
	// antigo é descartado.
	Buffer int
}

func (o *Options) defaults() {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 10 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 20 * time.Second
	}
	if o.MinBackoff <= 0 {
		o.MinBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
	if o.Buffer <= 0 {
		o.Buffer = 64
	}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type joinRoomData struct {
	Room string `json:"room"`
}

type Client struct {
	url  string
	opts Options

	events chan InboundEvent

	mu    sync.Mutex
	state State

	cancel context.CancelFunc
	done   chan struct{}
}

// Dial inicia o cliente. A conexão acontece em segundo plano; eventos ficam
// disponíveis em Events() assim que houver conexão e inscrição.
func Dial(ctx context.Context, url string, opts Options) *Client {
	opts.defaults()
	ctx, cancel := context.WithCancel(ctx)
	c := &Client{
		url:    url,
		opts:   opts,
		events: make(chan InboundEvent, opts.Buffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.run(ctx)
	return c
}

func (c *Client) Events() <-chan InboundEvent { return c.events }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close encerra o cliente; Events() é fechado depois que a conexão corrente
// termina.
func (c *Client) Close() {
	c.cancel()
	<-c.done
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// run é o laço de reconexão: cada sessão que cai volta para cá, espera o
// backoff e tenta de novo até o contexto acabar.
func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.events)
	defer c.setState(StateDisconnected)

	backoff := c.opts.MinBackoff
	for {
		c.setState(StateConnecting)
		conectou, err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if conectou {
			// sessão chegou a conectar: a próxima queda recomeça do
			// backoff mínimo
			backoff = c.opts.MinBackoff
		}
		if err != nil {
			slog.Debug("sessão do websocket encerrada", "error", err)
		}

		c.setState(StateDisconnected)
		// jitter de até 25% para reconexões não chegarem em rajada
		espera := backoff + time.Duration(rand.Int63n(int64(backoff)/4+1))
		select {
		case <-time.After(espera):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > c.opts.MaxBackoff {
			backoff = c.opts.MaxBackoff
		}
	}
}

// session conduz uma conexão do dial até a queda. Retorna se o handshake
// chegou a completar.
func (c *Client) session(ctx context.Context) (bool, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ReadTimeout)
	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "tchau")

	// o servidor manda "connected" como primeira mensagem
	env, err := c.read(ctx, conn)
	if err != nil {
		return false, err
	}
	if env.Event != "connected" {
		return false, errUnexpectedHandshake
	}
	c.setState(StateConnected)

	for _, room := range c.opts.Rooms {
		if err := c.write(ctx, conn, outbound{Event: "join_room", Data: joinRoomData{Room: room}}); err != nil {
			return true, err
		}
	}

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go c.pinger(pingCtx, conn)

	for {
		env, err := c.read(ctx, conn)
		if err != nil {
			return true, err
		}
		switch env.Event {
		case "pong", "connected":
			// transporte; mantém a conexão viva, não vira evento
		default:
			c.deliver(InboundEvent{Kind: env.Event, Data: env.Data, ReceivedAt: time.Now()})
		}
	}
}

func (c *Client) pinger(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.write(ctx, conn, outbound{Event: "ping"}); err != nil {
				return
			}
		}
	}
}

func (c *Client) read(ctx context.Context, conn *websocket.Conn) (envelope, error) {
	readCtx, cancel := context.WithTimeout(ctx, c.opts.ReadTimeout)
	defer cancel()
	var env envelope
	if err := wsjson.Read(readCtx, conn, &env); err != nil {
		return envelope{}, err
	}
	return env, nil
}

func (c *Client) write(ctx context.Context, conn *websocket.Conn, msg outbound) error {
	writeCtx, cancel := context.WithTimeout(ctx, c.opts.ReadTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}

// deliver entrega sem bloquear: canal cheio descarta o evento mais antigo,
// porque o estado completo sempre pode ser re-consultado via REST.
func (c *Client) deliver(ev InboundEvent) {
	for {
		select {
		case c.events <- ev:
			return
		default:
			select {
			case <-c.events:
			default:
			}
		}
	}
}
