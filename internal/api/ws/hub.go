package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/logging"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/websearch"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
	maxMessage = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware owns origin policy
	},
}

// Querier runs queries for socket clients.
type Querier interface {
	Query(ctx context.Context, q websearch.Query) *websearch.ResultList
}

// Message is a frame exchanged with clients.
type Message struct {
	Type    string             `json:"type"`
	Q       string             `json:"q,omitempty"`
	QueryID string             `json:"query_id,omitempty"`
	Query   *websearch.Query   `json:"query,omitempty"`
	Results []websearch.Result `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte

	// Guarded by Hub.mu. While a socket query is running, updates are held
	// so the client sees its results frame before any update for it.
	querying bool
	held     [][]byte
}

// Hub fans result updates out to connected clients.
type Hub struct {
	querier  Querier
	remember func(*websearch.ResultList)
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	wg sync.WaitGroup
}

// NewHub creates a hub. remember, if set, is told about every list a
// socket query produces.
func NewHub(querier Querier, remember func(*websearch.ResultList), logger *zap.Logger, metrics *monitoring.Metrics) *Hub {
	return &Hub{
		querier:  querier,
		remember: remember,
		logger:   logging.OrNop(logger).Named("ws"),
		metrics:  metrics,
		clients:  make(map[*client]struct{}),
	}
}

// Publish broadcasts ev. It never blocks: clients whose buffer is full
// miss the update.
func (h *Hub) Publish(ev websearch.ResultsUpdatedEvent) {
	q := ev.Query
	data, err := sonic.Marshal(Message{
		Type:    "results_updated",
		QueryID: ev.QueryID.String(),
		Query:   &q,
		Results: ev.Results.Snapshot(),
	})
	if err != nil {
		h.logger.Error("Failed to encode update", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.querying {
			if len(c.held) < sendBuffer {
				c.held = append(c.held, data)
			} else {
				h.logger.Warn("Dropping held update for busy client")
			}
			continue
		}
		h.enqueue(c, data, "results_updated")
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[cl] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}

	go h.writePump(cl)
	go h.readPump(cl)
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *client, data []byte, msgType string) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
		if h.metrics != nil {
			h.metrics.RecordWSMessage("out", msgType)
		}
	default:
		h.logger.Warn("Dropping message for slow client", zap.String("type", msgType))
	}
}

// drop must be called with h.mu held.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func (h *Hub) reply(c *client, msg Message) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueue(c, data, msg.Type)
}

func (h *Hub) readPump(c *client) {
	defer h.wg.Done()
	defer func() {
		h.mu.Lock()
		h.drop(c)
		h.mu.Unlock()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.reply(c, Message{Type: "error", Error: "invalid message"})
			continue
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "query":
			h.handleQuery(c, msg)
		case "ping":
			h.reply(c, Message{Type: "pong"})
		default:
			h.reply(c, Message{Type: "error", Error: "unknown message type"})
		}
	}
}

func (h *Hub) handleQuery(c *client, msg Message) {
	if msg.Q == "" {
		h.reply(c, Message{Type: "error", Error: "q required"})
		return
	}
	q := websearch.ParseQuery(msg.Q)

	h.mu.Lock()
	c.querying = true
	h.mu.Unlock()

	list := h.querier.Query(context.Background(), q)
	if h.remember != nil {
		h.remember(list)
	}
	data, err := sonic.Marshal(Message{
		Type:    "results",
		QueryID: list.QueryID().String(),
		Query:   &q,
		Results: list.Snapshot(),
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Error("Failed to encode reply", zap.Error(err))
	} else {
		h.enqueue(c, data, "results")
	}
	for _, update := range c.held {
		h.enqueue(c, update, "results_updated")
	}
	c.querying = false
	c.held = nil
}

func (h *Hub) writePump(c *client) {
	defer h.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
