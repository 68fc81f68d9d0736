// Package ws serves graph operations over a WebSocket connection.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AFatNiBBa/config-fs/internal/infrastructure/logging"
	"github.com/AFatNiBBa/config-fs/internal/infrastructure/monitoring"
	"github.com/AFatNiBBa/config-fs/internal/service"
	"github.com/AFatNiBBa/config-fs/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one request over the socket. Type selects the tool within the
// graph service; ID is echoed back for client-side correlation.
type Message struct {
	ID     string                 `json:"id,omitempty"`
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params"`
}

// Reply is the response to one message.
type Reply struct {
	ID     string        `json:"id,omitempty"`
	Type   string        `json:"type"`
	Result *types.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Handler manages WebSocket connections.
type Handler struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *logging.Logger
	mu       *sync.Mutex
}

// NewHandler creates a WebSocket handler dispatching into the registry. The
// mutex is the graph lock shared with the HTTP surface; nil allocates a
// private one.
func NewHandler(registry *service.Registry, metrics *monitoring.Metrics, logger *logging.Logger, mu *sync.Mutex) *Handler {
	if logger == nil {
		logger = logging.NewDefault()
	}
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Handler{registry: registry, metrics: metrics, logger: logger, mu: mu}
}

// HandleConnection upgrades the request and serves messages until the peer
// goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.WSConnections.Inc()
	defer h.metrics.WSConnections.Dec()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.send(conn, Reply{Type: "error", Error: "malformed message"})
			continue
		}
		h.metrics.RecordWSMessage(msg.Type)
		h.send(conn, h.dispatch(c, msg))
	}
}

func (h *Handler) dispatch(c *gin.Context, msg Message) Reply {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.registry.Execute("graph."+msg.Type, msg.Params, &types.Context{
		Request:  c.Request,
		Response: c.Writer,
	})
	if err != nil {
		return Reply{ID: msg.ID, Type: msg.Type, Error: err.Error()}
	}
	return Reply{ID: msg.ID, Type: msg.Type, Result: res}
}

func (h *Handler) send(conn *websocket.Conn, reply Reply) {
	if err := conn.WriteJSON(reply); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
	}
}
