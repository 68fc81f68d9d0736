// Package http serves the virtual filesystem and the service registry over
// HTTP.
package http

import (
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AFatNiBBa/config-fs/internal/api/middleware"
	"github.com/AFatNiBBa/config-fs/internal/infrastructure/logging"
	"github.com/AFatNiBBa/config-fs/internal/infrastructure/monitoring"
	"github.com/AFatNiBBa/config-fs/internal/providers/graph"
	"github.com/AFatNiBBa/config-fs/internal/service"
	"github.com/AFatNiBBa/config-fs/internal/shared/types"
	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

// Handlers exposes the graph over the /fs surface and the registry over
// /services.
type Handlers struct {
	provider *graph.Provider
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *logging.Logger

	// The engine performs no internal locking; the surfaces serialize
	// every graph-touching request through this shared lock.
	mu *sync.Mutex
}

// NewHandlers creates the HTTP handlers. The mutex is shared with every
// other surface touching the same root; nil allocates a private one.
func NewHandlers(provider *graph.Provider, registry *service.Registry, metrics *monitoring.Metrics, logger *logging.Logger, mu *sync.Mutex) *Handlers {
	if logger == nil {
		logger = logging.NewDefault()
	}
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Handlers{
		provider: provider,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		mu:       mu,
	}
}

// Register wires the routes onto the router.
func (h *Handlers) Register(r *gin.Engine) {
	fs := r.Group("/fs")
	{
		fs.GET("/*path", h.Read)
		fs.PUT("/*path", h.Write)
		fs.POST("/*path", h.Append)
		fs.DELETE("/*path", h.Delete)
	}
	r.POST("/graph/save", h.Save)
	r.GET("/graph/info", h.Info)
	r.GET("/services", h.ListServices)
	r.POST("/services/execute", h.ExecuteService)
	r.GET("/health", h.Health)
}

// node resolves the request path against the graph with the advisory
// request context attached. Callers must hold the lock.
func (h *Handlers) node(c *gin.Context) (*vfs.Node, error) {
	root := h.provider.Root()
	root.SetContext(c.Request, c.Writer)
	return root.URLGet(c.Param("path"))
}

// Read renders the node a path resolves to; ?list=true lists it instead.
func (h *Handlers) Read(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.Query("list") == "true" {
		h.list(c)
		return
	}

	timer := monitoring.NewTimer(h.metrics, string(vfs.OpRead))
	n, err := h.node(c)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := n.Read()
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if v == nil {
		timer.Stop("missing")
		c.Status(http.StatusNotFound)
		return
	}
	timer.Stop("ok")

	body := vfs.Bytes(v)
	contentType := mimetype.Detect(body).String()
	c.Data(http.StatusOK, contentType, body)
}

func (h *Handlers) list(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, string(vfs.OpList))
	n, err := h.node(c)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := n.List()
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	list, ok := v.(*vfs.List)
	if !ok {
		timer.Stop("missing")
		c.JSON(http.StatusOK, gin.H{"listable": false})
		return
	}
	timer.Stop("ok")
	keys := make([]string, len(list.Items))
	for i, item := range list.Items {
		keys[i] = string(vfs.Bytes(item))
	}
	c.JSON(http.StatusOK, gin.H{"listable": true, "keys": keys})
}

// Write overwrites the node a path resolves to with the request body.
func (h *Handlers) Write(c *gin.Context) {
	h.mutate(c, vfs.OpWrite)
}

// Append appends the request body after the node's current content.
func (h *Handlers) Append(c *gin.Context) {
	h.mutate(c, vfs.OpAppend)
}

func (h *Handlers) mutate(c *gin.Context, op vfs.Op) {
	h.mu.Lock()
	defer h.mu.Unlock()

	timer := monitoring.NewTimer(h.metrics, string(op))
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	n, err := h.node(c)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if op == vfs.OpAppend {
		err = n.Append(vfs.Binary(body))
	} else {
		err = n.Write(vfs.Binary(body))
	}
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	timer.Stop("ok")
	h.logger.Debug("graph mutated over http",
		zap.String("op", string(op)),
		zap.String("path", c.Param("path")),
		zap.String("request_id", middleware.GetRequestID(c)))
	c.JSON(http.StatusOK, gin.H{"written": len(body)})
}

// Delete removes the entry a path resolves to. Query parameters delete_real
// and ignore_path mirror the engine's flags.
func (h *Handlers) Delete(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	timer := monitoring.NewTimer(h.metrics, string(vfs.OpDelete))
	n, err := h.node(c)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deleteReal := boolQuery(c, "delete_real", true)
	ignorePath := boolQuery(c, "ignore_path", false)
	removed, err := n.Delete(deleteReal, ignorePath)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Save persists the graph to its origin.
func (h *Handlers) Save(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.provider.Execute("graph.save", map[string]interface{}{}, h.toolContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !res.Success {
		c.JSON(http.StatusConflict, res)
		return
	}
	h.metrics.SavesTotal.Inc()
	c.JSON(http.StatusOK, res)
}

// Info reports diagnostics: the last requested path and the origin.
func (h *Handlers) Info(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	root := h.provider.Root()
	info := gin.H{"last_path": root.LastPath().Strings()}
	if o := root.Origin(); o != nil {
		info["origin"] = o.Location
		info["context_dir"] = o.Dir
	}
	c.JSON(http.StatusOK, info)
}

// ListServices returns the registered service definitions.
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		category = &cat
	}
	c.JSON(http.StatusOK, gin.H{"services": h.registry.List(category)})
}

// ExecuteRequest is the body of a service execution call.
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
}

// ExecuteService dispatches a tool call through the registry.
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.registry.Execute(req.ToolID, req.Params, h.toolContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) toolContext(c *gin.Context) *types.Context {
	return &types.Context{
		RequestID: middleware.GetRequestID(c),
		Request:   c.Request,
		Response:  c.Writer,
	}
}

func boolQuery(c *gin.Context, name string, def bool) bool {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}
