package shell

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vesselhq/vessel/internal/capability"
	"github.com/vesselhq/vessel/internal/infrastructure/monitoring"
)

func (h *host) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":      "vessel",
		"identifier":   h.rt.Identifier(),
		"product_name": h.rt.App.ProductName,
		"version":      h.rt.App.Version,
		"endpoints": gin.H{
			"health":       "/health",
			"capabilities": "/capabilities",
			"invoke":       "/capability/invoke",
			"windows":      "/windows",
			"events":       "/events (WebSocket)",
			"metrics":      "/metrics",
		},
	})
}

func (h *host) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"windows":   h.windows.Stats().Open,
		"clients":   h.events.Clients(),
		"timestamp": time.Now().Unix(),
	})
}

func (h *host) handleListCapabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"capabilities": h.registry.List(),
	})
}

type invokeRequest struct {
	ToolID   string                 `json:"tool_id" binding:"required"`
	Params   map[string]interface{} `json:"params"`
	WindowID *string                `json:"window_id"`
}

func (h *host) handleInvoke(c *gin.Context) {
	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	capID, toolName, ok := strings.Cut(req.ToolID, ".")
	if !ok {
		toolName = req.ToolID
	}
	timer := monitoring.NewTimer(h.metrics, capID, toolName)

	appCtx := &capability.Context{
		AppID:    h.rt.Identifier(),
		WindowID: req.WindowID,
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		timer.Stop("error")
		h.logger.Warn("Capability invocation rejected",
			zap.String("tool_id", req.ToolID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if result.Success {
		timer.Stop("success")
	} else {
		timer.Stop("failure")
	}
	c.JSON(http.StatusOK, result)
}

func (h *host) handleListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.List(),
	})
}

func (h *host) handleFocusWindow(c *gin.Context) {
	id := c.Param("id")
	if !h.windows.Focus(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return
	}
	win, _ := h.windows.Get(id)
	c.JSON(http.StatusOK, gin.H{"window": win})
}

func (h *host) handleCloseWindow(c *gin.Context) {
	id := c.Param("id")
	if !h.windows.Close(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": id})
}

// handleAsset serves packaged application assets from the resolved assets
// directory. Paths are cleaned and confined to that directory.
func (h *host) handleAsset(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	if rel == "" {
		rel = "index.html"
	}

	path := filepath.Join(h.rt.AssetsDir, filepath.Clean("/"+rel))
	if !strings.HasPrefix(path, h.rt.AssetsDir) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset path"})
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}

	mtype, err := mimetype.DetectFile(path)
	if err == nil {
		// Extension wins for text assets: content sniffing cannot tell
		// CSS or JS apart from plain text.
		switch filepath.Ext(path) {
		case ".css":
			c.Header("Content-Type", "text/css; charset=utf-8")
		case ".js", ".mjs":
			c.Header("Content-Type", "text/javascript; charset=utf-8")
		default:
			c.Header("Content-Type", mtype.String())
		}
	}
	c.File(path)
}
