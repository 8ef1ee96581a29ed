package settings

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/k1w1proplus/chat-backend/internal/auth"
)

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.GET("/ai-key", h.aiKeyStatus)
	rg.PUT("/ai-key", h.saveAIKey)
	rg.DELETE("/ai-key", h.removeAIKey)
}

// aiKeyStatus reports whether a key is stored. The key itself is never
// echoed back.
func (h *Handler) aiKeyStatus(c *gin.Context) {
	ident := auth.CurrentUser(c)
	key, err := h.repo.Get(c.Request.Context(), ident.UID, KeyAIAPIKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "configured": key != ""})
}

type saveKeyReq struct {
	Key string `json:"key"`
}

func (h *Handler) saveAIKey(c *gin.Context) {
	var req saveKeyReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "key required"})
		return
	}

	ident := auth.CurrentUser(c)
	if err := h.repo.Set(c.Request.Context(), ident.UID, KeyAIAPIKey, strings.TrimSpace(req.Key)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) removeAIKey(c *gin.Context) {
	ident := auth.CurrentUser(c)
	if err := h.repo.Clear(c.Request.Context(), ident.UID, KeyAIAPIKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
