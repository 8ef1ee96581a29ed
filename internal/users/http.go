package users

import (
	"errors"
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

	rg.GET("/me", h.me)
	rg.PATCH("/me", h.updateDisplayName)
}

func (h *Handler) me(c *gin.Context) {
	ident := auth.CurrentUser(c)
	u, err := h.repo.GetByUID(c.Request.Context(), ident.UID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

type updateNameReq struct {
	DisplayName string `json:"displayName"`
}

func (h *Handler) updateDisplayName(c *gin.Context) {
	var req updateNameReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DisplayName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "display name required"})
		return
	}

	ident := auth.CurrentUser(c)
	err := h.repo.UpdateDisplayName(c.Request.Context(), ident.UID, req.DisplayName)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
