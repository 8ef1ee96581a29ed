package projects

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/k1w1proplus/chat-backend/internal/auth"
)

type Handler struct {
	dir *Directory
}

func Register(rg *gin.RouterGroup, dir *Directory) {
	h := &Handler{dir: dir}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/active", h.active)
	rg.POST("/:id/select", h.selectProject)
	rg.DELETE("/active", h.clearActive)
}

type createReq struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ident := auth.CurrentUser(c)
	p, err := h.dir.Create(c.Request.Context(), ident.UID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	ident := auth.CurrentUser(c)
	items, err := h.dir.List(c.Request.Context(), ident.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) active(c *gin.Context) {
	ident := auth.CurrentUser(c)
	p, err := h.dir.Active(c.Request.Context(), ident.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) selectProject(c *gin.Context) {
	ident := auth.CurrentUser(c)
	p, err := h.dir.Select(c.Request.Context(), ident.UID, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) clearActive(c *gin.Context) {
	ident := auth.CurrentUser(c)
	if err := h.dir.Clear(c.Request.Context(), ident.UID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
