package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k1w1proplus/chat-backend/internal/ai"
	"github.com/k1w1proplus/chat-backend/internal/auth"
	"github.com/k1w1proplus/chat-backend/internal/projects"
)

// ActiveProjects resolves the caller's active project; satisfied by
// projects.Directory.
type ActiveProjects interface {
	Active(ctx context.Context, ownerID string) (*projects.Project, error)
}

type Handler struct {
	store  Store
	router *Router
	dir    ActiveProjects
}

func Register(rg *gin.RouterGroup, store Store, router *Router, dir ActiveProjects) {
	h := &Handler{store: store, router: router, dir: dir}

	rg.GET("/messages", h.list)
	rg.POST("/messages", h.send)
	rg.GET("/stream", h.stream)
}

func (h *Handler) activeProject(c *gin.Context) (string, bool) {
	ident := auth.CurrentUser(c)
	p, err := h.dir.Active(c.Request.Context(), ident.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return "", false
	}
	if p == nil {
		return "", true
	}
	return p.ID, true
}

// list returns the current snapshot for the caller's active project. With
// no active project the feed is forcibly empty.
func (h *Handler) list(c *gin.Context) {
	projectID, ok := h.activeProject(c)
	if !ok {
		return
	}
	if projectID == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "messages": []MessageView{}})
		return
	}

	ms, err := h.store.Query(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": ViewsOf(ms)})
}

type sendReq struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	projectID, ok := h.activeProject(c)
	if !ok {
		return
	}

	ident := auth.CurrentUser(c)
	sender := UserRef{UID: ident.UID, Email: ident.Email, DisplayName: ident.DisplayName}

	msg, err := h.router.Submit(c.Request.Context(), sender, projectID, req.Text, req.ImageURL)
	switch {
	case errors.Is(err, ErrNoActiveProject):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no active project selected"})
		return
	case errors.Is(err, ai.ErrMissingAPIKey):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "ai api key is not configured"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if msg == nil {
		// Empty text without an image is a no-op.
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": nil})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": ViewOf(*msg)})
}

// stream pushes the feed over Server-Sent Events. Each event carries the
// complete current snapshot; the client replaces prior state.
func (h *Handler) stream(c *gin.Context) {
	projectID, ok := h.activeProject(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	// Subscribe before committing to the SSE content type so a failure
	// still goes out as a plain JSON error.
	feed := NewFeed(h.store)
	defer feed.Close()

	if err := feed.SetProject(c.Request.Context(), projectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	writeSnapshot := func(views []MessageView) {
		c.SSEvent("snapshot", gin.H{"messages": views})
		flusher.Flush()
	}

	snapshot := feed.Snapshot()
	writeSnapshot(snapshot)
	last := fingerprint(snapshot)

	ctx := c.Request.Context()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	poll := time.NewTicker(1 * time.Second)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected; defer tears the subscription down.
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-poll.C:
			snapshot := feed.Snapshot()
			if fp := fingerprint(snapshot); fp != last {
				last = fp
				writeSnapshot(snapshot)
			}
		}
	}
}

// fingerprint cheaply identifies a snapshot; the newest message plus length
// is enough because messages are immutable and ordered.
func fingerprint(views []MessageView) string {
	if len(views) == 0 {
		return "0"
	}
	return fmt.Sprintf("%d:%s", len(views), views[0].ID)
}
