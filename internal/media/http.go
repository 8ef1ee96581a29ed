package media

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k1w1proplus/chat-backend/internal/auth"
	"github.com/k1w1proplus/chat-backend/internal/chat"
)

// 10 MiB, matching typical mobile camera output after compression.
const maxUploadBytes = 10 << 20

type Handler struct {
	uploader *Uploader
	router   *chat.Router
	dir      chat.ActiveProjects
}

func Register(rg *gin.RouterGroup, uploader *Uploader, router *chat.Router, dir chat.ActiveProjects) {
	h := &Handler{uploader: uploader, router: router, dir: dir}

	rg.POST("", h.upload)
}

// upload stores the image and immediately sends a message referencing the
// resulting URL, with empty text. The two steps are sequential with no
// transaction: a failed send leaves the object for the janitor.
func (h *Handler) upload(c *gin.Context) {
	ident := auth.CurrentUser(c)

	p, err := h.dir.Active(c.Request.Context(), ident.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no active project selected"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "image file required"})
		return
	}
	defer file.Close()

	blob, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "read upload: " + err.Error()})
		return
	}
	if len(blob) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "image too large"})
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), ident.UID, header.Header.Get("Content-Type"), blob)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	sender := chat.UserRef{UID: ident.UID, Email: ident.Email, DisplayName: ident.DisplayName}
	msg, err := h.router.Submit(c.Request.Context(), sender, p.ID, "", url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error(), "imageUrl": url})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "imageUrl": url, "message": chat.ViewOf(*msg)})
}
