package api

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/youruser/storeassets/internal/compliance"
	"github.com/youruser/storeassets/internal/config"
	imagepkg "github.com/youruser/storeassets/internal/image"
	"github.com/youruser/storeassets/internal/job"
)

// Handlers serves composition and inspection requests. Request sources may
// be URLs or QR texts; the loader decides whether local files are allowed.
type Handlers struct {
	Loader    job.Loader
	Resampler string
}

// NewHandlers returns handlers that never read the server's filesystem.
func NewHandlers() *Handlers {
	return &Handlers{Loader: &imagepkg.SourceLoader{AllowLocal: false, QRSize: 512}}
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// compose renders a job given as JSON and returns the canvas as PNG.
// Skipped sources are listed in the X-Compose-Warnings header.
func (h *Handlers) compose(c *gin.Context) {
	var req config.JobConfig
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		req.Name = "request"
	}
	j, err := req.Job("", h.Resampler)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	canvas, res, err := job.Render(c.Request.Context(), j, h.Loader)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, imagepkg.ErrInvalidDimension) {
			status = http.StatusUnprocessableEntity
		}
		log.Println("compose error:", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, canvas.Image(), imaging.PNG); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(res.Warnings) > 0 {
		ws := make([]string, len(res.Warnings))
		for i, w := range res.Warnings {
			ws[i] = w.String()
		}
		c.Header("X-Compose-Warnings", strings.Join(ws, "; "))
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// inspect checks an uploaded image. The optional "sizes" form value
// overrides the screenshot allow-list, e.g. "1400x560,440x280".
func (h *Handlers) inspect(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	allowed := compliance.ScreenshotSizes
	if s := c.PostForm("sizes"); s != "" {
		allowed, err = compliance.ParseSizes(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	r, err := imagepkg.Decode(f)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	rep := compliance.Inspect(r, allowed)
	rep.Path = fh.Filename
	c.JSON(http.StatusOK, gin.H{
		"file":    rep.Path,
		"width":   rep.Size.X,
		"height":  rep.Size.Y,
		"mode":    rep.Mode,
		"size_ok": rep.SizeOK,
		"mode_ok": rep.ModeOK,
		"ok":      rep.OK(),
	})
}
