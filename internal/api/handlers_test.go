package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imagepkg "github.com/youruser/storeassets/internal/image"
)

type stubLoader map[string]image.Image

func (s stubLoader) Load(ctx context.Context, source string) (*imagepkg.Raster, error) {
	if img, ok := s[source]; ok {
		return imagepkg.NewRaster(img), nil
	}
	return (&imagepkg.SourceLoader{QRSize: 128}).Load(ctx, source)
}

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, h)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newRouter(NewHandlers())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCompose(t *testing.T) {
	r := newRouter(NewHandlers())
	w := postJSON(t, r, "/api/compose", gin.H{
		"canvas": gin.H{"width": 440, "height": 280, "background": "#111827"},
		"layers": []gin.H{
			{"source": "qr:https://example.com", "fit": gin.H{"max_width": 300, "max_height": 200}},
			{"source": "/etc/passwd", "fit": gin.H{"height": 10}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("X-Compose-Warnings"), "/etc/passwd")

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 440, 280), img.Bounds())
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestComposeBadRequest(t *testing.T) {
	r := newRouter(NewHandlers())
	w := postJSON(t, r, "/api/compose", gin.H{
		"canvas": gin.H{"width": 440, "height": 280},
		"layers": []gin.H{{"source": "qr:x"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/compose", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComposeInvalidDimension(t *testing.T) {
	banner := image.NewRGBA(image.Rect(0, 0, 1000, 10))
	r := newRouter(&Handlers{Loader: stubLoader{"banner": banner}})
	w := postJSON(t, r, "/api/compose", gin.H{
		"canvas": gin.H{"width": 440, "height": 280},
		"layers": []gin.H{{"source": "banner", "fit": gin.H{"max_width": 5, "max_height": 100}}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func upload(t *testing.T, r http.Handler, img image.Image, sizes string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "shot.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, img))
	if sizes != "" {
		require.NoError(t, mw.WriteField("sizes", sizes))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inspect", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInspect(t *testing.T) {
	r := newRouter(NewHandlers())

	opaque := image.NewRGBA(image.Rect(0, 0, 640, 400))
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 0xff
	}
	w := upload(t, r, opaque, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"file":"shot.png","width":640,"height":400,"mode":"RGB","size_ok":true,"mode_ok":true,"ok":true}`, w.Body.String())

	alpha := image.NewNRGBA(image.Rect(0, 0, 440, 280))
	alpha.SetNRGBA(0, 0, color.NRGBA{A: 1})
	w = upload(t, r, alpha, "440x280")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"file":"shot.png","width":440,"height":280,"mode":"RGBA","size_ok":true,"mode_ok":false,"ok":false}`, w.Body.String())

	w = upload(t, r, opaque, "huge")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInspectMissingFile(t *testing.T) {
	r := newRouter(NewHandlers())
	req := httptest.NewRequest(http.MethodPost, "/api/inspect", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
