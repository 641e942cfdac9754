package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// CompressConfig tunes the brotli middleware.
type CompressConfig struct {
	Quality   int
	MinLength int
	// SkipPaths are route paths never compressed (e.g. /metrics, which
	// negotiates its own encoding).
	SkipPaths []string
}

var DefaultCompressConfig = CompressConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brWriter buffers the body until it knows whether the response is large
// enough to compress, then either streams through brotli or writes plain.
type brWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int
	buf       bytes.Buffer
	br        *brotli.Writer
	decided   bool
}

func (w *brWriter) Write(p []byte) (int, error) {
	if w.decided {
		if w.br != nil {
			return w.br.Write(p)
		}
		return w.ResponseWriter.Write(p)
	}

	w.buf.Write(p)
	if w.buf.Len() < w.minLength {
		return len(p), nil
	}

	w.decided = true
	if !compressible(w.Header().Get("Content-Type")) {
		_, err := w.ResponseWriter.Write(w.buf.Bytes())
		w.buf.Reset()
		return len(p), err
	}

	w.Header().Set("Content-Encoding", "br")
	w.Header().Del("Content-Length")
	w.br = brotli.NewWriterLevel(w.ResponseWriter, w.quality)
	_, err := w.br.Write(w.buf.Bytes())
	w.buf.Reset()
	return len(p), err
}

func (w *brWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush sends whatever is buffered uncompressed; streaming responses are
// never worth compressing here.
func (w *brWriter) Flush() {
	if !w.decided {
		w.decided = true
		if w.buf.Len() > 0 {
			_, _ = w.ResponseWriter.Write(w.buf.Bytes())
			w.buf.Reset()
		}
	}
	if w.br != nil {
		_ = w.br.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *brWriter) finish() error {
	if !w.decided {
		w.decided = true
		if w.buf.Len() == 0 {
			return nil
		}
		_, err := w.ResponseWriter.Write(w.buf.Bytes())
		w.buf.Reset()
		return err
	}
	if w.br != nil {
		return w.br.Close()
	}
	return nil
}

// Compress returns the brotli middleware with default settings.
func Compress(skipPaths ...string) gin.HandlerFunc {
	cfg := DefaultCompressConfig
	cfg.SkipPaths = skipPaths
	return CompressWithConfig(cfg)
}

func CompressWithConfig(cfg CompressConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultCompressConfig.MinLength
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok || isUpgrade(c) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		w := &brWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = w
		defer func() {
			if err := w.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

// isUpgrade reports WebSocket handshakes, which must reach the handler unwrapped.
func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func compressible(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "json") || strings.HasPrefix(ct, "text/")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc = strings.TrimSpace(strings.ToLower(enc))
		if i := strings.IndexByte(enc, ';'); i >= 0 {
			enc = strings.TrimSpace(enc[:i])
		}
		if enc == "br" {
			return true
		}
	}
	return false
}
