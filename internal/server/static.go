package server

import (
	"bytes"
	"compress/gzip"
	"embed"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed static
var staticFiles embed.FS

// asset is one precompiled static payload, kept in both plain and gzipped
// form so the response can match the client's Accept-Encoding.
type asset struct {
	contentType string
	plain       []byte
	gzipped     []byte
}

// assetSet maps request paths to embedded assets.
type assetSet struct {
	byPath map[string]asset
}

func newAssetSet() *assetSet {
	index := loadAsset("index.html", "text/html; charset=utf-8")
	return &assetSet{byPath: map[string]asset{
		"/":           index,
		"/index.html": index,
		"/style.css":  loadAsset("style.css", "text/css; charset=utf-8"),
		"/script.js":  loadAsset("script.js", "text/javascript; charset=utf-8"),
	}}
}

func loadAsset(name, contentType string) asset {
	plain, err := staticFiles.ReadFile("static/" + name)
	if err != nil {
		// Unreachable: the files are embedded at build time.
		panic("missing embedded asset: " + name)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(plain)
	_ = zw.Close()

	return asset{contentType: contentType, plain: plain, gzipped: buf.Bytes()}
}

func (a *assetSet) lookup(path string) (asset, bool) {
	found, ok := a.byPath[path]
	return found, ok
}

// serveAsset writes the asset, gzipped when the client accepts it.
func (rt *Router) serveAsset(w io.Writer, req *Request, a asset, logger *slog.Logger) {
	var err error
	if encoding, ok := req.Header("Accept-Encoding"); ok && strings.Contains(encoding, "gzip") {
		err = writeResponse(w, http.StatusOK, a.contentType, a.gzipped, "Content-Encoding: gzip")
	} else {
		err = writeResponse(w, http.StatusOK, a.contentType, a.plain)
	}
	if err != nil {
		logger.Debug("failed to write static asset", "path", req.Path, "error", err)
	}
}
