package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hwstudio/product-catalog/internal/pkg/logger"
)

// NotFoundBody is the fixed body of every 404 response.
const NotFoundBody = "PAGE NOT FOUND..."

// contentTypes maps file extensions to response content types.
var contentTypes = map[string]string{
	"bmp":  "image/bmp",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"csv":  "text/csv",
	"xml":  "text/xml",
	"htm":  "text/html",
	"html": "text/html",
	"txt":  "text/plain",
	"text": "text/plain",
	"json": "application/json",
	"":     "text/plain",
}

// StaticHandler serves files from a configured root directory. Request
// paths map directly to files; "/" serves index.html.
type StaticHandler struct {
	root   string
	logger *logger.Logger
}

// NewStaticHandler creates a static file handler rooted at root.
func NewStaticHandler(root string, log *logger.Logger) *StaticHandler {
	return &StaticHandler{
		root:   root,
		logger: log,
	}
}

// Serve handles GET requests for any path under the root.
func (h *StaticHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")
	if rel == "" {
		rel = "index.html"
	}

	// Clean against the virtual root so ".." cannot escape the directory.
	path := filepath.Join(h.root, filepath.Clean("/"+rel))

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		h.notFound(w)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		h.logger.Error("Failed to read requested file", err)
		h.notFound(w)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(path))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *StaticHandler) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentTypes["text"])
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(NotFoundBody))
}

// contentTypeFor derives the content type from the file extension.
// Unknown extensions are served as plain text.
func contentTypeFor(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return contentTypes["text"]
}
