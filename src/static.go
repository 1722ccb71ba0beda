package game

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// StaticFileServer serves the viewer client from dir. Unknown paths fall
// back to index.html so the client-side router owns them. A missing dir is
// tolerated: headless deployments run the simulation without a viewer.
func StaticFileServer(dir string) http.Handler {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Static directory %s not found; viewer disabled.", dir)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}

	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(filepath.Join(dir, filepath.Clean(r.URL.Path))); err == nil {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}
