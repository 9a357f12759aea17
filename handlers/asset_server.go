package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/camden-git/photocatalog/media"
)

const assetCacheDuration = 24 * time.Hour

// AssetServer serves stored preview files for one asset subdirectory through
// the media store: for the route /api/thumbnails/* a request for
// /api/thumbnails/abcd1234.jpg serves the preview saved for hash abcd1234.
// The store performs the path resolution and traversal checks.
//
// Previews are content-addressed, so long cache lifetimes are safe: the bytes
// behind a hash never change.
func AssetServer(store media.Store, subDir string) http.HandlerFunc {
	routePrefix := "/api/" + subDir + "/"
	log.Printf("Serving assets for '%s*' through the media store", routePrefix)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)
		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		file, info, err := store.Get(path.Join(subDir, relativePath))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.NotFound(w, r)
				return
			}
			log.Printf("Error opening asset %s: %v", relativePath, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer file.Close()

		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(assetCacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(assetCacheDuration).Format(http.TimeFormat))

		http.ServeContent(w, r, info.Name(), info.ModTime(), file)
	}
}
