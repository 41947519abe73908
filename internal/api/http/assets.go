package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prepdeck/prepdeck/internal/storage"
)

// MountAssets wires asset upload/download onto a router group. Uploads
// are keyed per test so deleting a test can reclaim its blobs later.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// POST /assets/{testID} with multipart field "file"
	r.Post("/{testID}", func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := storage.AssetKey(testID, hdr.Filename)
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"key": key,
			"url": "/assets/" + key,
		})
	})

	// GET /assets/*  -> the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", storage.ContentTypeForKey(key))
		_, _ = io.Copy(w, rc)
	})
}
