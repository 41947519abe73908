// Package storage holds binary assets referenced by tests: part audio,
// diagram and map images. Records store only the asset key; bytes live
// behind BlobStore.
package storage

import (
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}

// AssetKey builds a collision-free key for an uploaded test asset,
// keeping the original extension so Content-Type can be recovered.
func AssetKey(testID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "tests/" + testID + "/" + uuid.NewString() + ext
}

// ContentTypeForKey maps common asset extensions; everything else is
// served as an opaque blob.
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
