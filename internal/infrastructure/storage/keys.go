package storage

import (
	"encoding/hex"
	"path"
	"strings"

	designerapp "github.com/fulluproar/backoffice/internal/application/designer"
	"github.com/h2non/filetype"
	"golang.org/x/crypto/blake2b"
)

// Asset key prefixes
const (
	PrefixUploads = designerapp.AssetPrefixUploads
	PrefixRemote  = designerapp.AssetPrefixRemote
	PrefixExports = designerapp.AssetPrefixExports
)

// AssetKey derives a content-addressed key: prefix/<blake2b-128 hex>.<ext>.
// Identical bytes always map to the same key.
func AssetKey(prefix string, data []byte) string {
	sum := blake2b.Sum256(data)
	name := hex.EncodeToString(sum[:16])
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		name += "." + kind.Extension
	}
	return path.Join(prefix, name)
}

// DetectContentType sniffs the MIME type of data
func DetectContentType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}

// validKey rejects empty keys and keys that escape the store root
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
