package s3io

import (
	"path"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Extensions and content types of the two blob kinds.
const (
	ExtJSON     = ".json"
	ExtWorkbook = ".xlsx"

	ContentTypeJSON     = "application/json"
	ContentTypeWorkbook = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDefault  = "application/octet-stream"
)

// NewName returns a fresh, unique object name with the given extension.
func NewName(ext string) string {
	return ulid.Make().String() + ext
}

// ObjectKey joins a namespace and an object name: "<namespace>/<name>".
func ObjectKey(namespace, name string) string {
	return namespace + "/" + name
}

// Prefix returns the list prefix covering every object of a namespace.
func Prefix(namespace string) string {
	return namespace + "/"
}

// Namespace returns the first path segment of key.
func Namespace(key string) string {
	ns, _, _ := strings.Cut(key, "/")
	return ns
}

// IsJSON reports whether key names a raw invoice payload.
func IsJSON(key string) bool {
	return strings.EqualFold(path.Ext(key), ExtJSON)
}
