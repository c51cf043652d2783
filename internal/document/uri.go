package document

import (
	"net/url"
	"strings"
)

// fileScheme is the only URI scheme that resolves to a local source path.
const fileScheme = "file"

// PathFromURI resolves a document URI to a local filesystem path. Returns
// false for non-file schemes and unparseable URIs.
func PathFromURI(uri string) (string, bool) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", false
	}

	if parsed.Scheme != fileScheme || parsed.Path == "" {
		return "", false
	}

	return parsed.Path, true
}

// URIFromPath builds a file URI for a local source path. Paths that already
// carry the file scheme pass through unchanged.
func URIFromPath(path string) string {
	if strings.HasPrefix(path, fileScheme+"://") {
		return path
	}

	return fileScheme + "://" + path
}
