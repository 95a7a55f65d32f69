package tenant

import "strings"

// reservedSegments are first path segments that belong to the platform and
// must never be interpreted as store slugs, even when a store with that
// slug exists. Signup enforces the same set so the collision cannot be
// created in the first place.
var reservedSegments = map[string]struct{}{
	"static":      {},
	"signup":      {},
	"login":       {},
	"logout":      {},
	"admin":       {},
	"api":         {},
	"favicon.ico": {},
	"robots.txt":  {},
	"healthz":     {},
	"metrics":     {},
}

// IsReservedSegment reports whether a path segment is claimed by the
// platform.
func IsReservedSegment(segment string) bool {
	_, ok := reservedSegments[strings.ToLower(segment)]
	return ok
}

// assetPrefixes are paths that never need tenant context.
var assetPrefixes = []string{"/static", "/favicon.ico", "/robots.txt"}

// IsAssetPath reports whether resolution should be skipped entirely.
func IsAssetPath(path string) bool {
	for _, prefix := range assetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// FirstSegment returns the first path segment, or "" for the root path.
func FirstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
