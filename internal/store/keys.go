// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/krasnovkir/go-sync-cache/models"
)

// The three logical record kinds share one flat key space, separated by
// single-character prefixes. Server-cache rows append the slash-joined node
// path with a trailing slash, so descendants of a node sort contiguously
// right after the node itself:
//
//	C:a/          node "a"
//	C:a/b/        node "a/b"
//	Q:12          tracked query 12
//	W:7           pending write 7
//
// Range bounds exploit byte order: ';' is the byte after ':', so
// ["C:", "C;") covers every server-cache row, and '0' is the byte after
// '/', so ["C:a/", "C:a0") covers exactly the subtree of "a" — sibling
// paths such as "a0" or "ab" sort at or past the upper bound. This layout
// is load-bearing: changing separator or sentinel silently breaks scans.
const (
	serverCachePrefix  = "C"
	trackedQueryPrefix = "Q"
	userWritePrefix    = "W"

	keySeparator   = ":"
	pathTerminator = "/"

	// prefixEnd is the byte right after keySeparator.
	prefixEnd = ";"
	// subtreeEnd is the byte right after pathTerminator.
	subtreeEnd = "0"
)

// serverCacheKey builds the row key for the server-cache node at path.
func serverCacheKey(path models.Path) string {
	return serverCachePrefix + keySeparator + path.String() + pathTerminator
}

// trackedQueryKey builds the row key for a tracked query.
func trackedQueryKey(id int64) string {
	return trackedQueryPrefix + keySeparator + strconv.FormatInt(id, 10)
}

// userWriteKey builds the row key for a pending user write.
func userWriteKey(id int64) string {
	return userWritePrefix + keySeparator + strconv.FormatInt(id, 10)
}

// prefixRange returns the scan bounds covering every row under a prefix.
func prefixRange(prefix string) (start, end string) {
	return prefix + keySeparator, prefix + prefixEnd
}

// subtreeRange returns the scan bounds covering the server-cache rows at
// and below path. The root subtree is the whole server-cache prefix, since
// every row key begins with a path segment sorting above the terminator.
func subtreeRange(path models.Path) (start, end string) {
	if path.IsRoot() {
		return prefixRange(serverCachePrefix)
	}
	joined := serverCachePrefix + keySeparator + path.String()
	return joined + pathTerminator, joined + subtreeEnd
}

// AllKeysRange returns scan bounds covering every row of every record
// kind. Used by diagnostic tooling to dump the raw key space.
func AllKeysRange() (start, end string) {
	return serverCachePrefix + keySeparator, userWritePrefix + prefixEnd
}

// pathFromCacheKey recovers the node path from a server-cache row key.
func pathFromCacheKey(key string) (models.Path, error) {
	suffix, ok := strings.CutPrefix(key, serverCachePrefix+keySeparator)
	if !ok || !strings.HasSuffix(suffix, pathTerminator) {
		return nil, fmt.Errorf("%w: malformed server-cache key %q", ErrDecodingRow, key)
	}
	return models.NewPath(suffix), nil
}

// idFromKey recovers the decimal id from a tracked-query or pending-write
// row key.
func idFromKey(key, prefix string) (int64, error) {
	suffix, ok := strings.CutPrefix(key, prefix+keySeparator)
	if !ok {
		return 0, fmt.Errorf("%w: malformed key %q", ErrDecodingRow, key)
	}
	id, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric id in key %q", ErrDecodingRow, key)
	}
	return id, nil
}
