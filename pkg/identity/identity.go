// Package identity derives stable, content-addressed identifiers for
// documents and chunks. Identity is a pure function of the canonical URL (and
// chunk position), so re-ingesting unchanged content always reproduces the
// same ids and upserts overwrite instead of duplicating.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// DocumentID returns the hex digest of the canonical URL. The title is
// deliberately not part of identity: titles get re-derived and edited without
// the document moving.
func DocumentID(canonicalURL string) string {
	sum := md5.Sum([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}

// ChunkID combines a document id with the chunk's 0-based position. Stable
// across runs as long as the URL and position are unchanged.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
