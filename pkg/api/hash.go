package api

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ContentHash returns a deterministic BLAKE3 hash of a document body.
// The tab manager compares this against the hash recorded at load/save time
// to decide whether a document is dirty, so undoing an edit by hand clears
// the flag without tracking an edit history.
func ContentHash(body string) string {
	h := blake3.New()
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}
