package api

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID returns a short time-prefixed identifier. The time component keeps
// generated names roughly sortable; the random suffix avoids collisions when
// several are generated within the same instant.
func NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return ts + "_" + hex.EncodeToString(buf[:])
}
