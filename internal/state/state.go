// Package state persists editor state that outlives a run: the recent-files
// list and the last session's open tabs.
package state

import (
	"context"
	"errors"
	"strings"

	"github.com/markpad/markpad/pkg/api"
)

// MaxRecents caps the recently-opened list.
const MaxRecents = 10

// Store is the abstract persistence interface.
type Store interface {
	// AddRecent moves path to the front of the recents list, deduplicating
	// and trimming to MaxRecents.
	AddRecent(ctx context.Context, path string) error
	Recents(ctx context.Context) ([]api.RecentFile, error)
	RemoveRecent(ctx context.Context, path string) error

	// SaveSession replaces the stored session wholesale.
	SaveSession(ctx context.Context, s api.Session) error
	// LoadSession returns ErrNotFound when no session was ever saved.
	LoadSession(ctx context.Context) (api.Session, error)

	Close() error
}

var ErrNotFound = errors.New("not found")

// Open returns a Store based on a URL. "sqlite://path" opens or creates a
// SQLite file; "mem://" is an in-memory store for tests and --ephemeral runs.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(ctx, url)
	case url == "mem://" || url == "":
		return NewMemStore(), nil
	default:
		return nil, errors.New("state: unsupported store url: " + url)
	}
}
