package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// repo carries what every repository shares: the collection store, a clock
// and an id source. Tests replace the last two.
type repo struct {
	store *Store
	now   func() time.Time
	newID func() string
}

type RepoOption func(*repo)

// WithClock makes a repository read the current time from now.
func WithClock(now func() time.Time) RepoOption {
	return func(r *repo) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDs makes a repository draw new identifiers from next.
func WithIDs(next func() string) RepoOption {
	return func(r *repo) {
		if next != nil {
			r.newID = next
		}
	}
}

func newRepo(s *Store, opts []RepoOption) repo {
	r := repo{store: s, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r repo) stamp() Millis { return MillisOf(r.now()) }

// matches reports whether any field contains query, case-insensitively.
func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
