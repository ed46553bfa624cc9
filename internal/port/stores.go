package port

import (
	"context"
	"errors"
	"time"

	"todoc/internal/domain"
)

// ErrNotFound is returned by store lookups that matched no row.
var ErrNotFound = errors.New("not found")

// RecordStore is the read-only query boundary over child profiles and
// diary records. This core never writes through it.
type RecordStore interface {
	// GetKid fetches a child profile by id.
	GetKid(ctx context.Context, kidID int64) (domain.Kid, error)

	// LatestRecord fetches the single most recent record of any type
	// for the child.
	LatestRecord(ctx context.Context, kidID int64) (domain.Record, error)

	// RecentRecords fetches up to limit records created at or after since,
	// newest first.
	RecentRecords(ctx context.Context, kidID int64, since time.Time, limit int) ([]domain.Record, error)
}

// CommunityStore is the read-only keyword-search boundary over
// category-tagged community posts.
type CommunityStore interface {
	// SearchPosts returns up to limit posts in the category whose title or
	// body matches the query (empty query matches all), newest first.
	SearchPosts(ctx context.Context, category domain.CommunityCategory, query string, limit int) ([]domain.Post, error)
}
