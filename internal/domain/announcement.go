package domain

import "context"

// Cache keys for the two announcement slots.
const (
	CacheKeyAnnouncement    = "RECENT ANNOUNCEMENTS"
	CacheKeyFeaturedSpeaker = "RECENT SPEAKER"
)

// Cache is a string key-value cache. Get returns "" and a nil error for a
// missing key.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AnnouncementService maintains the cached announcement and featured speaker.
type AnnouncementService interface {
	// RecomputeAnnouncement rebuilds the announcement from nearly sold out
	// conferences and returns it ("" when the slot was cleared).
	RecomputeAnnouncement(ctx context.Context) (string, error)
	SetFeaturedSpeaker(ctx context.Context, speaker string) error
	GetAnnouncement(ctx context.Context) (string, error)
	GetFeaturedSpeaker(ctx context.Context) (string, error)
}
