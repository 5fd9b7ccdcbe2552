package links

import "time"

type Link struct {
	ID          string
	Slug        string
	OriginalURL string
	TotalClicks int64
	CreatedAt   time.Time
}

type ClickLog struct {
	ID        string
	LinkID    string
	IPHash    string
	UserAgent string
	Timestamp time.Time
}

type CreateLinkInput struct {
	OriginalURL string
	CustomSlug  string
}

// CreatedLink is what the create flow hands back to callers.
type CreatedLink struct {
	Link     *Link
	ShortURL string
}

// RequestMetadata is the subset of an inbound redirect request that click
// tracking needs. It is copied out of the request so the tracker never holds
// on to the *http.Request after the response is written.
type RequestMetadata struct {
	UserAgent    string
	ForwardedFor string
	// SkipTracking resolves without recording a click, e.g. for HEAD
	// requests from link checkers and preview fetchers.
	SkipTracking bool
}

// Resolution is the outcome of a successful slug lookup. LinkID is empty when
// the URL was served from the cache.
type Resolution struct {
	URL       string
	LinkID    string
	FromCache bool
}
