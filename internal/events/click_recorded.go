package events

import "time"

const ClickRecordedType = "click.recorded"

// ClickRecorded is published for every click the tracker accepts. IPHash is
// never the raw client address.
type ClickRecorded struct {
	EventID    string `json:"eventId"`
	Type       string `json:"type"`
	ClickID    string `json:"clickId"`
	LinkID     string `json:"linkId"`
	Slug       string `json:"slug"`
	IPHash     string `json:"ipHash"`
	UserAgent  string `json:"userAgent"`
	OccurredAt string `json:"occurredAt"`
}

func NewClickRecorded(eventID, clickID, linkID, slug, ipHash, userAgent string, occurredAt time.Time) ClickRecorded {
	return ClickRecorded{
		EventID:    eventID,
		Type:       ClickRecordedType,
		ClickID:    clickID,
		LinkID:     linkID,
		Slug:       slug,
		IPHash:     ipHash,
		UserAgent:  userAgent,
		OccurredAt: occurredAt.UTC().Format(time.RFC3339Nano),
	}
}
