package domain

import (
	"strings"
	"time"
)

const (
	SubjectListingCreated = "listing.created"
	SubjectListingDeleted = "listing.deleted"
	SubjectAuthState      = "auth.state"
)

// AuthStateSubject is the auth.state subject of one client session. Sessions
// sharing a NATS server must not see each other's sign-ins.
func AuthStateSubject(scope string) string {
	scope = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(scope))
	if scope == "" {
		return SubjectAuthState
	}
	return SubjectAuthState + "." + scope
}

// ListingEvent is the payload published on the listing.* subjects.
type ListingEvent struct {
	ListingID    string    `json:"listing_id"`
	UID          string    `json:"uid"`
	Title        string    `json:"title,omitempty"`
	City         string    `json:"city,omitempty"`
	Price        float64   `json:"price,omitempty"`
	Images       int       `json:"images"`
	FailedImages []string  `json:"failed_images,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
