package drive

import "time"

// LinkDuration is the lifetime of a public link.
type LinkDuration string

const (
	LinkOneHour   LinkDuration = "1h"
	LinkOneDay    LinkDuration = "1d"
	LinkSevenDays LinkDuration = "7d"
	LinkNever     LinkDuration = "never"
)

// ValidLinkDurations lists accepted durations (for validation.In)
var ValidLinkDurations = []interface{}{LinkOneHour, LinkOneDay, LinkSevenDays, LinkNever}

// ExpiresAt computes the absolute expiry for a link created at now.
// Returns nil for unbounded links.
func (d LinkDuration) ExpiresAt(now time.Time) *time.Time {
	var ttl time.Duration
	switch d {
	case LinkOneHour:
		ttl = time.Hour
	case LinkOneDay:
		ttl = 24 * time.Hour
	case LinkSevenDays:
		ttl = 7 * 24 * time.Hour
	default:
		return nil
	}
	t := now.Add(ttl)
	return &t
}

// PublicLink grants anonymous read access to one item subtree.
type PublicLink struct {
	ID        string     `json:"id" db:"id"`
	ItemID    string     `json:"item_id" db:"item_id"`
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	Token     string     `json:"token" db:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"` // NULL = lifetime access
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the link is past its expiry at now
func (l *PublicLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// SharedListing is what an anonymous viewer sees for a token.
type SharedListing struct {
	Root    *Item  `json:"root"`
	Current *Item  `json:"current"`
	Items   []Item `json:"items"`
	HasMore bool   `json:"has_more"`
}
