package drive

import (
	"fmt"
	"time"
)

// SortKey selects the ordering of an item listing.
type SortKey string

const (
	SortNameAsc    SortKey = "a-z"
	SortNameDesc   SortKey = "z-a"
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortLastOpened SortKey = "last-opened" // desc only
	SortLastEdited SortKey = "last-edited" // desc only
)

// DefaultSortKey is used when a listing names no sort
const DefaultSortKey = SortNameAsc

// Pagination bounds
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// ValidSortKeys lists accepted sort keys (for validation.In)
var ValidSortKeys = []interface{}{
	SortNameAsc, SortNameDesc, SortNewest, SortOldest, SortLastOpened, SortLastEdited,
}

// Page is an offset window over a listing.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ApplyDefaults clamps the page to sane bounds
func (p *Page) ApplyDefaults() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ItemPage is one page of a listing.
type ItemPage struct {
	Items      []Item `json:"items"`
	HasMore    bool   `json:"has_more"`
	NextOffset int    `json:"next_offset"`
}

// NewItemPage trims a limit+1 result set down to a page.
func NewItemPage(items []Item, page Page) *ItemPage {
	hasMore := len(items) > page.Limit
	if hasMore {
		items = items[:page.Limit]
	}
	if items == nil {
		items = []Item{}
	}
	return &ItemPage{
		Items:      items,
		HasMore:    hasMore,
		NextOffset: page.Offset + len(items),
	}
}

// ItemQuery is the single listing primitive the item store understands.
// Zero values mean "no constraint".
type ItemQuery struct {
	OwnerID string

	// ByParent restricts to direct children of ParentID (nil ParentID = root)
	ByParent bool
	ParentID *string

	Kind        ItemKind
	Deleted     *bool
	Starred     *bool
	NameLike    string // case-insensitive substring
	MimeType    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	Sort   SortKey
	Limit  int // 0 = unbounded
	Offset int
}

// SearchFilters are the user-facing search options.
type SearchFilters struct {
	Text        string     `json:"text"`
	MimeType    string     `json:"mime_type"`
	IsStarred   *bool      `json:"is_starred"`
	ParentID    *string    `json:"parent_id"`
	CreatedFrom *time.Time `json:"created_from"`
	CreatedTo   *time.Time `json:"created_to"`
}

// Validate checks the date window
func (f *SearchFilters) Validate() error {
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return fmt.Errorf("created_from must not be after created_to")
	}
	return nil
}

// Bool returns a pointer to b, for query flags.
func Bool(b bool) *bool {
	return &b
}
