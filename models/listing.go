package models

import (
	"time"

	"github.com/Skryldev/sharebnb/sqlbuild"
)

// Listing represents a row in the "listings" table. Photos is only filled by
// lookups that load them explicitly.
type Listing struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Zip         string  `json:"zip"`
	Genre       string  `json:"genre"`
	OwnerID     int64   `json:"ownerId"`
	Photos      []Photo `json:"photos,omitempty"`
}

// CreateListingParams holds the fields required to create a listing.
type CreateListingParams struct {
	Name        string
	Description string
	Price       int
	Street      string
	City        string
	State       string
	Zip         string
	Genre       string
	OwnerID     int64
}

// UpdateListingParams holds the updatable listing fields. Ownership cannot
// change through an update.
type UpdateListingParams struct {
	Name        *string
	Description *string
	Price       *int
	Street      *string
	City        *string
	State       *string
	Zip         *string
	Genre       *string
}

// Fields returns the set fields in declaration order. Listing field names
// are their column names, so no alias table is needed.
func (p UpdateListingParams) Fields() []sqlbuild.Field {
	fields := make([]sqlbuild.Field, 0, 8)
	add := func(name string, set bool, v func() any) {
		if set {
			fields = append(fields, sqlbuild.Field{Name: name, Value: v()})
		}
	}
	add("name", p.Name != nil, func() any { return *p.Name })
	add("description", p.Description != nil, func() any { return *p.Description })
	add("price", p.Price != nil, func() any { return *p.Price })
	add("street", p.Street != nil, func() any { return *p.Street })
	add("city", p.City != nil, func() any { return *p.City })
	add("state", p.State != nil, func() any { return *p.State })
	add("zip", p.Zip != nil, func() any { return *p.Zip })
	add("genre", p.Genre != nil, func() any { return *p.Genre })
	return fields
}

// ListingFilter narrows a listing search. Nil fields are not applied.
type ListingFilter struct {
	MinPrice *int
	MaxPrice *int
	Genre    *string
}

// Filters maps the search onto the price range and genre substring columns.
func (f ListingFilter) Filters() sqlbuild.Filters[int] {
	return sqlbuild.Filters[int]{
		RangeColumn: "price",
		Min:         f.MinPrice,
		Max:         f.MaxPrice,
		MatchColumn: "genre",
		Match:       f.Genre,
	}
}

// Photo represents a row in the "photos" table.
type Photo struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listingId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is a LIMIT/OFFSET window.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPageLimit and MaxPageLimit bound Page.Normalize.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Normalize clamps the window to sane values.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
