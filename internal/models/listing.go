package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a single rentable room type inside a listing.
type Unit struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	Name      string    `json:"name"` // room type, e.g. "single ensuite"
	Price     int       `json:"price"`
	Amenities []string  `json:"amenities"`
}

// Listing is a provider's offering. OwnerVerified and OwnerTrustScore are
// denormalized from the owning account when the listing is loaded; the scorer
// reads them for the trust bonus.
type Listing struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"account_id"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	Units           []Unit    `json:"units"`
	OwnerVerified   bool      `json:"owner_verified"`
	OwnerTrustScore int       `json:"owner_trust_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// CheapestUnitPrice is the listing's reference price: the lowest unit price,
// or 0 when the listing has no units yet.
func (l *Listing) CheapestUnitPrice() int {
	price := 0
	for _, u := range l.Units {
		if price == 0 || u.Price < price {
			price = u.Price
		}
	}
	return price
}
