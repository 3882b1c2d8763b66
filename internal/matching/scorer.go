// Package matching computes deterministic compatibility scores between a
// seeker's housing request and a provider's listing. Scoring is pure: no I/O,
// no randomness, same inputs always produce the same 0–99 score.
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kostmatch/backend/internal/models"
)

// Component weights and thresholds. These numbers are product behavior, not
// style: changing them changes both ranking and what a provider pays.
const (
	locationExactPoints    = 30
	locationAdjacentPoints = 15

	budgetWithinPoints       = 35
	budgetUnspecifiedCheap   = 25
	budgetUnspecifiedDefault = 15
	cheapPriceCeiling        = 500_000
	overflowDecaySlope       = 2 // component hits 0 at 50% over budget

	roomTypeMatchPoints   = 20
	roomTypeNeutralPoints = 10

	amenityMatchPoints   = 2
	amenityCapPoints     = 10
	amenityNeutralPoints = 5

	verifiedBonusPoints = 3
	trustedBonusPoints  = 2
	trustedScoreFloor   = 60

	// MaxScore caps the reported score; the formula's natural range tops out
	// at 100, so 99 stays reserved.
	MaxScore = 99
)

// Score returns the compatibility score between a request and a listing,
// always in [0, MaxScore].
func Score(req *models.HousingRequest, l *models.Listing) int {
	sum := float64(locationComponent(req, l)) +
		budgetComponent(req, l) +
		float64(roomTypeComponent(req, l)) +
		float64(amenityComponent(req, l)) +
		float64(trustBonus(l))

	score := int(math.Round(sum))
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	return score
}

func locationComponent(req *models.HousingRequest, l *models.Listing) int {
	listingLoc := normalize(l.Location)
	if isWildcard(listingLoc) {
		return locationExactPoints
	}
	for _, raw := range req.Locations {
		loc := normalize(raw)
		if loc == "" {
			continue
		}
		if isWildcard(loc) {
			return locationExactPoints
		}
		if strings.Contains(listingLoc, loc) || strings.Contains(loc, listingLoc) {
			return locationExactPoints
		}
	}
	for _, raw := range req.Locations {
		if adjacentAreas(normalize(raw), listingLoc) {
			return locationAdjacentPoints
		}
	}
	return 0
}

// adjacentAreas checks the area→landmark table in both directions: the
// listing sits in an area whose landmark the request named, or the request
// named an area and the listing mentions one of its landmarks.
func adjacentAreas(reqLoc, listingLoc string) bool {
	if reqLoc == "" {
		return false
	}
	for area, landmarks := range landmarksByArea {
		inListing := textHasKeyword(listingLoc, area)
		inRequest := textHasKeyword(reqLoc, area)
		for _, lm := range landmarks {
			if inListing && textHasKeyword(reqLoc, lm) {
				return true
			}
			if inRequest && textHasKeyword(listingLoc, lm) {
				return true
			}
		}
	}
	return false
}

func budgetComponent(req *models.HousingRequest, l *models.Listing) float64 {
	price := l.CheapestUnitPrice()
	budget := req.Budget()
	if budget == 0 {
		if price < cheapPriceCeiling {
			return budgetUnspecifiedCheap
		}
		return budgetUnspecifiedDefault
	}
	if price <= budget {
		return budgetWithinPoints
	}
	overflow := float64(price-budget) / float64(budget)
	pts := budgetWithinPoints * (1 - overflowDecaySlope*overflow)
	if pts < 0 {
		return 0
	}
	return pts
}

func roomTypeComponent(req *models.HousingRequest, l *models.Listing) int {
	wanted := extractKeywords(req.Description, roomTypeKeywords)
	if len(wanted) == 0 {
		return roomTypeNeutralPoints
	}
	for _, u := range l.Units {
		name := normalize(u.Name)
		for _, kw := range wanted {
			if textHasKeyword(name, kw) {
				return roomTypeMatchPoints
			}
		}
	}
	return 0
}

func amenityComponent(req *models.HousingRequest, l *models.Listing) int {
	wanted := extractKeywords(req.Description, amenityKeywords)
	if len(wanted) == 0 {
		return amenityNeutralPoints
	}
	desc := normalize(l.Description)
	pts := 0
	for _, kw := range wanted {
		if listingHasAmenity(l, kw) || textHasKeyword(desc, kw) {
			pts += amenityMatchPoints
			if pts >= amenityCapPoints {
				return amenityCapPoints
			}
		}
	}
	return pts
}

func listingHasAmenity(l *models.Listing, kw string) bool {
	for _, u := range l.Units {
		for _, a := range u.Amenities {
			if textHasKeyword(normalize(a), kw) {
				return true
			}
		}
	}
	return false
}

func trustBonus(l *models.Listing) int {
	bonus := 0
	if l.OwnerVerified {
		bonus += verifiedBonusPoints
	}
	if l.OwnerTrustScore > trustedScoreFloor {
		bonus += trustedBonusPoints
	}
	return bonus
}

// ProviderScore is one ranked entry in a compatibility result.
type ProviderScore struct {
	AccountID uuid.UUID `json:"account_id"`
	Score     int       `json:"score"`
}

// RankProviders scores the request against every listing and reports one
// entry per provider: the maximum across that provider's listings (best-match
// semantics). Results are sorted by score descending; ties break on account
// id ascending so the ordering is reproducible.
func RankProviders(req *models.HousingRequest, listings []*models.Listing) []ProviderScore {
	best := make(map[uuid.UUID]int)
	for _, l := range listings {
		s := Score(req, l)
		if cur, ok := best[l.AccountID]; !ok || s > cur {
			best[l.AccountID] = s
		}
	}
	out := make([]ProviderScore, 0, len(best))
	for id, s := range best {
		out = append(out, ProviderScore{AccountID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AccountID.String() < out[j].AccountID.String()
	})
	return out
}
