package matching

import (
	"testing"

	"github.com/google/uuid"

	"github.com/kostmatch/backend/internal/models"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func makeListing(account uuid.UUID, location string, price int) *models.Listing {
	return &models.Listing{
		ID:        uuid.New(),
		AccountID: account,
		Location:  location,
		Units: []models.Unit{
			{ID: uuid.New(), Name: "standard room", Price: price},
		},
		OwnerTrustScore: 40,
	}
}

func makeRequest(locations []string, minBudget, maxBudget int, description string) *models.HousingRequest {
	return &models.HousingRequest{
		ID:          uuid.New(),
		AccountID:   uuid.New(),
		Locations:   locations,
		MinBudget:   minBudget,
		MaxBudget:   maxBudget,
		Description: description,
	}
}

// ---------------------------------------------------------------------------
// 1. Reference scenarios
// ---------------------------------------------------------------------------

// Budget within range, exact location, neutral room type and amenities,
// unverified owner: 30 + 35 + 10 + 5 + 0 = 80.
func TestScoreScenarioWithinBudget(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 100_000, 250_000, "dekat kampus, lingkungan aman")
	l := makeListing(uuid.New(), "Tembalang", 200_000)

	if got := Score(req, l); got != 80 {
		t.Errorf("score = %d, want 80", got)
	}
}

// Same scenario but price 300000 against budget 250000: overflow ratio 0.2,
// budget component 35 × (1 − 0.4) = 21, total 66.
func TestScoreScenarioBudgetOverflow(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 100_000, 250_000, "dekat kampus, lingkungan aman")
	l := makeListing(uuid.New(), "Tembalang", 300_000)

	if got := Score(req, l); got != 66 {
		t.Errorf("score = %d, want 66", got)
	}
}

// Overflow of 50% or more drives the budget component to exactly 0.
func TestScoreBudgetDecayFloor(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 0, 200_000, "dekat kampus")
	l := makeListing(uuid.New(), "Tembalang", 320_000) // 60% over budget

	// 30 + 0 + 10 + 5 + 0 = 45
	if got := Score(req, l); got != 45 {
		t.Errorf("score = %d, want 45", got)
	}
}

// ---------------------------------------------------------------------------
// 2. Location component
// ---------------------------------------------------------------------------

func TestLocationWildcard(t *testing.T) {
	req := makeRequest([]string{"anywhere"}, 0, 250_000, "")
	l := makeListing(uuid.New(), "Sekaran", 200_000)
	if got := locationComponent(req, l); got != locationExactPoints {
		t.Errorf("wildcard request location = %d, want %d", got, locationExactPoints)
	}

	req = makeRequest([]string{"Jebres"}, 0, 250_000, "")
	l = makeListing(uuid.New(), "Any Location", 200_000)
	if got := locationComponent(req, l); got != locationExactPoints {
		t.Errorf("wildcard listing location = %d, want %d", got, locationExactPoints)
	}
}

func TestLocationLandmarkAdjacency(t *testing.T) {
	// Request names a landmark; the listing sits in the landmark's area.
	req := makeRequest([]string{"near UNDIP"}, 0, 250_000, "")
	l := makeListing(uuid.New(), "Tembalang", 200_000)
	if got := locationComponent(req, l); got != locationAdjacentPoints {
		t.Errorf("landmark → area = %d, want %d", got, locationAdjacentPoints)
	}

	// Reverse direction: request names the area, listing mentions the landmark.
	req = makeRequest([]string{"Jatinangor"}, 0, 250_000, "")
	l = makeListing(uuid.New(), "5 minutes from UNPAD gate", 200_000)
	if got := locationComponent(req, l); got != locationAdjacentPoints {
		t.Errorf("area → landmark = %d, want %d", got, locationAdjacentPoints)
	}

	// Unrelated locations score 0.
	req = makeRequest([]string{"Depok"}, 0, 250_000, "")
	l = makeListing(uuid.New(), "Sekaran", 200_000)
	if got := locationComponent(req, l); got != 0 {
		t.Errorf("unrelated locations = %d, want 0", got)
	}
}

func TestLocationLandmarkWordBoundaries(t *testing.T) {
	// "ui" embedded in an unrelated word must not count as the landmark.
	l := makeListing(uuid.New(), "Depok", 200_000)
	for _, loc := range []string{"quiet street", "near the main building"} {
		req := makeRequest([]string{loc}, 0, 250_000, "")
		if got := locationComponent(req, l); got != 0 {
			t.Errorf("location %q vs depok = %d, want 0", loc, got)
		}
	}

	// The landmark as its own word still scores adjacency.
	req := makeRequest([]string{"dekat UI"}, 0, 250_000, "")
	if got := locationComponent(req, l); got != locationAdjacentPoints {
		t.Errorf("whole-word landmark = %d, want %d", got, locationAdjacentPoints)
	}
}

// ---------------------------------------------------------------------------
// 3. Budget component
// ---------------------------------------------------------------------------

func TestBudgetUnspecified(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 0, 0, "")
	cheap := makeListing(uuid.New(), "Tembalang", 400_000)
	if got := budgetComponent(req, cheap); got != budgetUnspecifiedCheap {
		t.Errorf("unspecified budget vs cheap listing = %v, want %d", got, budgetUnspecifiedCheap)
	}
	pricey := makeListing(uuid.New(), "Tembalang", 900_000)
	if got := budgetComponent(req, pricey); got != budgetUnspecifiedDefault {
		t.Errorf("unspecified budget vs pricey listing = %v, want %d", got, budgetUnspecifiedDefault)
	}
}

func TestBudgetUsesCheapestUnit(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 0, 500_000, "")
	l := makeListing(uuid.New(), "Tembalang", 800_000)
	l.Units = append(l.Units, models.Unit{ID: uuid.New(), Name: "small single", Price: 450_000})
	if got := budgetComponent(req, l); got != budgetWithinPoints {
		t.Errorf("cheapest unit within budget = %v, want %d", got, budgetWithinPoints)
	}
}

func TestBudgetMinFallback(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 300_000, 0, "")
	l := makeListing(uuid.New(), "Tembalang", 280_000)
	if got := budgetComponent(req, l); got != budgetWithinPoints {
		t.Errorf("min-budget fallback = %v, want %d", got, budgetWithinPoints)
	}
}

// ---------------------------------------------------------------------------
// 4. Room type and amenities
// ---------------------------------------------------------------------------

func TestRoomTypeMatching(t *testing.T) {
	l := makeListing(uuid.New(), "Tembalang", 200_000)
	l.Units[0].Name = "single ensuite"

	match := makeRequest(nil, 0, 0, "looking for a single room")
	if got := roomTypeComponent(match, l); got != roomTypeMatchPoints {
		t.Errorf("room type match = %d, want %d", got, roomTypeMatchPoints)
	}

	miss := makeRequest(nil, 0, 0, "need a studio unit")
	if got := roomTypeComponent(miss, l); got != 0 {
		t.Errorf("room type miss = %d, want 0", got)
	}

	neutral := makeRequest(nil, 0, 0, "anything near campus works")
	if got := roomTypeComponent(neutral, l); got != roomTypeNeutralPoints {
		t.Errorf("room type neutral = %d, want %d", got, roomTypeNeutralPoints)
	}
}

func TestAmenityCounting(t *testing.T) {
	l := makeListing(uuid.New(), "Tembalang", 200_000)
	l.Units[0].Amenities = []string{"fast wifi", "AC", "covered parking"}
	l.Description = "laundry service on site"

	req := makeRequest(nil, 0, 0, "must have wifi, ac, parking and laundry")
	// Four matches at 2 points each.
	if got := amenityComponent(req, l); got != 8 {
		t.Errorf("amenity component = %d, want 8", got)
	}

	// Six wishes with six matches cap at 10.
	l.Units[0].Amenities = append(l.Units[0].Amenities, "shared kitchen", "balcony")
	capped := makeRequest(nil, 0, 0, "wifi ac parking laundry kitchen balcony please")
	if got := amenityComponent(capped, l); got != amenityCapPoints {
		t.Errorf("amenity cap = %d, want %d", got, amenityCapPoints)
	}

	neutral := makeRequest(nil, 0, 0, "no particular wishes")
	if got := amenityComponent(neutral, l); got != amenityNeutralPoints {
		t.Errorf("amenity neutral = %d, want %d", got, amenityNeutralPoints)
	}
}

// Short keywords must not match inside longer words ("ac" in "space").
func TestKeywordWordBoundaries(t *testing.T) {
	req := makeRequest(nil, 0, 0, "a spacious place with plenty of space")
	if kws := extractKeywords(req.Description, amenityKeywords); len(kws) != 0 {
		t.Errorf("extracted %v from text without amenity keywords", kws)
	}
}

// ---------------------------------------------------------------------------
// 5. Trust bonus
// ---------------------------------------------------------------------------

func TestTrustBonus(t *testing.T) {
	l := makeListing(uuid.New(), "Tembalang", 200_000)

	l.OwnerVerified = false
	l.OwnerTrustScore = 40
	if got := trustBonus(l); got != 0 {
		t.Errorf("unverified low trust = %d, want 0", got)
	}

	l.OwnerVerified = true
	if got := trustBonus(l); got != verifiedBonusPoints {
		t.Errorf("verified = %d, want %d", got, verifiedBonusPoints)
	}

	l.OwnerTrustScore = 75
	if got := trustBonus(l); got != verifiedBonusPoints+trustedBonusPoints {
		t.Errorf("verified + trusted = %d, want %d", got, verifiedBonusPoints+trustedBonusPoints)
	}
}

// ---------------------------------------------------------------------------
// 6. Bounds and ranking
// ---------------------------------------------------------------------------

// A maximal listing hits every component; the natural sum is 100 and must be
// capped at 99. A worst-case listing must not go below 0.
func TestScoreBounds(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 0, 500_000, "single room with wifi ac parking laundry kitchen")
	perfect := &models.Listing{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Location:  "Tembalang",
		Units: []models.Unit{{
			ID:        uuid.New(),
			Name:      "single deluxe",
			Price:     450_000,
			Amenities: []string{"wifi", "ac", "parking", "laundry", "kitchen"},
		}},
		OwnerVerified:   true,
		OwnerTrustScore: 90,
	}
	if got := Score(req, perfect); got != MaxScore {
		t.Errorf("maximal listing = %d, want %d", got, MaxScore)
	}

	hopeless := makeListing(uuid.New(), "Sekaran", 5_000_000)
	if got := Score(req, hopeless); got < 0 || got > MaxScore {
		t.Errorf("score %d out of [0,%d]", got, MaxScore)
	}

	// Sweep a grid of prices and budgets; the score must stay in range.
	for _, price := range []int{0, 100_000, 499_999, 500_000, 1_000_000, 10_000_000} {
		for _, budget := range []int{0, 50_000, 250_000, 700_000} {
			r := makeRequest([]string{"Depok"}, 0, budget, "")
			l := makeListing(uuid.New(), "Depok", price)
			if got := Score(r, l); got < 0 || got > MaxScore {
				t.Errorf("Score(budget=%d, price=%d) = %d out of [0,%d]", budget, price, got, MaxScore)
			}
		}
	}
}

func TestRankProvidersBestMatch(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 0, 250_000, "dekat kampus")

	providerA := uuid.New()
	good := makeListing(providerA, "Tembalang", 200_000)  // 80
	bad := makeListing(providerA, "Sekaran", 2_000_000)   // much lower
	providerB := uuid.New()
	mid := makeListing(providerB, "near UNDIP Tembalang", 300_000) // 66

	ranked := RankProviders(req, []*models.Listing{bad, mid, good})
	if len(ranked) != 2 {
		t.Fatalf("ranked providers: got %d, want 2", len(ranked))
	}
	if ranked[0].AccountID != providerA || ranked[0].Score != 80 {
		t.Errorf("top = (%s, %d), want (%s, 80)", ranked[0].AccountID, ranked[0].Score, providerA)
	}
	if ranked[1].AccountID != providerB || ranked[1].Score != 66 {
		t.Errorf("second = (%s, %d), want (%s, 66)", ranked[1].AccountID, ranked[1].Score, providerB)
	}
}

func TestRankProvidersDeterministicTieBreak(t *testing.T) {
	req := makeRequest([]string{"Tembalang"}, 0, 250_000, "dekat kampus")

	idA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	la := makeListing(idA, "Tembalang", 200_000)
	lb := makeListing(idB, "Tembalang", 200_000)

	for i := 0; i < 20; i++ {
		ranked := RankProviders(req, []*models.Listing{lb, la})
		if ranked[0].AccountID != idA || ranked[1].AccountID != idB {
			t.Fatalf("iteration %d: tie-break not deterministic: %v", i, ranked)
		}
	}
}
