package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kostmatch/backend/internal/middleware"
	"github.com/kostmatch/backend/internal/models"
	"github.com/kostmatch/backend/internal/unlock"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubLeadRepo struct {
	leads   map[uuid.UUID]*models.Lead
	records map[uuid.UUID]*models.UnlockRecord // keyed by lead id
	contact string
	created []*models.Lead
}

func (s *stubLeadRepo) Create(_ context.Context, l *models.Lead) error {
	s.created = append(s.created, l)
	return nil
}

func (s *stubLeadRepo) GetLead(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return l, nil
}

func (s *stubLeadRepo) ListByRequester(_ context.Context, accountID uuid.UUID) ([]*models.Lead, error) {
	var out []*models.Lead
	for _, l := range s.leads {
		if l.RequestingAccountID == accountID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubLeadRepo) GetUnlockRecord(_ context.Context, _, leadID uuid.UUID) (*models.UnlockRecord, error) {
	return s.records[leadID], nil
}

func (s *stubLeadRepo) OwnerContact(_ context.Context, _ uuid.UUID) (string, error) {
	return s.contact, nil
}

type stubListingRepo struct {
	listing *models.Listing
}

func (s *stubListingRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.Listing, error) {
	if s.listing == nil {
		return nil, pgx.ErrNoRows
	}
	return s.listing, nil
}

type stubRequestRepo struct {
	request *models.HousingRequest
}

func (s *stubRequestRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.HousingRequest, error) {
	if s.request == nil {
		return nil, pgx.ErrNoRows
	}
	return s.request, nil
}

type stubGateway struct {
	result *unlock.Result
	err    error
}

func (s *stubGateway) Unlock(_ context.Context, _, _ uuid.UUID) (*unlock.Result, error) {
	return s.result, s.err
}

func authedRequest(method, target string, body []byte, acc *models.Account) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.WithAccount(req.Context(), acc))
}

var testLogger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

// ---------------------------------------------------------------------------
// CreateLead
// ---------------------------------------------------------------------------

func TestCreateLead_ListingContact(t *testing.T) {
	seeker := &models.Account{ID: uuid.New(), Role: models.RoleTenantSeeker}
	owner := uuid.New()
	listing := &models.Listing{ID: uuid.New(), AccountID: owner}

	repo := &stubLeadRepo{leads: map[uuid.UUID]*models.Lead{}}
	h := &LeadHandler{
		Leads:    repo,
		Listings: &stubListingRepo{listing: listing},
		Requests: &stubRequestRepo{},
		Logger:   testLogger,
	}

	body, _ := json.Marshal(createLeadRequest{
		SubjectType: models.LeadSubjectListingContact,
		SubjectRef:  listing.ID.String(),
	})
	rec := httptest.NewRecorder()
	h.CreateLead(rec, authedRequest(http.MethodPost, "/v1/leads", body, seeker))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("leads created = %d, want 1", len(repo.created))
	}
	lead := repo.created[0]
	if lead.OwnerAccountID != owner || lead.RequestingAccountID != seeker.ID {
		t.Error("lead owner or requester not resolved")
	}
	if lead.Status != models.LeadStatusPending {
		t.Errorf("new lead status = %s, want pending", lead.Status)
	}
}

func TestCreateLead_OwnPostingRejected(t *testing.T) {
	provider := &models.Account{ID: uuid.New(), Role: models.RoleProvider}
	listing := &models.Listing{ID: uuid.New(), AccountID: provider.ID}

	h := &LeadHandler{
		Leads:    &stubLeadRepo{},
		Listings: &stubListingRepo{listing: listing},
		Requests: &stubRequestRepo{},
		Logger:   testLogger,
	}

	body, _ := json.Marshal(createLeadRequest{
		SubjectType: models.LeadSubjectListingContact,
		SubjectRef:  listing.ID.String(),
	})
	rec := httptest.NewRecorder()
	h.CreateLead(rec, authedRequest(http.MethodPost, "/v1/leads", body, provider))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateLead_UnknownSubjectType(t *testing.T) {
	h := &LeadHandler{
		Leads:    &stubLeadRepo{},
		Listings: &stubListingRepo{},
		Requests: &stubRequestRepo{},
		Logger:   testLogger,
	}
	body, _ := json.Marshal(createLeadRequest{SubjectType: "mystery", SubjectRef: uuid.New().String()})
	rec := httptest.NewRecorder()
	h.CreateLead(rec, authedRequest(http.MethodPost, "/v1/leads", body, &models.Account{ID: uuid.New()}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// GetLead
// ---------------------------------------------------------------------------

func TestGetLead_ContactHiddenUntilUnlocked(t *testing.T) {
	seeker := &models.Account{ID: uuid.New()}
	lead := &models.Lead{
		ID:                  uuid.New(),
		OwnerAccountID:      uuid.New(),
		RequestingAccountID: seeker.ID,
		Status:              models.LeadStatusPending,
	}
	repo := &stubLeadRepo{
		leads:   map[uuid.UUID]*models.Lead{lead.ID: lead},
		records: map[uuid.UUID]*models.UnlockRecord{},
		contact: "+62 812 9999 0000",
	}
	h := &LeadHandler{Leads: repo, Listings: &stubListingRepo{}, Requests: &stubRequestRepo{}, Logger: testLogger}

	rec := httptest.NewRecorder()
	h.GetLead(rec, authedRequest(http.MethodGet, "/v1/leads/"+lead.ID.String(), nil, seeker))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp leadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RevealedContact != nil {
		t.Error("contact must stay hidden before unlock")
	}

	// After an unlock record exists the same call reveals the contact.
	repo.records[lead.ID] = &models.UnlockRecord{LeadID: lead.ID, RequestingAccountID: seeker.ID}
	rec = httptest.NewRecorder()
	h.GetLead(rec, authedRequest(http.MethodGet, "/v1/leads/"+lead.ID.String(), nil, seeker))

	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RevealedContact == nil || *resp.RevealedContact != repo.contact {
		t.Errorf("revealed contact = %v, want %q", resp.RevealedContact, repo.contact)
	}
}

func TestGetLead_StrangerGets404(t *testing.T) {
	lead := &models.Lead{ID: uuid.New(), OwnerAccountID: uuid.New(), RequestingAccountID: uuid.New()}
	repo := &stubLeadRepo{leads: map[uuid.UUID]*models.Lead{lead.ID: lead}}
	h := &LeadHandler{Leads: repo, Listings: &stubListingRepo{}, Requests: &stubRequestRepo{}, Logger: testLogger}

	rec := httptest.NewRecorder()
	h.GetLead(rec, authedRequest(http.MethodGet, "/v1/leads/"+lead.ID.String(), nil, &models.Account{ID: uuid.New()}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// UnlockLead status mapping
// ---------------------------------------------------------------------------

func TestUnlockLead_StatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		result   *unlock.Result
		err      error
		wantCode int
	}{
		{"unlocked", &unlock.Result{Status: unlock.StatusUnlocked}, nil, http.StatusOK},
		{"already unlocked", &unlock.Result{Status: unlock.StatusAlreadyUnlocked}, nil, http.StatusOK},
		{"insufficient credits", &unlock.Result{Status: unlock.StatusInsufficientCredits}, nil, http.StatusPaymentRequired},
		{"not found", &unlock.Result{Status: unlock.StatusNotFound}, nil, http.StatusNotFound},
		{"conflict", nil, unlock.ErrConflict, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &LeadHandler{
				Leads:    &stubLeadRepo{},
				Listings: &stubListingRepo{},
				Requests: &stubRequestRepo{},
				Gateway:  &stubGateway{result: tc.result, err: tc.err},
				Logger:   testLogger,
			}
			rec := httptest.NewRecorder()
			target := "/v1/leads/" + uuid.New().String() + "/unlock"
			h.UnlockLead(rec, authedRequest(http.MethodPost, target, nil, &models.Account{ID: uuid.New()}))

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUnlockLead_Unauthenticated(t *testing.T) {
	h := &LeadHandler{Leads: &stubLeadRepo{}, Listings: &stubListingRepo{}, Requests: &stubRequestRepo{}, Logger: testLogger}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/leads/"+uuid.New().String()+"/unlock", nil)
	h.UnlockLead(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
