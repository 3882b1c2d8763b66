package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead subject and status enums.
const (
	LeadSubjectListingContact = "listing_contact"
	LeadSubjectRequestContact = "request_contact"

	LeadStatusPending  = "pending"
	LeadStatusUnlocked = "unlocked"

	UnlockStatusUnlocked = "unlocked"
)

// Lead is a contact-reveal target: either an inbound contact request from a
// seeker to a provider, or a provider's wish to contact a seeker's posted
// request. The owner's contact stays hidden until a successful unlock.
type Lead struct {
	ID                  uuid.UUID `json:"id"`
	SubjectType         string    `json:"subject_type"`
	SubjectRef          uuid.UUID `json:"subject_ref"`
	OwnerAccountID      uuid.UUID `json:"owner_account_id"`
	RequestingAccountID uuid.UUID `json:"requesting_account_id"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

// UnlockRecord is the single source of truth for "this account already paid
// for this lead". Unique on (requesting_account_id, lead_id); immutable.
type UnlockRecord struct {
	ID                  uuid.UUID `json:"id"`
	RequestingAccountID uuid.UUID `json:"requesting_account_id"`
	LeadID              uuid.UUID `json:"lead_id"`
	Status              string    `json:"status"`
	CostCharged         int       `json:"cost_charged"`
	UnlockedAt          time.Time `json:"unlocked_at"`
}
