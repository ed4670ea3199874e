// Package outcomes is the append-only store of accepted eligibility decisions.
// Records are created once and never updated or deleted; the package exposes
// read-only queries over them for audit.
package outcomes

import (
	"time"

	"github.com/google/uuid"
)

// DecisionAccepted is the only decision label the store accepts.
const DecisionAccepted = "accepted"

// Exchange is one clarification question with the answer given to it.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Outcome is a persisted accepted decision.
type Outcome struct {
	ID                      uuid.UUID  `json:"id"`
	Category                string     `json:"category"`
	SubCategories           []string   `json:"sub_categories"`
	ProductName             string     `json:"product_name"`
	CompanyName             string     `json:"company_name"`
	Location                string     `json:"location"`
	Certifications          []string   `json:"certifications"`
	Decision                string     `json:"decision"`
	Reason                  string     `json:"reason"`
	SuggestedCertifications []string   `json:"suggested_certifications"`
	Transcript              []Exchange `json:"transcript"`
	CatalogVersion          string     `json:"catalog_version"`
	ProviderName            string     `json:"provider_name"`
	ModelName               string     `json:"model_name"`
	CreatedAt               time.Time  `json:"created_at"`
}

// RecordCommand carries everything needed to append an Outcome.
type RecordCommand struct {
	Category                string
	SubCategories           []string
	ProductName             string
	CompanyName             string
	Location                string
	Certifications          []string
	Decision                string
	Reason                  string
	SuggestedCertifications []string
	Transcript              []Exchange
	CatalogVersion          string
	ProviderName            string
	ModelName               string
}
