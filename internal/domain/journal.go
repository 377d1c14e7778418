package domain

import (
	"time"

	"github.com/google/uuid"
)

// Journal represents an academic journal that can be recommended for a
// manuscript. Journals live in the journals table and are loaded by the
// repository layer; the ranking engine scores them without mutating them.
type Journal struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	Domain                string    `json:"domain"`
	Publisher             string    `json:"publisher,omitempty"`
	URL                   string    `json:"url,omitempty"`
	ImpactFactor          float64   `json:"impact_factor"`
	IsOpenAccess          bool      `json:"is_open_access"`
	PublicationTimeMonths int       `json:"publication_time_months"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// JournalFilter narrows the set of journals considered for recommendation.
// Zero values mean "no constraint".
type JournalFilter struct {
	// OpenAccessOnly restricts results to open access journals.
	OpenAccessOnly bool

	// MinImpactFactor excludes journals below this impact factor.
	MinImpactFactor float64

	// MaxTimeToPublishMonths excludes journals with a longer expected
	// time from submission to publication.
	MaxTimeToPublishMonths int

	// Domain restricts results to a discipline (exact match).
	Domain string
}
