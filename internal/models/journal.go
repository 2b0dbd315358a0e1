package models

import "time"

// AuditFields holds standard audit information for persisted rows.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Journal is the persistence model for journal metadata.
type Journal struct {
	JournalID string  `json:"journalID"` // Primary Key (UUID)
	Logo      *string `json:"logo"`      // Nullable
	Title     *string `json:"title"`     // Nullable
	Subtitle  *string `json:"subtitle"`  // Nullable
	Currency  string  `json:"currency"`  // Not Null
	// Commodities maps commodity code to its display precision in plain
	// decimal form, e.g. "CHF" -> "1000.00".
	Commodities map[string]string `json:"commodities"`
	AuditFields
}
