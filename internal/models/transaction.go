package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persistence model for a transaction header.
type Transaction struct {
	TransactionID string    `json:"transactionID"` // Primary Key (UUID)
	JournalID     string    `json:"journalID"`     // FK -> journals
	Date          time.Time `json:"date"`
	Status        string    `json:"status"` // CLEARED, PENDING, UNCLEARED
	Description   string    `json:"description"`
	PartnerID     *string   `json:"partnerID"`  // Nullable
	ExternalID    *string   `json:"externalID"` // Nullable id from the `id:` tag
	AuditFields
}

// Entry is the persistence model for one posting of a transaction.
type Entry struct {
	EntryID       string          `json:"entryID"`       // Primary Key (UUID)
	TransactionID string          `json:"transactionID"` // FK -> transactions
	AccountID     string          `json:"accountID"`     // FK -> accounts
	Commodity     string          `json:"commodity"`
	Amount        decimal.Decimal `json:"amount"`
	Note          *string         `json:"note"`       // Nullable
	EntryOrder    int             `json:"entryOrder"` // Position within the transaction
}

// Tag is the persistence model for a transaction tag.
type Tag struct {
	TagID         string  `json:"tagID"`         // Primary Key (UUID)
	TransactionID string  `json:"transactionID"` // FK -> transactions
	Key           string  `json:"key"`
	Value         *string `json:"value"` // Nullable for simple tags
}

// EntryRow is a posting row joined to its transaction, as returned by the
// filtered entry query.
type EntryRow struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	Date          time.Time       `json:"date"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	PartnerID     *string         `json:"partnerID"`
	ExternalID    *string         `json:"externalID"`
	AccountID     string          `json:"accountID"`
	AccountPath   string          `json:"accountPath"`
	Commodity     string          `json:"commodity"`
	Amount        decimal.Decimal `json:"amount"`
	EntryOrder    int             `json:"entryOrder"`
}
