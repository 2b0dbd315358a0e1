package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the reconciliation state of a transaction.
type TransactionStatus string

const (
	// Cleared transactions are marked with * in the source text.
	Cleared TransactionStatus = "CLEARED"
	// Pending transactions are marked with !.
	Pending TransactionStatus = "PENDING"
	// Uncleared transactions carry no status marker.
	Uncleared TransactionStatus = "UNCLEARED"
)

// ParseTransactionStatus maps a status marker to a TransactionStatus.
func ParseTransactionStatus(marker string) TransactionStatus {
	switch marker {
	case "*":
		return Cleared
	case "!":
		return Pending
	default:
		return Uncleared
	}
}

// Marker returns the source-text marker for the status: "*", "!" or "".
func (s TransactionStatus) Marker() string {
	switch s {
	case Cleared:
		return "*"
	case Pending:
		return "!"
	default:
		return ""
	}
}

// Transaction is a dated, described bundle of at least two postings whose
// per-commodity signed sums should be zero. Tag and posting slices are copied
// at construction and must not be mutated afterwards.
type Transaction struct {
	Date        time.Time         `json:"date"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	PartnerID   string            `json:"partnerId,omitempty"`
	ExternalID  string            `json:"id,omitempty"`
	Tags        []Tag             `json:"tags"`
	Postings    []Posting         `json:"postings"`
}

// NewTransaction creates a transaction, validating its invariants.
func NewTransaction(date time.Time, status TransactionStatus, description, partnerID, externalID string, tags []Tag, postings []Posting) (Transaction, error) {
	if date.IsZero() {
		return Transaction{}, fmt.Errorf("%w: transaction date cannot be zero", apperrors.ErrValidation)
	}
	if status == "" {
		return Transaction{}, fmt.Errorf("%w: transaction status cannot be blank", apperrors.ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return Transaction{}, fmt.Errorf("%w: transaction description cannot be blank", apperrors.ErrValidation)
	}
	if len(postings) < 2 {
		return Transaction{}, fmt.Errorf("%w: transaction must have at least 2 postings, got %d",
			apperrors.ErrValidation, len(postings))
	}
	txn := Transaction{
		Date:        date,
		Status:      status,
		Description: description,
		PartnerID:   partnerID,
		ExternalID:  externalID,
		Tags:        append([]Tag(nil), tags...),
		Postings:    append([]Posting(nil), postings...),
	}
	return txn, nil
}

// IsBalanced reports whether, for every commodity appearing in the postings,
// the signed sum of quantities compares equal to zero.
func (t Transaction) IsBalanced() bool {
	sums := make(map[string]decimal.Decimal)
	for _, p := range t.Postings {
		sums[p.Amount.Commodity] = sums[p.Amount.Commodity].Add(p.Amount.Quantity)
	}
	for _, sum := range sums {
		if !sum.IsZero() {
			return false
		}
	}
	return true
}

// HasTag reports whether the transaction carries a tag with the given key.
func (t Transaction) HasTag(key string) bool {
	for _, tag := range t.Tags {
		if tag.Key == key {
			return true
		}
	}
	return false
}

// TagValue returns the value of the first tag with the given key.
func (t Transaction) TagValue(key string) (string, bool) {
	for _, tag := range t.Tags {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}
