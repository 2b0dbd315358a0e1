package repositories

import (
	"context"
	"time"

	"github.com/ptbooks/journal_backend/internal/models"
)

// EntryQuery carries the optional filters of the entry query. StartDate is
// inclusive and EndDate is exclusive, matching the half-open predicates of
// typical SQL range queries. This deliberately differs from the in-memory
// filter algebra, whose Between is inclusive on both endpoints.
type EntryQuery struct {
	StartDate  *time.Time
	EndDate    *time.Time
	PartnerID  *string
	Status     *string
	AccountIDs []string
}

// JournalReader defines read operations for persisted journal data.
type JournalReader interface {
	// FindJournalByID retrieves journal metadata by its identifier.
	FindJournalByID(ctx context.Context, journalID string) (*models.Journal, error)

	// QueryEntriesWithFilters returns posting rows joined to their
	// transactions, ordered by date descending, then transaction id, then
	// entry order.
	QueryEntriesWithFilters(ctx context.Context, journalID string, query EntryQuery) ([]models.EntryRow, error)
}

// JournalWriter defines write operations for persisted journal data.
type JournalWriter interface {
	// SaveJournalMetadata upserts journal metadata and returns its id.
	SaveJournalMetadata(ctx context.Context, journal models.Journal) (string, error)

	// SaveAccount stores one account and returns its id. Callers pass
	// accounts in non-decreasing depth order so parent ids resolve.
	SaveAccount(ctx context.Context, account models.Account) (string, error)

	// SaveTransaction stores a transaction header together with its ordered
	// entries and tags.
	SaveTransaction(ctx context.Context, txn models.Transaction, entries []models.Entry, tags []models.Tag) error

	// DeleteJournal removes a journal and all data hanging off it.
	DeleteJournal(ctx context.Context, journalID string) error
}

// JournalRepository combines all journal persistence operations.
type JournalRepository interface {
	JournalReader
	JournalWriter
}
