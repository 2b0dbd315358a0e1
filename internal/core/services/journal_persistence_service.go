package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/ptbooks/journal_backend/internal/core/domain"
	portsrepo "github.com/ptbooks/journal_backend/internal/core/ports/repositories"
	"github.com/ptbooks/journal_backend/internal/models"
	"github.com/ptbooks/journal_backend/internal/utils/mapping"
)

// JournalPersistenceService stores a parsed journal model through the
// repository port. Accounts are deduplicated by full path (keep first) and
// saved parents-before-children so foreign keys resolve.
type JournalPersistenceService struct {
	repo   portsrepo.JournalRepository
	logger *slog.Logger
}

// NewJournalPersistenceService creates a persistence service.
func NewJournalPersistenceService(repo portsrepo.JournalRepository, logger *slog.Logger) *JournalPersistenceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalPersistenceService{repo: repo, logger: logger}
}

// PersistJournal saves journal metadata, accounts and transactions, and
// returns the generated journal id.
func (s *JournalPersistenceService) PersistJournal(ctx context.Context, journal *domain.Journal) (string, error) {
	if journal == nil {
		return "", fmt.Errorf("%w: journal cannot be nil", apperrors.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	journalID, err := s.repo.SaveJournalMetadata(ctx, mapping.ToJournalModel(journal, now))
	if err != nil {
		return "", fmt.Errorf("failed to save journal metadata: %w", err)
	}
	s.logger.Info("saved journal metadata", slog.String("journal_id", journalID))

	// Deduplicate by full path, keeping the first occurrence.
	unique := make([]*domain.Account, 0, len(journal.Accounts))
	seen := make(map[string]struct{}, len(journal.Accounts))
	for _, account := range journal.Accounts {
		path := account.FullPath()
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		unique = append(unique, account)
	}

	// Parents must be durable before their children.
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Depth() < unique[j].Depth()
	})

	accountIDs := make(map[string]string, len(unique))
	for _, account := range unique {
		var parentID *string
		if account.Parent != nil {
			if id, ok := accountIDs[account.Parent.FullPath()]; ok {
				parentID = &id
			} else {
				s.logger.Warn("parent account not saved yet",
					slog.String("account", account.FullPath()),
					slog.String("parent", account.Parent.FullPath()))
			}
		}
		id, err := s.repo.SaveAccount(ctx, mapping.ToAccountModel(account, journalID, parentID, now))
		if err != nil {
			return "", fmt.Errorf("failed to save account %q: %w", account.FullPath(), err)
		}
		accountIDs[account.FullPath()] = id
	}
	s.logger.Info("saved accounts",
		slog.Int("unique", len(unique)),
		slog.Int("total", len(journal.Accounts)))

	for _, txn := range journal.Transactions {
		row, entries, tags := mapping.ToTransactionModel(txn, journalID, accountIDs, now)
		if err := s.repo.SaveTransaction(ctx, row, entries, tags); err != nil {
			return "", fmt.Errorf("failed to save transaction %q on %s: %w",
				txn.Description, txn.Date.Format(dateLayout), err)
		}
	}
	s.logger.Info("saved transactions", slog.Int("count", len(journal.Transactions)))

	return journalID, nil
}

// DeleteJournal removes a persisted journal and everything hanging off it.
func (s *JournalPersistenceService) DeleteJournal(ctx context.Context, journalID string) error {
	if journalID == "" {
		return fmt.Errorf("%w: journal id cannot be blank", apperrors.ErrInvalidArgument)
	}
	return s.repo.DeleteJournal(ctx, journalID)
}

// QueryEntries returns persisted posting rows for a journal, filtered per
// the repository's half-open date semantics (start inclusive, end exclusive).
func (s *JournalPersistenceService) QueryEntries(ctx context.Context, journalID string, query portsrepo.EntryQuery) ([]models.EntryRow, error) {
	if journalID == "" {
		return nil, fmt.Errorf("%w: journal id cannot be blank", apperrors.ErrInvalidArgument)
	}
	if query.StartDate != nil && query.EndDate != nil && query.StartDate.After(*query.EndDate) {
		return nil, fmt.Errorf("%w: start date must not be after end date", apperrors.ErrInvalidArgument)
	}
	return s.repo.QueryEntriesWithFilters(ctx, journalID, query)
}
