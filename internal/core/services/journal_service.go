package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/ptbooks/journal_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalService is the balance engine: filtering, as-of balances, and
// per-transaction balance checks over an in-memory journal. All operations
// are pure functions of their inputs.
type JournalService struct{}

// NewJournalService creates a journal service.
func NewJournalService() *JournalService {
	return &JournalService{}
}

// FilterTransactions returns the transactions matching the filter, sorted by
// date descending with insertion order as tiebreaker.
func (s *JournalService) FilterTransactions(journal *domain.Journal, filter TransactionFilter) ([]domain.Transaction, error) {
	if journal == nil {
		return nil, fmt.Errorf("%w: journal cannot be nil", apperrors.ErrInvalidArgument)
	}
	if filter == nil {
		return nil, fmt.Errorf("%w: filter cannot be nil", apperrors.ErrInvalidArgument)
	}

	matched := []domain.Transaction{}
	for _, txn := range journal.Transactions {
		if filter(txn) {
			matched = append(matched, txn)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	return matched, nil
}

// AccountBalance computes the balance of one account as of the given date,
// inclusive. The result maps commodity code to summed quantity; commodities
// the account never touched are absent.
func (s *JournalService) AccountBalance(journal *domain.Journal, account *domain.Account, asOf time.Time) (map[string]decimal.Decimal, error) {
	if journal == nil {
		return nil, fmt.Errorf("%w: journal cannot be nil", apperrors.ErrInvalidArgument)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account cannot be nil", apperrors.ErrInvalidArgument)
	}
	if asOf.IsZero() {
		return nil, fmt.Errorf("%w: date cannot be zero", apperrors.ErrInvalidArgument)
	}

	filter := OnOrBefore(asOf).And(AffectingAccount(account))
	relevant, err := s.FilterTransactions(journal, filter)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal)
	fullPath := account.FullPath()
	for _, txn := range relevant {
		for _, posting := range txn.Postings {
			if posting.Account.FullPath() != fullPath {
				continue
			}
			commodity := posting.Amount.Commodity
			balances[commodity] = balances[commodity].Add(posting.Amount.Quantity)
		}
	}
	return balances, nil
}

// AccountBalanceByPath resolves an account by its full hierarchical path and
// computes its balance as of the given date.
func (s *JournalService) AccountBalanceByPath(journal *domain.Journal, fullPath string, asOf time.Time) (map[string]decimal.Decimal, error) {
	if journal == nil {
		return nil, fmt.Errorf("%w: journal cannot be nil", apperrors.ErrInvalidArgument)
	}
	account, ok := journal.FindAccountByPath(fullPath)
	if !ok {
		return nil, fmt.Errorf("%w: account %q", apperrors.ErrNotFound, fullPath)
	}
	return s.AccountBalance(journal, account, asOf)
}

// AllAccountBalances computes balances for every account with at least one
// posting on or before the given date, keyed by full path. Accounts with no
// activity are omitted.
func (s *JournalService) AllAccountBalances(journal *domain.Journal, asOf time.Time) (map[string]map[string]decimal.Decimal, error) {
	if journal == nil {
		return nil, fmt.Errorf("%w: journal cannot be nil", apperrors.ErrInvalidArgument)
	}
	if asOf.IsZero() {
		return nil, fmt.Errorf("%w: date cannot be zero", apperrors.ErrInvalidArgument)
	}

	balances := make(map[string]map[string]decimal.Decimal)
	for _, account := range journal.Accounts {
		accountBalance, err := s.AccountBalance(journal, account, asOf)
		if err != nil {
			return nil, err
		}
		if len(accountBalance) > 0 {
			balances[account.FullPath()] = accountBalance
		}
	}
	return balances, nil
}

// UnbalancedTransactions returns the transactions whose per-commodity posting
// sums are non-zero, sorted by date descending. An unbalanced transaction is
// not an error; the caller decides what to do with it.
func (s *JournalService) UnbalancedTransactions(journal *domain.Journal) ([]domain.Transaction, error) {
	if journal == nil {
		return nil, fmt.Errorf("%w: journal cannot be nil", apperrors.ErrInvalidArgument)
	}
	return s.FilterTransactions(journal, func(txn domain.Transaction) bool {
		return !txn.IsBalanced()
	})
}
