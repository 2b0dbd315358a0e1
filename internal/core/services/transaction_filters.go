package services

import (
	"strings"
	"time"

	"github.com/ptbooks/journal_backend/internal/core/domain"
)

// TransactionFilter is a composable predicate over transactions. Filters are
// pure closures and safe to share across goroutines.
type TransactionFilter func(domain.Transaction) bool

// And combines two filters with short-circuit AND logic.
func (f TransactionFilter) And(other TransactionFilter) TransactionFilter {
	return func(txn domain.Transaction) bool { return f(txn) && other(txn) }
}

// Or combines two filters with short-circuit OR logic.
func (f TransactionFilter) Or(other TransactionFilter) TransactionFilter {
	return func(txn domain.Transaction) bool { return f(txn) || other(txn) }
}

// Negate inverts the filter.
func (f TransactionFilter) Negate() TransactionFilter {
	return func(txn domain.Transaction) bool { return !f(txn) }
}

// All matches every transaction.
func All() TransactionFilter {
	return func(domain.Transaction) bool { return true }
}

// None matches no transaction.
func None() TransactionFilter {
	return func(domain.Transaction) bool { return false }
}

// OnDate matches transactions on exactly the given date.
func OnDate(date time.Time) TransactionFilter {
	return func(txn domain.Transaction) bool { return txn.Date.Equal(date) }
}

// OnOrBefore matches transactions dated on or before the given date.
func OnOrBefore(date time.Time) TransactionFilter {
	return func(txn domain.Transaction) bool { return !txn.Date.After(date) }
}

// OnOrAfter matches transactions dated on or after the given date.
func OnOrAfter(date time.Time) TransactionFilter {
	return func(txn domain.Transaction) bool { return !txn.Date.Before(date) }
}

// Between matches transactions within the date range, inclusive on both
// endpoints. Note that the persistence query interface treats its end date as
// exclusive; the two are intentionally different.
func Between(startDate, endDate time.Time) TransactionFilter {
	return OnOrAfter(startDate).And(OnOrBefore(endDate))
}

// WithStatus matches transactions with the given status.
func WithStatus(status domain.TransactionStatus) TransactionFilter {
	return func(txn domain.Transaction) bool { return txn.Status == status }
}

// AffectingAccount matches transactions with a posting against the account.
func AffectingAccount(account *domain.Account) TransactionFilter {
	return AffectingAccountByID(account.ID)
}

// AffectingAccountByID matches transactions with a posting whose account has
// the given id.
func AffectingAccountByID(accountID string) TransactionFilter {
	return func(txn domain.Transaction) bool {
		for _, posting := range txn.Postings {
			if posting.Account.ID == accountID {
				return true
			}
		}
		return false
	}
}

// WithTag matches transactions carrying a tag with the given key.
func WithTag(key string) TransactionFilter {
	return func(txn domain.Transaction) bool { return txn.HasTag(key) }
}

// WithTagValue matches transactions carrying the given key-value tag.
func WithTagValue(key, value string) TransactionFilter {
	return func(txn domain.Transaction) bool {
		v, ok := txn.TagValue(key)
		return ok && v == value
	}
}

// DescriptionContains matches transactions whose description contains the
// given text, case-insensitively.
func DescriptionContains(text string) TransactionFilter {
	needle := strings.ToLower(text)
	return func(txn domain.Transaction) bool {
		return strings.Contains(strings.ToLower(txn.Description), needle)
	}
}
