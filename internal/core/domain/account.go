package domain

import (
	"fmt"
	"strings"

	"github.com/ptbooks/journal_backend/internal/apperrors"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
	Cash      AccountType = "CASH"
)

// ParseAccountType maps a declaration token to an AccountType,
// case-insensitively. Unknown tokens default to Asset.
func ParseAccountType(s string) AccountType {
	switch strings.ToUpper(s) {
	case "LIABILITY":
		return Liability
	case "EQUITY":
		return Equity
	case "REVENUE":
		return Revenue
	case "EXPENSE":
		return Expense
	case "CASH":
		return Cash
	default:
		return Asset
	}
}

// Title returns the type with only its first letter capitalized, the form
// used in serialized `; type:` annotations.
func (t AccountType) Title() string {
	s := string(t)
	if s == "" {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}

// Account is a node in the chart-of-accounts tree. Identity derives from the
// account's source path: the ID is the leading numeric token of its own
// segment, the name the remainder. The parent link forms a forest rooted at
// parentless accounts; cycles are impossible because parents are always
// constructed first.
type Account struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   AccountType `json:"type"`
	Note   string      `json:"note,omitempty"`
	Parent *Account    `json:"-"`
}

// NewRootAccount creates an account without a parent.
func NewRootAccount(id, name string, accountType AccountType, note string) (*Account, error) {
	return newAccount(id, name, accountType, note, nil)
}

// NewChildAccount creates an account below the given parent.
func NewChildAccount(id, name string, accountType AccountType, note string, parent *Account) (*Account, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: parent account cannot be nil", apperrors.ErrValidation)
	}
	return newAccount(id, name, accountType, note, parent)
}

func newAccount(id, name string, accountType AccountType, note string, parent *Account) (*Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: account id cannot be blank", apperrors.ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: account name cannot be blank", apperrors.ErrValidation)
	}
	if accountType == "" {
		return nil, fmt.Errorf("%w: account type cannot be blank", apperrors.ErrValidation)
	}
	return &Account{ID: id, Name: name, Type: accountType, Note: note, Parent: parent}, nil
}

// IsRoot reports whether the account has no parent.
func (a *Account) IsRoot() bool {
	return a.Parent == nil
}

// Depth returns the number of ancestors. Root accounts have depth 0.
func (a *Account) Depth() int {
	depth := 0
	for current := a.Parent; current != nil; current = current.Parent {
		depth++
	}
	return depth
}

// Segment returns the account's own path segment, "<id> <name>".
func (a *Account) Segment() string {
	return a.ID + " " + a.Name
}

// FullPath rebuilds the colon-joined hierarchical path by walking up to the
// root, e.g. "1 Assets:10 Cash:100 Bank".
func (a *Account) FullPath() string {
	segments := []string{}
	for current := a; current != nil; current = current.Parent {
		segments = append([]string{current.Segment()}, segments...)
	}
	return strings.Join(segments, ":")
}
