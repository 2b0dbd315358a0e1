package domain

import (
	"fmt"

	"github.com/ptbooks/journal_backend/internal/apperrors"
)

// Posting is one leg of a transaction: one account, one signed amount.
type Posting struct {
	Account *Account `json:"account"`
	Amount  Amount   `json:"amount"`
	Note    string   `json:"note,omitempty"`
}

// NewPosting creates a posting for the given account and amount.
func NewPosting(account *Account, amount Amount) (Posting, error) {
	if account == nil {
		return Posting{}, fmt.Errorf("%w: posting account cannot be nil", apperrors.ErrValidation)
	}
	if amount.Commodity == "" {
		return Posting{}, fmt.Errorf("%w: posting amount cannot be empty", apperrors.ErrValidation)
	}
	return Posting{Account: account, Amount: amount}, nil
}

// NewPostingWithNote creates a posting carrying a free-text note.
func NewPostingWithNote(account *Account, amount Amount, note string) (Posting, error) {
	p, err := NewPosting(account, amount)
	if err != nil {
		return Posting{}, err
	}
	p.Note = note
	return p, nil
}
