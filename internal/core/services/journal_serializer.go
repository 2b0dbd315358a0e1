package services

import (
	"fmt"
	"strings"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/ptbooks/journal_backend/internal/core/domain"
)

const separatorBanner = "; ============================================================================"

// JournalSerializer converts a domain.Journal back into journal file content.
// The output re-parses into a semantically equal journal; posting quantities
// keep their original scale because decimals are emitted in plain form.
type JournalSerializer struct{}

// NewJournalSerializer creates a serializer.
func NewJournalSerializer() *JournalSerializer {
	return &JournalSerializer{}
}

// Serialize renders the journal in the canonical layout: metadata,
// commodities, account declarations, then transactions.
func (s *JournalSerializer) Serialize(journal *domain.Journal) (string, error) {
	if journal == nil {
		return "", fmt.Errorf("%w: journal cannot be nil", apperrors.ErrInvalidArgument)
	}

	var sb strings.Builder

	if journal.Logo != "" {
		sb.WriteString("; logo: " + journal.Logo + "\n")
	}
	if journal.Title != "" {
		sb.WriteString("; title: " + journal.Title + "\n")
	}
	if journal.Subtitle != "" {
		sb.WriteString("; subtitle: " + journal.Subtitle + "\n")
	}
	if journal.Currency != "" {
		sb.WriteString("; Currency: " + journal.Currency + "\n")
	}
	if journal.Logo != "" || journal.Title != "" || journal.Subtitle != "" || journal.Currency != "" {
		sb.WriteString("\n")
	}

	if len(journal.Commodities) > 0 {
		for _, commodity := range journal.Commodities {
			sb.WriteString("commodity " + commodity.Code + " " + domain.PlainString(commodity.DisplayPrecision) + "\n")
		}
		sb.WriteString("\n")
	}

	if len(journal.Accounts) > 0 {
		sb.WriteString(separatorBanner + "\n")
		sb.WriteString("; ACCOUNT DECLARATIONS WITH TYPE ANNOTATIONS\n")
		sb.WriteString(separatorBanner + "\n\n")

		for _, account := range journal.Accounts {
			sb.WriteString("account " + account.FullPath() + "\n")
			sb.WriteString("  ; type:" + account.Type.Title() + "\n")
			if account.Note != "" {
				sb.WriteString("  ; note:" + account.Note + "\n")
			}
			sb.WriteString("\n")
		}
	}

	if len(journal.Transactions) > 0 {
		sb.WriteString(separatorBanner + "\n")
		sb.WriteString("; TRANSACTIONS\n")
		sb.WriteString(separatorBanner + "\n\n")

		for _, txn := range journal.Transactions {
			s.writeTransaction(&sb, txn)
		}
	}

	return sb.String(), nil
}

func (s *JournalSerializer) writeTransaction(sb *strings.Builder, txn domain.Transaction) {
	sb.WriteString(txn.Date.Format(dateLayout) + " " + txn.Status.Marker() + " " + txn.Description + "\n")

	// The external id is always the first tag line so it survives a round trip.
	if txn.ExternalID != "" {
		sb.WriteString("    ; id:" + txn.ExternalID + "\n")
	}
	for _, tag := range txn.Tags {
		if tag.IsSimple() {
			sb.WriteString("    ; :" + tag.Key + ":\n")
		} else {
			sb.WriteString("    ; " + tag.Key + ":" + tag.Value + "\n")
		}
	}

	for _, posting := range txn.Postings {
		fullPath := posting.Account.FullPath()
		quantity := domain.PlainString(posting.Amount.Quantity)

		// Pad so the line reaches 80 columns before the commodity and
		// amount, with a minimum gap of 4 spaces.
		padding := 80 - len(fullPath) - len(posting.Amount.Commodity) - len(quantity)
		if padding < 4 {
			padding = 4
		}
		sb.WriteString("    " + fullPath + strings.Repeat(" ", padding) + posting.Amount.Commodity + " " + quantity + "\n")
	}

	sb.WriteString("\n")
}
