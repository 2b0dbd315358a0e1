package mapping

import (
	"time"

	"github.com/google/uuid"
	"github.com/ptbooks/journal_backend/internal/core/domain"
	"github.com/ptbooks/journal_backend/internal/models"
)

// ToJournalModel converts a domain journal's metadata into its persistence
// row. Commodity precisions are stored in plain decimal form so the declared
// scale survives.
func ToJournalModel(journal *domain.Journal, now time.Time) models.Journal {
	commodities := make(map[string]string, len(journal.Commodities))
	for _, c := range journal.Commodities {
		commodities[c.Code] = domain.PlainString(c.DisplayPrecision)
	}
	return models.Journal{
		JournalID:   uuid.NewString(),
		Logo:        optional(journal.Logo),
		Title:       optional(journal.Title),
		Subtitle:    optional(journal.Subtitle),
		Currency:    journal.Currency,
		Commodities: commodities,
		AuditFields: models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

// ToAccountModel converts a domain account into its persistence row.
// parentAccountID is nil for roots and for children whose parent has not
// been saved (which cannot happen when accounts are saved in depth order).
func ToAccountModel(account *domain.Account, journalID string, parentAccountID *string, now time.Time) models.Account {
	return models.Account{
		AccountID:       uuid.NewString(),
		JournalID:       journalID,
		Number:          account.ID,
		Name:            account.Name,
		FullPath:        account.FullPath(),
		Type:            string(account.Type),
		Note:            optional(account.Note),
		ParentAccountID: parentAccountID,
		Depth:           account.Depth(),
		AuditFields:     models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

// ToTransactionModel converts a domain transaction with its postings and
// tags into persistence rows. accountIDs maps account full path to the saved
// account row id.
func ToTransactionModel(txn domain.Transaction, journalID string, accountIDs map[string]string, now time.Time) (models.Transaction, []models.Entry, []models.Tag) {
	row := models.Transaction{
		TransactionID: uuid.NewString(),
		JournalID:     journalID,
		Date:          txn.Date,
		Status:        string(txn.Status),
		Description:   txn.Description,
		PartnerID:     optional(txn.PartnerID),
		ExternalID:    optional(txn.ExternalID),
		AuditFields:   models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	entries := make([]models.Entry, 0, len(txn.Postings))
	for i, posting := range txn.Postings {
		entries = append(entries, models.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: row.TransactionID,
			AccountID:     accountIDs[posting.Account.FullPath()],
			Commodity:     posting.Amount.Commodity,
			Amount:        posting.Amount.Quantity,
			Note:          optional(posting.Note),
			EntryOrder:    i,
		})
	}

	tags := make([]models.Tag, 0, len(txn.Tags))
	for _, tag := range txn.Tags {
		tags = append(tags, models.Tag{
			TagID:         uuid.NewString(),
			TransactionID: row.TransactionID,
			Key:           tag.Key,
			Value:         optional(tag.Value),
		})
	}

	return row, entries, tags
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
