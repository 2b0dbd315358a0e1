package dto

import (
	"time"

	"github.com/ptbooks/journal_backend/internal/core/domain"
	"github.com/ptbooks/journal_backend/internal/models"
	"github.com/shopspring/decimal"
)

// UploadJournalResponse is returned after a journal file is parsed and stored.
type UploadJournalResponse struct {
	JournalID        string `json:"journalID"`
	AccountCount     int    `json:"accountCount"`
	TransactionCount int    `json:"transactionCount"`
}

// AccountResponse defines the data returned for an account declaration.
type AccountResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullPath string `json:"fullPath"`
	Type     string `json:"type"`
	Note     string `json:"note,omitempty"`
	Depth    int    `json:"depth"`
}

// BalanceResponse defines per-commodity balances of one account. Quantities
// are rendered in plain decimal form so the written scale survives the JSON
// boundary.
type BalanceResponse struct {
	Account  string            `json:"account"`
	AsOfDate string            `json:"asOfDate,omitempty"`
	Balances map[string]string `json:"balances"`
}

// ToBalanceMap renders per-commodity balances in plain decimal form.
func ToBalanceMap(balances map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(balances))
	for commodity, quantity := range balances {
		out[commodity] = domain.PlainString(quantity)
	}
	return out
}

// PostingResponse defines one posting joined to its transaction header.
type PostingResponse struct {
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	PartnerID   string    `json:"partnerID,omitempty"`
	ExternalID  string    `json:"externalID,omitempty"`
	Account     string    `json:"account"`
	Commodity   string    `json:"commodity"`
	Amount      string    `json:"amount"`
}

// TransactionResponse defines a full transaction with its postings.
type TransactionResponse struct {
	Date        time.Time         `json:"date"`
	Status      string            `json:"status"`
	Description string            `json:"description"`
	PartnerID   string            `json:"partnerID,omitempty"`
	ExternalID  string            `json:"externalID,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Postings    []PostingResponse `json:"postings"`
}

// ToAccountResponse converts a domain account to its response DTO.
func ToAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:       account.ID,
		Name:     account.Name,
		FullPath: account.FullPath(),
		Type:     string(account.Type),
		Note:     account.Note,
		Depth:    account.Depth(),
	}
}

// ToAccountResponses converts a slice of domain accounts to response DTOs.
func ToAccountResponses(accounts []*domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		responses[i] = ToAccountResponse(account)
	}
	return responses
}

// ToTransactionResponse converts a domain transaction to its response DTO.
func ToTransactionResponse(txn domain.Transaction) TransactionResponse {
	var tags map[string]string
	if len(txn.Tags) > 0 {
		tags = make(map[string]string, len(txn.Tags))
		for _, tag := range txn.Tags {
			tags[tag.Key] = tag.Value
		}
	}
	postings := make([]PostingResponse, len(txn.Postings))
	for i, posting := range txn.Postings {
		postings[i] = PostingResponse{
			Date:        txn.Date,
			Status:      string(txn.Status),
			Description: txn.Description,
			PartnerID:   txn.PartnerID,
			ExternalID:  txn.ExternalID,
			Account:     posting.Account.FullPath(),
			Commodity:   posting.Amount.Commodity,
			Amount:      domain.PlainString(posting.Amount.Quantity),
		}
	}
	return TransactionResponse{
		Date:        txn.Date,
		Status:      string(txn.Status),
		Description: txn.Description,
		PartnerID:   txn.PartnerID,
		ExternalID:  txn.ExternalID,
		Tags:        tags,
		Postings:    postings,
	}
}

// ToTransactionResponses converts a slice of domain transactions to DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(txn)
	}
	return responses
}

// EntryRowResponse defines one persisted posting row from the entry query.
type EntryRowResponse struct {
	TransactionID string    `json:"transactionID"`
	Date          time.Time `json:"date"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	PartnerID     string    `json:"partnerID,omitempty"`
	ExternalID    string    `json:"externalID,omitempty"`
	AccountPath   string    `json:"accountPath"`
	Commodity     string    `json:"commodity"`
	Amount        string    `json:"amount"`
}

// ToEntryRowResponses converts persistence entry rows to response DTOs.
func ToEntryRowResponses(rows []models.EntryRow) []EntryRowResponse {
	responses := make([]EntryRowResponse, len(rows))
	for i, row := range rows {
		responses[i] = EntryRowResponse{
			TransactionID: row.TransactionID,
			Date:          row.Date,
			Status:        row.Status,
			Description:   row.Description,
			PartnerID:     deref(row.PartnerID),
			ExternalID:    deref(row.ExternalID),
			AccountPath:   row.AccountPath,
			Commodity:     row.Commodity,
			Amount:        domain.PlainString(row.Amount),
		}
	}
	return responses
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
