package models

// Account is the persistence model for one node of the chart of accounts.
// ParentAccountID is resolvable because accounts are saved in non-decreasing
// depth order.
type Account struct {
	AccountID       string  `json:"accountID"`       // Primary Key (UUID)
	JournalID       string  `json:"journalID"`       // FK -> journals
	Number          string  `json:"number"`          // Leading numeric token of the account's own segment
	Name            string  `json:"name"`            // Segment minus the numeric token
	FullPath        string  `json:"fullPath"`        // Colon-joined hierarchical path, unique per journal
	Type            string  `json:"type"`            // ASSET, LIABILITY, ...
	Note            *string `json:"note"`            // Nullable
	ParentAccountID *string `json:"parentAccountID"` // Nullable self-reference
	Depth           int     `json:"depth"`           // Edges to root
	AuditFields
}
