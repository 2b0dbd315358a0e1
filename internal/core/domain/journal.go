package domain

// Journal is the root aggregate of one plain-text accounting journal:
// metadata, commodity declarations, the chart of accounts, and transactions.
// Its collections are copied at construction and must not be mutated.
type Journal struct {
	Logo         string        `json:"logo,omitempty"`
	Title        string        `json:"title,omitempty"`
	Subtitle     string        `json:"subtitle,omitempty"`
	Currency     string        `json:"currency"`
	Commodities  []Commodity   `json:"commodities"`
	Accounts     []*Account    `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

// NewJournal creates a journal, defensively copying its collections.
func NewJournal(logo, title, subtitle, currency string, commodities []Commodity, accounts []*Account, transactions []Transaction) Journal {
	return Journal{
		Logo:         logo,
		Title:        title,
		Subtitle:     subtitle,
		Currency:     currency,
		Commodities:  append([]Commodity(nil), commodities...),
		Accounts:     append([]*Account(nil), accounts...),
		Transactions: append([]Transaction(nil), transactions...),
	}
}

// FindCommodity looks up a commodity declaration by code.
func (j Journal) FindCommodity(code string) (Commodity, bool) {
	for _, c := range j.Commodities {
		if c.Code == code {
			return c, true
		}
	}
	return Commodity{}, false
}

// FindAccountByPath looks up an account by its full hierarchical path.
func (j Journal) FindAccountByPath(fullPath string) (*Account, bool) {
	for _, a := range j.Accounts {
		if a.FullPath() == fullPath {
			return a, true
		}
	}
	return nil, false
}

// FindAccountByID looks up an account by its numeric id.
func (j Journal) FindAccountByID(id string) (*Account, bool) {
	for _, a := range j.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// FindTransactionByExternalID looks up a transaction by its external id.
func (j Journal) FindTransactionByExternalID(id string) (Transaction, bool) {
	for _, t := range j.Transactions {
		if t.ExternalID == id && id != "" {
			return t, true
		}
	}
	return Transaction{}, false
}
