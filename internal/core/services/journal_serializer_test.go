package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/ptbooks/journal_backend/internal/core/domain"
	"github.com/ptbooks/journal_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalSerializer_NilJournal(t *testing.T) {
	_, err := services.NewJournalSerializer().Serialize(nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestJournalSerializer_Metadata(t *testing.T) {
	journal := domain.NewJournal("logo.png", "Example Ltd", "Annual accounts", "CHF", nil, nil, nil)

	text, err := services.NewJournalSerializer().Serialize(&journal)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Equal(t, "; logo: logo.png", lines[0])
	assert.Equal(t, "; title: Example Ltd", lines[1])
	assert.Equal(t, "; subtitle: Annual accounts", lines[2])
	assert.Equal(t, "; Currency: CHF", lines[3])
	assert.Equal(t, "", lines[4])
}

func TestJournalSerializer_AccountBlock(t *testing.T) {
	root, err := domain.NewRootAccount("1", "Assets", domain.Asset, "")
	require.NoError(t, err)
	cash, err := domain.NewChildAccount("10", "Cash", domain.Cash, "Petty cash", root)
	require.NoError(t, err)

	journal := domain.NewJournal("", "", "", "", nil, []*domain.Account{root, cash}, nil)
	text, err := services.NewJournalSerializer().Serialize(&journal)
	require.NoError(t, err)

	banner := "; " + strings.Repeat("=", 76)
	assert.Contains(t, text, banner+"\n; ACCOUNT DECLARATIONS WITH TYPE ANNOTATIONS\n"+banner)
	assert.Contains(t, text, "account 1 Assets\n  ; type:Asset\n")
	assert.Contains(t, text, "account 1 Assets:10 Cash\n  ; type:Cash\n  ; note:Petty cash\n")
}

func TestJournalSerializer_TransactionLayout(t *testing.T) {
	cash, err := domain.NewRootAccount("10", "Cash", domain.Cash, "")
	require.NoError(t, err)
	revenue, err := domain.NewRootAccount("3", "Revenue", domain.Revenue, "")
	require.NoError(t, err)

	amount1, err := domain.NewAmountFromString("CHF", "1000.00")
	require.NoError(t, err)
	amount2, err := domain.NewAmountFromString("CHF", "-1000.00")
	require.NoError(t, err)
	p1, err := domain.NewPosting(cash, amount1)
	require.NoError(t, err)
	p2, err := domain.NewPosting(revenue, amount2)
	require.NoError(t, err)

	txn, err := domain.NewTransaction(
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		domain.Cleared, "Invoice 12", "ACME-01", "tx-001",
		[]domain.Tag{domain.KeyValueTag("project", "alpha"), domain.SimpleTag("reviewed")},
		[]domain.Posting{p1, p2},
	)
	require.NoError(t, err)

	journal := domain.NewJournal("", "", "", "", nil, nil, []domain.Transaction{txn})
	text, err := services.NewJournalSerializer().Serialize(&journal)
	require.NoError(t, err)

	assert.Contains(t, text, "2024-01-15 * Invoice 12\n")
	// The external id comes before the other tags.
	assert.Contains(t, text, "Invoice 12\n    ; id:tx-001\n    ; project:alpha\n    ; :reviewed:\n")

	// Postings pad to an 80 column target before commodity and quantity.
	padding := 80 - len("10 Cash") - len("CHF") - len("1000.00")
	assert.Contains(t, text, "    10 Cash"+strings.Repeat(" ", padding)+"CHF 1000.00\n")
}

func TestJournalSerializer_KeepsDecimalScale(t *testing.T) {
	input := `commodity CHF 1000.00

2024-01-15 * Invoice 12
    1 Assets                                                         CHF 1000.00
    3 Revenue                                                       CHF -1000.00
`
	parser := services.NewJournalParser("CHF", nil)
	journal, err := parser.Parse(input)
	require.NoError(t, err)

	text, err := services.NewJournalSerializer().Serialize(&journal)
	require.NoError(t, err)

	// Trailing fractional zeros survive serialization.
	assert.Contains(t, text, "commodity CHF 1000.00\n")
	assert.Contains(t, text, "CHF 1000.00\n")
	assert.NotContains(t, text, "CHF 1000\n")

	reparsed, err := parser.Parse(text)
	require.NoError(t, err)
	require.Len(t, reparsed.Transactions, 1)
	assert.Equal(t, int32(-2), reparsed.Transactions[0].Postings[0].Amount.Quantity.Exponent())

	chf, ok := reparsed.FindCommodity("CHF")
	require.True(t, ok)
	assert.Equal(t, int32(2), chf.DecimalPlaces())
}

func TestJournalSerializer_MinimumPadding(t *testing.T) {
	long := strings.Repeat("x", 40)
	account, err := domain.NewRootAccount("1", long+" "+long, domain.Asset, "")
	require.NoError(t, err)
	other, err := domain.NewRootAccount("2", "Other", domain.Asset, "")
	require.NoError(t, err)

	amount, err := domain.NewAmountFromString("CHF", "1.00")
	require.NoError(t, err)
	p1, err := domain.NewPosting(account, amount)
	require.NoError(t, err)
	p2, err := domain.NewPosting(other, amount.Negate())
	require.NoError(t, err)

	txn, err := domain.NewTransaction(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		domain.Cleared, "Long account", "", "", nil, []domain.Posting{p1, p2},
	)
	require.NoError(t, err)

	journal := domain.NewJournal("", "", "", "", nil, nil, []domain.Transaction{txn})
	text, err := services.NewJournalSerializer().Serialize(&journal)
	require.NoError(t, err)

	// The path alone exceeds the 80 column target, so the gap clamps to 4.
	assert.Contains(t, text, "    "+account.FullPath()+"    CHF 1.00\n")
}

func TestJournal_RoundTrip(t *testing.T) {
	parser := services.NewJournalParser("CHF", nil)
	serializer := services.NewJournalSerializer()

	original, err := parser.Parse(sampleJournal)
	require.NoError(t, err)

	text, err := serializer.Serialize(&original)
	require.NoError(t, err)

	reparsed, err := parser.Parse(text)
	require.NoError(t, err)

	assert.Equal(t, original.Logo, reparsed.Logo)
	assert.Equal(t, original.Title, reparsed.Title)
	assert.Equal(t, original.Subtitle, reparsed.Subtitle)
	assert.Equal(t, original.Currency, reparsed.Currency)
	assert.Equal(t, original.Commodities, reparsed.Commodities)

	require.Len(t, reparsed.Accounts, len(original.Accounts))
	for i, account := range original.Accounts {
		assert.Equal(t, account.FullPath(), reparsed.Accounts[i].FullPath())
		assert.Equal(t, account.Type, reparsed.Accounts[i].Type)
		assert.Equal(t, account.Note, reparsed.Accounts[i].Note)
	}

	require.Len(t, reparsed.Transactions, len(original.Transactions))
	for i, txn := range original.Transactions {
		got := reparsed.Transactions[i]
		assert.Equal(t, txn.Date, got.Date)
		assert.Equal(t, txn.Status, got.Status)
		assert.Equal(t, txn.Description, got.Description)
		assert.Equal(t, txn.ExternalID, got.ExternalID)
		assert.Equal(t, txn.Tags, got.Tags)

		require.Len(t, got.Postings, len(txn.Postings))
		for j, posting := range txn.Postings {
			assert.Equal(t, posting.Account.FullPath(), got.Postings[j].Account.FullPath())
			assert.Equal(t, posting.Amount.Commodity, got.Postings[j].Amount.Commodity)
			// Quantities keep their written scale through the round trip.
			assert.Equal(t, domain.PlainString(posting.Amount.Quantity), domain.PlainString(got.Postings[j].Amount.Quantity))
		}
	}
}
