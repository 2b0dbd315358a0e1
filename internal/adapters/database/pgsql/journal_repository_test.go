package pgsql

import (
	"testing"
	"time"

	portsrepo "github.com/ptbooks/journal_backend/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEntriesQuery_NoFilters(t *testing.T) {
	sql, args := buildEntriesQuery("journal-1", portsrepo.EntryQuery{})

	assert.Contains(t, sql, "WHERE t.journal_id = $1")
	assert.NotContains(t, sql, "transaction_date")
	assert.Contains(t, sql, "ORDER BY t.transaction_date DESC, t.transaction_id, e.entry_order")
	assert.Equal(t, []any{"journal-1"}, args)
}

func TestBuildEntriesQuery_EndDateExclusive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	sql, args := buildEntriesQuery("journal-1", portsrepo.EntryQuery{
		StartDate: &start,
		EndDate:   &end,
	})

	// The start date is inclusive, the end date strictly exclusive: a row
	// dated exactly on the end date must not match.
	assert.Contains(t, sql, "t.transaction_date >= $2")
	assert.Contains(t, sql, "t.transaction_date < $3")
	assert.NotContains(t, sql, "t.transaction_date <= $3")

	require.Len(t, args, 3)
	assert.Equal(t, start, args[1])
	assert.Equal(t, end, args[2])
}

func TestBuildEntriesQuery_AllFilters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	partner := "ACME-01"
	status := "CLEARED"

	sql, args := buildEntriesQuery("journal-1", portsrepo.EntryQuery{
		StartDate:  &start,
		EndDate:    &end,
		PartnerID:  &partner,
		Status:     &status,
		AccountIDs: []string{"a1", "a2"},
	})

	assert.Contains(t, sql, "t.partner_id = $4")
	assert.Contains(t, sql, "t.status = $5")
	assert.Contains(t, sql, "e.account_id = ANY($6)")
	require.Len(t, args, 6)
	assert.Equal(t, []string{"a1", "a2"}, args[5])
}
