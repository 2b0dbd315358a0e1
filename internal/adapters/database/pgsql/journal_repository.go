package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptbooks/journal_backend/internal/apperrors"
	portsrepo "github.com/ptbooks/journal_backend/internal/core/ports/repositories"
	"github.com/ptbooks/journal_backend/internal/models"
)

type PgxJournalRepository struct {
	pool *pgxpool.Pool
}

// NewPgxJournalRepository creates a repository for journal, account and
// transaction data.
func NewPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepository {
	return &PgxJournalRepository{pool: pool}
}

// SaveJournalMetadata upserts journal metadata together with its commodity
// declarations and returns the journal id.
func (r *PgxJournalRepository) SaveJournalMetadata(ctx context.Context, journal models.Journal) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore rollback error
	}()

	journalQuery := `
		INSERT INTO journals (journal_id, logo, title, subtitle, currency, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (journal_id) DO UPDATE
		SET logo = EXCLUDED.logo, title = EXCLUDED.title, subtitle = EXCLUDED.subtitle,
		    currency = EXCLUDED.currency, last_updated_at = EXCLUDED.last_updated_at;
	`
	_, err = tx.Exec(ctx, journalQuery,
		journal.JournalID,
		journal.Logo,
		journal.Title,
		journal.Subtitle,
		journal.Currency,
		journal.CreatedAt,
		journal.LastUpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert journal %s: %w", journal.JournalID, err)
	}

	batch := &pgx.Batch{}
	commodityQuery := `
		INSERT INTO commodities (journal_id, code, display_precision)
		VALUES ($1, $2, $3)
		ON CONFLICT (journal_id, code) DO UPDATE SET display_precision = EXCLUDED.display_precision;
	`
	for code, precision := range journal.Commodities {
		batch.Queue(commodityQuery, journal.JournalID, code, precision)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("failed to insert commodities for journal %s: %w", journal.JournalID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit journal %s: %w", journal.JournalID, err)
	}
	return journal.JournalID, nil
}

// SaveAccount stores a single account row and returns its id.
func (r *PgxJournalRepository) SaveAccount(ctx context.Context, account models.Account) (string, error) {
	query := `
		INSERT INTO accounts (account_id, journal_id, account_number, account_name, full_path, account_type, note, parent_account_id, depth, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.JournalID,
		account.Number,
		account.Name,
		account.FullPath,
		account.Type,
		account.Note,
		account.ParentAccountID,
		account.Depth,
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert account %s: %w", account.FullPath, err)
	}
	return account.AccountID, nil
}

// SaveTransaction stores a transaction header with its entries and tags
// inside one database transaction.
func (r *PgxJournalRepository) SaveTransaction(ctx context.Context, txn models.Transaction, entries []models.Entry, tags []models.Tag) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txnQuery := `
		INSERT INTO transactions (transaction_id, journal_id, transaction_date, status, description, partner_id, external_id, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, txnQuery,
		txn.TransactionID,
		txn.JournalID,
		txn.Date,
		txn.Status,
		txn.Description,
		txn.PartnerID,
		txn.ExternalID,
		txn.CreatedAt,
		txn.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	batch := &pgx.Batch{}
	entryQuery := `
		INSERT INTO entries (entry_id, transaction_id, account_id, commodity, amount, note, entry_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, entry := range entries {
		batch.Queue(entryQuery,
			entry.EntryID,
			entry.TransactionID,
			entry.AccountID,
			entry.Commodity,
			entry.Amount,
			entry.Note,
			entry.EntryOrder,
		)
	}
	tagQuery := `
		INSERT INTO tags (tag_id, transaction_id, tag_key, tag_value)
		VALUES ($1, $2, $3, $4);
	`
	for _, tag := range tags {
		batch.Queue(tagQuery, tag.TagID, tag.TransactionID, tag.Key, tag.Value)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to execute entry batch for transaction %s: %w", txn.TransactionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// FindJournalByID retrieves journal metadata, including its commodities.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*models.Journal, error) {
	query := `
		SELECT journal_id, logo, title, subtitle, currency, created_at, last_updated_at
		FROM journals
		WHERE journal_id = $1;
	`
	var journal models.Journal
	err := r.pool.QueryRow(ctx, query, journalID).Scan(
		&journal.JournalID,
		&journal.Logo,
		&journal.Title,
		&journal.Subtitle,
		&journal.Currency,
		&journal.CreatedAt,
		&journal.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}

	journal.Commodities = make(map[string]string)
	rows, err := r.pool.Query(ctx,
		`SELECT code, display_precision FROM commodities WHERE journal_id = $1 ORDER BY code;`, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query commodities for journal %s: %w", journalID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var code, precision string
		if err := rows.Scan(&code, &precision); err != nil {
			return nil, fmt.Errorf("failed to scan commodity row for journal %s: %w", journalID, err)
		}
		journal.Commodities[code] = precision
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commodity rows for journal %s: %w", journalID, err)
	}

	return &journal, nil
}

// buildEntriesQuery renders the entry query SQL with positional arguments.
// The start date is inclusive and the end date exclusive.
func buildEntriesQuery(journalID string, query portsrepo.EntryQuery) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT e.entry_id, t.transaction_id, t.transaction_date, t.status, t.description, t.partner_id, t.external_id,
		       e.account_id, a.full_path, e.commodity, e.amount, e.entry_order
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		JOIN accounts a ON a.account_id = e.account_id
		WHERE t.journal_id = $1`)
	args := []any{journalID}

	if query.StartDate != nil {
		args = append(args, *query.StartDate)
		fmt.Fprintf(&sb, " AND t.transaction_date >= $%d", len(args))
	}
	if query.EndDate != nil {
		args = append(args, *query.EndDate)
		fmt.Fprintf(&sb, " AND t.transaction_date < $%d", len(args))
	}
	if query.PartnerID != nil {
		args = append(args, *query.PartnerID)
		fmt.Fprintf(&sb, " AND t.partner_id = $%d", len(args))
	}
	if query.Status != nil {
		args = append(args, *query.Status)
		fmt.Fprintf(&sb, " AND t.status = $%d", len(args))
	}
	if len(query.AccountIDs) > 0 {
		args = append(args, query.AccountIDs)
		fmt.Fprintf(&sb, " AND e.account_id = ANY($%d)", len(args))
	}
	sb.WriteString(" ORDER BY t.transaction_date DESC, t.transaction_id, e.entry_order;")

	return sb.String(), args
}

// QueryEntriesWithFilters returns entry rows joined to their transactions.
// The start date is inclusive and the end date exclusive; results are ordered
// by date descending, then transaction id, then entry order.
func (r *PgxJournalRepository) QueryEntriesWithFilters(ctx context.Context, journalID string, query portsrepo.EntryQuery) ([]models.EntryRow, error) {
	sql, args := buildEntriesQuery(journalID, query)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for journal %s: %w", journalID, err)
	}
	defer rows.Close()

	entries := []models.EntryRow{}
	for rows.Next() {
		var row models.EntryRow
		if err := rows.Scan(
			&row.EntryID,
			&row.TransactionID,
			&row.Date,
			&row.Status,
			&row.Description,
			&row.PartnerID,
			&row.ExternalID,
			&row.AccountID,
			&row.AccountPath,
			&row.Commodity,
			&row.Amount,
			&row.EntryOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry row for journal %s: %w", journalID, err)
		}
		entries = append(entries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows for journal %s: %w", journalID, err)
	}

	return entries, nil
}

// DeleteJournal removes a journal and everything hanging off it.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, journalID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	statements := []string{
		`DELETE FROM entries e USING transactions t WHERE e.transaction_id = t.transaction_id AND t.journal_id = $1;`,
		`DELETE FROM tags g USING transactions t WHERE g.transaction_id = t.transaction_id AND t.journal_id = $1;`,
		`DELETE FROM transactions WHERE journal_id = $1;`,
		`DELETE FROM accounts WHERE journal_id = $1;`,
		`DELETE FROM commodities WHERE journal_id = $1;`,
		`DELETE FROM journals WHERE journal_id = $1;`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, journalID); err != nil {
			return fmt.Errorf("failed to delete journal %s: %w", journalID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete of journal %s: %w", journalID, err)
	}
	return nil
}
