package services

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/ptbooks/journal_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	metadataPattern    = regexp.MustCompile(`^;\s*([^:]+):\s*(.*)$`)
	commodityPattern   = regexp.MustCompile(`^commodity\s+(\S+)\s+(\S+)$`)
	accountPattern     = regexp.MustCompile(`^account\s+(.+)$`)
	transactionPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+([*!]?)\s*(.+)$`)
	postingPattern     = regexp.MustCompile(`^\s{4}(.+?)\s{2,}(\S+)\s+(-?\S+)$`)
	ellipsisPattern    = regexp.MustCompile(`^\s{4}\.\.\.$`)
	accountNumber      = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

const dateLayout = "2006-01-02"

// JournalParser converts journal file content into a domain.Journal.
// Parsing is single-pass and line-oriented with one line of look-ahead to
// attach comment metadata to the preceding declaration.
type JournalParser struct {
	defaultCurrency string
	logger          *slog.Logger
}

// NewJournalParser creates a parser. defaultCurrency is used when the input
// declares no `; Currency:` metadata.
func NewJournalParser(defaultCurrency string, logger *slog.Logger) *JournalParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalParser{defaultCurrency: defaultCurrency, logger: logger}
}

// lineCursor walks the input line by line. peek exposes the one-line
// look-ahead the grammar needs for comment metadata and posting blocks.
type lineCursor struct {
	lines []string
	pos   int
}

func newLineCursor(content string) *lineCursor {
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return &lineCursor{lines: lines}
}

func (c *lineCursor) hasNext() bool      { return c.pos < len(c.lines) }
func (c *lineCursor) next() string       { line := c.lines[c.pos]; c.pos++; return line }
func (c *lineCursor) peek() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

// Parse converts journal text into a Journal. It fails on blank input and on
// malformed decimal tokens; individual junk lines are skipped.
func (p *JournalParser) Parse(content string) (domain.Journal, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Journal{}, apperrors.ErrEmptyInput
	}

	var logo, title, subtitle, currency string
	var commodities []domain.Commodity
	var accounts []*domain.Account
	accountMap := make(map[string]*domain.Account)
	var transactions []domain.Transaction

	cursor := newLineCursor(content)
	for cursor.hasNext() {
		line := cursor.next()
		trimmed := strings.TrimSpace(line)

		// Blank lines and separator banners carry no information.
		if trimmed == "" || strings.HasPrefix(trimmed, "; ====") {
			continue
		}

		if strings.HasPrefix(trimmed, ";") {
			if m := metadataPattern.FindStringSubmatch(trimmed); m != nil {
				key := strings.TrimSpace(m[1])
				value := strings.TrimSpace(m[2])
				switch strings.ToLower(key) {
				case "logo":
					logo = value
				case "title":
					title = value
				case "subtitle":
					subtitle = value
				case "currency":
					currency = value
				}
			}
			continue
		}

		if m := commodityPattern.FindStringSubmatch(trimmed); m != nil {
			precision, err := decimal.NewFromString(m[2])
			if err != nil {
				return domain.Journal{}, fmt.Errorf("%w: commodity precision %q", apperrors.ErrMalformedAmount, m[2])
			}
			commodity, err := domain.NewCommodity(m[1], precision)
			if err != nil {
				return domain.Journal{}, err
			}
			commodities = append(commodities, commodity)
			continue
		}

		if m := accountPattern.FindStringSubmatch(trimmed); m != nil {
			if err := p.parseAccountDecl(cursor, m[1], accountMap, &accounts); err != nil {
				return domain.Journal{}, err
			}
			continue
		}

		if m := transactionPattern.FindStringSubmatch(trimmed); m != nil {
			txn, ok, err := p.parseTransaction(cursor, m, accountMap, &accounts)
			if err != nil {
				return domain.Journal{}, err
			}
			if ok {
				transactions = append(transactions, txn)
			}
			continue
		}

		// Any other non-empty line is ignored.
	}

	if currency == "" {
		currency = p.defaultCurrency
	}

	return domain.NewJournal(logo, title, subtitle, currency, commodities, accounts, transactions), nil
}

// parseAccountDecl consumes the `; type:` / `; note:` look-ahead lines of an
// account declaration and registers the account under its full path.
// A redeclaration of an already known path keeps the first account.
func (p *JournalParser) parseAccountDecl(cursor *lineCursor, fullPath string, accountMap map[string]*domain.Account, accounts *[]*domain.Account) error {
	accountType := domain.Asset
	note := ""

	for {
		peeked, ok := cursor.peek()
		if !ok || !strings.HasPrefix(strings.TrimSpace(peeked), ";") {
			break
		}
		meta := strings.TrimSpace(cursor.next())
		if m := metadataPattern.FindStringSubmatch(meta); m != nil {
			key := strings.TrimSpace(m[1])
			value := strings.TrimSpace(m[2])
			switch strings.ToLower(key) {
			case "type":
				accountType = domain.ParseAccountType(value)
			case "note":
				note = value
			}
		}
	}

	if _, exists := accountMap[fullPath]; exists {
		p.logger.Warn("duplicate account declaration ignored", slog.String("path", fullPath))
		return nil
	}

	parent := accountMap[parentPath(fullPath)]
	var account *domain.Account
	var err error
	if parent == nil {
		account, err = domain.NewRootAccount(extractAccountID(fullPath), extractAccountName(fullPath), accountType, note)
	} else {
		account, err = domain.NewChildAccount(extractAccountID(fullPath), extractAccountName(fullPath), accountType, note, parent)
	}
	if err != nil {
		return err
	}
	accountMap[fullPath] = account
	*accounts = append(*accounts, account)
	return nil
}

// parseTransaction consumes the tag look-ahead lines and the posting block of
// a transaction. It returns ok=false when the block yields fewer than two
// postings; such transactions are dropped.
func (p *JournalParser) parseTransaction(cursor *lineCursor, header []string, accountMap map[string]*domain.Account, accounts *[]*domain.Account) (domain.Transaction, bool, error) {
	date, err := time.Parse(dateLayout, header[1])
	if err != nil {
		return domain.Transaction{}, false, fmt.Errorf("%w: transaction date %q", apperrors.ErrValidation, header[1])
	}
	status := domain.ParseTransactionStatus(header[2])

	// The pre-pipe segment names the partner; its first token is the id.
	partnerID := ""
	description := header[3]
	if strings.Contains(description, "|") {
		parts := strings.SplitN(description, "|", 2)
		partnerPart := strings.TrimSpace(parts[0])
		description = strings.TrimSpace(parts[1])
		if partnerPart != "" {
			partnerID = strings.Fields(partnerPart)[0]
		}
	}

	var tags []domain.Tag
	externalID := ""
	for {
		peeked, ok := cursor.peek()
		if !ok || !strings.HasPrefix(strings.TrimSpace(peeked), ";") {
			break
		}
		tagLine := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cursor.next()), ";"))
		for _, tagPart := range strings.Split(tagLine, ",") {
			tagPart = strings.TrimSpace(tagPart)
			if tagPart == "" {
				continue
			}
			if strings.HasPrefix(tagPart, ":") && strings.HasSuffix(tagPart, ":") && len(tagPart) > 1 {
				tags = append(tags, domain.SimpleTag(tagPart[1:len(tagPart)-1]))
				continue
			}
			if m := metadataPattern.FindStringSubmatch(";" + tagPart); m != nil {
				key := strings.TrimSpace(m[1])
				value := strings.TrimSpace(m[2])
				if strings.EqualFold(key, "id") {
					externalID = value
					continue
				}
				tags = append(tags, domain.KeyValueTag(key, value))
			}
		}
	}

	var postings []domain.Posting
	for {
		postingLine, ok := cursor.peek()
		if !ok {
			break
		}
		if ellipsisPattern.MatchString(postingLine) {
			cursor.next()
			continue
		}
		m := postingPattern.FindStringSubmatch(postingLine)
		if m == nil {
			break
		}
		cursor.next()

		path := strings.TrimSpace(m[1])
		account := accountMap[path]
		if account == nil {
			account, err = p.createAccount(path, accountMap, accounts)
			if err != nil {
				return domain.Transaction{}, false, err
			}
		}
		amount, err := domain.NewAmountFromString(m[2], m[3])
		if err != nil {
			return domain.Transaction{}, false, err
		}
		posting, err := domain.NewPosting(account, amount)
		if err != nil {
			return domain.Transaction{}, false, err
		}
		postings = append(postings, posting)
	}

	if len(postings) < 2 {
		p.logger.Warn("dropping transaction with fewer than 2 postings",
			slog.String("date", header[1]),
			slog.String("description", description),
			slog.Int("postings", len(postings)))
		return domain.Transaction{}, false, nil
	}

	txn, err := domain.NewTransaction(date, status, description, partnerID, externalID, tags, postings)
	if err != nil {
		return domain.Transaction{}, false, err
	}
	return txn, true, nil
}

// createAccount auto-creates an undeclared account referenced by a posting,
// recursively creating any missing ancestors as ASSET accounts.
func (p *JournalParser) createAccount(fullPath string, accountMap map[string]*domain.Account, accounts *[]*domain.Account) (*domain.Account, error) {
	parentFull := parentPath(fullPath)
	var parent *domain.Account
	if parentFull != "" {
		parent = accountMap[parentFull]
		if parent == nil {
			var err error
			parent, err = p.createAccount(parentFull, accountMap, accounts)
			if err != nil {
				return nil, err
			}
		}
	}

	var account *domain.Account
	var err error
	if parent == nil {
		account, err = domain.NewRootAccount(extractAccountID(fullPath), extractAccountName(fullPath), domain.Asset, "")
	} else {
		account, err = domain.NewChildAccount(extractAccountID(fullPath), extractAccountName(fullPath), domain.Asset, "", parent)
	}
	if err != nil {
		return nil, err
	}
	accountMap[fullPath] = account
	*accounts = append(*accounts, account)
	return account, nil
}

// lastSegment returns the account's own "<id> <name>" segment of a path.
func lastSegment(fullPath string) string {
	if idx := strings.LastIndex(fullPath, ":"); idx > 0 {
		return fullPath[idx+1:]
	}
	return fullPath
}

// splitSegment splits a path segment into its first whitespace-separated
// token and the remainder.
func splitSegment(segment string) (string, string) {
	fields := strings.SplitN(segment, " ", 2)
	if len(fields) < 2 {
		return segment, ""
	}
	return fields[0], strings.TrimSpace(fields[1])
}

// extractAccountID returns the leading numeric token of the path's last
// segment, or "0" when the segment has no numeric prefix.
// "2 Liabilities:220 Other:2210.001 Person" yields "2210.001".
func extractAccountID(fullPath string) string {
	first, _ := splitSegment(lastSegment(fullPath))
	if accountNumber.MatchString(first) {
		return first
	}
	return "0"
}

// extractAccountName returns the last segment minus its leading numeric
// token. "1 Assets:10 Cash:100 Bank" yields "Bank".
func extractAccountName(fullPath string) string {
	segment := lastSegment(fullPath)
	first, rest := splitSegment(segment)
	if rest != "" && accountNumber.MatchString(first) {
		return rest
	}
	return segment
}

// parentPath strips the last colon-separated segment; "" for root paths.
func parentPath(fullPath string) string {
	if idx := strings.LastIndex(fullPath, ":"); idx > 0 {
		return fullPath[:idx]
	}
	return ""
}
