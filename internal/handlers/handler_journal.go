package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/ptbooks/journal_backend/internal/core/domain"
	portsrepo "github.com/ptbooks/journal_backend/internal/core/ports/repositories"
	"github.com/ptbooks/journal_backend/internal/core/services"
	"github.com/ptbooks/journal_backend/internal/dto"
	"github.com/ptbooks/journal_backend/internal/middleware"
)

const dateLayout = "2006-01-02"

// parseStatusParam maps a status query parameter to a transaction status.
// It accepts the status names case-insensitively as well as the bare
// source-text markers.
func parseStatusParam(value string) (domain.TransactionStatus, bool) {
	switch strings.ToUpper(value) {
	case "*", string(domain.Cleared):
		return domain.Cleared, true
	case "!", string(domain.Pending):
		return domain.Pending, true
	case string(domain.Uncleared):
		return domain.Uncleared, true
	default:
		return "", false
	}
}

// journalHandler handles HTTP requests for journal files. It keeps the most
// recently uploaded journal in memory for the read endpoints; persisted data
// is reached through the persistence service.
type journalHandler struct {
	parser      *services.JournalParser
	serializer  *services.JournalSerializer
	journalSvc  *services.JournalService
	persistence *services.JournalPersistenceService

	mu      sync.RWMutex
	current *domain.Journal
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(
	parser *services.JournalParser,
	serializer *services.JournalSerializer,
	journalSvc *services.JournalService,
	persistence *services.JournalPersistenceService,
) *journalHandler {
	return &journalHandler{
		parser:      parser,
		serializer:  serializer,
		journalSvc:  journalSvc,
		persistence: persistence,
	}
}

func (h *journalHandler) currentJournal() *domain.Journal {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// uploadJournal parses a plain-text journal file from the request body,
// persists the model and keeps it in memory for the read endpoints.
func (h *journalHandler) uploadJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Error("Failed to read journal upload body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	journal, err := h.parser.Parse(string(body))
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyInput) || errors.Is(err, apperrors.ErrMalformedAmount) || errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Rejected journal upload", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to parse journal upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse journal"})
		return
	}

	journalID, err := h.persistence.PersistJournal(c.Request.Context(), &journal)
	if err != nil {
		logger.Error("Failed to persist journal", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist journal"})
		return
	}

	h.mu.Lock()
	h.current = &journal
	h.mu.Unlock()

	logger.Info("Journal uploaded",
		slog.String("journal_id", journalID),
		slog.Int("accounts", len(journal.Accounts)),
		slog.Int("transactions", len(journal.Transactions)))

	c.JSON(http.StatusOK, dto.UploadJournalResponse{
		JournalID:        journalID,
		AccountCount:     len(journal.Accounts),
		TransactionCount: len(journal.Transactions),
	})
}

// journalText serializes the in-memory journal back to its text form.
func (h *journalHandler) journalText(c *gin.Context) {
	journal := h.currentJournal()
	if journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No journal loaded"})
		return
	}

	text, err := h.serializer.Serialize(journal)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to serialize journal", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize journal"})
		return
	}

	c.String(http.StatusOK, text)
}

// listAccounts returns the declared and auto-created accounts of the
// in-memory journal.
func (h *journalHandler) listAccounts(c *gin.Context) {
	journal := h.currentJournal()
	if journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No journal loaded"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(journal.Accounts))
}

type balanceQuery struct {
	Account  string `form:"account" binding:"required"`
	AsOfDate string `form:"asOfDate"`
}

// accountBalance returns per-commodity balances of one account, optionally
// as of a date (inclusive).
func (h *journalHandler) accountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	journal := h.currentJournal()
	if journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No journal loaded"})
		return
	}

	var query balanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			logger.Warn("Invalid balance query", slog.String("error", validationErrs.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "account query parameter is required"})
			return
		}
		logger.Warn("Invalid balance query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	asOf := time.Now()
	if query.AsOfDate != "" {
		parsed, err := time.Parse(dateLayout, query.AsOfDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOfDate must be formatted as YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	balances, err := h.journalSvc.AccountBalanceByPath(journal, query.Account, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to compute account balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Account:  query.Account,
		AsOfDate: query.AsOfDate,
		Balances: dto.ToBalanceMap(balances),
	})
}

// allBalances returns per-commodity balances for every account that has
// postings, optionally as of a date (inclusive).
func (h *journalHandler) allBalances(c *gin.Context) {
	journal := h.currentJournal()
	if journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No journal loaded"})
		return
	}

	asOf := time.Now()
	if raw := c.Query("asOfDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOfDate must be formatted as YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	balances, err := h.journalSvc.AllAccountBalances(journal, asOf)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to compute balances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balances"})
		return
	}

	responses := make([]dto.BalanceResponse, 0, len(balances))
	for path, perCommodity := range balances {
		responses = append(responses, dto.BalanceResponse{Account: path, Balances: dto.ToBalanceMap(perCommodity)})
	}
	c.JSON(http.StatusOK, responses)
}

type postingsQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Account   string `form:"account"`
	Status    string `form:"status"`
}

// listPostings filters the in-memory journal's transactions. Both startDate
// and endDate are inclusive here.
func (h *journalHandler) listPostings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	journal := h.currentJournal()
	if journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No journal loaded"})
		return
	}

	var query postingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid postings query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	filter := services.All()
	if query.StartDate != "" {
		start, err := time.Parse(dateLayout, query.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be formatted as YYYY-MM-DD"})
			return
		}
		filter = filter.And(services.OnOrAfter(start))
	}
	if query.EndDate != "" {
		end, err := time.Parse(dateLayout, query.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be formatted as YYYY-MM-DD"})
			return
		}
		filter = filter.And(services.OnOrBefore(end))
	}
	if query.Account != "" {
		account, ok := journal.FindAccountByPath(query.Account)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		filter = filter.And(services.AffectingAccount(account))
	}
	if query.Status != "" {
		status, ok := parseStatusParam(query.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of CLEARED, PENDING, UNCLEARED"})
			return
		}
		filter = filter.And(services.WithStatus(status))
	}

	txns, err := h.journalSvc.FilterTransactions(journal, filter)
	if err != nil {
		logger.Error("Failed to filter transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to filter transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponses(txns))
}

// listUnbalanced returns transactions whose per-commodity posting sums are
// not zero.
func (h *journalHandler) listUnbalanced(c *gin.Context) {
	journal := h.currentJournal()
	if journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No journal loaded"})
		return
	}

	txns, err := h.journalSvc.UnbalancedTransactions(journal)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to check balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponses(txns))
}

type entriesQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	PartnerID string `form:"partnerID"`
	Status    string `form:"status"`
}

// listEntries queries persisted posting rows of a journal. Unlike the
// in-memory postings endpoint, endDate is exclusive here.
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	var query entriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid entries query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	entryQuery := portsrepo.EntryQuery{}
	if query.StartDate != "" {
		start, err := time.Parse(dateLayout, query.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be formatted as YYYY-MM-DD"})
			return
		}
		entryQuery.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := time.Parse(dateLayout, query.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be formatted as YYYY-MM-DD"})
			return
		}
		entryQuery.EndDate = &end
	}
	if query.PartnerID != "" {
		entryQuery.PartnerID = &query.PartnerID
	}
	if query.Status != "" {
		status, ok := parseStatusParam(query.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of CLEARED, PENDING, UNCLEARED"})
			return
		}
		statusValue := string(status)
		entryQuery.Status = &statusValue
	}

	rows, err := h.persistence.QueryEntries(c.Request.Context(), journalID, entryQuery)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to query entries", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query entries"})
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryRowResponses(rows))
}

// deleteJournal removes a persisted journal and everything hanging off it.
func (h *journalHandler) deleteJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	if err := h.persistence.DeleteJournal(c.Request.Context(), journalID); err != nil {
		if errors.Is(err, apperrors.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
			return
		}
		logger.Error("Failed to delete journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete journal"})
		return
	}

	logger.Info("Journal deleted", slog.String("journal_id", journalID))
	c.Status(http.StatusNoContent)
}

// registerJournalRoutes registers journal specific routes.
func registerJournalRoutes(group *gin.RouterGroup, deps *Dependencies) {
	parser := services.NewJournalParser(deps.DefaultCurrency, deps.Logger)
	serializer := services.NewJournalSerializer()
	journalSvc := services.NewJournalService()
	persistence := services.NewJournalPersistenceService(deps.Repo, deps.Logger)

	h := newJournalHandler(parser, serializer, journalSvc, persistence)

	journal := group.Group("/journal")
	journal.POST("/upload", h.uploadJournal)
	journal.GET("/text", h.journalText)
	journal.GET("/accounts", h.listAccounts)
	journal.GET("/balance", h.accountBalance)
	journal.GET("/balances", h.allBalances)
	journal.GET("/postings", h.listPostings)
	journal.GET("/unbalanced", h.listUnbalanced)

	journals := group.Group("/journals")
	journals.GET("/:journalID/entries", h.listEntries)
	journals.DELETE("/:journalID", h.deleteJournal)
}
