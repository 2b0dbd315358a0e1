package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	portsrepo "github.com/ptbooks/journal_backend/internal/core/ports/repositories"
	"github.com/ptbooks/journal_backend/internal/dto"
	"github.com/ptbooks/journal_backend/internal/handlers"
	"github.com/ptbooks/journal_backend/internal/models"
	"github.com/ptbooks/journal_backend/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepository = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveJournalMetadata(ctx context.Context, journal models.Journal) (string, error) {
	args := m.Called(ctx, journal)
	return args.String(0), args.Error(1)
}

func (m *MockJournalRepository) SaveAccount(ctx context.Context, account models.Account) (string, error) {
	args := m.Called(ctx, account)
	return uuid.NewString(), args.Error(1)
}

func (m *MockJournalRepository) SaveTransaction(ctx context.Context, txn models.Transaction, entries []models.Entry, tags []models.Tag) error {
	args := m.Called(ctx, txn, entries, tags)
	return args.Error(0)
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*models.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Journal), args.Error(1)
}

func (m *MockJournalRepository) QueryEntriesWithFilters(ctx context.Context, journalID string, query portsrepo.EntryQuery) ([]models.EntryRow, error) {
	args := m.Called(ctx, journalID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EntryRow), args.Error(1)
}

func (m *MockJournalRepository) DeleteJournal(ctx context.Context, journalID string) error {
	args := m.Called(ctx, journalID)
	return args.Error(0)
}

const uploadBody = `; title: Handler fixture
; Currency: CHF

account 1 Assets
  ; type:Asset
account 1 Assets:10 Cash
  ; type:Cash
account 3 Revenue
  ; type:Revenue

2024-01-15 * Invoice 12
    1 Assets:10 Cash                                                  CHF 100.00
    3 Revenue                                                        CHF -100.00
`

func newTestRouter(repo portsrepo.JournalRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers.RegisterRoutes(r, &config.Config{}, &handlers.Dependencies{
		Repo:            repo,
		DefaultCurrency: "CHF",
	})
	return r
}

func uploadFixture(t *testing.T, r *gin.Engine) dto.UploadJournalResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/journal/upload", strings.NewReader(uploadBody))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.UploadJournalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newUploadedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repo := new(MockJournalRepository)
	repo.On("SaveJournalMetadata", mock.Anything, mock.Anything).Return("journal-1", nil)
	repo.On("SaveAccount", mock.Anything, mock.Anything).Return("", nil)
	repo.On("SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	r := newTestRouter(repo)
	uploadFixture(t, r)
	return r
}

func TestUploadJournal(t *testing.T) {
	repo := new(MockJournalRepository)
	repo.On("SaveJournalMetadata", mock.Anything, mock.Anything).Return("journal-1", nil)
	repo.On("SaveAccount", mock.Anything, mock.Anything).Return("", nil)
	repo.On("SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	r := newTestRouter(repo)
	resp := uploadFixture(t, r)

	assert.Equal(t, "journal-1", resp.JournalID)
	assert.Equal(t, 3, resp.AccountCount)
	assert.Equal(t, 1, resp.TransactionCount)
	repo.AssertExpectations(t)
}

func TestUploadJournal_EmptyBody(t *testing.T) {
	r := newTestRouter(new(MockJournalRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/journal/upload", strings.NewReader("   "))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJournalText_RoundTrips(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/text", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "; title: Handler fixture")
	assert.Contains(t, w.Body.String(), "account 1 Assets:10 Cash")
	assert.Contains(t, w.Body.String(), "2024-01-15 * Invoice 12")
}

func TestJournalText_NoJournalLoaded(t *testing.T) {
	r := newTestRouter(new(MockJournalRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/text", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAccounts(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/accounts", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var accounts []dto.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accounts))
	require.Len(t, accounts, 3)
	assert.Equal(t, "1 Assets", accounts[0].FullPath)
	assert.Equal(t, "1 Assets:10 Cash", accounts[1].FullPath)
	assert.Equal(t, "CASH", accounts[1].Type)
	assert.Equal(t, 1, accounts[1].Depth)
}

func TestAccountBalance(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/journal/balance?account=1+Assets%3A10+Cash&asOfDate=2024-12-31", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1 Assets:10 Cash", resp.Account)
	require.Contains(t, resp.Balances, "CHF")
	assert.Equal(t, "100.00", resp.Balances["CHF"])
}

func TestAccountBalance_MissingAccountParam(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/balance", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountBalance_UnknownAccount(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/balance?account=9+Missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAllBalances_AsOfDate(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/balances?asOfDate=2024-12-31", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []dto.BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	// Before any activity no account has a balance.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/journal/balances?asOfDate=2023-12-31", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp)
}

func TestListUnbalanced_NoneForBalancedJournal(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/unbalanced", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var txns []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txns))
	assert.Empty(t, txns)
}

func TestListPostings_DateRange(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/journal/postings?startDate=2024-01-01&endDate=2024-01-31", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var txns []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txns))
	require.Len(t, txns, 1)
	assert.Equal(t, "Invoice 12", txns[0].Description)

	// The range excludes the transaction when it ends before it.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet,
		"/api/journal/postings?startDate=2024-02-01&endDate=2024-02-28", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txns))
	assert.Empty(t, txns)
}

func TestListPostings_StatusFilter(t *testing.T) {
	r := newUploadedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal/postings?status=cleared", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var txns []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txns))
	require.Len(t, txns, 1)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/journal/postings?status=PENDING", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txns))
	assert.Empty(t, txns)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/journal/postings?status=bogus", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEntries(t *testing.T) {
	repo := new(MockJournalRepository)
	rows := []models.EntryRow{
		{TransactionID: "t1", AccountPath: "1 Assets:10 Cash", Commodity: "CHF"},
	}
	repo.On("QueryEntriesWithFilters", mock.Anything, "journal-1",
		mock.MatchedBy(func(q portsrepo.EntryQuery) bool {
			return q.StartDate != nil && q.EndDate != nil
		})).Return(rows, nil)

	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/journals/journal-1/entries?startDate=2024-01-01&endDate=2024-02-01", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp []dto.EntryRowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "1 Assets:10 Cash", resp[0].AccountPath)
	repo.AssertExpectations(t)
}

func TestListEntries_InvalidRange(t *testing.T) {
	r := newTestRouter(new(MockJournalRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/journals/journal-1/entries?startDate=2024-02-01&endDate=2024-01-01", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteJournal(t *testing.T) {
	repo := new(MockJournalRepository)
	repo.On("DeleteJournal", mock.Anything, "journal-1").Return(nil)

	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/journals/journal-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}
