package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-ledger/internal/auth"
	"github.com/nurpe/contracts-ledger/internal/config"
	"github.com/nurpe/contracts-ledger/internal/db/dbtest"
	"github.com/nurpe/contracts-ledger/internal/excel"
	"github.com/nurpe/contracts-ledger/internal/http/middleware"
	"github.com/nurpe/contracts-ledger/internal/model"
	"github.com/nurpe/contracts-ledger/internal/pdf"
	"github.com/nurpe/contracts-ledger/internal/repository"
	"github.com/nurpe/contracts-ledger/internal/service"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	router     *gin.Engine
	db         *gorm.DB
	client     model.Profile
	contractor model.Profile
	stranger   model.Profile
	contract   model.Contract
	job        model.Job
}

func newTestServer(t *testing.T, health HealthChecker) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := dbtest.Open(t)
	repo := repository.NewLedgerRepository(database)
	cfg := &config.Config{
		Environment: "test",
		Ledger: config.LedgerConfig{
			DepositDefault: decimal.NewFromInt(10),
			DepositRate:    decimal.RequireFromString("0.25"),
		},
		Report: config.ReportConfig{DefaultLimit: 2},
	}
	log := zerolog.Nop()

	handler := NewHandler(
		service.NewContractService(repo, pdf.NewGenerator()),
		service.NewTransferService(repo, cfg, log),
		service.NewReportService(repo, excel.NewGenerator(), cfg),
		health,
		log,
	)
	router := NewRouter(handler, middleware.Profile(repo, auth.NewParser(""), log), cfg, log)

	ts := &testServer{router: router, db: database}
	ts.client = dbtest.CreateProfile(t, database, model.ProfileTypeClient, "", "1000")
	ts.contractor = dbtest.CreateProfile(t, database, model.ProfileTypeContractor, "Programmer", "0")
	ts.stranger = dbtest.CreateProfile(t, database, model.ProfileTypeClient, "", "500")
	ts.contract = dbtest.CreateContract(t, database, model.ContractStatusInProgress, ts.client.ID, ts.contractor.ID)
	ts.job = dbtest.CreateJob(t, database, ts.contract.ID, "200", time.Now().UTC())
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, callerID uint) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if callerID != 0 {
		req.Header.Set(middleware.ProfileHeader, strconv.FormatUint(uint64(callerID), 10))
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestGetContract(t *testing.T) {
	ts := newTestServer(t, nil)
	path := "/contracts/" + id(ts.contract.ID)

	rec := ts.do(t, http.MethodGet, path, ts.contractor.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var contract model.Contract
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contract))
	assert.Equal(t, ts.client.ID, contract.ClientID)

	forbidden := ts.do(t, http.MethodGet, path, ts.stranger.ID)
	missing := ts.do(t, http.MethodGet, "/contracts/9999", ts.stranger.ID)
	assert.Equal(t, http.StatusNotFound, forbidden.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, missing.Body.String(), forbidden.Body.String())

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/contracts/abc", ts.client.ID).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, path, 0).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, path, 9999).Code)
}

func TestListContractsAndUnpaidJobs(t *testing.T) {
	ts := newTestServer(t, nil)
	terminated := dbtest.CreateContract(t, ts.db, model.ContractStatusTerminated, ts.client.ID, ts.contractor.ID)
	dbtest.CreateJob(t, ts.db, terminated.ID, "50", time.Now())

	rec := ts.do(t, http.MethodGet, "/contracts", ts.client.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var contracts []model.Contract
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contracts))
	require.Len(t, contracts, 1)
	assert.Equal(t, ts.contract.ID, contracts[0].ID)

	rec = ts.do(t, http.MethodGet, "/jobs/unpaid", ts.contractor.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, ts.job.ID, jobs[0].ID)

	rec = ts.do(t, http.MethodGet, "/jobs/unpaid", ts.stranger.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Empty(t, jobs)
}

func TestPayJobAndReceipt(t *testing.T) {
	ts := newTestServer(t, nil)
	payPath := "/jobs/" + id(ts.job.ID) + "/pay"
	receiptPath := "/jobs/" + id(ts.job.ID) + "/receipt"

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, receiptPath, ts.client.ID).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, payPath, ts.contractor.ID).Code)

	rec := ts.do(t, http.MethodPost, payPath, ts.client.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Paid bool      `json:"paid"`
		Job  model.Job `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Paid)
	assert.True(t, body.Job.IsPaid())
	assert.True(t, dbtest.Balance(t, ts.db, ts.contractor.ID).Equal(decimal.NewFromInt(200)))

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, payPath, ts.client.ID).Code)

	rec = ts.do(t, http.MethodGet, receiptPath, ts.contractor.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt-job-")
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, receiptPath, ts.stranger.ID).Code)
}

func TestPayJob_InsufficientFunds(t *testing.T) {
	ts := newTestServer(t, nil)
	expensive := dbtest.CreateJob(t, ts.db, ts.contract.ID, "1000", time.Now())

	rec := ts.do(t, http.MethodPost, "/jobs/"+id(expensive.ID)+"/pay", ts.client.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeposit(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/balances/deposit/"+id(ts.client.ID), ts.client.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/balances/deposit/9999", ts.client.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/balances/deposit/"+id(ts.contractor.ID), ts.client.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"amount":"50"}`, rec.Body.String())
	assert.True(t, dbtest.Balance(t, ts.db, ts.client.ID).Equal(decimal.NewFromInt(950)))
}

func TestAdminReports(t *testing.T) {
	ts := newTestServer(t, nil)
	today := time.Now().UTC().Format("2006-01-02")
	window := "?start=" + today + "&end=" + today

	rec := ts.do(t, http.MethodGet, "/admin/best-profession"+window, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profession":"Programmer"}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/admin/best-clients"+window+"&limit=5", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	var clients []model.ClientTotal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, ts.client.ID, clients[0].ID)
	assert.Equal(t, "Test Client", clients[0].FullName)
	assert.True(t, clients[0].Paid.Equal(decimal.NewFromInt(200)))

	rec = ts.do(t, http.MethodGet, "/admin/best-clients/export"+window, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = ts.do(t, http.MethodGet, "/admin/best-profession?start=2001-01-01&end=2001-01-02", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, query := range []string{
		"",
		"?start=" + today,
		"?start=yesterday&end=" + today,
		window + "&limit=zero",
		window + "&limit=-2",
	} {
		rec = ts.do(t, http.MethodGet, "/admin/best-clients"+query, 0)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rec := newTestServer(t, pinger{}).do(t, http.MethodGet, "/health", 0)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","database":"healthy"}`, rec.Body.String())
	})
	t.Run("database down", func(t *testing.T) {
		rec := newTestServer(t, pinger{err: errors.New("down")}).do(t, http.MethodGet, "/health", 0)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2024-05-01", "2024-05-01T10:00:00", "2024-05-01T10:00:00Z"} {
		parsed, err := parseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2024, parsed.Year())
	}
	_, err := parseDate("05/01/2024")
	assert.ErrorIs(t, err, service.ErrBadRequest)
}
