/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Record CRUD and error status mapping
- Projection query parameters, clamping and filtering
- Plan document import/export
- Refresher invalidation, metrics and health endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/cashflow/store"
	"github.com/warp/cashflow-engine/factory"
)

var testToday = cashflow.MustParseDate("2025-03-01")

func newTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(store.NewMemory())
	h.Engine.Clock = func() cashflow.Date { return testToday }
	h.Metrics = NewMetrics()
	return h, NewRouter(h, nil)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestAccounts_CRUD(t *testing.T) {
	_, router := newTestHandler(t)

	// GIVEN: A new checking account
	rec := do(t, router, http.MethodPost, "/api/accounts", `{"name": "Checking", "kind": "CHECKING", "balance": "1000.00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[AccountDTO](t, rec)
	assert.NotZero(t, created.ID)

	// WHEN: Updating it
	rec = do(t, router, http.MethodPut, "/api/accounts/"+itoa(created.ID), `{"name": "Main", "kind": "CHECKING", "balance": "1200"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Reads see the new values
	rec = do(t, router, http.MethodGet, "/api/accounts/"+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[AccountDTO](t, rec)
	assert.Equal(t, "Main", got.Name)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1200)))

	rec = do(t, router, http.MethodGet, "/api/accounts", "")
	assert.Len(t, decodeBody[[]AccountDTO](t, rec), 1)

	// Delete, then the account is gone
	rec = do(t, router, http.MethodDelete, "/api/accounts/"+itoa(created.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/accounts/"+itoa(created.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestAccounts_BadInput(t *testing.T) {
	_, router := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown kind", http.MethodPost, "/api/accounts", `{"name": "x", "kind": "BROKERAGE", "balance": "0"}`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/accounts", `{"kind": "POCKET", "balance": "0"}`, http.StatusBadRequest},
		{"malformed JSON", http.MethodPost, "/api/accounts", `{"name":`, http.StatusBadRequest},
		{"non-numeric id", http.MethodGet, "/api/accounts/abc", "", http.StatusBadRequest},
		{"update missing account", http.MethodPut, "/api/accounts/42", `{"name": "x", "kind": "POCKET", "balance": "0"}`, http.StatusNotFound},
		{"delete missing account", http.MethodDelete, "/api/accounts/42", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusBadRequest {
				assert.Equal(t, "invalid_input", decodeBody[ErrorResponse](t, rec).Code)
			}
		})
	}
}

func TestCardAndSalary(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodGet, "/api/card", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no card configured yet")

	rec = do(t, router, http.MethodPut, "/api/card", `{"name": "Visa", "due_day": 10, "open_amount": "-200"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/card", "")
	require.Equal(t, http.StatusOK, rec.Code)
	card := decodeBody[CardDTO](t, rec)
	assert.Equal(t, 10, card.DueDay)
	assert.True(t, card.OpenAmount.Equal(decimal.NewFromInt(-200)))

	rec = do(t, router, http.MethodPut, "/api/card", `{"due_day": 0, "open_amount": "0"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/card", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/salary", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/salary", `{"amount": "3000", "pay_day": 5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/salary", "")
	salary := decodeBody[SalaryDTO](t, rec)
	assert.Equal(t, 5, salary.PayDay)

	rec = do(t, router, http.MethodPut, "/api/salary", `{"amount": "3000", "pay_day": 32}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVouchers(t *testing.T) {
	h, router := newTestHandler(t)
	require.NoError(t, h.Store.EnsureDefaults(context.Background()))

	// Token form of the kind is accepted in the path
	rec := do(t, router, http.MethodPut, "/api/vouchers/vale_refeicao", `{"balance": "150.25"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decodeBody[VoucherDTO](t, rec)
	assert.Equal(t, cashflow.VoucherMeal, v.Kind)
	assert.Equal(t, cashflow.TargetMealVoucher, v.Token)

	rec = do(t, router, http.MethodPut, "/api/vouchers/TRANSPORT", `{"balance": "1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/vouchers", "")
	vouchers := decodeBody[[]VoucherDTO](t, rec)
	require.Len(t, vouchers, 2)
	assert.Equal(t, cashflow.VoucherMeal, vouchers[0].Kind)
	assert.True(t, vouchers[0].Balance.Equal(decimal.RequireFromString("150.25")))
	assert.True(t, vouchers[1].Balance.IsZero())
}

func TestEntries_CreateUpdateClear(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/entries",
		`{"description": "Lunch", "amount": "-35", "start_date": "2025-03-03", "end_date": "2025-03-07", "destination": "MEAL_VOUCHER"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decodeBody[EntryDTO](t, rec)
	require.NotNil(t, entry.EndDate)
	assert.Equal(t, "2025-03-07", entry.EndDate.String())

	rec = do(t, router, http.MethodPut, "/api/entries/"+itoa(entry.ID),
		`{"description": "Lunch", "amount": "-40", "start_date": "2025-03-03", "destination": "MEAL_VOUCHER"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decodeBody[EntryDTO](t, rec).EndDate, "end date dropped on update")

	rec = do(t, router, http.MethodPut, "/api/entries/999",
		`{"description": "x", "amount": "1", "start_date": "2025-03-03"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/entries",
		`{"description": "x", "amount": "1", "start_date": "2025-02-30"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "impossible date")

	rec = do(t, router, http.MethodDelete, "/api/entries", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/entries", "")
	assert.Empty(t, decodeBody[[]EntryDTO](t, rec))
}

func TestTransfersAndEvents(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/transfers",
		`{"description": "Save", "amount": "200", "start_date": "2025-03-01", "from_account_id": 1, "to_account_id": 2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tr := decodeBody[TransferDTO](t, rec)

	rec = do(t, router, http.MethodDelete, "/api/transfers/"+itoa(tr.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodDelete, "/api/transfers/"+itoa(tr.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/events",
		`{"date": "2025-04-15", "description": "Refund", "amount": "900", "target": "Savings", "source": "credit_card"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ev := decodeBody[EventDTO](t, rec)
	assert.Equal(t, "credit_card", ev.Source)

	rec = do(t, router, http.MethodPut, "/api/events/"+itoa(ev.ID),
		`{"date": "2025-04-16", "description": "Refund", "amount": "900", "target": "Savings"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/events", "")
	events := decodeBody[[]EventDTO](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-04-16", events[0].Date.String())
	assert.Empty(t, events[0].Source)

	rec = do(t, router, http.MethodPost, "/api/events", `{"description": "no date", "amount": "1", "target": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// seedProjectionStore stores checking 1000 (id 1), pocket 500 (id 2) and a
// 3000 salary paid on the 5th.
func seedProjectionStore(t *testing.T, s cashflow.Store) {
	t.Helper()
	ctx := context.Background()
	_, err := s.SaveAccount(ctx, cashflow.Account{Name: "Checking", Kind: cashflow.KindChecking, Balance: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	_, err = s.SaveAccount(ctx, cashflow.Account{Name: "Savings", Kind: cashflow.KindPocket, Balance: decimal.NewFromInt(500)})
	require.NoError(t, err)
	require.NoError(t, s.SaveSalary(ctx, cashflow.SalaryRule{Amount: decimal.NewFromInt(3000), PayDay: 5}))
}

func TestGetProjection(t *testing.T) {
	h, router := newTestHandler(t)
	seedProjectionStore(t, h.Store)

	// WHEN: Projecting ten days from a Saturday
	rec := do(t, router, http.MethodGet, "/api/projection?days=10&start=2025-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decodeBody[ProjectionDTO](t, rec)

	// THEN: One snapshot per day, salary on Wednesday the 5th
	require.Len(t, p.Snapshots, 10)
	assert.Equal(t, "2025-03-01", p.Start.String())
	assert.Equal(t, "2025-03-10", p.Snapshots[9].Date.String())
	assert.True(t, p.Summary.TotalStart.Equal(decimal.NewFromInt(1500)), "got %s", p.Summary.TotalStart)
	assert.True(t, p.Summary.TotalEnd.Equal(decimal.NewFromInt(4500)), "got %s", p.Summary.TotalEnd)
	require.Len(t, p.Events, 1)
	assert.Equal(t, "Salary", p.Events[0].Description)
	assert.Equal(t, "2025-03-05", p.Events[0].Date.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.ProjectionRuns.WithLabelValues("api", "ok")))
}

func TestGetProjection_Parameters(t *testing.T) {
	h, router := newTestHandler(t)
	seedProjectionStore(t, h.Store)

	t.Run("defaults to clock and default horizon", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/projection", "")
		require.Equal(t, http.StatusOK, rec.Code)
		p := decodeBody[ProjectionDTO](t, rec)
		assert.Equal(t, DefaultHorizon, p.Days)
		assert.Equal(t, testToday.String(), p.Start.String())
	})

	t.Run("horizon is clamped", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/projection?days=1000", "")
		require.Equal(t, http.StatusOK, rec.Code)
		p := decodeBody[ProjectionDTO](t, rec)
		assert.Equal(t, cashflow.MaxHorizon, p.Days)
		assert.Len(t, p.Snapshots, cashflow.MaxHorizon)

		rec = do(t, router, http.MethodGet, "/api/projection?days=0", "")
		assert.Len(t, decodeBody[ProjectionDTO](t, rec).Snapshots, 1)
	})

	t.Run("filter restricts totals", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/projection?days=10&accounts=2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		p := decodeBody[ProjectionDTO](t, rec)
		assert.Equal(t, []cashflow.AccountID{2}, p.Accounts)
		assert.True(t, p.Summary.TotalEnd.Equal(decimal.NewFromInt(500)), "salary lands outside the filter")
		assert.True(t, p.Snapshots[9].AccountBalances[1].Equal(decimal.NewFromInt(4000)), "balances still cover every account")
	})

	for _, bad := range []string{"days=abc", "start=2025-13-01", "accounts=1,x"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/projection?"+bad, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestParseAccountIDs(t *testing.T) {
	ids, err := ParseAccountIDs(" 3, 1,,7 ")
	require.NoError(t, err)
	assert.Equal(t, []cashflow.AccountID{3, 1, 7}, ids)

	_, err = ParseAccountIDs("1;2")
	assert.Error(t, err)
}

func TestLatestProjection(t *testing.T) {
	h, router := newTestHandler(t)
	seedProjectionStore(t, h.Store)

	rec := do(t, router, http.MethodGet, "/api/projection/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "refresher disabled")

	h.Refresher = NewProjectionRefresher(h.Engine, 30, 0, nil, h.Metrics)
	rec = do(t, router, http.MethodGet, "/api/projection/latest", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "nothing computed yet")

	_, err := h.Refresher.Refresh(context.Background())
	require.NoError(t, err)

	rec = do(t, router, http.MethodGet, "/api/projection/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[ProjectionDTO](t, rec)
	assert.Len(t, p.Snapshots, 30)
	require.NotNil(t, p.Generation)
	assert.Equal(t, uint64(0), *p.Generation)
}

func TestMutationsInvalidateRefresher(t *testing.T) {
	h, router := newTestHandler(t)
	h.Refresher = NewProjectionRefresher(h.Engine, 30, 0, nil, nil)

	do(t, router, http.MethodPost, "/api/accounts", `{"name": "Checking", "kind": "CHECKING", "balance": "10"}`)
	do(t, router, http.MethodPut, "/api/salary", `{"amount": "1", "pay_day": 1}`)
	do(t, router, http.MethodGet, "/api/accounts", "")
	do(t, router, http.MethodPost, "/api/accounts", `{"name": "", "kind": "CHECKING"}`)

	assert.Equal(t, uint64(2), h.Refresher.Generation(), "only successful writes bump the generation")
}

const planDoc = `{
  "accounts": [
    {"id": 1, "name": "Checking", "kind": "CHECKING", "balance": "2500.00"},
    {"id": 2, "name": "Savings", "kind": "POCKET", "balance": "8000"}
  ],
  "credit_card": {"name": "Visa", "due_day": 10, "open_amount": "-1350.75"},
  "salary": {"amount": "6200", "pay_day": 5},
  "entries": [
    {"description": "Rent", "amount": "-1800", "start_date": "2025-03-06", "account_id": 1}
  ],
  "transfers": [
    {"description": "Save", "amount": "200", "start_date": "2025-03-01", "from_account_id": 1, "to_account_id": 2}
  ],
  "events": [
    {"date": "2025-04-15", "description": "Tax refund", "amount": "900", "target": "Savings"}
  ]
}`

func TestPlan_ImportExport(t *testing.T) {
	h, router := newTestHandler(t)
	seedProjectionStore(t, h.Store)

	// GIVEN: A store that already has data
	// WHEN: Importing with replace
	rec := do(t, router, http.MethodPost, "/api/plan?replace=true", planDoc)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, ImportResponse{Accounts: 2, Entries: 1, Transfers: 1, Events: 1}, decodeBody[ImportResponse](t, rec))

	// THEN: The export holds exactly the imported plan plus the default pools
	rec = do(t, router, http.MethodGet, "/api/plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	plan, err := factory.NewPlanFactory().ParsePlan(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, plan.Accounts, 2)
	assert.Equal(t, "Checking", plan.Accounts[0].Name)
	assert.Len(t, plan.Vouchers, 2)
	require.NotNil(t, plan.Card)
	assert.True(t, plan.Card.OpenAmount.Equal(decimal.RequireFromString("-1350.75")))

	// Appending without replace doubles the records
	rec = do(t, router, http.MethodPost, "/api/plan", planDoc)
	require.Equal(t, http.StatusCreated, rec.Code)
	accounts, err := h.Store.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 4)
}

func TestPlan_ImportRejectsBadDocument(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/plan", `{"accounts": [{"name": "x", "kind": "??"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "accounts[0].kind")
}

func TestHealthzAndMetrics(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])

	do(t, router, http.MethodGet, "/api/accounts/7", "")

	rec = do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `cashflow_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
	assert.Contains(t, body, `cashflow_http_requests_total{code="404",method="GET",route="/api/accounts/{id}"} 1`)
}

func TestCORS(t *testing.T) {
	h := NewHandler(store.NewMemory())
	router := NewRouter(h, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func itoa[T ~int64](id T) string {
	return strconv.FormatInt(int64(id), 10)
}
