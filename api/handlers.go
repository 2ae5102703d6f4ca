/*
handlers.go - HTTP API handlers for the household cash-flow engine

PURPOSE:
  Exposes the projection engine and the household's records via REST API.
  Handles HTTP request/response and JSON serialization, and delegates to
  the store, the plan factory and the engine.

ENDPOINTS:
  Records:
    GET/POST          /api/accounts           List / create accounts
    GET/PUT/DELETE    /api/accounts/{id}      One account
    GET/PUT/DELETE    /api/card               The credit card
    GET/PUT           /api/salary             The salary rule
    GET               /api/vouchers           Both voucher pools
    PUT               /api/vouchers/{kind}    Set a pool balance
    GET/POST/DELETE   /api/entries            List / create / clear entries
    PUT/DELETE        /api/entries/{id}       One entry
    GET/POST/DELETE   /api/transfers          List / create / clear transfers
    PUT/DELETE        /api/transfers/{id}     One transfer
    GET/POST          /api/events             List / create future events
    PUT/DELETE        /api/events/{id}        One event

  Projection:
    GET    /api/projection?days=&start=&accounts=   Run a projection
    GET    /api/projection/latest                   Refresher's default projection

  Plan documents:
    GET    /api/plan                  Export every record as a plan document
    POST   /api/plan[?replace=true]   Import a plan document

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Engine: Store-backed projection runner
  - Plans: JSON plan document conversion
  - Refresher: Optional background projection, invalidated on every edit

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, invalid dates, kinds or query parameters
  - 404: Record not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo households
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/logging"
)

// DefaultHorizon is the projection length when ?days= is absent.
const DefaultHorizon = 60

// maxPlanBytes bounds an imported plan document.
const maxPlanBytes = 4 << 20

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Store          cashflow.Store
	Engine         *cashflow.ProjectionEngine
	Plans          *factory.PlanFactory
	Refresher      *ProjectionRefresher
	Metrics        *Metrics
	Logger         *logging.Logger
	DefaultHorizon int

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over store with the stock voucher
// contributions and no refresher.
func NewHandler(store cashflow.Store) *Handler {
	return &Handler{
		Store:          store,
		Engine:         &cashflow.ProjectionEngine{Store: store},
		Plans:          factory.NewPlanFactory(),
		Logger:         logging.Discard(),
		DefaultHorizon: DefaultHorizon,
	}
}

// invalidate tells the refresher that inputs changed.
func (h *Handler) invalidate() {
	if h.Refresher != nil {
		h.Refresher.Invalidate()
	}
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// ListAccounts returns all accounts ordered by id.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list accounts", err)
		return
	}
	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns one account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid account id", err)
		return
	}
	a, err := h.Store.GetAccount(r.Context(), cashflow.AccountID(id))
	if err != nil {
		h.fail(w, r, "Account not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(a))
}

// CreateAccount adds an account. Any id in the body is ignored.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req factory.AccountJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	req.ID = 0
	h.saveAccount(w, r, req, http.StatusCreated)
}

// UpdateAccount replaces the account named by the path.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid account id", err)
		return
	}
	var req factory.AccountJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	req.ID = id
	h.saveAccount(w, r, req, http.StatusOK)
}

func (h *Handler) saveAccount(w http.ResponseWriter, r *http.Request, req factory.AccountJSON, status int) {
	a, err := h.Plans.ParseAccount(req)
	if err != nil {
		h.fail(w, r, "Invalid account", err)
		return
	}
	saved, err := h.Store.SaveAccount(r.Context(), a)
	if err != nil {
		h.fail(w, r, "Failed to save account", err)
		return
	}
	h.invalidate()
	writeJSON(w, status, toAccountDTO(saved))
}

// DeleteAccount removes an account. Entries and transfers that reference it
// fall back to the primary checking account.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid account id", err)
		return
	}
	if err := h.Store.DeleteAccount(r.Context(), cashflow.AccountID(id)); err != nil {
		h.fail(w, r, "Failed to delete account", err)
		return
	}
	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CARD & SALARY ENDPOINTS
// =============================================================================

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCard(r.Context())
	if err != nil {
		h.fail(w, r, "Credit card not found", err)
		return
	}
	writeJSON(w, http.StatusOK, CardDTO{Name: c.Name, DueDay: c.DueDay, OpenAmount: c.OpenAmount})
}

// PutCard creates or replaces the single credit card.
func (h *Handler) PutCard(w http.ResponseWriter, r *http.Request) {
	var req factory.CardJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if err := checkDayOfMonth("due_day", req.DueDay); err != nil {
		h.fail(w, r, "Invalid credit card", err)
		return
	}
	c, err := h.Store.SaveCard(r.Context(), cashflow.CreditCard{Name: req.Name, DueDay: req.DueDay, OpenAmount: req.OpenAmount})
	if err != nil {
		h.fail(w, r, "Failed to save credit card", err)
		return
	}
	h.invalidate()
	writeJSON(w, http.StatusOK, CardDTO{Name: c.Name, DueDay: c.DueDay, OpenAmount: c.OpenAmount})
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCard(r.Context()); err != nil {
		h.fail(w, r, "Failed to delete credit card", err)
		return
	}
	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.GetSalary(r.Context())
	if err != nil {
		h.fail(w, r, "Salary rule not found", err)
		return
	}
	writeJSON(w, http.StatusOK, SalaryDTO{Amount: s.Amount, PayDay: s.PayDay})
}

// PutSalary creates or replaces the salary rule.
func (h *Handler) PutSalary(w http.ResponseWriter, r *http.Request) {
	var req factory.SalaryJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if err := checkDayOfMonth("pay_day", req.PayDay); err != nil {
		h.fail(w, r, "Invalid salary rule", err)
		return
	}
	rule := cashflow.SalaryRule{Amount: req.Amount, PayDay: req.PayDay}
	if err := h.Store.SaveSalary(r.Context(), rule); err != nil {
		h.fail(w, r, "Failed to save salary rule", err)
		return
	}
	h.invalidate()
	writeJSON(w, http.StatusOK, SalaryDTO{Amount: rule.Amount, PayDay: rule.PayDay})
}

// =============================================================================
// VOUCHER ENDPOINTS
// =============================================================================

func (h *Handler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.Store.ListVouchers(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list vouchers", err)
		return
	}
	dtos := make([]VoucherDTO, len(vouchers))
	for i, v := range vouchers {
		dtos[i] = VoucherDTO{Kind: v.Kind, Token: v.Kind.Token(), Balance: v.Balance}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutVoucher sets the balance of the pool named by the path. Both the kind
// (MEAL) and its token (vale_refeicao) are accepted.
func (h *Handler) PutVoucher(w http.ResponseWriter, r *http.Request) {
	var req factory.VoucherJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	req.Kind = chi.URLParam(r, "kind")
	v, err := h.Plans.ParseVoucher(req)
	if err != nil {
		h.fail(w, r, "Invalid voucher", err)
		return
	}
	if err := h.Store.SaveVoucher(r.Context(), v); err != nil {
		h.fail(w, r, "Failed to save voucher", err)
		return
	}
	h.invalidate()
	writeJSON(w, http.StatusOK, VoucherDTO{Kind: v.Kind, Token: v.Kind.Token(), Balance: v.Balance})
}

// =============================================================================
// ENTRY ENDPOINTS
// =============================================================================

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListEntries(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list entries", err)
		return
	}
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	h.saveEntry(w, r, 0, http.StatusCreated)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid entry id", err)
		return
	}
	h.saveEntry(w, r, id, http.StatusOK)
}

func (h *Handler) saveEntry(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var req factory.EntryJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	e, err := h.Plans.ParseEntry(req)
	if err != nil {
		h.fail(w, r, "Invalid entry", err)
		return
	}
	e.ID = id
	saved, err := h.Store.SaveEntry(r.Context(), e)
	if err != nil {
		h.fail(w, r, "Failed to save entry", err)
		return
	}
	h.invalidate()
	writeJSON(w, status, toEntryDTO(saved))
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid entry id", err)
		return
	}
	if err := h.Store.DeleteEntry(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete entry", err)
		return
	}
	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// ClearEntries removes every ledger entry.
func (h *Handler) ClearEntries(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearEntries(r.Context()); err != nil {
		h.fail(w, r, "Failed to clear entries", err)
		return
	}
	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSFER ENDPOINTS
// =============================================================================

func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.Store.ListTransfers(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list transfers", err)
		return
	}
	dtos := make([]TransferDTO, len(transfers))
	for i, t := range transfers {
		dtos[i] = toTransferDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	h.saveTransfer(w, r, 0, http.StatusCreated)
}

func (h *Handler) UpdateTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid transfer id", err)
		return
	}
	h.saveTransfer(w, r, id, http.StatusOK)
}

func (h *Handler) saveTransfer(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var req factory.TransferJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	t, err := h.Plans.ParseTransfer(req)
	if err != nil {
		h.fail(w, r, "Invalid transfer", err)
		return
	}
	t.ID = id
	saved, err := h.Store.SaveTransfer(r.Context(), t)
	if err != nil {
		h.fail(w, r, "Failed to save transfer", err)
		return
	}
	h.invalidate()
	writeJSON(w, status, toTransferDTO(saved))
}

func (h *Handler) DeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid transfer id", err)
		return
	}
	if err := h.Store.DeleteTransfer(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete transfer", err)
		return
	}
	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// ClearTransfers removes every transfer.
func (h *Handler) ClearTransfers(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearTransfers(r.Context()); err != nil {
		h.fail(w, r, "Failed to clear transfers", err)
		return
	}
	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// FUTURE EVENT ENDPOINTS
// =============================================================================

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEvents(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list events", err)
		return
	}
	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toEventDTO(ev)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	h.saveEvent(w, r, 0, http.StatusCreated)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid event id", err)
		return
	}
	h.saveEvent(w, r, id, http.StatusOK)
}

func (h *Handler) saveEvent(w http.ResponseWriter, r *http.Request, id int64, status int) {
	var req factory.EventJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	ev, err := h.Plans.ParseEvent(req)
	if err != nil {
		h.fail(w, r, "Invalid event", err)
		return
	}
	ev.ID = id
	saved, err := h.Store.SaveEvent(r.Context(), ev)
	if err != nil {
		h.fail(w, r, "Failed to save event", err)
		return
	}
	h.invalidate()
	writeJSON(w, status, toEventDTO(saved))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid event id", err)
		return
	}
	if err := h.Store.DeleteEvent(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete event", err)
		return
	}
	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROJECTION ENDPOINTS
// =============================================================================

// GetProjection runs a projection over the stored plan.
//
// Query parameters:
//   - days: horizon, default DefaultHorizon, clamped to [1, 365]
//   - start: first day (YYYY-MM-DD), default today
//   - accounts: comma-separated account ids counted in totals, default all
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseProjectionQuery(r)
	if err != nil {
		h.fail(w, r, "Invalid projection parameters", err)
		return
	}

	started := time.Now()
	p, err := h.Engine.Run(r.Context(), req)
	if h.Metrics != nil {
		h.Metrics.ObserveRun("api", cashflow.ClampHorizon(req.Horizon), time.Since(started), err)
	}
	if err != nil {
		h.fail(w, r, "Failed to run projection", err)
		return
	}

	logging.FromContext(r.Context()).Debug("projection served",
		logging.FieldHorizon, p.Options.Horizon,
		logging.FieldStart, p.Options.Today.String(),
		logging.FieldEvents, len(p.Events),
		logging.FieldDuration, time.Since(started).Milliseconds())

	writeJSON(w, http.StatusOK, ToProjectionDTO(p))
}

// GetLatestProjection returns the refresher's newest default projection.
func (h *Handler) GetLatestProjection(w http.ResponseWriter, r *http.Request) {
	if h.Refresher == nil {
		writeError(w, http.StatusNotFound, "Projection refresher is not enabled", nil)
		return
	}
	p, gen := h.Refresher.Latest()
	if p == nil {
		writeError(w, http.StatusServiceUnavailable, "No projection computed yet", nil)
		return
	}
	dto := ToProjectionDTO(p)
	dto.Generation = &gen
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) parseProjectionQuery(r *http.Request) (cashflow.ProjectionRequest, error) {
	q := r.URL.Query()
	req := cashflow.ProjectionRequest{Horizon: h.DefaultHorizon}
	if req.Horizon == 0 {
		req.Horizon = DefaultHorizon
	}

	if s := q.Get("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return req, fmt.Errorf("%w: days must be an integer, got %q", errBadRequest, s)
		}
		req.Horizon = days
	}
	if s := q.Get("start"); s != "" {
		start, err := cashflow.ParseDate(s)
		if err != nil {
			return req, err
		}
		req.Start = start
	}
	if s := q.Get("accounts"); s != "" {
		ids, err := ParseAccountIDs(s)
		if err != nil {
			return req, err
		}
		req.Filter = ids
	}
	return req, nil
}

// ParseAccountIDs parses a comma-separated list of account ids.
func ParseAccountIDs(s string) ([]cashflow.AccountID, error) {
	var ids []cashflow.AccountID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid account id %q", errBadRequest, part)
		}
		ids = append(ids, cashflow.AccountID(id))
	}
	return ids, nil
}

// =============================================================================
// PLAN DOCUMENT ENDPOINTS
// =============================================================================

// ExportPlan renders every stored record as a plan document.
func (h *Handler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Store.LoadPlan(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to load plan", err)
		return
	}
	data, err := h.Plans.MarshalPlan(plan)
	if err != nil {
		h.fail(w, r, "Failed to encode plan", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportPlan loads a plan document. Records are appended unless
// ?replace=true, in which case the previous contents come back if the
// import fails partway.
func (h *Handler) ImportPlan(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPlanBytes))
	if err != nil {
		h.fail(w, r, "Failed to read plan", fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	plan, err := h.Plans.ParsePlan(data)
	if err != nil {
		h.fail(w, r, "Invalid plan", err)
		return
	}

	ctx := r.Context()
	var summary *factory.ImportSummary
	if replace, _ := strconv.ParseBool(r.URL.Query().Get("replace")); replace {
		summary, err = factory.ReplacePlan(ctx, h.Store, plan)
		if err == nil {
			h.setScenario("")
		}
	} else {
		summary, err = factory.ImportPlan(ctx, h.Store, plan)
	}
	h.invalidate()
	if err != nil {
		h.fail(w, r, "Failed to import plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, ImportResponse{
		Accounts:  summary.Accounts,
		Entries:   summary.Entries,
		Transfers: summary.Transfers,
		Events:    summary.Events,
	})
}

// reset clears the store, recreates the voucher pools and forgets the
// loaded scenario.
func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.setScenario("")
	return h.Store.EnsureDefaults(ctx)
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// =============================================================================
// HEALTH
// =============================================================================

// pinger is implemented by stores backed by a database connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports whether the store is reachable.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps err to a status code and writes the error body. Server errors
// are logged with the request's logger.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error(message, logging.FieldError, err)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case cashflow.IsNotFound(err):
		return http.StatusNotFound
	case cashflow.IsClientError(err), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	return "internal"
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

func checkDayOfMonth(field string, day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: %s must be between 1 and 31, got %d", errBadRequest, field, day)
	}
	return nil
}
