/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request bodies reuse
  the plan document records from the factory package, so a record posted
  to /api/entries looks exactly like one entry of an imported plan.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Records:
    AccountDTO, CardDTO, SalaryDTO, VoucherDTO, EntryDTO, TransferDTO, EventDTO

  Projection:
    ProjectionDTO, SnapshotDTO, LedgerEventDTO, SummaryDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done by the factory parsers, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: AccountJSON, EntryJSON, ... request bodies
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// RECORDS
// =============================================================================

type AccountDTO struct {
	ID      cashflow.AccountID   `json:"id"`
	Name    string               `json:"name"`
	Kind    cashflow.AccountKind `json:"kind"`
	Balance decimal.Decimal      `json:"balance"`
}

type CardDTO struct {
	Name       string          `json:"name"`
	DueDay     int             `json:"due_day"`
	OpenAmount decimal.Decimal `json:"open_amount"`
}

type SalaryDTO struct {
	Amount decimal.Decimal `json:"amount"`
	PayDay int             `json:"pay_day"`
}

type VoucherDTO struct {
	Kind    cashflow.VoucherKind `json:"kind"`
	Token   string               `json:"token"`
	Balance decimal.Decimal      `json:"balance"`
}

type EntryDTO struct {
	ID          int64                `json:"id"`
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	StartDate   cashflow.Date        `json:"start_date"`
	EndDate     *cashflow.Date       `json:"end_date,omitempty"`
	Destination cashflow.Destination `json:"destination"`
	AccountID   *cashflow.AccountID  `json:"account_id,omitempty"`
}

type TransferDTO struct {
	ID            int64              `json:"id"`
	Description   string             `json:"description"`
	Amount        decimal.Decimal    `json:"amount"`
	StartDate     cashflow.Date      `json:"start_date"`
	EndDate       *cashflow.Date     `json:"end_date,omitempty"`
	FromAccountID cashflow.AccountID `json:"from_account_id"`
	ToAccountID   cashflow.AccountID `json:"to_account_id"`
}

type EventDTO struct {
	ID          int64           `json:"id"`
	Date        cashflow.Date   `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Target      string          `json:"target"`
	Source      string          `json:"source,omitempty"`
}

// =============================================================================
// PROJECTION
// =============================================================================

// ProjectionDTO is the response of GET /api/projection.
type ProjectionDTO struct {
	Start      cashflow.Date        `json:"start"`
	Days       int                  `json:"days"`
	Accounts   []cashflow.AccountID `json:"accounts,omitempty"`
	Generation *uint64              `json:"generation,omitempty"`
	Summary    SummaryDTO           `json:"summary"`
	Snapshots  []SnapshotDTO        `json:"snapshots"`
	Events     []LedgerEventDTO     `json:"events"`
}

type SnapshotDTO struct {
	Date            cashflow.Date                            `json:"date"`
	AccountBalances map[cashflow.AccountID]decimal.Decimal   `json:"account_balances"`
	VoucherBalances map[cashflow.VoucherKind]decimal.Decimal `json:"voucher_balances"`
	CardBalance     decimal.Decimal                          `json:"card_balance"`
	TotalAccounts   decimal.Decimal                          `json:"total_accounts"`
	TotalVouchers   decimal.Decimal                          `json:"total_vouchers"`
}

type LedgerEventDTO struct {
	Date        cashflow.Date   `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

type SummaryDTO struct {
	TotalStart       decimal.Decimal `json:"total_start"`
	TotalEnd         decimal.Decimal `json:"total_end"`
	Variation        decimal.Decimal `json:"variation"`
	VoucherStart     decimal.Decimal `json:"voucher_start"`
	VoucherEnd       decimal.Decimal `json:"voucher_end"`
	VoucherVariation decimal.Decimal `json:"voucher_variation"`
}

// ImportResponse reports what POST /api/plan wrote.
type ImportResponse struct {
	Accounts  int `json:"accounts"`
	Entries   int `json:"entries"`
	Transfers int `json:"transfers"`
	Events    int `json:"events"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO describes a demo household.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAccountDTO(a cashflow.Account) AccountDTO {
	return AccountDTO{ID: a.ID, Name: a.Name, Kind: a.Kind, Balance: a.Balance}
}

func toEntryDTO(e cashflow.LedgerEntry) EntryDTO {
	return EntryDTO{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Destination: e.Destination,
		AccountID:   e.AccountID,
	}
}

func toTransferDTO(t cashflow.Transfer) TransferDTO {
	return TransferDTO{
		ID:            t.ID,
		Description:   t.Description,
		Amount:        t.Amount,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
	}
}

func toEventDTO(ev cashflow.FutureEvent) EventDTO {
	return EventDTO{
		ID:          ev.ID,
		Date:        ev.Date,
		Description: ev.Description,
		Amount:      ev.Amount,
		Target:      ev.Target,
		Source:      ev.Source,
	}
}

func toSummaryDTO(s cashflow.Summary) SummaryDTO {
	return SummaryDTO{
		TotalStart:       s.TotalStart,
		TotalEnd:         s.TotalEnd,
		Variation:        s.Variation,
		VoucherStart:     s.VoucherStart,
		VoucherEnd:       s.VoucherEnd,
		VoucherVariation: s.VoucherVariation,
	}
}

// ToProjectionDTO converts a completed run to its JSON response form.
func ToProjectionDTO(p *cashflow.Projection) ProjectionDTO {
	dto := ProjectionDTO{
		Start:     p.Options.Today,
		Days:      p.Options.Horizon,
		Accounts:  p.Options.Filter,
		Summary:   toSummaryDTO(p.Summary),
		Snapshots: make([]SnapshotDTO, len(p.Snapshots)),
		Events:    make([]LedgerEventDTO, len(p.Events)),
	}
	for i, s := range p.Snapshots {
		dto.Snapshots[i] = SnapshotDTO{
			Date:            s.Date,
			AccountBalances: s.AccountBalances,
			VoucherBalances: s.VoucherBalances,
			CardBalance:     s.CardBalance,
			TotalAccounts:   s.TotalAccounts,
			TotalVouchers:   s.TotalVouchers,
		}
	}
	for i, ev := range p.Events {
		dto.Events[i] = LedgerEventDTO{
			Date:        ev.Date,
			Description: ev.Description,
			Amount:      ev.Amount,
			Destination: ev.Destination,
		}
	}
	return dto
}
