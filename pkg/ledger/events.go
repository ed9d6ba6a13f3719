package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shelterpoint/casevault/pkg/domain"
)

const (
	EventCreated             = "ledger.Created"
	EventTransactionRecorded = "ledger.TransactionRecorded"
	EventClosed              = "ledger.Closed"
)

// Created opens a ledger for a client enrollment.
type Created struct {
	LedgerID      string `json:"ledger_id"`
	ClientID      string `json:"client_id"`
	EnrollmentID  string `json:"enrollment_id"`
	HouseholdID   string `json:"household_id,omitempty"`
	Name          string `json:"name"`
	VAWAProtected bool   `json:"vawa_protected"`
	CreatedBy     string `json:"created_by"`
}

func (Created) EventType() string { return EventCreated }

// TransactionRecorded posts one balanced debit/credit pair.
type TransactionRecorded struct {
	TransactionID     string                `json:"transaction_id"`
	Type              TransactionType       `json:"type"`
	Amount            decimal.Decimal       `json:"amount"`
	FundingSourceCode string                `json:"funding_source_code,omitempty"`
	HUDCategoryCode   string                `json:"hud_category_code,omitempty"`
	Description       string                `json:"description"`
	PayeeID           string                `json:"payee_id,omitempty"`
	PayeeName         string                `json:"payee_name,omitempty"`
	PeriodStart       *time.Time            `json:"period_start,omitempty"`
	PeriodEnd         *time.Time            `json:"period_end,omitempty"`
	DebitEntryID      string                `json:"debit_entry_id"`
	DebitAccount      AccountClassification `json:"debit_account"`
	CreditEntryID     string                `json:"credit_entry_id"`
	CreditAccount     AccountClassification `json:"credit_account"`
	RecordedBy        string                `json:"recorded_by"`
	RecordedAt        time.Time             `json:"recorded_at"`
}

func (TransactionRecorded) EventType() string { return EventTransactionRecorded }

// Closed finalizes the ledger with its closing totals.
type Closed struct {
	Reason       string          `json:"reason"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Balance      decimal.Decimal `json:"balance"`
	ClosedBy     string          `json:"closed_by"`
}

func (Closed) EventType() string { return EventClosed }

// RegisterEvents registers all ledger payloads with the registry.
func RegisterEvents(registry *domain.Registry) {
	registry.Register(EventCreated, func() domain.Payload { return &Created{} })
	registry.Register(EventTransactionRecorded, func() domain.Payload { return &TransactionRecorded{} })
	registry.Register(EventClosed, func() domain.Payload { return &Closed{} })
}
