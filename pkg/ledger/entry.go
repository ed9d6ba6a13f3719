// Package ledger implements the financial assistance ledger: a
// double-entry, event-sourced account of payments, deposits, and arrears
// per client enrollment, with VAWA redaction for external (landlord)
// views.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a double-entry posting.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// AccountClassification buckets entries for reporting and redaction.
type AccountClassification string

const (
	AccountRentExpense          AccountClassification = "RENT_EXPENSE"
	AccountUtilityExpense       AccountClassification = "UTILITY_EXPENSE"
	AccountSecurityDepositAsset AccountClassification = "SECURITY_DEPOSIT_ASSET"
	AccountMovingExpense        AccountClassification = "MOVING_EXPENSE"
	AccountCashAsset            AccountClassification = "CASH_ASSET"
	AccountFundingLiability     AccountClassification = "FUNDING_LIABILITY"
	AccountOtherExpense         AccountClassification = "OTHER_EXPENSE"
)

// TransactionType is the business-level transaction category.
type TransactionType string

const (
	TxnRentPayment     TransactionType = "RENT_PAYMENT"
	TxnRentArrears     TransactionType = "RENT_ARREARS"
	TxnUtilityPayment  TransactionType = "UTILITY_PAYMENT"
	TxnUtilityArrears  TransactionType = "UTILITY_ARREARS"
	TxnSecurityDeposit TransactionType = "SECURITY_DEPOSIT"
	TxnMovingCosts     TransactionType = "MOVING_COSTS"
	TxnFundingDeposit  TransactionType = "FUNDING_DEPOSIT"
	TxnOtherPayment    TransactionType = "OTHER_PAYMENT"
)

// DebitAccount returns the debit-side classification for a transaction.
func (t TransactionType) DebitAccount() AccountClassification {
	switch t {
	case TxnRentPayment, TxnRentArrears:
		return AccountRentExpense
	case TxnUtilityPayment, TxnUtilityArrears:
		return AccountUtilityExpense
	case TxnSecurityDeposit:
		return AccountSecurityDepositAsset
	case TxnMovingCosts:
		return AccountMovingExpense
	case TxnFundingDeposit:
		return AccountCashAsset
	default:
		return AccountOtherExpense
	}
}

// CreditAccount returns the credit-side classification for a transaction.
func (t TransactionType) CreditAccount() AccountClassification {
	if t == TxnFundingDeposit {
		return AccountFundingLiability
	}
	return AccountCashAsset
}

// Entry is one side of a double-entry posting. Entries are immutable once
// recorded; redacted views copy and transform them without touching the
// originals.
type Entry struct {
	EntryID           string                `json:"entry_id"`
	TransactionID     string                `json:"transaction_id"`
	Type              EntryType             `json:"type"`
	Account           AccountClassification `json:"account"`
	Amount            decimal.Decimal       `json:"amount"`
	Description       string                `json:"description"`
	FundingSourceCode string                `json:"funding_source_code,omitempty"`
	HUDCategoryCode   string                `json:"hud_category_code,omitempty"`
	PayeeID           string                `json:"payee_id,omitempty"`
	PayeeName         string                `json:"payee_name,omitempty"`
	PeriodStart       *time.Time            `json:"period_start,omitempty"`
	PeriodEnd         *time.Time            `json:"period_end,omitempty"`
	RecordedBy        string                `json:"recorded_by"`
	RecordedAt        time.Time             `json:"recorded_at"`
}

// Signed returns the entry amount with credits positive and debits
// negative, the convention used for payee-facing balances.
func (e Entry) Signed() decimal.Decimal {
	if e.Type == Credit {
		return e.Amount
	}
	return e.Amount.Neg()
}
