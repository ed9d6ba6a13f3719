package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// AggregateType is the stream type name for ledgers.
const AggregateType = "FinancialLedger"

// Status is the ledger lifecycle state.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// Ledger is the event-sourced financial ledger aggregate. Every
// transaction posts a balanced debit/credit pair, so the ledger is
// balanced whenever total debits equal total credits.
type Ledger struct {
	domain.AggregateRoot

	clientID      string
	enrollmentID  string
	householdID   string
	name          string
	status        Status
	vawaProtected bool
	redaction     RedactionLevel

	entries      []Entry
	totalDebits  decimal.Decimal
	totalCredits decimal.Decimal
	balance      decimal.Decimal

	createdBy string
}

// New returns an empty ledger ready for replay or creation.
func New() *Ledger {
	l := &Ledger{}
	l.AggregateRoot = domain.NewAggregateRoot(AggregateType, l.when)
	return l
}

// Create opens a new ledger. A VAWA-protected ledger starts at FULL
// redaction for external views.
func Create(clientID, enrollmentID, householdID, name string, vawaProtected bool, createdBy string, meta domain.EventMetadata) (*Ledger, error) {
	if clientID == "" {
		return nil, domain.NewValidationError("clientId", "client id is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("name", "ledger name is required")
	}

	l := New()
	err := l.Apply(&Created{
		LedgerID:      uuid.NewString(),
		ClientID:      clientID,
		EnrollmentID:  enrollmentID,
		HouseholdID:   householdID,
		Name:          name,
		VAWAProtected: vawaProtected,
		CreatedBy:     createdBy,
	}, meta)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// RecordTransaction posts a transaction as a balanced debit/credit pair.
func (l *Ledger) RecordTransaction(transactionID string, txnType TransactionType, amount decimal.Decimal,
	fundingSourceCode, hudCategoryCode, description, payeeID, payeeName string,
	periodStart, periodEnd *time.Time, recordedBy string, meta domain.EventMetadata) error {

	if l.status == StatusClosed {
		return domain.NewStateError("cannot record transactions on a closed ledger")
	}
	if transactionID == "" {
		return domain.NewValidationError("transactionId", "transaction id is required")
	}
	if !amount.IsPositive() {
		return domain.NewValidationError("amount", "amount must be positive")
	}

	return l.Apply(&TransactionRecorded{
		TransactionID:     transactionID,
		Type:              txnType,
		Amount:            amount,
		FundingSourceCode: fundingSourceCode,
		HUDCategoryCode:   hudCategoryCode,
		Description:       description,
		PayeeID:           payeeID,
		PayeeName:         payeeName,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		DebitEntryID:      uuid.NewString(),
		DebitAccount:      txnType.DebitAccount(),
		CreditEntryID:     uuid.NewString(),
		CreditAccount:     txnType.CreditAccount(),
		RecordedBy:        recordedBy,
		RecordedAt:        domain.Now(),
	}, meta)
}

// RecordDeposit posts a funding deposit from a grant source.
func (l *Ledger) RecordDeposit(depositID string, amount decimal.Decimal, fundingSourceCode, depositSource string,
	depositDate time.Time, recordedBy string, meta domain.EventMetadata) error {

	description := fmt.Sprintf("Deposit from %s on %s", depositSource, depositDate.Format("2006-01-02"))
	return l.RecordTransaction(depositID, TxnFundingDeposit, amount, fundingSourceCode, "",
		description, "", depositSource, &depositDate, &depositDate, recordedBy, meta)
}

// ArrearsType selects the arrears transaction category.
type ArrearsType string

const (
	ArrearsRent    ArrearsType = "RENT"
	ArrearsUtility ArrearsType = "UTILITY"
)

// RecordArrears posts an arrears payment for a past-due period.
func (l *Ledger) RecordArrears(arrearsID string, amount decimal.Decimal, arrearsType ArrearsType,
	payeeID, payeeName string, periodStart, periodEnd time.Time, recordedBy string, meta domain.EventMetadata) error {

	txnType := TxnRentArrears
	hudCategory := "4.02"
	if arrearsType == ArrearsUtility {
		txnType = TxnUtilityArrears
		hudCategory = "4.03"
	}

	description := fmt.Sprintf("%s arrears for period %s to %s",
		arrearsType, periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))
	return l.RecordTransaction(arrearsID, txnType, amount, "", hudCategory,
		description, payeeID, payeeName, &periodStart, &periodEnd, recordedBy, meta)
}

// Close finalizes the ledger. The ledger must be balanced.
func (l *Ledger) Close(reason, closedBy string, meta domain.EventMetadata) error {
	if l.status == StatusClosed {
		return domain.NewStateError("ledger is already closed")
	}
	if !l.IsBalanced() {
		return domain.NewStateError("cannot close unbalanced ledger: debits %s, credits %s",
			l.totalDebits, l.totalCredits)
	}

	return l.Apply(&Closed{
		Reason:       reason,
		TotalDebits:  l.totalDebits,
		TotalCredits: l.totalCredits,
		Balance:      l.balance,
		ClosedBy:     closedBy,
	}, meta)
}

func (l *Ledger) when(payload domain.Payload) error {
	switch e := payload.(type) {
	case *Created:
		l.SetID(e.LedgerID)
		l.clientID = e.ClientID
		l.enrollmentID = e.EnrollmentID
		l.householdID = e.HouseholdID
		l.name = e.Name
		l.vawaProtected = e.VAWAProtected
		l.redaction = RedactionNone
		if e.VAWAProtected {
			l.redaction = RedactionFull
		}
		l.status = StatusActive
		l.totalDebits = decimal.Zero
		l.totalCredits = decimal.Zero
		l.balance = decimal.Zero
		l.createdBy = e.CreatedBy

	case *TransactionRecorded:
		base := Entry{
			TransactionID:     e.TransactionID,
			Amount:            e.Amount,
			Description:       e.Description,
			FundingSourceCode: e.FundingSourceCode,
			HUDCategoryCode:   e.HUDCategoryCode,
			PayeeID:           e.PayeeID,
			PayeeName:         e.PayeeName,
			PeriodStart:       e.PeriodStart,
			PeriodEnd:         e.PeriodEnd,
			RecordedBy:        e.RecordedBy,
			RecordedAt:        e.RecordedAt,
		}

		debit := base
		debit.EntryID = e.DebitEntryID
		debit.Type = Debit
		debit.Account = e.DebitAccount

		credit := base
		credit.EntryID = e.CreditEntryID
		credit.Type = Credit
		credit.Account = e.CreditAccount

		l.entries = append(l.entries, debit, credit)
		l.totalDebits = l.totalDebits.Add(e.Amount)
		l.totalCredits = l.totalCredits.Add(e.Amount)
		l.balance = l.totalCredits.Sub(l.totalDebits)

	case *Closed:
		l.status = StatusClosed

	default:
		return domain.NewUnhandledEventError(AggregateType, payload.EventType())
	}
	return nil
}

// ClientID returns the owning client's id.
func (l *Ledger) ClientID() string { return l.clientID }

// EnrollmentID returns the associated enrollment id.
func (l *Ledger) EnrollmentID() string { return l.enrollmentID }

// Name returns the ledger's display name.
func (l *Ledger) Name() string { return l.name }

// Status returns the lifecycle state.
func (l *Ledger) Status() Status { return l.status }

// VAWAProtected reports whether external views must be redacted.
func (l *Ledger) VAWAProtected() bool { return l.vawaProtected }

// Redaction returns the redaction level applied to external views.
func (l *Ledger) Redaction() RedactionLevel { return l.redaction }

// Entries returns a copy of all postings.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// EntriesForPayee returns postings addressed to a specific payee.
func (l *Ledger) EntriesForPayee(payeeID string) []Entry {
	var out []Entry
	for _, entry := range l.entries {
		if entry.PayeeID == payeeID {
			out = append(out, entry)
		}
	}
	return out
}

// TotalDebits returns the accumulated debit total.
func (l *Ledger) TotalDebits() decimal.Decimal { return l.totalDebits }

// TotalCredits returns the accumulated credit total.
func (l *Ledger) TotalCredits() decimal.Decimal { return l.totalCredits }

// Balance returns credits minus debits.
func (l *Ledger) Balance() decimal.Decimal { return l.balance }

// IsBalanced reports whether debits equal credits.
func (l *Ledger) IsBalanced() bool {
	return l.totalDebits.Equal(l.totalCredits)
}
