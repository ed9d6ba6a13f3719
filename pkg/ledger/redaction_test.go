package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterpoint/casevault/pkg/domain"
)

func ledgerWithHistory(t *testing.T, vawaProtected bool) *Ledger {
	t.Helper()
	l, err := Create("client-1", "enroll-1", "", "RRH Financial Assistance", vawaProtected, "worker-1", domain.EventMetadata{})
	require.NoError(t, err)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	err = l.RecordTransaction(uuid.NewString(), TxnRentPayment, decimal.RequireFromString("750.00"),
		"ESG", "4.01", "Rent $750.00 paid 2025-01-05 from Grant ESG2025", "landlord-1", "Oak Street Properties",
		&start, &end, "worker-1", domain.EventMetadata{})
	require.NoError(t, err)

	// Funding deposits carry no payee id and never reach a landlord view.
	depositDate := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	err = l.RecordDeposit(uuid.NewString(), decimal.RequireFromString("5000.00"), "ESG", "ESG Grant", depositDate, "worker-1", domain.EventMetadata{})
	require.NoError(t, err)
	return l
}

func TestLandlordViewUnprotected(t *testing.T) {
	l := ledgerWithHistory(t, false)
	view := l.LandlordView("landlord-1")

	assert.False(t, view.VAWAProtected)
	assert.Equal(t, "client-1", view.ClientID)
	assert.Equal(t, 2, view.TransactionCount())
	assert.True(t, view.PaymentTotal().Equal(decimal.RequireFromString("750.00")))
	for _, entry := range view.Entries {
		assert.Equal(t, "landlord-1", entry.PayeeID)
		assert.NotEmpty(t, entry.FundingSourceCode)
	}
}

func TestLandlordViewPartial(t *testing.T) {
	l := ledgerWithHistory(t, true)
	view := l.LandlordViewAt("landlord-1", RedactionPartial)

	require.Equal(t, 2, view.TransactionCount())
	assert.True(t, view.VAWAProtected)
	assert.Empty(t, view.ClientID)
	assert.Equal(t, "[CONFIDENTIAL CLIENT]", view.ClientName)

	for _, entry := range view.Entries {
		assert.True(t, entry.Amount.Equal(decimal.RequireFromString("750.00")), "amounts stay visible at PARTIAL")
		assert.Empty(t, entry.FundingSourceCode)
		assert.Equal(t, "[REDACTED]", entry.TransactionID)
		assert.Equal(t, "[SYSTEM]", entry.RecordedBy)
		assert.Equal(t, "Rent $[AMOUNT] paid [DATE] from Grant [REDACTED]", entry.Description)
	}
}

func TestLandlordViewFull(t *testing.T) {
	l := ledgerWithHistory(t, true)
	// FULL is the default for a VAWA-protected ledger.
	require.Equal(t, RedactionFull, l.Redaction())
	view := l.LandlordView("landlord-1")

	require.Equal(t, 2, view.TransactionCount())
	assert.True(t, view.Balance.IsZero(), "FULL forces a zero balance")
	for _, entry := range view.Entries {
		assert.True(t, entry.Amount.IsZero())
		assert.Equal(t, AccountOtherExpense, entry.Account)
		assert.Equal(t, "[VAWA PROTECTED - DETAILS REDACTED]", entry.Description)
		assert.Empty(t, entry.FundingSourceCode)
		assert.Empty(t, entry.HUDCategoryCode)
		assert.Nil(t, entry.PeriodStart)
		assert.Nil(t, entry.PeriodEnd)
	}
}

func TestLandlordViewComplete(t *testing.T) {
	l := ledgerWithHistory(t, true)
	view := l.LandlordViewAt("landlord-1", RedactionComplete)

	assert.Empty(t, view.Entries)
	assert.True(t, view.Balance.IsZero())
	assert.True(t, view.VAWAProtected)
}

func TestRedactDescription(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"amount", "$1,200.50 rent payment", "$[AMOUNT] rent payment"},
		{"date", "paid on 2025-01-15 in full", "paid on [DATE] in full"},
		{"grant", "covered by Grant ESG2025 allocation", "covered by Grant [REDACTED] allocation"},
		{"fund", "drawn from Fund HOME reserve", "drawn from Fund [REDACTED] reserve"},
		{"plain text untouched", "monthly rent assistance", "monthly rent assistance"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, redactDescription(tc.in))
		})
	}
}
