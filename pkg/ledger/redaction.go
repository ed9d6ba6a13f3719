package ledger

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// RedactionLevel controls how much of a VAWA-protected ledger an external
// party (typically a landlord) may see.
type RedactionLevel string

const (
	// RedactionNone passes entries through unchanged.
	RedactionNone RedactionLevel = "NONE"

	// RedactionPartial keeps payment amounts and types but strips funding
	// sources and scrubs free-text descriptions.
	RedactionPartial RedactionLevel = "PARTIAL"

	// RedactionFull zeroes amounts, generalizes classifications, and
	// replaces descriptions with a fixed placeholder.
	RedactionFull RedactionLevel = "FULL"

	// RedactionComplete removes entries from the result set entirely.
	RedactionComplete RedactionLevel = "COMPLETE"
)

var (
	amountPattern = regexp.MustCompile(`\$[0-9,.]+ `)
	datePattern   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	grantPattern  = regexp.MustCompile(`Grant\s+\w+`)
	fundPattern   = regexp.MustCompile(`Fund\s+\w+`)
)

// redactDescription scrubs amounts, dates, and grant or fund references
// from free text while keeping the basic payment narrative.
func redactDescription(description string) string {
	out := amountPattern.ReplaceAllString(description, "$$[AMOUNT] ")
	out = datePattern.ReplaceAllString(out, "[DATE]")
	out = grantPattern.ReplaceAllString(out, "Grant [REDACTED]")
	out = fundPattern.ReplaceAllString(out, "Fund [REDACTED]")
	return out
}

// redactEntry transforms one entry for landlord visibility. COMPLETE
// never reaches here; those entries are filtered out upstream.
func redactEntry(entry Entry, level RedactionLevel) Entry {
	switch level {
	case RedactionPartial:
		out := entry
		out.TransactionID = "[REDACTED]"
		out.Description = redactDescription(entry.Description)
		out.FundingSourceCode = ""
		out.RecordedBy = "[SYSTEM]"
		return out
	case RedactionFull:
		out := entry
		out.TransactionID = "[REDACTED]"
		out.Account = AccountOtherExpense
		out.Amount = decimal.Zero
		out.Description = "[VAWA PROTECTED - DETAILS REDACTED]"
		out.FundingSourceCode = ""
		out.HUDCategoryCode = ""
		out.PeriodStart = nil
		out.PeriodEnd = nil
		out.RecordedBy = "[SYSTEM]"
		return out
	default:
		return entry
	}
}

// LandlordView is the redacted projection of a ledger disclosed to a
// landlord. ClientID and ClientName are blanked for protected ledgers.
type LandlordView struct {
	LedgerID      string
	ClientID      string
	ClientName    string
	LandlordID    string
	Entries       []Entry
	Balance       decimal.Decimal
	VAWAProtected bool
}

// TransactionCount returns the number of visible postings.
func (v LandlordView) TransactionCount() int { return len(v.Entries) }

// PaymentTotal sums the visible credit entries.
func (v LandlordView) PaymentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range v.Entries {
		if entry.Type == Credit {
			total = total.Add(entry.Amount)
		}
	}
	return total
}

// LandlordView builds the redacted projection of this ledger for one
// landlord at the ledger's own redaction level.
func (l *Ledger) LandlordView(landlordID string) LandlordView {
	return l.LandlordViewAt(landlordID, l.redaction)
}

// LandlordViewAt builds the projection at an explicit redaction level,
// for disclosures negotiated above the ledger default. Balance
// suppression follows the entries: FULL and COMPLETE force a zero
// balance so totals cannot leak what the line items hide.
func (l *Ledger) LandlordViewAt(landlordID string, level RedactionLevel) LandlordView {
	payeeEntries := l.EntriesForPayee(landlordID)

	if !l.vawaProtected {
		return LandlordView{
			LedgerID:      l.ID(),
			ClientID:      l.clientID,
			ClientName:    l.name,
			LandlordID:    landlordID,
			Entries:       payeeEntries,
			Balance:       balanceOf(payeeEntries),
			VAWAProtected: false,
		}
	}

	visible := make([]Entry, 0, len(payeeEntries))
	if level != RedactionComplete {
		for _, entry := range payeeEntries {
			if entry.PayeeID == "" {
				continue
			}
			visible = append(visible, redactEntry(entry, level))
		}
	}

	balance := decimal.Zero
	if level == RedactionNone || level == RedactionPartial {
		balance = balanceOf(visible)
	}

	return LandlordView{
		LedgerID:      l.ID(),
		ClientID:      "",
		ClientName:    "[CONFIDENTIAL CLIENT]",
		LandlordID:    landlordID,
		Entries:       visible,
		Balance:       balance,
		VAWAProtected: true,
	}
}

func balanceOf(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Signed())
	}
	return total
}
