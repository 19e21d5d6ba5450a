package accounting

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

// Default account identifiers applied when a payload omits them.
const (
	DefaultCustomerAccount = "1100-AccountsReceivable"
	DefaultLineAccount     = "4000-Revenue"
	DefaultTaxAccount      = "2100-Tax"
	DefaultListAccount     = "UNKNOWN"
)

// currencyScale is the fixed-point precision of all amounts.
const currencyScale = 2

// roundingTolerance separates floating rounding noise, which is absorbed,
// from a genuinely unbalanced invoice, which must fail loudly.
var roundingTolerance = decimal.New(1, -currencyScale) // 0.01

// UnbalancedInvoiceError reports an invoice whose debit and credit sides
// differ by more than the rounding tolerance even after tax inference.
type UnbalancedInvoiceError struct {
	InvoiceID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

func (e *UnbalancedInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s is unbalanced (debit %s != credit %s)", e.InvoiceID, e.Debit, e.Credit)
}

// Result is the outcome of exploding one payload. A nil DropReason with no
// entries means the input was legitimately empty; a non-nil DropReason
// records why an unclassifiable payload was dropped. Neither is an error:
// bad payloads degrade to an empty entry set by design.
type Result struct {
	Entries    []entry.Entry
	DropReason error
}

// Exploder converts raw payloads into entry sets. It is pure, synchronous
// computation; the only injected dependency is the clock.
type Exploder struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewExploder creates an exploder using the wall clock.
func NewExploder(logger *slog.Logger) *Exploder {
	return &Exploder{logger: logger, now: time.Now}
}

// Explode classifies the payload and runs the matching expansion. Every
// produced entry is tagged with batchID. The only error it returns is
// *UnbalancedInvoiceError; anything unclassifiable yields an empty Result
// carrying the drop reason.
func (x *Exploder) Explode(payload, batchID string) (Result, error) {
	c := Classify(payload, x.now().UTC())
	switch c.Kind {
	case KindInvoice:
		entries, err := x.explodeInvoice(c.Invoice, batchID)
		if err != nil {
			return Result{}, err
		}
		return Result{Entries: entries}, nil
	case KindGenericList:
		return Result{Entries: x.expandList(c.List, batchID)}, nil
	default:
		if c.Reason != nil {
			x.logger.Warn("Dropping unclassifiable payload",
				"batch_id", batchID,
				"reason", c.Reason.Error(),
			)
		}
		return Result{DropReason: c.Reason}, nil
	}
}

// explodeInvoice emits one debit entry against the customer account for the
// invoice total, one credit entry per line, and, when the total exceeds
// the line sum, a tax/adjustment entry for the rounded difference.
// A residue within the rounding tolerance is absorbed into the first
// non-customer entry; anything larger fails the whole explosion.
func (x *Exploder) explodeInvoice(inv *Invoice, batchID string) ([]entry.Entry, error) {
	customer := inv.CustomerAccount
	if customer == "" {
		customer = DefaultCustomerAccount
	}

	entries := []entry.Entry{
		entry.New(customer, inv.Total, inv.Date, fmt.Sprintf("Invoice %s", inv.InvoiceID), batchID),
	}

	for _, line := range inv.Lines {
		account := DefaultLineAccount
		if line.Account != nil && *line.Account != "" {
			account = *line.Account
		}
		desc := line.Desc
		if desc == "" {
			desc = fmt.Sprintf("Line of %s", inv.InvoiceID)
		}
		entries = append(entries, entry.New(account, *line.Amount, inv.Date, desc, batchID))
	}

	// Only a positive remainder is categorized as inferred tax. A deficit
	// means the lines overshoot the total, which is not tax; it falls
	// through to the balance check below.
	sumLines := sumWhere(entries, func(e entry.Entry) bool { return e.Account != customer })
	taxAmount := inv.Total.Sub(sumLines).Round(currencyScale)
	if taxAmount.IsPositive() {
		taxAccount := inv.TaxAccount
		if taxAccount == "" {
			taxAccount = DefaultTaxAccount
		}
		entries = append(entries, entry.New(taxAccount, taxAmount, inv.Date,
			fmt.Sprintf("Tax/Adjustment for %s", inv.InvoiceID), batchID))
	}

	debit := sumWhere(entries, func(e entry.Entry) bool { return e.Account == customer })
	credit := sumWhere(entries, func(e entry.Entry) bool { return e.Account != customer })
	diff := debit.Sub(credit)
	if diff.IsZero() {
		return entries, nil
	}

	if diff.Abs().Cmp(roundingTolerance) <= 0 && len(entries) > 1 {
		if i := firstIndexWhere(entries, func(e entry.Entry) bool { return e.Account != customer }); i >= 0 {
			return absorbResidue(entries, i, diff), nil
		}
	}

	return nil, &UnbalancedInvoiceError{InvoiceID: inv.InvoiceID, Debit: debit, Credit: credit}
}

// expandList emits one entry per array element in order. No balancing is
// performed or expected.
func (x *Exploder) expandList(items []LineItem, batchID string) []entry.Entry {
	now := x.now().UTC()
	entries := make([]entry.Entry, 0, len(items))
	for _, item := range items {
		account := DefaultListAccount
		if item.Account != nil && *item.Account != "" {
			account = *item.Account
		}
		entries = append(entries, entry.New(account, *item.Amount, now, item.Desc, batchID))
	}
	return entries
}

// absorbResidue rebuilds the sequence with entries[i] carrying its amount
// plus the residue. The original slice is left untouched.
func absorbResidue(entries []entry.Entry, i int, residue decimal.Decimal) []entry.Entry {
	out := make([]entry.Entry, len(entries))
	copy(out, entries)
	out[i] = entries[i].WithAmount(entries[i].Amount.Add(residue))
	return out
}

func sumWhere(entries []entry.Entry, match func(entry.Entry) bool) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		if match(e) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

func firstIndexWhere(entries []entry.Entry, match func(entry.Entry) bool) int {
	for i, e := range entries {
		if match(e) {
			return i
		}
	}
	return -1
}
