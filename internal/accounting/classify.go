// Package accounting implements the payload classification and explosion
// core: it turns one raw JSON business event into the balanced set of
// ledger entries that represents it.
package accounting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the outcome of classifying a raw payload.
type Kind int

const (
	// KindUnrecognized covers empty input, malformed JSON and shapes the
	// pipeline does not understand. It always yields an empty entry set.
	KindUnrecognized Kind = iota
	// KindInvoice is a JSON object with "type": "invoice".
	KindInvoice
	// KindGenericList is a flat JSON array of {account, amount, desc}.
	KindGenericList
)

// ErrUnrecognizedShape marks valid JSON that is neither an invoice object
// nor an entry array.
var ErrUnrecognizedShape = errors.New("payload is neither an invoice object nor an entry array")

// LineItem is one element of a generic entry array or of an invoice's
// lines. Account and Amount are pointers so absence is distinguishable
// from a zero value: a missing amount fails classification, a missing
// account picks up a default during explosion.
type LineItem struct {
	Account *string          `json:"account"`
	Amount  *decimal.Decimal `json:"amount"`
	Desc    string           `json:"desc"`
}

// Invoice is a fully parsed invoice payload. Date is already resolved:
// a missing or empty date field defaults to the classification timestamp.
type Invoice struct {
	InvoiceID       string
	Date            time.Time
	CustomerAccount string
	Total           decimal.Decimal
	Lines           []LineItem
	TaxAccount      string
}

// Classification is the tagged result of inspecting one raw payload.
// Exactly one of Invoice or List is populated for the matching kind.
// For KindUnrecognized, Reason distinguishes a parse failure or unknown
// shape (non-nil) from legitimately empty input (nil); either way the
// payload degrades to an empty entry set rather than an error.
type Classification struct {
	Kind    Kind
	Invoice *Invoice
	List    []LineItem
	Reason  error
}

type invoiceDoc struct {
	Type            string          `json:"type"`
	InvoiceID       string          `json:"invoiceId"`
	Date            string          `json:"date"`
	CustomerAccount string          `json:"customerAccount"`
	Total           decimal.Decimal `json:"total"`
	Lines           []LineItem      `json:"lines"`
	TaxAccount      string          `json:"taxAccount"`
}

// Classify inspects a raw payload string and selects the explosion path.
// All payload parsing happens here, including per-line amount presence and
// invoice date parsing, so the explosion algorithms operate on clean data.
// The now argument supplies the default for a missing invoice date.
func Classify(raw string, now time.Time) Classification {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classification{Kind: KindUnrecognized}
	}

	switch trimmed[0] {
	case '{':
		return classifyObject(trimmed, now)
	case '[':
		return classifyArray(trimmed)
	default:
		if !json.Valid([]byte(trimmed)) {
			return Classification{Kind: KindUnrecognized, Reason: errors.New("payload is not valid JSON")}
		}
		return Classification{Kind: KindUnrecognized, Reason: ErrUnrecognizedShape}
	}
}

func classifyObject(raw string, now time.Time) Classification {
	var doc invoiceDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Classification{Kind: KindUnrecognized, Reason: fmt.Errorf("malformed payload object: %w", err)}
	}
	if doc.Type != "invoice" {
		return Classification{Kind: KindUnrecognized, Reason: ErrUnrecognizedShape}
	}

	for i, line := range doc.Lines {
		if line.Amount == nil {
			return Classification{Kind: KindUnrecognized, Reason: fmt.Errorf("invoice line %d is missing an amount", i)}
		}
	}

	date, err := parseInvoiceDate(doc.Date, now)
	if err != nil {
		return Classification{Kind: KindUnrecognized, Reason: fmt.Errorf("invoice date %q: %w", doc.Date, err)}
	}

	return Classification{
		Kind: KindInvoice,
		Invoice: &Invoice{
			InvoiceID:       doc.InvoiceID,
			Date:            date,
			CustomerAccount: doc.CustomerAccount,
			Total:           doc.Total,
			Lines:           doc.Lines,
			TaxAccount:      doc.TaxAccount,
		},
	}
}

func classifyArray(raw string) Classification {
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return Classification{Kind: KindUnrecognized, Reason: fmt.Errorf("malformed entry array: %w", err)}
	}
	for i, item := range items {
		if item.Amount == nil {
			return Classification{Kind: KindUnrecognized, Reason: fmt.Errorf("array element %d is missing an amount", i)}
		}
	}
	return Classification{Kind: KindGenericList, List: items}
}

var invoiceDateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseInvoiceDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	var err error
	for _, layout := range invoiceDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
