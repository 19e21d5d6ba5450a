package entry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is a single ledger line. All entries produced from one ingestion
// unit share a BatchID, which is the idempotency key for persistence.
type Entry struct {
	EntryID     string          `json:"entry_id"`
	Account     string          `json:"account"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	BatchID     string          `json:"batch_id"`
}

// New builds an entry with a freshly generated EntryID.
func New(account string, amount decimal.Decimal, date time.Time, description, batchID string) Entry {
	return Entry{
		EntryID:     uuid.NewString(),
		Account:     account,
		Amount:      amount,
		Date:        date,
		Description: description,
		BatchID:     batchID,
	}
}

// WithAmount returns a copy of the entry carrying the given amount.
// The EntryID is preserved: this is the rounding-absorption rebuild,
// the only permitted mutation before persistence.
func (e Entry) WithAmount(amount decimal.Decimal) Entry {
	e.Amount = amount
	return e
}
