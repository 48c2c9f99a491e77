// Package ledger provides the append-only cash movement log (buku kas).
// One Entry per income/expense/transfer event. Entries are never updated;
// they are deleted only by the repair utilities when orphaned.
package ledger

import (
	"context"
	"time"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// Category is the normalized classification of a ledger entry.
// It is set at write time for every new entry; the legacy fields
// (EntryType, TransactionType, SourceType) exist only for rows migrated
// from the historical cash_history table.
type Category string

const (
	CategoryIncome      Category = "income"
	CategoryExpense     Category = "expense"
	CategoryTransferIn  Category = "transfer_in"
	CategoryTransferOut Category = "transfer_out"
)

// Legacy entry type values (the historical `type` column).
const (
	EntryTypeOrderan           = "orderan"
	EntryTypeKasMasukManual    = "kas_masuk_manual"
	EntryTypeKasKeluarManual   = "kas_keluar_manual"
	EntryTypePanjarPengambilan = "panjar_pengambilan"
	EntryTypePanjarPelunasan   = "panjar_pelunasan"
	EntryTypePengeluaran       = "pengeluaran"
	EntryTypePembayaranPO      = "pembayaran_po"
	EntryTypePemutihanPiutang  = "pemutihan_piutang"
	EntryTypeTransferMasuk     = "transfer_masuk"
	EntryTypeTransferKeluar    = "transfer_keluar"
)

// Reference types for the structured reference key. Replaces the historical
// "Order: <id>" description parsing.
//
// ReferenceOrderBackfill marks entries synthesized by the repair backfill.
// Only this reference type carries the store's uniqueness constraint (one
// synthesized entry per order); regular payment references may repeat, an
// order paid in installments writes several entries against the same order.
const (
	ReferenceOrder         = "order"
	ReferenceOrderBackfill = "order_backfill"
	ReferencePurchaseOrder = "purchase_order"
	ReferenceAdvance       = "advance"
	ReferenceTransfer      = "transfer"
	ReferenceManual        = "manual"
)

// Entry is one row of the cash movement log.
type Entry struct {
	ID        id.ID       `db:"id" json:"id"`
	AccountID id.ID       `db:"account_id" json:"accountId"`
	Amount    types.Money `db:"amount" json:"amount"` // non-negative magnitude

	// Normalized category, set at write time. Empty only on migrated rows.
	Category Category `db:"category" json:"category,omitempty"`

	// Legacy classification fields, at most one scheme populated per migrated row.
	EntryType       string `db:"entry_type" json:"entryType,omitempty"`
	TransactionType string `db:"transaction_type" json:"transactionType,omitempty"`
	SourceType      string `db:"source_type" json:"sourceType,omitempty"`

	Description     string `db:"description" json:"description,omitempty"`
	ReferenceNumber string `db:"reference_number" json:"referenceNumber,omitempty"`

	// Structured reference to the originating document.
	ReferenceID   *id.ID `db:"reference_id" json:"referenceId,omitempty"`
	ReferenceType string `db:"reference_type" json:"referenceType,omitempty"`

	CreatedBy     string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedByName string    `db:"created_by_name" json:"createdByName,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// NewEntry creates an entry with generated ID and timestamp.
func NewEntry(accountID id.ID, amount types.Money, category Category) Entry {
	return Entry{
		ID:        id.New(),
		AccountID: accountID,
		Amount:    amount,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate implements invariant checks for new entries.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.AccountID) {
		return apperror.NewValidation("account is required").
			WithDetail("field", "accountId")
	}
	if e.Amount.IsNegative() {
		return apperror.NewValidation("amount must be a non-negative magnitude").
			WithDetail("field", "amount")
	}
	switch e.Category {
	case CategoryIncome, CategoryExpense, CategoryTransferIn, CategoryTransferOut:
	default:
		return apperror.NewValidation("invalid category").
			WithDetail("field", "category").
			WithDetail("value", string(e.Category))
	}
	return nil
}

// IsTransfer reports whether the entry is one leg of an internal transfer pair.
func (e *Entry) IsTransfer() bool {
	c := Classify(*e)
	return c == CategoryTransferIn || c == CategoryTransferOut
}

// Signed returns the amount with sign applied per classification:
// income and transfer-in positive, expense and transfer-out negative.
func (e *Entry) Signed() types.Money {
	switch Classify(*e) {
	case CategoryIncome, CategoryTransferIn:
		return e.Amount
	default:
		return e.Amount.Neg()
	}
}
