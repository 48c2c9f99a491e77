package ledger

import (
	"testing"

	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  Category
	}{
		{
			name:  "normalized category wins",
			entry: Entry{Category: CategoryIncome, EntryType: EntryTypePengeluaran, TransactionType: "expense"},
			want:  CategoryIncome,
		},
		{
			name:  "transfer marker in source_type",
			entry: Entry{SourceType: EntryTypeTransferMasuk, EntryType: EntryTypeOrderan},
			want:  CategoryTransferIn,
		},
		{
			name:  "transfer marker in entry_type",
			entry: Entry{EntryType: EntryTypeTransferKeluar},
			want:  CategoryTransferOut,
		},
		{
			name:  "legacy income type",
			entry: Entry{EntryType: EntryTypeOrderan},
			want:  CategoryIncome,
		},
		{
			name:  "legacy repayment is income",
			entry: Entry{EntryType: EntryTypePanjarPelunasan},
			want:  CategoryIncome,
		},
		{
			name:  "unknown entry_type counts as expense",
			entry: Entry{EntryType: "something_new"},
			want:  CategoryExpense,
		},
		{
			name:  "entry_type beats transaction_type",
			entry: Entry{EntryType: EntryTypePengeluaran, TransactionType: "income"},
			want:  CategoryExpense,
		},
		{
			name:  "legacy transaction_type income",
			entry: Entry{TransactionType: "income"},
			want:  CategoryIncome,
		},
		{
			name:  "legacy transaction_type expense",
			entry: Entry{TransactionType: "expense"},
			want:  CategoryExpense,
		},
		{
			name:  "completely empty row falls back to expense",
			entry: Entry{},
			want:  CategoryExpense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.entry); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntrySigned(t *testing.T) {
	amount := types.NewMoneyFromInt(50_000)

	income := NewEntry(id.New(), amount, CategoryIncome)
	if !income.Signed().Equal(amount) {
		t.Errorf("income signed = %s, want %s", income.Signed(), amount)
	}

	expense := NewEntry(id.New(), amount, CategoryExpense)
	if !expense.Signed().Equal(amount.Neg()) {
		t.Errorf("expense signed = %s, want %s", expense.Signed(), amount.Neg())
	}

	in := NewEntry(id.New(), amount, CategoryTransferIn)
	out := NewEntry(id.New(), amount, CategoryTransferOut)
	if !in.Signed().Add(out.Signed()).IsZero() {
		t.Error("transfer pair should net to zero")
	}
}
