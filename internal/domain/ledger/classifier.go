package ledger

// Classify maps an entry to exactly one Category. It is a pure function of the
// entry's fields and is total: every entry shape, including migrated rows where
// the three legacy schemes overlap inconsistently, resolves to a category.
//
// Every aggregation path (cash-flow summary, daily report, exports) must go
// through this one function. Priority order, first match wins:
//
//  1. the normalized category column, when set;
//  2. transfer markers in source_type or entry_type;
//  3. the legacy entry_type income set; any other non-empty entry_type is expense;
//  4. the legacy transaction_type income/expense pair;
//  5. expense as the uniform fallback for unclassifiable rows.
func Classify(e Entry) Category {
	switch e.Category {
	case CategoryIncome, CategoryExpense, CategoryTransferIn, CategoryTransferOut:
		return e.Category
	}

	// Transfer markers appear in both legacy schemes depending on the writer.
	switch {
	case e.SourceType == EntryTypeTransferMasuk || e.EntryType == EntryTypeTransferMasuk:
		return CategoryTransferIn
	case e.SourceType == EntryTypeTransferKeluar || e.EntryType == EntryTypeTransferKeluar:
		return CategoryTransferOut
	}

	if e.EntryType != "" {
		if legacyIncomeTypes[e.EntryType] {
			return CategoryIncome
		}
		return CategoryExpense
	}

	switch e.TransactionType {
	case "income":
		return CategoryIncome
	case "expense":
		return CategoryExpense
	}

	// Uniform fallback. Historical readers disagreed between "expense" and an
	// "unknown" label; classification here must stay total, so unclassifiable
	// rows count as expense everywhere.
	return CategoryExpense
}

var legacyIncomeTypes = map[string]bool{
	EntryTypeOrderan:          true,
	EntryTypeKasMasukManual:   true,
	EntryTypePanjarPelunasan:  true,
	EntryTypePemutihanPiutang: true,
}
