package postgres

import (
	"context"
	"fmt"
	"time"
)

// NextNumber allocates the next document number within a (scope, day) series
// using an atomic upsert, so concurrent writers never receive the same value.
// Format: PREFIX-YYYYMMDD-NNNN.
func NextNumber(ctx context.Context, txManager *TxManager, scope, prefix string, day time.Time) (string, error) {
	sql := `
		INSERT INTO numerators (scope, day, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, day)
		DO UPDATE SET value = numerators.value + 1
		RETURNING value
	`

	stamp := day.Format("20060102")
	var value int64
	querier := txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, scope, stamp).Scan(&value); err != nil {
		return "", fmt.Errorf("allocate number for %s: %w", scope, err)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, stamp, value), nil
}
