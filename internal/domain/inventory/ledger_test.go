package inventory

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"github.com/your-org/inventory-backend/internal/pkg/testdb"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(testdb.New(t, &LedgerEntry{}))
}

func TestLedgerRunningBalance(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	steps := []struct {
		change  int
		code    ReasonCode
		balance int
	}{
		{100, ReasonPurchase, 100},
		{-5, ReasonSale, 95},
		{-8, ReasonSale, 87},
		{50, ReasonPurchase, 137},
		{-3, ReasonSale, 134},
	}

	for _, step := range steps {
		entry, err := ledger.Append(ctx, AppendParams{
			SKU:        "KUR-010",
			Change:     step.change,
			Reason:     "test",
			ReasonCode: step.code,
		})
		require.NoError(t, err)
		assert.Equal(t, step.balance, entry.BalanceQty)
	}

	balance, err := ledger.CurrentBalance(ctx, "KUR-010")
	require.NoError(t, err)
	assert.Equal(t, 134, balance)

	latest, err := ledger.LatestBalance(ctx, "KUR-010")
	require.NoError(t, err)
	assert.Equal(t, 134, latest)

	rec, err := ledger.Verify(ctx, "KUR-010")
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 5, rec.Entries)
}

func TestLedgerBalanceIsSumOfChanges(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(7, 42))

	sums := map[string]int{}
	skus := []string{"A-1", "B-2", "C-3"}
	for i := 0; i < 150; i++ {
		sku := skus[rng.IntN(len(skus))]
		change := rng.IntN(41) - 20
		_, err := ledger.Append(ctx, AppendParams{SKU: sku, Change: change, Reason: "random"})
		require.NoError(t, err)
		sums[sku] += change
	}

	for _, sku := range skus {
		balance, err := ledger.CurrentBalance(ctx, sku)
		require.NoError(t, err)
		assert.Equal(t, sums[sku], balance, sku)

		latest, err := ledger.LatestBalance(ctx, sku)
		require.NoError(t, err)
		assert.Equal(t, sums[sku], latest, sku)

		_, err = ledger.Verify(ctx, sku)
		assert.NoError(t, err, sku)
	}
}

func TestLedgerUnknownSKUIsZero(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	balance, err := ledger.CurrentBalance(ctx, "NOPE")
	require.NoError(t, err)
	assert.Zero(t, balance)

	latest, err := ledger.LatestBalance(ctx, "NOPE")
	require.NoError(t, err)
	assert.Zero(t, latest)
}

func TestLedgerAppendRequiresSKU(t *testing.T) {
	_, err := newLedger(t).Append(context.Background(), AppendParams{SKU: "  ", Change: 1})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestLedgerAppendAllowsNegativeResult(t *testing.T) {
	ledger := newLedger(t)

	entry, err := ledger.Append(context.Background(), AppendParams{SKU: "X", Change: -4, Reason: "shrinkage"})
	require.NoError(t, err)
	assert.Equal(t, -4, entry.BalanceQty)
	assert.Equal(t, ReasonAdjust, entry.ReasonCode)
}

func TestVerifyDetectsDrift(t *testing.T) {
	db := testdb.New(t, &LedgerEntry{})
	ledger := NewLedger(db)
	ctx := context.Background()

	_, err := ledger.Append(ctx, AppendParams{SKU: "X", Change: 10, Reason: "opening"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&LedgerEntry{
		SKU: "X", ChangeQty: -2, BalanceQty: 9, Reason: "bad row", ReasonCode: ReasonAdjust, CreatedAt: time.Now().UTC(),
	}).Error)

	rec, err := ledger.Verify(ctx, "X")
	assert.ErrorIs(t, err, ErrBalanceMismatch)
	require.NotNil(t, rec)
	assert.False(t, rec.Consistent)
	assert.Equal(t, 8, rec.SummedBalance)
	assert.Equal(t, 9, rec.CachedBalance)
	assert.NotZero(t, rec.FirstBadID)
}

func TestHistoryFiltersAndRestarts(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for i, at := range []time.Time{now.Add(-72 * time.Hour), now.Add(-24 * time.Hour), now} {
		_, err := ledger.Append(ctx, AppendParams{SKU: "H-1", Change: i + 1, Reason: "step", At: at})
		require.NoError(t, err)
	}
	_, err := ledger.Append(ctx, AppendParams{SKU: "OTHER", Change: 99, Reason: "noise", At: now})
	require.NoError(t, err)

	collect := func(since *time.Time) []int {
		var changes []int
		for entry, err := range ledger.History(ctx, "H-1", since) {
			require.NoError(t, err)
			changes = append(changes, entry.ChangeQty)
		}
		return changes
	}

	assert.Equal(t, []int{1, 2, 3}, collect(nil))
	assert.Equal(t, []int{1, 2, 3}, collect(nil), "ranging again re-runs the query")

	since := now.Add(-48 * time.Hour)
	assert.Equal(t, []int{2, 3}, collect(&since))

	seen := 0
	for range ledger.History(ctx, "H-1", nil) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestHistoryReportsStorageFailure(t *testing.T) {
	db := testdb.New(t, &LedgerEntry{})
	ledger := NewLedger(db)
	require.NoError(t, db.Migrator().DropTable(&LedgerEntry{}))

	var got error
	for _, err := range ledger.History(context.Background(), "X", nil) {
		got = err
	}
	assert.ErrorIs(t, got, apperr.ErrStorageUnavailable)

	_, err := ledger.Append(context.Background(), AppendParams{SKU: "X", Change: 1})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestPageNewestFirst(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 1; i <= 5; i++ {
		_, err := ledger.Append(ctx, AppendParams{SKU: "P-1", Change: i, Reason: "step", At: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	entries, total, err := ledger.Page(ctx, "P-1", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, entries, 2)
	assert.Equal(t, 4, entries[0].ChangeQty)
	assert.Equal(t, 3, entries[1].ChangeQty)
}
