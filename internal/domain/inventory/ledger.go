// internal/domain/inventory/ledger.go
package inventory

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Ledger is the append-only stock journal. The balance of a SKU is the sum
// of its entries' ChangeQty; nothing is ever updated or deleted.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a ledger on the given handle
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger whose reads and writes go through tx
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// AppendParams describes one stock movement
type AppendParams struct {
	SKU         string
	Change      int
	Reason      string
	ReasonCode  ReasonCode
	ReferenceID string
	// At defaults to now
	At time.Time
}

// Append records a movement with its resulting balance. It does not reject
// negative results; callers that need a floor check before appending.
func (l *Ledger) Append(ctx context.Context, p AppendParams) (*LedgerEntry, error) {
	sku := strings.TrimSpace(p.SKU)
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidEntry)
	}
	if p.ReasonCode == "" {
		p.ReasonCode = ReasonAdjust
	}
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}

	balance, err := l.CurrentBalance(ctx, sku)
	if err != nil {
		return nil, err
	}

	entry := &LedgerEntry{
		SKU:         sku,
		ChangeQty:   p.Change,
		BalanceQty:  balance + p.Change,
		Reason:      p.Reason,
		ReasonCode:  p.ReasonCode,
		ReferenceID: p.ReferenceID,
		CreatedAt:   at.UTC(),
	}
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, apperr.Storage("append ledger entry", err)
	}

	return entry, nil
}

// CurrentBalance sums every change recorded for sku. Unknown SKUs are 0.
func (l *Ledger) CurrentBalance(ctx context.Context, sku string) (int, error) {
	var total int64
	err := l.db.WithContext(ctx).
		Model(&LedgerEntry{}).
		Where("sku = ?", sku).
		Select("COALESCE(SUM(change_qty), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperr.Storage("sum ledger balance", err)
	}
	return int(total), nil
}

// LatestBalance returns the cached running balance of the newest entry
func (l *Ledger) LatestBalance(ctx context.Context, sku string) (int, error) {
	var entry LedgerEntry
	err := l.db.WithContext(ctx).Where("sku = ?", sku).Order("id DESC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperr.Storage("read latest ledger entry", err)
	}
	return entry.BalanceQty, nil
}

// History yields the entries of sku oldest first, optionally only those at or
// after since. The query runs each time the sequence is ranged over.
func (l *Ledger) History(ctx context.Context, sku string, since *time.Time) iter.Seq2[LedgerEntry, error] {
	return func(yield func(LedgerEntry, error) bool) {
		query := l.db.WithContext(ctx).Model(&LedgerEntry{}).Where("sku = ?", sku)
		if since != nil {
			query = query.Where("created_at >= ?", since.UTC())
		}

		rows, err := query.Order("created_at ASC, id ASC").Rows()
		if err != nil {
			yield(LedgerEntry{}, apperr.Storage("read ledger history", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var entry LedgerEntry
			if err := l.db.ScanRows(rows, &entry); err != nil {
				yield(LedgerEntry{}, apperr.Storage("scan ledger entry", err))
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(LedgerEntry{}, apperr.Storage("read ledger history", err))
		}
	}
}

// Page returns entries of sku newest first along with the total count
func (l *Ledger) Page(ctx context.Context, sku string, offset, limit int) ([]LedgerEntry, int64, error) {
	var total int64
	if err := l.db.WithContext(ctx).Model(&LedgerEntry{}).Where("sku = ?", sku).Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage("count ledger entries", err)
	}

	if limit <= 0 {
		limit = 50
	}

	var entries []LedgerEntry
	err := l.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, apperr.Storage("page ledger entries", err)
	}

	return entries, total, nil
}

// Verify walks the entries of sku in insertion order and checks that each
// cached balance equals the previous one plus its change, and that the last
// one equals the summed balance.
func (l *Ledger) Verify(ctx context.Context, sku string) (*Reconciliation, error) {
	var entries []LedgerEntry
	if err := l.db.WithContext(ctx).Where("sku = ?", sku).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, apperr.Storage("load ledger for verification", err)
	}

	rec := &Reconciliation{SKU: sku, Entries: len(entries), Consistent: true}
	running := 0
	for _, e := range entries {
		running += e.ChangeQty
		if e.BalanceQty != running && rec.Consistent {
			rec.Consistent = false
			rec.FirstBadID = e.ID
		}
		rec.CachedBalance = e.BalanceQty
	}
	rec.SummedBalance = running

	if rec.CachedBalance != rec.SummedBalance {
		rec.Consistent = false
	}
	if !rec.Consistent {
		return rec, fmt.Errorf("%w: %s: summed %d, cached %d", ErrBalanceMismatch, sku, rec.SummedBalance, rec.CachedBalance)
	}
	return rec, nil
}
