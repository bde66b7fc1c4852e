package sales

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// InvoiceGenerator builds invoice numbers of the form
// INV-<yyyymmddhhmmss>-<microseconds>-<sku prefix>-<seq>. The sequence is a
// process-wide counter that wraps at 1000.
type InvoiceGenerator struct {
	seq atomic.Uint32
}

// NewInvoiceGenerator creates a generator starting at sequence 001
func NewInvoiceGenerator() *InvoiceGenerator {
	return &InvoiceGenerator{}
}

// Next returns the invoice number for a sale of sku at at
func (g *InvoiceGenerator) Next(sku string, at time.Time) string {
	seq := g.seq.Add(1) % 1000

	prefix := strings.ToUpper(strings.TrimSpace(sku))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}

	at = at.UTC()
	return fmt.Sprintf("INV-%s-%06d-%s-%03d", at.Format("20060102150405"), at.Nanosecond()/1000, prefix, seq)
}
