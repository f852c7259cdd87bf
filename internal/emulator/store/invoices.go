package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// CreateInvoice stores a new invoice. Sums are computed server-side from the
// positions.
func (s *Store) CreateInvoice(invoice sevdesk.Invoice, positions []sevdesk.InvoicePosition) (*sevdesk.Invoice, error) {
	switch invoice.Status {
	case sevdesk.InvoiceStatusDraft, sevdesk.InvoiceStatusOpen:
	default:
		return nil, ruleErrorf("invoice status %d is not allowed on creation, use %d (draft) or %d (open)",
			invoice.Status, sevdesk.InvoiceStatusDraft, sevdesk.InvoiceStatusOpen)
	}
	if len(positions) == 0 {
		return nil, ruleErrorf("invoice needs at least one position")
	}
	if invoice.Contact == nil || invoice.Contact.ID == 0 {
		return nil, ruleErrorf("invoice contact is required")
	}
	if err := s.Get(BucketContacts, invoice.Contact.ID, &sevdesk.Contact{}); err != nil {
		return nil, ruleErrorf("contact %d does not exist", invoice.Contact.ID)
	}
	if invoice.Currency == "" {
		invoice.Currency = "EUR"
	}

	id, err := s.NextID(BucketInvoices)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	digits := sevdesk.CurrencyDigits(invoice.Currency)
	net := decimal.Zero
	tax := decimal.Zero
	for i := range positions {
		posID, err := s.NextID(BucketInvoices)
		if err != nil {
			return nil, fmt.Errorf("failed to generate position ID: %w", err)
		}
		positions[i].ID = posID

		lineNet := positions[i].Price.Mul(positions[i].Quantity).Round(digits)
		net = net.Add(lineNet)
		tax = tax.Add(lineNet.Mul(positions[i].TaxRate.Div(decimal.NewFromInt(100))).Round(digits))
	}

	invoice.ID = id
	invoice.SumNet = net
	invoice.SumGross = net.Add(tax)
	invoice.Positions = positions

	if err := s.Put(BucketInvoices, id, &invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	return &invoice, nil
}

// GetInvoice retrieves an invoice by ID.
func (s *Store) GetInvoice(id int64) (*sevdesk.Invoice, error) {
	var invoice sevdesk.Invoice
	if err := s.Get(BucketInvoices, id, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}
