package sevdesk

import (
	"context"
	"fmt"
)

type invoiceEnvelope struct {
	Objects Invoice `json:"objects"`
}

// SaveInvoiceRequest is the payload of the saveInvoice factory endpoint.
type SaveInvoiceRequest struct {
	Invoice        Invoice           `json:"invoice"`
	InvoicePosSave []InvoicePosition `json:"invoicePosSave"`
}

// CreateInvoice creates an invoice together with its positions and returns the
// stored invoice with its server-assigned ID.
func (c *Client) CreateInvoice(ctx context.Context, invoice Invoice, positions []InvoicePosition) (*Invoice, error) {
	req := SaveInvoiceRequest{Invoice: invoice, InvoicePosSave: positions}

	var resp invoiceEnvelope
	if err := c.do(ctx, "POST", "Invoice/Factory/saveInvoice", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return &resp.Objects, nil
}

// GetInvoice fetches a single invoice by ID.
func (c *Client) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	var resp invoiceEnvelope
	if err := c.do(ctx, "GET", fmt.Sprintf("Invoice/%d", id), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get invoice %d: %w", id, err)
	}
	return &resp.Objects, nil
}
