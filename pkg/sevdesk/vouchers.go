package sevdesk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type voucherEnvelope struct {
	Objects Voucher `json:"objects"`
}

type vouchersEnvelope struct {
	Objects []Voucher `json:"objects"`
}

// SaveVoucherRequest is the payload of the saveVoucher factory endpoint.
type SaveVoucherRequest struct {
	Voucher        Voucher           `json:"voucher"`
	VoucherPosSave []VoucherPosition `json:"voucherPosSave"`
}

// CreateVoucher creates a voucher together with its positions and returns the
// stored voucher with server-assigned ID and computed sums.
func (c *Client) CreateVoucher(ctx context.Context, voucher Voucher, positions []VoucherPosition) (*Voucher, error) {
	req := SaveVoucherRequest{Voucher: voucher, VoucherPosSave: positions}

	var resp voucherEnvelope
	if err := c.do(ctx, "POST", "Voucher/Factory/saveVoucher", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create voucher: %w", err)
	}
	return &resp.Objects, nil
}

// GetVoucher fetches a single voucher by ID.
func (c *Client) GetVoucher(ctx context.Context, id int64) (*Voucher, error) {
	var resp voucherEnvelope
	if err := c.do(ctx, "GET", fmt.Sprintf("Voucher/%d", id), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get voucher %d: %w", id, err)
	}
	return &resp.Objects, nil
}

// VoucherUpdate is a partial update of voucher fields. Nil fields are left unchanged.
type VoucherUpdate struct {
	Description  *string `json:"description,omitempty"`
	SupplierName *string `json:"supplierName,omitempty"`
	VoucherDate  *string `json:"voucherDate,omitempty"`
	PayDate      *string `json:"payDate,omitempty"`
}

// UpdateVoucher applies a partial update to a voucher. Status is not part of
// the update surface; use SetVoucherStatus.
func (c *Client) UpdateVoucher(ctx context.Context, id int64, update VoucherUpdate) (*Voucher, error) {
	var resp voucherEnvelope
	if err := c.do(ctx, "PUT", fmt.Sprintf("Voucher/%d", id), nil, update, &resp); err != nil {
		return nil, fmt.Errorf("failed to update voucher %d: %w", id, err)
	}
	return &resp.Objects, nil
}

type changeStatusRequest struct {
	Value int `json:"value"`
}

// SetVoucherStatus transitions a voucher to the given status via the
// changeStatus endpoint. The remote service validates the transition.
func (c *Client) SetVoucherStatus(ctx context.Context, id int64, status VoucherStatus) (*Voucher, error) {
	req := changeStatusRequest{Value: int(status)}

	var resp voucherEnvelope
	if err := c.do(ctx, "PUT", fmt.Sprintf("Voucher/%d/changeStatus", id), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to set voucher %d status to %s: %w", id, status, err)
	}
	return &resp.Objects, nil
}

// ListVouchersOptions filters voucher listings. Zero-valued fields are omitted.
type ListVouchersOptions struct {
	Status    VoucherStatus
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Limit     int
	Offset    int
}

// ListVouchers fetches a page of vouchers.
func (c *Client) ListVouchers(ctx context.Context, opts *ListVouchersOptions) ([]Voucher, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Status != 0 {
			query.Set("status", strconv.Itoa(int(opts.Status)))
		}
		if opts.StartDate != "" {
			query.Set("startDate", opts.StartDate)
		}
		if opts.EndDate != "" {
			query.Set("endDate", opts.EndDate)
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			query.Set("offset", strconv.Itoa(opts.Offset))
		}
	}

	var resp vouchersEnvelope
	if err := c.do(ctx, "GET", "Voucher", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	return resp.Objects, nil
}

// FetchAllVouchers pages through all vouchers matching the given filters.
func (c *Client) FetchAllVouchers(ctx context.Context, opts *ListVouchersOptions) ([]Voucher, error) {
	pageOpts := ListVouchersOptions{}
	if opts != nil {
		pageOpts = *opts
	}
	pageOpts.Limit = DefaultPageSize
	pageOpts.Offset = 0

	var all []Voucher
	for {
		page, err := c.ListVouchers(ctx, &pageOpts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageOpts.Limit {
			break
		}
		pageOpts.Offset += pageOpts.Limit
	}
	return all, nil
}
