package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/internal/emulator/models"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// CreateVoucher stores a new voucher. The voucher may only enter as a draft
// or as unpaid; sums are computed server-side from the positions.
func (s *Store) CreateVoucher(voucher sevdesk.Voucher, positions []sevdesk.VoucherPosition) (*sevdesk.Voucher, error) {
	switch voucher.Status {
	case sevdesk.VoucherStatusDraft, sevdesk.VoucherStatusUnpaid:
	default:
		return nil, ruleErrorf("voucher status %d is not allowed on creation, use %d (draft) or %d (unpaid)",
			voucher.Status, sevdesk.VoucherStatusDraft, sevdesk.VoucherStatusUnpaid)
	}
	if len(positions) == 0 {
		return nil, ruleErrorf("voucher needs at least one position")
	}

	if voucher.VoucherType == "" {
		voucher.VoucherType = sevdesk.VoucherTypeVoucher
	}
	if voucher.CreditDebit == "" {
		voucher.CreditDebit = sevdesk.Credit
	}
	if voucher.TaxType == "" {
		voucher.TaxType = sevdesk.TaxTypeDefault
	}
	if voucher.Currency == "" {
		voucher.Currency = "EUR"
	}

	id, err := s.NextID(BucketVouchers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	for i := range positions {
		posID, err := s.NextID(BucketVouchers)
		if err != nil {
			return nil, fmt.Errorf("failed to generate position ID: %w", err)
		}
		positions[i].ID = posID
	}

	now := time.Now()
	voucher.ID = id
	voucher.SumNet, voucher.SumTax, voucher.SumGross = sevdesk.SumPositions(positions, voucher.Currency)
	voucher.PaidAmount = decimal.Zero
	voucher.LinkedTransactions = nil
	voucher.Positions = positions
	voucher.CreatedAt = now
	voucher.UpdatedAt = now

	if err := s.Put(BucketVouchers, id, &voucher); err != nil {
		return nil, fmt.Errorf("failed to save voucher: %w", err)
	}

	return &voucher, nil
}

// GetVoucher retrieves a voucher by ID.
func (s *Store) GetVoucher(id int64) (*sevdesk.Voucher, error) {
	var voucher sevdesk.Voucher
	if err := s.Get(BucketVouchers, id, &voucher); err != nil {
		return nil, err
	}
	return &voucher, nil
}

// UpdateVoucher updates descriptive fields of an existing voucher. Status
// never changes here, see SetVoucherStatus.
func (s *Store) UpdateVoucher(id int64, req *models.UpdateVoucherRequest) (*sevdesk.Voucher, error) {
	voucher, err := s.GetVoucher(id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		voucher.Description = *req.Description
	}
	if req.SupplierName != nil {
		voucher.SupplierName = *req.SupplierName
	}
	if req.VoucherDate != nil {
		voucher.VoucherDate = *req.VoucherDate
	}
	if req.PayDate != nil {
		voucher.PayDate = *req.PayDate
	}

	voucher.UpdatedAt = time.Now()

	if err := s.Put(BucketVouchers, id, voucher); err != nil {
		return nil, fmt.Errorf("failed to update voucher: %w", err)
	}

	return voucher, nil
}

// SetVoucherStatus transitions a voucher. A voucher may only become paid once
// its linked payments cover the gross sum, and may only leave the paid state
// after every payment was unlinked. Marking a voucher paid books the linked
// transactions.
func (s *Store) SetVoucherStatus(id int64, status sevdesk.VoucherStatus) (*sevdesk.Voucher, error) {
	voucher, err := s.GetVoucher(id)
	if err != nil {
		return nil, err
	}

	switch status {
	case sevdesk.VoucherStatusDraft, sevdesk.VoucherStatusUnpaid:
		if len(voucher.LinkedTransactions) > 0 {
			return nil, ruleErrorf("voucher %d still has %d linked payments", id, len(voucher.LinkedTransactions))
		}
	case sevdesk.VoucherStatusPaid:
		if voucher.PaidAmount.LessThan(voucher.SumGross) {
			return nil, ruleErrorf("voucher %d is not fully paid: %s of %s linked",
				id, voucher.PaidAmount, voucher.SumGross)
		}
	default:
		return nil, ruleErrorf("unsupported voucher status %d", status)
	}

	voucher.Status = status
	voucher.UpdatedAt = time.Now()

	if err := s.Put(BucketVouchers, id, voucher); err != nil {
		return nil, fmt.Errorf("failed to update voucher: %w", err)
	}

	if status == sevdesk.VoucherStatusPaid {
		if err := s.bookLinkedTransactions(voucher); err != nil {
			return nil, err
		}
	}

	return voucher, nil
}

// bookLinkedTransactions moves every transaction linked to the voucher into
// the booked state.
func (s *Store) bookLinkedTransactions(voucher *sevdesk.Voucher) error {
	for _, txnID := range voucher.LinkedTransactions {
		txn, err := s.GetTransaction(txnID)
		if err != nil {
			return fmt.Errorf("failed to load linked transaction %d: %w", txnID, err)
		}
		txn.Status = sevdesk.TransactionStatusBooked
		txn.UpdatedAt = time.Now()
		if err := s.Put(BucketTransactions, txnID, txn); err != nil {
			return fmt.Errorf("failed to book transaction %d: %w", txnID, err)
		}
	}
	return nil
}

// ListVouchers retrieves vouchers, optionally filtered by status and voucher
// date range, with limit/offset pagination.
func (s *Store) ListVouchers(status *sevdesk.VoucherStatus, startDate, endDate string, limit, offset int) ([]*sevdesk.Voucher, error) {
	filter := func(data []byte) bool {
		var voucher sevdesk.Voucher
		if err := json.Unmarshal(data, &voucher); err != nil {
			return false
		}

		if status != nil && voucher.Status != *status {
			return false
		}
		// ISO dates compare lexicographically.
		if startDate != "" && voucher.VoucherDate < startDate {
			return false
		}
		if endDate != "" && voucher.VoucherDate > endDate {
			return false
		}

		return true
	}

	results, err := s.List(BucketVouchers, filter)
	if err != nil {
		return nil, err
	}

	vouchers := make([]*sevdesk.Voucher, 0, len(results))
	for _, data := range results {
		var voucher sevdesk.Voucher
		if err := json.Unmarshal(data, &voucher); err != nil {
			return nil, fmt.Errorf("failed to unmarshal voucher: %w", err)
		}
		vouchers = append(vouchers, &voucher)
	}

	return paginate(vouchers, limit, offset), nil
}
