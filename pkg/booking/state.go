// Package booking implements the voucher lifecycle state machine and the
// engine that settles vouchers against bank transactions on a remote ledger.
//
// The remote service is the sole source of truth for voucher status. All
// guards here operate on freshly fetched state and are evaluated before any
// remote mutation is issued, so an invalid request never leaves partial
// remote state behind.
package booking

import (
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// ValidateInitialStatus checks the creation guard: vouchers enter the world as
// DRAFT or UNPAID only. PAID is unreachable at creation.
func ValidateInitialStatus(status sevdesk.VoucherStatus) error {
	switch status {
	case sevdesk.VoucherStatusDraft, sevdesk.VoucherStatusUnpaid:
		return nil
	default:
		return &InvalidStateError{Status: status}
	}
}

// CanBook checks the guard for settling a voucher: only UNPAID vouchers can be
// booked.
func CanBook(voucher *sevdesk.Voucher) error {
	if voucher.Status != sevdesk.VoucherStatusUnpaid {
		return &InvalidTransitionError{
			Op:   "book",
			From: voucher.Status.String(),
			To:   sevdesk.VoucherStatusPaid.String(),
		}
	}
	return nil
}

// CanUnbook checks the guard for reversing a settlement: only PAID vouchers
// can be unbooked.
func CanUnbook(voucher *sevdesk.Voucher) error {
	if voucher.Status != sevdesk.VoucherStatusPaid {
		return &InvalidTransitionError{
			Op:   "unbook",
			From: voucher.Status.String(),
			To:   sevdesk.VoucherStatusUnpaid.String(),
		}
	}
	return nil
}

// CanReset checks the guard for demoting a voucher. Reset to DRAFT is allowed
// from UNPAID and PAID; reset to UNPAID (open) is allowed only from PAID. Any
// other target is rejected.
func CanReset(voucher *sevdesk.Voucher, target sevdesk.VoucherStatus) error {
	switch target {
	case sevdesk.VoucherStatusDraft:
		if voucher.Status == sevdesk.VoucherStatusUnpaid || voucher.Status == sevdesk.VoucherStatusPaid {
			return nil
		}
	case sevdesk.VoucherStatusUnpaid:
		if voucher.Status == sevdesk.VoucherStatusPaid {
			return nil
		}
	}
	return &InvalidTransitionError{
		Op:   "reset",
		From: voucher.Status.String(),
		To:   target.String(),
	}
}
