package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// Ledger is the remote ledger capability the engine requires. *sevdesk.Client
// satisfies it; tests substitute a fake.
type Ledger interface {
	CreateVoucher(ctx context.Context, voucher sevdesk.Voucher, positions []sevdesk.VoucherPosition) (*sevdesk.Voucher, error)
	UpdateVoucher(ctx context.Context, id int64, update sevdesk.VoucherUpdate) (*sevdesk.Voucher, error)
	GetVoucher(ctx context.Context, id int64) (*sevdesk.Voucher, error)
	SetVoucherStatus(ctx context.Context, id int64, status sevdesk.VoucherStatus) (*sevdesk.Voucher, error)
	CreateTransaction(ctx context.Context, txn sevdesk.Transaction) (*sevdesk.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*sevdesk.Transaction, error)
	LinkTransaction(ctx context.Context, txnID, targetID int64, targetType string, amount decimal.Decimal) (*sevdesk.Transaction, error)
	UnlinkTransaction(ctx context.Context, txnID int64) (*sevdesk.Transaction, error)
}

// OutcomeKind tags the result of a multi-step booking operation.
type OutcomeKind int

const (
	// OutcomeFailed means no remote state was changed, or only the very first
	// mutation was attempted and failed. Safe to retry the whole operation.
	OutcomeFailed OutcomeKind = iota
	// OutcomeLinkedNotTransitioned means the link (or unlink) half of the
	// operation changed remote state but the status transition did not
	// complete. Err holds a *PartialBookingError naming the failed step;
	// resume from that step, do not restart.
	OutcomeLinkedNotTransitioned
	// OutcomeSuccess means every step completed.
	OutcomeSuccess
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFailed:
		return "Failed"
	case OutcomeLinkedNotTransitioned:
		return "LinkedNotTransitioned"
	case OutcomeSuccess:
		return "Success"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the tagged result of Settle, Unbook and Reset. A plain error
// cannot tell a caller whether remote state moved; the kind can.
type Outcome struct {
	Kind        OutcomeKind
	Voucher     *sevdesk.Voucher
	Transaction *sevdesk.Transaction
	Err         error
}

func failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// Engine orchestrates voucher settlement against a remote ledger. It holds no
// durable local state, so a crashed run can simply be repeated; the guards
// re-fetch remote state on every operation.
type Engine struct {
	ledger Ledger
	logger *slog.Logger
}

// NewEngine creates a booking engine. A nil logger falls back to slog's
// default.
func NewEngine(ledger Ledger, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{ledger: ledger, logger: logger}
}

// CreateVoucher validates the creation guard and position invariants, then
// creates the voucher remotely.
func (e *Engine) CreateVoucher(ctx context.Context, voucher sevdesk.Voucher, positions []sevdesk.VoucherPosition) (*sevdesk.Voucher, error) {
	if err := ValidateInitialStatus(voucher.Status); err != nil {
		return nil, err
	}
	for i := range positions {
		if err := positions[i].Validate(); err != nil {
			return nil, err
		}
	}

	created, err := e.ledger.CreateVoucher(ctx, voucher, positions)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Created voucher",
		"voucher_id", created.ID,
		"status", created.Status.String(),
		"sum_gross", created.SumGross)
	return created, nil
}

// VoucherPatch is the field patch accepted by UpdateVoucher. Status is listed
// so callers can attempt it, and is always rejected: status changes go through
// Settle, Unbook and Reset.
type VoucherPatch struct {
	Description  *string
	SupplierName *string
	VoucherDate  *string
	PayDate      *string
	Status       *sevdesk.VoucherStatus
}

// UpdateVoucher applies a field patch to a voucher. A patch carrying a status
// fails with UnsupportedOperationError before any remote call.
func (e *Engine) UpdateVoucher(ctx context.Context, id int64, patch VoucherPatch) (*sevdesk.Voucher, error) {
	if patch.Status != nil {
		return nil, &UnsupportedOperationError{
			Op:     "update",
			Reason: "status cannot be changed via update, use book, unbook or reset",
		}
	}
	return e.ledger.UpdateVoucher(ctx, id, sevdesk.VoucherUpdate{
		Description:  patch.Description,
		SupplierName: patch.SupplierName,
		VoucherDate:  patch.VoucherDate,
		PayDate:      patch.PayDate,
	})
}

// Settle links a transaction to a voucher and transitions the voucher to
// PAID. amount nil means the voucher's full remaining gross balance. An
// amount below the remaining balance is rejected: multi-installment partial
// settlement is deliberately unsupported.
//
// The two remote calls are not atomic. If the link succeeds and the status
// transition fails, the outcome is OutcomeLinkedNotTransitioned and Err is a
// *PartialBookingError; retry only the status step.
func (e *Engine) Settle(ctx context.Context, voucherID, transactionID int64, amount *decimal.Decimal) Outcome {
	voucher, err := e.ledger.GetVoucher(ctx, voucherID)
	if err != nil {
		return failed(fmt.Errorf("failed to fetch voucher %d: %w", voucherID, err))
	}
	txn, err := e.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return failed(fmt.Errorf("failed to fetch transaction %d: %w", transactionID, err))
	}

	if err := CanBook(voucher); err != nil {
		return failed(err)
	}
	if txn.Target != nil {
		return failed(&InvalidTransitionError{
			Op:   "book",
			From: fmt.Sprintf("transaction %d already linked to %s %d", txn.ID, txn.Target.ObjectName, txn.Target.ID),
		})
	}

	remaining := voucher.RemainingGross()
	effective := remaining
	if amount != nil {
		if amount.LessThan(remaining) {
			return failed(&UnsupportedOperationError{
				Op: "book",
				Reason: fmt.Sprintf("amount %s does not cover the remaining balance %s, partial settlement is not supported",
					amount, remaining),
			})
		}
		effective = *amount
	}

	linked, err := e.ledger.LinkTransaction(ctx, transactionID, voucherID, sevdesk.ObjectNameVoucher, effective)
	if err != nil {
		return failed(fmt.Errorf("failed to link transaction %d to voucher %d: %w", transactionID, voucherID, err))
	}
	e.logger.Info("Linked transaction to voucher",
		"transaction_id", transactionID,
		"voucher_id", voucherID,
		"amount", effective)

	paid, err := e.ledger.SetVoucherStatus(ctx, voucherID, sevdesk.VoucherStatusPaid)
	if err != nil {
		return Outcome{
			Kind:        OutcomeLinkedNotTransitioned,
			Transaction: linked,
			Err: &PartialBookingError{
				VoucherID:     voucherID,
				TransactionID: transactionID,
				Step:          "status",
				Err:           err,
			},
		}
	}

	e.logger.Info("Voucher settled", "voucher_id", voucherID, "status", paid.Status.String())
	return Outcome{Kind: OutcomeSuccess, Voucher: paid, Transaction: linked}
}

// Unbook removes the settling links of a PAID voucher and demotes it to
// UNPAID. If any unlink after the first has failed, or the demotion fails
// after the unlinks, the outcome is OutcomeLinkedNotTransitioned with a
// *PartialBookingError naming the failed step.
func (e *Engine) Unbook(ctx context.Context, voucherID int64) Outcome {
	voucher, err := e.ledger.GetVoucher(ctx, voucherID)
	if err != nil {
		return failed(fmt.Errorf("failed to fetch voucher %d: %w", voucherID, err))
	}
	if err := CanUnbook(voucher); err != nil {
		return failed(err)
	}
	if len(voucher.LinkedTransactions) == 0 {
		return failed(fmt.Errorf("voucher %d is PAID but has no linked transactions to unbook", voucherID))
	}

	outcome := e.unlinkAll(ctx, voucher)
	if outcome.Err != nil {
		return outcome
	}

	unpaid, err := e.ledger.SetVoucherStatus(ctx, voucherID, sevdesk.VoucherStatusUnpaid)
	if err != nil {
		return Outcome{
			Kind: OutcomeLinkedNotTransitioned,
			Err: &PartialBookingError{
				VoucherID: voucherID,
				Step:      "status",
				Err:       err,
			},
		}
	}

	e.logger.Info("Voucher unbooked", "voucher_id", voucherID, "status", unpaid.Status.String())
	return Outcome{Kind: OutcomeSuccess, Voucher: unpaid}
}

// unlinkAll removes every settling link of the voucher. A failure on the very
// first unlink leaves remote state untouched (OutcomeFailed); a failure after
// at least one unlink succeeded is a partial mutation.
func (e *Engine) unlinkAll(ctx context.Context, voucher *sevdesk.Voucher) Outcome {
	for i, txnID := range voucher.LinkedTransactions {
		if _, err := e.ledger.UnlinkTransaction(ctx, txnID); err != nil {
			if i == 0 {
				return failed(fmt.Errorf("failed to unlink transaction %d from voucher %d: %w", txnID, voucher.ID, err))
			}
			return Outcome{
				Kind: OutcomeLinkedNotTransitioned,
				Err: &PartialBookingError{
					VoucherID:     voucher.ID,
					TransactionID: txnID,
					Step:          "unlink",
					Err:           err,
				},
			}
		}
		e.logger.Info("Unlinked transaction from voucher",
			"transaction_id", txnID,
			"voucher_id", voucher.ID)
	}
	return Outcome{Kind: OutcomeSuccess}
}

// Reset demotes a voucher to DRAFT (from UNPAID or PAID, unbooking first when
// PAID) or to UNPAID (from PAID only, equivalent to Unbook).
func (e *Engine) Reset(ctx context.Context, voucherID int64, target sevdesk.VoucherStatus) Outcome {
	voucher, err := e.ledger.GetVoucher(ctx, voucherID)
	if err != nil {
		return failed(fmt.Errorf("failed to fetch voucher %d: %w", voucherID, err))
	}
	if err := CanReset(voucher, target); err != nil {
		return failed(err)
	}

	if target == sevdesk.VoucherStatusUnpaid {
		return e.Unbook(ctx, voucherID)
	}

	// Target is DRAFT. A PAID voucher is unbooked first.
	if voucher.Status == sevdesk.VoucherStatusPaid {
		if outcome := e.Unbook(ctx, voucherID); outcome.Err != nil {
			return outcome
		}
	}

	draft, err := e.ledger.SetVoucherStatus(ctx, voucherID, sevdesk.VoucherStatusDraft)
	if err != nil {
		if voucher.Status == sevdesk.VoucherStatusPaid {
			// The unbook half already moved remote state.
			return Outcome{
				Kind: OutcomeLinkedNotTransitioned,
				Err: &PartialBookingError{
					VoucherID: voucherID,
					Step:      "status",
					Err:       err,
				},
			}
		}
		return failed(fmt.Errorf("failed to reset voucher %d to DRAFT: %w", voucherID, err))
	}

	e.logger.Info("Voucher reset", "voucher_id", voucherID, "status", draft.Status.String())
	return Outcome{Kind: OutcomeSuccess, Voucher: draft}
}
