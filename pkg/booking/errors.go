package booking

import (
	"errors"
	"fmt"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// InvalidStateError reports a voucher creation request with a status that is
// not allowed as an initial status.
type InvalidStateError struct {
	Status sevdesk.VoucherStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid initial voucher status %s: vouchers are created as DRAFT or UNPAID only", e.Status)
}

// InvalidTransitionError reports a lifecycle operation whose guard rejected
// the voucher's current status.
type InvalidTransitionError struct {
	Op   string
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	if e.To != "" {
		return fmt.Sprintf("cannot %s: transition %s -> %s is not allowed", e.Op, e.From, e.To)
	}
	return fmt.Sprintf("cannot %s a voucher in status %s", e.Op, e.From)
}

// UnsupportedOperationError reports an operation the engine deliberately does
// not support, such as changing status through a field update or settling a
// voucher with less than its outstanding balance.
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %s: %s", e.Op, e.Reason)
}

// PartialBookingError reports a two-step remote mutation whose first step
// succeeded and whose second step failed. The remote ledger is left in an
// intermediate state; the caller must resume from the failed step rather than
// restart, since repeating the first step would double-link.
type PartialBookingError struct {
	VoucherID     int64
	TransactionID int64
	// Step is the step that failed: "unlink" or "status".
	Step string
	Err  error
}

func (e *PartialBookingError) Error() string {
	return fmt.Sprintf("partial booking on voucher %d: step %q failed after earlier steps succeeded: %v", e.VoucherID, e.Step, e.Err)
}

func (e *PartialBookingError) Unwrap() error {
	return e.Err
}

// ClassName returns the taxonomy class name of an error for CLI display.
// PartialBookingError is checked first because it wraps the remote failure of
// its second step.
func ClassName(err error) string {
	var (
		partial      *PartialBookingError
		invalidState *InvalidStateError
		transition   *InvalidTransitionError
		unsupported  *UnsupportedOperationError
		remote       *sevdesk.APIError
	)
	switch {
	case errors.As(err, &partial):
		return "PartialBookingError"
	case errors.As(err, &invalidState):
		return "InvalidStateError"
	case errors.As(err, &transition):
		return "InvalidTransitionError"
	case errors.As(err, &unsupported):
		return "UnsupportedOperationError"
	case errors.As(err, &remote):
		return "RemoteError"
	default:
		return "Error"
	}
}
