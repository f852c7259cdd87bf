// Package models defines the request bodies the emulator accepts. Entity
// shapes are shared with the client in pkg/sevdesk so both sides of the wire
// stay symmetric.
package models

import (
	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// SaveVoucherRequest is the body of POST Voucher/Factory/saveVoucher.
type SaveVoucherRequest struct {
	Voucher        sevdesk.Voucher           `json:"voucher"`
	VoucherPosSave []sevdesk.VoucherPosition `json:"voucherPosSave"`
}

// UpdateVoucherRequest is the body of PUT Voucher/{id}. Only non-nil fields
// are applied. Status is deliberately absent: it changes through
// Voucher/{id}/changeStatus only.
type UpdateVoucherRequest struct {
	Description  *string `json:"description,omitempty"`
	SupplierName *string `json:"supplierName,omitempty"`
	VoucherDate  *string `json:"voucherDate,omitempty"`
	PayDate      *string `json:"payDate,omitempty"`
}

// ChangeStatusRequest is the body of PUT Voucher/{id}/changeStatus.
type ChangeStatusRequest struct {
	Value int `json:"value"`
}

// UpdateTransactionRequest is the body of PUT CheckAccountTransaction/{id}.
type UpdateTransactionRequest struct {
	ValueDate      *string          `json:"valueDate,omitempty"`
	EntryDate      *string          `json:"entryDate,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	PayeePayerName *string          `json:"payeePayerName,omitempty"`
	PaymtPurpose   *string          `json:"paymtPurpose,omitempty"`
}

// LinkRequest is the body of PUT CheckAccountTransaction/{id}/link.
type LinkRequest struct {
	Target     int64           `json:"target"`
	ObjectName string          `json:"objectName"`
	Amount     decimal.Decimal `json:"amount"`
}

// SaveInvoiceRequest is the body of POST Invoice/Factory/saveInvoice.
type SaveInvoiceRequest struct {
	Invoice        sevdesk.Invoice           `json:"invoice"`
	InvoicePosSave []sevdesk.InvoicePosition `json:"invoicePosSave"`
}
