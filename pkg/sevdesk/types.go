// Package sevdesk provides a sevDesk accounting API client and types.
package sevdesk

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// VoucherStatus is the lifecycle status of a voucher. The numeric codes are
// the remote service's canonical values and are preserved exactly.
type VoucherStatus int

const (
	VoucherStatusDraft  VoucherStatus = 50
	VoucherStatusUnpaid VoucherStatus = 100
	VoucherStatusPaid   VoucherStatus = 1000
)

// String returns the status name (DRAFT, UNPAID, PAID).
func (s VoucherStatus) String() string {
	switch s {
	case VoucherStatusDraft:
		return "DRAFT"
	case VoucherStatusUnpaid:
		return "UNPAID"
	case VoucherStatusPaid:
		return "PAID"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ParseVoucherStatus parses a voucher status from its name or numeric code.
func ParseVoucherStatus(value string) (VoucherStatus, error) {
	if n, err := strconv.Atoi(value); err == nil {
		s := VoucherStatus(n)
		switch s {
		case VoucherStatusDraft, VoucherStatusUnpaid, VoucherStatusPaid:
			return s, nil
		}
		return 0, fmt.Errorf("invalid voucher status %d (valid: DRAFT=50, UNPAID=100, PAID=1000)", n)
	}

	switch strings.ToUpper(value) {
	case "DRAFT":
		return VoucherStatusDraft, nil
	case "UNPAID", "OPEN":
		return VoucherStatusUnpaid, nil
	case "PAID":
		return VoucherStatusPaid, nil
	}
	return 0, fmt.Errorf("invalid voucher status %q (valid: DRAFT=50, UNPAID=100, PAID=1000)", value)
}

// TransactionStatus is the lifecycle status of a check account transaction.
type TransactionStatus int

const (
	TransactionStatusCreated    TransactionStatus = 100
	TransactionStatusLinked     TransactionStatus = 200
	TransactionStatusPrivate    TransactionStatus = 300
	TransactionStatusAutoBooked TransactionStatus = 350
	TransactionStatusBooked     TransactionStatus = 400
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionStatusCreated:
		return "CREATED"
	case TransactionStatusLinked:
		return "LINKED"
	case TransactionStatusPrivate:
		return "PRIVATE"
	case TransactionStatusAutoBooked:
		return "AUTO_BOOKED"
	case TransactionStatusBooked:
		return "BOOKED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ParseTransactionStatus parses a transaction status from its name or numeric code.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	if n, err := strconv.Atoi(value); err == nil {
		s := TransactionStatus(n)
		switch s {
		case TransactionStatusCreated, TransactionStatusLinked, TransactionStatusPrivate,
			TransactionStatusAutoBooked, TransactionStatusBooked:
			return s, nil
		}
		return 0, fmt.Errorf("invalid transaction status %d", n)
	}

	switch strings.ToUpper(value) {
	case "CREATED":
		return TransactionStatusCreated, nil
	case "LINKED":
		return TransactionStatusLinked, nil
	case "PRIVATE":
		return TransactionStatusPrivate, nil
	case "AUTO_BOOKED":
		return TransactionStatusAutoBooked, nil
	case "BOOKED":
		return TransactionStatusBooked, nil
	}
	return 0, fmt.Errorf("invalid transaction status %q (valid: CREATED, LINKED, PRIVATE, AUTO_BOOKED, BOOKED)", value)
}

// InvoiceStatus is the lifecycle status of an invoice.
type InvoiceStatus int

const (
	InvoiceStatusDraft InvoiceStatus = 100
	InvoiceStatusOpen  InvoiceStatus = 200
	InvoiceStatusPaid  InvoiceStatus = 1000
)

// CreditDebit marks a voucher as a credit (C) or debit (D) document.
type CreditDebit string

const (
	Credit CreditDebit = "C"
	Debit  CreditDebit = "D"
)

// VoucherType distinguishes one-off vouchers from recurring ones.
type VoucherType string

const (
	VoucherTypeVoucher   VoucherType = "VOU"
	VoucherTypeRecurring VoucherType = "RV"
)

// TaxType selects the tax regime applied to a voucher.
type TaxType string

const (
	TaxTypeDefault       TaxType = "default"
	TaxTypeEU            TaxType = "eu"
	TaxTypeNonEU         TaxType = "noteu"
	TaxTypeCustom        TaxType = "custom"
	TaxTypeSmallBusiness TaxType = "ss"
)

// TaxRule is a sevDesk 2.0 tax rule reference used on invoices.
type TaxRule int

const (
	TaxRuleTaxableRevenue      TaxRule = 1
	TaxRuleTaxFreeRevenue      TaxRule = 4
	TaxRuleSmallBusiness       TaxRule = 11
	TaxRuleNotTaxableInCountry TaxRule = 17
)

// CheckAccountType distinguishes bank accounts, clearing accounts and cash registers.
type CheckAccountType string

const (
	CheckAccountOffline  CheckAccountType = "offline"
	CheckAccountOnline   CheckAccountType = "online"
	CheckAccountRegister CheckAccountType = "register"
)

// Object names used in ObjectRef and link targets.
const (
	ObjectNameVoucher        = "Voucher"
	ObjectNameInvoice        = "Invoice"
	ObjectNameCheckAccount   = "CheckAccount"
	ObjectNameContact        = "Contact"
	ObjectNameAccountingType = "AccountingType"
)

// ObjectRef is a reference to another remote object, e.g. {"id": 7, "objectName": "Voucher"}.
type ObjectRef struct {
	ID         int64  `json:"id"`
	ObjectName string `json:"objectName"`
}

// Voucher represents a purchase voucher on the remote ledger.
type Voucher struct {
	ID           int64         `json:"id"`
	Status       VoucherStatus `json:"status"`
	CreditDebit  CreditDebit   `json:"creditDebit"`
	TaxType      TaxType       `json:"taxType"`
	VoucherType  VoucherType   `json:"voucherType"`
	VoucherDate  string        `json:"voucherDate,omitempty"` // YYYY-MM-DD
	PayDate      string        `json:"payDate,omitempty"`     // YYYY-MM-DD
	Supplier     *ObjectRef    `json:"supplier,omitempty"`
	SupplierName string        `json:"supplierName,omitempty"`
	Description  string        `json:"description,omitempty"`
	Currency     string        `json:"currency"`

	SumNet   decimal.Decimal `json:"sumNet"`
	SumTax   decimal.Decimal `json:"sumTax"`
	SumGross decimal.Decimal `json:"sumGross"`

	// PaidAmount is the total already settled by linked transactions.
	PaidAmount decimal.Decimal `json:"paidAmount"`

	// LinkedTransactions holds the IDs of transactions currently linked to
	// this voucher. Maintained by the remote service.
	LinkedTransactions []int64 `json:"linkedTransactions,omitempty"`

	Positions []VoucherPosition `json:"positions,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// RemainingGross returns the still-unsettled part of the gross total.
func (v *Voucher) RemainingGross() decimal.Decimal {
	return v.SumGross.Sub(v.PaidAmount)
}

// VoucherPosition is a single line item on a voucher.
type VoucherPosition struct {
	ID       int64           `json:"id,omitempty"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	// Net controls whether Price is a net amount (true) or already includes tax.
	Net     bool   `json:"net"`
	IsAsset bool   `json:"isAsset,omitempty"`
	SKR     string `json:"accountingTypeSkr,omitempty"`
	// AccountingType is the resolved booking account reference. Callers that
	// only know the SKR number can fill it via Resolver.AccountingTypeBySKR.
	AccountingType *ObjectRef `json:"accountingType,omitempty"`
	Text           string     `json:"text,omitempty"`

	SumNet   decimal.Decimal `json:"sumNet"`
	SumTax   decimal.Decimal `json:"sumTax"`
	SumGross decimal.Decimal `json:"sumGross"`
}

// NewVoucherPosition builds a position with the conventional defaults
// (quantity 1, tax rate 19%) applied to zero-valued fields.
func NewVoucherPosition(name string, price decimal.Decimal) VoucherPosition {
	return VoucherPosition{
		Name:     name,
		Quantity: decimal.NewFromInt(1),
		Price:    price,
		TaxRate:  decimal.NewFromInt(19),
		Net:      true,
	}
}

// Validate checks the position invariants: quantity > 0, price >= 0, tax rate >= 0.
func (p *VoucherPosition) Validate() error {
	if !p.Quantity.IsPositive() {
		return fmt.Errorf("position %q: quantity must be > 0, got %s", p.Name, p.Quantity)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("position %q: price must be >= 0, got %s", p.Name, p.Price)
	}
	if p.TaxRate.IsNegative() {
		return fmt.Errorf("position %q: tax rate must be >= 0, got %s", p.Name, p.TaxRate)
	}
	return nil
}

// ComputeSums fills SumNet/SumTax/SumGross from quantity, price and tax rate,
// rounding to the currency's conventional number of digits.
func (p *VoucherPosition) ComputeSums(currencyCode string) {
	digits := CurrencyDigits(currencyCode)
	total := p.Price.Mul(p.Quantity)
	rate := p.TaxRate.Div(decimal.NewFromInt(100))

	if p.Net {
		p.SumNet = total.Round(digits)
		p.SumTax = total.Mul(rate).Round(digits)
		p.SumGross = total.Mul(rate.Add(decimal.NewFromInt(1))).Round(digits)
	} else {
		p.SumGross = total.Round(digits)
		net := total.Div(rate.Add(decimal.NewFromInt(1)))
		p.SumNet = net.Round(digits)
		p.SumTax = p.SumGross.Sub(p.SumNet)
	}
}

// SumPositions computes a voucher's net/tax/gross totals from its positions.
// Each position is rounded individually before summation, matching the remote
// service's own accounting.
func SumPositions(positions []VoucherPosition, currencyCode string) (net, tax, gross decimal.Decimal) {
	for i := range positions {
		positions[i].ComputeSums(currencyCode)
		net = net.Add(positions[i].SumNet)
		tax = tax.Add(positions[i].SumTax)
		gross = gross.Add(positions[i].SumGross)
	}
	return net, tax, gross
}

// CurrencyDigits returns the conventional number of decimal digits for an ISO
// 4217 currency code. Unknown codes fall back to 2.
func CurrencyDigits(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Cash.Rounding(unit)
	return int32(scale)
}

// Transaction represents a bank movement on a check account.
type Transaction struct {
	ID           int64             `json:"id"`
	CheckAccount ObjectRef         `json:"checkAccount"`
	ValueDate    string            `json:"valueDate"` // YYYY-MM-DD HH:MM:SS
	EntryDate    string            `json:"entryDate,omitempty"`
	Amount       decimal.Decimal   `json:"amount"`
	Status       TransactionStatus `json:"status"`

	PayeePayerName     string `json:"payeePayerName,omitempty"`
	PayeePayerAcctNo   string `json:"payeePayerAcctNo,omitempty"`
	PayeePayerBankCode string `json:"payeePayerBankCode,omitempty"`
	PaymtPurpose       string `json:"paymtPurpose,omitempty"`

	// Enshrined transactions are finalized and immutable.
	Enshrined bool `json:"enshrined"`

	// Target is the voucher or invoice this transaction settles, if linked.
	Target       *ObjectRef      `json:"target,omitempty"`
	LinkedAmount decimal.Decimal `json:"linkedAmount,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// TransactionDate is the wire layout of transaction value/entry dates.
const TransactionDate = "2006-01-02 15:04:05"

// CheckAccount is a bank-account-like ledger object transactions belong to.
type CheckAccount struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Type     CheckAccountType `json:"type"`
	Currency string           `json:"currency"`
	Status   int              `json:"status"` // 0 = archived, 100 = active
	IBAN     string           `json:"iban,omitempty"`
}

// AccountingType is a booking account (SKR number) used to classify positions.
type AccountingType struct {
	ID               int64  `json:"id"`
	AccountingNumber string `json:"accountingNumber"`
	Name             string `json:"name"`
}

// Contact is a customer or supplier contact.
type Contact struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CustomerNumber string `json:"customerNumber,omitempty"`
}

// Invoice represents an outgoing invoice.
type Invoice struct {
	ID                int64         `json:"id"`
	Status            InvoiceStatus `json:"status"`
	Header            string        `json:"header,omitempty"`
	HeadText          string        `json:"headText,omitempty"`
	Contact           *ObjectRef    `json:"contact,omitempty"`
	Currency          string        `json:"currency"`
	InvoiceDate       string        `json:"invoiceDate,omitempty"`       // YYYY-MM-DD
	DeliveryDate      string        `json:"deliveryDate,omitempty"`      // YYYY-MM-DD
	DeliveryDateUntil string        `json:"deliveryDateUntil,omitempty"` // YYYY-MM-DD
	TimeToPay         int           `json:"timeToPay,omitempty"`
	TaxRule           TaxRule       `json:"taxRule,omitempty"`

	SumNet   decimal.Decimal `json:"sumNet"`
	SumGross decimal.Decimal `json:"sumGross"`

	Positions []InvoicePosition `json:"positions,omitempty"`
}

// InvoicePosition is a single line item on an invoice.
type InvoicePosition struct {
	ID       int64           `json:"id,omitempty"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	UnityID  int64           `json:"unityId,omitempty"`
	Text     string          `json:"text,omitempty"`
}

// Unity IDs for invoice positions.
const (
	UnityPiece int64 = 1
	UnityHour  int64 = 2
	UnityDay   int64 = 3
)
