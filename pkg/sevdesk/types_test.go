package sevdesk

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestParseVoucherStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    VoucherStatus
		wantErr bool
	}{
		{"50", VoucherStatusDraft, false},
		{"100", VoucherStatusUnpaid, false},
		{"1000", VoucherStatusPaid, false},
		{"DRAFT", VoucherStatusDraft, false},
		{"draft", VoucherStatusDraft, false},
		{"UNPAID", VoucherStatusUnpaid, false},
		{"open", VoucherStatusUnpaid, false},
		{"Paid", VoucherStatusPaid, false},
		{"999", 0, true},
		{"banana", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVoucherStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVoucherStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVoucherStatus(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestVoucherStatusString(t *testing.T) {
	tests := []struct {
		status VoucherStatus
		want   string
	}{
		{VoucherStatusDraft, "DRAFT"},
		{VoucherStatusUnpaid, "UNPAID"},
		{VoucherStatusPaid, "PAID"},
		{VoucherStatus(7), "UNKNOWN(7)"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("VoucherStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestParseTransactionStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    TransactionStatus
		wantErr bool
	}{
		{"100", TransactionStatusCreated, false},
		{"400", TransactionStatusBooked, false},
		{"created", TransactionStatusCreated, false},
		{"LINKED", TransactionStatusLinked, false},
		{"auto_booked", TransactionStatusAutoBooked, false},
		{"999", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransactionStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTransactionStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTransactionStatus(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestComputeSumsNetPosition(t *testing.T) {
	p := VoucherPosition{
		Name:     "Hosting",
		Quantity: decimal.NewFromInt(1),
		Price:    dec("100.00"),
		TaxRate:  decimal.NewFromInt(19),
		Net:      true,
	}
	p.ComputeSums("EUR")

	if !p.SumNet.Equal(dec("100.00")) {
		t.Errorf("SumNet = %s, want 100.00", p.SumNet)
	}
	if !p.SumTax.Equal(dec("19.00")) {
		t.Errorf("SumTax = %s, want 19.00", p.SumTax)
	}
	if !p.SumGross.Equal(dec("119.00")) {
		t.Errorf("SumGross = %s, want 119.00", p.SumGross)
	}
}

func TestComputeSumsGrossPosition(t *testing.T) {
	p := VoucherPosition{
		Name:     "Hosting",
		Quantity: decimal.NewFromInt(1),
		Price:    dec("119.00"),
		TaxRate:  decimal.NewFromInt(19),
		Net:      false,
	}
	p.ComputeSums("EUR")

	if !p.SumGross.Equal(dec("119.00")) {
		t.Errorf("SumGross = %s, want 119.00", p.SumGross)
	}
	if !p.SumNet.Equal(dec("100.00")) {
		t.Errorf("SumNet = %s, want 100.00", p.SumNet)
	}
	// Tax is the difference, so the three always add up.
	if !p.SumNet.Add(p.SumTax).Equal(p.SumGross) {
		t.Errorf("net %s + tax %s != gross %s", p.SumNet, p.SumTax, p.SumGross)
	}
}

func TestComputeSumsZeroDigitCurrency(t *testing.T) {
	p := VoucherPosition{
		Name:     "Consulting",
		Quantity: decimal.NewFromInt(3),
		Price:    dec("1000.40"),
		TaxRate:  decimal.NewFromInt(10),
		Net:      true,
	}
	p.ComputeSums("JPY")

	// JPY has no minor unit, every sum is rounded to whole yen.
	if p.SumNet.Exponent() < 0 {
		t.Errorf("SumNet = %s, want whole yen", p.SumNet)
	}
	if !p.SumNet.Equal(dec("3001")) {
		t.Errorf("SumNet = %s, want 3001", p.SumNet)
	}
}

func TestSumPositions(t *testing.T) {
	positions := []VoucherPosition{
		NewVoucherPosition("Hosting", dec("100.00")),
		NewVoucherPosition("Domain", dec("10.01")),
	}

	net, tax, gross := SumPositions(positions, "EUR")

	if !net.Equal(dec("110.01")) {
		t.Errorf("net = %s, want 110.01", net)
	}
	// Per-position rounding: 19.00 + 1.90, not round(110.01 * 0.19).
	if !tax.Equal(dec("20.90")) {
		t.Errorf("tax = %s, want 20.90", tax)
	}
	if !gross.Equal(dec("130.91")) {
		t.Errorf("gross = %s, want 130.91", gross)
	}
}

func TestRemainingGross(t *testing.T) {
	v := Voucher{SumGross: dec("119.00"), PaidAmount: dec("50.00")}
	if got := v.RemainingGross(); !got.Equal(dec("69.00")) {
		t.Errorf("RemainingGross() = %s, want 69.00", got)
	}
}

func TestCurrencyDigits(t *testing.T) {
	tests := []struct {
		code string
		want int32
	}{
		{"EUR", 2},
		{"USD", 2},
		{"JPY", 0},
		{"XYZ", 2},
	}

	for _, tt := range tests {
		if got := CurrencyDigits(tt.code); got != tt.want {
			t.Errorf("CurrencyDigits(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestDecimalWireFormat(t *testing.T) {
	// Amounts travel as JSON strings, the way the remote service sends them.
	data, err := json.Marshal(Voucher{SumGross: dec("119.00"), Currency: "EUR"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `"sumGross":"119"`; !strings.Contains(string(data), want) {
		t.Errorf("marshal output %s does not contain %s", data, want)
	}

	var v Voucher
	if err := json.Unmarshal([]byte(`{"sumGross":"119.00","currency":"EUR"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.SumGross.Equal(dec("119.00")) {
		t.Errorf("SumGross = %s, want 119.00", v.SumGross)
	}
}
