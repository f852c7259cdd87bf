package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/internal/emulator/api"
	"github.com/sevsync-dev/sevsync/internal/emulator/store"
	"github.com/sevsync-dev/sevsync/pkg/booking"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

const testToken = "emu-test-token"

// IDs of the emulator's seed data, in insertion order.
const (
	accountWiseEUR int64 = 1
	accountWiseUSD int64 = 2
	accountGiro    int64 = 3
	registerKasse  int64 = 4

	contactAcme   int64 = 1
	contactGlobex int64 = 2
)

// testEnv wires a real API client and booking engine against an emulator
// backed by a throwaway database.
type testEnv struct {
	server *httptest.Server
	store  *store.Store
	client *sevdesk.Client
	engine *booking.Engine
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "emulator.db")
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	server := httptest.NewServer(api.NewRouter(st, testToken))
	t.Cleanup(server.Close)

	client := sevdesk.NewClient(sevdesk.ClientConfig{
		BaseURL: server.URL + "/api/v1",
		Token:   testToken,
	})
	engine := booking.NewEngine(client, discardLogger())

	return &testEnv{server: server, store: st, client: client, engine: engine}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rawRequest bypasses the typed client, for asserting wire-level behavior.
// An empty token sends no Authorization header.
func (env *testEnv) rawRequest(t *testing.T, method, path, token string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, env.server.URL+path, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	return resp
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// TestDataBuilder provides helper methods for building test data against the
// seeded emulator accounts.
type TestDataBuilder struct {
	checkAccountID int64
}

// NewTestDataBuilder creates a new TestDataBuilder.
func NewTestDataBuilder(checkAccountID int64) *TestDataBuilder {
	return &TestDataBuilder{checkAccountID: checkAccountID}
}

// HostingVoucher creates an unpaid supplier voucher with a single 100.00 EUR
// net position, 119.00 gross.
func (b *TestDataBuilder) HostingVoucher(voucherDate string) (sevdesk.Voucher, []sevdesk.VoucherPosition) {
	if voucherDate == "" {
		voucherDate = time.Now().Format("2006-01-02")
	}

	voucher := sevdesk.Voucher{
		Status:       sevdesk.VoucherStatusUnpaid,
		CreditDebit:  sevdesk.Credit,
		VoucherDate:  voucherDate,
		SupplierName: "Hetzner Online GmbH",
		Description:  "R0012345678",
		Currency:     "EUR",
	}
	positions := []sevdesk.VoucherPosition{
		sevdesk.NewVoucherPosition("Cloud server", dec("100.00")),
	}
	return voucher, positions
}

// DraftVoucher creates a draft voucher with one position.
func (b *TestDataBuilder) DraftVoucher(voucherDate string) (sevdesk.Voucher, []sevdesk.VoucherPosition) {
	voucher, positions := b.HostingVoucher(voucherDate)
	voucher.Status = sevdesk.VoucherStatusDraft
	return voucher, positions
}

// PaymentTransaction creates an outgoing bank movement over the given amount.
func (b *TestDataBuilder) PaymentTransaction(amount decimal.Decimal, valueDate string) sevdesk.Transaction {
	if valueDate == "" {
		valueDate = time.Now().Format(sevdesk.TransactionDate)
	}

	return sevdesk.Transaction{
		CheckAccount:   sevdesk.ObjectRef{ID: b.checkAccountID, ObjectName: sevdesk.ObjectNameCheckAccount},
		ValueDate:      valueDate,
		Amount:         amount.Neg(),
		Status:         sevdesk.TransactionStatusCreated,
		PayeePayerName: "Hetzner Online GmbH",
		PaymtPurpose:   "R0012345678",
	}
}

// settledVoucher creates a voucher and a covering transaction and settles one
// against the other, returning both in their post-settlement state.
func settledVoucher(t *testing.T, env *testEnv) (*sevdesk.Voucher, *sevdesk.Transaction) {
	t.Helper()
	ctx := context.Background()
	builder := NewTestDataBuilder(accountWiseEUR)

	voucher, positions := builder.HostingVoucher("2026-07-15")
	created, err := env.engine.CreateVoucher(ctx, voucher, positions)
	if err != nil {
		t.Fatalf("Failed to create voucher: %v", err)
	}

	txn, err := env.client.CreateTransaction(ctx, builder.PaymentTransaction(created.SumGross, "2026-07-20 10:30:00"))
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	outcome := env.engine.Settle(ctx, created.ID, txn.ID, nil)
	if outcome.Kind != booking.OutcomeSuccess {
		t.Fatalf("Expected settlement to succeed, got %s: %v", outcome.Kind, outcome.Err)
	}

	paid, err := env.client.GetVoucher(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to fetch settled voucher: %v", err)
	}
	booked, err := env.client.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("Failed to fetch booked transaction: %v", err)
	}
	return paid, booked
}
