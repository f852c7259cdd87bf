package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/booking"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

var (
	voucherListStatus string
	voucherListStart  string
	voucherListEnd    string

	voucherSupplier      string
	voucherSupplierID    int64
	voucherDescription   string
	voucherDate          string
	voucherAmount        string
	voucherTaxRate       float64
	voucherCurrency      string
	voucherStatus        string
	voucherSKR           string
	voucherGross         bool
	voucherCreditDebit   string
	voucherTaxType       string
	voucherType          string
	voucherPositions     []string
	voucherPositionsFile string

	voucherPayDate string
)

// vouchersCmd groups voucher subcommands.
var vouchersCmd = &cobra.Command{
	Use:   "vouchers",
	Short: "List, inspect and edit vouchers",
}

var vouchersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vouchers",
	Run:   runVouchersList,
}

var vouchersGetCmd = &cobra.Command{
	Use:   "get <voucher-id>",
	Short: "Show one voucher",
	Args:  cobra.ExactArgs(1),
	Run:   runVouchersGet,
}

var vouchersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a voucher",
	Long: `Create a voucher in draft or unpaid state.

Positions come from one of three sources: --amount for the common
single-position case, repeated --position flags, or a JSON file with the
full position objects. --position takes "NAME,QTY,PRICE[,RATE[,SKR]]";
omitted rates default to 19%. Positions from a JSON file are sent as-is.

SKR numbers are resolved against the remote booking account list; an
unknown number aborts the creation.

Examples:
  sevsync vouchers create --supplier "Hetzner" --date 2026-08-01 --amount 119.00 --description "Server hosting"
  sevsync vouchers create --date 2026-08-01 --description "Office supplies" \
    --position "Paper,2,4.99" --position "Toner,1,89.90,19,4980"
  sevsync vouchers create --date 2026-08-01 --description "Imported" --positions-json positions.json`,
	Run: runVouchersCreate,
}

var vouchersUpdateCmd = &cobra.Command{
	Use:   "update <voucher-id>",
	Short: "Update a voucher's descriptive fields",
	Long: `Update description, supplier, voucher date or pay date. The status
cannot be changed here; use book, unbook or reset.`,
	Args: cobra.ExactArgs(1),
	Run:  runVouchersUpdate,
}

func init() {
	vouchersListCmd.Flags().StringVar(&voucherListStatus, "status", "", "Filter by status (draft, unpaid, paid)")
	vouchersListCmd.Flags().StringVar(&voucherListStart, "start", "", "Earliest voucher date (YYYY-MM-DD)")
	vouchersListCmd.Flags().StringVar(&voucherListEnd, "end", "", "Latest voucher date (YYYY-MM-DD)")

	vouchersCreateCmd.Flags().StringVar(&voucherSupplier, "supplier", "", "Supplier name")
	vouchersCreateCmd.Flags().Int64Var(&voucherSupplierID, "supplier-id", 0, "Supplier contact ID")
	vouchersCreateCmd.Flags().StringVar(&voucherDescription, "description", "", "Voucher description (required)")
	vouchersCreateCmd.Flags().StringVar(&voucherDate, "date", "", "Voucher date (YYYY-MM-DD) (required)")
	vouchersCreateCmd.Flags().StringVar(&voucherAmount, "amount", "", "Single-position price")
	vouchersCreateCmd.Flags().Float64Var(&voucherTaxRate, "tax-rate", 19, "Tax rate in percent (with --amount)")
	vouchersCreateCmd.Flags().StringVar(&voucherCurrency, "currency", "EUR", "Currency code")
	vouchersCreateCmd.Flags().StringVar(&voucherStatus, "status", "unpaid", "Initial status: draft or unpaid")
	vouchersCreateCmd.Flags().StringVar(&voucherSKR, "skr", "", "Accounting type number (with --amount)")
	vouchersCreateCmd.Flags().BoolVar(&voucherGross, "gross", false, "Treat the amount as gross instead of net")
	vouchersCreateCmd.Flags().StringVar(&voucherCreditDebit, "credit-debit", "C", "Credit (C) or debit (D)")
	vouchersCreateCmd.Flags().StringVar(&voucherTaxType, "tax-type", "default", "Tax regime: default, eu, noteu, custom or ss")
	vouchersCreateCmd.Flags().StringVar(&voucherType, "voucher-type", "VOU", "Voucher type: VOU or RV")
	vouchersCreateCmd.Flags().StringArrayVar(&voucherPositions, "position", nil, "Position as \"NAME,QTY,PRICE[,RATE[,SKR]]\" (repeatable)")
	vouchersCreateCmd.Flags().StringVar(&voucherPositionsFile, "positions-json", "", "JSON file with the position array")
	vouchersCreateCmd.MarkFlagRequired("description")
	vouchersCreateCmd.MarkFlagRequired("date")

	vouchersUpdateCmd.Flags().StringVar(&voucherDescription, "description", "", "New description")
	vouchersUpdateCmd.Flags().StringVar(&voucherSupplier, "supplier", "", "New supplier name")
	vouchersUpdateCmd.Flags().StringVar(&voucherDate, "date", "", "New voucher date (YYYY-MM-DD)")
	vouchersUpdateCmd.Flags().StringVar(&voucherPayDate, "pay-date", "", "New pay date (YYYY-MM-DD)")

	vouchersCmd.AddCommand(vouchersListCmd)
	vouchersCmd.AddCommand(vouchersGetCmd)
	vouchersCmd.AddCommand(vouchersCreateCmd)
	vouchersCmd.AddCommand(vouchersUpdateCmd)
}

func runVouchersList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	client := newAPIClient(cfg)

	opts := &sevdesk.ListVouchersOptions{
		StartDate: voucherListStart,
		EndDate:   voucherListEnd,
	}
	if voucherListStatus != "" {
		status, err := sevdesk.ParseVoucherStatus(voucherListStatus)
		exitOnError(err, "invalid status filter")
		opts.Status = status
	}

	vouchers, err := client.FetchAllVouchers(cmd.Context(), opts)
	if err != nil {
		exitWithClass(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tDATE\tSUPPLIER\tGROSS\tPAID\tDESCRIPTION")
	for _, voucher := range vouchers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s %s\t%s\t%s\n",
			voucher.ID, voucher.Status, voucher.VoucherDate, voucher.SupplierName,
			voucher.SumGross, voucher.Currency, voucher.PaidAmount, voucher.Description)
	}
	w.Flush()
}

func runVouchersGet(cmd *cobra.Command, args []string) {
	voucherID := parseIDArg(args[0], "voucher ID")

	cfg := loadConfig()
	client := newAPIClient(cfg)

	voucher, err := client.GetVoucher(cmd.Context(), voucherID)
	if err != nil {
		exitWithClass(err)
	}

	fmt.Printf("Voucher %d\n", voucher.ID)
	fmt.Printf("  Status:       %s\n", voucher.Status)
	fmt.Printf("  Type:         %s (%s)\n", voucher.VoucherType, voucher.CreditDebit)
	fmt.Printf("  Date:         %s\n", voucher.VoucherDate)
	fmt.Printf("  Supplier:     %s\n", voucher.SupplierName)
	fmt.Printf("  Description:  %s\n", voucher.Description)
	fmt.Printf("  Sums:         net %s, tax %s, gross %s %s\n",
		voucher.SumNet, voucher.SumTax, voucher.SumGross, voucher.Currency)
	fmt.Printf("  Paid:         %s (pay date %s)\n", voucher.PaidAmount, voucher.PayDate)
	if len(voucher.LinkedTransactions) > 0 {
		fmt.Printf("  Transactions: %v\n", voucher.LinkedTransactions)
	}
	for _, position := range voucher.Positions {
		fmt.Printf("  Position %d:   %s, %s x %s, tax %s%%\n",
			position.ID, position.Name, position.Quantity, position.Price, position.TaxRate)
	}
}

// parsePositionSpec parses one --position value, "NAME,QTY,PRICE[,RATE[,SKR]]".
func parsePositionSpec(spec string) (sevdesk.VoucherPosition, error) {
	parts := strings.Split(spec, ",")
	if len(parts) < 3 || len(parts) > 5 {
		return sevdesk.VoucherPosition{}, fmt.Errorf("position %q: want NAME,QTY,PRICE[,RATE[,SKR]]", spec)
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return sevdesk.VoucherPosition{}, fmt.Errorf("position %q: invalid quantity: %w", spec, err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return sevdesk.VoucherPosition{}, fmt.Errorf("position %q: invalid price: %w", spec, err)
	}

	position := sevdesk.NewVoucherPosition(strings.TrimSpace(parts[0]), price)
	position.Quantity = quantity
	if len(parts) >= 4 {
		rate, err := decimal.NewFromString(strings.TrimSpace(parts[3]))
		if err != nil {
			return sevdesk.VoucherPosition{}, fmt.Errorf("position %q: invalid tax rate: %w", spec, err)
		}
		position.TaxRate = rate
	}
	if len(parts) == 5 {
		position.SKR = strings.TrimSpace(parts[4])
	}
	return position, nil
}

// buildCreatePositions assembles the position list from whichever source the
// flags selected: a JSON file, repeated --position flags, or the --amount
// shorthand.
func buildCreatePositions() ([]sevdesk.VoucherPosition, error) {
	if voucherPositionsFile != "" {
		data, err := os.ReadFile(voucherPositionsFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", voucherPositionsFile, err)
		}
		var positions []sevdesk.VoucherPosition
		if err := json.Unmarshal(data, &positions); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", voucherPositionsFile, err)
		}
		return positions, nil
	}

	if len(voucherPositions) > 0 {
		positions := make([]sevdesk.VoucherPosition, 0, len(voucherPositions))
		for _, spec := range voucherPositions {
			position, err := parsePositionSpec(spec)
			if err != nil {
				return nil, err
			}
			positions = append(positions, position)
		}
		return positions, nil
	}

	if voucherAmount != "" {
		amount, err := decimal.NewFromString(voucherAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", voucherAmount, err)
		}
		position := sevdesk.NewVoucherPosition(voucherDescription, amount)
		position.TaxRate = decimal.NewFromFloat(voucherTaxRate)
		position.Net = !voucherGross
		position.SKR = voucherSKR
		return []sevdesk.VoucherPosition{position}, nil
	}

	return nil, fmt.Errorf("no positions: give --amount, --position or --positions-json")
}

func runVouchersCreate(cmd *cobra.Command, args []string) {
	status, err := sevdesk.ParseVoucherStatus(voucherStatus)
	exitOnError(err, fmt.Sprintf("invalid status %q", voucherStatus))

	creditDebit := sevdesk.CreditDebit(strings.ToUpper(voucherCreditDebit))
	if creditDebit != sevdesk.Credit && creditDebit != sevdesk.Debit {
		exitOnError(fmt.Errorf("want C or D, got %q", voucherCreditDebit), "invalid credit-debit")
	}
	vType := sevdesk.VoucherType(strings.ToUpper(voucherType))
	if vType != sevdesk.VoucherTypeVoucher && vType != sevdesk.VoucherTypeRecurring {
		exitOnError(fmt.Errorf("want VOU or RV, got %q", voucherType), "invalid voucher-type")
	}
	taxType := sevdesk.TaxType(voucherTaxType)
	switch taxType {
	case sevdesk.TaxTypeDefault, sevdesk.TaxTypeEU, sevdesk.TaxTypeNonEU, sevdesk.TaxTypeCustom, sevdesk.TaxTypeSmallBusiness:
	default:
		exitOnError(fmt.Errorf("unknown tax type %q", voucherTaxType), "invalid tax-type")
	}

	positions, err := buildCreatePositions()
	exitOnError(err, "building positions")

	cfg := loadConfig()
	client := newAPIClient(cfg)

	// Turn SKR numbers into booking account references before anything is
	// sent. The resolver caches the listing, so many positions cost one call.
	resolver := sevdesk.NewResolver(client)
	for i := range positions {
		if positions[i].SKR == "" || positions[i].AccountingType != nil {
			continue
		}
		accountingType, err := resolver.AccountingTypeBySKR(cmd.Context(), positions[i].SKR)
		exitOnError(err, fmt.Sprintf("resolving SKR %q", positions[i].SKR))
		positions[i].AccountingType = &sevdesk.ObjectRef{
			ID:         accountingType.ID,
			ObjectName: sevdesk.ObjectNameAccountingType,
		}
	}

	voucher := sevdesk.Voucher{
		Status:       status,
		CreditDebit:  creditDebit,
		TaxType:      taxType,
		VoucherType:  vType,
		VoucherDate:  voucherDate,
		SupplierName: voucherSupplier,
		Description:  voucherDescription,
		Currency:     voucherCurrency,
	}
	if voucherSupplierID != 0 {
		voucher.Supplier = &sevdesk.ObjectRef{ID: voucherSupplierID, ObjectName: sevdesk.ObjectNameContact}
	}

	engine := booking.NewEngine(client, nil)
	created, err := engine.CreateVoucher(cmd.Context(), voucher, positions)
	if err != nil {
		exitWithClass(err)
	}

	fmt.Printf("Created voucher %d (%s, gross %s %s)\n",
		created.ID, created.Status, created.SumGross, created.Currency)
}

func runVouchersUpdate(cmd *cobra.Command, args []string) {
	voucherID := parseIDArg(args[0], "voucher ID")

	cfg := loadConfig()
	engine := booking.NewEngine(newAPIClient(cfg), nil)

	patch := booking.VoucherPatch{}
	if cmd.Flags().Changed("description") {
		patch.Description = &voucherDescription
	}
	if cmd.Flags().Changed("supplier") {
		patch.SupplierName = &voucherSupplier
	}
	if cmd.Flags().Changed("date") {
		patch.VoucherDate = &voucherDate
	}
	if cmd.Flags().Changed("pay-date") {
		patch.PayDate = &voucherPayDate
	}

	updated, err := engine.UpdateVoucher(cmd.Context(), voucherID, patch)
	if err != nil {
		exitWithClass(err)
	}

	fmt.Printf("Updated voucher %d\n", updated.ID)
}
