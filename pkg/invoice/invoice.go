// Package invoice builds draft invoices on the remote ledger from monthly
// billing reports produced by time-tracking exporters.
package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// ReportDate is a YYYYMMDD date as emitted by the report exporters, which
// write it as a JSON number or string depending on version.
type ReportDate struct {
	time.Time
}

// UnmarshalJSON accepts 20240131 and "20240131".
func (d *ReportDate) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	parsed, err := time.Parse("20060102", value)
	if err != nil {
		return fmt.Errorf("invalid report date %s: %w", value, err)
	}
	d.Time = parsed
	return nil
}

// Task is one billable line of a monthly report.
type Task struct {
	StartDate        ReportDate      `json:"start_date"`
	EndDate          ReportDate      `json:"end_date"`
	Agency           string          `json:"agency"`
	Client           string          `json:"client"`
	Task             string          `json:"task"`
	RoundedHours     decimal.Decimal `json:"rounded_hours"`
	SourceCurrency   string          `json:"source_currency"`
	TargetCurrency   string          `json:"target_currency"`
	SourceCost       decimal.Decimal `json:"source_cost"`
	TargetCost       decimal.Decimal `json:"target_cost"`
	SourceHourlyRate decimal.Decimal `json:"source_hourly_rate"`
	TargetHourlyRate decimal.Decimal `json:"target_hourly_rate"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
}

// Client is the remote capability the builder needs. *sevdesk.Client
// satisfies it.
type Client interface {
	SearchContacts(ctx context.Context, name string) ([]sevdesk.Contact, error)
	CreateInvoice(ctx context.Context, invoice sevdesk.Invoice, positions []sevdesk.InvoicePosition) (*sevdesk.Invoice, error)
}

// Options controls invoice creation.
type Options struct {
	// CustomerOverride bills this contact instead of the report's agency or
	// client.
	CustomerOverride string
	// DaysUntilPayment is the payment term. Defaults to 30.
	DaysUntilPayment int
}

// Builder creates draft invoices from reports.
type Builder struct {
	client Client
	logger *slog.Logger
}

// NewBuilder creates an invoice builder. A nil logger falls back to slog's
// default.
func NewBuilder(client Client, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{client: client, logger: logger}
}

// rateTolerance is how far the per-hour price computed from cost/hours may
// deviate from the report's hourly rate before the report is rejected as
// inconsistent.
var rateTolerance = decimal.NewFromFloat(0.02)

// verifiedRate cross-checks cost/hours against the reported hourly rate and
// returns the rate. Reports whose totals don't match their rate are refused
// rather than silently billed.
func verifiedRate(cost, hours, rate decimal.Decimal, side string) (decimal.Decimal, error) {
	if !hours.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s rate check: hours must be > 0, got %s", side, hours)
	}
	price := cost.Div(hours).Round(2)
	if price.Sub(rate).Abs().GreaterThan(rateTolerance) {
		return decimal.Zero, fmt.Errorf("%s price %s derived from cost %s over %s hours is not similar to hourly rate %s",
			side, price, cost, hours, rate)
	}
	return rate, nil
}

// lineItem turns a report task into an invoice position. When billing through
// an agency the position names the end client; the position text documents
// currency conversion when source and target currency differ.
func lineItem(task Task, hasAgency bool) (sevdesk.InvoicePosition, error) {
	price, err := verifiedRate(task.TargetCost, task.RoundedHours, task.TargetHourlyRate, "target")
	if err != nil {
		return sevdesk.InvoicePosition{}, err
	}
	originalPrice, err := verifiedRate(task.SourceCost, task.RoundedHours, task.SourceHourlyRate, "source")
	if err != nil {
		return sevdesk.InvoicePosition{}, err
	}

	text := ""
	if task.SourceCurrency != task.TargetCurrency {
		text = fmt.Sprintf("%s %s x %s = %s %s",
			task.SourceCurrency, originalPrice, task.ExchangeRate, task.TargetCurrency, price)
	}

	name := task.Task
	if hasAgency {
		name = fmt.Sprintf("%s - %s", task.Client, task.Task)
	}

	return sevdesk.InvoicePosition{
		Name:     name,
		Quantity: task.RoundedHours,
		Price:    price,
		TaxRate:  decimal.Zero,
		UnityID:  sevdesk.UnityHour,
		Text:     text,
	}, nil
}

// findContact resolves the billing contact by exact name. Zero or multiple
// matches are errors; invoices must never go to a guessed contact.
func (b *Builder) findContact(ctx context.Context, name string) (*sevdesk.Contact, error) {
	contacts, err := b.client.SearchContacts(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, fmt.Errorf("could not find customer with name %s, please create it first in contacts", name)
	}
	if len(contacts) > 1 {
		numbers := make([]string, len(contacts))
		for i, contact := range contacts {
			numbers[i] = contact.CustomerNumber
			if numbers[i] == "" {
				numbers[i] = "N/A"
			}
		}
		return nil, fmt.Errorf("found multiple customers with name %s: %s", name, strings.Join(numbers, " "))
	}
	return &contacts[0], nil
}

// CreateFromReport builds one draft invoice covering all tasks of a report.
// The billing target is the customer override if given, otherwise the
// report's agency, otherwise its client.
func (b *Builder) CreateFromReport(ctx context.Context, tasks []Task, opts Options) (*sevdesk.Invoice, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("report contains no tasks")
	}

	days := opts.DaysUntilPayment
	if days == 0 {
		days = 30
	}

	first := tasks[0]
	start := first.StartDate.Time
	end := first.EndDate.Time
	currency := first.TargetCurrency

	// agency "-" is legacy for none
	hasAgency := first.Agency != "-" && first.Agency != "none"

	billingTarget := first.Client
	if opts.CustomerOverride != "" {
		billingTarget = opts.CustomerOverride
	} else if hasAgency {
		billingTarget = first.Agency
	}

	positions := make([]sevdesk.InvoicePosition, 0, len(tasks))
	for _, task := range tasks {
		position, err := lineItem(task, hasAgency)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}

	contact, err := b.findContact(ctx, billingTarget)
	if err != nil {
		return nil, err
	}

	invoice := sevdesk.Invoice{
		Status:            sevdesk.InvoiceStatusDraft,
		Header:            fmt.Sprintf("Bill for %s", start.Format("2006-01")),
		HeadText:          fmt.Sprintf("Terms of payment: Payment within %d days from receipt of invoice without deductions.", days),
		Contact:           &sevdesk.ObjectRef{ID: contact.ID, ObjectName: sevdesk.ObjectNameContact},
		Currency:          currency,
		InvoiceDate:       time.Now().Format("2006-01-02"),
		DeliveryDate:      start.Format("2006-01-02"),
		DeliveryDateUntil: end.Format("2006-01-02"),
		TimeToPay:         days,
		TaxRule:           sevdesk.TaxRuleNotTaxableInCountry,
	}

	created, err := b.client.CreateInvoice(ctx, invoice, positions)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice for %s: %w", billingTarget, err)
	}

	b.logger.Info("Created draft invoice",
		"invoice_id", created.ID,
		"contact", billingTarget,
		"currency", currency,
		"positions", len(positions))
	return created, nil
}
