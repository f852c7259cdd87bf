package sevdesk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

type transactionEnvelope struct {
	Objects Transaction `json:"objects"`
}

type transactionsEnvelope struct {
	Objects []Transaction `json:"objects"`
}

// CreateTransaction creates a check account transaction and returns the stored
// transaction with its server-assigned ID.
func (c *Client) CreateTransaction(ctx context.Context, txn Transaction) (*Transaction, error) {
	var resp transactionEnvelope
	if err := c.do(ctx, "POST", "CheckAccountTransaction", nil, txn, &resp); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &resp.Objects, nil
}

// GetTransaction fetches a single transaction by ID.
func (c *Client) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	var resp transactionEnvelope
	if err := c.do(ctx, "GET", fmt.Sprintf("CheckAccountTransaction/%d", id), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return &resp.Objects, nil
}

// TransactionUpdate is a partial update of transaction fields. Nil fields are
// left unchanged. The remote service rejects updates to enshrined transactions.
type TransactionUpdate struct {
	ValueDate      *string          `json:"valueDate,omitempty"`
	EntryDate      *string          `json:"entryDate,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	PayeePayerName *string          `json:"payeePayerName,omitempty"`
	PaymtPurpose   *string          `json:"paymtPurpose,omitempty"`
}

// UpdateTransaction applies a partial update to a transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, update TransactionUpdate) (*Transaction, error) {
	var resp transactionEnvelope
	if err := c.do(ctx, "PUT", fmt.Sprintf("CheckAccountTransaction/%d", id), nil, update, &resp); err != nil {
		return nil, fmt.Errorf("failed to update transaction %d: %w", id, err)
	}
	return &resp.Objects, nil
}

// DeleteTransaction deletes a transaction. Enshrined or linked transactions
// cannot be deleted.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	if err := c.do(ctx, "DELETE", fmt.Sprintf("CheckAccountTransaction/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return nil
}

// LinkRequest is the payload of the transaction link endpoint.
type LinkRequest struct {
	Target     int64           `json:"target"`
	ObjectName string          `json:"objectName"`
	Amount     decimal.Decimal `json:"amount"`
}

// LinkTransaction links a transaction to a voucher or invoice, settling the
// given amount against it. targetType is "Voucher" or "Invoice".
func (c *Client) LinkTransaction(ctx context.Context, txnID, targetID int64, targetType string, amount decimal.Decimal) (*Transaction, error) {
	req := LinkRequest{Target: targetID, ObjectName: targetType, Amount: amount}

	var resp transactionEnvelope
	if err := c.do(ctx, "PUT", fmt.Sprintf("CheckAccountTransaction/%d/link", txnID), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to link transaction %d to %s %d: %w", txnID, targetType, targetID, err)
	}
	return &resp.Objects, nil
}

// UnlinkTransaction removes the link between a transaction and its target,
// reversing the settled amount.
func (c *Client) UnlinkTransaction(ctx context.Context, txnID int64) (*Transaction, error) {
	var resp transactionEnvelope
	if err := c.do(ctx, "PUT", fmt.Sprintf("CheckAccountTransaction/%d/unlink", txnID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to unlink transaction %d: %w", txnID, err)
	}
	return &resp.Objects, nil
}

// EnshrineTransaction finalizes a transaction, making it immutable.
func (c *Client) EnshrineTransaction(ctx context.Context, txnID int64) (*Transaction, error) {
	var resp transactionEnvelope
	if err := c.do(ctx, "PUT", fmt.Sprintf("CheckAccountTransaction/%d/enshrine", txnID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to enshrine transaction %d: %w", txnID, err)
	}
	return &resp.Objects, nil
}

// ListTransactionsOptions filters transaction listings.
type ListTransactionsOptions struct {
	CheckAccountID int64
	Status         TransactionStatus
	StartDate      string // YYYY-MM-DD, inclusive
	EndDate        string // YYYY-MM-DD, inclusive
	Limit          int
	Offset         int
}

// ListTransactions fetches a page of transactions.
func (c *Client) ListTransactions(ctx context.Context, opts *ListTransactionsOptions) ([]Transaction, error) {
	query := url.Values{}
	if opts != nil {
		if opts.CheckAccountID != 0 {
			query.Set("checkAccount[id]", strconv.FormatInt(opts.CheckAccountID, 10))
			query.Set("checkAccount[objectName]", "CheckAccount")
		}
		if opts.Status != 0 {
			query.Set("status", strconv.Itoa(int(opts.Status)))
		}
		if opts.StartDate != "" {
			query.Set("startDate", opts.StartDate)
		}
		if opts.EndDate != "" {
			query.Set("endDate", opts.EndDate)
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			query.Set("offset", strconv.Itoa(opts.Offset))
		}
	}

	var resp transactionsEnvelope
	if err := c.do(ctx, "GET", "CheckAccountTransaction", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return resp.Objects, nil
}

// FetchAllTransactions pages through all transactions matching the given filters.
func (c *Client) FetchAllTransactions(ctx context.Context, opts *ListTransactionsOptions) ([]Transaction, error) {
	pageOpts := ListTransactionsOptions{}
	if opts != nil {
		pageOpts = *opts
	}
	pageOpts.Limit = DefaultPageSize
	pageOpts.Offset = 0

	var all []Transaction
	for {
		page, err := c.ListTransactions(ctx, &pageOpts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageOpts.Limit {
			break
		}
		pageOpts.Offset += pageOpts.Limit
	}
	return all, nil
}
