package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/internal/emulator/models"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// CreateTransaction stores a new check account transaction. The referenced
// check account must exist; new transactions always start unlinked.
func (s *Store) CreateTransaction(txn sevdesk.Transaction) (*sevdesk.Transaction, error) {
	if txn.CheckAccount.ID == 0 {
		return nil, ruleErrorf("checkAccount is required")
	}
	if _, err := s.GetCheckAccount(txn.CheckAccount.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ruleErrorf("check account %d does not exist", txn.CheckAccount.ID)
		}
		return nil, err
	}
	if txn.ValueDate == "" {
		return nil, ruleErrorf("valueDate is required")
	}

	if txn.Status == 0 {
		txn.Status = sevdesk.TransactionStatusCreated
	}
	if txn.EntryDate == "" {
		txn.EntryDate = txn.ValueDate
	}
	txn.CheckAccount.ObjectName = sevdesk.ObjectNameCheckAccount

	id, err := s.NextID(BucketTransactions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now()
	txn.ID = id
	txn.Enshrined = false
	txn.Target = nil
	txn.LinkedAmount = decimal.Zero
	txn.CreatedAt = now
	txn.UpdatedAt = now

	if err := s.Put(BucketTransactions, id, &txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	return &txn, nil
}

// GetTransaction retrieves a transaction by ID.
func (s *Store) GetTransaction(id int64) (*sevdesk.Transaction, error) {
	var txn sevdesk.Transaction
	if err := s.Get(BucketTransactions, id, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateTransaction updates descriptive fields of an existing transaction.
// Enshrined transactions are immutable.
func (s *Store) UpdateTransaction(id int64, req *models.UpdateTransactionRequest) (*sevdesk.Transaction, error) {
	txn, err := s.GetTransaction(id)
	if err != nil {
		return nil, err
	}
	if txn.Enshrined {
		return nil, ruleErrorf("transaction %d is enshrined and cannot be modified", id)
	}

	if req.ValueDate != nil {
		txn.ValueDate = *req.ValueDate
	}
	if req.EntryDate != nil {
		txn.EntryDate = *req.EntryDate
	}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.PayeePayerName != nil {
		txn.PayeePayerName = *req.PayeePayerName
	}
	if req.PaymtPurpose != nil {
		txn.PaymtPurpose = *req.PaymtPurpose
	}

	txn.UpdatedAt = time.Now()

	if err := s.Put(BucketTransactions, id, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return txn, nil
}

// DeleteTransaction deletes a transaction. Enshrined or linked transactions
// cannot be deleted.
func (s *Store) DeleteTransaction(id int64) error {
	txn, err := s.GetTransaction(id)
	if err != nil {
		return err
	}
	if txn.Enshrined {
		return ruleErrorf("transaction %d is enshrined and cannot be deleted", id)
	}
	if txn.Target != nil {
		return ruleErrorf("transaction %d is linked to %s %d, unlink it first", id, txn.Target.ObjectName, txn.Target.ID)
	}
	return s.Delete(BucketTransactions, id)
}

// LinkTransaction links a transaction to a voucher and registers the given
// amount as payment on it. The amount must not exceed the voucher's remaining
// gross.
func (s *Store) LinkTransaction(id int64, req *models.LinkRequest) (*sevdesk.Transaction, error) {
	txn, err := s.GetTransaction(id)
	if err != nil {
		return nil, err
	}
	if txn.Enshrined {
		return nil, ruleErrorf("transaction %d is enshrined and cannot be modified", id)
	}
	if txn.Target != nil {
		return nil, ruleErrorf("transaction %d is already linked to %s %d", id, txn.Target.ObjectName, txn.Target.ID)
	}
	if req.ObjectName != sevdesk.ObjectNameVoucher {
		return nil, ruleErrorf("linking to %s is not supported", req.ObjectName)
	}
	if !req.Amount.IsPositive() {
		return nil, ruleErrorf("link amount must be positive, got %s", req.Amount)
	}

	voucher, err := s.GetVoucher(req.Target)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ruleErrorf("voucher %d does not exist", req.Target)
		}
		return nil, err
	}

	remaining := voucher.RemainingGross()
	if req.Amount.GreaterThan(remaining) {
		return nil, ruleErrorf("link amount %s exceeds remaining gross %s of voucher %d", req.Amount, remaining, voucher.ID)
	}

	now := time.Now()
	txn.Target = &sevdesk.ObjectRef{ID: voucher.ID, ObjectName: sevdesk.ObjectNameVoucher}
	txn.LinkedAmount = req.Amount
	txn.Status = sevdesk.TransactionStatusLinked
	txn.UpdatedAt = now

	voucher.PaidAmount = voucher.PaidAmount.Add(req.Amount)
	voucher.LinkedTransactions = append(voucher.LinkedTransactions, id)
	if voucher.PayDate == "" {
		// The day part of "YYYY-MM-DD HH:MM:SS".
		voucher.PayDate = strings.SplitN(txn.ValueDate, " ", 2)[0]
	}
	voucher.UpdatedAt = now

	if err := s.Put(BucketTransactions, id, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	if err := s.Put(BucketVouchers, voucher.ID, voucher); err != nil {
		return nil, fmt.Errorf("failed to update voucher: %w", err)
	}

	return txn, nil
}

// UnlinkTransaction detaches a transaction from its voucher and removes the
// payment from it.
func (s *Store) UnlinkTransaction(id int64) (*sevdesk.Transaction, error) {
	txn, err := s.GetTransaction(id)
	if err != nil {
		return nil, err
	}
	if txn.Enshrined {
		return nil, ruleErrorf("transaction %d is enshrined and cannot be modified", id)
	}
	if txn.Target == nil {
		return nil, ruleErrorf("transaction %d is not linked", id)
	}

	now := time.Now()
	voucher, err := s.GetVoucher(txn.Target.ID)
	if err == nil {
		voucher.PaidAmount = voucher.PaidAmount.Sub(txn.LinkedAmount)
		voucher.LinkedTransactions = removeID(voucher.LinkedTransactions, id)
		voucher.UpdatedAt = now
		if err := s.Put(BucketVouchers, voucher.ID, voucher); err != nil {
			return nil, fmt.Errorf("failed to update voucher: %w", err)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	txn.Target = nil
	txn.LinkedAmount = decimal.Zero
	txn.Status = sevdesk.TransactionStatusCreated
	txn.UpdatedAt = now

	if err := s.Put(BucketTransactions, id, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return txn, nil
}

// EnshrineTransaction permanently freezes a transaction.
func (s *Store) EnshrineTransaction(id int64) (*sevdesk.Transaction, error) {
	txn, err := s.GetTransaction(id)
	if err != nil {
		return nil, err
	}
	if txn.Enshrined {
		return nil, ruleErrorf("transaction %d is already enshrined", id)
	}

	txn.Enshrined = true
	txn.UpdatedAt = time.Now()

	if err := s.Put(BucketTransactions, id, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return txn, nil
}

// ListTransactions retrieves transactions, optionally filtered by check
// account, status and value date range, with limit/offset pagination.
func (s *Store) ListTransactions(checkAccountID *int64, status *sevdesk.TransactionStatus, startDate, endDate string, limit, offset int) ([]*sevdesk.Transaction, error) {
	filter := func(data []byte) bool {
		var txn sevdesk.Transaction
		if err := json.Unmarshal(data, &txn); err != nil {
			return false
		}

		if checkAccountID != nil && txn.CheckAccount.ID != *checkAccountID {
			return false
		}
		if status != nil && txn.Status != *status {
			return false
		}
		day := strings.SplitN(txn.ValueDate, " ", 2)[0]
		if startDate != "" && day < startDate {
			return false
		}
		if endDate != "" && day > endDate {
			return false
		}

		return true
	}

	results, err := s.List(BucketTransactions, filter)
	if err != nil {
		return nil, err
	}

	txns := make([]*sevdesk.Transaction, 0, len(results))
	for _, data := range results {
		var txn sevdesk.Transaction
		if err := json.Unmarshal(data, &txn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	return paginate(txns, limit, offset), nil
}

// removeID drops one occurrence of id from ids.
func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
