package store

import (
	"encoding/json"
	"fmt"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// CreateCheckAccount stores a new check account.
func (s *Store) CreateCheckAccount(account sevdesk.CheckAccount) (*sevdesk.CheckAccount, error) {
	if account.Name == "" {
		return nil, ruleErrorf("check account name is required")
	}
	switch account.Type {
	case sevdesk.CheckAccountOffline, sevdesk.CheckAccountOnline, sevdesk.CheckAccountRegister:
	case "":
		account.Type = sevdesk.CheckAccountOnline
	default:
		return nil, ruleErrorf("unsupported check account type %q", account.Type)
	}
	if account.Currency == "" {
		account.Currency = "EUR"
	}
	if account.Status == 0 {
		account.Status = 100
	}

	id, err := s.NextID(BucketCheckAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}
	account.ID = id

	if err := s.Put(BucketCheckAccounts, id, &account); err != nil {
		return nil, fmt.Errorf("failed to save check account: %w", err)
	}

	return &account, nil
}

// GetCheckAccount retrieves a check account by ID.
func (s *Store) GetCheckAccount(id int64) (*sevdesk.CheckAccount, error) {
	var account sevdesk.CheckAccount
	if err := s.Get(BucketCheckAccounts, id, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListCheckAccounts retrieves all check accounts.
func (s *Store) ListCheckAccounts() ([]*sevdesk.CheckAccount, error) {
	results, err := s.List(BucketCheckAccounts, nil)
	if err != nil {
		return nil, err
	}

	accounts := make([]*sevdesk.CheckAccount, 0, len(results))
	for _, data := range results {
		var account sevdesk.CheckAccount
		if err := json.Unmarshal(data, &account); err != nil {
			return nil, fmt.Errorf("failed to unmarshal check account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	return accounts, nil
}
