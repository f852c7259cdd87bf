package store

import (
	"fmt"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// seedDefaults populates empty buckets with a usable set of check accounts
// and contacts so a fresh emulator works out of the box.
func (s *Store) seedDefaults() error {
	count, err := s.Count(BucketCheckAccounts)
	if err != nil {
		return err
	}
	if count == 0 {
		accounts := []sevdesk.CheckAccount{
			{Name: "Wise (EUR, Business)", Type: sevdesk.CheckAccountOnline, Currency: "EUR", Status: 100, IBAN: "BE71096123456769"},
			{Name: "Wise (USD, Business)", Type: sevdesk.CheckAccountOnline, Currency: "USD", Status: 100},
			{Name: "Girokonto", Type: sevdesk.CheckAccountOnline, Currency: "EUR", Status: 100, IBAN: "DE02120300000000202051"},
			{Name: "Kasse", Type: sevdesk.CheckAccountRegister, Currency: "EUR", Status: 100},
		}
		for _, account := range accounts {
			if _, err := s.CreateCheckAccount(account); err != nil {
				return fmt.Errorf("failed to seed check account %s: %w", account.Name, err)
			}
		}
	}

	count, err = s.Count(BucketContacts)
	if err != nil {
		return err
	}
	if count == 0 {
		contacts := []sevdesk.Contact{
			{Name: "Acme GmbH", CustomerNumber: "1001"},
			{Name: "Globex Ltd", CustomerNumber: "1002"},
		}
		for _, contact := range contacts {
			if _, err := s.CreateContact(contact); err != nil {
				return fmt.Errorf("failed to seed contact %s: %w", contact.Name, err)
			}
		}
	}

	return nil
}
