package store

import (
	"encoding/json"
	"fmt"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// CreateContact stores a new contact.
func (s *Store) CreateContact(contact sevdesk.Contact) (*sevdesk.Contact, error) {
	if contact.Name == "" {
		return nil, ruleErrorf("contact name is required")
	}

	id, err := s.NextID(BucketContacts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}
	contact.ID = id
	if contact.CustomerNumber == "" {
		contact.CustomerNumber = fmt.Sprintf("%d", 1000+id)
	}

	if err := s.Put(BucketContacts, id, &contact); err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}

	return &contact, nil
}

// SearchContacts retrieves contacts, filtered to exact name matches when name
// is non-empty.
func (s *Store) SearchContacts(name string) ([]*sevdesk.Contact, error) {
	filter := func(data []byte) bool {
		if name == "" {
			return true
		}
		var contact sevdesk.Contact
		if err := json.Unmarshal(data, &contact); err != nil {
			return false
		}
		return contact.Name == name
	}

	results, err := s.List(BucketContacts, filter)
	if err != nil {
		return nil, err
	}

	contacts := make([]*sevdesk.Contact, 0, len(results))
	for _, data := range results {
		var contact sevdesk.Contact
		if err := json.Unmarshal(data, &contact); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contact: %w", err)
		}
		contacts = append(contacts, &contact)
	}

	return contacts, nil
}
