package api

import (
	"encoding/json"
	"net/http"

	"github.com/sevsync-dev/sevsync/internal/emulator/store"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// ReferenceHandler serves check accounts, accounting types and contacts.
type ReferenceHandler struct {
	store           *store.Store
	accountingTypes []sevdesk.AccountingType
}

// NewReferenceHandler creates a new ReferenceHandler with a default chart of
// accounts.
func NewReferenceHandler(s *store.Store) *ReferenceHandler {
	return &ReferenceHandler{
		store:           s,
		accountingTypes: defaultAccountingTypes(),
	}
}

// defaultAccountingTypes returns a small SKR03 chart of accounts for testing.
func defaultAccountingTypes() []sevdesk.AccountingType {
	return []sevdesk.AccountingType{
		{ID: 1, AccountingNumber: "8400", Name: "Erlöse"},
		{ID: 2, AccountingNumber: "4980", Name: "Betriebsbedarf"},
		{ID: 3, AccountingNumber: "4920", Name: "Telefon"},
		{ID: 4, AccountingNumber: "4673", Name: "Reisekosten"},
		{ID: 5, AccountingNumber: "4955", Name: "Nebenkosten des Geldverkehrs"},
	}
}

// ListCheckAccounts handles GET /CheckAccount.
func (h *ReferenceHandler) ListCheckAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListCheckAccounts()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list check accounts")
		return
	}

	writeObjects(w, http.StatusOK, accounts)
}

// CreateCheckAccount handles POST /CheckAccount.
func (h *ReferenceHandler) CreateCheckAccount(w http.ResponseWriter, r *http.Request) {
	var account sevdesk.CheckAccount
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	created, err := h.store.CreateCheckAccount(account)
	if err != nil {
		writeStoreError(w, err, "Check account not found")
		return
	}

	writeObjects(w, http.StatusCreated, created)
}

// ListAccountingTypes handles GET /AccountingType.
func (h *ReferenceHandler) ListAccountingTypes(w http.ResponseWriter, r *http.Request) {
	writeObjects(w, http.StatusOK, h.accountingTypes)
}

// ListContacts handles GET /Contact with an optional exact name filter.
func (h *ReferenceHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.SearchContacts(r.URL.Query().Get("name"))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list contacts")
		return
	}

	writeObjects(w, http.StatusOK, contacts)
}

// CreateContact handles POST /Contact.
func (h *ReferenceHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var contact sevdesk.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	created, err := h.store.CreateContact(contact)
	if err != nil {
		writeStoreError(w, err, "Contact not found")
		return
	}

	writeObjects(w, http.StatusCreated, created)
}
