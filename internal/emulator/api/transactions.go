package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sevsync-dev/sevsync/internal/emulator/models"
	"github.com/sevsync-dev/sevsync/internal/emulator/store"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// TransactionsHandler handles check account transaction API endpoints.
type TransactionsHandler struct {
	store *store.Store
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(s *store.Store) *TransactionsHandler {
	return &TransactionsHandler{store: s}
}

// Create handles POST /CheckAccountTransaction.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var txn sevdesk.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	created, err := h.store.CreateTransaction(txn)
	if err != nil {
		writeStoreError(w, err, "Transaction not found")
		return
	}

	writeObjects(w, http.StatusCreated, created)
}

// Get handles GET /CheckAccountTransaction/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction ID")
		return
	}

	txn, err := h.store.GetTransaction(id)
	if err != nil {
		writeStoreError(w, err, "Transaction not found")
		return
	}

	writeObjects(w, http.StatusOK, txn)
}

// Update handles PUT /CheckAccountTransaction/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction ID")
		return
	}

	var req models.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	txn, err := h.store.UpdateTransaction(id, &req)
	if err != nil {
		writeStoreError(w, err, "Transaction not found")
		return
	}

	writeObjects(w, http.StatusOK, txn)
}

// Delete handles DELETE /CheckAccountTransaction/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction ID")
		return
	}

	if err := h.store.DeleteTransaction(id); err != nil {
		writeStoreError(w, err, "Transaction not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Link handles PUT /CheckAccountTransaction/{id}/link.
func (h *TransactionsHandler) Link(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction ID")
		return
	}

	var req models.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	txn, err := h.store.LinkTransaction(id, &req)
	if err != nil {
		writeStoreError(w, err, "Transaction not found")
		return
	}

	writeObjects(w, http.StatusOK, txn)
}

// Unlink handles PUT /CheckAccountTransaction/{id}/unlink.
func (h *TransactionsHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction ID")
		return
	}

	txn, err := h.store.UnlinkTransaction(id)
	if err != nil {
		writeStoreError(w, err, "Transaction not found")
		return
	}

	writeObjects(w, http.StatusOK, txn)
}

// Enshrine handles PUT /CheckAccountTransaction/{id}/enshrine.
func (h *TransactionsHandler) Enshrine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transaction ID")
		return
	}

	txn, err := h.store.EnshrineTransaction(id)
	if err != nil {
		writeStoreError(w, err, "Transaction not found")
		return
	}

	writeObjects(w, http.StatusOK, txn)
}

// List handles GET /CheckAccountTransaction.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	var checkAccountID *int64
	if value := r.URL.Query().Get("checkAccount[id]"); value != "" {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid checkAccount[id]")
			return
		}
		checkAccountID = &id
	}

	var status *sevdesk.TransactionStatus
	if value := r.URL.Query().Get("status"); value != "" {
		parsed, err := sevdesk.ParseTransactionStatus(value)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid status")
			return
		}
		status = &parsed
	}

	txns, err := h.store.ListTransactions(
		checkAccountID,
		status,
		r.URL.Query().Get("startDate"),
		r.URL.Query().Get("endDate"),
		queryInt(r, "limit"),
		queryInt(r, "offset"),
	)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list transactions")
		return
	}

	writeObjects(w, http.StatusOK, txns)
}
