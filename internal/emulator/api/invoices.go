package api

import (
	"encoding/json"
	"net/http"

	"github.com/sevsync-dev/sevsync/internal/emulator/models"
	"github.com/sevsync-dev/sevsync/internal/emulator/store"
)

// InvoicesHandler handles invoice-related API endpoints.
type InvoicesHandler struct {
	store *store.Store
}

// NewInvoicesHandler creates a new InvoicesHandler.
func NewInvoicesHandler(s *store.Store) *InvoicesHandler {
	return &InvoicesHandler{store: s}
}

// Save handles POST /Invoice/Factory/saveInvoice.
func (h *InvoicesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	invoice, err := h.store.CreateInvoice(req.Invoice, req.InvoicePosSave)
	if err != nil {
		writeStoreError(w, err, "Invoice not found")
		return
	}

	writeObjects(w, http.StatusCreated, invoice)
}

// Get handles GET /Invoice/{id}.
func (h *InvoicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid invoice ID")
		return
	}

	invoice, err := h.store.GetInvoice(id)
	if err != nil {
		writeStoreError(w, err, "Invoice not found")
		return
	}

	writeObjects(w, http.StatusOK, invoice)
}
