package api

import (
	"encoding/json"
	"net/http"

	"github.com/sevsync-dev/sevsync/internal/emulator/models"
	"github.com/sevsync-dev/sevsync/internal/emulator/store"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// VouchersHandler handles voucher-related API endpoints.
type VouchersHandler struct {
	store *store.Store
}

// NewVouchersHandler creates a new VouchersHandler.
func NewVouchersHandler(s *store.Store) *VouchersHandler {
	return &VouchersHandler{store: s}
}

// Save handles POST /Voucher/Factory/saveVoucher.
func (h *VouchersHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	voucher, err := h.store.CreateVoucher(req.Voucher, req.VoucherPosSave)
	if err != nil {
		writeStoreError(w, err, "Voucher not found")
		return
	}

	writeObjects(w, http.StatusCreated, voucher)
}

// Get handles GET /Voucher/{id}.
func (h *VouchersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid voucher ID")
		return
	}

	voucher, err := h.store.GetVoucher(id)
	if err != nil {
		writeStoreError(w, err, "Voucher not found")
		return
	}

	writeObjects(w, http.StatusOK, voucher)
}

// Update handles PUT /Voucher/{id}.
func (h *VouchersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid voucher ID")
		return
	}

	var req models.UpdateVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	voucher, err := h.store.UpdateVoucher(id, &req)
	if err != nil {
		writeStoreError(w, err, "Voucher not found")
		return
	}

	writeObjects(w, http.StatusOK, voucher)
}

// ChangeStatus handles PUT /Voucher/{id}/changeStatus.
func (h *VouchersHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid voucher ID")
		return
	}

	var req models.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	voucher, err := h.store.SetVoucherStatus(id, sevdesk.VoucherStatus(req.Value))
	if err != nil {
		writeStoreError(w, err, "Voucher not found")
		return
	}

	writeObjects(w, http.StatusOK, voucher)
}

// List handles GET /Voucher.
func (h *VouchersHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *sevdesk.VoucherStatus
	if value := r.URL.Query().Get("status"); value != "" {
		parsed, err := sevdesk.ParseVoucherStatus(value)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid status")
			return
		}
		status = &parsed
	}

	vouchers, err := h.store.ListVouchers(
		status,
		r.URL.Query().Get("startDate"),
		r.URL.Query().Get("endDate"),
		queryInt(r, "limit"),
		queryInt(r, "offset"),
	)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list vouchers")
		return
	}

	writeObjects(w, http.StatusOK, vouchers)
}
