package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevsync-dev/sevsync/internal/emulator/store"
)

// NewRouter builds the emulator's HTTP router. All API endpoints live under
// /api/v1 and require the given token.
func NewRouter(s *store.Store, token string) http.Handler {
	vouchersHandler := NewVouchersHandler(s)
	transactionsHandler := NewTransactionsHandler(s)
	invoicesHandler := NewInvoicesHandler(s)
	referenceHandler := NewReferenceHandler(s)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(token))

		r.Route("/Voucher", func(r chi.Router) {
			r.Post("/Factory/saveVoucher", vouchersHandler.Save)
			r.Get("/", vouchersHandler.List)
			r.Get("/{id}", vouchersHandler.Get)
			r.Put("/{id}", vouchersHandler.Update)
			r.Put("/{id}/changeStatus", vouchersHandler.ChangeStatus)
		})

		r.Route("/CheckAccountTransaction", func(r chi.Router) {
			r.Get("/", transactionsHandler.List)
			r.Post("/", transactionsHandler.Create)
			r.Get("/{id}", transactionsHandler.Get)
			r.Put("/{id}", transactionsHandler.Update)
			r.Delete("/{id}", transactionsHandler.Delete)
			r.Put("/{id}/link", transactionsHandler.Link)
			r.Put("/{id}/unlink", transactionsHandler.Unlink)
			r.Put("/{id}/enshrine", transactionsHandler.Enshrine)
		})

		r.Route("/Invoice", func(r chi.Router) {
			r.Post("/Factory/saveInvoice", invoicesHandler.Save)
			r.Get("/{id}", invoicesHandler.Get)
		})

		r.Route("/CheckAccount", func(r chi.Router) {
			r.Get("/", referenceHandler.ListCheckAccounts)
			r.Post("/", referenceHandler.CreateCheckAccount)
		})

		r.Get("/AccountingType", referenceHandler.ListAccountingTypes)

		r.Route("/Contact", func(r chi.Router) {
			r.Get("/", referenceHandler.ListContacts)
			r.Post("/", referenceHandler.CreateContact)
		})
	})

	// Health check endpoint.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
