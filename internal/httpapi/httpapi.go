// Package httpapi exposes the bookkeeping service over HTTP. Handlers are
// thin: parse the path and query, call the service, map errors to status
// codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dealerbook/backend/internal/domain"
	"dealerbook/backend/internal/export"
	"dealerbook/backend/internal/ledger"
	"dealerbook/backend/internal/service"
	"dealerbook/backend/internal/store"
)

type API struct {
	service       *service.Service
	allowedOrigin string
}

func New(svc *service.Service, allowedOrigin string) *API {
	return &API{
		service:       svc,
		allowedOrigin: allowedOrigin,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)

	mux.HandleFunc("/api/v1/transactions", a.handleTransactions)
	mux.HandleFunc("/api/v1/transactions/", a.handleTransactionActions)
	mux.HandleFunc("/api/v1/dealers", a.handleDealers)
	mux.HandleFunc("/api/v1/dealers/", a.handleDealerActions)
	mux.HandleFunc("/api/v1/products", a.handleProducts)
	mux.HandleFunc("/api/v1/products/", a.handleProductActions)
	mux.HandleFunc("/api/v1/bank-accounts", a.handleBankAccounts)
	mux.HandleFunc("/api/v1/bank-accounts/", a.handleBankAccountActions)

	mux.HandleFunc("/api/v1/reports/dashboard", a.handleDashboard)
	mux.HandleFunc("/api/v1/reports/dealers", a.handleDealerDirectory)
	mux.HandleFunc("/api/v1/reports/payments", a.handlePaymentsReport)
	mux.HandleFunc("/api/v1/reports/cartage", a.handleCartageReport)
	mux.HandleFunc("/api/v1/stock/available", a.handleAvailableUnits)

	return a.withMiddleware(mux)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		txs, err := a.service.ListTransactionsFiltered(r.Context(), parseFilter(r.URL.Query()))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
	case http.MethodPost:
		var req domain.Transaction
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, warning, err := a.service.CreateTransaction(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		payload := map[string]any{"transaction": created}
		if warning != "" {
			payload["warning"] = warning
		}
		writeJSON(w, http.StatusCreated, payload)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleTransactionActions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, errors.New("transaction id required"))
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req domain.Transaction
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := a.service.UpdateTransaction(r.Context(), id, req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transaction": updated})
	case http.MethodDelete:
		if err := a.service.DeleteTransaction(r.Context(), id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleDealers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dealers, err := a.service.ListDealers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dealers": dealers})
	case http.MethodPost:
		var req domain.Dealer
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := a.service.CreateDealer(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"dealer": created})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleDealerActions covers both record updates addressed by id and the
// ledger views addressed by name:
//
//	PATCH  /api/v1/dealers/{id}
//	DELETE /api/v1/dealers/{id}
//	GET    /api/v1/dealers/{name}/ledger
//	GET    /api/v1/dealers/{name}/ledger/export
func (a *API) handleDealerActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/dealers/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, errors.New("dealer id required"))
		return
	}

	if name, ok := strings.CutSuffix(rest, "/ledger/export"); ok {
		a.serveLedgerExport(w, r, name)
		return
	}
	if name, ok := strings.CutSuffix(rest, "/ledger"); ok {
		a.serveLedger(w, r, name)
		return
	}
	if strings.Contains(rest, "/") {
		writeError(w, http.StatusBadRequest, errors.New("invalid dealer action path"))
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req domain.Dealer
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := a.service.UpdateDealer(r.Context(), rest, req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dealer": updated})
	case http.MethodDelete:
		if err := a.service.DeleteDealer(r.Context(), rest); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": rest})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) serveLedger(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	name, err := url.PathUnescape(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid dealer name"))
		return
	}
	dl, err := a.service.DealerLedger(r.Context(), name, parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, dl)
}

func (a *API) serveLedgerExport(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	name, err := url.PathUnescape(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid dealer name"))
		return
	}
	dl, err := a.service.DealerLedger(r.Context(), name, parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	filename := fmt.Sprintf("ledger-%s.xlsx", strings.ReplaceAll(ledger.Norm(dl.Dealer.Name), " ", "-"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteLedger(w, dl); err != nil {
		log.Printf("[httpapi] ledger export failed dealer=%s: %v", dl.Dealer.Name, err)
	}
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.Product
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": created})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/products/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req domain.Product
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := a.service.UpdateProduct(r.Context(), id, req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": updated})
	case http.MethodDelete:
		if err := a.service.DeleteProduct(r.Context(), id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBankAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := a.service.ListBankAccounts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bankAccounts": accounts})
	case http.MethodPost:
		var req domain.BankAccount
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := a.service.CreateBankAccount(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"bankAccount": created})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBankAccountActions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/bank-accounts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, errors.New("bank account id required"))
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req domain.BankAccount
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := a.service.UpdateBankAccount(r.Context(), id, req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bankAccount": updated})
	case http.MethodDelete:
		if err := a.service.DeleteBankAccount(r.Context(), id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	summary, err := a.service.BusinessSummary(r.Context(), parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleDealerDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	dir, err := a.service.DealerDirectory(r.Context(), parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	q := r.URL.Query()
	if search := ledger.Norm(q.Get("q")); search != "" {
		kept := dir.Dealers[:0]
		for _, d := range dir.Dealers {
			if strings.Contains(ledger.Norm(d.Dealer.Name), search) {
				kept = append(kept, d)
			}
		}
		dir.Dealers = kept
	}
	// balance=due keeps dealers still owing, balance=clear the settled ones.
	if sign := q.Get("balance"); sign == "due" || sign == "clear" {
		kept := dir.Dealers[:0]
		for _, d := range dir.Dealers {
			if (sign == "due") == (d.Outstanding > 0) {
				kept = append(kept, d)
			}
		}
		dir.Dealers = kept
	}

	writeJSON(w, http.StatusOK, dir)
}

func (a *API) handlePaymentsReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	report, err := a.service.PaymentsReport(r.Context(), parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleCartageReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	report, err := a.service.CartageRecords(r.Context(), parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleAvailableUnits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	dealer := r.URL.Query().Get("dealer")
	product := r.URL.Query().Get("product")
	if dealer == "" || product == "" {
		writeError(w, http.StatusBadRequest, errors.New("dealer and product are required"))
		return
	}

	units, err := a.service.AvailableUnits(r.Context(), dealer, product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

// parseFilter reads the shared filter dimensions from the query string.
// Unknown range names and unparseable dates degrade to the unfiltered view.
func parseFilter(q url.Values) domain.Filter {
	f := domain.Filter{
		DateRange:      q.Get("range"),
		Dealer:         q.Get("dealer"),
		Type:           q.Get("type"),
		Product:        q.Get("product"),
		PaymentChannel: q.Get("channel"),
	}
	if from := q.Get("from"); from != "" {
		f.From = ledger.ParseDay(from)
		if f.DateRange == "" {
			f.DateRange = domain.RangeCustom
		}
	}
	if to := q.Get("to"); to != "" {
		f.To = ledger.ParseDay(to)
		if f.DateRange == "" {
			f.DateRange = domain.RangeCustom
		}
	}
	return f
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidRecord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// details. 4xx responses are user-facing so the original message stands.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}
