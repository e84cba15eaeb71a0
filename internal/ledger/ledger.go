// Package ledger is the balance computation engine: pure functions that
// classify transactions, fold them into running balances, and aggregate
// them into summaries. It performs no I/O and never fails; malformed
// records degrade to zero contributions and fallback descriptions.
package ledger

import (
	"sort"
	"strings"
	"time"

	"dealerbook/backend/internal/domain"
)

// Norm is the identity form of a dealer name: trimmed and case-folded.
// Every balance computation compares dealers through it.
func Norm(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameDealer reports whether two dealer names refer to the same dealer.
func SameDealer(a, b string) bool {
	return Norm(a) != "" && Norm(a) == Norm(b)
}

// Contribution returns the signed monetary effect of one transaction on the
// viewpoint dealer's ledger.
//
// Sale credits the stored totalAmount as-is. Payment and Cartage debit the
// stored amount. Return debits quantity x rate, recomputed, regardless of the
// stored totalAmount. Transfer debits the source and credits the destination
// with quantity x rate, and contributes nothing when source and destination
// are the same dealer or the viewpoint is neither. Carry Forward and unknown
// types contribute nothing.
func Contribution(t domain.Transaction, viewpoint string) (credit, debit float64) {
	switch t.Type {
	case domain.TypeSale:
		credit = t.TotalAmount.Value()
	case domain.TypePayment, domain.TypeCartage:
		debit = t.Amount.Value()
	case domain.TypeReturn:
		debit = float64(t.Quantity.Value()) * t.Rate.Value()
	case domain.TypeTransfer:
		value := float64(t.Quantity.Value()) * t.Rate.Value()
		isSource := SameDealer(t.Dealer, viewpoint) || SameDealer(t.SourceDealer, viewpoint)
		isDest := SameDealer(t.DestinationDealer, viewpoint)
		switch {
		case isSource && !isDest:
			debit = value
		case isDest && !isSource:
			credit = value
		}
	}
	return credit, debit
}

// Describe resolves the display description of a transaction against the
// current product list. Missing products fall back to the raw stored name;
// missing fields fall back to "-". It mirrors the ledger page's rules:
// payments through a bank show the account, cash-like payments show the
// free-text description.
func Describe(t domain.Transaction, products []domain.Product) string {
	switch t.Type {
	case domain.TypeSale:
		if label, ok := productLabel(t.Product, products); ok {
			return label
		}
		return fallback(t.Product)
	case domain.TypeReturn:
		label, _ := productLabel(t.Product, products)
		if label == "" {
			label = fallback(t.Product)
		}
		dest := t.DestinationDealer
		if dest == "" {
			dest = t.Description
		}
		return label + " - " + fallback(dest)
	case domain.TypeTransfer:
		label, _ := productLabel(t.Product, products)
		if label == "" {
			label = fallback(t.Product)
		}
		return label + " | " + fallback(t.Source()) + " to " + fallback(t.DestinationDealer)
	case domain.TypePayment, domain.TypeCartage:
		switch t.PaymentMode {
		case domain.ModeBankTransfer, domain.ModeNetBanking:
			return fallback(t.BankAccount)
		case domain.ModeCheq, domain.ModeCash, domain.ModeAdjustment:
			return fallback(t.Description)
		}
	}
	return fallback(t.Description)
}

func productLabel(name string, products []domain.Product) (string, bool) {
	for _, p := range products {
		if p.Name == name {
			return p.Label(), true
		}
	}
	return "", false
}

func fallback(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Select returns the transactions belonging to a dealer's ledger: rows whose
// dealer (or legacy sourceDealer) matches, plus Transfers arriving at the
// dealer as destination.
func Select(txs []domain.Transaction, dealer string) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if SameDealer(t.Dealer, dealer) || SameDealer(t.SourceDealer, dealer) {
			out = append(out, t)
			continue
		}
		if t.Type == domain.TypeTransfer && SameDealer(t.DestinationDealer, dealer) {
			out = append(out, t)
		}
	}
	return out
}

// SortByDate orders transactions ascending by calendar date. Rows sharing a
// date keep their relative input order, so same-day running balances are
// reproducible.
func SortByDate(txs []domain.Transaction) []domain.Transaction {
	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ParseDay(sorted[i].Date).Before(ParseDay(sorted[j].Date))
	})
	return sorted
}

// BuildLedger produces the dealer's ledger under the given filter: selected,
// filtered, date-sorted rows with per-row contribution and running balance.
// The returned slice is ascending; newest-first display is the caller's
// concern.
func BuildLedger(txs []domain.Transaction, dealer string, f domain.Filter, now time.Time, products []domain.Product) []domain.LedgerRow {
	selected := ApplyFilter(Select(txs, dealer), f, now)
	sorted := SortByDate(selected)

	rows := make([]domain.LedgerRow, 0, len(sorted))
	balance := 0.0
	for _, t := range sorted {
		credit, debit := Contribution(t, dealer)
		balance += credit - debit
		rows = append(rows, domain.LedgerRow{
			Transaction:        t,
			DisplayDescription: Describe(t, products),
			Credit:             credit,
			Debit:              debit,
			Balance:            balance,
		})
	}
	return rows
}
