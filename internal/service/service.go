// Package service coordinates the snapshot store and the ledger engine.
// Every operation loads the collections it needs, runs pure ledger code
// over them, and writes back whole arrays for mutations.
package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"dealerbook/backend/internal/domain"
	"dealerbook/backend/internal/ledger"
	"dealerbook/backend/internal/store"
	"dealerbook/backend/internal/xid"
)

type Service struct {
	snapshots store.Snapshots
	now       func() time.Time
}

func New(snapshots store.Snapshots) *Service {
	return &Service{
		snapshots: snapshots,
		now:       time.Now,
	}
}

// ListTransactions returns every stored transaction, date ascending.
// Records imported from older data sometimes lack ids; those are backfilled
// here and the repaired array is written back.
func (s *Service) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	repaired := false
	for i := range txs {
		if txs[i].ID == "" {
			txs[i].ID = xid.New("txn")
			repaired = true
		}
	}
	if repaired {
		if err := s.snapshots.SaveTransactions(ctx, txs); err != nil {
			log.Printf("[service] WARN: failed to persist backfilled transaction ids: %v", err)
		}
	}

	return ledger.SortByDate(txs), nil
}

// ListTransactionsFiltered is ListTransactions narrowed by a filter, with
// relative date presets anchored to the service clock.
func (s *Service) ListTransactionsFiltered(ctx context.Context, f domain.Filter) ([]domain.Transaction, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.ApplyFilter(txs, f, s.now()), nil
}

// CreateTransaction validates and stores a transaction. For Returns and
// Transfers the quantity is clamped to the dealer's available units; when a
// clamp happens the stored total is recomputed and a warning describing the
// adjustment is returned alongside the record.
func (s *Service) CreateTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, string, error) {
	if err := validateTransaction(t); err != nil {
		return domain.Transaction{}, "", err
	}

	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return domain.Transaction{}, "", err
	}

	warning := ""
	if t.Type == domain.TypeReturn || t.Type == domain.TypeTransfer {
		holder := t.Dealer
		if t.Type == domain.TypeTransfer {
			holder = t.Source()
		}
		units := ledger.NewUnits(txs)
		clamped, adjusted := units.Clamp(holder, t.Product, t.Quantity.Value())
		if adjusted {
			warning = fmt.Sprintf("quantity reduced from %d to %d: only %d units available for %s",
				t.Quantity.Value(), clamped, clamped, holder)
			t.Quantity = domain.FlexInt(clamped)
			t.TotalAmount = domain.FlexFloat(float64(clamped) * t.Rate.Value())
		}
	}

	if t.ID == "" {
		t.ID = xid.New("txn")
	}
	txs = append(txs, t)
	if err := s.snapshots.SaveTransactions(ctx, txs); err != nil {
		return domain.Transaction{}, "", err
	}

	log.Printf("[service] transaction recorded id=%s type=%s date=%s", t.ID, t.Type, t.Date)
	return t, warning, nil
}

// UpdateTransaction replaces the stored record carrying the given id. The id
// itself is immutable.
func (s *Service) UpdateTransaction(ctx context.Context, id string, t domain.Transaction) (domain.Transaction, error) {
	if err := validateTransaction(t); err != nil {
		return domain.Transaction{}, err
	}

	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}

	for i := range txs {
		if txs[i].ID == id {
			t.ID = id
			txs[i] = t
			if err := s.snapshots.SaveTransactions(ctx, txs); err != nil {
				return domain.Transaction{}, err
			}
			return t, nil
		}
	}
	return domain.Transaction{}, store.ErrNotFound
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return err
	}

	kept := txs[:0]
	found := false
	for _, t := range txs {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return store.ErrNotFound
	}
	return s.snapshots.SaveTransactions(ctx, kept)
}

func validateTransaction(t domain.Transaction) error {
	switch t.Type {
	case domain.TypeSale, domain.TypePayment, domain.TypeReturn,
		domain.TypeCartage, domain.TypeTransfer, domain.TypeCarryForward:
	default:
		return fmt.Errorf("%w: unknown transaction type %q", store.ErrInvalidRecord, t.Type)
	}
	if strings.TrimSpace(t.Date) == "" {
		return fmt.Errorf("%w: date is required", store.ErrInvalidRecord)
	}
	if t.Type == domain.TypeTransfer {
		if ledger.Norm(t.Source()) == "" || ledger.Norm(t.DestinationDealer) == "" {
			return fmt.Errorf("%w: transfer requires source and destination dealers", store.ErrInvalidRecord)
		}
		if ledger.SameDealer(t.Source(), t.DestinationDealer) {
			return fmt.Errorf("%w: transfer source and destination are the same dealer", store.ErrInvalidRecord)
		}
		return nil
	}
	if ledger.Norm(t.Dealer) == "" {
		return fmt.Errorf("%w: dealer is required", store.ErrInvalidRecord)
	}
	return nil
}

func (s *Service) ListDealers(ctx context.Context) ([]domain.Dealer, error) {
	dealers, err := s.snapshots.LoadDealers(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(dealers, func(i, j int) bool {
		return ledger.Norm(dealers[i].Name) < ledger.Norm(dealers[j].Name)
	})
	return dealers, nil
}

func (s *Service) CreateDealer(ctx context.Context, d domain.Dealer) (domain.Dealer, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.Dealer{}, fmt.Errorf("%w: dealer name is required", store.ErrInvalidRecord)
	}

	dealers, err := s.snapshots.LoadDealers(ctx)
	if err != nil {
		return domain.Dealer{}, err
	}
	for _, existing := range dealers {
		if ledger.SameDealer(existing.Name, d.Name) {
			return domain.Dealer{}, fmt.Errorf("%w: dealer %q already exists", store.ErrInvalidRecord, existing.Name)
		}
	}

	if d.ID == "" {
		d.ID = xid.New("dlr")
	}
	dealers = append(dealers, d)
	if err := s.snapshots.SaveDealers(ctx, dealers); err != nil {
		return domain.Dealer{}, err
	}
	return d, nil
}

func (s *Service) UpdateDealer(ctx context.Context, id string, d domain.Dealer) (domain.Dealer, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.Dealer{}, fmt.Errorf("%w: dealer name is required", store.ErrInvalidRecord)
	}

	dealers, err := s.snapshots.LoadDealers(ctx)
	if err != nil {
		return domain.Dealer{}, err
	}
	for i := range dealers {
		if dealers[i].ID == id {
			d.ID = id
			dealers[i] = d
			if err := s.snapshots.SaveDealers(ctx, dealers); err != nil {
				return domain.Dealer{}, err
			}
			return d, nil
		}
	}
	return domain.Dealer{}, store.ErrNotFound
}

func (s *Service) DeleteDealer(ctx context.Context, id string) error {
	dealers, err := s.snapshots.LoadDealers(ctx)
	if err != nil {
		return err
	}
	kept := dealers[:0]
	found := false
	for _, d := range dealers {
		if d.ID == id {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return store.ErrNotFound
	}
	return s.snapshots.SaveDealers(ctx, kept)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.snapshots.LoadProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", store.ErrInvalidRecord)
	}

	products, err := s.snapshots.LoadProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	if p.ID == "" {
		p.ID = xid.New("prd")
	}
	products = append(products, p)
	if err := s.snapshots.SaveProducts(ctx, products); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", store.ErrInvalidRecord)
	}

	products, err := s.snapshots.LoadProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for i := range products {
		if products[i].ID == id {
			p.ID = id
			products[i] = p
			if err := s.snapshots.SaveProducts(ctx, products); err != nil {
				return domain.Product{}, err
			}
			return p, nil
		}
	}
	return domain.Product{}, store.ErrNotFound
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	products, err := s.snapshots.LoadProducts(ctx)
	if err != nil {
		return err
	}
	kept := products[:0]
	found := false
	for _, p := range products {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return store.ErrNotFound
	}
	return s.snapshots.SaveProducts(ctx, kept)
}

func (s *Service) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	return s.snapshots.LoadBankAccounts(ctx)
}

func (s *Service) CreateBankAccount(ctx context.Context, a domain.BankAccount) (domain.BankAccount, error) {
	a.AccountTitle = strings.TrimSpace(a.AccountTitle)
	if a.AccountTitle == "" {
		return domain.BankAccount{}, fmt.Errorf("%w: account title is required", store.ErrInvalidRecord)
	}
	if a.AccountWithBank == "" && a.Bank != "" {
		a.AccountWithBank = a.AccountTitle + " - " + a.Bank
	}

	accounts, err := s.snapshots.LoadBankAccounts(ctx)
	if err != nil {
		return domain.BankAccount{}, err
	}
	if a.ID == "" {
		a.ID = xid.New("acc")
	}
	accounts = append(accounts, a)
	if err := s.snapshots.SaveBankAccounts(ctx, accounts); err != nil {
		return domain.BankAccount{}, err
	}
	return a, nil
}

func (s *Service) UpdateBankAccount(ctx context.Context, id string, a domain.BankAccount) (domain.BankAccount, error) {
	a.AccountTitle = strings.TrimSpace(a.AccountTitle)
	if a.AccountTitle == "" {
		return domain.BankAccount{}, fmt.Errorf("%w: account title is required", store.ErrInvalidRecord)
	}

	accounts, err := s.snapshots.LoadBankAccounts(ctx)
	if err != nil {
		return domain.BankAccount{}, err
	}
	for i := range accounts {
		if accounts[i].ID == id {
			a.ID = id
			accounts[i] = a
			if err := s.snapshots.SaveBankAccounts(ctx, accounts); err != nil {
				return domain.BankAccount{}, err
			}
			return a, nil
		}
	}
	return domain.BankAccount{}, store.ErrNotFound
}

func (s *Service) DeleteBankAccount(ctx context.Context, id string) error {
	accounts, err := s.snapshots.LoadBankAccounts(ctx)
	if err != nil {
		return err
	}
	kept := accounts[:0]
	found := false
	for _, a := range accounts {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return store.ErrNotFound
	}
	return s.snapshots.SaveBankAccounts(ctx, kept)
}

// DealerLedger builds the full ledger view for one dealer: running-balance
// rows under the given filter plus the dealer-scope summary over the same
// rows. The name lookup is case-insensitive and ignores surrounding space.
func (s *Service) DealerLedger(ctx context.Context, name string, f domain.Filter) (domain.DealerLedger, error) {
	dealers, err := s.snapshots.LoadDealers(ctx)
	if err != nil {
		return domain.DealerLedger{}, err
	}

	var dealer domain.Dealer
	found := false
	for _, d := range dealers {
		if ledger.SameDealer(d.Name, name) {
			dealer = d
			found = true
			break
		}
	}
	if !found {
		return domain.DealerLedger{}, store.ErrNotFound
	}

	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return domain.DealerLedger{}, err
	}
	products, err := s.snapshots.LoadProducts(ctx)
	if err != nil {
		return domain.DealerLedger{}, err
	}

	now := s.now()
	selected := ledger.ApplyFilter(ledger.Select(txs, dealer.Name), f, now)
	return domain.DealerLedger{
		Dealer:  dealer,
		Summary: ledger.DealerSummary(selected, dealer.Name),
		Rows:    ledger.BuildLedger(txs, dealer.Name, f, now, products),
	}, nil
}

// BusinessSummary is the dashboard aggregate across all dealers.
func (s *Service) BusinessSummary(ctx context.Context, f domain.Filter) (domain.Summary, error) {
	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return ledger.BusinessSummary(txs, f, s.now()), nil
}

// DealerDirectory lists every dealer with their dealer-scope standing under
// the filter, ordered by outstanding balance descending, plus the business
// summary over the same window.
func (s *Service) DealerDirectory(ctx context.Context, f domain.Filter) (domain.DealerDirectory, error) {
	dealers, err := s.ListDealers(ctx)
	if err != nil {
		return domain.DealerDirectory{}, err
	}
	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return domain.DealerDirectory{}, err
	}

	now := s.now()
	filtered := ledger.ApplyFilter(txs, f, now)

	standings := make([]domain.DealerStanding, 0, len(dealers))
	for _, d := range dealers {
		sum := ledger.DealerSummary(ledger.Select(filtered, d.Name), d.Name)
		standings = append(standings, domain.DealerStanding{
			Dealer:      d,
			Sales:       sum.TotalSales,
			Payments:    sum.TotalPayments,
			Returns:     sum.TotalReturns,
			Outstanding: sum.Outstanding,
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Outstanding > standings[j].Outstanding
	})

	return domain.DealerDirectory{
		Dealers: standings,
		Summary: ledger.BusinessSummary(txs, f, now),
	}, nil
}

// PaymentsReport is the payment-channel breakdown under the filter.
func (s *Service) PaymentsReport(ctx context.Context, f domain.Filter) (domain.PaymentsReport, error) {
	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return domain.PaymentsReport{}, err
	}
	accounts, err := s.snapshots.LoadBankAccounts(ctx)
	if err != nil {
		return domain.PaymentsReport{}, err
	}
	return ledger.PaymentsBreakdown(txs, f, s.now(), accounts), nil
}

// CartageRecords lists cartage transactions under the filter with totals
// split by payer.
func (s *Service) CartageRecords(ctx context.Context, f domain.Filter) (domain.CartageReport, error) {
	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return domain.CartageReport{}, err
	}

	report := domain.CartageReport{Transactions: []domain.Transaction{}}
	for _, t := range ledger.SortByDate(ledger.ApplyFilter(txs, f, s.now())) {
		if t.Type != domain.TypeCartage {
			continue
		}
		amt := t.Amount.Value()
		report.Total += amt
		if t.PaidBy == domain.PaidByDealer {
			report.DealerPaid += amt
		} else {
			report.CompanyPaid += amt
		}
		report.Transactions = append(report.Transactions, t)
	}
	return report, nil
}

// AvailableUnits reports how many units of a product a dealer currently
// holds, computed over the full history regardless of any filter.
func (s *Service) AvailableUnits(ctx context.Context, dealer, product string) (domain.AvailableUnits, error) {
	txs, err := s.snapshots.LoadTransactions(ctx)
	if err != nil {
		return domain.AvailableUnits{}, err
	}
	units := ledger.NewUnits(txs)
	return domain.AvailableUnits{
		Dealer:    dealer,
		Product:   product,
		Available: units.Available(dealer, product),
	}, nil
}
