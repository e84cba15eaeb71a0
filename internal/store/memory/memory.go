// Package memory is the in-process snapshot store used for dev mode and
// tests. Snapshots live as raw JSON payloads so the decode path is the same
// one the persistent backends exercise.
package memory

import (
	"context"
	"sync"

	"dealerbook/backend/internal/domain"
	"dealerbook/backend/internal/store"
	"dealerbook/backend/internal/xid"
)

type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func New() *Store {
	return &Store{snapshots: map[string][]byte{}}
}

// NewSeeded returns a store preloaded with a small demo book: two dealers,
// two products, one bank account, and a handful of transactions spanning the
// transaction types. Used when the server runs without a configured backend.
func NewSeeded() *Store {
	s := New()
	ctx := context.Background()

	dealers := []domain.Dealer{
		{ID: xid.New("dlr"), Name: "Akbar Traders", Phone: "0301-1234567", Location: "Multan"},
		{ID: xid.New("dlr"), Name: "Bismillah Agro", Phone: "0302-7654321", Location: "Sahiwal"},
	}
	products := []domain.Product{
		{ID: xid.New("prd"), Name: "Urea", Size: "50", Unit: "kg", Category: "Fertilizer"},
		{ID: xid.New("prd"), Name: "DAP", Size: "50", Unit: "kg", Category: "Fertilizer"},
	}
	accounts := []domain.BankAccount{
		{ID: xid.New("acc"), AccountTitle: "Main Current", AccountNumber: "0010-1122334455", Bank: "MCB", AccountWithBank: "Main Current - MCB"},
	}
	txs := []domain.Transaction{
		{
			ID: xid.New("txn"), Date: "2026-01-05", Type: domain.TypeSale,
			Dealer: "Akbar Traders", Product: "Urea",
			Quantity: domain.FlexInt(100), Rate: domain.FlexFloat(11800),
			TotalAmount: domain.FlexFloat(1180000), Warehouse: "Main",
		},
		{
			ID: xid.New("txn"), Date: "2026-01-12", Type: domain.TypePayment,
			Dealer: "Akbar Traders", Amount: domain.FlexFloat(500000),
			PaymentMode: domain.ModeBankTransfer, BankAccount: "Main Current - MCB",
			TransactionID: "FT2601120001",
		},
		{
			ID: xid.New("txn"), Date: "2026-01-20", Type: domain.TypeReturn,
			Dealer: "Akbar Traders", Product: "Urea",
			Quantity: domain.FlexInt(10), Rate: domain.FlexFloat(11800),
			TotalAmount: domain.FlexFloat(118000),
		},
		{
			ID: xid.New("txn"), Date: "2026-02-02", Type: domain.TypeTransfer,
			SourceDealer: "Akbar Traders", DestinationDealer: "Bismillah Agro",
			Product: "Urea", Quantity: domain.FlexInt(20),
			Rate: domain.FlexFloat(11800), TotalAmount: domain.FlexFloat(236000),
		},
		{
			ID: xid.New("txn"), Date: "2026-02-10", Type: domain.TypeCartage,
			Dealer: "Akbar Traders", Amount: domain.FlexFloat(15000),
			PaidBy: domain.PaidByCompany, BiltyNumber: "BLT-4401",
		},
	}

	_ = s.SaveDealers(ctx, dealers)
	_ = s.SaveProducts(ctx, products)
	_ = s.SaveBankAccounts(ctx, accounts)
	_ = s.SaveTransactions(ctx, txs)
	return s
}

func (s *Store) load(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[key]
}

func (s *Store) save(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = raw
}

func (s *Store) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return store.DecodeArray[domain.Transaction](store.KeyTransactions, s.load(store.KeyTransactions)), nil
}

func (s *Store) SaveTransactions(ctx context.Context, txs []domain.Transaction) error {
	raw, err := store.EncodeArray(txs)
	if err != nil {
		return err
	}
	s.save(store.KeyTransactions, raw)
	return nil
}

func (s *Store) LoadDealers(ctx context.Context) ([]domain.Dealer, error) {
	return store.DecodeArray[domain.Dealer](store.KeyDealers, s.load(store.KeyDealers)), nil
}

func (s *Store) SaveDealers(ctx context.Context, dealers []domain.Dealer) error {
	raw, err := store.EncodeArray(dealers)
	if err != nil {
		return err
	}
	s.save(store.KeyDealers, raw)
	return nil
}

func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	return store.DecodeArray[domain.Product](store.KeyProducts, s.load(store.KeyProducts)), nil
}

func (s *Store) SaveProducts(ctx context.Context, products []domain.Product) error {
	raw, err := store.EncodeArray(products)
	if err != nil {
		return err
	}
	s.save(store.KeyProducts, raw)
	return nil
}

func (s *Store) LoadBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	return store.DecodeArray[domain.BankAccount](store.KeyBankAccounts, s.load(store.KeyBankAccounts)), nil
}

func (s *Store) SaveBankAccounts(ctx context.Context, accounts []domain.BankAccount) error {
	raw, err := store.EncodeArray(accounts)
	if err != nil {
		return err
	}
	s.save(store.KeyBankAccounts, raw)
	return nil
}
