// Package store defines the record store contract: four collections, each
// persisted as a whole-array JSON snapshot under a string key. A save
// replaces the entire array; there is no partial write and no locking
// beyond what each backend needs for its own consistency. Loads of absent
// or unreadable snapshots yield the empty collection, never an error the
// caller has to branch on.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"dealerbook/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

// Snapshot collection keys. These match the keys the legacy browser app used
// in its local storage, so migrated data keeps its addresses.
const (
	KeyTransactions = "transactions"
	KeyDealers      = "dealers"
	KeyProducts     = "products"
	KeyBankAccounts = "bankAccounts"
)

type Snapshots interface {
	LoadTransactions(ctx context.Context) ([]domain.Transaction, error)
	SaveTransactions(ctx context.Context, txs []domain.Transaction) error
	LoadDealers(ctx context.Context) ([]domain.Dealer, error)
	SaveDealers(ctx context.Context, dealers []domain.Dealer) error
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	SaveProducts(ctx context.Context, products []domain.Product) error
	LoadBankAccounts(ctx context.Context) ([]domain.BankAccount, error)
	SaveBankAccounts(ctx context.Context, accounts []domain.BankAccount) error
}

// DecodeArray parses a snapshot payload into a typed collection. Nil, empty,
// and corrupt payloads all decode to the empty collection; corruption is
// logged since it means a snapshot was clobbered.
func DecodeArray[T any](key string, raw []byte) []T {
	if len(raw) == 0 {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("[store] WARN: snapshot %q is not a JSON array, substituting empty: %v", key, err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// EncodeArray renders a typed collection as its snapshot payload. A nil
// slice is written as the empty array, matching what loads expect.
func EncodeArray[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
