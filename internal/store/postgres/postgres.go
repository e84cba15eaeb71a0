// Package postgres keeps collection snapshots in a single table with one
// JSONB row per collection. Saves upsert the whole array, which keeps the
// store semantics identical across backends: last write wins, per
// collection.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dealerbook/backend/internal/domain"
	"dealerbook/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			collection TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) load(ctx context.Context, collection string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT doc FROM snapshots WHERE collection = $1
	`, collection).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Store) save(ctx context.Context, collection string, raw []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (collection, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (collection)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, collection, raw)
	return err
}

func (s *Store) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	raw, err := s.load(ctx, store.KeyTransactions)
	if err != nil {
		return nil, err
	}
	return store.DecodeArray[domain.Transaction](store.KeyTransactions, raw), nil
}

func (s *Store) SaveTransactions(ctx context.Context, txs []domain.Transaction) error {
	raw, err := store.EncodeArray(txs)
	if err != nil {
		return err
	}
	return s.save(ctx, store.KeyTransactions, raw)
}

func (s *Store) LoadDealers(ctx context.Context) ([]domain.Dealer, error) {
	raw, err := s.load(ctx, store.KeyDealers)
	if err != nil {
		return nil, err
	}
	return store.DecodeArray[domain.Dealer](store.KeyDealers, raw), nil
}

func (s *Store) SaveDealers(ctx context.Context, dealers []domain.Dealer) error {
	raw, err := store.EncodeArray(dealers)
	if err != nil {
		return err
	}
	return s.save(ctx, store.KeyDealers, raw)
}

func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	raw, err := s.load(ctx, store.KeyProducts)
	if err != nil {
		return nil, err
	}
	return store.DecodeArray[domain.Product](store.KeyProducts, raw), nil
}

func (s *Store) SaveProducts(ctx context.Context, products []domain.Product) error {
	raw, err := store.EncodeArray(products)
	if err != nil {
		return err
	}
	return s.save(ctx, store.KeyProducts, raw)
}

func (s *Store) LoadBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	raw, err := s.load(ctx, store.KeyBankAccounts)
	if err != nil {
		return nil, err
	}
	return store.DecodeArray[domain.BankAccount](store.KeyBankAccounts, raw), nil
}

func (s *Store) SaveBankAccounts(ctx context.Context, accounts []domain.BankAccount) error {
	raw, err := store.EncodeArray(accounts)
	if err != nil {
		return err
	}
	return s.save(ctx, store.KeyBankAccounts, raw)
}
