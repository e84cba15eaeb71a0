// Package redis persists collection snapshots as JSON strings in Redis,
// one key per collection. This mirrors the key-per-collection layout the
// legacy app used in browser storage, so a dump of that storage can be
// loaded straight into Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"dealerbook/backend/internal/domain"
	"dealerbook/backend/internal/store"
)

type Store struct {
	client *redis.Client
	prefix string
}

func New(addr, password string, db int, prefix string) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(collection string) string {
	if s.prefix == "" {
		return collection
	}
	return fmt.Sprintf("%s:%s", s.prefix, collection)
}

func (s *Store) load(ctx context.Context, collection string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) save(ctx context.Context, collection string, raw []byte) error {
	return s.client.Set(ctx, s.key(collection), raw, 0).Err()
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
