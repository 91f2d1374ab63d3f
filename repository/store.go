package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("record not found")

// Store groups the repositories so multi-write operations (checkout,
// status transition) can run against a single database transaction.
type Store interface {
	Orders() OrderRepository
	Inventory() InventoryRepository
	Carts() CartRepository
	Outbox() OutboxRepository
	Sequences() SequenceRepository

	// WithinTransaction runs fn against a Store bound to one database
	// transaction; any error rolls the whole unit of work back.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

// GormStore implements Store over a gorm connection or transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Orders() OrderRepository        { return &GormOrderRepository{db: s.db} }
func (s *GormStore) Inventory() InventoryRepository { return &GormInventoryRepository{db: s.db} }
func (s *GormStore) Carts() CartRepository          { return &GormCartRepository{db: s.db} }
func (s *GormStore) Outbox() OutboxRepository       { return &GormOutboxRepository{db: s.db} }
func (s *GormStore) Sequences() SequenceRepository  { return &GormSequenceRepository{db: s.db} }

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
