package services

import (
	"context"
	"fmt"
	"time"

	"checkout-service/repository"

	"github.com/google/uuid"
)

// OrderNumberGenerator produces human-readable, per-dispensary-daily
// sequential order numbers of the form ORD-YYYYMMDD-0001.
type OrderNumberGenerator struct {
	now func() time.Time
}

// NewOrderNumberGenerator creates a generator using the wall clock.
func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{now: time.Now}
}

// Generate assigns the next number for the dispensary's current UTC
// day. The sequence repository increments atomically, so two
// simultaneous checkouts never compute the same number from a stale
// count.
func (g *OrderNumberGenerator) Generate(ctx context.Context, seqs repository.SequenceRepository, dispensaryID uuid.UUID) (string, error) {
	date := g.now().UTC().Format("20060102")
	seq, err := seqs.Next(ctx, dispensaryID, date)
	if err != nil {
		return "", fmt.Errorf("order sequence: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%04d", date, seq), nil
}
