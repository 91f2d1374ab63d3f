package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SequenceRepository hands out per-dispensary-per-day order sequence
// numbers.
type SequenceRepository interface {
	// Next atomically increments and returns the sequence for the
	// dispensary and YYYYMMDD date.
	Next(ctx context.Context, dispensaryID uuid.UUID, seqDate string) (int, error)
}

// GormSequenceRepository implements SequenceRepository using GORM.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new instance of GormSequenceRepository.
func NewGormSequenceRepository(db *gorm.DB) SequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next uses an upsert so concurrent checkouts for the same dispensary
// and day serialize on the sequence row instead of racing a count.
func (r *GormSequenceRepository) Next(ctx context.Context, dispensaryID uuid.UUID, seqDate string) (int, error) {
	var result struct {
		Seq int
	}
	res := r.db.WithContext(ctx).Raw(
		`INSERT INTO order_sequences (dispensary_id, seq_date, seq)
		 VALUES (?, ?, 1)
		 ON CONFLICT (dispensary_id, seq_date)
		 DO UPDATE SET seq = order_sequences.seq + 1
		 RETURNING seq`,
		dispensaryID, seqDate,
	).Scan(&result)
	if res.Error != nil {
		return 0, res.Error
	}
	return result.Seq, nil
}
