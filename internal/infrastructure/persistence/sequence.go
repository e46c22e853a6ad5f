package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/shared"
)

// PostgresSequenceAllocator allocates document number counters from native
// PostgreSQL sequences. nextval is atomic and never hands out the same value
// twice, even to concurrent callers, and the counter survives rollbacks so
// numbers are unique but may have gaps.
type PostgresSequenceAllocator struct {
	db *gorm.DB
}

// NewPostgresSequenceAllocator creates a sequence allocator
func NewPostgresSequenceAllocator(db *gorm.DB) *PostgresSequenceAllocator {
	return &PostgresSequenceAllocator{db: db}
}

// Next returns the next counter value for the given sequence kind
func (a *PostgresSequenceAllocator) Next(ctx context.Context, kind shared.SequenceKind) (int64, error) {
	var next int64
	if err := a.db.WithContext(ctx).
		Raw("SELECT nextval(?)", string(kind)).
		Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("failed to allocate %s: %w", kind, err)
	}
	return next, nil
}

var _ shared.SequenceAllocator = (*PostgresSequenceAllocator)(nil)
