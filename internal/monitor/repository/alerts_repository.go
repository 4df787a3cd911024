package repository

import (
	"context"
	"sync"

	"stock-monitor-bot/internal/entity"

	"gorm.io/gorm"
)

// AlertsRepository is the append-only alert history log.
type AlertsRepository interface {
	Append(ctx context.Context, record *entity.AlertRecord) error
	FindRecent(ctx context.Context, limit int) ([]entity.AlertRecord, error)
}

type alertsRepository struct {
	db *gorm.DB
}

// NewAlertsRepository creates a PostgreSQL-backed alert log.
func NewAlertsRepository(db *gorm.DB) AlertsRepository {
	return &alertsRepository{db: db}
}

func (r *alertsRepository) Append(ctx context.Context, record *entity.AlertRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *alertsRepository) FindRecent(ctx context.Context, limit int) ([]entity.AlertRecord, error) {
	var records []entity.AlertRecord
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

// memoryAlertsRepository is the in-process fallback used when the database
// is disabled, and the fixture store for tests. Only the most recent
// records are retained.
type memoryAlertsRepository struct {
	mu      sync.Mutex
	nextID  uint
	maxSize int
	records []entity.AlertRecord
}

// NewMemoryAlertsRepository creates an in-memory alert log capped at
// maxSize records (0 means unbounded).
func NewMemoryAlertsRepository(maxSize int) AlertsRepository {
	return &memoryAlertsRepository{nextID: 1, maxSize: maxSize}
}

func (r *memoryAlertsRepository) Append(_ context.Context, record *entity.AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = r.nextID
	r.nextID++
	r.records = append(r.records, *record)
	if r.maxSize > 0 && len(r.records) > r.maxSize {
		r.records = r.records[len(r.records)-r.maxSize:]
	}
	return nil
}

func (r *memoryAlertsRepository) FindRecent(_ context.Context, limit int) ([]entity.AlertRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.AlertRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		out = append(out, r.records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
