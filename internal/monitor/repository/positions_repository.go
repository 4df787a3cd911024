package repository

import (
	"context"
	"errors"

	"stock-monitor-bot/internal/entity"

	"gorm.io/gorm"
)

// PositionsRepository stores open and closed positions. The open/closed
// distinction rides on the status column; closed rows form the trade
// history. Uniqueness of the open position per ticker is enforced by the
// position service (and a partial unique index in the schema).
type PositionsRepository interface {
	Create(ctx context.Context, position *entity.Position) error
	Update(ctx context.Context, position *entity.Position) error
	FindOpen(ctx context.Context, ticker string) (*entity.Position, error)
	FindAllOpen(ctx context.Context) ([]entity.Position, error)
	FindClosed(ctx context.Context, limit int) ([]entity.Position, error)
}

type positionsRepository struct {
	db *gorm.DB
}

// NewPositionsRepository creates a PostgreSQL-backed positions repository.
func NewPositionsRepository(db *gorm.DB) PositionsRepository {
	return &positionsRepository{db: db}
}

func (r *positionsRepository) Create(ctx context.Context, position *entity.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *positionsRepository) Update(ctx context.Context, position *entity.Position) error {
	return r.db.WithContext(ctx).Save(position).Error
}

// FindOpen returns the open position for a ticker, or nil when there is
// none.
func (r *positionsRepository) FindOpen(ctx context.Context, ticker string) (*entity.Position, error) {
	var position entity.Position
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND status = ?", ticker, entity.PositionStatusOpen).
		First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *positionsRepository) FindAllOpen(ctx context.Context) ([]entity.Position, error) {
	var positions []entity.Position
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.PositionStatusOpen).
		Order("entered_at ASC").
		Find(&positions).Error
	return positions, err
}

func (r *positionsRepository) FindClosed(ctx context.Context, limit int) ([]entity.Position, error) {
	var positions []entity.Position
	q := r.db.WithContext(ctx).
		Where("status <> ?", entity.PositionStatusOpen).
		Order("exited_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&positions).Error
	return positions, err
}
