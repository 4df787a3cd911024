package repository

import (
	"context"
	"sort"
	"sync"

	"stock-monitor-bot/internal/entity"
)

// memoryPositionsRepository keeps positions in process memory. It serves
// deployments that run without a database and doubles as the test fixture
// store.
type memoryPositionsRepository struct {
	mu        sync.Mutex
	nextID    uint
	positions []entity.Position
}

// NewMemoryPositionsRepository creates an in-memory positions repository.
func NewMemoryPositionsRepository() PositionsRepository {
	return &memoryPositionsRepository{nextID: 1}
}

func (r *memoryPositionsRepository) Create(_ context.Context, position *entity.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	position.ID = r.nextID
	r.nextID++
	r.positions = append(r.positions, *position)
	return nil
}

func (r *memoryPositionsRepository) Update(_ context.Context, position *entity.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.positions {
		if r.positions[i].ID == position.ID {
			r.positions[i] = *position
			return nil
		}
	}
	return nil
}

func (r *memoryPositionsRepository) FindOpen(_ context.Context, ticker string) (*entity.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.positions {
		if r.positions[i].Ticker == ticker && r.positions[i].IsOpen() {
			position := r.positions[i]
			return &position, nil
		}
	}
	return nil, nil
}

func (r *memoryPositionsRepository) FindAllOpen(_ context.Context) ([]entity.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var open []entity.Position
	for _, p := range r.positions {
		if p.IsOpen() {
			open = append(open, p)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].EnteredAt.Before(open[j].EnteredAt) })
	return open, nil
}

func (r *memoryPositionsRepository) FindClosed(_ context.Context, limit int) ([]entity.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var closed []entity.Position
	for _, p := range r.positions {
		if !p.IsOpen() {
			closed = append(closed, p)
		}
	}
	sort.Slice(closed, func(i, j int) bool {
		ti, tj := closed[i].ExitedAt, closed[j].ExitedAt
		if ti == nil || tj == nil {
			// Unstamped rows sort last; nil-nil pairs fall back to ID so
			// the ordering stays consistent.
			if ti == nil && tj == nil {
				return closed[i].ID > closed[j].ID
			}
			return ti != nil
		}
		return ti.After(*tj)
	})
	if limit > 0 && len(closed) > limit {
		closed = closed[:limit]
	}
	return closed, nil
}
