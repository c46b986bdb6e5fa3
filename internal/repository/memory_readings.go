package repository

import (
	"context"
	"sync"

	"heartguard-alert/internal/domain"
)

// MemoryReadingsRepo keeps per-patient readings in process memory when DB is
// disabled. Append-only; insertion order preserved.
type MemoryReadingsRepo struct {
	mu       sync.RWMutex
	readings map[domain.Principal][]domain.HeartRateReading
}

func NewMemoryReadingsRepo() *MemoryReadingsRepo {
	return &MemoryReadingsRepo{
		readings: map[domain.Principal][]domain.HeartRateReading{},
	}
}

var _ ReadingsRepository = (*MemoryReadingsRepo)(nil)

func (r *MemoryReadingsRepo) AppendReading(_ context.Context, patient domain.Principal, reading domain.HeartRateReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readings[patient] = append(r.readings[patient], reading)
	return nil
}

func (r *MemoryReadingsRepo) ListReadings(_ context.Context, patient domain.Principal) ([]domain.HeartRateReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.HeartRateReading{}, r.readings[patient]...), nil
}
