package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"heartguard-alert/internal/domain"
)

// MemoryAlertsRepo keeps the alert ledger in process memory when DB is disabled.
// ID assignment and status transitions share one mutex, so creates are
// collision-free and two concurrent updates on the same alert apply as a
// sequential pair.
type MemoryAlertsRepo struct {
	mu     sync.RWMutex
	nextID uint64
	alerts map[uint64]domain.EmergencyAlert
}

func NewMemoryAlertsRepo() *MemoryAlertsRepo {
	return &MemoryAlertsRepo{
		nextID: 1,
		alerts: map[uint64]domain.EmergencyAlert{},
	}
}

var _ AlertsRepository = (*MemoryAlertsRepo)(nil)

func (r *MemoryAlertsRepo) CreateAlert(_ context.Context, patient domain.Principal, typ domain.AlertType, severity domain.AlertSeverity, timestamp uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.alerts[id] = domain.EmergencyAlert{
		ID:        id,
		Patient:   patient,
		Type:      typ,
		Severity:  severity,
		Status:    domain.AlertStatusNew,
		Timestamp: timestamp,
	}
	return id, nil
}

func (r *MemoryAlertsRepo) GetAlert(_ context.Context, id uint64) (*domain.EmergencyAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert %d: %w", id, domain.ErrNotFound)
	}
	return &a, nil
}

func (r *MemoryAlertsRepo) UpdateAlertStatus(_ context.Context, id uint64, status domain.AlertStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return fmt.Errorf("alert %d: %w", id, domain.ErrNotFound)
	}
	if !domain.CanTransition(a.Status, status) {
		return fmt.Errorf("alert %d: %s -> %s: %w", id, a.Status, status, domain.ErrInvalidTransition)
	}
	a.Status = status
	r.alerts[id] = a
	return nil
}

func (r *MemoryAlertsRepo) ListPendingAlerts(_ context.Context) ([]domain.EmergencyAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := []domain.EmergencyAlert{}
	for _, a := range r.alerts {
		if a.Status != domain.AlertStatusResolved {
			pending = append(pending, a)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

func (r *MemoryAlertsRepo) ListAlertsByPatient(_ context.Context, patient domain.Principal) ([]domain.EmergencyAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.EmergencyAlert{}
	for _, a := range r.alerts {
		if a.Patient == patient {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryAlertsRepo) ListAllAlerts(_ context.Context) ([]domain.EmergencyAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.EmergencyAlert, 0, len(r.alerts))
	for _, a := range r.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
