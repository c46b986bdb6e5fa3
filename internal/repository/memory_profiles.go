package repository

import (
	"context"
	"fmt"
	"sync"

	"heartguard-alert/internal/domain"
)

// memoryProfileEntry holds the (profile, contacts, notes) triple as one unit,
// so snapshots never mix fields from two different saves.
type memoryProfileEntry struct {
	profile  domain.UserProfile
	contacts []domain.EmergencyContact
	notes    []domain.ConditionNote
}

// MemoryProfilesRepo keeps patient profiles in process memory when DB is disabled.
type MemoryProfilesRepo struct {
	mu       sync.RWMutex
	profiles map[domain.Principal]memoryProfileEntry
}

func NewMemoryProfilesRepo() *MemoryProfilesRepo {
	return &MemoryProfilesRepo{
		profiles: map[domain.Principal]memoryProfileEntry{},
	}
}

var _ ProfilesRepository = (*MemoryProfilesRepo)(nil)

func (r *MemoryProfilesRepo) GetProfile(_ context.Context, p domain.Principal) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.profiles[p]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", p, domain.ErrNotFound)
	}
	profile := entry.profile
	return &profile, nil
}

func (r *MemoryProfilesRepo) GetFullProfile(_ context.Context, p domain.Principal) (*domain.FullProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.profiles[p]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", p, domain.ErrNotFound)
	}
	full := domain.FullProfile{
		Profile:  entry.profile,
		Contacts: append([]domain.EmergencyContact{}, entry.contacts...),
		Notes:    append([]domain.ConditionNote{}, entry.notes...),
	}
	return &full, nil
}

func (r *MemoryProfilesRepo) SaveProfile(_ context.Context, profile domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.profiles[profile.Principal]
	entry.profile = profile
	r.profiles[profile.Principal] = entry
	return nil
}

func (r *MemoryProfilesRepo) SaveFullProfile(_ context.Context, profile domain.UserProfile, contacts []domain.EmergencyContact, notes []domain.ConditionNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[profile.Principal] = memoryProfileEntry{
		profile:  profile,
		contacts: append([]domain.EmergencyContact{}, contacts...),
		notes:    append([]domain.ConditionNote{}, notes...),
	}
	return nil
}
