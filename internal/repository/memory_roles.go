package repository

import (
	"context"
	"sync"

	"heartguard-alert/internal/domain"
)

// MemoryRolesRepo keeps roles in process memory when DB is disabled.
// One mutex guards both the role map and the adminExists gate, so the
// first-admin claim is a single serialized check (no read-then-write race).
type MemoryRolesRepo struct {
	mu          sync.RWMutex
	roles       map[domain.Principal]domain.Role
	adminExists bool
}

func NewMemoryRolesRepo() *MemoryRolesRepo {
	return &MemoryRolesRepo{
		roles: map[domain.Principal]domain.Role{},
	}
}

var _ RolesRepository = (*MemoryRolesRepo)(nil)

func (r *MemoryRolesRepo) GetRole(_ context.Context, p domain.Principal) (domain.Role, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[p]
	return role, ok, nil
}

func (r *MemoryRolesRepo) AdminExists(_ context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.adminExists, nil
}

func (r *MemoryRolesRepo) ClaimFirstAdmin(_ context.Context, p domain.Principal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adminExists {
		return false, nil
	}
	r.roles[p] = domain.RoleAdmin
	r.adminExists = true
	return true, nil
}

func (r *MemoryRolesRepo) SetRole(_ context.Context, p domain.Principal, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roles[p] = role
	if role == domain.RoleAdmin {
		r.adminExists = true
	}
	return nil
}
