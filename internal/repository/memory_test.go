package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"heartguard-alert/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRolesRepo_ClaimFirstAdminRace(t *testing.T) {
	repo := NewMemoryRolesRepo()
	ctx := context.Background()

	const racers = 32
	var wg sync.WaitGroup
	wins := make(chan domain.Principal, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := domain.Principal(fmt.Sprintf("racer-%d", i))
			claimed, err := repo.ClaimFirstAdmin(ctx, p)
			require.NoError(t, err)
			if claimed {
				wins <- p
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []domain.Principal
	for p := range wins {
		winners = append(winners, p)
	}
	require.Len(t, winners, 1, "exactly one claim must succeed")

	role, ok, err := repo.GetRole(ctx, winners[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)

	exists, err := repo.AdminExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryRolesRepo_SetRoleRaisesAdminGate(t *testing.T) {
	repo := NewMemoryRolesRepo()
	ctx := context.Background()

	require.NoError(t, repo.SetRole(ctx, "alice", domain.RoleAdmin))

	exists, err := repo.AdminExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	claimed, err := repo.ClaimFirstAdmin(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestMemoryAlertsRepo_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	repo := NewMemoryAlertsRepo()
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	ids := make(chan uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.CreateAlert(ctx, "carol", domain.AlertTypeAutomatic, domain.SeverityHigh, 1)
			require.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestMemoryAlertsRepo_ConcurrentTransitionsSerialize(t *testing.T) {
	repo := NewMemoryAlertsRepo()
	ctx := context.Background()

	id, err := repo.CreateAlert(ctx, "carol", domain.AlertTypeManual, domain.SeverityHigh, 1)
	require.NoError(t, err)

	// 两个并发的同目标转移：恰好一个成功，另一个撞上等状态拒绝
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.UpdateAlertStatus(ctx, id, domain.AlertStatusAcknowledged)
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, rejected int
	for err := range errs {
		if err == nil {
			okCount++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			rejected++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, rejected)

	a, err := repo.GetAlert(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusAcknowledged, a.Status)
}

func TestMemoryAlertsRepo_ListFilters(t *testing.T) {
	repo := NewMemoryAlertsRepo()
	ctx := context.Background()

	id1, _ := repo.CreateAlert(ctx, "carol", domain.AlertTypeManual, domain.SeverityHigh, 1)
	id2, _ := repo.CreateAlert(ctx, "dave", domain.AlertTypeAutomatic, domain.SeverityMedium, 2)
	id3, _ := repo.CreateAlert(ctx, "carol", domain.AlertTypeAutomatic, domain.SeverityLow, 3)

	require.NoError(t, repo.UpdateAlertStatus(ctx, id1, domain.AlertStatusResolved))

	pending, err := repo.ListPendingAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, id2, pending[0].ID)
	assert.Equal(t, id3, pending[1].ID)

	byPatient, err := repo.ListAlertsByPatient(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, byPatient, 2)
	assert.Equal(t, id1, byPatient[0].ID)

	all, err := repo.ListAllAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryProfilesRepo_SnapshotIsStable(t *testing.T) {
	repo := NewMemoryProfilesRepo()
	ctx := context.Background()

	profile := domain.UserProfile{Principal: "carol", Name: "Carol", Age: 67}
	contacts := []domain.EmergencyContact{{Name: "Ann", Phone: "555-0101"}}
	require.NoError(t, repo.SaveFullProfile(ctx, profile, contacts, nil))

	full, err := repo.GetFullProfile(ctx, "carol")
	require.NoError(t, err)

	// 返回的快照与后续写入解耦
	require.NoError(t, repo.SaveFullProfile(ctx, profile,
		[]domain.EmergencyContact{{Name: "Ben"}}, nil))
	require.Len(t, full.Contacts, 1)
	assert.Equal(t, "Ann", full.Contacts[0].Name)
}

func TestMemoryReadingsRepo_AppendOrder(t *testing.T) {
	repo := NewMemoryReadingsRepo()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, repo.AppendReading(ctx, "carol", domain.HeartRateReading{
			Value: 70 + i, Timestamp: uint64(i), Status: domain.ReadingNormal,
		}))
	}

	readings, err := repo.ListReadings(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, int64(71), readings[0].Value)
	assert.Equal(t, int64(73), readings[2].Value)

	other, err := repo.ListReadings(ctx, "dave")
	require.NoError(t, err)
	assert.Empty(t, other)
}
