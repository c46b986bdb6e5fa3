package service

import (
	"context"
	"encoding/json"
	"testing"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/repository"
	"heartguard-alert/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type readingFixture struct {
	readings ReadingService
	alerts   AlertService
}

func newReadingFixture(t *testing.T, cache store.KV) readingFixture {
	t.Helper()
	ctx := context.Background()

	access := NewAccessService(repository.NewMemoryRolesRepo(), zap.NewNop())
	require.NoError(t, access.AssignUserRole(ctx, "alice", "alice", domain.RoleAdmin))
	require.NoError(t, access.AddControlRoomUser(ctx, "alice", "bob"))

	alerts := NewAlertService(repository.NewMemoryAlertsRepo(), access, cache, zap.NewNop())
	readings := NewReadingService(repository.NewMemoryReadingsRepo(), alerts, access, cache, zap.NewNop())
	return readingFixture{readings: readings, alerts: alerts}
}

var defaultThresholds = domain.Thresholds{Low: 50, High: 120}

func TestAddHeartRateReading_NormalDoesNotAlert(t *testing.T) {
	f := newReadingFixture(t, nil)
	ctx := context.Background()

	reading, err := f.readings.AddHeartRateReading(ctx, "carol", 72, 0, defaultThresholds)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadingNormal, reading.Status)
	assert.NotZero(t, reading.Timestamp)

	pending, err := f.alerts.GetPendingAlerts(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAddHeartRateReading_CriticalMintsAutomaticAlert(t *testing.T) {
	f := newReadingFixture(t, nil)
	ctx := context.Background()

	// 35 bpm 在 low=50 之下且低于临界下界 → critical
	reading, err := f.readings.AddHeartRateReading(ctx, "carol", 35, 0, defaultThresholds)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadingCritical, reading.Status)

	pending, err := f.alerts.GetPendingAlerts(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.AlertTypeAutomatic, pending[0].Type)
	assert.Equal(t, domain.SeverityHigh, pending[0].Severity)
	assert.Equal(t, domain.Principal("carol"), pending[0].Patient)
	assert.Equal(t, domain.AlertStatusNew, pending[0].Status)
}

func TestAddHeartRateReading_HighCriticalMintsHighAlert(t *testing.T) {
	f := newReadingFixture(t, nil)
	ctx := context.Background()

	// 150 bpm 超过临界上界 140 → critical/high，不是 warning/medium
	reading, err := f.readings.AddHeartRateReading(ctx, "carol", 150, 0, defaultThresholds)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadingCritical, reading.Status)

	pending, err := f.alerts.GetPendingAlerts(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.SeverityHigh, pending[0].Severity)
}

func TestAddHeartRateReading_WarningMintsMediumAlert(t *testing.T) {
	f := newReadingFixture(t, nil)
	ctx := context.Background()

	reading, err := f.readings.AddHeartRateReading(ctx, "carol", 45, 0, defaultThresholds)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadingWarning, reading.Status)

	pending, err := f.alerts.GetPendingAlerts(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.SeverityMedium, pending[0].Severity)
}

func TestAddHeartRateReading_Validation(t *testing.T) {
	f := newReadingFixture(t, nil)
	ctx := context.Background()

	_, err := f.readings.AddHeartRateReading(ctx, "carol", 0, 0, defaultThresholds)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.readings.AddHeartRateReading(ctx, "carol", 72, 0, domain.Thresholds{Low: 0, High: 120})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// 区间倒置
	_, err = f.readings.AddHeartRateReading(ctx, "carol", 72, 0, domain.Thresholds{Low: 120, High: 50})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetHeartRateReadings_OwnershipOrControlRoom(t *testing.T) {
	f := newReadingFixture(t, nil)
	ctx := context.Background()

	_, err := f.readings.AddHeartRateReading(ctx, "carol", 72, 0, defaultThresholds)
	require.NoError(t, err)
	_, err = f.readings.AddHeartRateReading(ctx, "carol", 80, 0, defaultThresholds)
	require.NoError(t, err)

	own, err := f.readings.GetHeartRateReadings(ctx, "carol", "carol")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	cross, err := f.readings.GetHeartRateReadings(ctx, "bob", "carol")
	require.NoError(t, err)
	assert.Len(t, cross, 2)

	_, err = f.readings.GetHeartRateReadings(ctx, "dave", "carol")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAddHeartRateReading_CachesLatest(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	f := newReadingFixture(t, kv)
	ctx := context.Background()

	_, err := f.readings.AddHeartRateReading(ctx, "carol", 72, 1000, defaultThresholds)
	require.NoError(t, err)

	raw, err := mr.Get(store.RealtimeKey("carol"))
	require.NoError(t, err)

	var cached domain.HeartRateReading
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, int64(72), cached.Value)
	assert.Equal(t, uint64(1000), cached.Timestamp)
	assert.Equal(t, domain.ReadingNormal, cached.Status)
}
