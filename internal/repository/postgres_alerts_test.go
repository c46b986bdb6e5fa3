package repository

import (
	"context"
	"testing"

	"heartguard-alert/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgresAlertsRepo_CreateAlert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO emergency_alerts`).
		WithArgs("carol", "manual", "high", "newAlert", int64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"alert_id"}).AddRow(int64(1)))

	repo := NewPostgresAlertsRepo(db, zap.NewNop())
	id, err := repo.CreateAlert(context.Background(), "carol", domain.AlertTypeManual, domain.SeverityHigh, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertsRepo_UpdateAlertStatus_Forward(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM emergency_alerts WHERE alert_id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("newAlert"))
	mock.ExpectExec(`UPDATE emergency_alerts SET status`).
		WithArgs("dispatched", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostgresAlertsRepo(db, zap.NewNop())
	err = repo.UpdateAlertStatus(context.Background(), 1, domain.AlertStatusDispatched)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertsRepo_UpdateAlertStatus_BackwardRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM emergency_alerts WHERE alert_id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("dispatched"))
	mock.ExpectRollback()

	repo := NewPostgresAlertsRepo(db, zap.NewNop())
	err = repo.UpdateAlertStatus(context.Background(), 1, domain.AlertStatusAcknowledged)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertsRepo_UpdateAlertStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM emergency_alerts WHERE alert_id = \$1 FOR UPDATE`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	repo := NewPostgresAlertsRepo(db, zap.NewNop())
	err = repo.UpdateAlertStatus(context.Background(), 42, domain.AlertStatusResolved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertsRepo_ListPendingAlerts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"alert_id", "patient", "alert_type", "severity", "status", "triggered_at"}).
		AddRow(int64(1), "carol", "manual", "high", "newAlert", int64(1000)).
		AddRow(int64(2), "dave", "automatic", "medium", "acknowledged", int64(2000))
	mock.ExpectQuery(`SELECT .+ FROM emergency_alerts WHERE status <> \$1`).
		WithArgs("resolved").
		WillReturnRows(rows)

	repo := NewPostgresAlertsRepo(db, zap.NewNop())
	pending, err := repo.ListPendingAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, domain.Principal("carol"), pending[0].Patient)
	assert.Equal(t, domain.AlertStatusAcknowledged, pending[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
