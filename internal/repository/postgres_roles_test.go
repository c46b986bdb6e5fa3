package repository

import (
	"context"
	"testing"

	"heartguard-alert/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRolesRepo_GetRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT role FROM user_roles WHERE principal = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	repo := NewPostgresRolesRepo(db)
	role, ok, err := repo.GetRole(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRolesRepo_GetRole_MissingIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	repo := NewPostgresRolesRepo(db)
	_, ok, err := repo.GetRole(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRolesRepo_ClaimFirstAdmin_Wins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO admin_gate`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("alice", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostgresRolesRepo(db)
	claimed, err := repo.ClaimFirstAdmin(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRolesRepo_ClaimFirstAdmin_Loses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 冲突时 ON CONFLICT DO NOTHING → RowsAffected=0，角色表不动
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO admin_gate`).
		WithArgs("bob").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewPostgresRolesRepo(db)
	claimed, err := repo.ClaimFirstAdmin(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRolesRepo_SetRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("bob", "controlRoomUser").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRolesRepo(db)
	require.NoError(t, repo.SetRole(context.Background(), "bob", domain.RoleControlRoom))
	assert.NoError(t, mock.ExpectationsWereMet())
}
