package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema 创建服务所需的表（幂等）
// admin_gate 是"首个 admin"认领的 CAS 锚点：单行表 + 主键约束，
// 并发 INSERT 时数据库保证最多一行成功
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_roles (
			principal  VARCHAR(128) PRIMARY KEY,
			role       VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS admin_gate (
			gate_id   BOOLEAN PRIMARY KEY DEFAULT TRUE,
			principal VARCHAR(128) NOT NULL,
			CONSTRAINT admin_gate_single_row CHECK (gate_id)
		)`,
		`CREATE TABLE IF NOT EXISTS emergency_alerts (
			alert_id     BIGSERIAL PRIMARY KEY,
			patient      VARCHAR(128) NOT NULL,
			alert_type   VARCHAR(16) NOT NULL,
			severity     VARCHAR(16) NOT NULL,
			status       VARCHAR(16) NOT NULL,
			triggered_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_emergency_alerts_patient ON emergency_alerts (patient)`,
		`CREATE INDEX IF NOT EXISTS idx_emergency_alerts_status ON emergency_alerts (status)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			principal VARCHAR(128) PRIMARY KEY,
			name      VARCHAR(200) NOT NULL,
			age       INTEGER NOT NULL CHECK (age >= 0),
			address   TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS emergency_contacts (
			principal    VARCHAR(128) NOT NULL,
			seq          INTEGER NOT NULL,
			name         VARCHAR(200) NOT NULL,
			phone        VARCHAR(32) NOT NULL,
			relationship VARCHAR(64) NOT NULL,
			PRIMARY KEY (principal, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS condition_notes (
			principal   VARCHAR(128) NOT NULL,
			seq         INTEGER NOT NULL,
			name        VARCHAR(200) NOT NULL,
			note_type   VARCHAR(64) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (principal, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS heart_rate_readings (
			reading_id  BIGSERIAL PRIMARY KEY,
			patient     VARCHAR(128) NOT NULL,
			value       BIGINT NOT NULL,
			status      VARCHAR(16) NOT NULL,
			recorded_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_heart_rate_readings_patient ON heart_rate_readings (patient)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
