package repository

import (
	"context"
	"database/sql"
	"fmt"

	"heartguard-alert/internal/domain"

	"go.uber.org/zap"
)

// PostgresAlertsRepo 报警台账的 PostgreSQL 实现
// alert_id 用 BIGSERIAL 分配（线性一致、并发下不冲突、永不复用）；
// 状态转移在 SELECT ... FOR UPDATE 的行锁内检查，两个并发更新串行应用
type PostgresAlertsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresAlertsRepo 创建报警台账
func NewPostgresAlertsRepo(db *sql.DB, logger *zap.Logger) *PostgresAlertsRepo {
	return &PostgresAlertsRepo{db: db, logger: logger}
}

var _ AlertsRepository = (*PostgresAlertsRepo)(nil)

const alertColumns = `alert_id, patient, alert_type, severity, status, triggered_at`

// CreateAlert 铸造新报警（status=newAlert），返回分配的 ID
func (r *PostgresAlertsRepo) CreateAlert(ctx context.Context, patient domain.Principal, typ domain.AlertType, severity domain.AlertSeverity, timestamp uint64) (uint64, error) {
	if patient == "" {
		return 0, fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}

	var id uint64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO emergency_alerts (patient, alert_type, severity, status, triggered_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING alert_id`,
		string(patient), string(typ), string(severity), string(domain.AlertStatusNew), int64(timestamp),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: create alert: %v", domain.ErrStorageFault, err)
	}

	r.logger.Info("Emergency alert created",
		zap.Uint64("alert_id", id),
		zap.String("patient", string(patient)),
		zap.String("type", string(typ)),
		zap.String("severity", string(severity)),
	)
	return id, nil
}

// GetAlert 按 ID 查询
func (r *PostgresAlertsRepo) GetAlert(ctx context.Context, id uint64) (*domain.EmergencyAlert, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM emergency_alerts WHERE alert_id = $1`, int64(id),
	)
	alert, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: query alert: %v", domain.ErrStorageFault, err)
	}
	return alert, nil
}

// UpdateAlertStatus 状态转移（行锁内检查前进性）
func (r *PostgresAlertsRepo) UpdateAlertStatus(ctx context.Context, id uint64, status domain.AlertStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin status tx: %v", domain.ErrStorageFault, err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM emergency_alerts WHERE alert_id = $1 FOR UPDATE`, int64(id),
	).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("alert %d: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("%w: lock alert: %v", domain.ErrStorageFault, err)
	}

	if !domain.CanTransition(domain.AlertStatus(current), status) {
		return fmt.Errorf("alert %d: %s -> %s: %w", id, current, status, domain.ErrInvalidTransition)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE emergency_alerts SET status = $1 WHERE alert_id = $2`,
		string(status), int64(id),
	); err != nil {
		return fmt.Errorf("%w: update alert status: %v", domain.ErrStorageFault, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit status tx: %v", domain.ErrStorageFault, err)
	}

	r.logger.Info("Alert status updated",
		zap.Uint64("alert_id", id),
		zap.String("from", current),
		zap.String("to", string(status)),
	)
	return nil
}

// ListPendingAlerts 未 resolved 的报警（存储顺序）
func (r *PostgresAlertsRepo) ListPendingAlerts(ctx context.Context) ([]domain.EmergencyAlert, error) {
	return r.listAlerts(ctx,
		`SELECT `+alertColumns+` FROM emergency_alerts WHERE status <> $1`,
		string(domain.AlertStatusResolved),
	)
}

// ListAlertsByPatient 某患者的全部报警
func (r *PostgresAlertsRepo) ListAlertsByPatient(ctx context.Context, patient domain.Principal) ([]domain.EmergencyAlert, error) {
	if patient == "" {
		return nil, fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}
	return r.listAlerts(ctx,
		`SELECT `+alertColumns+` FROM emergency_alerts WHERE patient = $1 ORDER BY alert_id`,
		string(patient),
	)
}

// ListAllAlerts 全部报警（历史导出用）
func (r *PostgresAlertsRepo) ListAllAlerts(ctx context.Context) ([]domain.EmergencyAlert, error) {
	return r.listAlerts(ctx, `SELECT `+alertColumns+` FROM emergency_alerts ORDER BY alert_id`)
}

func (r *PostgresAlertsRepo) listAlerts(ctx context.Context, query string, args ...any) ([]domain.EmergencyAlert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query alerts: %v", domain.ErrStorageFault, err)
	}
	defer rows.Close()

	alerts := []domain.EmergencyAlert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan alert: %v", domain.ErrStorageFault, err)
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate alerts: %v", domain.ErrStorageFault, err)
	}
	return alerts, nil
}

// scanAlert 从单行扫描报警记录
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*domain.EmergencyAlert, error) {
	var (
		id          int64
		patient     string
		typ         string
		severity    string
		status      string
		triggeredAt int64
	)
	if err := row.Scan(&id, &patient, &typ, &severity, &status, &triggeredAt); err != nil {
		return nil, err
	}
	return &domain.EmergencyAlert{
		ID:        uint64(id),
		Patient:   domain.Principal(patient),
		Type:      domain.AlertType(typ),
		Severity:  domain.AlertSeverity(severity),
		Status:    domain.AlertStatus(status),
		Timestamp: uint64(triggeredAt),
	}, nil
}
