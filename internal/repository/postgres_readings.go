package repository

import (
	"context"
	"database/sql"
	"fmt"

	"heartguard-alert/internal/domain"
)

// PostgresReadingsRepo 心率读数的 PostgreSQL 实现（append-only）
type PostgresReadingsRepo struct {
	db *sql.DB
}

// NewPostgresReadingsRepo 创建读数存储
func NewPostgresReadingsRepo(db *sql.DB) *PostgresReadingsRepo {
	return &PostgresReadingsRepo{db: db}
}

var _ ReadingsRepository = (*PostgresReadingsRepo)(nil)

// AppendReading 追加一条读数（status 已在写入前由评估器确定，之后不再重算）
func (r *PostgresReadingsRepo) AppendReading(ctx context.Context, patient domain.Principal, reading domain.HeartRateReading) error {
	if patient == "" {
		return fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO heart_rate_readings (patient, value, status, recorded_at)
		 VALUES ($1, $2, $3, $4)`,
		string(patient), reading.Value, string(reading.Status), int64(reading.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("%w: append reading: %v", domain.ErrStorageFault, err)
	}
	return nil
}

// ListReadings 某患者的全部读数（插入顺序）
func (r *PostgresReadingsRepo) ListReadings(ctx context.Context, patient domain.Principal) ([]domain.HeartRateReading, error) {
	if patient == "" {
		return nil, fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT value, status, recorded_at FROM heart_rate_readings
		 WHERE patient = $1 ORDER BY reading_id`,
		string(patient),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query readings: %v", domain.ErrStorageFault, err)
	}
	defer rows.Close()

	readings := []domain.HeartRateReading{}
	for rows.Next() {
		var reading domain.HeartRateReading
		var status string
		var recordedAt int64
		if err := rows.Scan(&reading.Value, &status, &recordedAt); err != nil {
			return nil, fmt.Errorf("%w: scan reading: %v", domain.ErrStorageFault, err)
		}
		reading.Status = domain.ReadingStatus(status)
		reading.Timestamp = uint64(recordedAt)
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate readings: %v", domain.ErrStorageFault, err)
	}
	return readings, nil
}
