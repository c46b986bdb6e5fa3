package repository

import (
	"context"
	"database/sql"
	"fmt"

	"heartguard-alert/internal/domain"
)

// PostgresProfilesRepo 患者档案的 PostgreSQL 实现
// (profile, contacts, notes) 三元组在一个事务内整体替换；
// 快照读也在一个事务内完成（不允许撕裂）
type PostgresProfilesRepo struct {
	db *sql.DB
}

// NewPostgresProfilesRepo 创建档案存储
func NewPostgresProfilesRepo(db *sql.DB) *PostgresProfilesRepo {
	return &PostgresProfilesRepo{db: db}
}

var _ ProfilesRepository = (*PostgresProfilesRepo)(nil)

// GetProfile 查询档案本体
func (r *PostgresProfilesRepo) GetProfile(ctx context.Context, p domain.Principal) (*domain.UserProfile, error) {
	if p == "" {
		return nil, fmt.Errorf("principal is required: %w", domain.ErrInvalidInput)
	}

	var profile domain.UserProfile
	var principal string
	err := r.db.QueryRowContext(ctx,
		`SELECT principal, name, age, address FROM user_profiles WHERE principal = $1`,
		string(p),
	).Scan(&principal, &profile.Name, &profile.Age, &profile.Address)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile %s: %w", p, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: query profile: %v", domain.ErrStorageFault, err)
	}
	profile.Principal = domain.Principal(principal)
	return &profile, nil
}

// GetFullProfile 档案 + 联系人 + 备注的原子快照（REPEATABLE READ 事务）
func (r *PostgresProfilesRepo) GetFullProfile(ctx context.Context, p domain.Principal) (*domain.FullProfile, error) {
	if p == "" {
		return nil, fmt.Errorf("principal is required: %w", domain.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: begin snapshot tx: %v", domain.ErrStorageFault, err)
	}
	defer tx.Rollback()

	var full domain.FullProfile
	var principal string
	err = tx.QueryRowContext(ctx,
		`SELECT principal, name, age, address FROM user_profiles WHERE principal = $1`,
		string(p),
	).Scan(&principal, &full.Profile.Name, &full.Profile.Age, &full.Profile.Address)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile %s: %w", p, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: query profile: %v", domain.ErrStorageFault, err)
	}
	full.Profile.Principal = domain.Principal(principal)

	full.Contacts = []domain.EmergencyContact{}
	rows, err := tx.QueryContext(ctx,
		`SELECT name, phone, relationship FROM emergency_contacts WHERE principal = $1 ORDER BY seq`,
		string(p),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query contacts: %v", domain.ErrStorageFault, err)
	}
	for rows.Next() {
		var c domain.EmergencyContact
		if err := rows.Scan(&c.Name, &c.Phone, &c.Relationship); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan contact: %v", domain.ErrStorageFault, err)
		}
		full.Contacts = append(full.Contacts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate contacts: %v", domain.ErrStorageFault, err)
	}

	full.Notes = []domain.ConditionNote{}
	rows, err = tx.QueryContext(ctx,
		`SELECT name, note_type, description FROM condition_notes WHERE principal = $1 ORDER BY seq`,
		string(p),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query notes: %v", domain.ErrStorageFault, err)
	}
	for rows.Next() {
		var n domain.ConditionNote
		if err := rows.Scan(&n.Name, &n.Type, &n.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan note: %v", domain.ErrStorageFault, err)
		}
		full.Notes = append(full.Notes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate notes: %v", domain.ErrStorageFault, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit snapshot tx: %v", domain.ErrStorageFault, err)
	}
	return &full, nil
}

// SaveProfile 仅写档案本体（upsert；联系人/备注不动）
func (r *PostgresProfilesRepo) SaveProfile(ctx context.Context, profile domain.UserProfile) error {
	if profile.Principal == "" {
		return fmt.Errorf("principal is required: %w", domain.ErrInvalidInput)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (principal, name, age, address)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (principal) DO UPDATE SET
		   name = EXCLUDED.name,
		   age = EXCLUDED.age,
		   address = EXCLUDED.address`,
		string(profile.Principal), profile.Name, profile.Age, profile.Address,
	)
	if err != nil {
		return fmt.Errorf("%w: save profile: %v", domain.ErrStorageFault, err)
	}
	return nil
}

// SaveFullProfile 一个事务内整体替换三元组
// 失败时任何部分写入都不可见（档案没有联系人/备注缺失的中间态）
func (r *PostgresProfilesRepo) SaveFullProfile(ctx context.Context, profile domain.UserProfile, contacts []domain.EmergencyContact, notes []domain.ConditionNote) error {
	if profile.Principal == "" {
		return fmt.Errorf("principal is required: %w", domain.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin save tx: %v", domain.ErrStorageFault, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_profiles (principal, name, age, address)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (principal) DO UPDATE SET
		   name = EXCLUDED.name,
		   age = EXCLUDED.age,
		   address = EXCLUDED.address`,
		string(profile.Principal), profile.Name, profile.Age, profile.Address,
	); err != nil {
		return fmt.Errorf("%w: save profile: %v", domain.ErrStorageFault, err)
	}

	// 整体替换：先清空再按插入顺序写入
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM emergency_contacts WHERE principal = $1`, string(profile.Principal),
	); err != nil {
		return fmt.Errorf("%w: clear contacts: %v", domain.ErrStorageFault, err)
	}
	for i, c := range contacts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO emergency_contacts (principal, seq, name, phone, relationship)
			 VALUES ($1, $2, $3, $4, $5)`,
			string(profile.Principal), i, c.Name, c.Phone, c.Relationship,
		); err != nil {
			return fmt.Errorf("%w: insert contact: %v", domain.ErrStorageFault, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM condition_notes WHERE principal = $1`, string(profile.Principal),
	); err != nil {
		return fmt.Errorf("%w: clear notes: %v", domain.ErrStorageFault, err)
	}
	for i, n := range notes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO condition_notes (principal, seq, name, note_type, description)
			 VALUES ($1, $2, $3, $4, $5)`,
			string(profile.Principal), i, n.Name, n.Type, n.Description,
		); err != nil {
			return fmt.Errorf("%w: insert note: %v", domain.ErrStorageFault, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit save tx: %v", domain.ErrStorageFault, err)
	}
	return nil
}
