package repository

import (
	"context"
	"database/sql"
	"fmt"

	"heartguard-alert/internal/domain"
)

// PostgresRolesRepo 角色存储的 PostgreSQL 实现
// "首个 admin"认领通过 admin_gate 单行表的主键约束完成（数据库级 CAS），
// 不做 read-then-write
type PostgresRolesRepo struct {
	db *sql.DB
}

// NewPostgresRolesRepo 创建角色存储
func NewPostgresRolesRepo(db *sql.DB) *PostgresRolesRepo {
	return &PostgresRolesRepo{db: db}
}

var _ RolesRepository = (*PostgresRolesRepo)(nil)

// GetRole 查询单个 principal 的角色
func (r *PostgresRolesRepo) GetRole(ctx context.Context, p domain.Principal) (domain.Role, bool, error) {
	if p == "" {
		return "", false, fmt.Errorf("principal is required: %w", domain.ErrInvalidInput)
	}

	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM user_roles WHERE principal = $1`, string(p),
	).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: query role: %v", domain.ErrStorageFault, err)
	}
	return domain.Role(role), true, nil
}

// AdminExists 是否已有 admin（以 admin_gate 为准）
func (r *PostgresRolesRepo) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM admin_gate)`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: query admin gate: %v", domain.ErrStorageFault, err)
	}
	return exists, nil
}

// ClaimFirstAdmin 原子认领首个 admin
// INSERT ... ON CONFLICT DO NOTHING 对单行表做 CAS：
// 并发 N 个调用最多一个 RowsAffected=1
func (r *PostgresRolesRepo) ClaimFirstAdmin(ctx context.Context, p domain.Principal) (bool, error) {
	if p == "" {
		return false, fmt.Errorf("principal is required: %w", domain.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: begin claim tx: %v", domain.ErrStorageFault, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO admin_gate (gate_id, principal) VALUES (TRUE, $1)
		 ON CONFLICT (gate_id) DO NOTHING`,
		string(p),
	)
	if err != nil {
		return false, fmt.Errorf("%w: claim admin gate: %v", domain.ErrStorageFault, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: claim admin gate: %v", domain.ErrStorageFault, err)
	}
	if n == 0 {
		// 已有 admin，认领失败（调用方走常规授权路径）
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_roles (principal, role) VALUES ($1, $2)
		 ON CONFLICT (principal) DO UPDATE SET role = EXCLUDED.role`,
		string(p), string(domain.RoleAdmin),
	)
	if err != nil {
		return false, fmt.Errorf("%w: assign bootstrap admin: %v", domain.ErrStorageFault, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: commit claim tx: %v", domain.ErrStorageFault, err)
	}
	return true, nil
}

// SetRole 设置/覆盖角色（upsert，幂等）
func (r *PostgresRolesRepo) SetRole(ctx context.Context, p domain.Principal, role domain.Role) error {
	if p == "" {
		return fmt.Errorf("principal is required: %w", domain.ErrInvalidInput)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (principal, role) VALUES ($1, $2)
		 ON CONFLICT (principal) DO UPDATE SET role = EXCLUDED.role`,
		string(p), string(role),
	)
	if err != nil {
		return fmt.Errorf("%w: set role: %v", domain.ErrStorageFault, err)
	}
	return nil
}
