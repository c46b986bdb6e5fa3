package repository

import (
	"context"

	"heartguard-alert/internal/domain"
)

// RolesRepository 角色存储
// 单角色模型：principal → role 的枚举表；admin 只增不减（没有删除角色的操作）
type RolesRepository interface {
	// GetRole 查询角色；不存在时返回 ok=false（调用方默认按 user 处理）
	GetRole(ctx context.Context, p domain.Principal) (domain.Role, bool, error)

	// AdminExists 是否已存在 admin（bootstrap 判定用）
	AdminExists(ctx context.Context) (bool, error)

	// ClaimFirstAdmin 原子地认领"首个 admin"槽位
	// 仅当系统中还没有任何 admin 时把 p 置为 admin 并返回 true；
	// 并发调用时最多一个返回 true，其余返回 false（实现必须串行化这条检查，
	// 不允许 read-then-write）
	ClaimFirstAdmin(ctx context.Context, p domain.Principal) (bool, error)

	// SetRole 设置/覆盖角色（幂等：重复设置同一角色是 no-op 成功）
	SetRole(ctx context.Context, p domain.Principal, role domain.Role) error
}

// AlertsRepository 报警台账
// ID 由存储层分配：严格递增、并发下不冲突、永不复用；记录永不删除
type AlertsRepository interface {
	// CreateAlert 铸造新报警（status=newAlert），返回分配的 ID
	CreateAlert(ctx context.Context, patient domain.Principal, typ domain.AlertType, severity domain.AlertSeverity, timestamp uint64) (uint64, error)

	// GetAlert 按 ID 查询；不存在返回 ErrNotFound
	GetAlert(ctx context.Context, id uint64) (*domain.EmergencyAlert, error)

	// UpdateAlertStatus 状态转移；转移检查在存储层的临界区内完成，
	// 两个并发更新按先后串行应用（后者观察到前者的结果）
	// 不存在返回 ErrNotFound；等于或回退返回 ErrInvalidTransition
	UpdateAlertStatus(ctx context.Context, id uint64, status domain.AlertStatus) error

	// ListPendingAlerts 返回所有未 resolved 的报警（存储顺序，调用方自行排序）
	ListPendingAlerts(ctx context.Context) ([]domain.EmergencyAlert, error)

	// ListAlertsByPatient 返回某患者的全部报警
	ListAlertsByPatient(ctx context.Context, patient domain.Principal) ([]domain.EmergencyAlert, error)

	// ListAllAlerts 返回全部报警（控制室历史导出用）
	ListAllAlerts(ctx context.Context) ([]domain.EmergencyAlert, error)
}

// ProfilesRepository 患者档案存储
// (profile, contacts, notes) 三元组的写入必须原子；读取不允许撕裂
type ProfilesRepository interface {
	// GetProfile 查询档案；不存在返回 ErrNotFound（上层翻译为"未引导"）
	GetProfile(ctx context.Context, p domain.Principal) (*domain.UserProfile, error)

	// GetFullProfile 档案 + 联系人 + 备注的原子快照
	GetFullProfile(ctx context.Context, p domain.Principal) (*domain.FullProfile, error)

	// SaveProfile 仅写档案本体（联系人/备注保持不变）
	SaveProfile(ctx context.Context, profile domain.UserProfile) error

	// SaveFullProfile 整体替换三元组（wholesale replace，不做增量合并）
	SaveFullProfile(ctx context.Context, profile domain.UserProfile, contacts []domain.EmergencyContact, notes []domain.ConditionNote) error
}

// ReadingsRepository 心率读数存储（每个患者 append-only）
type ReadingsRepository interface {
	// AppendReading 追加一条读数（status 已由评估器确定）
	AppendReading(ctx context.Context, patient domain.Principal, reading domain.HeartRateReading) error

	// ListReadings 返回某患者的全部读数（插入顺序）
	ListReadings(ctx context.Context, patient domain.Principal) ([]domain.HeartRateReading, error)
}
