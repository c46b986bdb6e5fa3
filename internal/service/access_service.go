package service

import (
	"context"
	"fmt"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/repository"

	"go.uber.org/zap"
)

// AccessService 访问授权服务接口
// 所有敏感操作先解析调用者 principal，再查角色（缺省 user），最后过能力谓词。
// 角色写入立即对后续检查可见（不做缓存）。
type AccessService interface {
	// CallerRole 返回调用者角色（角色表中不存在时按 user 处理）
	CallerRole(ctx context.Context, caller domain.Principal) (domain.Role, error)

	// IsCallerAdmin 调用者是否 admin
	IsCallerAdmin(ctx context.Context, caller domain.Principal) (bool, error)

	// IsControlRoomUser 调用者是否控制室用户（admin 隐含通过）
	IsControlRoomUser(ctx context.Context, caller domain.Principal) (bool, error)

	// AssignUserRole 给 target 赋角色
	// 常规路径要求调用者是 admin；系统内还没有 admin 时走 bootstrap：
	// 无条件把 target 置为 admin（忽略请求的角色），且全局最多发生一次
	AssignUserRole(ctx context.Context, caller, target domain.Principal, role domain.Role) error

	// AddControlRoomUser 把 target 加入控制室（admin 专用，幂等）
	AddControlRoomUser(ctx context.Context, caller, target domain.Principal) error

	// CanAccessPatient 调用者是否可读 patient 的数据（本人，或控制室/admin）
	CanAccessPatient(ctx context.Context, caller, patient domain.Principal) (bool, error)
}

type accessService struct {
	rolesRepo repository.RolesRepository
	logger    *zap.Logger
}

// NewAccessService 创建访问授权服务
func NewAccessService(rolesRepo repository.RolesRepository, logger *zap.Logger) AccessService {
	return &accessService{
		rolesRepo: rolesRepo,
		logger:    logger,
	}
}

func (s *accessService) CallerRole(ctx context.Context, caller domain.Principal) (domain.Role, error) {
	if caller == "" {
		return "", fmt.Errorf("caller is required: %w", domain.ErrInvalidInput)
	}
	role, ok, err := s.rolesRepo.GetRole(ctx, caller)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.RoleUser, nil
	}
	return role, nil
}

func (s *accessService) IsCallerAdmin(ctx context.Context, caller domain.Principal) (bool, error) {
	role, err := s.CallerRole(ctx, caller)
	if err != nil {
		return false, err
	}
	return role == domain.RoleAdmin, nil
}

func (s *accessService) IsControlRoomUser(ctx context.Context, caller domain.Principal) (bool, error) {
	role, err := s.CallerRole(ctx, caller)
	if err != nil {
		return false, err
	}
	// admin 隐含控制室权限：谓词 OR，不做角色继承
	return role == domain.RoleControlRoom || role == domain.RoleAdmin, nil
}

func (s *accessService) AssignUserRole(ctx context.Context, caller, target domain.Principal, role domain.Role) error {
	if target == "" {
		return fmt.Errorf("target principal is required: %w", domain.ErrInvalidInput)
	}
	if !domain.ValidRole(role) {
		return fmt.Errorf("role %q: %w", role, domain.ErrInvalidInput)
	}

	// Bootstrap 路径：还没有 admin 时认领"首个 admin"槽位
	// 认领本身是存储层的原子 CAS；输掉竞争的调用走常规授权路径
	adminExists, err := s.rolesRepo.AdminExists(ctx)
	if err != nil {
		return err
	}
	if !adminExists {
		claimed, err := s.rolesRepo.ClaimFirstAdmin(ctx, target)
		if err != nil {
			return err
		}
		if claimed {
			s.logger.Info("Bootstrap admin established",
				zap.String("principal", string(target)),
			)
			return nil
		}
		// 并发竞争中落败：此刻已有 admin，按常规路径继续
	}

	isAdmin, err := s.IsCallerAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("assign role requires admin: %w", domain.ErrUnauthorized)
	}

	if err := s.rolesRepo.SetRole(ctx, target, role); err != nil {
		return err
	}
	s.logger.Info("Role assigned",
		zap.String("caller", string(caller)),
		zap.String("principal", string(target)),
		zap.String("role", string(role)),
	)
	return nil
}

func (s *accessService) AddControlRoomUser(ctx context.Context, caller, target domain.Principal) error {
	if target == "" {
		return fmt.Errorf("target principal is required: %w", domain.ErrInvalidInput)
	}

	isAdmin, err := s.IsCallerAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("add control room user requires admin: %w", domain.ErrUnauthorized)
	}

	// SetRole 是 upsert：重复添加同一控制室用户是 no-op 成功
	if err := s.rolesRepo.SetRole(ctx, target, domain.RoleControlRoom); err != nil {
		return err
	}
	s.logger.Info("Control room user added",
		zap.String("caller", string(caller)),
		zap.String("principal", string(target)),
	)
	return nil
}

func (s *accessService) CanAccessPatient(ctx context.Context, caller, patient domain.Principal) (bool, error) {
	if caller == patient {
		return true, nil
	}
	return s.IsControlRoomUser(ctx, caller)
}
