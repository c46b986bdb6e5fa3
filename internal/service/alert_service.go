package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/repository"
	"heartguard-alert/internal/store"

	"go.uber.org/zap"
)

// AlertService 报警台账服务接口
// 拥有报警生命周期状态机；铸造（患者/管线）和处置（控制室）都从这里走
type AlertService interface {
	// CreateEmergencyAlert 铸造新报警（caller 即患者本人；manual=SOS，automatic=监测管线）
	CreateEmergencyAlert(ctx context.Context, caller domain.Principal, typ domain.AlertType, severity domain.AlertSeverity) (uint64, error)

	// UpdateAlertStatus 状态转移（控制室/admin 专用）
	UpdateAlertStatus(ctx context.Context, caller domain.Principal, id uint64, status domain.AlertStatus) error

	// GetAlertDetails 报警详情（控制室/admin 专用）
	GetAlertDetails(ctx context.Context, caller domain.Principal, id uint64) (*domain.EmergencyAlert, error)

	// GetPendingAlerts 待处理队列：status ∈ {newAlert, acknowledged, dispatched}
	GetPendingAlerts(ctx context.Context, caller domain.Principal) ([]domain.EmergencyAlert, error)

	// GetAlertsForPatient 某患者的全部报警（本人或控制室/admin）
	GetAlertsForPatient(ctx context.Context, caller, patient domain.Principal) ([]domain.EmergencyAlert, error)

	// ListAlertHistory 全部报警记录（控制室历史页和导出用）
	ListAlertHistory(ctx context.Context, caller domain.Principal) ([]domain.EmergencyAlert, error)
}

type alertService struct {
	alertsRepo repository.AlertsRepository
	access     AccessService
	cache      store.KV // 可选：nil 时跳过缓存
	logger     *zap.Logger
}

// NewAlertService 创建报警台账服务
func NewAlertService(alertsRepo repository.AlertsRepository, access AccessService, cache store.KV, logger *zap.Logger) AlertService {
	return &alertService{
		alertsRepo: alertsRepo,
		access:     access,
		cache:      cache,
		logger:     logger,
	}
}

func (s *alertService) CreateEmergencyAlert(ctx context.Context, caller domain.Principal, typ domain.AlertType, severity domain.AlertSeverity) (uint64, error) {
	if caller == "" {
		return 0, fmt.Errorf("caller is required: %w", domain.ErrInvalidInput)
	}
	if !domain.ValidAlertType(typ) {
		return 0, fmt.Errorf("alert type %q: %w", typ, domain.ErrInvalidInput)
	}
	if !domain.ValidSeverity(severity) {
		return 0, fmt.Errorf("severity %q: %w", severity, domain.ErrInvalidInput)
	}

	id, err := s.alertsRepo.CreateAlert(ctx, caller, typ, severity, uint64(time.Now().UnixNano()))
	if err != nil {
		return 0, err
	}
	s.invalidatePending(ctx)
	return id, nil
}

func (s *alertService) UpdateAlertStatus(ctx context.Context, caller domain.Principal, id uint64, status domain.AlertStatus) error {
	// 授权先于输入校验（未授权调用者拿不到校验反馈）
	ok, err := s.access.IsControlRoomUser(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("update alert status requires control room: %w", domain.ErrUnauthorized)
	}

	if !domain.ValidAlertStatus(status) {
		return fmt.Errorf("alert status %q: %w", status, domain.ErrInvalidInput)
	}

	// 转移检查在存储层临界区内完成（并发更新串行应用）
	if err := s.alertsRepo.UpdateAlertStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidatePending(ctx)
	return nil
}

func (s *alertService) GetAlertDetails(ctx context.Context, caller domain.Principal, id uint64) (*domain.EmergencyAlert, error) {
	ok, err := s.access.IsControlRoomUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("alert details require control room: %w", domain.ErrUnauthorized)
	}
	return s.alertsRepo.GetAlert(ctx, id)
}

func (s *alertService) GetPendingAlerts(ctx context.Context, caller domain.Principal) ([]domain.EmergencyAlert, error) {
	ok, err := s.access.IsControlRoomUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("pending alerts require control room: %w", domain.ErrUnauthorized)
	}

	// 缓存命中时直接返回快照（控制室面板轮询走这里）
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, store.PendingAlertsKey); err == nil {
			var cached []domain.EmergencyAlert
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	pending, err := s.alertsRepo.ListPendingAlerts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(pending); err == nil {
			if err := s.cache.Set(ctx, store.PendingAlertsKey, string(raw), store.PendingAlertsTTL); err != nil {
				s.logger.Warn("Failed to cache pending alerts", zap.Error(err))
			}
		}
	}
	return pending, nil
}

func (s *alertService) GetAlertsForPatient(ctx context.Context, caller, patient domain.Principal) ([]domain.EmergencyAlert, error) {
	if patient == "" {
		return nil, fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}
	ok, err := s.access.CanAccessPatient(ctx, caller, patient)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("patient alerts require ownership or control room: %w", domain.ErrUnauthorized)
	}
	return s.alertsRepo.ListAlertsByPatient(ctx, patient)
}

func (s *alertService) ListAlertHistory(ctx context.Context, caller domain.Principal) ([]domain.EmergencyAlert, error) {
	ok, err := s.access.IsControlRoomUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("alert history requires control room: %w", domain.ErrUnauthorized)
	}
	return s.alertsRepo.ListAllAlerts(ctx)
}

// invalidatePending 报警集合变化后丢弃待处理快照
func (s *alertService) invalidatePending(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, store.PendingAlertsKey); err != nil {
		s.logger.Warn("Failed to invalidate pending alerts cache", zap.Error(err))
	}
}
