package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/evaluator"
	"heartguard-alert/internal/repository"
	"heartguard-alert/internal/store"

	"go.uber.org/zap"
)

// ReadingService 心率读数服务接口
// 写入路径即监测管线：分类 → 落库 → 越限时代患者铸造 automatic 报警
type ReadingService interface {
	// AddHeartRateReading 记录调用者本人的一条读数
	// thresholds 由监测客户端随读数传入（核心层不持久化阈值）；
	// timestamp 为 0 时取当前时间；返回写入的读数（含分类结果）
	AddHeartRateReading(ctx context.Context, caller domain.Principal, value int64, timestamp uint64, thresholds domain.Thresholds) (*domain.HeartRateReading, error)

	// GetHeartRateReadings 某患者的全部读数（本人或控制室/admin）
	GetHeartRateReadings(ctx context.Context, caller, patient domain.Principal) ([]domain.HeartRateReading, error)
}

type readingService struct {
	readingsRepo repository.ReadingsRepository
	alerts       AlertService
	access       AccessService
	cache        store.KV // 可选：nil 时跳过缓存
	logger       *zap.Logger
}

// NewReadingService 创建读数服务
func NewReadingService(readingsRepo repository.ReadingsRepository, alerts AlertService, access AccessService, cache store.KV, logger *zap.Logger) ReadingService {
	return &readingService{
		readingsRepo: readingsRepo,
		alerts:       alerts,
		access:       access,
		cache:        cache,
		logger:       logger,
	}
}

func (s *readingService) AddHeartRateReading(ctx context.Context, caller domain.Principal, value int64, timestamp uint64, thresholds domain.Thresholds) (*domain.HeartRateReading, error) {
	if caller == "" {
		return nil, fmt.Errorf("caller is required: %w", domain.ErrInvalidInput)
	}
	if value <= 0 {
		return nil, fmt.Errorf("reading value %d: %w", value, domain.ErrInvalidInput)
	}
	if thresholds.Low <= 0 || thresholds.High <= thresholds.Low {
		return nil, fmt.Errorf("thresholds [%d, %d]: %w", thresholds.Low, thresholds.High, domain.ErrInvalidInput)
	}
	if timestamp == 0 {
		timestamp = uint64(time.Now().UnixNano())
	}

	// 写入时分类一次，之后不再重算
	result := evaluator.Classify(value, thresholds)
	reading := domain.HeartRateReading{
		Value:     value,
		Timestamp: timestamp,
		Status:    result.Status,
	}

	if err := s.readingsRepo.AppendReading(ctx, caller, reading); err != nil {
		return nil, err
	}

	// 越限读数必须自动产生报警（severity 来自评估器建议）
	if result.Abnormal {
		alertID, err := s.alerts.CreateEmergencyAlert(ctx, caller, domain.AlertTypeAutomatic, result.Severity)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Automatic alert minted from reading",
			zap.Uint64("alert_id", alertID),
			zap.String("patient", string(caller)),
			zap.Int64("value", value),
			zap.String("status", string(result.Status)),
		)
	}

	s.cacheLatest(ctx, caller, reading)
	return &reading, nil
}

func (s *readingService) GetHeartRateReadings(ctx context.Context, caller, patient domain.Principal) ([]domain.HeartRateReading, error) {
	if patient == "" {
		return nil, fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}
	ok, err := s.access.CanAccessPatient(ctx, caller, patient)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("readings require ownership or control room: %w", domain.ErrUnauthorized)
	}
	return s.readingsRepo.ListReadings(ctx, patient)
}

// cacheLatest 缓存最近一次读数（控制室面板轮询用，失败只降级）
func (s *readingService) cacheLatest(ctx context.Context, patient domain.Principal, reading domain.HeartRateReading) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(reading)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, store.RealtimeKey(string(patient)), string(raw), store.RealtimeReadingTTL); err != nil {
		s.logger.Warn("Failed to cache latest reading",
			zap.String("patient", string(patient)),
			zap.Error(err),
		)
	}
}
