package service

import (
	"context"
	"errors"
	"fmt"

	"heartguard-alert/internal/domain"
	"heartguard-alert/internal/repository"

	"go.uber.org/zap"
)

// ProfileService 患者档案服务接口
// 写入只允许本人；跨患者读取要求控制室/admin。档案不存在不是错误
// （ok=false 表示尚未引导），调用方据此引导患者填写档案。
type ProfileService interface {
	// GetCallerProfile 调用者本人的档案；ok=false 表示不存在
	GetCallerProfile(ctx context.Context, caller domain.Principal) (*domain.UserProfile, bool, error)

	// GetUserProfile 某患者的档案（本人或控制室/admin）；ok=false 表示不存在
	GetUserProfile(ctx context.Context, caller, patient domain.Principal) (*domain.UserProfile, bool, error)

	// GetFullProfile 档案 + 联系人 + 备注的原子快照（本人或控制室/admin）
	GetFullProfile(ctx context.Context, caller, patient domain.Principal) (*domain.FullProfile, error)

	// SaveCallerProfile 保存调用者本人的档案本体
	SaveCallerProfile(ctx context.Context, caller domain.Principal, profile domain.UserProfile) error

	// SaveCallerProfileWithContactNote 整体替换本人的三元组（原子）
	SaveCallerProfileWithContactNote(ctx context.Context, caller domain.Principal, profile domain.UserProfile, contacts []domain.EmergencyContact, notes []domain.ConditionNote) error
}

type profileService struct {
	profilesRepo repository.ProfilesRepository
	access       AccessService
	logger       *zap.Logger
}

// NewProfileService 创建档案服务
func NewProfileService(profilesRepo repository.ProfilesRepository, access AccessService, logger *zap.Logger) ProfileService {
	return &profileService{
		profilesRepo: profilesRepo,
		access:       access,
		logger:       logger,
	}
}

func (s *profileService) GetCallerProfile(ctx context.Context, caller domain.Principal) (*domain.UserProfile, bool, error) {
	if caller == "" {
		return nil, false, fmt.Errorf("caller is required: %w", domain.ErrInvalidInput)
	}
	profile, err := s.profilesRepo.GetProfile(ctx, caller)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return profile, true, nil
}

func (s *profileService) GetUserProfile(ctx context.Context, caller, patient domain.Principal) (*domain.UserProfile, bool, error) {
	if patient == "" {
		return nil, false, fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}
	ok, err := s.access.CanAccessPatient(ctx, caller, patient)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, fmt.Errorf("profile requires ownership or control room: %w", domain.ErrUnauthorized)
	}

	profile, err := s.profilesRepo.GetProfile(ctx, patient)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return profile, true, nil
}

func (s *profileService) GetFullProfile(ctx context.Context, caller, patient domain.Principal) (*domain.FullProfile, error) {
	if patient == "" {
		return nil, fmt.Errorf("patient is required: %w", domain.ErrInvalidInput)
	}
	// 授权先于存在性检查：未授权调用者不能探测档案是否存在
	ok, err := s.access.CanAccessPatient(ctx, caller, patient)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("full profile requires ownership or control room: %w", domain.ErrUnauthorized)
	}
	return s.profilesRepo.GetFullProfile(ctx, patient)
}

func (s *profileService) SaveCallerProfile(ctx context.Context, caller domain.Principal, profile domain.UserProfile) error {
	if err := validateProfile(caller, &profile); err != nil {
		return err
	}
	if err := s.profilesRepo.SaveProfile(ctx, profile); err != nil {
		return err
	}
	s.logger.Info("Profile saved", zap.String("principal", string(caller)))
	return nil
}

func (s *profileService) SaveCallerProfileWithContactNote(ctx context.Context, caller domain.Principal, profile domain.UserProfile, contacts []domain.EmergencyContact, notes []domain.ConditionNote) error {
	if err := validateProfile(caller, &profile); err != nil {
		return err
	}
	for _, c := range contacts {
		if c.Name == "" {
			return fmt.Errorf("contact name is required: %w", domain.ErrInvalidInput)
		}
	}
	for _, n := range notes {
		if n.Name == "" {
			return fmt.Errorf("note name is required: %w", domain.ErrInvalidInput)
		}
	}

	if err := s.profilesRepo.SaveFullProfile(ctx, profile, contacts, notes); err != nil {
		return err
	}
	s.logger.Info("Full profile saved",
		zap.String("principal", string(caller)),
		zap.Int("contacts", len(contacts)),
		zap.Int("notes", len(notes)),
	)
	return nil
}

// validateProfile 写入前校验，并把档案归属锁定为调用者本人
func validateProfile(caller domain.Principal, profile *domain.UserProfile) error {
	if caller == "" {
		return fmt.Errorf("caller is required: %w", domain.ErrInvalidInput)
	}
	if profile.Name == "" {
		return fmt.Errorf("profile name is required: %w", domain.ErrInvalidInput)
	}
	profile.Principal = caller
	return nil
}
