package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/mapper"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type WorkforceService struct {
	workforceRepo *repository.WorkforceRepository
	logger        *zap.Logger
}

func NewWorkforceService(workforceRepo *repository.WorkforceRepository, logger *zap.Logger) *WorkforceService {
	return &WorkforceService{workforceRepo: workforceRepo, logger: logger}
}

// CreateMember registers a person in the tenant's workforce directory.
// A member needs at least one contact method so diary entries can be
// linked back to them.
func (s *WorkforceService) CreateMember(ctx context.Context, req *domain.CreateWorkforceMemberRequest) (*domain.WorkforceMemberDTO, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}
	if req.Email == "" && req.Phone == "" {
		return nil, fmt.Errorf("%w: email or phone required", ErrInvalidInput)
	}

	member := &domain.WorkforceMember{
		TenantEmail: tenant,
		Name:        req.Name,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       req.Phone,
		Role:        req.Role,
		DailyRate:   req.DailyRate,
	}

	if member.Email != "" {
		if _, err := s.workforceRepo.GetByEmail(ctx, member.Email); err == nil {
			return nil, ErrConflict
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check existing member: %w", err)
		}
	}

	if err := s.workforceRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create workforce member: %w", err)
	}

	dto := mapper.ToWorkforceMemberDTO(member)
	return &dto, nil
}

func (s *WorkforceService) GetMember(ctx context.Context, id uuid.UUID) (*domain.WorkforceMemberDTO, error) {
	member, err := s.workforceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workforce member: %w", err)
	}
	dto := mapper.ToWorkforceMemberDTO(member)
	return &dto, nil
}

func (s *WorkforceService) ListMembers(ctx context.Context) ([]domain.WorkforceMemberDTO, error) {
	members, err := s.workforceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workforce: %w", err)
	}
	dtos := make([]domain.WorkforceMemberDTO, len(members))
	for i := range members {
		dtos[i] = mapper.ToWorkforceMemberDTO(&members[i])
	}
	return dtos, nil
}

// UpdateMember edits a directory entry. Rate changes affect future
// diary entries only; logged entries keep their frozen snapshot.
func (s *WorkforceService) UpdateMember(ctx context.Context, id uuid.UUID, req *domain.UpdateWorkforceMemberRequest) (*domain.WorkforceMemberDTO, error) {
	member, err := s.workforceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workforce member: %w", err)
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.DailyRate != nil {
		member.DailyRate = *req.DailyRate
	}
	if member.Email == "" && member.Phone == "" {
		return nil, fmt.Errorf("%w: email or phone required", ErrInvalidInput)
	}

	if err := s.workforceRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update workforce member: %w", err)
	}

	dto := mapper.ToWorkforceMemberDTO(member)
	return &dto, nil
}

func (s *WorkforceService) DeleteMember(ctx context.Context, id uuid.UUID) error {
	if err := s.workforceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete workforce member: %w", err)
	}
	return nil
}
