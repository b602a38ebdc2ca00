package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/mesterwork/worksite-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ToolService struct {
	toolRepo *repository.ToolRepository
	workRepo *repository.WorkRepository
	logger   *zap.Logger
}

func NewToolService(toolRepo *repository.ToolRepository, workRepo *repository.WorkRepository, logger *zap.Logger) *ToolService {
	return &ToolService{toolRepo: toolRepo, workRepo: workRepo, logger: logger}
}

func (s *ToolService) CreateTool(ctx context.Context, workID uuid.UUID, req *domain.CreateToolRequest) (*domain.Tool, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}
	if _, err := s.workRepo.GetByID(ctx, workID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	tool := &domain.Tool{
		WorkID:      workID,
		TenantEmail: tenant,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Description: req.Description,
	}
	if err := s.toolRepo.Create(ctx, tool); err != nil {
		return nil, fmt.Errorf("failed to create tool: %w", err)
	}
	return tool, nil
}

func (s *ToolService) ListTools(ctx context.Context, workID uuid.UUID) ([]domain.Tool, error) {
	tools, err := s.toolRepo.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return tools, nil
}

func (s *ToolService) DeleteTool(ctx context.Context, id uuid.UUID) error {
	if err := s.toolRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	return nil
}
