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

// WorkerService manages the profession groups of a work and the people
// assigned to its items
type WorkerService struct {
	workerRepo    *repository.WorkerRepository
	workRepo      *repository.WorkRepository
	workItemRepo  *repository.WorkItemRepository
	workforceRepo *repository.WorkforceRepository
	logger        *zap.Logger
}

func NewWorkerService(
	workerRepo *repository.WorkerRepository,
	workRepo *repository.WorkRepository,
	workItemRepo *repository.WorkItemRepository,
	workforceRepo *repository.WorkforceRepository,
	logger *zap.Logger,
) *WorkerService {
	return &WorkerService{
		workerRepo:    workerRepo,
		workRepo:      workRepo,
		workItemRepo:  workItemRepo,
		workforceRepo: workforceRepo,
		logger:        logger,
	}
}

func (s *WorkerService) ListWorkers(ctx context.Context, workID uuid.UUID) ([]domain.Worker, error) {
	workers, err := s.workerRepo.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

// AssignWorker attaches a person to a work item. When the person is in
// the workforce directory the contact fields are filled from there; a
// matching profession group on the work is reused or created. A person
// is identified by (name, email): assigning someone already on the item
// merges into the existing row instead of duplicating it.
func (s *WorkerService) AssignWorker(ctx context.Context, workID, workItemID uuid.UUID, name, email, phone, role string, quantity int) (*domain.WorkItemWorker, error) {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return nil, ErrUnauthorized
	}

	item, err := s.workItemRepo.GetByID(ctx, workItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}
	if item.WorkID != workID {
		return nil, ErrInvalidInput
	}

	if email != "" {
		if member, err := s.workforceRepo.GetByEmail(ctx, email); err == nil {
			if name == "" {
				name = member.Name
			}
			if phone == "" {
				phone = member.Phone
			}
			if role == "" {
				role = member.Role
			}
		}
	}
	if quantity < 1 {
		quantity = 1
	}

	existing, err := s.workerRepo.FindAssignmentByPerson(ctx, workItemID, name, email)
	if err == nil {
		existing.Quantity += quantity
		if err := s.workerRepo.UpdateAssignment(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to merge assignment: %w", err)
		}
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}

	assignment := &domain.WorkItemWorker{
		WorkItemID:  workItemID,
		WorkID:      workID,
		TenantEmail: tenant,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Role:        role,
		Quantity:    quantity,
	}

	if role != "" {
		group, err := s.findOrCreateGroup(ctx, workID, tenant, role)
		if err != nil {
			return nil, err
		}
		assignment.WorkerID = &group.ID
	}

	if err := s.workerRepo.CreateAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return assignment, nil
}

func (s *WorkerService) findOrCreateGroup(ctx context.Context, workID uuid.UUID, tenant, role string) (*domain.Worker, error) {
	groups, err := s.workerRepo.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker groups: %w", err)
	}
	for i := range groups {
		if groups[i].Role == role {
			return &groups[i], nil
		}
	}
	group := &domain.Worker{
		WorkID:      workID,
		TenantEmail: tenant,
		Role:        role,
	}
	if err := s.workerRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create worker group: %w", err)
	}
	return group, nil
}

func (s *WorkerService) ListAssignments(ctx context.Context, workItemID uuid.UUID) ([]domain.WorkItemWorker, error) {
	assignments, err := s.workerRepo.ListAssignmentsByWorkItem(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *WorkerService) RemoveAssignment(ctx context.Context, id uuid.UUID) error {
	if err := s.workerRepo.DeleteAssignment(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}
