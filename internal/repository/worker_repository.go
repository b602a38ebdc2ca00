package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesterwork/worksite-api/internal/domain"
	"gorm.io/gorm"
)

type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) Create(ctx context.Context, worker *domain.Worker) error {
	return r.db.WithContext(ctx).Create(worker).Error
}

func (r *WorkerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error) {
	var worker domain.Worker
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Preload("Assignments").
		First(&worker, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepository) ListByWork(ctx context.Context, workID uuid.UUID) ([]domain.Worker, error) {
	var workers []domain.Worker
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_id = ?", workID).
		Preload("Assignments").
		Order("created_at ASC").
		Find(&workers).Error
	return workers, err
}

func (r *WorkerRepository) Update(ctx context.Context, worker *domain.Worker) error {
	return r.db.WithContext(ctx).Save(worker).Error
}

func (r *WorkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.Worker{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WorkerRepository) CreateAssignment(ctx context.Context, assignment *domain.WorkItemWorker) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *WorkerRepository) GetAssignmentByID(ctx context.Context, id uuid.UUID) (*domain.WorkItemWorker, error) {
	var assignment domain.WorkItemWorker
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		First(&assignment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindAssignmentByPerson looks up an existing assignment of the same
// person on a work item; (name, email) identifies the person
func (r *WorkerRepository) FindAssignmentByPerson(ctx context.Context, workItemID uuid.UUID, name, email string) (*domain.WorkItemWorker, error) {
	var assignment domain.WorkItemWorker
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_item_id = ? AND name = ? AND email = ?", workItemID, name, email).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *WorkerRepository) ListAssignmentsByWorkItem(ctx context.Context, workItemID uuid.UUID) ([]domain.WorkItemWorker, error) {
	var assignments []domain.WorkItemWorker
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_item_id = ?", workItemID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *WorkerRepository) ListAssignmentsByWork(ctx context.Context, workID uuid.UUID) ([]domain.WorkItemWorker, error) {
	var assignments []domain.WorkItemWorker
	err := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Where("work_id = ?", workID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *WorkerRepository) UpdateAssignment(ctx context.Context, assignment *domain.WorkItemWorker) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *WorkerRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	result := ApplyTenantFilter(ctx, r.db.WithContext(ctx)).
		Delete(&domain.WorkItemWorker{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
