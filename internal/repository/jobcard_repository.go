package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"gorm.io/gorm"
)

// JobCardSortOption controls list ordering
type JobCardSortOption string

const (
	JobCardSortByCreatedDesc JobCardSortOption = "created_desc"
	JobCardSortByCreatedAsc  JobCardSortOption = "created_asc"
	JobCardSortByDueDateAsc  JobCardSortOption = "due_date_asc"
	JobCardSortByNumberDesc  JobCardSortOption = "number_desc"
)

// JobCardFilters narrows job card listings
type JobCardFilters struct {
	BranchID     *uuid.UUID
	CustomerID   *uuid.UUID
	TechnicianID *string
	Status       *domain.JobCardStatus
	JobType      *domain.JobType
	Search       string
}

type JobCardRepository struct {
	db *gorm.DB
}

func NewJobCardRepository(db *gorm.DB) *JobCardRepository {
	return &JobCardRepository{db: db}
}

func (r *JobCardRepository) Create(ctx context.Context, job *domain.JobCard) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID loads a job card with its lines, invoice and reference relations.
// Notes are loaded separately via GetByIDWithNotes.
func (r *JobCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobCard, error) {
	var job domain.JobCard
	err := r.db.WithContext(ctx).
		Preload("Materials").
		Preload("Materials.Product").
		Preload("Labor").
		Preload("Labor.Technician").
		Preload("Customer").
		Preload("Branch").
		Preload("Technician").
		Preload("Invoice").
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByIDWithNotes loads a job card including its note trail
func (r *JobCardRepository) GetByIDWithNotes(ctx context.Context, id uuid.UUID) (*domain.JobCard, error) {
	var job domain.JobCard
	err := r.db.WithContext(ctx).
		Preload("Materials").
		Preload("Materials.Product").
		Preload("Labor").
		Preload("Labor.Technician").
		Preload("Customer").
		Preload("Branch").
		Preload("Technician").
		Preload("Invoice").
		Preload("JobNotes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobCardRepository) Update(ctx context.Context, job *domain.JobCard) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// UpdateFields applies a partial update without touching other columns
func (r *JobCardRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.JobCard{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// List returns a filtered, paginated page of job cards with the total count
func (r *JobCardRepository) List(ctx context.Context, page, pageSize int, filters *JobCardFilters, sortBy JobCardSortOption) ([]domain.JobCard, int64, error) {
	var jobs []domain.JobCard
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.JobCard{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Customer").
		Preload("Branch").
		Preload("Technician").
		Order(r.orderClause(sortBy)).
		Offset(offset).
		Limit(pageSize).
		Find(&jobs).Error

	return jobs, total, err
}

// ListOverdue returns open job cards whose due date has passed
func (r *JobCardRepository) ListOverdue(ctx context.Context) ([]domain.JobCard, error) {
	var jobs []domain.JobCard
	err := r.db.WithContext(ctx).
		Where("status IN ?", []domain.JobCardStatus{domain.JobStatusScheduled, domain.JobStatusInProgress}).
		Where("due_date IS NOT NULL AND due_date < CURRENT_DATE").
		Find(&jobs).Error
	return jobs, err
}

// CountNotesSince counts notes on a job card authored after the given point in time
func (r *JobCardRepository) CountNotesSince(ctx context.Context, jobID uuid.UUID, authorID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.JobCardNote{}).
		Where("job_card_id = ? AND author_id = ? AND created_at >= ?", jobID, authorID, since).
		Count(&count).Error
	return count, err
}

func (r *JobCardRepository) applyFilters(query *gorm.DB, filters *JobCardFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.BranchID != nil {
		query = query.Where("branch_id = ?", *filters.BranchID)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.TechnicianID != nil {
		query = query.Where("technician_id = ?", *filters.TechnicianID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.JobType != nil {
		query = query.Where("job_type = ?", *filters.JobType)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("job_number LIKE ? OR description LIKE ?", pattern, pattern)
	}
	return query
}

func (r *JobCardRepository) orderClause(sortBy JobCardSortOption) string {
	switch sortBy {
	case JobCardSortByCreatedAsc:
		return "created_at ASC"
	case JobCardSortByDueDateAsc:
		return "due_date ASC NULLS LAST"
	case JobCardSortByNumberDesc:
		return "job_number DESC"
	default:
		return "created_at DESC"
	}
}
