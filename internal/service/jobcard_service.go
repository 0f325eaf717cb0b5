package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/mapper"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobCardService orchestrates the job card lifecycle: creation, line
// synchronization, status transitions, inventory settlement, invoicing
// and production completion. Every public operation runs inside a single
// database transaction; a failure rolls the whole operation back.
type JobCardService struct {
	db            *gorm.DB
	jobCardRepo   *repository.JobCardRepository
	branchRepo    *repository.BranchRepository
	userRepo      *repository.UserRepository
	customerRepo  *repository.CustomerRepository
	jobNumbers    *JobNumberService
	inventory     InventoryCollaborator
	invoicing     InvoicingCollaborator
	manufacturing ManufacturingCollaborator
	logger        *zap.Logger
}

// NewJobCardService creates a new JobCardService. Repositories touched
// only inside transactions (products, invoices, inventory transactions)
// are bound to the transaction handle at the call site instead of being
// injected here.
func NewJobCardService(
	db *gorm.DB,
	jobCardRepo *repository.JobCardRepository,
	branchRepo *repository.BranchRepository,
	userRepo *repository.UserRepository,
	customerRepo *repository.CustomerRepository,
	jobNumbers *JobNumberService,
	inventory InventoryCollaborator,
	invoicing InvoicingCollaborator,
	manufacturing ManufacturingCollaborator,
	logger *zap.Logger,
) *JobCardService {
	return &JobCardService{
		db:            db,
		jobCardRepo:   jobCardRepo,
		branchRepo:    branchRepo,
		userRepo:      userRepo,
		customerRepo:  customerRepo,
		jobNumbers:    jobNumbers,
		inventory:     inventory,
		invoicing:     invoicing,
		manufacturing: manufacturing,
		logger:        logger,
	}
}

// Create creates a new job card in draft status, optionally with initial
// material and labor lines.
func (s *JobCardService) Create(ctx context.Context, req *domain.CreateJobCardRequest, actorID string) (*domain.JobCardDTO, error) {
	branch, err := s.branchRepo.GetByID(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}

	jobType := req.JobType
	if jobType == "" {
		jobType = domain.JobTypeService
	}
	if !jobType.IsValid() {
		return nil, fmt.Errorf("%w: unknown job type %q", ErrInvalidInput, jobType)
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.JobPriorityNormal
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *req.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("failed to get customer: %w", err)
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "NOK"
	}

	var created *domain.JobCard
	err = s.db.Transaction(func(tx *gorm.DB) error {
		technician, err := s.validateTechnician(tx, req.TechnicianID, branch.ID)
		if err != nil {
			return err
		}

		number, err := s.jobNumbers.Generate(ctx, tx, branch)
		if err != nil {
			return err
		}

		job := &domain.JobCard{
			JobNumber:     number,
			CustomerID:    req.CustomerID,
			BranchID:      branch.ID,
			Status:        domain.JobStatusDraft,
			JobType:       jobType,
			Priority:      priority,
			Description:   req.Description,
			Notes:         req.Notes,
			StartDate:     req.StartDate,
			DueDate:       req.DueDate,
			Currency:      currency,
			VatRate:       req.VatRate,
			BomProductID:  req.BomProductID,
			ProductionQty: req.ProductionQty,
			CreatedByID:   actorID,
			UpdatedByID:   actorID,
		}
		if technician != nil {
			job.TechnicianID = &technician.ID
		}

		if err := tx.Omit(clause.Associations).Create(job).Error; err != nil {
			return fmt.Errorf("failed to create job card: %w", err)
		}

		if len(req.Materials) > 0 {
			if err := s.syncMaterials(ctx, tx, job, req.Materials, domain.SyncModeReplace); err != nil {
				return err
			}
		}
		if len(req.Labor) > 0 {
			if err := s.syncLabor(tx, job, req.Labor, domain.SyncModeReplace); err != nil {
				return err
			}
		}

		CalculateTotals(job)

		if err := tx.Omit(clause.Associations).Save(job).Error; err != nil {
			return fmt.Errorf("failed to save job card totals: %w", err)
		}

		created = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("created job card",
		zap.String("jobCardID", created.ID.String()),
		zap.String("jobNumber", created.JobNumber),
		zap.String("branchID", created.BranchID.String()))

	return s.reload(ctx, created.ID)
}

// Get returns a single job card, optionally including its note trail
func (s *JobCardService) Get(ctx context.Context, id uuid.UUID, includeNotes bool) (*domain.JobCardDTO, error) {
	var job *domain.JobCard
	var err error
	if includeNotes {
		job, err = s.jobCardRepo.GetByIDWithNotes(ctx, id)
	} else {
		job, err = s.jobCardRepo.GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobCardNotFound
		}
		return nil, fmt.Errorf("failed to get job card: %w", err)
	}
	dto := mapper.ToJobCardDTO(job)
	return &dto, nil
}

// List returns job cards matching the filters, paginated
func (s *JobCardService) List(ctx context.Context, page, pageSize int, filters *repository.JobCardFilters, sortBy repository.JobCardSortOption) (*domain.PaginatedResponse, error) {
	jobs, total, err := s.jobCardRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list job cards: %w", err)
	}

	dtos := make([]domain.JobCardDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobCardDTO(&jobs[i])
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Update applies scalar field changes and optional line replacement.
// Cancelled and closed job cards can no longer be updated.
func (s *JobCardService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateJobCardRequest, actorID string) (*domain.JobCardDTO, error) {
	job, err := s.jobCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobCardNotFound
		}
		return nil, fmt.Errorf("failed to get job card: %w", err)
	}

	if job.Status == domain.JobStatusCancelled || job.Status == domain.JobStatusClosed {
		return nil, fmt.Errorf("%w: status is %s", ErrJobCardNotEditable, job.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyScalarUpdates(tx, job, req); err != nil {
			return err
		}

		if req.Materials != nil {
			if err := s.syncMaterials(ctx, tx, job, req.Materials, domain.SyncModeReplace); err != nil {
				return err
			}
		}
		if req.Labor != nil {
			if err := s.syncLabor(tx, job, req.Labor, domain.SyncModeReplace); err != nil {
				return err
			}
		}

		CalculateTotals(job)
		if actorID != "" {
			job.UpdatedByID = actorID
		}
		return tx.Omit(clause.Associations).Save(job).Error
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, job.ID)
}

func (s *JobCardService) applyScalarUpdates(tx *gorm.DB, job *domain.JobCard, req *domain.UpdateJobCardRequest) error {
	if req.CustomerID != nil {
		var customer domain.Customer
		if err := tx.First(&customer, "id = ?", *req.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to get customer: %w", err)
		}
		job.CustomerID = req.CustomerID
	}
	if req.JobType != nil {
		if !req.JobType.IsValid() {
			return fmt.Errorf("%w: unknown job type %q", ErrInvalidInput, *req.JobType)
		}
		job.JobType = *req.JobType
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *req.Priority)
		}
		job.Priority = *req.Priority
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Notes != nil {
		job.Notes = *req.Notes
	}
	if req.StartDate != nil {
		job.StartDate = req.StartDate
	}
	if req.DueDate != nil {
		job.DueDate = req.DueDate
	}
	if req.TechnicianID != nil {
		if *req.TechnicianID == "" {
			job.TechnicianID = nil
		} else {
			technician, err := s.validateTechnician(tx, req.TechnicianID, job.BranchID)
			if err != nil {
				return err
			}
			job.TechnicianID = &technician.ID
		}
	}
	if req.VatRate != nil {
		job.VatRate = *req.VatRate
	}
	if req.AmountPaid != nil {
		job.AmountPaid = *req.AmountPaid
	}
	if req.BomProductID != nil {
		job.BomProductID = req.BomProductID
	}
	if req.ProductionQty != nil {
		job.ProductionQty = *req.ProductionQty
	}
	return nil
}

// UpdateMaterials replaces or appends material lines and recomputes totals
func (s *JobCardService) UpdateMaterials(ctx context.Context, id uuid.UUID, req *domain.SyncMaterialsRequest, actorID string) (*domain.JobCardDTO, error) {
	return s.updateLines(ctx, id, actorID, req.Mode, func(tx *gorm.DB, job *domain.JobCard) error {
		return s.syncMaterials(ctx, tx, job, req.Materials, req.Mode)
	})
}

// UpdateLabor replaces or appends labor lines and recomputes totals
func (s *JobCardService) UpdateLabor(ctx context.Context, id uuid.UUID, req *domain.SyncLaborRequest, actorID string) (*domain.JobCardDTO, error) {
	return s.updateLines(ctx, id, actorID, req.Mode, func(tx *gorm.DB, job *domain.JobCard) error {
		return s.syncLabor(tx, job, req.Labor, req.Mode)
	})
}

func (s *JobCardService) updateLines(ctx context.Context, id uuid.UUID, actorID string, mode domain.LineSyncMode, sync func(tx *gorm.DB, job *domain.JobCard) error) (*domain.JobCardDTO, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown sync mode %q", ErrInvalidInput, mode)
	}

	job, err := s.jobCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobCardNotFound
		}
		return nil, fmt.Errorf("failed to get job card: %w", err)
	}

	if job.Status == domain.JobStatusCancelled {
		return nil, fmt.Errorf("%w: status is %s", ErrJobCardNotEditable, job.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := sync(tx, job); err != nil {
			return err
		}
		CalculateTotals(job)
		if actorID != "" {
			job.UpdatedByID = actorID
		}
		return tx.Omit(clause.Associations).Save(job).Error
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, job.ID)
}

// AddNote appends an immutable note to a job card. Notes never affect totals.
func (s *JobCardService) AddNote(ctx context.Context, id uuid.UUID, note string, actorID string) (*domain.JobCardNoteDTO, error) {
	if _, err := s.jobCardRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobCardNotFound
		}
		return nil, fmt.Errorf("failed to get job card: %w", err)
	}

	entry := domain.JobCardNote{
		JobCardID: id,
		Note:      note,
		AuthorID:  actorID,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}

	dto := mapper.ToJobCardNoteDTO(&entry)
	return &dto, nil
}

// Delete removes a job card and its lines. Invoiced job cards require
// force; the invoice and any inventory transactions are unlinked, never
// deleted.
func (s *JobCardService) Delete(ctx context.Context, id uuid.UUID, force bool) error {
	job, err := s.jobCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobCardNotFound
		}
		return fmt.Errorf("failed to get job card: %w", err)
	}

	if (job.InvoiceGenerated || job.InvoiceID != nil) && !force {
		return ErrJobCardHasInvoice
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if job.InvoiceID != nil {
			if err := tx.Model(&domain.JobCard{}).Where("id = ?", id).Updates(map[string]interface{}{
				"invoice_id":        nil,
				"invoice_generated": false,
			}).Error; err != nil {
				return fmt.Errorf("failed to unlink invoice: %w", err)
			}
		}

		if err := repository.NewInventoryTransactionRepository(tx).UnlinkJobCard(ctx, id); err != nil {
			return fmt.Errorf("failed to unlink inventory transactions: %w", err)
		}

		for _, child := range []interface{}{
			&domain.JobCardMaterial{},
			&domain.JobCardLabor{},
			&domain.JobCardNote{},
		} {
			if err := tx.Where("job_card_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete job card lines: %w", err)
			}
		}

		return tx.Delete(&domain.JobCard{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("deleted job card",
		zap.String("jobCardID", id.String()),
		zap.String("jobNumber", job.JobNumber),
		zap.Bool("force", force))
	return nil
}

// ListTechnicians returns active users assignable to job cards. When the
// strict role filter yields nothing the filter is widened to any active
// user so the picker is never empty on thin installations.
func (s *JobCardService) ListTechnicians(ctx context.Context, role string, branchID *uuid.UUID, search string) ([]domain.TechnicianDTO, error) {
	if role == "" {
		role = domain.RoleTechnician
	}

	users, err := s.userRepo.ListActiveByRole(ctx, role, branchID, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}
	if len(users) == 0 {
		users, err = s.userRepo.ListActiveByRole(ctx, "", branchID, search)
		if err != nil {
			return nil, fmt.Errorf("failed to list technicians: %w", err)
		}
	}

	dtos := make([]domain.TechnicianDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToTechnicianDTO(&users[i])
	}
	return dtos, nil
}

// validateTechnician resolves the referenced user and checks availability:
// the user must be active and either branch-agnostic or assigned to the
// job card's branch.
func (s *JobCardService) validateTechnician(tx *gorm.DB, id *string, branchID uuid.UUID) (*domain.User, error) {
	if id == nil || *id == "" {
		return nil, nil
	}

	var user domain.User
	if err := tx.First(&user, "id = ?", *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnicianNotFound
		}
		return nil, fmt.Errorf("failed to get technician: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", ErrTechnicianNotAvailable, user.DisplayName)
	}
	if user.BranchID != nil && *user.BranchID != branchID {
		return nil, fmt.Errorf("%w: %s works at a different branch", ErrTechnicianNotAvailable, user.DisplayName)
	}
	return &user, nil
}

func (s *JobCardService) reload(ctx context.Context, id uuid.UUID) (*domain.JobCardDTO, error) {
	job, err := s.jobCardRepo.GetByIDWithNotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job card: %w", err)
	}
	dto := mapper.ToJobCardDTO(job)
	return &dto, nil
}
