package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChangeStatus moves a job card to the target status. The transition is
// checked against the status machine, side effects run before the status
// write, and the whole operation shares one transaction:
//
//	in_progress          issue unissued materials
//	completed, invoiced  issue unissued materials, run production for
//	                     production jobs, stamp completed date; invoiced
//	                     additionally generates the invoice when requested
//	closed               rejected while the linked invoice has a balance
//	cancelled            return issued materials
//
// Requesting the current status is a no-op.
func (s *JobCardService) ChangeStatus(ctx context.Context, id uuid.UUID, target domain.JobCardStatus, actorID string, autoInvoice bool) (*domain.JobCardDTO, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	job, err := s.jobCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobCardNotFound
		}
		return nil, fmt.Errorf("failed to get job card: %w", err)
	}

	if job.Status == target {
		return s.reload(ctx, job.ID)
	}

	if !job.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s (allowed: %v)",
			ErrInvalidStatusTransition, job.Status, target, job.Status.AllowedTransitions())
	}

	from := job.Status
	err = s.db.Transaction(func(tx *gorm.DB) error {
		switch target {
		case domain.JobStatusInProgress:
			if err := s.issueMaterials(ctx, tx, job, actorID); err != nil {
				return err
			}

		case domain.JobStatusCompleted, domain.JobStatusInvoiced:
			if err := s.issueMaterials(ctx, tx, job, actorID); err != nil {
				return err
			}
			// Production runs once, on the first completion
			if job.CompletedDate == nil {
				if job.JobType.IsProduction() && job.BomProductID != nil {
					if err := s.completeProduction(ctx, tx, job, actorID); err != nil {
						return err
					}
				}
				now := time.Now().UTC()
				job.CompletedDate = &now
			}
			CalculateTotals(job)
			if target == domain.JobStatusInvoiced && autoInvoice && !job.InvoiceGenerated {
				if err := s.generateInvoiceTx(ctx, tx, job, actorID, false, false); err != nil {
					return err
				}
			}

		case domain.JobStatusClosed:
			if job.InvoiceID != nil {
				invoice, err := repository.NewInvoiceRepository(tx).GetByID(ctx, *job.InvoiceID)
				if err != nil {
					return fmt.Errorf("failed to get invoice: %w", err)
				}
				if invoice.AmountDue().IsPositive() {
					return fmt.Errorf("%w: %s outstanding on %s",
						ErrInvoiceOutstanding, invoice.AmountDue(), invoice.InvoiceNumber)
				}
			}

		case domain.JobStatusCancelled:
			if err := s.returnMaterials(ctx, tx, job, actorID); err != nil {
				return err
			}
		}

		job.Status = target
		if actorID != "" {
			job.UpdatedByID = actorID
		}
		return tx.Omit(clause.Associations).Save(job).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job card status changed",
		zap.String("jobCardID", job.ID.String()),
		zap.String("jobNumber", job.JobNumber),
		zap.String("from", string(from)),
		zap.String("to", string(target)))

	return s.reload(ctx, job.ID)
}
