package jobs

import (
	"context"
	"time"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OverdueSweepAuthor marks notes written by the overdue sweep
const OverdueSweepAuthor = "system"

// OverdueSweep flags scheduled and in-progress job cards whose due date
// has passed by appending a system note. Each job card gets at most one
// overdue note per day.
type OverdueSweep struct {
	db          *gorm.DB
	jobCardRepo *repository.JobCardRepository
	logger      *zap.Logger
}

// NewOverdueSweep creates a new OverdueSweep
func NewOverdueSweep(db *gorm.DB, jobCardRepo *repository.JobCardRepository, logger *zap.Logger) *OverdueSweep {
	return &OverdueSweep{db: db, jobCardRepo: jobCardRepo, logger: logger}
}

// Run executes one sweep
func (j *OverdueSweep) Run(ctx context.Context) {
	overdue, err := j.jobCardRepo.ListOverdue(ctx)
	if err != nil {
		j.logger.Error("overdue sweep failed to list job cards", zap.Error(err))
		return
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	flagged := 0
	for i := range overdue {
		job := &overdue[i]

		count, err := j.jobCardRepo.CountNotesSince(ctx, job.ID, OverdueSweepAuthor, startOfDay)
		if err != nil {
			j.logger.Error("overdue sweep failed to check notes",
				zap.Error(err), zap.String("jobCardID", job.ID.String()))
			continue
		}
		if count > 0 {
			continue
		}

		note := domain.JobCardNote{
			JobCardID: job.ID,
			Note:      "Job card is overdue: due date " + job.DueDate.Format("2006-01-02") + " has passed",
			AuthorID:  OverdueSweepAuthor,
		}
		if err := j.db.WithContext(ctx).Create(&note).Error; err != nil {
			j.logger.Error("overdue sweep failed to add note",
				zap.Error(err), zap.String("jobCardID", job.ID.String()))
			continue
		}
		flagged++
	}

	j.logger.Info("overdue sweep finished",
		zap.Int("overdue", len(overdue)),
		zap.Int("flagged", flagged))
}
