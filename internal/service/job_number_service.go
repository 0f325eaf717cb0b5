package service

import (
	"context"
	"fmt"
	"time"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultJobNumberPrefix is used when a branch has no short code
const DefaultJobNumberPrefix = "JC"

// JobNumberService generates unique, branch-scoped, date-partitioned job
// numbers.
//
// Format: {BranchCode}-{YYYYMMDD}-{SEQUENCE}
// Example: OSL-20250114-0001
type JobNumberService struct {
	logger *zap.Logger
}

// NewJobNumberService creates a new JobNumberService
func NewJobNumberService(logger *zap.Logger) *JobNumberService {
	return &JobNumberService{logger: logger}
}

// Generate produces the next job number for a branch. It must run inside
// the same transaction as the job card insert; pass that transaction as tx.
func (s *JobNumberService) Generate(ctx context.Context, tx *gorm.DB, branch *domain.Branch) (string, error) {
	prefix := branch.Code
	if prefix == "" {
		prefix = DefaultJobNumberPrefix
	}

	dateKey := time.Now().UTC().Format("20060102")
	numberPrefix := fmt.Sprintf("%s-%s-", prefix, dateKey)

	seqRepo := repository.NewJobNumberSequenceRepository(tx)
	nextSeq, err := seqRepo.NextSequence(ctx, repository.SequenceScopeJobCard, branch.ID, dateKey, numberPrefix)
	if err != nil {
		s.logger.Error("failed to get next job number sequence",
			zap.String("branchID", branch.ID.String()),
			zap.String("dateKey", dateKey),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate job number: %w", err)
	}

	number := fmt.Sprintf("%s%04d", numberPrefix, nextSeq)

	s.logger.Info("generated job number",
		zap.String("number", number),
		zap.String("branchID", branch.ID.String()),
		zap.Int("sequence", nextSeq))

	return number, nil
}
