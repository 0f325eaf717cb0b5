package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobNumberSequenceRepository hands out strictly increasing sequence numbers
// per branch and date. A dedicated counter row with a row lock serializes
// concurrent creators for the same branch/day, so two callers can never
// compute the same sequence.
type JobNumberSequenceRepository struct {
	db *gorm.DB
}

func NewJobNumberSequenceRepository(db *gorm.DB) *JobNumberSequenceRepository {
	return &JobNumberSequenceRepository{db: db}
}

// Sequence scopes. Job cards and invoices share the counter table but
// never a counter row.
const (
	SequenceScopeJobCard = "job_card"
	SequenceScopeInvoice = "invoice"
)

// NextSequence atomically retrieves and increments the sequence for a
// scope/branch/date. When no counter row exists yet, it is seeded from the
// highest sequence found among existing numbers with the given prefix,
// so legacy rows created before the counter table keep the numbering
// contiguous. Malformed legacy numbers count as sequence 0.
func (r *JobNumberSequenceRepository) NextSequence(ctx context.Context, scope string, branchID uuid.UUID, dateKey, numberPrefix string) (int, error) {
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.JobNumberSequence

		query := tx.Where("branch_id = ? AND date_key = ? AND scope = ?", branchID, dateKey, scope)
		if tx.Dialector.Name() == "postgres" {
			// sqlite (tests) has no row locks
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		result := query.First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			last, err := r.highestExistingSequence(tx, scope, numberPrefix)
			if err != nil {
				return err
			}
			nextSeq = last + 1
			seq = domain.JobNumberSequence{
				BranchID:     branchID,
				DateKey:      dateKey,
				Scope:        scope,
				LastSequence: nextSeq,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create job number sequence: %w", err)
			}
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get job number sequence: %w", result.Error)
		}

		nextSeq = seq.LastSequence + 1
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"last_sequence": nextSeq,
			"updated_at":    time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update job number sequence: %w", err)
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return nextSeq, nil
}

// highestExistingSequence scans numbers with the given prefix and returns
// the highest trailing sequence. Numbers that do not parse are treated as
// sequence 0, never an error.
func (r *JobNumberSequenceRepository) highestExistingSequence(tx *gorm.DB, scope, numberPrefix string) (int, error) {
	var numbers []string
	var err error
	switch scope {
	case SequenceScopeInvoice:
		err = tx.Model(&domain.Invoice{}).
			Where("invoice_number LIKE ?", numberPrefix+"%").
			Pluck("invoice_number", &numbers).Error
	default:
		err = tx.Model(&domain.JobCard{}).
			Where("job_number LIKE ?", numberPrefix+"%").
			Pluck("job_number", &numbers).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to scan existing numbers: %w", err)
	}

	highest := 0
	for _, number := range numbers {
		suffix := strings.TrimPrefix(number, numberPrefix)
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest, nil
}
