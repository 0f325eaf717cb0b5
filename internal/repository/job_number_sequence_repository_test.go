package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"github.com/norvik-erp/jobcard-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSequenceIsMonotonic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	repo := repository.NewJobNumberSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 5; want++ {
		got, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, branch.ID, "20250114", "OSL-20250114-")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNextSequenceIsolatedPerBranchAndDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	oslo := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	bergen := testutil.CreateTestBranch(t, db, "Bergen", "BGO")
	repo := repository.NewJobNumberSequenceRepository(db)
	ctx := context.Background()

	first, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, oslo.ID, "20250114", "OSL-20250114-")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	// Different branch, same date: counter starts fresh
	other, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, bergen.ID, "20250114", "BGO-20250114-")
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	// Same branch, next day: counter starts fresh
	nextDay, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, oslo.ID, "20250115", "OSL-20250115-")
	require.NoError(t, err)
	assert.Equal(t, 1, nextDay)
}

func TestNextSequenceSeedsFromExistingNumbers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	repo := repository.NewJobNumberSequenceRepository(db)
	ctx := context.Background()

	numbers := []string{
		"OSL-20250114-0002",
		"OSL-20250114-0011",
		"OSL-20250114-garbage",
		"OSL-20250113-0099", // different date, different prefix
	}
	for _, number := range numbers {
		job := domain.JobCard{
			JobNumber: number,
			BranchID:  branch.ID,
			Status:    domain.JobStatusDraft,
			JobType:   domain.JobTypeService,
			Priority:  domain.JobPriorityNormal,
			Currency:  "NOK",
		}
		require.NoError(t, db.Create(&job).Error)
	}

	got, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, branch.ID, "20250114", "OSL-20250114-")
	require.NoError(t, err)
	assert.Equal(t, 12, got, "seeds past the highest parseable number; malformed rows count as 0")
}

func TestNextSequenceScopesAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	repo := repository.NewJobNumberSequenceRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		got, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, branch.ID, "20250114", "OSL-20250114-")
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}

	got, err := repo.NextSequence(ctx, repository.SequenceScopeInvoice, branch.ID, "20250114", "INV-20250114-")
	require.NoError(t, err)
	assert.Equal(t, 1, got, "invoice counter is not advanced by job card numbering")
}

func TestNextSequenceSurvivesCounterRowLoss(t *testing.T) {
	db := testutil.SetupTestDB(t)
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	repo := repository.NewJobNumberSequenceRepository(db)
	ctx := context.Background()

	seq, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, branch.ID, "20250114", "OSL-20250114-")
	require.NoError(t, err)
	job := domain.JobCard{
		JobNumber: fmt.Sprintf("OSL-20250114-%04d", seq),
		BranchID:  branch.ID,
		Status:    domain.JobStatusDraft,
		JobType:   domain.JobTypeService,
		Priority:  domain.JobPriorityNormal,
		Currency:  "NOK",
	}
	require.NoError(t, db.Create(&job).Error)

	// Dropping the counter row simulates a restore from a pre-counter backup
	require.NoError(t, db.Where("1 = 1").Delete(&domain.JobNumberSequence{}).Error)

	got, err := repo.NextSequence(ctx, repository.SequenceScopeJobCard, branch.ID, "20250114", "OSL-20250114-")
	require.NoError(t, err)
	assert.Equal(t, 2, got, "reseeds from the numbers already issued")
}
