package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/service"
	"github.com/norvik-erp/jobcard-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func stockOf(t *testing.T, db *gorm.DB, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	var product domain.Product
	require.NoError(t, db.First(&product, "id = ?", productID).Error)
	return product.StockQuantity
}

func TestChangeStatusRejectsInvalidTarget(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{BranchID: branch.ID}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobCardStatus("shipped"), "", false)
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestChangeStatusRejectsIllegalTransition(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{BranchID: branch.ID}, "")
	require.NoError(t, err)

	// draft cannot jump straight to closed
	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusClosed, "", false)
	assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)

	// terminal states allow nothing
	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusCancelled, "", false)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusDraft, "", false)
	assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID: branch.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("4")},
		},
	}, "")
	require.NoError(t, err)

	same, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusDraft, "", false)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusDraft, same.Status)
	assert.True(t, stockOf(t, db, product.ID).Equal(dec("100")), "no side effects on no-op")
}

func TestStartIssuesMaterials(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID: branch.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("4")},
		},
	}, "user-1")
	require.NoError(t, err)

	started, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, started.Status)

	assert.True(t, stockOf(t, db, product.ID).Equal(dec("96")))
	require.Len(t, started.Materials, 1)
	assert.True(t, started.Materials[0].IsIssued)
	assert.NotNil(t, started.Materials[0].IssuedAt)
	assert.NotNil(t, started.Materials[0].InventoryTransactionID)

	var txn domain.InventoryTransaction
	require.NoError(t, db.First(&txn, "id = ?", *started.Materials[0].InventoryTransactionID).Error)
	assert.Equal(t, domain.TransactionTypeJobIssue, txn.TransactionType)
	assert.True(t, txn.QuantityDelta.Equal(dec("-4")))
	assert.Contains(t, txn.Reference, job.JobNumber)
}

func TestIssuanceIsIdempotentAcrossTransitions(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID: branch.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("4")},
		},
	}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "", false)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusCompleted, "", false)
	require.NoError(t, err)

	// Completing must not deduct the already-issued line again
	assert.True(t, stockOf(t, db, product.ID).Equal(dec("96")))

	var issueCount int64
	require.NoError(t, db.Model(&domain.InventoryTransaction{}).
		Where("transaction_type = ?", domain.TransactionTypeJobIssue).
		Count(&issueCount).Error)
	assert.Equal(t, int64(1), issueCount)
}

func TestCompleteIssuesLateMaterials(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)
	extra := testutil.CreateTestProduct(t, db, "Extra", 2, 4)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID: branch.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("4")},
		},
	}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "", false)
	require.NoError(t, err)

	// A line added mid-job is still unissued
	_, err = svc.UpdateMaterials(ctx, job.ID, &domain.SyncMaterialsRequest{
		Mode: domain.SyncModeAppend,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: extra.ID, Quantity: dec("2")},
		},
	}, "")
	require.NoError(t, err)

	completed, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusCompleted, "", false)
	require.NoError(t, err)
	assert.NotNil(t, completed.CompletedDate)

	assert.True(t, stockOf(t, db, product.ID).Equal(dec("96")))
	assert.True(t, stockOf(t, db, extra.ID).Equal(dec("98")), "late line issued on completion")
}

func TestCancelReturnsIssuedMaterials(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID: branch.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("4")},
		},
	}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "", false)
	require.NoError(t, err)
	assert.True(t, stockOf(t, db, product.ID).Equal(dec("96")))

	cancelled, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusCancelled, "", false)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, cancelled.Status)

	// Stock restored, issuance markers cleared, audit rows kept
	assert.True(t, stockOf(t, db, product.ID).Equal(dec("100")))
	require.Len(t, cancelled.Materials, 1)
	assert.False(t, cancelled.Materials[0].IsIssued)
	assert.Nil(t, cancelled.Materials[0].IssuedAt)
	assert.Nil(t, cancelled.Materials[0].InventoryTransactionID)

	var txnCount int64
	require.NoError(t, db.Model(&domain.InventoryTransaction{}).Count(&txnCount).Error)
	assert.Equal(t, int64(2), txnCount, "issue and return both stay in the audit trail")
}

func TestCancelWithoutIssuedMaterialsMovesNoStock(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID: branch.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("4")},
		},
	}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusCancelled, "", false)
	require.NoError(t, err)

	assert.True(t, stockOf(t, db, product.ID).Equal(dec("100")))
	var txnCount int64
	require.NoError(t, db.Model(&domain.InventoryTransaction{}).Count(&txnCount).Error)
	assert.Zero(t, txnCount)
}

func TestCloseRejectedWhileInvoiceOutstanding(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	customer := testutil.CreateTestCustomer(t, db, "Acme")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID:   branch.ID,
		CustomerID: &customer.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("2")},
		},
	}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "", false)
	require.NoError(t, err)
	invoiced, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusInvoiced, "", true)
	require.NoError(t, err)
	require.NotNil(t, invoiced.Invoice)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusClosed, "", false)
	assert.ErrorIs(t, err, service.ErrInvoiceOutstanding)

	// Pay the invoice in full, then closing succeeds
	require.NoError(t, db.Model(&domain.Invoice{}).
		Where("id = ?", invoiced.Invoice.ID).
		Update("amount_paid", invoiced.Invoice.TotalAmount).Error)

	closed, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusClosed, "", false)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusClosed, closed.Status)
}

func TestInvoicedStatusGeneratesInvoiceOnce(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	customer := testutil.CreateTestCustomer(t, db, "Acme")
	product := testutil.CreateTestProduct(t, db, "Part", 5, 10)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID:   branch.ID,
		CustomerID: &customer.ID,
		Materials: []domain.JobCardMaterialInput{
			{ProductID: product.ID, Quantity: dec("2")},
		},
	}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "", false)
	require.NoError(t, err)

	// Manual generation first, then the transition must not create a second invoice
	manual, err := svc.GenerateInvoice(ctx, job.ID, "", false, false)
	require.NoError(t, err)
	require.NotNil(t, manual.Invoice)

	invoiced, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusInvoiced, "", true)
	require.NoError(t, err)
	assert.Equal(t, manual.Invoice.ID, invoiced.Invoice.ID)

	var invoiceCount int64
	require.NoError(t, db.Model(&domain.Invoice{}).Count(&invoiceCount).Error)
	assert.Equal(t, int64(1), invoiceCount)
}

func TestProductionJobCompletesManufacturing(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	testutil.CreateTestHeadquarters(t, db)
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")

	finished := testutil.CreateTestProduct(t, db, "Cabinet", 0, 500)
	board := testutil.CreateTestProduct(t, db, "Board", 10, 15)
	screws := testutil.CreateTestProduct(t, db, "Screws", 1, 2)

	components := []domain.ProductComponent{
		{ProductID: finished.ID, ComponentID: board.ID, Quantity: dec("4")},
		{ProductID: finished.ID, ComponentID: screws.ID, Quantity: dec("16")},
	}
	for i := range components {
		require.NoError(t, db.Create(&components[i]).Error)
	}

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID:      branch.ID,
		JobType:       domain.JobTypeProduction,
		BomProductID:  &finished.ID,
		ProductionQty: dec("2"),
		Labor: []domain.JobCardLaborInput{
			{Description: "Assembly", Hours: dec("3"), Rate: dec("200")},
		},
	}, "maker")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "maker", false)
	require.NoError(t, err)
	completed, err := svc.ChangeStatus(ctx, job.ID, domain.JobStatusCompleted, "maker", false)
	require.NoError(t, err)

	// Components consumed, finished goods booked in
	assert.True(t, stockOf(t, db, board.ID).Equal(dec("92")))
	assert.True(t, stockOf(t, db, screws.ID).Equal(dec("68")))
	assert.True(t, stockOf(t, db, finished.ID).Equal(dec("102")))

	// Production leaves an audit note on the job card
	detail, err := svc.Get(ctx, completed.ID, true)
	require.NoError(t, err)
	require.NotEmpty(t, detail.JobNotes)
	assert.Contains(t, detail.JobNotes[len(detail.JobNotes)-1].Note, "Produced")

	var productionIn domain.InventoryTransaction
	require.NoError(t, db.First(&productionIn, "transaction_type = ?", domain.TransactionTypeProductionIn).Error)
	assert.Contains(t, productionIn.Note, "labor 600", "billed labor price feeds the production cost")
}

func TestProductionDefaultsQuantityToOne(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	testutil.CreateTestHeadquarters(t, db)
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")
	finished := testutil.CreateTestProduct(t, db, "Bench", 0, 300)

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{
		BranchID:     branch.ID,
		JobType:      domain.JobTypeProduction,
		BomProductID: &finished.ID,
	}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "", false)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusCompleted, "", false)
	require.NoError(t, err)

	assert.True(t, stockOf(t, db, finished.ID).Equal(dec("101")))
}

func TestNonProductionJobSkipsManufacturing(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	branch := testutil.CreateTestBranch(t, db, "Oslo", "OSL")

	job, err := svc.Create(ctx, &domain.CreateJobCardRequest{BranchID: branch.ID}, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusInProgress, "", false)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, job.ID, domain.JobStatusCompleted, "", false)
	require.NoError(t, err)

	var txnCount int64
	require.NoError(t, db.Model(&domain.InventoryTransaction{}).Count(&txnCount).Error)
	assert.Zero(t, txnCount)
}
