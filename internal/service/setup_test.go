package service_test

import (
	"testing"

	"github.com/norvik-erp/jobcard-api/internal/repository"
	"github.com/norvik-erp/jobcard-api/internal/service"
	"github.com/norvik-erp/jobcard-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newTestService wires a JobCardService with its in-process collaborators
// against an isolated in-memory database.
func newTestService(t *testing.T) (*gorm.DB, *service.JobCardService) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	inventory := service.NewInventoryService(log)
	invoicing := service.NewInvoiceService(log)
	manufacturing := service.NewManufacturingService(inventory, log)

	svc := service.NewJobCardService(
		db,
		repository.NewJobCardRepository(db),
		repository.NewBranchRepository(db),
		repository.NewUserRepository(db),
		repository.NewCustomerRepository(db),
		service.NewJobNumberService(log),
		inventory,
		invoicing,
		manufacturing,
		log,
	)

	return db, svc
}
