package service

import "errors"

// Common service errors
var (
	// ErrJobCardNotFound is returned when a job card does not exist
	ErrJobCardNotFound = errors.New("job card not found")

	// ErrBranchNotFound is returned when a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrProductNotFound is returned when a product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrCustomerNotFound is returned when a customer does not exist
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrTechnicianNotFound is returned when a referenced user does not exist
	ErrTechnicianNotFound = errors.New("technician not found")

	// ErrTechnicianNotAvailable is returned when a technician is inactive
	// or assigned to a different branch than the job card
	ErrTechnicianNotAvailable = errors.New("technician not available")

	// ErrInvalidStatus is returned when the requested status is not a
	// node of the transition graph
	ErrInvalidStatus = errors.New("invalid job card status")

	// ErrInvalidStatusTransition is returned when the requested status is
	// not reachable from the current status
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrJobCardNotEditable is returned when updating a cancelled or closed job card
	ErrJobCardNotEditable = errors.New("job card can no longer be edited")

	// ErrProductBranchMismatch is returned when a material's product belongs
	// to a different branch than the job card
	ErrProductBranchMismatch = errors.New("product belongs to a different branch")

	// ErrCustomerRequired is returned when invoicing a job card without a customer
	ErrCustomerRequired = errors.New("job card has no customer to invoice")

	// ErrNoBillableItems is returned when invoice generation finds nothing to bill
	ErrNoBillableItems = errors.New("no billable items available")

	// ErrInvoiceOutstanding is returned when closing a job card whose
	// linked invoice still has an amount due
	ErrInvoiceOutstanding = errors.New("linked invoice has an outstanding amount due")

	// ErrJobCardHasInvoice is returned when deleting an invoiced job card without force
	ErrJobCardHasInvoice = errors.New("job card has a linked invoice; use force to delete")

	// ErrInventoryUpdateFailed is returned when the inventory collaborator rejects a movement
	ErrInventoryUpdateFailed = errors.New("inventory update failed")

	// ErrInvoiceCreationFailed is returned when the invoicing collaborator fails
	ErrInvoiceCreationFailed = errors.New("invoice creation failed")

	// ErrManufacturingFailed is returned when the manufacturing collaborator fails
	ErrManufacturingFailed = errors.New("production completion failed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
