// Package mapper converts database models to API DTOs
package mapper

import (
	"github.com/norvik-erp/jobcard-api/internal/domain"
)

// ToJobCardDTO converts a JobCard model to its API representation
func ToJobCardDTO(job *domain.JobCard) domain.JobCardDTO {
	dto := domain.JobCardDTO{
		ID:                 job.ID,
		JobNumber:          job.JobNumber,
		CustomerID:         job.CustomerID,
		BranchID:           job.BranchID,
		Status:             job.Status,
		JobType:            job.JobType,
		Priority:           job.Priority,
		Description:        job.Description,
		Notes:              job.Notes,
		StartDate:          job.StartDate,
		DueDate:            job.DueDate,
		CompletedDate:      job.CompletedDate,
		TechnicianID:       job.TechnicianID,
		Currency:           job.Currency,
		VatRate:            job.VatRate,
		TotalMaterialCost:  job.TotalMaterialCost,
		TotalMaterialPrice: job.TotalMaterialPrice,
		TotalLaborCost:     job.TotalLaborCost,
		TotalLaborPrice:    job.TotalLaborPrice,
		Subtotal:           job.Subtotal,
		VatAmount:          job.VatAmount,
		TotalAmount:        job.TotalAmount,
		AmountPaid:         job.AmountPaid,
		AmountDue:          job.AmountDue,
		InvoiceGenerated:   job.InvoiceGenerated,
		BomProductID:       job.BomProductID,
		ProductionQty:      job.ProductionQty,
		CreatedAt:          job.CreatedAt,
		UpdatedAt:          job.UpdatedAt,
	}

	if job.Customer != nil {
		dto.CustomerName = job.Customer.Name
	}
	if job.Branch != nil {
		dto.BranchName = job.Branch.Name
	}
	if job.Technician != nil {
		dto.TechnicianName = job.Technician.DisplayName
	}
	if job.Invoice != nil {
		invoice := ToInvoiceDTO(job.Invoice)
		dto.Invoice = &invoice
	}

	for i := range job.Materials {
		dto.Materials = append(dto.Materials, ToJobCardMaterialDTO(&job.Materials[i]))
	}
	for i := range job.Labor {
		dto.Labor = append(dto.Labor, ToJobCardLaborDTO(&job.Labor[i]))
	}
	for i := range job.JobNotes {
		dto.JobNotes = append(dto.JobNotes, ToJobCardNoteDTO(&job.JobNotes[i]))
	}

	return dto
}

// ToJobCardMaterialDTO converts a material line to its API representation
func ToJobCardMaterialDTO(m *domain.JobCardMaterial) domain.JobCardMaterialDTO {
	dto := domain.JobCardMaterialDTO{
		ID:                     m.ID,
		ProductID:              m.ProductID,
		Quantity:               m.Quantity,
		UnitCost:               m.UnitCost,
		UnitPrice:              m.UnitPrice,
		TotalCost:              m.TotalCost,
		TotalPrice:             m.TotalPrice,
		IsIssued:               m.IsIssued,
		IssuedAt:               m.IssuedAt,
		InventoryTransactionID: m.InventoryTransactionID,
		Notes:                  m.Notes,
	}
	if m.Product != nil {
		dto.ProductName = m.Product.Name
	}
	return dto
}

// ToJobCardLaborDTO converts a labor line to its API representation
func ToJobCardLaborDTO(l *domain.JobCardLabor) domain.JobCardLaborDTO {
	dto := domain.JobCardLaborDTO{
		ID:           l.ID,
		Description:  l.Description,
		Hours:        l.Hours,
		Rate:         l.Rate,
		CostRate:     l.CostRate,
		TotalPrice:   l.TotalPrice,
		TotalCost:    l.TotalCost,
		TechnicianID: l.TechnicianID,
		Notes:        l.Notes,
	}
	if l.Technician != nil {
		dto.TechnicianName = l.Technician.DisplayName
	}
	return dto
}

// ToJobCardNoteDTO converts a note to its API representation
func ToJobCardNoteDTO(n *domain.JobCardNote) domain.JobCardNoteDTO {
	return domain.JobCardNoteDTO{
		ID:        n.ID,
		Note:      n.Note,
		AuthorID:  n.AuthorID,
		CreatedAt: n.CreatedAt,
	}
}

// ToInvoiceDTO converts an invoice to its API representation
func ToInvoiceDTO(i *domain.Invoice) domain.InvoiceDTO {
	return domain.InvoiceDTO{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		Status:        i.Status,
		DueDate:       i.DueDate,
		Subtotal:      i.Subtotal,
		VatAmount:     i.VatAmount,
		TotalAmount:   i.TotalAmount,
		AmountPaid:    i.AmountPaid,
		AmountDue:     i.AmountDue(),
	}
}

// ToTechnicianDTO converts a user to the technician picker representation
func ToTechnicianDTO(u *domain.User) domain.TechnicianDTO {
	dto := domain.TechnicianDTO{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Phone:       u.Phone,
		BranchID:    u.BranchID,
	}
	if u.Branch != nil {
		dto.BranchName = u.Branch.Name
	}
	return dto
}
