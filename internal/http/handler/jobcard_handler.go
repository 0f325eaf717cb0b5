package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"github.com/norvik-erp/jobcard-api/internal/service"
	"go.uber.org/zap"
)

// JobCardHandler exposes the job card engine over HTTP
type JobCardHandler struct {
	jobCardService *service.JobCardService
	logger         *zap.Logger
}

// NewJobCardHandler creates a new JobCardHandler
func NewJobCardHandler(jobCardService *service.JobCardService, logger *zap.Logger) *JobCardHandler {
	return &JobCardHandler{jobCardService: jobCardService, logger: logger}
}

// actorID reads the acting user from the X-Actor-ID request header.
// Identity is established upstream by the gateway.
func actorID(r *http.Request) string {
	return r.Header.Get("X-Actor-ID")
}

// Create handles POST /job-cards
func (h *JobCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateJobCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobCardService.Create(r.Context(), &req, actorID(r))
	if err != nil {
		h.logger.Error("failed to create job card", zap.Error(err))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// Get handles GET /job-cards/{id}
func (h *JobCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	includeNotes := r.URL.Query().Get("includeNotes") == "true"

	job, err := h.jobCardService.Get(r.Context(), id, includeNotes)
	if err != nil {
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// List handles GET /job-cards
func (h *JobCardHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filters := &repository.JobCardFilters{
		Search: q.Get("search"),
	}
	if v := q.Get("branchId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid branch ID")
			return
		}
		filters.BranchID = &id
	}
	if v := q.Get("customerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid customer ID")
			return
		}
		filters.CustomerID = &id
	}
	if v := q.Get("technicianId"); v != "" {
		filters.TechnicianID = &v
	}
	if v := q.Get("status"); v != "" {
		status := domain.JobCardStatus(v)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filters.Status = &status
	}
	if v := q.Get("jobType"); v != "" {
		jobType := domain.JobType(v)
		if !jobType.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid job type filter")
			return
		}
		filters.JobType = &jobType
	}

	sortBy := repository.JobCardSortOption(q.Get("sortBy"))
	if sortBy == "" {
		sortBy = repository.JobCardSortByCreatedDesc
	}

	result, err := h.jobCardService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list job cards", zap.Error(err))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Update handles PUT /job-cards/{id}
func (h *JobCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	var req domain.UpdateJobCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobCardService.Update(r.Context(), id, &req, actorID(r))
	if err != nil {
		h.logger.Error("failed to update job card", zap.Error(err), zap.String("job_card_id", id.String()))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// UpdateMaterials handles PUT /job-cards/{id}/materials
func (h *JobCardHandler) UpdateMaterials(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	var req domain.SyncMaterialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobCardService.UpdateMaterials(r.Context(), id, &req, actorID(r))
	if err != nil {
		h.logger.Error("failed to update materials", zap.Error(err), zap.String("job_card_id", id.String()))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// UpdateLabor handles PUT /job-cards/{id}/labor
func (h *JobCardHandler) UpdateLabor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	var req domain.SyncLaborRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobCardService.UpdateLabor(r.Context(), id, &req, actorID(r))
	if err != nil {
		h.logger.Error("failed to update labor", zap.Error(err), zap.String("job_card_id", id.String()))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// AddNote handles POST /job-cards/{id}/notes
func (h *JobCardHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	var req domain.AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	note, err := h.jobCardService.AddNote(r.Context(), id, req.Note, actorID(r))
	if err != nil {
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// ChangeStatus handles POST /job-cards/{id}/status
func (h *JobCardHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	var req domain.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobCardService.ChangeStatus(r.Context(), id, req.Status, actorID(r), req.AutoInvoice)
	if err != nil {
		h.logger.Error("failed to change job card status",
			zap.Error(err),
			zap.String("job_card_id", id.String()),
			zap.String("target_status", string(req.Status)))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// GenerateInvoice handles POST /job-cards/{id}/invoice
func (h *JobCardHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	// Body is optional; an empty body means default invoice options
	var req domain.GenerateInvoiceRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	job, err := h.jobCardService.GenerateInvoice(r.Context(), id, actorID(r), req.SaveDraft, req.IsCashSale)
	if err != nil {
		h.logger.Error("failed to generate invoice", zap.Error(err), zap.String("job_card_id", id.String()))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /job-cards/{id}
func (h *JobCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job card ID")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	if err := h.jobCardService.Delete(r.Context(), id, force); err != nil {
		h.logger.Error("failed to delete job card", zap.Error(err), zap.String("job_card_id", id.String()))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// ListTechnicians handles GET /technicians
func (h *JobCardHandler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var branchID *uuid.UUID
	if v := q.Get("branchId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid branch ID")
			return
		}
		branchID = &id
	}

	technicians, err := h.jobCardService.ListTechnicians(r.Context(), q.Get("role"), branchID, q.Get("search"))
	if err != nil {
		h.logger.Error("failed to list technicians", zap.Error(err))
		h.handleJobCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, technicians)
}

// handleJobCardError maps service errors to HTTP status codes
func (h *JobCardHandler) handleJobCardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrJobCardNotFound),
		errors.Is(err, service.ErrBranchNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrTechnicianNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrJobCardNotEditable),
		errors.Is(err, service.ErrJobCardHasInvoice),
		errors.Is(err, service.ErrInvoiceOutstanding),
		errors.Is(err, service.ErrTechnicianNotAvailable),
		errors.Is(err, service.ErrProductBranchMismatch),
		errors.Is(err, service.ErrCustomerRequired),
		errors.Is(err, service.ErrNoBillableItems),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInventoryUpdateFailed),
		errors.Is(err, service.ErrInvoiceCreationFailed),
		errors.Is(err, service.ErrManufacturingFailed):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
