package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleJobCardErrorStatusMapping(t *testing.T) {
	h := NewJobCardHandler(nil, zap.NewNop())

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"job card not found", service.ErrJobCardNotFound, http.StatusNotFound},
		{"branch not found", service.ErrBranchNotFound, http.StatusNotFound},
		{"product not found", service.ErrProductNotFound, http.StatusNotFound},
		{"customer not found", service.ErrCustomerNotFound, http.StatusNotFound},
		{"technician not found", service.ErrTechnicianNotFound, http.StatusNotFound},
		{"invalid status", service.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid transition", service.ErrInvalidStatusTransition, http.StatusBadRequest},
		{"not editable", service.ErrJobCardNotEditable, http.StatusBadRequest},
		{"has invoice", service.ErrJobCardHasInvoice, http.StatusBadRequest},
		{"invoice outstanding", service.ErrInvoiceOutstanding, http.StatusBadRequest},
		{"technician not available", service.ErrTechnicianNotAvailable, http.StatusBadRequest},
		{"product branch mismatch", service.ErrProductBranchMismatch, http.StatusBadRequest},
		{"customer required", service.ErrCustomerRequired, http.StatusBadRequest},
		{"no billable items", service.ErrNoBillableItems, http.StatusBadRequest},
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"inventory failure", service.ErrInventoryUpdateFailed, http.StatusBadRequest},
		{"invoicing failure", service.ErrInvoiceCreationFailed, http.StatusBadRequest},
		{"manufacturing failure", service.ErrManufacturingFailed, http.StatusBadRequest},
		{"unexpected error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.handleJobCardError(w, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandleJobCardErrorWrappedCollaboratorFailure(t *testing.T) {
	h := NewJobCardHandler(nil, zap.NewNop())

	// Collaborators wrap their cause the same way the services do, so
	// the mapping must match through errors.Is, not equality.
	err := fmt.Errorf("%w: %v", service.ErrManufacturingFailed, errors.New("no active headquarters branch"))

	w := httptest.NewRecorder()
	h.handleJobCardError(w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body domain.APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Contains(t, body.Detail, "production completion failed")
	assert.Contains(t, body.Detail, "no active headquarters branch")
}

func TestHandleJobCardErrorHidesInternalDetail(t *testing.T) {
	h := NewJobCardHandler(nil, zap.NewNop())

	w := httptest.NewRecorder()
	h.handleJobCardError(w, errors.New("pq: password authentication failed"))

	var body domain.APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body.Detail, "pq:")
}
