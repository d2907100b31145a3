package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxliability"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type TaxLiabilityHandler interface {
	GetLiabilities(w http.ResponseWriter, r *http.Request)
	RecordPayment(w http.ResponseWriter, r *http.Request)
}

type taxLiabilityHandlerImpl struct {
	taxLiabilityService taxliability.TaxLiabilityService
}

func NewTaxLiabilityHandler(taxLiabilityService taxliability.TaxLiabilityService) TaxLiabilityHandler {
	return &taxLiabilityHandlerImpl{taxLiabilityService: taxLiabilityService}
}

// GetLiabilities reads ?period=YYYY or ?period=YYYY-Qn.
func (h *taxLiabilityHandlerImpl) GetLiabilities(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		response.HandleError(w, validator.ValidationErrors{{Field: "period", Message: "period is required"}})
		return
	}

	result, err := h.taxLiabilityService.GetLiabilities(r.Context(), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *taxLiabilityHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req taxliability.RecordPaymentRequest
	if err := validator.DecodeStrict(r.Body, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.taxLiabilityService.RecordPayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Tax payment recorded", result)
}
