package adaptor

import (
	"encoding/json"
	"net/http"

	"interview-booking/internal/dto/request"
	"interview-booking/internal/usecase"
	"interview-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	service usecase.CompanyService
	log     *zap.Logger
}

func NewCompanyHandler(service usecase.CompanyService, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		log:     log.With(zap.String("handler", "company")),
	}
}

// GetCompanies handles GET /api/v1/companies (public)
// Supports ?name= for a case-insensitive search.
func (h *CompanyHandler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.GetCompanies(r.Context(), r.URL.Query().Get("name"), pageOrDefault(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get companies")
		return
	}

	utils.ResponseSuccess(w, "success", companies)
}

// GetCompanyByID handles GET /api/v1/companies/{companyId} (public)
func (h *CompanyHandler) GetCompanyByID(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.GetCompanyByID(r.Context(), chi.URLParam(r, "companyId"))
	if err != nil {
		handleServiceError(w, h.log, err, "get company by ID")
		return
	}

	utils.ResponseSuccess(w, "success", company)
}

// ==================== ADMIN METHODS ====================

// CreateCompany handles POST /api/v1/companies (admin only)
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req request.CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	company, err := h.service.CreateCompany(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create company")
		return
	}

	utils.ResponseCreated(w, "Company created", company)
}

// UpdateCompany handles PUT /api/v1/companies/{companyId} (admin only)
func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req request.CompanyUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	company, err := h.service.UpdateCompany(r.Context(), chi.URLParam(r, "companyId"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update company")
		return
	}

	utils.ResponseSuccess(w, "Company updated", company)
}

// DeleteCompany handles DELETE /api/v1/companies/{companyId} (admin only)
func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCompany(r.Context(), chi.URLParam(r, "companyId")); err != nil {
		handleServiceError(w, h.log, err, "delete company")
		return
	}

	utils.ResponseSuccess(w, "Company deleted", struct{}{})
}
