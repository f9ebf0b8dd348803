package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/dto/request"
	"interview-booking/internal/dto/response"
	"interview-booking/pkg/apperror"
	"interview-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CompanyService interface {
	GetCompanies(ctx context.Context, name string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CompanyResponse], error)
	GetCompanyByID(ctx context.Context, companyID string) (*response.CompanyResponse, error)
	CreateCompany(ctx context.Context, req *request.CompanyRequest) (*response.CompanyResponse, error)
	UpdateCompany(ctx context.Context, companyID string, req *request.CompanyUpdateRequest) (*response.CompanyResponse, error)
	// DeleteCompany removes the company and every booking made with it.
	DeleteCompany(ctx context.Context, companyID string) error
}

type companyService struct {
	companyRepo repository.CompanyRepository
	log         *zap.Logger
}

func NewCompanyService(companyRepo repository.CompanyRepository, log *zap.Logger) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		log:         log.With(zap.String("service", "company")),
	}
}

func (s *companyService) GetCompanies(ctx context.Context, name string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CompanyResponse], error) {
	req.Page, req.PerPage = req.CurrentPage(), req.Limit()

	var nameFilter *string
	if name = strings.TrimSpace(name); name != "" {
		nameFilter = &name
	}

	companies, err := s.companyRepo.FindAll(ctx, req.PerPage, req.Offset(), nameFilter)
	if err != nil {
		return nil, storeFailure(s.log, err, "get companies")
	}

	total, err := s.companyRepo.CountAll(ctx, nameFilter)
	if err != nil {
		return nil, storeFailure(s.log, err, "count companies")
	}

	companyResponses := make([]response.CompanyResponse, len(companies))
	for i, c := range companies {
		companyResponses[i] = response.CompanyToResponse(c)
	}

	return response.NewPaginatedResponse(companyResponses, req.Page, req.PerPage, total), nil
}

func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*response.CompanyResponse, error) {
	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := response.CompanyToResponse(company)
	return &resp, nil
}

func (s *companyService) CreateCompany(ctx context.Context, req *request.CompanyRequest) (*response.CompanyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create company validation failed", zap.Any("errors", errs))
		return nil, apperror.InvalidInput("Validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	company := &entity.Company{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		Website:     req.Website,
		Description: req.Description,
		Telephone:   req.Telephone,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("Company %s already exists", company.Name)
		}
		return nil, storeFailure(s.log, err, "create company")
	}

	s.log.Info("Company created",
		zap.String("company_id", company.ID.String()),
		zap.String("name", company.Name))

	resp := response.CompanyToResponse(company)
	return &resp, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, companyID string, req *request.CompanyUpdateRequest) (*response.CompanyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update company validation failed", zap.Any("errors", errs))
		return nil, apperror.InvalidInput("Validation failed: %s", utils.FormatValidationErrors(errs))
	}

	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}

	// Update hanya field yang dikirim
	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		company.Address = strings.TrimSpace(*req.Address)
	}
	if req.Website != nil {
		company.Website = req.Website
	}
	if req.Description != nil {
		company.Description = req.Description
	}
	if req.Telephone != nil {
		company.Telephone = *req.Telephone
	}
	company.UpdatedAt = time.Now()

	if err := s.companyRepo.Update(ctx, company); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperror.Conflict("Company %s already exists", company.Name)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NotFound("No company with the id of %s", companyID)
		}
		return nil, storeFailure(s.log, err, "update company")
	}

	s.log.Info("Company updated", zap.String("company_id", company.ID.String()))

	resp := response.CompanyToResponse(company)
	return &resp, nil
}

func (s *companyService) DeleteCompany(ctx context.Context, companyID string) error {
	id, err := uuid.Parse(companyID)
	if err != nil {
		return apperror.NotFound("No company with the id of %s", companyID)
	}

	if err := s.companyRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("No company with the id of %s", companyID)
		}
		return storeFailure(s.log, err, "delete company")
	}

	s.log.Info("Company deleted", zap.String("company_id", companyID))
	return nil
}

func (s *companyService) find(ctx context.Context, companyID string) (*entity.Company, error) {
	id, err := uuid.Parse(companyID)
	if err != nil {
		return nil, apperror.NotFound("No company with the id of %s", companyID)
	}

	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeFailure(s.log, err, "find company")
	}
	if company == nil {
		return nil, apperror.NotFound("No company with the id of %s", companyID)
	}

	return company, nil
}
