package response

import (
	"time"

	"interview-booking/internal/data/entity"
)

type CompanyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Website     *string   `json:"website,omitempty"`
	Description *string   `json:"description,omitempty"`
	Telephone   string    `json:"telephone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func CompanyToResponse(company *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:          company.ID.String(),
		Name:        company.Name,
		Address:     company.Address,
		Website:     company.Website,
		Description: company.Description,
		Telephone:   company.Telephone,
		CreatedAt:   company.CreatedAt,
		UpdatedAt:   company.UpdatedAt,
	}
}
