package response

import (
	"time"

	"interview-booking/internal/data/entity"
)

type BookingUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookingCompany struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Website   *string `json:"website,omitempty"`
	Telephone string  `json:"telephone"`
}

type BookingResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	CompanyID string          `json:"companyId"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
	User      *BookingUser    `json:"user,omitempty"`
	Company   *BookingCompany `json:"company,omitempty"`
}

// Helper converters
func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:        booking.ID.String(),
		UserID:    booking.UserID.String(),
		CompanyID: booking.CompanyID.String(),
		Date:      booking.Date.Format(entity.DateLayout),
		CreatedAt: booking.CreatedAt,
	}
}

// BookingDetailToResponse enriches with the company, and with the owner when withUser is set.
func BookingDetailToResponse(detail *entity.BookingDetail, withUser bool) BookingResponse {
	resp := BookingToResponse(&detail.Booking)

	if withUser {
		resp.User = &BookingUser{
			Name:  detail.UserName,
			Email: detail.UserEmail,
		}
	}

	if detail.Company != nil {
		resp.Company = &BookingCompany{
			ID:        detail.Company.ID.String(),
			Name:      detail.Company.Name,
			Address:   detail.Company.Address,
			Website:   detail.Company.Website,
			Telephone: detail.Company.Telephone,
		}
	}

	return resp
}
