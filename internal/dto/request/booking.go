package request

// No validate tags here: the booking service checks these fields itself so
// that errors follow the admission check order. Date accepts YYYY-MM-DD or an
// RFC3339 timestamp.
type CreateBookingRequest struct {
	CompanyID string `json:"companyId"`
	Date      string `json:"date"`
}

type UpdateBookingRequest struct {
	CompanyID *string `json:"companyId,omitempty"`
	Date      *string `json:"date,omitempty"`
}
