package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginatedRequestClamps(t *testing.T) {
	tests := []struct {
		description string
		req         PaginatedRequest
		page        int
		limit       int
		offset      int
	}{
		{"defaults", PaginatedRequest{}, 1, DefaultPerPage, 0},
		{"second page", PaginatedRequest{Page: 2, PerPage: 5}, 2, 5, 5},
		{"negative page", PaginatedRequest{Page: -3, PerPage: 5}, 1, 5, 0},
		{"per page above max", PaginatedRequest{Page: 3, PerPage: 500}, 3, MaxPerPage, 200},
	}

	for _, test := range tests {
		assert.Equalf(t, test.page, test.req.CurrentPage(), test.description)
		assert.Equalf(t, test.limit, test.req.Limit(), test.description)
		assert.Equalf(t, test.offset, test.req.Offset(), test.description)
	}
}
