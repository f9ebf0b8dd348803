package request

type CompanyRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Address     string  `json:"address" validate:"required,min=1"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=200"`
	Telephone   string  `json:"telephone" validate:"required,telephone"`
}

type CompanyUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,min=1"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=200"`
	Telephone   *string `json:"telephone,omitempty" validate:"omitempty,telephone"`
}
