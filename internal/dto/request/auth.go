package request

type RegisterRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=50"`
	Telephone string `json:"telephone" validate:"required,telephone"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}
