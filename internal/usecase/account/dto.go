package account

// RegisterRequest carries the self-service registration payload. Username,
// admin flag, verification flag and starting balance are never caller-chosen
// on this path.
type RegisterRequest struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=8"`
	FullName    string `validate:"required,min=3,max=100"`
	PhoneNumber string `validate:"omitempty,min=6,max=20"`
}

// AdminCreateRequest carries the admin-panel account creation payload. The
// acting admin chooses the flags and the starting balance.
type AdminCreateRequest struct {
	ActingAdminID   string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	FullName        string `validate:"required,min=3,max=100"`
	PhoneNumber     string `validate:"omitempty,min=6,max=20"`
	IsAdmin         bool
	IsVerified      bool
	StartingBalance int64 `validate:"gte=0"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left
// untouched; balance is not part of the mutable surface.
type UpdateProfileRequest struct {
	UserID            string `validate:"required"`
	FullName          *string
	PhoneNumber       *string
	ProfilePictureURL *string
	IsVerified        *bool
}

// LoginRequest carries the credentials for opening a session.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}
