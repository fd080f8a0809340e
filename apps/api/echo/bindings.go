package echoapi

import (
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	AuthUser struct {
		Email    string    `json:"email"`
		FullName string    `json:"full_name"`
		Role     user.Role `json:"role"`
	}

	LoginResponse struct {
		Message string   `json:"message"`
		Access  string   `json:"access"`
		Refresh string   `json:"refresh"`
		User    AuthUser `json:"user"`
	}

	RefreshRequest struct {
		Refresh string `json:"refresh" validate:"required"`
	}

	TokenResponse struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (r *LoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true)
	return core.Validate.Struct(r)
}

func (r *RefreshRequest) Validate() error { return core.Validate.Struct(r) }

func (r *PasswordResetRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true)
	return core.Validate.Struct(r)
}
