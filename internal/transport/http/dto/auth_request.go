package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/streamview/auth-service/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *SignupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))

	if err := validate.Struct(r); err != nil {
		return toDomainError(err)
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))

	if err := validate.Struct(r); err != nil {
		return toDomainError(err)
	}
	return nil
}

// Refresh and logout carry no body; the tokens travel in cookies.
type RefreshRequest struct{}

type LogoutRequest struct{}

// toDomainError maps the first validator failure onto a domain error so
// clients see stable codes instead of validator prose.
func toDomainError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return domain.ErrInvalidField("body", "invalid")
	}

	fe := errs[0]
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "invalid format")
	case "min":
		if field == "password" {
			return domain.ErrWeakPassword("min length " + fe.Param())
		}
		return domain.ErrInvalidField(field, "too short")
	case "max":
		return domain.ErrInvalidField(field, "too long")
	default:
		return domain.ErrInvalidField(field, fe.Tag())
	}
}
