package pages

import (
	"context"

	"github.com/example/ec-storefront/internal/domain/user"
)

type RegisterForm struct {
	Email           string
	Name            string
	Password        string
	ConfirmPassword string
	Policy          bool
}

type RegisterPage struct {
	users *user.Service
}

func NewRegisterPage(users *user.Service) *RegisterPage {
	return &RegisterPage{users: users}
}

// Submit checks the form locally before registering. On success the user
// slice moves to the login view.
func (p *RegisterPage) Submit(ctx context.Context, form RegisterForm) error {
	if form.Password != form.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !form.Policy {
		return ErrPolicyRequired
	}
	return p.users.RegisterUser(ctx, form.Email, form.Name, form.Password)
}
