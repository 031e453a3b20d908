package pages

import (
	"context"

	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/user"
)

type LoginPage struct {
	users    *user.Service
	commands *command.Handler
	state    StateReader
	nav      Pusher
}

func NewLoginPage(users *user.Service, commands *command.Handler, state StateReader, nav Pusher) *LoginPage {
	return &LoginPage{users: users, commands: commands, state: state, nav: nav}
}

// Mount drops an error left by an earlier attempt and leaves the view when
// a user is already logged in
func (p *LoginPage) Mount(ctx context.Context) error {
	st := p.state.State().User
	if st.LoginError != "" {
		if err := p.users.ClearErrors(ctx); err != nil {
			return err
		}
	}
	if st.User != nil {
		p.nav.Push(user.HomePath)
	}
	return nil
}

func (p *LoginPage) LoginWithEmail(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrCredentialsRequired
	}
	if _, err := p.commands.LoginWithEmail(ctx, command.LoginWithEmail{Email: email, Password: password}); err != nil {
		return err
	}
	p.nav.Push(user.HomePath)
	return nil
}

func (p *LoginPage) LoginWithGoogle(ctx context.Context, credential string) error {
	if credential == "" {
		return ErrCredentialsRequired
	}
	if _, err := p.commands.LoginWithGoogle(ctx, command.LoginWithGoogle{IDToken: credential}); err != nil {
		return err
	}
	p.nav.Push(user.HomePath)
	return nil
}

// LoginError is the message shown above the form
func (p *LoginPage) LoginError() string {
	return p.state.State().User.LoginError
}
