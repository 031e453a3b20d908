package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/readmodel"
)

var (
	ErrNoToken        = errors.New("no stored session")
	ErrMissingProfile = errors.New("email and name are required")
)

// Session holds the bearer credential
type Session interface {
	Token() string
	Begin(token string) error
	End() error
}

// Navigator moves between views. Reload is a full navigation that drops
// all in-memory state.
type Navigator interface {
	Push(path string)
	Reload(path string)
}

// CartResetter zeroes the cart badge
type CartResetter interface {
	InitialCart(ctx context.Context) error
}

type Service struct {
	api        api.Requester
	dispatcher slice.Dispatcher
	toast      ui.Notifier
	session    Session
	nav        Navigator
	cart       CartResetter
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewService(
	client api.Requester,
	d slice.Dispatcher,
	toast ui.Notifier,
	session Session,
	nav Navigator,
	cart CartResetter,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		api:        client,
		dispatcher: d,
		toast:      toast,
		session:    session,
		nav:        nav,
		cart:       cart,
		log:        log.WithField("component", "user"),
		now:        time.Now,
	}
}

type loginResponse struct {
	Token string          `json:"token"`
	User  *readmodel.User `json:"user"`
}

// LoginWithEmail posts credentials and starts a session. On failure the
// current user is left as it was and loginError is recorded.
func (s *Service) LoginWithEmail(ctx context.Context, email, password string) (*readmodel.User, error) {
	return s.loginWith(ctx, ActionLoginWithEmail, "/auth/login", LoginRequest{Email: email, Password: password})
}

// LoginWithGoogle posts a federated id token; same contract as LoginWithEmail
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*readmodel.User, error) {
	return s.loginWith(ctx, ActionLoginWithGoogle, "/auth/google", GoogleLoginRequest{Token: idToken})
}

// loginWith runs a login thunk. When the session was begun but the login
// did not settle as fulfilled, the previous token is put back.
func (s *Service) loginWith(ctx context.Context, actionType, path string, body any) (*readmodel.User, error) {
	previous := s.session.Token()
	begun := false
	u, err := slice.Run(ctx, s.dispatcher, SliceName, actionType, MsgLoginFailed, func(ctx context.Context) (*readmodel.User, error) {
		u, err := s.login(ctx, path, body)
		begun = err == nil
		return u, err
	})
	if err != nil && begun {
		s.revertSession(previous)
	}
	return u, err
}

func (s *Service) revertSession(previous string) {
	var err error
	if previous == "" {
		err = s.session.End()
	} else {
		err = s.session.Begin(previous)
	}
	if err != nil {
		s.log.WithError(err).Warn("revert session after failed login")
	}
}

func (s *Service) login(ctx context.Context, path string, body any) (*readmodel.User, error) {
	resp, err := s.api.Do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return nil, err
	}
	var out loginResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &api.Error{Kind: api.KindDecode, Status: resp.StatusCode, Err: errors.New("login response has no user")}
	}
	// The session must hold the token before the user becomes visible.
	if err := s.session.Begin(out.Token); err != nil {
		return nil, err
	}
	return out.User, nil
}

// LoginWithToken restores the previous session from the stored token. No
// request is sent when there is no token or the token has visibly expired.
// Any failure ends the session.
func (s *Service) LoginWithToken(ctx context.Context) (*readmodel.User, error) {
	return slice.Run(ctx, s.dispatcher, SliceName, ActionLoginWithToken, "", func(ctx context.Context) (*readmodel.User, error) {
		u, err := s.restore(ctx)
		if err != nil {
			if endErr := s.session.End(); endErr != nil {
				s.log.WithError(endErr).Warn("end session after failed restore")
			}
			return nil, err
		}
		return u, nil
	})
}

func (s *Service) restore(ctx context.Context) (*readmodel.User, error) {
	token := s.session.Token()
	if token == "" {
		return nil, ErrNoToken
	}
	if err := auth.CheckUsable(token, s.now()); err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, http.MethodGet, "/user/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var u readmodel.User
	if err := resp.Field("user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RegisterUser creates an account, then shows a toast and moves to the
// login view. A failure shows the backend message.
func (s *Service) RegisterUser(ctx context.Context, email, name, password string) error {
	if email == "" || name == "" {
		return ErrMissingProfile
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}

	_, err := slice.Run(ctx, s.dispatcher, SliceName, ActionRegisterUser, MsgRegisterFailed, func(ctx context.Context) (struct{}, error) {
		_, err := s.api.Do(ctx, http.MethodPost, "/user", RegisterRequest{Email: email, Name: name, Password: password}, nil)
		return struct{}{}, err
	})
	if err != nil {
		var rejected *slice.RejectedError
		if errors.As(err, &rejected) {
			s.notify(ctx, rejected.Message, ui.StatusError)
		}
		return err
	}

	s.notify(ctx, MsgRegistered, ui.StatusSuccess)
	s.nav.Push(LoginPath)
	return nil
}

// Logout zeroes the cart badge, drops the token and reloads into the login
// view so no state of the previous session survives.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.cart.InitialCart(ctx); err != nil {
		s.log.WithError(err).Warn("reset cart on logout")
	}
	endErr := s.session.End()
	s.nav.Reload(LoginPath)
	return endErr
}

// ClearErrors resets loginError and registrationError
func (s *Service) ClearErrors(ctx context.Context) error {
	return s.dispatcher.Dispatch(ctx, SliceName, ActionClearErrors, "", nil)
}

func (s *Service) notify(ctx context.Context, message, status string) {
	if err := s.toast.ShowToastMessage(ctx, message, status); err != nil {
		s.log.WithError(err).Warn("show toast")
	}
}
