package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cinecity-client/internal/model"
	"cinecity-client/internal/session"
	"cinecity-client/pkg/httpclient"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Auth routes
const (
	PathRegister = "/auth/register"
	PathLogin    = "/auth/login"
	PathLogout   = "/auth/logout"
	PathMe       = "/auth/me"
)

var validate = validator.New()

// AuthService handles registration and the login/logout round trips
type AuthService struct {
	client  *httpclient.Client
	session *session.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(client *httpclient.Client, sess *session.Manager) *AuthService {
	return &AuthService{
		client:  client,
		session: sess,
	}
}

// Register creates an account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	var user model.User
	if _, err := post(ctx, s.client, PathRegister, req, &user); err != nil {
		return nil, err
	}

	log.Info().Str("username", user.Username).Msg("User registered")
	return &user, nil
}

// Login exchanges credentials for tokens and stores them in the session
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Credential, error) {
	req := model.LoginRequest{Username: username, Password: password}
	if err := validate.Struct(req); err != nil {
		if s.session != nil {
			s.session.FailLogin("Username and password are required")
		}
		return nil, fmt.Errorf("invalid login: %w", err)
	}
	if s.session == nil {
		return nil, errors.New("login requires a session")
	}

	s.session.BeginLogin()

	var cred model.Credential
	if _, err := post(ctx, s.client, PathLogin, req, &cred); err != nil {
		s.session.FailLogin(loginMessage(err))
		return nil, err
	}
	if cred.AccessToken == "" {
		s.session.FailLogin("Login failed")
		return nil, errors.New("login response carried no access token")
	}

	if err := s.session.CompleteLogin(cred); err != nil {
		log.Warn().Err(err).Msg("Failed to persist session")
	}

	// 后端登录响应不带 user，补一次 /auth/me
	if cred.User == nil {
		user, err := s.CurrentUser(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to fetch user after login")
		} else {
			cred.User = user
			if err := s.session.SetUser(user); err != nil {
				log.Warn().Err(err).Msg("Failed to persist user")
			}
		}
	}

	log.Info().Str("username", username).Msg("User logged in")
	return &cred, nil
}

// Logout tells the backend and then clears the session, whatever the backend says
func (s *AuthService) Logout(ctx context.Context) {
	if s.session == nil {
		return
	}
	s.session.Logout(ctx, func(ctx context.Context) error {
		_, err := s.client.Request(ctx, http.MethodPost, PathLogout, httpclient.Options{})
		return err
	})
}

// CurrentUser fetches the profile of the token holder
func (s *AuthService) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if _, err := get(ctx, s.client, PathMe, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Restore validates a stored token on start-up
func (s *AuthService) Restore(ctx context.Context) error {
	if s.session == nil {
		return session.ErrNotAuthenticated
	}
	return s.session.Restore(ctx, s.CurrentUser)
}

func loginMessage(err error) string {
	if detail := httpclient.Detail(err); detail != "" {
		return detail
	}
	if httpclient.IsTransport(err) {
		return "Cannot connect to server"
	}
	return "Login failed"
}
