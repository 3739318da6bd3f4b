package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
	"github.com/mikepea/bookmarks/pkg/bookmarks/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	minUsernameLength = 3

	msgInvalidCredentials = "Invalid email or password"
	msgInvalidToken       = "Invalid token"
	msgExpiredToken       = "Token has expired"
)

// UserRepository is the credential store the session service depends on
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// TokenPair is returned on login
type TokenPair struct {
	Access  string
	Refresh string
}

// Service registers users and issues and validates their tokens
type Service struct {
	users    UserRepository
	tokens   *TokenIssuer
	validate *validator.Validate
}

// NewService creates a session service
func NewService(users UserRepository, tokens *TokenIssuer) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register validates the input and stores a new user with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	const op = "auth.Register"

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, errx.New(op, errx.Invalid, "Password is too short")
	}
	if utf8.RuneCountInString(username) < minUsernameLength {
		return nil, errx.New(op, errx.Invalid, "Username is too short")
	}
	if s.validate.Var(username, "alphanum") != nil {
		return nil, errx.New(op, errx.Invalid, "Username should be alphanumeric, also no spaces")
	}
	if s.validate.Var(email, "required,email") != nil {
		return nil, errx.New(op, errx.Invalid, "Email is not valid")
	}

	hash, err := HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errx.New(op, errx.Invalid, "Password is too long")
		}
		return nil, errx.E(op, errx.Internal, err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			return nil, errx.New(op, errx.Conflict, "Email is taken")
		case errors.Is(err, store.ErrUsernameTaken):
			return nil, errx.New(op, errx.Conflict, "Username is taken")
		default:
			return nil, errx.E(op, errx.Internal, err)
		}
	}
	return user, nil
}

// Login checks credentials and issues an access and a refresh token.
// Unknown emails and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	const op = "auth.Login"

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, TokenPair{}, errx.E(op, errx.Internal, err)
		}
		checkAgainstDummy(password)
		return nil, TokenPair{}, errx.New(op, errx.Unauthorized, msgInvalidCredentials)
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, TokenPair{}, errx.New(op, errx.Unauthorized, msgInvalidCredentials)
	}

	access, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, TokenPair{}, errx.E(op, errx.Internal, err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, TokenPair{}, errx.E(op, errx.Internal, err)
	}
	return user, TokenPair{Access: access, Refresh: refresh}, nil
}

// Authenticate validates a token of the wanted type and returns its user id.
func (s *Service) Authenticate(token string, want TokenType) (uint, error) {
	const op = "auth.Authenticate"

	claims, err := s.tokens.ValidateToken(token, want)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return 0, errx.New(op, errx.Unauthorized, msgExpiredToken)
		}
		if errors.Is(err, ErrWrongTokenType) {
			return 0, errx.New(op, errx.Unauthorized, "Only "+string(want)+" tokens are allowed")
		}
		return 0, errx.New(op, errx.Unauthorized, msgInvalidToken)
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, errx.New(op, errx.Unauthorized, msgInvalidToken)
	}
	return userID, nil
}

// CurrentUser resolves an access token to its user.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "auth.CurrentUser"

	userID, err := s.Authenticate(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errx.New(op, errx.Unauthorized, msgInvalidToken)
		}
		return nil, errx.E(op, errx.Internal, err)
	}
	return user, nil
}

// Refresh mints a new access token from a refresh token.
// The refresh token itself stays valid until it expires.
func (s *Service) Refresh(refreshToken string) (string, error) {
	const op = "auth.Refresh"

	userID, err := s.Authenticate(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	access, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return "", errx.E(op, errx.Internal, err)
	}
	return access, nil
}
