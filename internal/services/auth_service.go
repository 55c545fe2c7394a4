package services

import (
	"errors"
	"fmt"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

// Mailer delivers account mail out of band. Calls must not block on delivery.
type Mailer interface {
	SendActivationEmail(user *models.User)
	SendPasswordResetEmail(user *models.User)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User          *models.User
	Token         string
	ExpiresAt     time.Time
	RememberToken string // empty unless remember-me was requested
}

// AuthService handles registration, sessions, activation and password recovery.
type AuthService struct {
	users      *UserService
	mailer     Mailer
	jwtSecret  []byte
	tokenDurat time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, mailer Mailer, jwtSecret string, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		mailer:     mailer,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: sessionTTL,
		logger:     logger,
	}
}

// Register creates the account and sends the activation mail.
func (s *AuthService) Register(in UserInput) (*models.User, error) {
	user, err := s.users.CreateUser(in)
	if err != nil {
		return nil, err
	}
	s.mailer.SendActivationEmail(user)
	return user, nil
}

// Login authenticates the user and issues a session token. With remember set a
// remember-me token is issued as well; otherwise any earlier one is forgotten.
func (s *AuthService) Login(email, password string, remember bool) (*LoginResult, error) {
	user, err := s.users.Authenticate(email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Activated {
		return nil, ErrAccountNotActivated
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	result := &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}

	if remember {
		if result.RememberToken, err = s.users.Remember(user); err != nil {
			return nil, err
		}
	} else if err := s.users.Forget(user); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.Bool("remember", remember))
	return result, nil
}

// Logout forgets the remember-me token of user.
func (s *AuthService) Logout(user *models.User) error {
	return s.users.Forget(user)
}

func (s *AuthService) issueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenDurat)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken parses and validates a session token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// UserFromToken resolves the user behind a session token.
func (s *AuthService) UserFromToken(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUser(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

// UserFromRememberToken resolves the user of a remember-me cookie pair. It
// returns nil without error when the pair does not authenticate.
func (s *AuthService) UserFromRememberToken(userID, token string) (*models.User, error) {
	if userID == "" || token == "" {
		return nil, nil
	}
	user, err := s.users.GetUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !s.users.Authenticated(user, models.RememberToken, token) {
		return nil, nil
	}
	return user, nil
}

// ActivateAccount activates the account of email when token matches its
// activation digest.
func (s *AuthService) ActivateAccount(email, token string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidActivationLink
		}
		return nil, err
	}
	if user.Activated || !s.users.Authenticated(user, models.ActivationToken, token) {
		return nil, ErrInvalidActivationLink
	}
	if err := s.users.Activate(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendActivation issues a fresh activation token for an inactive account and
// mails it.
func (s *AuthService) ResendActivation(email string) error {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmailNotFound
		}
		return err
	}
	if user.Activated {
		return nil
	}
	if _, err := s.users.CreateActivationDigest(user); err != nil {
		return err
	}
	s.mailer.SendActivationEmail(user)
	return nil
}

// RequestPasswordReset issues a reset token for email and mails it.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmailNotFound
		}
		return err
	}
	if _, err := s.users.CreateResetDigest(user); err != nil {
		return err
	}
	s.mailer.SendPasswordResetEmail(user)
	s.logger.Info("password reset requested", zap.String("user_id", user.ID))
	return nil
}

// CheckResetLink returns the user for a reset link if the link is valid and
// not expired.
func (s *AuthService) CheckResetLink(email, token string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidResetLink
		}
		return nil, err
	}
	if !user.Activated || !s.users.Authenticated(user, models.ResetToken, token) {
		return nil, ErrInvalidResetLink
	}
	if s.users.PasswordResetExpired(user) {
		return nil, ErrPasswordResetExpired
	}
	return user, nil
}

// ResetPassword completes a password reset started by RequestPasswordReset.
func (s *AuthService) ResetPassword(email, token, password, confirmation string) (*models.User, error) {
	user, err := s.CheckResetLink(email, token)
	if err != nil {
		return nil, err
	}
	if err := s.users.ResetPassword(user, password, confirmation); err != nil {
		return nil, err
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return user, nil
}
