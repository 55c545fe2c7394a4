package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"microblog/internal/auth"
	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DefaultPasswordResetTTL is how long a reset link stays valid.
const DefaultPasswordResetTTL = 2 * time.Hour

// UserInput carries the fields for a new account.
type UserInput struct {
	Name                 string `json:"name" validate:"required,notblank,max=50"`
	Email                string `json:"email" validate:"required,notblank,max=255,account_email"`
	Password             string `json:"password" validate:"required,notblank,min=6,bcrypt_len"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// UpdateUserInput carries profile changes. An empty Password keeps the current one.
type UpdateUserInput struct {
	Name                 string `json:"name" validate:"required,notblank,max=50"`
	Email                string `json:"email" validate:"required,notblank,max=255,account_email"`
	Password             string `json:"password" validate:"omitempty,notblank,min=6,bcrypt_len"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

type passwordInput struct {
	Password             string `json:"password" validate:"required,notblank,min=6,bcrypt_len"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// UserServiceOptions tunes a UserService. Zero values select the defaults.
type UserServiceOptions struct {
	PasswordResetTTL time.Duration
	Clock            func() time.Time
	TokenSource      func() (string, error)
}

// UserService owns the user record: validation, password and token digests,
// activation and deletion.
type UserService struct {
	users    repositories.UserRepository
	hasher   *auth.Hasher
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newToken func() (string, error)
	resetTTL time.Duration

	dummyOnce   sync.Once
	dummyDigest *string
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, hasher *auth.Hasher, logger *zap.Logger, opts UserServiceOptions) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.TokenSource == nil {
		opts.TokenSource = auth.NewToken
	}
	if opts.PasswordResetTTL <= 0 {
		opts.PasswordResetTTL = DefaultPasswordResetTTL
	}
	return &UserService{
		users:    users,
		hasher:   hasher,
		validate: newValidator(),
		logger:   logger,
		now:      opts.Clock,
		newToken: opts.TokenSource,
		resetTTL: opts.PasswordResetTTL,
	}
}

// CreateUser validates in, lowercases the email, derives the password and
// activation digests and stores the record. The raw activation token is only
// kept on the returned value. Nothing is stored when validation fails.
func (s *UserService) CreateUser(in UserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	verr := validateStruct(s.validate, in)
	if err := s.checkEmailAvailable(in.Email, "", verr); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	passwordDigest, err := s.hasher.Digest(in.Password)
	if err != nil {
		return nil, err
	}
	activationToken, err := s.newToken()
	if err != nil {
		return nil, err
	}
	activationDigest, err := s.hasher.Digest(activationToken)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:             in.Name,
		Email:            strings.ToLower(in.Email),
		PasswordDigest:   passwordDigest,
		ActivationDigest: &activationDigest,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, emailTaken()
		}
		return nil, err
	}
	user.ActivationToken = activationToken

	s.logger.Info("user created", zap.String("user_id", user.ID))
	return user, nil
}

// UpdateUser changes name, email and optionally the password of an existing user.
func (s *UserService) UpdateUser(id string, in UpdateUserInput) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	verr := validateStruct(s.validate, in)
	if err := s.checkEmailAvailable(in.Email, user.ID, verr); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	user.Name = in.Name
	user.Email = strings.ToLower(in.Email)
	if in.Password != "" {
		digest, err := s.hasher.Digest(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordDigest = digest
	}
	if err := s.users.Update(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, emailTaken()
		}
		return nil, err
	}
	return user, nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(id string) (*models.User, error) {
	return s.users.GetByID(id)
}

// FindByEmail returns the user owning email, compared case-insensitively.
func (s *UserService) FindByEmail(email string) (*models.User, error) {
	return s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
}

// DeleteUser removes the user with its microposts and relationships.
func (s *UserService) DeleteUser(id string) error {
	if err := s.users.Delete(id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// Authenticate returns the user for email when password matches, and nil
// otherwise. Only store failures are returned as errors. An unknown email still
// pays for one bcrypt comparison.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.hasher.Verify(s.dummy(), password)
			return nil, nil
		}
		return nil, err
	}
	if !s.CheckPassword(user, password) {
		return nil, nil
	}
	return user, nil
}

// CheckPassword reports whether password matches the user's password digest.
func (s *UserService) CheckPassword(user *models.User, password string) bool {
	if user.PasswordDigest == "" {
		return false
	}
	return s.hasher.Verify(&user.PasswordDigest, password)
}

// Authenticated reports whether token matches the user's digest of the given kind.
// It is false whenever that digest is unset.
func (s *UserService) Authenticated(user *models.User, kind models.TokenKind, token string) bool {
	return s.hasher.Verify(user.Digest(kind), token)
}

// Remember issues a remember-me token, stores its digest and returns the raw token.
func (s *UserService) Remember(user *models.User) (string, error) {
	token, digest, err := s.tokenAndDigest()
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateRememberDigest(user.ID, &digest); err != nil {
		return "", err
	}
	user.RememberToken = token
	user.RememberDigest = &digest
	return token, nil
}

// Forget clears the remember digest.
func (s *UserService) Forget(user *models.User) error {
	if err := s.users.UpdateRememberDigest(user.ID, nil); err != nil {
		return err
	}
	user.RememberToken = ""
	user.RememberDigest = nil
	return nil
}

// CreateResetDigest issues a reset token, replacing any earlier one, and stamps
// reset_sent_at with the current time. The raw token is returned and kept on user.
func (s *UserService) CreateResetDigest(user *models.User) (string, error) {
	token, digest, err := s.tokenAndDigest()
	if err != nil {
		return "", err
	}
	sentAt := s.now()
	if err := s.users.UpdateResetDigest(user.ID, &digest, &sentAt); err != nil {
		return "", err
	}
	user.ResetToken = token
	user.ResetDigest = &digest
	user.ResetSentAt = &sentAt
	return token, nil
}

// CreateActivationDigest replaces the activation digest with one for a fresh
// token, which is returned and kept on user.
func (s *UserService) CreateActivationDigest(user *models.User) (string, error) {
	token, digest, err := s.tokenAndDigest()
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateActivationDigest(user.ID, &digest); err != nil {
		return "", err
	}
	user.ActivationDigest = &digest
	user.ActivationToken = token
	return token, nil
}

// PasswordResetExpired reports whether the reset was sent more than the reset TTL
// ago. A user without a pending reset counts as expired.
func (s *UserService) PasswordResetExpired(user *models.User) bool {
	if user.ResetSentAt == nil {
		return true
	}
	return user.ResetSentAt.Before(s.now().Add(-s.resetTTL))
}

// Activate marks the account active. Repeated calls keep the first activated_at,
// and user is refreshed with the stored values.
func (s *UserService) Activate(user *models.User) error {
	if user.Activated {
		return nil
	}
	if err := s.users.MarkActivated(user.ID, s.now()); err != nil {
		return err
	}
	stored, err := s.users.GetByID(user.ID)
	if err != nil {
		return err
	}
	user.Activated = stored.Activated
	user.ActivatedAt = stored.ActivatedAt
	s.logger.Info("user activated", zap.String("user_id", user.ID))
	return nil
}

// ResetPassword stores a new password and clears the pending reset.
func (s *UserService) ResetPassword(user *models.User, password, confirmation string) error {
	if password == "" {
		verr := NewValidationError()
		verr.Add("password", "can't be empty")
		return verr
	}
	if verr := validateStruct(s.validate, passwordInput{Password: password, PasswordConfirmation: confirmation}); !verr.Empty() {
		return verr
	}

	digest, err := s.hasher.Digest(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(user.ID, digest); err != nil {
		return err
	}
	user.PasswordDigest = digest
	user.ResetDigest = nil
	user.ResetSentAt = nil
	user.ResetToken = ""
	return nil
}

func (s *UserService) tokenAndDigest() (string, string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", "", err
	}
	digest, err := s.hasher.Digest(token)
	if err != nil {
		return "", "", err
	}
	return token, digest, nil
}

// checkEmailAvailable adds a uniqueness error to verr when another user owns email.
func (s *UserService) checkEmailAvailable(email, selfID string, verr *ValidationError) error {
	if email == "" {
		return nil
	}
	existing, err := s.users.GetByEmail(strings.ToLower(email))
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	case existing.ID != selfID:
		verr.Add("email", "has already been taken")
	}
	return nil
}

func (s *UserService) dummy() *string {
	s.dummyOnce.Do(func() {
		if digest, err := s.hasher.Digest("not-a-real-password"); err == nil {
			s.dummyDigest = &digest
		}
	})
	return s.dummyDigest
}

func emailTaken() *ValidationError {
	verr := NewValidationError()
	verr.Add("email", "has already been taken")
	return verr
}
