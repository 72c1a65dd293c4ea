package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"codista-cms/internal/models"
	"codista-cms/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// unusablePassword never matches a bcrypt comparison.
func unusablePassword() string {
	return models.UnusablePasswordPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// EnsureInactiveUser creates an inactive admin account without a usable
// password unless the address is taken. It reports whether it created one.
func (s *UserService) EnsureInactiveUser(email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, errors.New("email is required")
	}

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", email, err)
	}
	if exists {
		return false, nil
	}

	user := &models.User{
		Email:    email,
		Password: unusablePassword(),
		Role:     models.UserRoleAdmin,
		Status:   models.UserStatusInactive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return true, nil
}

// EnsureSuperuser creates an active superuser unless the address is taken.
// Without usablePassword the account gets a password that never matches and
// has to be reset before the first login.
func (s *UserService) EnsureSuperuser(req models.CreateUserRequest, usablePassword bool) (bool, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return false, errors.New("email is required")
	}

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", email, err)
	}
	if exists {
		return false, nil
	}

	password := unusablePassword()
	if usablePassword {
		if req.Password == "" {
			return false, fmt.Errorf("password is required for %s", email)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return false, err
		}
		password = string(hashedPassword)
	}

	user := &models.User{
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  password,
		Role:      models.UserRoleSuperuser,
		Status:    models.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return true, nil
}

func (s *UserService) GetByEmail(email string) (*models.User, error) {
	return s.userRepo.GetByEmail(normalizeEmail(email))
}

// CheckPassword reports whether password matches the stored hash.
func (s *UserService) CheckPassword(user *models.User, password string) bool {
	if !user.HasUsablePassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}
