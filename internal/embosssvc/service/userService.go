package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
	"github.com/cardops/emboss-services/internal/embosssvc/store"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService verifies logins and manages the credential snapshot.
type UserService struct {
	users *store.UserStore
}

func NewUserService(users *store.UserStore) *UserService {
	return &UserService{users: users}
}

// Authenticate checks a username/password pair against the stored bcrypt
// hash. Inactive users cannot log in.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin seeds a default admin account when the credential snapshot is
// empty, so a fresh deployment can be logged into.
func (s *UserService) EnsureAdmin(ctx context.Context, password string) error {
	users, err := s.users.Load(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:     "admin_user",
		Name:         "Admin",
		PasswordHash: string(hash),
		Email:        "admin@example.com",
		Branch:       "0",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Upsert(ctx, admin); err != nil {
		return err
	}
	log.Info("seeded default admin account")
	return nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.Load(ctx)
}

// Create registers a new user with a freshly hashed password.
func (s *UserService) Create(ctx context.Context, user models.User, password string) error {
	if user.Username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}
	switch user.Role {
	case models.RoleAdmin, models.RoleSupervisor, models.RoleViewer:
	default:
		return fmt.Errorf("unknown role %q", user.Role)
	}
	existing, err := s.users.GetByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("user %q already exists", user.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.Active = true
	return s.users.Upsert(ctx, user)
}

// Deactivate disables a user without deleting the row.
func (s *UserService) Deactivate(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %q not found", username)
	}
	user.Active = false
	return s.users.Upsert(ctx, *user)
}
