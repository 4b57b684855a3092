package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/auth"
	"github.com/ecologics/collection-service/internal/model"
)

type AccountService struct {
	users  UserStore
	tokens *auth.Manager
	log    zerolog.Logger
}

func NewAccountService(users UserStore, tokens *auth.Manager, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, tokens: tokens, log: log}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
	Phone     string
	Address   string
}

type Session struct {
	Token string
	User  model.User
}

// Register creates a requester account. Collector and admin accounts
// are provisioned out of band.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: name and a valid email are required", ErrInvalidInput)
	}
	if len(input.Password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		username = email[:strings.Index(email, "@")]
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleRequester,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("account registered")
	return &Session{Token: token, User: user}, nil
}

// Login resolves the identifier against both email and username.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := auth.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: *user}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, update model.ProfileUpdate) (*model.User, error) {
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
		update.Email = &email
	}
	if update.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*update.Username))
		if username == "" {
			return nil, fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
		}
		update.Username = &username
	}

	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Profile(ctx, userID)
}

type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (s *AccountService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return fmt.Errorf("%w: password confirmation does not match", ErrInvalidInput)
	}
	if len(input.NewPassword) < auth.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
	}

	user, err := s.users.GetUser(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if err := auth.CheckPassword(input.CurrentPassword, user.PasswordHash); err != nil {
		return ErrPermissionDenied
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, input.UserID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info().Str("user_id", input.UserID.String()).Msg("password changed")
	return nil
}

// CollectorRoster lists collector accounts with assignment totals for
// the admin panel.
func (s *AccountService) CollectorRoster(ctx context.Context, principal model.Principal) ([]model.CollectorSummary, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	roster, err := s.users.ListCollectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collectors: %w", err)
	}
	return roster, nil
}
