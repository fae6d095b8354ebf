package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

// KindEmailAlreadyRegistered marks a registration for an email already in use.
const KindEmailAlreadyRegistered errors.Kind = "EMAIL_ALREADY_REGISTERED"

// UserService manages user accounts.
type UserService struct {
	store   store.Store
	factory *domain.Factory
	logger  *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(store store.Store, factory *domain.Factory, logger *slog.Logger) *UserService {
	return &UserService{store: store, factory: factory, logger: logger}
}

// Register creates a new user. Emails are unique, ignoring case.
func (s *UserService) Register(ctx context.Context, email, displayName string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := s.factory.NewUser(email, displayName)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, u.Record()); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return nil, EmailAlreadyRegistered(u.Email()).WithCause(err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", u.ID(), "email", u.Email())
	return u, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	rec, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, domain.UserNotFound(userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.factory.RestoreUser(rec)
}

// GetByEmail returns a user by email, ignoring case.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	rec, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, domain.UserEmailNotFound(email)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return s.factory.RestoreUser(rec)
}

// Import stores an already restored user, e.g. one read from a snapshot.
func (s *UserService) Import(ctx context.Context, u *domain.User) error {
	if _, err := s.store.GetUser(ctx, u.ID()); err == nil {
		return domain.DuplicateRecordID("user", u.ID())
	}
	if err := s.store.CreateUser(ctx, u.Record()); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return EmailAlreadyRegistered(u.Email()).WithCause(err)
		}
		return fmt.Errorf("import user: %w", err)
	}
	return nil
}

// EmailAlreadyRegistered reports an email already used by another account.
func EmailAlreadyRegistered(email string) *errors.Error {
	return errors.AlreadyExistsf("email %q is already registered", email).
		WithKind(KindEmailAlreadyRegistered).
		With("email", email)
}
