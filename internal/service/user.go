package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/natours/internal/errs"
	"github.com/deppfellow/natours/internal/model"
	"github.com/deppfellow/natours/internal/repository"
	"github.com/deppfellow/natours/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence the user service needs.
// *repository.UserRepository implements it.
type UserStore interface {
	Insert(ctx context.Context, user *model.User) error
	Find(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// WelcomeEnqueuer queues the welcome email of a new user.
// *job.JobService implements it.
type WelcomeEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

// PasswordCost is the bcrypt cost used for stored passwords.
const PasswordCost = 12

type UserService struct {
	store   UserStore
	welcome WelcomeEnqueuer
	logger  *zerolog.Logger
	cost    int
}

// NewUserService builds a UserService. welcome may be nil, in which case no
// welcome email is queued.
func NewUserService(store UserStore, welcome WelcomeEnqueuer, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:   store,
		welcome: welcome,
		logger:  logger,
		cost:    PasswordCost,
	}
}

// Create validates a new user, hashes the password and stores it.
// The returned user carries neither password field.
func (s *UserService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := model.UserSchema.Prepare(user, validation.OpCreate); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)
	user.PasswordConfirm = ""

	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""

	if s.welcome != nil {
		if err := s.welcome.EnqueueWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			s.loggerFor(ctx).Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("could not queue welcome email")
		}
	}

	return user, nil
}

// loggerFor prefers the request-scoped logger carried by ctx.
func (s *UserService) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.Find(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, userNotFound(err)
	}
	return user, nil
}

// Update validates the fields present in patch and applies them.
func (s *UserService) Update(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	if err := model.UserPatchSchema.Prepare(patch, validation.OpUpdate); err != nil {
		return nil, err
	}

	user, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, userNotFound(err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return userNotFound(s.store.Delete(ctx, id))
}

func userNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.NewNotFoundError("user")
	}
	return err
}
