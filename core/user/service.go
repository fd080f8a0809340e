package user

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	// ErrResetFailed deliberately collapses "user not found", "bad token" and
	// "malformed token" into one message so callers cannot enumerate accounts.
	ErrResetFailed = errors.New("invalid or expired reset link")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryAllUsers returns all users ordered by creation date descending.
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
	}

	Service interface {
		Register(ctx context.Context, ru RegisterUser) (User, error)
		CreateStaff(ctx context.Context, nu NewStaffUser) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		CheckUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, excludedUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a student account. The role is forced regardless of input.
func (svc *service) Register(ctx context.Context, ru RegisterUser) (User, error) {
	return svc.create(ctx, ru.FullName, ru.Email, ru.Password, RoleStudent)
}

// CreateStaff creates an instructor or admin account; admin-gated at the API.
func (svc *service) CreateStaff(ctx context.Context, nu NewStaffUser) (User, error) {
	return svc.create(ctx, nu.FullName, nu.Email, nu.Password, nu.Role)
}

func (svc *service) create(ctx context.Context, name, email, pwd string, role Role) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FullName:  name,
		Email:     email,
		Role:      role,
		IsStaff:   role.IsStaff(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	usr.FullName = up.FullName
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	// combined "uid:token" format
	parts := strings.SplitN(rp.Token, ":", 2)
	if len(parts) < 2 {
		return ErrResetFailed
	}

	id, err := decodeUID(parts[0])
	if err != nil {
		return ErrResetFailed
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrResetFailed
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = verifyToken(usr, parts[1]); err != nil {
		return ErrResetFailed
	}

	if err = usr.SetPassword(rp.NewPassword); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr, nil)
	return errors.Wrap(err, "updating user")
}
