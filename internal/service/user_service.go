package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"account-api/internal/domain"
	"account-api/internal/repository"
)

// UserService coordina reglas de negocio para cuentas de usuario.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
		hasher: hasher,
	}
}

type SignupInput struct {
	Username  string
	Password  string
	Email     string
	Firstname string
	Lastname  string
}

// Campos que solo el servidor escribe. Un cliente que los manda recibe 400,
// nunca un descarte silencioso.
var restrictedFields = []string{"lastlogindate", "signupdate"}

// Signup normaliza, valida, hashea el password y crea el registro. Los
// timestamps los fija el servidor en este único punto.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	username := normalizeIdentity(input.Username)
	email := normalizeIdentity(input.Email)
	firstname := strings.TrimSpace(input.Firstname)
	lastname := strings.TrimSpace(input.Lastname)

	if input.Password == "" || username == "" || email == "" || firstname == "" || lastname == "" {
		return domain.User{}, validationErrorf("Missing required information")
	}
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(input.Password); err != nil {
		return domain.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		PasswordHash:  passwordHash,
		Firstname:     firstname,
		Lastname:      lastname,
		SignupDate:    now,
		LastLoginDate: now,
	}

	// Una desconexión del cliente no aborta la escritura ya iniciada:
	// semántica at-least-once, sin rollback.
	if err := s.users.Create(context.WithoutCancel(ctx), user); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user signed up", zap.String("username", username))
	return user, nil
}

// UpdateProfile aplica un patch parcial. username y password se descartan del
// patch (tienen sus propios flujos); los timestamps restringidos son un error.
func (s *UserService) UpdateProfile(ctx context.Context, username string, patch map[string]string) (domain.User, error) {
	fields := make(map[string]string, len(patch))
	for key, val := range patch {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "username" || key == "password" || val == "" {
			continue
		}
		fields[key] = val
	}

	for _, restricted := range restrictedFields {
		if _, ok := fields[restricted]; ok {
			return domain.User{}, validationErrorf("Can't update the field " + restricted)
		}
	}
	if len(fields) == 0 {
		return domain.User{}, ErrNothingToUpdate
	}

	if email, ok := fields["email"]; ok {
		email = normalizeIdentity(email)
		if err := validateEmail(email); err != nil {
			return domain.User{}, err
		}
		fields["email"] = email
	}

	user, err := s.users.UpdateFields(context.WithoutCancel(ctx), username, fields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		if errors.Is(err, repository.ErrNoUpdatableFields) {
			return domain.User{}, ErrNothingToUpdate
		}
		return domain.User{}, err
	}
	return user, nil
}

// ValidatePasswordChange comprueba los campos del cambio de password. Se
// expone aparte porque estas comprobaciones van antes de autenticar: un 400
// de campos tiene precedencia sobre el 401 de credenciales.
func ValidatePasswordChange(password, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return validationErrorf(`Missing "New Password" or "Confirm Password" field`)
	}
	if newPassword != confirmPassword {
		return validationErrorf(`"New Password" and "Confirm Password" don't match`)
	}
	if newPassword == password {
		return validationErrorf("Can't set the new password to old password")
	}
	return nil
}

// ChangePassword asume que el caller ya autenticó al usuario con su password
// actual.
func (s *UserService) ChangePassword(ctx context.Context, username, password, newPassword, confirmPassword string) (domain.User, error) {
	if err := ValidatePasswordChange(password, newPassword, confirmPassword); err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(newPassword); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.UpdatePassword(context.WithoutCancel(ctx), username, passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	s.logger.Info("password updated", zap.String("username", username))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	err := s.users.Delete(context.WithoutCancel(ctx), username)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

// ListProfiles alimenta el endpoint de desarrollo /dev/user/getall.
func (s *UserService) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return s.users.ListProfiles(ctx)
}
