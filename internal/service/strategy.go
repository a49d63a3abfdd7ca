package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"account-api/internal/domain"
	"account-api/internal/repository"
)

// CredentialStrategy resuelve una identidad reclamada más un secreto en un
// usuario autenticado. Estrategias futuras (por token, por ejemplo) son
// implementaciones adicionales de esta interfaz.
type CredentialStrategy interface {
	Verify(ctx context.Context, identity, password string) (domain.User, error)
}

// LocalStrategy verifica username/email + password contra el Credential Store.
type LocalStrategy struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewLocalStrategy(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher) *LocalStrategy {
	return &LocalStrategy{
		logger: logger,
		users:  users,
		hasher: hasher,
	}
}

// Verify colapsa "usuario inexistente" y "password incorrecto" en
// ErrInvalidCredentials; la distinción solo queda en los logs del servidor.
func (s *LocalStrategy) Verify(ctx context.Context, identity, password string) (domain.User, error) {
	identity = normalizeIdentity(identity)
	if identity == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("login attempt for unknown identity", zap.String("identity", identity))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("password mismatch", zap.String("username", user.Username))
		return domain.User{}, ErrInvalidCredentials
	}

	// Fire-and-forget: la respuesta no espera a lastlogindate y un fallo
	// aquí nunca falla la autenticación. Contexto propio para que la
	// desconexión del cliente no cancele la escritura.
	go func(username string) {
		recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.users.RecordLogin(recordCtx, username); err != nil {
			s.logger.Warn("record login failed", zap.String("username", username), zap.Error(err))
		}
	}(user.Username)

	// La identidad resuelta viaja sin el hash.
	user.PasswordHash = ""
	return user, nil
}
