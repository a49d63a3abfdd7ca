package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"account-api/internal/domain"
)

// DuplicateError indica que un campo único ya existe en la base.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	if e.Field == "email" {
		return fmt.Sprintf("Email address %s already exists", e.Value)
	}
	return fmt.Sprintf("Username %s already exists", e.Value)
}

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByIdentity(ctx context.Context, identity string) (domain.User, error)
	UpdateFields(ctx context.Context, username string, fields map[string]string) (domain.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) (domain.User, error)
	RecordLogin(ctx context.Context, username string) error
	Delete(ctx context.Context, username string) error
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
}

// Columns that UpdateFields accepts. Timestamps and the password hash have
// dedicated write paths and must never go through the generic update.
var updatableColumns = map[string]bool{
	"email":     true,
	"firstname": true,
	"lastname":  true,
}

// ErrNoUpdatableFields se devuelve cuando el patch no contiene columnas permitidas.
var ErrNoUpdatableFields = errors.New("no updatable fields")

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, firstname, lastname, signupdate, lastlogindate`

// Create inserts the user. The probe names the colliding field for a friendly
// error, but the unique indexes on username and email are the real authority:
// a concurrent insert racing past the probe still fails with a unique
// violation, which is mapped to the same DuplicateError.
func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const probe = `
		SELECT username, email
		FROM users
		WHERE username = $1 OR email = $2
	`
	var existingUsername, existingEmail string
	err := r.pool.QueryRow(ctx, probe, user.Username, user.Email).Scan(&existingUsername, &existingEmail)
	if err == nil {
		if existingUsername == user.Username {
			return &DuplicateError{Field: "username", Value: user.Username}
		}
		return &DuplicateError{Field: "email", Value: user.Email}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	const insert = `
		INSERT INTO users (id, username, email, password_hash, firstname, lastname, signupdate, lastlogindate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, insert,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Firstname,
		user.Lastname,
		user.SignupDate,
		user.LastLoginDate,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return &DuplicateError{Field: "email", Value: user.Email}
		}
		return &DuplicateError{Field: "username", Value: user.Username}
	}
	return err
}

// GetByIdentity busca por username o email; ambos se guardan en minúsculas.
func (r *PgUserRepository) GetByIdentity(ctx context.Context, identity string) (domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, identity))
}

func (r *PgUserRepository) UpdateFields(ctx context.Context, username string, fields map[string]string) (domain.User, error) {
	set := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	args = append(args, username)
	for col, val := range fields {
		if !updatableColumns[col] {
			continue
		}
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(set) == 0 {
		return domain.User{}, ErrNoUpdatableFields
	}

	query := `
		UPDATE users
		SET ` + strings.Join(set, ", ") + `
		WHERE username = $1
		RETURNING ` + userColumns
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, args...))
	// Un cambio de email puede chocar con el índice único igual que un insert.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return domain.User{}, &DuplicateError{Field: "email", Value: fields["email"]}
		}
		return domain.User{}, &DuplicateError{Field: "username", Value: username}
	}
	return user, err
}

// UpdatePassword es el único camino de escritura para password_hash.
func (r *PgUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) (domain.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2
		WHERE username = $1
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, username, passwordHash))
}

func (r *PgUserRepository) RecordLogin(ctx context.Context, username string) error {
	const query = `
		UPDATE users
		SET lastlogindate = now()
		WHERE username = $1
	`
	_, err := r.pool.Exec(ctx, query, username)
	return err
}

func (r *PgUserRepository) Delete(ctx context.Context, username string) error {
	const query = `DELETE FROM users WHERE username = $1`
	tag, err := r.pool.Exec(ctx, query, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	const query = `
		SELECT username, firstname, lastname
		FROM users
		ORDER BY username
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.Username, &p.Firstname, &p.Lastname); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *PgUserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Firstname,
		&u.Lastname,
		&u.SignupDate,
		&u.LastLoginDate,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
